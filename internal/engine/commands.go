package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/session"
	"github.com/hunterjsb/draftbot/internal/sheets"
)

// DenialText is sent when a caller without a commish role runs a privileged command.
const DenialText = "Unfortunately, you are not a commish. Ping a commish to assist you."

const statusLimit = 10

// Definition describes a single command's metadata.
type Definition struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	// Privileged commands require one of the engine's roles.
	Privileged bool
}

// Handler executes a command against a context. It only runs after the
// authorization check has passed.
type Handler func(*CommandContext) Action

// Command couples metadata with the executable handler.
type Command struct {
	Definition
	Handler Handler
}

// CommandContext provides the runtime data available to a command handler.
type CommandContext struct {
	Ctx      context.Context
	Draft    *DraftContext
	Session  *session.Session
	AuthorID string
	Arg      string
	Command  *Command
}

type registry struct {
	byName  map[string]*Command
	ordered []*Command
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]*Command)}
}

// define registers a command. It panics on incomplete or duplicate metadata.
func (r *registry) define(def Definition, handler Handler) *Command {
	if handler == nil {
		panic("engine: handler must not be nil")
	}
	if strings.TrimSpace(def.Name) == "" {
		panic("engine: command must have a name")
	}
	cmd := &Command{Definition: def, Handler: handler}

	register := func(name string) {
		key := strings.ToLower(name)
		if _, exists := r.byName[key]; exists {
			panic(fmt.Sprintf("engine: duplicate registration for %q", name))
		}
		r.byName[key] = cmd
	}
	register(def.Name)
	for _, alias := range def.Aliases {
		if strings.TrimSpace(alias) != "" {
			register(alias)
		}
	}

	r.ordered = append(r.ordered, cmd)
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Name < r.ordered[j].Name
	})
	return cmd
}

func (r *registry) find(name string) (*Command, bool) {
	cmd, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return cmd, ok
}

// Commands returns every registered command sorted by name.
func (e *Engine) Commands() []Command {
	out := make([]Command, 0, len(e.commands.ordered))
	for _, cmd := range e.commands.ordered {
		out = append(out, *cmd)
	}
	return out
}

// LookupCommand resolves a command name or alias.
func (e *Engine) LookupCommand(name string) (Command, bool) {
	cmd, ok := e.commands.find(name)
	if !ok {
		return Command{}, false
	}
	return *cmd, true
}

// OnCommand runs an operator command. Privileged commands check the caller's
// roles before anything in the session is touched.
func (e *Engine) OnCommand(ctx context.Context, contextID, authorID, name, arg string) Action {
	cmd, ok := e.commands.find(name)
	if !ok {
		return none(contextID)
	}
	dc, ok := e.Context(contextID)
	if !ok {
		return reply(contextID, "This channel is not tracking a draft.")
	}

	log := e.logger.With(
		zap.String("context", contextID),
		zap.String("author", authorID),
		zap.String("command", cmd.Name),
	)

	if cmd.Privileged {
		allowed, err := e.Authorize(ctx, authorID)
		if err != nil {
			log.Warn("role lookup failed", zap.Error(err))
		}
		if !allowed {
			log.Warn("command denied")
			e.metrics.ObserveCommand(cmd.Name, "denied")
			a := reply(contextID, DenialText)
			a.Transient = true
			return a
		}
	}

	log.Info("command", zap.String("arg", arg))
	e.metrics.ObserveCommand(cmd.Name, "ok")
	return cmd.Handler(&CommandContext{
		Ctx:      ctx,
		Draft:    dc,
		Session:  e.sessions.Get(contextID),
		AuthorID: authorID,
		Arg:      strings.TrimSpace(arg),
		Command:  cmd,
	})
}

// Authorize reports whether userID holds one of the engine's commish roles.
func (e *Engine) Authorize(ctx context.Context, userID string) (bool, error) {
	if e.auth == nil || len(e.roles) == 0 {
		return false, nil
	}
	return e.auth.HasAnyRole(ctx, userID, e.roles)
}

func (e *Engine) registerCommands() {
	r := e.commands

	r.define(Definition{
		Name:        "help",
		Aliases:     []string{"drafthelp"},
		Usage:       "help",
		Description: "list draft commands",
	}, func(c *CommandContext) Action {
		return reply(c.Draft.ID, e.helpText())
	})

	r.define(Definition{
		Name:        "status",
		Aliases:     []string{"draftstatus"},
		Usage:       "status",
		Description: "show the picks made so far",
	}, func(c *CommandContext) Action {
		return reply(c.Draft.ID, statusText(c.Draft, c.Session))
	})

	r.define(Definition{
		Name:        "reset",
		Aliases:     []string{"draftreset"},
		Usage:       "reset",
		Description: "clear every pick and start a new draft",
		Privileged:  true,
	}, func(c *CommandContext) Action {
		cleared := c.Session.Reset()
		return Action{
			Kind:      ActionResetDone,
			ContextID: c.Draft.ID,
			Cleared:   cleared,
			Text:      fmt.Sprintf("🧹 Draft reset. Cleared %d %s.", len(cleared), plural(len(cleared), "pick", "picks")),
		}
	})

	r.define(Definition{
		Name:        "undo",
		Aliases:     []string{"draftundo"},
		Usage:       "undo",
		Description: "take back the most recent pick",
		Privileged:  true,
	}, func(c *CommandContext) Action {
		rec, err := c.Session.Undo()
		if errors.Is(err, session.ErrEmptyStack) {
			return reply(c.Draft.ID, "❌ There are no picks to undo.")
		}
		if err != nil {
			e.logger.Error("undo failed", zap.String("context", c.Draft.ID), zap.Error(err))
			return reply(c.Draft.ID, "Undo failed.")
		}
		return Action{
			Kind:      ActionUndoDone,
			ContextID: c.Draft.ID,
			Record:    rec,
			Value:     e.revertedValue(c.Draft, rec),
			Text:      fmt.Sprintf("↩️ Undid pick %d: **%s**", rec.Seq, rec.Candidate.DisplayName),
		}
	})

	r.define(Definition{
		Name:        "redo",
		Aliases:     []string{"draftredo"},
		Usage:       "redo",
		Description: "restore the most recently undone pick",
		Privileged:  true,
	}, func(c *CommandContext) Action {
		rec, err := c.Session.Redo()
		var already *session.AlreadyAssignedError
		switch {
		case errors.Is(err, session.ErrEmptyStack):
			return reply(c.Draft.ID, "❌ There are no picks to redo.")
		case errors.As(err, &already):
			return reply(c.Draft.ID, already.Error())
		case err != nil:
			e.logger.Error("redo failed", zap.String("context", c.Draft.ID), zap.Error(err))
			return reply(c.Draft.ID, "Redo failed.")
		}
		return Action{
			Kind:      ActionRedoDone,
			ContextID: c.Draft.ID,
			Record:    rec,
			Value:     e.assignedValue(c.Draft, rec),
			Text:      fmt.Sprintf("↪️ Restored pick %d: **%s**", rec.Seq, rec.Candidate.DisplayName),
		}
	})

	r.define(Definition{
		Name:        "force",
		Aliases:     []string{"draftforce"},
		Usage:       "force <player name>",
		Description: "assign a player by exact name, skipping fuzzy matching",
		Privileged:  true,
	}, func(c *CommandContext) Action {
		if c.Arg == "" {
			return reply(c.Draft.ID, "Usage: force <player name>")
		}
		typed, _ := draft.ExtractLeadingOrdinal(c.Arg)
		cand, ok := c.Draft.index.Lookup(draft.Normalize(c.Arg))
		if !ok {
			return reply(c.Draft.ID, fmt.Sprintf("No player named %q on the board.", c.Arg))
		}
		res := draft.Result{Candidate: cand, Confidence: 100, Kind: draft.KindExact}
		return e.assign(c.Draft, c.AuthorID, res, typed, true)
	})

	r.define(Definition{
		Name:        "color",
		Aliases:     []string{"draftcolor"},
		Usage:       "color <#rrggbb>",
		Description: "change the highlight color for new picks",
		Privileged:  true,
	}, func(c *CommandContext) Action {
		col, err := sheets.ParseHexColor(c.Arg)
		if err != nil {
			return reply(c.Draft.ID, "Usage: color <#rrggbb>")
		}
		c.Draft.SetColor(col)
		return reply(c.Draft.ID, fmt.Sprintf("🎨 Highlight color set to %s.", col.Hex()))
	})
}

func (e *Engine) helpText() string {
	var b strings.Builder
	b.WriteString("**Draft commands**\n")
	for _, cmd := range e.commands.ordered {
		fmt.Fprintf(&b, "`%s` %s", cmd.Usage, cmd.Description)
		if cmd.Privileged {
			b.WriteString(" (commish only)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func statusText(dc *DraftContext, sess *session.Session) string {
	active := sess.Active()
	var b strings.Builder

	title := dc.Name
	if title == "" {
		title = dc.ID
	}
	fmt.Fprintf(&b, "**%s** (%s) draft `%s`: %d of %d players picked",
		title, dc.Mode, shortID(sess.ID()), len(active), dc.index.Len())
	if n := sess.Pending(); n > 0 {
		fmt.Fprintf(&b, ", %d undone", n)
	}

	start := 0
	if len(active) > statusLimit {
		start = len(active) - statusLimit
		fmt.Fprintf(&b, "\n…%d earlier", start)
	}
	for _, rec := range active[start:] {
		fmt.Fprintf(&b, "\n%d. %s (<@%s>)", rec.Seq, rec.Candidate.DisplayName, rec.AssignerID)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
