package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/observability"
	"github.com/hunterjsb/draftbot/internal/session"
)

// ErrEmptyRoster is returned when a context's name column has no names.
var ErrEmptyRoster = errors.New("roster is empty")

// Message is one inbound chat message.
type Message struct {
	ContextID string
	AuthorID  string
	Text      string
	// ReplyParentText is the text of the message this one replies to.
	ReplyParentText string
	HasAttachments  bool
}

// Authorizer answers whether a user holds any of the named roles.
type Authorizer interface {
	HasAnyRole(ctx context.Context, userID string, roles []string) (bool, error)
}

// Engine resolves chat messages to picks and runs operator commands. Calls
// for the same context must be serialized by the host; distinct contexts may
// run concurrently.
type Engine struct {
	matcher  *draft.Matcher
	sessions *session.Store
	auth     Authorizer

	mu       sync.RWMutex
	contexts map[string]*DraftContext
	order    []string

	roles       []string
	reactOnMiss bool
	commands    *registry
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRoles sets the role names allowed to run privileged commands.
func WithRoles(roles ...string) Option {
	return func(e *Engine) {
		e.roles = roles
	}
}

// WithReactOnMiss reacts to unresolved, non-empty messages instead of staying quiet.
func WithReactOnMiss(on bool) Option {
	return func(e *Engine) {
		e.reactOnMiss = on
	}
}

// New creates an Engine. auth may be nil, in which case every privileged
// command is denied.
func New(matcher *draft.Matcher, auth Authorizer, opts ...Option) *Engine {
	if matcher == nil {
		matcher = draft.NewMatcher()
	}
	e := &Engine{
		matcher:  matcher,
		sessions: session.NewStore(),
		auth:     auth,
		contexts: make(map[string]*DraftContext),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.commands = newRegistry()
	e.registerCommands()
	return e
}

// AddContext indexes roster and starts tracking cfg.ID.
func (e *Engine) AddContext(cfg ContextConfig, roster []string) (*DraftContext, error) {
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, errors.New("context id is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeHighlight
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("context %s: unknown mode %q", cfg.ID, cfg.Mode)
	}
	idx := draft.BuildIndex(roster)
	if idx.Len() == 0 {
		return nil, fmt.Errorf("context %s: %w", cfg.ID, ErrEmptyRoster)
	}

	dc := newDraftContext(cfg, idx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.contexts[cfg.ID]; exists {
		return nil, fmt.Errorf("context %s is already registered", cfg.ID)
	}
	e.contexts[cfg.ID] = dc
	e.order = append(e.order, cfg.ID)

	e.logger.Info("context ready",
		zap.String("context", cfg.ID),
		zap.String("name", cfg.Name),
		zap.String("mode", string(cfg.Mode)),
		zap.Int("candidates", idx.Len()),
	)
	return dc, nil
}

// Context returns a registered context.
func (e *Engine) Context(id string) (*DraftContext, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	dc, ok := e.contexts[id]
	return dc, ok
}

// ContextIDs lists registered contexts in registration order.
func (e *Engine) ContextIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Session returns the session for a context.
func (e *Engine) Session(contextID string) *session.Session {
	return e.sessions.Get(contextID)
}

// OnMessage resolves one chat message. Unknown contexts and unresolved text
// produce ActionNone unless react-on-miss is enabled.
func (e *Engine) OnMessage(ctx context.Context, msg Message) Action {
	dc, ok := e.Context(msg.ContextID)
	if !ok {
		return none(msg.ContextID)
	}
	e.metrics.ObserveMessage(msg.ContextID)

	text := msg.Text
	res, matched := e.matcher.Match(text, dc.index)
	// A bare "lol" or "nice" under someone else's message is chatter, not a pick.
	if !matched && strings.TrimSpace(msg.ReplyParentText) != "" && e.matcher.HasContent(msg.Text) {
		text = msg.ReplyParentText + " " + msg.Text
		res, matched = e.matcher.Match(text, dc.index)
	}

	log := e.logger.With(
		zap.String("context", msg.ContextID),
		zap.String("author", msg.AuthorID),
		zap.String("raw", msg.Text),
		zap.String("normalized", draft.Normalize(text)),
	)

	if !matched {
		log.Debug("no match", zap.Bool("attachments", msg.HasAttachments))
		e.metrics.ObserveMiss(msg.ContextID)
		if e.reactOnMiss && draft.Normalize(msg.Text) != "" {
			return Action{Kind: ActionReact, ContextID: msg.ContextID, Symbol: SymbolMiss}
		}
		return none(msg.ContextID)
	}

	log.Info("matched",
		zap.String("candidate", res.Candidate.DisplayName),
		zap.String("kind", string(res.Kind)),
		zap.Float64("score", res.Confidence),
	)
	e.metrics.ObserveMatch(msg.ContextID, string(res.Kind))

	typed, _ := draft.ExtractLeadingOrdinal(msg.Text)
	return e.assign(dc, msg.AuthorID, res, typed, false)
}

// assign reserves the candidate in the session first; the host applies the
// sheet write afterwards.
func (e *Engine) assign(dc *DraftContext, author string, res draft.Result, typed int, forced bool) Action {
	sess := e.sessions.Get(dc.ID)

	var opts []session.AssignOption
	if typed > 0 {
		opts = append(opts, session.WithTypedPick(typed))
	}

	assignFn := sess.TryAssign
	if forced {
		assignFn = sess.ForceAssign
	}
	rec, err := assignFn(res.Candidate, author, opts...)

	var already *session.AlreadyAssignedError
	switch {
	case errors.As(err, &already):
		e.metrics.ObserveAssignment(dc.ID, "duplicate")
		existing := already.Existing
		return Action{
			Kind:      ActionAlreadyAssigned,
			ContextID: dc.ID,
			Record:    existing,
			Match:     res,
			Text: fmt.Sprintf("**%s** was already picked by <@%s> at pick %d.",
				existing.Candidate.DisplayName, existing.AssignerID, existing.Seq),
			Transient: true,
		}
	case err != nil:
		e.logger.Error("session invariant violated",
			zap.String("context", dc.ID),
			zap.String("candidate", res.Candidate.Key),
			zap.Error(err),
		)
		e.metrics.ObserveAssignment(dc.ID, "fault")
		return none(dc.ID)
	}

	a := Action{
		Kind:      ActionAssign,
		ContextID: dc.ID,
		Record:    rec,
		Match:     res,
		Value:     e.assignedValue(dc, rec),
	}
	if forced {
		e.metrics.ObserveAssignment(dc.ID, "forced")
		a.Text = fmt.Sprintf("✅ Forced pick %d: **%s**", rec.Seq, rec.Candidate.DisplayName)
		return a
	}
	e.metrics.ObserveAssignment(dc.ID, "matched")
	return a
}

func (e *Engine) assignedValue(dc *DraftContext, rec session.Record) string {
	switch dc.Mode {
	case ModeADP:
		return formatADP(dc.adp.record(rec.Candidate.Key, rec.TypedPick))
	default:
		if dc.Layout.WriteColumn == "" {
			return ""
		}
		if rec.TypedPick > 0 {
			return strconv.Itoa(rec.TypedPick)
		}
		return "1"
	}
}

// revertedValue is the cell value after rec is undone.
func (e *Engine) revertedValue(dc *DraftContext, rec session.Record) string {
	if dc.Mode != ModeADP {
		return ""
	}
	if avg, ok := dc.adp.pop(rec.Candidate.Key); ok {
		return formatADP(avg)
	}
	return ""
}

// Resolve matches text against one context's roster without touching the
// session.
func (e *Engine) Resolve(contextID, text string) (draft.Result, bool) {
	dc, ok := e.Context(contextID)
	if !ok {
		return draft.Result{}, false
	}
	return e.matcher.Match(text, dc.index)
}
