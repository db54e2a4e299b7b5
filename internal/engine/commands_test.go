package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnCommand_Denied(t *testing.T) {
	tests := []struct {
		name string
		auth Authorizer
	}{
		{name: "not a commish", auth: &fakeAuth{allowed: map[string]bool{"boss": true}}},
		{name: "role lookup fails", auth: &fakeAuth{err: errors.New("discord down")}},
		{name: "no authorizer", auth: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.auth)
			ctx := context.Background()
			require.Equal(t, ActionAssign, e.OnMessage(ctx, msg("u1", "LeBron James")).Kind)

			for _, name := range []string{"reset", "undo", "redo", "force", "color", "draftundo"} {
				a := e.OnCommand(ctx, "c1", "u1", name, "Kevin Durant")
				assert.Equal(t, ActionReply, a.Kind, name)
				assert.Equal(t, DenialText, a.Text, name)
				assert.True(t, a.Transient, name)
			}

			active := e.Session("c1").Active()
			require.Len(t, active, 1)
			assert.Equal(t, "LeBron James", active[0].Candidate.DisplayName)
		})
	}
}

func TestOnCommand_OpenCommands(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()
	e.OnMessage(ctx, msg("u1", "LeBron James"))

	a := e.OnCommand(ctx, "c1", "u2", "status", "")
	require.Equal(t, ActionReply, a.Kind)
	assert.Contains(t, a.Text, "**Board A** (highlight)")
	assert.Contains(t, a.Text, "1 of 4 players picked")
	assert.Contains(t, a.Text, "1. LeBron James (<@u1>)")

	a = e.OnCommand(ctx, "c1", "u2", "DraftHelp", "")
	require.Equal(t, ActionReply, a.Kind)
	assert.Contains(t, a.Text, "`force <player name>`")
	assert.Contains(t, a.Text, "(commish only)")

	assert.Equal(t, ActionNone, e.OnCommand(ctx, "c1", "u2", "dance", "").Kind)
	assert.Equal(t, ActionReply, e.OnCommand(ctx, "nowhere", "u2", "status", "").Kind)
}

func TestOnCommand_UndoRedo(t *testing.T) {
	e := newTestEngine(t, &fakeAuth{allowed: map[string]bool{"boss": true}})
	ctx := context.Background()

	a := e.OnCommand(ctx, "c1", "boss", "undo", "")
	require.Equal(t, ActionReply, a.Kind)
	assert.Contains(t, a.Text, "no picks to undo")

	first := e.OnMessage(ctx, msg("u1", "LeBron James"))
	require.Equal(t, ActionAssign, first.Kind)

	a = e.OnCommand(ctx, "c1", "boss", "undo", "")
	require.Equal(t, ActionUndoDone, a.Kind)
	assert.Equal(t, first.Record, a.Record)
	assert.Empty(t, a.Value)
	assert.Empty(t, e.Session("c1").Active())

	a = e.OnCommand(ctx, "c1", "boss", "draftredo", "")
	require.Equal(t, ActionRedoDone, a.Kind)
	assert.Equal(t, first.Record, a.Record)
	assert.Equal(t, "1", a.Value)

	a = e.OnCommand(ctx, "c1", "boss", "redo", "")
	require.Equal(t, ActionReply, a.Kind)
	assert.Contains(t, a.Text, "no picks to redo")
}

func TestOnCommand_Force(t *testing.T) {
	e := newTestEngine(t, &fakeAuth{allowed: map[string]bool{"boss": true}})
	ctx := context.Background()

	a := e.OnCommand(ctx, "c1", "boss", "force", "")
	assert.Equal(t, ActionReply, a.Kind)

	a = e.OnCommand(ctx, "c1", "boss", "force", "kevin")
	require.Equal(t, ActionReply, a.Kind)
	assert.Contains(t, a.Text, "No player named")

	a = e.OnCommand(ctx, "c1", "boss", "force", "  7. Kevin Durant ")
	require.Equal(t, ActionAssign, a.Kind)
	assert.Equal(t, "Kevin Durant", a.Record.Candidate.DisplayName)
	assert.Equal(t, "boss", a.Record.AssignerID)
	assert.Equal(t, "7", a.Value)
	assert.Contains(t, a.Text, "Forced pick 1")

	a = e.OnMessage(ctx, msg("u1", "kevin durant"))
	require.Equal(t, ActionAlreadyAssigned, a.Kind)
	assert.Equal(t, "boss", a.Record.AssignerID)

	a = e.OnCommand(ctx, "c1", "boss", "force", "Kevin Durant")
	assert.Equal(t, ActionAlreadyAssigned, a.Kind)
}

func TestOnCommand_ResetAndColor(t *testing.T) {
	e := newTestEngine(t, &fakeAuth{allowed: map[string]bool{"boss": true}})
	ctx := context.Background()

	e.OnMessage(ctx, msg("u1", "LeBron James"))
	e.OnMessage(ctx, msg("u2", "Kevin Durant"))
	oldID := e.Session("c1").ID()

	a := e.OnCommand(ctx, "c1", "boss", "reset", "")
	require.Equal(t, ActionResetDone, a.Kind)
	assert.Len(t, a.Cleared, 2)
	assert.Contains(t, a.Text, "Cleared 2 picks")
	assert.NotEqual(t, oldID, e.Session("c1").ID())

	again := e.OnMessage(ctx, msg("u3", "LeBron James"))
	require.Equal(t, ActionAssign, again.Kind)
	assert.Equal(t, 1, again.Record.Seq)

	a = e.OnCommand(ctx, "c1", "boss", "color", "nope")
	assert.Contains(t, a.Text, "Usage")

	a = e.OnCommand(ctx, "c1", "boss", "color", "#FF0000")
	require.Equal(t, ActionReply, a.Kind)
	assert.Contains(t, a.Text, "#ff0000")
	dc, _ := e.Context("c1")
	assert.Equal(t, "#ff0000", dc.Style().Background.Hex())
}

func TestCommandsSortedAndAliased(t *testing.T) {
	e := New(nil, nil)
	var names []string
	for _, c := range e.Commands() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"color", "force", "help", "redo", "reset", "status", "undo"}, names)

	cmd, ok := e.LookupCommand("draftforce")
	require.True(t, ok)
	assert.Equal(t, "force", cmd.Name)
	assert.True(t, cmd.Privileged)

	assert.Panics(t, func() {
		e.commands.define(Definition{Name: "undo"}, func(*CommandContext) Action { return Action{} })
	})
}
