package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterjsb/draftbot/internal/draft"
)

func newDispatchFixture(t *testing.T, failOps ...string) (*Engine, *Dispatcher, *fakeSheet) {
	t.Helper()
	e := newTestEngine(t, &fakeAuth{allowed: map[string]bool{"boss": true}})
	sheet := &fakeSheet{failOps: map[string]bool{}}
	for _, op := range failOps {
		sheet.failOps[op] = true
	}
	d := NewDispatcher(e, nil, nil)
	d.Register("c1", sheet)
	return e, d, sheet
}

func TestDispatch_AssignHighlight(t *testing.T) {
	e, d, sheet := newDispatchFixture(t)
	chat := &fakeChat{}
	ctx := context.Background()

	a := e.OnMessage(ctx, msg("u1", "14. Kevin Durant"))
	require.NoError(t, d.Dispatch(ctx, a, chat))

	assert.Equal(t, []string{
		"style A3:D3 #2659d9",
		`write E3="14"`,
	}, sheet.Calls())
	assert.Equal(t, []string{SymbolAssigned}, chat.reactions)
	assert.Empty(t, chat.replies)
}

func TestDispatch_SheetFailureKeepsAssignment(t *testing.T) {
	e, d, _ := newDispatchFixture(t, "style")
	chat := &fakeChat{}
	ctx := context.Background()

	a := e.OnMessage(ctx, msg("u1", "Kevin Durant"))
	err := d.Dispatch(ctx, a, chat)
	require.Error(t, err)

	assert.Equal(t, []string{SymbolFailed}, chat.reactions)
	require.Len(t, chat.transient, 1)
	assert.Contains(t, chat.transient[0], "sheet update failed")

	_, ok := e.Session("c1").Lookup("kevin durant")
	assert.True(t, ok)
}

func TestDispatch_UndoRedoReset(t *testing.T) {
	e, d, sheet := newDispatchFixture(t)
	chat := &fakeChat{}
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, e.OnMessage(ctx, msg("u1", "LeBron James")), chat))
	require.NoError(t, d.Dispatch(ctx, e.OnCommand(ctx, "c1", "boss", "undo", ""), chat))
	require.NoError(t, d.Dispatch(ctx, e.OnCommand(ctx, "c1", "boss", "redo", ""), chat))
	require.NoError(t, d.Dispatch(ctx, e.OnMessage(ctx, msg("u2", "Garland")), chat))
	require.NoError(t, d.Dispatch(ctx, e.OnCommand(ctx, "c1", "boss", "reset", ""), chat))

	assert.Equal(t, []string{
		"style A2:D2 #2659d9",
		`write E2="1"`,
		"clear A2:D2",
		`write E2=""`,
		"style A2:D2 #2659d9",
		`write E2="1"`,
		"style A4:D4 #2659d9",
		`write E4="1"`,
		"clear A2:D2",
		`write E2=""`,
		"clear A4:D4",
		`write E4=""`,
	}, sheet.Calls())
	assert.Len(t, chat.replies, 3)
}

func TestDispatch_RepliesAndReactions(t *testing.T) {
	e, d, sheet := newDispatchFixture(t)
	chat := &fakeChat{}
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, e.OnMessage(ctx, msg("u1", "LeBron James")), chat))
	require.NoError(t, d.Dispatch(ctx, e.OnMessage(ctx, msg("u2", "LeBron James")), chat))
	require.NoError(t, d.Dispatch(ctx, e.OnCommand(ctx, "c1", "u2", "undo", ""), chat))
	require.NoError(t, d.Dispatch(ctx, Action{Kind: ActionReact, ContextID: "c1", Symbol: SymbolMiss}, chat))
	require.NoError(t, d.Dispatch(ctx, Action{Kind: ActionNone}, chat))

	require.Len(t, chat.transient, 2)
	assert.Contains(t, chat.transient[0], "already picked")
	assert.Equal(t, DenialText, chat.transient[1])
	assert.Equal(t, []string{SymbolAssigned, SymbolMiss}, chat.reactions)
	assert.Len(t, sheet.Calls(), 2, "duplicates and denials never touch the sheet")
}

func TestDispatch_ADPResetLeavesSheet(t *testing.T) {
	e := New(draft.NewMatcher(), &fakeAuth{allowed: map[string]bool{"boss": true}}, WithRoles("LeComissioner"))
	_, err := e.AddContext(ContextConfig{ID: "adp", Mode: ModeADP, Layout: Layout{ADPColumn: "F"}}, roster)
	require.NoError(t, err)
	sheet := &fakeSheet{}
	d := NewDispatcher(e, nil, nil)
	d.Register("adp", sheet)
	chat := &fakeChat{}
	ctx := context.Background()

	a := e.OnMessage(ctx, Message{ContextID: "adp", AuthorID: "u1", Text: "3) Kevin Durant"})
	require.NoError(t, d.Dispatch(ctx, a, chat))
	require.NoError(t, d.Dispatch(ctx, e.OnCommand(ctx, "adp", "boss", "reset", ""), chat))

	assert.Equal(t, []string{`write F3="3"`}, sheet.Calls())
}

func TestDispatch_Unregistered(t *testing.T) {
	e := newTestEngine(t, nil)
	d := NewDispatcher(e, nil, nil)
	a := e.OnMessage(context.Background(), msg("u1", "LeBron James"))
	assert.Error(t, d.Dispatch(context.Background(), a, &fakeChat{}))
}
