package engine

import (
	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/session"
)

// ActionKind tags what the host should do with an Action.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionReact
	ActionReply
	ActionAssign
	ActionAlreadyAssigned
	ActionResetDone
	ActionUndoDone
	ActionRedoDone
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionReact:
		return "react"
	case ActionReply:
		return "reply"
	case ActionAssign:
		return "assign"
	case ActionAlreadyAssigned:
		return "already_assigned"
	case ActionResetDone:
		return "reset_done"
	case ActionUndoDone:
		return "undo_done"
	case ActionRedoDone:
		return "redo_done"
	default:
		return "unknown"
	}
}

// Reaction symbols.
const (
	SymbolAssigned = "✅"
	SymbolMiss     = "❓"
	SymbolFailed   = "‼️"
)

// Action is the outcome of handling one message or command. Only the fields
// relevant to Kind are set.
type Action struct {
	Kind      ActionKind
	ContextID string

	// Symbol is the reaction for ActionReact.
	Symbol string
	// Text is the user-facing reply, if any.
	Text string
	// Transient replies are removed after a short delay.
	Transient bool

	// Record is the new record for Assign, Undo and Redo, and the existing
	// one for AlreadyAssigned.
	Record session.Record
	Match  draft.Result
	// Value is written to the context's write column, empty for none.
	Value string
	// Cleared holds the records a reset removed.
	Cleared []session.Record
}

func none(contextID string) Action {
	return Action{Kind: ActionNone, ContextID: contextID}
}

func reply(contextID, text string) Action {
	return Action{Kind: ActionReply, ContextID: contextID, Text: text}
}
