package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/observability"
	"github.com/hunterjsb/draftbot/internal/session"
	"github.com/hunterjsb/draftbot/internal/sheets"
)

// TransientTTL is how long duplicate and denial notices stay up.
const TransientTTL = 5 * time.Second

// Sheet is the spreadsheet a context drafts into.
type Sheet interface {
	ReadColumn(ctx context.Context, column string) ([]string, error)
	WriteCell(ctx context.Context, row int, column, value string) error
	ApplyStyle(ctx context.Context, r sheets.RowRange, style sheets.Style) error
	ClearStyle(ctx context.Context, r sheets.RowRange) error
}

// Chat answers the message or command an Action came from.
type Chat interface {
	React(ctx context.Context, symbol string) error
	Reply(ctx context.Context, text string) error
	ReplyTransient(ctx context.Context, text string, ttl time.Duration) error
}

// Dispatcher applies Actions to the sheet and chat. The session has already
// changed by the time an Action arrives; a failed sheet write is logged and
// reported in chat but never rolled back.
type Dispatcher struct {
	engine  *Engine
	logger  *zap.Logger
	metrics *observability.Metrics

	mu     sync.RWMutex
	sheets map[string]Sheet
}

func NewDispatcher(e *Engine, logger *zap.Logger, metrics *observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		engine:  e,
		logger:  logger,
		metrics: metrics,
		sheets:  make(map[string]Sheet),
	}
}

// Register binds the sheet for a context.
func (d *Dispatcher) Register(contextID string, sheet Sheet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sheets[contextID] = sheet
}

func (d *Dispatcher) sheet(contextID string) (Sheet, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sheets[contextID]
	return s, ok
}

// Dispatch performs the side effects of a. The returned error joins every
// sheet failure; chat failures are only logged.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action, chat Chat) error {
	switch a.Kind {
	case ActionNone:
		return nil
	case ActionReact:
		d.chatErr(a, "react", chat.React(ctx, a.Symbol))
		return nil
	case ActionReply:
		d.say(ctx, a, chat)
		return nil
	case ActionAlreadyAssigned:
		d.say(ctx, a, chat)
		return nil
	}

	dc, ok := d.engine.Context(a.ContextID)
	if !ok {
		return fmt.Errorf("unknown context %s", a.ContextID)
	}
	sheet, ok := d.sheet(a.ContextID)
	if !ok {
		return fmt.Errorf("no sheet registered for context %s", a.ContextID)
	}

	var err error
	switch a.Kind {
	case ActionAssign, ActionRedoDone:
		err = d.applyPick(ctx, dc, sheet, a.Record, a.Value)
	case ActionUndoDone:
		err = d.revertPick(ctx, dc, sheet, a.Record, a.Value)
	case ActionResetDone:
		// ADP averages span drafts, so a reset leaves the sheet alone.
		if dc.Mode == ModeADP {
			break
		}
		var errs []error
		for _, rec := range a.Cleared {
			errs = append(errs, d.revertPick(ctx, dc, sheet, rec, ""))
		}
		err = errors.Join(errs...)
	}

	if err != nil {
		d.logger.Error("sheet update failed",
			zap.String("context", a.ContextID),
			zap.String("action", a.Kind.String()),
			zap.String("candidate", a.Record.Candidate.DisplayName),
			zap.Error(err),
		)
		d.chatErr(a, "react", chat.React(ctx, SymbolFailed))
		notice := fmt.Sprintf("⚠️ The pick was recorded but the sheet update failed (%s). A commish may need to fix the sheet by hand.", a.Kind)
		d.chatErr(a, "reply", chat.ReplyTransient(ctx, notice, TransientTTL))
		return err
	}

	if a.Text != "" {
		d.say(ctx, a, chat)
	} else {
		d.chatErr(a, "react", chat.React(ctx, SymbolAssigned))
	}
	return nil
}

func (d *Dispatcher) applyPick(ctx context.Context, dc *DraftContext, sheet Sheet, rec session.Record, value string) error {
	if dc.Mode == ModeHighlight {
		if err := sheet.ApplyStyle(ctx, dc.RowRange(rec.Candidate), dc.Style()); err != nil {
			d.metrics.ObserveSheetError("apply_style")
			return fmt.Errorf("highlighting row %d: %w", rec.Candidate.Position, err)
		}
	}
	if col := dc.ValueColumn(); col != "" && value != "" {
		if err := sheet.WriteCell(ctx, rec.Candidate.Position, col, value); err != nil {
			d.metrics.ObserveSheetError("write_cell")
			return fmt.Errorf("writing %s%d: %w", col, rec.Candidate.Position, err)
		}
	}
	return nil
}

// revertPick undoes applyPick. In ADP mode value is the recomputed average.
func (d *Dispatcher) revertPick(ctx context.Context, dc *DraftContext, sheet Sheet, rec session.Record, value string) error {
	if dc.Mode == ModeHighlight {
		if err := sheet.ClearStyle(ctx, dc.RowRange(rec.Candidate)); err != nil {
			d.metrics.ObserveSheetError("clear_style")
			return fmt.Errorf("clearing row %d: %w", rec.Candidate.Position, err)
		}
	}
	col := dc.ValueColumn()
	if col == "" {
		return nil
	}
	if err := sheet.WriteCell(ctx, rec.Candidate.Position, col, value); err != nil {
		d.metrics.ObserveSheetError("write_cell")
		return fmt.Errorf("writing %s%d: %w", col, rec.Candidate.Position, err)
	}
	return nil
}

func (d *Dispatcher) say(ctx context.Context, a Action, chat Chat) {
	if a.Transient {
		d.chatErr(a, "reply", chat.ReplyTransient(ctx, a.Text, TransientTTL))
		return
	}
	d.chatErr(a, "reply", chat.Reply(ctx, a.Text))
}

func (d *Dispatcher) chatErr(a Action, op string, err error) {
	if err == nil {
		return
	}
	d.logger.Warn("chat call failed",
		zap.String("context", a.ContextID),
		zap.String("op", op),
		zap.Error(err),
	)
}
