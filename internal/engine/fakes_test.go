package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hunterjsb/draftbot/internal/sheets"
)

type fakeAuth struct {
	allowed map[string]bool
	err     error
}

func (f *fakeAuth) HasAnyRole(_ context.Context, userID string, _ []string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[userID], nil
}

type fakeSheet struct {
	mu      sync.Mutex
	calls   []string
	failOps map[string]bool
}

func (f *fakeSheet) record(op, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+detail)
	if f.failOps[op] {
		return errors.New(op + " failed")
	}
	return nil
}

func (f *fakeSheet) ReadColumn(_ context.Context, column string) ([]string, error) {
	return nil, f.record("read", column)
}

func (f *fakeSheet) WriteCell(_ context.Context, row int, column, value string) error {
	return f.record("write", fmt.Sprintf("%s%d=%q", column, row, value))
}

func (f *fakeSheet) ApplyStyle(_ context.Context, r sheets.RowRange, style sheets.Style) error {
	return f.record("style", r.String()+" "+style.Background.Hex())
}

func (f *fakeSheet) ClearStyle(_ context.Context, r sheets.RowRange) error {
	return f.record("clear", r.String())
}

func (f *fakeSheet) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeChat struct {
	reactions []string
	replies   []string
	transient []string
}

func (f *fakeChat) React(_ context.Context, symbol string) error {
	f.reactions = append(f.reactions, symbol)
	return nil
}

func (f *fakeChat) Reply(_ context.Context, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeChat) ReplyTransient(_ context.Context, text string, _ time.Duration) error {
	f.transient = append(f.transient, text)
	return nil
}
