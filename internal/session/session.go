package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hunterjsb/draftbot/internal/draft"
)

var (
	// ErrEmptyStack is returned by Undo and Redo when there is nothing to move.
	ErrEmptyStack = errors.New("nothing to undo or redo")
	// ErrInconsistent means the active set and the undo stack disagree.
	ErrInconsistent = errors.New("session state is inconsistent")
)

// AlreadyAssignedError reports a second assignment attempt for a candidate
// that already holds an active record.
type AlreadyAssignedError struct {
	Existing Record
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s already picked by %s at pick %d",
		e.Existing.Candidate.DisplayName, e.Existing.AssignerID, e.Existing.Seq)
}

// Record is one active or undone assignment.
type Record struct {
	Candidate  draft.Candidate
	Seq        int
	AssignerID string
	// TypedPick is the pick number the drafter typed, 0 when none was given.
	TypedPick  int
	AssignedAt time.Time
}

// AssignOption sets optional fields on a new record.
type AssignOption func(*Record)

// WithTypedPick records the pick number typed in front of the name.
func WithTypedPick(n int) AssignOption {
	return func(r *Record) {
		r.TypedPick = n
	}
}

// Session enforces at-most-once assignment for one draft context.
type Session struct {
	mu      sync.Mutex
	id      string
	active  map[string]Record
	undo    []Record
	redo    []Record
	nextSeq int
	now     func() time.Time
}

// New creates an empty session.
func New() *Session {
	return &Session{
		id:      uuid.NewString(),
		active:  make(map[string]Record),
		nextSeq: 1,
		now:     time.Now,
	}
}

// ID identifies the current draft. Reset starts a new one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// TryAssign records c for assigner. If c already has an active record the
// returned error is an *AlreadyAssignedError carrying it.
func (s *Session) TryAssign(c draft.Candidate, assigner string, opts ...AssignOption) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.active[c.Key]; ok {
		return Record{}, &AlreadyAssignedError{Existing: existing}
	}

	rec := Record{
		Candidate:  c,
		Seq:        s.nextSeq,
		AssignerID: assigner,
		AssignedAt: s.now(),
	}
	for _, opt := range opts {
		opt(&rec)
	}
	s.nextSeq++
	s.active[c.Key] = rec
	s.undo = append(s.undo, rec)
	s.redo = nil

	return rec, s.verify()
}

// ForceAssign is TryAssign for operator commands that skip the matcher.
func (s *Session) ForceAssign(c draft.Candidate, assigner string, opts ...AssignOption) (Record, error) {
	return s.TryAssign(c, assigner, opts...)
}

// Undo deactivates the most recent assignment and makes it available to Redo.
func (s *Session) Undo() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return Record{}, ErrEmptyStack
	}
	rec := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	delete(s.active, rec.Candidate.Key)
	s.redo = append(s.redo, rec)

	return rec, s.verify()
}

// Redo reactivates the last undone record with its original sequence number.
func (s *Session) Redo() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return Record{}, ErrEmptyStack
	}
	rec := s.redo[len(s.redo)-1]
	if existing, ok := s.active[rec.Candidate.Key]; ok {
		return Record{}, &AlreadyAssignedError{Existing: existing}
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.active[rec.Candidate.Key] = rec
	s.undo = append(s.undo, rec)

	return rec, s.verify()
}

// Reset clears every record and both stacks and starts a new draft, so
// numbering begins again at 1. It returns the records that were active so the
// caller can clear their side effects.
func (s *Session) Reset() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := make([]Record, len(s.undo))
	copy(cleared, s.undo)

	s.active = make(map[string]Record)
	s.undo = nil
	s.redo = nil
	s.nextSeq = 1
	s.id = uuid.NewString()
	return cleared
}

// Lookup returns the active record for a canonical key.
func (s *Session) Lookup(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.active[key]
	return rec, ok
}

// Active returns the active records ordered by sequence number.
func (s *Session) Active() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.active))
	for _, rec := range s.active {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Pending reports how many undone records Redo can restore.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo)
}

// verify checks that every undo entry is active and vice versa. Callers hold mu.
func (s *Session) verify() error {
	if len(s.undo) != len(s.active) {
		return fmt.Errorf("%w: %d on undo stack, %d active", ErrInconsistent, len(s.undo), len(s.active))
	}
	for _, rec := range s.undo {
		got, ok := s.active[rec.Candidate.Key]
		if !ok || got.Seq != rec.Seq {
			return fmt.Errorf("%w: %q missing from active set", ErrInconsistent, rec.Candidate.Key)
		}
	}
	return nil
}
