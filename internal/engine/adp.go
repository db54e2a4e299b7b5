package engine

import (
	"math"
	"strconv"
	"sync"
)

// adpTracker keeps every pick number seen for a candidate across drafts in
// this process. It outlives session resets.
type adpTracker struct {
	mu      sync.Mutex
	history map[string][]int
}

func newADPTracker() *adpTracker {
	return &adpTracker{history: make(map[string][]int)}
}

// record appends a pick for key and returns the new average. A missing typed
// pick counts as one past the candidate's previous pick count.
func (t *adpTracker) record(key string, typed int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	pick := typed
	if pick <= 0 {
		pick = len(t.history[key]) + 1
	}
	t.history[key] = append(t.history[key], pick)
	return average(t.history[key])
}

// pop drops the latest pick for key. ok is false once no picks remain.
func (t *adpTracker) pop(key string) (avg float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.history[key]
	if len(h) == 0 {
		return 0, false
	}
	h = h[:len(h)-1]
	if len(h) == 0 {
		delete(t.history, key)
		return 0, false
	}
	t.history[key] = h
	return average(h), true
}

func average(picks []int) float64 {
	sum := 0
	for _, p := range picks {
		sum += p
	}
	return math.Round(float64(sum)/float64(len(picks))*100) / 100
}

func formatADP(avg float64) string {
	return strconv.FormatFloat(avg, 'f', -1, 64)
}
