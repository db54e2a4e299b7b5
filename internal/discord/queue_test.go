package discord

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueues_PreserveOrderPerKey(t *testing.T) {
	q := newQueues()

	var mu sync.Mutex
	got := map[string][]int{}
	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			key, i := key, i
			require.True(t, q.submit(key, func() {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
			}))
		}
	}
	q.close()

	for _, key := range []string{"a", "b"} {
		require.Len(t, got[key], 50)
		for i, v := range got[key] {
			assert.Equal(t, i, v)
		}
	}
}

func TestQueues_RejectAfterClose(t *testing.T) {
	q := newQueues()
	ran := false
	require.True(t, q.submit("a", func() { ran = true }))
	q.close()
	assert.True(t, ran)

	assert.False(t, q.submit("a", func() {}))
	q.close()
}

func TestQueues_CloseWhileSubmitBlocked(t *testing.T) {
	q := newQueues()

	started := make(chan struct{})
	release := make(chan struct{})
	require.True(t, q.submit("a", func() {
		close(started)
		<-release
	}))
	<-started

	var ran int32
	for i := 0; i < queueDepth; i++ {
		require.True(t, q.submit("a", func() { atomic.AddInt32(&ran, 1) }))
	}

	// The buffer is full, so this submit blocks until the worker drains.
	blocked := make(chan bool)
	go func() {
		blocked <- q.submit("a", func() { atomic.AddInt32(&ran, 1) })
	}()

	closed := make(chan struct{})
	go func() {
		q.close()
		close(closed)
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	accepted := <-blocked
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not return")
	}

	want := int32(queueDepth)
	if accepted {
		want++
	}
	assert.Equal(t, want, atomic.LoadInt32(&ran))
	assert.False(t, q.submit("a", func() {}))
}
