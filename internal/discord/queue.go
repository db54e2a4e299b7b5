package discord

import "sync"

const queueDepth = 64

// queues runs jobs for the same key one at a time, in submission order.
// Different keys run concurrently.
type queues struct {
	// Sends hold mu for reading so close cannot close a channel under them.
	mu     sync.RWMutex
	chans  map[string]chan func()
	wg     sync.WaitGroup
	closed bool
}

func newQueues() *queues {
	return &queues{chans: make(map[string]chan func())}
}

// submit enqueues job for key, blocking while the key's queue is full. It
// reports false once the queues are closed.
func (q *queues) submit(key string, job func()) bool {
	ch, ok := q.channel(key)
	if !ok {
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	ch <- job
	return true
}

// channel returns the queue for key, starting its worker on first use.
func (q *queues) channel(key string) (chan func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, false
	}
	ch, ok := q.chans[key]
	if !ok {
		ch = make(chan func(), queueDepth)
		q.chans[key] = ch
		q.wg.Add(1)
		go q.worker(ch)
	}
	return ch, true
}

func (q *queues) worker(ch chan func()) {
	defer q.wg.Done()
	for job := range ch {
		job()
	}
}

// close stops accepting jobs, waits for in-flight submits, then runs what is
// already queued before returning.
func (q *queues) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, ch := range q.chans {
		close(ch)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
