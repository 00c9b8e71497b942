package facade

import "sync"

// job is a queued request and the channel its response goes to.
type job struct {
	req   Request
	reply chan Response
}

// requestQueue is a thread-safe, unbounded FIFO of jobs.
//
// Submit may be called from any goroutine while Run dequeues. The signal
// channel lets Run wait for work and for context cancellation in one select.
type requestQueue struct {
	mu     sync.Mutex
	jobs   []job
	closed bool
	signal chan struct{} // buffered, size 1
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		jobs:   make([]job, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a job to the back of the queue.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(j job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)

	// Non-blocking; the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front job without blocking.
func (q *requestQueue) TryDequeue() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return job{}, false
	}
	j := q.jobs[0]
	// Clear the slot so the backing array does not pin request payloads.
	q.jobs[0] = job{}
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return j, true
}

// Wait returns a channel that fires when jobs may be available. It is
// closed when the queue closes.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued jobs.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops intake. Queued jobs stay queued until dequeued.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
