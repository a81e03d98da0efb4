package store

import "sync"

// Notice is a user-visible confirmation raised by a store mutation.
type Notice struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
}

type Notifier interface {
	Notify(Notice)
}

// NoticeQueue buffers notices until the next response drains them.
type NoticeQueue struct {
	mu  sync.Mutex
	buf []Notice
}

func (q *NoticeQueue) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf = append(q.buf, n)
}

// Drain returns and forgets the queued notices.
func (q *NoticeQueue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.buf
	q.buf = nil
	return out
}

type discard struct{}

func (discard) Notify(Notice) {}
