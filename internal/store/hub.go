package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
)

// Hub fans the latest state out to subscribers. Every subscriber has its own
// delivery goroutine, so a slow handler never blocks the publisher or other
// subscribers. States that arrive while a handler is busy are coalesced and
// only the newest one is delivered.
type Hub[T any] struct {
	mu      sync.Mutex
	current T
	subs    *xsync.MapOf[string, *subscription[T]]
}

func NewHub[T any](initial T) *Hub[T] {
	return &Hub[T]{
		current: initial,
		subs:    xsync.NewMapOf[*subscription[T]](),
	}
}

// Publish records state as current and schedules it for every subscriber.
func (h *Hub[T]) Publish(state T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = state
	h.subs.Range(func(_ string, s *subscription[T]) bool {
		s.push(state)
		return true
	})
}

func (h *Hub[T]) Current() T {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.current
}

// Subscribe delivers the current state to handler, then every later state.
// The returned cancel is idempotent. Once it returns no new handler call
// starts, and a call already running has finished. It must not be called
// from inside handler.
func (h *Hub[T]) Subscribe(handler func(T)) (cancel func()) {
	id := uuid.NewString()
	s := &subscription[T]{
		handler: handler,
		wake:    make(chan struct{}, 1),
	}

	h.mu.Lock()
	h.subs.Store(id, s)
	s.push(h.current)
	h.mu.Unlock()

	go s.run()

	return func() {
		h.subs.Delete(id)
		s.stop()
	}
}

// Len is the number of live subscribers.
func (h *Hub[T]) Len() int {
	return h.subs.Size()
}

// Close cancels every subscriber.
func (h *Hub[T]) Close() {
	h.subs.Range(func(id string, s *subscription[T]) bool {
		h.subs.Delete(id)
		s.stop()
		return true
	})
}

type subscription[T any] struct {
	handler func(T)

	// mu guards pending, hasPending and closed. wake is closed under mu.
	mu         sync.Mutex
	pending    T
	hasPending bool
	closed     bool
	wake       chan struct{}

	// deliverMu is held for the duration of each handler call.
	deliverMu sync.Mutex
}

func (s *subscription[T]) push(state T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.pending = state
	s.hasPending = true
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription[T]) run() {
	for range s.wake {
		s.mu.Lock()
		if s.closed || !s.hasPending {
			s.mu.Unlock()
			continue
		}
		state := s.pending
		var zero T
		s.pending = zero
		s.hasPending = false
		s.mu.Unlock()

		s.deliverMu.Lock()
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			s.handler(state)
		}
		s.deliverMu.Unlock()
	}
}

func (s *subscription[T]) stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.hasPending = false
	close(s.wake)
	s.mu.Unlock()

	// Wait for an in-flight handler call.
	s.deliverMu.Lock()
	s.deliverMu.Unlock()
}
