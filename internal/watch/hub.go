package watch

import "sync"

// Hub fans full snapshots out to subscribers, keyed by an arbitrary scope
// string (a user id, or user id + date). Every publish delivers the complete
// current result set; subscribers replace their view wholesale, latest
// snapshot wins.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(T)
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[string]map[int]func(T)),
	}
}

// Subscribe registers fn under key and returns its unsubscribe handle.
// The handle is safe to call more than once.
func (h *Hub[T]) Subscribe(key string, fn func(T)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	if h.subs[key] == nil {
		h.subs[key] = make(map[int]func(T))
	}
	h.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs[key], id)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
		})
	}
}

// Publish delivers snapshot to every subscriber under key.
// Callbacks run synchronously on the publisher's goroutine; subscribers that
// need to block (SSE writers) hand off through a channel.
func (h *Hub[T]) Publish(key string, snapshot T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.subs[key]))
	for _, fn := range h.subs[key] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func (h *Hub[T]) subscriberCount(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}

// Offer hands v into ch without ever blocking the caller: a full channel
// gets its stale element dropped first, and if another offerer wins the
// refill race the value is dropped instead. Publish callbacks run on the
// mutating request's goroutine, so a stalled reader must never stall them.
func Offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
