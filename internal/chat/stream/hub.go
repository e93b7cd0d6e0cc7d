// Package stream fans realtime snapshots out to per-conversation listeners.
package stream

import "sync"

// Hub keys subscribers by conversation and pushes every published value to
// all of them. Message-list and typing-flag hubs are independent streams -
// no ordering is guaranteed between them.
type Hub[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(T)
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[string]map[int]func(T)),
	}
}

// Subscribe registers a listener for one conversation key and returns its
// release. Calling the release twice is a no-op; consumers must call it on
// teardown or the slot leaks.
func (h *Hub[T]) Subscribe(key string, onChange func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[key] == nil {
		h.subs[key] = make(map[int]func(T))
	}
	id := h.nextID
	h.nextID++
	h.subs[key][id] = onChange

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

// Publish delivers v to every listener currently registered for key.
// Callbacks run on the publisher's goroutine, outside the hub lock.
func (h *Hub[T]) Publish(key string, v T) {
	h.mu.RLock()
	listeners := make([]func(T), 0, len(h.subs[key]))
	for _, fn := range h.subs[key] {
		listeners = append(listeners, fn)
	}
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// Subscribers reports the listener count for one conversation key.
func (h *Hub[T]) Subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
