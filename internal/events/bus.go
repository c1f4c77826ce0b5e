package events

import (
	"context"
	"sync"
)

type Signal string

const (
	OpenLoginModal  Signal = "open-login-modal"
	OpenSignupModal Signal = "open-signup-modal"
)

type Handler func(ctx context.Context)

// Bus delivers payload-less signals to whoever is subscribed at publish
// time. Nothing is queued for late subscribers.
type Bus struct {
	mu   sync.RWMutex
	next uint64
	subs map[Signal]map[uint64]Handler
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[Signal]map[uint64]Handler),
	}
}

// Subscribe registers h for sig. The returned func removes it and may be
// called more than once.
func (b *Bus) Subscribe(sig Signal, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	if b.subs[sig] == nil {
		b.subs[sig] = make(map[uint64]Handler)
	}
	b.subs[sig][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[sig], id)
		})
	}
}

// Publish calls every current subscriber of sig once, synchronously, and
// returns how many were called.
func (b *Bus) Publish(ctx context.Context, sig Signal) int {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[sig]))
	for _, h := range b.subs[sig] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx)
	}
	return len(handlers)
}
