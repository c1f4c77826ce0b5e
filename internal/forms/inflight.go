package forms

import (
	"sync"

	"github.com/google/uuid"
)

// InFlight allows one running submission per form instance.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{
		active: make(map[string]struct{}),
	}
}

// NewFormID names a freshly rendered form instance.
func NewFormID() string {
	return uuid.NewString()
}

// Begin marks key as submitting. ok is false if a submission for key is
// already running; otherwise release must be called when it finishes.
func (f *InFlight) Begin(key string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.active[key]; busy {
		return nil, false
	}
	f.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.active, key)
			f.mu.Unlock()
		})
	}, true
}

func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.active)
}
