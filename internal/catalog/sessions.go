package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
)

type sessionEntry struct {
	mu      sync.Mutex
	catalog Catalog
	touched time.Time
}

// Sessions keeps one Catalog per visitor session, keyed by the session
// token. Catalogs live in process memory rather than in the session blob so
// that concurrent requests from one visitor never overwrite each other.
// Entries not touched for ttl are swept.
type Sessions struct {
	sm  *scs.SessionManager
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func NewSessions(sm *scs.SessionManager, ttl time.Duration) *Sessions {
	return &Sessions{
		sm:      sm,
		ttl:     ttl,
		entries: make(map[string]*sessionEntry),
	}
}

// entry returns the visitor's entry, creating it when create is set. It is
// nil when the request has no session token.
func (s *Sessions) entry(ctx context.Context, create bool) *sessionEntry {
	token := s.sm.Token(ctx)
	if token == "" {
		return nil
	}
	now := timeNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.entries {
		if k != token && now.Sub(e.touched) > s.ttl {
			delete(s.entries, k)
		}
	}

	e, ok := s.entries[token]
	if !ok {
		if !create {
			return nil
		}
		e = &sessionEntry{}
		s.entries[token] = e
	}
	e.touched = now
	return e
}

// Get returns a copy of the visitor's catalog, empty if there is none.
func (s *Sessions) Get(ctx context.Context) Catalog {
	e := s.entry(ctx, false)
	if e == nil {
		return Catalog{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.clone()
}

// Update runs fn on the visitor's catalog while holding its lock. It
// reports false, without calling fn, when the request has no session.
func (s *Sessions) Update(ctx context.Context, fn func(c *Catalog)) bool {
	e := s.entry(ctx, true)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.catalog)
	return true
}

// Drop forgets the visitor's catalog and returns what it held.
func (s *Sessions) Drop(ctx context.Context) Catalog {
	token := s.sm.Token(ctx)

	s.mu.Lock()
	e, ok := s.entries[token]
	delete(s.entries, token)
	s.mu.Unlock()

	if !ok {
		return Catalog{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.clone()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
