package catalog

import (
	"sync"
	"time"
)

type Preview struct {
	Name    string
	Type    string
	Data    []byte
	ModTime time.Time
}

type previewEntry struct {
	Preview
	expires time.Time
	seq     uint64
}

// Previews caches uploaded video bytes so the teacher can play them back.
// Entries expire after ttl, and the oldest are evicted once the cached
// bytes would exceed maxBytes.
type Previews struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxBytes int64
	size     int64
	seq      uint64
	entries  map[string]previewEntry
}

func NewPreviews(ttl time.Duration, maxBytes int64) *Previews {
	return &Previews{
		ttl:      ttl,
		maxBytes: maxBytes,
		entries:  make(map[string]previewEntry),
	}
}

// Put reports false, and keeps nothing, when pv alone is larger than the
// cache.
func (p *Previews) Put(id string, pv Preview) bool {
	now := timeNow()
	n := int64(len(pv.Data))

	p.mu.Lock()
	defer p.mu.Unlock()

	p.remove(id)
	for k, e := range p.entries {
		if now.After(e.expires) {
			p.remove(k)
		}
	}

	if n > p.maxBytes {
		return false
	}
	for p.size+n > p.maxBytes {
		p.evictOldest()
	}

	if pv.ModTime.IsZero() {
		pv.ModTime = now
	}
	p.seq++
	p.entries[id] = previewEntry{Preview: pv, expires: now.Add(p.ttl), seq: p.seq}
	p.size += n
	return true
}

func (p *Previews) Get(id string) (Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[id]
	if !ok {
		return Preview{}, false
	}
	if timeNow().After(e.expires) {
		p.remove(id)
		return Preview{}, false
	}
	return e.Preview, true
}

func (p *Previews) Delete(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range ids {
		p.remove(id)
	}
}

func (p *Previews) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Bytes is the total size of the cached previews.
func (p *Previews) Bytes() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// callers hold p.mu
func (p *Previews) remove(id string) {
	if e, ok := p.entries[id]; ok {
		p.size -= int64(len(e.Data))
		delete(p.entries, id)
	}
}

func (p *Previews) evictOldest() {
	var (
		oldest string
		seq    uint64
		found  bool
	)
	for k, e := range p.entries {
		if !found || e.seq < seq {
			oldest, seq, found = k, e.seq, true
		}
	}
	if found {
		p.remove(oldest)
	}
}
