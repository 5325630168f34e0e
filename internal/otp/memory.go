package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// MemoryRegistry keeps entries in process memory. Expired entries stay until
// they are superseded or successfully verified.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]Entry
	opts    options
}

func NewMemoryRegistry(opts ...Option) *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]Entry),
		opts:    buildOptions(opts),
	}
}

func (r *MemoryRegistry) TTL() time.Duration { return r.opts.ttl }

func (r *MemoryRegistry) Issue(ctx context.Context, email string) (Entry, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return Entry{}, ErrEmailRequired
	}
	code, err := r.opts.generate()
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := Entry{
		Email:     key,
		Code:      code,
		ExpiresAt: r.opts.now().Add(r.opts.ttl),
	}
	r.entries[key] = entry
	return entry, nil
}

func (r *MemoryRegistry) Verify(ctx context.Context, email, code string) error {
	key := NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok {
		return ErrNotFound
	}
	if entry.Expired(r.opts.now()) {
		return ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return ErrMismatch
	}
	delete(r.entries, key)
	return nil
}

// Len reports how many entries are held, expired ones included.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
