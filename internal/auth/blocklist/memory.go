package blocklist

import (
	"context"
	"sync"
	"time"
)

// MemoryBlocklist is an in-process Blocklist for tests and single-node dev
// setups. Expired entries are pruned lazily on access.
type MemoryBlocklist struct {
	mu      sync.Mutex
	entries map[string]time.Time

	// Now is the clock used for expiry checks, overridable in tests.
	Now func() time.Time
}

var _ Blocklist = (*MemoryBlocklist)(nil)

func NewMemoryBlocklist() *MemoryBlocklist {
	return &MemoryBlocklist{
		entries: make(map[string]time.Time),
		Now:     time.Now,
	}
}

func (b *MemoryBlocklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.Now()
	if expiry, ok := b.entries[jti]; ok && expiry.After(now) {
		// Already revoked, keep the original expiry.
		return nil
	}
	b.entries[jti] = now.Add(ttl)
	return nil
}

func (b *MemoryBlocklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !expiry.After(b.Now()) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

func (b *MemoryBlocklist) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]time.Time)
	return nil
}
