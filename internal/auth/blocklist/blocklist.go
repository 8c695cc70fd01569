// Package blocklist tracks revoked token IDs until their natural expiry.
//
// Entries are keyed by jti and carry a TTL matching the remaining lifetime of
// the revoked token, so the registry never grows beyond the set of tokens
// that would otherwise still be valid.
package blocklist

import (
	"context"
	"time"
)

// Blocklist is the revocation registry consulted on every authenticated
// request. Implementations must treat Revoke as idempotent: revoking a jti
// that is already present keeps the original expiry.
type Blocklist interface {
	// Revoke marks the given token ID as revoked for at most ttl.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the given token ID has been revoked. Callers
	// must treat a non-nil error as revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Close releases any resources held by the registry.
	Close() error
}
