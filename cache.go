package gatehouse

import (
	"context"
	"time"
)

// Cache provides caching for capability check results.
type Cache interface {
	// Get returns a cached capability answer, if available.
	Get(ctx context.Context, userID, resource, action string) (allowed, ok bool)

	// Set stores a capability answer in the cache. A non-positive ttl
	// leaves the expiry to the implementation's default.
	Set(ctx context.Context, userID, resource, action string, allowed bool, ttl time.Duration)

	// InvalidateUser removes all cached answers for a user.
	InvalidateUser(ctx context.Context, userID string)

	// InvalidateAll removes every cached answer.
	InvalidateAll(ctx context.Context)
}
