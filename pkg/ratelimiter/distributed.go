package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces a campaign's rate_limit_per_second. It is intentionally
// narrower than the in-memory RateLimiter in ratelimiter.go: callers in the dispatch
// pipeline only ever need a single per-campaign, per-second admission
// check, never namespace policies or window introspection.
type Limiter interface {
	// Allow atomically checks and increments the counter for campaignID in
	// the current one-second bucket, admitting the call if the resulting
	// count does not exceed limit. Implementations MUST fail open: if the
	// backing store is unreachable, Allow returns (true, err) rather than
	// blocking dispatch on an infrastructure outage.
	Allow(ctx context.Context, campaignID string, limit int) (bool, error)
}

// incrExpireScript atomically increments the per-second counter and sets
// its expiry in a single round-trip, mirroring the check-then-multi/exec
// transaction used by the system this limiter reports to (see
// DESIGN.md). A Lua script keeps the increment-and-expire pair atomic
// without a WATCH/retry loop: Redis runs scripts single-threaded.
var incrExpireScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// DistributedLimiter is a Redis-backed Limiter keyed on
// (campaign_id, current unix second), so independent Orchestrator
// instances dispatching the same campaign concurrently all observe the
// same shared counter (spec §4.4).
type DistributedLimiter struct {
	client redis.Cmdable
	// bucketTTL bounds how long a per-second key survives; it must be
	// larger than 1 second so a script invoked right at a bucket boundary
	// still sees its own EXPIRE land, but short enough that a crashed
	// process's keys do not accumulate.
	bucketTTL time.Duration
}

// NewDistributedLimiter constructs a DistributedLimiter over an existing
// Redis client (or cluster/ring client, since Cmdable abstracts over all
// three).
func NewDistributedLimiter(client redis.Cmdable) *DistributedLimiter {
	return &DistributedLimiter{client: client, bucketTTL: 2 * time.Second}
}

// Allow implements Limiter. On any Redis error it logs nothing itself
// (the caller logs) and admits the message: a rate limiter outage must
// never become a dispatch outage.
func (l *DistributedLimiter) Allow(ctx context.Context, campaignID string, limit int) (bool, error) {
	key := fmt.Sprintf("campaign:%s:rate_limit:%d", campaignID, time.Now().Unix())

	count, err := incrExpireScript.Run(ctx, l.client, []string{key}, int(l.bucketTTL.Seconds())).Int64()
	if err != nil {
		return true, fmt.Errorf("ratelimiter: redis unavailable, failing open: %w", err)
	}

	return count <= int64(limit), nil
}

// InMemoryLimiter adapts the namespace-based RateLimiter in ratelimiter.go to the
// Limiter interface for single-process deployments and tests where a
// Redis dependency is undesirable. It does not coordinate across
// processes: two Orchestrator instances using separate InMemoryLimiters
// would each admit up to limit messages per second independently.
type InMemoryLimiter struct {
	rl *RateLimiter
}

// NewInMemoryLimiter wraps rl. It installs no policy itself: each Allow
// call sets a namespace policy keyed by the campaign ID, since each
// campaign carries its own limit.
func NewInMemoryLimiter(rl *RateLimiter) *InMemoryLimiter {
	return &InMemoryLimiter{rl: rl}
}

// Allow implements Limiter using a one-second sliding window per campaign.
func (l *InMemoryLimiter) Allow(ctx context.Context, campaignID string, limit int) (bool, error) {
	l.rl.SetPolicy(campaignID, limit, time.Second)
	return l.rl.Allow(campaignID, campaignID), nil
}
