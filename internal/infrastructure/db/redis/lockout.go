package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// failureWindow bounds how long an unlocked failure counter survives
// without further attempts.
const failureWindow = 24 * time.Hour

// recordFailureScript atomically counts a failure and, on reaching the limit,
// sets the lock key and clears the counter.
//
//	KEYS[1] failure counter, KEYS[2] lock flag
//	ARGV[1] max attempts, ARGV[2] counter TTL ms, ARGV[3] lock TTL ms
var recordFailureScript = redis.NewScript(`
local failures = redis.call("INCR", KEYS[1])
if failures == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if failures >= tonumber(ARGV[1]) then
  redis.call("SET", KEYS[2], "1", "PX", ARGV[3])
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`)

// LockoutTracker implements failed sign-in lockout backed by Redis.
// Key format: lockout:fail:<email> and lockout:locked:<email>
type LockoutTracker struct {
	client      *redis.Client
	maxAttempts int
	duration    time.Duration
}

// NewLockoutTracker creates a LockoutTracker that locks an account for
// duration after maxAttempts consecutive failures.
func NewLockoutTracker(client *redis.Client, maxAttempts int, duration time.Duration) *LockoutTracker {
	return &LockoutTracker{client: client, maxAttempts: maxAttempts, duration: duration}
}

// IsLockedOut reports whether the account is inside a lockout window.
func (l *LockoutTracker) IsLockedOut(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Exists(ctx, lockedKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return n > 0, nil
}

// RecordFailure counts a failed attempt and reports whether it locked the account.
func (l *LockoutTracker) RecordFailure(ctx context.Context, email string) (bool, error) {
	locked, err := recordFailureScript.Run(ctx, l.client,
		[]string{failKey(email), lockedKey(email)},
		l.maxAttempts, failureWindow.Milliseconds(), l.duration.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("lockout record failure: %w", err)
	}
	return locked == 1, nil
}

// Reset clears the failure counter after a successful sign-in.
func (l *LockoutTracker) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, failKey(email)).Err(); err != nil {
		return fmt.Errorf("lockout reset: %w", err)
	}
	return nil
}

func failKey(email string) string   { return "lockout:fail:" + email }
func lockedKey(email string) string { return "lockout:locked:" + email }
