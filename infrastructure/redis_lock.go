package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// unlockLua deletes the lock key only if it still holds the caller's token
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// RedisContestLocker serializes operations per contest across instances.
// The TTL bounds how long a crashed holder blocks a contest.
type RedisContestLocker struct {
	rdb        *redis.Client
	unlock     *redis.Script
	ttl        time.Duration
	retryDelay time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisContestLocker creates a contest locker backed by Redis SET NX
func NewRedisContestLocker(rdb *redis.Client, ttl time.Duration) *RedisContestLocker {
	return &RedisContestLocker{
		rdb:        rdb,
		unlock:     redis.NewScript(unlockLua),
		ttl:        ttl,
		retryDelay: 25 * time.Millisecond,
	}
}

func contestLockKey(contestID int64) string {
	return fmt.Sprintf("arena:lock:contest:%d", contestID)
}

// Lock polls until the key is acquired or ctx is done
func (l *RedisContestLocker) Lock(ctx context.Context, contestID int64) (func(), error) {
	token := uuid.New().String()
	key := contestLockKey(contestID)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock for contest %d: %w", contestID, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := l.unlock.Run(unlockCtx, l.rdb, []string{key}, token).Err(); err != nil {
				log.WithFields(log.Fields{
					"contestID": contestID,
					"error":     err,
				}).Warn("Failed to release contest lock")
			}
		})
	}, nil
}
