package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var errLockHeld = errors.New("lock already held")

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// 只删除自己持有的锁，避免 TTL 过期后误删别人的锁。
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// acquireLock 尝试获取 key 上的互斥锁，成功时返回释放函数。
func acquireLock(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (release func(), err error) {
	token := uuid.NewString()
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errLockHeld
	}
	return func() {
		_ = releaseLockScript.Run(context.WithoutCancel(ctx), client, []string{key}, token).Err()
	}, nil
}
