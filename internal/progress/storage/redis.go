package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultRedisKeyPrefix = "fitness-tracker:"

var (
	_ progress.SlotStorage = (*Redis)(nil)
	_ Leaser               = (*Redis)(nil)
)

// KEYS: lease. ARGV: owner, ttl in milliseconds.
var acquireLeaseScript = redis.NewScript(`
local holder = redis.call("GET", KEYS[1])
if holder == false or holder == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	return 1
end
return 0
`)

// KEYS: lease. ARGV: owner.
var releaseLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis keeps every slot as a plain string key, without expiration.
type Redis struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedis(redisClient *redis.Client, keyPrefix string) *Redis {
	return &Redis{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (r *Redis) Read(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.read")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	value, err := r.redisClient.Get(ctx, r.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, progress.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get [%s]: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Write(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.write")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err = r.redisClient.Set(ctx, r.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", key, err)
	}
	return nil
}

func (r *Redis) leaseKey(name string) string {
	return r.keyPrefix + "lease:" + name
}

// AcquireLease relies on the key expiration for abandoned leases.
func (r *Redis) AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	acquired, err := acquireLeaseScript.Run(ctx, r.redisClient, []string{r.leaseKey(name)}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis acquire lease [%s]: %w", name, err)
	}
	return acquired == 1, nil
}

func (r *Redis) ReleaseLease(ctx context.Context, name, owner string) error {
	if err := releaseLeaseScript.Run(ctx, r.redisClient, []string{r.leaseKey(name)}, owner).Err(); err != nil {
		return fmt.Errorf("redis release lease [%s]: %w", name, err)
	}
	return nil
}

func (r *Redis) LeaseHolder(ctx context.Context, name string) (string, bool, error) {
	owner, err := r.redisClient.Get(ctx, r.leaseKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get lease [%s]: %w", name, err)
	}
	return owner, true, nil
}
