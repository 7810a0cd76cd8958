package offline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/2beens/fitnesstracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultRedisKeyPrefix = "fitness-tracker:cache:"

var _ CacheStorage = (*RedisStorage)(nil)

// putScript writes an entry only while the generation is still listed, so a
// put racing a delete cannot bring the hash back.
// KEYS: names set, generation hash. ARGV: generation name, entry key, entry.
var putScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
return 1
`)

// RedisStorage keeps one hash per generation, plus a set with the names of
// all generations.
type RedisStorage struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStorage(redisClient *redis.Client, keyPrefix string) *RedisStorage {
	return &RedisStorage{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (rs *RedisStorage) namesKey() string {
	return rs.keyPrefix + "generations"
}

func (rs *RedisStorage) generationKey(name string) string {
	return rs.keyPrefix + "gen:" + name
}

func (rs *RedisStorage) Open(ctx context.Context, name string) (Generation, error) {
	if err := rs.redisClient.SAdd(ctx, rs.namesKey(), name).Err(); err != nil {
		return nil, fmt.Errorf("redis sadd generation [%s]: %w", name, err)
	}
	return &redisGeneration{
		name:        name,
		namesKey:    rs.namesKey(),
		hashKey:     rs.generationKey(name),
		redisClient: rs.redisClient,
	}, nil
}

func (rs *RedisStorage) Keys(ctx context.Context) ([]string, error) {
	names, err := rs.redisClient.SMembers(ctx, rs.namesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers generations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Delete unlists the generation first, then drops its hash. Both steps are
// idempotent, so a failed delete can simply be repeated.
func (rs *RedisStorage) Delete(ctx context.Context, name string) (bool, error) {
	removed, err := rs.redisClient.SRem(ctx, rs.namesKey(), name).Result()
	if err != nil {
		return false, fmt.Errorf("redis srem generation [%s]: %w", name, err)
	}
	if err := rs.redisClient.Del(ctx, rs.generationKey(name)).Err(); err != nil {
		return false, fmt.Errorf("redis del generation [%s]: %w", name, err)
	}
	return removed > 0, nil
}

type redisGeneration struct {
	name        string
	namesKey    string
	hashKey     string
	redisClient *redis.Client
}

func (g *redisGeneration) Name() string {
	return g.name
}

func (g *redisGeneration) Match(ctx context.Context, key string) (_ *CachedResponse, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.redisGeneration.match")
	span.SetAttributes(attribute.String("generation", g.name), attribute.String("key", key))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, err := g.redisClient.HGet(ctx, g.hashKey, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis hget [%s]: %w", key, err)
	}
	cr, err := unmarshalCachedResponse(data)
	if err != nil {
		return nil, false, err
	}
	return cr, true, nil
}

func (g *redisGeneration) Put(ctx context.Context, key string, resp *CachedResponse) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.redisGeneration.put")
	span.SetAttributes(attribute.String("generation", g.name), attribute.String("key", key))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, err := resp.marshal()
	if err != nil {
		return err
	}
	stored, err := putScript.Run(
		ctx,
		g.redisClient,
		[]string{g.namesKey, g.hashKey},
		g.name, key, string(data),
	).Int()
	if err != nil {
		return fmt.Errorf("redis put [%s]: %w", key, err)
	}
	if stored == 0 {
		log.Debugf("offline cache: generation %s deleted, [%s] not stored", g.name, key)
	}
	return nil
}
