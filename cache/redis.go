package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ConcertHub/config"

	"github.com/go-redis/redis/v8"
)

const (
	metadataKey      = "concerthub:meta:%s:%s" // String: cached upstream response
	metadataIndexKey = "concerthub:meta:%s:index" // ZSet: keys of one cache type, scored by expiry
)

// ConnectRedis opens a client and verifies the connection.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// TestRedis runs a set/get/del round trip against client.
func TestRedis(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	const key, want = "concerthub:test_key", "Redis connection successful!"
	if err := client.Set(ctx, key, want, 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}

	val, err := client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}
	if val != want {
		return fmt.Errorf("unexpected value from Redis: got %s", val)
	}

	if err := client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}
	return nil
}

// RedisMetadataStore is a MetadataStore backed by redis. Each cache type
// keeps an index sorted by expiry so Clear can remove one type without SCAN.
// Expired members are pruned on every Set.
type RedisMetadataStore struct {
	client *redis.Client
}

// NewRedisMetadataStore wraps an open client.
func NewRedisMetadataStore(client *redis.Client) *RedisMetadataStore {
	return &RedisMetadataStore{client: client}
}

func (s *RedisMetadataStore) Get(ctx context.Context, cacheType MetadataType, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, fmt.Errorf("Redis client not initialized")
	}

	data, err := s.client.Get(ctx, fmt.Sprintf(metadataKey, cacheType, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get metadata cache entry: %w", err)
	}
	return data, true, nil
}

func (s *RedisMetadataStore) Set(ctx context.Context, cacheType MetadataType, key string, value []byte, ttl time.Duration) error {
	if s.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	now := time.Now()
	indexKey := fmt.Sprintf(metadataIndexKey, cacheType)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(metadataKey, cacheType, key), value, ttl)
	pipe.ZAdd(ctx, indexKey, &redis.Z{Score: float64(now.Add(ttl).UnixMilli()), Member: key})
	pipe.ZRemRangeByScore(ctx, indexKey, "-inf", strconv.FormatInt(now.UnixMilli(), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set metadata cache entry: %w", err)
	}
	return nil
}

// Clear counts only entries that had not yet expired.
func (s *RedisMetadataStore) Clear(ctx context.Context, cacheType MetadataType) (int, error) {
	if s.client == nil {
		return 0, fmt.Errorf("Redis client not initialized")
	}

	types := MetadataTypes
	if cacheType != "" {
		types = []MetadataType{cacheType}
	}

	removed := 0
	for _, t := range types {
		indexKey := fmt.Sprintf(metadataIndexKey, t)
		members, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
		if err != nil && err != redis.Nil {
			return removed, fmt.Errorf("failed to list %s cache keys: %w", t, err)
		}

		keys := make([]string, 0, len(members)+1)
		for _, m := range members {
			keys = append(keys, fmt.Sprintf(metadataKey, t, m))
		}
		n := int64(0)
		if len(keys) > 0 {
			n, err = s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to clear %s cache: %w", t, err)
			}
		}
		if err := s.client.Del(ctx, indexKey).Err(); err != nil {
			return removed, fmt.Errorf("failed to clear %s cache index: %w", t, err)
		}
		removed += int(n)
	}
	return removed, nil
}
