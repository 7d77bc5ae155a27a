package submission

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"maqua-crm/internal/common/config"
	"maqua-crm/internal/common/logger"
)

const rawTextKeyPrefix = "briefing:rawtext:"

// RawTextStore keeps the original briefing text per customer code so
// later task creation can reuse the full wording instead of the lossy
// CRM fields.
type RawTextStore interface {
	Save(ctx context.Context, customerCode, text string) error
	Load(ctx context.Context, customerCode string) (string, error)
}

// NewRawTextStore returns a Redis-backed store when Redis is enabled,
// an in-process store otherwise.
func NewRawTextStore(cfg config.RedisConfig, ttl time.Duration, log logger.Logger) RawTextStore {
	if !cfg.Enabled {
		return NewMemoryRawTextStore(ttl)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if log != nil {
		log.Info("raw text store using redis", map[string]interface{}{"addr": cfg.Addr})
	}
	return NewRedisRawTextStore(client, ttl)
}

type redisRawTextStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRawTextStore wraps an existing Redis client.
func NewRedisRawTextStore(client *redis.Client, ttl time.Duration) RawTextStore {
	return &redisRawTextStore{client: client, ttl: ttl}
}

func (s *redisRawTextStore) Save(ctx context.Context, customerCode, text string) error {
	if customerCode == "" || text == "" {
		return nil
	}
	return s.client.Set(ctx, rawTextKeyPrefix+customerCode, text, s.ttl).Err()
}

func (s *redisRawTextStore) Load(ctx context.Context, customerCode string) (string, error) {
	if customerCode == "" {
		return "", nil
	}
	value, err := s.client.Get(ctx, rawTextKeyPrefix+customerCode).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

type memoryRawTextStore struct {
	cache *gocache.Cache
}

// NewMemoryRawTextStore keeps raw texts in process memory.
func NewMemoryRawTextStore(ttl time.Duration) RawTextStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &memoryRawTextStore{cache: gocache.New(ttl, 10*time.Minute)}
}

func (s *memoryRawTextStore) Save(_ context.Context, customerCode, text string) error {
	if customerCode == "" || text == "" {
		return nil
	}
	s.cache.Set(customerCode, text, gocache.DefaultExpiration)
	return nil
}

func (s *memoryRawTextStore) Load(_ context.Context, customerCode string) (string, error) {
	value, ok := s.cache.Get(customerCode)
	if !ok {
		return "", nil
	}
	text, _ := value.(string)
	return text, nil
}
