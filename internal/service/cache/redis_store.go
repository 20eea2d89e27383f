package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisPlanStore shares plan cache entries between processes. Values are
// stored as JSON without expiry, matching the in-memory store's lifetime
// semantics.
type RedisPlanStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPlanStore(cfg RedisConfig, logger *zap.Logger) (*RedisPlanStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis plan cache connected",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)

	return &RedisPlanStore{
		client: client,
		logger: logger,
	}, nil
}

func (s *RedisPlanStore) Get(ctx context.Context, fingerprint string) (*domain.PlanCacheEntry, bool, error) {
	key := redisKey(fingerprint)

	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("Plan cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false, errors.NewCacheError("get failed", "get", key, err)
	}

	var entry domain.PlanCacheEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		s.logger.Error("Plan cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, false, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	// A hash collision must not serve another request's plan.
	if entry.Fingerprint != fingerprint {
		return nil, false, nil
	}

	return &entry, true, nil
}

func (s *RedisPlanStore) Put(ctx context.Context, fingerprint string, entry *domain.PlanCacheEntry) error {
	key := redisKey(fingerprint)

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		s.logger.Error("Plan cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (s *RedisPlanStore) Close() error {
	return s.client.Close()
}

// redisKey hashes the fingerprint so arbitrary request text never ends up in
// key names.
func redisKey(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return constants.RedisConfig.KeyPrefix + hex.EncodeToString(sum[:])
}
