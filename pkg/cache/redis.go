package cache

import (
	"context"
	"errors"
	"time"

	"learnhub_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 基于 Redis 的缓存实现，生产环境默认后端
type RedisStore struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisStore(rdb *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return val, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return nil, &UnavailableError{Op: "get", Err: err}
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return &UnavailableError{Op: "put", Err: err}
	}
	return nil
}

// Remember 命中直接返回缓存值；未命中时计算、写入、返回。
// 后端不可达时退化为直接计算；计算成功后写入失败仅记录日志，
// 计算结果仍然返回给调用方。
func (s *RedisStore) Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	val, err := s.Get(ctx, key)
	if err == nil {
		monitoring.ObserveCache("hit")
		return val, nil
	}

	if !errors.Is(err, ErrMiss) {
		// 缓存不可用，绕过缓存直接计算
		monitoring.ObserveCache("bypass")
		s.log.Warn("cache backend unavailable, computing directly",
			zap.String("key", key), zap.Error(err))
		return compute(ctx)
	}

	monitoring.ObserveCache("miss")
	start := time.Now()
	val, err = compute(ctx)
	if err != nil {
		return nil, err
	}
	monitoring.CacheComputeDuration.Observe(time.Since(start).Seconds())

	if perr := s.Put(ctx, key, val, ttl); perr != nil {
		s.log.Warn("cache put failed after compute",
			zap.String("key", key), zap.Error(perr))
	}
	return val, nil
}

func (s *RedisStore) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return &UnavailableError{Op: "forget", Err: err}
	}
	return nil
}

// ForgetPrefix 按前缀批量删除。用 SCAN 游标遍历而非 KEYS，避免阻塞 Redis。
func (s *RedisStore) ForgetPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return &UnavailableError{Op: "forget_prefix", Err: err}
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return &UnavailableError{Op: "forget_prefix", Err: err}
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
