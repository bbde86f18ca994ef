// Package cache 提供带TTL的键值缓存抽象，支持 get-or-compute（remember）语义。
// 值一经写入即被原样信任，直到TTL过期或被显式删除，读取时不做再校验。
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ComputeFunc 缓存未命中时的计算函数，由 Remember 在单次调用内恰好执行一次。
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Store 缓存存储接口。实现必须支持多调用方并发 Get/Put/Forget。
//
// Remember 不做 single-flight 去重：同一 key 的并发未命中可能各自计算、
// 各自写入，最终保留最后一次写入。两次计算读取的是几乎同一时刻的底层数据，
// 结果等价，为此加每键互斥锁反而会串行化无关的读请求。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error)
	Forget(ctx context.Context, keys ...string) error
	ForgetPrefix(ctx context.Context, prefix string) error
}

// ErrMiss 键不存在或已过期
var ErrMiss = errors.New("cache: miss")

// UnavailableError 缓存后端不可达。调用方（或 Remember 自身）应退化为
// 直接计算，而不是让读请求整体失败。
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("cache %s: backend unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable 判断错误链上是否为缓存后端不可用
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
