// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 编码为 JSON，键统一加上命名空间前缀，便于与其他数据共用一个 KV.
//
//	c := cache.NewCache(kvStore, cache.WithPrefix("audio:uuid:"), cache.WithTTL(10*time.Minute))
//
//	_ = cache.Set(ctx, c, rec.UUID, rec, 0)
//	got, err := cache.Get[model.AudioFile](ctx, c, rec.UUID)
//
// 缓存未命中返回的错误满足 cache.IsMiss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/audiovault/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	ttl     time.Duration
}

// Option 配置 Cache.
type Option func(*Cache)

// WithPrefix 设置键前缀.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// WithTTL 设置默认过期时间，Set 传入 0 时使用.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, opts ...Option) *Cache {
	c := &Cache{kvStore: kvStore}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IsMiss 判断错误是否为缓存未命中.
func IsMiss(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}

func (c *Cache) key(k string) string { return c.prefix + k }

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// Clear 删除命名空间下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
