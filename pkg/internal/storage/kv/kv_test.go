package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/storage/kv"
)

func newMemory(t testing.TB) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, &configs.KVConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	return store
}

func TestMemoryKVGetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("Get missing err = %v, want ErrNotFound", err)
	}

	val := []byte("hello")
	if err := store.Set(ctx, "k", val, 0); err != nil {
		t.Fatal(err)
	}

	val[0] = 'X' // 调用方修改不应影响已存值

	got, err := store.Get(ctx, "k")
	if err != nil || string(got) != "hello" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}

	if ok, _ := store.Exists(ctx, "k"); ok {
		t.Fatal("key still exists after delete")
	}
}

func TestMemoryKVExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.SetClock(store, func() time.Time { return now })

	if err := store.Set(ctx, "short", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := store.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(59 * time.Second)

	if ok, _ := store.Exists(ctx, "short"); !ok {
		t.Fatal("key expired too early")
	}

	now = now.Add(time.Second)

	for i := 0; i < 2; i++ {
		if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("Get expired err = %v", err)
		}
	}

	if ok, _ := store.Exists(ctx, "short"); ok {
		t.Fatal("expired key still exists")
	}

	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 1 || keys[0] != "forever" {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestMemoryKVKeysPattern(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	for _, k := range []string{"audio:uuid:a", "audio:uuid:b", "other"} {
		if err := store.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.Keys(ctx, "audio:uuid:*")
	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(keys)

	if len(keys) != 2 || keys[0] != "audio:uuid:a" || keys[1] != "audio:uuid:b" {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestTTLWrapper(t *testing.T) {
	raw, wrapped, err := kv.EncodeWithTTL([]byte("v"), 0)
	if err != nil || wrapped || string(raw) != "v" {
		t.Fatalf("encode without ttl = %q, %v, %v", raw, wrapped, err)
	}

	enc, wrapped, err := kv.EncodeWithTTL([]byte("v"), time.Hour)
	if err != nil || !wrapped {
		t.Fatalf("encode with ttl = %v, %v", wrapped, err)
	}

	val, expired, _, err := kv.DecodeWithTTL(enc, time.Now())
	if err != nil || expired || string(val) != "v" {
		t.Fatalf("decode = %q, %v, %v", val, expired, err)
	}

	if _, expired, _, _ := kv.DecodeWithTTL(enc, time.Now().Add(2*time.Hour)); !expired {
		t.Fatal("value should be expired")
	}
}

func TestUnknownKVType(t *testing.T) {
	if _, err := kv.NewKVClient(context.Background(), &configs.KVConfig{Type: "etcd"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store := newMemory(b)

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_REDIS_BENCH=1 and REDIS_ADDR set (default 127.0.0.1:6379).
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.KVConfig{Type: "redis", Redis: configs.RedisKVConfig{Addr: addr}}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_NATS_BENCH=1 and NATS_URL set (default nats://127.0.0.1:4222)
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := &configs.KVConfig{Type: "nats", NATS: configs.NATSKVConfig{URL: url, Bucket: bucket}}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeNATS, cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

// randBytes returns n random bytes, seeded reproducibly for bench.
func randBytes(n int) []byte {
	b := make([]byte, n)
	// Try crypto/rand; if it fails (unlikely in tests), fallback to deterministic PRNG.
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				// ensure clean
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// Use hyphens to ensure keys are valid for NATS KV
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				// Use hyphens to ensure keys are valid for NATS KV
				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
