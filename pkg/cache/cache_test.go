package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/audiovault/pkg/cache"
	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/storage/kv"
)

func newStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, &configs.KVConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("memory kv: %v", err)
	}

	return store
}

func sampleFile() model.AudioFile {
	return model.AudioFile{
		ID:               1,
		UUID:             "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Filename:         "f47ac10b-58cc-4372-a567-0e02b2c3d479.mp3",
		OriginalFilename: "song.mp3",
		FileSize:         2048,
		MimeType:         "audio/mpeg",
		CreatedAt:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestCache_GetSet 测试 Get/Set.
func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t), cache.WithPrefix("audio:"))

	_, err := cache.Get[model.AudioFile](ctx, c, "missing")
	if !cache.IsMiss(err) {
		t.Fatalf("Get missing err = %v, want miss", err)
	}

	rec := sampleFile()
	if err := cache.Set(ctx, c, rec.UUID, rec, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := cache.Get[model.AudioFile](ctx, c, rec.UUID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.ID != rec.ID || got.Filename != rec.Filename || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("Get = %+v, want %+v", got, rec)
	}
}

// TestCache_Prefix 测试键前缀.
func TestCache_Prefix(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := cache.NewCache(store, cache.WithPrefix("audio:uuid:"))

	if err := cache.Set(ctx, c, "abc", 1, 0); err != nil {
		t.Fatal(err)
	}

	if ok, _ := store.Exists(ctx, "audio:uuid:abc"); !ok {
		t.Fatal("prefixed key not written")
	}

	if err := store.Set(ctx, "other", []byte("1"), 0); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if ok, _ := c.Exists(ctx, "abc"); ok {
		t.Error("key survived Clear")
	}

	if ok, _ := store.Exists(ctx, "other"); !ok {
		t.Error("Clear removed a key outside the namespace")
	}
}

// TestCache_Delete 测试 Delete.
func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t))

	if err := cache.Set(ctx, c, "k", "v", 0); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}

	if ok, err := c.Exists(ctx, "k"); err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

// TestExpiredEntryIsMiss 测试过期条目按未命中处理，且重复读取不会出错.
func TestExpiredEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newStore(t))

	if err := cache.Set(ctx, c, "f47ac10b", sampleFile(), 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if _, err := cache.Get[model.AudioFile](ctx, c, "f47ac10b"); !cache.IsMiss(err) {
			t.Fatalf("Get after expiry err = %v, want miss", err)
		}
	}
}
