package meta_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/storage/db"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
)

func newGormStore(t *testing.T) meta.Store {
	t.Helper()

	ctx := context.Background()
	cfg := &configs.DBConfig{
		Type:         configs.SQLite,
		DSN:          filepath.Join(t.TempDir(), "meta.db"),
		Database:     "test",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	client, err := db.New(ctx, cfg, db.Options{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	store, err := meta.NewGorm(ctx, client, true)
	if err != nil {
		t.Fatalf("NewGorm: %v", err)
	}

	return store
}

func backends(t *testing.T) map[string]meta.Store {
	return map[string]meta.Store{
		"memory": meta.NewMemory(),
		"gorm":   newGormStore(t),
	}
}

func newRecord(ext string) *model.AudioFile {
	id := uuid.NewString()

	return &model.AudioFile{
		UUID:             id,
		Filename:         id + ext,
		OriginalFilename: "track" + ext,
		FileSize:         42,
		MimeType:         "audio/mpeg",
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(".mp3")
			if err := s.Insert(ctx, rec); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			if rec.ID == 0 || rec.CreatedAt.IsZero() {
				t.Fatalf("Insert did not assign id/createdAt: %+v", rec)
			}

			byID, err := s.GetByID(ctx, rec.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}

			if byID.UUID != rec.UUID || byID.FileSize != 42 {
				t.Fatalf("GetByID = %+v", byID)
			}

			byUUID, err := s.GetByUUID(ctx, rec.UUID)
			if err != nil {
				t.Fatalf("GetByUUID: %v", err)
			}

			if byUUID.ID != rec.ID {
				t.Fatalf("GetByUUID id = %d, want %d", byUUID.ID, rec.ID)
			}

			if _, err := s.GetByID(ctx, rec.ID+100); !errors.Is(err, meta.ErrNotFound) {
				t.Fatalf("GetByID missing err = %v", err)
			}
		})
	}
}

func TestGetByUUIDExactMatch(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(".wav")
			if err := s.Insert(ctx, rec); err != nil {
				t.Fatal(err)
			}

			for _, q := range []string{rec.UUID[:8], rec.UUID[1:], rec.Filename, rec.UUID + "0", "%" + rec.UUID[4:]} {
				if _, err := s.GetByUUID(ctx, q); !errors.Is(err, meta.ErrNotFound) {
					t.Errorf("GetByUUID(%q) err = %v, want ErrNotFound", q, err)
				}
			}
		})
	}
}

func TestInsertConflict(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(".ogg")
			if err := s.Insert(ctx, rec); err != nil {
				t.Fatal(err)
			}

			dup := newRecord(".ogg")
			dup.UUID = rec.UUID

			if err := s.Insert(ctx, dup); !errors.Is(err, meta.ErrConflict) {
				t.Fatalf("duplicate uuid err = %v, want ErrConflict", err)
			}

			dupName := newRecord(".ogg")
			dupName.Filename = rec.Filename

			if err := s.Insert(ctx, dupName); !errors.Is(err, meta.ErrConflict) {
				t.Fatalf("duplicate filename err = %v, want ErrConflict", err)
			}

			got, err := s.GetByUUID(ctx, rec.UUID)
			if err != nil {
				t.Fatal(err)
			}

			if got.OriginalFilename != rec.OriginalFilename || got.ID != rec.ID {
				t.Fatalf("original record overwritten: %+v", got)
			}
		})
	}
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var last *model.AudioFile

			for i := 0; i < 5; i++ {
				last = newRecord(fmt.Sprintf(".m%d", i))
				if err := s.Insert(ctx, last); err != nil {
					t.Fatal(err)
				}
			}

			recs, err := s.List(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if len(recs) != 5 {
				t.Fatalf("List len = %d", len(recs))
			}

			if recs[0].ID != last.ID {
				t.Fatalf("first = %d, want most recent %d", recs[0].ID, last.ID)
			}

			for i := 1; i < len(recs); i++ {
				if recs[i].ID >= recs[i-1].ID {
					t.Fatalf("List not newest-first at %d: %d after %d", i, recs[i].ID, recs[i-1].ID)
				}
			}

			names, err := s.Filenames(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if len(names) != 5 {
				t.Fatalf("Filenames len = %d", len(names))
			}
		})
	}
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(".flac")
			if err := s.Insert(ctx, rec); err != nil {
				t.Fatal(err)
			}

			ok, err := s.DeleteByID(ctx, rec.ID)
			if err != nil || !ok {
				t.Fatalf("DeleteByID = %v, %v", ok, err)
			}

			ok, err = s.DeleteByID(ctx, rec.ID)
			if err != nil || ok {
				t.Fatalf("second DeleteByID = %v, %v", ok, err)
			}

			if _, err := s.GetByUUID(ctx, rec.UUID); !errors.Is(err, meta.ErrNotFound) {
				t.Fatalf("GetByUUID after delete err = %v", err)
			}
		})
	}
}

func TestConcurrentDelete(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(".mp3")
			if err := s.Insert(ctx, rec); err != nil {
				t.Fatal(err)
			}

			const workers = 8

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)

			for i := 0; i < workers; i++ {
				wg.Add(1)

				go func() {
					defer wg.Done()

					ok, err := s.DeleteByID(ctx, rec.ID)
					if err != nil {
						t.Errorf("DeleteByID: %v", err)
						return
					}

					if ok {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}

			wg.Wait()

			if wins != 1 {
				t.Fatalf("winners = %d, want 1", wins)
			}
		})
	}
}
