package blob_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := blob.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	data := bytes.Repeat([]byte{0x49, 0x44, 0x33, 0x00}, 1024)

	n, err := store.Put(ctx, "a.mp3", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if n != int64(len(data)) {
		t.Fatalf("Put wrote %d, want %d", n, len(data))
	}

	obj, err := store.Open(ctx, "a.mp3")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Close()

	if obj.Size() != int64(len(data)) {
		t.Fatalf("Size = %d", obj.Size())
	}

	got, err := io.ReadAll(obj)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, data) {
		t.Fatal("content mismatch")
	}

	// 随机读取
	if _, err := obj.Seek(4, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4)
	if _, err := io.ReadFull(obj, buf); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(buf, data[4:8]) {
		t.Fatalf("seek read = %v", buf)
	}
}

func TestLocalOpenMissing(t *testing.T) {
	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Open(context.Background(), "nope.mp3"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("Open missing err = %v, want ErrNotFound", err)
	}
}

func TestLocalDeleteIdempotent(t *testing.T) {
	ctx := context.Background()

	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Put(ctx, "x.wav", strings.NewReader("RIFF")); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Delete(ctx, "x.wav"); err != nil {
			t.Fatalf("Delete #%d: %v", i, err)
		}
	}

	ok, err := store.Exists(ctx, "x.wav")
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

func TestLocalRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()

	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", ".", "..", "../etc/passwd", "a/b.mp3", `a\b.mp3`} {
		if _, err := store.Put(ctx, key, strings.NewReader("x")); !errors.Is(err, blob.ErrInvalidKey) {
			t.Errorf("Put(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocalFailedPutLeavesNothing(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := blob.NewLocal(root)
	if err != nil {
		t.Fatal(err)
	}

	r := io.MultiReader(strings.NewReader("partial"), failingReader{})
	if _, err := store.Put(ctx, "p.mp3", r); err == nil {
		t.Fatal("Put with failing reader succeeded")
	}

	if ok, _ := store.Exists(ctx, "p.mp3"); ok {
		t.Fatal("partial blob is visible")
	}

	entries, err := os.ReadDir(filepath.Join(root, ".tmp"))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %d", len(entries))
	}
}

func TestLocalPutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Put(ctx, "c.mp3", strings.NewReader("data")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Put canceled err = %v", err)
	}
}

func TestLocalList(t *testing.T) {
	ctx := context.Background()

	store, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"a.mp3", "b.ogg", "c"} {
		if _, err := store.Put(ctx, k, strings.NewReader(k)); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(infos) != 3 {
		t.Fatalf("List = %d entries, want 3 (temp dir must be skipped)", len(infos))
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &configs.BlobConfig{Type: configs.BlobTypeLocal}
	cfg.Local.Root = t.TempDir()

	store, err := blob.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	if _, err := blob.New(context.Background(), &configs.BlobConfig{Type: "ftp"}); err == nil {
		t.Fatal("New with unknown type succeeded")
	}
}
