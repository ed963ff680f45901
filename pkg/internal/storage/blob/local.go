package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yeisme/audiovault/pkg/configs"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
	// tmpDir 根目录下存放未完成写入的子目录，List 时跳过.
	tmpDir = ".tmp"
)

func init() {
	RegisterFactory(configs.BlobTypeLocal, func(_ context.Context, cfg *configs.BlobConfig) (Store, error) {
		return NewLocal(cfg.Local.Root)
	})
}

// Local 本地文件系统存储，所有文件平铺在 root 下.
type Local struct {
	root string
}

var _ Store = (*Local)(nil)

// NewLocal 创建本地存储，root 不存在时创建.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, errors.New("blob: empty local root")
	}

	if err := os.MkdirAll(filepath.Join(root, tmpDir), dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", root, err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &Local{root: abs}, nil
}

// Root 返回存储根目录.
func (l *Local) Root() string { return l.root }

func (l *Local) path(key string) (string, error) {
	if err := CheckKey(key); err != nil {
		return "", err
	}

	return filepath.Join(l.root, key), nil
}

// Put 先写入 .tmp 下的临时文件，完成后 rename 到目标位置.
func (l *Local) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	dest, err := l.path(key)
	if err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(filepath.Join(l.root, tmpDir), key+".*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	tmp := f.Name()

	n, werr := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if werr == nil {
		werr = f.Sync()
	}

	cerr := f.Close()

	if werr != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("write %s: %w", key, werr)
	}

	if cerr != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("close %s: %w", key, cerr)
	}

	if err := os.Chmod(tmp, filePerm); err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("chmod %s: %w", key, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("rename %s: %w", key, err)
	}

	return n, nil
}

// Open 打开文件，返回的 *os.File 支持 Seek.
func (l *Local) Open(_ context.Context, key string) (Object, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return &localObject{File: f, size: info.Size(), mod: info.ModTime()}, nil
}

// Delete 删除文件，不存在时返回 nil.
func (l *Local) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}

	return nil
}

// Exists 判断文件是否存在.
func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	p, err := l.path(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return !info.IsDir(), nil
}

// List 列出根目录下的普通文件.
func (l *Local) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	out := make([]Info, 0, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		out = append(out, Info{Key: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	return out, nil
}

// Ping 检查根目录可访问.
func (l *Local) Ping(_ context.Context) error {
	info, err := os.Stat(l.root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("storage root %q is not a directory", l.root)
	}

	return nil
}

// Close 本地存储无需释放.
func (l *Local) Close() error { return nil }

type localObject struct {
	*os.File

	size int64
	mod  time.Time
}

func (o *localObject) Size() int64        { return o.size }
func (o *localObject) ModTime() time.Time { return o.mod }

// ctxReader 在每次 Read 前检查 ctx，客户端断开时尽快停止写入.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
