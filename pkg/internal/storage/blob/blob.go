// Package blob 提供音频文件字节的存储抽象，键为扁平文件名（uuid + 扩展名）.
//
// 支持的后端：
//   - local：本地文件系统，临时文件 + rename 保证原子写入
//   - s3：MinIO / S3 兼容对象存储
//
// Example:
//
//	store, err := blob.New(ctx, &cfg.Blob)
//	n, err := store.Put(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479.mp3", r)
//	obj, err := store.Open(ctx, key)
//	defer obj.Close()
//	http.ServeContent(w, req, name, obj.ModTime(), obj)
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/rule"
)

var (
	// ErrNotFound 键不存在.
	ErrNotFound = errors.New("blob: not found")
	// ErrInvalidKey 键不是合法的扁平文件名.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// Object 可随机读取的已存储文件，用于整段下载与 Range 请求.
type Object interface {
	io.ReadSeekCloser
	Size() int64
	ModTime() time.Time
}

// Info 列举时返回的文件信息.
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store 文件存储接口.
type Store interface {
	// Put 以流的方式写入 key，返回写入字节数. 写入失败时 key 不可见.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open 打开 key 以供读取，不存在返回 ErrNotFound.
	Open(ctx context.Context, key string) (Object, error)
	// Delete 删除 key，key 不存在视为成功.
	Delete(ctx context.Context, key string) error
	// Exists 判断 key 是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// List 列出全部 key.
	List(ctx context.Context) ([]Info, error)
	// Ping 检查后端可用.
	Ping(ctx context.Context) error
	// Close 释放资源.
	Close() error
}

// Factory 定义创建 Store 的工厂函数类型.
type Factory func(ctx context.Context, cfg *configs.BlobConfig) (Store, error)

var factories = map[configs.BlobType]Factory{}

// RegisterFactory 注册存储后端工厂.
func RegisterFactory(t configs.BlobType, f Factory) {
	factories[t] = f
}

// GetRegisteredTypes 返回已注册的后端类型（有序）.
func GetRegisteredTypes() []configs.BlobType {
	types := make([]configs.BlobType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// New 根据配置创建 Store.
func New(ctx context.Context, cfg *configs.BlobConfig) (Store, error) {
	f, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported blob type: %s", cfg.Type)
	}

	return f(ctx, cfg)
}

// CheckKey 校验 key.
func CheckKey(key string) error {
	if !rule.IsSafeKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}
