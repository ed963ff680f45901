// Package meta 提供音频文件元数据的存储抽象.
//
// 记录按自增 id 与 uuid 双索引，uuid 与 filename 全局唯一；
// 列表按创建时间倒序（同一时刻按 id 倒序）.
package meta

import (
	"context"
	"errors"

	"github.com/yeisme/audiovault/pkg/internal/model"
)

var (
	// ErrNotFound 记录不存在.
	ErrNotFound = errors.New("meta: record not found")
	// ErrConflict uuid 或 filename 已存在.
	ErrConflict = errors.New("meta: record already exists")
)

// Store 元数据存储接口.
type Store interface {
	// Insert 插入记录，分配 ID 与 CreatedAt. 唯一键冲突返回 ErrConflict.
	Insert(ctx context.Context, rec *model.AudioFile) error
	// GetByID 按 id 查询.
	GetByID(ctx context.Context, id uint) (*model.AudioFile, error)
	// GetByUUID 按 uuid 精确匹配查询.
	GetByUUID(ctx context.Context, uuid string) (*model.AudioFile, error)
	// List 返回全部记录，最新的在前.
	List(ctx context.Context) ([]model.AudioFile, error)
	// DeleteByID 删除记录，返回是否确实删除了一行.
	DeleteByID(ctx context.Context, id uint) (bool, error)
	// Filenames 返回全部记录的存储键.
	Filenames(ctx context.Context) ([]string, error)
	// Ping 检查后端可用.
	Ping(ctx context.Context) error
}
