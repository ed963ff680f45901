package meta

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/storage/db"
)

// Gorm 基于关系数据库的元数据存储.
type Gorm struct {
	client *db.Client
	now    func() time.Time
}

var _ Store = (*Gorm)(nil)

// NewGorm 创建存储，autoMigrate 为 true 时同步表结构.
func NewGorm(ctx context.Context, client *db.Client, autoMigrate bool) (*Gorm, error) {
	if autoMigrate {
		if err := client.WithContext(ctx).AutoMigrate(&model.AudioFile{}); err != nil {
			return nil, fmt.Errorf("migrate audio_files: %w", err)
		}
	}

	return &Gorm{client: client, now: time.Now}, nil
}

// Insert 在事务内先检查 uuid/filename 是否已被占用，再写入.
func (g *Gorm) Insert(ctx context.Context, rec *model.AudioFile) error {
	rec.ID = 0
	rec.CreatedAt = g.now().UTC()

	err := g.client.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.AudioFile{}).
			Where("uuid = ? OR filename = ?", rec.UUID, rec.Filename).
			Count(&n).Error; err != nil {
			return err
		}

		if n > 0 {
			return ErrConflict
		}

		return tx.Create(rec).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: uuid=%s", ErrConflict, rec.UUID)
	default:
		return fmt.Errorf("insert audio file: %w", err)
	}
}

// GetByID 按主键查询.
func (g *Gorm) GetByID(ctx context.Context, id uint) (*model.AudioFile, error) {
	var rec model.AudioFile

	err := g.client.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		return nil, notFound(err, "id=%d", id)
	}

	return &rec, nil
}

// GetByUUID 按 uuid 列等值查询.
func (g *Gorm) GetByUUID(ctx context.Context, uuid string) (*model.AudioFile, error) {
	var rec model.AudioFile

	err := g.client.WithContext(ctx).Where("uuid = ?", uuid).Take(&rec).Error
	if err != nil {
		return nil, notFound(err, "uuid=%s", uuid)
	}

	return &rec, nil
}

// List 全表查询，created_at 倒序.
func (g *Gorm) List(ctx context.Context) ([]model.AudioFile, error) {
	recs := make([]model.AudioFile, 0)

	if err := g.client.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list audio files: %w", err)
	}

	return recs, nil
}

// DeleteByID 以 RowsAffected 判断是否删除，并发删除同一 id 只有一方得到 true.
func (g *Gorm) DeleteByID(ctx context.Context, id uint) (bool, error) {
	res := g.client.WithContext(ctx).Where("id = ?", id).Delete(&model.AudioFile{})
	if res.Error != nil {
		return false, fmt.Errorf("delete audio file %d: %w", id, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// Filenames 返回全部存储键.
func (g *Gorm) Filenames(ctx context.Context) ([]string, error) {
	names := make([]string, 0)

	if err := g.client.WithContext(ctx).
		Model(&model.AudioFile{}).
		Pluck("filename", &names).Error; err != nil {
		return nil, fmt.Errorf("list filenames: %w", err)
	}

	return names, nil
}

// Ping 检查数据库连接.
func (g *Gorm) Ping(ctx context.Context) error {
	return g.client.Ping(ctx)
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}

	return fmt.Errorf("query audio file: %w", err)
}
