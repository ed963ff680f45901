package meta

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yeisme/audiovault/pkg/internal/model"
)

// Memory 进程内元数据存储，id 由单调计数器分配.
type Memory struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]model.AudioFile
	byUUID map[string]uint
	byName map[string]uint
	now    func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory 创建空存储.
func NewMemory() *Memory {
	return &Memory{
		byID:   make(map[uint]model.AudioFile),
		byUUID: make(map[string]uint),
		byName: make(map[string]uint),
		now:    time.Now,
	}
}

// Insert 插入记录.
func (m *Memory) Insert(_ context.Context, rec *model.AudioFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byUUID[rec.UUID]; ok {
		return fmt.Errorf("%w: uuid=%s", ErrConflict, rec.UUID)
	}

	if _, ok := m.byName[rec.Filename]; ok {
		return fmt.Errorf("%w: filename=%s", ErrConflict, rec.Filename)
	}

	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = m.now().UTC()

	m.byID[rec.ID] = *rec
	m.byUUID[rec.UUID] = rec.ID
	m.byName[rec.Filename] = rec.ID

	return nil
}

// GetByID 按 id 查询.
func (m *Memory) GetByID(_ context.Context, id uint) (*model.AudioFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}

	return &rec, nil
}

// GetByUUID 按 uuid 查询，map 键比较即精确匹配.
func (m *Memory) GetByUUID(_ context.Context, uuid string) (*model.AudioFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUUID[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: uuid=%s", ErrNotFound, uuid)
	}

	rec := m.byID[id]

	return &rec, nil
}

// List 返回副本，最新的在前.
func (m *Memory) List(_ context.Context) ([]model.AudioFile, error) {
	m.mu.RLock()

	out := make([]model.AudioFile, 0, len(m.byID))
	for _, rec := range m.byID {
		out = append(out, rec)
	}

	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID > out[j].ID
	})

	return out, nil
}

// DeleteByID 删除记录.
func (m *Memory) DeleteByID(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return false, nil
	}

	delete(m.byID, id)
	delete(m.byUUID, rec.UUID)
	delete(m.byName, rec.Filename)

	return true, nil
}

// Filenames 返回全部存储键.
func (m *Memory) Filenames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.byName))
	for name := range m.byName {
		out = append(out, name)
	}

	sort.Strings(out)

	return out, nil
}

// Ping 内存存储总是可用.
func (m *Memory) Ping(_ context.Context) error { return nil }
