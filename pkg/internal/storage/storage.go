// Package storage 聚合所有存储后端：文件字节、元数据、缓存 KV 与消息队列.
//
// Example:
//
//	mgr, err := storage.New(ctx, &cfg, storage.Options{Registerer: metrics.GetRegistry()})
//	if err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	svc := service.NewAudioService(mgr.Blob, mgr.Meta, ...)
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
	dbc "github.com/yeisme/audiovault/pkg/internal/storage/db"
	"github.com/yeisme/audiovault/pkg/internal/storage/kv"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
	"github.com/yeisme/audiovault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/audiovault/pkg/log"
)

// Component 可做健康检查的组件名.
type Component string

const (
	ComponentDB   Component = "db"
	ComponentBlob Component = "blob"
	ComponentKV   Component = "kv"
	ComponentMQ   Component = "mq"
)

// ErrDisabled 组件未启用.
var ErrDisabled = errors.New("storage: component disabled")

// Manager 聚合所有存储资源. DB 在 db.type=memory 时为 nil；KV 与 MQ 初始化失败时降级为 nil.
type Manager struct {
	Blob blob.Store
	Meta meta.Store
	DB   *dbc.Client
	KV   *kv.Client
	MQ   *mq.Client
}

// Options 构造选项.
type Options struct {
	// Registerer 非空时注册 gorm 与 watermill 指标.
	Registerer prometheus.Registerer
	// SkipKV 与 SkipMQ 供 CLI 子命令只打开需要的后端.
	SkipKV bool
	SkipMQ bool
}

// New 按配置初始化全部存储. 文件存储与元数据存储是必需的，失败即返回错误.
func New(ctx context.Context, cfg *configs.AppConfig, opts Options) (*Manager, error) {
	m := &Manager{}

	b, err := blob.New(ctx, &cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	m.Blob = b

	if err := m.initMeta(ctx, &cfg.DB, opts); err != nil {
		_ = m.Close()
		return nil, err
	}

	if !opts.SkipKV {
		if c, err := kv.NewKVClient(ctx, &cfg.KV); err != nil {
			nlog.Logger().Warn().Err(err).Str("type", cfg.KV.Type).Msg("kv unavailable, lookup cache disabled")
		} else {
			m.KV = c
		}
	}

	if !opts.SkipMQ && cfg.Events.Enabled {
		if c, err := mq.New(ctx, &cfg.MQ, mq.Options{Registerer: opts.Registerer}); err != nil {
			nlog.Logger().Warn().Err(err).Str("type", string(cfg.MQ.Type)).Msg("mq unavailable, events disabled")
		} else {
			m.MQ = c
		}
	}

	nlog.Logger().Info().
		Str("blob", string(cfg.Blob.Type)).
		Str("db", cfg.DB.GetDBType()).
		Bool("kv", m.KV != nil).
		Bool("mq", m.MQ != nil).
		Msg("storage manager initialized")

	return m, nil
}

func (m *Manager) initMeta(ctx context.Context, cfg *configs.DBConfig, opts Options) error {
	if cfg.Type == configs.Memory {
		m.Meta = meta.NewMemory()
		return nil
	}

	client, err := dbc.New(ctx, cfg, dbc.Options{Metrics: opts.Registerer != nil})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	m.DB = client

	store, err := meta.NewGorm(ctx, client, cfg.AutoMigrate)
	if err != nil {
		return fmt.Errorf("init metadata store: %w", err)
	}

	m.Meta = store

	return nil
}

// Check 检查单个组件.
func (m *Manager) Check(ctx context.Context, c Component) error {
	switch c {
	case ComponentDB:
		if m.Meta == nil {
			return ErrDisabled
		}

		return m.Meta.Ping(ctx)
	case ComponentBlob:
		if m.Blob == nil {
			return ErrDisabled
		}

		return m.Blob.Ping(ctx)
	case ComponentKV:
		if m.KV == nil {
			return ErrDisabled
		}

		return m.KV.Ping(ctx)
	case ComponentMQ:
		if m.MQ == nil {
			return ErrDisabled
		}

		return m.MQ.Ping(ctx)
	default:
		return fmt.Errorf("unknown component %q", c)
	}
}

// Close 释放全部资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	if m.Blob != nil {
		errs = append(errs, m.Blob.Close())
	}

	return errors.Join(errs...)
}
