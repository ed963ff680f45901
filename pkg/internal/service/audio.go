// Package service 实现音频文件的上传、查询、删除与对账，协调文件存储与元数据存储.
//
// 两个存储之间没有事务：上传先写文件再写元数据，元数据失败时删除已写入的文件；
// 删除先删文件再删元数据，文件删除失败时元数据保持不变. 残留的孤儿由 Reconcile 清理.
package service

import (
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/yeisme/audiovault/pkg/cache"
	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
)

// DownloadPath 下载地址的固定路径前缀.
const DownloadPath = "/api/audio/download/"

// Deps AudioService 的依赖. Cache 与 Publisher 可为空.
type Deps struct {
	Blob      blob.Store
	Meta      meta.Store
	Cache     *cache.Cache
	Publisher message.Publisher
	Audio     configs.AudioConfig
	Events    configs.EventsConfig
}

// AudioService 音频文件服务.
type AudioService struct {
	blob   blob.Store
	meta   meta.Store
	cache  *cache.Cache
	pub    message.Publisher
	audio  configs.AudioConfig
	events configs.EventsConfig

	now     func() time.Time
	newUUID func() string
}

// NewAudioService 创建服务.
func NewAudioService(d Deps) *AudioService {
	audio := d.Audio
	if audio.MaxUploadBytes <= 0 {
		audio.MaxUploadBytes = configs.DefaultMaxUploadBytes
	}

	return &AudioService{
		blob:    d.Blob,
		meta:    d.Meta,
		cache:   d.Cache,
		pub:     d.Publisher,
		audio:   audio,
		events:  d.Events,
		now:     time.Now,
		newUUID: uuid.NewString,
	}
}

// MaxUploadBytes 返回单文件上限.
func (s *AudioService) MaxUploadBytes() int64 {
	return s.audio.MaxUploadBytes
}

// DownloadURL 拼接公开下载地址.
func DownloadURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + DownloadPath + id
}
