package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// AudioRef 标识一个音频文件.
type AudioRef struct {
	ID          uint   `json:"id,omitempty"`
	UUID        string `json:"uuid,omitempty"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// AudioStoredPayload 上传完成.
type AudioStoredPayload struct {
	Audio            AudioRef `json:"audio"`
	OriginalFilename string   `json:"original_filename,omitempty"`
	DownloadURL      string   `json:"download_url,omitempty"`
}

// AudioDeletedPayload 删除完成.
type AudioDeletedPayload struct {
	Audio AudioRef `json:"audio"`
}

// OrphanKind 孤儿类型.
type OrphanKind string

const (
	// OrphanBlob 有文件无记录.
	OrphanBlob OrphanKind = "blob"
	// OrphanRecord 有记录无文件.
	OrphanRecord OrphanKind = "record"
)

// AudioOrphanPayload 对账发现的孤儿.
type AudioOrphanPayload struct {
	Kind    OrphanKind `json:"kind"`
	Audio   AudioRef   `json:"audio"`
	Removed bool       `json:"removed"`
	DryRun  bool       `json:"dry_run,omitempty"`
}
