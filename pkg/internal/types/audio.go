// Package types 定义 HTTP 接口的请求与响应结构.
package types

import (
	"time"

	"github.com/yeisme/audiovault/pkg/internal/model"
)

// AudioFileInfo 对外返回的音频文件信息.
// createdAt 为 ISO-8601 (RFC3339, UTC) 字符串.
type AudioFileInfo struct {
	ID               uint   `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"originalFilename"`
	FileSize         int64  `json:"fileSize"`
	MimeType         string `json:"mimeType"`
	UUID             string `json:"uuid"`
	CreatedAt        string `json:"createdAt"`
	DownloadURL      string `json:"downloadUrl"`
}

// UploadResponse 上传成功后的响应.
type UploadResponse struct {
	AudioFileInfo

	FormattedSize string `json:"formattedSize"`
}

// ErrorResponse 统一的错误响应.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse 组件健康检查结果.
type HealthResponse struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// ReconcileResponse 对账结果.
type ReconcileResponse struct {
	DryRun          bool     `json:"dryRun"`
	Blobs           int      `json:"blobs"`
	Records         int      `json:"records"`
	OrphanBlobs     []string `json:"orphanBlobs"`
	RemovedBlobs    []string `json:"removedBlobs"`
	MissingBlobs    []string `json:"missingBlobs"`
	PrunedRecordIDs []uint   `json:"prunedRecordIds"`
	Errors          []string `json:"errors,omitempty"`
}

// ISOTime 把时间格式化为毫秒精度的 UTC ISO-8601 字符串.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// NewAudioFileInfo 由模型与下载地址构造响应.
func NewAudioFileInfo(rec *model.AudioFile, downloadURL string) AudioFileInfo {
	return AudioFileInfo{
		ID:               rec.ID,
		Filename:         rec.Filename,
		OriginalFilename: rec.OriginalFilename,
		FileSize:         rec.FileSize,
		MimeType:         rec.MimeType,
		UUID:             rec.UUID,
		CreatedAt:        ISOTime(rec.CreatedAt),
		DownloadURL:      downloadURL,
	}
}
