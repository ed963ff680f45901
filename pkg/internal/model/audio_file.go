// Package model 定义持久化模型.
package model

import (
	"time"
)

// AudioFile 音频文件元数据. 记录创建后不可修改，只能整体删除.
//
// UUID 用于所有对外地址（下载、播放、详情），ID 只在内部与删除接口中使用.
// Filename = UUID + 原始扩展名，是文件存储中的键.
type AudioFile struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"                 json:"id"`
	Filename         string    `gorm:"size:255;not null;uniqueIndex"            json:"filename"         rule:"required,safe_key"`
	OriginalFilename string    `gorm:"size:512;not null"                        json:"originalFilename" rule:"required,max=512"`
	FileSize         int64     `gorm:"not null"                                 json:"fileSize"         rule:"min=0"`
	MimeType         string    `gorm:"size:255;not null"                        json:"mimeType"         rule:"required,audio_mime"`
	UUID             string    `gorm:"column:uuid;size:36;not null;uniqueIndex" json:"uuid"             rule:"required,uuid"`
	CreatedAt        time.Time `gorm:"not null;index"                           json:"createdAt"`
}

// TableName 指定表名.
func (AudioFile) TableName() string {
	return "audio_files"
}
