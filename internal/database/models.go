package database

import (
	"time"

	"gorm.io/datatypes"
)

// ExportJob 记录一次异步导出：提交时的简历快照、状态以及生成结果。
type ExportJob struct {
	ID            string         `gorm:"primaryKey;size:36"`
	ClientKey     string         `gorm:"index;size:128"`
	Record        datatypes.JSON `gorm:"type:jsonb"`
	Status        string         `gorm:"size:32;index"`
	Attempt       int            // 最近一次领取任务时 asynq 的重试序号
	ObjectKey     string         `gorm:"size:512"`
	ArchiveSize   int64
	Diagnostics   datatypes.JSON `gorm:"type:jsonb"` // 被跳过的图片及原因
	PreviewKey    string         `gorm:"size:512"`
	Error         string         `gorm:"size:1024"`
	CorrelationID string         `gorm:"size:64"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FinishedAt    *time.Time
}
