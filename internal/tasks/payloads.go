package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePortfolioExport = "portfolio:export"
)

// PortfolioExportPayload 只携带任务 ID，简历快照保存在 export_jobs 表中。
type PortfolioExportPayload struct {
	JobID         string `json:"job_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewPortfolioExportTask 构造一个新的站点导出任务。
func NewPortfolioExportTask(jobID, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PortfolioExportPayload{
		JobID:         jobID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePortfolioExport, payload, asynq.MaxRetry(3)), nil
}

// ParsePortfolioExportPayload decodes the payload of an export task.
func ParsePortfolioExportPayload(t *asynq.Task) (PortfolioExportPayload, error) {
	var p PortfolioExportPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal payload: %w", err)
	}
	if p.JobID == "" {
		return p, fmt.Errorf("payload missing job_id")
	}
	return p, nil
}
