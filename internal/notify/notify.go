// Package notify 定义导出任务通过 Redis Pub/Sub 推送给前端的消息协议。
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Message 字段名与前端解析保持一致。
type Message struct {
	Status        string   `json:"status"`
	JobID         string   `json:"job_id"`
	CorrelationID string   `json:"correlation_id"`
	ErrorCode     int      `json:"error_code"`
	ErrorMessage  string   `json:"error_message"`
	MissingKeys   []string `json:"missing_keys,omitempty"`
}

// Publisher is the subset of the redis client used to publish.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Channel returns the pub/sub channel of one export job.
func Channel(jobID string) string {
	return "export_notify:" + jobID
}

// Publish sends msg on the job's channel.
func Publish(ctx context.Context, client Publisher, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := Channel(msg.JobID)
	if err := client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
