package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcomes. "skipped" 表示返回了 asynq.SkipRetry，不会再重试。
const (
	TaskSucceeded = "succeeded"
	TaskRetried   = "retried"
	TaskSkipped   = "skipped"
)

var (
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "导出任务处理次数，按任务类型与结果区分。",
		},
		[]string{"task_type", "outcome"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "单个任务处理耗时（秒）。",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"task_type"},
	)

	tasksInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_in_progress",
			Help:      "当前正在处理的任务数量。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware wraps every handler on the worker mux.
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			tasksInProgress.WithLabelValues(taskType).Inc()
			defer tasksInProgress.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			tasksTotal.WithLabelValues(taskType, taskOutcome(err)).Inc()
			return err
		})
	}
}

func taskOutcome(err error) string {
	switch {
	case err == nil:
		return TaskSucceeded
	case errors.Is(err, asynq.SkipRetry):
		return TaskSkipped
	default:
		return TaskRetried
	}
}
