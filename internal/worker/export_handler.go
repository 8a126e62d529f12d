package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"gorm.io/datatypes"

	"portfolioX/internal/database"
	"portfolioX/internal/errcode"
	"portfolioX/internal/export"
	"portfolioX/internal/notify"
	"portfolioX/internal/portfolio"
	"portfolioX/internal/preview"
	"portfolioX/internal/site"
	"portfolioX/internal/storage"
	"portfolioX/internal/tasks"
)

// errInvalidSnapshot 表示任务表里的记录快照无法解析，重试没有意义。
var errInvalidSnapshot = errors.New("invalid record snapshot")

// JobStore 是 handler 依赖的任务表操作。
type JobStore interface {
	Get(ctx context.Context, id string) (*database.ExportJob, error)
	MarkGenerating(ctx context.Context, job *database.ExportJob, attempt int) error
	MarkDone(ctx context.Context, job *database.ExportJob, objectKey string, size int64, diagnostics datatypes.JSON) error
	MarkFailed(ctx context.Context, job *database.ExportJob, reason string) error
	SetPreview(ctx context.Context, job *database.ExportJob, key string) error
}

// ObjectStore 上传归档与预览图；登记失败时删除已上传的归档。
type ObjectStore interface {
	storage.Uploader
	DeleteObject(ctx context.Context, objectKey string) error
}

// Previewer renders an HTML document to a JPEG.
type Previewer interface {
	Capture(ctx context.Context, html string) ([]byte, error)
}

// ExportTaskHandler 负责消费站点导出任务。
type ExportTaskHandler struct {
	jobs      JobStore
	exporter  *export.Exporter
	storage   ObjectStore
	publisher notify.Publisher
	previewer Previewer
	logger    *slog.Logger

	attempt func(ctx context.Context) (retry int, final bool)
}

// NewExportTaskHandler 创建任务处理器。previewer 为 nil 时不生成预览图。
func NewExportTaskHandler(
	jobs JobStore,
	exporter *export.Exporter,
	storageClient ObjectStore,
	publisher notify.Publisher,
	previewer Previewer,
	logger *slog.Logger,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		jobs:      jobs,
		exporter:  exporter,
		storage:   storageClient,
		publisher: publisher,
		previewer: previewer,
		logger:    logger,
		attempt:   asynqAttempt,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	payload, err := tasks.ParsePortfolioExportPayload(t)
	if err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("job_id", payload.JobID),
	)
	log.Info("starting portfolio export task")

	job, err := h.jobs.Get(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			log.Warn("export job not found, skipping task")
			return nil
		}
		log.Error("query export job failed", slog.Any("error", err))
		return err
	}
	if export.Status(job.Status) == export.StatusDone {
		log.Info("export job already done, skipping task")
		return nil
	}

	retry, final := h.attempt(ctx)
	if err := h.jobs.MarkGenerating(ctx, job, retry); err != nil {
		log.Warn("claim export job failed", slog.Any("error", err))
		return nil
	}
	h.publish(ctx, log, notify.Message{
		Status:        string(export.StatusGenerating),
		JobID:         job.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	})

	defer func() {
		if retErr == nil {
			return
		}
		h.fail(ctx, log, job, payload, retErr, final || errors.Is(retErr, asynq.SkipRetry))
	}()

	var record portfolio.Record
	if err := json.Unmarshal(job.Record, &record); err != nil {
		log.Error("decode record snapshot failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w: %v", asynq.SkipRetry, errInvalidSnapshot, err)
	}

	saver := storage.NewArchiveSaver(h.storage, job.ID)
	result, err := h.exporter.Export(ctx, record, saver)
	if err != nil {
		log.Error("export portfolio failed", slog.Any("error", err))
		return err
	}

	var diagnostics datatypes.JSON
	if len(result.Diagnostics) > 0 {
		raw, err := json.Marshal(result.Diagnostics)
		if err != nil {
			return fmt.Errorf("marshal diagnostics: %w", err)
		}
		diagnostics = datatypes.JSON(raw)
	}
	if err := h.jobs.MarkDone(ctx, job, saver.Key, saver.Size, diagnostics); err != nil {
		log.Error("update export job failed", slog.Any("error", err))
		// 行已被其他 attempt 接管时，对象键相同，不能删。
		if errors.Is(err, database.ErrInvalidTransition) {
			return err
		}
		if delErr := h.storage.DeleteObject(context.WithoutCancel(ctx), saver.Key); delErr != nil {
			log.Warn("remove orphaned archive failed", slog.String("object_key", saver.Key), slog.Any("error", delErr))
		}
		return err
	}

	msg := notify.Message{
		Status:        string(export.StatusDone),
		JobID:         job.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if missing := result.MissingPaths(); len(missing) > 0 {
		msg.ErrorCode = errcode.ResourceMissing
		msg.ErrorMessage = "部分图片无效或过大，已自动跳过并继续导出"
		msg.MissingKeys = missing
		log.Warn("portfolio exported with missing images",
			slog.Int("missing_count", len(missing)),
			slog.Any("missing_keys", missing),
		)
	}
	h.publish(ctx, log, msg)

	if h.previewer != nil {
		if err := h.generatePreview(ctx, job, record); err != nil {
			log.Warn("generate portfolio preview failed", slog.Any("error", err))
		}
	}

	log.Info("portfolio export task completed",
		slog.String("object_key", saver.Key),
		slog.Int64("size", saver.Size),
	)
	return nil
}

// fail 只在不会再重试时把任务标记为 failed 并推送错误；
// 之前的失败保持 generating，由下一次 attempt 重新领取。
func (h *ExportTaskHandler) fail(ctx context.Context, log *slog.Logger, job *database.ExportJob, payload tasks.PortfolioExportPayload, cause error, final bool) {
	reason := strings.TrimSpace(cause.Error())
	if !final {
		log.Warn("export attempt failed, will retry",
			slog.Int("attempt", job.Attempt),
			slog.String("reason", reason),
		)
		return
	}

	ctx = context.WithoutCancel(ctx)
	if export.Status(job.Status) == export.StatusGenerating {
		if err := h.jobs.MarkFailed(ctx, job, reason); err != nil {
			log.Error("mark export job failed", slog.Any("error", err))
		}
	}
	code := errcode.SystemError
	if errors.Is(cause, errInvalidSnapshot) {
		code = errcode.InvalidRecord
	}
	h.publish(ctx, log, notify.Message{
		Status:        string(export.StatusFailed),
		JobID:         job.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     code,
		ErrorMessage:  reason,
	})
}

func (h *ExportTaskHandler) publish(ctx context.Context, log *slog.Logger, msg notify.Message) {
	if h.publisher == nil {
		return
	}
	if err := notify.Publish(ctx, h.publisher, msg); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
	}
}

func (h *ExportTaskHandler) generatePreview(ctx context.Context, job *database.ExportJob, record portfolio.Record) error {
	plan := site.PlanImages(record)
	markup, err := site.RenderMarkupWithPlan(record, plan)
	if err != nil {
		return fmt.Errorf("render markup: %w", err)
	}
	stylesheet, err := site.RenderStylesheet(record.Theme.ColorHex)
	if err != nil {
		return fmt.Errorf("render stylesheet: %w", err)
	}

	shot, err := h.previewer.Capture(ctx, preview.Document(markup, stylesheet, plan.Assets()))
	if err != nil {
		return fmt.Errorf("capture preview screenshot: %w", err)
	}

	objectName := storage.PreviewKey(job.ID)
	if _, err := h.storage.Upload(ctx, objectName, bytes.NewReader(shot), int64(len(shot)), "image/jpeg"); err != nil {
		return fmt.Errorf("upload preview image: %w", err)
	}
	return h.jobs.SetPreview(ctx, job, objectName)
}

// asynqAttempt 返回当前重试序号以及是否为最后一次尝试。
// 不在 asynq 上下文中时视为首次、非最后一次。
func asynqAttempt(ctx context.Context) (retry int, final bool) {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return 0, false
	}
	return retryCount, retryCount >= maxRetry
}
