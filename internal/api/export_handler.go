package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"

	"portfolioX/internal/api/middleware"
	"portfolioX/internal/archive"
	"portfolioX/internal/config"
	"portfolioX/internal/database"
	"portfolioX/internal/export"
	"portfolioX/internal/portfolio"
	"portfolioX/internal/storage"
	"portfolioX/internal/tasks"
)

const (
	maxRecordBytes   = 64 << 20
	downloadLinkTTL  = 5 * time.Minute
	clientIDHeader   = "X-Client-ID"
	warningsHeader   = "X-Export-Warnings"
	rateLimitWindow  = time.Hour
	archiveMediaType = "application/zip"
)

type jobStore interface {
	Create(ctx context.Context, job *database.ExportJob) error
	Get(ctx context.Context, id string) (*database.ExportJob, error)
}

type taskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type archiveLinker interface {
	Exists(ctx context.Context, objectKey string) (bool, error)
	PresignDownload(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
}

// ExportHandler 负责站点导出相关的 API：同步下载、异步任务与下载链接。
type ExportHandler struct {
	exporter    *export.Exporter
	jobs        jobStore
	enqueuer    taskEnqueuer
	storage     archiveLinker
	redisClient *redis.Client
	cfg         config.ExportConfig
}

// NewExportHandler 构造 ExportHandler。
func NewExportHandler(
	exporter *export.Exporter,
	jobs jobStore,
	enqueuer taskEnqueuer,
	storageClient archiveLinker,
	redisClient *redis.Client,
	cfg config.ExportConfig,
) *ExportHandler {
	return &ExportHandler{
		exporter:    exporter,
		jobs:        jobs,
		enqueuer:    enqueuer,
		storage:     storageClient,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

type jobResponse struct {
	ID          string               `json:"id"`
	Status      string               `json:"status"`
	Filename    string               `json:"filename"`
	Size        int64                `json:"size,omitempty"`
	Diagnostics []archive.Diagnostic `json:"diagnostics,omitempty"`
	Error       string               `json:"error,omitempty"`
	HasPreview  bool                 `json:"has_preview"`
	CreatedAt   time.Time            `json:"created_at"`
	FinishedAt  *time.Time           `json:"finished_at,omitempty"`
}

// ExportPortfolio 同步生成站点压缩包，并作为附件直接返回。
func (h *ExportHandler) ExportPortfolio(c *gin.Context) {
	log := middleware.LoggerFromContext(c)
	client := clientKey(c)

	record, ok := bindRecord(c)
	if !ok {
		return
	}
	if !h.allow(c, client) {
		return
	}

	release, err := acquireLock(c.Request.Context(), h.redisClient, "export_lock:"+client, h.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, errLockHeld) {
			Conflict(c, "an export is already in progress")
			return
		}
		log.Error("acquire export lock", slog.Any("error", err))
		Internal(c, "failed to start export")
		return
	}
	defer release()

	attachment := &attachmentSaver{}
	result, err := h.exporter.Export(c.Request.Context(), record, attachment)
	if err != nil {
		log.Error("export portfolio", slog.Any("error", err))
		Internal(c, "failed to export portfolio")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, attachment.filename))
	c.Header(warningsHeader, strconv.Itoa(len(result.Diagnostics)))
	c.Data(http.StatusOK, archiveMediaType, attachment.data)
}

// CreateExportJob 保存简历快照并将导出任务入队，立即返回 202。
func (h *ExportHandler) CreateExportJob(c *gin.Context) {
	log := middleware.LoggerFromContext(c)
	client := clientKey(c)

	record, ok := bindRecord(c)
	if !ok {
		return
	}
	if !h.allow(c, client) {
		return
	}

	snapshot, err := json.Marshal(record)
	if err != nil {
		Internal(c, "failed to encode record")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	job := &database.ExportJob{
		ID:            uuid.NewString(),
		ClientKey:     client,
		Record:        datatypes.JSON(snapshot),
		CorrelationID: correlationID,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		log.Error("create export job", slog.Any("error", err))
		Internal(c, "failed to create export job")
		return
	}

	task, err := tasks.NewPortfolioExportTask(job.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}
	info, err := h.enqueuer.Enqueue(task)
	if err != nil {
		log.Error("enqueue export task", slog.Any("error", err))
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "export request accepted",
		"job_id":  job.ID,
		"task_id": info.ID,
		"status":  job.Status,
	})
}

// GetExportJob 返回导出任务的状态与被跳过的图片。
func (h *ExportHandler) GetExportJob(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	resp := jobResponse{
		ID:         job.ID,
		Status:     job.Status,
		Filename:   export.ArchiveFilename,
		Size:       job.ArchiveSize,
		Error:      job.Error,
		HasPreview: job.PreviewKey != "",
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if len(job.Diagnostics) > 0 {
		if err := json.Unmarshal(job.Diagnostics, &resp.Diagnostics); err != nil {
			middleware.LoggerFromContext(c).Warn("decode job diagnostics", slog.Any("error", err))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetDownloadLink 生成导出压缩包的预签名下载链接。
func (h *ExportHandler) GetDownloadLink(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	if export.Status(job.Status) != export.StatusDone || job.ObjectKey == "" {
		Conflict(c, "archive not ready")
		return
	}

	// 超过保留期的归档即使对象还没被生命周期规则删掉，也视为过期。
	if h.cfg.ArchiveTTL > 0 && job.FinishedAt != nil && time.Since(*job.FinishedAt) > h.cfg.ArchiveTTL {
		Gone(c, "archive expired")
		return
	}

	ctx := c.Request.Context()
	exists, err := h.storage.Exists(ctx, job.ObjectKey)
	if err != nil {
		Internal(c, "failed to check archive")
		return
	}
	if !exists {
		Gone(c, "archive expired")
		return
	}

	signedURL, err := h.storage.PresignDownload(ctx, job.ObjectKey, downloadLinkTTL, storage.AttachmentParams(export.ArchiveFilename))
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL, "expires_in": int(downloadLinkTTL.Seconds())})
}

// GetDefaultPortfolio 返回编辑器初始化用的示例简历。
func (h *ExportHandler) GetDefaultPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, portfolio.DefaultRecord())
}

// ListThemes 返回预设主题。
func (h *ExportHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": portfolio.Themes()})
}

func (h *ExportHandler) loadJob(c *gin.Context) (*database.ExportJob, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		BadRequest(c, "invalid job id")
		return nil, false
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrJobNotFound) {
			NotFound(c, "export job not found")
		} else {
			Internal(c, "failed to query export job")
		}
		return nil, false
	}
	return job, true
}

// allow 按客户端做每小时导出次数限制；RateLimit 为 0 表示不限制。
func (h *ExportHandler) allow(c *gin.Context, client string) bool {
	if h.cfg.RateLimit <= 0 {
		return true
	}
	window := time.Now().UTC().Format("2006010215")
	count, err := incrWithTTL(c.Request.Context(), h.redisClient, "export_rate:"+client+":"+window, rateLimitWindow)
	if err != nil {
		middleware.LoggerFromContext(c).Error("rate limit counter", slog.Any("error", err))
		Internal(c, "failed to check rate limit")
		return false
	}
	if count > int64(h.cfg.RateLimit) {
		TooManyRequests(c, "export limit reached, try again later")
		return false
	}
	return true
}

func bindRecord(c *gin.Context) (portfolio.Record, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRecordBytes)

	var record portfolio.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			TooLarge(c, "record too large")
			return record, false
		}
		BadRequest(c, "invalid record")
		return record, false
	}
	return record, true
}

func clientKey(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(clientIDHeader)); id != "" && len(id) <= 64 {
		return id
	}
	return c.ClientIP()
}

// attachmentSaver 缓存压缩包，由 handler 在拿到诊断信息后一次性写回响应。
type attachmentSaver struct {
	data     []byte
	filename string
}

func (s *attachmentSaver) Save(_ context.Context, data []byte, filename string) error {
	s.data = data
	s.filename = filename
	return nil
}
