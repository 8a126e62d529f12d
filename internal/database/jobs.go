package database

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolioX/internal/export"
)

var (
	ErrJobNotFound       = errors.New("export job not found")
	ErrInvalidTransition = errors.New("invalid export job transition")
)

// JobStore 封装 ExportJob 的读写，状态迁移遵循 export.Status 的规则。
type JobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a new idle job.
func (s *JobStore) Create(ctx context.Context, job *ExportJob) error {
	if job.Status == "" {
		job.Status = string(export.StatusIdle)
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// Get loads a job by id.
func (s *JobStore) Get(ctx context.Context, id string) (*ExportJob, error) {
	var job ExportJob
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load export job %s: %w", id, err)
	}
	return &job, nil
}

// MarkGenerating claims a job for the given asynq attempt (retry count).
// The update is conditional on the previous status so two workers cannot
// both claim the same job. A job still in generating can only be claimed
// again by a later attempt, i.e. a retry of a failed or crashed run.
func (s *JobStore) MarkGenerating(ctx context.Context, job *ExportJob, attempt int) error {
	current := export.Status(job.Status)
	query := s.db.WithContext(ctx).Model(&ExportJob{}).Where("id = ?", job.ID)
	switch {
	case current == export.StatusGenerating:
		if attempt <= job.Attempt {
			return fmt.Errorf("%w: job %s already claimed by attempt %d", ErrInvalidTransition, job.ID, job.Attempt)
		}
		query = query.Where("status = ? AND attempt < ?", job.Status, attempt)
	case current.CanTransition(export.StatusGenerating):
		query = query.Where("status = ?", job.Status)
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, export.StatusGenerating)
	}

	now := time.Now()
	err := s.apply(query, job, map[string]any{
		"status":     string(export.StatusGenerating),
		"attempt":    attempt,
		"updated_at": now,
	})
	if err != nil {
		return err
	}
	job.Status = string(export.StatusGenerating)
	job.Attempt = attempt
	job.UpdatedAt = now
	return nil
}

// MarkDone stores the archive location and skipped-image diagnostics.
func (s *JobStore) MarkDone(ctx context.Context, job *ExportJob, objectKey string, size int64, diagnostics datatypes.JSON) error {
	now := time.Now()
	err := s.transition(ctx, job, export.StatusDone, map[string]any{
		"object_key":   objectKey,
		"archive_size": size,
		"diagnostics":  diagnostics,
		"error":        "",
		"finished_at":  &now,
		"updated_at":   now,
	})
	if err != nil {
		return err
	}
	job.Status = string(export.StatusDone)
	job.ObjectKey = objectKey
	job.ArchiveSize = size
	job.Diagnostics = diagnostics
	job.Error = ""
	job.FinishedAt = &now
	job.UpdatedAt = now
	return nil
}

// MarkFailed records the failure reason.
func (s *JobStore) MarkFailed(ctx context.Context, job *ExportJob, reason string) error {
	now := time.Now()
	reason = truncate(reason, maxErrorBytes)
	err := s.transition(ctx, job, export.StatusFailed, map[string]any{
		"error":       reason,
		"finished_at": &now,
		"updated_at":  now,
	})
	if err != nil {
		return err
	}
	job.Status = string(export.StatusFailed)
	job.Error = reason
	job.FinishedAt = &now
	job.UpdatedAt = now
	return nil
}

// SetPreview stores the preview screenshot key of a finished job.
func (s *JobStore) SetPreview(ctx context.Context, job *ExportJob, key string) error {
	if err := s.db.WithContext(ctx).Model(&ExportJob{}).
		Where("id = ?", job.ID).
		Update("preview_key", key).Error; err != nil {
		return fmt.Errorf("set preview key: %w", err)
	}
	job.PreviewKey = key
	return nil
}

// transition 只有 UPDATE 命中时才算成功；调用方随后在内存里同步字段，
// 不再回读，避免"已提交却报错"。
func (s *JobStore) transition(ctx context.Context, job *ExportJob, next export.Status, updates map[string]any) error {
	current := export.Status(job.Status)
	if !current.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	updates["status"] = string(next)

	query := s.db.WithContext(ctx).Model(&ExportJob{}).
		Where("id = ? AND status = ?", job.ID, job.Status)
	if current == export.StatusGenerating {
		// 只有当前持有任务的 attempt 才能结束它
		query = query.Where("attempt = ?", job.Attempt)
	}
	return s.apply(query, job, updates)
}

func (s *JobStore) apply(query *gorm.DB, job *ExportJob, updates map[string]any) error {
	res := query.Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update export job %s: %w", job.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s is no longer %s", ErrInvalidTransition, job.ID, job.Status)
	}
	return nil
}

const maxErrorBytes = 1024

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
