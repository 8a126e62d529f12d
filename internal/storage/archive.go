package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

const archiveContentType = "application/zip"

// 对象键前缀；生命周期规则按前缀清理过期的归档与预览图。
const (
	ArchivePrefix = "exports"
	PreviewPrefix = "previews"
)

// Uploader is the subset of Client used to store archives.
type Uploader interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// ArchiveKey 生成导出归档的对象键：exports/<jobID>/<filename>。
func ArchiveKey(jobID, filename string) string {
	return path.Join(ArchivePrefix, strings.TrimSpace(jobID), path.Base(filename))
}

// PreviewKey is the object key of a job's preview screenshot.
func PreviewKey(jobID string) string {
	return path.Join(PreviewPrefix, strings.TrimSpace(jobID), "preview.jpg")
}

// ArchiveSaver uploads one finished archive under a job-scoped key.
type ArchiveSaver struct {
	uploader Uploader
	jobID    string

	Key        string
	Size       int64
	UploadedAt time.Time
}

// NewArchiveSaver returns a saver that stores the archive of jobID.
func NewArchiveSaver(uploader Uploader, jobID string) *ArchiveSaver {
	return &ArchiveSaver{uploader: uploader, jobID: jobID}
}

// Save implements export.Saver.
func (s *ArchiveSaver) Save(ctx context.Context, data []byte, filename string) error {
	if s.uploader == nil {
		return fmt.Errorf("archive saver: no uploader configured")
	}
	key := ArchiveKey(s.jobID, filename)
	info, err := s.uploader.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), archiveContentType)
	if err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}
	s.Key = key
	s.Size = info.Size
	s.UploadedAt = time.Now()
	return nil
}

// AttachmentParams 让预签名链接以附件方式下载，并保留固定文件名。
func AttachmentParams(filename string) map[string]string {
	return map[string]string{
		"response-content-disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
		"response-content-type":        archiveContentType,
	}
}
