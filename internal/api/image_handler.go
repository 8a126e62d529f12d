package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"portfolioX/internal/api/middleware"
	"portfolioX/internal/export"
	"portfolioX/internal/imagecodec"
	"portfolioX/internal/scan"
)

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// ImageHandler 把上传的图片转换为编辑器保存在记录里的 data URI。
type ImageHandler struct {
	scanner  export.ImageScanner
	maxBytes int64
}

// NewImageHandler 返回 ImageHandler。scanner 为 nil 时跳过病毒扫描。
func NewImageHandler(scanner export.ImageScanner, maxBytes int64) *ImageHandler {
	return &ImageHandler{scanner: scanner, maxBytes: maxBytes}
}

// UploadImage 校验大小与类型、扫描病毒，返回 data URI。
func (h *ImageHandler) UploadImage(c *gin.Context) {
	log := middleware.LoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size > h.maxBytes {
		TooLarge(c, "image exceeds size limit")
		return
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, h.maxBytes+1))
	if err != nil {
		Internal(c, "failed to read file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		TooLarge(c, "image exceeds size limit")
		return
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		BadRequest(c, "only PNG and JPEG images are supported")
		return
	}

	if h.scanner != nil {
		if err := h.scanner.Scan(c.Request.Context(), data); err != nil {
			if errors.Is(err, scan.ErrInfected) {
				BadRequest(c, "malicious file detected")
				return
			}
			log.Error("scan image", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"dataUri":     imagecodec.EncodeDataURI(detected.String(), data),
		"contentType": detected.String(),
		"size":        len(data),
	})
}
