// Package preview 使用 go-rod 在无头浏览器中渲染导出的站点并截图。
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	defaultQuality = 80
	viewportWidth  = 1280
	viewportHeight = 900
)

// Renderer captures a JPEG of an HTML document.
type Renderer struct {
	logger  *slog.Logger
	quality int
	timeout time.Duration
}

func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger, quality: defaultQuality, timeout: 30 * time.Second}
}

// Capture 渲染 html 并返回首屏 JPEG。
func (r *Renderer) Capture(ctx context.Context, html string) (_ []byte, err error) {
	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	defer launch.Cleanup()

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Timeout(r.timeout).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	page = page.Timeout(r.timeout)
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	quality := r.quality
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}

	r.logger.Debug("preview captured", slog.Int("bytes", len(data)))
	return data, nil
}
