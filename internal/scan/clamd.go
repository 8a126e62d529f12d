// Package scan checks untrusted image bytes with ClamAV before they are
// packaged or handed back to the editor.
package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dutchcoders/go-clamd"
)

// ErrInfected is returned when clamd flags the content.
var ErrInfected = errors.New("malicious file detected")

// ClamdScanner 通过 clamd 的 INSTREAM 扫描字节流。
type ClamdScanner struct {
	addr string
}

// NewClamdScanner returns nil when addr is empty so callers can treat a
// nil scanner as "scanning disabled".
func NewClamdScanner(addr string) *ClamdScanner {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	return &ClamdScanner{addr: addr}
}

// Scan streams data to clamd. Any non-OK verdict yields ErrInfected.
// A nil scanner accepts everything.
func (s *ClamdScanner) Scan(ctx context.Context, data []byte) error {
	if s == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	client := clamd.NewClamd(s.addr)
	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := client.ScanStream(bytes.NewReader(data), abortChan)
	if err != nil {
		return fmt.Errorf("clamd scan stream: %w", err)
	}

	var verdict error
	// 读完整个结果通道，避免 clamd 客户端的 goroutine 阻塞。
	for result := range scanChan {
		if verdict != nil {
			continue
		}
		if result.Status != clamd.RES_OK {
			verdict = fmt.Errorf("%w: %s %s", ErrInfected, result.Status, strings.TrimSpace(result.Description))
		}
	}
	return verdict
}
