package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ArchiveFilename is the fixed name of every downloaded archive.
const ArchiveFilename = "PortfolioX-User-Portfolio.zip"

// Saver delivers a finished archive to the user.
type Saver interface {
	Save(ctx context.Context, data []byte, filename string) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, data []byte, filename string) error

func (f SaverFunc) Save(ctx context.Context, data []byte, filename string) error {
	return f(ctx, data, filename)
}

// FileSaver writes archives into Dir. The file appears atomically, so a
// failed save never leaves a partial download behind.
type FileSaver struct {
	Dir string
}

func (s FileSaver) Save(_ context.Context, data []byte, filename string) error {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filename+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, filepath.Base(filename))); err != nil {
		return fmt.Errorf("move archive into place: %w", err)
	}
	return nil
}
