package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileSystemSink writes rendered PDFs to the local filesystem.
type FileSystemSink struct {
	logger *zap.Logger
}

// NewFileSystemSink returns a filesystem-backed sink.
func NewFileSystemSink(logger *zap.Logger) *FileSystemSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemSink{logger: logger}
}

// EnsureDir creates dir and any missing parents. Calling it for an existing
// directory is not an error, so repeated batches can share a destination.
func (s *FileSystemSink) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return nil
}

// SavePDF writes data to target. Each job writes a distinct path, so no
// locking is needed beyond the idempotent directory creation.
func (s *FileSystemSink) SavePDF(ctx context.Context, target string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty pdf body for %s", target)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating pdf dir for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("writing pdf to %s: %w", target, err)
	}
	s.logger.Debug("pdf written", zap.String("path", target), zap.Int("bytes", len(data)))
	return nil
}
