package archive

import (
	"context"
	"time"
)

// Prober measures how quickly a URL responds. The measurement is
// informational only and never gates rendering.
type Prober interface {
	Probe(ctx context.Context, rawURL string) (time.Duration, error)
}

// Renderer converts a live page into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, rawURL string) ([]byte, error)
	Close(ctx context.Context) error
}

// Sink persists rendered PDFs on the local filesystem.
type Sink interface {
	// EnsureDir creates dir recursively; it is idempotent.
	EnsureDir(dir string) error
	// SavePDF writes data to target, creating parent directories as needed.
	SavePDF(ctx context.Context, target string, data []byte) error
}

// Mirror copies produced PDFs to secondary blob storage. Mirroring is best
// effort: a mirror failure never fails the job.
type Mirror interface {
	Save(ctx context.Context, objectName string, data []byte) error
}
