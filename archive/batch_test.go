package archive

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingRenderer is an instrumented fake renderer. It tracks the maximum
// number of concurrent Render calls and records every URL it is given.
type countingRenderer struct {
	mu      sync.Mutex
	active  int
	maxSeen int
	urls    []string
	delay   time.Duration
	failOn  map[string]bool // keyed by URL path
}

func (r *countingRenderer) Render(_ context.Context, rawURL string) ([]byte, error) {
	r.mu.Lock()
	r.active++
	if r.active > r.maxSeen {
		r.maxSeen = r.active
	}
	r.urls = append(r.urls, rawURL)
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.active--
	r.mu.Unlock()

	if u, err := url.Parse(rawURL); err == nil && r.failOn[u.Path] {
		return nil, fmt.Errorf("render refused for %s", rawURL)
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (r *countingRenderer) Close(_ context.Context) error {
	return nil
}

func (r *countingRenderer) renderedURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func newTestArchiver(t *testing.T, renderer Renderer, workers int) (*Archiver, string) {
	t.Helper()
	root := t.TempDir()
	sink := NewFileSystemSink(zap.NewNop())
	processor := NewProcessor(nil, renderer, sink, nil, zap.NewNop())
	archiver := NewArchiver(Config{
		GoogleDocsRoot: filepath.Join(root, DefaultGoogleDocsRoot),
		WebpagesRoot:   filepath.Join(root, DefaultWebpagesRoot),
		Workers:        workers,
	}, processor, sink, zap.NewNop())
	return archiver, root
}

func countPDFs(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".pdf" {
			n++
		}
	}
	return n
}

func TestArchiverPartialFailures(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{
		failOn: map[string]bool{"/b": true, "/d": true},
	}
	archiver, root := newTestArchiver(t, renderer, 0)

	urls := []string{
		"https://x.com/a",
		"https://x.com/b",
		"https://x.com/c",
		"https://x.com/d",
		"https://x.com/e",
	}
	summary, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "mixed", urls...)

	require.NoError(t, err)
	require.Equal(t, 3, summary.Succeeded)
	require.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Outcomes, 5)
	require.NotEmpty(t, summary.BatchID)

	dir := filepath.Join(root, DefaultWebpagesRoot, "mixed")
	require.Equal(t, 3, countPDFs(t, dir))
}

func TestArchiverSingleURL(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{}
	archiver, root := newTestArchiver(t, renderer, 0)

	summary, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "solo", "https://x.com/solo")

	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)
	require.FileExists(t, filepath.Join(root, DefaultWebpagesRoot, "solo", "solo.pdf"))
}

func TestArchiverDirectoryReuse(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{}
	archiver, root := newTestArchiver(t, renderer, 0)

	_, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "repeat", "https://x.com/first")
	require.NoError(t, err)
	_, err = archiver.SaveOtherWebpagesAsPDFs(context.Background(), "repeat", "https://x.com/second")
	require.NoError(t, err)

	dir := filepath.Join(root, DefaultWebpagesRoot, "repeat")
	require.Equal(t, 2, countPDFs(t, dir))
}

func TestArchiverBoundedConcurrency(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{delay: 30 * time.Millisecond}
	archiver, _ := newTestArchiver(t, renderer, 0) // falls back to DefaultWorkers

	urls := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("https://x.com/page-%d", i))
	}
	summary, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "burst", urls...)

	require.NoError(t, err)
	require.Equal(t, 12, summary.Succeeded)
	require.LessOrEqual(t, renderer.maxSeen, DefaultWorkers)
	require.Greater(t, renderer.maxSeen, 1)
}

func TestArchiverGoogleDocsRewritesLanguage(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{}
	archiver, root := newTestArchiver(t, renderer, 0)

	summary, err := archiver.SaveGoogleDocsAsPDFs(
		context.Background(),
		"gcp",
		"https://docs.google.com/document/d/abc/export?hl=fr&format=pdf",
	)

	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	rendered := renderer.renderedURLs()
	require.Len(t, rendered, 1)
	u, err := url.Parse(rendered[0])
	require.NoError(t, err)
	require.Equal(t, []string{"en"}, u.Query()["hl"])
	require.Equal(t, []string{"pdf"}, u.Query()["format"])

	require.Equal(t, 1, countPDFs(t, filepath.Join(root, DefaultGoogleDocsRoot, "gcp")))
}

func TestArchiverWebpagesLeaveURLsAlone(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{}
	archiver, _ := newTestArchiver(t, renderer, 0)

	raw := "https://example.org/article?hl=de"
	_, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "raw", raw)
	require.NoError(t, err)

	rendered := renderer.renderedURLs()
	require.Len(t, rendered, 1)
	require.Equal(t, raw, rendered[0])
}

func TestArchiverEmptyBatch(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{}
	archiver, root := newTestArchiver(t, renderer, 0)

	summary, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "empty")

	require.NoError(t, err)
	require.Zero(t, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.Empty(t, summary.Outcomes)
	require.DirExists(t, filepath.Join(root, DefaultWebpagesRoot, "empty"))
}

func TestArchiverFatalOnUnwritableRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	blocker := filepath.Join(root, "KnowledgeBase")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o600))

	sink := NewFileSystemSink(zap.NewNop())
	processor := NewProcessor(nil, &countingRenderer{}, sink, nil, zap.NewNop())
	archiver := NewArchiver(Config{
		WebpagesRoot: blocker,
	}, processor, sink, zap.NewNop())

	_, err := archiver.SaveOtherWebpagesAsPDFs(context.Background(), "dest", "https://x.com/a")
	require.Error(t, err)
}
