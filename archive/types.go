package archive

import "time"

// Default knob values used when the corresponding Config field is unset.
const (
	// DefaultWorkers is the fixed size of the per-batch worker pool.
	DefaultWorkers = 4

	// DefaultProbeTimeout bounds the response-time probe.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultSettleDelay is how long the renderer waits after page load so
	// asynchronous scripts can finish before capture.
	DefaultSettleDelay = time.Second

	// DefaultRenderTimeout caps a single navigate-and-print cycle.
	DefaultRenderTimeout = 90 * time.Second
)

// Default destination roots, relative to the working directory.
const (
	DefaultGoogleDocsRoot = "GCP-KnowledgeBase"
	DefaultWebpagesRoot   = "KnowledgeBase"
)

// Job pairs a source URL with its resolved output file path. Jobs are created
// per batch invocation and consumed immediately by the processor.
type Job struct {
	BatchID    string
	URL        string
	OutputPath string
}

// Outcome reports the result of one job. Err is nil on success.
type Outcome struct {
	URL           string
	OutputPath    string
	ProbeDuration time.Duration // zero when the probe failed or was skipped
	Bytes         int
	Err           error
}

// Succeeded reports whether the job produced its PDF.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Summary aggregates the outcomes of a batch. The batch as a whole never
// fails because individual URLs failed; callers inspect the summary instead.
type Summary struct {
	BatchID   string
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}
