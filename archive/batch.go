package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saahil-mehta/urltopdf/internal/metrics"
)

// Config holds the settings for an Archiver. It is decoupled from Viper so
// the archiver can be constructed and tested independently.
type Config struct {
	GoogleDocsRoot string
	WebpagesRoot   string
	Workers        int
}

// Archiver fans batches of URLs out over a fixed-size worker pool and
// collects per-URL outcomes as they complete.
type Archiver struct {
	cfg       Config
	processor *Processor
	sink      Sink
	logger    *zap.Logger
}

// NewArchiver constructs an Archiver. Zero-value Config fields fall back to
// the package defaults (4 workers, GCP-KnowledgeBase and KnowledgeBase roots).
func NewArchiver(cfg Config, processor *Processor, sink Sink, logger *zap.Logger) *Archiver {
	if cfg.GoogleDocsRoot == "" {
		cfg.GoogleDocsRoot = DefaultGoogleDocsRoot
	}
	if cfg.WebpagesRoot == "" {
		cfg.WebpagesRoot = DefaultWebpagesRoot
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Archiver{
		cfg:       cfg,
		processor: processor,
		sink:      sink,
		logger:    logger,
	}
}

type batchSpec struct {
	root         string
	destination  string
	urls         []string
	forceEnglish bool
}

// SaveGoogleDocsAsPDFs renders each Google Docs URL to a PDF under
// <GoogleDocsRoot>/<destination>, rewriting every URL to request English
// content first. It blocks until every URL has been processed and returns a
// summary of per-URL outcomes; individual failures never fail the batch.
func (a *Archiver) SaveGoogleDocsAsPDFs(ctx context.Context, destination string, urls ...string) (Summary, error) {
	return a.run(ctx, batchSpec{
		root:         a.cfg.GoogleDocsRoot,
		destination:  destination,
		urls:         urls,
		forceEnglish: true,
	})
}

// SaveOtherWebpagesAsPDFs renders each webpage URL to a PDF under
// <WebpagesRoot>/<destination>. URLs are used as given, with no language
// rewrite.
func (a *Archiver) SaveOtherWebpagesAsPDFs(ctx context.Context, destination string, urls ...string) (Summary, error) {
	return a.run(ctx, batchSpec{
		root:        a.cfg.WebpagesRoot,
		destination: destination,
		urls:        urls,
	})
}

// run prepares the output directory, builds one job per URL, and executes
// the jobs on the worker pool. The only fatal condition is a failed output
// directory creation; everything past that point is contained per job.
func (a *Archiver) run(ctx context.Context, spec batchSpec) (Summary, error) {
	batchID := uuid.NewString()
	log := a.logger.With(
		zap.String("batch_id", batchID),
		zap.String("destination", spec.destination),
	)

	outputDir := filepath.Join(spec.root, spec.destination)
	if err := a.sink.EnsureDir(outputDir); err != nil {
		return Summary{}, fmt.Errorf("prepare output dir: %w", err)
	}

	jobs := a.buildJobs(batchID, outputDir, spec, log)
	log.Info("batch started", zap.Int("urls", len(jobs)), zap.Int("workers", a.cfg.Workers))

	summary := a.execute(ctx, jobs, log)
	summary.BatchID = batchID
	metrics.ObserveBatch()
	log.Info("batch complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (a *Archiver) buildJobs(batchID, outputDir string, spec batchSpec, log *zap.Logger) []Job {
	jobs := make([]Job, 0, len(spec.urls))
	for _, raw := range spec.urls {
		target := raw
		if spec.forceEnglish {
			rewritten, err := ForceEnglish(raw)
			if err != nil {
				log.Warn("language rewrite failed; using url as-is", zap.String("url", raw), zap.Error(err))
			} else {
				target = rewritten
			}
		}
		jobs = append(jobs, Job{
			BatchID:    batchID,
			URL:        target,
			OutputPath: filepath.Join(outputDir, DeriveFilename(target)),
		})
	}
	return jobs
}

// execute runs jobs on a pool of cfg.Workers goroutines and harvests
// outcomes in completion order, blocking until every job has finished.
func (a *Archiver) execute(ctx context.Context, jobs []Job, log *zap.Logger) Summary {
	jobCh := make(chan Job)
	outCh := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < a.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				metrics.IncActiveWorkers()
				outcome := a.processor.Process(ctx, job)
				metrics.DecActiveWorkers()
				outCh <- outcome
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobCh <- job
		}
		close(jobCh)
		wg.Wait()
		close(outCh)
	}()

	summary := Summary{Outcomes: make([]Outcome, 0, len(jobs))}
	for outcome := range outCh {
		if outcome.Err != nil {
			summary.Failed++
			log.Error("url failed", zap.String("url", outcome.URL), zap.Error(outcome.Err))
		} else {
			summary.Succeeded++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return summary
}
