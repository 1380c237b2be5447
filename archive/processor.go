package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/saahil-mehta/urltopdf/internal/metrics"
)

// Processor archives a single URL into one PDF file. Expected failures
// (probe errors, render errors, write errors) are contained here: they are
// logged, recorded on the returned Outcome, and never propagate to the
// caller.
type Processor struct {
	prober   Prober
	renderer Renderer
	sink     Sink
	mirror   Mirror
	logger   *zap.Logger
}

// NewProcessor constructs a Processor. The prober and mirror may be nil;
// probing and mirroring are then skipped.
func NewProcessor(prober Prober, renderer Renderer, sink Sink, mirror Mirror, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Processor{
		prober:   prober,
		renderer: renderer,
		sink:     sink,
		mirror:   mirror,
		logger:   logger,
	}
}

// Process runs the probe, render, and save steps for one job.
func (p *Processor) Process(ctx context.Context, job Job) Outcome {
	log := p.logger.With(
		zap.String("batch_id", job.BatchID),
		zap.String("url", job.URL),
	)
	log.Info("processing url")

	out := Outcome{URL: job.URL, OutputPath: job.OutputPath}
	p.probe(ctx, job, log, &out)

	start := time.Now()
	pdf, err := p.renderer.Render(ctx, job.URL)
	if err != nil {
		metrics.ObserveRender("failed", time.Since(start))
		metrics.ObservePage(job.URL, "failed")
		log.Error("render failed", zap.Error(err))
		out.Err = fmt.Errorf("render %s: %w", job.URL, err)
		return out
	}
	metrics.ObserveRender("ok", time.Since(start))

	if err := p.sink.SavePDF(ctx, job.OutputPath, pdf); err != nil {
		metrics.ObservePage(job.URL, "failed")
		log.Error("save failed", zap.String("path", job.OutputPath), zap.Error(err))
		out.Err = fmt.Errorf("save %s: %w", job.OutputPath, err)
		return out
	}
	out.Bytes = len(pdf)

	p.mirrorPDF(ctx, job, pdf, log)

	metrics.ObservePage(job.URL, "ok")
	log.Info("saved pdf", zap.String("path", job.OutputPath), zap.Int("bytes", len(pdf)))
	return out
}

// probe measures response time for the job URL. A failed probe is logged and
// swallowed; the result is informational and never gates rendering.
func (p *Processor) probe(ctx context.Context, job Job, log *zap.Logger, out *Outcome) {
	if p.prober == nil {
		return
	}
	elapsed, err := p.prober.Probe(ctx, job.URL)
	if err != nil {
		metrics.ObserveProbeFailure()
		log.Warn("probe failed", zap.Error(err))
		return
	}
	out.ProbeDuration = elapsed
	log.Info("probe succeeded", zap.Duration("elapsed", elapsed))
}

// mirrorPDF copies the PDF to secondary blob storage when a mirror is
// configured. Mirror failures never fail the job.
func (p *Processor) mirrorPDF(ctx context.Context, job Job, pdf []byte, log *zap.Logger) {
	if p.mirror == nil {
		return
	}
	objectName := filepath.ToSlash(job.OutputPath)
	if err := p.mirror.Save(ctx, objectName, pdf); err != nil {
		log.Warn("mirror failed", zap.String("object", objectName), zap.Error(err))
		return
	}
	log.Debug("pdf mirrored", zap.String("object", objectName))
}
