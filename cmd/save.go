package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saahil-mehta/urltopdf/archive"
	"github.com/saahil-mehta/urltopdf/internal/api"
	"github.com/saahil-mehta/urltopdf/internal/config"
	"github.com/saahil-mehta/urltopdf/internal/logging"
	"github.com/saahil-mehta/urltopdf/internal/storage"
)

// newGdocsCmd creates the 'gdocs' subcommand, which archives Google Docs
// URLs with the English language rewrite applied.
func newGdocsCmd() *cobra.Command {
	var destination string
	cmd := &cobra.Command{
		Use:   "gdocs URL...",
		Short: "Render Google Docs URLs to PDFs",
		Long: `Renders each Google Docs URL into a PDF stored under
<google_docs_root>/<destination>. Every URL is rewritten to request English
content (hl=en) before rendering.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(cmd.Context(), destination, args, true)
		},
	}
	cmd.Flags().StringVar(&destination, "dest", "", "destination subfolder under the knowledge-base root")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

// newWebCmd creates the 'web' subcommand, which archives generic web pages
// with no URL rewriting.
func newWebCmd() *cobra.Command {
	var destination string
	cmd := &cobra.Command{
		Use:   "web URL...",
		Short: "Render web page URLs to PDFs",
		Long: `Renders each web page URL into a PDF stored under
<webpages_root>/<destination>. URLs are fetched exactly as given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(cmd.Context(), destination, args, false)
		},
	}
	cmd.Flags().StringVar(&destination, "dest", "", "destination subfolder under the knowledge-base root")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func runSave(ctx context.Context, destination string, urls []string, googleDocs bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if cfg.Server.MetricsEnabled {
		metricsSrv := api.NewServer(cfg.Server.MetricsAddr, logger)
		go func() {
			if serveErr := metricsSrv.Start(); serveErr != nil {
				logger.Warn("metrics server stopped", zap.Error(serveErr))
			}
		}()
		defer func() {
			if shutErr := metricsSrv.Shutdown(context.Background()); shutErr != nil {
				logger.Warn("metrics server shutdown", zap.Error(shutErr))
			}
		}()
	}

	archiver, renderer, err := buildArchiver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := renderer.Close(context.Background()); cerr != nil {
			logger.Warn("close renderer", zap.Error(cerr))
		}
	}()

	var summary archive.Summary
	if googleDocs {
		summary, err = archiver.SaveGoogleDocsAsPDFs(ctx, destination, urls...)
	} else {
		summary, err = archiver.SaveOtherWebpagesAsPDFs(ctx, destination, urls...)
	}
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	logger.Info("done",
		zap.String("batch_id", summary.BatchID),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return nil
}

func buildArchiver(ctx context.Context, cfg config.Config, logger *zap.Logger) (*archive.Archiver, archive.Renderer, error) {
	prober := archive.NewCollyProber(archive.ProberConfig{
		UserAgent: cfg.Probe.UserAgent,
		Timeout:   cfg.ProbeTimeout(),
	})

	renderer, err := archive.NewChromedpRenderer(archive.RendererConfig{
		MaxConcurrency:  cfg.Render.MaxConcurrency,
		SettleDelay:     cfg.SettleDelay(),
		Timeout:         cfg.RenderTimeout(),
		UserAgent:       cfg.Probe.UserAgent,
		PerHostQPS:      cfg.Render.PerHostQPS,
		AllowLocalFiles: cfg.Render.AllowLocalFiles,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}

	mirror, err := buildMirror(ctx, cfg, logger)
	if err != nil {
		if cerr := renderer.Close(context.Background()); cerr != nil {
			logger.Warn("close renderer", zap.Error(cerr))
		}
		return nil, nil, err
	}

	sink := archive.NewFileSystemSink(logger)
	processor := archive.NewProcessor(prober, renderer, sink, mirror, logger)
	archiver := archive.NewArchiver(archive.Config{
		GoogleDocsRoot: cfg.Archive.GoogleDocsRoot,
		WebpagesRoot:   cfg.Archive.WebpagesRoot,
		Workers:        cfg.Archive.Workers,
	}, processor, sink, logger)

	return archiver, renderer, nil
}

// buildMirror returns nil when mirroring is disabled so the processor skips
// the mirror step entirely.
func buildMirror(ctx context.Context, cfg config.Config, logger *zap.Logger) (archive.Mirror, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		logger.Info("mirroring pdfs to gcs", zap.String("bucket", cfg.Storage.GCSBucket))
		provider, err := storage.NewGCSProvider(ctx, cfg.Storage.GCSBucket, logger)
		if err != nil {
			return nil, fmt.Errorf("init gcs mirror: %w", err)
		}
		return provider, nil
	default:
		return nil, nil
	}
}
