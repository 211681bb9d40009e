// Package main wires together the harvester binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/batch"
	"github.com/statdocs/harvester/internal/clock/system"
	"github.com/statdocs/harvester/internal/config"
	"github.com/statdocs/harvester/internal/downloader"
	"github.com/statdocs/harvester/internal/extract"
	"github.com/statdocs/harvester/internal/harvest"
	"github.com/statdocs/harvester/internal/history"
	"github.com/statdocs/harvester/internal/id/uuid"
	"github.com/statdocs/harvester/internal/linksource"
	"github.com/statdocs/harvester/internal/linksource/collysrc"
	"github.com/statdocs/harvester/internal/linksource/headless"
	"github.com/statdocs/harvester/internal/logging"
	"github.com/statdocs/harvester/internal/metricsrv"
	"github.com/statdocs/harvester/internal/postproc"
	"github.com/statdocs/harvester/internal/recorder"
	"github.com/statdocs/harvester/internal/run"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg.Metrics.Port, logger.Named("metrics"))
	}

	// Downloads are partitioned by day; the processing directory is
	// reused across runs.
	clock := system.New()
	downloadDir := filepath.Join(cfg.Download.Dir, clock.Now().Format("2006-01-02"))

	pipeline, cleanup, err := buildPipeline(cfg, downloadDir, clock, logger)
	if err != nil {
		logger.Error("pipeline init failed", zap.Error(err))
		return
	}
	defer cleanup()

	logger.Info("harvest starting",
		zap.String("url", cfg.Page.URL),
		zap.String("selector", cfg.Page.Selector),
		zap.String("download_dir", downloadDir),
	)
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("harvest failed", zap.Error(err))
		return
	}
	logger.Info("harvest complete")
}

func buildPipeline(
	cfg config.Config,
	downloadDir string,
	clock harvest.Clock,
	logger *zap.Logger,
) (*run.Pipeline, func(), error) {
	primary := headless.New(headless.Config{
		UserAgent:         cfg.Page.UserAgent,
		NavigationTimeout: cfg.PageLoadTimeout(),
	})
	fallback := collysrc.New(collysrc.Config{
		UserAgent: cfg.Page.UserAgent,
		Timeout:   cfg.PageLoadTimeout(),
	})
	source := linksource.NewChain(primary, fallback, logger.Named("linksource"))

	dl, err := downloader.New(downloader.Config{
		Dir:       downloadDir,
		Timeout:   cfg.DownloadTimeout(),
		UserAgent: cfg.Page.UserAgent,
	}, logger.Named("downloader"))
	if err != nil {
		primary.Close()
		return nil, nil, fmt.Errorf("init downloader: %w", err)
	}
	scheduler := batch.NewScheduler(dl, cfg.Download.Concurrency, logger.Named("batch"))

	extractor := extract.NewCommand(cfg.Processing.ExtractTool, cfg.Processing.ExtractArgs, logger.Named("extract"))
	processor, err := postproc.New(cfg.Processing.Dir, extractor, logger.Named("postproc"))
	if err != nil {
		primary.Close()
		return nil, nil, fmt.Errorf("init processor: %w", err)
	}

	rec, err := recorder.New(downloadDir, clock, uuid.New(), logger.Named("recorder"))
	if err != nil {
		primary.Close()
		return nil, nil, fmt.Errorf("init recorder: %w", err)
	}

	var store harvest.RunStore
	if cfg.History.Path != "" {
		hs, err := history.Open(cfg.History.Path)
		if err != nil {
			primary.Close()
			return nil, nil, fmt.Errorf("init history store: %w", err)
		}
		store = hs
	}

	pipeline := run.New(source, scheduler, processor, rec, store, run.Config{
		PageURL:  cfg.Page.URL,
		Selector: cfg.Page.Selector,
	}, logger.Named("run"))

	cleanup := func() {
		primary.Close()
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("close history store", zap.Error(err))
			}
		}
	}
	return pipeline, cleanup, nil
}

func startMetricsServer(ctx context.Context, port int, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metricsrv.NewServer().Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server started", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
