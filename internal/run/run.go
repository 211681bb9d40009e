// Package run sequences one end-to-end harvest: extract links,
// download in batches, post-process, record.
package run

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// BatchDownloader settles every link into a success/failure partition.
type BatchDownloader interface {
	DownloadAll(ctx context.Context, links []harvest.Link) harvest.BatchResult
}

// Processor post-processes successful downloads.
type Processor interface {
	Process(ctx context.Context, successes []harvest.Success)
}

// Recorder persists the link list and the run summary.
type Recorder interface {
	SaveLinks(links []harvest.Link) error
	Record(result harvest.BatchResult) (harvest.RunMetadata, error)
}

// Config identifies the page a Pipeline harvests.
type Config struct {
	PageURL  string
	Selector string
}

// Pipeline owns the phase ordering of a run. Phases are strictly
// sequential: extraction never overlaps with downloading, downloading
// never overlaps with post-processing.
type Pipeline struct {
	source    harvest.LinkSource
	scheduler BatchDownloader
	processor Processor
	recorder  Recorder
	history   harvest.RunStore
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Pipeline. The history store may be nil.
func New(
	source harvest.LinkSource,
	scheduler BatchDownloader,
	processor Processor,
	recorder Recorder,
	history harvest.RunStore,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		source:    source,
		scheduler: scheduler,
		processor: processor,
		recorder:  recorder,
		history:   history,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one harvest. Link extraction failure (after the
// fallback) and metadata persistence failure abort the run; download
// and post-processing failures are isolated per file and only reflected
// in the summary.
func (p *Pipeline) Run(ctx context.Context) error {
	links, err := p.source.Extract(ctx, p.cfg.PageURL, p.cfg.Selector)
	if err != nil {
		return fmt.Errorf("extract links from %s: %w", p.cfg.PageURL, err)
	}
	if len(links) == 0 {
		p.logger.Info("no downloads", zap.String("url", p.cfg.PageURL), zap.String("selector", p.cfg.Selector))
		return nil
	}
	p.logger.Info("links extracted", zap.Int("count", len(links)), zap.String("url", p.cfg.PageURL))

	if err := p.recorder.SaveLinks(links); err != nil {
		return fmt.Errorf("save link list: %w", err)
	}

	result := p.scheduler.DownloadAll(ctx, links)
	p.logger.Info("downloads settled",
		zap.Int("succeeded", len(result.Successes)),
		zap.Int("failed", len(result.Failures)),
	)

	p.processor.Process(ctx, result.Successes)

	meta, err := p.recorder.Record(result)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	if p.history != nil {
		if err := p.history.Insert(ctx, meta); err != nil {
			// The metadata file already landed; history is best effort.
			p.logger.Warn("run history insert failed", zap.String("run_id", meta.RunID), zap.Error(err))
		}
	}
	return nil
}
