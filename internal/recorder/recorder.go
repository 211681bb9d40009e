// Package recorder persists the raw link list and the run summary.
package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// File names written into the download directory. The leading
// underscore keeps them sorted apart from downloaded documents.
const (
	LinksFile    = "_links.json"
	MetadataFile = "_metadata.json"
)

// Recorder computes and writes run records into the download directory.
type Recorder struct {
	downloadDir string
	clock       harvest.Clock
	ids         harvest.IDGenerator
	logger      *zap.Logger
}

// New builds a Recorder rooted at downloadDir.
func New(downloadDir string, clock harvest.Clock, ids harvest.IDGenerator, logger *zap.Logger) (*Recorder, error) {
	if downloadDir == "" {
		return nil, fmt.Errorf("download directory is required")
	}
	if err := os.MkdirAll(downloadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", downloadDir, err)
	}
	return &Recorder{
		downloadDir: downloadDir,
		clock:       clock,
		ids:         ids,
		logger:      logger,
	}, nil
}

// SaveLinks writes the raw extracted link list before downloads start,
// so a failed run still records what it intended to fetch.
func (r *Recorder) SaveLinks(links []harvest.Link) error {
	if links == nil {
		links = []harvest.Link{}
	}
	path := filepath.Join(r.downloadDir, LinksFile)
	payload, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return &harvest.PersistenceError{Path: path, Err: fmt.Errorf("marshal links: %w", err)}
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return &harvest.PersistenceError{Path: path, Err: err}
	}
	return nil
}

// Record computes the run summary and writes it as the metadata file.
// A write failure is fatal to the run: the metadata file is the only
// durable record of what happened.
func (r *Recorder) Record(result harvest.BatchResult) (harvest.RunMetadata, error) {
	runID, err := r.ids.NewID()
	if err != nil {
		return harvest.RunMetadata{}, fmt.Errorf("generate run id: %w", err)
	}

	failedNames := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		failedNames = append(failedNames, f.Link.Filename)
	}

	meta := harvest.RunMetadata{
		RunID:               runID,
		Timestamp:           r.clock.Now(),
		DownloadDirectory:   r.downloadDir,
		TotalFiles:          result.Total(),
		SuccessfulDownloads: len(result.Successes),
		FailedDownloads:     len(result.Failures),
		FailedFilenames:     failedNames,
	}

	path := filepath.Join(r.downloadDir, MetadataFile)
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return harvest.RunMetadata{}, &harvest.PersistenceError{Path: path, Err: fmt.Errorf("marshal metadata: %w", err)}
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return harvest.RunMetadata{}, &harvest.PersistenceError{Path: path, Err: err}
	}

	r.logger.Info("run metadata written",
		zap.String("run_id", meta.RunID),
		zap.String("path", path),
		zap.Int("total", meta.TotalFiles),
		zap.Int("succeeded", meta.SuccessfulDownloads),
		zap.Int("failed", meta.FailedDownloads),
	)
	return meta, nil
}
