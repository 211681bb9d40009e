// Package postproc routes downloaded files into the processing
// directory: archives are extracted, everything else is copied.
package postproc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

const archiveExt = ".zip"

// Processor post-processes successful downloads. Per-file errors are
// logged and skipped so the run always reaches the recorder.
type Processor struct {
	dir       string
	extractor harvest.Extractor
	logger    *zap.Logger
}

// New builds a Processor rooted at dir.
func New(dir string, extractor harvest.Extractor, logger *zap.Logger) (*Processor, error) {
	if dir == "" {
		return nil, fmt.Errorf("processing directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create processing dir %s: %w", dir, err)
	}
	return &Processor{
		dir:       dir,
		extractor: extractor,
		logger:    logger,
	}, nil
}

// Process handles every successful download in order. It never returns
// an error; failures are isolated per file.
func (p *Processor) Process(ctx context.Context, successes []harvest.Success) {
	for _, s := range successes {
		if err := p.processOne(ctx, s); err != nil {
			p.logger.Error("post-processing failed",
				zap.String("path", s.Path),
				zap.String("url", s.Link.URL),
				zap.Error(err),
			)
		}
	}
}

func (p *Processor) processOne(ctx context.Context, s harvest.Success) error {
	name := filepath.Base(s.Path)
	if strings.EqualFold(filepath.Ext(name), archiveExt) {
		dest := filepath.Join(p.dir, strings.TrimSuffix(name, filepath.Ext(name)))
		if err := p.extractor.Extract(ctx, s.Path, dest); err != nil {
			harvest.TotalExtractionFailures.Inc()
			return err
		}
		harvest.TotalExtractions.Inc()
		p.logger.Debug("archive extracted", zap.String("archive", s.Path), zap.String("dest", dest))
		return nil
	}

	target := filepath.Join(p.dir, name)
	if err := copyFile(s.Path, target); err != nil {
		return err
	}
	p.logger.Debug("file copied", zap.String("src", s.Path), zap.String("dest", target))
	return nil
}

// copyFile copies src to dst, overwriting an existing file.
func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("copy to %s: %w", dst, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", dst, closeErr)
	}
	return nil
}
