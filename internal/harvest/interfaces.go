package harvest

import (
	"context"
	"time"
)

// LinkSource extracts document links from a page. Zero matches is a
// valid empty result, not an error.
type LinkSource interface {
	Extract(ctx context.Context, pageURL string, selector string) ([]Link, error)
}

// Downloader fetches one link to disk and reports the written path.
type Downloader interface {
	Download(ctx context.Context, link Link, index int) (string, error)
}

// Extractor unpacks an archive into a destination directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath string, destDir string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// RunStore persists run summaries beyond the per-run metadata file.
type RunStore interface {
	Insert(ctx context.Context, meta RunMetadata) error
	Close() error
}
