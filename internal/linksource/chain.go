package linksource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// Chain tries the primary source and falls back to the secondary
// exactly once. When both fail, the fallback's error is returned (it
// is the most recent diagnostic) with the primary's error as context.
type Chain struct {
	primary  harvest.LinkSource
	fallback harvest.LinkSource
	logger   *zap.Logger
}

// NewChain builds a Chain. The fallback may be nil, in which case the
// primary's error propagates directly.
func NewChain(primary, fallback harvest.LinkSource, logger *zap.Logger) *Chain {
	return &Chain{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Extract implements harvest.LinkSource.
func (c *Chain) Extract(ctx context.Context, pageURL string, selector string) ([]harvest.Link, error) {
	links, primaryErr := c.primary.Extract(ctx, pageURL, selector)
	if primaryErr == nil {
		return links, nil
	}
	if c.fallback == nil {
		return nil, primaryErr
	}

	c.logger.Warn("primary link extraction failed, switching to fallback",
		zap.String("url", pageURL),
		zap.Error(primaryErr),
	)
	harvest.TotalFallbackExtractions.Inc()

	links, fallbackErr := c.fallback.Extract(ctx, pageURL, selector)
	if fallbackErr != nil {
		c.logger.Error("fallback link extraction failed",
			zap.String("url", pageURL),
			zap.Error(fallbackErr),
		)
		return nil, fmt.Errorf("link extraction failed (primary: %v): %w", primaryErr, fallbackErr)
	}
	return links, nil
}
