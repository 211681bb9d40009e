// Package headless implements the primary link source with a headless
// browser, so pages that populate their document lists with JavaScript
// still yield links.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/statdocs/harvester/internal/harvest"
	"github.com/statdocs/harvester/internal/linksource"
)

// Config controls the behavior of the headless source.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
}

// Source implements harvest.LinkSource using chromedp.
type Source struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
}

// New creates a headless source backed by chromedp.
func New(cfg Config) *Source {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 60 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Source{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close cancels the allocator context.
func (s *Source) Close() {
	s.allocCancel()
}

// Extract navigates to the page, waits for the rendered DOM, and
// parses document links out of it.
func (s *Source) Extract(ctx context.Context, pageURL string, selector string) ([]harvest.Link, error) {
	taskCtx, taskCancel := chromedp.NewContext(s.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, s.cfg.NavigationTimeout)
	defer cancel()

	// Respect caller cancellation without tying chromedp's browser
	// lifetime to the run context.
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	var html string
	actions := []chromedp.Action{
		s.networkSetupAction(),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, &harvest.FetchError{URL: pageURL, Err: fmt.Errorf("chromedp run: %w", err)}
	}

	return linksource.Parse(html, pageURL, selector)
}

func (s *Source) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}
