// Package collysrc implements the fallback link source with a plain
// Colly GET. It skips JavaScript entirely, which makes it a useful
// second attempt when the headless browser cannot start or times out.
package collysrc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/statdocs/harvester/internal/harvest"
	"github.com/statdocs/harvester/internal/linksource"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Source implements harvest.LinkSource using the Colly collector.
type Source struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Source.
func New(cfg Config) *Source {
	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode; set the field directly to keep the collector synchronous.
	c := colly.NewCollector()
	c.Async = false
	c.WithTransport(newHTTPTransport())
	return &Source{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Extract fetches the raw page body and parses document links out of it.
func (s *Source) Extract(ctx context.Context, pageURL string, selector string) ([]harvest.Link, error) {
	var (
		body     []byte
		fetchErr error
	)

	collector := s.baseCollector.Clone()
	if s.cfg.UserAgent != "" {
		collector.UserAgent = s.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	timeout := s.cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := s.runCollector(ctx, collector, pageURL, &fetchErr); err != nil {
		return nil, &harvest.FetchError{URL: pageURL, Err: err}
	}

	return linksource.Parse(string(body), pageURL, selector)
}

func (s *Source) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
