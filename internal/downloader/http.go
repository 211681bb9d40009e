// Package downloader streams remote documents to disk.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// Config controls download behavior.
type Config struct {
	// Dir is the directory downloads are written into.
	Dir string
	// Timeout bounds each individual transfer.
	Timeout time.Duration
	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// HTTP implements harvest.Downloader over a pooled http.Transport. The
// response body is streamed straight to the destination file, so memory
// use stays flat regardless of file size.
type HTTP struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds an HTTP downloader and ensures the destination directory exists.
func New(cfg Config, logger *zap.Logger) (*HTTP, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("download directory is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", cfg.Dir, err)
	}
	return &HTTP{
		cfg:    cfg,
		client: &http.Client{Transport: newHTTPTransport()},
		logger: logger,
	}, nil
}

// Download fetches one link to disk and returns the written path.
// Partial files left behind by a failed transfer are not cleaned up;
// the next run overwrites them.
func (d *HTTP) Download(ctx context.Context, link harvest.Link, index int) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, link.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", link.URL, err)
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", d.classify(link.URL, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			d.logger.Warn("close response body", zap.String("url", link.URL), zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: unexpected status %d", link.URL, resp.StatusCode)
	}

	target := d.targetPath(link, index)
	if err := d.writeBody(target, resp.Body); err != nil {
		return "", d.classify(link.URL, err)
	}

	d.logger.Debug("downloaded", zap.String("url", link.URL), zap.String("path", target))
	return target, nil
}

func (d *HTTP) targetPath(link harvest.Link, index int) string {
	name := harvest.SanitizeFilename(link.Filename)
	if name == "" {
		name = fmt.Sprintf("file-%d", index)
	}
	return filepath.Join(d.cfg.Dir, name)
}

// writeBody streams the body into the target file, closing the file on
// every exit path.
func (d *HTTP) writeBody(target string, body io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	_, copyErr := io.Copy(out, body)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", target, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", target, closeErr)
	}
	return nil
}

// classify surfaces timeouts with an explicit reason so failure records
// stay diagnosable.
func (d *HTTP) classify(url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("download %s: timeout after %s: %w", url, d.cfg.Timeout, err)
	}
	return fmt.Errorf("download %s: %w", url, err)
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
