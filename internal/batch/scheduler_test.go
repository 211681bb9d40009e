package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// trackingDownloader records issue order and concurrency so tests can
// assert the batch barrier.
type trackingDownloader struct {
	mu            sync.Mutex
	failURLs      map[string]bool
	active        int
	maxActive     int
	settled       map[int]bool
	issuedAfter   map[int][]int // index -> unsettled indices at issue time
	totalIssued   int
	downloadDelay func()
}

func newTrackingDownloader(failURLs ...string) *trackingDownloader {
	fails := make(map[string]bool, len(failURLs))
	for _, u := range failURLs {
		fails[u] = true
	}
	return &trackingDownloader{
		failURLs:    fails,
		settled:     make(map[int]bool),
		issuedAfter: make(map[int][]int),
	}
}

func (d *trackingDownloader) Download(_ context.Context, link harvest.Link, index int) (string, error) {
	d.mu.Lock()
	d.active++
	if d.active > d.maxActive {
		d.maxActive = d.active
	}
	d.totalIssued++
	for earlier := 0; earlier < index; earlier++ {
		if !d.settled[earlier] {
			d.issuedAfter[index] = append(d.issuedAfter[index], earlier)
		}
	}
	d.mu.Unlock()

	if d.downloadDelay != nil {
		d.downloadDelay()
	}

	d.mu.Lock()
	d.active--
	d.settled[index] = true
	d.mu.Unlock()

	if d.failURLs[link.URL] {
		return "", fmt.Errorf("download %s: timeout after 1s", link.URL)
	}
	return "/tmp/" + link.Filename, nil
}

func makeLinks(n int) []harvest.Link {
	links := make([]harvest.Link, n)
	for i := range links {
		links[i] = harvest.Link{
			URL:      fmt.Sprintf("https://example.com/f%d.csv", i),
			Filename: fmt.Sprintf("f%d.csv", i),
		}
	}
	return links
}

func TestDownloadAllProducesOneOutcomePerLink(t *testing.T) {
	t.Parallel()

	d := newTrackingDownloader()
	s := NewScheduler(d, 5, zap.NewNop())

	result := s.DownloadAll(context.Background(), makeLinks(7))
	require.Equal(t, 7, result.Total())
	require.Len(t, result.Successes, 7)
	require.Empty(t, result.Failures)
}

func TestDownloadAllConcurrencyNeverExceedsBatchSize(t *testing.T) {
	t.Parallel()

	d := newTrackingDownloader()
	s := NewScheduler(d, 5, zap.NewNop())

	s.DownloadAll(context.Background(), makeLinks(17))
	require.LessOrEqual(t, d.maxActive, 5)
	require.Equal(t, 17, d.totalIssued)
}

func TestDownloadAllBatchBarrier(t *testing.T) {
	t.Parallel()

	d := newTrackingDownloader()
	s := NewScheduler(d, 3, zap.NewNop())

	s.DownloadAll(context.Background(), makeLinks(9))

	// A link in batch k may only observe unsettled indices from its own
	// batch: the previous batch must be fully settled before issue.
	for index, unsettled := range d.issuedAfter {
		batchStart := (index / 3) * 3
		for _, earlier := range unsettled {
			require.GreaterOrEqual(t, earlier, batchStart,
				"link %d issued while link %d from a previous batch was unsettled", index, earlier)
		}
	}
}

func TestDownloadAllSevenLinksBatchOfFive(t *testing.T) {
	t.Parallel()

	d := newTrackingDownloader()
	s := NewScheduler(d, 5, zap.NewNop())

	result := s.DownloadAll(context.Background(), makeLinks(7))
	require.Equal(t, 7, result.Total())
	require.Len(t, result.Successes, 7)
	require.Empty(t, result.Failures)

	// The two overflow links belong to the second batch: they may only
	// be issued once the first five have all settled.
	for _, index := range []int{5, 6} {
		for _, earlier := range d.issuedAfter[index] {
			require.GreaterOrEqual(t, earlier, 5,
				"link %d issued before link %d settled", index, earlier)
		}
	}
}

func TestDownloadAllFailureIsolatedPerLink(t *testing.T) {
	t.Parallel()

	links := makeLinks(3)
	d := newTrackingDownloader(links[1].URL)
	s := NewScheduler(d, 5, zap.NewNop())

	result := s.DownloadAll(context.Background(), links)
	require.Len(t, result.Successes, 2)
	require.Len(t, result.Failures, 1)
	require.Equal(t, links[1], result.Failures[0].Link)
	require.Contains(t, result.Failures[0].Reason, "timeout")
}

func TestDownloadAllEmptyInput(t *testing.T) {
	t.Parallel()

	s := NewScheduler(newTrackingDownloader(), 5, zap.NewNop())
	result := s.DownloadAll(context.Background(), nil)
	require.Zero(t, result.Total())
}

func TestDownloadAllCanceledContextRecordsRemainingAsFailures(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler(newTrackingDownloader(), 5, zap.NewNop())
	result := s.DownloadAll(ctx, makeLinks(8))

	require.Equal(t, 8, result.Total())
	require.Len(t, result.Failures, 8)
	for _, f := range result.Failures {
		require.True(t, strings.Contains(f.Reason, "canceled"))
	}
}
