// Package batch runs downloads in fixed-size concurrent batches.
package batch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/statdocs/harvester/internal/harvest"
)

// Scheduler partitions links into contiguous batches and settles each
// batch fully before issuing the next. Peak concurrency is capped at
// the batch size; one link's failure never touches its siblings.
type Scheduler struct {
	downloader harvest.Downloader
	batchSize  int
	logger     *zap.Logger
}

// NewScheduler builds a Scheduler.
func NewScheduler(downloader harvest.Downloader, batchSize int, logger *zap.Logger) *Scheduler {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Scheduler{
		downloader: downloader,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// DownloadAll downloads every link and partitions the outcomes. Every
// submitted link lands in exactly one of the two result slices. A
// canceled context stops further batches; links never issued are
// recorded as failures so the accounting stays total.
func (s *Scheduler) DownloadAll(ctx context.Context, links []harvest.Link) harvest.BatchResult {
	var (
		result harvest.BatchResult
		mu     sync.Mutex
	)

	for start := 0; start < len(links); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			for _, link := range links[start:] {
				result.Failures = append(result.Failures, harvest.Failure{
					Link:   link,
					Reason: "run canceled: " + err.Error(),
				})
				harvest.TotalDownloadFailures.Inc()
			}
			break
		}

		end := min(start+s.batchSize, len(links))
		harvest.TotalBatches.Inc()
		s.logger.Debug("issuing batch",
			zap.Int("first", start),
			zap.Int("size", end-start),
		)

		var wg sync.WaitGroup
		for i, link := range links[start:end] {
			wg.Add(1)
			go func(index int, link harvest.Link) {
				defer wg.Done()
				path, err := s.downloader.Download(ctx, link, index)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					harvest.TotalDownloadFailures.Inc()
					s.logger.Warn("download failed",
						zap.String("url", link.URL),
						zap.String("filename", link.Filename),
						zap.Error(err),
					)
					result.Failures = append(result.Failures, harvest.Failure{
						Link:   link,
						Reason: err.Error(),
					})
					return
				}
				harvest.TotalDownloads.Inc()
				result.Successes = append(result.Successes, harvest.Success{
					Link: link,
					Path: path,
				})
			}(start+i, link)
		}
		wg.Wait()
	}

	return result
}
