package harvest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalDownloads tracks files successfully downloaded to disk.
	TotalDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_downloads_total",
		Help: "The total number of files successfully downloaded.",
	})
	// TotalDownloadFailures tracks downloads that settled as failures.
	TotalDownloadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_download_failures_total",
		Help: "The total number of failed downloads.",
	})
	// TotalBatches tracks batches issued by the scheduler.
	TotalBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_batches_total",
		Help: "The total number of download batches issued.",
	})
	// TotalExtractions tracks archives successfully extracted.
	TotalExtractions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_extractions_total",
		Help: "The total number of archives extracted.",
	})
	// TotalExtractionFailures tracks archive extractions that failed.
	TotalExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_extraction_failures_total",
		Help: "The total number of failed archive extractions.",
	})
	// TotalFallbackExtractions tracks runs that fell back to the raw fetch strategy.
	TotalFallbackExtractions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_link_fallbacks_total",
		Help: "The total number of link extractions served by the fallback strategy.",
	})
)
