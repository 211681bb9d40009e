// Package harvest defines core types shared across subsystems.
package harvest

import "time"

// Link is one extracted document reference: an absolute URL plus the
// filename suggested by the page. The filename is not yet sanitized.
type Link struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Success records one link that was downloaded to a local path.
type Success struct {
	Link Link
	Path string
}

// Failure records one link whose download did not complete.
type Failure struct {
	Link   Link
	Reason string
}

// BatchResult partitions the outcomes of a whole run. Every submitted
// link appears in exactly one of the two slices.
type BatchResult struct {
	Successes []Success
	Failures  []Failure
}

// Total returns the number of settled outcomes.
func (r BatchResult) Total() int {
	return len(r.Successes) + len(r.Failures)
}

// RunMetadata is the durable summary persisted once per run.
type RunMetadata struct {
	RunID               string    `json:"run_id"`
	Timestamp           time.Time `json:"timestamp"`
	DownloadDirectory   string    `json:"download_directory"`
	TotalFiles          int       `json:"total_files"`
	SuccessfulDownloads int       `json:"successful_downloads"`
	FailedDownloads     int       `json:"failed_downloads"`
	FailedFilenames     []string  `json:"failed_filenames"`
}
