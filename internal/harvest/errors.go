package harvest

import "fmt"

// FetchError reports that a page could not be retrieved (network
// failure, timeout, or non-2xx status).
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a selector engine failure. It is never returned
// for a selector that simply matches nothing.
type ParseError struct {
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse selector %q: %v", e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractionError reports a failed archive extraction.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PersistenceError reports a failed metadata write. It is fatal to the
// run: the metadata file is the only durable record of what happened.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
