package ndk

import (
	"fmt"
)

// DownloadError is returned when every transport failed to fetch a release archive.
type DownloadError struct {
	URL string
	// Err combines the failure of each transport that was tried.
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ExtractionError is returned when a downloaded archive could not be unpacked into place.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
