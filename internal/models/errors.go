package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("url must be an absolute http or https url")
	// ErrNoURLs is returned when a bulk run receives an empty list.
	ErrNoURLs = errors.New("no urls provided")
	// ErrTooManyURLs is returned when a bulk run exceeds the configured cap.
	ErrTooManyURLs = errors.New("too many urls in bulk request")
)

// FetchError reports that neither fetch strategy produced the page
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ScanError reports that a security scan target could not be reached at all
type ScanError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("scan %s: %s", e.URL, e.Reason)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
