package models

import (
	"net/http"
	"time"
)

// FetchResult is what a page fetcher hands to the extractors.
type FetchResult struct {
	URL           string
	FinalURL      string
	Document      []byte
	StatusCode    int
	Headers       http.Header
	ContentLength int
	Timing        time.Duration
	Redirects     int
}

// ProbeResult is the outcome of a single link reachability probe.
type ProbeResult struct {
	StatusCode int
	Method     string
}
