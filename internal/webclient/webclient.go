// Package webclient abstracts outbound HTTP behind swappable backends: a
// plain net/http client and a headless-browser chromedp client for pages that
// need rendering or screenshots.
package webclient

import (
	"context"
	"net/http"
	"time"
)

// WebClient executes requests against remote services.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// Request is a backend-neutral request description.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options carries backend-specific switches, e.g. "screenshot": "true"
	// for the chromedp backend.
	Options map[string]string
}

// Response is the outcome of a request.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	Screenshot []byte
	StatusCode int
	FetchedAt  time.Time
}
