package gitservice

import (
	"context"
	"fmt"
)

// Fetcher retrieves a JSON document. Implementations perform a single round
// trip per call and never retry.
type Fetcher interface {
	// FetchJSON returns the decoded body of url, objects decode to
	// map[string]interface{} and arrays to []interface{}
	FetchJSON(ctx context.Context, url string) (interface{}, error)
}

// FetcherFunc adapts a plain function to Fetcher
type FetcherFunc func(ctx context.Context, url string) (interface{}, error)

// FetchJSON calls f(ctx, url)
func (f FetcherFunc) FetchJSON(ctx context.Context, url string) (interface{}, error) {
	return f(ctx, url)
}

// TransportError is any failure to obtain a JSON document: network errors,
// non-success status codes and bodies that are not valid JSON.
type TransportError struct {
	URL string
	// StatusCode is zero when no response was received
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
