package fetcher

import (
	"context"
	"errors"
)

// Sentinel errors for body-fetching operations, allowing the Body Fetcher
// stage to distinguish failure modes and decide whether to mark a cluster
// member's body fetch as permanently failed or merely retry-worthy.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an
	// unsupported scheme. Only http:// and https:// are supported.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private IP address.
	// This error prevents Server-Side Request Forgery (SSRF) attacks.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the
	// configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates content extraction failed: the HTML
	// could not be parsed, or no readable article content was found.
	ErrReadabilityFailed = errors.New("content extraction failed")
)

// ContentFetcher fetches and extracts article body text from a URL.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}
