// Package blob provides binary storage for uploaded files with signed,
// expiring access URLs.
package blob

import (
	"context"
	"time"
)

// Store is the binary storage collaborator. Locators are opaque URIs; only the
// store that issued a locator can resolve it.
type Store interface {
	// Put writes content under destPath and returns a locator for it.
	Put(ctx context.Context, content []byte, destPath, contentType string) (string, error)
	// Get returns the content behind a locator.
	Get(ctx context.Context, uri string) ([]byte, error)
	// SignedURL returns a URL path granting read access to the locator for ttl.
	SignedURL(uri string, ttl time.Duration) (string, error)
}
