// Package cache holds rendered pages for a fixed TTL.
//
// Two implementations share the PageCache contract: Memory keeps entries in
// process, Redis shares them between instances. Both expire entries after the
// TTL given at construction and drop everything on Clear.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a rendered index page is served from cache.
const DefaultTTL = 20 * time.Second

// Page is one cached response body.
type Page struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// PageCache stores rendered pages by key.
//
// Get reports ok=false for a missing or expired key. Clear removes every
// entry; it is the explicit invalidation entry point.
type PageCache interface {
	Get(ctx context.Context, key string) (page *Page, ok bool, err error)
	Set(ctx context.Context, key string, page *Page) error
	Clear(ctx context.Context) error
}
