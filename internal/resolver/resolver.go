// Package resolver turns free-text queries and direct links into playable
// items. Resolvers hold no shared mutable state and are safe for concurrent
// use.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/mikey-austin/musicd/pkg/music"
)

// ErrNotFound means a query produced zero results. It is not a transport
// failure; callers surface it as an ordinary "no results" reply.
var ErrNotFound = errors.New("no results")

// Resolver resolves queries into playable items.
type Resolver interface {
	// Resolve returns the best single match for a free-text query or a
	// direct link.
	Resolve(ctx context.Context, query string) (music.Item, error)
	// Search returns up to limit matches. Zero matches is an empty slice,
	// not an error.
	Search(ctx context.Context, query string, limit int) ([]music.Item, error)
}

// Chain routes feed URLs to the feed resolver and everything else to the
// lookup provider.
type Chain struct {
	Lookup Resolver
	Feed   Resolver
}

func (c Chain) pick(query string) Resolver {
	if c.Feed != nil && IsFeedQuery(query) {
		return c.Feed
	}
	return c.Lookup
}

func (c Chain) Resolve(ctx context.Context, query string) (music.Item, error) {
	return c.pick(query).Resolve(ctx, query)
}

func (c Chain) Search(ctx context.Context, query string, limit int) ([]music.Item, error) {
	return c.pick(query).Search(ctx, query, limit)
}

// IsFeedQuery reports whether a query addresses an RSS/Atom feed: either a
// feed: prefix or a URL with a feed-looking path.
func IsFeedQuery(query string) bool {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, "feed:") {
		return true
	}
	if !isURL(query) {
		return false
	}
	path := strings.ToLower(query)
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	return strings.HasSuffix(path, ".xml") || strings.HasSuffix(path, ".rss") || strings.HasSuffix(path, "/feed") || strings.HasSuffix(path, "/rss")
}

func isURL(query string) bool {
	return strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://")
}
