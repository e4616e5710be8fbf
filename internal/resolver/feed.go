package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mikey-austin/musicd/pkg/music"
)

const defaultFeedTimeout = 15 * time.Second

// Feed resolves RSS/Atom podcast feeds. Resolve returns the newest episode
// with a playable enclosure; Search lists recent episodes.
type Feed struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewFeed creates a feed resolver.
func NewFeed(timeout time.Duration) *Feed {
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}
	return &Feed{parser: gofeed.NewParser(), timeout: timeout}
}

func (f *Feed) Resolve(ctx context.Context, query string) (music.Item, error) {
	items, err := f.episodes(ctx, query, 1)
	if err != nil {
		return music.Item{}, err
	}
	if len(items) == 0 {
		return music.Item{}, ErrNotFound
	}
	return items[0], nil
}

func (f *Feed) Search(ctx context.Context, query string, limit int) ([]music.Item, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return f.episodes(ctx, query, limit)
}

func (f *Feed) episodes(ctx context.Context, query string, limit int) ([]music.Item, error) {
	url := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(query), "feed:"))
	if url == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return episodesFromFeed(feed, limit), nil
}

func episodesFromFeed(feed *gofeed.Feed, limit int) []music.Item {
	results := make([]music.Item, 0, limit)
	for _, entry := range feed.Items {
		enclosure := pickEnclosure(entry)
		if enclosure == "" {
			continue
		}
		duration := episodeDuration(entry)
		results = append(results, music.Item{
			Title:       entry.Title,
			Artist:      feed.Title,
			WebpageURL:  enclosure,
			Duration:    duration,
			DurationStr: music.FormatDuration(duration),
			Channel:     feed.Title,
			Thumbnail:   episodeImage(feed, entry),
		})
		if len(results) >= limit {
			break
		}
	}
	return results
}

// pickEnclosure prefers audio enclosures but falls back to any enclosure
// with a URL; some feeds omit the MIME type.
func pickEnclosure(entry *gofeed.Item) string {
	var fallback string
	for _, enc := range entry.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
		if fallback == "" {
			fallback = enc.URL
		}
	}
	return fallback
}

// episodeDuration reads the itunes:duration tag, which is either plain
// seconds or a clock string like "1:02:03".
func episodeDuration(entry *gofeed.Item) int64 {
	if entry.ITunesExt == nil || entry.ITunesExt.Duration == "" {
		return 0
	}
	raw := strings.TrimSpace(entry.ITunesExt.Duration)
	if !strings.Contains(raw, ":") {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0
		}
		return secs
	}
	var total int64
	for _, part := range strings.Split(raw, ":") {
		val, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		total = total*60 + val
	}
	return total
}

func episodeImage(feed *gofeed.Feed, entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	if feed.Image != nil {
		return feed.Image.URL
	}
	return ""
}
