package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const singleVideoJSON = `{
	"title": "Take Five",
	"uploader": "Dave Brubeck",
	"channel": "Dave Brubeck - Topic",
	"webpage_url": "https://example.com/watch?v=abc",
	"duration": 324,
	"duration_string": "5:24",
	"thumbnail": "https://example.com/thumb.jpg"
}`

const searchJSON = `{
	"title": "ytsearch",
	"entries": [
		{"title": "Take Five", "uploader": "Dave Brubeck", "url": "https://example.com/watch?v=abc", "duration": 324},
		{"title": "Blue Rondo", "uploader": "Dave Brubeck", "url": "https://example.com/watch?v=def", "duration": 411},
		{"title": "broken entry without a link"}
	]
}`

func stubYTDLP(t *testing.T, output string, capture *[]string) *YTDLP {
	t.Helper()
	y := NewYTDLP("", time.Second)
	y.run = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
		if capture != nil {
			*capture = append([]string{bin}, args...)
		}
		return []byte(output), nil
	}
	return y
}

func TestYTDLPResolveFreeText(t *testing.T) {
	var argv []string
	y := stubYTDLP(t, singleVideoJSON, &argv)

	item, err := y.Resolve(context.Background(), "take five brubeck")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.WebpageURL != "https://example.com/watch?v=abc" {
		t.Fatalf("wrong locator: %q", item.WebpageURL)
	}
	if item.Artist != "Dave Brubeck" {
		t.Fatalf("wrong artist: %q", item.Artist)
	}
	if item.DurationStr != "5:24" {
		t.Fatalf("wrong duration string: %q", item.DurationStr)
	}

	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "ytsearch1:take five brubeck") {
		t.Fatalf("free text should route through ytsearch1, got %q", joined)
	}
}

func TestYTDLPResolveDirectURL(t *testing.T) {
	var argv []string
	y := stubYTDLP(t, singleVideoJSON, &argv)

	if _, err := y.Resolve(context.Background(), "https://example.com/watch?v=abc"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	joined := strings.Join(argv, " ")
	if strings.Contains(joined, "ytsearch") {
		t.Fatalf("direct URL must not be wrapped in a search, got %q", joined)
	}
}

func TestYTDLPResolveUnwrapsSearchEntries(t *testing.T) {
	y := stubYTDLP(t, searchJSON, nil)

	item, err := y.Resolve(context.Background(), "brubeck")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if item.Title != "Take Five" {
		t.Fatalf("expected first entry, got %q", item.Title)
	}
}

func TestYTDLPResolveNoResults(t *testing.T) {
	y := stubYTDLP(t, `{"title": "ytsearch", "entries": []}`, nil)

	if _, err := y.Resolve(context.Background(), "gibberish zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := y.Resolve(context.Background(), "   "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank query should be ErrNotFound, got %v", err)
	}
}

func TestYTDLPSearch(t *testing.T) {
	var argv []string
	y := stubYTDLP(t, searchJSON, &argv)

	results, err := y.Search(context.Background(), "brubeck", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 usable results, got %d", len(results))
	}
	if results[1].WebpageURL != "https://example.com/watch?v=def" {
		t.Fatalf("wrong second result: %q", results[1].WebpageURL)
	}

	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "ytsearch3:brubeck") {
		t.Fatalf("expected bounded search target, got %q", joined)
	}
	if !strings.Contains(joined, "--flat-playlist") {
		t.Fatalf("search should use flat extraction, got %q", joined)
	}
}

func TestYTDLPSearchCommandFailure(t *testing.T) {
	y := NewYTDLP("", time.Second)
	y.run = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
		return nil, errors.New("yt-dlp: ERROR: unable to download")
	}

	if _, err := y.Search(context.Background(), "brubeck", 3); err == nil {
		t.Fatalf("expected lookup failure to propagate")
	}
}
