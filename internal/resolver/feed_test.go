package resolver

import (
	"testing"

	"github.com/mmcdole/gofeed"
)

const podcastRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Late Night Jazz</title>
    <item>
      <title>Episode 12: Modal</title>
      <enclosure url="https://example.com/ep12.mp3" type="audio/mpeg" length="1"/>
      <itunes:duration>1:02:03</itunes:duration>
    </item>
    <item>
      <title>Episode 11: Bebop</title>
      <enclosure url="https://example.com/ep11.mp3" type="audio/mpeg" length="1"/>
      <itunes:duration>1845</itunes:duration>
    </item>
    <item>
      <title>Episode 10: no audio</title>
    </item>
  </channel>
</rss>`

func parseFixture(t *testing.T) *gofeed.Feed {
	t.Helper()
	feed, err := gofeed.NewParser().ParseString(podcastRSS)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return feed
}

func TestFeedEpisodes(t *testing.T) {
	items := episodesFromFeed(parseFixture(t), 10)
	if len(items) != 2 {
		t.Fatalf("expected 2 playable episodes, got %d", len(items))
	}
	first := items[0]
	if first.WebpageURL != "https://example.com/ep12.mp3" {
		t.Fatalf("wrong enclosure: %q", first.WebpageURL)
	}
	if first.Artist != "Late Night Jazz" {
		t.Fatalf("expected feed title as artist, got %q", first.Artist)
	}
	if first.Duration != 3723 {
		t.Fatalf("clock duration parse: got %d", first.Duration)
	}
	if items[1].Duration != 1845 {
		t.Fatalf("seconds duration parse: got %d", items[1].Duration)
	}
}

func TestFeedEpisodesLimit(t *testing.T) {
	items := episodesFromFeed(parseFixture(t), 1)
	if len(items) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(items))
	}
	if items[0].Title != "Episode 12: Modal" {
		t.Fatalf("expected newest episode first, got %q", items[0].Title)
	}
}

func TestIsFeedQuery(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"feed:https://example.com/anything", true},
		{"https://example.com/show.xml", true},
		{"https://example.com/show.rss?page=2", true},
		{"https://example.com/podcast/feed", true},
		{"https://example.com/watch?v=abc", false},
		{"take five brubeck", false},
	}
	for _, tc := range cases {
		if got := IsFeedQuery(tc.query); got != tc.want {
			t.Errorf("IsFeedQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}
