// Package music defines the wire types shared by the musicd daemon and its
// clients. All request and reply bodies on the HTTP surface live here so the
// daemon, the CLI and the dashboard agree on one schema.
package music

import "fmt"

// Item describes a single playable track. Items are produced by the resolver
// and never mutated afterwards; WebpageURL is the playable locator and the
// only required field.
type Item struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	WebpageURL  string `json:"webpage_url"`
	Duration    int64  `json:"duration,omitempty"`
	DurationStr string `json:"duration_str,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// PlayRequest is the body for POST /play and POST /queue.
type PlayRequest struct {
	Query string `json:"query"`
}

// SearchRequest is the body for POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// OKReply is the minimal reply for pause/resume/stop.
type OKReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PlayReply answers POST /play and POST /next.
type PlayReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Track *Item  `json:"track"`
}

// QueueAddReply answers POST /queue.
type QueueAddReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Item  *Item  `json:"item"`
}

// QueueListReply answers GET /queue.
type QueueListReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Queue []Item `json:"queue"`
}

// SearchReply answers POST /search. Zero matches is a success with an empty
// result list, never an error.
type SearchReply struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Results []Item `json:"results"`
}

// StatusReply answers GET /status with a consistent point-in-time view.
type StatusReply struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Now     *Item  `json:"now"`
	Queue   []Item `json:"queue"`
	History []Item `json:"history"`
}

// FormatDuration renders seconds as m:ss or h:mm:ss, matching the display
// strings yt-dlp produces.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// DisplayDuration prefers the item's duration string, falling back to a
// rendered duration.
func (i Item) DisplayDuration() string {
	if i.DurationStr != "" {
		return i.DurationStr
	}
	return FormatDuration(i.Duration)
}
