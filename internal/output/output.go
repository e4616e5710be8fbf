// Package output renders command results to stdout, either for humans or as
// JSON for scripting.
package output

// Printer renders output to stdout.
type Printer interface {
	Print(v any) error
}

// Result types carried from commands to printers.
type (
	// TrackResult reports a track that just started or was queued.
	TrackResult struct {
		Action string `json:"action"`
		Title  string `json:"title"`
		Artist string `json:"artist,omitempty"`
		URL    string `json:"url"`
		Length string `json:"length,omitempty"`
	}

	// QueueResult lists pending tracks.
	QueueResult struct {
		Tracks []TrackLine `json:"tracks"`
	}

	// SearchResult lists candidate matches.
	SearchResult struct {
		Query  string      `json:"query"`
		Tracks []TrackLine `json:"tracks"`
	}

	// StatusResult reports the daemon's playback state.
	StatusResult struct {
		Now     *TrackLine  `json:"now"`
		Queue   []TrackLine `json:"queue"`
		History []TrackLine `json:"history"`
	}

	// MessageResult is a bare confirmation line.
	MessageResult struct {
		Message string `json:"message"`
	}

	// TrackLine is one row in a queue, history or search listing.
	TrackLine struct {
		Index  int    `json:"index,omitempty"`
		Title  string `json:"title"`
		Artist string `json:"artist,omitempty"`
		Length string `json:"length,omitempty"`
		URL    string `json:"url"`
	}
)
