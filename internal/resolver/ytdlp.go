package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mikey-austin/musicd/pkg/music"
)

const (
	defaultYTDLPBin     = "yt-dlp"
	defaultYTDLPTimeout = 20 * time.Second
	defaultSearchLimit  = 5
)

type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

// YTDLP resolves queries with the yt-dlp command-line extractor. Free text
// routes through ytsearch; direct links are extracted as-is.
type YTDLP struct {
	bin     string
	timeout time.Duration
	run     runFunc
}

// NewYTDLP creates a yt-dlp resolver.
func NewYTDLP(bin string, timeout time.Duration) *YTDLP {
	if bin == "" {
		bin = defaultYTDLPBin
	}
	if timeout <= 0 {
		timeout = defaultYTDLPTimeout
	}
	return &YTDLP{bin: bin, timeout: timeout, run: runCommand}
}

// ytdlpInfo mirrors the subset of yt-dlp's JSON output we care about. A
// playlist or search result nests entries; a single video does not.
type ytdlpInfo struct {
	Title       string      `json:"title"`
	Uploader    string      `json:"uploader"`
	Channel     string      `json:"channel"`
	WebpageURL  string      `json:"webpage_url"`
	URL         string      `json:"url"`
	Duration    float64     `json:"duration"`
	DurationStr string      `json:"duration_string"`
	Thumbnail   string      `json:"thumbnail"`
	Entries     []ytdlpInfo `json:"entries"`
}

// Resolve returns the best single match for the query.
func (y *YTDLP) Resolve(ctx context.Context, query string) (music.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return music.Item{}, ErrNotFound
	}
	target := query
	if !isURL(query) {
		target = "ytsearch1:" + query
	}

	info, err := y.extract(ctx, target, "--no-playlist")
	if err != nil {
		return music.Item{}, err
	}
	if info.Entries != nil {
		if len(info.Entries) == 0 {
			return music.Item{}, ErrNotFound
		}
		info = info.Entries[0]
	}
	item := itemFromInfo(info)
	if item.WebpageURL == "" {
		return music.Item{}, ErrNotFound
	}
	return item, nil
}

// Search returns up to limit matches for the query.
func (y *YTDLP) Search(ctx context.Context, query string, limit int) ([]music.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if isURL(query) {
		item, err := y.Resolve(ctx, query)
		if err != nil {
			if err == ErrNotFound {
				return []music.Item{}, nil
			}
			return nil, err
		}
		return []music.Item{item}, nil
	}

	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	info, err := y.extract(ctx, target, "--flat-playlist")
	if err != nil {
		return nil, err
	}
	results := make([]music.Item, 0, len(info.Entries))
	for _, entry := range info.Entries {
		item := itemFromInfo(entry)
		if item.WebpageURL == "" {
			continue
		}
		results = append(results, item)
	}
	return results, nil
}

func (y *YTDLP) extract(ctx context.Context, target string, extra ...string) (ytdlpInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	args := []string{
		"--dump-single-json",
		"--no-warnings",
		"--format", "bestaudio/best",
	}
	args = append(args, extra...)
	args = append(args, "--", target)

	out, err := y.run(ctx, y.bin, args...)
	if err != nil {
		return ytdlpInfo{}, fmt.Errorf("lookup failed: %w", err)
	}
	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return ytdlpInfo{}, fmt.Errorf("lookup failed: invalid yt-dlp output: %w", err)
	}
	return info, nil
}

func itemFromInfo(info ytdlpInfo) music.Item {
	locator := info.WebpageURL
	if locator == "" {
		locator = info.URL
	}
	artist := info.Uploader
	if artist == "" {
		artist = info.Channel
	}
	duration := int64(info.Duration)
	durationStr := info.DurationStr
	if durationStr == "" {
		durationStr = music.FormatDuration(duration)
	}
	return music.Item{
		Title:       info.Title,
		Artist:      artist,
		WebpageURL:  locator,
		Duration:    duration,
		DurationStr: durationStr,
		Channel:     info.Channel,
		Thumbnail:   info.Thumbnail,
	}
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s timed out", bin)
		}
		if msg := firstLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s", bin, msg)
		}
		return nil, fmt.Errorf("%s: %w", bin, err)
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
