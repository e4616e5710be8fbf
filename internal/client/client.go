// Package client is the HTTP client the CLI and dashboard use to talk to a
// running musicd.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/mikey-austin/musicd/pkg/music"
)

// Options configures a daemon client.
type Options struct {
	Host    string
	Port    int
	Timeout time.Duration
	// Autostart spawns DaemonBin when the daemon is not reachable.
	Autostart bool
	DaemonBin string
}

// Client talks to one musicd instance.
type Client struct {
	base      string
	http      *http.Client
	autostart bool
	daemonBin string
}

// New creates a client. Host and port fall back to MUSICD_HOST/MUSICD_PORT,
// then to the local defaults.
func New(opts Options) *Client {
	host := opts.Host
	if host == "" {
		host = os.Getenv("MUSICD_HOST")
	}
	if host == "" {
		host = "127.0.0.1"
	}
	port := opts.Port
	if port == 0 {
		if env := os.Getenv("MUSICD_PORT"); env != "" {
			if parsed, err := strconv.Atoi(env); err == nil {
				port = parsed
			}
		}
	}
	if port == 0 {
		port = 5000
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	daemonBin := opts.DaemonBin
	if daemonBin == "" {
		daemonBin = "musicd"
	}

	return &Client{
		base:      fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(port))),
		http:      &http.Client{Timeout: timeout},
		autostart: opts.Autostart,
		daemonBin: daemonBin,
	}
}

// BaseURL returns the daemon base URL.
func (c *Client) BaseURL() string {
	return c.base
}

// Play resolves a query and starts it immediately.
func (c *Client) Play(ctx context.Context, query string) (music.PlayReply, error) {
	var reply music.PlayReply
	err := c.postJSON(ctx, "/play", music.PlayRequest{Query: query}, &reply)
	return reply, err
}

// QueueAdd resolves a query and appends it to the queue.
func (c *Client) QueueAdd(ctx context.Context, query string) (music.QueueAddReply, error) {
	var reply music.QueueAddReply
	err := c.postJSON(ctx, "/queue", music.PlayRequest{Query: query}, &reply)
	return reply, err
}

// QueueList returns the pending queue.
func (c *Client) QueueList(ctx context.Context) (music.QueueListReply, error) {
	var reply music.QueueListReply
	err := c.getJSON(ctx, "/queue", &reply)
	return reply, err
}

// Search returns candidate matches without playing anything.
func (c *Client) Search(ctx context.Context, query string, limit int) (music.SearchReply, error) {
	var reply music.SearchReply
	err := c.postJSON(ctx, "/search", music.SearchRequest{Query: query, Limit: limit}, &reply)
	return reply, err
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) (music.OKReply, error) {
	var reply music.OKReply
	err := c.postJSON(ctx, "/pause", struct{}{}, &reply)
	return reply, err
}

// Resume resumes playback.
func (c *Client) Resume(ctx context.Context) (music.OKReply, error) {
	var reply music.OKReply
	err := c.postJSON(ctx, "/resume", struct{}{}, &reply)
	return reply, err
}

// Stop halts playback and clears the queue.
func (c *Client) Stop(ctx context.Context) (music.OKReply, error) {
	var reply music.OKReply
	err := c.postJSON(ctx, "/stop", struct{}{}, &reply)
	return reply, err
}

// Next skips to the next queued track.
func (c *Client) Next(ctx context.Context) (music.PlayReply, error) {
	var reply music.PlayReply
	err := c.postJSON(ctx, "/next", struct{}{}, &reply)
	return reply, err
}

// Status returns the daemon's full playback state.
func (c *Client) Status(ctx context.Context) (music.StatusReply, error) {
	var reply music.StatusReply
	err := c.getJSON(ctx, "/status", &reply)
	return reply, err
}

// EnsureDaemon checks reachability and, when autostart is on, spawns the
// daemon and waits for it to come up.
func (c *Client) EnsureDaemon(ctx context.Context) error {
	if c.ping(ctx) == nil {
		return nil
	}
	if !c.autostart {
		return fmt.Errorf("no musicd at %s (start it or pass --autostart)", c.base)
	}

	cmd := exec.Command(c.daemonBin)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", c.daemonBin, err)
	}
	// Detach; the daemon outlives this CLI invocation.
	go func() { _ = cmd.Wait() }()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.ping(ctx) == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("musicd did not come up at %s", c.base)
}

func (c *Client) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, c.base+"/status", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, into)
}

func (c *Client) getJSON(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, into)
}

func (c *Client) do(req *http.Request, into any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("musicd unreachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode reply from %s: %w", req.URL.Path, err)
	}
	return nil
}
