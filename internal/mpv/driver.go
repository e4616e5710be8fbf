// Package mpv drives playback through the mpv media player, one subprocess
// per track, controlled over mpv's JSON IPC socket. mpv resolves streaming
// URLs itself via its yt-dlp hook, so the locator handed to Start can be a
// plain webpage URL.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const ipcTimeout = 2 * time.Second

// Options configures the driver.
type Options struct {
	Bin       string   // mpv binary, default "mpv"
	SocketDir string   // directory for the IPC socket, default os.TempDir()
	ExtraArgs []string // appended to the mpv command line
	Logger    *zap.Logger
}

// Driver implements player.Engine on top of mpv.
type Driver struct {
	mu        sync.Mutex
	bin       string
	socketDir string
	extra     []string
	log       *zap.Logger
	cmd       *exec.Cmd
	socket    string
	seq       uint64
}

// NewDriver creates an mpv driver.
func NewDriver(opts Options) *Driver {
	if opts.Bin == "" {
		opts.Bin = "mpv"
	}
	if opts.SocketDir == "" {
		opts.SocketDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Driver{
		bin:       opts.Bin,
		socketDir: opts.SocketDir,
		extra:     opts.ExtraArgs,
		log:       opts.Logger,
	}
}

// nextSocketLocked returns a fresh IPC socket path. The pid keeps two
// daemons on one host apart; the sequence number keeps an exiting mpv's
// unlink-on-quit from tearing down the socket its successor just bound.
func (d *Driver) nextSocketLocked() string {
	d.seq++
	return filepath.Join(d.socketDir, fmt.Sprintf("musicd-mpv-%d-%d.sock", os.Getpid(), d.seq))
}

// Start plays url and blocks until mpv exits, either naturally at the end of
// the track or because Stop killed it. A kill-induced exit is not an error;
// a spawn failure or a nonzero exit is.
func (d *Driver) Start(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.cmd != nil {
		d.mu.Unlock()
		return errors.New("engine busy")
	}
	socket := d.nextSocketLocked()

	args := []string{
		"--no-video",
		"--no-terminal",
		"--audio-display=no",
		"--input-ipc-server=" + socket,
	}
	args = append(args, d.extra...)
	args = append(args, "--", url)
	cmd := exec.CommandContext(ctx, d.bin, args...)

	if err := cmd.Start(); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("start mpv: %w", err)
	}
	d.cmd = cmd
	d.socket = socket
	d.mu.Unlock()

	err := cmd.Wait()

	d.mu.Lock()
	if d.cmd == cmd {
		d.cmd = nil
	}
	d.mu.Unlock()

	if err == nil || ctx.Err() != nil || killed(err) {
		return nil
	}
	return fmt.Errorf("mpv exited: %w", err)
}

// Stop interrupts the current playback. Idempotent; safe to call when idle.
func (d *Driver) Stop() error {
	d.mu.Lock()
	cmd := d.cmd
	socket := d.socket
	d.cmd = nil
	d.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Ask mpv to quit first so it tears the audio device down cleanly, then
	// make sure the process is gone.
	if err := d.command(socket, "quit"); err != nil {
		d.log.Debug("mpv quit command failed", zap.Error(err))
	}
	_ = cmd.Process.Kill()
	return nil
}

// SetPaused toggles pause without losing position. No-op when idle.
func (d *Driver) SetPaused(paused bool) error {
	d.mu.Lock()
	idle := d.cmd == nil
	socket := d.socket
	d.mu.Unlock()
	if idle {
		return nil
	}
	return d.command(socket, "set_property", "pause", paused)
}

// Idle reports whether no mpv process is active.
func (d *Driver) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cmd == nil
}

func killed(err error) bool {
	var exit *exec.ExitError
	if !errors.As(err, &exit) {
		return false
	}
	status, ok := exit.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}

type ipcRequest struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Error string `json:"error"`
}

// command sends one command over the given IPC socket and waits for mpv's
// reply. Event lines arriving on the same connection are skipped; they carry
// no error field.
func (d *Driver) command(socket string, cmd ...any) error {
	conn, err := net.DialTimeout("unix", socket, ipcTimeout)
	if err != nil {
		return fmt.Errorf("mpv ipc: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ipcTimeout))

	payload, err := json.Marshal(ipcRequest{Command: cmd})
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("mpv ipc: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		switch resp.Error {
		case "":
			continue
		case "success":
			return nil
		default:
			return fmt.Errorf("mpv ipc: %s", resp.Error)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mpv ipc: %w", err)
	}
	return errors.New("mpv ipc: connection closed before reply")
}
