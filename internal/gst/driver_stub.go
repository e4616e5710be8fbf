//go:build !gstreamer

// Package gst provides a GStreamer-backed playback engine, selected with the
// `gstreamer` build tag. Without the tag a stub that refuses to start is
// compiled instead.
package gst

import (
	"context"
	"errors"
)

// Options configures the GStreamer driver.
type Options struct {
	Pipeline string
	Device   string
}

// Driver is the stub built without GStreamer support.
type Driver struct{}

var errUnavailable = errors.New("built without gstreamer support (use -tags gstreamer)")

// NewDriver reports that GStreamer support is not compiled in.
func NewDriver(opts Options) (*Driver, error) {
	return nil, errUnavailable
}

func (d *Driver) Start(ctx context.Context, url string) error { return errUnavailable }
func (d *Driver) Stop() error                                 { return nil }
func (d *Driver) SetPaused(paused bool) error                 { return nil }
func (d *Driver) Idle() bool                                  { return true }
