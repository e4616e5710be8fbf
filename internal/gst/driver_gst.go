//go:build gstreamer

// Package gst provides a GStreamer-backed playback engine, selected with the
// `gstreamer` build tag. Without the tag a stub that refuses to start is
// compiled instead.
package gst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
)

const defaultPipeline = "playbin uri={url} video-sink=fakesink"

var gstInitOnce sync.Once

// Options configures the GStreamer driver.
type Options struct {
	// Pipeline is a gst-launch template; {url} and {device} are substituted.
	Pipeline string
	Device   string
}

// Driver implements player.Engine using a pipeline per track.
type Driver struct {
	mu       sync.Mutex
	template string
	device   string
	current  *gst.Element
	stop     chan struct{}
}

// NewDriver creates a GStreamer driver.
func NewDriver(opts Options) (*Driver, error) {
	if strings.TrimSpace(opts.Pipeline) == "" {
		opts.Pipeline = defaultPipeline
	}
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
	return &Driver{template: opts.Pipeline, device: opts.Device}, nil
}

// Start builds a pipeline for url, sets it playing and blocks until the bus
// reports end-of-stream or an error, or until Stop tears it down.
func (d *Driver) Start(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	launch := strings.ReplaceAll(d.template, "{url}", url)
	launch = strings.ReplaceAll(launch, "{device}", d.device)
	pipeline, err := gst.ParseLaunch(launch)
	if err != nil {
		return fmt.Errorf("parse pipeline: %w", err)
	}

	d.mu.Lock()
	if d.current != nil {
		d.mu.Unlock()
		return errors.New("engine busy")
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("start pipeline: %w", err)
	}
	stop := make(chan struct{})
	d.current = pipeline
	d.stop = stop
	d.mu.Unlock()

	err = d.wait(ctx, pipeline, stop)

	d.mu.Lock()
	if d.current == pipeline {
		d.current = nil
		d.stop = nil
	}
	d.mu.Unlock()

	_ = pipeline.SetState(gst.StateNull)
	return err
}

// wait polls the pipeline bus until completion or interruption.
func (d *Driver) wait(ctx context.Context, pipeline *gst.Element, stop chan struct{}) error {
	bus := pipeline.GetBus()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		default:
		}

		msg := bus.TimedPopFiltered(gst.ClockTime(100*time.Millisecond), gst.MessageEOS|gst.MessageError)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			return nil
		case gst.MessageError:
			gerr := msg.ParseError()
			return fmt.Errorf("pipeline error: %s", gerr.Error())
		}
	}
}

// Stop tears down the current pipeline. Idempotent.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return nil
	}
	close(d.stop)
	_ = d.current.SetState(gst.StateNull)
	d.current = nil
	d.stop = nil
	return nil
}

// SetPaused pauses or resumes the current pipeline. No-op when idle.
func (d *Driver) SetPaused(paused bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return nil
	}
	if paused {
		return d.current.SetState(gst.StatePaused)
	}
	return d.current.SetState(gst.StatePlaying)
}

// Idle reports whether no pipeline is active.
func (d *Driver) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current == nil
}
