package player

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey-austin/musicd/pkg/music"
)

// Config configures the autoplay controller.
type Config struct {
	// PollInterval is the cadence at which engine idleness is checked.
	PollInterval time.Duration
	// StartRetries bounds how often a failing item is retried before the
	// controller moves on. Zero means skip on first failure.
	StartRetries int
}

// Controller advances playback whenever the engine is idle and the queue has
// a head. Every decide-and-start path (poll advance, PlayNow, Skip, Stop)
// serializes on one mutex so at most a single hand-off to the engine is in
// flight at any time.
type Controller struct {
	log      *zap.Logger
	store    *Store
	engine   Engine
	interval time.Duration
	retries  int

	mu     sync.Mutex
	gen    uint64 // bumps on every hand-off; stale workers must not clear current
	cancel context.CancelFunc
	runCtx context.Context
}

// NewController creates a controller bound to one store and one engine.
func NewController(log *zap.Logger, store *Store, engine Engine, cfg Config) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Controller{
		log:      log,
		store:    store,
		engine:   engine,
		interval: cfg.PollInterval,
		retries:  cfg.StartRetries,
		runCtx:   context.Background(),
	}
}

// Run polls engine idleness for the lifetime of the process. It never
// returns an error on its own; it stops with the context.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.interruptLocked()
			c.mu.Unlock()
			return nil
		case <-ticker.C:
			c.advance()
		}
	}
}

// advance performs one autoplay cycle: engine idle, nothing current, queue
// non-empty means the head moves to current and the engine starts.
func (c *Controller) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.engine.Idle() {
		return
	}
	if _, ok := c.store.Current(); ok {
		// A finished worker has not unwound yet; pick it up next tick.
		return
	}
	item, ok := c.store.DequeueToCurrent()
	if !ok {
		return
	}
	c.startLocked(item)
}

// PlayNow puts the item at the queue head, interrupts whatever is playing
// and advances immediately. It returns the item that became current.
func (c *Controller) PlayNow(item music.Item) music.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.EnqueueFront(item)
	c.interruptLocked()
	c.store.ClearCurrent()
	next, _ := c.store.DequeueToCurrent()
	c.startLocked(next)
	return next
}

// Skip stops the current item and synchronously advances to the next queued
// item, if any.
func (c *Controller) Skip() (music.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.interruptLocked()
	c.store.ClearCurrent()
	next, ok := c.store.DequeueToCurrent()
	if !ok {
		return music.Item{}, false
	}
	c.startLocked(next)
	return next, true
}

// Stop halts playback and empties the queue. The interrupted item stays in
// the history; it was recorded there when it became current.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.interruptLocked()
	c.store.Reset()
}

// SetPaused toggles pause on the engine without touching queue state.
func (c *Controller) SetPaused(paused bool) error {
	return c.engine.SetPaused(paused)
}

// interruptLocked detaches any in-flight worker and stops the engine. The
// generation bump guarantees the detached worker cannot clear a current item
// it no longer owns, and the context cancellation guarantees a worker that
// has not called Start yet will not start a zombie playback.
func (c *Controller) interruptLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if err := c.engine.Stop(); err != nil {
		c.log.Warn("engine stop failed", zap.Error(err))
	}
}

// startLocked hands the item to the engine on a worker goroutine so the poll
// loop and request handlers stay responsive while the track plays.
func (c *Controller) startLocked(item music.Item) {
	c.gen++
	gen := c.gen
	playCtx, cancel := context.WithCancel(c.runCtx)
	c.cancel = cancel

	c.log.Info("starting playback",
		zap.String("title", item.Title),
		zap.String("url", item.WebpageURL),
	)

	go func() {
		err := c.engine.Start(playCtx, item.WebpageURL)
		for attempt := 0; err != nil && playCtx.Err() == nil && attempt < c.retries; attempt++ {
			c.log.Warn("engine start failed, retrying",
				zap.String("url", item.WebpageURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			err = c.engine.Start(playCtx, item.WebpageURL)
		}
		if err != nil && playCtx.Err() == nil {
			c.log.Error("engine start failed, skipping item",
				zap.String("title", item.Title),
				zap.String("url", item.WebpageURL),
				zap.Error(err),
			)
		}
		c.finish(gen)
	}()
}

// finish clears the current slot when the worker that owns it unwinds. A
// stale generation means the item was superseded by skip, stop or play-now
// and the slot belongs to someone else.
func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.store.ClearCurrent()
}
