package player

import "context"

// Engine is the control surface over the single underlying playback
// resource. Exactly one Engine instance exists per process.
//
// Start blocks the calling goroutine until playback of url completes
// naturally or is interrupted, so it always runs on a dedicated worker. The
// context is canceled when the hand-off is superseded; implementations must
// unblock promptly on cancellation or Stop.
type Engine interface {
	Start(ctx context.Context, url string) error
	Stop() error
	SetPaused(paused bool) error
	Idle() bool
}
