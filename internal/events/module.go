// Package events mirrors the daemon's playback state onto MQTT so dashboards
// and automations can follow along without polling the HTTP API.
package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mikey-austin/musicd/internal/player"
	"github.com/mikey-austin/musicd/pkg/music"
)

// Config configures the events module.
type Config struct {
	// TopicBase prefixes all published topics, default "musicd".
	TopicBase string
	// KeepAlive is the cadence of unconditional state refreshes, so retained
	// state never goes stale even without queue activity.
	KeepAlive time.Duration
}

// Module publishes playback state whenever the store changes.
type Module struct {
	log       *zap.Logger
	store     *player.Store
	publisher Publisher
	base      string
	keepAlive time.Duration
}

// NewModule creates the events module.
func NewModule(log *zap.Logger, store *player.Store, publisher Publisher, cfg Config) *Module {
	if cfg.TopicBase == "" {
		cfg.TopicBase = "musicd"
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 30 * time.Second
	}
	return &Module{
		log:       log,
		store:     store,
		publisher: publisher,
		base:      cfg.TopicBase,
		keepAlive: cfg.KeepAlive,
	}
}

// Run announces presence, then republishes state on every store change and
// on the keepalive tick.
func (m *Module) Run(ctx context.Context) error {
	defer m.publisher.Close()

	if err := m.publisher.Publish(m.base+"/presence", true, []byte("online")); err != nil {
		return err
	}
	m.publishState()

	ticker := time.NewTicker(m.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = m.publisher.Publish(m.base+"/presence", true, []byte("offline"))
			return nil
		case <-m.store.Changed():
			m.publishState()
		case <-ticker.C:
			m.publishState()
		}
	}
}

func (m *Module) publishState() {
	current, queue, history := m.store.Snapshot()
	state := music.StatusReply{OK: true, Now: current, Queue: queue, History: history}
	payload, err := json.Marshal(state)
	if err != nil {
		m.log.Error("marshal state", zap.Error(err))
		return
	}
	if err := m.publisher.Publish(m.base+"/state", true, payload); err != nil {
		m.log.Warn("publish state failed", zap.Error(err))
	}
}
