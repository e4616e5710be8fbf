package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikey-austin/musicd/internal/player"
	"github.com/mikey-austin/musicd/pkg/music"
)

type recordedPublish struct {
	topic    string
	retained bool
	payload  []byte
}

type fakePublisher struct {
	mu        sync.Mutex
	published []recordedPublish
	closed    bool
}

func (f *fakePublisher) Publish(topic string, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, recordedPublish{topic: topic, retained: retained, payload: payload})
	return nil
}

func (f *fakePublisher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakePublisher) snapshot() []recordedPublish {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedPublish, len(f.published))
	copy(out, f.published)
	return out
}

func waitForPublishes(t *testing.T, pub *fakePublisher, n int) []recordedPublish {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := pub.snapshot(); len(msgs) >= n {
			return msgs
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d publishes, have %d", n, len(pub.snapshot()))
	return nil
}

func TestModulePublishesOnChange(t *testing.T) {
	store := player.NewStore()
	pub := &fakePublisher{}
	module := NewModule(zap.NewNop(), store, pub, Config{TopicBase: "test", KeepAlive: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = module.Run(ctx)
	}()

	// Presence plus the initial state snapshot.
	msgs := waitForPublishes(t, pub, 2)
	if msgs[0].topic != "test/presence" || string(msgs[0].payload) != "online" {
		t.Fatalf("expected presence first, got %+v", msgs[0])
	}
	if msgs[1].topic != "test/state" || !msgs[1].retained {
		t.Fatalf("expected retained state, got %+v", msgs[1])
	}

	store.EnqueueBack(music.Item{Title: "Take Five", WebpageURL: "https://example.com/a"})
	msgs = waitForPublishes(t, pub, 3)

	var state music.StatusReply
	if err := json.Unmarshal(msgs[len(msgs)-1].payload, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if len(state.Queue) != 1 || state.Queue[0].Title != "Take Five" {
		t.Fatalf("state should carry the queued item, got %+v", state)
	}

	cancel()
	<-done

	msgs = pub.snapshot()
	last := msgs[len(msgs)-1]
	if last.topic != "test/presence" || string(last.payload) != "offline" {
		t.Fatalf("expected offline presence on shutdown, got %+v", last)
	}
	if !pub.closed {
		t.Fatalf("publisher should be closed on exit")
	}
}

func TestModuleKeepAlive(t *testing.T) {
	store := player.NewStore()
	pub := &fakePublisher{}
	module := NewModule(zap.NewNop(), store, pub, Config{KeepAlive: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = module.Run(ctx) }()

	// Presence, initial state, then at least two keepalive refreshes.
	msgs := waitForPublishes(t, pub, 4)
	states := 0
	for _, msg := range msgs {
		if msg.topic == "musicd/state" {
			states++
		}
	}
	if states < 3 {
		t.Fatalf("expected keepalive republishes, got %d state messages", states)
	}
}
