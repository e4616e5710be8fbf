package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeEngine simulates the playback resource. Start blocks until Stop,
// context cancellation or an explicit finishCurrent, and the fake tracks how
// many starts were ever active at once.
type fakeEngine struct {
	mu        sync.Mutex
	active    int
	maxActive int
	starts    []string
	fail      map[string]int
	done      chan struct{}
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{fail: map[string]int{}}
}

func (e *fakeEngine) Start(ctx context.Context, url string) error {
	e.mu.Lock()
	e.starts = append(e.starts, url)
	if n := e.fail[url]; n > 0 {
		e.fail[url] = n - 1
		e.mu.Unlock()
		return errors.New("engine unavailable")
	}
	e.active++
	if e.active > e.maxActive {
		e.maxActive = e.active
	}
	done := make(chan struct{})
	e.done = done
	e.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-done:
	}

	e.mu.Lock()
	if e.done == done {
		e.active--
		e.done = nil
	}
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done != nil {
		close(e.done)
		e.active--
		e.done = nil
	}
	return nil
}

// finishCurrent simulates a track ending naturally.
func (e *fakeEngine) finishCurrent() {
	_ = e.Stop()
}

func (e *fakeEngine) SetPaused(paused bool) error { return nil }

func (e *fakeEngine) Idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active == 0
}

func (e *fakeEngine) startCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.starts)
}

func (e *fakeEngine) peakActive() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxActive
}

func testController(t *testing.T, engine Engine, cfg Config) (*Controller, *Store, context.CancelFunc) {
	t.Helper()
	store := NewStore()
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Millisecond
	}
	controller := NewController(zap.NewNop(), store, engine, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = controller.Run(ctx) }()
	return controller, store, cancel
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func currentURL(store *Store) string {
	current, ok := store.Current()
	if !ok {
		return ""
	}
	return current.WebpageURL
}

func TestControllerAutoplayAdvances(t *testing.T) {
	engine := newFakeEngine()
	_, store, cancel := testController(t, engine, Config{})
	defer cancel()

	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))

	waitFor(t, "first item current", func() bool { return currentURL(store) == "a" })
	engine.finishCurrent()
	waitFor(t, "second item current", func() bool { return currentURL(store) == "b" })
	engine.finishCurrent()
	waitFor(t, "queue drained", func() bool {
		_, ok := store.Current()
		return !ok && store.QueueLen() == 0
	})

	_, _, history := store.Snapshot()
	if len(history) != 2 || history[0].WebpageURL != "a" || history[1].WebpageURL != "b" {
		t.Fatalf("expected history [a b], got %+v", history)
	}
}

func TestControllerPlayNowInterrupts(t *testing.T) {
	engine := newFakeEngine()
	controller, store, cancel := testController(t, engine, Config{})
	defer cancel()

	store.EnqueueBack(item("a"))
	waitFor(t, "a playing", func() bool { return currentURL(store) == "a" })

	got := controller.PlayNow(item("urgent"))
	if got.WebpageURL != "urgent" {
		t.Fatalf("expected urgent to start, got %+v", got)
	}
	if currentURL(store) != "urgent" {
		t.Fatalf("expected urgent current")
	}
	waitFor(t, "urgent started on engine", func() bool { return engine.startCount() >= 2 })
	if engine.peakActive() > 1 {
		t.Fatalf("engine double-driven: %d concurrent starts", engine.peakActive())
	}
}

func TestControllerSkip(t *testing.T) {
	engine := newFakeEngine()
	controller, store, cancel := testController(t, engine, Config{})
	defer cancel()

	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))
	waitFor(t, "a playing", func() bool { return currentURL(store) == "a" })

	next, ok := controller.Skip()
	if !ok || next.WebpageURL != "b" {
		t.Fatalf("expected skip to b, got %+v ok=%t", next, ok)
	}

	next, ok = controller.Skip()
	if ok {
		t.Fatalf("expected skip on empty queue to report no track, got %+v", next)
	}
	if _, stillCurrent := store.Current(); stillCurrent {
		t.Fatalf("expected nothing current after final skip")
	}
}

func TestControllerStopClearsQueueAndCurrent(t *testing.T) {
	engine := newFakeEngine()
	controller, store, cancel := testController(t, engine, Config{})
	defer cancel()

	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))
	store.EnqueueBack(item("c"))
	waitFor(t, "a playing", func() bool { return currentURL(store) == "a" })

	controller.Stop()

	current, queue, history := store.Snapshot()
	if current != nil {
		t.Fatalf("expected no current after stop")
	}
	if len(queue) != 0 {
		t.Fatalf("expected empty queue after stop, got %d", len(queue))
	}
	if len(history) != 1 || history[0].WebpageURL != "a" {
		t.Fatalf("expected interrupted item in history, got %+v", history)
	}
	if !engine.Idle() {
		t.Fatalf("expected engine idle after stop")
	}
}

func TestControllerConcurrentSkips(t *testing.T) {
	engine := newFakeEngine()
	controller, store, cancel := testController(t, engine, Config{})
	defer cancel()

	for _, url := range []string{"a", "b", "c", "d", "e"} {
		store.EnqueueBack(item(url))
	}
	waitFor(t, "a playing", func() bool { return currentURL(store) == "a" })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			controller.Skip()
		}()
	}
	wg.Wait()

	if engine.peakActive() > 1 {
		t.Fatalf("engine double-driven: %d concurrent starts", engine.peakActive())
	}

	_, _, history := store.Snapshot()
	seen := map[string]int{}
	for _, entry := range history {
		seen[entry.WebpageURL]++
		if seen[entry.WebpageURL] > 1 {
			t.Fatalf("item %s recorded twice", entry.WebpageURL)
		}
	}
	if len(history) != 5 {
		t.Fatalf("expected all 5 items to pass through current, got %d", len(history))
	}
}

func TestControllerSkipsUnplayableItem(t *testing.T) {
	engine := newFakeEngine()
	engine.fail["bad"] = 1
	_, store, cancel := testController(t, engine, Config{})
	defer cancel()

	store.EnqueueBack(item("bad"))
	store.EnqueueBack(item("good"))

	waitFor(t, "good item playing", func() bool { return currentURL(store) == "good" })

	_, _, history := store.Snapshot()
	if len(history) != 2 {
		t.Fatalf("expected both items in history, got %+v", history)
	}
}

func TestControllerRetryBound(t *testing.T) {
	engine := newFakeEngine()
	engine.fail["flaky"] = 5
	_, store, cancel := testController(t, engine, Config{StartRetries: 2})
	defer cancel()

	store.EnqueueBack(item("flaky"))

	waitFor(t, "item abandoned", func() bool {
		_, ok := store.Current()
		return !ok && engine.startCount() == 3
	})
	if got := engine.startCount(); got != 3 {
		t.Fatalf("expected 3 start attempts, got %d", got)
	}
}
