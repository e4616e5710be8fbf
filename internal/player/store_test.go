package player

import (
	"testing"

	"github.com/mikey-austin/musicd/pkg/music"
)

func item(url string) music.Item {
	return music.Item{Title: url, WebpageURL: url}
}

func TestStoreFIFO(t *testing.T) {
	store := NewStore()
	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))
	store.EnqueueBack(item("c"))

	for _, want := range []string{"a", "b", "c"} {
		got, ok := store.DequeueToCurrent()
		if !ok {
			t.Fatalf("expected item %q", want)
		}
		if got.WebpageURL != want {
			t.Fatalf("expected %q, got %q", want, got.WebpageURL)
		}
	}
	if _, ok := store.DequeueToCurrent(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestStoreEnqueueFront(t *testing.T) {
	store := NewStore()
	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))
	store.EnqueueFront(item("urgent"))

	got, ok := store.DequeueToCurrent()
	if !ok || got.WebpageURL != "urgent" {
		t.Fatalf("expected front item, got %+v", got)
	}
}

func TestStoreHistoryRecordsOncePerDequeue(t *testing.T) {
	store := NewStore()
	store.EnqueueBack(item("a"))

	store.DequeueToCurrent()
	store.ClearCurrent()

	_, _, history := store.Snapshot()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].WebpageURL != "a" {
		t.Fatalf("expected a in history")
	}
}

func TestStoreResetKeepsHistory(t *testing.T) {
	store := NewStore()
	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))
	store.DequeueToCurrent()

	store.Reset()

	current, queue, history := store.Snapshot()
	if current != nil {
		t.Fatalf("expected no current after reset")
	}
	if len(queue) != 0 {
		t.Fatalf("expected empty queue after reset")
	}
	if len(history) != 1 {
		t.Fatalf("expected history to survive reset")
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	store := NewStore()
	store.EnqueueBack(item("a"))

	_, queue, _ := store.Snapshot()
	queue[0].Title = "mutated"

	_, fresh, _ := store.Snapshot()
	if fresh[0].Title != "a" {
		t.Fatalf("snapshot must not alias internal state")
	}
}

func TestStoreChangedCoalesces(t *testing.T) {
	store := NewStore()
	store.EnqueueBack(item("a"))
	store.EnqueueBack(item("b"))

	select {
	case <-store.Changed():
	default:
		t.Fatalf("expected change notification")
	}
	select {
	case <-store.Changed():
		t.Fatalf("expected notifications to coalesce")
	default:
	}
}
