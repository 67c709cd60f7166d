package outbox

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testItem(topic, body string) Item {
	return Item{Topic: topic, Event: json.RawMessage(body)}
}

func TestStore_EnqueuePreservesInsertionOrder(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		item := testItem("task-events", fmt.Sprintf(`{"seq":%d}`, i))
		if err := store.Enqueue(item); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf(`{"seq":%d}`, i)
		if string(item.Event) != want {
			t.Errorf("item %d: event = %s, want %s", i, item.Event, want)
		}
	}
}

func TestStore_GetBatchDoesNotRemove(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(testItem("task-events", `{}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if _, err := store.GetBatch(10); err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	size, err := store.Size()
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 1 {
		t.Errorf("size = %d after peek, want 1", size)
	}
}

func TestStore_RemoveDeletesOnlyTheGivenItem(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 3; i++ {
		if err := store.Enqueue(testItem("task-events", fmt.Sprintf(`{"seq":%d}`, i))); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	items, _ := store.GetBatch(10)
	if err := store.Remove(items[1]); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	remaining, _ := store.GetBatch(10)
	if len(remaining) != 2 {
		t.Fatalf("got %d items after remove, want 2", len(remaining))
	}
	if string(remaining[0].Event) != `{"seq":0}` || string(remaining[1].Event) != `{"seq":2}` {
		t.Errorf("wrong items survived: %s, %s", remaining[0].Event, remaining[1].Event)
	}
}

func TestStore_UpdateKeepsItemInPlace(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(testItem("task-events", `{"seq":0}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.Enqueue(testItem("task-events", `{"seq":1}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	items, _ := store.GetBatch(10)
	head := items[0]
	head.Retries++
	if err := store.Update(head); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, _ = store.GetBatch(10)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if string(items[0].Event) != `{"seq":0}` || items[0].Retries != 1 {
		t.Errorf("head = %s retries=%d, want seq 0 with 1 retry", items[0].Event, items[0].Retries)
	}
	if string(items[1].Event) != `{"seq":1}` || items[1].Retries != 0 {
		t.Errorf("tail = %s retries=%d, want untouched seq 1", items[1].Event, items[1].Retries)
	}
}

func TestStore_RemoveByIDWithoutBucketKey(t *testing.T) {
	store := openTestStore(t)
	item := testItem("task-events", `{}`)
	item.ID = "fixed-id"
	if err := store.Enqueue(item); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := store.Remove(Item{ID: "fixed-id"}); err != nil {
		t.Fatalf("Remove by ID failed: %v", err)
	}
	size, _ := store.Size()
	if size != 0 {
		t.Errorf("size = %d, want 0", size)
	}
}

func TestStore_CleanupDropsOldItems(t *testing.T) {
	store := openTestStore(t)

	old := testItem("task-events", `{"age":"old"}`)
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	if err := store.Enqueue(old); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.Enqueue(testItem("task-events", `{"age":"fresh"}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := store.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	items, _ := store.GetBatch(10)
	if len(items) != 1 {
		t.Fatalf("got %d items after cleanup, want 1", len(items))
	}
	if string(items[0].Event) != `{"age":"fresh"}` {
		t.Errorf("wrong item survived cleanup: %s", items[0].Event)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.db")
	store, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Enqueue(testItem("task-events", `{"durable":true}`)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path, "")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	items, err := reopened.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if len(items) != 1 || string(items[0].Event) != `{"durable":true}` {
		t.Fatalf("persisted items = %v", items)
	}
}

func TestStore_NilStoreIsSafe(t *testing.T) {
	var store *Store
	if err := store.Enqueue(testItem("t", `{}`)); err == nil {
		t.Error("Enqueue on nil store must error")
	}
	if _, err := store.GetBatch(1); err == nil {
		t.Error("GetBatch on nil store must error")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close on nil store must be a no-op, got %v", err)
	}
}
