package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "pending_ops")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndGetBatch(t *testing.T) {
	store := openTestStore(t)

	item := Item{
		OwnerID:   "owner-1",
		TaskID:    "task-1",
		Operation: OperationCreate,
		Snapshot:  json.RawMessage(`{"title":"buffered"}`),
	}
	if err := store.Enqueue(item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	batch, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("expected 1 item, got %d", len(batch))
	}

	got := batch[0]
	if got.ID == "" {
		t.Fatal("item id was not assigned")
	}
	if got.OwnerID != "owner-1" || got.TaskID != "task-1" || got.Operation != OperationCreate {
		t.Fatalf("item round-trip mismatch: %+v", got)
	}
	if string(got.Snapshot) != `{"title":"buffered"}` {
		t.Fatalf("snapshot mismatch: %s", got.Snapshot)
	}
}

func TestGetBatch_PriorityOrdering(t *testing.T) {
	store := openTestStore(t)

	base := time.Now()
	for i, it := range []Item{
		{ID: "low", Priority: 5, Timestamp: base},
		{ID: "urgent", Priority: 1, Timestamp: base.Add(time.Second)},
		{ID: "normal", Priority: 3, Timestamp: base.Add(2 * time.Second)},
	} {
		if err := store.Enqueue(it); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}

	batch, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 items, got %d", len(batch))
	}
	want := []string{"urgent", "normal", "low"}
	for i, id := range want {
		if batch[i].ID != id {
			t.Fatalf("position %d: got %q, want %q (full order: %v)", i, batch[i].ID, id, ids(batch))
		}
	}
}

func TestGetBatch_RespectsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := store.Enqueue(Item{Operation: OperationCreate}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	batch, err := store.GetBatch(2)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 items, got %d", len(batch))
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)

	if err := store.Enqueue(Item{Operation: OperationDelete}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	batch, err := store.GetBatch(1)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}

	if err := store.Remove(batch[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 0 {
		t.Fatalf("expected empty buffer, got %d", size)
	}
}

func TestRemove_FallsBackToID(t *testing.T) {
	store := openTestStore(t)

	item := Item{ID: "known-id", Operation: OperationUpdate}
	if err := store.Enqueue(item); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// No bucketKey on this copy, Remove must locate the record by id.
	if err := store.Remove(Item{ID: "known-id"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	size, _ := store.Size()
	if size != 0 {
		t.Fatalf("expected empty buffer, got %d", size)
	}
}

func TestRequeue_KeepsItemRetrievable(t *testing.T) {
	store := openTestStore(t)

	if err := store.Enqueue(Item{ID: "retry-me", Operation: OperationUpdate}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	batch, err := store.GetBatch(1)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if err := store.Remove(batch[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	item := batch[0]
	item.Retries++
	if err := store.Requeue(item); err != nil {
		t.Fatalf("Requeue: %v", err)
	}

	batch, err = store.GetBatch(1)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch) != 1 || batch[0].ID != "retry-me" {
		t.Fatalf("requeued item lost: %v", ids(batch))
	}
	if batch[0].Retries != 1 {
		t.Fatalf("retry count not preserved: %d", batch[0].Retries)
	}
}

func TestCleanup_RemovesOnlyStaleItems(t *testing.T) {
	store := openTestStore(t)

	stale := Item{ID: "stale", Timestamp: time.Now().Add(-48 * time.Hour)}
	fresh := Item{ID: "fresh", Timestamp: time.Now()}
	if err := store.Enqueue(stale); err != nil {
		t.Fatalf("Enqueue stale: %v", err)
	}
	if err := store.Enqueue(fresh); err != nil {
		t.Fatalf("Enqueue fresh: %v", err)
	}

	if err := store.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	batch, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch) != 1 || batch[0].ID != "fresh" {
		t.Fatalf("expected only the fresh item, got %v", ids(batch))
	}
}

func TestSize(t *testing.T) {
	store := openTestStore(t)

	size, err := store.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 0 {
		t.Fatalf("fresh store should be empty, got %d", size)
	}

	for i := 0; i < 3; i++ {
		if err := store.Enqueue(Item{Operation: OperationCreate}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	size, err = store.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != 3 {
		t.Fatalf("expected 3 items, got %d", size)
	}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
