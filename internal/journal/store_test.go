package journal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ggonzalez94/solagent/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "journal.db"), filepath.Join(dir, "journal.lock"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entryFor(runID string, createdAt time.Time) Entry {
	return Entry{
		RunID:      runID,
		Network:    "devnet",
		RunMode:    "simulate",
		IntentType: "solana.transfer.native",
		Success:    true,
		CreatedAt:  createdAt.UTC().Format(time.RFC3339),
		Bundle: model.Bundle{
			RunID:   runID,
			Network: "devnet",
			RunMode: model.RunModeSimulate,
		},
	}
}

func TestAppendAndGet(t *testing.T) {
	store := openTestStore(t)
	if err := store.Append(entryFor("run-1", time.Now())); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != "run-1" || got.IntentType != "solana.transfer.native" || !got.Success {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.Bundle.RunMode != model.RunModeSimulate {
		t.Fatal("bundle payload lost in round trip")
	}
}

func TestAppendUpsertsSameRun(t *testing.T) {
	store := openTestStore(t)
	first := entryFor("run-1", time.Now())
	first.Success = false
	first.RunMode = "analysis"
	if err := store.Append(first); err != nil {
		t.Fatal(err)
	}

	second := entryFor("run-1", time.Now())
	second.RunMode = "execute"
	if err := store.Append(second); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].RunMode != "execute" || !entries[0].Success {
		t.Fatalf("later stage did not replace earlier record: %+v", entries[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.Append(entryFor(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].RunID != "new" || entries[1].RunID != "mid" {
		t.Fatalf("order = %s, %s", entries[0].RunID, entries[1].RunID)
	}
}

func TestAppendRequiresRunID(t *testing.T) {
	store := openTestStore(t)
	err := store.Append(Entry{})
	if err == nil || !strings.Contains(err.Error(), "run id") {
		t.Fatalf("want missing run id error, got %v", err)
	}
}

func TestGetUnknownRun(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get("missing"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
