package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndWatched(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	records := []PlayRecord{
		{Path: "/m/Alpha.mkv", PlayedAt: t0},
		{Path: "/m/Alpha.mkv", PlayedAt: t0.Add(time.Hour)},
		{Path: "/m/Bravo.mp4", PlayedAt: t0, Failed: true},
		{Path: "/m/Charlie.avi", PlayedAt: t0.Add(2 * time.Hour)},
	}
	for _, r := range records {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	watched, err := store.Watched(ctx)
	if err != nil {
		t.Fatalf("Watched: %v", err)
	}
	if len(watched) != 2 {
		t.Fatalf("expected 2 watched paths, got %v", watched)
	}
	if !watched["/m/Alpha.mkv"].Equal(t0.Add(time.Hour)) {
		t.Errorf("Alpha watched at %v, want latest play", watched["/m/Alpha.mkv"])
	}
	if _, ok := watched["/m/Bravo.mp4"]; ok {
		t.Error("failed play must not mark a file as watched")
	}
}

func TestRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	for i, p := range []string{"/m/a.mkv", "/m/b.mkv", "/m/c.mkv"} {
		if err := store.Record(ctx, PlayRecord{Path: p, PlayedAt: t0.Add(time.Duration(i) * time.Minute), Failed: i == 1}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Path != "/m/c.mkv" || recent[1].Path != "/m/b.mkv" {
		t.Errorf("unexpected order: %+v", recent)
	}
	if !recent[1].Failed || recent[0].Failed {
		t.Errorf("failed flags not preserved: %+v", recent)
	}

	if none, err := store.Recent(ctx, 0); err != nil || none != nil {
		t.Errorf("Recent(0) = %v, %v", none, err)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(ctx, PlayRecord{Path: "/m/a.mkv", PlayedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	watched, err := store.Watched(ctx)
	if err != nil {
		t.Fatalf("Watched: %v", err)
	}
	if _, ok := watched["/m/a.mkv"]; !ok {
		t.Errorf("expected /m/a.mkv after reopen, got %v", watched)
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Record(ctx, PlayRecord{Path: "/m/a.mkv", PlayedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	watched, err := store.Watched(ctx)
	if err != nil {
		t.Fatalf("Watched: %v", err)
	}
	if len(watched) != 0 {
		t.Errorf("expected empty history, got %v", watched)
	}
}

func TestOpenUnderFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filepath.Join(blocker, "history.db")); err == nil {
		t.Fatal("Open: expected error when parent is a file")
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath("/s"); got != filepath.Join("/s", "history.db") {
		t.Errorf("DefaultPath = %q", got)
	}
}
