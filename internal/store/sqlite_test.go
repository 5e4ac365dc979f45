package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobsignal/internal/model"
)

var (
	_ model.SeenStore = (*SQLiteStore)(nil)
	_ model.SeenStore = (*RedisStore)(nil)
	_ model.SeenStore = (*NopStore)(nil)
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMarkSeenThenHasSeen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "uid-123", "adzuna"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := s.HasSeen(ctx, "uid-123")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after MarkSeen")
	}
}

func TestHasSeenUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.HasSeen(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if seen {
		t.Error("expected HasSeen to return false for unknown uid")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "uid-456", "usajobs"); err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if err := s.MarkSeen(ctx, "uid-456", "usajobs"); err != nil {
		t.Fatalf("second MarkSeen (duplicate): %v", err)
	}

	n, err := s.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry after duplicate MarkSeen, got %d", n)
	}
}

func TestCountBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, e := range []struct{ uid, source string }{
		{"a", "adzuna"}, {"b", "adzuna"}, {"c", "usajobs"},
	} {
		if err := s.MarkSeen(ctx, e.uid, e.source); err != nil {
			t.Fatalf("MarkSeen %s: %v", e.uid, err)
		}
	}

	tests := []struct {
		source string
		want   int
	}{
		{"", 3},
		{"adzuna", 2},
		{"usajobs", 1},
		{"other", 0},
	}
	for _, tc := range tests {
		got, err := s.Count(ctx, tc.source)
		if err != nil {
			t.Fatalf("Count(%q): %v", tc.source, err)
		}
		if got != tc.want {
			t.Errorf("Count(%q) = %d, want %d", tc.source, got, tc.want)
		}
	}
}

func TestCleanupRemovesOldKeepsFresh(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)

	// Mark an "old" entry two days in the past.
	s.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if err := s.MarkSeen(ctx, "old-uid", "adzuna"); err != nil {
		t.Fatalf("MarkSeen old: %v", err)
	}

	s.now = func() time.Time { return now }
	if err := s.MarkSeen(ctx, "fresh-uid", "adzuna"); err != nil {
		t.Fatalf("MarkSeen fresh: %v", err)
	}

	if err := s.Cleanup(ctx, 24*time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	seen, err := s.HasSeen(ctx, "old-uid")
	if err != nil {
		t.Fatalf("HasSeen old: %v", err)
	}
	if seen {
		t.Error("expected old uid to be cleaned up")
	}

	seen, err = s.HasSeen(ctx, "fresh-uid")
	if err != nil {
		t.Fatalf("HasSeen fresh: %v", err)
	}
	if !seen {
		t.Error("expected fresh uid to survive cleanup")
	}
}

func TestReopenKeepsLedger(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.MarkSeen(ctx, "uid-1", "adzuna"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	seen, err := s.HasSeen(ctx, "uid-1")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("ledger entry should survive reopen")
	}
}

func TestNopStoreNeverRemembers(t *testing.T) {
	s := NewNopStore()
	ctx := context.Background()
	if err := s.MarkSeen(ctx, "uid", "adzuna"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	seen, err := s.HasSeen(ctx, "uid")
	if err != nil || seen {
		t.Errorf("HasSeen = %v, %v; want false, nil", seen, err)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := newRedisStore(client, time.Hour)
	defer s.Close()

	if _, err := s.HasSeen(context.Background(), "uid"); err == nil {
		t.Error("expected HasSeen error against unreachable server")
	}
	if err := s.MarkSeen(context.Background(), "uid", "adzuna"); err == nil {
		t.Error("expected MarkSeen error against unreachable server")
	}
	if err := s.Cleanup(context.Background(), time.Hour); err != nil {
		t.Errorf("Cleanup should be a no-op, got %v", err)
	}
}
