package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) || len(v1) == 0 {
		t.Errorf("migration count changed: %v -> %v", v1, v2)
	}
}

func TestRowsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.InsertStructuredLog(ctx, StructuredLogRow{SessionID: "s-1", Location: "Pune", PositionCount: 1}); err != nil {
		t.Fatalf("InsertStructuredLog: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.StructuredLogForSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("StructuredLogForSession: %v", err)
	}
	if got.Location != "Pune" {
		t.Errorf("Location = %q, want Pune", got.Location)
	}
}

func TestInsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 7, 9, 5, 1, 123000000, time.UTC)

	row := StructuredLogRow{
		SessionID:     "abc",
		Timestamp:     ts,
		Industry:      "fintech",
		Location:      "Mumbai",
		Roles:         "backend developer, UI/UX designer",
		PositionCount: 5,
		Urgent:        true,
	}
	if err := s.InsertStructuredLog(ctx, row); err != nil {
		t.Fatalf("InsertStructuredLog: %v", err)
	}

	rows, err := s.ListStructuredLogs(ctx, 10)
	if err != nil {
		t.Fatalf("ListStructuredLogs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	got := rows[0]
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	got.Timestamp = ts
	if got != row {
		t.Errorf("row = %+v, want %+v", got, row)
	}
}

func TestTimestampStoredAsISO8601(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 7, 9, 5, 1, 0, time.UTC)

	if err := s.InsertStructuredLog(ctx, StructuredLogRow{SessionID: "x", Timestamp: ts}); err != nil {
		t.Fatalf("InsertStructuredLog: %v", err)
	}
	var raw string
	if err := s.db.QueryRow("SELECT timestamp FROM structured_data").Scan(&raw); err != nil {
		t.Fatalf("select: %v", err)
	}
	if raw != "2026-03-07T09:05:01.000000000Z" {
		t.Errorf("timestamp = %q", raw)
	}
}

func TestInsert_StampsZeroTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	before := time.Now().Add(-time.Second)

	if err := s.InsertStructuredLog(ctx, StructuredLogRow{SessionID: "x"}); err != nil {
		t.Fatalf("InsertStructuredLog: %v", err)
	}
	got, err := s.StructuredLogForSession(ctx, "x")
	if err != nil {
		t.Fatalf("StructuredLogForSession: %v", err)
	}
	if got.Timestamp.Before(before) {
		t.Errorf("Timestamp = %v, want around now", got.Timestamp)
	}
}

func TestInsert_RequiresSessionID(t *testing.T) {
	s := openTestStore(t)
	if err := s.InsertStructuredLog(context.Background(), StructuredLogRow{}); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestList_NewestFirstAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		row := StructuredLogRow{SessionID: fmt.Sprintf("s-%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := s.InsertStructuredLog(ctx, row); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	rows, err := s.ListStructuredLogs(ctx, 3)
	if err != nil {
		t.Fatalf("ListStructuredLogs: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, want := range []string{"s-4", "s-3", "s-2"} {
		if rows[i].SessionID != want {
			t.Errorf("rows[%d] = %s, want %s", i, rows[i].SessionID, want)
		}
	}
}

func TestList_NewestFirstWithinOneSecond(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	whole := time.Date(2026, 1, 1, 12, 0, 5, 0, time.UTC)

	rows := []StructuredLogRow{
		{SessionID: "older", Timestamp: whole},
		{SessionID: "newer", Timestamp: whole.Add(500 * time.Millisecond)},
		{SessionID: "oldest", Timestamp: whole.Add(-time.Nanosecond)},
	}
	for _, r := range rows {
		if err := s.InsertStructuredLog(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.SessionID, err)
		}
	}

	got, err := s.ListStructuredLogs(ctx, 0)
	if err != nil {
		t.Fatalf("ListStructuredLogs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	for i, want := range []string{"newer", "older", "oldest"} {
		if got[i].SessionID != want {
			t.Errorf("rows[%d] = %s, want %s", i, got[i].SessionID, want)
		}
	}
	if !got[0].Timestamp.Equal(whole.Add(500 * time.Millisecond)) {
		t.Errorf("Timestamp = %v, want round trip", got[0].Timestamp)
	}
}

func TestList_Empty(t *testing.T) {
	s := openTestStore(t)
	rows, err := s.ListStructuredLogs(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListStructuredLogs: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestStructuredLogForSession_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.StructuredLogForSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentInserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.InsertStructuredLog(ctx, StructuredLogRow{SessionID: fmt.Sprintf("s-%d", i)})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent insert: %v", err)
		}
	}

	rows, err := s.ListStructuredLogs(ctx, 100)
	if err != nil {
		t.Fatalf("ListStructuredLogs: %v", err)
	}
	if len(rows) != n {
		t.Errorf("got %d rows, want %d", len(rows), n)
	}
}

func TestColumns(t *testing.T) {
	s := openTestStore(t)

	cols, err := s.Columns(context.Background())
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	want := []string{"session_id", "timestamp", "industry", "location", "roles", "number_of_positions", "urgency"}
	if len(cols) != len(want) {
		t.Fatalf("got %d columns, want %d", len(cols), len(want))
	}
	for i, name := range want {
		if cols[i].Name != name {
			t.Errorf("column %d = %q, want %q", i, cols[i].Name, name)
		}
	}
	if cols[5].Type != "INTEGER" || cols[6].Type != "BOOLEAN" {
		t.Errorf("types = %q, %q", cols[5].Type, cols[6].Type)
	}
}
