package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *TrashDB {
	t.Helper()
	db, err := NewTrashDB(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

func mustRecord(t *testing.T, db *TrashDB, ev TrashEvent) int64 {
	t.Helper()
	id, err := db.RecordEvent(ev)
	if err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	return id
}

// TestDatabaseCreation verifies database file creation and nested directory creation
func TestDatabaseCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "state", "journal.db")

	db, err := NewTrashDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file not created at %s", dbPath)
	}
}

// TestWALModeEnabled verifies that WAL mode is properly configured
func TestWALModeEnabled(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	if err := db.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode=wal, got %s", journalMode)
	}
}

// TestSchemaCreation verifies all tables and indexes are created
func TestSchemaCreation(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"trash_events", "schema_version"} {
		var name string
		err := db.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("%s table not found: %v", table, err)
		}
	}

	var version int
	if err := db.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		t.Errorf("Failed to read schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected schema version 1, got %d", version)
	}

	for _, indexName := range []string{"idx_timestamp", "idx_action", "idx_path", "idx_size"} {
		var name string
		err := db.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", indexName).Scan(&name)
		if err != nil {
			t.Errorf("Index %s not found: %v", indexName, err)
		}
	}
}

// TestReopenKeepsData verifies schema init is idempotent
func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	db, err := NewTrashDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	mustRecord(t, db, TrashEvent{Action: ActionTrash, Path: "/tmp/a", Platform: "linux"})
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = NewTrashDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	events, err := db.GetRecentEvents(10)
	if err != nil {
		t.Fatalf("GetRecentEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected 1 event after reopen, got %d", len(events))
	}
}

// TestRecordEvent verifies insertion and round-trip of every field
func TestRecordEvent(t *testing.T) {
	db := openTestDB(t)

	ts := time.Now().Add(-time.Minute).Truncate(time.Second)
	id := mustRecord(t, db, TrashEvent{
		Timestamp:     ts,
		Action:        ActionTrash,
		Path:          "/home/user/old report.pdf",
		ObjectType:    "file",
		Size:          4096,
		TrashLocation: "/home/user/.local/share/Trash/files/old report.pdf",
		Platform:      "linux",
	})
	if id <= 0 {
		t.Errorf("Expected positive id, got %d", id)
	}

	events, err := db.GetRecentEvents(1)
	if err != nil {
		t.Fatalf("GetRecentEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.ID != id {
		t.Errorf("ID = %d, expected %d", ev.ID, id)
	}
	if !ev.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, expected %v", ev.Timestamp, ts)
	}
	if ev.FileName != "old report.pdf" {
		t.Errorf("FileName = %q, expected base of path", ev.FileName)
	}
	if ev.ObjectType != "file" || ev.Size != 4096 || ev.Platform != "linux" {
		t.Errorf("Unexpected event %+v", ev)
	}
	if ev.TrashLocation != "/home/user/.local/share/Trash/files/old report.pdf" {
		t.Errorf("TrashLocation = %q", ev.TrashLocation)
	}
	if ev.ErrorMessage != "" || ev.ExitCode != 0 {
		t.Errorf("Expected clean success, got exit=%d err=%q", ev.ExitCode, ev.ErrorMessage)
	}
	if ev.CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated by default")
	}
}

// TestRecordEventDefaults verifies defaults for omitted fields
func TestRecordEventDefaults(t *testing.T) {
	db := openTestDB(t)

	before := time.Now().Add(-time.Second)
	mustRecord(t, db, TrashEvent{Action: ActionError, Path: "/missing", Platform: "linux", ExitCode: 1, ErrorMessage: "no such file"})

	events, err := db.GetEventsByAction(ActionError)
	if err != nil {
		t.Fatalf("GetEventsByAction failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ObjectType != "unknown" {
		t.Errorf("ObjectType = %q, expected unknown", ev.ObjectType)
	}
	if ev.Timestamp.Before(before) {
		t.Errorf("Timestamp %v should default to now", ev.Timestamp)
	}
	if ev.ExitCode != 1 || ev.ErrorMessage != "no such file" {
		t.Errorf("Unexpected failure fields %+v", ev)
	}
}

// TestQueryMethods verifies the filtered queries
func TestQueryMethods(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	seed := []TrashEvent{
		{Timestamp: now.Add(-5 * time.Minute), Action: ActionTrash, Path: "/var/log/app.log", ObjectType: "file", Size: 100},
		{Timestamp: now.Add(-4 * time.Minute), Action: ActionTrash, Path: "/home/u/big.iso", ObjectType: "file", Size: 9000},
		{Timestamp: now.Add(-3 * time.Minute), Action: ActionTrash, Path: "/home/u/project", ObjectType: "directory", Size: 500},
		{Timestamp: now.Add(-2 * time.Minute), Action: ActionError, Path: "/home/u/missing", ExitCode: 1},
		{Timestamp: now.Add(-1 * time.Minute), Action: ActionBlocked, Path: "/home/u", ExitCode: 3},
		{Timestamp: now.AddDate(0, 0, -60), Action: ActionTrash, Path: "/var/log/ancient.log", ObjectType: "file", Size: 7},
	}
	for _, ev := range seed {
		ev.Platform = "linux"
		mustRecord(t, db, ev)
	}

	t.Run("recent", func(t *testing.T) {
		events, err := db.GetRecentEvents(2)
		if err != nil {
			t.Fatalf("GetRecentEvents failed: %v", err)
		}
		if len(events) != 2 || events[0].Path != "/home/u" || events[1].Path != "/home/u/missing" {
			t.Errorf("Unexpected recent events %+v", events)
		}
	})

	t.Run("by action", func(t *testing.T) {
		events, err := db.GetEventsByAction(ActionTrash)
		if err != nil {
			t.Fatalf("GetEventsByAction failed: %v", err)
		}
		if len(events) != 4 {
			t.Errorf("Expected 4 TRASH events, got %d", len(events))
		}
	})

	t.Run("by path", func(t *testing.T) {
		events, err := db.GetEventsByPath("/var/log/%")
		if err != nil {
			t.Fatalf("GetEventsByPath failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("Expected 2 events under /var/log, got %d", len(events))
		}
	})

	t.Run("largest", func(t *testing.T) {
		events, err := db.GetLargestEvents(2)
		if err != nil {
			t.Fatalf("GetLargestEvents failed: %v", err)
		}
		if len(events) != 2 || events[0].Size != 9000 || events[1].Size != 500 {
			t.Errorf("Unexpected largest events %+v", events)
		}
	})

	t.Run("date range", func(t *testing.T) {
		events, err := db.GetEventsByDateRange(now.Add(-10*time.Minute), now)
		if err != nil {
			t.Fatalf("GetEventsByDateRange failed: %v", err)
		}
		if len(events) != 5 {
			t.Errorf("Expected 5 events in range, got %d", len(events))
		}
	})

	t.Run("bytes trashed", func(t *testing.T) {
		total, err := db.GetTotalBytesTrashed(now.Add(-10*time.Minute), now)
		if err != nil {
			t.Fatalf("GetTotalBytesTrashed failed: %v", err)
		}
		if total != 9600 {
			t.Errorf("Expected 9600 bytes, got %d", total)
		}
	})

	t.Run("count by action", func(t *testing.T) {
		counts, err := db.GetEventCountByAction()
		if err != nil {
			t.Fatalf("GetEventCountByAction failed: %v", err)
		}
		if counts[ActionTrash] != 4 || counts[ActionError] != 1 || counts[ActionBlocked] != 1 {
			t.Errorf("Unexpected counts %v", counts)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := db.GetStats(30)
		if err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
		if stats.TotalTrashed != 3 || stats.TotalErrors != 1 || stats.TotalBlocked != 1 {
			t.Errorf("Unexpected stats %+v", stats)
		}
		if stats.BytesTrashed != 9600 {
			t.Errorf("BytesTrashed = %d, expected 9600", stats.BytesTrashed)
		}
		if stats.ByObjectType["file"] != 2 || stats.ByObjectType["directory"] != 1 {
			t.Errorf("Unexpected object types %v", stats.ByObjectType)
		}
	})
}

// TestConcurrentWriters verifies two handles on one file can both record
func TestConcurrentWriters(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	handles := make([]*TrashDB, 2)
	for i := range handles {
		db, err := NewTrashDB(dbPath)
		if err != nil {
			t.Fatalf("Failed to open handle %d: %v", i, err)
		}
		defer db.Close()
		handles[i] = db
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := handles[i%2].RecordEvent(TrashEvent{
				Action:   ActionTrash,
				Path:     fmt.Sprintf("/tmp/file-%d", i),
				Platform: "linux",
			})
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent write failed: %v", err)
	}

	counts, err := handles[0].GetEventCountByAction()
	if err != nil {
		t.Fatalf("GetEventCountByAction failed: %v", err)
	}
	if counts[ActionTrash] != 20 {
		t.Errorf("Expected 20 events, got %d", counts[ActionTrash])
	}
}

// TestDatabaseErrorHandling verifies open failures are reported
func TestDatabaseErrorHandling(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Parent "directory" is a regular file
	if _, err := NewTrashDB(filepath.Join(blocker, "journal.db")); err == nil {
		t.Error("Expected error when parent path is a file")
	}
}
