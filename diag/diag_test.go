package diag

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAuditLoggerWritesJSONLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path)
	logger.Log("sess-1", "snapshot_saved", AuditSnapshotSaved{Path: "dump.rdb", Keys: 3})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("expected at least one line in the audit log")
	}
	line := scanner.Text()
	if !strings.Contains(line, "snapshot_saved") || !strings.Contains(line, "sess-1") {
		t.Fatalf("audit line = %q", line)
	}
}

func TestSlowLogKeepsSlowestWithinCapacity(t *testing.T) {
	log := NewSlowLog(2)
	log.Record("GET", 1*time.Millisecond)
	log.Record("SET", 5*time.Millisecond)
	log.Record("KEYS", 10*time.Millisecond)

	got := log.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(got))
	}
	if got[0].Command != "KEYS" || got[1].Command != "SET" {
		t.Fatalf("Snapshot() = %+v, want [KEYS, SET] slowest-first", got)
	}
}

func TestSlowLogIgnoresFasterThanCurrentFloor(t *testing.T) {
	log := NewSlowLog(1)
	log.Record("SET", 10*time.Millisecond)
	log.Record("GET", 1*time.Millisecond)

	got := log.Snapshot()
	if len(got) != 1 || got[0].Command != "SET" {
		t.Fatalf("Snapshot() = %+v, want [SET]", got)
	}
}

func TestRecentErrorsPerRemote(t *testing.T) {
	r := NewRecentErrors(time.Minute)
	r.Record("127.0.0.1:1", "bad magic")
	r.Record("127.0.0.1:1", "arity error")
	r.Record("127.0.0.1:2", "unknown command")

	got := r.For("127.0.0.1:1")
	if len(got) != 2 || got[0] != "bad magic" || got[1] != "arity error" {
		t.Fatalf("For(1) = %v", got)
	}
	if len(r.For("127.0.0.1:2")) != 1 {
		t.Fatalf("For(2) = %v", r.For("127.0.0.1:2"))
	}
	if len(r.For("127.0.0.1:3")) != 0 {
		t.Fatalf("For(unknown) = %v", r.For("127.0.0.1:3"))
	}
}
