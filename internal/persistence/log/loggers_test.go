package log

import (
	"path/filepath"
	"testing"
	"time"

	"arrowcraft.ai/internal/sim/world"
)

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "events")
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if err := w.Write(map[string]int{"n": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"n": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if st := w.Stats(); st.Lines != 2 || st.Files != 2 || st.Prefix != "events" {
		t.Fatalf("stats=%+v", st)
	}

	files, err := Files(dir, "events")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	want := []string{
		filepath.Join(dir, "events-2026-03-01-10.jsonl.zst"),
		filepath.Join(dir, "events-2026-03-01-11.jsonl.zst"),
	}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("files=%v", files)
	}

	var got []int
	for _, p := range files {
		if err := ScanJSONL(p, func(m map[string]int) error {
			got = append(got, m["n"])
			return nil
		}); err != nil {
			t.Fatalf("scan: %v", err)
		}
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got=%v", got)
	}
}

func TestTickLogger_ReadTicks(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	for tick := uint64(0); tick < 5; tick++ {
		e := world.TickLogEntry{Tick: tick, Digest: "d"}
		if tick == 1 {
			e.Joins = []world.RecordedJoin{{Entity: 1, Name: "a"}}
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := ReadTicks(dir, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 4 || entries[0].Tick != 1 || len(entries[0].Joins) != 1 || entries[0].Joins[0].Name != "a" {
		t.Fatalf("entries=%+v", entries)
	}
}

func TestAuditLogger_Appends(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	if err := l.WriteAudit(world.AuditEntry{Tick: 3, Actor: 1, Action: "CONSUME_ITEM", Item: "ARROW", From: 16, To: 15}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	files, _ := Files(filepath.Join(dir, "audit"), "audit")
	if len(files) != 1 {
		t.Fatalf("files=%v", files)
	}
	var got []world.AuditEntry
	if err := ScanJSONL(files[0], func(e world.AuditEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 || got[0].To != 15 || got[0].Action != "CONSUME_ITEM" {
		t.Fatalf("got=%+v", got)
	}
}

func TestJSONLZstdWriter_ReopenAppendsFrame(t *testing.T) {
	dir := t.TempDir()
	now := func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	for i := 1; i <= 2; i++ {
		w := NewJSONLZstdWriter(dir, "audit")
		w.now = now
		if err := w.Write(map[string]int{"n": i}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}

	files, _ := Files(dir, "audit")
	if len(files) != 1 {
		t.Fatalf("files=%v", files)
	}
	n := 0
	if err := ScanJSONL(files[0], func(map[string]int) error { n++; return nil }); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("lines=%d want 2", n)
	}
}
