package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/tuning"
	"arrowcraft.ai/internal/sim/world"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.SnapshotV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropAuditTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drops=%+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_WritesRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.UpsertTuning(tuning.Defaults()); err != nil {
		t.Fatalf("UpsertTuning: %v", err)
	}
	_ = idx.WriteTick(world.TickLogEntry{
		Tick:   0,
		Joins:  []world.RecordedJoin{{Entity: 1, Name: "a"}, {Entity: 2, Name: "b"}},
		Digest: "d0",
	})
	_ = idx.WriteTick(world.TickLogEntry{
		Tick: 21,
		Intents: []world.RecordedIntent{{Entity: 1, Intent: protocol.IntentMsg{
			Type: protocol.TypeIntent, ProtocolVersion: protocol.Version, Kind: protocol.IntentReleaseUseItem, Item: "BOW",
		}}},
		Digest: "d21",
	})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 21, Actor: 1, Action: "CONSUME_ITEM", Slot: 0, Item: "ARROW", From: 16, To: 15, Reason: "BOW_RELEASE"})
	_ = idx.WriteTick(world.TickLogEntry{
		Tick:    22,
		Attacks: []world.RecordedAttack{{Origin: 1, Target: 2, Damage: 1}},
		Leaves:  []uint64{2},
		Digest:  "d22",
	})
	idx.RecordSnapshot("/abs/30.snap.zst", snapshot.SnapshotV1{
		Header:     snapshot.Header{Tick: 30},
		LastEntity: 3,
		Players:    []snapshot.PlayerV1{{Entity: 1}},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	count := func(q string) int {
		t.Helper()
		var n int
		if err := db.QueryRow(q).Scan(&n); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		return n
	}
	if n := count(`SELECT COUNT(*) FROM ticks`); n != 3 {
		t.Fatalf("ticks=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM joins`); n != 2 {
		t.Fatalf("joins=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM leaves WHERE entity=2`); n != 1 {
		t.Fatalf("leaves=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM intents WHERE kind='RELEASE_USE_ITEM' AND item='BOW'`); n != 1 {
		t.Fatalf("intents=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM tuning`); n != 1 {
		t.Fatalf("tuning=%d", n)
	}

	var from, to int
	var item string
	if err := db.QueryRow(`SELECT item,from_count,to_count FROM audits WHERE tick=21`).Scan(&item, &from, &to); err != nil {
		t.Fatalf("audit: %v", err)
	}
	if item != "ARROW" || from != 16 || to != 15 {
		t.Fatalf("audit row: %s %d %d", item, from, to)
	}

	var players, arrows int
	var last int64
	if err := db.QueryRow(`SELECT players,arrows,last_entity FROM snapshots WHERE tick=30`).Scan(&players, &arrows, &last); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if players != 1 || arrows != 0 || last != 3 {
		t.Fatalf("snapshot row: %d %d %d", players, arrows, last)
	}
}

func TestSQLiteIndex_LeaderboardAfterSync(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	_ = idx.WriteTick(world.TickLogEntry{Tick: 0, Joins: []world.RecordedJoin{{Entity: 1, Name: "a"}, {Entity: 2, Name: "b"}}})
	_ = idx.WriteTick(world.TickLogEntry{Tick: 5, Attacks: []world.RecordedAttack{{Origin: 2, Target: 1, Damage: 1}}})
	_ = idx.WriteTick(world.TickLogEntry{Tick: 9, Attacks: []world.RecordedAttack{
		{Origin: 1, Target: 2, Damage: 1},
		{Origin: 1, Target: 2, Damage: 1},
	}})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 8, Actor: 1, Action: "CONSUME_ITEM", Item: "ARROW", From: 2, To: 1})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 8, Actor: 1, Action: "CONSUME_ITEM", Item: "ARROW", From: 1, To: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	rows, err := idx.Leaderboard(ctx, 5)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%+v", rows)
	}
	if rows[0] != (LeaderboardRow{Entity: 1, Name: "a", Hits: 2, Damage: 2}) || rows[1].Entity != 2 || rows[1].Hits != 1 {
		t.Fatalf("rows=%+v", rows)
	}

	n, err := idx.ArrowsFired(ctx, 1)
	if err != nil {
		t.Fatalf("ArrowsFired: %v", err)
	}
	if n != 2 {
		t.Fatalf("arrows fired=%d", n)
	}
}
