package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	persistlog "arrowcraft.ai/internal/persistence/log"
	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "refund":
			refundCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "leaderboard":
			leaderboardCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// refundCmd writes a copy of a snapshot with the arrows a player fired in a
// tick range put back into the slots they were taken from.
func refundCmd(args []string) {
	fs := flag.NewFlagSet("refund", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	actor := fs.Uint64("actor", 0, "player entity id (required)")
	sinceTick := fs.Uint64("since_tick", 0, "refund consumption since tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "refund consumption up to tick (inclusive, optional; defaults to snapshot tick)")
	outPath := fs.String("out", "", "output snapshot path (optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	if *actor == 0 {
		fmt.Fprintln(os.Stderr, "missing -actor")
		os.Exit(2)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" {
		snapshotToLoad = snapshot.Latest(filepath.Join(worldDir, "snapshots"))
	}
	if snapshotToLoad == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or run server until it writes one")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(snapshotToLoad)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}

	endTick := *toTick
	if endTick == 0 || endTick > snap.Header.Tick {
		endTick = snap.Header.Tick
	}

	recs, err := readConsumption(worldDir, *actor, *sinceTick, endTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	if len(recs) == 0 {
		fmt.Println("no matching audit entries; nothing to refund")
		return
	}

	applied, skipped := applyRefund(&snap, recs)

	if strings.TrimSpace(*outPath) == "" {
		*outPath = filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.refund.snap.zst", snap.Header.Tick))
	}
	if err := snapshot.WriteSnapshot(*outPath, snap); err != nil {
		fmt.Fprintln(os.Stderr, "write snapshot:", err)
		os.Exit(1)
	}

	fmt.Printf("refund ok: snapshot=%s tick=%d actor=%d since=%d to=%d entries=%d applied=%d skipped=%d out=%s\n",
		filepath.Base(snapshotToLoad), snap.Header.Tick, *actor, *sinceTick, endTick, len(recs), applied, skipped, *outPath)
}

type auditRec struct {
	Seq   uint64
	Entry world.AuditEntry
}

func readConsumption(worldDir string, actor, sinceTick, toTick uint64) ([]auditRec, error) {
	files, err := persistlog.Files(filepath.Join(worldDir, "audit"), "audit")
	if err != nil {
		return nil, err
	}

	out := make([]auditRec, 0, 64)
	var seq uint64
	for _, path := range files {
		err := persistlog.ScanJSONL(path, func(e world.AuditEntry) error {
			seq++
			if e.Action != "CONSUME_ITEM" || e.Actor != actor {
				return nil
			}
			if e.Tick < sinceTick || e.Tick > toTick {
				return nil
			}
			out = append(out, auditRec{Seq: seq, Entry: e})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Undo newest first so each record sees the count it left behind.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entry.Tick != out[j].Entry.Tick {
			return out[i].Entry.Tick > out[j].Entry.Tick
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

func applyRefund(snap *snapshot.SnapshotV1, recs []auditRec) (applied, skipped int) {
	if snap == nil || len(recs) == 0 {
		return 0, 0
	}
	players := map[uint64]*snapshot.PlayerV1{}
	for i := range snap.Players {
		players[snap.Players[i].Entity] = &snap.Players[i]
	}

	for _, r := range recs {
		p := players[r.Entry.Actor]
		if p == nil || r.Entry.Slot < 0 || r.Entry.Slot >= len(p.Slots) {
			skipped++
			continue
		}
		s := &p.Slots[r.Entry.Slot]
		switch {
		case s.Count == 0 && r.Entry.To == 0:
			*s = snapshot.SlotV1{Kind: r.Entry.Item, Count: r.Entry.From}
		case s.Kind == r.Entry.Item && s.Count == r.Entry.To:
			s.Count = r.Entry.From
		default:
			// The slot changed after this consumption.
			skipped++
			continue
		}
		applied++
	}
	return applied, skipped
}
