package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	persistlog "arrowcraft.ai/internal/persistence/log"
	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/tuning"
	"arrowcraft.ai/internal/sim/world"
)

func main() {
	var (
		worldDir   = flag.String("world_dir", "", "world data dir containing events/ (and snapshots/)")
		snapPath   = flag.String("snapshot", "", "path to .snap.zst to start from (default: replay from tick 0)")
		worldID    = flag.String("world", "world_1", "world id (used when starting from tick 0)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning the server ran with")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "replay")
	if *worldDir == "" {
		fmt.Fprintln(os.Stderr, "missing -world_dir")
		os.Exit(2)
	}

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("load tuning", "err", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}

	id := *worldID
	var snap *snapshot.SnapshotV1
	if *snapPath != "" {
		s, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			logger.Error("read snapshot", "err", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d world=%s tick=%d players=%d arrows=%d last_entity=%d\n",
			s.Header.Version, s.Header.WorldID, s.Header.Tick, len(s.Players), len(s.Arrows), s.LastEntity)
		id = s.Header.WorldID
		if s.TickRate > 0 {
			tune.TickRateHz = s.TickRate
		}
		snap = &s
	}

	w, err := world.New(world.WorldConfig{ID: id, Tuning: tune})
	if err != nil {
		logger.Error("world", "err", err)
		os.Exit(1)
	}
	if snap != nil {
		if err := w.ImportSnapshot(*snap); err != nil {
			logger.Error("import snapshot", "err", err)
			os.Exit(1)
		}
	}

	startTick := w.CurrentTick()
	entries, err := persistlog.ReadTicks(*worldDir, startTick)
	if err != nil {
		logger.Error("read tick log", "dir", filepath.Join(*worldDir, "events"), "err", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		logger.Error("no tick log entries", "dir", *worldDir, "from", startTick)
		os.Exit(1)
	}

	checked, err := replay(w, entries, *fromTick, *toTick)
	if err != nil {
		logger.Error("replay", "err", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks (from tick=%d)\n", checked, startTick)
}

// replay steps w through entries and compares each state digest with the
// recorded one. Ticks below verifyFrom are stepped but not compared.
func replay(w *world.World, entries []world.TickLogEntry, verifyFrom, toTick uint64) (uint64, error) {
	var checked uint64
	for _, entry := range entries {
		if toTick != 0 && entry.Tick > toTick {
			break
		}
		if entry.Tick != w.CurrentTick() {
			return checked, fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}

		joins := make([]world.JoinRequest, 0, len(entry.Joins))
		for _, j := range entry.Joins {
			joins = append(joins, world.JoinRequest{Name: j.Name, Resp: make(chan world.JoinResponse, 1)})
		}
		leaves := make([]ecs.Entity, 0, len(entry.Leaves))
		for _, e := range entry.Leaves {
			leaves = append(leaves, ecs.Entity(e))
		}
		intents := make([]world.IntentEnvelope, 0, len(entry.Intents))
		for _, ri := range entry.Intents {
			intents = append(intents, world.IntentEnvelope{Entity: ecs.Entity(ri.Entity), Intent: ri.Intent})
		}

		tick, digest := w.StepOnce(joins, leaves, intents)
		if tick != entry.Tick {
			return checked, fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		for i, j := range joins {
			got := (<-j.Resp).Welcome.EntityID
			if want := entry.Joins[i].Entity; got != want {
				return checked, fmt.Errorf("join entity mismatch at tick %d: got=%d want=%d", tick, got, want)
			}
		}
		if tick >= verifyFrom {
			checked++
			if digest != entry.Digest {
				return checked, fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, digest, entry.Digest)
			}
		}
	}
	return checked, nil
}
