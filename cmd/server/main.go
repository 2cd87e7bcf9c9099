package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"arrowcraft.ai/internal/persistence/indexdb"
	persistlog "arrowcraft.ai/internal/persistence/log"
	"arrowcraft.ai/internal/persistence/snapshot"
	"arrowcraft.ai/internal/sim/tuning"
	"arrowcraft.ai/internal/sim/world"
)

func main() {
	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	lvl, err := parseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).With("component", "server")

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg serverConfig, logger *slog.Logger) error {
	worldDir := filepath.Join(cfg.DataDir, "worlds", cfg.WorldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		return err
	}

	snapshotToLoad := strings.TrimSpace(cfg.Snapshot)
	if snapshotToLoad == "" && cfg.LoadLatest {
		snapshotToLoad = snapshot.Latest(filepath.Join(worldDir, "snapshots"))
	}

	tune, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load tuning: %w", err)
		}
		logger.Info("tuning not found; using defaults", "path", cfg.TuningPath)
		tune = tuning.Defaults()
	}

	var snap *snapshot.SnapshotV1
	if snapshotToLoad != "" {
		s, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		if s.Header.WorldID != "" && s.Header.WorldID != cfg.WorldID {
			return fmt.Errorf("snapshot world id mismatch: flag=%s snap=%s", cfg.WorldID, s.Header.WorldID)
		}
		// Scheduling follows the snapshot so resumed tick numbering stays aligned.
		if s.TickRate > 0 {
			tune.TickRateHz = s.TickRate
		}
		if s.SnapshotEveryTicks > 0 {
			tune.SnapshotEveryTicks = s.SnapshotEveryTicks
		}
		snap = &s
	}

	idx, err := openRuntimeIndex(worldDir, cfg.DisableDB, tune, logger)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	w, err := world.New(world.WorldConfig{ID: cfg.WorldID, Tuning: tune, Logger: logger})
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if snap != nil {
		if err := w.ImportSnapshot(*snap); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}
		logger.Info("resumed from snapshot", "snapshot", filepath.Base(snapshotToLoad), "tick", w.CurrentTick())
	}

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	if idx != nil {
		w.SetTickLogger(multiTickLogger{tickLog, idx})
		w.SetAuditLogger(multiAuditLogger{auditLog, idx})
	} else {
		w.SetTickLogger(tickLog)
		w.SetAuditLogger(auditLog)
	}

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(cfg, w, idx, []*persistlog.JSONLZstdWriter{tickLog.JSONLZstdWriter, auditLog.JSONLZstdWriter}, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := w.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		writeSnapshots(gctx, worldDir, snapCh, idx, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr, "world", cfg.WorldID, "tick_rate_hz", tune.TickRateHz)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// writeSnapshots persists exported snapshots off the world loop.
func writeSnapshots(ctx context.Context, worldDir string, ch <-chan snapshot.SnapshotV1, idx *indexdb.SQLiteIndex, logger *slog.Logger) {
	dir := filepath.Join(worldDir, "snapshots")
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ch:
			path := snapshot.PathFor(dir, snap.Header.Tick)
			if err := snapshot.WriteSnapshot(path, snap); err != nil {
				logger.Warn("snapshot write", "tick", snap.Header.Tick, "err", err)
				continue
			}
			logger.Debug("snapshot written", "tick", snap.Header.Tick, "path", path)
			if idx != nil {
				idx.RecordSnapshot(path, snap)
			}
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
