package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"arrowcraft.ai/internal/persistence/indexdb"
	persistlog "arrowcraft.ai/internal/persistence/log"
	"arrowcraft.ai/internal/sim/world"
	"arrowcraft.ai/internal/transport/ws"
)

func newMux(cfg serverConfig, w *world.World, idx *indexdb.SQLiteIndex, logs []*persistlog.JSONLZstdWriter, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := w.Metrics()
		if m.Tick == 0 {
			m.Tick = w.CurrentTick()
		}
		var stats *indexdb.Stats
		if idx != nil {
			s := idx.Stats()
			stats = &s
		}
		logStats := make([]persistlog.Stats, 0, len(logs))
		for _, l := range logs {
			logStats = append(logStats, l.Stats())
		}
		writeMetrics(rw, cfg.WorldID, m, stats, logStats)
	})
	if idx != nil {
		mux.HandleFunc("/v1/leaderboard", func(rw http.ResponseWriter, r *http.Request) {
			limit := 10
			if s := r.URL.Query().Get("limit"); s != "" {
				n, err := strconv.Atoi(s)
				if err != nil || n <= 0 || n > 100 {
					http.Error(rw, "bad limit", http.StatusBadRequest)
					return
				}
				limit = n
			}
			rows, err := idx.Leaderboard(r.Context(), limit)
			if err != nil {
				logger.Warn("leaderboard query", "err", err)
				http.Error(rw, "index unavailable", http.StatusServiceUnavailable)
				return
			}
			if rows == nil {
				rows = []indexdb.LeaderboardRow{}
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(map[string]any{"world_id": cfg.WorldID, "rows": rows})
		})
	}
	if cfg.EnableAdmin {
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
			}{
				WorldID: cfg.WorldID,
				Tick:    w.CurrentTick(),
				Metrics: w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
	} else {
		logger.Info("admin endpoints disabled")
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())
	return mux
}

// writeMetrics emits the Prometheus text exposition format.
func writeMetrics(out io.Writer, worldID string, m world.WorldMetrics, idx *indexdb.Stats, logs []persistlog.Stats) {
	gauge := func(name, help string) {
		fmt.Fprintf(out, "# HELP %s %s\n# TYPE %s gauge\n", name, help, name)
	}
	counter := func(name, help string) {
		fmt.Fprintf(out, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
	}

	gauge("arrowcraft_world_tick", "Current world tick.")
	fmt.Fprintf(out, "arrowcraft_world_tick{world=%q} %d\n", worldID, m.Tick)

	gauge("arrowcraft_world_entities", "Live entities by kind.")
	fmt.Fprintf(out, "arrowcraft_world_entities{world=%q,kind=%q} %d\n", worldID, "player", m.Players)
	fmt.Fprintf(out, "arrowcraft_world_entities{world=%q,kind=%q} %d\n", worldID, "arrow", m.Arrows)

	gauge("arrowcraft_world_clients", "Current number of connected clients.")
	fmt.Fprintf(out, "arrowcraft_world_clients{world=%q} %d\n", worldID, m.Clients)

	gauge("arrowcraft_world_queue_depth", "Channel backlog depth.")
	fmt.Fprintf(out, "arrowcraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(out, "arrowcraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(out, "arrowcraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

	gauge("arrowcraft_world_step_ms", "Last tick step duration in milliseconds.")
	fmt.Fprintf(out, "arrowcraft_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

	counter("arrowcraft_pipeline_events_total", "Pipeline events processed.")
	fmt.Fprintf(out, "arrowcraft_pipeline_events_total{world=%q,pipeline=%q,result=%q} %d\n", worldID, "release", "ok", m.Totals.Releases-m.Totals.ReleaseErrors)
	fmt.Fprintf(out, "arrowcraft_pipeline_events_total{world=%q,pipeline=%q,result=%q} %d\n", worldID, "release", "error", m.Totals.ReleaseErrors)
	fmt.Fprintf(out, "arrowcraft_pipeline_events_total{world=%q,pipeline=%q,result=%q} %d\n", worldID, "hit", "ok", m.Totals.Hits-m.Totals.HitErrors)
	fmt.Fprintf(out, "arrowcraft_pipeline_events_total{world=%q,pipeline=%q,result=%q} %d\n", worldID, "hit", "error", m.Totals.HitErrors)

	counter("arrowcraft_arrows_total", "Arrow lifecycle counts.")
	fmt.Fprintf(out, "arrowcraft_arrows_total{world=%q,event=%q} %d\n", worldID, "spawned", m.Totals.ArrowsSpawned)
	fmt.Fprintf(out, "arrowcraft_arrows_total{world=%q,event=%q} %d\n", worldID, "expired", m.Totals.Expired)

	counter("arrowcraft_attacks_total", "Attack events dispatched.")
	fmt.Fprintf(out, "arrowcraft_attacks_total{world=%q} %d\n", worldID, m.Totals.Attacks)

	counter("arrowcraft_deaths_total", "Players killed and respawned.")
	fmt.Fprintf(out, "arrowcraft_deaths_total{world=%q} %d\n", worldID, m.Totals.Deaths)

	if len(logs) > 0 {
		counter("arrowcraft_log_lines_total", "JSONL entries written.")
		for _, l := range logs {
			fmt.Fprintf(out, "arrowcraft_log_lines_total{world=%q,log=%q} %d\n", worldID, l.Prefix, l.Lines)
		}
		counter("arrowcraft_log_files_total", "Hourly log files opened.")
		for _, l := range logs {
			fmt.Fprintf(out, "arrowcraft_log_files_total{world=%q,log=%q} %d\n", worldID, l.Prefix, l.Files)
		}
	}

	if idx == nil {
		return
	}
	gauge("arrowcraft_index_queue_depth", "Index writer backlog.")
	fmt.Fprintf(out, "arrowcraft_index_queue_depth{world=%q} %d\n", worldID, idx.QueueDepth)
	gauge("arrowcraft_index_queue_capacity", "Index writer queue capacity.")
	fmt.Fprintf(out, "arrowcraft_index_queue_capacity{world=%q} %d\n", worldID, idx.QueueCapacity)
	counter("arrowcraft_index_dropped_total", "Index writes dropped because the queue was full.")
	fmt.Fprintf(out, "arrowcraft_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "tick", idx.DropTickTotal)
	fmt.Fprintf(out, "arrowcraft_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "audit", idx.DropAuditTotal)
	fmt.Fprintf(out, "arrowcraft_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", idx.DropSnapshotTotal)
}
