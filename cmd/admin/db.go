package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type dbQuery struct {
	Name  string
	Actor uint64
	Since uint64
	Limit int
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	actor := fs.Uint64("actor", 0, "entity filter (attacks, audits)")
	since := fs.Uint64("since_tick", 0, "tick filter (inclusive)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := dbQuery{Name: "snapshots", Actor: *actor, Since: *since, Limit: *limit}
	if fs.NArg() > 0 {
		q.Name = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runQuery(db, q, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data] [-world WORLD|-db PATH] [-actor E] [-since_tick T] snapshots|leaderboard|attacks|audits")
		os.Exit(1)
	}
}

// runQuery prints one JSON object per row.
func runQuery(db *sql.DB, q dbQuery, out io.Writer) error {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	switch q.Name {
	case "snapshots":
		rows, err := db.Query(`SELECT tick,path,players,arrows,last_entity FROM snapshots WHERE tick >= ? ORDER BY tick DESC LIMIT ?`, q.Since, q.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick       int64  `json:"tick"`
				Path       string `json:"path"`
				Players    int    `json:"players"`
				Arrows     int    `json:"arrows"`
				LastEntity int64  `json:"last_entity"`
			}
			if err := rows.Scan(&r.Tick, &r.Path, &r.Players, &r.Arrows, &r.LastEntity); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			_ = enc.Encode(r)
		}
		return rows.Err()

	case "leaderboard":
		rows, err := db.Query(`
			SELECT a.origin, COALESCE(j.name, ''), COUNT(*), SUM(a.damage)
			FROM attacks a
			LEFT JOIN joins j ON j.entity = a.origin
			WHERE a.tick >= ?
			GROUP BY a.origin
			ORDER BY COUNT(*) DESC, SUM(a.damage) DESC, a.origin ASC
			LIMIT ?`, q.Since, q.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Entity int64   `json:"entity"`
				Name   string  `json:"name"`
				Hits   int     `json:"hits"`
				Damage float64 `json:"damage"`
			}
			if err := rows.Scan(&r.Entity, &r.Name, &r.Hits, &r.Damage); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			_ = enc.Encode(r)
		}
		return rows.Err()

	case "attacks":
		query := `SELECT tick,origin,target,damage FROM attacks WHERE tick >= ? ORDER BY tick DESC, seq DESC LIMIT ?`
		args := []any{q.Since, q.Limit}
		if q.Actor != 0 {
			query = `SELECT tick,origin,target,damage FROM attacks WHERE tick >= ? AND (origin = ? OR target = ?) ORDER BY tick DESC, seq DESC LIMIT ?`
			args = []any{q.Since, q.Actor, q.Actor, q.Limit}
		}
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick   int64   `json:"tick"`
				Origin int64   `json:"origin"`
				Target int64   `json:"target"`
				Damage float64 `json:"damage"`
			}
			if err := rows.Scan(&r.Tick, &r.Origin, &r.Target, &r.Damage); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			_ = enc.Encode(r)
		}
		return rows.Err()

	case "audits":
		query := `SELECT raw_json FROM audits WHERE tick >= ? ORDER BY tick DESC, seq DESC LIMIT ?`
		args := []any{q.Since, q.Limit}
		if q.Actor != 0 {
			query = `SELECT raw_json FROM audits WHERE tick >= ? AND actor = ? ORDER BY tick DESC, seq DESC LIMIT ?`
			args = []any{q.Since, q.Actor, q.Limit}
		}
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			_ = enc.Encode(json.RawMessage(raw))
		}
		return rows.Err()

	default:
		return fmt.Errorf("unknown query: %s", q.Name)
	}
}
