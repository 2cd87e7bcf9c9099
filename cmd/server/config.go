package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// serverConfig holds process settings. Environment variables seed the
// defaults; flags given on the command line win.
type serverConfig struct {
	Addr        string `env:"ARROWCRAFT_ADDR" envDefault:":8080"`
	WorldID     string `env:"ARROWCRAFT_WORLD" envDefault:"world_1"`
	TuningPath  string `env:"ARROWCRAFT_TUNING" envDefault:"./configs/tuning.yaml"`
	DataDir     string `env:"ARROWCRAFT_DATA" envDefault:"./data"`
	DisableDB   bool   `env:"ARROWCRAFT_DISABLE_DB" envDefault:"false"`
	Snapshot    string `env:"ARROWCRAFT_SNAPSHOT"`
	LoadLatest  bool   `env:"ARROWCRAFT_LOAD_LATEST_SNAPSHOT" envDefault:"true"`
	LogLevel    string `env:"ARROWCRAFT_LOG_LEVEL" envDefault:"info"`
	EnableAdmin bool   `env:"ARROWCRAFT_ENABLE_ADMIN_HTTP" envDefault:"true"`
}

func loadConfig(fs *flag.FlagSet, args []string) (serverConfig, error) {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "http listen address")
	fs.StringVar(&cfg.WorldID, "world", cfg.WorldID, "world id")
	fs.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "path to tuning.yaml")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "runtime data directory")
	fs.BoolVar(&cfg.DisableDB, "disable_db", cfg.DisableDB, "disable the sqlite index (tick/audit/snapshot metadata)")
	fs.StringVar(&cfg.Snapshot, "snapshot", cfg.Snapshot, "path to snapshot to load (optional)")
	fs.BoolVar(&cfg.LoadLatest, "load_latest_snapshot", cfg.LoadLatest, "load latest snapshot from data dir if present (when -snapshot is empty)")
	fs.StringVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "debug|info|warn|error")
	fs.BoolVar(&cfg.EnableAdmin, "admin_http", cfg.EnableAdmin, "serve loopback-only /admin endpoints")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.WorldID = strings.TrimSpace(cfg.WorldID)
	if cfg.WorldID == "" {
		return cfg, fmt.Errorf("empty world id")
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}
