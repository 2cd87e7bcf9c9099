package main

import (
	"log/slog"
	"path/filepath"

	"arrowcraft.ai/internal/persistence/indexdb"
	"arrowcraft.ai/internal/sim/tuning"
	"arrowcraft.ai/internal/sim/world"
)

// openRuntimeIndex returns nil when indexing is disabled. The index never
// feeds back into the simulation.
func openRuntimeIndex(worldDir string, disableDB bool, tune tuning.Tuning, logger *slog.Logger) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}
	idx, err := indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
	if err != nil {
		return nil, err
	}
	if err := idx.UpsertTuning(tune); err != nil {
		logger.Warn("index: upsert tuning", "err", err)
	}
	return idx, nil
}

type multiTickLogger []world.TickLogger

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteTick(entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type multiAuditLogger []world.AuditLogger

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteAudit(entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}
