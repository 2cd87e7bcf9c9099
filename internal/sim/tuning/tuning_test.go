package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_PartialOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := "tick_rate_hz: 10\ncombat:\n  arrow_damage: 2.5\nscheduling:\n  hit_workers: 8\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TickRateHz != 10 || got.Combat.ArrowDamage != 2.5 || got.Scheduling.HitWorkers != 8 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Combat.ArrowMaxSpeed != 3.0 || got.Combat.EyeHeight != 1.62 {
		t.Fatalf("defaults lost: %+v", got.Combat)
	}
}

func TestLoad_RepoConfig(t *testing.T) {
	got, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Combat.ArrowMaxSpeed != 3.0 || got.Combat.SpawnForwardOffset != 0.5 {
		t.Fatalf("unexpected combat tuning %+v", got.Combat)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := "scheduling:\n  release_workers: 3\n  hit_workers: 0\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "release_workers") || !strings.Contains(err.Error(), "hit_workers") {
		t.Fatalf("expected both scheduling errors, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
