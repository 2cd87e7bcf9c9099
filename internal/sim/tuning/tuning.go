package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Combat     Combat     `yaml:"combat"`
	Flight     Flight     `yaml:"flight"`
	Player     Player     `yaml:"player"`
	Scheduling Scheduling `yaml:"scheduling"`
}

type Combat struct {
	ArrowMaxSpeed      float64 `yaml:"arrow_max_speed"`
	EyeHeight          float64 `yaml:"eye_height"`
	SpawnForwardOffset float64 `yaml:"spawn_forward_offset"`
	ArrowDamage        float64 `yaml:"arrow_damage"`
	ClampCharge        bool    `yaml:"clamp_charge"`
	ChargeFullTicks    int     `yaml:"charge_full_ticks"`
}

type Flight struct {
	Gravity         float64 `yaml:"gravity"`
	Drag            float64 `yaml:"drag"`
	LifetimeTicks   int     `yaml:"lifetime_ticks"`
	HitboxHalfWidth float64 `yaml:"hitbox_half_width"`
	HitboxHeight    float64 `yaml:"hitbox_height"`
}

type Player struct {
	MaxHealth    float64        `yaml:"max_health"`
	SpawnPos     [3]float64     `yaml:"spawn_pos"`
	StarterItems map[string]int `yaml:"starter_items"`
}

// Scheduling states, once, how each pipeline is run.
type Scheduling struct {
	// ReleaseWorkers is fixed at 1: releases are processed in queue order on
	// one goroutine.
	ReleaseWorkers int `yaml:"release_workers"`
	// HitWorkers partitions the collision pipeline by struck entity.
	HitWorkers int `yaml:"hit_workers"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         20,
		SnapshotEveryTicks: 6000,
		Combat: Combat{
			ArrowMaxSpeed:      3.0,
			EyeHeight:          1.62,
			SpawnForwardOffset: 0.5,
			ArrowDamage:        1.0,
			ClampCharge:        true,
			ChargeFullTicks:    20,
		},
		Flight: Flight{
			Gravity:         0.05,
			Drag:            0.99,
			LifetimeTicks:   1200,
			HitboxHalfWidth: 0.3,
			HitboxHeight:    1.8,
		},
		Player: Player{
			MaxHealth:    20,
			SpawnPos:     [3]float64{0, 64, 0},
			StarterItems: map[string]int{"BOW": 1, "ARROW": 16},
		},
		Scheduling: Scheduling{
			ReleaseWorkers: 1,
			HitWorkers:     4,
		},
	}
}

// Load reads path on top of Defaults, so a partial file only overrides the
// keys it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be > 0, got %d", t.TickRateHz))
	}
	if t.Combat.ArrowMaxSpeed < 0 {
		errs = append(errs, fmt.Errorf("combat.arrow_max_speed must be >= 0"))
	}
	if t.Combat.ChargeFullTicks <= 0 {
		errs = append(errs, fmt.Errorf("combat.charge_full_ticks must be > 0"))
	}
	if t.Flight.Drag < 0 || t.Flight.Drag > 1 {
		errs = append(errs, fmt.Errorf("flight.drag must be in [0,1], got %v", t.Flight.Drag))
	}
	if t.Scheduling.ReleaseWorkers != 1 {
		errs = append(errs, fmt.Errorf("scheduling.release_workers must be 1, got %d", t.Scheduling.ReleaseWorkers))
	}
	if t.Scheduling.HitWorkers < 1 {
		errs = append(errs, fmt.Errorf("scheduling.hit_workers must be >= 1, got %d", t.Scheduling.HitWorkers))
	}
	return errors.Join(errs...)
}
