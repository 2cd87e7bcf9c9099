package world

import "arrowcraft.ai/internal/sim/component"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Players int `json:"players"`
	Arrows  int `json:"arrows"`
	Clients int `json:"clients"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`

	Totals Totals `json:"totals"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// Totals are monotonically increasing pipeline counters since process start.
type Totals struct {
	Releases      uint64 `json:"releases"`
	ReleaseErrors uint64 `json:"release_errors"`
	Hits          uint64 `json:"hits"`
	HitErrors     uint64 `json:"hit_errors"`
	ArrowsSpawned uint64 `json:"arrows_spawned"`
	Attacks       uint64 `json:"attacks"`
	Expired       uint64 `json:"expired"`
	Deaths        uint64 `json:"deaths"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) publishMetrics(tick uint64, stepMS float64) {
	players, arrows := 0, 0
	for _, e := range w.st.kind.Entities() {
		k, _ := w.st.kind.Get(e)
		switch k {
		case component.KindPlayer:
			players++
		case component.KindArrow:
			arrows++
		}
	}
	w.metrics.Store(WorldMetrics{
		Tick:    tick,
		Players: players,
		Arrows:  arrows,
		Clients: len(w.clients),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: stepMS,
		Totals: w.totals,
	})
}
