package bow

import (
	"math"

	"arrowcraft.ai/internal/sim/geom"
)

type Trajectory struct {
	Direction geom.Vec3
	Position  geom.Vec3
	Velocity  geom.Vec3
}

// ComputeTrajectory is pure: the same inputs always give the same arrow.
func ComputeTrajectory(cfg Config, pos geom.Vec3, yaw, pitch, charge float64) Trajectory {
	dir := geom.DirectionFromRotation(yaw, pitch)
	eye := geom.Vec3{X: pos.X, Y: pos.Y + cfg.EyeHeight, Z: pos.Z}
	return Trajectory{
		Direction: dir,
		Position:  eye.Add(dir.Scale(cfg.ForwardOffset)),
		Velocity:  dir.Scale(charge * cfg.MaxSpeed),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
