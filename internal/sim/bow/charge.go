package bow

// DrawLevel maps ticks held to a charge level using the vanilla bow curve:
// f = held/full, level = min(1, (f²+2f)/3).
func DrawLevel(heldTicks uint64, fullTicks int) float64 {
	if fullTicks <= 0 {
		return 1
	}
	f := float64(heldTicks) / float64(fullTicks)
	level := (f*f + 2*f) / 3
	if level > 1 {
		return 1
	}
	return level
}
