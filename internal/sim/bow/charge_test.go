package bow

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestDrawLevel(t *testing.T) {
	cases := []struct {
		held uint64
		full int
		want float64
	}{
		{0, 20, 0},
		{10, 20, (0.25 + 1.0) / 3},
		{20, 20, 1},
		{400, 20, 1},
		{5, 0, 1},
	}
	for _, c := range cases {
		if got := DrawLevel(c.held, c.full); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("DrawLevel(%d,%d)=%v want %v", c.held, c.full, got, c.want)
		}
	}
}

func TestDrawLevel_MonotonicAndBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		full := rapid.IntRange(1, 200).Draw(t, "full")
		a := rapid.Uint64Range(0, 1000).Draw(t, "a")
		b := rapid.Uint64Range(a, 1000).Draw(t, "b")
		la, lb := DrawLevel(a, full), DrawLevel(b, full)
		if la < 0 || lb > 1 || la > lb {
			t.Fatalf("levels out of order or bounds: %v (%d) %v (%d) full=%d", la, a, lb, b, full)
		}
	})
}
