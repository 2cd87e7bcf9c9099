package geom

import "math"

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func FromArray(a [3]float64) Vec3 { return Vec3{a[0], a[1], a[2]} }

// ApproxEqual compares component-wise within eps.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

// DirectionFromRotation turns an orientation in degrees into a unit vector.
// Yaw rotates about +Y with yaw=0 facing +Z; pitch=0 is level and positive
// pitch looks down.
func DirectionFromRotation(yaw, pitch float64) Vec3 {
	y := yaw * math.Pi / 180
	p := pitch * math.Pi / 180
	cp := math.Cos(p)
	return Vec3{
		X: -cp * math.Sin(y),
		Y: -math.Sin(p),
		Z: cp * math.Cos(y),
	}
}

// AABB is an axis-aligned box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EntityBox returns the box of an entity standing at feet position pos.
func EntityBox(pos Vec3, halfWidth, height float64) AABB {
	return AABB{
		Min: Vec3{pos.X - halfWidth, pos.Y, pos.Z - halfWidth},
		Max: Vec3{pos.X + halfWidth, pos.Y + height, pos.Z + halfWidth},
	}
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// SegmentHit reports whether the segment from a to b intersects the box and
// returns the entry fraction in [0,1]. Slab method.
func (b AABB) SegmentHit(a, c Vec3) (float64, bool) {
	d := c.Sub(a)
	tmin, tmax := 0.0, 1.0
	axes := [3][4]float64{
		{a.X, d.X, b.Min.X, b.Max.X},
		{a.Y, d.Y, b.Min.Y, b.Max.Y},
		{a.Z, d.Z, b.Min.Z, b.Max.Z},
	}
	for _, ax := range axes {
		origin, delta, lo, hi := ax[0], ax[1], ax[2], ax[3]
		if math.Abs(delta) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin) / delta
		t2 := (hi - origin) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
