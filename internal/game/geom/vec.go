// Package geom provides the pure geometric primitives used by collision,
// visibility and spawn placement: vectors, containment tests, distances,
// axis-aligned boxes and a moving-sphere sweep.
//
// The simulation plane is XZ; Y is only used by the 3D helpers.
package geom

import "math"

// epsilon is the length below which a vector is treated as zero.
const epsilon = 1e-9

// Vec2 is a point or displacement in the XZ plane.
type Vec2 struct {
	X float64
	Z float64
}

// V2 is shorthand for Vec2{X: x, Z: z}.
func V2(x, z float64) Vec2 { return Vec2{X: x, Z: z} }

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Z*o.Z }

// LenSq returns the squared length of v.
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Z*v.Z }

// Len returns the length of v.
func (v Vec2) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize returns v scaled to unit length, and false when v is (near) zero.
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Len()
	if l < epsilon {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Z / l}, true
}

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Z, v.X} }

// Lerp returns the point a fraction t of the way from v to o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Z + (o.Z-v.Z)*t}
}

// Vec3 is a point or displacement in 3D space.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// V3 is shorthand for Vec3{X: x, Y: y, Z: z}.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// LenSq returns the squared length of v.
func (v Vec3) LenSq() float64 { return v.Dot(v) }

// Len returns the length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }
