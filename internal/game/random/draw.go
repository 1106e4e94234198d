package random

import "math"

// Between returns a uniform float in [lo, hi).
//
// Precondition: lo <= hi.
// Postcondition: Returns lo when lo == hi.
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntBetween returns a uniform int in [lo, hi] (both ends inclusive).
//
// Postcondition: Returns lo when hi <= lo.
func IntBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Chance reports true with probability p. p <= 0 never fires; p >= 1 always does.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// UnitVector returns a uniformly oriented unit vector in the XZ plane.
//
// Postcondition: x*x + z*z == 1 (within float tolerance).
func UnitVector(src Source) (x, z float64) {
	angle := src.Float64() * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

// InDisc returns a point uniformly distributed over the disc of the given
// radius centered at (cx, cz).
func InDisc(src Source, cx, cz, radius float64) (x, z float64) {
	r := radius * math.Sqrt(src.Float64())
	ux, uz := UnitVector(src)
	return cx + ux*r, cz + uz*r
}
