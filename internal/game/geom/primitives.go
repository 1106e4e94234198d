package geom

import "math"

// DistSq2D returns the squared distance between (ax, az) and (bx, bz).
func DistSq2D(ax, az, bx, bz float64) float64 {
	dx := bx - ax
	dz := bz - az
	return dx*dx + dz*dz
}

// Dist2D returns the distance between (ax, az) and (bx, bz).
func Dist2D(ax, az, bx, bz float64) float64 {
	return math.Sqrt(DistSq2D(ax, az, bx, bz))
}

// DistSq3D returns the squared distance between a and b.
func DistSq3D(a, b Vec3) float64 {
	return b.Sub(a).LenSq()
}

// Dist3D returns the distance between a and b.
func Dist3D(a, b Vec3) float64 {
	return math.Sqrt(DistSq3D(a, b))
}

// PointInCircle reports whether (px, pz) lies inside or on the circle of
// radius r centered at (cx, cz).
func PointInCircle(px, pz, cx, cz, r float64) bool {
	return DistSq2D(px, pz, cx, cz) <= r*r
}

// PointInSphere reports whether p lies inside or on the sphere of radius r
// centered at c.
func PointInSphere(p, c Vec3, r float64) bool {
	return DistSq3D(p, c) <= r*r
}

// CirclesOverlap reports whether two circles intersect with positive depth.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	sum := ra + rb
	return b.Sub(a).LenSq() < sum*sum
}

// SweepSphere tests a sphere of radius moving from prev to curr against a
// static point target. It solves a·t² + b·t + c = 0 over the relative
// displacement and returns the earliest root in [0, 1].
//
// Postcondition: hit is false when the path never comes within radius of target.
// A sphere that already contains target at prev reports t == 0.
func SweepSphere(prev, curr, target Vec3, radius float64) (t float64, hit bool) {
	d := curr.Sub(prev)
	f := prev.Sub(target)

	a := d.Dot(d)
	b := 2 * f.Dot(d)
	c := f.Dot(f) - radius*radius

	if c <= 0 {
		return 0, true
	}
	if a < epsilon {
		return 0, false
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	if t2 >= 0 && t2 <= 1 {
		return t2, true
	}
	return 0, false
}
