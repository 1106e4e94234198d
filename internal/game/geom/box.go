package geom

// AABB is a 3D axis-aligned bounding box.
//
// Invariant: Min.X <= Max.X, Min.Y <= Max.Y, Min.Z <= Max.Z.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB builds a box from two opposite corners in any order.
func NewAABB(a, b Vec3) AABB {
	return AABB{
		Min: Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)},
		Max: Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)},
	}
}

// AABBFromCenter builds a box from its center and half-extents.
//
// Precondition: all half-extents are >= 0.
func AABBFromCenter(center, half Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Overlaps reports whether b and o intersect. Touching faces count.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// ContainsPoint reports whether p lies inside or on b.
func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Center returns the midpoint of b.
func (b AABB) Center() Vec3 {
	return Vec3{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2, (b.Min.Z + b.Max.Z) / 2}
}

// Rect is an axis-aligned rectangle in the XZ plane. Shelves and other flat
// static geometry are modelled as Rects.
//
// Invariant: MinX <= MaxX, MinZ <= MaxZ.
type Rect struct {
	MinX float64
	MinZ float64
	MaxX float64
	MaxZ float64
}

// RectFromCenter builds a Rect centered at (cx, cz) with the given size.
func RectFromCenter(cx, cz, width, depth float64) Rect {
	return Rect{MinX: cx - width/2, MinZ: cz - depth/2, MaxX: cx + width/2, MaxZ: cz + depth/2}
}

// Contains reports whether (x, z) lies inside or on r.
func (r Rect) Contains(x, z float64) bool {
	return x >= r.MinX && x <= r.MaxX && z >= r.MinZ && z <= r.MaxZ
}

// Overlaps reports whether r and o intersect. Touching edges count.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX <= o.MaxX && r.MaxX >= o.MinX && r.MinZ <= o.MaxZ && r.MaxZ >= o.MinZ
}

// Expand returns r grown by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinZ: r.MinZ - d, MaxX: r.MaxX + d, MaxZ: r.MaxZ + d}
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{(r.MinX + r.MaxX) / 2, (r.MinZ + r.MaxZ) / 2}
}
