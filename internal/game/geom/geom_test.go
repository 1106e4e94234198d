package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSweepSphere_HitsMidPath(t *testing.T) {
	tHit, hit := SweepSphere(V3(0, 0, 0), V3(10, 0, 0), V3(5, 0, 0), 1)
	require.True(t, hit)
	assert.InDelta(t, 0.4, tHit, 0.1)
}

func TestSweepSphere_Miss(t *testing.T) {
	_, hit := SweepSphere(V3(0, 0, 0), V3(10, 0, 0), V3(5, 3, 0), 1)
	assert.False(t, hit)
}

func TestSweepSphere_TargetBehindStart(t *testing.T) {
	_, hit := SweepSphere(V3(0, 0, 0), V3(10, 0, 0), V3(-5, 0, 0), 1)
	assert.False(t, hit)
}

func TestSweepSphere_TargetBeyondEnd(t *testing.T) {
	_, hit := SweepSphere(V3(0, 0, 0), V3(10, 0, 0), V3(20, 0, 0), 1)
	assert.False(t, hit)
}

func TestSweepSphere_AlreadyOverlapping(t *testing.T) {
	tHit, hit := SweepSphere(V3(0, 0, 0), V3(10, 0, 0), V3(0.5, 0, 0), 1)
	require.True(t, hit)
	assert.Equal(t, 0.0, tHit)
}

func TestSweepSphere_Stationary(t *testing.T) {
	_, hit := SweepSphere(V3(1, 1, 1), V3(1, 1, 1), V3(5, 0, 0), 1)
	assert.False(t, hit)
}

func TestSweepSphere_RootWithinUnitInterval(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prev := V3(rapid.Float64Range(-50, 50).Draw(rt, "px"), 0, rapid.Float64Range(-50, 50).Draw(rt, "pz"))
		curr := V3(rapid.Float64Range(-50, 50).Draw(rt, "cx"), 0, rapid.Float64Range(-50, 50).Draw(rt, "cz"))
		target := V3(rapid.Float64Range(-50, 50).Draw(rt, "tx"), 0, rapid.Float64Range(-50, 50).Draw(rt, "tz"))
		r := rapid.Float64Range(0.1, 10).Draw(rt, "r")
		tHit, hit := SweepSphere(prev, curr, target, r)
		if !hit {
			return
		}
		assert.GreaterOrEqual(rt, tHit, 0.0)
		assert.LessOrEqual(rt, tHit, 1.0)
		at := prev.Add(curr.Sub(prev).Scale(tHit))
		assert.InDelta(rt, 0, math.Max(0, Dist3D(at, target)-r), 1e-6)
	})
}

func TestDistances(t *testing.T) {
	assert.Equal(t, 25.0, DistSq2D(0, 0, 3, 4))
	assert.Equal(t, 5.0, Dist2D(0, 0, 3, 4))
	assert.Equal(t, 9.0, DistSq3D(V3(0, 0, 0), V3(1, 2, 2)))
	assert.Equal(t, 3.0, Dist3D(V3(0, 0, 0), V3(1, 2, 2)))
}

func TestContainment(t *testing.T) {
	assert.True(t, PointInCircle(1, 1, 0, 0, 2))
	assert.False(t, PointInCircle(3, 0, 0, 0, 2))
	assert.True(t, PointInSphere(V3(0, 1, 0), V3(0, 0, 0), 1))
	assert.False(t, PointInSphere(V3(0, 1.5, 0), V3(0, 0, 0), 1))
}

func TestCirclesOverlap(t *testing.T) {
	assert.True(t, CirclesOverlap(V2(0, 0), 1, V2(1.5, 0), 1))
	assert.True(t, CirclesOverlap(V2(2, 2), 1, V2(2, 2), 1), "coincident centers overlap")
	assert.False(t, CirclesOverlap(V2(0, 0), 1, V2(2, 0), 1), "touching circles do not overlap")
	assert.False(t, CirclesOverlap(V2(0, 0), 1, V2(0, 5), 1))
}

func TestAABB(t *testing.T) {
	a := NewAABB(V3(2, 2, 2), V3(0, 0, 0))
	assert.Equal(t, V3(0, 0, 0), a.Min)
	assert.Equal(t, V3(2, 2, 2), a.Max)

	b := AABBFromCenter(V3(3, 1, 1), V3(1, 1, 1))
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))

	c := AABBFromCenter(V3(10, 1, 1), V3(1, 1, 1))
	assert.False(t, a.Overlaps(c))

	assert.True(t, a.ContainsPoint(V3(1, 1, 1)))
	assert.False(t, a.ContainsPoint(V3(1, 3, 1)))
	assert.Equal(t, V3(1, 1, 1), a.Center())
}

func TestRect(t *testing.T) {
	r := RectFromCenter(0, 0, 4, 2)
	assert.True(t, r.Contains(2, 1))
	assert.False(t, r.Contains(2.1, 0))
	assert.True(t, r.Overlaps(RectFromCenter(3, 0, 2, 2)))
	assert.False(t, r.Overlaps(RectFromCenter(5, 0, 2, 2)))
	assert.True(t, r.Expand(1).Contains(3, 0))
	assert.Equal(t, V2(0, 0), r.Center())
}

func TestVec2_Normalize(t *testing.T) {
	n, ok := V2(3, 4).Normalize()
	require.True(t, ok)
	assert.InDelta(t, 1.0, n.Len(), 1e-12)

	_, ok = V2(0, 0).Normalize()
	assert.False(t, ok)
}

func TestVec2_PerpIsOrthogonal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := V2(rapid.Float64Range(-100, 100).Draw(rt, "x"), rapid.Float64Range(-100, 100).Draw(rt, "z"))
		assert.InDelta(rt, 0, v.Dot(v.Perp()), 1e-9)
	})
}
