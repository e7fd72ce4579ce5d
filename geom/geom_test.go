package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelgfx/forge/math/lin"
)

func TestAABBExpandPointGrowsExtents(t *testing.T) {
	var ab AABB
	ab.Reset()
	assert.True(t, ab.Empty())

	ab.ExpandPoint(&lin.V3{X: -1, Y: -1, Z: -1})
	ab.ExpandPoint(&lin.V3{X: 2, Y: 3, Z: 4})
	assert.False(t, ab.Empty())
	assert.Equal(t, lin.V3{X: -1, Y: -1, Z: -1}, ab.Min)
	assert.Equal(t, lin.V3{X: 2, Y: 3, Z: 4}, ab.Max)
}

func TestAABBIntersectsDetectsOverlap(t *testing.T) {
	var a, b AABB
	a.Reset()
	a.ExpandPoint(&lin.V3{X: 0, Y: 0, Z: 0})
	a.ExpandPoint(&lin.V3{X: 2, Y: 2, Z: 2})

	b.Reset()
	b.ExpandPoint(&lin.V3{X: 1, Y: 1, Z: 1})
	b.ExpandPoint(&lin.V3{X: 3, Y: 3, Z: 3})
	assert.True(t, a.Intersects(&b))

	var c AABB
	c.Reset()
	c.ExpandPoint(&lin.V3{X: 10, Y: 10, Z: 10})
	c.ExpandPoint(&lin.V3{X: 11, Y: 11, Z: 11})
	assert.False(t, a.Intersects(&c))
}

func TestPlaneSignedDistanceSignsCorrectly(t *testing.T) {
	n := lin.V3{X: 0, Y: 1, Z: 0}
	pl := NewPlane(&n, 0) // y=0 plane, normal pointing up.
	above := lin.V3{X: 0, Y: 5, Z: 0}
	below := lin.V3{X: 0, Y: -5, Z: 0}
	assert.Greater(t, pl.SignedDistance(&above), float32(0))
	assert.Less(t, pl.SignedDistance(&below), float32(0))
}

func TestConvexCellClassifyPointInsideAllPlanes(t *testing.T) {
	var cell ConvexCell
	cell.Kind = CellTile
	up := lin.V3{X: 0, Y: 1, Z: 0}
	down := lin.V3{X: 0, Y: -1, Z: 0}
	cell.Planes[0] = NewPlane(&up, 0)    // y >= 0
	cell.Planes[1] = NewPlane(&down, 10) // -y >= -10 i.e. y <= 10
	cell.Count = 2

	inside := lin.V3{X: 0, Y: 5, Z: 0}
	outside := lin.V3{X: 0, Y: 20, Z: 0}
	assert.Equal(t, Inside, cell.ClassifyPoint(&inside))
	assert.Equal(t, Outside, cell.ClassifyPoint(&outside))
}

func TestFrustumFromViewProjClassifiesOriginInside(t *testing.T) {
	view := lin.NewM4I().TranslateTM(0, 0, -10)
	proj := lin.NewM4().Persp(60, 1, 1, 100)
	var vp lin.M4
	vp.Mult(view, proj)

	cell := FrustumFromViewProj(&vp)
	origin := lin.V3{X: 0, Y: 0, Z: 0}
	assert.NotEqual(t, Outside, cell.ClassifyPoint(&origin))
}

func TestTileDepthRangeAccumulateTracksMinMax(t *testing.T) {
	td := NewTileDepthRange(4, 4)
	td.Reset()
	td.Accumulate(1, 1, 5)
	td.Accumulate(1, 1, 2)
	td.Accumulate(1, 1, 8)
	min, max, valid := td.Range(1, 1)
	assert.True(t, valid)
	assert.Equal(t, float32(2), min)
	assert.Equal(t, float32(8), max)
}

func TestTileDepthRangeUnaccumulatedTileIsInvalid(t *testing.T) {
	td := NewTileDepthRange(2, 2)
	td.Reset()
	_, _, valid := td.Range(0, 0)
	assert.False(t, valid)
}
