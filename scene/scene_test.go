package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/math/lin"
)

func insideOutsideCell() geom.ConvexCell {
	var cell geom.ConvexCell
	cell.Kind = geom.CellFrustum
	up := lin.V3{X: 0, Y: 1, Z: 0}
	down := lin.V3{X: 0, Y: -1, Z: 0}
	cell.Planes[0] = geom.NewPlane(&up, 5)    // y >= -5
	cell.Planes[1] = geom.NewPlane(&down, 5)  // y <= 5
	cell.Count = 2
	return cell
}

func TestFrustumCullMarksInsideAndOutsideElements(t *testing.T) {
	s := NewSceneElementSet()
	inside := geom.NewSphere(lin.V3{X: 0, Y: 0, Z: 0}, 1)
	outside := geom.NewSphere(lin.V3{X: 0, Y: 100, Z: 0}, 1)
	s.Add(Element{StableID: 1, Enabled: true, Shape: inside})
	s.Add(Element{StableID: 2, Enabled: true, Shape: outside})

	cell := insideOutsideCell()
	s.FrustumCull(&cell)

	require.True(t, s.Elements[0].FrustumVisible)
	require.False(t, s.Elements[1].FrustumVisible)
}

func TestResolveVisibilityCountsMatchInvariant(t *testing.T) {
	s := NewSceneElementSet()
	shape := geom.NewSphere(lin.V3{X: 0, Y: 0, Z: 0}, 1)
	s.Add(Element{StableID: 1, Enabled: true, Shape: shape, FrustumVisible: true})
	s.Add(Element{StableID: 2, Enabled: true, Shape: shape, FrustumVisible: true, Occluded: true})
	s.Add(Element{StableID: 3, Enabled: false, Shape: shape, FrustumVisible: true})

	stats := s.ResolveVisibility()
	assert.Equal(t, 3, stats.SceneCount)
	assert.LessOrEqual(t, stats.VisibleCount, stats.FrustumVisibleCount)
	assert.LessOrEqual(t, stats.FrustumVisibleCount, stats.SceneCount)
	assert.Equal(t, 1, stats.VisibleCount) // only the first element is enabled, visible, unoccluded.
}

func TestResolveVisibilityFallsBackWhenOcclusionHidesEverything(t *testing.T) {
	s := NewSceneElementSet()
	shape := geom.NewSphere(lin.V3{X: 0, Y: 0, Z: 0}, 1)
	s.Add(Element{StableID: 1, Enabled: true, Shape: shape, FrustumVisible: true, Occluded: true})
	s.Add(Element{StableID: 2, Enabled: true, Shape: shape, FrustumVisible: true, Occluded: true})

	stats := s.ResolveVisibility()
	assert.Equal(t, 2, stats.VisibleCount) // fallback restores visibility when occlusion blinds the whole frustum-visible set.
}

func TestVisibleIndicesReturnsOnlyVisibleElements(t *testing.T) {
	s := NewSceneElementSet()
	shape := geom.NewSphere(lin.V3{X: 0, Y: 0, Z: 0}, 1)
	s.Add(Element{StableID: 1, Enabled: true, Shape: shape, Visible: true})
	s.Add(Element{StableID: 2, Enabled: true, Shape: shape, Visible: false})
	s.Add(Element{StableID: 3, Enabled: true, Shape: shape, Visible: true})

	assert.Equal(t, []int{0, 2}, s.VisibleIndices())
}
