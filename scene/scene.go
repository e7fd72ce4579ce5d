// Package scene implements the scene culling engine: frustum culling,
// software occlusion, visibility resolution with a frustum fallback, and
// hysteresis-based visibility history keyed by stable id. It is grounded on
// the teacher's camera.go (view/projection matrix ownership) and
// physics/broad.go's broad-phase iteration style (flat slices, no per-pair
// allocation), generalized to the tagged-union shape volumes in geom.
package scene

import (
	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/kestrelgfx/forge/registry"
)

// StableID is an application-assigned integer that uniquely identifies a
// scene element across frames, used by VisibilityHistory. The scene culling
// engine requires stable ids to be pairwise distinct within one
// SceneElementSet.
type StableID uint64

// Element is one entry of a SceneElementSet: an enable flag, a world-space
// shape volume, a world AABB (kept alongside the shape for the occlusion
// and light-binning stages, which always want an AABB regardless of the
// underlying shape kind), the mesh/material/transform a drawing pass
// resolves its geometry through, and the per-frame visibility flags the
// engine computes.
type Element struct {
	StableID StableID
	Enabled  bool
	Shape    geom.Shape
	WorldAB  geom.AABB

	Mesh      registry.MeshHandle
	Material  registry.MaterialHandle
	Transform lin.M4

	FrustumVisible bool
	Occluded       bool
	Visible        bool
}

// Stats summarizes one culling pass, satisfying the invariant
// visible_count <= frustum_visible_count <= scene_count.
type Stats struct {
	SceneCount          int
	FrustumVisibleCount int
	OccludedCount       int
	VisibleCount        int
}

// SceneElementSet is a contiguous array of scene elements culled together
// against one camera per frame.
type SceneElementSet struct {
	Elements []Element
}

// NewSceneElementSet returns an empty set ready to have elements appended.
func NewSceneElementSet() *SceneElementSet {
	return &SceneElementSet{}
}

// Add appends a new element and returns its index within Elements.
func (s *SceneElementSet) Add(e Element) int {
	s.Elements = append(s.Elements, e)
	return len(s.Elements) - 1
}

// FrustumCull classifies every enabled element's shape volume against the
// six frustum planes of cell, setting FrustumVisible true for Inside or
// Intersecting. Disabled elements are left with FrustumVisible false.
func (s *SceneElementSet) FrustumCull(cell *geom.ConvexCell) {
	for i := range s.Elements {
		e := &s.Elements[i]
		if !e.Enabled {
			e.FrustumVisible = false
			continue
		}
		class := e.Shape.Classify(cell)
		e.FrustumVisible = class == geom.Inside || class == geom.Intersecting
	}
}

// ResolveVisibility sets Visible = FrustumVisible && !Occluded && Enabled
// for every element, then applies the frustum fallback (if occlusion
// declared every frustum-visible element occluded, restore
// Visible = FrustumVisible for all of them, to avoid an empty scene from a
// pathological occlusion frame) and returns the frame's Stats.
func (s *SceneElementSet) ResolveVisibility() Stats {
	var stats Stats
	stats.SceneCount = len(s.Elements)

	for i := range s.Elements {
		e := &s.Elements[i]
		if e.FrustumVisible {
			stats.FrustumVisibleCount++
		}
		if e.Occluded {
			stats.OccludedCount++
		}
		e.Visible = e.FrustumVisible && !e.Occluded && e.Enabled
		if e.Visible {
			stats.VisibleCount++
		}
	}

	if stats.FrustumVisibleCount > 0 && stats.VisibleCount == 0 {
		s.applyFrustumFallback()
		stats.VisibleCount = 0
		for i := range s.Elements {
			e := &s.Elements[i]
			if e.Visible {
				stats.VisibleCount++
			}
		}
	}
	return stats
}

// applyFrustumFallback restores Visible = FrustumVisible for every enabled
// element, undoing an occlusion pass that (incorrectly, for this frame)
// declared the whole frustum-visible set occluded.
func (s *SceneElementSet) applyFrustumFallback() {
	for i := range s.Elements {
		e := &s.Elements[i]
		if e.Enabled {
			e.Visible = e.FrustumVisible
		}
	}
}

// VisibleIndices returns the indices of every currently Visible element.
// The slice is freshly allocated; callers on a hot per-frame path should
// prefer iterating Elements directly with a cap-reused buffer.
func (s *SceneElementSet) VisibleIndices() []int {
	out := make([]int, 0, len(s.Elements))
	for i := range s.Elements {
		if s.Elements[i].Visible {
			out = append(out, i)
		}
	}
	return out
}

// Strategy lets an application substitute its own culling behavior (e.g. a
// BVH-accelerated frustum test, or GPU-readback occlusion) without forking
// the executor. The default path calls FrustumCull and the software
// occlusion buffer directly; Strategy is the forge equivalent of the
// original's ICullingStrategy.
type Strategy interface {
	Cull(set *SceneElementSet, view, proj *lin.M4) Stats
}
