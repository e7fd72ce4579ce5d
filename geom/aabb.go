// Package geom provides the culling primitives the render-path builds on:
// axis-aligned bounding boxes, planes, frusta extracted from a view-proj
// matrix, convex cells (frustum/tile/cluster), and the tagged-union shape
// volumes used to classify scene elements and light volumes against them.
//
// The package follows the CPU math conventions of math/lin: pointer
// receivers, in-place mutation, float32 scalars, and no allocation in the
// hot per-element and per-tile classification paths.
package geom

import "github.com/kestrelgfx/forge/math/lin"

// AABB is an axis-aligned bounding box described by its min and max corners.
type AABB struct {
	Min lin.V3
	Max lin.V3
}

// NewAABB returns an inverted (empty) box ready for Expand calls to grow.
func NewAABB() *AABB {
	return &AABB{
		Min: lin.V3{X: lin.Large, Y: lin.Large, Z: lin.Large},
		Max: lin.V3{X: -lin.Large, Y: -lin.Large, Z: -lin.Large},
	}
}

// Reset returns ab to the inverted (empty) state.
func (ab *AABB) Reset() *AABB {
	ab.Min.SetS(lin.Large, lin.Large, lin.Large)
	ab.Max.SetS(-lin.Large, -lin.Large, -lin.Large)
	return ab
}

// SetMinMax sets ab's extents explicitly. Returns ab.
func (ab *AABB) SetMinMax(min, max *lin.V3) *AABB {
	ab.Min.Set(min)
	ab.Max.Set(max)
	return ab
}

// ExpandPoint grows ab, if necessary, to contain p. Returns ab.
func (ab *AABB) ExpandPoint(p *lin.V3) *AABB {
	ab.Min.Min(&ab.Min, p)
	ab.Max.Max(&ab.Max, p)
	return ab
}

// ExpandBox grows ab, if necessary, to contain b. Returns ab.
func (ab *AABB) ExpandBox(b *AABB) *AABB {
	ab.Min.Min(&ab.Min, &b.Min)
	ab.Max.Max(&ab.Max, &b.Max)
	return ab
}

// Empty reports whether ab has never been expanded.
func (ab *AABB) Empty() bool { return ab.Min.X > ab.Max.X }

// Center returns the midpoint of ab.
func (ab *AABB) Center() lin.V3 {
	var c lin.V3
	c.Add(&ab.Min, &ab.Max).Scale(&c, 0.5)
	return c
}

// Extents returns the half-widths of ab along each axis.
func (ab *AABB) Extents() lin.V3 {
	var e lin.V3
	e.Sub(&ab.Max, &ab.Min).Scale(&e, 0.5)
	return e
}

// Intersects reports whether ab and b overlap on all three axes.
func (ab *AABB) Intersects(b *AABB) bool {
	return ab.Min.X <= b.Max.X && ab.Max.X >= b.Min.X &&
		ab.Min.Y <= b.Max.Y && ab.Max.Y >= b.Min.Y &&
		ab.Min.Z <= b.Max.Z && ab.Max.Z >= b.Min.Z
}

// Contains reports whether point p is inside ab (inclusive of the boundary).
func (ab *AABB) Contains(p *lin.V3) bool {
	return p.X >= ab.Min.X && p.X <= ab.Max.X &&
		p.Y >= ab.Min.Y && p.Y <= ab.Max.Y &&
		p.Z >= ab.Min.Z && p.Z <= ab.Max.Z
}

// TransformedBy returns the world-space AABB of ab after being carried
// through model matrix m, using the standard "transform the 8 corners,
// re-fit" approach generalized via the per-axis min/max trick so it stays
// allocation free.
func (ab *AABB) TransformedBy(m *lin.M4) AABB {
	center := ab.Center()
	extents := ab.Extents()

	var newCenter lin.V4
	newCenter.MultP(&center, m)

	absM := lin.M3{
		Xx: lin.Abs(m.Xx), Xy: lin.Abs(m.Xy), Xz: lin.Abs(m.Xz),
		Yx: lin.Abs(m.Yx), Yy: lin.Abs(m.Yy), Yz: lin.Abs(m.Yz),
		Zx: lin.Abs(m.Zx), Zy: lin.Abs(m.Zy), Zz: lin.Abs(m.Zz),
	}
	newExtentX := extents.X*absM.Xx + extents.Y*absM.Yx + extents.Z*absM.Zx
	newExtentY := extents.X*absM.Xy + extents.Y*absM.Yy + extents.Z*absM.Zy
	newExtentZ := extents.X*absM.Xz + extents.Y*absM.Yz + extents.Z*absM.Zz

	out := AABB{}
	out.Min.SetS(newCenter.X-newExtentX, newCenter.Y-newExtentY, newCenter.Z-newExtentZ)
	out.Max.SetS(newCenter.X+newExtentX, newCenter.Y+newExtentY, newCenter.Z+newExtentZ)
	return out
}
