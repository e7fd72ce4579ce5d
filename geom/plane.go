package geom

import "github.com/kestrelgfx/forge/math/lin"

// Plane is a unit-normal plane in the form dot(normal, p) + d = 0, with
// normal pointing toward the half-space the plane considers "inside".
type Plane struct {
	Normal lin.V3
	D      float32
}

// NewPlane builds a plane from an already unit-length normal and distance.
func NewPlane(normal *lin.V3, d float32) Plane {
	return Plane{Normal: *normal, D: d}
}

// PlaneFromPoints builds the plane through p0, p1, p2, with its normal
// following the right-hand winding of (p1-p0) x (p2-p0), and normalizes it.
func PlaneFromPoints(p0, p1, p2 *lin.V3) Plane {
	var e0, e1, n lin.V3
	e0.Sub(p1, p0)
	e1.Sub(p2, p0)
	n.Cross(&e0, &e1)
	n.Unit()
	d := -n.Dot(p0)
	return Plane{Normal: n, D: d}
}

// SignedDistance returns the signed distance from p to the plane; positive
// values are on the side the normal points toward.
func (pl *Plane) SignedDistance(p *lin.V3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Expand moves the plane outward (away from its normal) by margin, i.e. it
// grows the "inside" half-space. A negative margin shrinks it.
func (pl *Plane) Expand(margin float32) Plane {
	return Plane{Normal: pl.Normal, D: pl.D + margin}
}

// Intersect reports whether sphere (center, radius) crosses or is in front
// of the plane (true for Intersecting or fully-inside, false only when the
// whole sphere is behind it).
func (pl *Plane) Intersect(center *lin.V3, radius float32) bool {
	return pl.SignedDistance(center) >= -radius
}

// Contains reports whether point p is on the inside (or exactly on) the
// plane.
func (pl *Plane) Contains(p *lin.V3) bool {
	return pl.SignedDistance(p) >= 0
}
