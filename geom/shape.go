package geom

import "github.com/kestrelgfx/forge/math/lin"

// ShapeKind tags which arm of the Shape tagged union is populated.
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeAABB
	ShapeOBB
	ShapeCapsule
	ShapeConeFrustum
)

// Shape is a tagged union over the volume kinds the render-path culls
// against: spheres (point lights, bounding volumes), AABBs (scene element
// bounds), OBBs (oriented meshes), capsules (tube lights), and cone frusta
// (spot lights). Every operation exhaustively switches on Kind.
type Shape struct {
	Kind ShapeKind

	// Sphere
	Center lin.V3
	Radius float32

	// AABB
	Min, Max lin.V3

	// OBB
	Axes        [3]lin.V3
	HalfExtents lin.V3

	// Capsule
	P0, P1 lin.V3
	// Radius reused for capsule radius.

	// ConeFrustum
	Apex                       lin.V3
	Axis                       lin.V3
	NearDist, FarDist          float32
	NearRadius, FarRadius      float32
}

// NewSphere builds a sphere shape.
func NewSphere(center lin.V3, radius float32) Shape {
	return Shape{Kind: ShapeSphere, Center: center, Radius: radius}
}

// NewAABBShape builds an AABB shape from min/max corners.
func NewAABBShape(min, max lin.V3) Shape {
	return Shape{Kind: ShapeAABB, Min: min, Max: max}
}

// NewOBB builds an oriented bounding box shape.
func NewOBB(center lin.V3, axes [3]lin.V3, halfExtents lin.V3) Shape {
	return Shape{Kind: ShapeOBB, Center: center, Axes: axes, HalfExtents: halfExtents}
}

// NewCapsule builds a capsule shape: a swept sphere between p0 and p1.
func NewCapsule(p0, p1 lin.V3, radius float32) Shape {
	return Shape{Kind: ShapeCapsule, P0: p0, P1: p1, Radius: radius}
}

// NewConeFrustum builds a truncated-cone shape, used for spot light volumes.
func NewConeFrustum(apex, axis lin.V3, nearDist, farDist, nearRadius, farRadius float32) Shape {
	return Shape{
		Kind: ShapeConeFrustum, Apex: apex, Axis: axis,
		NearDist: nearDist, FarDist: farDist,
		NearRadius: nearRadius, FarRadius: farRadius,
	}
}

// boundingSphere returns a conservative bounding sphere for any shape kind;
// used by the conservative plane-test below and by light binning's
// per-tile classification.
func (s *Shape) boundingSphere() (center lin.V3, radius float32) {
	switch s.Kind {
	case ShapeSphere:
		return s.Center, s.Radius
	case ShapeAABB:
		var ab AABB
		ab.Min, ab.Max = s.Min, s.Max
		c := ab.Center()
		e := ab.Extents()
		return c, e.Len()
	case ShapeOBB:
		return s.Center, s.HalfExtents.Len()
	case ShapeCapsule:
		var mid lin.V3
		mid.Add(&s.P0, &s.P1).Scale(&mid, 0.5)
		half := s.P0.Dist(&s.P1) * 0.5
		return mid, half + s.Radius
	case ShapeConeFrustum:
		var tip lin.V3
		tip.Scale(&s.Axis, (s.NearDist+s.FarDist)*0.5)
		tip.Add(&tip, &s.Apex)
		r := lin.Max(s.NearRadius, s.FarRadius) + (s.FarDist-s.NearDist)*0.5
		return tip, r
	}
	return lin.V3{}, 0
}

// PlaneTest performs the conservative plane-test the spec requires: the
// signed distance of the shape's nearest support point to pl. A positive
// result means the whole shape is on the inside; a negative one means at
// least part of it is outside.
func (s *Shape) PlaneTest(pl *Plane) float32 {
	switch s.Kind {
	case ShapeOBB:
		// exact support point for an OBB: project each axis extent onto
		// the plane normal.
		r := s.HalfExtents.X*lin.Abs(pl.Normal.Dot(&s.Axes[0])) +
			s.HalfExtents.Y*lin.Abs(pl.Normal.Dot(&s.Axes[1])) +
			s.HalfExtents.Z*lin.Abs(pl.Normal.Dot(&s.Axes[2]))
		return pl.SignedDistance(&s.Center) - r
	case ShapeAABB:
		var ab AABB
		ab.Min, ab.Max = s.Min, s.Max
		c := ab.Center()
		e := ab.Extents()
		r := e.X*lin.Abs(pl.Normal.X) + e.Y*lin.Abs(pl.Normal.Y) + e.Z*lin.Abs(pl.Normal.Z)
		return pl.SignedDistance(&c) - r
	case ShapeCapsule:
		d0 := pl.SignedDistance(&s.P0)
		d1 := pl.SignedDistance(&s.P1)
		return lin.Min(d0, d1) - s.Radius
	default:
		center, radius := s.boundingSphere()
		return pl.SignedDistance(&center) - radius
	}
}

// Classify tests the shape against every plane of cell and returns the
// conservative classification: Outside if any plane fully rejects it,
// Intersecting if any plane test lands within its radius of zero, Inside
// otherwise. A point shape (zero-radius sphere) on a boundary plane
// classifies as Intersecting, matching the culling round-trip property.
func (s *Shape) Classify(cell *ConvexCell) Classification {
	intersecting := false
	for i := 0; i < cell.Count; i++ {
		pl := &cell.Planes[i]
		near := s.PlaneTest(pl)
		// the farthest support point is the nearest one against the flipped plane.
		flipped := Plane{Normal: lin.V3{X: -pl.Normal.X, Y: -pl.Normal.Y, Z: -pl.Normal.Z}, D: -pl.D}
		far := -s.PlaneTest(&flipped)
		switch {
		case far < 0:
			return Outside
		case near <= 0:
			intersecting = true
		}
	}
	if intersecting {
		return Intersecting
	}
	return Inside
}

// AABB computes a conservative world-space AABB for the shape.
func (s *Shape) AABB() AABB {
	switch s.Kind {
	case ShapeAABB:
		return AABB{Min: s.Min, Max: s.Max}
	case ShapeOBB:
		var extent lin.V3
		for i := 0; i < 3; i++ {
			axis := s.Axes[i]
			var comp lin.V3
			comp.Scale(&axis, s.HalfExtents.GetComponent(i)).Abs()
			extent.Add(&extent, &comp)
		}
		ab := AABB{}
		ab.Min.Sub(&s.Center, &extent)
		ab.Max.Add(&s.Center, &extent)
		return ab
	default:
		center, radius := s.boundingSphere()
		ab := AABB{}
		r := lin.V3{X: radius, Y: radius, Z: radius}
		ab.Min.Sub(&center, &r)
		ab.Max.Add(&center, &r)
		return ab
	}
}
