package geom

import "github.com/kestrelgfx/forge/math/lin"

// CellKind tags the origin of a ConvexCell so diagnostics and debug draw
// code can tell a camera frustum apart from a light-binning tile or cluster.
type CellKind uint8

const (
	CellFrustum CellKind = iota
	CellTile
	CellCluster
)

func (k CellKind) String() string {
	switch k {
	case CellFrustum:
		return "frustum"
	case CellTile:
		return "tile"
	case CellCluster:
		return "cluster"
	}
	return "unknown"
}

// Classification is the result of testing a shape volume against a
// ConvexCell or a single plane.
type Classification uint8

const (
	Inside Classification = iota
	Outside
	Intersecting
)

func (c Classification) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Intersecting:
		return "intersecting"
	}
	return "unknown"
}

// ConvexCell is an ordered list of oriented planes pointing inward — the
// intersection of their half-spaces is the cell. Frusta, screen tiles, and
// cluster cells are all represented this way.
type ConvexCell struct {
	Kind   CellKind
	Planes [6]Plane // frusta/clusters use all 6; tiles typically use 4-6.
	Count  int      // number of valid entries in Planes.
}

// ClassifyPoint returns Inside if p is on the inside of every plane,
// Outside if any plane fully rejects it, Intersecting if it lies exactly
// on a boundary plane.
func (c *ConvexCell) ClassifyPoint(p *lin.V3) Classification {
	onBoundary := false
	for i := 0; i < c.Count; i++ {
		d := c.Planes[i].SignedDistance(p)
		switch {
		case d < 0:
			return Outside
		case d == 0:
			onBoundary = true
		}
	}
	if onBoundary {
		return Intersecting
	}
	return Inside
}

// ClassifySphere conservatively classifies a sphere against the cell: Outside
// if any plane places the whole sphere behind it, Intersecting if any plane
// crosses the sphere, Inside otherwise.
func (c *ConvexCell) ClassifySphere(center *lin.V3, radius float32) Classification {
	intersecting := false
	for i := 0; i < c.Count; i++ {
		d := c.Planes[i].SignedDistance(center)
		if d < -radius {
			return Outside
		}
		if d < radius {
			intersecting = true
		}
	}
	if intersecting {
		return Intersecting
	}
	return Inside
}

// ClassifyAABB conservatively classifies an AABB against the cell using the
// standard positive/negative-vertex test per plane.
func (c *ConvexCell) ClassifyAABB(ab *AABB) Classification {
	intersecting := false
	for i := 0; i < c.Count; i++ {
		pl := &c.Planes[i]
		// positive vertex: the corner furthest along the plane normal.
		var pv lin.V3
		pv.X = pickAxis(pl.Normal.X, ab.Min.X, ab.Max.X)
		pv.Y = pickAxis(pl.Normal.Y, ab.Min.Y, ab.Max.Y)
		pv.Z = pickAxis(pl.Normal.Z, ab.Min.Z, ab.Max.Z)
		if pl.SignedDistance(&pv) < 0 {
			return Outside
		}

		var nv lin.V3
		nv.X = pickAxis(-pl.Normal.X, ab.Min.X, ab.Max.X)
		nv.Y = pickAxis(-pl.Normal.Y, ab.Min.Y, ab.Max.Y)
		nv.Z = pickAxis(-pl.Normal.Z, ab.Min.Z, ab.Max.Z)
		if pl.SignedDistance(&nv) < 0 {
			intersecting = true
		}
	}
	if intersecting {
		return Intersecting
	}
	return Inside
}

func pickAxis(normalComponent, lo, hi float32) float32 {
	if normalComponent >= 0 {
		return hi
	}
	return lo
}

// FrustumFromViewProj extracts the six frustum planes (left, right, bottom,
// top, near, far) from a combined view-projection matrix by combining its
// columns: math/lin transforms row-vector points (p' = p·M, translation in
// the W row), so each clip coordinate is the dot product of the point with
// one column. The resulting planes point inward and are normalized.
func FrustumFromViewProj(vp *lin.M4) ConvexCell {
	col := func(i int) lin.V4 {
		switch i {
		case 0:
			return lin.V4{X: vp.Xx, Y: vp.Yx, Z: vp.Zx, W: vp.Wx}
		case 1:
			return lin.V4{X: vp.Xy, Y: vp.Yy, Z: vp.Zy, W: vp.Wy}
		case 2:
			return lin.V4{X: vp.Xz, Y: vp.Yz, Z: vp.Zz, W: vp.Wz}
		default:
			return lin.V4{X: vp.Xw, Y: vp.Yw, Z: vp.Zw, W: vp.Ww}
		}
	}
	rx, ry, rz, rw := col(0), col(1), col(2), col(3)

	combine := func(a lin.V4) Plane {
		n := lin.V3{X: rw.X + a.X, Y: rw.Y + a.Y, Z: rw.Z + a.Z}
		d := rw.W + a.W
		length := n.Len()
		if length == 0 {
			return Plane{Normal: n, D: d}
		}
		inv := 1 / length
		n.Scale(&n, inv)
		return Plane{Normal: n, D: d * inv}
	}

	cell := ConvexCell{Kind: CellFrustum, Count: 6}
	cell.Planes[0] = combine(rx)        // left:   w + x
	cell.Planes[1] = combine(negV4(rx)) // right:  w - x
	cell.Planes[2] = combine(ry)        // bottom: w + y
	cell.Planes[3] = combine(negV4(ry)) // top:    w - y
	cell.Planes[4] = combine(rz)        // near:   w + z
	cell.Planes[5] = combine(negV4(rz)) // far:    w - z
	return cell
}

func negV4(v lin.V4) lin.V4 { return lin.V4{X: -v.X, Y: -v.Y, Z: -v.Z, W: -v.W} }
