package scene

import (
	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/kestrelgfx/forge/registry"
)

// OcclusionBuffer is the low-resolution float depth buffer software
// occlusion rasterizes scene meshes into (application-provided resolution,
// typically 320x240 for scene culling or 240x180 for light culling) and
// then tests element AABB screen footprints against.
type OcclusionBuffer struct {
	Width, Height int
	Depth         []float32 // far-plane-normalized, 1.0 == cleared/empty
}

// NewOcclusionBuffer allocates a cleared buffer at the given resolution.
func NewOcclusionBuffer(w, h int) *OcclusionBuffer {
	ob := &OcclusionBuffer{Width: w, Height: h, Depth: make([]float32, w*h)}
	ob.Clear()
	return ob
}

// Clear resets every texel to the far plane (1.0).
func (ob *OcclusionBuffer) Clear() {
	for i := range ob.Depth {
		ob.Depth[i] = 1
	}
}

// RasterizeMesh depth-only rasterizes the triangles of mesh, transformed by
// model and viewProj, into the buffer using a simple screen-space
// triangle-bbox scan (no perspective-correct interpolation is needed for a
// depth-only occluder pass: NDC Z already varies linearly in screen space).
func (ob *OcclusionBuffer) RasterizeMesh(mesh *registry.Mesh, model, viewProj *lin.M4) {
	var mvp lin.M4
	mvp.Mult(model, viewProj)

	vcount := mesh.VertexCount()
	clip := make([]lin.V4, vcount)
	for i := 0; i < vcount; i++ {
		p := lin.V3{X: mesh.Positions[i*3], Y: mesh.Positions[i*3+1], Z: mesh.Positions[i*3+2]}
		clip[i].MultP(&p, &mvp)
	}

	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		a, b, c := clip[mesh.Indices[t]], clip[mesh.Indices[t+1]], clip[mesh.Indices[t+2]]
		if a.W <= 0 || b.W <= 0 || c.W <= 0 {
			continue // behind the eye; skip rather than clip for this coarse pass.
		}
		ob.rasterizeTriangle(&a, &b, &c)
	}
}

func (ob *OcclusionBuffer) rasterizeTriangle(a, b, c *lin.V4) {
	toScreen := func(v *lin.V4) (x, y, z float32) {
		ndcX, ndcY, ndcZ := v.X/v.W, v.Y/v.W, v.Z/v.W
		return (ndcX*0.5 + 0.5) * float32(ob.Width), (1 - (ndcY*0.5 + 0.5)) * float32(ob.Height), ndcZ*0.5 + 0.5
	}
	ax, ay, az := toScreen(a)
	bx, by, bz := toScreen(b)
	cx, cy, cz := toScreen(c)

	minX := clampI(int(lin.Min3(ax, bx, cx)), 0, ob.Width-1)
	maxX := clampI(int(lin.Min3(ax, bx, cx)+maxSpan(ax, bx, cx)), 0, ob.Width-1)
	minY := clampI(int(lin.Min3(ay, by, cy)), 0, ob.Height-1)
	maxY := clampI(int(lin.Min3(ay, by, cy)+maxSpan(ay, by, cy)), 0, ob.Height-1)

	area := edge(ax, ay, bx, by, cx, cy)
	if area == 0 {
		return
	}
	invArea := 1 / area

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(bx, by, cx, cy, px, py)
			w1 := edge(cx, cy, ax, ay, px, py)
			w2 := edge(ax, ay, bx, by, px, py)
			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else {
				if w0 > 0 || w1 > 0 || w2 > 0 {
					continue
				}
			}
			l0, l1, l2 := w0*invArea, w1*invArea, w2*invArea
			depth := l0*az + l1*bz + l2*cz
			idx := y*ob.Width + x
			if depth < ob.Depth[idx] {
				ob.Depth[idx] = depth
			}
		}
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func maxSpan(a, b, c float32) float32 { return lin.Max3(a, b, c) - lin.Min3(a, b, c) }

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TestAABB tests an element's world AABB screen-space footprint against
// the occlusion buffer: it is occluded when every sampled texel strictly
// exceeds the AABB's own minimum depth (the element is fully behind
// whatever was rasterized there).
func (ob *OcclusionBuffer) TestAABB(ab *geom.AABB, viewProj *lin.M4) bool {
	corners := [8]lin.V3{
		{X: ab.Min.X, Y: ab.Min.Y, Z: ab.Min.Z}, {X: ab.Max.X, Y: ab.Min.Y, Z: ab.Min.Z},
		{X: ab.Min.X, Y: ab.Max.Y, Z: ab.Min.Z}, {X: ab.Max.X, Y: ab.Max.Y, Z: ab.Min.Z},
		{X: ab.Min.X, Y: ab.Min.Y, Z: ab.Max.Z}, {X: ab.Max.X, Y: ab.Min.Y, Z: ab.Max.Z},
		{X: ab.Min.X, Y: ab.Max.Y, Z: ab.Max.Z}, {X: ab.Max.X, Y: ab.Max.Y, Z: ab.Max.Z},
	}

	minX, minY := float32(ob.Width), float32(ob.Height)
	maxX, maxY := float32(0), float32(0)
	minDepth := float32(1)
	any := false
	for _, c := range corners {
		var clip lin.V4
		clip.MultP(&c, viewProj)
		if clip.W <= 0 {
			continue
		}
		any = true
		ndcX, ndcY, ndcZ := clip.X/clip.W, clip.Y/clip.W, clip.Z/clip.W
		sx := (ndcX*0.5 + 0.5) * float32(ob.Width)
		sy := (1 - (ndcY*0.5 + 0.5)) * float32(ob.Height)
		sz := ndcZ*0.5 + 0.5
		minX, maxX = lin.Min(minX, sx), lin.Max(maxX, sx)
		minY, maxY = lin.Min(minY, sy), lin.Max(maxY, sy)
		minDepth = lin.Min(minDepth, sz)
	}
	if !any {
		return false // can't reason about it; don't falsely occlude.
	}

	x0 := clampI(int(minX), 0, ob.Width-1)
	x1 := clampI(int(maxX), 0, ob.Width-1)
	y0 := clampI(int(minY), 0, ob.Height-1)
	y1 := clampI(int(maxY), 0, ob.Height-1)

	tested := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			tested = true
			if ob.Depth[y*ob.Width+x] <= minDepth {
				return false // at least one tested pixel does not exceed our depth.
			}
		}
	}
	return tested
}

// ApplyOcclusion runs TestAABB for every enabled, frustum-visible element of
// set and sets Occluded accordingly. Elements that failed the frustum test
// are left Occluded = false since they are already excluded from Visible.
func (set *SceneElementSet) ApplyOcclusion(ob *OcclusionBuffer, viewProj *lin.M4) {
	for i := range set.Elements {
		e := &set.Elements[i]
		if !e.Enabled || !e.FrustumVisible {
			e.Occluded = false
			continue
		}
		e.Occluded = ob.TestAABB(&e.WorldAB, viewProj)
	}
}
