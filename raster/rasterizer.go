package raster

import (
	"math"

	"github.com/kestrelgfx/forge/job"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/kestrelgfx/forge/registry"
)

// screenTri is a clipped, projected triangle ready for scanline rasterizing:
// screen-space xy, NDC-derived depth, 1/w for perspective correction, and
// its interpolated varyings.
type screenTri struct {
	sx, sy                 [3]float32
	sz                     [3]float32
	invW                   [3]float32
	varying                [3][MaxVaryings][4]float32
	nvarying               int
	minX, maxX, minY, maxY int
}

// DispatchPolicy parameterizes when a draw's row range is forked across a
// job.System versus run inline on the calling goroutine.
type DispatchPolicy struct {
	ParallelMinRows   int
	ParallelMinPixels int // rows*cols threshold, e.g. 128*128
}

// DefaultDispatchPolicy matches the spec's stated defaults.
var DefaultDispatchPolicy = DispatchPolicy{ParallelMinRows: 8, ParallelMinPixels: 128 * 128}

// MaxMotionPixels is the default per-pixel motion-vector magnitude clamp.
const MaxMotionPixels = 96

// Rasterizer draws triangle lists with a Program into a Target, using jobs
// to fork row ranges across workers once a draw is large enough to be
// worth the dispatch overhead.
type Rasterizer struct {
	Jobs     job.System
	Policy   DispatchPolicy
	CullMode CullMode
	Motion   bool
}

// NewRasterizer creates a Rasterizer. A nil jobs system runs every draw on
// the calling goroutine (equivalent to job.Inline{}).
func NewRasterizer(jobs job.System, cull CullMode) *Rasterizer {
	if jobs == nil {
		jobs = job.Inline{}
	}
	return &Rasterizer{Jobs: jobs, Policy: DefaultDispatchPolicy, CullMode: cull}
}

// Draw runs the full per-triangle pipeline for mesh's triangles against
// target using prog and u, accumulating into stats.
func (r *Rasterizer) Draw(target *Target, mesh *registry.Mesh, prog *Program, u *Uniforms, stats *Stats) {
	vcount := mesh.VertexCount()
	vout := make([]VertexOut, vcount)
	for i := 0; i < vcount; i++ {
		in := VertexIn{
			Position: vec3At(mesh.Positions, i),
			Normal:   vec3At(mesh.Normals, i),
		}
		if len(mesh.UVs) >= (i+1)*2 {
			in.UV = [2]float32{mesh.UVs[i*2], mesh.UVs[i*2+1]}
		}
		vout[i] = prog.VS(&in, u)
	}

	type rasterTri struct {
		verts [3]clipVertex
	}
	var toRaster []rasterTri

	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		stats.TriInput++
		a, b, c := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
		tri := [3]clipVertex{
			toClipVertex(&vout[a]),
			toClipVertex(&vout[b]),
			toClipVertex(&vout[c]),
		}
		poly := clipTriangle(tri)
		if len(poly) < 3 {
			continue
		}
		for _, ct := range fanTriangulate(poly) {
			stats.TriAfterClip++
			toRaster = append(toRaster, rasterTri{verts: ct})
		}
	}

	// Project each clipped triangle to screen space and backface cull
	// before handing rows to workers, since culling is cheap and per-row
	// parallelism only pays off once screen-space work begins.
	var screenTris []screenTri

	for _, rt := range toRaster {
		var st screenTri
		degenerate := false
		for i, cv := range rt.verts {
			w := cv.clip[3]
			if w == 0 || !finite4(cv.clip) {
				degenerate = true
				break
			}
			ndcX, ndcY, ndcZ := cv.clip[0]/w, cv.clip[1]/w, cv.clip[2]/w
			st.sx[i] = (ndcX*0.5 + 0.5) * float32(target.Width)
			st.sy[i] = (1 - (ndcY*0.5 + 0.5)) * float32(target.Height)
			st.sz[i] = ndcZ*0.5 + 0.5
			st.invW[i] = 1 / w
			st.varying[i] = cv.varying
			st.nvarying = cv.n
		}
		if degenerate {
			continue
		}

		// Screen Y is flipped relative to NDC/clip space (row 0 is the top
		// of the viewport), which mirrors triangle orientation: a
		// front-facing (CCW) triangle in clip space yields a negative
		// signed area here.
		area := edge2D(st.sx[0], st.sy[0], st.sx[1], st.sy[1], st.sx[2], st.sy[2])
		ccw := area < 0
		switch r.CullMode {
		case CullBack:
			if !ccw {
				continue
			}
		case CullFront:
			if ccw {
				continue
			}
		}
		if area == 0 {
			continue
		}

		st.minX = clampI(int(minSpan(st.sx[0], st.sx[1], st.sx[2])), 0, target.Width-1)
		st.maxX = clampI(int(maxSpan3(st.sx[0], st.sx[1], st.sx[2])), 0, target.Width-1)
		st.minY = clampI(int(minSpan(st.sy[0], st.sy[1], st.sy[2])), 0, target.Height-1)
		st.maxY = clampI(int(maxSpan3(st.sy[0], st.sy[1], st.sy[2])), 0, target.Height-1)
		stats.TriRaster++
		screenTris = append(screenTris, st)
	}

	if len(screenTris) == 0 {
		return
	}

	// Row-exclusive dispatch: each worker owns a contiguous row range and
	// every triangle is tested (redundantly, but without any write
	// contention) against the rows it owns.
	rowRange := func(y0, y1 int) {
		for _, st := range screenTris {
			ry0, ry1 := maxI(y0, st.minY), minI(y1, st.maxY)
			if ry0 > ry1 {
				continue
			}
			rasterizeTriangleRows(target, prog, u, r.Motion, &st, ry0, ry1)
		}
	}

	// dispatch is decided by, and rows are split over, the surviving triangles' bounding box.
	bMinY, bMaxY, bMinX, bMaxX := target.Height, -1, target.Width, -1
	for i := range screenTris {
		bMinY, bMaxY = minI(bMinY, screenTris[i].minY), maxI(bMaxY, screenTris[i].maxY)
		bMinX, bMaxX = minI(bMinX, screenTris[i].minX), maxI(bMaxX, screenTris[i].maxX)
	}
	rows := bMaxY - bMinY + 1
	cols := bMaxX - bMinX + 1
	if rows >= r.Policy.ParallelMinRows && rows*cols >= r.Policy.ParallelMinPixels {
		workers := r.Jobs.Workers()
		if workers < 1 {
			workers = 1
		}
		chunk := (rows + workers - 1) / workers
		wg := r.Jobs.NewWaitGroup()
		for y0 := bMinY; y0 <= bMaxY; y0 += chunk {
			y1 := minI(y0+chunk-1, bMaxY)
			wg.Add(1)
			lo, hi := y0, y1
			r.Jobs.Enqueue(func() {
				defer wg.Done()
				rowRange(lo, hi)
			})
		}
		wg.Wait()
	} else {
		rowRange(bMinY, bMaxY)
	}
}

func rasterizeTriangleRows(target *Target, prog *Program, u *Uniforms, motion bool, st *screenTri, y0, y1 int) {
	area := edge2D(st.sx[0], st.sy[0], st.sx[1], st.sy[1], st.sx[2], st.sy[2])
	invArea := 1 / area

	for y := y0; y <= y1; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge2D(st.sx[1], st.sy[1], st.sx[2], st.sy[2], px, py)
			w1 := edge2D(st.sx[2], st.sy[2], st.sx[0], st.sy[0], px, py)
			w2 := edge2D(st.sx[0], st.sy[0], st.sx[1], st.sy[1], px, py)
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

			// perspective-correct: interpolate attribute/w then divide by
			// interpolated 1/w.
			invW := l0*st.invW[0] + l1*st.invW[1] + l2*st.invW[2]
			if invW == 0 {
				continue
			}
			invDenom := 1 / invW

			depth := (l0*st.sz[0]*st.invW[0] + l1*st.sz[1]*st.invW[1] + l2*st.sz[2]*st.invW[2]) * invDenom

			idx := y*target.Width + x
			if depth >= target.Depth[idx] {
				continue
			}

			var fin FragmentIn
			fin.NVarying = st.nvarying
			for v := 0; v < st.nvarying; v++ {
				for c := 0; c < 4; c++ {
					a := st.varying[0][v][c] * st.invW[0]
					b := st.varying[1][v][c] * st.invW[1]
					cc := st.varying[2][v][c] * st.invW[2]
					fin.Varying[v][c] = (l0*a + l1*b + l2*cc) * invDenom
				}
			}
			fin.Depth = depth
			fin.PixelX, fin.PixelY = x, y
			if fin.NVarying > VaryingWorldPos {
				wp := fin.Varying[VaryingWorldPos]
				fin.WorldPos = lin.V3{X: wp[0], Y: wp[1], Z: wp[2]}
			}
			if fin.NVarying > VaryingNormal {
				nv := fin.Varying[VaryingNormal]
				fin.Normal = lin.V3{X: nv[0], Y: nv[1], Z: nv[2]}
			}
			if fin.NVarying > VaryingUV {
				uv := fin.Varying[VaryingUV]
				fin.UV = [2]float32{uv[0], uv[1]}
			}

			out := prog.FS(&fin, u)
			if out.Discard {
				continue
			}
			target.Depth[idx] = depth
			if target.Color != nil {
				target.Color[idx*4+0] = out.Color[0]
				target.Color[idx*4+1] = out.Color[1]
				target.Color[idx*4+2] = out.Color[2]
				target.Color[idx*4+3] = out.Color[3]
			}

			if motion && target.Motion != nil && fin.NVarying > VaryingWorldPos {
				mx, my := computeMotion(u, &fin.WorldPos, target.Width, target.Height)
				target.Motion[idx*2+0] = mx
				target.Motion[idx*2+1] = my
			}
		}
	}
}

// computeMotion projects worldPos through the current and previous frame's
// view-proj matrices and returns the screen-space displacement between
// them, clamped to MaxMotionPixels.
func computeMotion(u *Uniforms, worldPos *lin.V3, w, h int) (float32, float32) {
	var cur, prev lin.V4
	cur.MultP(worldPos, &u.ViewProj)
	prev.MultP(worldPos, &u.PrevViewProj)
	if cur.W == 0 || prev.W == 0 {
		return 0, 0
	}
	curNDCX, curNDCY := cur.X/cur.W, cur.Y/cur.W
	prevNDCX, prevNDCY := prev.X/prev.W, prev.Y/prev.W

	dx := (curNDCX - prevNDCX) * 0.5 * float32(w)
	dy := (curNDCY - prevNDCY) * 0.5 * float32(h)
	mag := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if mag > MaxMotionPixels {
		scale := MaxMotionPixels / mag
		dx *= scale
		dy *= scale
	}
	return dx, dy
}

func toClipVertex(v *VertexOut) clipVertex {
	return clipVertex{
		clip:    [4]float32{v.Clip.X, v.Clip.Y, v.Clip.Z, v.Clip.W},
		varying: v.Varying,
		n:       v.NVarying,
	}
}

func vec3At(buf []float32, i int) (v lin.V3) {
	if len(buf) < (i+1)*3 {
		return
	}
	v.X, v.Y, v.Z = buf[i*3], buf[i*3+1], buf[i*3+2]
	return
}

func edge2D(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func minSpan(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxSpan3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func finite4(v [4]float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
