package geom

import "github.com/kestrelgfx/forge/math/lin"

// TileDepthRange holds the per-tile view-space (min_z, max_z) accumulated by
// projecting each visible element's world AABB into view space. Light
// binning's TiledDepthRange mode clips each tile's ConvexCell to this range
// so a tile that only ever sees geometry at a narrow depth band doesn't
// gather lights that can't possibly affect it.
type TileDepthRange struct {
	TilesX, TilesY int
	MinZ, MaxZ     []float32 // len == TilesX*TilesY
	Valid          []bool    // len == TilesX*TilesY
}

// NewTileDepthRange allocates a depth-range grid for the given tile counts,
// with every tile starting invalid.
func NewTileDepthRange(tilesX, tilesY int) *TileDepthRange {
	n := tilesX * tilesY
	return &TileDepthRange{
		TilesX: tilesX, TilesY: tilesY,
		MinZ: make([]float32, n), MaxZ: make([]float32, n),
		Valid: make([]bool, n),
	}
}

// Reset marks every tile invalid, ready for a new frame's accumulation.
func (t *TileDepthRange) Reset() {
	for i := range t.Valid {
		t.Valid[i] = false
		t.MinZ[i] = lin.Large
		t.MaxZ[i] = -lin.Large
	}
}

// Accumulate extends the depth range of the tile at (tx, ty) to include
// viewZ. viewZ is expected to already be in view space (negative into the
// screen, per the math/lin camera convention).
func (t *TileDepthRange) Accumulate(tx, ty int, viewZ float32) {
	if tx < 0 || ty < 0 || tx >= t.TilesX || ty >= t.TilesY {
		return
	}
	i := ty*t.TilesX + tx
	if !t.Valid[i] {
		t.MinZ[i], t.MaxZ[i], t.Valid[i] = viewZ, viewZ, true
		return
	}
	t.MinZ[i] = lin.Min(t.MinZ[i], viewZ)
	t.MaxZ[i] = lin.Max(t.MaxZ[i], viewZ)
}

// Range returns the accumulated (min, max, valid) for the tile at (tx, ty).
func (t *TileDepthRange) Range(tx, ty int) (min, max float32, valid bool) {
	if tx < 0 || ty < 0 || tx >= t.TilesX || ty >= t.TilesY {
		return 0, 0, false
	}
	i := ty*t.TilesX + tx
	return t.MinZ[i], t.MaxZ[i], t.Valid[i]
}

// AccumulateAABB projects every corner of a world-space AABB through view
// matrix v and accumulates the resulting view-space Z into every tile the
// AABB's screen-space footprint touches, given the tile pixel size and the
// viewport dimensions. corners are transformed with MultP (homogeneous
// point transform); callers that already have a view-space AABB can skip
// straight to Accumulate per tile.
func (t *TileDepthRange) AccumulateAABB(ab *AABB, view *lin.M4, tileSize, viewportW, viewportH int) {
	corners := [8]lin.V3{
		{X: ab.Min.X, Y: ab.Min.Y, Z: ab.Min.Z},
		{X: ab.Max.X, Y: ab.Min.Y, Z: ab.Min.Z},
		{X: ab.Min.X, Y: ab.Max.Y, Z: ab.Min.Z},
		{X: ab.Max.X, Y: ab.Max.Y, Z: ab.Min.Z},
		{X: ab.Min.X, Y: ab.Min.Y, Z: ab.Max.Z},
		{X: ab.Max.X, Y: ab.Min.Y, Z: ab.Max.Z},
		{X: ab.Min.X, Y: ab.Max.Y, Z: ab.Max.Z},
		{X: ab.Max.X, Y: ab.Max.Y, Z: ab.Max.Z},
	}
	tilesX := (viewportW + tileSize - 1) / tileSize
	tilesY := (viewportH + tileSize - 1) / tileSize
	for _, c := range corners {
		var vp lin.V4
		vp.MultP(&c, view)
		if vp.W == 0 {
			continue
		}
		ndcX, ndcY := vp.X/vp.W, vp.Y/vp.W
		px := int((ndcX*0.5 + 0.5) * float32(viewportW))
		py := int((1 - (ndcY*0.5 + 0.5)) * float32(viewportH))
		tx, ty := px/tileSize, py/tileSize
		if tx < 0 {
			tx = 0
		}
		if ty < 0 {
			ty = 0
		}
		if tx >= tilesX {
			tx = tilesX - 1
		}
		if ty >= tilesY {
			ty = tilesY - 1
		}
		t.Accumulate(tx, ty, vp.Z)
	}
}
