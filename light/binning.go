package light

import "math"
import "github.com/kestrelgfx/forge/geom"
import "github.com/kestrelgfx/forge/math/lin"

// BinMode enumerates the light-binning strategies. Values outside this set
// must be rejected at recipe-load time.
type BinMode uint8

const (
	BinNone BinMode = iota
	BinTiled
	BinTiledDepthRange
	BinClustered
)

// BinConfig parameterizes a Binner.
type BinConfig struct {
	Mode             BinMode
	TileSize         int // power-of-two, default 16 or 32
	MaxLightsPerTile int
	ClusterZSlices   int // only read when Mode == BinClustered
	Near, Far        float32
}

// DefaultBinConfig matches the teacher's preference (config.go) for
// sensible, named defaults rather than magic numbers scattered at call
// sites.
var DefaultBinConfig = BinConfig{
	Mode: BinTiled, TileSize: 16, MaxLightsPerTile: 64,
	ClusterZSlices: 16,
}

// TileBins holds the per-tile (or per-cluster-cell) light index lists the
// binning stage produces, plus overflow stats.
type TileBins struct {
	TilesX, TilesY, ZSlices int
	Counts                  []int32
	Indices                 [][]int32 // len == TilesX*TilesY*ZSlices, each capacity MaxLightsPerTile
	OverflowTiles           int
}

// cellCount returns the flat number of bins (1 Z slice outside Clustered).
func (t *TileBins) cellCount() int {
	z := t.ZSlices
	if z < 1 {
		z = 1
	}
	return t.TilesX * t.TilesY * z
}

// Binner assigns light volumes to tiles or cluster cells each frame.
type Binner struct {
	cfg      BinConfig
	provider VolumeProvider
}

// NewBinner creates a Binner using cfg. A nil provider defaults to
// DefaultVolumeProvider.
func NewBinner(cfg BinConfig, provider VolumeProvider) *Binner {
	if provider == nil {
		provider = DefaultVolumeProvider
	}
	if cfg.Mode != BinNone && cfg.Mode != BinTiled && cfg.Mode != BinTiledDepthRange && cfg.Mode != BinClustered {
		cfg.Mode = BinNone
	}
	return &Binner{cfg: cfg, provider: provider}
}

// Bin classifies every light in lights against the tile/cluster grid
// implied by viewProj, viewportW/H (and, for BinTiledDepthRange, depthRange),
// and returns the resulting TileBins. Lights within a tile appear in
// scene-iteration order and tiles are visited row-major, matching the
// spec's determinism requirement.
func (b *Binner) Bin(lights []Light, viewProj *lin.M4, viewportW, viewportH int, depthRange *geom.TileDepthRange) TileBins {
	if b.cfg.Mode == BinNone {
		bins := TileBins{TilesX: 1, TilesY: 1, ZSlices: 1}
		bins.Counts = []int32{int32(len(lights))}
		idx := make([]int32, len(lights))
		for i := range lights {
			idx[i] = int32(i)
		}
		bins.Indices = [][]int32{idx}
		return bins
	}

	tileSize := b.cfg.TileSize
	if tileSize <= 0 {
		tileSize = 16
	}
	tilesX := (viewportW + tileSize - 1) / tileSize
	tilesY := (viewportH + tileSize - 1) / tileSize
	zSlices := 1
	if b.cfg.Mode == BinClustered {
		zSlices = b.cfg.ClusterZSlices
		if zSlices < 1 {
			zSlices = 1
		}
	}

	bins := TileBins{TilesX: tilesX, TilesY: tilesY, ZSlices: zSlices}
	n := bins.cellCount()
	bins.Counts = make([]int32, n)
	bins.Indices = make([][]int32, n)
	maxPerTile := b.cfg.MaxLightsPerTile
	if maxPerTile <= 0 {
		maxPerTile = 64
	}

	cells := make([]geom.ConvexCell, n)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			for z := 0; z < zSlices; z++ {
				cellIdx := (ty*tilesX+tx)*zSlices + z
				cell := tileCell(viewProj, tx, ty, tilesX, tilesY)
				if b.cfg.Mode == BinTiledDepthRange && depthRange != nil {
					clipToDepthRange(&cell, depthRange, tx, ty)
				} else if b.cfg.Mode == BinClustered {
					clipToSlice(&cell, b.cfg.Near, b.cfg.Far, z, zSlices)
				}
				cells[cellIdx] = cell
			}
		}
	}

	// row-major tile order, scene-iteration order within each tile.
	for cellIdx := 0; cellIdx < n; cellIdx++ {
		cell := cells[cellIdx]
		list := make([]int32, 0, maxPerTile)
		for li := range lights {
			vol := b.provider.Volume(&lights[li])
			if vol.Classify(&cell) == geom.Outside {
				continue
			}
			if len(list) >= maxPerTile {
				bins.OverflowTiles++
				break
			}
			list = append(list, int32(li))
		}
		bins.Counts[cellIdx] = int32(len(list))
		bins.Indices[cellIdx] = list
	}
	return bins
}

// tileCell builds the ConvexCell for tile (tx, ty). Rather than unprojecting
// the NDC corners of its screen rectangle through the inverse of viewProj,
// it derives the four side planes directly from the camera frustum's
// left/right/bottom/top planes: each is a normalized linear combination of
// an opposite pair that passes through the tile's fractional NDC extent
// (exact for a frustum symmetric about the view axis). Near/far come from
// the frustum's own near/far planes unless further clipped by depth-range
// or cluster slicing.
func tileCell(viewProj *lin.M4, tx, ty, tilesX, tilesY int) geom.ConvexCell {
	full := geom.FrustumFromViewProj(viewProj)

	u0 := float32(tx) / float32(tilesX)
	u1 := float32(tx+1) / float32(tilesX)
	v0 := 1 - float32(ty+1)/float32(tilesY) // screen Y grows downward, NDC Y grows upward
	v1 := 1 - float32(ty)/float32(tilesY)

	// lerpPlane returns the normalized plane (1-t)*a - t*b: for opposite
	// side planes a and b, the plane through the NDC boundary at fraction t
	// of the way from a's side, facing the same way as a.
	lerpPlane := func(a, b geom.Plane, t float32) geom.Plane {
		n := lin.V3{X: (1-t)*a.Normal.X - t*b.Normal.X, Y: (1-t)*a.Normal.Y - t*b.Normal.Y, Z: (1-t)*a.Normal.Z - t*b.Normal.Z}
		inv := 1 / n.Len()
		n.Scale(&n, inv)
		return geom.Plane{Normal: n, D: ((1-t)*a.D - t*b.D) * inv}
	}

	left := lerpPlane(full.Planes[0], full.Planes[1], u0)
	right := lerpPlane(full.Planes[1], full.Planes[0], 1-u1)
	bottom := lerpPlane(full.Planes[2], full.Planes[3], v0)
	top := lerpPlane(full.Planes[3], full.Planes[2], 1-v1)

	cell := geom.ConvexCell{Kind: geom.CellTile, Count: 6}
	cell.Planes[0] = left
	cell.Planes[1] = right
	cell.Planes[2] = bottom
	cell.Planes[3] = top
	cell.Planes[4] = full.Planes[4] // near
	cell.Planes[5] = full.Planes[5] // far
	return cell
}

// clipToDepthRange tightens a tile's near/far planes to its accumulated
// view-space depth range, when one is available and valid.
func clipToDepthRange(cell *geom.ConvexCell, dr *geom.TileDepthRange, tx, ty int) {
	minZ, maxZ, valid := dr.Range(tx, ty)
	if !valid {
		return
	}
	cell.Planes[4] = geom.Plane{Normal: lin.V3{Z: -1}, D: maxZ}
	cell.Planes[5] = geom.Plane{Normal: lin.V3{Z: 1}, D: -minZ}
}

// clipToSlice tightens a cluster cell's near/far planes to its geometric
// Z-slice boundary between near and far, near*(far/near)^(slice/slices).
// When near is not positive or far is not beyond near, the slices are
// spaced evenly instead.
func clipToSlice(cell *geom.ConvexCell, near, far float32, slice, slices int) {
	t0 := float32(slice) / float32(slices)
	t1 := float32(slice+1) / float32(slices)
	sliceNear := near + (far-near)*t0
	sliceFar := near + (far-near)*t1
	if near > 0 && far > near {
		ratio := float64(far / near)
		sliceNear = near * float32(math.Pow(ratio, float64(t0)))
		sliceFar = near * float32(math.Pow(ratio, float64(t1)))
	}
	cell.Planes[4] = geom.Plane{Normal: lin.V3{Z: -1}, D: -sliceNear}
	cell.Planes[5] = geom.Plane{Normal: lin.V3{Z: 1}, D: sliceFar}
}
