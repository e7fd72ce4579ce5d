package light

import (
	"testing"

	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/stretchr/testify/assert"
)

func testViewProj() lin.M4 {
	var view, proj, vp lin.M4
	view.Set(lin.M4I).TranslateTM(0, 0, -10)
	proj.Persp(60, 1, 1, 100)
	vp.Mult(&view, &proj)
	return vp
}

func TestBinnerNonePutsEveryLightInOneBin(t *testing.T) {
	lights := []Light{
		{Kind: Point, StableID: 1, Position: lin.V3{Z: 0}, Range: 5},
		{Kind: Point, StableID: 2, Position: lin.V3{Z: 50}, Range: 5},
	}
	b := NewBinner(BinConfig{Mode: BinNone}, nil)
	vp := testViewProj()
	bins := b.Bin(lights, &vp, 320, 240, nil)

	assert.Equal(t, 1, bins.TilesX)
	assert.Equal(t, 1, bins.TilesY)
	assert.Equal(t, int32(2), bins.Counts[0])
}

func TestBinnerTiledAssignsNearLightToSomeTile(t *testing.T) {
	lights := []Light{
		{Kind: Point, StableID: 1, Position: lin.V3{X: 0, Y: 0, Z: 0}, Range: 3},
	}
	cfg := BinConfig{Mode: BinTiled, TileSize: 32, MaxLightsPerTile: 8}
	b := NewBinner(cfg, nil)
	vp := testViewProj()
	bins := b.Bin(lights, &vp, 320, 240, nil)

	total := int32(0)
	for _, c := range bins.Counts {
		total += c
	}
	assert.GreaterOrEqual(t, total, int32(1))
	assert.Equal(t, 0, bins.OverflowTiles)
}

func TestBinnerOverflowIsTracked(t *testing.T) {
	var lights []Light
	for i := 0; i < 10; i++ {
		lights = append(lights, Light{Kind: Point, StableID: uint64(i), Position: lin.V3{Z: 0}, Range: 50})
	}
	cfg := BinConfig{Mode: BinTiled, TileSize: 320, MaxLightsPerTile: 2}
	b := NewBinner(cfg, nil)
	vp := testViewProj()
	bins := b.Bin(lights, &vp, 320, 240, nil)

	assert.Equal(t, 1, len(bins.Counts))
	assert.LessOrEqual(t, bins.Counts[0], int32(2))
	assert.Greater(t, bins.OverflowTiles, 0)
}

func TestBinnerRejectsUnknownMode(t *testing.T) {
	b := NewBinner(BinConfig{Mode: BinMode(99)}, nil)
	assert.Equal(t, BinNone, b.cfg.Mode)
}

func twelveLightsAlongX() []Light {
	var lights []Light
	for i := 0; i < 12; i++ {
		lights = append(lights, Light{
			Kind:     Point,
			StableID: uint64(i),
			Position: lin.V3{X: float32(i), Y: 0, Z: 0},
			Range:    20,
		})
	}
	return lights
}

func TestGatherForAABBUnionsOverlappingBins(t *testing.T) {
	lights := twelveLightsAlongX()
	ab := geom.AABB{Min: lin.V3{X: -1, Y: -1, Z: -1}, Max: lin.V3{X: 1, Y: 1, Z: 1}}

	b := NewBinner(BinConfig{Mode: BinNone}, nil)
	vp := testViewProj()
	bins := b.Bin(lights, &vp, 320, 240, nil)

	got := GatherForAABB(&bins, &vp, &ab)
	assert.Equal(t, 12, len(got)) // BinNone puts every light in the single bin ab overlaps.
}

func TestGatherForAABBReturnsNilForEmptyBins(t *testing.T) {
	ab := geom.AABB{Min: lin.V3{X: -1, Y: -1, Z: -1}, Max: lin.V3{X: 1, Y: 1, Z: 1}}
	vp := testViewProj()
	assert.Nil(t, GatherForAABB(nil, &vp, &ab))
	assert.Nil(t, GatherForAABB(&TileBins{}, &vp, &ab))
}

func TestNearestByDistanceLimitsToEightByDistance(t *testing.T) {
	lights := twelveLightsAlongX()
	indices := make([]int32, len(lights))
	for i := range indices {
		indices[i] = int32(i)
	}

	got := NearestByDistance(lights, indices, lin.V3{}, 8)
	assert.Len(t, got, 8)
	assert.Equal(t, int32(0), got[0]) // closest light (index 0, at origin) sorts first
}
