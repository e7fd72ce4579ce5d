package raster

import (
	"testing"

	"github.com/kestrelgfx/forge/job"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/kestrelgfx/forge/registry"
	"github.com/stretchr/testify/assert"
)

func identityProgram() *Program {
	return &Program{
		VS: func(in *VertexIn, u *Uniforms) VertexOut {
			var out VertexOut
			out.Clip = lin.V4{X: in.Position.X, Y: in.Position.Y, Z: in.Position.Z, W: 1}
			out.NVarying = 1
			out.Varying[0] = [4]float32{in.Position.X, in.Position.Y, in.Position.Z, 1}
			return out
		},
		FS: func(in *FragmentIn, u *Uniforms) FragmentOut {
			return FragmentOut{Color: [4]float32{1, 0, 0, 1}}
		},
	}
}

func quadMesh() *registry.Mesh {
	return &registry.Mesh{
		Name: "quad",
		Positions: []float32{
			-0.5, -0.5, 0,
			0.5, -0.5, 0,
			0.5, 0.5, 0,
			-0.5, 0.5, 0,
		},
		Normals: []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:     []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
	}
}

func TestRasterizerDrawsFullyVisibleTriangleInline(t *testing.T) {
	target := NewTarget(16, 16, false)
	mesh := quadMesh()
	prog := identityProgram()
	var u Uniforms
	var stats Stats

	r := NewRasterizer(job.Inline{}, CullNone)
	r.Draw(target, mesh, prog, &u, &stats)

	assert.Equal(t, 2, stats.TriInput)
	assert.Equal(t, 2, stats.TriAfterClip)
	assert.Equal(t, 2, stats.TriRaster)

	center := 8*16 + 8
	assert.Equal(t, float32(1), target.Color[center*4+0])
	corner := 0
	assert.Equal(t, float32(0), target.Color[corner*4+3])
}

func TestRasterizerParallelMatchesInline(t *testing.T) {
	mesh := quadMesh()
	prog := identityProgram()
	var u Uniforms

	inlineTarget := NewTarget(256, 256, false)
	var inlineStats Stats
	rInline := NewRasterizer(job.Inline{}, CullNone)
	rInline.Policy = DispatchPolicy{ParallelMinRows: 1 << 30, ParallelMinPixels: 1 << 30}
	rInline.Draw(inlineTarget, mesh, prog, &u, &inlineStats)

	parallelTarget := NewTarget(256, 256, false)
	var parallelStats Stats
	rParallel := NewRasterizer(job.NewSystem(4), CullNone)
	rParallel.Draw(parallelTarget, mesh, prog, &u, &parallelStats)
	rParallel.Jobs.Close()

	assert.Equal(t, inlineStats, parallelStats)
	assert.Equal(t, inlineTarget.Color, parallelTarget.Color)
}

func TestBackfaceCullSkipsReversedWinding(t *testing.T) {
	target := NewTarget(16, 16, false)
	mesh := &registry.Mesh{
		Positions: []float32{
			-0.5, -0.5, 0,
			-0.5, 0.5, 0,
			0.5, -0.5, 0,
		},
		Normals: []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices: []uint16{0, 1, 2},
	}
	prog := identityProgram()
	var u Uniforms
	var stats Stats

	r := NewRasterizer(job.Inline{}, CullBack)
	r.Draw(target, mesh, prog, &u, &stats)

	assert.Equal(t, 1, stats.TriInput)
	assert.Equal(t, 0, stats.TriRaster)
}
