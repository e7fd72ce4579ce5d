package pass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgfx/forge/backend"
	"github.com/kestrelgfx/forge/registry"
	"github.com/kestrelgfx/forge/scene"
)

func TestNewBuiltinRegistryHasEveryPassID(t *testing.T) {
	r := NewBuiltinRegistry()
	ids := []string{
		IDShadowMap, IDDepthPrepass, IDLightCulling, IDClusterBuild, IDClusterLightAssign,
		IDGBuffer, IDDeferredLighting, IDDeferredLightingTiled,
		IDPBRForward, IDPBRForwardPlus, IDPBRForwardClustered,
		IDTonemap, IDLightShafts, IDMotionBlur,
	}
	for _, id := range ids {
		assert.True(t, r.Has(id), "missing factory for %s", id)
		p, ok := r.New(id)
		require.True(t, ok)
		assert.Equal(t, id, p.ID())
	}
}

func TestRegistryNewReportsFalseForUnknownID(t *testing.T) {
	r := NewRegistry()
	_, ok := r.New("does_not_exist")
	assert.False(t, ok)
}

func TestNewContextDefaultsNilDependencies(t *testing.T) {
	ctx := NewContext(nil, nil, nil)
	assert.NotNil(t, ctx.Log)
	assert.NotNil(t, ctx.Jobs)
}

func TestForwardPlusStateResetClearsValidity(t *testing.T) {
	fp := ForwardPlusState{DepthPrepassValid: true, LightCullingValid: true}
	fp.Reset()
	assert.False(t, fp.DepthPrepassValid)
	assert.False(t, fp.LightCullingValid)
}

func TestDepthPrepassExecuteMarksValidAndCountsDrawCalls(t *testing.T) {
	p := NewDepthPrepassPass()
	reg := registry.New()
	h := reg.EnsureTransientDepthMotion("depth_motion", 16, 16)
	mesh := reg.AddMesh(&registry.Mesh{Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint16{0, 1, 2}})
	set := scene.NewSceneElementSet()
	for id := scene.StableID(1); id <= 3; id++ {
		set.Add(scene.Element{StableID: id, Enabled: true, Visible: true, Mesh: mesh})
	}
	ctx := NewContext(nil, nil, backend.NewSoftwareBackend())
	fp := &FrameParams{
		Scene:     FrameSceneData{Scene: set},
		Resources: FramePassResources{Registry: reg, Handles: map[string]registry.RTHandle{"depth_motion": h}},
		Cull:      FrameCullData{VisibleIndices: []int{0, 1, 2}},
	}

	err := p.Execute(ctx, fp)
	require.NoError(t, err)
	assert.True(t, ctx.FP.DepthPrepassValid)
	assert.Equal(t, 3, ctx.Debug.DrawCalls)
}

func TestPBRForwardPlusSkipsWhenDepthPrepassInvalid(t *testing.T) {
	p := NewPBRForwardPass(ModeForwardPlus)
	reg := registry.New()
	h := reg.EnsureTransientColorHDR("hdr", 16, 16)
	ctx := NewContext(nil, nil, backend.NewSoftwareBackend())
	fp := &FrameParams{Resources: FramePassResources{Registry: reg, Handles: map[string]registry.RTHandle{"hdr": h}}}

	err := p.Execute(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, 0, ctx.Debug.PassCount) // depth prepass never ran, so forward+ must not draw.
}

func TestTonemapAppliesReinhardCurve(t *testing.T) {
	p := NewTonemapPass(1.0)
	reg := registry.New()
	hdrH := reg.EnsureTransientColorHDR("hdr", 1, 1)
	ldrH := reg.EnsureTransientColorLDR("ldr", 1, 1)
	reg.Get(hdrH).Color = []float32{3, 3, 3, 1}
	ctx := NewContext(nil, nil, backend.NewSoftwareBackend())
	fp := &FrameParams{Resources: FramePassResources{Registry: reg, Handles: map[string]registry.RTHandle{"hdr": hdrH, "ldr": ldrH}}}

	err := p.Execute(ctx, fp)
	require.NoError(t, err)
	assert.InDelta(t, float32(0.75), reg.Get(ldrH).Color[0], 1e-6) // 3/(1+3) = 0.75
}
