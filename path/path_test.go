package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgfx/forge/backend"
	"github.com/kestrelgfx/forge/pass"
	"github.com/kestrelgfx/forge/registry"
)

func newTestResources(names ...string) (*registry.Registry, map[string]registry.RTHandle) {
	reg := registry.New()
	handles := map[string]registry.RTHandle{}
	for _, n := range names {
		handles[n] = reg.EnsureTransientColorHDR(n, 4, 4)
	}
	return reg, handles
}

func TestApplyIndexCompilesForwardRecipe(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)
	e.AddRecipe(ForwardRecipe)

	require.True(t, e.ApplyIndex(0))
	plan := e.ActivePlan()
	assert.True(t, plan.Valid)
	assert.Empty(t, plan.MissingPasses)
	assert.Empty(t, plan.IOErrors)
	assert.NotEmpty(t, plan.Fingerprint)
}

func TestApplyIndexRejectsUnmetCapability(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)
	r := ForwardRecipe
	r.Capability = func(backend.CapabilitySet) bool { return false }
	e.AddRecipe(r)

	assert.False(t, e.ApplyIndex(0))
	assert.Nil(t, e.ActivePlan())
}

func TestApplyIndexRecordsMissingPasses(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)
	r := Recipe{Name: "broken", PassIDs: []string{"no_such_pass", pass.IDTonemap}, Capability: AlwaysCapable}
	e.AddRecipe(r)

	assert.True(t, e.ApplyIndex(0)) // non-strict: missing pass is a warning, not fatal.
	plan := e.ActivePlan()
	assert.Contains(t, plan.MissingPasses, "no_such_pass")
}

func TestStrictModeRejectsMissingPasses(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be, WithStrict(true))
	r := Recipe{Name: "broken", PassIDs: []string{"no_such_pass"}, Capability: AlwaysCapable}
	e.AddRecipe(r)

	assert.False(t, e.ApplyIndex(0))
}

func TestStrictModeRejectsReadBeforeWrite(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be, WithStrict(true))
	// tonemap reads "hdr" but nothing before it writes it.
	r := Recipe{Name: "dangling", PassIDs: []string{pass.IDTonemap}, Capability: AlwaysCapable}
	e.AddRecipe(r)

	assert.False(t, e.ApplyIndex(0))
}

func TestNonStrictReadBeforeWriteIsWarningOnly(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)
	r := Recipe{Name: "dangling", PassIDs: []string{pass.IDTonemap}, Capability: AlwaysCapable}
	e.AddRecipe(r)

	assert.True(t, e.ApplyIndex(0))
	assert.NotEmpty(t, e.ActivePlan().IOWarnings)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e1 := NewExecutor(be)
	e1.AddRecipe(ForwardPlusRecipe)
	require.True(t, e1.ApplyIndex(0))

	e2 := NewExecutor(be)
	e2.AddRecipe(ForwardPlusRecipe)
	require.True(t, e2.ApplyIndex(0))

	assert.Equal(t, e1.ActivePlan().Fingerprint, e2.ActivePlan().Fingerprint)
}

func TestFingerprintDiffersAcrossRecipes(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)
	e.AddRecipe(ForwardRecipe)
	e.AddRecipe(DeferredRecipe)
	require.True(t, e.ApplyIndex(0))
	fpForward := e.ActivePlan().Fingerprint
	require.True(t, e.ApplyIndex(1))
	fpDeferred := e.ActivePlan().Fingerprint

	assert.NotEqual(t, fpForward, fpDeferred)
}

func TestCycleAdvancesThroughAllFivePresetsAndWraps(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)

	wantOrder := []TechniqueMode{ModeForwardPlus, ModeDeferred, ModeTiledDeferred, ModeClusteredForward, ModeForward}
	require.True(t, e.Cycle()) // installs CyclePresets and advances from index 0 (Forward) to 1.
	for _, want := range wantOrder {
		assert.Equal(t, want, e.ActivePlan().Recipe.Technique)
		require.True(t, e.Cycle())
	}
}

func TestApplyFallbackTechniquePipelinePicksFirstCapable(t *testing.T) {
	be := backend.NewSoftwareBackend() // SupportsPresent is false for the CPU path.
	e := NewExecutor(be)
	requiresPresent := ForwardPlusRecipe
	requiresPresent.Capability = func(caps backend.CapabilitySet) bool { return caps.SupportsPresent }
	e.AddRecipe(requiresPresent)
	e.AddRecipe(ForwardRecipe)

	require.True(t, e.ApplyFallbackTechniquePipeline())
	assert.Equal(t, ForwardRecipe.Name, e.ActivePlan().Recipe.Name)
}

func TestExecutePlanRunsPassesAndSkipsGatedOnes(t *testing.T) {
	be := backend.NewVulkanBackend()
	e := NewExecutor(be)
	reg, handles := newTestResources("hdr", "ldr", "depth_motion")
	r := ForwardPlusRecipe
	// pbr_forward_plus is placed ahead of depth_prepass, so its depth-prepass
	// gate is still closed when ExecutePlan reaches it.
	r.PassIDs = []string{pass.IDPBRForwardPlus, pass.IDDepthPrepass, pass.IDLightCulling, pass.IDTonemap}
	r.Handles = handles
	e.AddRecipe(r)
	require.True(t, e.ApplyIndex(0))

	fp := &pass.FrameParams{Resources: pass.FramePassResources{Registry: reg}}
	err := e.ExecutePlan(fp)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Stats.PassCount) // pbr_forward_plus skipped; the other three ran.
	assert.Equal(t, 1, e.Stats.FramesExecuted)
}

func TestExecutePlanFailsWithoutActivePlan(t *testing.T) {
	be := backend.NewSoftwareBackend()
	e := NewExecutor(be)
	err := e.ExecutePlan(&pass.FrameParams{})
	assert.Error(t, err)
}
