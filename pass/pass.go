// Package pass defines the render-pass contract every stage of a
// composition recipe implements — shadow map, depth prepass, light
// culling, gbuffer, lighting, post-process, composite — plus the typed
// per-frame data bundles (FrameSceneData, FrameCameraData, ...) an
// executor (package path) threads through Execute instead of one
// monolithic mutable context.
//
// Grounded on the teacher's render/pass.go (Pass/Reset idiom, generalized
// from a single fixed 3D/2D pass pair into an open, registry-driven set)
// and render/render.go's begin/end-scene bracketing for Context.
package pass

import (
	"go.uber.org/zap"

	"github.com/kestrelgfx/forge/backend"
	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/job"
	"github.com/kestrelgfx/forge/light"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/kestrelgfx/forge/registry"
	"github.com/kestrelgfx/forge/scene"
)

// Role tags which stage of a composition recipe a pass fills.
type Role uint8

const (
	RoleVisibility Role = iota
	RoleLightCulling
	RoleGBuffer
	RoleForwardOpaque
	RoleLighting
	RolePostProcess
	RoleComposite
)

func (r Role) String() string {
	switch r {
	case RoleVisibility:
		return "visibility"
	case RoleLightCulling:
		return "light_culling"
	case RoleGBuffer:
		return "gbuffer"
	case RoleForwardOpaque:
		return "forward_opaque"
	case RoleLighting:
		return "lighting"
	case RolePostProcess:
		return "post_process"
	case RoleComposite:
		return "composite"
	}
	return "unknown"
}

// Access tags how a pass touches a declared IO resource.
type Access uint8

const (
	Read Access = iota
	Write
	ReadWrite
)

// Semantic is one entry of a pass's contract: what it reads or writes, and
// a human label for diagnostics.
type Semantic struct {
	Access Access
	Tag    string // e.g. "depth", "color_hdr", "light_index_buffer"
	Domain string // e.g. "screen", "world", "light"
	Label  string
}

// Contract is what DescribeContract reports: the pass's role plus the
// preconditions the executor's skip-if-invalid check reads before calling
// Execute.
type Contract struct {
	Role                 Role
	SupportedModesMask   uint32
	RequiresDepthPrepass bool
	RequiresLightCulling bool
	PreferAsyncCompute   bool
	Semantics            []Semantic
}

// ResourceKind distinguishes the handle spaces a ResourceRef can name.
type ResourceKind uint8

const (
	ResourceRT ResourceKind = iota
	ResourceMesh
	ResourceMaterial
	ResourceTexture
	ResourceBuffer
)

// ResourceRef names one resource a pass reads or writes in DescribeIO,
// either by a symbolic name (resolved against FramePassResources at
// execute time) or an already-resolved RT handle.
type ResourceRef struct {
	Name   string
	Kind   ResourceKind
	Handle registry.RTHandle
}

// RuntimeState is the small bundle of boolean toggles a recipe carries as
// part of its runtime defaults; path.Executor.ExecutePlan copies the active
// recipe's value into FrameParams.Runtime every frame. Re-exported by
// package path as path.RuntimeState.
type RuntimeState struct {
	ViewOcclusionEnabled   bool
	ShadowOcclusionEnabled bool
	DebugAABB              bool
	LitMode                bool
	EnableShadows          bool
}

// DefaultRuntimeState matches the original's defaults: shading and shadows
// on, debug visualization off.
var DefaultRuntimeState = RuntimeState{
	ViewOcclusionEnabled:   true,
	ShadowOcclusionEnabled: true,
	LitMode:                true,
	EnableShadows:          true,
}

// ForwardPlusState is the context's per-frame validity tracking the
// executor consults before invoking a pass that declares
// RequiresDepthPrepass or RequiresLightCulling.
type ForwardPlusState struct {
	DepthPrepassValid  bool
	LightCullingValid  bool
}

// Reset clears the state at the start of a frame.
func (f *ForwardPlusState) Reset() { *f = ForwardPlusState{} }

// DebugCounters mirrors Context.debug from spec.md §6: raw rasterizer
// counters plus the executor's own pass/draw/cull totals.
type DebugCounters struct {
	TriInput      int
	TriAfterClip  int
	TriRaster     int
	PassCount     int
	DrawCalls     int
	CulledObjects int
}

// Context is the single-threaded-mutated state passed to every pass's
// Execute: a job system for parallel dispatch, a logger, and the frame's
// debug counters. Only ForwardPlusState and DebugCounters are written
// during a pass, and only by the rasterizer's driving thread.
type Context struct {
	Jobs   job.System
	Log    *zap.Logger
	Debug  DebugCounters
	FP     ForwardPlusState
	Backend backend.Backend
}

// NewContext creates a Context. A nil logger defaults to zap.NewNop(); a
// nil job system defaults to job.Inline{}.
func NewContext(jobs job.System, log *zap.Logger, be backend.Backend) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	if jobs == nil {
		jobs = job.Inline{}
	}
	return &Context{Jobs: jobs, Log: log, Backend: be}
}

// FrameSceneData bundles the culled scene a pass draws from.
type FrameSceneData struct {
	Scene *scene.SceneElementSet
}

// FrameCameraData bundles the matrices and frustum a pass projects with.
type FrameCameraData struct {
	View, Proj, ViewProj, PrevViewProj lin.M4
	Frustum                            geom.ConvexCell
	Near, Far                          float32
	ViewportW, ViewportH               int
}

// FrameLightData bundles the scene's lights and their latest binning
// result.
type FrameLightData struct {
	Lights []light.Light
	Bins   light.TileBins
}

// FrameCullData bundles the culling stage's outputs a later pass reads
// (visible indices, the occlusion depth buffer for reuse by light culling).
type FrameCullData struct {
	Stats          scene.Stats
	VisibleIndices []int
	Occlusion      *scene.OcclusionBuffer
}

// FramePassResources bundles the render-target registry plus the
// symbolic-name → handle bindings the active recipe resolved, so a pass's
// DescribeIO names ("shadow", "hdr", "ldr", ...) can be turned into
// concrete handles at Execute time.
type FramePassResources struct {
	Registry *registry.Registry
	Handles  map[string]registry.RTHandle
}

// Resolve looks up a symbolic resource name, returning (0, false) if the
// active recipe never bound one.
func (r *FramePassResources) Resolve(name string) (registry.RTHandle, bool) {
	h, ok := r.Handles[name]
	return h, ok
}

// FrameParams bundles every typed per-frame input a pass's Execute reads,
// the Go analogue of the original's loose Context/ForwardPlusState
// aggregate.
type FrameParams struct {
	Scene     FrameSceneData
	Camera    FrameCameraData
	Lights    FrameLightData
	Cull      FrameCullData
	Resources FramePassResources
	Runtime   RuntimeState
}

// TechniqueMode is the shading/light-assignment technique a path preset
// selects; re-exported by package path as path.TechniqueMode.
type TechniqueMode uint8

const (
	ModeForward TechniqueMode = iota
	ModeForwardPlus
	ModeDeferred
	ModeTiledDeferred
	ModeClusteredForward
)

func (m TechniqueMode) String() string {
	switch m {
	case ModeForward:
		return "forward"
	case ModeForwardPlus:
		return "forward_plus"
	case ModeDeferred:
		return "deferred"
	case ModeTiledDeferred:
		return "tiled_deferred"
	case ModeClusteredForward:
		return "clustered_forward"
	}
	return "unknown"
}

// Pass is the contract every render-path stage implements; see spec.md §4.6.
type Pass interface {
	ID() string
	PreferredBackend() backend.Kind
	PreferredQueue() backend.QueueClass
	SupportsBackend(kind backend.Kind) bool
	DescribeContract() Contract
	// DescribeIO returns the resources this pass reads and writes,
	// respectively.
	DescribeIO() (reads, writes []ResourceRef)
	Execute(ctx *Context, fp *FrameParams) error
}
