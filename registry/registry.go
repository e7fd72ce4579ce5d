// Package registry owns mesh/material/texture storage and the render-target
// handle <-> pointer mapping the render-path's passes resolve their inputs
// and outputs through. It is grounded on the teacher's asset-handle pattern
// (mesh.go/material.go/texture.go, each carrying a name/tag/bind-id triple)
// generalized into a single handle-based store per the resource & RT
// registry component: every add_* call allocates a fresh, non-zero,
// strictly increasing handle, and a reset invalidates every handle issued
// so far.
package registry

import (
	"fmt"

	"go.uber.org/zap"
)

// MeshHandle, MaterialHandle, TextureHandle, RTHandle are opaque 32-bit
// handles. The zero value is never issued by a Registry and always means
// "no resource" to callers that store a handle in a struct field.
type MeshHandle uint32
type MaterialHandle uint32
type TextureHandle uint32
type RTHandle uint32

// Mesh is the render-ready per-vertex/face data the rasterizer consumes.
// It mirrors the teacher's mesh.go shape (named vertex attribute buffers
// plus a triangle index buffer) without the GPU bind bookkeeping, since
// forge rasterizes on the CPU.
type Mesh struct {
	Name      string
	Positions []float32 // 3 floats per vertex
	Normals   []float32 // 3 floats per vertex
	UVs       []float32 // 2 floats per vertex
	Indices   []uint16  // triangle list
}

// VertexCount returns the number of vertices described by Positions.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// Material carries the surface parameters a shader program's fragment
// stage reads, generalizing the teacher's material.go rgb triple into the
// metallic-roughness parameter set a PBR technique needs.
type Material struct {
	Name             string
	BaseColor        [4]float32
	Metallic         float32
	Roughness        float32
	EmissiveStrength float32
	Emissive         [3]float32
}

// Texture is CPU-resident image data sampled by shader programs.
type Texture struct {
	Name          string
	Width, Height int
	Pixels        []float32 // RGBA, row-major, Width*Height*4 floats
	Repeat        bool
}

// RTKind enumerates the render-target shapes C1 allocates transiently.
type RTKind uint8

const (
	RTColorLDR RTKind = iota
	RTColorHDR
	RTDepthMotion
	RTShadowDepth
)

// RT is a CPU render target: a typed pixel buffer plus the extents it was
// allocated at, stored behind an RTHandle.
type RT struct {
	Name          string
	Kind          RTKind
	Width, Height int
	Color         []float32 // RGBA, present for ColorLDR/ColorHDR
	Depth         []float32 // present for DepthMotion/ShadowDepth
	Motion        []float32 // RG, present for DepthMotion only
}

// Registry owns every CPU-resident render resource: meshes, materials,
// textures, and render targets, each behind their own handle space.
// Registry is not safe for concurrent writes; per the concurrency model,
// it is read-only from worker tasks and only main-thread code calls the
// add_*/ensure_transient_* mutators.
type Registry struct {
	log *zap.Logger

	nextMesh MeshHandle
	meshes   map[MeshHandle]*Mesh

	nextMaterial MaterialHandle
	materials    map[MaterialHandle]*Material

	nextTexture TextureHandle
	textures    map[TextureHandle]*Texture

	nextRT RTHandle
	rts    map[RTHandle]*RT
	byName map[string]RTHandle
}

// Option configures a Registry at construction time, following the
// functional-options pattern the teacher's config.go establishes.
type Option func(*Registry)

// WithLogger attaches a structured logger; nil is treated as zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates an empty Registry. The 0 handle is reserved and never
// issued by any of the add_*/ensure_transient_* calls below.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:       zap.NewNop(),
		meshes:    map[MeshHandle]*Mesh{},
		materials: map[MaterialHandle]*Material{},
		textures:  map[TextureHandle]*Texture{},
		rts:       map[RTHandle]*RT{},
		byName:    map[string]RTHandle{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddMesh stores data under a freshly allocated handle.
func (r *Registry) AddMesh(data *Mesh) MeshHandle {
	r.nextMesh++
	r.meshes[r.nextMesh] = data
	return r.nextMesh
}

// GetMesh returns the mesh for handle, or nil if handle is unknown.
func (r *Registry) GetMesh(handle MeshHandle) *Mesh { return r.meshes[handle] }

// AddMaterial stores data under a freshly allocated handle.
func (r *Registry) AddMaterial(data *Material) MaterialHandle {
	r.nextMaterial++
	r.materials[r.nextMaterial] = data
	return r.nextMaterial
}

// GetMaterial returns the material for handle, or nil if handle is unknown.
func (r *Registry) GetMaterial(handle MaterialHandle) *Material { return r.materials[handle] }

// AddTexture stores data under a freshly allocated handle.
func (r *Registry) AddTexture(data *Texture) TextureHandle {
	r.nextTexture++
	r.textures[r.nextTexture] = data
	return r.nextTexture
}

// GetTexture returns the texture for handle, or nil if handle is unknown.
func (r *Registry) GetTexture(handle TextureHandle) *Texture { return r.textures[handle] }

// Register stores an already-constructed RT under a freshly allocated
// handle, without giving it a lookup name. Used for RTs the application
// constructs directly (e.g. the swapchain's present target).
func (r *Registry) Register(rt *RT) RTHandle {
	r.nextRT++
	r.rts[r.nextRT] = rt
	return r.nextRT
}

// Get returns the RT for handle, or nil if handle is unknown. Passes must
// tolerate a nil result: per the error-handling taxonomy, a null resource
// handle causes the pass to skip the work, not to fail the frame.
func (r *Registry) Get(handle RTHandle) *RT { return r.rts[handle] }

// ensureTransient is the shared idempotent-allocation logic behind
// ensure_transient_color_hdr/_ldr: the same name with the same extents
// returns the existing handle; a name reused at different extents
// reallocates (the original's resize policy under partial resize is
// silent, so forge always treats a mismatch as "re-create").
func (r *Registry) ensureTransient(name string, kind RTKind, w, h int) RTHandle {
	if existing, ok := r.byName[name]; ok {
		rt := r.rts[existing]
		if rt.Width == w && rt.Height == h && rt.Kind == kind {
			return existing
		}
		r.log.Debug("transient RT resized, reallocating",
			zap.String("name", name), zap.Int("w", w), zap.Int("h", h))
	}
	rt := newRT(name, kind, w, h)
	handle := r.Register(rt)
	r.byName[name] = handle
	return handle
}

// EnsureTransientColorHDR returns the handle for an HDR color target named
// name at extents w x h, allocating or reallocating it as needed.
func (r *Registry) EnsureTransientColorHDR(name string, w, h int) RTHandle {
	return r.ensureTransient(name, RTColorHDR, w, h)
}

// EnsureTransientColorLDR returns the handle for an LDR color target named
// name at extents w x h, allocating or reallocating it as needed.
func (r *Registry) EnsureTransientColorLDR(name string, w, h int) RTHandle {
	return r.ensureTransient(name, RTColorLDR, w, h)
}

// EnsureTransientDepthMotion returns the handle for a combined depth+motion
// target named name at extents w x h.
func (r *Registry) EnsureTransientDepthMotion(name string, w, h int) RTHandle {
	return r.ensureTransient(name, RTDepthMotion, w, h)
}

// EnsureTransientShadowDepth returns the handle for a shadow depth target
// named name at extents w x h.
func (r *Registry) EnsureTransientShadowDepth(name string, w, h int) RTHandle {
	return r.ensureTransient(name, RTShadowDepth, w, h)
}

func newRT(name string, kind RTKind, w, h int) *RT {
	rt := &RT{Name: name, Kind: kind, Width: w, Height: h}
	switch kind {
	case RTColorLDR, RTColorHDR:
		rt.Color = make([]float32, w*h*4)
	case RTDepthMotion:
		rt.Depth = make([]float32, w*h)
		rt.Motion = make([]float32, w*h*2)
	case RTShadowDepth:
		rt.Depth = make([]float32, w*h)
	}
	return rt
}

// Reset invalidates all prior handles across every resource space: meshes,
// materials, textures, and RTs. Intended for full-scene teardown (demo
// scene switch, hot recipe reload of asset-owning state).
func (r *Registry) Reset() {
	r.meshes = map[MeshHandle]*Mesh{}
	r.materials = map[MaterialHandle]*Material{}
	r.textures = map[TextureHandle]*Texture{}
	r.rts = map[RTHandle]*RT{}
	r.byName = map[string]RTHandle{}
}

// String renders a handle for logging/debug purposes.
func (h RTHandle) String() string { return fmt.Sprintf("rt#%d", uint32(h)) }
