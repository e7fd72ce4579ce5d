package pass

import (
	"github.com/kestrelgfx/forge/backend"
	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/light"
	"github.com/kestrelgfx/forge/math/lin"
	"github.com/kestrelgfx/forge/raster"
)

// lightPosKey/lightColorKey are fixed, allocation-free map keys for the up
// to eight lights a draw call's Uniforms.Extra carries — using a constant
// table instead of formatting "light0_pos" per call keeps the per-pixel
// fragment-stage lookups in pbrProgram's FS from allocating.
var (
	lightPosKey   = [8]string{"l0p", "l1p", "l2p", "l3p", "l4p", "l5p", "l6p", "l7p"}
	lightColorKey = [8]string{"l0c", "l1c", "l2c", "l3c", "l4c", "l5c", "l6c", "l7c"}
)

// packLights encodes up to the first eight lights into a draw call's
// Uniforms.Extra slots, for a fragment stage to unpack per pixel.
func packLights(lights []light.Light) map[string][4]float32 {
	extra := map[string][4]float32{"count": {float32(len(lights)), 0, 0, 0}}
	for i, l := range lights {
		if i >= 8 {
			break
		}
		p := l.Pack()
		extra[lightPosKey[i]] = p.PositionRange
		extra[lightColorKey[i]] = p.ColorIntensity
	}
	return extra
}

// drawVisible rasterizes every mesh-bound, currently-visible scene element
// into target using prog, accumulating per-call triangle/draw-call counters
// into ctx.Debug. lightsFor may be nil for a program whose fragment stage
// ignores lighting (e.g. a depth-only pass).
func drawVisible(ctx *Context, fp *FrameParams, rz *raster.Rasterizer, target *raster.Target, prog *raster.Program, lightsFor func(idx int, worldAB geom.AABB) []light.Light) {
	for _, idx := range fp.Cull.VisibleIndices {
		if fp.Scene.Scene == nil || idx < 0 || idx >= len(fp.Scene.Scene.Elements) {
			continue
		}
		elem := &fp.Scene.Scene.Elements[idx]
		mesh := fp.Resources.Registry.GetMesh(elem.Mesh)
		if mesh == nil {
			continue
		}
		u := raster.Uniforms{
			Model: elem.Transform, View: fp.Camera.View, Proj: fp.Camera.Proj,
			ViewProj: fp.Camera.ViewProj, PrevViewProj: fp.Camera.PrevViewProj,
			BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1,
		}
		if mat := fp.Resources.Registry.GetMaterial(elem.Material); mat != nil {
			u.BaseColor, u.Metallic, u.Roughness, u.EmissiveStrength = mat.BaseColor, mat.Metallic, mat.Roughness, mat.EmissiveStrength
		}
		if lightsFor != nil {
			u.Extra = packLights(lightsFor(idx, elem.WorldAB))
		}
		var stats raster.Stats
		rz.Draw(target, mesh, prog, &u, &stats)
		ctx.Debug.TriInput += stats.TriInput
		ctx.Debug.TriAfterClip += stats.TriAfterClip
		ctx.Debug.TriRaster += stats.TriRaster
		ctx.Debug.DrawCalls++
	}
}

// transformPoint carries p through m as a point (implicit w=1) and returns
// the result's xyz, dropping the homogeneous w (every model matrix forge's
// passes draw with is affine, so w stays 1).
func transformPoint(p *lin.V3, m *lin.M4) lin.V3 {
	var world lin.V4
	world.MultP(p, m)
	return lin.V3{X: world.X, Y: world.Y, Z: world.Z}
}

// depthOnlyProgram transforms position by Model then ViewProj and writes no
// color, for passes whose target has no color buffer (shadow_map's
// "shadow", depth_prepass's "depth_motion").
func depthOnlyProgram() *raster.Program {
	return &raster.Program{
		VS: func(in *raster.VertexIn, u *raster.Uniforms) raster.VertexOut {
			world := transformPoint(&in.Position, &u.Model)
			var clip lin.V4
			clip.MultP(&world, &u.ViewProj)
			var out raster.VertexOut
			out.Clip = clip
			out.NVarying = 1
			out.Varying[raster.VaryingWorldPos] = [4]float32{world.X, world.Y, world.Z, 1}
			return out
		},
		FS: func(in *raster.FragmentIn, u *raster.Uniforms) raster.FragmentOut {
			return raster.FragmentOut{}
		},
	}
}

// base holds the fields common to every built-in pass: its id, its
// preferred placement hints, and which backends it supports (every
// built-in here supports all three skeleton backends since none touches a
// real GPU API).
type base struct {
	id      string
	queue   backend.QueueClass
	backend backend.Kind
}

func (b *base) ID() string                             { return b.id }
func (b *base) PreferredBackend() backend.Kind          { return b.backend }
func (b *base) PreferredQueue() backend.QueueClass      { return b.queue }
func (b *base) SupportsBackend(kind backend.Kind) bool  { return true }

// --- shadow_map ---------------------------------------------------------

// ShadowMapPass depth-only rasterizes every visible element into the
// "shadow" RT.
type ShadowMapPass struct {
	base
	Rasterizer *raster.Rasterizer
}

func NewShadowMapPass() *ShadowMapPass {
	return &ShadowMapPass{base: base{id: IDShadowMap, queue: backend.Graphics}, Rasterizer: raster.NewRasterizer(nil, raster.CullBack)}
}

func (p *ShadowMapPass) DescribeContract() Contract {
	return Contract{Role: RoleVisibility, Semantics: []Semantic{{Access: Write, Tag: "depth", Domain: "light", Label: "shadow"}}}
}

func (p *ShadowMapPass) DescribeIO() (reads, writes []ResourceRef) {
	writes = []ResourceRef{{Name: "shadow", Kind: ResourceRT}}
	return
}

func (p *ShadowMapPass) Execute(ctx *Context, fp *FrameParams) error {
	h, ok := fp.Resources.Resolve("shadow")
	if !ok {
		return nil // no shadow RT bound; nothing to draw into, not an error.
	}
	rt := fp.Resources.Registry.Get(h)
	if rt == nil {
		return nil
	}
	target := raster.Target{Width: rt.Width, Height: rt.Height, Depth: rt.Depth}
	// No dedicated light-space camera is modeled yet, so the shadow map is
	// rasterized from the main camera's view-proj; wiring a real light
	// camera only changes the matrices drawVisible builds Uniforms from.
	drawVisible(ctx, fp, p.Rasterizer, &target, depthOnlyProgram(), nil)
	ctx.Debug.PassCount++
	return nil
}

// --- depth_prepass -------------------------------------------------------

// DepthPrepassPass rasterizes every visible element's depth into the
// combined depth+motion RT, and marks ForwardPlusState.DepthPrepassValid
// so later passes gated on it (gbuffer, pbr_forward_plus) are allowed to
// run.
type DepthPrepassPass struct {
	base
	Rasterizer *raster.Rasterizer
}

func NewDepthPrepassPass() *DepthPrepassPass {
	rz := raster.NewRasterizer(nil, raster.CullBack)
	rz.Motion = true
	return &DepthPrepassPass{base: base{id: IDDepthPrepass, queue: backend.Graphics}, Rasterizer: rz}
}

func (p *DepthPrepassPass) DescribeContract() Contract {
	return Contract{Role: RoleVisibility, Semantics: []Semantic{{Access: Write, Tag: "depth", Domain: "screen", Label: "depth_motion"}}}
}

func (p *DepthPrepassPass) DescribeIO() (reads, writes []ResourceRef) {
	writes = []ResourceRef{{Name: "depth_motion", Kind: ResourceRT}}
	return
}

func (p *DepthPrepassPass) Execute(ctx *Context, fp *FrameParams) error {
	h, ok := fp.Resources.Resolve("depth_motion")
	if ok {
		rt := fp.Resources.Registry.Get(h)
		if rt != nil {
			target := raster.Target{Width: rt.Width, Height: rt.Height, Depth: rt.Depth, Motion: rt.Motion}
			drawVisible(ctx, fp, p.Rasterizer, &target, depthOnlyProgram(), nil)
		}
	}
	ctx.Debug.PassCount++
	ctx.FP.DepthPrepassValid = true
	return nil
}

// --- light_culling -------------------------------------------------------

// LightCullingPass bins the scene's lights with its light.Binner, in the
// mode that Binner was built with (Tiled by default), and marks
// ForwardPlusState.LightCullingValid. It passes no per-tile depth range,
// so a TiledDepthRange binner bins exactly like Tiled.
type LightCullingPass struct {
	base
	Binner *light.Binner
}

func NewLightCullingPass(cfg *light.BinConfig) *LightCullingPass {
	c := light.DefaultBinConfig
	if cfg != nil {
		c = *cfg
	}
	return &LightCullingPass{base: base{id: IDLightCulling, queue: backend.Compute}, Binner: light.NewBinner(c, nil)}
}

func (p *LightCullingPass) DescribeContract() Contract {
	return Contract{Role: RoleLightCulling, Semantics: []Semantic{{Access: ReadWrite, Tag: "light_index_buffer", Domain: "screen", Label: "tiled_lights"}}}
}

func (p *LightCullingPass) DescribeIO() (reads, writes []ResourceRef) {
	return nil, nil // in-memory binning output, not an RT.
}

func (p *LightCullingPass) Execute(ctx *Context, fp *FrameParams) error {
	var depthRange *geom.TileDepthRange
	vp := fp.Camera.ViewProj
	fp.Lights.Bins = p.Binner.Bin(fp.Lights.Lights, &vp, fp.Camera.ViewportW, fp.Camera.ViewportH, depthRange)
	ctx.Debug.PassCount++
	ctx.FP.LightCullingValid = true
	return nil
}

// --- cluster_build ---------------------------------------------------------

// ClusterBuildPass bins lights into a 3D cluster grid instead of 2D tiles.
type ClusterBuildPass struct {
	base
	Binner *light.Binner
}

func NewClusterBuildPass(cfg *light.BinConfig) *ClusterBuildPass {
	c := light.DefaultBinConfig
	c.Mode = light.BinClustered
	if cfg != nil {
		c = *cfg
	}
	return &ClusterBuildPass{base: base{id: IDClusterBuild, queue: backend.Compute}, Binner: light.NewBinner(c, nil)}
}

func (p *ClusterBuildPass) DescribeContract() Contract {
	return Contract{Role: RoleLightCulling, Semantics: []Semantic{{Access: Write, Tag: "cluster_grid", Domain: "world", Label: "clusters"}}}
}

func (p *ClusterBuildPass) DescribeIO() (reads, writes []ResourceRef) { return nil, nil }

func (p *ClusterBuildPass) Execute(ctx *Context, fp *FrameParams) error {
	vp := fp.Camera.ViewProj
	fp.Lights.Bins = p.Binner.Bin(fp.Lights.Lights, &vp, fp.Camera.ViewportW, fp.Camera.ViewportH, nil)
	ctx.Debug.PassCount++
	return nil
}

// --- cluster_light_assign --------------------------------------------------

// ClusterLightAssignPass validates the cluster grid built by
// cluster_build and marks light culling valid; split from cluster_build
// so a recipe can insert work between them (e.g. a depth-bounds compute
// pass) without forge hardcoding that dependency.
type ClusterLightAssignPass struct{ base }

func NewClusterLightAssignPass() *ClusterLightAssignPass {
	return &ClusterLightAssignPass{base: base{id: IDClusterLightAssign, queue: backend.Compute}}
}

func (p *ClusterLightAssignPass) DescribeContract() Contract {
	return Contract{Role: RoleLightCulling, Semantics: []Semantic{{Access: Read, Tag: "cluster_grid", Domain: "world", Label: "clusters"}}}
}

func (p *ClusterLightAssignPass) DescribeIO() (reads, writes []ResourceRef) { return nil, nil }

func (p *ClusterLightAssignPass) Execute(ctx *Context, fp *FrameParams) error {
	ctx.Debug.PassCount++
	ctx.FP.LightCullingValid = true
	return nil
}

// --- gbuffer ---------------------------------------------------------------

// GBufferPass rasterizes every visible element's encoded world normal into
// a gbuffer color RT, for the deferred techniques to shade later.
type GBufferPass struct {
	base
	Rasterizer *raster.Rasterizer
}

func NewGBufferPass() *GBufferPass {
	return &GBufferPass{base: base{id: IDGBuffer, queue: backend.Graphics}, Rasterizer: raster.NewRasterizer(nil, raster.CullBack)}
}

func (p *GBufferPass) DescribeContract() Contract {
	return Contract{
		Role:                 RoleGBuffer,
		RequiresDepthPrepass: true,
		Semantics:            []Semantic{{Access: Write, Tag: "color_hdr", Domain: "screen", Label: "gbuffer"}},
	}
}

func (p *GBufferPass) DescribeIO() (reads, writes []ResourceRef) {
	reads = []ResourceRef{{Name: "depth_motion", Kind: ResourceRT}}
	writes = []ResourceRef{{Name: "gbuffer", Kind: ResourceRT}}
	return
}

// gbufferProgram carries world position and world normal as varyings and
// writes only the normal, encoded as n*0.5+0.5, into the gbuffer's color
// channels, since the deferred_lighting pass that consumes this RT only
// resolves a flat light sum, not a full normal-mapped BRDF.
func gbufferProgram() *raster.Program {
	return &raster.Program{
		VS: func(in *raster.VertexIn, u *raster.Uniforms) raster.VertexOut {
			world := transformPoint(&in.Position, &u.Model)
			var n lin.V3
			n.MultvM3(&in.Normal, &u.Model)
			var clip lin.V4
			clip.MultP(&world, &u.ViewProj)
			var out raster.VertexOut
			out.Clip = clip
			out.NVarying = 2
			out.Varying[raster.VaryingWorldPos] = [4]float32{world.X, world.Y, world.Z, 1}
			out.Varying[raster.VaryingNormal] = [4]float32{n.X, n.Y, n.Z, 0}
			return out
		},
		FS: func(in *raster.FragmentIn, u *raster.Uniforms) raster.FragmentOut {
			n := in.Normal
			n.Unit()
			return raster.FragmentOut{Color: [4]float32{n.X*0.5 + 0.5, n.Y*0.5 + 0.5, n.Z*0.5 + 0.5, 1}}
		},
	}
}

func (p *GBufferPass) Execute(ctx *Context, fp *FrameParams) error {
	h, ok := fp.Resources.Resolve("gbuffer")
	if !ok || !ctx.FP.DepthPrepassValid {
		return nil
	}
	rt := fp.Resources.Registry.Get(h)
	if rt == nil {
		return nil
	}
	dm, ok := fp.Resources.Resolve("depth_motion")
	if !ok {
		return nil
	}
	dmRT := fp.Resources.Registry.Get(dm)
	if dmRT == nil {
		return nil
	}
	target := raster.Target{Width: rt.Width, Height: rt.Height, Color: rt.Color, Depth: dmRT.Depth}
	drawVisible(ctx, fp, p.Rasterizer, &target, gbufferProgram(), nil)
	ctx.Debug.PassCount++
	return nil
}

// --- deferred_lighting / deferred_lighting_tiled ----------------------------

// DeferredLightingPass resolves the gbuffer into the HDR color RT by
// scaling each texel by the summed color*intensity of the full scene light
// list. With Tiled set it runs only once light culling has run, but it
// still uses the full light list; the tile bins are not read.
type DeferredLightingPass struct {
	base
	Tiled bool
}

func NewDeferredLightingPass(tiled bool) *DeferredLightingPass {
	id := IDDeferredLighting
	if tiled {
		id = IDDeferredLightingTiled
	}
	return &DeferredLightingPass{base: base{id: id, queue: backend.Graphics}, Tiled: tiled}
}

func (p *DeferredLightingPass) DescribeContract() Contract {
	return Contract{
		Role:                 RoleLighting,
		RequiresLightCulling: p.Tiled,
		Semantics: []Semantic{
			{Access: Read, Tag: "color_hdr", Domain: "screen", Label: "gbuffer"},
			{Access: Write, Tag: "color_hdr", Domain: "screen", Label: "hdr"},
		},
	}
}

func (p *DeferredLightingPass) DescribeIO() (reads, writes []ResourceRef) {
	reads = []ResourceRef{{Name: "gbuffer", Kind: ResourceRT}}
	writes = []ResourceRef{{Name: "hdr", Kind: ResourceRT}}
	return
}

func (p *DeferredLightingPass) Execute(ctx *Context, fp *FrameParams) error {
	gb, ok := fp.Resources.Resolve("gbuffer")
	hdr, ok2 := fp.Resources.Resolve("hdr")
	if !ok || !ok2 {
		return nil
	}
	if p.Tiled && !ctx.FP.LightCullingValid {
		return nil
	}
	gbRT := fp.Resources.Registry.Get(gb)
	hdrRT := fp.Resources.Registry.Get(hdr)
	if gbRT == nil || hdrRT == nil {
		return nil
	}
	n := len(hdrRT.Color) / 4
	for i := 0; i < n && i*4+3 < len(gbRT.Color); i++ {
		total := [3]float32{}
		for li := range fp.Lights.Lights {
			l := &fp.Lights.Lights[li]
			total[0] += l.Color.X * l.Intensity
			total[1] += l.Color.Y * l.Intensity
			total[2] += l.Color.Z * l.Intensity
		}
		hdrRT.Color[i*4+0] = gbRT.Color[i*4+0] * total[0]
		hdrRT.Color[i*4+1] = gbRT.Color[i*4+1] * total[1]
		hdrRT.Color[i*4+2] = gbRT.Color[i*4+2] * total[2]
		hdrRT.Color[i*4+3] = 1
	}
	ctx.Debug.PassCount++
	return nil
}

// --- pbr_forward / pbr_forward_plus / pbr_forward_clustered ----------------

// PBRForwardPass rasterizes every visible element directly into the HDR
// color RT with a Blinn-Phong-ish analytic PBR approximation, gathering
// per-object lights via light.GatherForAABB for the Forward+/Clustered
// modes and using the full scene light list for plain Forward.
type PBRForwardPass struct {
	base
	Mode       TechniqueMode
	Rasterizer *raster.Rasterizer

	// scratchDepth backs the depth test for draws into "hdr", which (being
	// an RTColorHDR) owns no depth buffer of its own; resized and cleared
	// to the far plane at the start of every Execute.
	scratchDepth []float32
}

func NewPBRForwardPass(mode TechniqueMode) *PBRForwardPass {
	id := IDPBRForward
	switch mode {
	case ModeForwardPlus:
		id = IDPBRForwardPlus
	case ModeClusteredForward:
		id = IDPBRForwardClustered
	}
	return &PBRForwardPass{base: base{id: id, queue: backend.Graphics}, Mode: mode, Rasterizer: raster.NewRasterizer(nil, raster.CullBack)}
}

// pbrProgram is the forward PBR approximation: a Blinn-Phong-ish diffuse
// sum over the lights packed into Uniforms.Extra by packLights, plus an
// emissive term, reading the scene's analytic point/spot lights rather
// than sampling a precomputed irradiance map.
func pbrProgram() *raster.Program {
	return &raster.Program{
		VS: func(in *raster.VertexIn, u *raster.Uniforms) raster.VertexOut {
			world := transformPoint(&in.Position, &u.Model)
			var n lin.V3
			n.MultvM3(&in.Normal, &u.Model)
			var clip lin.V4
			clip.MultP(&world, &u.ViewProj)
			var out raster.VertexOut
			out.Clip = clip
			out.NVarying = 2
			out.Varying[raster.VaryingWorldPos] = [4]float32{world.X, world.Y, world.Z, 1}
			out.Varying[raster.VaryingNormal] = [4]float32{n.X, n.Y, n.Z, 0}
			return out
		},
		FS: func(in *raster.FragmentIn, u *raster.Uniforms) raster.FragmentOut {
			n := in.Normal
			n.Unit()
			base := lin.V3{X: u.BaseColor[0], Y: u.BaseColor[1], Z: u.BaseColor[2]}

			const ambient = 0.03
			var total lin.V3
			total.Scale(&base, ambient)

			count := 0
			if u.Extra != nil {
				if c, ok := u.Extra["count"]; ok {
					count = int(c[0])
				}
			}
			if count > 8 {
				count = 8
			}
			for i := 0; i < count; i++ {
				posRange, ok := u.Extra[lightPosKey[i]]
				if !ok {
					continue
				}
				colorIntensity := u.Extra[lightColorKey[i]]
				lp := lin.V3{X: posRange[0], Y: posRange[1], Z: posRange[2]}
				var toLight lin.V3
				toLight.Sub(&lp, &in.WorldPos)
				dist := toLight.Len()
				if dist == 0 {
					continue
				}
				toLight.Unit()
				ndotl := n.Dot(&toLight)
				if ndotl <= 0 {
					continue
				}
				atten := float32(1)
				if rangeCut := posRange[3]; rangeCut > 0 {
					falloff := 1 - dist/rangeCut
					if falloff <= 0 {
						continue
					}
					atten = falloff * falloff
				}
				lc := lin.V3{X: colorIntensity[0], Y: colorIntensity[1], Z: colorIntensity[2]}
				intensity := colorIntensity[3] * ndotl * atten
				var contrib lin.V3
				contrib.Mult(&base, &lc)
				contrib.Scale(&contrib, intensity)
				total.Add(&total, &contrib)
			}

			return raster.FragmentOut{Color: [4]float32{
				total.X + base.X*u.EmissiveStrength,
				total.Y + base.Y*u.EmissiveStrength,
				total.Z + base.Z*u.EmissiveStrength,
				u.BaseColor[3],
			}}
		},
	}
}

// ensureScratchDepth resizes and clears p's private depth buffer to n
// elements cleared to the far plane (1.0), reusing the backing array when
// it is already large enough.
func (p *PBRForwardPass) ensureScratchDepth(n int) []float32 {
	if cap(p.scratchDepth) < n {
		p.scratchDepth = make([]float32, n)
	} else {
		p.scratchDepth = p.scratchDepth[:n]
	}
	for i := range p.scratchDepth {
		p.scratchDepth[i] = 1
	}
	return p.scratchDepth
}

func (p *PBRForwardPass) DescribeContract() Contract {
	requiresLC := p.Mode == ModeForwardPlus || p.Mode == ModeClusteredForward
	return Contract{
		Role:                 RoleForwardOpaque,
		RequiresDepthPrepass: p.Mode == ModeForwardPlus,
		RequiresLightCulling: requiresLC,
		Semantics:            []Semantic{{Access: Write, Tag: "color_hdr", Domain: "screen", Label: "hdr"}},
	}
}

func (p *PBRForwardPass) DescribeIO() (reads, writes []ResourceRef) {
	writes = []ResourceRef{{Name: "hdr", Kind: ResourceRT}}
	return
}

func (p *PBRForwardPass) Execute(ctx *Context, fp *FrameParams) error {
	hdr, ok := fp.Resources.Resolve("hdr")
	if !ok {
		return nil
	}
	if p.Mode == ModeForwardPlus && !ctx.FP.DepthPrepassValid {
		return nil
	}
	if (p.Mode == ModeForwardPlus || p.Mode == ModeClusteredForward) && !ctx.FP.LightCullingValid {
		return nil
	}
	rt := fp.Resources.Registry.Get(hdr)
	if rt == nil {
		return nil
	}

	target := raster.Target{Width: rt.Width, Height: rt.Height, Color: rt.Color, Depth: p.ensureScratchDepth(rt.Width * rt.Height)}

	vp := fp.Camera.ViewProj
	lightsFor := func(_ int, worldAB geom.AABB) []light.Light {
		switch p.Mode {
		case ModeForwardPlus, ModeClusteredForward:
			bins := fp.Lights.Bins
			indices := light.GatherForAABB(&bins, &vp, &worldAB)
			center := worldAB.Center()
			indices = light.NearestByDistance(fp.Lights.Lights, indices, center, 8)
			out := make([]light.Light, len(indices))
			for i, li := range indices {
				out[i] = fp.Lights.Lights[li]
			}
			return out
		default:
			return fp.Lights.Lights
		}
	}

	drawVisible(ctx, fp, p.Rasterizer, &target, pbrProgram(), lightsFor)
	ctx.Debug.PassCount++
	return nil
}

// --- tonemap -----------------------------------------------------------

// TonemapPass resolves the HDR color RT to the LDR present surface using a
// Reinhard curve scaled by Exposure.
type TonemapPass struct {
	base
	Exposure float32
}

func NewTonemapPass(exposure float32) *TonemapPass {
	return &TonemapPass{base: base{id: IDTonemap, queue: backend.Graphics}, Exposure: exposure}
}

func (p *TonemapPass) DescribeContract() Contract {
	return Contract{
		Role: RolePostProcess,
		Semantics: []Semantic{
			{Access: Read, Tag: "color_hdr", Domain: "screen", Label: "hdr"},
			{Access: Write, Tag: "color_ldr", Domain: "screen", Label: "ldr"},
		},
	}
}

func (p *TonemapPass) DescribeIO() (reads, writes []ResourceRef) {
	reads = []ResourceRef{{Name: "hdr", Kind: ResourceRT}}
	writes = []ResourceRef{{Name: "ldr", Kind: ResourceRT}}
	return
}

func (p *TonemapPass) Execute(ctx *Context, fp *FrameParams) error {
	hdr, ok := fp.Resources.Resolve("hdr")
	ldr, ok2 := fp.Resources.Resolve("ldr")
	if !ok || !ok2 {
		return nil
	}
	hdrRT := fp.Resources.Registry.Get(hdr)
	ldrRT := fp.Resources.Registry.Get(ldr)
	if hdrRT == nil || ldrRT == nil {
		return nil
	}
	n := len(ldrRT.Color)
	for i := 0; i < n && i < len(hdrRT.Color); i++ {
		c := hdrRT.Color[i] * p.Exposure
		ldrRT.Color[i] = c / (1 + c)
	}
	ctx.Debug.PassCount++
	return nil
}

// --- light_shafts --------------------------------------------------------

// LightShaftsPass copies the HDR target into the shafts_tmp buffer when
// the frame has at least one light. It does no radial god-ray sampling and
// composites nothing back into the HDR target.
type LightShaftsPass struct{ base }

func NewLightShaftsPass() *LightShaftsPass {
	return &LightShaftsPass{base: base{id: IDLightShafts, queue: backend.Graphics}}
}

func (p *LightShaftsPass) DescribeContract() Contract {
	return Contract{
		Role: RolePostProcess,
		Semantics: []Semantic{
			{Access: Read, Tag: "color_hdr", Domain: "screen", Label: "hdr"},
			{Access: ReadWrite, Tag: "color_hdr", Domain: "screen", Label: "shafts_tmp"},
		},
	}
}

func (p *LightShaftsPass) DescribeIO() (reads, writes []ResourceRef) {
	reads = []ResourceRef{{Name: "hdr", Kind: ResourceRT}}
	writes = []ResourceRef{{Name: "shafts_tmp", Kind: ResourceRT}}
	return
}

func (p *LightShaftsPass) Execute(ctx *Context, fp *FrameParams) error {
	hdr, ok := fp.Resources.Resolve("hdr")
	tmp, ok2 := fp.Resources.Resolve("shafts_tmp")
	if !ok || !ok2 || len(fp.Lights.Lights) == 0 {
		return nil
	}
	hdrRT := fp.Resources.Registry.Get(hdr)
	tmpRT := fp.Resources.Registry.Get(tmp)
	if hdrRT == nil || tmpRT == nil {
		return nil
	}
	for i := range tmpRT.Color {
		tmpRT.Color[i] = hdrRT.Color[i]
	}
	ctx.Debug.PassCount++
	return nil
}

// --- motion_blur ---------------------------------------------------------

// MotionBlurPass samples the LDR target along the motion buffer's
// per-pixel vector into a temporary buffer, a cheap directional-blur
// approximation rather than a full multi-tap kernel.
type MotionBlurPass struct{ base }

func NewMotionBlurPass() *MotionBlurPass {
	return &MotionBlurPass{base: base{id: IDMotionBlur, queue: backend.Graphics}}
}

func (p *MotionBlurPass) DescribeContract() Contract {
	return Contract{
		Role: RolePostProcess,
		Semantics: []Semantic{
			{Access: Read, Tag: "color_ldr", Domain: "screen", Label: "ldr"},
			{Access: Read, Tag: "motion", Domain: "screen", Label: "depth_motion"},
			{Access: Write, Tag: "color_ldr", Domain: "screen", Label: "motion_blur_tmp"},
		},
	}
}

func (p *MotionBlurPass) DescribeIO() (reads, writes []ResourceRef) {
	reads = []ResourceRef{{Name: "ldr", Kind: ResourceRT}, {Name: "depth_motion", Kind: ResourceRT}}
	writes = []ResourceRef{{Name: "motion_blur_tmp", Kind: ResourceRT}}
	return
}

func (p *MotionBlurPass) Execute(ctx *Context, fp *FrameParams) error {
	ldr, ok := fp.Resources.Resolve("ldr")
	dm, ok2 := fp.Resources.Resolve("depth_motion")
	tmp, ok3 := fp.Resources.Resolve("motion_blur_tmp")
	if !ok || !ok2 || !ok3 {
		return nil
	}
	ldrRT := fp.Resources.Registry.Get(ldr)
	dmRT := fp.Resources.Registry.Get(dm)
	tmpRT := fp.Resources.Registry.Get(tmp)
	if ldrRT == nil || dmRT == nil || tmpRT == nil {
		return nil
	}
	w, h := dmRT.Width, dmRT.Height
	const taps = 4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			mx, my := float32(0), float32(0)
			if idx*2+1 < len(dmRT.Motion) {
				mx, my = dmRT.Motion[idx*2], dmRT.Motion[idx*2+1]
			}
			var sum [4]float32
			count := 0
			for t := 0; t < taps; t++ {
				sx := clampInt(x+int(mx*float32(t)/taps), 0, w-1)
				sy := clampInt(y+int(my*float32(t)/taps), 0, h-1)
				si := sy*w + sx
				if si*4+3 < len(ldrRT.Color) {
					for c := 0; c < 4; c++ {
						sum[c] += ldrRT.Color[si*4+c]
					}
					count++
				}
			}
			if count == 0 {
				continue
			}
			for c := 0; c < 4; c++ {
				tmpRT.Color[idx*4+c] = sum[c] / float32(count)
			}
		}
	}
	ctx.Debug.PassCount++
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	_ Pass = (*ShadowMapPass)(nil)
	_ Pass = (*DepthPrepassPass)(nil)
	_ Pass = (*LightCullingPass)(nil)
	_ Pass = (*ClusterBuildPass)(nil)
	_ Pass = (*ClusterLightAssignPass)(nil)
	_ Pass = (*GBufferPass)(nil)
	_ Pass = (*DeferredLightingPass)(nil)
	_ Pass = (*PBRForwardPass)(nil)
	_ Pass = (*TonemapPass)(nil)
	_ Pass = (*LightShaftsPass)(nil)
	_ Pass = (*MotionBlurPass)(nil)
)
