// Package light models the light variants the render-path culls and bins:
// Point, Spot, RectArea and TubeArea lights, each as a tagged union arm
// with its own culling volume and packed GPU representation, plus the
// tile/cluster binning stage (C4) that assigns light volumes to screen
// tiles or 3D cluster cells and gathers per-object candidate lights.
//
// Grounded on the teacher's light.go (position/color/kind fields) and the
// broad-phase partitioning idiom of physics/broad.go (flat slices, no
// per-pair allocation in the hot loop), generalized across the four light
// kinds and the geom tagged-union shapes.
package light

import (
	"sort"

	"github.com/kestrelgfx/forge/geom"
	"github.com/kestrelgfx/forge/math/lin"
)

// Kind tags which arm of the Light tagged union is populated.
type Kind uint8

const (
	Point Kind = iota
	Spot
	RectArea
	TubeArea
)

// Light is a tagged union over the four light variants the render-path's
// forward+/clustered techniques consume. Every binning and packing
// operation exhaustively switches on Kind.
type Light struct {
	Kind     Kind
	StableID uint64

	Position lin.V3
	Color    lin.V3
	Intensity float32
	Range     float32 // attenuation cutoff distance, all kinds.

	// Spot
	Direction  lin.V3
	InnerCone  float32 // radians, full attenuation starts here
	OuterCone  float32 // radians, attenuation ends here

	// RectArea
	Right  lin.V3 // local right axis, unit length
	Up     lin.V3 // local up axis, unit length
	Width  float32
	Height float32

	// TubeArea
	P0, P1 lin.V3 // tube endpoints
	Radius float32
}

// Volume returns the conservative culling volume for the light, used by the
// binning stage to classify it against tile/cluster ConvexCells.
func (l *Light) Volume() geom.Shape {
	switch l.Kind {
	case Point:
		return geom.NewSphere(l.Position, l.Range)
	case Spot:
		return geom.NewConeFrustum(l.Position, l.Direction, 0, l.Range,
			0, l.Range*lin.Tan(l.OuterCone))
	case RectArea:
		var n lin.V3
		n.Cross(&l.Right, &l.Up)
		half := lin.V3{X: l.Width * 0.5, Y: l.Height * 0.5, Z: l.Range}
		axes := [3]lin.V3{l.Right, l.Up, n}
		return geom.NewOBB(l.Position, axes, half)
	case TubeArea:
		return geom.NewCapsule(l.P0, l.P1, l.Radius+l.Range)
	}
	return geom.Shape{}
}

// Packed is the fixed-size GPU-ready representation of a light: four
// float4 slots regardless of Kind, so a uniform buffer can hold a flat
// array of them without per-kind branching on the shader side.
type Packed struct {
	PositionRange    [4]float32 // xyz = position/apex, w = range
	ColorIntensity   [4]float32 // xyz = color, w = intensity
	DirectionCone    [4]float32 // xyz = direction/axis, w = outer cone (spot) or 0
	ExtraKind        [4]float32 // kind-specific extras: x = inner cone (spot), width (rect, y = height) or radius (tube); w = float32(Kind)
}

// Pack converts l into its GPU-ready representation.
func (l *Light) Pack() Packed {
	p := Packed{
		PositionRange:  [4]float32{l.Position.X, l.Position.Y, l.Position.Z, l.Range},
		ColorIntensity: [4]float32{l.Color.X, l.Color.Y, l.Color.Z, l.Intensity},
		ExtraKind:      [4]float32{0, 0, 0, float32(l.Kind)},
	}
	switch l.Kind {
	case Spot:
		p.DirectionCone = [4]float32{l.Direction.X, l.Direction.Y, l.Direction.Z, l.OuterCone}
		p.ExtraKind[0] = l.InnerCone
	case RectArea:
		p.DirectionCone = [4]float32{l.Right.X, l.Right.Y, l.Right.Z, 0}
		p.ExtraKind[0], p.ExtraKind[1] = l.Width, l.Height
	case TubeArea:
		p.DirectionCone = [4]float32{l.P1.X - l.P0.X, l.P1.Y - l.P0.Y, l.P1.Z - l.P0.Z, 0}
		p.ExtraKind[0] = l.Radius
	}
	return p
}

// VolumeProvider lets an application substitute its own culling-volume
// derivation (e.g. a tighter spot cone, imported from an authoring tool)
// without forking the binning stage. Mirrors the original's
// ILightVolumeProvider.
type VolumeProvider interface {
	Volume(l *Light) geom.Shape
}

// defaultVolumeProvider calls Light.Volume directly.
type defaultVolumeProvider struct{}

func (defaultVolumeProvider) Volume(l *Light) geom.Shape { return l.Volume() }

// DefaultVolumeProvider is the binner's VolumeProvider when none is given.
var DefaultVolumeProvider VolumeProvider = defaultVolumeProvider{}

// GatherForAABB returns the union of light scene-indices (into lights, the
// same slice a Binner.Bin call was given) across every tile ab's
// world-space footprint overlaps — the bin-membership union the per-object
// gathering rule defines, not a distance cut. Rebuilds each tile's
// ConvexCell the same way Binner.Bin does (tileCell) and classifies ab
// against it; Z slices of a tile are unioned together since bins carries no
// per-slice depth-range data of its own. Callers apply the eight-nearest
// cut with NearestByDistance.
func GatherForAABB(bins *TileBins, viewProj *lin.M4, ab *geom.AABB) []int32 {
	if bins == nil || bins.TilesX == 0 || bins.TilesY == 0 || len(bins.Indices) == 0 {
		return nil
	}
	zSlices := bins.ZSlices
	if zSlices < 1 {
		zSlices = 1
	}
	seen := map[int32]bool{}
	var out []int32
	for ty := 0; ty < bins.TilesY; ty++ {
		for tx := 0; tx < bins.TilesX; tx++ {
			cell := tileCell(viewProj, tx, ty, bins.TilesX, bins.TilesY)
			if cell.ClassifyAABB(ab) == geom.Outside {
				continue
			}
			for z := 0; z < zSlices; z++ {
				cellIdx := (ty*bins.TilesX+tx)*zSlices + z
				if cellIdx >= len(bins.Indices) {
					continue
				}
				for _, li := range bins.Indices[cellIdx] {
					if seen[li] {
						continue
					}
					seen[li] = true
					out = append(out, li)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NearestByDistance truncates indices (into lights) to the n closest to
// center, ties broken by the smaller StableID — the caller-side limit the
// per-object gathering rule applies on top of GatherForAABB's bin union.
func NearestByDistance(lights []Light, indices []int32, center lin.V3, n int) []int32 {
	type cand struct {
		idx  int32
		dist float32
		id   uint64
	}
	candidates := make([]cand, 0, len(indices))
	for _, li := range indices {
		if li < 0 || int(li) >= len(lights) {
			continue
		}
		lp := lights[li].Position
		candidates = append(candidates, cand{idx: li, dist: center.DistSqr(&lp), id: lights[li].StableID})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]int32, len(candidates))
	for i, c := range candidates {
		out[i] = c.idx
	}
	return out
}
