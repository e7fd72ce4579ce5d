package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMeshAllocatesIncreasingNonZeroHandles(t *testing.T) {
	r := New()
	h1 := r.AddMesh(&Mesh{Name: "a"})
	h2 := r.AddMesh(&Mesh{Name: "b"})
	assert.NotZero(t, h1)
	assert.Greater(t, uint32(h2), uint32(h1))
	assert.Equal(t, "a", r.GetMesh(h1).Name)
}

func TestGetUnknownHandleReturnsNil(t *testing.T) {
	r := New()
	assert.Nil(t, r.GetMesh(MeshHandle(999)))
	assert.Nil(t, r.Get(RTHandle(999)))
}

func TestEnsureTransientColorHDRIsIdempotentAtSameExtents(t *testing.T) {
	r := New()
	h1 := r.EnsureTransientColorHDR("hdr", 64, 64)
	h2 := r.EnsureTransientColorHDR("hdr", 64, 64)
	assert.Equal(t, h1, h2)
}

func TestEnsureTransientColorHDRReallocatesOnResize(t *testing.T) {
	r := New()
	h1 := r.EnsureTransientColorHDR("hdr", 64, 64)
	h2 := r.EnsureTransientColorHDR("hdr", 128, 128)
	assert.NotEqual(t, h1, h2)
	rt := r.Get(h2)
	assert.Equal(t, 128, rt.Width)
}

func TestMeshVertexCountMatchesPositionBuffer(t *testing.T) {
	m := &Mesh{Positions: make([]float32, 12)}
	assert.Equal(t, 4, m.VertexCount())
}

func TestResetInvalidatesAllHandleSpaces(t *testing.T) {
	r := New()
	h := r.AddMesh(&Mesh{Name: "a"})
	rt := r.EnsureTransientColorLDR("ldr", 32, 32)
	r.Reset()
	assert.Nil(t, r.GetMesh(h))
	assert.Nil(t, r.Get(rt))

	h2 := r.AddMesh(&Mesh{Name: "b"})
	assert.Greater(t, uint32(h2), uint32(h)) // handle counters keep increasing across Reset, so h stays invalid.
}
