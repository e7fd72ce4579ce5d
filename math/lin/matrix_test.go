package lin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestM4IdentityIsMultiplicativeIdentity(t *testing.T) {
	id := NewM4I()
	m := NewM4I().TranslateTM(1, 2, 3)
	var out M4
	out.Mult(m, id)
	assert.True(t, out.Aeq(m))
}

func TestM4TranslateTMMovesAPoint(t *testing.T) {
	m := NewM4I().TranslateTM(1, 2, 3)
	p := V3{X: 0, Y: 0, Z: 0}
	var out V4
	out.MultP(&p, m)
	assert.InDelta(t, float32(1), out.X, 1e-6)
	assert.InDelta(t, float32(2), out.Y, 1e-6)
	assert.InDelta(t, float32(3), out.Z, 1e-6)
}

func TestM4PerspProjectsNearPlaneInsideClipRange(t *testing.T) {
	proj := NewM4().Persp(60, 1, 1, 100)
	near := V3{X: 0, Y: 0, Z: -1}
	var clip V4
	clip.MultP(&near, proj)
	ndcZ := clip.Z / clip.W
	assert.InDelta(t, float32(-1), ndcZ, 1e-4)
}

func TestM4TransposeRoundTrips(t *testing.T) {
	m := &M4{Xx: 1, Xy: 2, Xz: 3, Xw: 4, Yx: 5, Yy: 6, Yz: 7, Yw: 8, Zx: 9, Zy: 10, Zz: 11, Zw: 12, Wx: 13, Wy: 14, Wz: 15, Ww: 16}
	var t1, t2 M4
	t1.Transpose(m)
	t2.Transpose(&t1)
	assert.True(t, t2.Eq(m))
}
