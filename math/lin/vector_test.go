package lin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestV3AddSubScale(t *testing.T) {
	a := V3{X: 1, Y: 2, Z: 3}
	b := V3{X: 4, Y: 5, Z: 6}
	var sum, diff, scaled V3
	sum.Add(&a, &b)
	assert.Equal(t, V3{X: 5, Y: 7, Z: 9}, sum)

	diff.Sub(&b, &a)
	assert.Equal(t, V3{X: 3, Y: 3, Z: 3}, diff)

	scaled.Scale(&a, 2)
	assert.Equal(t, V3{X: 2, Y: 4, Z: 6}, scaled)
}

func TestV3DotCrossLen(t *testing.T) {
	x := V3{X: 1, Y: 0, Z: 0}
	y := V3{X: 0, Y: 1, Z: 0}
	assert.InDelta(t, float32(0), x.Dot(&y), 1e-6)

	var cross V3
	cross.Cross(&x, &y)
	assert.Equal(t, V3{X: 0, Y: 0, Z: 1}, cross)

	v := V3{X: 3, Y: 4, Z: 0}
	assert.InDelta(t, float32(5), v.Len(), 1e-6)
}

func TestV3UnitNormalizesLength(t *testing.T) {
	v := V3{X: 0, Y: 3, Z: 4}
	v.Unit()
	assert.InDelta(t, float32(1), v.Len(), 1e-5)
}

func TestV3LerpInterpolatesBetweenEndpoints(t *testing.T) {
	a := V3{X: 0, Y: 0, Z: 0}
	b := V3{X: 10, Y: 0, Z: 0}
	var mid V3
	mid.Lerp(&a, &b, 0.5)
	assert.InDelta(t, float32(5), mid.X, 1e-6)
}

func TestV3AeqToleratesFloatNoise(t *testing.T) {
	a := V3{X: 1, Y: 1, Z: 1}
	b := V3{X: 1 + 1e-7, Y: 1, Z: 1}
	assert.True(t, a.Aeq(&b))
}
