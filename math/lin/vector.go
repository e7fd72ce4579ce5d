// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Vector performs 3 or 4 element vector math needed for the render-path:
// transforms, culling primitives, and the rasterizer's clip-space math.

// V3 is a 3 element vector. This can also be used as a point.
type V3 struct {
	X float32 // increments as X moves to the right.
	Y float32 // increments as Y moves up from bottom left.
	Z float32 // increments as Z moves out of the screen (right handed view space).
}

// V4 is a 4 element vector. It can be used for points and directions where,
// as a point it would have W:1, and as a direction it would have W:0. It
// also doubles as clip-space and RGBA-float storage.
type V4 struct {
	X float32
	Y float32
	Z float32
	W float32
}

// Eq (==) returns true if each element in v has the same value as a.
func (v *V3) Eq(a *V3) bool { return v.X == a.X && v.Y == a.Y && v.Z == a.Z }

// Eq (==) returns true if each element in v has the same value as a.
func (v *V4) Eq(a *V4) bool { return v.X == a.X && v.Y == a.Y && v.Z == a.Z && v.W == a.W }

// Aeq (~=) returns true if v and a are equal within Epsilon per component.
func (v *V3) Aeq(a *V3) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) && Aeq(v.Z, a.Z) }

// AeqZ (~=) returns true if v is close enough to the zero vector.
func (v *V3) AeqZ() bool { return v.Dot(v) < Epsilon }

// GetS returns the scalar values of the vector.
func (v *V3) GetS() (x, y, z float32) { return v.X, v.Y, v.Z }

// GetComponent returns the i'th component of v (0=X, 1=Y, 2=Z). Used where
// an axis index is only known at runtime, e.g. iterating OBB axes.
func (v *V3) GetComponent(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// GetS returns the scalar values of the vector.
func (v *V4) GetS() (x, y, z, w float32) { return v.X, v.Y, v.Z, v.W }

// SetS (=) sets the vector elements to the given values. Returns v.
func (v *V3) SetS(x, y, z float32) *V3 {
	v.X, v.Y, v.Z = x, y, z
	return v
}

// SetS (=) sets the vector elements to the given values. Returns v.
func (v *V4) SetS(x, y, z, w float32) *V4 {
	v.X, v.Y, v.Z, v.W = x, y, z, w
	return v
}

// Set (=, copy) sets v to have the same values as a. Returns v.
func (v *V3) Set(a *V3) *V3 {
	v.X, v.Y, v.Z = a.X, a.Y, a.Z
	return v
}

// Set (=, copy) sets v to have the same values as a. Returns v.
func (v *V4) Set(a *V4) *V4 {
	v.X, v.Y, v.Z, v.W = a.X, a.Y, a.Z, a.W
	return v
}

// Min updates v to the minimum of the corresponding elements of a and b.
func (v *V3) Min(a, b *V3) *V3 {
	v.X, v.Y, v.Z = Min(a.X, b.X), Min(a.Y, b.Y), Min(a.Z, b.Z)
	return v
}

// Max updates v to the maximum of the corresponding elements of a and b.
func (v *V3) Max(a, b *V3) *V3 {
	v.X, v.Y, v.Z = Max(a.X, b.X), Max(a.Y, b.Y), Max(a.Z, b.Z)
	return v
}

// Abs updates v to the absolute value of its own elements. Returns v.
func (v *V3) Abs() *V3 {
	v.X, v.Y, v.Z = Abs(v.X), Abs(v.Y), Abs(v.Z)
	return v
}

// Neg (-) sets v to be the negative of a. Returns v.
func (v *V3) Neg(a *V3) *V3 {
	v.X, v.Y, v.Z = -a.X, -a.Y, -a.Z
	return v
}

// Add (+) sets v to a+b. v may alias a or b. Returns v.
func (v *V3) Add(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X+b.X, a.Y+b.Y, a.Z+b.Z
	return v
}

// Add (+) sets v to a+b. Returns v.
func (v *V4) Add(a, b *V4) *V4 {
	v.X, v.Y, v.Z, v.W = a.X+b.X, a.Y+b.Y, a.Z+b.Z, a.W+b.W
	return v
}

// Sub (-) sets v to a-b. v may alias a or b. Returns v.
func (v *V3) Sub(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return v
}

// Sub (-) sets v to a-b. Returns v.
func (v *V4) Sub(a, b *V4) *V4 {
	v.X, v.Y, v.Z, v.W = a.X-b.X, a.Y-b.Y, a.Z-b.Z, a.W-b.W
	return v
}

// Mult (*) sets v to the component-wise product of a and b. Returns v.
func (v *V3) Mult(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X*b.X, a.Y*b.Y, a.Z*b.Z
	return v
}

// Scale (*=) sets v to a scaled by s. Returns v.
func (v *V3) Scale(a *V3, s float32) *V3 {
	v.X, v.Y, v.Z = a.X*s, a.Y*s, a.Z*s
	return v
}

// Scale (*=) sets v to a scaled by s. Returns v.
func (v *V4) Scale(a *V4, s float32) *V4 {
	v.X, v.Y, v.Z, v.W = a.X*s, a.Y*s, a.Z*s, a.W*s
	return v
}

// Div (/=) divides each element of v by s. No-op if s is zero.
func (v *V3) Div(s float32) *V3 {
	if s != 0 {
		inv := 1 / s
		v.X, v.Y, v.Z = v.X*inv, v.Y*inv, v.Z*inv
	}
	return v
}

// Div (/=) divides each element of v by s. No-op if s is zero.
func (v *V4) Div(s float32) *V4 {
	if s != 0 {
		inv := 1 / s
		v.X, v.Y, v.Z, v.W = v.X*inv, v.Y*inv, v.Z*inv, v.W*inv
	}
	return v
}

// Dot returns the dot product of v and a.
func (v *V3) Dot(a *V3) float32 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z }

// Dot returns the dot product of v and a.
func (v *V4) Dot(a *V4) float32 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z + v.W*a.W }

// Len returns the length (magnitude) of v.
func (v *V3) Len() float32 { return Sqrt(v.Dot(v)) }

// LenSqr returns the squared length of v.
func (v *V3) LenSqr() float32 { return v.Dot(v) }

// Dist returns the distance between points v and a.
func (v *V3) Dist(a *V3) float32 { return Sqrt(v.DistSqr(a)) }

// DistSqr returns the squared distance between points v and a.
func (v *V3) DistSqr(a *V3) float32 {
	dx, dy, dz := a.X-v.X, a.Y-v.Y, a.Z-v.Z
	return dx*dx + dy*dy + dz*dz
}

// Unit normalizes v in place. No-op if v has zero length. Returns v.
func (v *V3) Unit() *V3 {
	length := v.Len()
	if length != 0 {
		return v.Div(length)
	}
	return v
}

// Cross sets v to the cross product of a and b. v may alias a or b.
func (v *V3) Cross(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.Y*b.Z-a.Z*b.Y, a.Z*b.X-a.X*b.Z, a.X*b.Y-a.Y*b.X
	return v
}

// Lerp sets v to the linear interpolation between a and b by fraction.
func (v *V3) Lerp(a, b *V3, fraction float32) *V3 {
	v.X = (b.X-a.X)*fraction + a.X
	v.Y = (b.Y-a.Y)*fraction + a.Y
	v.Z = (b.Z-a.Z)*fraction + a.Z
	return v
}

// Lerp sets v to the linear interpolation between a and b by ratio.
func (v *V4) Lerp(a, b *V4, ratio float32) *V4 {
	v.X = (b.X-a.X)*ratio + a.X
	v.Y = (b.Y-a.Y)*ratio + a.Y
	v.Z = (b.Z-a.Z)*ratio + a.Z
	v.W = (b.W-a.W)*ratio + a.W
	return v
}

// vector-matrix operations
// ============================================================================

// MultvM updates v to be row vector rv multiplied by matrix m. v may alias rv.
//
//	                  [ Xx Xy Xz Xw ]
//	[ x y z w ] x     [ Yx Yy Yz Yw ]  =  [ x' y' z' w' ]
//	                  [ Zx Zy Zz Zw ]
//	                  [ Wx Wy Wz Ww ]
func (v *V4) MultvM(rv *V4, m *M4) *V4 {
	x := rv.X*m.Xx + rv.Y*m.Yx + rv.Z*m.Zx + rv.W*m.Wx
	y := rv.X*m.Xy + rv.Y*m.Yy + rv.Z*m.Zy + rv.W*m.Wy
	z := rv.X*m.Xz + rv.Y*m.Yz + rv.Z*m.Zz + rv.W*m.Wz
	w := rv.X*m.Xw + rv.Y*m.Yw + rv.Z*m.Zw + rv.W*m.Ww
	v.X, v.Y, v.Z, v.W = x, y, z, w
	return v
}

// MultP transforms point p (implicit w=1) by matrix m and writes the result
// (with its homogeneous w) into v. v may alias p.
func (v *V4) MultP(p *V3, m *M4) *V4 {
	x := p.X*m.Xx + p.Y*m.Yx + p.Z*m.Zx + m.Wx
	y := p.X*m.Xy + p.Y*m.Yy + p.Z*m.Zy + m.Wy
	z := p.X*m.Xz + p.Y*m.Yz + p.Z*m.Zz + m.Wz
	w := p.X*m.Xw + p.Y*m.Yw + p.Z*m.Zw + m.Ww
	v.X, v.Y, v.Z, v.W = x, y, z, w
	return v
}

// MultvM3 updates v to be row vector rv (a direction, w implicitly 0)
// multiplied by the upper-left 3x3 of matrix m. Used to move normals and
// directions without translation. v may alias rv.
func (v *V3) MultvM3(rv *V3, m *M4) *V3 {
	x := rv.X*m.Xx + rv.Y*m.Yx + rv.Z*m.Zx
	y := rv.X*m.Xy + rv.Y*m.Yy + rv.Z*m.Zy
	z := rv.X*m.Xz + rv.Y*m.Yz + rv.Z*m.Zz
	v.X, v.Y, v.Z = x, y, z
	return v
}

// convenience allocators
// ============================================================================

// NewV3 creates a new, all zero, 3D vector.
func NewV3() *V3 { return &V3{} }

// NewV3S creates a new 3D vector using the given scalars.
func NewV3S(x, y, z float32) *V3 { return &V3{x, y, z} }

// NewV4 creates a new, all zero, 4D vector.
func NewV4() *V4 { return &V4{} }

// NewV4S creates a new 4D vector using the given scalars.
func NewV4S(x, y, z, w float32) *V4 { return &V4{x, y, z, w} }
