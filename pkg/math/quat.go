package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s := math32.Sin(angle / 2)
	c := math32.Cos(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// QuatFromAxes creates a quaternion from the columns of an orthonormal
// rotation matrix: the images of local +X, +Y and +Z.
func QuatFromAxes(x, y, z Vec3) Quat {
	m00, m01, m02 := x.X, x.Y, x.Z
	m10, m11, m12 := y.X, y.Y, y.Z
	m20, m21, m22 := z.X, z.Y, z.Z

	if m22 <= 0 {
		dif10 := m11 - m00
		omm22 := 1 - m22
		if dif10 <= 0 {
			fourXSq := omm22 - dif10
			inv := 0.5 / math32.Sqrt(fourXSq)
			return Quat{fourXSq * inv, (m01 + m10) * inv, (m02 + m20) * inv, (m12 - m21) * inv}
		}
		fourYSq := omm22 + dif10
		inv := 0.5 / math32.Sqrt(fourYSq)
		return Quat{(m01 + m10) * inv, fourYSq * inv, (m12 + m21) * inv, (m20 - m02) * inv}
	}

	sum10 := m11 + m00
	opm22 := 1 + m22
	if sum10 <= 0 {
		fourZSq := opm22 - sum10
		inv := 0.5 / math32.Sqrt(fourZSq)
		return Quat{(m02 + m20) * inv, (m12 + m21) * inv, fourZSq * inv, (m01 - m10) * inv}
	}
	fourWSq := opm22 + sum10
	inv := 0.5 / math32.Sqrt(fourWSq)
	return Quat{(m12 - m21) * inv, (m20 - m02) * inv, (m01 - m10) * inv, fourWSq * inv}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.Dot(q))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Mul multiplies two quaternions (combines rotations). The result applies
// other first, then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Forward returns the direction local -Z maps to.
func (q Quat) Forward() Vec3 {
	return q.Rotate(Vec3{0, 0, -1})
}

// Vec4 returns the components as a Vec4 in X, Y, Z, W order.
func (q Quat) Vec4() Vec4 {
	return Vec4{q.X, q.Y, q.Z, q.W}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	x := q.Rotate(UnitX)
	y := q.Rotate(UnitY)
	z := q.Rotate(UnitZ)
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
}

// ApproxEqual reports whether q and other encode the same rotation within tol.
func (q Quat) ApproxEqual(other Quat, tol float32) bool {
	return math32.Abs(math32.Abs(q.Dot(other))-1) <= tol
}
