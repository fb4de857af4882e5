// Package geometry builds orthonormal frames along curves for orienting and
// extruding geometry.
package geometry

import "github.com/Faultbox/spline3d/pkg/math"

// degenerate is the squared length below which an axis is treated as zero.
const degenerate = 0.001

// Frame is an orthonormal basis attached to a point on a curve.
type Frame struct {
	Tangent math.Vec3
	Right   math.Vec3
	Up      math.Vec3
}

// FromTangent builds a frame using world +Y as the preferred up.
func FromTangent(tangent math.Vec3) Frame {
	return FromTangentWithUp(tangent, math.UnitY)
}

// FromTangentWithUp builds a frame around tangent. When tangent is parallel
// to preferredUp, world +X is used as the reference axis instead.
func FromTangentWithUp(tangent, preferredUp math.Vec3) Frame {
	tangent = tangent.Normalize()

	right := tangent.Cross(preferredUp).Normalize()
	if right.LengthSquared() < degenerate {
		right = tangent.Cross(math.UnitX).Normalize()
	}
	up := right.Cross(tangent).Normalize()

	return Frame{Tangent: tangent, Right: right, Up: up}
}

// FromForward builds a look-at style frame: forward maps to -Tangent.
func FromForward(forward, preferredUp math.Vec3) Frame {
	forward = forward.Normalize()

	right := preferredUp.Cross(forward).Normalize()
	if right.LengthSquared() < degenerate {
		right = math.UnitX.Cross(forward).Normalize()
	}
	up := forward.Cross(right).Normalize()

	return Frame{Tangent: forward.Neg(), Right: right, Up: up}
}

// IsValid reports whether both Right and Up are non-degenerate.
func (f Frame) IsValid() bool {
	return f.Right.LengthSquared() > degenerate && f.Up.LengthSquared() > degenerate
}

// ToRotation returns the rotation mapping local +X to Right, +Y to Up and
// -Z to Tangent. Invalid frames yield the identity.
func (f Frame) ToRotation() math.Quat {
	if !f.IsValid() {
		return math.QuatIdentity()
	}
	return math.QuatFromAxes(f.Right, f.Up, f.Tangent.Neg())
}

// ToRotationWithDirection is ToRotation for travel along the tangent
// (direction >= 0) or against it.
func (f Frame) ToRotationWithDirection(direction float32) math.Quat {
	if !f.IsValid() {
		return math.QuatIdentity()
	}

	forward := f.Tangent.Neg()
	if direction < 0 {
		forward = f.Tangent
	}

	right := f.Up.Cross(forward).Normalize()
	if right.LengthSquared() < degenerate {
		return math.QuatIdentity()
	}
	up := forward.Cross(right).Normalize()

	return math.QuatFromAxes(right, up, forward)
}

// TransformPoint maps a local (right, up, tangent) offset to world space.
func (f Frame) TransformPoint(origin, local math.Vec3) math.Vec3 {
	return origin.
		Add(f.Right.Scale(local.X)).
		Add(f.Up.Scale(local.Y)).
		Add(f.Tangent.Scale(local.Z))
}

// TransformProfilePoint maps a cross-section coordinate to a world offset.
func (f Frame) TransformProfilePoint(x, y float32) math.Vec3 {
	return f.Right.Scale(x).Add(f.Up.Scale(y))
}
