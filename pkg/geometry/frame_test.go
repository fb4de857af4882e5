package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/spline3d/pkg/math"
)

const tol = 0.001

func TestFromTangentZ(t *testing.T) {
	f := FromTangent(math.UnitZ)

	assert.True(t, f.IsValid())
	assert.True(t, f.Tangent.ApproxEqual(math.UnitZ, tol), "tangent %v", f.Tangent)
	assert.True(t, f.Up.ApproxEqual(math.UnitY, tol), "up %v", f.Up)
	assert.True(t, f.Right.ApproxEqual(math.UnitX.Neg(), tol), "right %v", f.Right)
}

func TestFromTangentDegenerate(t *testing.T) {
	f := FromTangent(math.UnitY)
	assert.True(t, f.IsValid())
	assert.InDelta(t, 0, f.Right.Dot(f.Tangent), tol)
	assert.InDelta(t, 0, f.Up.Dot(f.Tangent), tol)
}

func TestZeroTangentIsInvalid(t *testing.T) {
	f := FromTangent(math.Vec3{})
	assert.False(t, f.IsValid())
	assert.Equal(t, math.QuatIdentity(), f.ToRotation())
}

func TestToRotationMapsAxes(t *testing.T) {
	f := FromTangent(math.Vec3{X: 1, Z: 1})
	q := f.ToRotation()

	assert.True(t, q.Rotate(math.UnitX).ApproxEqual(f.Right, tol))
	assert.True(t, q.Rotate(math.UnitY).ApproxEqual(f.Up, tol))
	assert.True(t, q.Forward().ApproxEqual(f.Tangent, tol))
}

func TestToRotationWithDirection(t *testing.T) {
	f := FromTangent(math.UnitZ)

	fwd := f.ToRotationWithDirection(1)
	assert.True(t, fwd.ApproxEqual(f.ToRotation(), tol))

	back := f.ToRotationWithDirection(-1)
	assert.True(t, back.Forward().ApproxEqual(f.Tangent.Neg(), tol), "forward %v", back.Forward())
	assert.True(t, back.Rotate(math.UnitY).ApproxEqual(math.UnitY, tol))
}

func TestFromForward(t *testing.T) {
	f := FromForward(math.UnitZ.Neg(), math.UnitY)
	assert.True(t, f.IsValid())
	assert.True(t, f.Tangent.ApproxEqual(math.UnitZ, tol))
	assert.True(t, f.Right.ApproxEqual(math.UnitX.Neg(), tol), "right %v", f.Right)
	assert.True(t, f.Up.ApproxEqual(math.UnitY, tol), "up %v", f.Up)
	assert.True(t, f.ToRotation().ApproxEqual(FromTangent(math.UnitZ).ToRotation(), tol))
}

func TestTransformPoint(t *testing.T) {
	f := FromTangent(math.UnitZ)
	origin := math.Vec3{X: 10}
	got := f.TransformPoint(origin, math.Vec3{X: 1, Y: 2, Z: 3})
	want := origin.Add(f.Right).Add(f.Up.Scale(2)).Add(f.Tangent.Scale(3))
	assert.True(t, got.ApproxEqual(want, tol))

	assert.True(t, f.TransformProfilePoint(2, 1).ApproxEqual(math.Vec3{X: -2, Y: 1}, tol))
}
