package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.Dot(n))))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatToMat4(t *testing.T) {
	m := QuatIdentity().ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatRotate(t *testing.T) {
	// 90 degrees around Y maps +X to -Z
	q := QuatFromAxisAngle(UnitY, float32(math.Pi/2))
	got := q.Rotate(UnitX)
	if !got.ApproxEqual(Vec3{0, 0, -1}, 0.001) {
		t.Errorf("Rotate: got %v, want (0, 0, -1)", got)
	}
}

func TestQuatFromAxes(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
	}{
		{"identity", QuatIdentity()},
		{"yaw 90", QuatFromAxisAngle(UnitY, float32(math.Pi/2))},
		{"roll 180", QuatFromAxisAngle(UnitZ, float32(math.Pi))},
		{"pitch -120", QuatFromAxisAngle(UnitX, float32(-2*math.Pi/3))},
		{"oblique", QuatFromAxisAngle(Vec3{1, 1, 1}.Normalize(), 2.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromAxes(tt.q.Rotate(UnitX), tt.q.Rotate(UnitY), tt.q.Rotate(UnitZ))
			if !got.ApproxEqual(tt.q, 0.001) {
				t.Errorf("QuatFromAxes: got %v, want %v", got, tt.q)
			}
		})
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(UnitY, float32(math.Pi/2))
	b := QuatFromAxisAngle(UnitX, float32(math.Pi/2))
	v := Vec3{0, 0, 1}

	got := a.Mul(b).Rotate(v)
	want := a.Rotate(b.Rotate(v))
	if !got.ApproxEqual(want, 0.001) {
		t.Errorf("Mul: got %v, want %v", got, want)
	}
}
