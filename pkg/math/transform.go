package math

// Transform is a translation, rotation and scale applied in scale, rotate,
// translate order.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// TransformIdentity returns the transform that leaves points unchanged.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// TransformFromTranslation returns an unrotated, unscaled transform at p.
func TransformFromTranslation(p Vec3) Transform {
	t := TransformIdentity()
	t.Translation = p
	return t
}

// Matrix returns the affine matrix T * R * S.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Translation.X, t.Translation.Y, t.Translation.Z).
		Mul(t.Rotation.ToMat4()).
		Mul(Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// TransformPoint maps a local point into the transform's parent space.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	scaled := Vec3{p.X * t.Scale.X, p.Y * t.Scale.Y, p.Z * t.Scale.Z}
	return t.Rotation.Rotate(scaled).Add(t.Translation)
}

// IsIdentity reports whether t leaves points unchanged.
func (t Transform) IsIdentity() bool {
	return t.Translation.IsZero() &&
		t.Rotation == QuatIdentity() &&
		t.Scale == Vec3{1, 1, 1}
}

// InverseTransformPoint maps a point from parent space back into the
// transform's local space. Zero scale components map to zero.
func (t Transform) InverseTransformPoint(p Vec3) Vec3 {
	local := t.Rotation.Conjugate().Rotate(p.Sub(t.Translation))
	return Vec3{safeDiv(local.X, t.Scale.X), safeDiv(local.Y, t.Scale.Y), safeDiv(local.Z, t.Scale.Z)}
}

// Mul returns the transform that applies other first, then t.
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Translation: t.TransformPoint(other.Translation),
		Rotation:    t.Rotation.Mul(other.Rotation),
		Scale:       Vec3{t.Scale.X * other.Scale.X, t.Scale.Y * other.Scale.Y, t.Scale.Z * other.Scale.Z},
	}
}

func safeDiv(a, b float32) float32 {
	if b == 0 {
		return 0
	}
	return a / b
}
