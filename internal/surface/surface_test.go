package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/spline3d/pkg/formats"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// notReady never answers, like a physics world still loading.
type notReady struct{}

func (notReady) CastRay(math.Vec3, math.Vec3, float32, bool, *uint32) (Hit, bool) {
	return Hit{}, false
}

func (notReady) Ready() bool { return false }

// slope rises one unit in Y per unit in X.
func slope(t *testing.T) *Heightfield {
	t.Helper()
	h := formats.NewHeightmap(11, 11, 1)
	h.Origin = [3]float32{-5, 0, -5}
	for z := range 11 {
		for x := range 11 {
			h.Set(x, z, float32(x)-5)
		}
	}
	hf := NewHeightfield(h)
	require.NotNil(t, hf)
	return hf
}

func TestProjectPointOnPlane(t *testing.T) {
	cfg := DefaultConfig()
	hit, ok := ProjectPoint(Plane{Height: 2}, math.Vec3{X: 1, Y: 5, Z: 3}, cfg)
	require.True(t, ok)
	assert.True(t, hit.Position.ApproxEqual(math.Vec3{X: 1, Y: 2.1, Z: 3}, 1e-5), "got %v", hit.Position)
	assert.Equal(t, math.UnitY, hit.Normal)
}

func TestProjectPointBelowOriginOffset(t *testing.T) {
	// The ray starts 10 above the point, so a surface slightly above the
	// point still catches it.
	hit, ok := ProjectPoint(Plane{Height: 3}, math.Vec3{Y: 1}, DefaultConfig())
	require.True(t, ok)
	assert.InDelta(t, 3.1, hit.Position.Y, 1e-5)
}

func TestProjectPointMisses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDistance = 5
	_, ok := ProjectPoint(Plane{Height: -50}, math.Vec3{}, cfg)
	assert.False(t, ok, "beyond max distance")

	cfg = DefaultConfig()
	cfg.Enabled = false
	_, ok = ProjectPoint(Plane{}, math.Vec3{Y: 1}, cfg)
	assert.False(t, ok, "disabled")

	mask := uint32(4)
	cfg = DefaultConfig()
	cfg.LayerMask = &mask
	_, ok = ProjectPoint(Plane{Layers: 1}, math.Vec3{Y: 1}, cfg)
	assert.False(t, ok, "layer filtered")

	p := math.Vec3{X: 7, Y: 1}
	assert.Equal(t, p, ProjectPointOrOriginal(notReady{}, p, DefaultConfig()))
}

func TestHeightfieldInterpolation(t *testing.T) {
	hf := slope(t)
	assert.InDelta(t, 0.5, hf.Height(0.5, 2.25), 1e-5)
	assert.InDelta(t, -5, hf.Height(-100, 0), 1e-5, "clamped to edge")

	n := hf.Normal(0, 0)
	want := math.Vec3{X: -1, Y: 1}.Normalize()
	assert.True(t, n.ApproxEqual(want, 1e-4), "normal %v", n)
}

func TestHeightfieldCastRay(t *testing.T) {
	hf := slope(t)

	hit, ok := hf.CastRay(math.Vec3{X: 2, Y: 10}, math.Vec3{Y: -1}, 100, true, nil)
	require.True(t, ok)
	assert.InDelta(t, 8, hit.Distance, 1e-4)

	_, ok = hf.CastRay(math.Vec3{X: 20, Y: 10}, math.Vec3{Y: -1}, 100, true, nil)
	assert.False(t, ok, "off the grid")

	hit, ok = hf.CastRay(math.Vec3{X: 2, Y: -10}, math.Vec3{Y: -1}, 100, true, nil)
	require.True(t, ok)
	assert.Equal(t, float32(0), hit.Distance, "solid ray from inside")

	// Slanted ray: from (-4, 10, 0) heading down and along +X.
	dir := math.Vec3{X: 1, Y: -1}.Normalize()
	hit, ok = hf.CastRay(math.Vec3{X: -4, Y: 10}, dir, 100, true, nil)
	require.True(t, ok)
	p := math.Vec3{X: -4, Y: 10}.Add(dir.Scale(hit.Distance))
	assert.InDelta(t, hf.Height(p.X, p.Z), p.Y, 1e-3)
	assert.InDelta(t, 3, p.X, 1e-2)
}

func TestHeightfieldCastRayFromFarAway(t *testing.T) {
	// Grazing ray whose distance is far beyond float32 resolution of the
	// march step; it must terminate without a hit.
	h := formats.NewHeightmap(4, 4, 4)
	h.Set(3, 3, 1)
	hf := NewHeightfield(h)

	_, ok := hf.CastRay(math.Vec3{X: -1e8, Y: 0.5, Z: 1.5}, math.UnitX, 1e9, true, nil)
	assert.False(t, ok)

	hit, ok := hf.CastRay(math.Vec3{X: 6, Y: 5, Z: 1.5}, math.Vec3{Y: -1}, 100, true, nil)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.Distance, 1e-4)
}

func TestProjectTransformAlignsToNormal(t *testing.T) {
	hf := slope(t)
	cfg := DefaultConfig()
	cfg.AlignToNormal = true

	tr := math.TransformFromTranslation(math.Vec3{Y: 3})
	require.True(t, ProjectTransform(hf, &tr, cfg))

	normal := hf.Normal(0, 0)
	assert.True(t, tr.Rotation.Rotate(math.UnitY).ApproxEqual(normal, 1e-4))
	assert.True(t, tr.Translation.ApproxEqual(normal.Scale(0.1), 1e-4), "at %v", tr.Translation)

	assert.False(t, ProjectTransform(notReady{}, &tr, cfg))
}

func TestProjectedCurveCache(t *testing.T) {
	c := spline.New(spline.CatmullRom, []math.Vec3{{X: -3}, {X: -1}, {X: 1}, {X: 3}})
	samples := c.Sample(4)

	p := ProjectCurve(Plane{Height: 1}, c, samples, DefaultConfig(), DefaultVisualOffset)
	require.Len(t, p.ControlPoints, 4)
	assert.InDelta(t, 1.4, p.ControlPoints[0].Y, 1e-5)
	assert.False(t, NeedsReprojection(c, p))
	assert.Equal(t, p.CurvePoints, EffectiveCurvePoints(samples, p))
	assert.Equal(t, p.ControlPoints, EffectiveControlPoints(c, p))

	missed := ProjectCurve(notReady{}, c, samples, DefaultConfig(), DefaultVisualOffset)
	assert.True(t, NeedsReprojection(c, missed))
	assert.True(t, NeedsReprojection(c, nil))

	assert.Equal(t, c.Points, EffectiveControlPoints(c, nil))
	assert.Equal(t, samples, EffectiveCurvePoints(samples, nil))
	assert.Nil(t, EffectiveCurvePoints(nil, nil))
}

func TestRayIntersectBounds(t *testing.T) {
	hf := slope(t)
	r := Ray{Origin: math.Vec3{X: -20, Y: 0}, Direction: math.UnitX}
	enter, exit, ok := r.IntersectBounds(hf.Bounds())
	require.True(t, ok)
	assert.InDelta(t, 15, enter, 1e-5)
	assert.InDelta(t, 25, exit, 1e-5)

	r.Direction = math.UnitX.Neg()
	_, _, ok = r.IntersectBounds(hf.Bounds())
	assert.False(t, ok)
}
