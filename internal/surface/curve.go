package surface

import (
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// DefaultVisualOffset lifts projected curve visuals above the surface so
// they do not z-fight with it.
const DefaultVisualOffset = 0.3

// ProjectedCurve caches a curve's sampled and control points draped over
// the surface, for drawing.
type ProjectedCurve struct {
	CurvePoints   []math.Vec3
	ControlPoints []math.Vec3
}

// ProjectCurvePoint projects p and lifts it a further visualOffset along
// the surface normal. Misses return p unchanged.
func ProjectCurvePoint(rc Raycaster, p math.Vec3, cfg Config, visualOffset float32) math.Vec3 {
	hit, ok := ProjectPoint(rc, p, cfg)
	if !ok {
		return p
	}
	return hit.Position.Add(hit.Normal.Scale(visualOffset))
}

// ProjectCurve builds a projected cache from curve samples and the curve's
// control points.
func ProjectCurve(rc Raycaster, c *spline.Curve, samples []math.Vec3, cfg Config, visualOffset float32) *ProjectedCurve {
	out := &ProjectedCurve{
		CurvePoints:   make([]math.Vec3, len(samples)),
		ControlPoints: make([]math.Vec3, len(c.Points)),
	}
	for i, p := range samples {
		out.CurvePoints[i] = ProjectCurvePoint(rc, p, cfg, visualOffset)
	}
	for i, p := range c.Points {
		out.ControlPoints[i] = ProjectCurvePoint(rc, p, cfg, visualOffset)
	}
	return out
}

// NeedsReprojection reports whether a cache looks stale: missing, sized for
// a different control point count, or with its first point unmoved, which
// means the projection missed.
func NeedsReprojection(c *spline.Curve, p *ProjectedCurve) bool {
	if p == nil {
		return true
	}
	if len(p.ControlPoints) != len(c.Points) {
		return true
	}
	if len(c.Points) > 0 && c.Points[0].Sub(p.ControlPoints[0]).LengthSquared() < 0.0001 {
		return true
	}
	return false
}

// EffectiveControlPoints returns the projected control points when a cache
// exists, otherwise the curve's own.
func EffectiveControlPoints(c *spline.Curve, p *ProjectedCurve) []math.Vec3 {
	if p != nil {
		return p.ControlPoints
	}
	return c.Points
}

// EffectiveCurvePoints prefers non-empty projected samples, then non-empty
// plain samples. It returns nil when neither is available.
func EffectiveCurvePoints(samples []math.Vec3, p *ProjectedCurve) []math.Vec3 {
	if p != nil && len(p.CurvePoints) > 0 {
		return p.CurvePoints
	}
	if len(samples) > 0 {
		return samples
	}
	return nil
}
