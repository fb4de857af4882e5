// Package spline evaluates cubic Bézier, Catmull-Rom and uniform B-spline
// curves and provides arc-length parameterization over them.
package spline

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/pkg/math"
)

// BasisKind selects the blending functions used to interpolate control points.
type BasisKind uint8

const (
	// CubicBezier uses groups of 4 points sharing endpoints. Points 0 and 3
	// of each group lie on the curve, 1 and 2 are handles.
	CubicBezier BasisKind = iota
	// CatmullRom passes through every interior control point.
	CatmullRom
	// BSpline is a uniform cubic B-spline; it approximates its control points.
	BSpline
)

// MinPoints is the minimum number of control points every basis needs.
const MinPoints = 4

// Next cycles to the next basis: Bézier, Catmull-Rom, B-Spline, Bézier.
func (k BasisKind) Next() BasisKind {
	switch k {
	case CubicBezier:
		return CatmullRom
	case CatmullRom:
		return BSpline
	default:
		return CubicBezier
	}
}

// MinPoints returns the minimum number of control points required.
func (k BasisKind) MinPoints() int {
	return MinPoints
}

// String returns the display name.
func (k BasisKind) String() string {
	switch k {
	case CubicBezier:
		return "Cubic Bézier"
	case CatmullRom:
		return "Catmull-Rom"
	case BSpline:
		return "B-Spline"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// MarshalText encodes the basis as its short name.
func (k BasisKind) MarshalText() ([]byte, error) {
	switch k {
	case CubicBezier:
		return []byte("bezier"), nil
	case CatmullRom:
		return []byte("catmull-rom"), nil
	case BSpline:
		return []byte("bspline"), nil
	default:
		return nil, fmt.Errorf("unknown basis %d", uint8(k))
	}
}

// UnmarshalText parses a short basis name, case-insensitively.
func (k *BasisKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "bezier", "cubic-bezier", "cubicbezier":
		*k = CubicBezier
	case "catmull-rom", "catmullrom":
		*k = CatmullRom
	case "bspline", "b-spline":
		*k = BSpline
	default:
		return fmt.Errorf("unknown spline basis %q", text)
	}
	return nil
}

// SegmentCount returns the number of cubic segments the points form.
// Bézier ignores closed.
func SegmentCount(kind BasisKind, points []math.Vec3, closed bool) int {
	n := len(points)
	if n < kind.MinPoints() {
		return 0
	}
	if kind == CubicBezier {
		return (n - 1) / 3
	}
	if closed {
		return n
	}
	return n - 3
}

// Evaluate returns the position at parameter t in [0, 1] across the whole
// curve. ok is false when there are too few points.
func Evaluate(kind BasisKind, points []math.Vec3, t float32, closed bool) (math.Vec3, bool) {
	switch kind {
	case CubicBezier:
		p, ok := bezierWindow(points, t)
		if !ok {
			return math.Vec3{}, false
		}
		return cubicBezier(p, p.localT), true
	case CatmullRom:
		p, ok := window(points, t, closed, -1)
		if !ok {
			return math.Vec3{}, false
		}
		return catmullRom(p, p.localT), true
	case BSpline:
		p, ok := window(points, t, closed, 0)
		if !ok {
			return math.Vec3{}, false
		}
		return bspline(p, p.localT), true
	}
	return math.Vec3{}, false
}

// EvaluateTangent returns the unnormalized derivative with respect to the
// segment-local parameter at t.
func EvaluateTangent(kind BasisKind, points []math.Vec3, t float32, closed bool) (math.Vec3, bool) {
	switch kind {
	case CubicBezier:
		p, ok := bezierWindow(points, t)
		if !ok {
			return math.Vec3{}, false
		}
		return cubicBezierDerivative(p, p.localT), true
	case CatmullRom:
		p, ok := window(points, t, closed, -1)
		if !ok {
			return math.Vec3{}, false
		}
		return catmullRomDerivative(p, p.localT), true
	case BSpline:
		p, ok := window(points, t, closed, 0)
		if !ok {
			return math.Vec3{}, false
		}
		return bsplineDerivative(p, p.localT), true
	}
	return math.Vec3{}, false
}

// segment holds the four control points of one cubic span and the
// parameter local to it.
type segment struct {
	p0, p1, p2, p3 math.Vec3
	localT         float32
}

// locate maps a global t onto a segment index clamped to [0, segments-1]
// and the remainder within that segment.
func locate(t float32, segments int) (int, float32) {
	scaled := t * float32(segments)
	idx := int(math32.Floor(scaled))
	if idx > segments-1 {
		idx = segments - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx, scaled - float32(idx)
}

func bezierWindow(points []math.Vec3, t float32) (segment, bool) {
	segments := SegmentCount(CubicBezier, points, false)
	if segments == 0 {
		return segment{}, false
	}
	idx, localT := locate(t, segments)
	i := idx * 3
	return segment{points[i], points[i+1], points[i+2], points[i+3], localT}, true
}

// window gathers the four points for Catmull-Rom (offset -1) or B-spline
// (offset 0). Closed curves wrap indices; open curves start at the segment.
func window(points []math.Vec3, t float32, closed bool, offset int) (segment, bool) {
	segments := SegmentCount(CatmullRom, points, closed)
	if segments == 0 {
		return segment{}, false
	}
	idx, localT := locate(t, segments)
	n := len(points)
	if !closed {
		return segment{points[idx], points[idx+1], points[idx+2], points[idx+3], localT}, true
	}
	at := func(i int) math.Vec3 {
		return points[((i%n)+n)%n]
	}
	s := idx + offset
	return segment{at(s), at(s + 1), at(s + 2), at(s + 3), localT}, true
}

func cubicBezier(s segment, t float32) math.Vec3 {
	t2 := t * t
	t3 := t2 * t
	mt := 1 - t
	mt2 := mt * mt
	mt3 := mt2 * mt

	return s.p0.Scale(mt3).
		Add(s.p1.Scale(3 * mt2 * t)).
		Add(s.p2.Scale(3 * mt * t2)).
		Add(s.p3.Scale(t3))
}

func cubicBezierDerivative(s segment, t float32) math.Vec3 {
	t2 := t * t
	mt := 1 - t
	mt2 := mt * mt

	return s.p1.Sub(s.p0).Scale(3 * mt2).
		Add(s.p2.Sub(s.p1).Scale(6 * mt * t)).
		Add(s.p3.Sub(s.p2).Scale(3 * t2))
}

func catmullRom(s segment, t float32) math.Vec3 {
	t2 := t * t
	t3 := t2 * t

	a := s.p1.Scale(2)
	b := s.p2.Sub(s.p0)
	c := s.p0.Scale(2).Sub(s.p1.Scale(5)).Add(s.p2.Scale(4)).Sub(s.p3)
	d := s.p0.Neg().Add(s.p1.Scale(3)).Sub(s.p2.Scale(3)).Add(s.p3)

	return a.Add(b.Scale(t)).Add(c.Scale(t2)).Add(d.Scale(t3)).Scale(0.5)
}

func catmullRomDerivative(s segment, t float32) math.Vec3 {
	t2 := t * t

	b := s.p2.Sub(s.p0)
	c := s.p0.Scale(2).Sub(s.p1.Scale(5)).Add(s.p2.Scale(4)).Sub(s.p3)
	d := s.p0.Neg().Add(s.p1.Scale(3)).Sub(s.p2.Scale(3)).Add(s.p3)

	return b.Add(c.Scale(2 * t)).Add(d.Scale(3 * t2)).Scale(0.5)
}

func bspline(s segment, t float32) math.Vec3 {
	t2 := t * t
	t3 := t2 * t

	return s.p0.Scale(1 - 3*t + 3*t2 - t3).
		Add(s.p1.Scale(4 - 6*t2 + 3*t3)).
		Add(s.p2.Scale(1 + 3*t + 3*t2 - 3*t3)).
		Add(s.p3.Scale(t3)).
		Scale(1.0 / 6.0)
}

func bsplineDerivative(s segment, t float32) math.Vec3 {
	t2 := t * t

	return s.p0.Scale(-3 + 6*t - 3*t2).
		Add(s.p1.Scale(-12*t + 9*t2)).
		Add(s.p2.Scale(3 + 6*t - 9*t2)).
		Add(s.p3.Scale(3 * t2)).
		Scale(1.0 / 6.0)
}
