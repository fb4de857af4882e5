package spline

import "github.com/Faultbox/spline3d/pkg/math"

// Curve is an ordered set of control points interpolated by a basis.
type Curve struct {
	Basis  BasisKind   `yaml:"basis"`
	Points []math.Vec3 `yaml:"points"`
	Closed bool        `yaml:"closed"`
}

// New creates an open curve.
func New(basis BasisKind, points []math.Vec3) *Curve {
	return &Curve{Basis: basis, Points: points}
}

// NewClosed creates a closed curve.
func NewClosed(basis BasisKind, points []math.Vec3) *Curve {
	return &Curve{Basis: basis, Points: points, Closed: true}
}

// IsValid reports whether the curve has enough points to evaluate.
func (c *Curve) IsValid() bool {
	return c != nil && len(c.Points) >= c.Basis.MinPoints()
}

// Evaluate returns the position at t in [0, 1].
func (c *Curve) Evaluate(t float32) (math.Vec3, bool) {
	return Evaluate(c.Basis, c.Points, t, c.Closed)
}

// EvaluateTangent returns the unnormalized tangent at t.
func (c *Curve) EvaluateTangent(t float32) (math.Vec3, bool) {
	return EvaluateTangent(c.Basis, c.Points, t, c.Closed)
}

// SegmentCount returns the number of cubic segments.
func (c *Curve) SegmentCount() int {
	return SegmentCount(c.Basis, c.Points, c.Closed)
}

// Sample returns segments*samplesPerSegment+1 points at uniform parameter
// steps, or nil when the curve is not ready.
func (c *Curve) Sample(samplesPerSegment int) []math.Vec3 {
	segments := c.SegmentCount()
	if segments == 0 || samplesPerSegment <= 0 {
		return nil
	}

	total := segments*samplesPerSegment + 1
	points := make([]math.Vec3, 0, total)
	for i := range total {
		t := float32(i) / float32(total-1)
		if p, ok := c.Evaluate(t); ok {
			points = append(points, p)
		}
	}
	return points
}

// AddPoint appends a control point.
func (c *Curve) AddPoint(p math.Vec3) {
	c.Points = append(c.Points, p)
}

// InsertPoint inserts a control point before index. Indexes past the end
// are ignored; it returns whether the point was inserted.
func (c *Curve) InsertPoint(index int, p math.Vec3) bool {
	if index < 0 || index > len(c.Points) {
		return false
	}
	c.Points = append(c.Points, math.Vec3{})
	copy(c.Points[index+1:], c.Points[index:])
	c.Points[index] = p
	return true
}

// RemovePoint removes the control point at index and returns it.
// Out of range indexes are ignored.
func (c *Curve) RemovePoint(index int) (math.Vec3, bool) {
	if index < 0 || index >= len(c.Points) {
		return math.Vec3{}, false
	}
	p := c.Points[index]
	c.Points = append(c.Points[:index], c.Points[index+1:]...)
	return p, true
}

// SetPoint moves an existing control point.
func (c *Curve) SetPoint(index int, p math.Vec3) bool {
	if index < 0 || index >= len(c.Points) {
		return false
	}
	c.Points[index] = p
	return true
}

// ToggleClosed switches between an open and a closed curve.
func (c *Curve) ToggleClosed() {
	c.Closed = !c.Closed
}

// CycleBasis switches to the next basis kind.
func (c *Curve) CycleBasis() {
	c.Basis = c.Basis.Next()
}

// Clone returns a deep copy.
func (c *Curve) Clone() *Curve {
	out := *c
	out.Points = append([]math.Vec3(nil), c.Points...)
	return &out
}
