// Package distribution places copies of a source object along a curve and
// keeps them in step as the curve or the distribution changes.
package distribution

import (
	"fmt"
	"strings"

	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/surface"
	"github.com/Faultbox/spline3d/pkg/math"
)

// DefaultCount is the instance count of a new distribution.
const DefaultCount = 10

// Spacing selects how instance parameters are chosen along the curve.
type Spacing uint8

const (
	// Uniform spaces instances at equal arc length.
	Uniform Spacing = iota
	// Parametric spaces instances at equal parameter steps, which bunches
	// them where control points are close together.
	Parametric
)

// String returns the spacing name.
func (s Spacing) String() string {
	if s == Parametric {
		return "parametric"
	}
	return "uniform"
}

// MarshalText encodes the spacing by name.
func (s Spacing) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "uniform" or "parametric".
func (s *Spacing) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "uniform":
		*s = Uniform
	case "parametric":
		*s = Parametric
	default:
		return fmt.Errorf("unknown spacing %q", text)
	}
	return nil
}

// OrientationMode selects how instances are rotated.
type OrientationMode uint8

const (
	// PositionOnly leaves instances unrotated.
	PositionOnly OrientationMode = iota
	// AlignToTangent points instances along the curve.
	AlignToTangent
)

// Orientation is an OrientationMode with the up vector used when aligning.
type Orientation struct {
	Mode OrientationMode
	Up   math.Vec3
}

// AlignToTangentWithUp returns a tangent-aligned orientation.
func AlignToTangentWithUp(up math.Vec3) Orientation {
	return Orientation{Mode: AlignToTangent, Up: up}
}

// Visual is what an instance copies from its source for rendering.
type Visual struct {
	Mesh     string `yaml:"mesh"`
	Material string `yaml:"material"`
}

// Distribution spawns Count copies of Source along Curve.
type Distribution struct {
	Curve       handle.Handle
	Source      handle.Handle
	Count       int
	Orientation Orientation
	Spacing     Spacing
	// Offset is applied in the instance's rotated frame.
	Offset  math.Vec3
	Enabled bool
	// Projection, when set, drops instances onto the surface.
	Projection *surface.Config
}

// New creates an enabled distribution with uniform spacing and no
// rotation.
func New(curve, source handle.Handle, count int) *Distribution {
	return &Distribution{
		Curve:       curve,
		Source:      source,
		Count:       count,
		Orientation: Orientation{Mode: PositionOnly, Up: math.UnitY},
		Spacing:     Uniform,
		Enabled:     true,
	}
}

// Instance is one spawned copy.
type Instance struct {
	Distribution    handle.Handle
	Index           int
	Transform       math.Transform
	Visual          Visual
	NeedsProjection bool
}
