// Package road extrudes cross-section profiles along curves into road
// meshes and fills the gap where several roads meet.
package road

import (
	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/pkg/mesh"
)

// Default road settings.
const (
	DefaultSegments     = 32
	DefaultUVTileLength = 1.0
)

// Road extrudes Template along a curve. Template is a segment mesh whose
// front edge (minimum Z) defines the cross-section.
type Road struct {
	Curve        handle.Handle
	Template     *mesh.Mesh
	Segments     int
	UVTileLength float32
	AutoUpdate   bool
}

// New creates a road with default segment count and UV tiling.
func New(curve handle.Handle, template *mesh.Mesh) *Road {
	return &Road{
		Curve:        curve,
		Template:     template,
		Segments:     DefaultSegments,
		UVTileLength: DefaultUVTileLength,
		AutoUpdate:   true,
	}
}

// HalfWidth returns half the template's profile width, or fallback when the
// template has no usable profile.
func (r *Road) HalfWidth(fallback float32) float32 {
	if r == nil || r.Template == nil {
		return fallback
	}
	profile, ok := ExtractProfile(r.Template, false)
	if !ok {
		return fallback
	}
	if hw := ProfileHalfWidth(profile); hw > 0 {
		return hw
	}
	return fallback
}
