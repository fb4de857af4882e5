package road

import (
	"github.com/Faultbox/spline3d/pkg/geometry"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// Generate sweeps the template's profile along the curve, sampling
// segments+1 rows at uniform parameter steps. U comes from the profile and
// V runs from 0 to uvTileLength along the curve. ok is false when the curve
// is not ready or the template has no profile.
func Generate(c *spline.Curve, template *mesh.Mesh, segments int, uvTileLength float32) (*mesh.Mesh, bool) {
	if !c.IsValid() {
		return nil, false
	}
	profile, ok := ExtractProfile(template, true)
	if !ok || len(profile) == 0 {
		return nil, false
	}
	if segments < 1 {
		segments = 1
	}

	n := len(profile)
	total := n * (segments + 1)
	m := &mesh.Mesh{
		Positions: make([]math.Vec3, 0, total),
		UVs:       make([][2]float32, 0, total),
	}

	for seg := 0; seg <= segments; seg++ {
		t := float32(seg) / float32(segments)
		position, ok := c.Evaluate(t)
		if !ok {
			return nil, false
		}
		tangent := math.UnitZ
		if d, ok := c.EvaluateTangent(t); ok {
			tangent = d.Normalize()
		}
		frame := geometry.FromTangent(tangent)

		v := t * uvTileLength
		for _, pv := range profile {
			offset := frame.TransformProfilePoint(pv.Position.X, pv.Position.Y)
			m.Positions = append(m.Positions, position.Add(offset))

			var u float32
			if pv.HasUV {
				u = pv.UV[0]
			}
			m.UVs = append(m.UVs, [2]float32{u, v})
		}
	}

	for seg := range segments {
		row := seg * n
		next := (seg + 1) * n
		for i := 0; i < n-1; i++ {
			a := uint32(row + i)
			b := uint32(row + i + 1)
			cc := uint32(next + i)
			d := uint32(next + i + 1)
			m.Indices = append(m.Indices, a, b, cc, b, d, cc)
		}
	}

	m.ComputeNormals()
	if c.Closed && c.Basis != spline.CubicBezier {
		m.WeldNormals()
	}
	m.ComputeBounds()
	return m, true
}
