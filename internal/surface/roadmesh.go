package surface

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
)

const (
	// rowTolerance groups vertices whose V coordinates differ by less.
	rowTolerance = 1e-4
	// smoothWindow is how many rows on each side are blended.
	smoothWindow = 3
)

// rowProjection is the offset and camber rotation for one cross-section.
type rowProjection struct {
	offset   math.Vec3
	rotation math.Quat
	hit      bool
}

// ProjectRoadMesh drapes a generated road mesh over the surface. Vertices
// are grouped into cross-section rows by UV V, one ray is cast per row and
// the resulting offsets and camber rotations are smoothed across
// neighbouring rows before being applied. world is the mesh's world
// transform. It returns false, leaving the mesh untouched, when no row hit.
func ProjectRoadMesh(rc Raycaster, m *mesh.Mesh, world math.Transform, cfg Config) bool {
	if !cfg.Enabled || rc == nil || len(m.Positions) == 0 {
		return false
	}

	rows := groupRows(m)
	if len(rows) == 0 {
		return false
	}

	toWorld := world.Matrix()
	toLocal := toWorld.Inverse()

	centers := make([]math.Vec3, len(rows))
	for i, row := range rows {
		centers[i] = toWorld.TransformPoint(rowBaseCenter(m.Positions, row))
	}

	raw := make([]rowProjection, len(rows))
	hits := 0
	for i, center := range centers {
		raw[i] = rowProjection{rotation: math.QuatIdentity()}

		hit, ok := CastProjectionRay(rc, center, cfg)
		if !ok {
			continue
		}
		adjusted := hit.WithNormalOffset(cfg.NormalOffset)
		raw[i] = rowProjection{
			offset:   adjusted.Sub(center),
			rotation: camberRotation(estimateTangent(centers, i), hit.Normal),
			hit:      true,
		}
		hits++
	}
	if hits == 0 {
		return false
	}

	smoothed := smoothRows(raw)
	for i, row := range rows {
		center := centers[i]
		p := smoothed[i]
		for _, idx := range row {
			relative := toWorld.TransformPoint(m.Positions[idx]).Sub(center)
			adjusted := center.Add(p.rotation.Rotate(relative)).Add(p.offset)
			m.Positions[idx] = toLocal.TransformPoint(adjusted)
		}
	}

	m.ComputeNormals()
	m.ComputeBounds()
	return true
}

// groupRows buckets vertex indexes by V, ordered by ascending V. Without
// UVs every vertex is its own row.
func groupRows(m *mesh.Mesh) [][]int {
	if !m.HasUVs() {
		rows := make([][]int, len(m.Positions))
		for i := range rows {
			rows[i] = []int{i}
		}
		return rows
	}

	type row struct {
		v       float32
		indices []int
	}
	var rows []row
	for idx, uv := range m.UVs {
		found := false
		for i := range rows {
			if math32.Abs(rows[i].v-uv[1]) < rowTolerance {
				rows[i].indices = append(rows[i].indices, idx)
				found = true
				break
			}
		}
		if !found {
			rows = append(rows, row{v: uv[1], indices: []int{idx}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].v < rows[j].v })
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = r.indices
	}
	return out
}

// rowBaseCenter is the mean X and Z of the row at its lowest Y.
func rowBaseCenter(positions []math.Vec3, row []int) math.Vec3 {
	if len(row) == 0 {
		return math.Vec3{}
	}
	var sum math.Vec3
	minY := float32(math32.MaxFloat32)
	for _, idx := range row {
		p := positions[idx]
		sum = sum.Add(p)
		minY = min(minY, p.Y)
	}
	n := float32(len(row))
	return math.Vec3{X: sum.X / n, Y: minY, Z: sum.Z / n}
}

// estimateTangent uses forward differences at the ends and the average of
// both neighbours elsewhere.
func estimateTangent(centers []math.Vec3, i int) math.Vec3 {
	if len(centers) < 2 {
		return math.UnitZ
	}
	var tangent math.Vec3
	switch {
	case i == 0:
		tangent = centers[1].Sub(centers[0])
	case i >= len(centers)-1:
		tangent = centers[i].Sub(centers[i-1])
	default:
		forward := centers[i+1].Sub(centers[i])
		backward := centers[i].Sub(centers[i-1])
		tangent = forward.Add(backward).Scale(0.5)
	}
	return tangent.Normalize()
}

// camberRotation tilts a cross-section about tangent so that world up,
// seen perpendicular to the tangent, lines up with the surface normal.
func camberRotation(tangent, normal math.Vec3) math.Quat {
	if tangent.LengthSquared() < 0.001 {
		return math.QuatIdentity()
	}

	effectiveUp := normal.Sub(tangent.Scale(normal.Dot(tangent))).Normalize()
	if effectiveUp.LengthSquared() < 0.001 {
		return math.QuatIdentity()
	}
	up := math.UnitY.Sub(tangent.Scale(math.UnitY.Dot(tangent))).Normalize()
	if up.LengthSquared() < 0.001 {
		return math.QuatIdentity()
	}

	angle := math32.Acos(clampf(up.Dot(effectiveUp), -1, 1))
	if up.Cross(effectiveUp).Dot(tangent) < 0 {
		angle = -angle
	}
	return math.QuatFromAxisAngle(tangent, angle)
}

// smoothRows blends each row with its neighbours using weights
// exp(-d²/window). Rows without a hit contribute nothing. Quaternions are
// averaged component-wise after flipping them into the same hemisphere.
func smoothRows(raw []rowProjection) []rowProjection {
	out := make([]rowProjection, len(raw))
	for i := range raw {
		start := max(0, i-smoothWindow)
		end := min(len(raw), i+smoothWindow+1)

		var totalWeight float32
		var sumOffset math.Vec3
		var sumRotation math.Vec4
		for j := start; j < end; j++ {
			if !raw[j].hit {
				continue
			}
			d := float32(i - j)
			w := math32.Exp(-d * d / smoothWindow)

			sumOffset = sumOffset.Add(raw[j].offset.Scale(w))
			q := raw[j].rotation.Vec4()
			if sumRotation.Dot(q) < 0 {
				q = q.Scale(-1)
			}
			sumRotation = sumRotation.Add(q.Scale(w))
			totalWeight += w
		}

		p := rowProjection{rotation: math.QuatIdentity(), hit: raw[i].hit}
		if totalWeight > 0.001 {
			p.offset = sumOffset.Scale(1 / totalWeight)
			avg := sumRotation.Scale(1 / totalWeight)
			p.rotation = math.Quat{X: avg[0], Y: avg[1], Z: avg[2], W: avg[3]}.Normalize()
		}
		out[i] = p
	}
	return out
}
