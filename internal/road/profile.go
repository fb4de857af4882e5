package road

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
)

// profileTolerance is how close to the minimum Z a vertex must be to belong
// to the front edge.
const profileTolerance = 0.001

// ProfileVertex is one point of a road cross-section.
type ProfileVertex struct {
	Position math.Vec3
	UV       [2]float32
	HasUV    bool
}

// CreateSegmentMesh builds a straight road segment template running from
// Z=0 to Z=length. With a positive curb height and width the cross-section
// has raised curbs on both sides; otherwise it is flat.
func CreateSegmentMesh(width, length, curbHeight, curbWidth float32) *mesh.Mesh {
	hw := width / 2
	roadHW := hw - curbWidth

	var profile []math.Vec3
	if curbHeight > 0 && curbWidth > 0 {
		profile = []math.Vec3{
			{X: -hw, Y: curbHeight},
			{X: -roadHW, Y: curbHeight},
			{X: -roadHW},
			{X: roadHW},
			{X: roadHW, Y: curbHeight},
			{X: hw, Y: curbHeight},
		}
	} else {
		profile = []math.Vec3{{X: -hw}, {X: hw}}
	}

	n := len(profile)
	m := &mesh.Mesh{
		Positions: make([]math.Vec3, 0, n*2),
		Normals:   make([]math.Vec3, 0, n*2),
		UVs:       make([][2]float32, 0, n*2),
	}
	for _, z := range []float32{0, length} {
		v := float32(0)
		if z != 0 {
			v = 1
		}
		for i, p := range profile {
			m.Positions = append(m.Positions, math.Vec3{X: p.X, Y: p.Y, Z: z})
			m.Normals = append(m.Normals, math.UnitY)
			m.UVs = append(m.UVs, [2]float32{float32(i) / float32(n-1), v})
		}
	}

	for i := 0; i < n-1; i++ {
		frontLeft := uint32(i)
		frontRight := uint32(i + 1)
		backLeft := uint32(i + n)
		backRight := uint32(i + 1 + n)
		m.Indices = append(m.Indices,
			frontLeft, frontRight, backLeft,
			frontRight, backRight, backLeft,
		)
	}
	m.ComputeBounds()
	return m
}

// ExtractProfile returns the template's front edge: every vertex within
// tolerance of the minimum Z, sorted by X. ok is false for an empty mesh.
func ExtractProfile(m *mesh.Mesh, includeUVs bool) ([]ProfileVertex, bool) {
	if m == nil || len(m.Positions) == 0 {
		return nil, false
	}

	minZ := m.Positions[0].Z
	for _, p := range m.Positions[1:] {
		minZ = min(minZ, p.Z)
	}

	withUVs := includeUVs && m.HasUVs()
	var profile []ProfileVertex
	for i, p := range m.Positions {
		if math32.Abs(p.Z-minZ) >= profileTolerance {
			continue
		}
		v := ProfileVertex{Position: p}
		if withUVs {
			v.UV = m.UVs[i]
			v.HasUV = true
		}
		profile = append(profile, v)
	}

	sort.SliceStable(profile, func(i, j int) bool {
		return profile[i].Position.X < profile[j].Position.X
	})
	return profile, true
}

// ProfileHalfWidth returns half the X extent of a profile.
func ProfileHalfWidth(profile []ProfileVertex) float32 {
	if len(profile) == 0 {
		return 0
	}
	lo, hi := profile[0].Position.X, profile[0].Position.X
	for _, v := range profile[1:] {
		lo = min(lo, v.Position.X)
		hi = max(hi, v.Position.X)
	}
	return (hi - lo) / 2
}
