// Package mesh holds indexed triangle meshes produced and consumed by the
// road, intersection and projection generators.
package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/pkg/math"
)

// ErrIndexOutOfRange is returned by Validate when an index has no vertex.
var ErrIndexOutOfRange = errors.New("mesh: index out of range")

// Mesh is an indexed triangle list. Normals and UVs are optional; when
// present they have one entry per position.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       [][2]float32
	Indices   []uint32
	Bounds    Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// HasUVs reports whether every vertex carries a UV.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) > 0 && len(m.UVs) == len(m.Positions)
}

// Validate checks that every index refers to an existing vertex and the
// index list holds whole triangles.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, len(m.Positions))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Positions: append([]math.Vec3(nil), m.Positions...),
		Normals:   append([]math.Vec3(nil), m.Normals...),
		UVs:       append([][2]float32(nil), m.UVs...),
		Indices:   append([]uint32(nil), m.Indices...),
		Bounds:    m.Bounds,
	}
}

// Transformed returns a copy with positions and normals mapped through t.
func (m *Mesh) Transformed(t math.Transform) *Mesh {
	out := m.Clone()
	toWorld := t.Matrix()
	for i, p := range out.Positions {
		out.Positions[i] = toWorld.TransformPoint(p)
	}
	for i, n := range out.Normals {
		out.Normals[i] = t.Rotation.Rotate(n).Normalize()
	}
	out.ComputeBounds()
	return out
}

// ComputeBounds recalculates Bounds from the positions.
func (m *Mesh) ComputeBounds() {
	if len(m.Positions) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		updateBounds(&b, p)
	}
	m.Bounds = b
}

// ComputeNormals replaces Normals with smooth per-vertex normals: the
// area-weighted sum of the normals of every triangle sharing the vertex.
// Vertices on no triangle get +Y.
func (m *Mesh) ComputeNormals() {
	normals := make([]math.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(normals) || int(b) >= len(normals) || int(c) >= len(normals) {
			continue
		}
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}

	for i, n := range normals {
		if n = n.Normalize(); n.IsZero() {
			n = math.UnitY
		}
		normals[i] = n
	}
	m.Normals = normals
}

// weldEpsilon is the distance within which vertices count as coincident.
const weldEpsilon float32 = 0.001

// WeldNormals averages normals of vertices sharing a position, hiding the
// seam where a closed extrusion meets itself. Positions within weldEpsilon
// of each other are welded, including across grid cell boundaries.
func (m *Mesh) WeldNormals() {
	if len(m.Normals) != len(m.Positions) {
		return
	}

	cellOf := func(p math.Vec3) [3]int32 {
		return [3]int32{
			int32(math32.Floor(p.X / weldEpsilon)),
			int32(math32.Floor(p.Y / weldEpsilon)),
			int32(math32.Floor(p.Z / weldEpsilon)),
		}
	}
	cells := make(map[[3]int32][]int)
	for i, p := range m.Positions {
		c := cellOf(p)
		cells[c] = append(cells[c], i)
	}

	parent := make([]int, len(m.Positions))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i, p := range m.Positions {
		c := cellOf(p)
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					for _, j := range cells[[3]int32{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if j <= i || p.Sub(m.Positions[j]).LengthSquared() > weldEpsilon*weldEpsilon {
							continue
						}
						if a, b := find(i), find(j); a != b {
							parent[b] = a
						}
					}
				}
			}
		}
	}

	groups := make(map[int][]int)
	for i := range m.Positions {
		root := find(i)
		groups[root] = append(groups[root], i)
	}
	for _, indices := range groups {
		if len(indices) < 2 {
			continue
		}
		var sum math.Vec3
		for _, idx := range indices {
			sum = sum.Add(m.Normals[idx])
		}
		avg := sum.Normalize()
		for _, idx := range indices {
			m.Normals[idx] = avg
		}
	}
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
	b.Max = math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
}
