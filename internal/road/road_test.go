package road

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
	"github.com/Faultbox/spline3d/pkg/spline"
)

func straightCurve() *spline.Curve {
	return spline.New(spline.CubicBezier, []math.Vec3{
		{Z: 0}, {Z: 1}, {Z: 2}, {Z: 3},
	})
}

func TestCreateSegmentMeshFlat(t *testing.T) {
	m := CreateSegmentMesh(4, 2, 0, 0)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 2, m.TriangleCount())
	require.NoError(t, m.Validate())
	assert.Equal(t, math.Vec3{X: -2}, m.Bounds.Min)
	assert.Equal(t, math.Vec3{X: 2, Z: 2}, m.Bounds.Max)
	assert.Equal(t, [2]float32{1, 1}, m.UVs[3])
}

func TestCreateSegmentMeshCurbed(t *testing.T) {
	m := CreateSegmentMesh(6, 1, 0.2, 0.5)
	assert.Equal(t, 12, m.VertexCount())
	assert.Equal(t, 10, m.TriangleCount())

	profile, ok := ExtractProfile(m, true)
	require.True(t, ok)
	require.Len(t, profile, 6)
	for i := 1; i < len(profile); i++ {
		assert.LessOrEqual(t, profile[i-1].Position.X, profile[i].Position.X)
	}
	assert.True(t, profile[0].HasUV)
	assert.InDelta(t, 3, ProfileHalfWidth(profile), 1e-6)
}

func TestExtractProfileEmpty(t *testing.T) {
	_, ok := ExtractProfile(&mesh.Mesh{}, true)
	assert.False(t, ok)
	_, ok = ExtractProfile(nil, true)
	assert.False(t, ok)
}

func TestGenerateStraightRoad(t *testing.T) {
	const width = 5
	const segments = 8

	m, ok := Generate(straightCurve(), CreateSegmentMesh(width, 1, 0, 0), segments, 4)
	require.True(t, ok)

	assert.Equal(t, 2*(segments+1), m.VertexCount())
	assert.Equal(t, 2*segments, m.TriangleCount())
	require.NoError(t, m.Validate())

	size := m.Bounds.Size()
	assert.InDelta(t, width, size.X, 1e-4)
	assert.InDelta(t, 3, size.Z, 1e-4)

	for i, n := range m.Normals {
		assert.True(t, n.ApproxEqual(math.UnitY, 1e-4), "normal %d = %v", i, n)
	}
	assert.InDelta(t, 4, m.UVs[len(m.UVs)-1][1], 1e-6)
	assert.Equal(t, float32(0), m.UVs[0][1])
}

func TestGenerateNotReady(t *testing.T) {
	c := spline.New(spline.CatmullRom, []math.Vec3{{}, {X: 1}})
	_, ok := Generate(c, CreateSegmentMesh(2, 1, 0, 0), 4, 1)
	assert.False(t, ok)

	_, ok = Generate(straightCurve(), &mesh.Mesh{}, 4, 1)
	assert.False(t, ok)
}

func TestRoadHalfWidth(t *testing.T) {
	r := New(1, CreateSegmentMesh(7, 1, 0, 0))
	assert.InDelta(t, 3.5, r.HalfWidth(DefaultHalfWidth), 1e-6)

	r.Template = nil
	assert.Equal(t, float32(DefaultHalfWidth), r.HalfWidth(DefaultHalfWidth))
	assert.Equal(t, DefaultSegments, r.Segments)
}
