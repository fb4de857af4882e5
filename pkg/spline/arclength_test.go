package spline

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/spline3d/pkg/math"
)

// bunched has tightly packed points at the start and a long final span.
func bunched() *Curve {
	return New(CatmullRom, []math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.5, Y: 0, Z: 0.2},
		{X: 1, Y: 0, Z: 0.1},
		{X: 1.5, Y: 0, Z: 0.4},
		{X: 9, Y: 0, Z: 3},
		{X: 14, Y: 0, Z: 2},
	})
}

func TestArcLengthStraightLine(t *testing.T) {
	c := New(CubicBezier, []math.Vec3{
		{X: 0}, {X: 1}, {X: 2}, {X: 3},
	})
	table := ComputeArcLengthTable(c, DefaultArcLengthSamples)
	assert.Equal(t, DefaultArcLengthSamples+1, table.Len())
	assert.InDelta(t, 3.0, table.TotalLength(), 1e-3)
	assert.InDelta(t, 3.0, ApproximateArcLength(c, DefaultArcLengthSamples), 1e-3)
}

func TestLengthToTBounds(t *testing.T) {
	table := ComputeArcLengthTable(bunched(), 256)
	total := table.TotalLength()
	require.Greater(t, total, float32(0))

	assert.InDelta(t, 0, table.LengthToT(0), 1e-2)
	assert.InDelta(t, 1, table.LengthToT(total), 1e-2)

	// Clamped.
	assert.Equal(t, float32(0), table.LengthToT(-5))
	assert.InDelta(t, 1, table.LengthToT(total*2), 1e-6)
}

func TestArcLengthRoundTrip(t *testing.T) {
	table := ComputeArcLengthTable(bunched(), 256)
	for _, tv := range []float32{0, 0.25, 0.5, 0.75, 1} {
		got := table.LengthToT(table.TToLength(tv))
		assert.InDelta(t, tv, got, 1e-3, "t=%v", tv)
	}
}

func TestUniformTValuesEvenSpacing(t *testing.T) {
	table := ComputeArcLengthTable(bunched(), 256)
	const n = 8
	values := table.UniformTValues(n)
	require.Len(t, values, n)

	want := table.TotalLength() / (n - 1)
	for i := 1; i < n; i++ {
		gap := table.TToLength(values[i]) - table.TToLength(values[i-1])
		assert.InDelta(t, want, gap, float64(want)*0.01, "gap %d", i)
	}

	// Parametric spacing on the same curve is visibly uneven.
	parametric := ParametricTValues(n)
	var minGap, maxGap float32 = math32.MaxFloat32, 0
	for i := 1; i < n; i++ {
		gap := table.TToLength(parametric[i]) - table.TToLength(parametric[i-1])
		minGap = min(minGap, gap)
		maxGap = max(maxGap, gap)
	}
	assert.Greater(t, maxGap, minGap*2)
}

func TestUniformTValuesSmallCounts(t *testing.T) {
	table := ComputeArcLengthTable(bunched(), 64)
	assert.Empty(t, table.UniformTValues(0))
	assert.Equal(t, []float32{0.5}, table.UniformTValues(1))
}

func TestUniformTValuesZeroLength(t *testing.T) {
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	c := New(BSpline, []math.Vec3{p, p, p, p})
	table := ComputeArcLengthTable(c, 32)
	assert.Equal(t, float32(0), table.TotalLength())

	got := table.UniformTValues(5)
	want := []float32{0, 0.25, 0.5, 0.75, 1}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("UniformTValues mismatch (-want +got):\n%s", diff)
	}
}
