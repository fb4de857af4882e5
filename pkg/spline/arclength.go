package spline

import (
	"sort"

	"github.com/chewxy/math32"
)

// DefaultArcLengthSamples is the sample count used when callers have no
// better estimate. 128-256 is enough for typical curves.
const DefaultArcLengthSamples = 128

// ArcLengthTable maps between curve parameter and distance travelled along
// the curve.
type ArcLengthTable struct {
	ts      []float32
	lengths []float32
}

// ComputeArcLengthTable samples the curve at samples+1 uniform parameter
// steps and accumulates the distance between consecutive samples.
func ComputeArcLengthTable(c *Curve, samples int) *ArcLengthTable {
	if samples < 1 {
		samples = 1
	}
	table := &ArcLengthTable{
		ts:      make([]float32, 0, samples+1),
		lengths: make([]float32, 0, samples+1),
	}

	prev, _ := c.Evaluate(0)
	var cumulative float32
	table.ts = append(table.ts, 0)
	table.lengths = append(table.lengths, 0)

	for i := 1; i <= samples; i++ {
		t := float32(i) / float32(samples)
		p, ok := c.Evaluate(t)
		if !ok {
			p = prev
		}
		cumulative += p.Distance(prev)
		table.ts = append(table.ts, t)
		table.lengths = append(table.lengths, cumulative)
		prev = p
	}
	return table
}

// Len returns the number of samples, including the (0, 0) entry.
func (a *ArcLengthTable) Len() int {
	return len(a.ts)
}

// TotalLength returns the approximate length of the whole curve.
func (a *ArcLengthTable) TotalLength() float32 {
	if len(a.lengths) == 0 {
		return 0
	}
	return a.lengths[len(a.lengths)-1]
}

// LengthToT returns the parameter at the given distance from the start.
// The distance is clamped to [0, TotalLength].
func (a *ArcLengthTable) LengthToT(target float32) float32 {
	total := a.TotalLength()
	if total <= 0 {
		return 0
	}
	target = clamp(target, 0, total)

	// Largest index whose cumulative length is <= target.
	idx := sort.Search(len(a.lengths), func(i int) bool {
		return a.lengths[i] > target
	}) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(a.lengths)-1 {
		return 1
	}

	t0, l0 := a.ts[idx], a.lengths[idx]
	t1, l1 := a.ts[idx+1], a.lengths[idx+1]
	if math32.Abs(l1-l0) < 1e-6 {
		return t0
	}

	alpha := (target - l0) / (l1 - l0)
	return t0 + alpha*(t1-t0)
}

// TToLength returns the distance from the start at parameter t. Samples are
// uniform in t, so the bracket is found by index rather than by search.
func (a *ArcLengthTable) TToLength(t float32) float32 {
	n := len(a.ts)
	if n < 2 {
		return 0
	}
	t = clamp(t, 0, 1)

	idx := int(t * float32(n-1))
	if idx > n-2 {
		idx = n - 2
	}

	t0, l0 := a.ts[idx], a.lengths[idx]
	t1, l1 := a.ts[idx+1], a.lengths[idx+1]
	if math32.Abs(t1-t0) < 1e-6 {
		return l0
	}

	alpha := (t - t0) / (t1 - t0)
	return l0 + alpha*(l1-l0)
}

// UniformTValues returns count parameters spaced at equal arc length,
// including both ends. A single value is placed mid-curve; a zero-length
// curve falls back to parametric spacing.
func (a *ArcLengthTable) UniformTValues(count int) []float32 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float32{0.5}
	}

	total := a.TotalLength()
	if total <= 0 {
		return ParametricTValues(count)
	}

	values := make([]float32, count)
	for i := range values {
		values[i] = a.LengthToT(total * float32(i) / float32(count-1))
	}
	return values
}

// ParametricTValues returns count parameters evenly spaced in t.
func ParametricTValues(count int) []float32 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float32{0.5}
	}
	values := make([]float32, count)
	for i := range values {
		values[i] = float32(i) / float32(count-1)
	}
	return values
}

// ApproximateArcLength measures the curve without keeping a table.
func ApproximateArcLength(c *Curve, samples int) float32 {
	if samples < 1 {
		samples = 1
	}
	prev, _ := c.Evaluate(0)
	var length float32
	for i := 1; i <= samples; i++ {
		p, ok := c.Evaluate(float32(i) / float32(samples))
		if !ok {
			p = prev
		}
		length += p.Distance(prev)
		prev = p
	}
	return length
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
