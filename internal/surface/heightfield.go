package surface

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/pkg/formats"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
)

// Heightfield is a Raycaster over a regular grid of terrain heights with
// bilinear interpolation between samples.
type Heightfield struct {
	grid   *formats.Heightmap
	origin math.Vec3
	bounds mesh.Bounds
	// Layers is the collision layer bitmask; zero means layer 1.
	Layers uint32
}

// NewHeightfield wraps a heightmap. It returns nil for a heightmap with
// fewer than 2x2 samples or no cell size.
func NewHeightfield(h *formats.Heightmap) *Heightfield {
	if h == nil || h.Width < 2 || h.Depth < 2 || h.CellSize <= 0 {
		return nil
	}
	hf := &Heightfield{grid: h, origin: math.Vec3FromArray(h.Origin)}
	hf.Refresh()
	return hf
}

// Refresh recomputes cached bounds after the heightmap was edited.
func (hf *Heightfield) Refresh() {
	lo, hi := hf.grid.GetAltitudeRange()
	size := math.Vec3{
		X: float32(hf.grid.Width-1) * hf.grid.CellSize,
		Z: float32(hf.grid.Depth-1) * hf.grid.CellSize,
	}
	hf.bounds = mesh.Bounds{
		Min: hf.origin.Add(math.Vec3{Y: lo}),
		Max: hf.origin.Add(size).Add(math.Vec3{Y: hi}),
	}
}

// Heightmap returns the underlying grid.
func (hf *Heightfield) Heightmap() *formats.Heightmap {
	return hf.grid
}

// Bounds returns the world-space box enclosing the terrain.
func (hf *Heightfield) Bounds() mesh.Bounds {
	return hf.bounds
}

// Contains reports whether (x, z) lies over the grid.
func (hf *Heightfield) Contains(x, z float32) bool {
	return x >= hf.bounds.Min.X && x <= hf.bounds.Max.X &&
		z >= hf.bounds.Min.Z && z <= hf.bounds.Max.Z
}

// Height returns the interpolated world height at (x, z). Positions off the
// grid are clamped to its edge.
func (hf *Heightfield) Height(x, z float32) float32 {
	g := hf.grid
	cellFX := (x - hf.origin.X) / g.CellSize
	cellFZ := (z - hf.origin.Z) / g.CellSize

	cellX := int(math32.Floor(cellFX))
	cellZ := int(math32.Floor(cellFZ))
	cellX = max(0, min(cellX, int(g.Width)-2))
	cellZ = max(0, min(cellZ, int(g.Depth)-2))

	fracX := clampf(cellFX-float32(cellX), 0, 1)
	fracZ := clampf(cellFZ-float32(cellZ), 0, 1)

	// Lower Z edge, then upper Z edge, then blend along Z.
	south := g.At(cellX, cellZ)*(1-fracX) + g.At(cellX+1, cellZ)*fracX
	north := g.At(cellX, cellZ+1)*(1-fracX) + g.At(cellX+1, cellZ+1)*fracX
	return hf.origin.Y + south*(1-fracZ) + north*fracZ
}

// Normal returns the surface normal at (x, z) from central differences.
func (hf *Heightfield) Normal(x, z float32) math.Vec3 {
	e := hf.grid.CellSize * 0.5
	dx := (hf.Height(x+e, z) - hf.Height(x-e, z)) / (2 * e)
	dz := (hf.Height(x, z+e) - hf.Height(x, z-e)) / (2 * e)
	return math.Vec3{X: -dx, Y: 1, Z: -dz}.Normalize()
}

// Ready implements Raycaster.
func (hf *Heightfield) Ready() bool {
	return hf != nil && hf.grid != nil
}

// CastRay implements Raycaster.
func (hf *Heightfield) CastRay(origin, direction math.Vec3, maxDistance float32, solid bool, mask *uint32) (Hit, bool) {
	if !hf.Ready() || !layerMatch(hf.Layers, mask) {
		return Hit{}, false
	}
	direction = direction.Normalize()
	if direction.IsZero() {
		return Hit{}, false
	}

	if hf.Contains(origin.X, origin.Z) && origin.Y <= hf.Height(origin.X, origin.Z) {
		if solid {
			return Hit{Distance: 0, Normal: hf.Normal(origin.X, origin.Z)}, true
		}
		return Hit{}, false
	}

	if math32.Abs(direction.X) < 1e-6 && math32.Abs(direction.Z) < 1e-6 {
		return hf.castVertical(origin, direction, maxDistance)
	}
	return hf.march(Ray{Origin: origin, Direction: direction}, maxDistance)
}

func (hf *Heightfield) castVertical(origin, direction math.Vec3, maxDistance float32) (Hit, bool) {
	if direction.Y > 0 || !hf.Contains(origin.X, origin.Z) {
		return Hit{}, false
	}
	d := origin.Y - hf.Height(origin.X, origin.Z)
	if d > maxDistance {
		return Hit{}, false
	}
	return Hit{Distance: d, Normal: hf.Normal(origin.X, origin.Z)}, true
}

// maxMarchSteps bounds the samples taken along one ray.
const maxMarchSteps = 1 << 16

// march steps through the terrain box until the ray dips below the
// surface, then bisects the crossing.
func (hf *Heightfield) march(r Ray, maxDistance float32) (Hit, bool) {
	enter, exit, ok := r.IntersectBounds(hf.bounds)
	if !ok || enter > maxDistance {
		return Hit{}, false
	}
	exit = min(exit, maxDistance)

	above := func(t float32) bool {
		p := r.At(t)
		return p.Y > hf.Height(p.X, p.Z)
	}

	// Samples are taken from the index, not accumulated, so the loop ends
	// even when step is below the float resolution of t.
	span := exit - enter
	steps := int(math32.Ceil(span / (hf.grid.CellSize * 0.25)))
	steps = max(1, min(steps, maxMarchSteps))
	step := span / float32(steps)

	prev := enter
	for i := 1; i <= steps; i++ {
		t := enter + float32(i)*step
		if i == steps {
			t = exit
		}
		if !above(t) {
			lo, hi := prev, t
			for range 16 {
				mid := (lo + hi) * 0.5
				if above(mid) {
					lo = mid
				} else {
					hi = mid
				}
			}
			p := r.At(hi)
			return Hit{Distance: hi, Normal: hf.Normal(p.X, p.Z)}, true
		}
		prev = t
	}
	return Hit{}, false
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
