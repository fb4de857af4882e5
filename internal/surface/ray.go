package surface

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlaneY intersects the ray with the horizontal plane y = planeY.
// Returns the distance along the ray and whether the plane is in front.
func (r Ray) IntersectPlaneY(planeY float32) (float32, bool) {
	if math32.Abs(r.Direction.Y) < 0.001 {
		return 0, false
	}
	t := (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectBounds returns the entry and exit distances of the ray through
// an axis-aligned box. When the ray starts inside, enter is 0.
func (r Ray) IntersectBounds(box mesh.Bounds) (enter, exit float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := range 3 {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return max(tmin, 0), tmax, true
}

// Plane is a Raycaster for an infinite horizontal ground at Height.
type Plane struct {
	Height float32
	Layers uint32
}

// CastRay implements Raycaster.
func (p Plane) CastRay(origin, direction math.Vec3, maxDistance float32, solid bool, mask *uint32) (Hit, bool) {
	if !layerMatch(p.Layers, mask) {
		return Hit{}, false
	}
	if solid && origin.Y <= p.Height {
		return Hit{Distance: 0, Normal: math.UnitY}, true
	}
	t, ok := Ray{Origin: origin, Direction: direction}.IntersectPlaneY(p.Height)
	if !ok || t > maxDistance {
		return Hit{}, false
	}
	return Hit{Distance: t, Normal: math.UnitY}, true
}

// Ready implements Raycaster.
func (Plane) Ready() bool {
	return true
}

// layerMatch treats zero layers as layer 1 and a nil mask as all layers.
func layerMatch(layers uint32, mask *uint32) bool {
	if mask == nil {
		return true
	}
	if layers == 0 {
		layers = 1
	}
	return layers&*mask != 0
}
