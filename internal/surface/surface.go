// Package surface snaps points, instances and road meshes onto whatever
// geometry a Raycaster reports below them.
package surface

import "github.com/Faultbox/spline3d/pkg/math"

// Hit is a raycast result.
type Hit struct {
	Distance float32
	Normal   math.Vec3
}

// Raycaster answers spatial queries for projection. It is usually backed by
// a physics engine that may not be ready during the first frames.
type Raycaster interface {
	// CastRay casts from origin along the unit direction. With solid set a
	// ray starting inside geometry hits at distance 0. A nil mask matches
	// every layer.
	CastRay(origin, direction math.Vec3, maxDistance float32, solid bool, mask *uint32) (Hit, bool)
	// Ready reports whether queries can be answered yet.
	Ready() bool
}

// Config controls how geometry is projected.
type Config struct {
	Enabled         bool    `yaml:"enabled"`
	RayOriginOffset float32 `yaml:"ray_origin_offset"`
	MaxDistance     float32 `yaml:"max_distance"`
	NormalOffset    float32 `yaml:"normal_offset"`
	AlignToNormal   bool    `yaml:"align_to_normal"`
	LayerMask       *uint32 `yaml:"layer_mask,omitempty"`
}

// DefaultConfig returns an enabled config that casts from 10 units above
// each point, up to 100 units, and lifts results 0.1 off the surface.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		RayOriginOffset: 10,
		MaxDistance:     100,
		NormalOffset:    0.1,
	}
}

// RawHit is a projection ray hit before the normal offset is applied.
type RawHit struct {
	Position math.Vec3
	Normal   math.Vec3
	Distance float32
}

// WithNormalOffset returns the hit position lifted along the normal.
func (h RawHit) WithNormalOffset(offset float32) math.Vec3 {
	return h.Position.Add(h.Normal.Scale(offset))
}

// PointHit is a projected point.
type PointHit struct {
	Position math.Vec3
	Normal   math.Vec3
}

var down = math.Vec3{Y: -1}

// CastProjectionRay casts straight down from RayOriginOffset above point.
func CastProjectionRay(rc Raycaster, point math.Vec3, cfg Config) (RawHit, bool) {
	if !cfg.Enabled || rc == nil {
		return RawHit{}, false
	}
	origin := point.Add(math.Vec3{Y: cfg.RayOriginOffset})
	hit, ok := rc.CastRay(origin, down, cfg.MaxDistance, true, cfg.LayerMask)
	if !ok {
		return RawHit{}, false
	}
	return RawHit{
		Position: origin.Add(down.Scale(hit.Distance)),
		Normal:   hit.Normal,
		Distance: hit.Distance,
	}, true
}

// ProjectPoint returns the surface point below point, lifted by
// NormalOffset. ok is false on a miss.
func ProjectPoint(rc Raycaster, point math.Vec3, cfg Config) (PointHit, bool) {
	raw, ok := CastProjectionRay(rc, point, cfg)
	if !ok {
		return PointHit{}, false
	}
	return PointHit{Position: raw.WithNormalOffset(cfg.NormalOffset), Normal: raw.Normal}, true
}

// ProjectPointOrOriginal is ProjectPoint falling back to point on a miss.
func ProjectPointOrOriginal(rc Raycaster, point math.Vec3, cfg Config) math.Vec3 {
	if hit, ok := ProjectPoint(rc, point, cfg); ok {
		return hit.Position
	}
	return point
}

// ProjectTransform moves a transform onto the surface and, with
// AlignToNormal, tilts it so its up axis follows the surface normal while
// keeping its heading. It returns false on a miss so the caller can retry
// next tick.
func ProjectTransform(rc Raycaster, t *math.Transform, cfg Config) bool {
	hit, ok := ProjectPoint(rc, t.Translation, cfg)
	if !ok {
		return false
	}
	t.Translation = hit.Position

	if cfg.AlignToNormal {
		if rot, ok := AlignToNormal(t.Rotation, hit.Normal); ok {
			t.Rotation = rot
		}
	}
	return true
}

// AlignToNormal builds a rotation whose Y axis is normal and whose X axis
// is perpendicular to both normal and the current forward. ok is false when
// forward is parallel to normal.
func AlignToNormal(rotation math.Quat, normal math.Vec3) (math.Quat, bool) {
	forward := rotation.Forward()
	right := normal.Cross(forward).Normalize()
	if right.LengthSquared() <= 0.001 {
		return rotation, false
	}
	corrected := right.Cross(normal).Normalize()
	return math.QuatFromAxes(right, normal, corrected), true
}
