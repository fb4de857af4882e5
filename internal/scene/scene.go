// Package scene holds curves and everything derived from them, and runs the
// distribution, follow, road and projection passes in a fixed order each
// tick.
//
// A Scene is not safe for concurrent use.
package scene

import (
	"errors"

	"github.com/Faultbox/spline3d/internal/distribution"
	"github.com/Faultbox/spline3d/internal/follow"
	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/road"
	"github.com/Faultbox/spline3d/internal/surface"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// Scene errors.
var (
	ErrUnknownCurve = errors.New("unknown curve")
	ErrUnknownRoad  = errors.New("unknown road")
	ErrUnknownProp  = errors.New("unknown prop")
	ErrDuplicate    = errors.New("duplicate name")
)

// Settings tunes the passes run by Tick.
type Settings struct {
	// DistributionSamples is the arc-length resolution for uniform spacing.
	DistributionSamples int
	// CurveSamples is the per-segment resolution of projected curve caches.
	CurveSamples int
	// FallbackHalfWidth is used for intersection arms whose road template
	// has no usable profile.
	FallbackHalfWidth float32
	VisualOffset      float32

	// Defaults for records loaded from documents that leave them out.
	RoadSegments      int
	RoadUVTileLength  float32
	DistributionCount int
	Projection        surface.Config
}

// DefaultSettings returns the settings used by New.
func DefaultSettings() Settings {
	return Settings{
		DistributionSamples: distribution.DefaultArcLengthSamples,
		CurveSamples:        16,
		FallbackHalfWidth:   road.DefaultHalfWidth,
		VisualOffset:        surface.DefaultVisualOffset,
		RoadSegments:        road.DefaultSegments,
		RoadUVTileLength:    road.DefaultUVTileLength,
		DistributionCount:   distribution.DefaultCount,
		Projection:          surface.DefaultConfig(),
	}
}

// CurveNode is a curve placed in the world.
type CurveNode struct {
	Name      string
	Curve     *spline.Curve
	Transform math.Transform
	// Projection, when set, keeps Projected draped over the surface.
	Projection *surface.Config
	Projected  *surface.ProjectedCurve
}

// Prop is a placeable object. Props used as distribution sources are
// hidden.
type Prop struct {
	Name      string
	Transform math.Transform
	Visual    distribution.Visual
	Hidden    bool
}

// RoadNode is a road plus how its generated mesh is projected.
type RoadNode struct {
	road.Road
	Name       string
	Projection *surface.Config
}

// GeneratedMesh is a mesh produced from a road or an intersection.
type GeneratedMesh struct {
	Owner handle.Handle
	Mesh  *mesh.Mesh
	// World maps the mesh to world space.
	World math.Transform
	// Center is the fill centre for intersection meshes.
	Center          math.Vec3
	NeedsProjection bool
}

// Scene owns every record and the generated state derived from them.
type Scene struct {
	Curves        *handle.Arena[CurveNode]
	Props         *handle.Arena[Prop]
	Distributions *handle.Arena[distribution.Distribution]
	Followers     *handle.Arena[follow.Follower]
	Roads         *handle.Arena[RoadNode]
	Intersections *handle.Arena[road.Intersection]

	Settings  Settings
	Raycaster surface.Raycaster

	distributions *distribution.Engine

	roadMeshes         map[handle.Handle]*GeneratedMesh
	roadSeen           handle.Tracker
	roadCurveVersion   map[handle.Handle]uint64
	intersectionMeshes map[handle.Handle]*GeneratedMesh
	intersectionSeen   handle.Tracker
	intersectionBuilt  map[handle.Handle][]uint64
	projectedSeen      handle.Tracker
}

// New creates an empty scene.
func New(settings Settings) *Scene {
	engine := distribution.NewEngine()
	if settings.DistributionSamples > 0 {
		engine.ArcLengthSamples = settings.DistributionSamples
	}
	return &Scene{
		Curves:             handle.NewArena[CurveNode](),
		Props:              handle.NewArena[Prop](),
		Distributions:      handle.NewArena[distribution.Distribution](),
		Followers:          handle.NewArena[follow.Follower](),
		Roads:              handle.NewArena[RoadNode](),
		Intersections:      handle.NewArena[road.Intersection](),
		Settings:           settings,
		distributions:      engine,
		roadMeshes:         make(map[handle.Handle]*GeneratedMesh),
		roadSeen:           handle.Tracker{},
		roadCurveVersion:   make(map[handle.Handle]uint64),
		intersectionMeshes: make(map[handle.Handle]*GeneratedMesh),
		intersectionSeen:   handle.Tracker{},
		intersectionBuilt:  make(map[handle.Handle][]uint64),
		projectedSeen:      handle.Tracker{},
	}
}

// AddCurve places c in the world at the identity transform.
func (s *Scene) AddCurve(name string, c *spline.Curve) handle.Handle {
	return s.Curves.Insert(&CurveNode{Name: name, Curve: c, Transform: math.TransformIdentity()})
}

// EditCurve applies fn to the curve and marks it changed so dependants
// update on the next tick.
func (s *Scene) EditCurve(h handle.Handle, fn func(*spline.Curve)) bool {
	return s.Curves.Update(h, func(n *CurveNode) { fn(n.Curve) })
}

// MoveCurve sets the curve's world transform.
func (s *Scene) MoveCurve(h handle.Handle, t math.Transform) bool {
	return s.Curves.Update(h, func(n *CurveNode) { n.Transform = t })
}

// RemoveCurve deletes a curve together with the distributions, followers
// and roads that reference it.
func (s *Scene) RemoveCurve(h handle.Handle) bool {
	if _, ok := s.Curves.Remove(h); !ok {
		return false
	}
	for _, d := range s.Distributions.Handles() {
		if s.Distributions.Get(d).Curve == h {
			s.Distributions.Remove(d)
		}
	}
	for _, f := range s.Followers.Handles() {
		if s.Followers.Get(f).Curve == h {
			s.Followers.Remove(f)
		}
	}
	for _, r := range s.Roads.Handles() {
		if s.Roads.Get(r).Curve == h {
			s.RemoveRoad(r)
		}
	}
	s.projectedSeen.Forget(h)
	return true
}

// Curve resolves a curve for the distribution engine.
func (s *Scene) Curve(h handle.Handle) (*spline.Curve, math.Transform, uint64, bool) {
	n := s.Curves.Get(h)
	if n == nil || n.Curve == nil {
		return nil, math.Transform{}, 0, false
	}
	return n.Curve, n.Transform, s.Curves.Version(h), true
}

// Visual resolves a prop's visual for the distribution engine.
func (s *Scene) Visual(h handle.Handle) (distribution.Visual, bool) {
	p := s.Props.Get(h)
	if p == nil {
		return distribution.Visual{}, false
	}
	return p.Visual, true
}

// AddProp adds a placeable object.
func (s *Scene) AddProp(p *Prop) handle.Handle {
	if p.Transform == (math.Transform{}) {
		p.Transform = math.TransformIdentity()
	}
	return s.Props.Insert(p)
}

// AddDistribution adds a distribution; its instances appear on the next
// tick.
func (s *Scene) AddDistribution(d *distribution.Distribution) handle.Handle {
	return s.Distributions.Insert(d)
}

// RemoveDistribution deletes a distribution; its instances go on the next
// tick.
func (s *Scene) RemoveDistribution(h handle.Handle) bool {
	_, ok := s.Distributions.Remove(h)
	return ok
}

// Instances returns the spawned distribution instances.
func (s *Scene) Instances() *handle.Arena[distribution.Instance] {
	return s.distributions.Instances
}

// InstancesOf returns the instances of one distribution in index order.
func (s *Scene) InstancesOf(h handle.Handle) []handle.Handle {
	return s.distributions.InstancesOf(h)
}

// AddFollower adds a follower.
func (s *Scene) AddFollower(f *follow.Follower) handle.Handle {
	return s.Followers.Insert(f)
}

// AddRoad adds a road; its mesh is generated on the next tick.
func (s *Scene) AddRoad(r *RoadNode) handle.Handle {
	return s.Roads.Insert(r)
}

// RemoveRoad deletes a road and its generated mesh. Intersections it was
// connected to are rebuilt on the next tick.
func (s *Scene) RemoveRoad(h handle.Handle) bool {
	if _, ok := s.Roads.Remove(h); !ok {
		return false
	}
	delete(s.roadMeshes, h)
	delete(s.roadCurveVersion, h)
	s.roadSeen.Forget(h)
	for _, ih := range s.Intersections.Handles() {
		for _, c := range s.Intersections.Get(ih).Connections {
			if c.Road == h {
				s.Intersections.Touch(ih)
				break
			}
		}
	}
	return true
}

// RoadMesh returns the generated mesh of a road.
func (s *Scene) RoadMesh(h handle.Handle) (*GeneratedMesh, bool) {
	m, ok := s.roadMeshes[h]
	return m, ok
}

// AddIntersection adds an intersection; its mesh is generated on the next
// tick.
func (s *Scene) AddIntersection(in *road.Intersection) handle.Handle {
	return s.Intersections.Insert(in)
}

// RemoveIntersection deletes an intersection and its mesh.
func (s *Scene) RemoveIntersection(h handle.Handle) bool {
	if _, ok := s.Intersections.Remove(h); !ok {
		return false
	}
	delete(s.intersectionMeshes, h)
	delete(s.intersectionBuilt, h)
	s.intersectionSeen.Forget(h)
	return true
}

// IntersectionMesh returns the generated mesh of an intersection.
func (s *Scene) IntersectionMesh(h handle.Handle) (*GeneratedMesh, bool) {
	m, ok := s.intersectionMeshes[h]
	return m, ok
}
