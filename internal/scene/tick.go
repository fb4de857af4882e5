package scene

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/spline3d/internal/distribution"
	"github.com/Faultbox/spline3d/internal/follow"
	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/logger"
	"github.com/Faultbox/spline3d/internal/road"
	"github.com/Faultbox/spline3d/internal/surface"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// Tick advances the scene by dt seconds and returns the follower events
// raised during the tick, in follower order.
//
// Passes run in this order: hide distribution sources, build and update
// distributions, clean up removed distributions, step followers, regenerate
// roads, regenerate intersections, refresh projected curves, then project
// instances and road meshes when the raycaster is ready.
func (s *Scene) Tick(dt float32) []follow.Event {
	s.hideSources()
	s.distributions.Update(s.Distributions, s, s)
	s.distributions.Cleanup(s.Distributions)
	events := s.stepFollowers(dt)
	s.updateRoads()
	s.updateIntersections()

	ready := s.Raycaster != nil && s.Raycaster.Ready()
	if ready {
		s.updateProjectedCurves()
		s.distributions.Project(s.Raycaster, s.Distributions)
		s.projectRoads()
	}
	return events
}

func (s *Scene) hideSources() {
	s.Distributions.Each(func(_ handle.Handle, d *distribution.Distribution) {
		if p := s.Props.Get(d.Source); p != nil {
			p.Hidden = true
		}
	})
}

func (s *Scene) stepFollowers(dt float32) []follow.Event {
	var events []follow.Event
	s.Followers.Each(func(h handle.Handle, f *follow.Follower) {
		n := s.Curves.Get(f.Curve)
		if n == nil {
			return
		}
		if kind, ok := follow.Step(f, n.Curve, n.Transform, dt); ok {
			events = append(events, follow.Event{Follower: h, Kind: kind})
			logger.Debug("follower event", zap.Stringer("follower", h), zap.Stringer("kind", kind))
		}
	})
	return events
}

// updateRoads regenerates road meshes that are new, edited, or whose curve
// changed while AutoUpdate is set.
func (s *Scene) updateRoads() {
	s.Roads.Each(func(h handle.Handle, r *RoadNode) {
		n := s.Curves.Get(r.Curve)
		if n == nil {
			return
		}
		curveVersion := s.Curves.Version(r.Curve)
		_, exists := s.roadMeshes[h]
		edited := s.roadSeen.Changed(h, s.Roads.Version(h))
		curveMoved := r.AutoUpdate && s.roadCurveVersion[h] != curveVersion
		if exists && !edited && !curveMoved {
			return
		}
		s.roadSeen.Mark(h, s.Roads.Version(h))
		s.roadCurveVersion[h] = curveVersion

		m, ok := road.Generate(n.Curve, r.Template, r.Segments, r.UVTileLength)
		if !ok {
			return
		}
		gm := s.roadMeshes[h]
		if gm == nil {
			gm = &GeneratedMesh{Owner: h}
			s.roadMeshes[h] = gm
		}
		gm.Mesh = m
		gm.World = n.Transform
		gm.NeedsProjection = r.Projection != nil && r.Projection.Enabled

		logger.Debug("road generated",
			zap.Stringer("road", h),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("triangles", m.TriangleCount()))
	})
}

// updateIntersections regenerates intersections that are new, edited, or
// (with AutoUpdate set) whose connected roads or their curves changed since
// the last build. Road meshes are not consulted, so a road that does not
// regenerate still moves its intersections.
func (s *Scene) updateIntersections() {
	s.Intersections.Each(func(h handle.Handle, in *road.Intersection) {
		_, exists := s.intersectionMeshes[h]
		edited := s.intersectionSeen.Changed(h, s.Intersections.Version(h))
		inputs := s.intersectionInputs(in)
		inputsChanged := in.AutoUpdate && !slices.Equal(s.intersectionBuilt[h], inputs)
		if exists && !edited && !inputsChanged {
			return
		}
		s.intersectionSeen.Mark(h, s.Intersections.Version(h))
		s.intersectionBuilt[h] = inputs

		endpoints := s.endpoints(in)
		m, center, ok := road.GenerateIntersection(endpoints, in.Radius)
		if !ok {
			delete(s.intersectionMeshes, h)
			return
		}
		gm := s.intersectionMeshes[h]
		if gm == nil {
			gm = &GeneratedMesh{Owner: h, World: math.TransformIdentity()}
			s.intersectionMeshes[h] = gm
		}
		gm.Mesh = m
		gm.Center = center

		logger.Debug("intersection generated", zap.Stringer("intersection", h), zap.Int("arms", len(endpoints)))
	})
}

// intersectionInputs lists the road and curve version of every connection.
// Missing records contribute 0.
func (s *Scene) intersectionInputs(in *road.Intersection) []uint64 {
	out := make([]uint64, 0, 2*len(in.Connections))
	for _, c := range in.Connections {
		var curveVersion uint64
		if r := s.Roads.Get(c.Road); r != nil {
			curveVersion = s.Curves.Version(r.Curve)
		}
		out = append(out, s.Roads.Version(c.Road), curveVersion)
	}
	return out
}

// endpoints resolves the connected road ends in world space, skipping
// missing roads and invalid curves.
func (s *Scene) endpoints(in *road.Intersection) []road.Endpoint {
	out := make([]road.Endpoint, 0, len(in.Connections))
	for _, c := range in.Connections {
		r := s.Roads.Get(c.Road)
		if r == nil {
			continue
		}
		n := s.Curves.Get(r.Curve)
		if n == nil {
			continue
		}
		e, ok := road.ResolveEndpoint(n.Curve, c.End, r.HalfWidth(s.Settings.FallbackHalfWidth))
		if !ok {
			continue
		}
		if !n.Transform.IsIdentity() {
			e.Position = n.Transform.TransformPoint(e.Position)
			e.Tangent = n.Transform.Rotation.Rotate(e.Tangent)
			e.Right = e.Tangent.Cross(math.UnitY).Normalize()
		}
		out = append(out, e)
	}
	return out
}

// updateProjectedCurves redraws the surface-draped copy of curves that
// have projection enabled and whose cache is missing or stale.
func (s *Scene) updateProjectedCurves() {
	s.Curves.Each(func(h handle.Handle, n *CurveNode) {
		if n.Projection == nil || !n.Projection.Enabled {
			n.Projected = nil
			return
		}
		if !n.Curve.IsValid() {
			return
		}
		world := worldCurve(n)
		if !s.projectedSeen.Changed(h, s.Curves.Version(h)) && !surface.NeedsReprojection(world, n.Projected) {
			return
		}
		n.Projected = surface.ProjectCurve(s.Raycaster, world, world.Sample(s.Settings.CurveSamples), *n.Projection, s.Settings.VisualOffset)
		s.projectedSeen.Mark(h, s.Curves.Version(h))
	})
}

func (s *Scene) projectRoads() {
	for _, h := range s.Roads.Handles() {
		gm := s.roadMeshes[h]
		if gm == nil || !gm.NeedsProjection {
			continue
		}
		r := s.Roads.Get(h)
		if r.Projection == nil || !r.Projection.Enabled {
			gm.NeedsProjection = false
			continue
		}
		if surface.ProjectRoadMesh(s.Raycaster, gm.Mesh, gm.World, *r.Projection) {
			gm.NeedsProjection = false
			continue
		}
		logger.Debug("road projection missed, retrying", zap.Stringer("road", h))
	}
}

// worldCurve returns n's curve with its points in world space.
func worldCurve(n *CurveNode) *spline.Curve {
	if n.Transform.IsIdentity() {
		return n.Curve
	}
	c := n.Curve.Clone()
	for i, p := range c.Points {
		c.Points[i] = n.Transform.TransformPoint(p)
	}
	return c
}
