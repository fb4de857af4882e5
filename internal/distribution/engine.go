package distribution

import (
	"go.uber.org/zap"

	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/logger"
	"github.com/Faultbox/spline3d/internal/surface"
	"github.com/Faultbox/spline3d/pkg/geometry"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// DefaultArcLengthSamples is the arc-length table resolution used for
// uniform spacing.
const DefaultArcLengthSamples = 256

// Curves resolves curve handles.
type Curves interface {
	// Curve returns the curve, its world transform and a version that
	// changes whenever either does.
	Curve(h handle.Handle) (c *spline.Curve, world math.Transform, version uint64, ok bool)
}

// Sources resolves the visuals of source objects.
type Sources interface {
	Visual(h handle.Handle) (Visual, bool)
}

// state is the bookkeeping for one built distribution.
type state struct {
	instances    []handle.Handle
	count        int
	source       handle.Handle
	curveVersion uint64
}

// Engine owns the instances spawned for a set of distributions.
type Engine struct {
	Instances *handle.Arena[Instance]

	// ArcLengthSamples is the table resolution for uniform spacing.
	ArcLengthSamples int

	states map[handle.Handle]*state
	seen   handle.Tracker
}

// NewEngine creates an engine with no instances.
func NewEngine() *Engine {
	return &Engine{
		Instances:        handle.NewArena[Instance](),
		ArcLengthSamples: DefaultArcLengthSamples,
		states:           make(map[handle.Handle]*state),
		seen:             handle.Tracker{},
	}
}

// InstancesOf returns the live instance handles of a distribution in index
// order.
func (e *Engine) InstancesOf(dist handle.Handle) []handle.Handle {
	if st, ok := e.states[dist]; ok {
		return st.instances
	}
	return nil
}

// Update rebuilds distributions seen for the first time, edited, or whose
// count or source changed, and moves the instances of distributions whose
// curve changed. Disabled distributions and those with an unusable curve
// are left as they are.
func (e *Engine) Update(dists *handle.Arena[Distribution], curves Curves, sources Sources) {
	dists.Each(func(h handle.Handle, d *Distribution) {
		if !d.Enabled {
			return
		}
		c, world, curveVersion, ok := curves.Curve(d.Curve)
		if !ok || !c.IsValid() {
			return
		}

		st := e.states[h]
		rebuild := st == nil ||
			e.seen.Changed(h, dists.Version(h)) ||
			st.count != d.Count ||
			st.source != d.Source
		move := rebuild || st.curveVersion != curveVersion

		if move {
			params := e.parameters(c, d)
			if rebuild {
				e.rebuild(h, d, c, world, params, sources)
			} else {
				e.move(h, d, c, world, params)
			}
			e.states[h].curveVersion = curveVersion
		}
		e.seen.Mark(h, dists.Version(h))
	})
}

// Cleanup destroys the instances of distributions that no longer exist,
// including orphans whose bookkeeping was lost. It returns how many
// instances were removed.
func (e *Engine) Cleanup(dists *handle.Arena[Distribution]) int {
	removed := 0
	for h, st := range e.states {
		if dists.Contains(h) {
			continue
		}
		for _, inst := range st.instances {
			if _, ok := e.Instances.Remove(inst); ok {
				removed++
			}
		}
		delete(e.states, h)
		e.seen.Forget(h)
		logger.Debug("distribution removed", zap.Stringer("distribution", h), zap.Int("instances", len(st.instances)))
	}

	for _, inst := range e.Instances.Handles() {
		if !dists.Contains(e.Instances.Get(inst).Distribution) {
			e.Instances.Remove(inst)
			removed++
		}
	}
	return removed
}

// Project drops instances flagged for projection onto the surface. Misses
// stay flagged and are retried on the next call. Instances whose
// distribution lost or disabled its projection are unflagged.
func (e *Engine) Project(rc surface.Raycaster, dists *handle.Arena[Distribution]) {
	e.Instances.Each(func(h handle.Handle, inst *Instance) {
		if !inst.NeedsProjection {
			return
		}
		d := dists.Get(inst.Distribution)
		if d == nil || d.Projection == nil || !d.Projection.Enabled {
			inst.NeedsProjection = false
			return
		}
		if surface.ProjectTransform(rc, &inst.Transform, *d.Projection) {
			inst.NeedsProjection = false
		}
	})
}

func (e *Engine) parameters(c *spline.Curve, d *Distribution) []float32 {
	if d.Spacing == Parametric {
		return spline.ParametricTValues(d.Count)
	}
	samples := e.ArcLengthSamples
	if samples <= 0 {
		samples = DefaultArcLengthSamples
	}
	return spline.ComputeArcLengthTable(c, samples).UniformTValues(d.Count)
}

func (e *Engine) rebuild(h handle.Handle, d *Distribution, c *spline.Curve, world math.Transform, params []float32, sources Sources) {
	if old, ok := e.states[h]; ok {
		for _, inst := range old.instances {
			e.Instances.Remove(inst)
		}
	}

	visual, _ := sources.Visual(d.Source)
	st := &state{
		instances: make([]handle.Handle, 0, len(params)),
		count:     d.Count,
		source:    d.Source,
	}
	for i, t := range params {
		st.instances = append(st.instances, e.Instances.Insert(&Instance{
			Distribution:    h,
			Index:           i,
			Transform:       InstanceTransform(c, world, t, d),
			Visual:          visual,
			NeedsProjection: d.Projection != nil,
		}))
	}
	e.states[h] = st

	logger.Debug("distribution rebuilt",
		zap.Stringer("distribution", h),
		zap.Int("instances", len(st.instances)),
		zap.Stringer("spacing", d.Spacing))
}

func (e *Engine) move(h handle.Handle, d *Distribution, c *spline.Curve, world math.Transform, params []float32) {
	for i, inst := range e.states[h].instances {
		t := float32(0.5)
		if i < len(params) {
			t = params[i]
		}
		e.Instances.Update(inst, func(in *Instance) {
			in.Transform = InstanceTransform(c, world, t, d)
			if d.Projection != nil {
				in.NeedsProjection = true
			}
		})
	}
}

// InstanceTransform places an instance at parameter t: the curve point plus
// the offset rotated into the instance frame, then mapped through the
// curve's world transform.
func InstanceTransform(c *spline.Curve, world math.Transform, t float32, d *Distribution) math.Transform {
	position, _ := c.Evaluate(t)

	rotation := math.QuatIdentity()
	if d.Orientation.Mode == AlignToTangent {
		if tangent, ok := c.EvaluateTangent(t); ok {
			if frame := geometry.FromTangentWithUp(tangent, d.Orientation.Up); frame.IsValid() {
				rotation = frame.ToRotation()
			}
		}
	}

	local := position.Add(rotation.Rotate(d.Offset))
	return math.Transform{
		Translation: world.TransformPoint(local),
		Rotation:    world.Rotation.Mul(rotation),
		Scale:       math.Vec3{X: 1, Y: 1, Z: 1},
	}
}
