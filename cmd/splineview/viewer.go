package main

import (
	"fmt"
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/spline3d/internal/config"
	"github.com/Faultbox/spline3d/internal/distribution"
	"github.com/Faultbox/spline3d/internal/follow"
	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/logger"
	"github.com/Faultbox/spline3d/internal/scene"
	"github.com/Faultbox/spline3d/internal/surface"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
	"github.com/Faultbox/spline3d/pkg/spline"
)

type viewer struct {
	scene    *scene.Scene
	cfg      *config.Config
	renderer *sdl.Renderer
	view     view

	running  bool
	paused   bool
	selected int
	dragging bool
	lastX    int32
	lastY    int32
	events   int

	path    string
	pending chan string
}

func newViewer(s *scene.Scene, path string, cfg *config.Config, r *sdl.Renderer) *viewer {
	return &viewer{
		scene:    s,
		cfg:      cfg,
		renderer: r,
		view:     view{scale: cfg.Viewer.Scale},
		running:  true,
		path:     path,
		pending:  make(chan string, 1),
	}
}

// open replaces the scene with the one at path. The current scene is kept
// when loading fails.
func (v *viewer) open(path string) {
	s, err := scene.LoadFile(path, v.cfg.SceneSettings())
	if err != nil {
		logger.Error("failed to load scene", zap.String("path", path), zap.Error(err))
		return
	}
	v.scene = s
	v.path = path
	v.selected = 0
	v.events = 0
	logger.Info("scene opened", zap.String("path", path), zap.Int("curves", s.Curves.Len()))
}

func (v *viewer) update(dt float32) {
	select {
	case path := <-v.pending:
		v.open(path)
	default:
	}
	if v.paused {
		dt = 0
	}
	for _, ev := range v.scene.Tick(dt) {
		v.events++
		logger.Info("follower event", zap.Stringer("follower", ev.Follower), zap.Stringer("kind", ev.Kind))
	}
}

// selectedCurve returns the handle of the curve being edited.
func (v *viewer) selectedCurve() (handle.Handle, bool) {
	curves := v.scene.Curves.Handles()
	if len(curves) == 0 {
		return handle.Nil, false
	}
	return curves[v.selected%len(curves)], true
}

func (v *viewer) title() string {
	name := "-"
	if h, ok := v.selectedCurve(); ok {
		n := v.scene.Curves.Get(h)
		name = fmt.Sprintf("%s (%s, %d pts)", n.Name, n.Curve.Basis, len(n.Curve.Points))
	}
	state := "running"
	if v.paused {
		state = "paused"
	}
	return fmt.Sprintf("%s - %s - %s - %s - events %d", windowTitle, filepath.Base(v.path), name, state, v.events)
}

func (v *viewer) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		v.running = false

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			v.view.Resize(e.Data1, e.Data2)
		}

	case *sdl.MouseWheelEvent:
		x, y, _ := sdl.GetMouseState()
		factor := float32(1.1)
		if e.Y < 0 {
			factor = 1 / factor
		}
		v.view.Zoom(factor, float32(x), float32(y))

	case *sdl.MouseButtonEvent:
		switch e.Button {
		case sdl.BUTTON_RIGHT:
			v.dragging = e.State == sdl.PRESSED
			v.lastX, v.lastY = e.X, e.Y
		case sdl.BUTTON_LEFT:
			if e.State == sdl.PRESSED {
				v.addPoint(v.view.ToWorld(float32(e.X), float32(e.Y)))
			}
		}

	case *sdl.MouseMotionEvent:
		if v.dragging {
			v.view.Pan(float32(e.X-v.lastX), float32(e.Y-v.lastY))
			v.lastX, v.lastY = e.X, e.Y
		}

	case *sdl.KeyboardEvent:
		if e.State == sdl.PRESSED {
			v.handleKey(e.Keysym.Sym)
		}
	}
}

func (v *viewer) handleKey(key sdl.Keycode) {
	h, ok := v.selectedCurve()

	switch key {
	case sdl.K_ESCAPE:
		v.running = false
	case sdl.K_SPACE:
		v.paused = !v.paused
	case sdl.K_TAB:
		v.selected++
	case sdl.K_o:
		v.requestOpen()
	case sdl.K_r:
		v.scene.Followers.Each(func(_ handle.Handle, f *follow.Follower) { f.Reset() })
	case sdl.K_c:
		if ok {
			v.scene.EditCurve(h, func(c *spline.Curve) { c.ToggleClosed() })
		}
	case sdl.K_b:
		if ok {
			v.scene.EditCurve(h, func(c *spline.Curve) { c.CycleBasis() })
		}
	case sdl.K_BACKSPACE, sdl.K_DELETE:
		if ok {
			v.scene.EditCurve(h, func(c *spline.Curve) { c.RemovePoint(len(c.Points) - 1) })
		}
	}
}

func (v *viewer) addPoint(p math.Vec3) {
	h, ok := v.selectedCurve()
	if !ok {
		return
	}
	n := v.scene.Curves.Get(h)
	rc := v.scene.Raycaster
	if n.Projection != nil && rc != nil && rc.Ready() {
		p = surface.ProjectPointOrOriginal(rc, p, *n.Projection)
	}
	local := n.Transform.InverseTransformPoint(p)
	v.scene.EditCurve(h, func(c *spline.Curve) { c.AddPoint(local) })
}

type rgb struct{ r, g, b uint8 }

var (
	colorBackground   = rgb{24, 26, 34}
	colorGrid         = rgb{40, 43, 54}
	colorCurve        = rgb{110, 190, 255}
	colorSelected     = rgb{255, 210, 90}
	colorControl      = rgb{230, 230, 230}
	colorRoad         = rgb{120, 120, 130}
	colorIntersection = rgb{160, 140, 120}
	colorInstance     = rgb{90, 200, 110}
	colorFollower     = rgb{240, 90, 90}
)

func (v *viewer) color(c rgb) error {
	return v.renderer.SetDrawColor(c.r, c.g, c.b, 255)
}

func (v *viewer) draw() error {
	if err := v.color(colorBackground); err != nil {
		return err
	}
	if err := v.renderer.Clear(); err != nil {
		return err
	}

	steps := []func() error{v.drawRoads, v.drawCurves, v.drawInstances, v.drawFollowers}
	if v.cfg.Viewer.ShowGrid {
		steps = append([]func() error{v.drawGrid}, steps...)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	v.renderer.Present()
	return nil
}

func (v *viewer) drawGrid() error {
	if err := v.color(colorGrid); err != nil {
		return err
	}
	const spacing = 5
	lo := v.view.ToWorld(0, 0)
	hi := v.view.ToWorld(v.view.width, v.view.height)
	for x := float32(int(lo.X/spacing)) * spacing; x <= hi.X; x += spacing {
		sx, _ := v.view.ToScreen(math.Vec3{X: x})
		if err := v.renderer.DrawLineF(sx, 0, sx, v.view.height); err != nil {
			return err
		}
	}
	for z := float32(int(lo.Z/spacing)) * spacing; z <= hi.Z; z += spacing {
		_, sy := v.view.ToScreen(math.Vec3{Z: z})
		if err := v.renderer.DrawLineF(0, sy, v.view.width, sy); err != nil {
			return err
		}
	}
	return nil
}

func (v *viewer) drawCurves() error {
	selected, _ := v.selectedCurve()
	var err error
	v.scene.Curves.Each(func(h handle.Handle, n *scene.CurveNode) {
		if err != nil {
			return
		}
		c := n.Curve

		samples := c.Sample(v.cfg.Spline.SamplesPerSegment)
		for i, p := range samples {
			samples[i] = n.Transform.TransformPoint(p)
		}
		controls := make([]math.Vec3, len(c.Points))
		for i, p := range c.Points {
			controls[i] = n.Transform.TransformPoint(p)
		}

		col := colorCurve
		if h == selected {
			col = colorSelected
		}
		if err = v.color(col); err != nil {
			return
		}
		if err = v.polyline(surface.EffectiveCurvePoints(samples, n.Projected), false); err != nil {
			return
		}
		if err = v.color(colorControl); err != nil {
			return
		}
		for _, p := range surface.EffectiveControlPoints(&spline.Curve{Points: controls}, n.Projected) {
			if err = v.marker(p, 3); err != nil {
				return
			}
		}
	})
	return err
}

func (v *viewer) drawRoads() error {
	for _, h := range v.scene.Roads.Handles() {
		gm, ok := v.scene.RoadMesh(h)
		if !ok {
			continue
		}
		if err := v.color(colorRoad); err != nil {
			return err
		}
		if err := v.wireframe(gm.Mesh, gm.World); err != nil {
			return err
		}
	}
	for _, h := range v.scene.Intersections.Handles() {
		gm, ok := v.scene.IntersectionMesh(h)
		if !ok {
			continue
		}
		if err := v.color(colorIntersection); err != nil {
			return err
		}
		if err := v.wireframe(gm.Mesh, gm.World); err != nil {
			return err
		}
	}
	return nil
}

func (v *viewer) drawInstances() error {
	if err := v.color(colorInstance); err != nil {
		return err
	}
	var err error
	v.scene.Instances().Each(func(_ handle.Handle, inst *distribution.Instance) {
		if err == nil {
			err = v.arrow(inst.Transform)
		}
	})
	return err
}

func (v *viewer) drawFollowers() error {
	if err := v.color(colorFollower); err != nil {
		return err
	}
	var err error
	v.scene.Followers.Each(func(_ handle.Handle, f *follow.Follower) {
		if err == nil {
			err = v.arrow(f.Transform)
		}
	})
	return err
}

func (v *viewer) polyline(points []math.Vec3, closed bool) error {
	if len(points) < 2 {
		return nil
	}
	pts := make([]sdl.FPoint, 0, len(points)+1)
	for _, p := range points {
		x, y := v.view.ToScreen(p)
		pts = append(pts, sdl.FPoint{X: x, Y: y})
	}
	if closed {
		pts = append(pts, pts[0])
	}
	return v.renderer.DrawLinesF(pts)
}

func (v *viewer) wireframe(m *mesh.Mesh, world math.Transform) error {
	tri := make([]math.Vec3, 3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		for k := range 3 {
			tri[k] = world.TransformPoint(m.Positions[m.Indices[i+k]])
		}
		if err := v.polyline(tri, true); err != nil {
			return err
		}
	}
	return nil
}

func (v *viewer) marker(p math.Vec3, size float32) error {
	x, y := v.view.ToScreen(p)
	return v.renderer.FillRectF(&sdl.FRect{X: x - size, Y: y - size, W: 2 * size, H: 2 * size})
}

// arrow draws a marker with a tick along the transform's forward axis.
func (v *viewer) arrow(t math.Transform) error {
	if err := v.marker(t.Translation, 2); err != nil {
		return err
	}
	tip := t.Translation.Add(t.Rotation.Forward().Scale(12 / v.view.scale))
	return v.polyline([]math.Vec3{t.Translation, tip}, false)
}
