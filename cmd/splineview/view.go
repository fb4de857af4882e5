package main

import "github.com/Faultbox/spline3d/pkg/math"

// view maps the XZ ground plane onto the window, +X right and +Z down.
type view struct {
	center        math.Vec2
	scale         float32
	width, height float32
}

// Resize updates the window size in pixels.
func (v *view) Resize(w, h int32) {
	v.width, v.height = float32(w), float32(h)
}

// ToScreen projects a world point.
func (v *view) ToScreen(p math.Vec3) (float32, float32) {
	return v.width/2 + (p.X-v.center.X)*v.scale, v.height/2 + (p.Z-v.center.Y)*v.scale
}

// ToWorld maps a screen point back onto the ground plane.
func (v *view) ToWorld(x, y float32) math.Vec3 {
	return math.Vec3{
		X: (x-v.width/2)/v.scale + v.center.X,
		Z: (y-v.height/2)/v.scale + v.center.Y,
	}
}

// Zoom scales around the screen point (x, y), keeping it fixed.
func (v *view) Zoom(factor, x, y float32) {
	anchor := v.ToWorld(x, y)
	v.scale = max(1, min(v.scale*factor, 500))
	after := v.ToWorld(x, y)
	v.center.X += anchor.X - after.X
	v.center.Y += anchor.Z - after.Z
}

// Pan moves the view by a screen-space delta.
func (v *view) Pan(dx, dy float32) {
	v.center.X -= dx / v.scale
	v.center.Y -= dy / v.scale
}
