// Package follow moves objects along curves at a fixed speed and reports
// when they reach the ends.
package follow

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/pkg/geometry"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// ArcLengthSamples is the resolution of the length estimate used for
// constant-speed motion.
const ArcLengthSamples = 128

// LoopMode decides what happens at the ends of the curve.
type LoopMode uint8

const (
	// Once stops at the end.
	Once LoopMode = iota
	// Loop wraps around to the other end.
	Loop
	// PingPong reverses direction at each end.
	PingPong
)

var loopModeNames = [...]string{"once", "loop", "pingpong"}

func (m LoopMode) String() string {
	if int(m) < len(loopModeNames) {
		return loopModeNames[m]
	}
	return fmt.Sprintf("LoopMode(%d)", m)
}

// MarshalText encodes the mode by name.
func (m LoopMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses "once", "loop" or "pingpong".
func (m *LoopMode) UnmarshalText(text []byte) error {
	name := strings.ReplaceAll(strings.ToLower(string(text)), "-", "")
	for i, n := range loopModeNames {
		if n == name {
			*m = LoopMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown loop mode %q", text)
}

// State is the playback state of a follower.
type State uint8

const (
	Playing State = iota
	Paused
	// Finished is only reached in Once mode.
	Finished
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", s)
}

// EventKind identifies a boundary crossing.
type EventKind uint8

const (
	// ReachedEnd is emitted when a ping-pong follower bounces off t=1.
	ReachedEnd EventKind = iota
	// ReachedStart is emitted when a ping-pong follower bounces off t=0.
	ReachedStart
	// LoopCompleted is emitted each time a looping follower wraps.
	LoopCompleted
	// FinishedEvent is emitted once when a Once follower stops.
	FinishedEvent
)

func (k EventKind) String() string {
	switch k {
	case ReachedEnd:
		return "reached-end"
	case ReachedStart:
		return "reached-start"
	case LoopCompleted:
		return "loop-completed"
	case FinishedEvent:
		return "finished"
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event reports a boundary crossing by a follower.
type Event struct {
	Follower handle.Handle
	Kind     EventKind
}

// Follower moves along Curve. T is the current parameter in [0, 1].
type Follower struct {
	Curve handle.Handle
	// Speed is world units per second with ConstantSpeed, otherwise
	// parameter units per second.
	Speed          float32
	T              float32
	LoopMode       LoopMode
	State          State
	AlignToTangent bool
	UpVector       math.Vec3
	// Direction is +1 forward, -1 backward.
	Direction     float32
	Offset        math.Vec3
	ConstantSpeed bool

	// Transform is the follower's current placement.
	Transform math.Transform
}

// NewFollower returns a playing, tangent-aligned, constant-speed follower
// at the start of curve.
func NewFollower(curve handle.Handle) *Follower {
	return &Follower{
		Curve:          curve,
		Speed:          1,
		LoopMode:       Once,
		State:          Playing,
		AlignToTangent: true,
		UpVector:       math.UnitY,
		Direction:      1,
		ConstantSpeed:  true,
		Transform:      math.TransformIdentity(),
	}
}

// SetStart moves the follower to t, clamped to [0, 1].
func (f *Follower) SetStart(t float32) {
	f.T = clamp01(t)
}

func (f *Follower) Play() { f.State = Playing }
func (f *Follower) Pause() { f.State = Paused }

// Reset rewinds to the start, moving forward.
func (f *Follower) Reset() {
	f.T = 0
	f.Direction = 1
	f.State = Playing
}

func (f *Follower) IsFinished() bool { return f.State == Finished }
func (f *Follower) IsPlaying() bool { return f.State == Playing }

// Step advances f by dt seconds along c and updates its transform. world
// maps curve space to world space. Paused and finished followers, and
// invalid curves, are left untouched. The returned event is valid when ok
// is true.
func Step(f *Follower, c *spline.Curve, world math.Transform, dt float32) (kind EventKind, ok bool) {
	if f.State != Playing || c == nil || !c.IsValid() {
		return 0, false
	}

	var delta float32
	if f.ConstantSpeed {
		if total := spline.ApproximateArcLength(c, ArcLengthSamples); total > 0 {
			delta = f.Speed * dt / total
		}
	} else {
		delta = f.Speed * dt
	}

	f.T, f.Direction, kind, ok = HandleBounds(f.T+delta*f.Direction, f.Direction, f.LoopMode)
	if ok && kind == FinishedEvent {
		f.State = Finished
	}

	position, found := c.Evaluate(f.T)
	if !found {
		return kind, ok
	}

	rotation := f.Transform.Rotation
	if f.AlignToTangent {
		rotation = orientation(c, f.T, f.UpVector, f.Direction)
	}
	local := position.Add(rotation.Rotate(f.Offset))

	f.Transform.Translation = world.TransformPoint(local)
	f.Transform.Rotation = world.Rotation.Mul(rotation)
	return kind, ok
}

// HandleBounds folds t back into [0, 1] according to mode and returns the
// new parameter, the new direction and the boundary event, if any.
func HandleBounds(t, direction float32, mode LoopMode) (float32, float32, EventKind, bool) {
	switch mode {
	case Loop:
		if t >= 1 {
			return fract(t), direction, LoopCompleted, true
		}
		if t <= 0 {
			return 1 + fract(t), direction, LoopCompleted, true
		}
	case PingPong:
		if t >= 1 {
			return 1 - (t - 1), -1, ReachedEnd, true
		}
		if t <= 0 {
			return -t, 1, ReachedStart, true
		}
	default:
		if t >= 1 {
			return 1, direction, FinishedEvent, true
		}
		if t <= 0 {
			return 0, direction, FinishedEvent, true
		}
	}
	return t, direction, 0, false
}

func orientation(c *spline.Curve, t float32, up math.Vec3, direction float32) math.Quat {
	tangent, ok := c.EvaluateTangent(t)
	if !ok {
		return math.QuatIdentity()
	}
	frame := geometry.FromTangentWithUp(tangent, up)
	if !frame.IsValid() {
		return math.QuatIdentity()
	}
	return frame.ToRotationWithDirection(direction)
}

// fract keeps the sign of t, so fract(-0.25) is -0.25.
func fract(t float32) float32 {
	return t - math32.Trunc(t)
}

func clamp01(t float32) float32 {
	return max(0, min(t, 1))
}
