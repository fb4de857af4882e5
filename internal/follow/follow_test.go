package follow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// line is a straight Bézier from the origin to (3,0,0), length 3.
func line() *spline.Curve {
	return spline.New(spline.CubicBezier, []math.Vec3{{}, {X: 1}, {X: 2}, {X: 3}})
}

func TestNewFollowerDefaults(t *testing.T) {
	f := NewFollower(4)
	assert.Equal(t, float32(1), f.Speed)
	assert.Equal(t, Once, f.LoopMode)
	assert.True(t, f.IsPlaying())
	assert.True(t, f.AlignToTangent)
	assert.True(t, f.ConstantSpeed)
	assert.Equal(t, float32(1), f.Direction)
	assert.Equal(t, math.UnitY, f.UpVector)

	f.SetStart(1.5)
	assert.Equal(t, float32(1), f.T)
	f.SetStart(-1)
	assert.Equal(t, float32(0), f.T)
}

func TestStepConstantSpeed(t *testing.T) {
	f := NewFollower(1)
	c := line()

	_, ok := Step(f, c, math.TransformIdentity(), 1)
	assert.False(t, ok)
	assert.InDelta(t, 1.0/3, f.T, 1e-3)
	assert.InDelta(t, 1, f.Transform.Translation.X, 1e-2)

	forward := f.Transform.Rotation.Forward()
	assert.InDelta(t, 1, forward.X, 1e-4)
}

func TestStepParametricSpeed(t *testing.T) {
	f := NewFollower(1)
	f.ConstantSpeed = false
	f.Speed = 0.25

	Step(f, line(), math.TransformIdentity(), 1)
	assert.InDelta(t, 0.25, f.T, 1e-6)
}

func TestOnceOvershootClampsExactly(t *testing.T) {
	f := NewFollower(1)
	f.SetStart(0.9)
	f.Speed = 100
	c := line()

	var events []EventKind
	for range 3 {
		if kind, ok := Step(f, c, math.TransformIdentity(), 1); ok {
			events = append(events, kind)
		}
	}

	assert.Equal(t, float32(1), f.T)
	assert.Equal(t, []EventKind{FinishedEvent}, events)
	assert.True(t, f.IsFinished())
	assert.InDelta(t, 3, f.Transform.Translation.X, 1e-4)
}

func TestPausedFollowerDoesNotMove(t *testing.T) {
	f := NewFollower(1)
	f.SetStart(0.2)
	f.Pause()
	before := f.Transform

	_, ok := Step(f, line(), math.TransformIdentity(), 1)
	assert.False(t, ok)
	assert.Equal(t, float32(0.2), f.T)
	assert.Equal(t, before, f.Transform)

	f.Play()
	Step(f, line(), math.TransformIdentity(), 1)
	assert.Greater(t, f.T, float32(0.2))
}

func TestInvalidCurveSkipped(t *testing.T) {
	f := NewFollower(1)
	short := spline.New(spline.CatmullRom, []math.Vec3{{}, {X: 1}})

	_, ok := Step(f, short, math.TransformIdentity(), 1)
	assert.False(t, ok)
	assert.Zero(t, f.T)
	_, ok = Step(f, nil, math.TransformIdentity(), 1)
	assert.False(t, ok)
}

func TestPingPongBounces(t *testing.T) {
	f := NewFollower(1)
	f.LoopMode = PingPong
	f.ConstantSpeed = false
	f.Speed = 0.4
	c := line()

	var events []EventKind
	for range 6 {
		if kind, ok := Step(f, c, math.TransformIdentity(), 1); ok {
			events = append(events, kind)
		}
	}

	assert.Equal(t, []EventKind{ReachedEnd, ReachedStart}, events)
	assert.Equal(t, float32(1), f.Direction)
	assert.InDelta(t, 0.4, f.T, 1e-5)
	assert.True(t, f.IsPlaying())
}

func TestPingPongFacesTravelDirection(t *testing.T) {
	f := NewFollower(1)
	f.LoopMode = PingPong
	f.ConstantSpeed = false
	f.SetStart(0.9)
	f.Speed = 0.2

	kind, ok := Step(f, line(), math.TransformIdentity(), 1)
	require.True(t, ok)
	assert.Equal(t, ReachedEnd, kind)
	assert.Equal(t, float32(-1), f.Direction)
	assert.InDelta(t, -1, f.Transform.Rotation.Forward().X, 1e-4)
}

func TestHandleBounds(t *testing.T) {
	tests := []struct {
		name      string
		t         float32
		direction float32
		mode      LoopMode
		wantT     float32
		wantDir   float32
		wantKind  EventKind
		wantEvent bool
	}{
		{"once inside", 0.5, 1, Once, 0.5, 1, 0, false},
		{"once over", 1.2, 1, Once, 1, 1, FinishedEvent, true},
		{"once under", -0.1, -1, Once, 0, -1, FinishedEvent, true},
		{"loop over", 1.25, 1, Loop, 0.25, 1, LoopCompleted, true},
		{"loop under", -0.25, -1, Loop, 0.75, -1, LoopCompleted, true},
		{"pingpong over", 1.25, 1, PingPong, 0.75, -1, ReachedEnd, true},
		{"pingpong under", -0.25, -1, PingPong, 0.25, 1, ReachedStart, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotT, gotDir, kind, ok := HandleBounds(tt.t, tt.direction, tt.mode)
			assert.InDelta(t, tt.wantT, gotT, 1e-6)
			assert.Equal(t, tt.wantDir, gotDir)
			assert.Equal(t, tt.wantEvent, ok)
			if ok {
				assert.Equal(t, tt.wantKind, kind)
			}
		})
	}
}

func TestReset(t *testing.T) {
	f := NewFollower(1)
	f.T, f.Direction, f.State = 0.7, -1, Finished
	f.Reset()
	assert.Zero(t, f.T)
	assert.Equal(t, float32(1), f.Direction)
	assert.True(t, f.IsPlaying())
}

func TestOffsetAndWorldTransform(t *testing.T) {
	f := NewFollower(1)
	f.ConstantSpeed = false
	f.Speed = 0.5
	f.Offset = math.Vec3{Y: 2}

	Step(f, line(), math.TransformFromTranslation(math.Vec3{Z: 10}), 1)
	assert.InDelta(t, 1.5, f.Transform.Translation.X, 1e-4)
	assert.InDelta(t, 2, f.Transform.Translation.Y, 1e-4)
	assert.InDelta(t, 10, f.Transform.Translation.Z, 1e-4)
}

func TestLoopModeText(t *testing.T) {
	var m LoopMode
	require.NoError(t, m.UnmarshalText([]byte("Ping-Pong")))
	assert.Equal(t, PingPong, m)
	assert.Error(t, m.UnmarshalText([]byte("bounce")))
}
