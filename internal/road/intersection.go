package road

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// DefaultHalfWidth is used for an intersection arm whose road profile
// cannot be inspected.
const DefaultHalfWidth = 2.0

// End selects which end of a road joins an intersection.
type End uint8

const (
	// Start is the road's t=0 end.
	Start End = iota
	// Finish is the road's t=1 end.
	Finish
)

// T returns the curve parameter of the end.
func (e End) T() float32 {
	if e == Finish {
		return 1
	}
	return 0
}

// Direction returns the sign that turns the curve tangent at this end into
// a direction pointing into the intersection.
func (e End) Direction() float32 {
	if e == Finish {
		return 1
	}
	return -1
}

// String returns "start" or "end".
func (e End) String() string {
	if e == Finish {
		return "end"
	}
	return "start"
}

// MarshalText encodes the end by name.
func (e End) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses "start" or "end".
func (e *End) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "start":
		*e = Start
	case "end", "finish":
		*e = Finish
	default:
		return fmt.Errorf("unknown road end %q", text)
	}
	return nil
}

// Connection attaches one end of a road to an intersection.
type Connection struct {
	Road handle.Handle
	End  End
}

// Intersection fills the area where the connected road ends meet.
type Intersection struct {
	Connections []Connection
	// Radius, when set, pushes every edge point out to at least this
	// distance from the centre.
	Radius     *float32
	AutoUpdate bool
}

// NewIntersection creates an auto-updating intersection.
func NewIntersection(connections ...Connection) *Intersection {
	return &Intersection{Connections: connections, AutoUpdate: true}
}

// Endpoint is a road end resolved to world space.
type Endpoint struct {
	Position  math.Vec3
	Tangent   math.Vec3
	Right     math.Vec3
	HalfWidth float32
	Angle     float32
}

// ResolveEndpoint evaluates a curve at the given end. The tangent is
// oriented into the intersection and Right lies in the ground plane.
func ResolveEndpoint(c *spline.Curve, end End, halfWidth float32) (Endpoint, bool) {
	if !c.IsValid() {
		return Endpoint{}, false
	}
	t := end.T()
	position, ok := c.Evaluate(t)
	if !ok {
		return Endpoint{}, false
	}

	tangent := math.UnitZ
	if d, ok := c.EvaluateTangent(t); ok {
		tangent = d.Normalize().Scale(end.Direction())
	}
	return Endpoint{
		Position:  position,
		Tangent:   tangent,
		Right:     tangent.Cross(math.UnitY).Normalize(),
		HalfWidth: halfWidth,
	}, true
}

// GenerateIntersection centres the endpoints, orders them by angle around
// the centre and builds the fill mesh. endpoints is sorted in place. ok is
// false with fewer than two endpoints.
func GenerateIntersection(endpoints []Endpoint, radius *float32) (*mesh.Mesh, math.Vec3, bool) {
	if len(endpoints) < 2 {
		return nil, math.Vec3{}, false
	}

	var center math.Vec3
	for _, e := range endpoints {
		center = center.Add(e.Position)
	}
	center = center.Scale(1 / float32(len(endpoints)))

	for i := range endpoints {
		dir := endpoints[i].Position.Sub(center).Normalize()
		endpoints[i].Angle = math32.Atan2(dir.Z, dir.X)
	}
	sort.SliceStable(endpoints, func(i, j int) bool {
		return endpoints[i].Angle < endpoints[j].Angle
	})

	m, ok := BuildIntersectionMesh(endpoints, center, radius)
	return m, center, ok
}

// BuildIntersectionMesh emits the centre vertex followed by a left and
// right edge vertex per endpoint, then one gap triangle between each
// endpoint and the next and one triangle closing each road mouth.
// Endpoints must already be sorted by angle.
func BuildIntersectionMesh(endpoints []Endpoint, center math.Vec3, radius *float32) (*mesh.Mesh, bool) {
	n := len(endpoints)
	if n < 2 {
		return nil, false
	}

	m := &mesh.Mesh{
		Positions: make([]math.Vec3, 0, 1+2*n),
		Normals:   make([]math.Vec3, 0, 1+2*n),
		UVs:       make([][2]float32, 0, 1+2*n),
		Indices:   make([]uint32, 0, 6*n),
	}
	add := func(p math.Vec3) {
		dir := p.Sub(center).Normalize()
		m.Positions = append(m.Positions, p)
		m.Normals = append(m.Normals, math.UnitY)
		m.UVs = append(m.UVs, [2]float32{0.5 + dir.X*0.5, 0.5 + dir.Z*0.5})
	}

	m.Positions = append(m.Positions, center)
	m.Normals = append(m.Normals, math.UnitY)
	m.UVs = append(m.UVs, [2]float32{0.5, 0.5})

	for _, e := range endpoints {
		edge := e.Right.Scale(e.HalfWidth)
		add(pushOut(e.Position.Add(edge), center, radius))
		add(pushOut(e.Position.Sub(edge), center, radius))
	}

	for i := range n {
		right := uint32(2 + i*2)
		nextLeft := uint32(1 + ((i+1)%n)*2)
		m.Indices = append(m.Indices, 0, nextLeft, right)
	}
	for i := range n {
		left := uint32(1 + i*2)
		right := uint32(2 + i*2)
		m.Indices = append(m.Indices, 0, right, left)
	}

	m.ComputeBounds()
	return m, true
}

// pushOut moves p away from center in the ground plane until it is at
// least radius away.
func pushOut(p, center math.Vec3, radius *float32) math.Vec3 {
	if radius == nil || *radius <= 0 {
		return p
	}
	d := math.Vec3{X: p.X - center.X, Z: p.Z - center.Z}
	dist := d.Length()
	if dist >= *radius || dist == 0 {
		return p
	}
	d = d.Scale(*radius / dist)
	return math.Vec3{X: center.X + d.X, Y: p.Y, Z: center.Z + d.Z}
}
