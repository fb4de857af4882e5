package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/spline3d/internal/distribution"
	"github.com/Faultbox/spline3d/internal/follow"
	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/road"
	"github.com/Faultbox/spline3d/internal/surface"
	"github.com/Faultbox/spline3d/pkg/formats"
	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
	"github.com/Faultbox/spline3d/pkg/spline"
)

// Document is the YAML form of a scene. Names tie records together.
type Document struct {
	Terrain       *TerrainDoc       `yaml:"terrain"`
	Curves        []CurveDoc        `yaml:"curves"`
	Props         []PropDoc         `yaml:"props"`
	Distributions []DistributionDoc `yaml:"distributions"`
	Followers     []FollowerDoc     `yaml:"followers"`
	Roads         []RoadDoc         `yaml:"roads"`
	Intersections []IntersectionDoc `yaml:"intersections"`
}

// TerrainDoc selects the raycaster. Heightmap wins over Image, Image over
// Plane. Image is a grayscale BMP or PNG scaled by CellSize and HeightScale
// and placed at Origin.
type TerrainDoc struct {
	Heightmap   string   `yaml:"heightmap"`
	Image       string   `yaml:"image"`
	CellSize    float32  `yaml:"cell_size"`
	HeightScale float32  `yaml:"height_scale"`
	Origin      Vec3     `yaml:"origin"`
	Plane       *float32 `yaml:"plane"`
	Layers      uint32   `yaml:"layers"`
}

// Image terrain defaults.
const (
	defaultImageCellSize    = 1
	defaultImageHeightScale = 10
)

type CurveDoc struct {
	Name        string           `yaml:"name"`
	Basis       spline.BasisKind `yaml:"basis"`
	Closed      bool             `yaml:"closed"`
	Points      []Vec3           `yaml:"points"`
	Translation Vec3             `yaml:"translation"`
	Project     *yaml.Node       `yaml:"project"`
}

type PropDoc struct {
	Name     string `yaml:"name"`
	Mesh     string `yaml:"mesh"`
	Material string `yaml:"material"`
	Position Vec3   `yaml:"position"`
}

type DistributionDoc struct {
	Curve    string               `yaml:"curve"`
	Source   string               `yaml:"source"`
	Count    *int                 `yaml:"count"`
	Spacing  distribution.Spacing `yaml:"spacing"`
	Align    bool                 `yaml:"align"`
	Up       *Vec3                `yaml:"up"`
	Offset   Vec3                 `yaml:"offset"`
	Disabled bool                 `yaml:"disabled"`
	Project  *yaml.Node           `yaml:"project"`
}

type FollowerDoc struct {
	Curve         string          `yaml:"curve"`
	Speed         *float32        `yaml:"speed"`
	Start         float32         `yaml:"start"`
	Loop          follow.LoopMode `yaml:"loop"`
	Align         *bool           `yaml:"align"`
	Up            *Vec3           `yaml:"up"`
	Offset        Vec3            `yaml:"offset"`
	ConstantSpeed *bool           `yaml:"constant_speed"`
	Paused        bool            `yaml:"paused"`
}

type RoadDoc struct {
	Name       string      `yaml:"name"`
	Curve      string      `yaml:"curve"`
	Template   TemplateDoc `yaml:"template"`
	Segments   int         `yaml:"segments"`
	UVTile     *float32    `yaml:"uv_tile"`
	AutoUpdate *bool       `yaml:"auto_update"`
	Project    *yaml.Node  `yaml:"project"`
}

// TemplateDoc is either an OBJ file or the parameters of a generated
// segment. Zero width and length default to 4 and 1.
type TemplateDoc struct {
	OBJ        string  `yaml:"obj"`
	Width      float32 `yaml:"width"`
	Length     float32 `yaml:"length"`
	CurbHeight float32 `yaml:"curb_height"`
	CurbWidth  float32 `yaml:"curb_width"`
}

type IntersectionDoc struct {
	Connections []ConnectionDoc `yaml:"connections"`
	Radius      *float32        `yaml:"radius"`
	AutoUpdate  *bool           `yaml:"auto_update"`
}

type ConnectionDoc struct {
	Road string   `yaml:"road"`
	End  road.End `yaml:"end"`
}

// Vec3 is a vector written as a three element sequence.
type Vec3 [3]float32

// Vec returns v as a math.Vec3.
func (v Vec3) Vec() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// LoadFile reads a scene document. Relative OBJ and heightmap paths are
// resolved against the document's directory.
func LoadFile(path string, settings Settings) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return Load(bytes.NewReader(data), filepath.Dir(path), settings)
}

// Load decodes a scene document from r. dir is the base for relative
// paths.
func Load(r io.Reader, dir string, settings Settings) (*Scene, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return Build(&doc, dir, settings)
}

// Build creates a scene from a decoded document.
func Build(doc *Document, dir string, settings Settings) (*Scene, error) {
	b := &builder{
		scene:  New(settings),
		dir:    dir,
		curves: make(map[string]handle.Handle),
		props:  make(map[string]handle.Handle),
		roads:  make(map[string]handle.Handle),
	}
	steps := []func(*Document) error{
		b.terrain,
		b.addCurves,
		b.addProps,
		b.addDistributions,
		b.addFollowers,
		b.addRoads,
		b.addIntersections,
	}
	for _, step := range steps {
		if err := step(doc); err != nil {
			return nil, err
		}
	}
	return b.scene, nil
}

type builder struct {
	scene  *Scene
	dir    string
	curves map[string]handle.Handle
	props  map[string]handle.Handle
	roads  map[string]handle.Handle
}

func (b *builder) path(p string) string {
	if filepath.IsAbs(p) || b.dir == "" {
		return p
	}
	return filepath.Join(b.dir, p)
}

func (b *builder) terrain(doc *Document) error {
	t := doc.Terrain
	if t == nil {
		return nil
	}
	switch {
	case t.Heightmap != "":
		hm, err := formats.ParseHeightmapFile(b.path(t.Heightmap))
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		hf := surface.NewHeightfield(hm)
		hf.Layers = t.Layers
		b.scene.Raycaster = hf
	case t.Image != "":
		cell, scale := t.CellSize, t.HeightScale
		if cell == 0 {
			cell = defaultImageCellSize
		}
		if scale == 0 {
			scale = defaultImageHeightScale
		}
		hm, err := formats.ParseHeightmapImageFile(b.path(t.Image), cell, scale)
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		hm.Origin = t.Origin
		hf := surface.NewHeightfield(hm)
		hf.Layers = t.Layers
		b.scene.Raycaster = hf
	case t.Plane != nil:
		b.scene.Raycaster = surface.Plane{Height: *t.Plane, Layers: t.Layers}
	}
	return nil
}

func (b *builder) addCurves(doc *Document) error {
	for i, cd := range doc.Curves {
		name := cd.Name
		if name == "" {
			name = fmt.Sprintf("curve%d", i)
		}
		if _, dup := b.curves[name]; dup {
			return fmt.Errorf("curve %q: %w", name, ErrDuplicate)
		}
		points := make([]math.Vec3, len(cd.Points))
		for j, p := range cd.Points {
			points[j] = p.Vec()
		}
		c := spline.New(cd.Basis, points)
		c.Closed = cd.Closed

		h := b.scene.AddCurve(name, c)
		n := b.scene.Curves.Get(h)
		n.Transform = math.TransformFromTranslation(cd.Translation.Vec())
		cfg, err := b.projection(cd.Project)
		if err != nil {
			return fmt.Errorf("curve %q: %w", name, err)
		}
		n.Projection = cfg
		b.curves[name] = h
	}
	return nil
}

func (b *builder) addProps(doc *Document) error {
	for _, pd := range doc.Props {
		if _, dup := b.props[pd.Name]; dup {
			return fmt.Errorf("prop %q: %w", pd.Name, ErrDuplicate)
		}
		b.props[pd.Name] = b.scene.AddProp(&Prop{
			Name:      pd.Name,
			Transform: math.TransformFromTranslation(pd.Position.Vec()),
			Visual:    distribution.Visual{Mesh: pd.Mesh, Material: pd.Material},
		})
	}
	return nil
}

func (b *builder) addDistributions(doc *Document) error {
	for i, dd := range doc.Distributions {
		curve, ok := b.curves[dd.Curve]
		if !ok {
			return fmt.Errorf("distribution %d: %q: %w", i, dd.Curve, ErrUnknownCurve)
		}
		source, ok := b.props[dd.Source]
		if !ok {
			return fmt.Errorf("distribution %d: %q: %w", i, dd.Source, ErrUnknownProp)
		}
		count := b.scene.Settings.DistributionCount
		if dd.Count != nil {
			count = *dd.Count
		}

		d := distribution.New(curve, source, count)
		d.Spacing = dd.Spacing
		d.Offset = dd.Offset.Vec()
		d.Enabled = !dd.Disabled
		if dd.Align {
			up := math.UnitY
			if dd.Up != nil {
				up = dd.Up.Vec()
			}
			d.Orientation = distribution.AlignToTangentWithUp(up)
		}
		cfg, err := b.projection(dd.Project)
		if err != nil {
			return fmt.Errorf("distribution %d: %w", i, err)
		}
		d.Projection = cfg
		b.scene.AddDistribution(d)
	}
	return nil
}

func (b *builder) addFollowers(doc *Document) error {
	for i, fd := range doc.Followers {
		curve, ok := b.curves[fd.Curve]
		if !ok {
			return fmt.Errorf("follower %d: %q: %w", i, fd.Curve, ErrUnknownCurve)
		}
		f := follow.NewFollower(curve)
		f.SetStart(fd.Start)
		f.LoopMode = fd.Loop
		f.Offset = fd.Offset.Vec()
		if fd.Speed != nil {
			f.Speed = *fd.Speed
		}
		if fd.Align != nil {
			f.AlignToTangent = *fd.Align
		}
		if fd.Up != nil {
			f.UpVector = fd.Up.Vec()
		}
		if fd.ConstantSpeed != nil {
			f.ConstantSpeed = *fd.ConstantSpeed
		}
		if fd.Paused {
			f.Pause()
		}
		b.scene.AddFollower(f)
	}
	return nil
}

func (b *builder) addRoads(doc *Document) error {
	for i, rd := range doc.Roads {
		name := rd.Name
		if name == "" {
			name = fmt.Sprintf("road%d", i)
		}
		if _, dup := b.roads[name]; dup {
			return fmt.Errorf("road %q: %w", name, ErrDuplicate)
		}
		curve, ok := b.curves[rd.Curve]
		if !ok {
			return fmt.Errorf("road %q: %q: %w", name, rd.Curve, ErrUnknownCurve)
		}
		template, err := b.template(rd.Template)
		if err != nil {
			return fmt.Errorf("road %q: %w", name, err)
		}

		rn := &RoadNode{Road: *road.New(curve, template), Name: name}
		if n := b.scene.Settings.RoadSegments; n > 0 {
			rn.Segments = n
		}
		if l := b.scene.Settings.RoadUVTileLength; l > 0 {
			rn.UVTileLength = l
		}
		if rd.Segments > 0 {
			rn.Segments = rd.Segments
		}
		if rd.UVTile != nil {
			rn.UVTileLength = *rd.UVTile
		}
		if rd.AutoUpdate != nil {
			rn.AutoUpdate = *rd.AutoUpdate
		}
		if rn.Projection, err = b.projection(rd.Project); err != nil {
			return fmt.Errorf("road %q: %w", name, err)
		}
		b.roads[name] = b.scene.AddRoad(rn)
	}
	return nil
}

func (b *builder) template(td TemplateDoc) (*mesh.Mesh, error) {
	if td.OBJ != "" {
		return formats.ParseOBJFile(b.path(td.OBJ))
	}
	width, length := td.Width, td.Length
	if width <= 0 {
		width = 4
	}
	if length <= 0 {
		length = 1
	}
	return road.CreateSegmentMesh(width, length, td.CurbHeight, td.CurbWidth), nil
}

func (b *builder) addIntersections(doc *Document) error {
	for i, id := range doc.Intersections {
		in := road.NewIntersection()
		for _, cd := range id.Connections {
			h, ok := b.roads[cd.Road]
			if !ok {
				return fmt.Errorf("intersection %d: %q: %w", i, cd.Road, ErrUnknownRoad)
			}
			in.Connections = append(in.Connections, road.Connection{Road: h, End: cd.End})
		}
		in.Radius = id.Radius
		if id.AutoUpdate != nil {
			in.AutoUpdate = *id.AutoUpdate
		}
		b.scene.AddIntersection(in)
	}
	return nil
}

// projection decodes a projection block over the configured defaults. A
// missing block disables projection.
func (b *builder) projection(node *yaml.Node) (*surface.Config, error) {
	if node == nil {
		return nil, nil
	}
	cfg := b.scene.Settings.Projection
	if err := node.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid projection: %w", err)
	}
	return &cfg, nil
}

// FindCurve returns the first curve with the given name.
func (s *Scene) FindCurve(name string) (handle.Handle, bool) {
	for _, h := range s.Curves.Handles() {
		if s.Curves.Get(h).Name == name {
			return h, true
		}
	}
	return handle.Nil, false
}

// FindRoad returns the first road with the given name.
func (s *Scene) FindRoad(name string) (handle.Handle, bool) {
	for _, h := range s.Roads.Handles() {
		if s.Roads.Get(h).Name == name {
			return h, true
		}
	}
	return handle.Nil, false
}
