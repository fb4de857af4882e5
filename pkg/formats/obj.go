package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/spline3d/pkg/math"
	"github.com/Faultbox/spline3d/pkg/mesh"
)

// OBJ format errors.
var (
	ErrInvalidOBJ      = errors.New("invalid OBJ data")
	ErrOBJIndexInvalid = errors.New("invalid OBJ face index")
)

// objCorner is one face corner as indexes into the v, vt and vn arrays.
// Missing attributes are -1.
type objCorner struct {
	v, vt, vn int
}

type objDecoder struct {
	line      int
	positions []math.Vec3
	uvs       [][2]float32
	normals   []math.Vec3

	out     *mesh.Mesh
	corners map[objCorner]uint32
	hasUV   bool
	hasNorm bool
}

// ParseOBJ reads a Wavefront OBJ stream into a single mesh. Objects, groups,
// materials and smoothing groups are ignored; polygons are fan triangulated.
// UVs and normals are kept only when every face corner references them.
func ParseOBJ(r io.Reader) (*mesh.Mesh, error) {
	dec := &objDecoder{
		out:     &mesh.Mesh{},
		corners: make(map[objCorner]uint32),
		hasUV:   true,
		hasNorm: true,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	m := dec.out
	if !dec.hasUV || len(m.UVs) != len(m.Positions) {
		m.UVs = nil
	}
	if !dec.hasNorm || len(m.Normals) != len(m.Positions) {
		m.ComputeNormals()
	}
	m.ComputeBounds()
	return m, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

func (d *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := d.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		d.positions = append(d.positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vt":
		v, err := d.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		d.uvs = append(d.uvs, [2]float32{v[0], v[1]})
	case "vn":
		v, err := d.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		d.normals = append(d.normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "f":
		return d.parseFace(fields[1:])
	}
	return nil
}

func (d *objDecoder) parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: line %d: want %d values, got %d", ErrInvalidOBJ, d.line, n, len(fields))
	}
	out := make([]float32, n)
	for i := range n {
		val, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, d.line, err)
		}
		out[i] = float32(val)
	}
	return out, nil
}

// parseFace handles f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: line %d: face with %d corners", ErrInvalidOBJ, d.line, len(fields))
	}

	indices := make([]uint32, len(fields))
	for i, field := range fields {
		c, err := d.parseCorner(field)
		if err != nil {
			return err
		}
		indices[i] = d.vertex(c)
	}

	for i := 1; i+1 < len(indices); i++ {
		d.out.Indices = append(d.out.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

func (d *objDecoder) parseCorner(field string) (objCorner, error) {
	parts := strings.Split(field, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}

	var err error
	if c.v, err = d.resolve(parts[0], len(d.positions)); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = d.resolve(parts[1], len(d.uvs)); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = d.resolve(parts[2], len(d.normals)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolve converts a 1-based or negative relative OBJ index to 0-based.
func (d *objDecoder) resolve(s string, count int) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %q", ErrOBJIndexInvalid, d.line, s)
	}

	idx := val - 1
	if val < 0 {
		idx = count + val
	}
	if val == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: line %d: %d of %d", ErrOBJIndexInvalid, d.line, val, count)
	}
	return idx, nil
}

// vertex returns the output index for a corner, adding it on first use.
func (d *objDecoder) vertex(c objCorner) uint32 {
	if idx, ok := d.corners[c]; ok {
		return idx
	}

	idx := uint32(len(d.out.Positions))
	d.out.Positions = append(d.out.Positions, d.positions[c.v])

	if c.vt >= 0 {
		d.out.UVs = append(d.out.UVs, d.uvs[c.vt])
	} else {
		d.hasUV = false
		d.out.UVs = append(d.out.UVs, [2]float32{})
	}
	if c.vn >= 0 {
		d.out.Normals = append(d.out.Normals, d.normals[c.vn])
	} else {
		d.hasNorm = false
		d.out.Normals = append(d.out.Normals, math.Vec3{})
	}

	d.corners[c] = idx
	return idx
}

// WriteOBJ writes m as a single OBJ object. Vertex attributes share one
// index per vertex.
func WriteOBJ(w io.Writer, m *mesh.Mesh, name string) error {
	bw := bufio.NewWriter(w)

	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}

	hasUV := m.HasUVs()
	hasNorm := len(m.Normals) == len(m.Positions) && len(m.Normals) > 0
	if hasUV {
		for _, uv := range m.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
		}
	}
	if hasNorm {
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
	}

	corner := func(i uint32) string {
		n := i + 1
		switch {
		case hasUV && hasNorm:
			return fmt.Sprintf("%d/%d/%d", n, n, n)
		case hasUV:
			return fmt.Sprintf("%d/%d", n, n)
		case hasNorm:
			return fmt.Sprintf("%d//%d", n, n)
		default:
			return strconv.Itoa(int(n))
		}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		fmt.Fprintf(bw, "f %s %s %s\n", corner(m.Indices[i]), corner(m.Indices[i+1]), corner(m.Indices[i+2]))
	}

	return bw.Flush()
}

// WriteOBJFile writes m to path.
func WriteOBJFile(path string, m *mesh.Mesh, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(f, m, name); err != nil {
		f.Close()
		return fmt.Errorf("writing OBJ file: %w", err)
	}
	return f.Close()
}
