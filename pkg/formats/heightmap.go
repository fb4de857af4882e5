package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Heightmap format errors.
var (
	ErrInvalidHeightmapMagic       = errors.New("invalid heightmap magic: expected 'HFLD'")
	ErrUnsupportedHeightmapVersion = errors.New("unsupported heightmap version")
	ErrTruncatedHeightmapData      = errors.New("truncated heightmap data")
)

const heightmapMagic = "HFLD"

// heightmapHeaderSize is magic, version, width, depth, cell size and origin.
const heightmapHeaderSize = 4 + 2 + 4 + 4 + 4 + 12

// HeightmapVersion represents the heightmap file version.
type HeightmapVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v HeightmapVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Heightmap is a regular grid of terrain heights. Samples are stored row by
// row along +Z, each row running along +X.
//
// Layout (little endian):
//
//	"HFLD" | minor u8 | major u8 | width u32 | depth u32 |
//	cell size f32 | origin x,y,z f32 | width*depth heights f32
type Heightmap struct {
	Version  HeightmapVersion
	Width    uint32
	Depth    uint32
	CellSize float32
	Origin   [3]float32
	Heights  []float32
}

// NewHeightmap creates a flat heightmap with the current version.
func NewHeightmap(width, depth uint32, cellSize float32) *Heightmap {
	return &Heightmap{
		Version:  HeightmapVersion{Major: 1, Minor: 0},
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		Heights:  make([]float32, int(width)*int(depth)),
	}
}

// At returns the height sample at grid coordinates (x, z).
// Returns 0 if coordinates are out of bounds.
func (h *Heightmap) At(x, z int) float32 {
	if x < 0 || z < 0 || x >= int(h.Width) || z >= int(h.Depth) {
		return 0
	}
	return h.Heights[z*int(h.Width)+x]
}

// Set stores a height sample. Out of bounds coordinates are ignored.
func (h *Heightmap) Set(x, z int, height float32) {
	if x < 0 || z < 0 || x >= int(h.Width) || z >= int(h.Depth) {
		return
	}
	h.Heights[z*int(h.Width)+x] = height
}

// GetAltitudeRange returns the minimum and maximum height.
func (h *Heightmap) GetAltitudeRange() (lo, hi float32) {
	if len(h.Heights) == 0 {
		return 0, 0
	}
	lo, hi = h.Heights[0], h.Heights[0]
	for _, v := range h.Heights {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// ParseHeightmap parses a heightmap from raw bytes.
func ParseHeightmap(data []byte) (*Heightmap, error) {
	if len(data) < heightmapHeaderSize {
		return nil, ErrTruncatedHeightmapData
	}
	if string(data[0:4]) != heightmapMagic {
		return nil, ErrInvalidHeightmapMagic
	}

	// Version is stored as [minor, major]
	version := HeightmapVersion{Major: data[5], Minor: data[4]}
	if version.Major != 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHeightmapVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var header struct {
		Width, Depth uint32
		CellSize     float32
		Origin       [3]float32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedHeightmapData)
	}

	if header.Width < 2 || header.Depth < 2 || header.Width > 8192 || header.Depth > 8192 {
		return nil, fmt.Errorf("invalid heightmap dimensions: %dx%d", header.Width, header.Depth)
	}
	if header.CellSize <= 0 {
		return nil, fmt.Errorf("invalid heightmap cell size: %v", header.CellSize)
	}

	h := &Heightmap{
		Version:  version,
		Width:    header.Width,
		Depth:    header.Depth,
		CellSize: header.CellSize,
		Origin:   header.Origin,
		Heights:  make([]float32, int(header.Width)*int(header.Depth)),
	}
	if err := binary.Read(r, binary.LittleEndian, h.Heights); err != nil {
		return nil, fmt.Errorf("%w: reading %d heights", ErrTruncatedHeightmapData, len(h.Heights))
	}

	return h, nil
}

// ParseHeightmapFile parses a heightmap file from disk.
func ParseHeightmapFile(path string) (*Heightmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightmap file: %w", err)
	}
	return ParseHeightmap(data)
}

// WriteHeightmap encodes h in the binary heightmap format.
func WriteHeightmap(w io.Writer, h *Heightmap) error {
	if len(h.Heights) != int(h.Width)*int(h.Depth) {
		return fmt.Errorf("heightmap has %d heights, want %dx%d", len(h.Heights), h.Width, h.Depth)
	}

	buf := new(bytes.Buffer)
	buf.WriteString(heightmapMagic)
	buf.WriteByte(h.Version.Minor)
	buf.WriteByte(h.Version.Major)
	binary.Write(buf, binary.LittleEndian, h.Width)
	binary.Write(buf, binary.LittleEndian, h.Depth)
	binary.Write(buf, binary.LittleEndian, h.CellSize)
	binary.Write(buf, binary.LittleEndian, h.Origin)
	binary.Write(buf, binary.LittleEndian, h.Heights)

	_, err := w.Write(buf.Bytes())
	return err
}
