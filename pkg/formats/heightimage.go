package formats

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // PNG decoder registration
	"io"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// HeightmapFromImage converts a grayscale image into a heightmap. Pixel
// (x, y) becomes sample (x, z=y); black maps to 0 and white to heightScale.
// Color images are reduced to luminance.
func HeightmapFromImage(img image.Image, cellSize, heightScale float32) (*Heightmap, error) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, fmt.Errorf("invalid heightmap image size: %dx%d", b.Dx(), b.Dy())
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("invalid heightmap cell size: %v", cellSize)
	}

	hm := NewHeightmap(uint32(b.Dx()), uint32(b.Dy()), cellSize)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			hm.Set(x-b.Min.X, y-b.Min.Y, float32(g.Y)/0xffff*heightScale)
		}
	}
	return hm, nil
}

// ParseHeightmapImage decodes a BMP or PNG image and converts it with
// HeightmapFromImage.
func ParseHeightmapImage(r io.Reader, cellSize, heightScale float32) (*Heightmap, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap image: %w", err)
	}
	hm, err := HeightmapFromImage(img, cellSize, heightScale)
	if err != nil {
		return nil, fmt.Errorf("%s image: %w", format, err)
	}
	return hm, nil
}

// ParseHeightmapImageFile reads a heightmap image from disk.
func ParseHeightmapImageFile(path string, cellSize, heightScale float32) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightmap image: %w", err)
	}
	defer f.Close()
	return ParseHeightmapImage(f, cellSize, heightScale)
}
