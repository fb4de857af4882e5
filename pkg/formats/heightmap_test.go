package formats

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeightmap_RoundTrip(t *testing.T) {
	h := NewHeightmap(3, 2, 2.5)
	h.Origin = [3]float32{-5, 0, -5}
	h.Set(1, 1, 4)
	h.Set(2, 0, -1)

	var buf bytes.Buffer
	if err := WriteHeightmap(&buf, h); err != nil {
		t.Fatalf("WriteHeightmap failed: %v", err)
	}

	got, err := ParseHeightmap(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseHeightmap failed: %v", err)
	}

	if got.Version.String() != "1.0" {
		t.Errorf("expected version 1.0, got %s", got.Version)
	}
	if got.Width != 3 || got.Depth != 2 {
		t.Errorf("expected 3x2, got %dx%d", got.Width, got.Depth)
	}
	if got.CellSize != 2.5 {
		t.Errorf("expected cell size 2.5, got %v", got.CellSize)
	}
	if got.At(1, 1) != 4 {
		t.Errorf("expected height 4 at (1,1), got %v", got.At(1, 1))
	}
	if got.At(9, 9) != 0 {
		t.Errorf("expected 0 out of bounds, got %v", got.At(9, 9))
	}

	lo, hi := got.GetAltitudeRange()
	if lo != -1 || hi != 4 {
		t.Errorf("expected range [-1, 4], got [%v, %v]", lo, hi)
	}
}

func TestParseHeightmap_Errors(t *testing.T) {
	valid := func() []byte {
		var buf bytes.Buffer
		WriteHeightmap(&buf, NewHeightmap(2, 2, 1))
		return buf.Bytes()
	}

	if _, err := ParseHeightmap([]byte("HFLD")); !errors.Is(err, ErrTruncatedHeightmapData) {
		t.Errorf("expected truncated error, got %v", err)
	}

	data := valid()
	copy(data, "NOPE")
	if _, err := ParseHeightmap(data); !errors.Is(err, ErrInvalidHeightmapMagic) {
		t.Errorf("expected magic error, got %v", err)
	}

	data = valid()
	data[5] = 7
	if _, err := ParseHeightmap(data); !errors.Is(err, ErrUnsupportedHeightmapVersion) {
		t.Errorf("expected version error, got %v", err)
	}

	data = valid()
	if _, err := ParseHeightmap(data[:len(data)-2]); !errors.Is(err, ErrTruncatedHeightmapData) {
		t.Errorf("expected truncated heights error, got %v", err)
	}
}
