package imageio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/pixelloom/wfc/raster"
	"github.com/pixelloom/wfc/wfcerr"
)

func sampleRaster(t *testing.T, components int) *raster.Raster {
	t.Helper()
	r, err := raster.New(4, 3, components)
	if err != nil {
		t.Fatalf("raster.New: %v", err)
	}
	for i := range r.Pix {
		r.Pix[i] = byte(i * 7)
	}
	return r
}

func TestPNGRoundTrip(t *testing.T) {
	in := sampleRaster(t, 4)
	path := filepath.Join(t.TempDir(), "sample.png")

	if err := Encode(path, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Width != in.Width || out.Height != in.Height {
		t.Fatalf("round trip size = %dx%d, want %dx%d", out.Width, out.Height, in.Width, in.Height)
	}
}

func TestBMPRoundTrip(t *testing.T) {
	in := sampleRaster(t, 3)
	path := filepath.Join(t.TempDir(), "sample.bmp")

	if err := Encode(path, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Width != in.Width || out.Height != in.Height {
		t.Fatalf("round trip size = %dx%d, want %dx%d", out.Width, out.Height, in.Width, in.Height)
	}
}

func TestTGARoundTrip(t *testing.T) {
	for _, components := range []int{1, 3, 4} {
		in := sampleRaster(t, components)
		path := filepath.Join(t.TempDir(), "sample.tga")

		if err := Encode(path, in); err != nil {
			t.Fatalf("components=%d: Encode: %v", components, err)
		}
		out, err := Decode(path)
		if err != nil {
			t.Fatalf("components=%d: Decode: %v", components, err)
		}
		if !raster.Equal(in, out) {
			t.Errorf("components=%d: tga round trip did not preserve pixels", components)
		}
	}
}

func TestUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.gif")
	r := sampleRaster(t, 3)

	if err := Encode(path, r); !errors.Is(err, wfcerr.ErrUnsupported) {
		t.Errorf("Encode err = %v, want wfcerr.ErrUnsupported", err)
	}
	if _, err := Decode(path); !errors.Is(err, wfcerr.ErrUnsupported) {
		t.Errorf("Decode err = %v, want wfcerr.ErrUnsupported", err)
	}
}
