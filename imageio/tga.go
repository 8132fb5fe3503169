package imageio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pixelloom/wfc/raster"
)

// Uncompressed TGA: 18 byte header, then pixel data bottom-to-top,
// left-to-right. No library anywhere in the example corpus speaks TGA, so
// this follows the teacher's own pattern for a small from-scratch binary
// format reader (nesrom.go, ines.go): a fixed header struct decoded with
// encoding/binary, validated field by field, then a flat data copy.
type tgaHeader struct {
	IDLength        uint8
	ColorMapType    uint8
	ImageType       uint8
	CMapFirstEntry  uint16
	CMapLength      uint16
	CMapEntrySize   uint8
	XOrigin         uint16
	YOrigin         uint16
	Width           uint16
	Height          uint16
	PixelDepth      uint8
	ImageDescriptor uint8
}

const (
	tgaTypeGray      = 3
	tgaTypeTrueColor = 2
)

func decodeTGA(path string) (*raster.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: opening %s: %w", path, err)
	}
	defer f.Close()

	var hdr tgaHeader
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("imageio: reading tga header of %s: %w", path, err)
	}
	if hdr.ColorMapType != 0 {
		return nil, fmt.Errorf("imageio: %s: color-mapped tga not supported", path)
	}
	if hdr.ImageType != tgaTypeGray && hdr.ImageType != tgaTypeTrueColor {
		return nil, fmt.Errorf("imageio: %s: tga image type %d not supported (only uncompressed gray/truecolor)", path, hdr.ImageType)
	}
	if hdr.IDLength > 0 {
		if _, err := f.Seek(int64(hdr.IDLength), 1); err != nil {
			return nil, fmt.Errorf("imageio: skipping tga id field of %s: %w", path, err)
		}
	}

	var components int
	switch hdr.PixelDepth {
	case 8:
		components = 1
	case 24:
		components = 3
	case 32:
		components = 4
	default:
		return nil, fmt.Errorf("imageio: %s: tga pixel depth %d not supported", path, hdr.PixelDepth)
	}

	w, h := int(hdr.Width), int(hdr.Height)
	out, err := raster.New(w, h, components)
	if err != nil {
		return nil, fmt.Errorf("imageio: allocating raster for %s: %w", path, err)
	}

	row := make([]byte, w*components)
	// TGA stores rows bottom-to-top unless bit 5 of the descriptor is set.
	topDown := hdr.ImageDescriptor&0x20 != 0
	px := make([]byte, components)
	for y := 0; y < h; y++ {
		if _, err := readFull(f, row); err != nil {
			return nil, fmt.Errorf("imageio: reading tga row of %s: %w", path, err)
		}
		dstY := y
		if !topDown {
			dstY = h - 1 - y
		}
		for x := 0; x < w; x++ {
			src := row[x*components : x*components+components]
			if components >= 3 {
				// TGA truecolor stores BGR(A); Raster expects RGB(A).
				px[0], px[1], px[2] = src[2], src[1], src[0]
				if components == 4 {
					px[3] = src[3]
				}
			} else {
				px[0] = src[0]
			}
			out.Set(x, dstY, px)
		}
	}
	return out, nil
}

func encodeTGA(path string, r *raster.Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: creating %s: %w", path, err)
	}
	defer f.Close()

	var imgType uint8 = tgaTypeTrueColor
	var depth uint8 = 24
	switch r.Components {
	case 1:
		imgType, depth = tgaTypeGray, 8
	case 3:
		imgType, depth = tgaTypeTrueColor, 24
	case 4:
		imgType, depth = tgaTypeTrueColor, 32
	default:
		return fmt.Errorf("imageio: %s: tga encoding only supports 1, 3 or 4 component rasters, got %d", path, r.Components)
	}

	hdr := tgaHeader{
		ImageType:       imgType,
		Width:           uint16(r.Width),
		Height:          uint16(r.Height),
		PixelDepth:      depth,
		ImageDescriptor: 0x20, // store rows top-down
	}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("imageio: writing tga header of %s: %w", path, err)
	}

	row := make([]byte, r.Width*r.Components)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			src := r.At(x, y)
			dst := row[x*r.Components : x*r.Components+r.Components]
			if r.Components >= 3 {
				dst[0], dst[1], dst[2] = src[2], src[1], src[0]
				if r.Components == 4 {
					dst[3] = src[3]
				}
			} else {
				dst[0] = src[0]
			}
		}
		if _, err := f.Write(row); err != nil {
			return fmt.Errorf("imageio: writing tga row of %s: %w", path, err)
		}
	}
	return nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		n += m
		if err != nil {
			if n == len(buf) {
				return n, nil
			}
			return n, err
		}
	}
	return n, nil
}
