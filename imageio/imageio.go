// Package imageio is the decode/encode boundary between files on disk and
// the raster.Raster the pattern builder and solver operate on. It mirrors
// the teacher's own from-scratch binary-format parsers (nesrom, ines,
// nesformat) for the one format with no library anywhere in the example
// corpus (TGA) and otherwise defers to the standard library and
// golang.org/x/image for the rest.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/pixelloom/wfc/raster"
	"github.com/pixelloom/wfc/wfcerr"
)

// ErrUnsupported is returned for any extension this package does not
// recognize.
var ErrUnsupported = wfcerr.ErrUnsupported

// Decode reads the image at path and converts it to a raster.Raster. The
// component count is inferred from the decoded image's color model: gray
// images become 1 component, images with alpha become 4, everything else
// becomes 3.
func Decode(path string) (*raster.Raster, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".tga" {
		return decodeTGA(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: opening %s: %w", path, err)
	}
	defer f.Close()

	var img image.Image
	switch ext {
	case ".png":
		img, err = png.Decode(f)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(f)
	case ".bmp":
		img, err = bmp.Decode(f)
	default:
		return nil, fmt.Errorf("imageio: decoding %s: extension %q: %w", path, ext, ErrUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("imageio: decoding %s: %w", path, err)
	}

	return raster.FromImage(img, componentsFor(img))
}

// Encode writes r to path, choosing the format from path's extension.
// JPEG is encoded at quality 100.
func Encode(path string, r *raster.Raster) error {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".tga" {
		return encodeTGA(path, r)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: creating %s: %w", path, err)
	}
	defer f.Close()

	img := r.ToImage()
	switch ext {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		return fmt.Errorf("imageio: encoding %s: extension %q: %w", path, ext, ErrUnsupported)
	}
	if err != nil {
		return fmt.Errorf("imageio: encoding %s: %w", path, err)
	}
	return nil
}

func componentsFor(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model:
		return 4
	default:
		return 3
	}
}
