// Package raster implements the pixel-buffer primitives the wave function
// collapse pipeline is built on: copying, wrap-expansion, flips, rotations
// and the direction-aware overlap test used by the rule compiler.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Direction is one of the four cardinal neighbor directions a cell can
// propagate constraints in.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = map[Direction]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

func (d Direction) String() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Opposite returns the direction that undoes d: Up<->Down, Left<->Right.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	panic(fmt.Sprintf("raster: invalid direction %d", int(d)))
}

// Directions lists all four cardinal directions in a fixed, stable order.
var Directions = [4]Direction{Up, Down, Left, Right}

// Raster is a tightly packed, row-major rectangular pixel buffer.
// Components is the number of bytes per pixel (1-4) and is shared by
// every Raster produced within one session.
type Raster struct {
	Width      int
	Height     int
	Components int
	Pix        []byte
}

// New allocates a zeroed Raster of the given dimensions.
func New(w, h, components int) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid dimensions %dx%d", w, h)
	}
	if components < 1 || components > 4 {
		return nil, fmt.Errorf("raster: invalid component count %d", components)
	}
	return &Raster{
		Width:      w,
		Height:     h,
		Components: components,
		Pix:        make([]byte, w*h*components),
	}, nil
}

// Stride is the number of bytes occupied by one row.
func (r *Raster) Stride() int {
	return r.Width * r.Components
}

// Offset returns the byte offset of pixel (x, y) within Pix.
func (r *Raster) Offset(x, y int) int {
	return y*r.Stride() + x*r.Components
}

// At returns the bytes for pixel (x, y). The returned slice aliases Pix.
func (r *Raster) At(x, y int) []byte {
	o := r.Offset(x, y)
	return r.Pix[o : o+r.Components]
}

// Set overwrites the bytes for pixel (x, y).
func (r *Raster) Set(x, y int, px []byte) {
	copy(r.At(x, y), px)
}

// Equal reports whether two rasters have identical dimensions, component
// counts and byte buffers.
func Equal(a, b *Raster) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Width != b.Width || a.Height != b.Height || a.Components != b.Components {
		return false
	}
	return bytes.Equal(a.Pix, b.Pix)
}

// Copy returns a byte-for-byte duplicate of r.
func Copy(r *Raster) *Raster {
	out := &Raster{Width: r.Width, Height: r.Height, Components: r.Components}
	out.Pix = make([]byte, len(r.Pix))
	copy(out.Pix, r.Pix)
	return out
}

// Sub extracts a tw x th window starting at (x, y), without bounds checks
// beyond what the caller's harvesting loop already guarantees.
func Sub(r *Raster, x, y, tw, th int) *Raster {
	out := &Raster{Width: tw, Height: th, Components: r.Components, Pix: make([]byte, tw*th*r.Components)}
	for row := 0; row < th; row++ {
		src := r.Offset(x, y+row)
		dst := out.Offset(0, row)
		n := tw * r.Components
		copy(out.Pix[dst:dst+n], r.Pix[src:src+n])
	}
	return out
}

// WrapExpand produces a raster of size (W+xexp, H+yexp) where pixel (x, y)
// of the result equals pixel (x mod W, y mod H) of r. It is used to make
// tile harvesting treat the input as a torus.
func WrapExpand(r *Raster, xexp, yexp int) (*Raster, error) {
	if xexp < 0 || yexp < 0 {
		return nil, fmt.Errorf("raster: negative expansion (%d, %d)", xexp, yexp)
	}
	out, err := New(r.Width+xexp, r.Height+yexp, r.Components)
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.Height; y++ {
		sy := y % r.Height
		for x := 0; x < out.Width; x++ {
			sx := x % r.Width
			out.Set(x, y, r.At(sx, sy))
		}
	}
	return out, nil
}

// FlipH mirrors r left-right.
func FlipH(r *Raster) *Raster {
	out, _ := New(r.Width, r.Height, r.Components)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			out.Set(r.Width-1-x, y, r.At(x, y))
		}
	}
	return out
}

// FlipV mirrors r top-bottom.
func FlipV(r *Raster) *Raster {
	out, _ := New(r.Width, r.Height, r.Components)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			out.Set(x, r.Height-1-y, r.At(x, y))
		}
	}
	return out
}

// Rotate90 rotates r clockwise by n*90 degrees, n in {1, 2, 3}. Odd n swap
// width and height.
func Rotate90(r *Raster, n int) (*Raster, error) {
	switch n {
	case 1:
		out, _ := New(r.Height, r.Width, r.Components)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				out.Set(r.Height-1-y, x, r.At(x, y))
			}
		}
		return out, nil
	case 2:
		out, _ := New(r.Width, r.Height, r.Components)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				out.Set(r.Width-1-x, r.Height-1-y, r.At(x, y))
			}
		}
		return out, nil
	case 3:
		out, _ := New(r.Height, r.Width, r.Components)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				out.Set(y, r.Width-1-x, r.At(x, y))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("raster: invalid rotation count %d", n)
}

// Overlap reports whether shifting a by one pixel in direction d makes it
// coincide byte-for-byte with b on their intersecting rectangle. Comparison
// is exact; there is no color tolerance.
func Overlap(a, b *Raster, d Direction) bool {
	if a.Width != b.Width || a.Height != b.Height || a.Components != b.Components {
		return false
	}
	w, h := a.Width, a.Height
	switch d {
	case Right:
		return regionEqual(a, 1, 0, b, 0, 0, w-1, h)
	case Left:
		return regionEqual(a, 0, 0, b, 1, 0, w-1, h)
	case Down:
		return regionEqual(a, 0, 1, b, 0, 0, w, h-1)
	case Up:
		return regionEqual(a, 0, 0, b, 0, 1, w, h-1)
	}
	return false
}

func regionEqual(a *Raster, ax, ay int, b *Raster, bx, by, rw, rh int) bool {
	if rw <= 0 || rh <= 0 {
		return true
	}
	n := rw * a.Components
	for row := 0; row < rh; row++ {
		ao := a.Offset(ax, ay+row)
		bo := b.Offset(bx, by+row)
		if !bytes.Equal(a.Pix[ao:ao+n], b.Pix[bo:bo+n]) {
			return false
		}
	}
	return true
}

// FromImage converts a standard library image.Image into a Raster with the
// requested component count (1: gray, 2: gray+alpha, 3: RGB, 4: RGBA).
func FromImage(img image.Image, components int) (*Raster, error) {
	if components < 1 || components > 4 {
		return nil, fmt.Errorf("raster: invalid component count %d", components)
	}
	b := img.Bounds()
	out, err := New(b.Dx(), b.Dy(), components)
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8, g8, b8, a8 := byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8)
			switch components {
			case 1:
				out.Set(x, y, []byte{gray(r8, g8, b8)})
			case 2:
				out.Set(x, y, []byte{gray(r8, g8, b8), a8})
			case 3:
				out.Set(x, y, []byte{r8, g8, b8})
			case 4:
				out.Set(x, y, []byte{r8, g8, b8, a8})
			}
		}
	}
	return out, nil
}

// ToImage converts r into a standard library image.NRGBA for encoding or
// on-screen display.
func (r *Raster) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			px := r.At(x, y)
			var c color.NRGBA
			switch r.Components {
			case 1:
				c = color.NRGBA{px[0], px[0], px[0], 0xff}
			case 2:
				c = color.NRGBA{px[0], px[0], px[0], px[1]}
			case 3:
				c = color.NRGBA{px[0], px[1], px[2], 0xff}
			case 4:
				c = color.NRGBA{px[0], px[1], px[2], px[3]}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gray(r, g, b byte) byte {
	return byte((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}
