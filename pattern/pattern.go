// Package pattern implements the tile-harvesting and augmentation pipeline
// that turns an input raster into a deduplicated, frequency-counted set of
// patterns for the rule compiler and solver.
package pattern

import (
	"fmt"

	"github.com/pixelloom/wfc/raster"
	"github.com/pixelloom/wfc/wfcerr"
)

// Options controls which augmentations Build applies on top of the raw
// harvested tiles.
type Options struct {
	Expand bool // wrap-expand the input before harvesting, so tiles wrap the torus
	XFlip  bool // append horizontal mirrors
	YFlip  bool // append vertical mirrors
	Rotate bool // append the three non-identity rotations
}

// Pattern is a small raster together with its occurrence count in the
// training set. PatternId is the pattern's index in the slice Build
// returns; it is assigned deterministically (first harvest order, then
// first flip, then rotations, then deduplicated).
type Pattern struct {
	Image *raster.Raster
	Freq  int
}

// Build harvests tw x th tiles from input, augments them per opts, and
// deduplicates the result in first-occurrence order.
func Build(input *raster.Raster, tw, th int, opts Options) ([]*Pattern, error) {
	if tw <= 0 || th <= 0 {
		return nil, fmt.Errorf("pattern: invalid tile size %dx%d: %w", tw, th, wfcerr.ErrBadArgument)
	}
	if !opts.Expand && (tw > input.Width || th > input.Height) {
		return nil, fmt.Errorf("pattern: tile %dx%d larger than input %dx%d without expand: %w",
			tw, th, input.Width, input.Height, wfcerr.ErrBadArgument)
	}

	patterns, err := harvest(input, tw, th, opts.Expand)
	if err != nil {
		return nil, err
	}

	if opts.XFlip {
		patterns = append(patterns, augment(patterns, func(p *Pattern) *Pattern {
			return &Pattern{Image: raster.FlipH(p.Image), Freq: 1}
		})...)
	}
	if opts.YFlip && !(opts.XFlip && opts.Rotate) {
		patterns = append(patterns, augment(patterns, func(p *Pattern) *Pattern {
			return &Pattern{Image: raster.FlipV(p.Image), Freq: 1}
		})...)
	}
	if opts.Rotate {
		base := patterns
		for _, n := range []int{1, 2, 3} {
			n := n
			patterns = append(patterns, augment(base, func(p *Pattern) *Pattern {
				rot, _ := raster.Rotate90(p.Image, n) // n is always in {1,2,3}
				return &Pattern{Image: rot, Freq: 1}
			})...)
		}
	}

	return dedup(patterns), nil
}

// harvest extracts every tw x th window of input in row-major order. If
// expand is set, the input is first wrap-expanded by (tw-1, th-1) so tiles
// wrap the torus; otherwise only fully in-bounds windows are taken.
func harvest(input *raster.Raster, tw, th int, expand bool) ([]*Pattern, error) {
	src := input
	ow, oh := input.Width-tw+1, input.Height-th+1
	if expand {
		expanded, err := raster.WrapExpand(input, tw-1, th-1)
		if err != nil {
			return nil, fmt.Errorf("pattern: expanding input: %w", err)
		}
		src = expanded
		ow, oh = input.Width, input.Height
	}

	patterns := make([]*Pattern, 0, ow*oh)
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			patterns = append(patterns, &Pattern{Image: raster.Sub(src, x, y, tw, th), Freq: 1})
		}
	}
	return patterns, nil
}

// augment snapshots the current pattern slice and returns a transformed
// copy of each element, using xform. The snapshot matters: callers append
// the result to the slice they read from, and must not observe entries
// created by this same pass.
func augment(current []*Pattern, xform func(*Pattern) *Pattern) []*Pattern {
	out := make([]*Pattern, len(current))
	for i, p := range current {
		out[i] = xform(p)
	}
	return out
}

// dedup compacts patterns in first-occurrence order, folding byte-identical
// images into a single entry and summing their frequencies.
func dedup(patterns []*Pattern) []*Pattern {
	kept := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		matched := false
		for _, k := range kept {
			if raster.Equal(p.Image, k.Image) {
				k.Freq += p.Freq
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, p)
		}
	}
	return kept
}
