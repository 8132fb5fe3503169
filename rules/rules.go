// Package rules compiles the compact-prefix pattern set produced by
// package pattern into the dense 4-direction adjacency matrix the solver
// propagates against.
package rules

import (
	"github.com/pixelloom/wfc/pattern"
	"github.com/pixelloom/wfc/raster"
)

// Table is the boolean adjacency relation allowed[d][a][b]: pattern b may
// sit adjacent to pattern a in direction d. It is immutable once compiled.
type Table struct {
	p       int
	allowed []bool // flat, index via index()
}

func (t *Table) index(d raster.Direction, a, b int) int {
	return ((int(d)*t.p)+a)*t.p + b
}

// Allowed reports whether pattern b may appear adjacent to pattern a in
// direction d.
func (t *Table) Allowed(d raster.Direction, a, b int) bool {
	return t.allowed[t.index(d, a, b)]
}

// PatternCount returns P, the number of patterns the table was compiled
// for.
func (t *Table) PatternCount() int {
	return t.p
}

// Compile builds the adjacency matrix for every ordered triple (d, a, b).
// Self-overlap (a == b) is included: a pattern may sit next to its own
// copy whenever its own shifted content matches itself.
func Compile(patterns []*pattern.Pattern) *Table {
	p := len(patterns)
	t := &Table{p: p, allowed: make([]bool, 4*p*p)}
	for _, d := range raster.Directions {
		for a := 0; a < p; a++ {
			for b := 0; b < p; b++ {
				if raster.Overlap(patterns[a].Image, patterns[b].Image, d) {
					t.allowed[t.index(d, a, b)] = true
				}
			}
		}
	}
	return t
}
