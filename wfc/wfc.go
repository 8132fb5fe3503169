// Package wfc implements the overlapping wave function collapse solver:
// entropy-ordered cell selection, frequency-weighted collapse, and
// worklist-driven constraint propagation until fixpoint or contradiction.
// The solver runs on pattern indices only; it is decoupled from pixels
// after package rules has compiled the adjacency table.
package wfc

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pixelloom/wfc/pattern"
	"github.com/pixelloom/wfc/raster"
	"github.com/pixelloom/wfc/rules"
	"github.com/pixelloom/wfc/wfcerr"
)

// jitter is the tie-breaking term added to entropy when ranking cells for
// collapse: epsilon * u, u uniform in [0, 1).
const jitter = 1.0 / 100000

// propCap sizes the worklist's initial per-cell capacity. It is a hint,
// not a hard limit: the worklist is a plain slice grown with append when a
// pathological input produces more propagation churn than this per cell.
const propCap = 1000

// Status is one of the solver's states.
type Status int

const (
	StateReady Status = iota
	StateRunning
	StateCompleted
	StateContradicted
	StateBudgetExceeded
)

func (s Status) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateContradicted:
		return "contradicted"
	case StateBudgetExceeded:
		return "budget_exceeded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Success reports whether the run terminated either by reaching the
// "no cell with count > 1" fixpoint or by hitting the collapse budget.
func (s Status) Success() bool {
	return s == StateCompleted || s == StateBudgetExceeded
}

// Re-exported error sentinels; see package wfcerr for the full taxonomy.
var (
	ErrAllocation    = wfcerr.ErrAllocation
	ErrBadArgument   = wfcerr.ErrBadArgument
	ErrContradiction = wfcerr.ErrContradiction
)

type cell struct {
	start    int // fixed offset into the solver's candidate buffer: i*P
	count    int
	sumFreqs int
	entropy  float64
}

type propEntry struct {
	src, dst int
	dir      raster.Direction
}

// Solver holds the whole state of one overlapping WFC run: the compiled
// patterns and adjacency table, per-cell candidate state, and the
// propagation worklist. A Solver owns its RNG exclusively; nothing about
// it is safe to share between goroutines, though independent Solvers do
// not interfere with each other.
type Solver struct {
	outW, outH, cellCount int
	components            int
	p                      int
	patterns               []*pattern.Pattern
	table                  *rules.Table

	cells      []cell
	candidates []int // contiguous block, cellCount * p

	sumFreqsGlobal int
	entropyGlobal  float64

	worklist []propEntry
	cursor   int
	length   int

	collapsedCount int
	pickedAny      bool

	seed  int64
	rng   *rand.Rand
	state Status
}

// New builds patterns from input, compiles the adjacency table, allocates
// solver state for an outW x outH output, and seeds the RNG from the
// current wall-clock time.
func New(outW, outH int, input *raster.Raster, tw, th int, opts pattern.Options) (*Solver, error) {
	if outW <= 0 || outH <= 0 {
		return nil, fmt.Errorf("wfc: invalid output size %dx%d: %w", outW, outH, wfcerr.ErrBadArgument)
	}

	patterns, err := pattern.Build(input, tw, th, opts)
	if err != nil {
		return nil, err
	}
	p := len(patterns)
	if p == 0 {
		return nil, fmt.Errorf("wfc: no patterns extracted from input: %w", wfcerr.ErrBadArgument)
	}
	table := rules.Compile(patterns)

	sumGlobal := 0
	for _, pt := range patterns {
		sumGlobal += pt.Freq
	}
	entropyGlobal := 0.0
	for _, pt := range patterns {
		prob := float64(pt.Freq) / float64(sumGlobal)
		entropyGlobal -= prob * math.Log(prob)
	}

	cellCount := outW * outH
	s := &Solver{
		outW:           outW,
		outH:           outH,
		cellCount:      cellCount,
		components:     input.Components,
		p:              p,
		patterns:       patterns,
		table:          table,
		cells:          make([]cell, cellCount),
		candidates:     make([]int, cellCount*p),
		sumFreqsGlobal: sumGlobal,
		entropyGlobal:  entropyGlobal,
		worklist:       make([]propEntry, 0, propCap*cellCount),
	}
	s.InitWithSeed(time.Now().UnixNano())
	return s, nil
}

// Init reseeds the solver from the current wall-clock time and resets all
// cells. A subsequent Run behaves as a fresh solve.
func (s *Solver) Init() {
	s.InitWithSeed(time.Now().UnixNano())
}

// InitWithSeed reseeds the solver with an explicit seed and resets all
// cells. Tests pin reproducible runs with this instead of Init.
func (s *Solver) InitWithSeed(seed int64) {
	s.Seed(seed)
	s.resetCells()
	s.state = StateReady
}

// Seed sets the solver's RNG stream without touching cell state. Paired
// with a manual reset, this is what lets tests pin a seed the way the
// original library's test suite wrote solver.seed = S directly.
func (s *Solver) Seed(seed int64) {
	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))
}

func (s *Solver) resetCells() {
	for i := 0; i < s.cellCount; i++ {
		start := i * s.p
		s.cells[i] = cell{start: start, count: s.p, sumFreqs: s.sumFreqsGlobal, entropy: s.entropyGlobal}
		for j := 0; j < s.p; j++ {
			s.candidates[start+j] = j
		}
	}
	s.collapsedCount = 0
	for i := 0; i < s.cellCount; i++ {
		if s.cells[i].count == 1 {
			s.collapsedCount++
		}
	}
	s.pickedAny = false
	s.worklist = s.worklist[:0]
	s.cursor = 0
	s.length = 0
}

// State returns the solver's current state.
func (s *Solver) State() Status { return s.state }

// CollapsedCount returns the number of cells currently collapsed to a
// single candidate.
func (s *Solver) CollapsedCount() int { return s.collapsedCount }

// Close releases the solver's owned buffers. The Solver must not be used
// afterward.
func (s *Solver) Close() error {
	s.cells = nil
	s.candidates = nil
	s.worklist = nil
	s.patterns = nil
	s.table = nil
	return nil
}

// Run drives the solver until it reaches a fixpoint, hits a contradiction,
// or CollapsedCount reaches maxCollapse (-1 means unbounded). The budget
// counts every collapse since the last Init, not only those of this call.
func (s *Solver) Run(maxCollapse int) (Status, error) {
	if s.state == StateContradicted {
		return s.state, fmt.Errorf("wfc: solver is contradicted, call Init first: %w", wfcerr.ErrContradiction)
	}
	s.state = StateRunning
	for {
		if maxCollapse != -1 && s.collapsedCount >= maxCollapse {
			s.state = StateBudgetExceeded
			return s.state, nil
		}
		done, err := s.step()
		if err != nil {
			s.state = StateContradicted
			return s.state, err
		}
		if done {
			s.state = StateCompleted
			return s.state, nil
		}
	}
}

func (s *Solver) step() (bool, error) {
	chosen, ok := s.chooseCell()
	if !ok {
		return true, nil
	}
	if err := s.collapse(chosen); err != nil {
		return false, err
	}
	if err := s.propagate(chosen); err != nil {
		return false, err
	}
	return false, nil
}

// chooseCell picks the next cell to collapse: uniformly at random for the
// very first pick of a run, otherwise the cell with count > 1 minimizing
// entropy plus a jittered tie-breaker. A single pass over all cells both
// finds the best candidate and detects the "nothing left undecided" case.
func (s *Solver) chooseCell() (int, bool) {
	best := -1
	bestScore := math.Inf(1)
	for i := 0; i < s.cellCount; i++ {
		if s.cells[i].count <= 1 {
			continue
		}
		score := s.cells[i].entropy + jitter*s.rng.Float64()
		if score < bestScore {
			bestScore = score
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	if !s.pickedAny {
		s.pickedAny = true
		return s.rng.Intn(s.cellCount), true
	}
	return best, true
}

func (s *Solver) collapse(i int) error {
	c := &s.cells[i]
	if c.sumFreqs <= 0 {
		return fmt.Errorf("wfc: collapse at cell %d: %w", i, wfcerr.ErrContradiction)
	}

	r := s.rng.Intn(c.sumFreqs)
	winnerSlot := c.count - 1
	for k := 0; k < c.count; k++ {
		t := s.candidates[c.start+k]
		f := s.patterns[t].Freq
		if r < f {
			winnerSlot = k
			break
		}
		r -= f
	}

	winner := s.candidates[c.start+winnerSlot]
	s.candidates[c.start] = winner
	c.count = 1
	c.sumFreqs = 0
	c.entropy = 0
	s.collapsedCount++
	return nil
}

func (s *Solver) neighbor(i int, d raster.Direction) (int, bool) {
	x, y := i%s.outW, i/s.outW
	switch d {
	case raster.Up:
		y--
	case raster.Down:
		y++
	case raster.Left:
		x--
	case raster.Right:
		x++
	}
	if x < 0 || x >= s.outW || y < 0 || y >= s.outH {
		return 0, false
	}
	return y*s.outW + x, true
}

func (s *Solver) enqueue(src, dst int, dir raster.Direction) {
	for i := s.cursor + 1; i < s.length; i++ {
		e := s.worklist[i]
		if e.src == src && e.dst == dst && e.dir == dir {
			return
		}
	}
	s.worklist = append(s.worklist, propEntry{src, dst, dir})
	s.length++
}

func (s *Solver) propagate(origin int) error {
	s.worklist = s.worklist[:0]
	s.cursor, s.length = 0, 0

	for _, d := range raster.Directions {
		if nb, ok := s.neighbor(origin, d); ok {
			s.enqueue(origin, nb, d)
		}
	}

	for s.cursor < s.length {
		if err := s.propagateOne(s.worklist[s.cursor]); err != nil {
			return err
		}
		s.cursor++
	}
	return nil
}

func (s *Solver) propagateOne(e propEntry) error {
	src := &s.cells[e.src]
	dst := &s.cells[e.dst]
	before := dst.count

	k := 0
	for k < dst.count {
		t := s.candidates[dst.start+k]
		if s.tileEnabled(src, e.dir, t) {
			k++
			continue
		}

		last := dst.count - 1
		s.candidates[dst.start+k] = s.candidates[dst.start+last]
		dst.count = last

		f := s.patterns[t].Freq
		dst.sumFreqs -= f
		p := float64(f) / float64(s.sumFreqsGlobal)
		dst.entropy += p * math.Log(p)
	}

	if dst.count == 0 {
		return fmt.Errorf("wfc: propagation emptied cell %d: %w", e.dst, wfcerr.ErrContradiction)
	}

	if dst.count < before {
		if dst.count == 1 {
			s.collapsedCount++
		}
		opp := e.dir.Opposite()
		for _, d := range raster.Directions {
			if d == opp {
				continue
			}
			if nb, ok := s.neighbor(e.dst, d); ok {
				s.enqueue(e.dst, nb, d)
			}
		}
	}
	return nil
}

func (s *Solver) tileEnabled(src *cell, dir raster.Direction, t int) bool {
	for k := 0; k < src.count; k++ {
		if s.table.Allowed(dir, s.candidates[src.start+k], t) {
			return true
		}
	}
	return false
}

// OutputRaster composites the solver's current state into a raster. Each
// pixel is the floor-rounded mean, over the cell's current candidates, of
// the candidate pattern's top-left pixel only.
func (s *Solver) OutputRaster() *raster.Raster {
	out, _ := raster.New(s.outW, s.outH, s.components)
	sums := make([]int, s.components)
	px := make([]byte, s.components)

	for i := 0; i < s.cellCount; i++ {
		c := s.cells[i]
		for ci := range sums {
			sums[ci] = 0
		}
		for k := 0; k < c.count; k++ {
			t := s.candidates[c.start+k]
			corner := s.patterns[t].Image.At(0, 0)
			for ci := 0; ci < s.components; ci++ {
				sums[ci] += int(corner[ci])
			}
		}
		for ci := 0; ci < s.components; ci++ {
			px[ci] = byte(sums[ci] / c.count)
		}
		out.Set(i%s.outW, i/s.outW, px)
	}
	return out
}

// PatternAt returns the pattern id currently occupying cell i if it has
// collapsed to a singleton, and whether the cell is in fact a singleton.
func (s *Solver) PatternAt(i int) (int, bool) {
	c := s.cells[i]
	if c.count != 1 {
		return 0, false
	}
	return s.candidates[c.start], true
}

// Allowed exposes the compiled adjacency table for diagnostics and tests.
func (s *Solver) Allowed(d raster.Direction, a, b int) bool {
	return s.table.Allowed(d, a, b)
}

// PatternCount returns P, the number of distinct patterns in play.
func (s *Solver) PatternCount() int { return s.p }

// UndecidedCount returns the number of cells with more than one surviving
// candidate.
func (s *Solver) UndecidedCount() int {
	n := 0
	for i := 0; i < s.cellCount; i++ {
		if s.cells[i].count > 1 {
			n++
		}
	}
	return n
}

// Dimensions returns the output grid's width and height.
func (s *Solver) Dimensions() (int, int) { return s.outW, s.outH }
