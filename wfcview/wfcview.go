// Package wfcview is a live preview of an overlapping WFC solve, built as
// an ebiten.Game directly descended from the teacher's console.Bus: the
// same Update/Draw/Layout shape, the same "Update never blocks, Draw just
// blits the current buffer" split. Where the teacher ticks a CPU and PPU
// toward a fixed 60Hz frame, wfcview ticks the solver a bounded batch of
// collapses per frame and renders whatever the compositor currently
// produces, fully synchronous with no feedback into solver state.
package wfcview

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pixelloom/wfc/imageio"
	"github.com/pixelloom/wfc/wfc"
	"github.com/pixelloom/wfc/wfclog"
)

// BatchSize is how many cells one Update call collapses before yielding
// back to ebiten's frame loop.
const BatchSize = 64

// Viewer renders a Solver's progress live and, once it completes, writes
// the result to OutputPath. A solve that ends in a contradiction writes
// nothing.
type Viewer struct {
	Solver     *wfc.Solver
	OutputPath string

	done   bool
	status wfc.Status
	err    error
}

// New builds a Viewer and sizes the ebiten window to the solver's output
// dimensions, scaled 4x, in the same spirit as console.Bus.New sizing the
// NES window to 2x its native resolution.
func New(solver *wfc.Solver, outputPath string) *Viewer {
	w, h := solver.Dimensions()
	ebiten.SetWindowSize(w*4, h*4)
	ebiten.SetWindowTitle("wfcview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return &Viewer{Solver: solver, OutputPath: outputPath}
}

// Layout reports the solver's native output resolution; ebiten scales the
// window around it.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.Solver.Dimensions()
}

// Update advances the solve by one batch of collapses. Once the solve
// completes it writes the output image exactly once; once it completes or
// contradicts it stops ticking further. A contradiction writes no image
// and is reported through Err.
func (v *Viewer) Update() error {
	if v.done {
		return nil
	}

	target := v.Solver.CollapsedCount() + BatchSize
	status, err := v.Solver.Run(target)
	v.status, v.err = status, err
	if err != nil {
		v.done = true
		return nil
	}
	// StateBudgetExceeded is also what Run returns every frame by design,
	// since each call targets only the next batch: only StateCompleted
	// marks the solve itself done. Hitting the per-frame target just
	// yields back to the next Update, which raises the target again.
	if status != wfc.StateCompleted {
		return nil
	}

	v.done = true
	if encErr := imageio.Encode(v.OutputPath, v.Solver.OutputRaster()); encErr != nil {
		v.err = fmt.Errorf("wfcview: writing %s: %w", v.OutputPath, encErr)
		wfclog.Error("%v", v.err)
		return nil
	}
	wfclog.Info("solve finished: %s, %d cells collapsed, wrote %s", status, v.Solver.CollapsedCount(), v.OutputPath)
	return nil
}

// Draw blits the solver's current output raster, a side effect only: it
// never feeds back into solver state.
func (v *Viewer) Draw(screen *ebiten.Image) {
	img := v.Solver.OutputRaster().ToImage()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			screen.Set(x, y, img.At(x, y))
		}
	}
}

// Err returns the error the solve terminated with, if any.
func (v *Viewer) Err() error { return v.err }

// Done reports whether the solve has reached a terminal state.
func (v *Viewer) Done() bool { return v.done }
