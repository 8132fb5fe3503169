// Command wfc runs the overlapping wave function collapse texture
// synthesizer: it reads an input image, harvests and compiles its
// patterns, solves an output grid against them, and writes the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pixelloom/wfc/imageio"
	"github.com/pixelloom/wfc/pattern"
	"github.com/pixelloom/wfc/wfc"
	"github.com/pixelloom/wfc/wfcconfig"
	"github.com/pixelloom/wfc/wfcerr"
	"github.com/pixelloom/wfc/wfclog"
	"github.com/pixelloom/wfc/wfcview"
)

const (
	exitUsage        = 2
	exitAllocation   = 3
	exitContradiction = 4
	exitUnsupported  = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("wfc", flag.ContinueOnError)

	var width, height, tileW, tileH int
	var expand, xflip, yflip, rotate bool
	var seed int64
	var maxCollapse int
	var logLevel string
	var method string
	var view bool

	fs.IntVar(&width, "w", 128, "output width")
	fs.IntVar(&width, "width", 128, "output width")
	fs.IntVar(&height, "h", 128, "output height")
	fs.IntVar(&height, "height", 128, "output height")
	fs.IntVar(&tileW, "W", 3, "tile width")
	fs.IntVar(&tileW, "tile-width", 3, "tile width")
	fs.IntVar(&tileH, "H", 3, "tile height")
	fs.IntVar(&tileH, "tile-height", 3, "tile height")
	fs.BoolVar(&expand, "e", true, "wrap-expand the input before harvesting")
	fs.BoolVar(&expand, "expand", true, "wrap-expand the input before harvesting")
	fs.BoolVar(&xflip, "x", true, "augment patterns with horizontal mirrors")
	fs.BoolVar(&xflip, "xflip", true, "augment patterns with horizontal mirrors")
	fs.BoolVar(&yflip, "y", true, "augment patterns with vertical mirrors")
	fs.BoolVar(&yflip, "yflip", true, "augment patterns with vertical mirrors")
	fs.BoolVar(&rotate, "r", true, "augment patterns with the three 90-degree rotations")
	fs.BoolVar(&rotate, "rotate", true, "augment patterns with the three 90-degree rotations")
	fs.StringVar(&method, "m", "overlapping", "synthesis method (only \"overlapping\" is implemented)")
	fs.Int64Var(&seed, "seed", 0, "RNG seed (0 means use the wall clock)")
	fs.IntVar(&maxCollapse, "max-collapse", -1, "stop after this many cells collapse (-1 means unbounded)")
	fs.StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")
	fs.BoolVar(&view, "view", false, "watch the solve live instead of writing straight to disk")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if method != "overlapping" {
		fmt.Fprintf(os.Stderr, "wfc: unsupported method %q\n", method)
		return exitUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: wfc [OPTIONS] INPUT OUTPUT")
		return exitUsage
	}
	inputPath, outputPath := fs.Arg(0), fs.Arg(1)

	wfclog.SetLevel(wfclog.ParseLevel(logLevel))

	cfg, err := wfcconfig.LoadWithOverrides(wfcconfig.LoadOptions{
		Width: width, Height: height,
		TileWidth: tileW, TileHeight: tileH,
		Expand: &expand, XFlip: &xflip, YFlip: &yflip, Rotate: &rotate,
		Seed: &seed, MaxCollapseCount: &maxCollapse,
		LogLevel: logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfc: %v\n", err)
		return exitUsage
	}

	input, err := imageio.Decode(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfc: reading %s: %v\n", inputPath, err)
		return classify(err)
	}

	solver, err := wfc.New(cfg.Width, cfg.Height, input, cfg.TileWidth, cfg.TileHeight, pattern.Options{
		Expand: cfg.Expand, XFlip: cfg.XFlip, YFlip: cfg.YFlip, Rotate: cfg.Rotate,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfc: building solver: %v\n", err)
		return classify(err)
	}
	if cfg.Seed != 0 {
		solver.InitWithSeed(cfg.Seed)
	}

	wfclog.Info("solving %dx%d from %d patterns", cfg.Width, cfg.Height, solver.PatternCount())

	if view {
		return runView(solver, cfg, outputPath)
	}

	status, err := solver.Run(cfg.MaxCollapseCount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfc: %v\n", err)
		return classify(err)
	}
	wfclog.Info("solve finished: %s, %d cells collapsed", status, solver.CollapsedCount())

	if err := imageio.Encode(outputPath, solver.OutputRaster()); err != nil {
		fmt.Fprintf(os.Stderr, "wfc: writing %s: %v\n", outputPath, err)
		return classify(err)
	}
	return 0
}

func runView(solver *wfc.Solver, cfg *wfcconfig.Config, outputPath string) int {
	v := wfcview.New(solver, outputPath)
	if err := ebiten.RunGame(v); err != nil {
		fmt.Fprintf(os.Stderr, "wfc: %v\n", err)
		return exitUsage
	}
	if err := v.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "wfc: %v\n", err)
		return classify(err)
	}
	return 0
}

func classify(err error) int {
	switch {
	case errors.Is(err, wfcerr.ErrContradiction):
		return exitContradiction
	case errors.Is(err, wfcerr.ErrAllocation):
		return exitAllocation
	case errors.Is(err, wfcerr.ErrUnsupported):
		return exitUnsupported
	case errors.Is(err, wfcerr.ErrBadArgument):
		return exitUsage
	default:
		return exitUsage
	}
}
