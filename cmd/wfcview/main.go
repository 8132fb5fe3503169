// Command wfcview runs an overlapping WFC solve and displays it resolving
// live in a window, writing the finished texture to disk once it settles.
// It is the standalone form of the "-view" mode built into cmd/wfc,
// descended from gintendo.go's ebiten.RunGame wiring.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pixelloom/wfc/imageio"
	"github.com/pixelloom/wfc/pattern"
	"github.com/pixelloom/wfc/wfc"
	"github.com/pixelloom/wfc/wfcconfig"
	"github.com/pixelloom/wfc/wfcview"
)

func main() {
	fs := flag.NewFlagSet("wfcview", flag.ExitOnError)
	width := fs.Int("w", 128, "output width")
	height := fs.Int("h", 128, "output height")
	tileW := fs.Int("W", 3, "tile width")
	tileH := fs.Int("H", 3, "tile height")
	seed := fs.Int64("seed", 0, "RNG seed (0 means use the wall clock)")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: wfcview [OPTIONS] INPUT OUTPUT")
		os.Exit(2)
	}
	inputPath, outputPath := fs.Arg(0), fs.Arg(1)

	input, err := imageio.Decode(inputPath)
	if err != nil {
		log.Fatalf("reading %s: %v", inputPath, err)
	}

	cfg, err := wfcconfig.LoadWithOverrides(wfcconfig.LoadOptions{
		Width: *width, Height: *height, TileWidth: *tileW, TileHeight: *tileH, Seed: seed,
	})
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	solver, err := wfc.New(cfg.Width, cfg.Height, input, cfg.TileWidth, cfg.TileHeight, pattern.Options{
		Expand: cfg.Expand, XFlip: cfg.XFlip, YFlip: cfg.YFlip, Rotate: cfg.Rotate,
	})
	if err != nil {
		log.Fatalf("building solver: %v", err)
	}
	if cfg.Seed != 0 {
		solver.InitWithSeed(cfg.Seed)
	}

	v := wfcview.New(solver, outputPath)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
	if err := v.Err(); err != nil {
		log.Fatalf("solve failed: %v", err)
	}
}
