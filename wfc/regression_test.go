package wfc

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/pixelloom/wfc/imageio"
	"github.com/pixelloom/wfc/pattern"
	"github.com/pixelloom/wfc/raster"
)

// fixtureNames are the named regression inputs, each expected (if present)
// as testdata/<name>.png with a reference output at testdata/<name>.ref.png.
var fixtureNames = []string{"cave", "wrinkles", "sand", "curl", "twolines", "twolines2", "square"}

// TestRegressionFixtures solves each fixture against a stored reference
// raster. Fixtures run concurrently through an errgroup since each drives
// its own Solver and a failure in one must not mask the others; a fixture
// missing from testdata/ is skipped rather than failed, so the suite still
// runs in a checkout that doesn't carry the binary assets.
func TestRegressionFixtures(t *testing.T) {
	var g errgroup.Group
	errs := make([]error, len(fixtureNames))
	for i, name := range fixtureNames {
		i, name := i, name
		g.Go(func() error {
			errs[i] = runFixture(t, name)
			return nil
		})
	}
	g.Wait()
	for _, err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func runFixture(t *testing.T, name string) error {
	inputPath := filepath.Join("testdata", name+".png")
	refPath := filepath.Join("testdata", name+".ref.png")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		t.Logf("skipping fixture %q: %s not present", name, inputPath)
		return nil
	}
	if _, err := os.Stat(refPath); os.IsNotExist(err) {
		t.Logf("skipping fixture %q: %s not present", name, refPath)
		return nil
	}

	input, err := imageio.Decode(inputPath)
	if err != nil {
		return fmt.Errorf("fixture %q: decoding input: %w", name, err)
	}
	want, err := imageio.Decode(refPath)
	if err != nil {
		return fmt.Errorf("fixture %q: decoding reference: %w", name, err)
	}

	s, err := New(64, 64, input, 3, 3, pattern.Options{Expand: true, XFlip: true, YFlip: true, Rotate: true})
	if err != nil {
		return fmt.Errorf("fixture %q: New: %w", name, err)
	}
	s.InitWithSeed(2)

	status, err := s.Run(-1)
	if err != nil {
		return fmt.Errorf("fixture %q: Run: %w", name, err)
	}
	if status != StateCompleted {
		return fmt.Errorf("fixture %q: status = %v, want completed", name, status)
	}

	got := s.OutputRaster()
	if !raster.Equal(got, want) {
		return fmt.Errorf("fixture %q: output does not match stored reference", name)
	}
	return nil
}
