package minimap

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pixil98/go-testutil"

	"voxelstream/internal/block"
)

// columns is a fake world: loaded columns with x >= 0, grass at sea level,
// water where z < 0.
type columns struct{ sea int }

func (c columns) TopBlockAt(x, z int) (block.Type, int, bool) {
	if x < 0 {
		return block.Air, 0, false
	}
	if z < 0 {
		return block.Water, c.sea, true
	}
	return block.Grass, c.sea, true
}

func TestRender(t *testing.T) {
	src := columns{sea: 62}
	img := Render(src, Options{Radius: 2, SeaLevel: 62, Marker: true})

	testutil.AssertEqual(t, "width", img.Bounds().Dx(), 5)
	testutil.AssertEqual(t, "height", img.Bounds().Dy(), 5)

	testutil.AssertEqual(t, "unloaded", img.NRGBAAt(0, 2), color.NRGBA{A: 255})
	testutil.AssertEqual(t, "grass", img.NRGBAAt(4, 4), shade(block.Grass.Color(), 0))
	testutil.AssertEqual(t, "water", img.NRGBAAt(4, 0), shade(block.Water.Color(), 0))
	testutil.AssertEqual(t, "marker", img.NRGBAAt(2, 2), color.NRGBA{R: 255, A: 255})
}

func TestRenderScaled(t *testing.T) {
	img := Render(columns{}, Options{Radius: 3, Scale: 4})
	testutil.AssertEqual(t, "width", img.Bounds().Dx(), 28)
	// Nearest neighbour keeps blocks crisp.
	testutil.AssertEqual(t, "block edge", img.NRGBAAt(12, 12), img.NRGBAAt(15, 15))
}

func TestShade(t *testing.T) {
	base := block.Stone.Color()
	high := shade(base, 64)
	low := shade(base, -64)
	if high.R <= low.R {
		t.Errorf("expected higher terrain to be brighter: high %v low %v", high, low)
	}
	testutil.AssertEqual(t, "alpha", low.A, uint8(255))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	if err := Save(columns{}, Options{Radius: 4, Scale: 2}, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testutil.AssertEqual(t, "width", img.Bounds().Dx(), 18)

	err = Save(columns{}, Options{Radius: 1}, filepath.Join(t.TempDir(), "map.unknown"))
	testutil.AssertErrorContains(t, err, "saving minimap")
}
