// Package minimap renders a top-down colour map of loaded terrain.
package minimap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"

	"voxelstream/internal/block"
)

// Source resolves the top block of a world column.
type Source interface {
	TopBlockAt(x, z int) (block.Type, int, bool)
}

// Options controls the sampled area and output size.
type Options struct {
	CenterX, CenterZ int
	// Radius is the half-width of the sampled square, in blocks.
	Radius int
	// Scale enlarges every block to Scale x Scale pixels.
	Scale int
	// SeaLevel is the height drawn at unshaded colour.
	SeaLevel int
	// Marker, when set, is drawn at the map centre.
	Marker bool
}

var (
	unloadedColor = colornames.Black
	markerColor   = colornames.Red
)

// Render samples one pixel per column around the centre and scales the result.
func Render(src Source, opts Options) *image.NRGBA {
	radius := max(opts.Radius, 1)
	size := 2*radius + 1
	img := imaging.New(size, size, unloadedColor)

	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			t, y, ok := src.TopBlockAt(opts.CenterX+dx, opts.CenterZ+dz)
			if !ok || t == block.Air {
				continue
			}
			img.SetNRGBA(dx+radius, dz+radius, shade(t.Color(), y-opts.SeaLevel))
		}
	}
	if opts.Marker {
		img.SetNRGBA(radius, radius, color.NRGBA{markerColor.R, markerColor.G, markerColor.B, markerColor.A})
	}

	if opts.Scale > 1 {
		img = imaging.Resize(img, size*opts.Scale, size*opts.Scale, imaging.NearestNeighbor)
	}
	return img
}

// shade brightens columns above sea level and darkens those below.
func shade(c mgl32.Vec3, relHeight int) color.NRGBA {
	f := mgl32.Clamp(1+float32(relHeight)/128, 0.4, 1.4)
	to8 := func(v float32) uint8 {
		return uint8(mgl32.Clamp(v*f, 0, 1) * 255)
	}
	return color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 255}
}

// Save renders the map and writes it to path. The format follows the extension.
func Save(src Source, opts Options, path string) error {
	if err := imaging.Save(Render(src, opts), path); err != nil {
		return fmt.Errorf("saving minimap: %w", err)
	}
	return nil
}
