// Package imaging provides 2D resampling of decoded pixel grids. Slices
// are resampled to the configured square size before stacking so every
// study assembles into a uniform volume.
package imaging

import (
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/volume"
)

// ResizeSquare resamples a grid to target x target using anti-aliased
// Catmull-Rom interpolation. Grids already at the target size are returned
// unchanged, sharing their backing data. The output intensity range never
// exceeds the input range.
func ResizeSquare(g volume.Grid, target int) volume.Grid {
	if g.Rows == target && g.Cols == target {
		return g
	}

	lo, hi := floats.Min(g.Data), floats.Max(g.Data)
	out := volume.NewGrid(target, target)

	// A constant grid carries no structure to interpolate.
	if hi <= lo {
		for i := range out.Data {
			out.Data[i] = lo
		}
		return out
	}

	// Project the grid onto a 16-bit grayscale image, resample, and map
	// back onto the original intensity range.
	span := hi - lo
	src := image.NewGray16(image.Rect(0, 0, g.Cols, g.Rows))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := uint16((g.At(r, c) - lo) / span * 65535)
			i := src.PixOffset(c, r)
			src.Pix[i] = uint8(v >> 8)
			src.Pix[i+1] = uint8(v)
		}
	}

	dst := image.NewGray16(image.Rect(0, 0, target, target))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	for r := 0; r < target; r++ {
		for c := 0; c < target; c++ {
			i := dst.PixOffset(c, r)
			v := uint16(dst.Pix[i])<<8 | uint16(dst.Pix[i+1])
			out.Set(r, c, lo+float64(v)/65535*span)
		}
	}

	return out
}
