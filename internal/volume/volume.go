package volume

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Volume is a 3D array of shape (Depth, Height, Width) in C order.
// After assembly Height == Width == the configured target size; after
// normalization every value is a finite float in [0,1].
type Volume struct {
	Data   []float64
	Depth  int
	Height int
	Width  int
}

// Stack combines ordered, equally sized 2D grids into a 3D volume.
// All grids must already share the same dimensions; resampling to the
// target size happens before stacking.
func Stack(grids []Grid) (Volume, error) {
	if len(grids) == 0 {
		return Volume{}, fmt.Errorf("no slices provided")
	}

	h, w := grids[0].Rows, grids[0].Cols
	v := Volume{
		Data:   make([]float64, len(grids)*h*w),
		Depth:  len(grids),
		Height: h,
		Width:  w,
	}

	for i, g := range grids {
		if g.Rows != h || g.Cols != w {
			return Volume{}, fmt.Errorf("slice %d has size %dx%d, want %dx%d", i, g.Rows, g.Cols, h, w)
		}
		copy(v.Data[i*h*w:(i+1)*h*w], g.Data)
	}

	return v, nil
}

// SliceAt returns the depth-slice at index i, sharing the volume's backing
// array.
func (v Volume) SliceAt(i int) Grid {
	n := v.Height * v.Width
	return Grid{Data: v.Data[i*n : (i+1)*n], Rows: v.Height, Cols: v.Width}
}

// SubVolume returns the inclusive depth range [start, end], sharing the
// volume's backing array.
func (v Volume) SubVolume(start, end int) Volume {
	n := v.Height * v.Width
	return Volume{
		Data:   v.Data[start*n : (end+1)*n],
		Depth:  end - start + 1,
		Height: v.Height,
		Width:  v.Width,
	}
}

// SliceMeans reduces each depth-slice to its mean intensity, one scalar
// per depth index.
func (v Volume) SliceMeans() []float64 {
	means := make([]float64, v.Depth)
	n := v.Height * v.Width
	for i := 0; i < v.Depth; i++ {
		means[i] = stat.Mean(v.Data[i*n:(i+1)*n], nil)
	}
	return means
}

// Shape returns the volume dimensions as (depth, height, width).
func (v Volume) Shape() (int, int, int) {
	return v.Depth, v.Height, v.Width
}

// String renders the shape NumPy-style, for log lines.
func (v Volume) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.Depth, v.Height, v.Width)
}
