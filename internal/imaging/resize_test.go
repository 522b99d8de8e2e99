package imaging

import (
	"testing"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/volume"
)

func TestResizeSquare_PassThrough(t *testing.T) {
	g := volume.NewGrid(128, 128)
	for i := range g.Data {
		g.Data[i] = float64(i % 4096)
	}

	got := ResizeSquare(g, 128)
	if &got.Data[0] != &g.Data[0] {
		t.Error("grid at the target size must be returned unchanged, not resampled")
	}
}

func TestResizeSquare_Shape(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"downscale", 256, 256},
		{"upscale", 64, 64},
		{"non-square", 192, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := volume.NewGrid(tt.rows, tt.cols)
			for i := range g.Data {
				g.Data[i] = float64(i%100) / 100
			}

			got := ResizeSquare(g, 128)
			if got.Rows != 128 || got.Cols != 128 {
				t.Errorf("resized to %dx%d, want 128x128", got.Rows, got.Cols)
			}
		})
	}
}

func TestResizeSquare_PreservesIntensityRange(t *testing.T) {
	// A bright center on a dark background; resampled intensities must
	// stay within the source range.
	g := volume.NewGrid(64, 64)
	for r := 20; r < 44; r++ {
		for c := 20; c < 44; c++ {
			g.Set(r, c, 1000)
		}
	}

	got := ResizeSquare(g, 128)
	for i, v := range got.Data {
		if v < 0 || v > 1000 {
			t.Fatalf("value %d = %v escapes the source range [0, 1000]", i, v)
		}
	}

	// The bright region must survive resampling.
	if got.At(64, 64) < 900 {
		t.Errorf("center value = %v, want close to 1000", got.At(64, 64))
	}
}

func TestResizeSquare_ConstantGrid(t *testing.T) {
	g := volume.NewGrid(32, 32)
	for i := range g.Data {
		g.Data[i] = 7.5
	}

	got := ResizeSquare(g, 128)
	for i, v := range got.Data {
		if v != 7.5 {
			t.Fatalf("constant grid value %d = %v, want 7.5", i, v)
		}
	}
}
