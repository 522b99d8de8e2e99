package volume

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// volumeWithMeans builds a depth-d volume of 4x4 slices where slice i is
// constant-valued at means[i].
func volumeWithMeans(t *testing.T, means []float64) Volume {
	t.Helper()
	grids := make([]Grid, len(means))
	for i, m := range means {
		grids[i] = gridFilled(4, 4, m)
	}
	v, err := Stack(grids)
	if err != nil {
		t.Fatalf("Stack unexpected error: %v", err)
	}
	return v
}

// linearMeans returns n means evenly spaced from 0 to 1.
func linearMeans(n int) []float64 {
	means := make([]float64, n)
	for i := range means {
		means[i] = float64(i) / float64(n-1)
	}
	return means
}

func discard() *log.Logger {
	return log.New(io.Discard)
}

func TestTrimByThreshold_ModesAreComplementary(t *testing.T) {
	// Depth 10 with per-slice means rising linearly from 0 to 1. At
	// threshold 0.5 keep-above selects the upper half, keep-below the
	// lower half.
	v := volumeWithMeans(t, linearMeans(10))

	tests := []struct {
		name       string
		mode       TrimMode
		wantStart  float64
		wantDepth  int
	}{
		{"keep-above", KeepAbove, 5.0 / 9.0, 5},
		{"keep-below", KeepBelow, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.TrimByThreshold(0.5, 2, tt.mode, discard())
			if got.Depth != tt.wantDepth {
				t.Fatalf("trimmed depth = %d, want %d", got.Depth, tt.wantDepth)
			}
			if first := got.SliceAt(0).At(0, 0); first != tt.wantStart {
				t.Errorf("first slice value = %v, want %v", first, tt.wantStart)
			}
		})
	}
}

func TestTrimByThreshold_ExpandsToMinimum(t *testing.T) {
	// Only slice 10 carries signal; the found range [10,10] must expand
	// around its midpoint to the minimum slice count.
	means := make([]float64, 20)
	means[10] = 1
	v := volumeWithMeans(t, means)

	var buf bytes.Buffer
	logger := log.New(&buf)

	got := v.TrimByThreshold(0.5, 8, KeepAbove, logger)
	if got.Depth != 8 {
		t.Fatalf("trimmed depth = %d, want 8", got.Depth)
	}
	// center 10, half 4: range [6, 13]
	if first := got.SliceAt(0).At(0, 0); first != means[6] {
		t.Errorf("expansion start = %v, want slice 6", first)
	}
	if !strings.Contains(buf.String(), "minimum slice requirement") {
		t.Error("expected the range expansion to be logged")
	}
}

func TestTrimByThreshold_ShortVolumeKeptWhole(t *testing.T) {
	// depth < minSlices: the full input comes back.
	v := volumeWithMeans(t, []float64{0, 0, 1, 0, 0})

	got := v.TrimByThreshold(0.5, 8, KeepAbove, discard())
	if got.Depth != v.Depth {
		t.Errorf("trimmed depth = %d, want full depth %d", got.Depth, v.Depth)
	}
}

func TestTrimByThreshold_ConstantVolumeKeepsAll(t *testing.T) {
	// Equal means carry no contrast: every slice is treated as maximally
	// relevant and keep-above retains the whole depth range.
	means := []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3}
	v := volumeWithMeans(t, means)

	got := v.TrimByThreshold(0.9, 2, KeepAbove, discard())
	if got.Depth != v.Depth {
		t.Errorf("trimmed depth = %d, want full depth %d", got.Depth, v.Depth)
	}
}

func TestTrimByThreshold_NoSliceMatchesDefaultsToFullRange(t *testing.T) {
	// Keep-above with a threshold above every normalized mean: both scans
	// fall through to their defaults, keeping the full range.
	v := volumeWithMeans(t, linearMeans(10))

	got := v.TrimByThreshold(2, 4, KeepAbove, discard())
	if got.Depth != v.Depth {
		t.Errorf("trimmed depth = %d, want full depth %d", got.Depth, v.Depth)
	}
}

func TestTrimByThreshold_EmptyVolume(t *testing.T) {
	var v Volume
	got := v.TrimByThreshold(0.5, 8, KeepBelow, discard())
	if got.Depth != 0 {
		t.Errorf("trimmed empty volume depth = %d, want 0", got.Depth)
	}
}

func TestNormalizeMeans_AllEqual(t *testing.T) {
	out := normalizeMeans([]float64{2, 2, 2})
	for i, v := range out {
		if v != 1 {
			t.Errorf("normalizeMeans[%d] = %v, want 1", i, v)
		}
	}
}
