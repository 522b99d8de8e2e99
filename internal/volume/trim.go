package volume

import (
	"github.com/charmbracelet/log"

	"gonum.org/v1/gonum/floats"
)

// TrimMode selects which side of the intensity threshold is kept when
// trimming the depth axis.
type TrimMode int

const (
	// KeepAbove keeps the range bounded by the first and last slices whose
	// normalized mean intensity is >= the threshold (trims dim boundary
	// slices such as legs and head in a PET scan).
	KeepAbove TrimMode = iota

	// KeepBelow keeps the range bounded by the first and last slices whose
	// normalized mean intensity is < the threshold.
	KeepBelow
)

const normEpsilon = 1e-8

// TrimByThreshold trims leading and trailing depth-slices that carry no
// relevant anatomical signal. Per-slice mean intensities are re-normalized
// to [0,1] and the maximal contiguous range whose boundary slices satisfy
// the threshold test is kept, expanded to minSlices when the found range is
// shorter. The returned volume shares the input's backing array.
func (v Volume) TrimByThreshold(threshold float64, minSlices int, mode TrimMode, logger *log.Logger) Volume {
	if v.Depth == 0 {
		return v
	}

	means := v.SliceMeans()
	intensities := normalizeMeans(means)

	keep := func(x float64) bool {
		if mode == KeepAbove {
			return x >= threshold
		}
		return x < threshold
	}

	startIdx := 0
	for i := 0; i < v.Depth; i++ {
		if keep(intensities[i]) {
			startIdx = i
			break
		}
	}

	endIdx := v.Depth - 1
	for i := v.Depth - 1; i >= 0; i-- {
		if keep(intensities[i]) {
			endIdx = i
			break
		}
	}

	// The two scans can cross when no slice satisfies the threshold test in
	// a direction compatible with the other scan. Fall back to the full
	// depth range rather than slicing with an inverted range.
	if startIdx > endIdx {
		logger.Warn("threshold scans produced an inverted range, keeping full depth",
			"start", startIdx, "end", endIdx, "threshold", threshold)
		startIdx, endIdx = 0, v.Depth-1
	}

	if endIdx-startIdx+1 < minSlices {
		center := (startIdx + endIdx) / 2
		halfMin := minSlices / 2
		startIdx = max(0, center-halfMin)
		endIdx = min(v.Depth-1, startIdx+minSlices-1)
		logger.Info("expanded range to meet minimum slice requirement",
			"start", startIdx, "end", endIdx, "minSlices", minSlices)
	}

	return v.SubVolume(startIdx, endIdx)
}

// normalizeMeans rescales per-slice means to [0,1]. When every slice has
// the same mean there is no usable contrast, so all slices are treated as
// maximally relevant instead of dividing by a near-zero span.
func normalizeMeans(means []float64) []float64 {
	out := make([]float64, len(means))
	lo, hi := floats.Min(means), floats.Max(means)
	if hi <= lo {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, m := range means {
		out[i] = (m - lo) / (hi - lo + normEpsilon)
	}
	return out
}
