// Package intensity converts raw slice intensities into clinically
// meaningful units (SUV for PET, Hounsfield for CT) and rescales whole
// volumes into [0,1]. Conversion never fails a slice: when required
// acquisition metadata is absent the raw grid passes through unchanged
// and the outcome records why.
package intensity

import (
	"math"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/dicomio"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/volume"

	"gonum.org/v1/gonum/floats"
)

// doseScale converts the raw RadionuclideTotalDose field (Bq) into the
// MBq-equivalent base used by the SUV formula.
const doseScale = 1e6

const normEpsilon = 1e-8

// Outcome tags the result of a slice conversion. Anything other than
// ConvertedSUV or ConvertedHU means the raw grid was passed through.
type Outcome int

const (
	ConvertedSUV Outcome = iota
	ConvertedHU
	SkippedMissingWeight
	SkippedMissingDoseInfo
	SkippedMissingDose
	SkippedZeroDose
	SkippedMissingRescale
)

// Converted reports whether the slice was actually transformed.
func (o Outcome) Converted() bool {
	return o == ConvertedSUV || o == ConvertedHU
}

// Reason describes a skip outcome for the run log.
func (o Outcome) Reason() string {
	switch o {
	case SkippedMissingWeight:
		return "PatientWeight is missing"
	case SkippedMissingDoseInfo:
		return "RadiopharmaceuticalInformationSequence is missing or empty"
	case SkippedMissingDose:
		return "RadionuclideTotalDose is missing"
	case SkippedZeroDose:
		return "RadionuclideTotalDose is zero"
	case SkippedMissingRescale:
		return "rescale slope/intercept pair is missing"
	default:
		return ""
	}
}

// Conversion is the tagged result of converting one slice.
type Conversion struct {
	Grid    volume.Grid
	Outcome Outcome
}

// Convert transforms one slice's pixel grid according to its modality:
// Hounsfield units for CT, SUV otherwise.
func Convert(s dicomio.Slice) Conversion {
	if s.Meta.Modality == "CT" {
		return convertToHU(s.Pixels, s.Meta)
	}
	return convertToSUV(s.Pixels, s.Meta)
}

// convertToSUV applies SUV = pixel * weight / (dose / 1e6). Each missing
// prerequisite is a distinct skip outcome with the raw grid preserved.
func convertToSUV(g volume.Grid, m dicomio.Metadata) Conversion {
	if m.PatientWeight == nil {
		return Conversion{Grid: g, Outcome: SkippedMissingWeight}
	}
	if m.Radiopharmaceutical == nil {
		return Conversion{Grid: g, Outcome: SkippedMissingDoseInfo}
	}
	if m.Radiopharmaceutical.TotalDose == nil {
		return Conversion{Grid: g, Outcome: SkippedMissingDose}
	}

	dose := *m.Radiopharmaceutical.TotalDose / doseScale
	if dose == 0 {
		return Conversion{Grid: g, Outcome: SkippedZeroDose}
	}

	weight := *m.PatientWeight
	out := volume.NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = v * weight / dose
	}
	return Conversion{Grid: out, Outcome: ConvertedSUV}
}

// convertToHU applies the linear rescale pair from the slice metadata.
func convertToHU(g volume.Grid, m dicomio.Metadata) Conversion {
	if m.RescaleSlope == nil || m.RescaleIntercept == nil {
		return Conversion{Grid: g, Outcome: SkippedMissingRescale}
	}

	slope, intercept := *m.RescaleSlope, *m.RescaleIntercept
	out := volume.NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		out.Data[i] = v*slope + intercept
	}
	return Conversion{Grid: out, Outcome: ConvertedHU}
}

// NormalizeVolume rescales an assembled volume into [0,1] via
// (v - min) / (max - min + eps) and coerces every value through float32
// to match the persisted representation. Applied once per volume, after
// stacking: normalizing per slice would destroy the inter-slice relative
// intensities the depth trimmer depends on. An empty volume passes
// through unchanged.
func NormalizeVolume(v volume.Volume) volume.Volume {
	if len(v.Data) == 0 {
		return v
	}

	lo, hi := floats.Min(v.Data), floats.Max(v.Data)
	span := hi - lo + normEpsilon

	out := volume.Volume{
		Data:   make([]float64, len(v.Data)),
		Depth:  v.Depth,
		Height: v.Height,
		Width:  v.Width,
	}
	for i, x := range v.Data {
		n := (x - lo) / span
		if math.IsNaN(n) || math.IsInf(n, 0) {
			n = 0
		}
		out.Data[i] = float64(float32(n))
	}
	return out
}
