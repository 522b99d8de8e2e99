package dicomio

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Metadata is the per-slice metadata record extracted from a DICOM
// dataset. Every field that a dataset may omit is optional; conversion
// logic branches on the presence combination explicitly instead of
// probing the dataset at use sites.
type Metadata struct {
	// Modality is the imaging modality string, e.g. "PT" or "CT".
	Modality string

	// ImagePosition is the 3D ImagePositionPatient field (x, y, z),
	// nil when absent or malformed.
	ImagePosition []float64

	// SliceLocation is the scalar slice position along the depth axis.
	SliceLocation *float64

	// InstanceNumber is the ordinal acquisition index.
	InstanceNumber *int

	// PatientWeight is the patient weight in kg, used for SUV conversion.
	PatientWeight *float64

	// Radiopharmaceutical is the first entry of the radiopharmaceutical
	// information sequence, nil when the sequence is missing or empty.
	Radiopharmaceutical *Radiopharmaceutical

	// RescaleSlope and RescaleIntercept are the linear rescale pair used
	// for Hounsfield conversion of CT slices.
	RescaleSlope     *float64
	RescaleIntercept *float64
}

// Radiopharmaceutical holds the acquisition fields relevant to SUV
// conversion from one radiopharmaceutical information sequence item.
type Radiopharmaceutical struct {
	// TotalDose is the administered radionuclide dose in the raw DICOM
	// unit (Bq), nil when the field is absent.
	TotalDose *float64
}

// ZPosition resolves the slice ordering key. Resolution priority:
// ImagePositionPatient z component, then SliceLocation, then
// InstanceNumber. The second return reports whether any field resolved;
// callers fall back to 0.0 otherwise.
func (m Metadata) ZPosition() (float64, bool) {
	if len(m.ImagePosition) == 3 {
		return m.ImagePosition[2], true
	}
	if m.SliceLocation != nil {
		return *m.SliceLocation, true
	}
	if m.InstanceNumber != nil {
		return float64(*m.InstanceNumber), true
	}
	return 0, false
}

// MetadataFromDataset extracts the optional-field metadata record from a
// parsed dataset. Extraction is best effort: absent or unparseable fields
// stay nil, they never fail the slice.
func MetadataFromDataset(ds dicom.Dataset) Metadata {
	m := Metadata{}

	if s, ok := elementStrings(ds, tag.Modality); ok && len(s) > 0 {
		m.Modality = s[0]
	}
	if fs, ok := elementFloats(ds, tag.ImagePositionPatient); ok && len(fs) == 3 {
		m.ImagePosition = fs
	}
	m.SliceLocation = firstFloat(ds, tag.SliceLocation)
	if f := firstFloat(ds, tag.InstanceNumber); f != nil {
		n := int(*f)
		m.InstanceNumber = &n
	}
	m.PatientWeight = firstFloat(ds, tag.PatientWeight)
	m.RescaleSlope = firstFloat(ds, tag.RescaleSlope)
	m.RescaleIntercept = firstFloat(ds, tag.RescaleIntercept)
	m.Radiopharmaceutical = radiopharmaceuticalInfo(ds)

	return m
}

// radiopharmaceuticalInfo reads the first item of the radiopharmaceutical
// information sequence, or nil when the sequence is missing or empty.
func radiopharmaceuticalInfo(ds dicom.Dataset) *Radiopharmaceutical {
	seqElem, err := ds.FindElementByTag(tag.RadiopharmaceuticalInformationSequence)
	if err != nil {
		return nil
	}
	items, ok := seqElem.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok || len(items) == 0 {
		return nil
	}
	elements, ok := items[0].GetValue().([]*dicom.Element)
	if !ok {
		return nil
	}

	info := &Radiopharmaceutical{}
	for _, elem := range elements {
		if elem.Tag == tag.RadionuclideTotalDose {
			if f, ok := valueFloats(elem.Value.GetValue()); ok && len(f) > 0 {
				info.TotalDose = &f[0]
			}
		}
	}
	return info
}

func elementStrings(ds dicom.Dataset, t tag.Tag) ([]string, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return nil, false
	}
	s, ok := elem.Value.GetValue().([]string)
	return s, ok
}

func elementFloats(ds dicom.Dataset, t tag.Tag) ([]float64, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return nil, false
	}
	return valueFloats(elem.Value.GetValue())
}

func firstFloat(ds dicom.Dataset, t tag.Tag) *float64 {
	fs, ok := elementFloats(ds, t)
	if !ok || len(fs) == 0 {
		return nil
	}
	return &fs[0]
}

// valueFloats coerces an element value to floats. Decimal and integer
// strings arrive as []string, binary VRs as []int or []float64.
func valueFloats(v any) ([]float64, bool) {
	switch vals := v.(type) {
	case []float64:
		return vals, true
	case []int:
		out := make([]float64, len(vals))
		for i, n := range vals {
			out[i] = float64(n)
		}
		return out, true
	case []string:
		out := make([]float64, 0, len(vals))
		for _, s := range vals {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	default:
		return nil, false
	}
}
