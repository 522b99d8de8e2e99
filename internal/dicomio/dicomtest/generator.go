// Package dicomtest writes small synthetic DICOM series to disk for
// exercising the loading and conversion pipeline in tests. Pixel content
// is deterministic per seed.
package dicomtest

import (
	"fmt"
	"os"
	"path/filepath"

	randv2 "math/rand/v2"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// PositionMode selects which spatial ordering fields are written.
type PositionMode int

const (
	// WithImagePosition writes ImagePositionPatient plus SliceLocation.
	WithImagePosition PositionMode = iota

	// WithSliceLocation writes only SliceLocation.
	WithSliceLocation

	// WithInstanceNumber writes only InstanceNumber.
	WithInstanceNumber

	// WithoutPosition omits every ordering field.
	WithoutPosition
)

// SeriesOptions configures one synthetic series.
type SeriesOptions struct {
	NumSlices int
	Width     int
	Height    int

	// Modality defaults to "PT".
	Modality  string
	PatientID string

	// PatientWeight in kg; nil omits the tag.
	PatientWeight *float64

	// TotalDose is the raw RadionuclideTotalDose in Bq; nil omits the
	// field from the sequence. OmitDoseInfo drops the whole sequence.
	TotalDose    *float64
	OmitDoseInfo bool

	// Rescale pair, written for CT series.
	RescaleSlope     *float64
	RescaleIntercept *float64

	Positions PositionMode

	// ZSpacing is the distance between consecutive slices (default 2.5).
	ZSpacing float64

	// ReverseFiles writes files in descending z order so that filename
	// order disagrees with spatial order.
	ReverseFiles bool

	// SliceFill, when set, fills each slice with a constant value keyed by
	// its spatial index, giving tests exact control over per-slice means.
	// Otherwise pixels are pseudo-random in the 12-bit range.
	SliceFill func(slice int) uint16

	Seed uint64
}

// WriteSeries writes opts.NumSlices DICOM files into dir and returns
// their paths in write order.
func WriteSeries(dir string, opts SeriesOptions) ([]string, error) {
	if opts.NumSlices <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid series dimensions %dx%dx%d", opts.NumSlices, opts.Height, opts.Width)
	}
	if opts.Modality == "" {
		opts.Modality = "PT"
	}
	if opts.PatientID == "" {
		opts.PatientID = "PAT000001"
	}
	if opts.ZSpacing == 0 {
		opts.ZSpacing = 2.5
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	studyUID := fmt.Sprintf("1.2.826.0.1.3680043.8.498.%d.1", opts.Seed)
	seriesUID := studyUID + ".2"

	order := make([]int, opts.NumSlices)
	for i := range order {
		order[i] = i
	}
	if opts.ReverseFiles {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	paths := make([]string, 0, opts.NumSlices)
	for fileIdx, sliceIdx := range order {
		path := filepath.Join(dir, fmt.Sprintf("IM%06d.dcm", fileIdx+1))
		if err := writeSliceFile(path, sliceIdx, studyUID, seriesUID, opts); err != nil {
			return nil, fmt.Errorf("write slice %d: %w", sliceIdx, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCorruptFile writes a file with a .dcm extension that is not a
// parseable DICOM dataset.
func WriteCorruptFile(path string) error {
	return os.WriteFile(path, []byte("not a dicom file\x00\x01\x02"), 0644)
}

func writeSliceFile(path string, sliceIdx int, studyUID, seriesUID string, opts SeriesOptions) error {
	z := float64(sliceIdx) * opts.ZSpacing
	sopInstanceUID := fmt.Sprintf("%s.%d", seriesUID, sliceIdx+1)

	elements := []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		mustNewElement(tag.PatientID, []string{opts.PatientID}),
		mustNewElement(tag.PatientName, []string{"NEOBREATH^SYNTHETIC"}),
		mustNewElement(tag.StudyInstanceUID, []string{studyUID}),
		mustNewElement(tag.SeriesInstanceUID, []string{seriesUID}),
		mustNewElement(tag.SOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(tag.SOPClassUID, []string{sopClassUID(opts.Modality)}),
		mustNewElement(tag.Modality, []string{opts.Modality}),
	}

	switch opts.Positions {
	case WithImagePosition:
		elements = append(elements,
			mustNewElement(tag.ImagePositionPatient, []string{"0", "0", floatToDS(z)}),
			mustNewElement(tag.SliceLocation, []string{floatToDS(z)}),
			mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", sliceIdx+1)}),
		)
	case WithSliceLocation:
		elements = append(elements,
			mustNewElement(tag.SliceLocation, []string{floatToDS(z)}),
		)
	case WithInstanceNumber:
		elements = append(elements,
			mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", sliceIdx+1)}),
		)
	case WithoutPosition:
	}

	if opts.PatientWeight != nil {
		elements = append(elements,
			mustNewElement(tag.PatientWeight, []string{floatToDS(*opts.PatientWeight)}))
	}
	if !opts.OmitDoseInfo {
		var item []*dicom.Element
		if opts.TotalDose != nil {
			item = append(item,
				mustNewElement(tag.RadionuclideTotalDose, []string{floatToDS(*opts.TotalDose)}))
		} else {
			// A sequence item must carry at least one element; use the
			// half-life field so TotalDose stays absent.
			item = append(item,
				mustNewElement(tag.RadionuclideHalfLife, []string{"6586.2"}))
		}
		seq, err := dicom.NewElement(tag.RadiopharmaceuticalInformationSequence,
			[][]*dicom.Element{item})
		if err != nil {
			return fmt.Errorf("create radiopharmaceutical sequence: %w", err)
		}
		elements = append(elements, seq)
	}
	if opts.RescaleSlope != nil {
		elements = append(elements,
			mustNewElement(tag.RescaleSlope, []string{floatToDS(*opts.RescaleSlope)}))
	}
	if opts.RescaleIntercept != nil {
		elements = append(elements,
			mustNewElement(tag.RescaleIntercept, []string{floatToDS(*opts.RescaleIntercept)}))
	}

	elements = append(elements,
		mustNewElement(tag.Rows, []int{opts.Height}),
		mustNewElement(tag.Columns, []int{opts.Width}),
		mustNewElement(tag.BitsAllocated, []int{16}),
		mustNewElement(tag.BitsStored, []int{16}),
		mustNewElement(tag.HighBit, []int{15}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.PixelData, pixelData(sliceIdx, opts)),
	)

	return writeDatasetToFile(path, dicom.Dataset{Elements: elements})
}

// pixelData builds one native 16-bit frame for the given spatial index.
func pixelData(sliceIdx int, opts SeriesOptions) dicom.PixelDataInfo {
	w, h := opts.Width, opts.Height
	nativeFrame := frame.NewNativeFrame[uint16](16, h, w, w*h, 1)

	if opts.SliceFill != nil {
		fill := opts.SliceFill(sliceIdx)
		for i := range nativeFrame.RawData {
			nativeFrame.RawData[i] = fill
		}
	} else {
		seed := opts.Seed + uint64(sliceIdx)
		rng := randv2.New(randv2.NewPCG(seed, seed))
		for i := range nativeFrame.RawData {
			nativeFrame.RawData[i] = uint16(rng.IntN(4096))
		}
	}

	return dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData:   nativeFrame,
			},
		},
	}
}

func sopClassUID(modality string) string {
	if modality == "CT" {
		// CT Image Storage
		return "1.2.840.10008.5.1.4.1.1.2"
	}
	// Positron Emission Tomography Image Storage
	return "1.2.840.10008.5.1.4.1.1.128"
}

// writeDatasetToFile writes a DICOM dataset to a file.
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// floatToDS converts a float64 to a DICOM Decimal String.
func floatToDS(f float64) string {
	return fmt.Sprintf("%.6g", f)
}
