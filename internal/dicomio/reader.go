// Package dicomio loads decoded 2D slices from a patient study directory
// and orders them into a physically coherent sequence along the depth
// axis. Decoding is delegated to the suyashkumar/dicom parser; loading is
// best effort, a bad file never aborts the study.
package dicomio

import (
	"fmt"
	"image/color"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/volume"
)

// Slice is one decoded 2D slice with its resolved ordering key and
// metadata record. Consumed once during intensity conversion and
// discarded after stacking.
type Slice struct {
	Pixels volume.Grid
	ZPos   float64
	Meta   Metadata
}

// DiscoverFiles recursively collects the DICOM files under dir,
// recognized by the .dcm extension (case insensitive).
func DiscoverFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".dcm") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadStudy loads every decodable slice under dir and returns them sorted
// by ascending z-position. Per-file decode failures are logged and
// skipped; a study with zero decodable slices yields an empty sequence,
// not an error. The sort is stable so identical inputs reproduce the same
// ordering.
func LoadStudy(dir string, logger *log.Logger) ([]Slice, error) {
	files, err := DiscoverFiles(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("found DICOM files", "count", len(files), "dir", dir)

	slices := make([]Slice, 0, len(files))
	for _, file := range files {
		s, err := loadSlice(file)
		if err != nil {
			logger.Warn("skipped file", "file", filepath.Base(file), "err", err)
			continue
		}
		z, ok := s.Meta.ZPosition()
		if !ok {
			logger.Warn("could not determine z-position, using 0 as fallback",
				"file", filepath.Base(file))
		}
		s.ZPos = z
		slices = append(slices, s)
	}

	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].ZPos < slices[j].ZPos
	})
	logger.Info("loaded and sorted slices by z-position", "count", len(slices))

	return slices, nil
}

// loadSlice parses one DICOM file into a pixel grid plus metadata record.
func loadSlice(path string) (Slice, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return Slice{}, fmt.Errorf("parse: %w", err)
	}

	grid, err := pixelGrid(ds)
	if err != nil {
		return Slice{}, err
	}

	return Slice{Pixels: grid, Meta: MetadataFromDataset(ds)}, nil
}

// pixelGrid decodes the first frame of the dataset's pixel data into a
// float grid.
func pixelGrid(ds dicom.Dataset) (volume.Grid, error) {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return volume.Grid{}, fmt.Errorf("no pixel data: %w", err)
	}

	info := dicom.MustGetPixelDataInfo(elem.Value)
	if len(info.Frames) == 0 {
		return volume.Grid{}, fmt.Errorf("pixel data has no frames")
	}

	img, err := info.Frames[0].GetImage()
	if err != nil {
		return volume.Grid{}, fmt.Errorf("decode frame: %w", err)
	}

	bounds := img.Bounds()
	grid := volume.NewGrid(bounds.Dy(), bounds.Dx())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			grid.Set(y-bounds.Min.Y, x-bounds.Min.X, float64(gray.Y))
		}
	}
	return grid, nil
}
