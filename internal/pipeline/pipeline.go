// Package pipeline composes the per-study preprocessing sequence: load
// and order slices, convert intensities to SUV, assemble a resized volume,
// normalize, trim the depth axis, and persist the result. Each study is an
// independent unit of work with no shared state.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/config"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/dicomio"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/imaging"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/intensity"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/npy"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/volume"
)

// Params describes one unit of work: a single patient study processed at
// a single threshold.
type Params struct {
	// StudyDir is the patient's DICOM directory; its base name is the
	// patient identifier.
	StudyDir string

	// OutputRoot is the threshold-specific output directory.
	OutputRoot string

	// DiseaseCode is the disease/category label scoping the output.
	DiseaseCode string

	Threshold  float64
	Mode       volume.TrimMode
	MinSlices  int
	TargetSize int
}

// TrimModeFromConfig maps the configuration mode name to a trim mode.
func TrimModeFromConfig(mode string) volume.TrimMode {
	if mode == config.ModeKeepAbove {
		return volume.KeepAbove
	}
	return volume.KeepBelow
}

// ProcessPatient runs the full preprocessing sequence for one study.
// Recoverable issues (bad files, missing SUV metadata) degrade gracefully
// with logged reasons; a study without DICOM files is skipped silently
// except for an info line. Unexpected failures are logged with study
// context and returned so the driver can account for them.
func ProcessPatient(p Params, logger *log.Logger) error {
	patientID := filepath.Base(p.StudyDir)
	logger.Info("preprocessing PET patient", "patient", patientID, "disease", p.DiseaseCode)

	err := processPatient(p, patientID, logger)
	if err != nil {
		logger.Error("failed to process patient", "patient", patientID,
			"disease", p.DiseaseCode, "err", err)
		return fmt.Errorf("process patient %s (%s): %w", patientID, p.DiseaseCode, err)
	}
	return nil
}

func processPatient(p Params, patientID string, logger *log.Logger) error {
	files, err := dicomio.DiscoverFiles(p.StudyDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("skipping patient due to missing DICOM files", "patient", patientID)
		return nil
	}

	slices, err := dicomio.LoadStudy(p.StudyDir, logger)
	if err != nil {
		return err
	}

	// Convert to SUV per slice; volume-wide normalization is deferred until
	// after stacking so a single scale holds across the study.
	grids := make([]volume.Grid, len(slices))
	for i, s := range slices {
		conv := intensity.Convert(s)
		if !conv.Outcome.Converted() {
			logger.Warn("skipping intensity conversion", "reason", conv.Outcome.Reason())
		}
		grids[i] = conv.Grid
	}

	for i, g := range grids {
		if g.Rows != p.TargetSize || g.Cols != p.TargetSize {
			logger.Info("resizing slice", "index", i,
				"from", fmt.Sprintf("%dx%d", g.Rows, g.Cols),
				"to", fmt.Sprintf("%dx%d", p.TargetSize, p.TargetSize))
		}
		grids[i] = imaging.ResizeSquare(g, p.TargetSize)
	}

	vol, err := volume.Stack(grids)
	if err != nil {
		return err
	}

	vol = intensity.NormalizeVolume(vol)
	logger.Info("volume assembled", "patient", patientID, "shape", vol.String())

	trimmed := vol.TrimByThreshold(p.Threshold, p.MinSlices, p.Mode, logger)
	logger.Info("volume trimmed", "patient", patientID,
		"threshold", p.Threshold, "shape", trimmed.String())

	SaveVolume(p.OutputRoot, patientID, trimmed, p.DiseaseCode, logger)
	logger.Info("successfully processed patient", "patient", patientID, "disease", p.DiseaseCode)
	return nil
}

// SaveVolume persists a trimmed volume as <outputRoot>/<label>/<patientID>.npy.
// Write failures are logged, never propagated: one unwritable artifact must
// not abort sibling studies.
func SaveVolume(outputRoot, patientID string, v volume.Volume, label string, logger *log.Logger) {
	dir := filepath.Join(outputRoot, label)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create output directory", "dir", dir, "err", err)
		return
	}

	filename := patientID + ".npy"
	if err := npy.WriteFile(filepath.Join(dir, filename), v); err != nil {
		logger.Error("failed to save volume", "patient", patientID, "err", err)
		return
	}
	logger.Info("volume saved", "file", filename, "shape", v.String())
}
