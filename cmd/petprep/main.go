package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/RumethSandinu/NeoBreath-RQ1/internal/config"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/logging"
	"github.com/RumethSandinu/NeoBreath-RQ1/internal/pipeline"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	configPath := flag.String("config", "petprep.yaml", "Path to the YAML run configuration")
	inputRoot := flag.String("input", "", "Override the configured input root (disease/patient tree)")
	outputRoot := flag.String("output", "", "Override the configured output root")
	mode := flag.String("mode", "", "Override the trim mode: keep-above or keep-below")
	workers := flag.Int("workers", 0, "Override the number of parallel patient workers")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("petprep %s\n", version)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *inputRoot != "" {
		cfg.Paths.InputRoot = *inputRoot
	}
	if *outputRoot != "" {
		cfg.Paths.OutputRoot = *outputRoot
	}
	if *mode != "" {
		cfg.Trim.Mode = *mode
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Paths.LogDir, "pet_preprocessing.log", "petprep")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("preprocessing run failed", "err", err)
		os.Exit(1)
	}
}

// run processes every disease/patient directory under the input root once
// per configured threshold. Studies are independent, so a failed patient
// is logged and skipped without affecting its siblings.
func run(cfg *config.Config, logger *log.Logger) error {
	logger.Info("starting PET data preprocessing",
		"thresholds", cfg.Trim.Thresholds, "mode", cfg.Trim.Mode)

	prefix := "up"
	if cfg.Trim.Mode == config.ModeKeepBelow {
		prefix = "down"
	}

	for _, threshold := range cfg.Trim.Thresholds {
		logger.Info("processing with threshold", "threshold", threshold)

		outDir := filepath.Join(cfg.Paths.OutputRoot,
			fmt.Sprintf("%s_threshold_%v", prefix, threshold))
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		if err := processThreshold(cfg, threshold, outDir, logger); err != nil {
			return err
		}
	}

	logger.Info("PET data preprocessing completed for all thresholds")
	summarize(cfg, prefix, logger)
	return nil
}

// processThreshold walks the disease/patient tree and dispatches one job
// per patient study to the worker pool.
func processThreshold(cfg *config.Config, threshold float64, outDir string, logger *log.Logger) error {
	diseases, err := subdirectories(cfg.Paths.InputRoot)
	if err != nil {
		return fmt.Errorf("list disease directories: %w", err)
	}

	jobs := make(chan pipeline.Params)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				// Failures stay confined to their study.
				_ = pipeline.ProcessPatient(p, logger)
			}
		}()
	}

	for _, diseaseDir := range diseases {
		diseaseCode := filepath.Base(diseaseDir)
		logger.Info("processing disease", "disease", diseaseCode, "threshold", threshold)

		patients, err := subdirectories(diseaseDir)
		if err != nil {
			logger.Error("failed to list patient directories", "disease", diseaseCode, "err", err)
			continue
		}

		for _, patientDir := range patients {
			jobs <- pipeline.Params{
				StudyDir:    patientDir,
				OutputRoot:  outDir,
				DiseaseCode: diseaseCode,
				Threshold:   threshold,
				Mode:        pipeline.TrimModeFromConfig(cfg.Trim.Mode),
				MinSlices:   cfg.Trim.MinSlices,
				TargetSize:  cfg.Volume.TargetSize,
			}
		}
	}

	close(jobs)
	wg.Wait()
	return nil
}

// summarize logs the number of persisted volumes per threshold directory.
func summarize(cfg *config.Config, prefix string, logger *log.Logger) {
	logger.Info("preprocessing summary")
	for _, threshold := range cfg.Trim.Thresholds {
		dir := filepath.Join(cfg.Paths.OutputRoot,
			fmt.Sprintf("%s_threshold_%v", prefix, threshold))

		count := 0
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".npy") {
				count++
			}
			return nil
		})
		if err != nil {
			logger.Info("no output directory found", "threshold", threshold)
			continue
		}
		logger.Info("processed volumes", "threshold", threshold, "count", count)
	}
}

// subdirectories lists the non-hidden directories directly under dir.
func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return dirs, nil
}
