package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// LoadSweepSettings reads one JSON settings file.
func LoadSweepSettings(filename string) (SweepSettings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return SweepSettings{}, err
	}
	return UnmarshalSettings(data)
}

func UnmarshalSettings(data []byte) (SweepSettings, error) {
	var settings SweepSettings
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		return SweepSettings{}, err
	}
	return settings, nil
}

// SimulateMultipleFiles runs one sweep per *.json file in configFileDirectory, in
// name order. A file that cannot be loaded or run is logged and skipped; the
// number of failed files is returned with the last error.
func SimulateMultipleFiles(ctx context.Context, configFileDirectory string, runner *Runner) (int, error) {
	files, err := os.ReadDir(configFileDirectory)
	if err != nil {
		return 0, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	failed := 0
	var lastErr error
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		log := runner.logger().With("file", file.Name())
		log.Info("reading config file")

		settings, err := LoadSweepSettings(filepath.Join(configFileDirectory, file.Name()))
		if err != nil {
			log.Error("loading settings", "err", err)
			failed, lastErr = failed+1, fmt.Errorf("%s: %w", file.Name(), err)
			continue
		}
		cfg, err := SettingsFactory(settings)
		if err != nil {
			log.Error("creating sweep config", "err", err)
			failed, lastErr = failed+1, fmt.Errorf("%s: %w", file.Name(), err)
			continue
		}
		log.Info("settings loaded",
			slog.Any("feature_counts", cfg.FeatureCounts),
			slog.Int("load_ratios", len(cfg.LoadRatios)),
			slog.Int("trials", cfg.TrialsPerConfig),
			slog.Int("epochs", cfg.EpochBudget))

		if _, err := runner.RunSweep(ctx, settingsName(settings, file.Name()), cfg); err != nil {
			log.Error("running sweep", "err", err)
			failed, lastErr = failed+1, fmt.Errorf("%s: %w", file.Name(), err)
		}
	}
	return failed, lastErr
}
