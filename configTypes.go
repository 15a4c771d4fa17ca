package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/core"
	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/sweep"
)

// RangeSettings describes an alpha axis from start (inclusive) to stop (exclusive).
type RangeSettings struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Step  float64 `json:"step"`
}

type SweepSettings struct {
	Name            string         `json:"name"`
	FeatureCounts   []int          `json:"feature_counts,omitempty"`
	LoadRatios      []float64      `json:"load_ratios,omitempty"`
	LoadRatioRange  *RangeSettings `json:"load_ratio_range,omitempty"`
	TrialsPerConfig *int           `json:"trials_per_config,omitempty"`
	EpochBudget     *int           `json:"epoch_budget,omitempty"`
	Mean            *float64       `json:"mean,omitempty"`
	StdDev          *float64       `json:"std_dev,omitempty"`
	Seed            *uint64        `json:"seed,omitempty"`
	MaxWorkerCount  int            `json:"max_worker_count,omitempty"`
	SuccessPolicy   string         `json:"success_policy,omitempty"`
}

// DefaultSettings mirrors sweep.DefaultConfig as a settings file.
func DefaultSettings() SweepSettings {
	cfg := sweep.DefaultConfig()
	return SweepSettings{
		Name:            "reference",
		FeatureCounts:   cfg.FeatureCounts,
		LoadRatioRange:  &RangeSettings{Start: 0.75, Stop: 3.25, Step: 0.15},
		TrialsPerConfig: &cfg.TrialsPerConfig,
		EpochBudget:     &cfg.EpochBudget,
		Mean:            &cfg.Mean,
		StdDev:          &cfg.StdDev,
		Seed:            &cfg.Seed,
		SuccessPolicy:   cfg.Success.String(),
	}
}

// SettingsFactory turns loaded settings into a harness configuration. Fields that
// are left out keep their sweep.DefaultConfig values.
func SettingsFactory(settings SweepSettings) (sweep.Config, error) {
	cfg := sweep.DefaultConfig()

	if len(settings.FeatureCounts) > 0 {
		cfg.FeatureCounts = copySlice(settings.FeatureCounts)
	}
	switch {
	case len(settings.LoadRatios) > 0 && settings.LoadRatioRange != nil:
		return sweep.Config{}, fmt.Errorf("settings %q: both load_ratios and load_ratio_range given: %w", settings.Name, core.ErrInvalidConfig)
	case len(settings.LoadRatios) > 0:
		cfg.LoadRatios = append([]float64(nil), settings.LoadRatios...)
	case settings.LoadRatioRange != nil:
		r := settings.LoadRatioRange
		cfg.LoadRatios = sweep.LoadRatioRange(hundredths(r.Start), hundredths(r.Stop), hundredths(r.Step))
	}
	if settings.TrialsPerConfig != nil {
		cfg.TrialsPerConfig = *settings.TrialsPerConfig
	}
	if settings.EpochBudget != nil {
		cfg.EpochBudget = *settings.EpochBudget
	}
	if settings.Mean != nil {
		cfg.Mean = *settings.Mean
	}
	if settings.StdDev != nil {
		cfg.StdDev = *settings.StdDev
	}
	if settings.Seed != nil {
		cfg.Seed = *settings.Seed
	}
	if settings.MaxWorkerCount > 0 {
		cfg.MaxWorkers = settings.MaxWorkerCount
	}
	policy, err := sweep.ParseSuccessPolicy(settings.SuccessPolicy)
	if err != nil {
		return sweep.Config{}, fmt.Errorf("settings %q: %w", settings.Name, err)
	}
	cfg.Success = policy

	if err := cfg.Validate(); err != nil {
		return sweep.Config{}, fmt.Errorf("settings %q: %w", settings.Name, err)
	}
	return cfg, nil
}

func hundredths(v float64) int {
	return int(math.Round(v * 100))
}

func settingsName(settings SweepSettings, fallback string) string {
	if name := strings.TrimSpace(settings.Name); name != "" {
		return name
	}
	return strings.TrimSuffix(fallback, ".json")
}

func copySlice(input []int) []int {
	copied := make([]int, len(input))
	copy(copied, input)
	return copied
}
