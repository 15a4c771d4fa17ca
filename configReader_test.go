package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/core"
	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/sweep"
)

func TestShippedSettingsFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("configFiles", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		settings, err := LoadSweepSettings(f)
		require.NoError(t, err, f)
		_, err = SettingsFactory(settings)
		require.NoError(t, err, f)
	}
}

func TestDefaultSettingsMatchDefaultConfig(t *testing.T) {
	cfg, err := SettingsFactory(DefaultSettings())
	require.NoError(t, err)

	want := sweep.DefaultConfig()
	assert.Equal(t, want.FeatureCounts, cfg.FeatureCounts)
	assert.Equal(t, want.LoadRatios, cfg.LoadRatios)
	assert.Equal(t, want.TrialsPerConfig, cfg.TrialsPerConfig)
	assert.Equal(t, want.EpochBudget, cfg.EpochBudget)
	assert.Equal(t, want.Seed, cfg.Seed)
	assert.Equal(t, want.Success, cfg.Success)
}

func TestSettingsFactory(t *testing.T) {
	settings, err := UnmarshalSettings([]byte(`{
		"name": "small",
		"feature_counts": [3, 6],
		"load_ratios": [0.5, 2],
		"trials_per_config": 4,
		"epoch_budget": 30,
		"std_dev": 2,
		"seed": 99,
		"max_worker_count": 2,
		"success_policy": "converged"
	}`))
	require.NoError(t, err)

	cfg, err := SettingsFactory(settings)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 6}, cfg.FeatureCounts)
	assert.Equal(t, []float64{0.5, 2}, cfg.LoadRatios)
	assert.Equal(t, 4, cfg.TrialsPerConfig)
	assert.Equal(t, 30, cfg.EpochBudget)
	assert.Equal(t, 0.0, cfg.Mean)
	assert.Equal(t, 2.0, cfg.StdDev)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, 2, cfg.MaxWorkers)
	assert.Equal(t, sweep.Converged, cfg.Success)
}

func TestSettingsFactoryErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"both axes", `{"load_ratios": [1], "load_ratio_range": {"start": 1, "stop": 2, "step": 0.5}}`, core.ErrInvalidConfig},
		{"bad policy", `{"success_policy": "maybe"}`, core.ErrInvalidConfig},
		{"negative trials", `{"trials_per_config": -1}`, core.ErrInvalidConfig},
		{"zero trials", `{"trials_per_config": 0}`, core.ErrInvalidConfig},
		{"zero budget", `{"epoch_budget": 0}`, core.ErrInvalidConfig},
		{"bad feature count", `{"feature_counts": [0]}`, core.ErrInvalidDimension},
		{"empty range", `{"load_ratio_range": {"start": 2, "stop": 1, "step": 0.5}}`, core.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := UnmarshalSettings([]byte(tt.json))
			require.NoError(t, err)
			_, err = SettingsFactory(settings)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnmarshalSettingsRejectsUnknownFields(t *testing.T) {
	_, err := UnmarshalSettings([]byte(`{"learn_rules": ["HEBBIAN"]}`))
	assert.Error(t, err)
}

func TestSettingsName(t *testing.T) {
	assert.Equal(t, "named", settingsName(SweepSettings{Name: " named "}, "file.json"))
	assert.Equal(t, "file", settingsName(SweepSettings{}, "file.json"))
}

func writeSettings(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestSimulateMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "a.json", `{"name": "tiny", "feature_counts": [3], "load_ratios": [0.5, 1.5], "trials_per_config": 3, "epoch_budget": 20}`)
	writeSettings(t, dir, "b.json", `{"trials_per_config": -2}`)
	writeSettings(t, dir, "c.json", `not json`)
	writeSettings(t, dir, "notes.txt", `ignored`)

	store, err := OpenStore(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer store.Close()

	notifier := &recordingNotifier{}
	var out bytes.Buffer
	plotDir := filepath.Join(t.TempDir(), "plots")
	runner := &Runner{Store: store, PlotDir: plotDir, Out: &out, Notifier: notifier}

	failed, err := SimulateMultipleFiles(context.Background(), dir, runner)
	assert.Equal(t, 2, failed)
	assert.Error(t, err)

	assert.Contains(t, out.String(), "# tiny")
	_, err = os.Stat(filepath.Join(plotDir, "tiny.png"))
	assert.NoError(t, err)

	rec, err := store.Sweep(1)
	require.NoError(t, err)
	assert.Equal(t, "tiny", rec.Name)
	assert.Equal(t, []int{3}, rec.FeatureCounts)

	cells, err := store.Cells(1)
	require.NoError(t, err)
	assert.Len(t, cells, 4)

	assert.Equal(t, []string{"Capacity sweep starting!", "Capacity sweep finished!"}, notifier.titles)
}

func TestSimulateMultipleFilesMissingDir(t *testing.T) {
	_, err := SimulateMultipleFiles(context.Background(), filepath.Join(t.TempDir(), "missing"), &Runner{})
	assert.Error(t, err)
}
