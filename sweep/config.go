package sweep

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/core"
)

// Config is the immutable description of one capacity sweep.
type Config struct {
	FeatureCounts   []int
	LoadRatios      []float64
	TrialsPerConfig int
	EpochBudget     int
	Mean            float64
	StdDev          float64
	Seed            uint64
	// MaxWorkers bounds the worker pool; zero or less means runtime.NumCPU().
	MaxWorkers int
	Success    SuccessPolicy
	Logger     *slog.Logger
}

// DefaultConfig returns the reference experiment: N in {20, 40}, alpha from
// 0.75 to 3.20 in steps of 0.15, 50 trials and 100 epochs per configuration.
func DefaultConfig() Config {
	return Config{
		FeatureCounts:   []int{20, 40},
		LoadRatios:      LoadRatioRange(75, 325, 15),
		TrialsPerConfig: 50,
		EpochBudget:     100,
		Mean:            0,
		StdDev:          1,
		Seed:            1,
		MaxWorkers:      runtime.NumCPU(),
		Success:         BeforeLastEpoch,
	}
}

// LoadRatioRange returns start/100, (start+step)/100, ... below stop/100.
// Working in hundredths keeps the axis free of accumulated rounding.
func LoadRatioRange(start, stop, step int) []float64 {
	if step <= 0 {
		return nil
	}
	var out []float64
	for v := start; v < stop; v += step {
		out = append(out, float64(v)/100)
	}
	return out
}

// Validate checks the configuration before any trial runs.
func (c Config) Validate() error {
	if len(c.FeatureCounts) == 0 {
		return fmt.Errorf("no feature counts: %w", core.ErrInvalidConfig)
	}
	if len(c.LoadRatios) == 0 {
		return fmt.Errorf("no load ratios: %w", core.ErrInvalidConfig)
	}
	for _, n := range c.FeatureCounts {
		if n <= 0 {
			return fmt.Errorf("feature count %d: %w", n, core.ErrInvalidDimension)
		}
	}
	for _, a := range c.LoadRatios {
		if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("load ratio %v: %w", a, core.ErrInvalidConfig)
		}
	}
	if c.TrialsPerConfig <= 0 {
		return fmt.Errorf("trials per config %d: %w", c.TrialsPerConfig, core.ErrInvalidConfig)
	}
	if c.EpochBudget <= 0 {
		return fmt.Errorf("epoch budget %d: %w", c.EpochBudget, core.ErrInvalidConfig)
	}
	if c.StdDev <= 0 || math.IsNaN(c.StdDev) || math.IsInf(c.StdDev, 0) {
		return fmt.Errorf("std dev %v: %w", c.StdDev, core.ErrInvalidConfig)
	}
	if math.IsNaN(c.Mean) || math.IsInf(c.Mean, 0) {
		return fmt.Errorf("mean %v: %w", c.Mean, core.ErrInvalidConfig)
	}
	if _, err := c.Success.accept(core.Result{}, c.EpochBudget); err != nil {
		return err
	}
	return nil
}

// ExampleCount is P = round(alpha * n).
func ExampleCount(n int, alpha float64) int {
	return int(math.Round(alpha * float64(n)))
}

func (c Config) workers() int {
	if c.MaxWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.MaxWorkers
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
