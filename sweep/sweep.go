// Package sweep runs the perceptron capacity experiment over a grid of feature
// counts and load ratios and aggregates the fraction of separable problems.
package sweep

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/core"
)

// ModeStats aggregates the trials of one cell for one bias mode.
type ModeStats struct {
	Successes  int
	Proportion float64
	MeanEpoch  float64
	StdEpoch   float64
}

// Cell is the outcome of all trials of one (N, alpha) configuration.
type Cell struct {
	N         int
	Alpha     float64
	P         int
	Plain     ModeStats
	Augmented ModeStats
}

// Result holds the success proportions indexed by (feature count, load ratio).
type Result struct {
	FeatureCounts   []int
	LoadRatios      []float64
	TrialsPerConfig int
	EpochBudget     int
	Success         SuccessPolicy
	Cells           [][]Cell
	Plain           *mat.Dense
	Augmented       *mat.Dense
}

// TrialState is the stage a trial is in. Stages only move forward.
type TrialState int

const (
	NotStarted TrialState = iota
	Generating
	TrainingPlain
	TrainingAugmented
	Recorded
)

func (s TrialState) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Generating:
		return "generating"
	case TrainingPlain:
		return "training plain"
	case TrainingAugmented:
		return "training augmented"
	case Recorded:
		return "recorded"
	}
	return fmt.Sprintf("TrialState(%d)", int(s))
}

type trialOutcome struct {
	row, col       int
	plainEpoch     int
	augmentedEpoch int
	plainOK        bool
	augmentedOK    bool
}

// Run executes every trial of cfg on a bounded worker pool. Each trial draws its
// problem from its own stream keyed by (seed, N, P, trial), so the result does not
// depend on scheduling or on how the grid is split across calls. The first failing
// trial cancels the rest and no result is returned.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	p := pool.NewWithResults[trialOutcome]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(cfg.workers())

	for i, n := range cfg.FeatureCounts {
		for j, alpha := range cfg.LoadRatios {
			examples := ExampleCount(n, alpha)
			for t := 0; t < cfg.TrialsPerConfig; t++ {
				p.Go(func(ctx context.Context) (trialOutcome, error) {
					out, state, err := runTrial(ctx, cfg, n, examples, t)
					if err != nil {
						return trialOutcome{}, fmt.Errorf("N=%d alpha=%v trial=%d %s: %w", n, alpha, t, state, err)
					}
					out.row, out.col = i, j
					return out, nil
				})
			}
		}
	}

	outcomes, err := p.Wait()
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return aggregate(cfg, outcomes), nil
}

func runTrial(ctx context.Context, cfg Config, n, examples, trial int) (trialOutcome, TrialState, error) {
	state := NotStarted
	if err := ctx.Err(); err != nil {
		return trialOutcome{}, state, err
	}

	state = Generating
	gen := core.NewGenerator(rand.NewPCG(cfg.Seed, trialStream(n, examples, trial)), cfg.Mean, cfg.StdDev)
	plain, clamped, err := gen.Generate(n, examples)
	if err != nil {
		return trialOutcome{}, state, err
	}

	state = TrainingPlain
	resPlain, err := core.Train(n, examples, cfg.EpochBudget, plain)
	if err != nil {
		return trialOutcome{}, state, err
	}
	plainOK, err := cfg.Success.accept(resPlain, cfg.EpochBudget)
	if err != nil {
		return trialOutcome{}, state, err
	}

	state = TrainingAugmented
	resAug, err := core.Train(n+1, examples, cfg.EpochBudget, clamped)
	if err != nil {
		return trialOutcome{}, state, err
	}
	augOK, err := cfg.Success.accept(resAug, cfg.EpochBudget)
	if err != nil {
		return trialOutcome{}, state, err
	}

	return trialOutcome{
		plainEpoch:     resPlain.Epoch,
		augmentedEpoch: resAug.Epoch,
		plainOK:        plainOK,
		augmentedOK:    augOK,
	}, Recorded, nil
}

// trialStream mixes the trial key into the PCG stream selector.
func trialStream(n, examples, trial int) uint64 {
	return uint64(n)*0x9e3779b97f4a7c15 ^ uint64(examples)*0xbf58476d1ce4e5b9 ^ uint64(trial)*0x94d049bb133111eb
}

func aggregate(cfg Config, outcomes []trialOutcome) Result {
	rows, cols := len(cfg.FeatureCounts), len(cfg.LoadRatios)
	plainEpochs := make([][][]float64, rows)
	augEpochs := make([][][]float64, rows)
	cells := make([][]Cell, rows)
	for i, n := range cfg.FeatureCounts {
		plainEpochs[i] = make([][]float64, cols)
		augEpochs[i] = make([][]float64, cols)
		cells[i] = make([]Cell, cols)
		for j, alpha := range cfg.LoadRatios {
			cells[i][j] = Cell{N: n, Alpha: alpha, P: ExampleCount(n, alpha)}
		}
	}

	for _, o := range outcomes {
		c := &cells[o.row][o.col]
		if o.plainOK {
			c.Plain.Successes++
		}
		if o.augmentedOK {
			c.Augmented.Successes++
		}
		plainEpochs[o.row][o.col] = append(plainEpochs[o.row][o.col], float64(o.plainEpoch))
		augEpochs[o.row][o.col] = append(augEpochs[o.row][o.col], float64(o.augmentedEpoch))
	}

	trials := float64(cfg.TrialsPerConfig)
	for i := range cells {
		for j := range cells[i] {
			c := &cells[i][j]
			c.Plain.Proportion = float64(c.Plain.Successes) / trials
			c.Augmented.Proportion = float64(c.Augmented.Successes) / trials
			c.Plain.MeanEpoch, c.Plain.StdEpoch = epochMoments(plainEpochs[i][j])
			c.Augmented.MeanEpoch, c.Augmented.StdEpoch = epochMoments(augEpochs[i][j])
			cfg.logger().Debug("cell finished",
				"n", c.N, "alpha", c.Alpha, "p", c.P,
				"plain", c.Plain.Proportion, "clamped", c.Augmented.Proportion)
		}
	}

	return newResult(cfg.FeatureCounts, cfg.LoadRatios, cfg.TrialsPerConfig, cfg.EpochBudget, cfg.Success, cells)
}

// epochMoments sorts xs first so the floating point result does not depend on
// the order in which trials finished.
func epochMoments(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	slices.Sort(xs)
	mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		std = stat.StdDev(xs, nil)
	}
	return mean, std
}

func newResult(featureCounts []int, loadRatios []float64, trials, budget int, policy SuccessPolicy, cells [][]Cell) Result {
	plain := mat.NewDense(len(featureCounts), len(loadRatios), nil)
	aug := mat.NewDense(len(featureCounts), len(loadRatios), nil)
	for i := range cells {
		for j, c := range cells[i] {
			plain.Set(i, j, c.Plain.Proportion)
			aug.Set(i, j, c.Augmented.Proportion)
		}
	}
	return Result{
		FeatureCounts:   append([]int(nil), featureCounts...),
		LoadRatios:      append([]float64(nil), loadRatios...),
		TrialsPerConfig: trials,
		EpochBudget:     budget,
		Success:         policy,
		Cells:           cells,
		Plain:           plain,
		Augmented:       aug,
	}
}

// Stack joins results computed for disjoint feature counts into one result.
// A feature count present in more than one part is rejected.
// All parts must share the load ratio axis, trial count, epoch budget and policy.
func Stack(parts ...Result) (Result, error) {
	if len(parts) == 0 {
		return Result{}, fmt.Errorf("stack: no results: %w", core.ErrInvalidConfig)
	}
	first := parts[0]
	var featureCounts []int
	var cells [][]Cell
	seen := make(map[int]bool)
	for k, r := range parts {
		if r.TrialsPerConfig != first.TrialsPerConfig || r.EpochBudget != first.EpochBudget || r.Success != first.Success {
			return Result{}, fmt.Errorf("stack: part %d has a different trial setup: %w", k, core.ErrInvalidConfig)
		}
		if !sameAxis(r.LoadRatios, first.LoadRatios) {
			return Result{}, fmt.Errorf("stack: part %d has a different load ratio axis: %w", k, core.ErrInvalidConfig)
		}
		for _, n := range r.FeatureCounts {
			if seen[n] {
				return Result{}, fmt.Errorf("stack: feature count %d appears twice: %w", n, core.ErrInvalidConfig)
			}
			seen[n] = true
		}
		featureCounts = append(featureCounts, r.FeatureCounts...)
		cells = append(cells, r.Cells...)
	}
	return newResult(featureCounts, first.LoadRatios, first.TrialsPerConfig, first.EpochBudget, first.Success, cells), nil
}

func sameAxis(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
