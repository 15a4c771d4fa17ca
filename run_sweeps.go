package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/core"
	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/report"
	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/sweep"
)

// Runner executes sweeps and hands the results to the configured sinks.
// Every sink is optional.
type Runner struct {
	Store    *Store
	PlotDir  string
	Out      io.Writer
	Notifier Notifier
	Logger   *slog.Logger
	Progress bool
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) notifier() Notifier {
	if r.Notifier == nil {
		return nopNotifier{}
	}
	return r.Notifier
}

func (r *Runner) notify(title, body string) {
	if err := r.notifier().Notify(title, body); err != nil {
		r.logger().Warn("notification failed", "title", title, "err", err)
	}
}

// RunSweep runs cfg one feature count at a time, stacks the rows and then
// stores, plots and prints the result.
func (r *Runner) RunSweep(ctx context.Context, name string, cfg sweep.Config) (sweep.Result, error) {
	log := r.logger().With("sweep", name)
	cfg.Logger = log

	start := time.Now()
	r.notify("Capacity sweep starting!", fmt.Sprintf("%s: N=%v, %d load ratios", name, cfg.FeatureCounts, len(cfg.LoadRatios)))

	res, err := r.runRows(ctx, name, cfg)
	if err != nil {
		r.notify("Capacity sweep failed!", fmt.Sprintf("%s: %v", name, err))
		return sweep.Result{}, err
	}
	end := time.Now()
	log.Info("sweep finished", "elapsed", end.Sub(start).Round(time.Millisecond))

	if err := r.probeStability(cfg, log); err != nil {
		return sweep.Result{}, err
	}

	if r.Store != nil {
		id, err := r.Store.SaveSweep(CreateSweepRecord(name, cfg, start, end), CellRecords(0, res))
		if err != nil {
			return sweep.Result{}, fmt.Errorf("saving sweep %s: %w", name, err)
		}
		log.Info("new insert to DB", "sweep_id", id)
	}

	if r.PlotDir != "" {
		if err := os.MkdirAll(r.PlotDir, 0o755); err != nil {
			return sweep.Result{}, err
		}
		path := filepath.Join(r.PlotDir, name+".png")
		if err := report.Plot(res, name, path); err != nil {
			return sweep.Result{}, err
		}
		log.Info("capacity curve written", "path", path)
	}

	if r.Out != nil {
		fmt.Fprintf(r.Out, "# %s\n", name)
		if err := report.Table(r.Out, res); err != nil {
			return sweep.Result{}, err
		}
	}

	r.notify("Capacity sweep finished!", fmt.Sprintf("%s: time to check the results...", name))
	return res, nil
}

func (r *Runner) runRows(ctx context.Context, name string, cfg sweep.Config) (sweep.Result, error) {
	if !r.Progress {
		return sweep.Run(ctx, cfg)
	}

	parts := make([]sweep.Result, 0, len(cfg.FeatureCounts))
	var runErr error
	err := tqdm.With(iterators.Interval(0, len(cfg.FeatureCounts)), name, func(v interface{}) (brk bool) {
		rowCfg := cfg
		i := v.(int)
		rowCfg.FeatureCounts = cfg.FeatureCounts[i : i+1]
		part, err := sweep.Run(ctx, rowCfg)
		if err != nil {
			runErr = err
			return true
		}
		parts = append(parts, part)
		return false
	})
	if runErr != nil {
		return sweep.Result{}, runErr
	}
	if err != nil {
		return sweep.Result{}, err
	}
	return sweep.Stack(parts...)
}

// probeStability trains one problem of the last configuration in both modes and
// logs the resulting weights' minimum stability.
func (r *Runner) probeStability(cfg sweep.Config, log *slog.Logger) error {
	n := cfg.FeatureCounts[len(cfg.FeatureCounts)-1]
	alpha := cfg.LoadRatios[len(cfg.LoadRatios)-1]
	p := sweep.ExampleCount(n, alpha)

	gen := core.NewGenerator(rand.NewPCG(cfg.Seed, uint64(n)), cfg.Mean, cfg.StdDev)
	plain, clamped, err := gen.Generate(n, p)
	if err != nil {
		return err
	}
	for _, d := range []struct {
		mode string
		data core.Dataset
	}{{modePlain, plain}, {modeClamped, clamped}} {
		res, err := core.Train(d.data.Dim, p, cfg.EpochBudget, d.data)
		if err != nil {
			return err
		}
		kappa, err := core.MinStability(res.Weights, d.data)
		if err != nil {
			return err
		}
		log.Debug("final weights",
			"mode", d.mode, "n", n, "alpha", alpha,
			"converged", res.Converged, "epoch", res.Epoch, "updates", res.Updates,
			"min_stability", kappa)
	}
	return nil
}
