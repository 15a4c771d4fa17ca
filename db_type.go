package main

import (
	"time"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/sweep"
)

const timeLayout = "2006-01-02 15:04:05"

const (
	modePlain   = "plain"
	modeClamped = "clamped"
)

type SweepRecord struct {
	ID              int64
	Name            string
	StartTime       string
	EndTime         string
	FeatureCounts   []int
	LoadRatios      []float64
	TrialsPerConfig int
	EpochBudget     int
	Mean            float64
	StdDev          float64
	Seed            uint64
	SuccessPolicy   string
}

type CellRecord struct {
	SweepID    int64
	N          int
	Alpha      float64
	P          int
	Mode       string
	Successes  int
	Proportion float64
	MeanEpoch  float64
	StdEpoch   float64
}

func CreateSweepRecord(name string, cfg sweep.Config, start, end time.Time) SweepRecord {
	return SweepRecord{
		Name:            name,
		StartTime:       start.Format(timeLayout),
		EndTime:         end.Format(timeLayout),
		FeatureCounts:   copySlice(cfg.FeatureCounts),
		LoadRatios:      append([]float64(nil), cfg.LoadRatios...),
		TrialsPerConfig: cfg.TrialsPerConfig,
		EpochBudget:     cfg.EpochBudget,
		Mean:            cfg.Mean,
		StdDev:          cfg.StdDev,
		Seed:            cfg.Seed,
		SuccessPolicy:   cfg.Success.String(),
	}
}

// CellRecords flattens a result into one record per (N, alpha, mode).
func CellRecords(sweepID int64, res sweep.Result) []CellRecord {
	var out []CellRecord
	for i := range res.Cells {
		for _, c := range res.Cells[i] {
			out = append(out,
				cellRecord(sweepID, c, modePlain, c.Plain),
				cellRecord(sweepID, c, modeClamped, c.Augmented))
		}
	}
	return out
}

func cellRecord(sweepID int64, c sweep.Cell, mode string, s sweep.ModeStats) CellRecord {
	return CellRecord{
		SweepID:    sweepID,
		N:          c.N,
		Alpha:      c.Alpha,
		P:          c.P,
		Mode:       mode,
		Successes:  s.Successes,
		Proportion: s.Proportion,
		MeanEpoch:  s.MeanEpoch,
		StdEpoch:   s.StdEpoch,
	}
}
