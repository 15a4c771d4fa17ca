package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of one training run.
type Result struct {
	Weights []float64
	// Epoch is the 0-based index of the last epoch attempted.
	Epoch     int
	Converged bool
	// Updates counts the weight updates over the whole run.
	Updates int
}

// Train runs the cyclic perceptron rule over the first numExamples rows of data,
// in row order, for at most epochBudget epochs. An example with stability
// E = (w.x)*y <= 0 is an error and moves w by y*x/dim. Training stops at the
// first epoch without errors.
func Train(dim, numExamples, epochBudget int, data Dataset) (Result, error) {
	if dim <= 0 {
		return Result{}, fmt.Errorf("train dim=%d: %w", dim, ErrInvalidDimension)
	}
	if epochBudget <= 0 {
		return Result{}, fmt.Errorf("train epoch budget=%d: %w", epochBudget, ErrInvalidConfig)
	}
	if numExamples < 0 {
		return Result{}, fmt.Errorf("train examples=%d: %w", numExamples, ErrInvalidConfig)
	}
	if data.Rows > 0 && data.Dim != dim {
		return Result{}, fmt.Errorf("train dim=%d, data rows have %d features: %w", dim, data.Dim, ErrDimensionMismatch)
	}
	if numExamples > data.Rows || len(data.Labels) != data.Rows || len(data.X) != data.Rows*data.Dim {
		return Result{}, fmt.Errorf("train examples=%d rows=%d labels=%d: %w",
			numExamples, data.Rows, len(data.Labels), ErrDimensionMismatch)
	}

	w := make([]float64, dim)
	step := 1 / float64(dim)
	updates := 0

	for epoch := 0; epoch < epochBudget; epoch++ {
		epochErrors := 0
		for j := 0; j < numExamples; j++ {
			x, y := data.Row(j), data.Labels[j]
			if floats.Dot(w, x)*y <= 0 {
				floats.AddScaled(w, step*y, x)
				epochErrors++
			}
		}
		updates += epochErrors
		if epochErrors == 0 {
			return Result{Weights: w, Epoch: epoch, Converged: true, Updates: updates}, nil
		}
	}

	return Result{Weights: w, Epoch: epochBudget - 1, Converged: false, Updates: updates}, nil
}

// Stabilities returns E = (w.x)*y for every example of data.
func Stabilities(w []float64, data Dataset) ([]float64, error) {
	if data.Rows > 0 && len(w) != data.Dim {
		return nil, fmt.Errorf("stabilities: %d weights, %d features: %w", len(w), data.Dim, ErrDimensionMismatch)
	}
	x := data.Dense()
	if x == nil {
		return []float64{}, nil
	}
	var fields mat.VecDense
	fields.MulVec(x, mat.NewVecDense(len(w), w))
	out := make([]float64, data.Rows)
	for j := range out {
		out[j] = fields.AtVec(j) * data.Labels[j]
	}
	return out, nil
}

// MinStability returns the smallest stability normalised by |w|. It is positive
// exactly when w separates the data. A zero weight vector or an empty dataset
// yields 0.
func MinStability(w []float64, data Dataset) (float64, error) {
	e, err := Stabilities(w, data)
	if err != nil {
		return 0, err
	}
	norm := floats.Norm(w, 2)
	if len(e) == 0 || norm == 0 {
		return 0, nil
	}
	kappa := math.Inf(1)
	for _, v := range e {
		kappa = math.Min(kappa, v/norm)
	}
	return kappa, nil
}
