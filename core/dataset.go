// Package core holds the synthetic problem generator and the cyclic perceptron
// learning rule used by the capacity experiment.
package core

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// ClampValue is the constant input appended to every example of an augmented dataset.
const ClampValue = -1.0

// Dataset is a P x N feature matrix stored row major, paired with P labels in {-1, +1}.
type Dataset struct {
	Rows   int
	Dim    int
	X      []float64
	Labels []float64
}

// Row returns the features of example j. The slice aliases the dataset storage.
func (d Dataset) Row(j int) []float64 {
	return d.X[j*d.Dim : (j+1)*d.Dim]
}

// Dense returns a matrix view over the features, or nil for an empty dataset.
func (d Dataset) Dense() *mat.Dense {
	if d.Rows == 0 || d.Dim == 0 {
		return nil
	}
	return mat.NewDense(d.Rows, d.Dim, d.X)
}

// Generator draws random classification problems from an explicit random stream.
type Generator struct {
	rng       *rand.Rand
	mu, sigma float64
}

// NewGenerator builds a generator sampling features from N(mu, sigma) and labels
// uniformly from {-1, +1}, both driven by src.
func NewGenerator(src rand.Source, mu, sigma float64) *Generator {
	g := &Generator{mu: mu, sigma: sigma}
	if src != nil {
		g.rng = rand.New(src)
	}
	return g
}

// Generate draws p examples of dimension n and returns the plain dataset together
// with its clamped variant, which carries an extra ClampValue column.
// Both share the same labels.
func (g *Generator) Generate(n, p int) (Dataset, Dataset, error) {
	if n <= 0 {
		return Dataset{}, Dataset{}, fmt.Errorf("generate n=%d: %w", n, ErrInvalidDimension)
	}
	if p < 0 {
		return Dataset{}, Dataset{}, fmt.Errorf("generate p=%d: %w", p, ErrInvalidConfig)
	}
	if g == nil || g.rng == nil {
		return Dataset{}, Dataset{}, fmt.Errorf("generate: nil source: %w", ErrRandomSource)
	}

	labels := make([]float64, p)
	plain := Dataset{Rows: p, Dim: n, X: make([]float64, p*n), Labels: labels}
	clamped := Dataset{Rows: p, Dim: n + 1, X: make([]float64, p*(n+1)), Labels: labels}

	for j := 0; j < p; j++ {
		row := plain.Row(j)
		for i := range row {
			row[i] = g.rng.NormFloat64()*g.sigma + g.mu
		}
		copy(clamped.Row(j), row)
		clamped.Row(j)[n] = ClampValue
	}

	for j := range labels {
		if g.rng.IntN(2) == 0 {
			labels[j] = -1
		} else {
			labels[j] = 1
		}
	}

	return plain, clamped, nil
}
