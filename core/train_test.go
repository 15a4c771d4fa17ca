package core

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainSingleExample(t *testing.T) {
	data := Dataset{Rows: 1, Dim: 2, X: []float64{1, 0}, Labels: []float64{1}}

	res, err := Train(2, 1, 10, data)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Epoch)
	assert.Equal(t, []float64{0.5, 0}, res.Weights)
	assert.Equal(t, 1, res.Updates)
}

func TestTrainEmptyDataset(t *testing.T) {
	for _, n := range []int{1, 2, 20, 41} {
		plain, clamped, err := newTestGenerator(9).Generate(n, 0)
		require.NoError(t, err)

		for _, d := range []Dataset{plain, clamped} {
			res, err := Train(d.Dim, 0, 100, d)
			require.NoError(t, err)
			assert.True(t, res.Converged)
			assert.Equal(t, 0, res.Epoch)
			assert.Equal(t, make([]float64, d.Dim), res.Weights)
			assert.Zero(t, res.Updates)
		}
	}
}

func TestTrainBudgetExhausted(t *testing.T) {
	data := Dataset{Rows: 1, Dim: 2, X: []float64{1, 0}, Labels: []float64{1}}
	res, err := Train(2, 1, 1, data)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 0, res.Epoch)
	assert.Equal(t, []float64{0.5, 0}, res.Weights)
}

func TestTrainNonSeparable(t *testing.T) {
	// The same point with both labels can never be separated.
	data := Dataset{Rows: 2, Dim: 2, X: []float64{1, 1, 1, 1}, Labels: []float64{1, -1}}
	res, err := Train(2, 2, 25, data)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 24, res.Epoch)
}

func TestTrainSeparatesSmallLoad(t *testing.T) {
	// alpha = 0.5 is far below capacity, so a random problem is separable.
	plain, clamped, err := newTestGenerator(11).Generate(40, 20)
	require.NoError(t, err)

	for _, d := range []Dataset{plain, clamped} {
		res, err := Train(d.Dim, d.Rows, 1000, d)
		require.NoError(t, err)
		require.True(t, res.Converged)
		assert.Less(t, res.Epoch, 1000)

		e, err := Stabilities(res.Weights, d)
		require.NoError(t, err)
		for _, v := range e {
			assert.Greater(t, v, 0.0)
		}
		kappa, err := MinStability(res.Weights, d)
		require.NoError(t, err)
		assert.Greater(t, kappa, 0.0)
	}
}

func TestTrainPrefixOfRows(t *testing.T) {
	// Only the first example takes part; the contradicting second one is ignored.
	data := Dataset{Rows: 2, Dim: 2, X: []float64{1, 0, 1, 0}, Labels: []float64{1, -1}}
	res, err := Train(2, 1, 10, data)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Epoch)
}

func TestTrainDeterministic(t *testing.T) {
	plain, _, err := NewGenerator(rand.NewPCG(5, 5), 0, 1).Generate(20, 40)
	require.NoError(t, err)
	a, err := Train(20, 40, 100, plain)
	require.NoError(t, err)
	b, err := Train(20, 40, 100, plain)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTrainErrors(t *testing.T) {
	data := Dataset{Rows: 1, Dim: 2, X: []float64{1, 0}, Labels: []float64{1}}

	tests := []struct {
		name                  string
		dim, examples, budget int
		data                  Dataset
		want                  error
	}{
		{"zero dim", 0, 1, 10, data, ErrInvalidDimension},
		{"negative dim", -1, 1, 10, data, ErrInvalidDimension},
		{"zero budget", 2, 1, 0, data, ErrInvalidConfig},
		{"negative budget", 2, 1, -5, data, ErrInvalidConfig},
		{"negative examples", 2, -1, 10, data, ErrInvalidConfig},
		{"width mismatch", 3, 1, 10, data, ErrDimensionMismatch},
		{"too many examples", 2, 2, 10, data, ErrDimensionMismatch},
		{"labels mismatch", 2, 1, 10, Dataset{Rows: 1, Dim: 2, X: []float64{1, 0}}, ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Train(tt.dim, tt.examples, tt.budget, tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMinStability(t *testing.T) {
	data := Dataset{Rows: 2, Dim: 2, X: []float64{3, 0, 0, 4}, Labels: []float64{1, -1}}

	kappa, err := MinStability([]float64{0, 0}, data)
	require.NoError(t, err)
	assert.Zero(t, kappa)

	// w = (1, -1)/|w|: E = 3 and 4, normalised by sqrt(2).
	kappa, err = MinStability([]float64{1, -1}, data)
	require.NoError(t, err)
	assert.InDelta(t, 3/1.4142135623730951, kappa, 1e-12)

	_, err = MinStability([]float64{1}, data)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStabilitiesMatchRowProducts(t *testing.T) {
	plain, clamped, err := newTestGenerator(13).Generate(6, 9)
	require.NoError(t, err)

	for _, d := range []Dataset{plain, clamped} {
		w := make([]float64, d.Dim)
		for i := range w {
			w[i] = float64(i) - 2.5
		}
		e, err := Stabilities(w, d)
		require.NoError(t, err)
		require.Len(t, e, d.Rows)
		for j := 0; j < d.Rows; j++ {
			var dot float64
			for i, x := range d.Row(j) {
				dot += w[i] * x
			}
			assert.InDelta(t, dot*d.Labels[j], e[j], 1e-12)
		}
	}

	empty, _, err := newTestGenerator(13).Generate(6, 0)
	require.NoError(t, err)
	e, err := Stabilities(make([]float64, 6), empty)
	require.NoError(t, err)
	assert.Empty(t, e)
}
