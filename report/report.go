// Package report renders sweep results as text tables and capacity curves.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Peter-Varga08/NeuralNetworks-and-ComputationalIntelligence/sweep"
)

// Table writes one row per (N, alpha) cell with the plain and clamped proportions.
func Table(w io.Writer, res sweep.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "N\talpha\tP\tplain\tclamped\tmean epoch\tmean epoch clamped")
	for i := range res.Cells {
		for _, c := range res.Cells[i] {
			fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.2f\t%.2f\t%.1f\t%.1f\n",
				c.N, c.Alpha, c.P,
				c.Plain.Proportion, c.Augmented.Proportion,
				c.Plain.MeanEpoch, c.Augmented.MeanEpoch)
		}
	}
	return tw.Flush()
}

// Curves returns the plain and clamped proportion curves of row i against alpha.
func Curves(res sweep.Result, i int) (plain, clamped plotter.XYs) {
	plain = make(plotter.XYs, len(res.LoadRatios))
	clamped = make(plotter.XYs, len(res.LoadRatios))
	for j, alpha := range res.LoadRatios {
		plain[j].X, plain[j].Y = alpha, res.Plain.At(i, j)
		clamped[j].X, clamped[j].Y = alpha, res.Augmented.At(i, j)
	}
	return plain, clamped
}

// Plot draws proportion_successful against alpha, one plain and one clamped
// line per feature count, and saves it to path. The extension picks the format.
func Plot(res sweep.Result, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "alpha"
	p.Y.Label.Text = "proportion_successful"
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = true

	var lines []interface{}
	for i, n := range res.FeatureCounts {
		plain, clamped := Curves(res, i)
		lines = append(lines,
			fmt.Sprintf("N = %d", n), plain,
			fmt.Sprintf("N = %d, clamped", n), clamped)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("plot lines: %w", err)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
