package enrich

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gsva/core/parallel"
	"github.com/YuminosukeSato/gsva/expr"
	"github.com/YuminosukeSato/gsva/geneset"
)

// standardizedRows z-scores (zero mean, unit variance across samples) every
// matrix row referenced by at least one mapped gene set. Only the union of
// mapped rows is materialized, which keeps the standardized-sum and SVD
// methods cheap on large out-of-core matrices. Missing values standardize to
// a neutral 0.
func standardizedRows(m expr.GeneMatrix, sets []geneset.MappedSet) map[int][]float64 {
	_, samples := m.Dims()

	z := make(map[int][]float64)
	buf := make([]float64, samples)
	for _, s := range sets {
		for _, i := range s.Rows {
			if _, done := z[i]; done {
				continue
			}
			buf = m.Row(buf, i)

			n := 0
			mean := 0.0
			for _, v := range buf {
				if !math.IsNaN(v) {
					n++
					mean += v
				}
			}
			if n > 0 {
				mean /= float64(n)
			}
			ss := 0.0
			for _, v := range buf {
				if !math.IsNaN(v) {
					d := v - mean
					ss += d * d
				}
			}
			sd := 0.0
			if n > 1 {
				sd = math.Sqrt(ss / float64(n-1))
			}
			if sd == 0 {
				// Constant rows are filtered upstream for the methods using
				// this path; guard anyway so a unit write never divides by 0.
				sd = 1
			}

			row := make([]float64, samples)
			for j, v := range buf {
				if math.IsNaN(v) {
					row[j] = 0
					continue
				}
				row[j] = (v - mean) / sd
			}
			z[i] = row
		}
	}
	return z
}

// zscoreScores implements the standardized-sum method: for each gene set and
// sample, the sum of the member genes' z-scored values divided by the square
// root of the set size.
func zscoreScores(ctx context.Context, m expr.GeneMatrix, samples int, sets []geneset.MappedSet, o *Options) (*mat.Dense, error) {
	z := standardizedRows(m, sets)

	out := mat.NewDense(len(sets), samples, nil)
	err := o.Executor.Do(ctx, parallel.Partition(samples, o.ChunkSize), func(_ context.Context, c parallel.Chunk) error {
		for j := c.Start; j < c.End; j++ {
			for si, set := range sets {
				sum := 0.0
				for _, g := range set.Rows {
					sum += z[g][j]
				}
				out.Set(si, j, sum/math.Sqrt(float64(set.Size())))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
