package enrich

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gsva/core/parallel"
	"github.com/YuminosukeSato/gsva/expr"
	"github.com/YuminosukeSato/gsva/geneset"
	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// plageScores implements the SVD method: for each gene set, the coefficients
// of the first right singular vector of the set's standardized expression
// submatrix, one per sample.
//
// Singular vectors are determined only up to an overall sign flip, so the
// sign of a gene set's score row is arbitrary; callers comparing results must
// tolerate a uniform flip (correlation-based comparison rather than raw
// sign). Gene sets are the independent unit here, so chunking runs over sets
// rather than samples.
func plageScores(ctx context.Context, m expr.GeneMatrix, samples int, sets []geneset.MappedSet, o *Options) (*mat.Dense, error) {
	z := standardizedRows(m, sets)

	out := mat.NewDense(len(sets), samples, nil)
	err := o.Executor.Do(ctx, parallel.Partition(len(sets), o.ChunkSize), func(_ context.Context, c parallel.Chunk) error {
		for si := c.Start; si < c.End; si++ {
			set := sets[si]
			k := set.Size()
			if k < 2 {
				// The mapper's size window normally rules this out; an SVD of
				// a single row is still refused here.
				return errors.NewGeneSetTooSmallError(set.Name, k, 2, MethodPLAGE.String())
			}

			sub := mat.NewDense(k, samples, nil)
			for r, g := range set.Rows {
				sub.SetRow(r, z[g])
			}

			var svd mat.SVD
			if ok := svd.Factorize(sub, mat.SVDThin); !ok {
				return errors.Newf("gsva: plage: SVD failed to converge for gene set %q", set.Name)
			}
			var v mat.Dense
			svd.VTo(&v)
			for j := 0; j < samples; j++ {
				out.Set(si, j, v.At(j, 0))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
