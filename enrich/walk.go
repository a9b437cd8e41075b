package enrich

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gsva/core/parallel"
	"github.com/YuminosukeSato/gsva/geneset"
	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// walkScores computes the random-walk enrichment statistic for every
// (gene set, sample) pair. Samples are embarrassingly parallel: each chunk
// reads the shared column source and writes only its own columns of the
// output, so no locking is needed.
func walkScores(ctx context.Context, src columnSource, samples int, sets []geneset.MappedSet, o *Options) (*mat.Dense, error) {
	p := src.rows()

	// Rank-position weights, symmetric around the middle of the ranked list.
	// Positions near either extreme carry the most evidence.
	tau := o.effectiveTau()
	weights := make([]float64, p+1)
	mid := (float64(p) + 1) / 2
	for r := 1; r <= p; r++ {
		weights[r] = math.Pow(math.Abs(mid-float64(r)), tau)
	}

	masks := make([][]bool, len(sets))
	for i, s := range sets {
		mask := make([]bool, p)
		for _, g := range s.Rows {
			mask[g] = true
		}
		masks[i] = mask
	}

	out := mat.NewDense(len(sets), samples, nil)
	err := o.Executor.Do(ctx, parallel.Partition(samples, o.ChunkSize), func(_ context.Context, c parallel.Chunk) error {
		col := make([]float64, p)
		order := make([]int, p)
		for j := c.Start; j < c.End; j++ {
			col = src.column(col, j)
			RankDescending(col, order)
			for si, set := range sets {
				score := walkStatistic(order, masks[si], set.Size(), weights, o.MaxDiff, o.AbsRanking)
				if err := errors.CheckScalar("enrich.walk", score); err != nil {
					return err
				}
				out.Set(si, j, score)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walkStatistic runs one random walk: stepping through the ranked list,
// in-set genes add their normalized rank weight, out-of-set genes subtract a
// uniform step, and the extremes of the running sum are condensed into a
// single score.
func walkStatistic(order []int, inSet []bool, k int, weights []float64, maxDiff, absRanking bool) float64 {
	p := len(order)
	if k <= 0 || k >= p {
		// No walk is possible without both in-set and out-of-set genes.
		return 0
	}

	sumW := 0.0
	for r := 1; r <= p; r++ {
		if inSet[order[r-1]] {
			sumW += weights[r]
		}
	}
	// A single-member set ranked exactly mid-list has zero total weight;
	// fall back to uniform in-set increments to keep the walk defined.
	uniform := sumW <= 0

	dec := 1 / float64(p-k)
	running, maxPos, maxNeg := 0.0, 0.0, 0.0
	for r := 1; r <= p; r++ {
		if inSet[order[r-1]] {
			if uniform {
				running += 1 / float64(k)
			} else {
				running += weights[r] / sumW
			}
		} else {
			running -= dec
		}
		if running > maxPos {
			maxPos = running
		}
		if running < maxNeg {
			maxNeg = running
		}
	}

	switch {
	case maxDiff && !absRanking:
		// Modified Kuiper statistic: signed magnitude of difference.
		return maxPos + maxNeg
	case maxDiff && absRanking:
		// Both deviations count as evidence of activation.
		return maxPos - maxNeg
	default:
		// Classic single-sided KS-type statistic, keeping the sign of the
		// dominant excursion.
		if maxPos >= -maxNeg {
			return maxPos
		}
		return maxNeg
	}
}

// normalizeGlobalRange divides every raw score by the global max - min. It is
// applied exactly once, after all chunks are merged. A zero range would make
// every score undefined and is reported as an error rather than guessed
// around.
func normalizeGlobalRange(scores *mat.Dense) error {
	r, c := scores.Dims()
	maxV, minV := math.Inf(-1), math.Inf(1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := scores.At(i, j)
			if v > maxV {
				maxV = v
			}
			if v < minV {
				minV = v
			}
		}
	}
	rng := maxV - minV
	if rng == 0 {
		return errors.NewValueError("enrich.ssgsea", "zero global score range; normalization undefined")
	}
	scores.Scale(1/rng, scores)
	return nil
}
