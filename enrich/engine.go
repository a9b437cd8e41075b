package enrich

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gsva/expr"
	"github.com/YuminosukeSato/gsva/geneset"
	"github.com/YuminosukeSato/gsva/kcdf"
	"github.com/YuminosukeSato/gsva/pkg/errors"
	"github.com/YuminosukeSato/gsva/pkg/log"
)

// Result is the gene-set × sample score matrix. Row order follows the
// insertion order of the input collection (minus filtered sets); column order
// matches the input expression matrix.
type Result struct {
	scores  *mat.Dense
	sets    []string
	samples []string
}

// Dims returns the number of gene sets (rows) and samples (columns).
func (r *Result) Dims() (int, int) { return r.scores.Dims() }

// At returns the score of gene set i in sample j.
func (r *Result) At(i, j int) float64 { return r.scores.At(i, j) }

// SetNames returns the retained gene-set names, in row order.
func (r *Result) SetNames() []string { return r.sets }

// Samples returns the sample identifiers, in column order.
func (r *Result) Samples() []string { return r.samples }

// Matrix exposes the backing gonum matrix.
func (r *Result) Matrix() *mat.Dense { return r.scores }

// Row returns the score row of the named gene set, or false if the set was
// filtered out.
func (r *Result) Row(name string) ([]float64, bool) {
	for i, n := range r.sets {
		if n == name {
			return mat.Row(nil, i, r.scores), true
		}
	}
	return nil, false
}

// Scores runs the enrichment pipeline: filter constant rows, map gene sets to
// row positions, derive the per-method statistic and ranking, and aggregate
// one score per (gene set, sample).
//
// All fatal conditions (no mappable identifiers, empty collection after size
// filtering, invalid options) surface before any parallel work is dispatched,
// so a returned error never comes with partial output. Every derived matrix
// is created fresh for this call and discarded afterwards; the input is not
// mutated and nothing is cached across calls.
func Scores(ctx context.Context, m expr.GeneMatrix, sets *geneset.Collection, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	genes, samples := m.Dims()
	if genes == 0 || samples == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "enrich.Scores")
	}

	logger := o.Logger.With().
		Str(log.MethodKey, o.Method.String()).
		Int(log.GenesKey, genes).
		Int(log.SamplesKey, samples).
		Logger()

	// ssgsea ranks within a sample-independent transform, so constant rows
	// cannot distort it and are kept; every other method requires variance.
	drop := o.Method != MethodSSGSEA
	fm, constant := expr.FilterConstantRows(m, drop)
	if len(constant) > 0 {
		logger.Debug().Int(log.DroppedKey, len(constant)).Msg("constant rows detected")
	}

	mapped, err := geneset.Map(sets, fm.Genes(), o.MinSize, o.MaxSize)
	if err != nil {
		return nil, err
	}
	if o.Method == MethodPLAGE {
		for _, s := range mapped {
			if s.Size() < 2 {
				return nil, errors.NewGeneSetTooSmallError(s.Name, s.Size(), 2, o.Method.String())
			}
		}
	}
	logger.Info().Int(log.GeneSetsKey, len(mapped)).Msg("scoring gene sets")

	var scores *mat.Dense
	switch o.Method {
	case MethodGSVA:
		stats, terr := kcdf.Transform(ctx, fm, o.Kernel, o.Executor, o.ChunkSize)
		if terr != nil {
			return nil, terr
		}
		scores, err = walkScores(ctx, denseColumns{m: stats}, samples, mapped, &o)
	case MethodSSGSEA:
		scores, err = walkScores(ctx, matrixColumns{m: fm}, samples, mapped, &o)
		if err == nil && o.SSGSEANorm {
			err = normalizeGlobalRange(scores)
		}
	case MethodZScore:
		scores, err = zscoreScores(ctx, fm, samples, mapped, &o)
	case MethodPLAGE:
		scores, err = plageScores(ctx, fm, samples, mapped, &o)
	default:
		err = errors.NewValidationError("method", "unknown scoring method", o.Method)
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, len(mapped))
	for i, s := range mapped {
		names[i] = s.Name
	}
	return &Result{scores: scores, sets: names, samples: fm.Samples()}, nil
}
