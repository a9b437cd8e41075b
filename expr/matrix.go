// Package expr defines the expression-matrix contract consumed by the
// scoring engine: a genes × samples numeric container with row and column
// identifiers. The engine only ever talks to the GeneMatrix interface, so
// container adapters (in-memory, out-of-core, sparse wrappers) are
// interchangeable.
package expr

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// GeneMatrix is the narrow capability interface every expression container
// adapter satisfies: 2-D numeric access plus row/column identifiers.
// Implementations must be safe for concurrent reads.
type GeneMatrix interface {
	// Dims returns the number of genes (rows) and samples (columns).
	Dims() (genes, samples int)

	// At returns the expression value of gene i in sample j.
	At(i, j int) float64

	// Genes returns the row identifiers. Callers must not mutate the slice.
	Genes() []string

	// Samples returns the column identifiers. Callers must not mutate the slice.
	Samples() []string

	// Row copies row i into dst, allocating when dst is too small, and
	// returns the filled slice.
	Row(dst []float64, i int) []float64
}

// Dense is the in-memory GeneMatrix adapter backed by a gonum mat.Dense.
type Dense struct {
	data    *mat.Dense
	genes   []string
	samples []string
}

// NewDense builds a Dense from row-major values. Gene identifiers must be
// unique; values must hold exactly len(genes)*len(samples) entries.
func NewDense(genes, samples []string, values []float64) (*Dense, error) {
	if len(genes) == 0 || len(samples) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "expr.NewDense")
	}
	if want := len(genes) * len(samples); len(values) != want {
		return nil, errors.NewDimensionError("expr.NewDense", want, len(values), 0)
	}
	seen := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		if _, dup := seen[g]; dup {
			return nil, errors.NewValidationError("genes", "duplicate gene identifier", g)
		}
		seen[g] = struct{}{}
	}
	return &Dense{
		data:    mat.NewDense(len(genes), len(samples), values),
		genes:   genes,
		samples: samples,
	}, nil
}

// FromMatrix builds a Dense by copying an arbitrary gonum matrix.
func FromMatrix(genes, samples []string, m mat.Matrix) (*Dense, error) {
	r, c := m.Dims()
	if r != len(genes) {
		return nil, errors.NewDimensionError("expr.FromMatrix", len(genes), r, 0)
	}
	if c != len(samples) {
		return nil, errors.NewDimensionError("expr.FromMatrix", len(samples), c, 1)
	}
	values := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			values[i*c+j] = m.At(i, j)
		}
	}
	return NewDense(genes, samples, values)
}

// Dims implements GeneMatrix.
func (d *Dense) Dims() (int, int) { return d.data.Dims() }

// At implements GeneMatrix.
func (d *Dense) At(i, j int) float64 { return d.data.At(i, j) }

// Genes implements GeneMatrix.
func (d *Dense) Genes() []string { return d.genes }

// Samples implements GeneMatrix.
func (d *Dense) Samples() []string { return d.samples }

// Row implements GeneMatrix.
func (d *Dense) Row(dst []float64, i int) []float64 {
	_, c := d.data.Dims()
	if cap(dst) < c {
		dst = make([]float64, c)
	}
	dst = dst[:c]
	copy(dst, d.data.RawRowView(i))
	return dst
}

// RawMatrix exposes the backing gonum matrix for numeric code paths.
func (d *Dense) RawMatrix() *mat.Dense { return d.data }

// RowSubset is a read-only view of a GeneMatrix restricted to a subset of its
// rows. It keeps the backing container, so an out-of-core matrix stays
// out-of-core after filtering.
type RowSubset struct {
	m     GeneMatrix
	rows  []int
	genes []string
}

// NewRowSubset builds a view over the given row positions of m.
func NewRowSubset(m GeneMatrix, rows []int) *RowSubset {
	all := m.Genes()
	genes := make([]string, len(rows))
	for k, i := range rows {
		genes[k] = all[i]
	}
	return &RowSubset{m: m, rows: rows, genes: genes}
}

// Dims implements GeneMatrix.
func (s *RowSubset) Dims() (int, int) {
	_, c := s.m.Dims()
	return len(s.rows), c
}

// At implements GeneMatrix.
func (s *RowSubset) At(i, j int) float64 { return s.m.At(s.rows[i], j) }

// Genes implements GeneMatrix.
func (s *RowSubset) Genes() []string { return s.genes }

// Samples implements GeneMatrix.
func (s *RowSubset) Samples() []string { return s.m.Samples() }

// Row implements GeneMatrix.
func (s *RowSubset) Row(dst []float64, i int) []float64 {
	return s.m.Row(dst, s.rows[i])
}

// RowStdDev returns the sample standard deviation of row i, skipping NaN
// entries. Rows with fewer than two observed values have an undefined
// standard deviation and return NaN.
func RowStdDev(m GeneMatrix, i int, buf []float64) float64 {
	buf = m.Row(buf, i)

	n := 0
	mean := 0.0
	for _, v := range buf {
		if math.IsNaN(v) {
			continue
		}
		n++
		mean += v
	}
	if n < 2 {
		return math.NaN()
	}
	mean /= float64(n)

	ss := 0.0
	for _, v := range buf {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
