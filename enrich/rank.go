package enrich

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gsva/expr"
)

// columnSource abstracts where a sample's per-gene values come from when
// ranking: the statistic matrix for the gsva method, raw expression for
// methods that rank unsmoothed values.
type columnSource interface {
	rows() int
	column(dst []float64, j int) []float64
}

type denseColumns struct {
	m *mat.Dense
}

func (d denseColumns) rows() int {
	r, _ := d.m.Dims()
	return r
}

func (d denseColumns) column(dst []float64, j int) []float64 {
	r, _ := d.m.Dims()
	if cap(dst) < r {
		dst = make([]float64, r)
	}
	dst = dst[:r]
	mat.Col(dst, j, d.m)
	return dst
}

type matrixColumns struct {
	m expr.GeneMatrix
}

func (s matrixColumns) rows() int {
	r, _ := s.m.Dims()
	return r
}

func (s matrixColumns) column(dst []float64, j int) []float64 {
	r, _ := s.m.Dims()
	if cap(dst) < r {
		dst = make([]float64, r)
	}
	dst = dst[:r]
	for i := 0; i < r; i++ {
		dst[i] = s.m.At(i, j)
	}
	return dst
}

// RankDescending fills order with gene indices sorted by descending value.
// Ties keep the first-occurrence row order, so rankings are reproducible for
// identical input ordering. order must have len(values) entries.
func RankDescending(values []float64, order []int) {
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})
}
