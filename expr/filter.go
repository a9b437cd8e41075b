package expr

import (
	"math"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// FilterConstantRows detects rows whose standard deviation across samples is
// zero or undefined. When drop is true the returned matrix excludes them
// (as a view over the input, nothing is copied); when false the input is
// returned unchanged. Either way a ConstantRowsWarning diagnostic is emitted
// if any constant rows exist, and their gene identifiers are returned.
func FilterConstantRows(m GeneMatrix, drop bool) (GeneMatrix, []string) {
	genes, samples := m.Dims()
	names := m.Genes()

	var (
		keep     []int
		constant []string
	)
	buf := make([]float64, samples)
	for i := 0; i < genes; i++ {
		sd := RowStdDev(m, i, buf)
		if sd == 0 || math.IsNaN(sd) {
			constant = append(constant, names[i])
			continue
		}
		keep = append(keep, i)
	}

	if len(constant) == 0 {
		return m, nil
	}

	errors.Warn(errors.NewConstantRowsWarning(constant, drop))
	if !drop {
		return m, constant
	}
	return NewRowSubset(m, keep), constant
}
