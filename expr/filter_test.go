package expr

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

func newFilterFixture(t *testing.T) *Dense {
	t.Helper()
	m, err := NewDense(
		[]string{"g1", "flat", "g2", "empty"},
		[]string{"s1", "s2", "s3"},
		[]float64{
			1, 2, 3,
			4, 4, 4,
			9, 7, 8,
			math.NaN(), math.NaN(), math.NaN(),
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestFilterConstantRowsDrops(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(func(error) {})

	filtered, constant := FilterConstantRows(newFilterFixture(t), true)

	if len(constant) != 2 {
		t.Fatalf("constant rows = %v, want [flat empty]", constant)
	}
	r, _ := filtered.Dims()
	if r != 2 {
		t.Errorf("filtered rows = %d, want 2", r)
	}
	genes := filtered.Genes()
	if genes[0] != "g1" || genes[1] != "g2" {
		t.Errorf("surviving genes = %v", genes)
	}

	var w *errors.ConstantRowsWarning
	if !errors.As(warned, &w) {
		t.Fatalf("expected ConstantRowsWarning, got %v", warned)
	}
	if w.Count != 2 || !w.Dropped {
		t.Errorf("warning fields: %+v", w)
	}
}

func TestFilterConstantRowsKeepsWhenTolerated(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(func(error) {})

	m := newFilterFixture(t)
	filtered, constant := FilterConstantRows(m, false)

	if filtered != GeneMatrix(m) {
		t.Error("matrix should be returned unchanged when rows are tolerated")
	}
	if len(constant) != 2 {
		t.Errorf("constant rows = %v", constant)
	}
	var w *errors.ConstantRowsWarning
	if !errors.As(warned, &w) || w.Dropped {
		t.Errorf("warning should still fire with Dropped=false, got %v", warned)
	}
}

func TestFilterConstantRowsNoOpWithoutConstants(t *testing.T) {
	warned := false
	errors.SetWarningHandler(func(error) { warned = true })
	defer errors.SetWarningHandler(func(error) {})

	m, err := NewDense([]string{"a", "b"}, []string{"s1", "s2"}, []float64{1, 2, 5, 3})
	if err != nil {
		t.Fatal(err)
	}
	filtered, constant := FilterConstantRows(m, true)
	if filtered != GeneMatrix(m) || constant != nil {
		t.Error("clean matrix should pass through untouched")
	}
	if warned {
		t.Error("no warning expected")
	}
}
