package enrich

import (
	"math"
	"math/rand"
	"testing"
)

func symmetricWeights(p int, tau float64) []float64 {
	w := make([]float64, p+1)
	mid := (float64(p) + 1) / 2
	for r := 1; r <= p; r++ {
		w[r] = math.Pow(math.Abs(mid-float64(r)), tau)
	}
	return w
}

func TestRankDescending(t *testing.T) {
	values := []float64{3, 1, 3, 2}
	order := make([]int, len(values))
	RankDescending(values, order)

	// Ties (indices 0 and 2) keep first-occurrence order.
	want := []int{0, 2, 3, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestWalkStatisticTopConcentrationIsPositive(t *testing.T) {
	p := 50
	order := make([]int, p)
	for i := range order {
		order[i] = i
	}
	inSet := make([]bool, p)
	for i := 0; i < 5; i++ {
		inSet[i] = true // the set occupies the leading ranks
	}

	score := walkStatistic(order, inSet, 5, symmetricWeights(p, 1), true, false)
	if score <= 0 {
		t.Errorf("score = %g, want > 0 for a top-concentrated set", score)
	}
}

func TestWalkStatisticComplementAntisymmetry(t *testing.T) {
	p := 41
	rng := rand.New(rand.NewSource(7))

	order := rng.Perm(p)
	complement := make([]int, p)
	for i := range order {
		complement[i] = order[p-1-i]
	}

	inSet := make([]bool, p)
	for _, g := range rng.Perm(p)[:9] {
		inSet[g] = true
	}
	weights := symmetricWeights(p, 1)

	score := walkStatistic(order, inSet, 9, weights, true, false)
	flipped := walkStatistic(complement, inSet, 9, weights, true, false)

	if math.Abs(score+flipped) > 1e-12 {
		t.Errorf("complemented ranking: got %g, want %g", flipped, -score)
	}
}

func TestWalkStatisticVariantRelations(t *testing.T) {
	p := 30
	rng := rand.New(rand.NewSource(11))
	order := rng.Perm(p)
	inSet := make([]bool, p)
	for _, g := range rng.Perm(p)[:6] {
		inSet[g] = true
	}
	weights := symmetricWeights(p, 0.25)

	diff := walkStatistic(order, inSet, 6, weights, true, false)
	abs := walkStatistic(order, inSet, 6, weights, true, true)
	single := walkStatistic(order, inSet, 6, weights, false, false)

	// max_pos - max_neg dominates |max_pos + max_neg| and the single-sided
	// statistic is one of the two excursions.
	if abs < math.Abs(diff)-1e-12 {
		t.Errorf("abs-ranking score %g should dominate |%g|", abs, diff)
	}
	if math.Abs(single) > abs+1e-12 {
		t.Errorf("single-sided score %g cannot exceed the excursion span %g", single, abs)
	}
}

func TestWalkStatisticDegenerateSets(t *testing.T) {
	order := []int{0, 1, 2}
	weights := symmetricWeights(3, 1)

	if got := walkStatistic(order, []bool{true, true, true}, 3, weights, true, false); got != 0 {
		t.Errorf("all-in-set walk = %g, want 0", got)
	}
	if got := walkStatistic(order, []bool{false, false, false}, 0, weights, true, false); got != 0 {
		t.Errorf("empty-set walk = %g, want 0", got)
	}
}

func TestWalkStatisticZeroWeightFallsBackToUniform(t *testing.T) {
	// A singleton set sitting exactly mid-list has |(P+1)/2 - r| = 0, so the
	// weighted increment degenerates; the uniform fallback keeps the walk
	// finite.
	p := 5
	order := []int{0, 1, 2, 3, 4}
	inSet := []bool{false, false, true, false, false} // gene 2 at rank 3 = (5+1)/2
	weights := symmetricWeights(p, 1)

	score := walkStatistic(order, inSet, 1, weights, true, false)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Fatalf("degenerate weight walk = %g, want finite", score)
	}
}
