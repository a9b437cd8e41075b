package geneset

import (
	"testing"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

func TestCollectionInsertionOrderAndDedup(t *testing.T) {
	c := NewCollection()
	c.Add("beta", "TP53", "MYC")
	c.Add("alpha", "EGFR")
	c.Add("beta", "MYC", "KRAS") // merge, MYC already present

	names := c.Names()
	if len(names) != 2 || names[0] != "beta" || names[1] != "alpha" {
		t.Fatalf("Names() = %v, want insertion order [beta alpha]", names)
	}
	members := c.Members("beta")
	want := []string{"TP53", "MYC", "KRAS"}
	if len(members) != len(want) {
		t.Fatalf("beta members = %v, want %v", members, want)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Errorf("beta members[%d] = %s, want %s", i, members[i], want[i])
		}
	}
}

func TestMapResolvesAndSorts(t *testing.T) {
	c := NewCollection()
	c.Add("s1", "g5", "g1", "g3", "missing")

	mapped, err := Map(c, []string{"g1", "g2", "g3", "g4", "g5"}, 1, 100)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(mapped) != 1 {
		t.Fatalf("mapped sets = %d, want 1", len(mapped))
	}
	rows := mapped[0].Rows
	if len(rows) != 3 || rows[0] != 0 || rows[1] != 2 || rows[2] != 4 {
		t.Errorf("Rows = %v, want sorted [0 2 4]", rows)
	}
}

func TestMapNoMappableIdentifiers(t *testing.T) {
	c := NewCollection()
	c.Add("entrez_set", "7157", "4609") // numeric IDs against symbol rows

	_, err := Map(c, []string{"TP53", "MYC"}, 1, 100)
	var target *errors.NoMappableIdentifiersError
	if !errors.As(err, &target) {
		t.Fatalf("expected NoMappableIdentifiersError, got %v", err)
	}
}

func TestMapDropsUnmappedSetWithWarning(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(func(error) {})

	c := NewCollection()
	c.Add("good", "g1", "g2")
	c.Add("orphan", "x1", "x2")

	mapped, err := Map(c, []string{"g1", "g2", "g3"}, 1, 100)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(mapped) != 1 || mapped[0].Name != "good" {
		t.Errorf("mapped = %v", mapped)
	}
	var w *errors.UnmappedGeneSetWarning
	if !errors.As(warned, &w) || w.Set != "orphan" {
		t.Errorf("expected UnmappedGeneSetWarning for orphan, got %v", warned)
	}
}

func TestMapSizeWindow(t *testing.T) {
	c := NewCollection()
	c.Add("tiny", "g1")
	c.Add("big", "g1", "g2", "g3", "g4")

	mapped, err := Map(c, []string{"g1", "g2", "g3", "g4"}, 2, 100)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(mapped) != 1 || mapped[0].Name != "big" {
		t.Errorf("size filter should keep only big: %v", mapped)
	}

	_, err = Map(c, []string{"g1", "g2", "g3", "g4"}, 10, 100)
	var target *errors.EmptyGeneSetCollectionError
	if !errors.As(err, &target) {
		t.Fatalf("expected EmptyGeneSetCollectionError, got %v", err)
	}
	if target.MinSize != 10 {
		t.Errorf("MinSize = %d, want 10", target.MinSize)
	}
}

func TestMapEmptyCollection(t *testing.T) {
	_, err := Map(NewCollection(), []string{"g1"}, 1, 10)
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}
