package learning

import (
	"math_quest_backend/internal/model"
	"testing"
)

func concept(id uint, slug string, order int, prereqs string) model.Concept {
	return model.Concept{
		BaseModel:     model.BaseModel{ID: id},
		Slug:          slug,
		Order:         order,
		Prerequisites: prereqs,
	}
}

func TestIsAvailable_NoPrerequisites(t *testing.T) {
	c := concept(1, "number_systems", 1, "")
	for _, set := range []CompletedSet{nil, NewCompletedSet(), NewCompletedSet("functions")} {
		if !IsAvailable(&c, set) {
			t.Fatalf("expected concept without prerequisites to be available for %v", set)
		}
	}
}

func TestIsAvailable_EmptyCompletedSet(t *testing.T) {
	c := concept(2, "exponents_powers", 2, "number_systems")
	if IsAvailable(&c, NewCompletedSet()) {
		t.Fatalf("expected unavailable with empty completed set")
	}
	if IsAvailable(&c, nil) {
		t.Fatalf("expected unavailable with nil completed set")
	}
}

func TestIsAvailable_AllPrerequisitesRequired(t *testing.T) {
	c := concept(3, "dilations_similarity", 12, "transformations, geometry_basics")

	tests := []struct {
		name      string
		completed CompletedSet
		want      bool
	}{
		{"none", NewCompletedSet(), false},
		{"partial", NewCompletedSet("geometry_basics"), false},
		{"all", NewCompletedSet("geometry_basics", "transformations"), true},
		{"superset", NewCompletedSet("geometry_basics", "transformations", "functions"), true},
	}
	for _, tt := range tests {
		if got := IsAvailable(&c, tt.completed); got != tt.want {
			t.Errorf("%s: IsAvailable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCatalog_ResolvesIDsToSlugs(t *testing.T) {
	catalog := NewCatalog([]model.Concept{
		concept(2, "exponents_powers", 2, "number_systems"),
		concept(1, "number_systems", 1, ""),
	})

	set := catalog.CompletedFromIDs([]uint{1, 99})
	if !set.Has("number_systems") || set.Len() != 1 {
		t.Fatalf("unexpected completed set %v", set)
	}

	exp, ok := catalog.BySlug("exponents_powers")
	if !ok {
		t.Fatalf("expected exponents_powers in catalog")
	}
	if !IsAvailable(exp, set) {
		t.Fatalf("expected exponents_powers available once number_systems is completed")
	}

	if catalog.Concepts()[0].Slug != "number_systems" {
		t.Fatalf("expected catalog ordered by curriculum order, got %q first", catalog.Concepts()[0].Slug)
	}
}

func TestCatalog_CompletedFromRecordsSkipsIncomplete(t *testing.T) {
	catalog := NewCatalog([]model.Concept{
		concept(1, "number_systems", 1, ""),
		concept(2, "exponents_powers", 2, "number_systems"),
	})
	set := catalog.CompletedFromRecords([]model.ProgressRecord{
		{ConceptID: 1, Completed: true, BestScore: 90},
		{ConceptID: 2, Completed: false, BestScore: 50},
	})
	if !set.Has("number_systems") || set.Has("exponents_powers") {
		t.Fatalf("unexpected completed set %v", set)
	}
}

func TestCatalog_NextAvailable(t *testing.T) {
	catalog := NewCatalog([]model.Concept{
		concept(1, "number_systems", 1, ""),
		concept(2, "exponents_powers", 2, "number_systems"),
		concept(3, "linear_equations", 3, "exponents_powers"),
	})

	next := catalog.NextAvailable(NewCompletedSet())
	if next == nil || next.Slug != "number_systems" {
		t.Fatalf("expected number_systems first, got %+v", next)
	}

	next = catalog.NextAvailable(NewCompletedSet("number_systems"))
	if next == nil || next.Slug != "exponents_powers" {
		t.Fatalf("expected exponents_powers next, got %+v", next)
	}

	if next := catalog.NextAvailable(NewCompletedSet("number_systems", "exponents_powers", "linear_equations")); next != nil {
		t.Fatalf("expected nil when everything is completed, got %q", next.Slug)
	}
}

func TestMissingPrerequisites(t *testing.T) {
	c := concept(4, "congruence", 11, "rigid_transformations,geometry_basics")
	missing := MissingPrerequisites(&c, NewCompletedSet("geometry_basics"))
	if len(missing) != 1 || missing[0] != "rigid_transformations" {
		t.Fatalf("unexpected missing prerequisites %v", missing)
	}
}
