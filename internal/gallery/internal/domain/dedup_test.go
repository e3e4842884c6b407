package domain

import (
	"fmt"
	"slices"
	"testing"
)

func TestUnique(t *testing.T) {
	tests := []struct {
		name string
		in   []CandidateID
		want []CandidateID
	}{
		{name: "nil", in: nil, want: []CandidateID{}},
		{name: "no duplicates", in: []CandidateID{"a", "b", "c"}, want: []CandidateID{"a", "b", "c"}},
		{name: "first occurrence wins", in: []CandidateID{"b", "a", "b", "c", "a"}, want: []CandidateID{"b", "a", "c"}},
		{name: "all the same", in: []CandidateID{"x", "x", "x"}, want: []CandidateID{"x"}},
		{name: "empty ids dropped", in: []CandidateID{"", "a", "", "b"}, want: []CandidateID{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unique(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Unique(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnique_Idempotent(t *testing.T) {
	var in []CandidateID
	for i := range 600 {
		in = append(in, CandidateID(fmt.Sprintf("https://is1.example/%d/100x100bb.jpg", i%230)))
	}

	once := Unique(in)
	twice := Unique(once)

	if len(once) != 230 {
		t.Fatalf("len(Unique) = %d, want 230", len(once))
	}
	if !slices.Equal(once, twice) {
		t.Error("Unique(Unique(L)) != Unique(L)")
	}
	for i, id := range once {
		want := CandidateID(fmt.Sprintf("https://is1.example/%d/100x100bb.jpg", i))
		if id != want {
			t.Fatalf("Unique()[%d] = %q, want %q (first-seen order)", i, id, want)
		}
	}
}

func TestUnique_DoesNotAliasInput(t *testing.T) {
	in := []CandidateID{"a", "b"}
	out := Unique(in)
	out[0] = "z"
	if in[0] != "a" {
		t.Error("Unique() result aliases its input")
	}
}
