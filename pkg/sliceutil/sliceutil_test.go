package sliceutil

import "testing"

func TestContains(t *testing.T) {
	s := []string{"go", "proto"}
	if !Contains(s, "go") || Contains(s, "gql") {
		t.Error("Contains")
	}
	if !ContainsAny(s, "gql", "proto") || ContainsAny(s, "gql") || ContainsAny[string](nil, "go") {
		t.Error("ContainsAny")
	}
}
