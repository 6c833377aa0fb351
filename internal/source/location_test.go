package source

import "testing"

func TestLocationContains(t *testing.T) {
	loc := Span(4, 3, 17)
	if !loc.Contains(&Position{Line: 4, Column: 10}) {
		t.Error("position inside the span must be contained")
	}
	if loc.Contains(&Position{Line: 4, Column: 18}) {
		t.Error("position past the end must not be contained")
	}
	if loc.Contains(&Position{Line: 5, Column: 1}) {
		t.Error("position on a later line must not be contained")
	}
}

func TestLocationString(t *testing.T) {
	loc := Span(2, 1, 9)
	if loc.String() != "location(2:1 - 2:9)" {
		t.Errorf("String() = %s", loc.String())
	}
	empty := Location{}
	if empty.String() != "location(unknown)" {
		t.Errorf("empty String() = %s", empty.String())
	}
}

func TestPositionBefore(t *testing.T) {
	a := Position{Line: 1, Column: 5}
	b := Position{Line: 1, Column: 6}
	c := Position{Line: 2, Column: 1}
	if !a.Before(&b) || !b.Before(&c) {
		t.Error("Before must order by line then column")
	}
	if c.Before(&a) {
		t.Error("later position must not sort before an earlier one")
	}
}
