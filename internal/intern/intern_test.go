package intern

import (
	"testing"

	"github.com/awfeequdng/basecode/internal/builder"
	"github.com/awfeequdng/basecode/internal/element"
	"github.com/awfeequdng/basecode/internal/source"
)

func TestInternDeduplicates(t *testing.T) {
	m := NewMap()
	reg := element.NewRegistry()
	b := builder.New(reg)

	first := b.MakeStringLiteral(element.None, element.None, source.Location{}, "hello")
	second := b.MakeStringLiteral(element.None, element.None, source.Location{}, "hello")
	third := b.MakeStringLiteral(element.None, element.None, source.Location{}, "world")

	id1 := m.Intern(first, "hello")
	id2 := m.Intern(second, "hello")
	id3 := m.Intern(third, "world")

	if id1 != id2 {
		t.Error("identical text must share one intern id")
	}
	if id1 == id3 {
		t.Error("different text must not share an intern id")
	}

	got, ok := m.ElementToInternID(second)
	if !ok || got != id1 {
		t.Error("ElementToInternID did not resolve the duplicate literal")
	}
}

func TestInternLabels(t *testing.T) {
	if DescriptorLabel(0) != "_intern_str_lit_0" {
		t.Errorf("DescriptorLabel(0) = %s", DescriptorLabel(0))
	}
	if DataLabel(3) != "_intern_str_lit_3_data" {
		t.Errorf("DataLabel(3) = %s", DataLabel(3))
	}
}

func TestSortedIterationIsDeterministic(t *testing.T) {
	m := NewMap()
	reg := element.NewRegistry()
	b := builder.New(reg)
	for _, text := range []string{"c", "a", "b"} {
		lit := b.MakeStringLiteral(element.None, element.None, source.Location{}, text)
		m.Intern(lit, text)
	}
	entries := m.Sorted()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, entry := range entries {
		if entry.ID != uint32(i) {
			t.Errorf("entry %d has id %d", i, entry.ID)
		}
	}
	// intern ids assign in first-seen order
	if entries[0].Text != "c" || entries[1].Text != "a" || entries[2].Text != "b" {
		t.Errorf("sorted order wrong: %+v", entries)
	}
}

func TestInternAllSkipsAttributeLiterals(t *testing.T) {
	m := NewMap()
	reg := element.NewRegistry()
	b := builder.New(reg)

	// a literal held by an attribute never reaches the table
	attrLit := b.MakeStringLiteral(element.None, element.None, source.Location{}, "meta")
	b.MakeAttribute(element.None, element.None, source.Location{}, "doc", attrLit)

	// a literal held by an initializer does
	valueLit := b.MakeStringLiteral(element.None, element.None, source.Location{}, "value")
	b.MakeInitializer(element.None, element.None, source.Location{}, valueLit)

	m.InternAll(reg)

	if _, ok := m.ElementToInternID(attrLit); ok {
		t.Error("attribute literal must be skipped")
	}
	if _, ok := m.ElementToInternID(valueLit); !ok {
		t.Error("initializer literal must be interned")
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"plain", "plain", true},
		{`line\n`, "line\n", true},
		{`tab\there`, "tab\there", true},
		{`quote\"`, `quote"`, true},
		{`bad\q`, "", false},
		{`trailing\`, "", false},
	}
	for _, tt := range tests {
		got, ok := Escape(tt.in)
		if ok != tt.ok {
			t.Errorf("Escape(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
