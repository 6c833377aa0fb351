package diagnostics

import (
	"strings"
	"testing"

	"github.com/awfeequdng/basecode/internal/source"
)

func TestBagCountsBySeverity(t *testing.T) {
	bag := NewBag()
	bag.Add(NewError(ErrUnresolvedIdentifier, "unresolved identifier: x"))
	bag.Add(NewWarning("W0001", "unreachable"))

	if !bag.HasErrors() {
		t.Error("bag with an error must report HasErrors")
	}
	if bag.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", bag.ErrorCount())
	}
	if bag.WarningCount() != 1 {
		t.Errorf("WarningCount = %d, want 1", bag.WarningCount())
	}
}

func TestBagPreservesEmissionOrder(t *testing.T) {
	bag := NewBag()
	bag.Add(NewError(ErrUnresolvedIdentifier, "first"))
	bag.Add(NewError(ErrUnresolvableType, "second"))
	bag.Add(NewError(ErrTypeMismatch, "third"))

	diags := bag.Diagnostics()
	want := []string{"first", "second", "third"}
	for i, d := range diags {
		if d.Message != want[i] {
			t.Errorf("diagnostic %d = %q, want %q", i, d.Message, want[i])
		}
	}
}

func TestDiagnosticFormat(t *testing.T) {
	loc := source.Span(3, 7, 12)
	d := NewError(ErrInvalidCast, "invalid cast: string to s32").
		WithLocation(&loc).
		WithDetail("only numeric classes convert")

	out := d.Format()
	if !strings.Contains(out, "C073") {
		t.Error("format must include the code")
	}
	if !strings.Contains(out, "3:7") {
		t.Error("format must include the span")
	}
	if !strings.Contains(out, "only numeric classes convert") {
		t.Error("format must include the detail")
	}
}

func TestBagClear(t *testing.T) {
	bag := NewBag()
	bag.Error(ErrGeneric, "oops", nil)
	bag.Clear()
	if bag.HasErrors() || len(bag.Diagnostics()) != 0 {
		t.Error("Clear must drop all diagnostics")
	}
}
