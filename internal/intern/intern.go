// Package intern deduplicates string literals and assigns their data
// labels.
package intern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/awfeequdng/basecode/internal/element"
)

// Map canonicalizes string literals: equal text shares one intern id and
// one pair of storage labels.
type Map struct {
	byText    map[string]uint32
	byElement map[element.ID]uint32
	texts     []string
	nextID    uint32
}

func NewMap() *Map {
	return &Map{
		byText:    make(map[string]uint32),
		byElement: make(map[element.ID]uint32),
	}
}

// skipParent lists the element kinds whose string literals never reach
// the intern table.
func skipParent(kind element.Kind) bool {
	switch kind {
	case element.KindAttribute, element.KindDirective, element.KindModuleReference:
		return true
	}
	return false
}

// InternAll walks the registry and interns every string literal that is
// not owned by an attribute, directive, or module reference.
func (m *Map) InternAll(reg *element.Registry) {
	for _, id := range reg.ByKind(element.KindStringLiteral) {
		if m.hasSkippedParent(reg, id) {
			continue
		}
		if text, ok := reg.AsString(id); ok {
			m.Intern(id, text)
		}
	}
}

func (m *Map) hasSkippedParent(reg *element.Registry, id element.ID) bool {
	if reg.Find(id) == nil {
		return true
	}
	// ownership runs through expression wrappers; check the owner chain
	for owner := reg.OwnerOf(id); owner != element.None; owner = reg.OwnerOf(owner) {
		kind := reg.KindOf(owner)
		if skipParent(kind) {
			return true
		}
		if kind == element.KindBlock || kind.IsType() {
			break
		}
	}
	return false
}

// Intern maps an element's text to its unique intern id.
func (m *Map) Intern(id element.ID, text string) uint32 {
	internID, ok := m.byText[text]
	if !ok {
		internID = m.nextID
		m.nextID++
		m.byText[text] = internID
		m.texts = append(m.texts, text)
	}
	m.byElement[id] = internID
	return internID
}

// ElementToInternID resolves a string literal element to its intern id.
func (m *Map) ElementToInternID(id element.ID) (uint32, bool) {
	internID, ok := m.byElement[id]
	return internID, ok
}

// DescriptorLabel names the interned string's descriptor record.
func DescriptorLabel(internID uint32) string {
	return fmt.Sprintf("_intern_str_lit_%d", internID)
}

// DataLabel names the interned string's payload bytes.
func DataLabel(internID uint32) string {
	return fmt.Sprintf("_intern_str_lit_%d_data", internID)
}

// Entry pairs one interned string with its id.
type Entry struct {
	ID   uint32
	Text string
}

// Sorted returns the interned strings ordered by intern id for
// deterministic output.
func (m *Map) Sorted() []Entry {
	entries := make([]Entry, 0, len(m.byText))
	for text, id := range m.byText {
		entries = append(entries, Entry{ID: id, Text: text})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Count returns the number of unique interned strings.
func (m *Map) Count() int {
	return len(m.byText)
}

// Escape rewrites escape sequences into their byte values; a malformed
// sequence fails.
func Escape(text string) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(text) {
			return "", false
		}
		switch text[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		default:
			return "", false
		}
	}
	return sb.String(), true
}
