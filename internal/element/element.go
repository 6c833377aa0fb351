package element

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/source"
)

// ID identifies an element within the registry. IDs are process-local,
// unique, and monotonically assigned. The zero ID is never allocated.
type ID uint32

const None ID = 0

// Element is the uniform header shared by every semantic node. Kind-specific
// data lives in the registry's companion tables; all cross-element links are
// IDs so cyclic type references need no special handling.
type Element struct {
	ID         ID
	Kind       Kind
	Parent     ID // enclosing lexical block
	Module     ID
	Location   source.Location
	Comments   []string
	Attributes map[string]ID
}

// LabelName returns the deterministic assembler reference for the element.
func (e *Element) LabelName() string {
	return fmt.Sprintf("%s_%d", e.Kind, e.ID)
}

// Attribute returns the named attribute element, if attached.
func (e *Element) Attribute(name string) (ID, bool) {
	if e.Attributes == nil {
		return None, false
	}
	id, ok := e.Attributes[name]
	return id, ok
}
