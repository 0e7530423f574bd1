package oql

import (
	"fmt"
	"strings"
)

// AttrType is a named attribute of a record type.
type AttrType struct {
	Idn  string
	Type Type
}

func (a AttrType) String() string {
	return fmt.Sprintf("%s: %s", a.Idn, a.Type)
}

// RecordAttributes describes the attributes of a record type. As with types,
// all implementations are pointer types and participate in their own
// union-find map.
type RecordAttributes interface {
	fmt.Stringer
	attributesNode()
}

// Attributes is a closed, ordered attribute sequence. Identifiers are unique
// and the arity is fixed.
type Attributes struct {
	Atts []AttrType
}

// AttributesVariable is an open attribute set: the record is known to contain
// at least the listed attributes, but its actual arity is not yet known.
type AttributesVariable struct {
	Atts []AttrType
	Sym  Symbol
}

// ConcatAttributes is a record whose attribute sequence is the concatenation
// of several slots, each contributing either one named attribute or the
// attributes of a nested record. The slots live in the unifier's concat
// definition table, keyed by Sym; the node itself only names the definition.
// Once every slot resolves to a concrete record the whole thing resolves to
// an Attributes value.
type ConcatAttributes struct {
	Sym Symbol
}

func (*Attributes) attributesNode()         {}
func (*AttributesVariable) attributesNode() {}
func (*ConcatAttributes) attributesNode()   {}

func (a *Attributes) String() string {
	parts := make([]string, len(a.Atts))
	for i, att := range a.Atts {
		parts[i] = att.String()
	}
	return strings.Join(parts, ", ")
}

func (a *AttributesVariable) String() string {
	parts := make([]string, len(a.Atts))
	for i, att := range a.Atts {
		parts[i] = att.String()
	}
	return fmt.Sprintf("%s, ...", strings.Join(parts, ", "))
}

func (a *ConcatAttributes) String() string {
	return fmt.Sprintf("concat(%s)", a.Sym)
}

// Lookup returns the type of the named attribute, if present.
func (a *Attributes) Lookup(idn string) (Type, bool) {
	for _, att := range a.Atts {
		if att.Idn == idn {
			return att.Type, true
		}
	}
	return nil, false
}

// Lookup returns the type constraint for the named attribute, if present.
func (a *AttributesVariable) Lookup(idn string) (Type, bool) {
	for _, att := range a.Atts {
		if att.Idn == idn {
			return att.Type, true
		}
	}
	return nil, false
}

// ConcatSlot is one slot of a concat record. A slot with a non-empty Prefix
// contributes a single attribute named Prefix of type T; a slot with an empty
// Prefix contributes the attributes of T, which must resolve to a record.
type ConcatSlot struct {
	Prefix string
	T      Type
}

// ConcatDefinition is the mutable definition behind a ConcatAttributes
// symbol: its slots plus any attribute constraints unified into it.
type ConcatDefinition struct {
	Slots []ConcatSlot
	// Atts are attribute constraints accumulated from unification with
	// AttributesVariable values; they must hold of the resolved record.
	Atts []AttrType
}
