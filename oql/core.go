package oql

import "fmt"

// Position is a location in the query source. The zero value means the
// position is unknown.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Defined reports whether the position points at actual source.
func (p Position) Defined() bool {
	return p != Position{}
}

func (p Position) String() string {
	if !p.Defined() {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Symbol is a unique identifier produced by a SymbolRegistry. Two symbols are
// the same iff both fields are equal, so symbols are usable as map keys.
type Symbol struct {
	Idn string
	Num int
}

func (s Symbol) String() string {
	if s.Num == 0 {
		return s.Idn
	}
	return fmt.Sprintf("%s$%d", s.Idn, s.Num)
}

// SymbolRegistry hands out fresh symbols from a monotonic counter. It is owned
// by a single compilation and is not safe for concurrent use.
type SymbolRegistry struct {
	next int
}

// NewSymbolRegistry creates a registry whose first symbol is numbered 1.
func NewSymbolRegistry() *SymbolRegistry {
	return &SymbolRegistry{next: 1}
}

// Fresh returns a new symbol with the given printable identifier.
func (r *SymbolRegistry) Fresh(idn string) Symbol {
	s := Symbol{Idn: idn, Num: r.next}
	r.next++
	return s
}

// FreshIdn returns the printable form of a fresh symbol, for use as a
// generated identifier in rewritten trees.
func (r *SymbolRegistry) FreshIdn(prefix string) string {
	return r.Fresh(prefix).String()
}

// Mark returns the current counter value. Symbols numbered at or above a mark
// were created after the mark was taken.
func (r *SymbolRegistry) Mark() int {
	return r.next
}

// Named returns the symbol for a user-written identifier. Named symbols are
// never produced by Fresh, so they cannot collide with generated ones.
func Named(idn string) Symbol {
	return Symbol{Idn: idn}
}
