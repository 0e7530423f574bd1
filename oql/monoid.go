package oql

import "fmt"

// Monoid tags a comprehension or collection with the algebraic operation used
// to aggregate it. Known monoids expose their commutativity and idempotence;
// monoid variables carry bounds in the MonoidGraph instead.
type Monoid interface {
	fmt.Stringer
	monoidNode()
}

// PrimitiveMonoid is a monoid over primitive values.
type PrimitiveMonoid interface {
	Monoid
	Commutative() bool
	Idempotent() bool
	primitiveMonoid()
}

// CollectionMonoid is a monoid constructing a collection.
type CollectionMonoid interface {
	Monoid
	Commutative() bool
	Idempotent() bool
	collectionMonoid()
}

// SumMonoid aggregates numbers by addition.
type SumMonoid struct{}

// MultiplyMonoid aggregates numbers by multiplication.
type MultiplyMonoid struct{}

// MaxMonoid aggregates numbers by maximum.
type MaxMonoid struct{}

// MinMonoid aggregates numbers by minimum.
type MinMonoid struct{}

// AndMonoid aggregates booleans by conjunction.
type AndMonoid struct{}

// OrMonoid aggregates booleans by disjunction.
type OrMonoid struct{}

// SetMonoid builds sets: commutative and idempotent.
type SetMonoid struct{}

// BagMonoid builds bags: commutative, not idempotent.
type BagMonoid struct{}

// ListMonoid builds lists: neither commutative nor idempotent.
type ListMonoid struct{}

// MonoidVariable is an unknown collection monoid.
type MonoidVariable struct {
	Sym Symbol
}

func (*SumMonoid) monoidNode()      {}
func (*MultiplyMonoid) monoidNode() {}
func (*MaxMonoid) monoidNode()      {}
func (*MinMonoid) monoidNode()      {}
func (*AndMonoid) monoidNode()      {}
func (*OrMonoid) monoidNode()       {}
func (*SetMonoid) monoidNode()      {}
func (*BagMonoid) monoidNode()      {}
func (*ListMonoid) monoidNode()     {}
func (*MonoidVariable) monoidNode() {}

func (*SumMonoid) primitiveMonoid()      {}
func (*MultiplyMonoid) primitiveMonoid() {}
func (*MaxMonoid) primitiveMonoid()      {}
func (*MinMonoid) primitiveMonoid()      {}
func (*AndMonoid) primitiveMonoid()      {}
func (*OrMonoid) primitiveMonoid()       {}

func (*SetMonoid) collectionMonoid()  {}
func (*BagMonoid) collectionMonoid()  {}
func (*ListMonoid) collectionMonoid() {}

func (*SumMonoid) Commutative() bool      { return true }
func (*MultiplyMonoid) Commutative() bool { return true }
func (*MaxMonoid) Commutative() bool      { return true }
func (*MinMonoid) Commutative() bool      { return true }
func (*AndMonoid) Commutative() bool      { return true }
func (*OrMonoid) Commutative() bool       { return true }
func (*SetMonoid) Commutative() bool      { return true }
func (*BagMonoid) Commutative() bool      { return true }
func (*ListMonoid) Commutative() bool     { return false }

func (*SumMonoid) Idempotent() bool      { return false }
func (*MultiplyMonoid) Idempotent() bool { return false }
func (*MaxMonoid) Idempotent() bool      { return true }
func (*MinMonoid) Idempotent() bool      { return true }
func (*AndMonoid) Idempotent() bool      { return true }
func (*OrMonoid) Idempotent() bool       { return true }
func (*SetMonoid) Idempotent() bool      { return true }
func (*BagMonoid) Idempotent() bool      { return false }
func (*ListMonoid) Idempotent() bool     { return false }

func (*SumMonoid) String() string      { return "sum" }
func (*MultiplyMonoid) String() string { return "multiply" }
func (*MaxMonoid) String() string      { return "max" }
func (*MinMonoid) String() string      { return "min" }
func (*AndMonoid) String() string      { return "and" }
func (*OrMonoid) String() string       { return "or" }
func (*SetMonoid) String() string      { return "set" }
func (*BagMonoid) String() string      { return "bag" }
func (*ListMonoid) String() string     { return "list" }
func (m *MonoidVariable) String() string {
	return m.Sym.String()
}

// MonoidProps is a point in the (commutative, idempotent) partial order.
type MonoidProps struct {
	Commutative bool
	Idempotent  bool
}

// PropsOf returns the properties of a known monoid.
func PropsOf(m Monoid) (MonoidProps, bool) {
	type propser interface {
		Commutative() bool
		Idempotent() bool
	}
	if p, ok := m.(propser); ok {
		return MonoidProps{p.Commutative(), p.Idempotent()}, true
	}
	return MonoidProps{}, false
}

// Leq reports whether p is pointwise below q. A generator of monoid p may
// feed a comprehension of monoid q iff Leq(p, q): a set generator demands a
// commutative idempotent aggregation, while a list generator feeds anything.
func (p MonoidProps) Leq(q MonoidProps) bool {
	return (!p.Commutative || q.Commutative) && (!p.Idempotent || q.Idempotent)
}

// Join is the pointwise least upper bound.
func (p MonoidProps) Join(q MonoidProps) MonoidProps {
	return MonoidProps{p.Commutative || q.Commutative, p.Idempotent || q.Idempotent}
}

// Meet is the pointwise greatest lower bound.
func (p MonoidProps) Meet(q MonoidProps) MonoidProps {
	return MonoidProps{p.Commutative && q.Commutative, p.Idempotent && q.Idempotent}
}

// collectionForProps returns the collection monoid at exactly the given
// properties. Every point of the order has one.
func collectionForProps(p MonoidProps) CollectionMonoid {
	switch p {
	case MonoidProps{true, true}:
		return &SetMonoid{}
	case MonoidProps{true, false}:
		return &BagMonoid{}
	default:
		return &ListMonoid{}
	}
}
