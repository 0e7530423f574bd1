package oql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testUnifier() *Unifier {
	return NewUnifier(NewWorld(), NewSymbolRegistry())
}

func TestUnifyPrimitives(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	require.NoError(u.Unify(&IntType{}, &IntType{}))
	require.NoError(u.Unify(&BoolType{}, &BoolType{}))
	require.Error(u.Unify(&IntType{}, &BoolType{}))
	require.Error(u.Unify(&StringType{}, &FloatType{}))
}

func TestUnifyVariables(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	v := &TypeVariable{Sym: u.Syms.Fresh("t")}
	require.NoError(u.Unify(v, &IntType{}))
	_, ok := u.Find(v).(*IntType)
	require.True(ok)

	n := &NumberType{Sym: u.Syms.Fresh("n")}
	require.NoError(u.Unify(n, &FloatType{}))
	_, ok = u.Find(n).(*FloatType)
	require.True(ok)

	n2 := &NumberType{Sym: u.Syms.Fresh("n")}
	require.Error(u.Unify(n2, &StringType{}))

	p := &PrimitiveType{Sym: u.Syms.Fresh("p")}
	require.NoError(u.Unify(p, &StringType{}))
	require.Error(u.Unify(&PrimitiveType{Sym: u.Syms.Fresh("p")}, &RegexType{}))

	require.NoError(u.Unify(&AnyType{}, &RegexType{}))
}

func TestUnifyCollections(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	inner := &TypeVariable{Sym: u.Syms.Fresh("t")}
	c1 := &CollectionType{M: &BagMonoid{}, Inner: inner}
	c2 := &CollectionType{M: &BagMonoid{}, Inner: &IntType{}}
	require.NoError(u.Unify(c1, c2))
	_, ok := u.Find(inner).(*IntType)
	require.True(ok)

	require.Error(u.Unify(
		&CollectionType{M: &SetMonoid{}, Inner: &IntType{}},
		&CollectionType{M: &ListMonoid{}, Inner: &IntType{}}))
}

// A monoid variable bound to a known list must become list, never set or
// bag.
func TestUnifyMonoidVariableBecomesKnown(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	v := &MonoidVariable{Sym: u.Syms.Fresh("m")}
	require.NoError(u.UnifyMonoids(&ListMonoid{}, v))
	_, ok := u.FindMonoid(v).(*ListMonoid)
	require.True(ok)
}

func TestUnifyMonoidVariableBounds(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	// a variable bounded above by sum cannot be set
	v := &MonoidVariable{Sym: u.Syms.Fresh("m")}
	require.NoError(u.BoundMonoid(&SumMonoid{}, v))
	require.Error(u.UnifyMonoids(v, &SetMonoid{}))
	require.NoError(u.UnifyMonoids(v, &BagMonoid{}))
}

func TestBoundMonoidKnown(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	require.NoError(u.BoundMonoid(&SetMonoid{}, &BagMonoid{}))
	require.NoError(u.BoundMonoid(&SumMonoid{}, &ListMonoid{}))
	// set rows cannot feed a list aggregation
	require.Error(u.BoundMonoid(&ListMonoid{}, &SetMonoid{}))
	// set rows cannot feed a non-idempotent sum
	require.Error(u.BoundMonoid(&SumMonoid{}, &SetMonoid{}))
}

func TestUnifyClosedRecords(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	v := &TypeVariable{Sym: u.Syms.Fresh("t")}
	r1 := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "name", Type: &StringType{}},
		{Idn: "age", Type: v},
	}}}
	r2 := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "name", Type: &StringType{}},
		{Idn: "age", Type: &IntType{}},
	}}}
	require.NoError(u.Unify(r1, r2))
	_, ok := u.Find(v).(*IntType)
	require.True(ok)

	// arity mismatch
	r3 := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "name", Type: &StringType{}},
	}}}
	require.Error(u.Unify(r2, r3))

	// identifier mismatch
	r4 := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "label", Type: &StringType{}},
		{Idn: "age", Type: &IntType{}},
	}}}
	require.Error(u.Unify(r2, r4))
}

func TestUnifyAttributesVariable(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	out := &TypeVariable{Sym: u.Syms.Fresh("t")}
	open := &RecordType{Atts: &AttributesVariable{
		Atts: []AttrType{{Idn: "age", Type: out}},
		Sym:  u.Syms.Fresh("atts"),
	}}
	closed := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "name", Type: &StringType{}},
		{Idn: "age", Type: &IntType{}},
	}}}
	require.NoError(u.Unify(open, closed))
	_, ok := u.Find(out).(*IntType)
	require.True(ok)

	// the closed record wins the representative
	rec, ok := u.Walk(open).(*RecordType)
	require.True(ok)
	atts, ok := rec.Atts.(*Attributes)
	require.True(ok)
	require.Len(atts.Atts, 2)

	// an open set demanding a missing attribute fails
	missing := &RecordType{Atts: &AttributesVariable{
		Atts: []AttrType{{Idn: "salary", Type: &IntType{}}},
		Sym:  u.Syms.Fresh("atts"),
	}}
	require.Error(u.Unify(missing, closed))
}

func TestUnifyTwoAttributesVariables(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	a := &RecordType{Atts: &AttributesVariable{
		Atts: []AttrType{{Idn: "x", Type: &IntType{}}},
		Sym:  u.Syms.Fresh("atts"),
	}}
	b := &RecordType{Atts: &AttributesVariable{
		Atts: []AttrType{{Idn: "y", Type: &StringType{}}},
		Sym:  u.Syms.Fresh("atts"),
	}}
	require.NoError(u.Unify(a, b))

	// the union of both constraint sets must hold of a closed record
	closed := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "x", Type: &IntType{}},
		{Idn: "y", Type: &StringType{}},
	}}}
	require.NoError(u.Unify(a, closed))
}

func TestUnifyUserTypes(t *testing.T) {
	require := require.New(t)

	world := NewWorld()
	student := Named("student")
	world.Tipes[student] = &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "name", Type: &StringType{}},
	}}}
	u := NewUnifier(world, NewSymbolRegistry())

	require.NoError(u.Unify(&UserType{Sym: student}, &UserType{Sym: student}))
	require.Error(u.Unify(&UserType{Sym: student}, &UserType{Sym: Named("professor")}))

	// a user type unifies with its expansion and stays the representative
	open := &RecordType{Atts: &AttributesVariable{
		Atts: []AttrType{{Idn: "name", Type: &StringType{}}},
		Sym:  u.Syms.Fresh("atts"),
	}}
	ut := &UserType{Sym: student}
	require.NoError(u.Unify(ut, open))
	_, ok := u.Walk(open).(*UserType)
	require.True(ok)
}

func TestUnifyRecursiveUserType(t *testing.T) {
	require := require.New(t)

	world := NewWorld()
	tree := Named("tree")
	world.Tipes[tree] = &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "value", Type: &IntType{}},
		{Idn: "children", Type: &CollectionType{M: &ListMonoid{}, Inner: &UserType{Sym: tree}}},
	}}}
	u := NewUnifier(world, NewSymbolRegistry())

	// the occurs pair set terminates the recursive expansion
	out := &TypeVariable{Sym: u.Syms.Fresh("t")}
	open := &RecordType{Atts: &AttributesVariable{
		Atts: []AttrType{{Idn: "children", Type: out}},
		Sym:  u.Syms.Fresh("atts"),
	}}
	require.NoError(u.Unify(&UserType{Sym: tree}, open))
}

func TestUnifyConcatWithClosed(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	left := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "a", Type: &IntType{}},
	}}}
	concat := u.DefineConcat([]ConcatSlot{
		{Prefix: "x", T: left},
		{Prefix: "y", T: &StringType{}},
	})
	closed := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "x", Type: left},
		{Idn: "y", Type: &StringType{}},
	}}}
	require.NoError(u.UnifyAttributes(concat, closed.Atts.(*Attributes)))
}
