package oql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalkResolvesVariables(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	v := &TypeVariable{Sym: u.Syms.Fresh("t")}
	mv := &MonoidVariable{Sym: u.Syms.Fresh("m")}
	c := &CollectionType{M: mv, Inner: v}
	require.NoError(u.Unify(c, &CollectionType{M: &SetMonoid{}, Inner: &IntType{}}))

	w, ok := u.Walk(c).(*CollectionType)
	require.True(ok)
	_, ok = w.M.(*SetMonoid)
	require.True(ok)
	_, ok = w.Inner.(*IntType)
	require.True(ok)
}

func TestWalkIdempotent(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	v := &TypeVariable{Sym: u.Syms.Fresh("t")}
	rec := &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "xs", Type: &CollectionType{M: &BagMonoid{}, Inner: v}},
		{Idn: "f", Type: &FunType{Param: v, Result: &BoolType{}}},
	}}}
	require.NoError(u.Unify(v, &FloatType{}))

	once := u.Walk(rec)
	twice := u.Walk(once)
	require.True(TypesEqual(once, twice))
	require.True(TypesEqual(once, u.Walk(twice)))
}

func TestWalkKeepsUnresolvedVariables(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	v := &TypeVariable{Sym: u.Syms.Fresh("t")}
	w := u.Walk(&CollectionType{M: &ListMonoid{}, Inner: v})
	coll, ok := w.(*CollectionType)
	require.True(ok)
	tv, ok := coll.Inner.(*TypeVariable)
	require.True(ok)
	require.Equal(v.Sym, tv.Sym)
}

func TestWalkPrefersUserType(t *testing.T) {
	require := require.New(t)

	world := NewWorld()
	pt := Named("point")
	world.Tipes[pt] = &RecordType{Atts: &Attributes{Atts: []AttrType{
		{Idn: "x", Type: &IntType{}},
		{Idn: "y", Type: &IntType{}},
	}}}
	u := NewUnifier(world, NewSymbolRegistry())

	v := &TypeVariable{Sym: u.Syms.Fresh("t")}
	require.NoError(u.Unify(v, &UserType{Sym: pt}))

	ut, ok := u.Walk(v).(*UserType)
	require.True(ok)
	require.Equal(pt, ut.Sym)
}

func TestWalkNullability(t *testing.T) {
	require := require.New(t)
	u := testUnifier()

	src := &IntType{}
	src.SetNullable(true)
	w := u.Walk(src)
	require.True(w.Nullable())

	// the copy is detached from the original
	w.SetNullable(false)
	require.True(src.Nullable())
}

func TestTypesEqual(t *testing.T) {
	require := require.New(t)

	require.True(TypesEqual(&IntType{}, &IntType{}))
	require.False(TypesEqual(&IntType{}, &FloatType{}))
	require.True(TypesEqual(
		&CollectionType{M: &BagMonoid{}, Inner: &IntType{}},
		&CollectionType{M: &BagMonoid{}, Inner: &IntType{}}))
	require.False(TypesEqual(
		&CollectionType{M: &BagMonoid{}, Inner: &IntType{}},
		&CollectionType{M: &SetMonoid{}, Inner: &IntType{}}))
}
