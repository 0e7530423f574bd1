package oql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testCatalog = `
types:
  student:
    record:
      name: string
      age: int
sources:
  students:
    collection: bag
    of: student
  names:
    collection: list
    of: string
  comment:
    nullable: true
    record:
      body: string
`

func TestLoadWorld(t *testing.T) {
	require := require.New(t)

	w, err := LoadWorld([]byte(testCatalog))
	require.NoError(err)

	def, ok := w.UserType(Named("student"))
	require.True(ok)
	rec, ok := def.(*RecordType)
	require.True(ok)
	atts, ok := rec.Atts.(*Attributes)
	require.True(ok)
	require.Len(atts.Atts, 2)
	require.Equal("name", atts.Atts[0].Idn)
	require.Equal("age", atts.Atts[1].Idn)

	students, ok := w.Source("students")
	require.True(ok)
	coll, ok := students.(*CollectionType)
	require.True(ok)
	_, ok = coll.M.(*BagMonoid)
	require.True(ok)
	ut, ok := coll.Inner.(*UserType)
	require.True(ok)
	require.Equal(Named("student"), ut.Sym)

	names, ok := w.Source("names")
	require.True(ok)
	coll, ok = names.(*CollectionType)
	require.True(ok)
	_, ok = coll.M.(*ListMonoid)
	require.True(ok)

	comment, ok := w.Source("comment")
	require.True(ok)
	require.True(comment.Nullable())
}

func TestLoadWorldErrors(t *testing.T) {
	require := require.New(t)

	_, err := LoadWorld([]byte("sources:\n  xs:\n    collection: heap\n    of: int\n"))
	require.True(ErrInvalidCatalog.Is(err))

	_, err = LoadWorld([]byte("sources:\n  xs:\n    collection: bag\n"))
	require.True(ErrInvalidCatalog.Is(err))

	_, err = LoadWorld([]byte(":"))
	require.True(ErrInvalidCatalog.Is(err))
}
