package oqlc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/algebra"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
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
  professors:
    collection: bag
    of:
      record:
        name: string
        age: int
  setOfThings:
    collection: set
    of: int
  authors:
    collection: bag
    of:
      record:
        name: string
  publications:
    collection: bag
    of:
      record:
        title: string
        authors:
          collection: list
          of: string
`

func testCompiler(t *testing.T) *Compiler {
	t.Helper()
	w, err := oql.LoadWorld([]byte(testCatalog))
	require.NoError(t, err)
	return New(w)
}

// for (s <- students; s.age > 20) yield set s
func TestCompileSimpleFilter(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	root := &calculus.Comp{
		M: &oql.SetMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
			&calculus.Pred{E: &calculus.BinaryExp{Op: calculus.OpGt,
				Left:  &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
				Right: &calculus.IntConst{Value: 20}}},
		},
		E: &calculus.IdnExp{Idn: "s"},
	}

	result, err := c.Compile(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.Empty(result.Errors)

	reduce, ok := result.Algebra.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.SetMonoid)
	require.True(ok)
	sel, ok := reduce.Child.(*algebra.Select)
	require.True(ok)
	require.Equal("($0.age > 20)", sel.Pred.String())
	scan, ok := sel.Child.(*algebra.Scan)
	require.True(ok)
	require.Equal("students", scan.Name)

	coll, ok := result.Type.(*oql.CollectionType)
	require.True(ok)
	_, ok = coll.M.(*oql.SetMonoid)
	require.True(ok)
	ut, ok := coll.Inner.(*oql.UserType)
	require.True(ok)
	require.Equal(oql.Named("student"), ut.Sym)
}

// for (s <- students; p <- professors; s.age = p.age) yield list (s.name, p.name)
func TestCompileJoin(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	root := &calculus.Comp{
		M: &oql.ListMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "p"}, E: &calculus.IdnExp{Idn: "professors"}},
			&calculus.Pred{E: &calculus.BinaryExp{Op: calculus.OpEq,
				Left:  &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
				Right: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "p"}, Idn: "age"}}},
		},
		E: &calculus.RecordCons{Atts: []calculus.AttrCons{
			{Idn: "_1", E: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "name"}},
			{Idn: "_2", E: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "p"}, Idn: "name"}},
		}},
	}

	result, err := c.Compile(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.Empty(result.Errors)

	reduce, ok := result.Algebra.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.ListMonoid)
	require.True(ok)
	_, ok = reduce.Child.(*algebra.Join)
	require.True(ok)

	coll, ok := result.Type.(*oql.CollectionType)
	require.True(ok)
	_, ok = coll.M.(*oql.ListMonoid)
	require.True(ok)
	atts, ok := coll.Inner.(*oql.RecordType).Atts.(*oql.Attributes)
	require.True(ok)
	require.Equal("_1", atts.Atts[0].Idn)
	require.Equal("_2", atts.Atts[1].Idn)
	require.True(oql.TypesEqual(&oql.StringType{}, atts.Atts[0].Type))
	require.True(oql.TypesEqual(&oql.StringType{}, atts.Atts[1].Type))
}

// select s.age, count(partition) as n from students s group by s.age
func TestCompileGroupBy(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	root := &calculus.Select{
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		GroupBy: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
		Proj: &calculus.RecordCons{Atts: []calculus.AttrCons{
			{Idn: "age", E: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"}},
			{Idn: "n", E: &calculus.Count{E: &calculus.Partition{}}},
		}},
	}

	result, err := c.Compile(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.Empty(result.Errors)

	var nest *algebra.Nest
	var walk func(n algebra.Node)
	walk = func(n algebra.Node) {
		if nn, ok := n.(*algebra.Nest); ok {
			nest = nn
		}
		for _, ch := range n.Children() {
			walk(ch)
		}
	}
	walk(result.Algebra)
	require.NotNil(nest)
	_, ok := nest.M.(*oql.SumMonoid)
	require.True(ok)

	coll, ok := result.Type.(*oql.CollectionType)
	require.True(ok)
	atts, ok := coll.Inner.(*oql.RecordType).Atts.(*oql.Attributes)
	require.True(ok)
	require.Equal("age", atts.Atts[0].Idn)
	require.True(oql.TypesEqual(&oql.IntType{}, atts.Atts[0].Type))
	require.Equal("n", atts.Atts[1].Idn)
	require.True(oql.TypesEqual(&oql.IntType{}, atts.Atts[1].Type))
}

// for (a <- authors; count(for (p <- publications; "X" in p.authors) yield list p) > 0) yield set a
func TestCompileNestedIndependentComp(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	inner := &calculus.Comp{
		M: &oql.ListMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "p"}, E: &calculus.IdnExp{Idn: "publications"}},
			&calculus.Pred{E: &calculus.In{
				Left:  &calculus.StringConst{Value: "X"},
				Right: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "p"}, Idn: "authors"}}},
		},
		E: &calculus.IdnExp{Idn: "p"},
	}
	root := &calculus.Comp{
		M: &oql.SetMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "a"}, E: &calculus.IdnExp{Idn: "authors"}},
			&calculus.Pred{E: &calculus.BinaryExp{Op: calculus.OpGt,
				Left:  &calculus.Count{E: inner},
				Right: &calculus.IntConst{Value: 0}}},
		},
		E: &calculus.IdnExp{Idn: "a"},
	}

	result, err := c.Compile(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.Empty(result.Errors)

	reduce, ok := result.Algebra.(*algebra.Reduce)
	require.True(ok)
	join, ok := reduce.Child.(*algebra.Join)
	require.True(ok)
	_, ok = join.Left.(*algebra.Reduce)
	require.True(ok)
}

// for (s <- setOfThings) yield list s is a monoid error
func TestCompileBadMonoid(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	pos := oql.Position{Line: 1, Column: 6, Offset: 5}
	gen := calculus.NewGen(pos, &calculus.PatternIdn{Idn: "s"}, &calculus.IdnExp{Idn: "setOfThings"})
	root := &calculus.Comp{
		M:     &oql.ListMonoid{},
		Quals: []calculus.Qual{gen},
		E:     &calculus.IdnExp{Idn: "s"},
	}

	result, err := c.Compile(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.Nil(result.Algebra)
	require.Len(result.Errors, 1)
	require.Equal(oql.IncompatibleMonoids, result.Errors[0].Kind)
	require.Equal(pos, result.Errors[0].Pos)
}

// for (s <- students) yield set t.name is an unknown declaration
func TestCompileUnknownDecl(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	use := &calculus.IdnExp{Idn: "t"}
	use.SetPos(oql.Position{Line: 1, Column: 36, Offset: 35})
	root := &calculus.Comp{
		M: &oql.SetMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		E: &calculus.RecordProj{E: use, Idn: "name"},
	}

	result, err := c.Compile(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.Nil(result.Algebra)
	require.Len(result.Errors, 1)
	require.Equal(oql.UnknownDecl, result.Errors[0].Kind)
	require.Equal(oql.Position{Line: 1, Column: 36, Offset: 35}, result.Errors[0].Pos)
}

// a compiler is reusable across sequential compilations
func TestCompileSequentialReuse(t *testing.T) {
	require := require.New(t)

	c := testCompiler(t)
	for i := 0; i < 3; i++ {
		root := &calculus.Comp{
			M: &oql.BagMonoid{},
			Quals: []calculus.Qual{
				&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
			},
			E: &calculus.IdnExp{Idn: "s"},
		}
		result, err := c.Compile(oql.NewEmptyContext(), root)
		require.NoError(err)
		require.Empty(result.Errors)
		require.NotNil(result.Algebra)
	}
}
