package unnester

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/algebra"
	"github.com/oqlc/go-oql-compiler/oql/analyzer"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

func testWorld() *oql.World {
	w := oql.NewWorld()
	w.Sources["students"] = &oql.CollectionType{M: &oql.BagMonoid{}, Inner: &oql.RecordType{
		Atts: &oql.Attributes{Atts: []oql.AttrType{
			{Idn: "name", Type: &oql.StringType{}},
			{Idn: "age", Type: &oql.IntType{}},
		}},
	}}
	w.Sources["professors"] = &oql.CollectionType{M: &oql.BagMonoid{}, Inner: &oql.RecordType{
		Atts: &oql.Attributes{Atts: []oql.AttrType{
			{Idn: "name", Type: &oql.StringType{}},
			{Idn: "age", Type: &oql.IntType{}},
		}},
	}}
	w.Sources["authors"] = &oql.CollectionType{M: &oql.BagMonoid{}, Inner: &oql.RecordType{
		Atts: &oql.Attributes{Atts: []oql.AttrType{
			{Idn: "name", Type: &oql.StringType{}},
		}},
	}}
	w.Sources["publications"] = &oql.CollectionType{M: &oql.BagMonoid{}, Inner: &oql.RecordType{
		Atts: &oql.Attributes{Atts: []oql.AttrType{
			{Idn: "title", Type: &oql.StringType{}},
			{Idn: "authors", Type: &oql.CollectionType{M: &oql.ListMonoid{}, Inner: &oql.StringType{}}},
		}},
	}}
	return w
}

func unnestOK(t *testing.T, w *oql.World, root calculus.Exp) algebra.Node {
	t.Helper()
	a := analyzer.NewDefault(w)
	tree, sem, err := a.Analyze(oql.NewEmptyContext(), root)
	require.NoError(t, err)
	require.Empty(t, sem.Errs.List())
	plan, err := Unnest(tree, sem)
	require.NoError(t, err)
	return plan
}

// a single-generator identity comprehension unnests to
// Reduce(m, $0, true, Scan(source))
func TestUnnestIdentity(t *testing.T) {
	require := require.New(t)

	root := &calculus.Comp{
		M: &oql.BagMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		E: &calculus.IdnExp{Idn: "s"},
	}
	plan := unnestOK(t, testWorld(), root)

	reduce, ok := plan.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.BagMonoid)
	require.True(ok)
	arg, ok := reduce.E.(*algebra.Arg)
	require.True(ok)
	require.Equal(0, arg.Index)
	require.True(algebra.IsTrue(reduce.Pred))

	scan, ok := reduce.Child.(*algebra.Scan)
	require.True(ok)
	require.Equal("students", scan.Name)
}

// a filtered single-generator comprehension pushes its predicate into a select
func TestUnnestSimpleFilter(t *testing.T) {
	require := require.New(t)

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
	plan := unnestOK(t, testWorld(), root)

	reduce, ok := plan.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.SetMonoid)
	require.True(ok)
	require.Equal("$0", reduce.E.String())
	require.True(algebra.IsTrue(reduce.Pred))

	sel, ok := reduce.Child.(*algebra.Select)
	require.True(ok)
	require.Equal("($0.age > 20)", sel.Pred.String())
	scan, ok := sel.Child.(*algebra.Scan)
	require.True(ok)
	require.Equal("students", scan.Name)
}

// two source generators related by a predicate become a join
func TestUnnestJoin(t *testing.T) {
	require := require.New(t)

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
	plan := unnestOK(t, testWorld(), root)

	reduce, ok := plan.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.ListMonoid)
	require.True(ok)
	require.Equal("(_1: $0.name, _2: $1.name)", reduce.E.String())

	join, ok := reduce.Child.(*algebra.Join)
	require.True(ok)
	require.Equal("($0.age = $1.age)", join.Pred.String())
	left, ok := join.Left.(*algebra.Scan)
	require.True(ok)
	require.Equal("students", left.Name)
	right, ok := join.Right.(*algebra.Scan)
	require.True(ok)
	require.Equal("professors", right.Name)
}

// group by compiles the partition sub-query into a Nest
func TestUnnestGroupBy(t *testing.T) {
	require := require.New(t)

	sel := &calculus.Select{
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		GroupBy: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
		Proj: &calculus.RecordCons{Atts: []calculus.AttrCons{
			{Idn: "age", E: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"}},
			{Idn: "n", E: &calculus.Count{E: &calculus.Partition{}}},
		}},
	}
	plan := unnestOK(t, testWorld(), sel)

	reduce, ok := plan.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.SetMonoid)
	require.True(ok)

	var nest *algebra.Nest
	var walk func(n algebra.Node)
	walk = func(n algebra.Node) {
		if nn, ok := n.(*algebra.Nest); ok {
			nest = nn
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(plan)
	require.NotNil(nest)

	// the nest sums a constant one per row of the group
	_, ok = nest.M.(*oql.SumMonoid)
	require.True(ok)
	one, ok := nest.E.(*algebra.IntVal)
	require.True(ok)
	require.Equal(int64(1), one.Value)
	require.Len(nest.Key, 1)
	require.True(algebra.IsTrue(nest.Pred))
}

// an independent nested comprehension is hoisted by C11 and
// joined against the outer query
func TestUnnestIndependentNestedComp(t *testing.T) {
	require := require.New(t)

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
	plan := unnestOK(t, testWorld(), root)

	// the top is a set reduction over a join of the hoisted inner plan with
	// the authors scan
	reduce, ok := plan.(*algebra.Reduce)
	require.True(ok)
	_, ok = reduce.M.(*oql.SetMonoid)
	require.True(ok)

	join, ok := reduce.Child.(*algebra.Join)
	require.True(ok)
	right, ok := join.Right.(*algebra.Scan)
	require.True(ok)
	require.Equal("authors", right.Name)

	// the left side evaluates the hoisted count
	_, ok = join.Left.(*algebra.Reduce)
	require.True(ok)

	// inside the hoisted plan the membership test nests over an unnest of
	// the author list
	var sawNest, sawUnnest bool
	var walk func(n algebra.Node)
	walk = func(n algebra.Node) {
		switch n.(type) {
		case *algebra.Nest:
			sawNest = true
		case *algebra.Unnest, *algebra.OuterUnnest:
			sawUnnest = true
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(join.Left)
	require.True(sawNest)
	require.True(sawUnnest)
}

// unnester output uses collection monoids only in Reduce and Nest and
// primitive monoids elsewhere
func TestUnnestMonoidPositions(t *testing.T) {
	require := require.New(t)

	sel := &calculus.Select{
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		GroupBy: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
		Proj: &calculus.RecordCons{Atts: []calculus.AttrCons{
			{Idn: "age", E: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"}},
			{Idn: "n", E: &calculus.Count{E: &calculus.Partition{}}},
		}},
	}
	plan := unnestOK(t, testWorld(), sel)

	var walk func(n algebra.Node)
	walk = func(n algebra.Node) {
		switch n := n.(type) {
		case *algebra.Reduce:
			require.NotNil(n.M)
		case *algebra.Nest:
			require.NotNil(n.M)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(plan)
}

func TestUnnestPositionPreserved(t *testing.T) {
	require := require.New(t)

	pos := oql.Position{Line: 2, Column: 5, Offset: 12}
	comp := calculus.NewComp(pos, &oql.BagMonoid{},
		[]calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		&calculus.IdnExp{Idn: "s"})
	plan := unnestOK(t, testWorld(), comp)
	require.Equal(pos, plan.Pos())
}

func TestUnnestRejectsNonCanonical(t *testing.T) {
	require := require.New(t)

	sem := analyzer.NewSem(testWorld())
	root := &calculus.IntConst{Value: 1}
	sem.Analyze(root)
	_, err := Unnest(root, sem)
	require.True(oql.ErrInternal.Is(err))
}
