package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// analyzeOK runs the full pipeline and requires an error-free canonical
// tree.
func analyzeOK(t *testing.T, w *oql.World, root calculus.Exp) (calculus.Exp, *Sem) {
	t.Helper()
	a := NewDefault(w)
	tree, sem, err := a.Analyze(oql.NewEmptyContext(), root)
	require.NoError(t, err)
	require.Empty(t, sem.Errs.List())
	return tree, sem
}

func TestAnalyzeSimpleFilterCanonical(t *testing.T) {
	require := require.New(t)

	pred := &calculus.BinaryExp{Op: calculus.OpGt,
		Left:  &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
		Right: &calculus.IntConst{Value: 20},
	}
	root := &calculus.Comp{
		M: &oql.SetMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
			&calculus.Pred{E: pred},
		},
		E: &calculus.IdnExp{Idn: "s"},
	}

	tree, _ := analyzeOK(t, testWorld(), root)
	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	require.Len(canon.Gens, 1)

	// the generator source is a path
	path, ok := canon.Gens[0].E.(*calculus.VariablePath)
	require.True(ok)
	require.Equal("students", path.Idn)

	// the predicate is a single CNF expression
	require.Equal("(s.age > 20)", canon.Pred.String())
}

func TestAnalyzeErrorsSkipRewrites(t *testing.T) {
	require := require.New(t)

	root := &calculus.Comp{
		M: &oql.SetMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "nowhere"}},
		},
		E: &calculus.IdnExp{Idn: "s"},
	}

	a := NewDefault(testWorld())
	tree, sem, err := a.Analyze(oql.NewEmptyContext(), root)
	require.NoError(err)
	require.NotEmpty(sem.Errs.List())

	// the tree is returned as-is, not canonicalized
	_, ok := tree.(*calculus.Comp)
	require.True(ok)
}

func TestAnalyzeSugarOps(t *testing.T) {
	require := require.New(t)

	// sum over a set counts duplicates through a bag conversion, realized
	// as a sum comprehension over the set generator
	root := &calculus.Sum{E: &calculus.IdnExp{Idn: "setOfThings"}}
	tree, _ := analyzeOK(t, testWorld(), root)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	_, ok = canon.M.(*oql.SumMonoid)
	require.True(ok)
	require.Len(canon.Gens, 1)
	path, ok := canon.Gens[0].E.(*calculus.VariablePath)
	require.True(ok)
	require.Equal("setOfThings", path.Idn)
}

func TestAnalyzeExists(t *testing.T) {
	require := require.New(t)

	root := &calculus.Exists{E: &calculus.IdnExp{Idn: "students"}}
	tree, sem := analyzeOK(t, testWorld(), root)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	_, ok = canon.M.(*oql.OrMonoid)
	require.True(ok)
	require.True(oql.TypesEqual(&oql.BoolType{}, sem.Type()))
}

func TestAnalyzeInDesugarsToOrComp(t *testing.T) {
	require := require.New(t)

	// "X" in p.authors, inside a publications comprehension
	root := &calculus.Comp{
		M: &oql.BagMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "p"}, E: &calculus.IdnExp{Idn: "publications"}},
			&calculus.Pred{E: &calculus.In{
				Left:  &calculus.StringConst{Value: "X"},
				Right: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "p"}, Idn: "authors"},
			}},
		},
		E: &calculus.IdnExp{Idn: "p"},
	}
	tree, _ := analyzeOK(t, testWorld(), root)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	inner, ok := canon.Pred.(*calculus.CanonComp)
	require.True(ok)
	_, ok = inner.M.(*oql.OrMonoid)
	require.True(ok)
	require.Len(inner.Gens, 1)
	_, ok = inner.Gens[0].E.(*calculus.InnerPath)
	require.True(ok)
}

func TestAnalyzeSelectWithoutGroupBy(t *testing.T) {
	require := require.New(t)

	sel := &calculus.Select{
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		Proj: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "name"},
		Where: &calculus.BinaryExp{Op: calculus.OpGt,
			Left:  &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
			Right: &calculus.IntConst{Value: 20}},
	}
	tree, sem := analyzeOK(t, testWorld(), sel)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	_, ok = canon.M.(*oql.MonoidVariable)
	require.True(ok)
	require.Equal("(s.age > 20)", canon.Pred.String())

	coll, ok := sem.Type().(*oql.CollectionType)
	require.True(ok)
	require.True(oql.TypesEqual(&oql.StringType{}, coll.Inner))
}

func TestAnalyzeSelectDistinctAndOrder(t *testing.T) {
	require := require.New(t)

	sel := &calculus.Select{
		Distinct: true,
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		Proj: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "name"},
	}
	tree, _ := analyzeOK(t, testWorld(), sel)
	canon := tree.(*calculus.CanonComp)
	_, ok := canon.M.(*oql.SetMonoid)
	require.True(ok)

	ordered := &calculus.Select{
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		Proj:    &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "name"},
		OrderBy: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
	}
	tree, _ = analyzeOK(t, testWorld(), ordered)
	canon = tree.(*calculus.CanonComp)
	_, ok = canon.M.(*oql.ListMonoid)
	require.True(ok)
}

func TestAnalyzeSelectStar(t *testing.T) {
	require := require.New(t)

	sel := &calculus.Select{
		From: []*calculus.Gen{
			{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
		},
		Proj: &calculus.Star{},
	}
	tree, sem := analyzeOK(t, testWorld(), sel)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	// the star became the generator variable
	use, ok := canon.E.(*calculus.IdnExp)
	require.True(ok)
	require.Equal("s", use.Idn)

	coll, ok := sem.Type().(*oql.CollectionType)
	require.True(ok)
	ut, ok := coll.Inner.(*oql.UserType)
	require.True(ok)
	require.Equal(oql.Named("student"), ut.Sym)
}

func TestAnalyzeGroupBy(t *testing.T) {
	require := require.New(t)

	// select (age: s.age, n: count(partition)) from students s group by s.age
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
	tree, sem := analyzeOK(t, testWorld(), sel)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	// distinct select desugars to a set comprehension
	_, ok = canon.M.(*oql.SetMonoid)
	require.True(ok)

	// the yield is a record whose n attribute holds the nested sum over the
	// partition sub-query
	rec, ok := canon.E.(*calculus.RecordCons)
	require.True(ok)
	require.Equal("age", rec.Atts[0].Idn)
	inner, ok := rec.Atts[1].E.(*calculus.CanonComp)
	require.True(ok)
	_, ok = inner.M.(*oql.SumMonoid)
	require.True(ok)
	// the partition sub-query restricts students to the current group key
	require.Contains(inner.Pred.String(), ".age = s.age")

	coll, ok := sem.Type().(*oql.CollectionType)
	require.True(ok)
	atts, ok := coll.Inner.(*oql.RecordType).Atts.(*oql.Attributes)
	require.True(ok)
	require.Equal("age", atts.Atts[0].Idn)
	require.Equal("n", atts.Atts[1].Idn)
	require.True(oql.TypesEqual(&oql.IntType{}, atts.Atts[1].Type))
}

func TestAnalyzeBlocksInline(t *testing.T) {
	require := require.New(t)

	// { limit := 20; for (s <- students; s.age > limit) yield set s }
	root := &calculus.ExpBlock{
		Binds: []*calculus.Bind{
			{P: &calculus.PatternIdn{Idn: "limit"}, E: &calculus.IntConst{Value: 20}},
		},
		E: &calculus.Comp{
			M: &oql.SetMonoid{},
			Quals: []calculus.Qual{
				&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
				&calculus.Pred{E: &calculus.BinaryExp{Op: calculus.OpGt,
					Left:  &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
					Right: &calculus.IdnExp{Idn: "limit"}}},
			},
			E: &calculus.IdnExp{Idn: "s"},
		},
	}
	tree, _ := analyzeOK(t, testWorld(), root)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	require.Equal("(s.age > 20)", canon.Pred.String())
}

func TestAnalyzeBetaReduction(t *testing.T) {
	require := require.New(t)

	// (\xs -> for (x <- xs) yield bag x)(students)
	root := &calculus.FunApp{
		F: &calculus.FunAbs{
			P: &calculus.PatternIdn{Idn: "xs"},
			Body: &calculus.Comp{
				M: &oql.BagMonoid{},
				Quals: []calculus.Qual{
					&calculus.Gen{P: &calculus.PatternIdn{Idn: "x"}, E: &calculus.IdnExp{Idn: "xs"}},
				},
				E: &calculus.IdnExp{Idn: "x"},
			},
		},
		E: &calculus.IdnExp{Idn: "students"},
	}
	tree, _ := analyzeOK(t, testWorld(), root)

	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	path, ok := canon.Gens[0].E.(*calculus.VariablePath)
	require.True(ok)
	require.Equal("students", path.Idn)
}

func TestAnalyzeNestedCompHoisting(t *testing.T) {
	require := require.New(t)

	// for (x <- (for (s <- students; s.age > 20) yield bag s)) yield bag x.name
	inner := &calculus.Comp{
		M: &oql.BagMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "s"}, E: &calculus.IdnExp{Idn: "students"}},
			&calculus.Pred{E: &calculus.BinaryExp{Op: calculus.OpGt,
				Left:  &calculus.RecordProj{E: &calculus.IdnExp{Idn: "s"}, Idn: "age"},
				Right: &calculus.IntConst{Value: 20}}},
		},
		E: &calculus.IdnExp{Idn: "s"},
	}
	root := &calculus.Comp{
		M: &oql.BagMonoid{},
		Quals: []calculus.Qual{
			&calculus.Gen{P: &calculus.PatternIdn{Idn: "x"}, E: inner},
		},
		E: &calculus.RecordProj{E: &calculus.IdnExp{Idn: "x"}, Idn: "name"},
	}
	tree, _ := analyzeOK(t, testWorld(), root)

	// one flat comprehension over students
	canon, ok := tree.(*calculus.CanonComp)
	require.True(ok)
	require.Len(canon.Gens, 1)
	path, ok := canon.Gens[0].E.(*calculus.VariablePath)
	require.True(ok)
	require.Equal("students", path.Idn)
	require.Contains(canon.Pred.String(), "> 20")
	proj, ok := canon.E.(*calculus.RecordProj)
	require.True(ok)
	require.Equal("name", proj.Idn)
}

func TestCNF(t *testing.T) {
	require := require.New(t)

	a := &calculus.IdnExp{Idn: "a"}
	b := &calculus.IdnExp{Idn: "b"}
	c := &calculus.IdnExp{Idn: "c"}

	// a or (b and c) => (a or b) and (a or c)
	e := &calculus.BinaryExp{Op: calculus.OpOr, Left: a,
		Right: &calculus.BinaryExp{Op: calculus.OpAnd, Left: b, Right: c}}
	require.Equal("((a or b) and (a or c))", cnf(e).String())

	// not(a or b) => not(a) and not(b)
	e2 := &calculus.UnaryExp{Op: calculus.OpNot,
		E: &calculus.BinaryExp{Op: calculus.OpOr, Left: a, Right: b}}
	require.Equal("(not(a) and not(b))", cnf(e2).String())

	// not(not a) => a
	e3 := &calculus.UnaryExp{Op: calculus.OpNot,
		E: &calculus.UnaryExp{Op: calculus.OpNot, E: a}}
	require.Equal("a", cnf(e3).String())

	conj := Conjuncts(cnf(e))
	require.Len(conj, 2)
}
