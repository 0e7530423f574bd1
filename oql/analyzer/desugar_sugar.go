package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// desugarSugarOps lowers the aggregation sugar into comprehensions over the
// appropriate primitive monoids:
//
//	sum(e)    =>  for ($x <- to_bag(e)) yield sum $x
//	count(e)  =>  for ($x <- to_bag(e)) yield sum 1
//	max(e)    =>  for ($x <- e) yield max $x
//	avg(e)    =>  sum(e) / count(e)
//	exists(e) =>  for ($x <- e) yield or true
//	e1 in e2  =>  for ($x <- e2) yield or ($x = e1)
//
// to_bag is inserted only for set sources, so sums and counts see
// duplicates; max and min are idempotent and take any source.
func desugarSugarOps(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		switch n := n.(type) {
		case *calculus.Sum:
			return aggComp(a, &oql.SumMonoid{}, bagged(sem, n.E), n.Pos(), nil)
		case *calculus.Count:
			one := calculus.NewIntConst(n.Pos(), 1)
			return aggComp(a, &oql.SumMonoid{}, bagged(sem, n.E), n.Pos(), one)
		case *calculus.Max:
			return aggComp(a, &oql.MaxMonoid{}, n.E, n.Pos(), nil)
		case *calculus.Min:
			return aggComp(a, &oql.MinMonoid{}, n.E, n.Pos(), nil)
		case *calculus.Avg:
			sum := &calculus.Sum{E: n.E}
			sum.SetPos(n.Pos())
			count := &calculus.Count{E: calculus.Clone(n.E)}
			count.SetPos(n.Pos())
			return calculus.NewBinaryExp(n.Pos(), calculus.OpDiv, sum, count)
		case *calculus.Exists:
			x := a.FreshIdn()
			gen := calculus.NewGen(n.Pos(), calculus.NewPatternIdn(n.Pos(), x), n.E)
			return calculus.NewComp(n.Pos(), &oql.OrMonoid{},
				[]calculus.Qual{gen}, calculus.NewBoolConst(n.Pos(), true))
		case *calculus.In:
			x := a.FreshIdn()
			gen := calculus.NewGen(n.Pos(), calculus.NewPatternIdn(n.Pos(), x), n.Right)
			eq := calculus.NewBinaryExp(n.Pos(), calculus.OpEq,
				calculus.NewIdnExp(n.Pos(), x), n.Left)
			return calculus.NewComp(n.Pos(), &oql.OrMonoid{}, []calculus.Qual{gen}, eq)
		}
		return n
	}), nil
}

// aggComp builds for ($x <- src) yield m body, defaulting body to $x.
func aggComp(a *Analyzer, m oql.Monoid, src calculus.Exp, pos oql.Position, body calculus.Exp) calculus.Exp {
	x := a.FreshIdn()
	gen := calculus.NewGen(pos, calculus.NewPatternIdn(pos, x), src)
	if body == nil {
		body = calculus.NewIdnExp(pos, x)
	}
	return calculus.NewComp(pos, m, []calculus.Qual{gen}, body)
}

// bagged converts the source to a bag so that non-idempotent aggregations
// count duplicates. Sources already known to be bags are left alone.
func bagged(sem *Sem, e calculus.Exp) calculus.Exp {
	if coll, ok := sem.TypeOf(e).(*oql.CollectionType); ok {
		if _, isBag := coll.M.(*oql.BagMonoid); isBag {
			return e
		}
	}
	return calculus.NewUnaryExp(e.Pos(), calculus.OpToBag, e)
}
