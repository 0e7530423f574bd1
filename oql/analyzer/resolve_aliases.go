package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// resolveAliases eliminates the alias environment: every anonymous generator
// receives a fresh identifier pattern and each use of an injected attribute
// becomes an explicit projection off that identifier; the right side of an
// into is wrapped into a function applied to its left side.
func resolveAliases(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	anon := make(map[*calculus.Gen]string)
	assign := func(gens []*calculus.Gen) {
		for _, g := range gens {
			if g.P == nil {
				anon[g] = a.FreshIdn()
			}
		}
	}
	collectGens(e, assign)
	if len(anon) == 0 && !hasInto(e) {
		return e, nil
	}

	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		switch n := n.(type) {
		case *calculus.IdnExp:
			if ent, ok := sem.EntityOf(n).(*GenAttributeEntity); ok {
				if idn, named := anon[ent.Gen]; named {
					return calculus.NewRecordProj(n.Pos(),
						calculus.NewIdnExp(n.Pos(), idn), ent.Att.Idn)
				}
			}
			return n
		case *calculus.Comp:
			quals := make([]calculus.Qual, len(n.Quals))
			changed := false
			for i, q := range n.Quals {
				if g, ok := q.(*calculus.Gen); ok {
					if idn, named := anon[g]; named {
						quals[i] = calculus.NewGen(g.Pos(),
							calculus.NewPatternIdn(g.Pos(), idn), g.E)
						changed = true
						continue
					}
				}
				quals[i] = q
			}
			if !changed {
				return n
			}
			return calculus.NewComp(n.Pos(), n.M, quals, n.E)
		case *calculus.Select:
			from := make([]*calculus.Gen, len(n.From))
			changed := false
			for i, g := range n.From {
				if idn, named := anon[g]; named {
					from[i] = calculus.NewGen(g.Pos(),
						calculus.NewPatternIdn(g.Pos(), idn), g.E)
					changed = true
					continue
				}
				from[i] = g
			}
			if !changed {
				return n
			}
			s := *n
			s.From = from
			return &s
		case *calculus.Into:
			fresh := a.FreshIdn()
			right := rewriteTopDown(n.Right, func(use calculus.Exp) calculus.Exp {
				idn, ok := use.(*calculus.IdnExp)
				if !ok {
					return use
				}
				ent, ok := sem.EntityOf(idn).(*IntoAttributeEntity)
				if !ok || ent.Into != n {
					return use
				}
				return calculus.NewRecordProj(idn.Pos(),
					calculus.NewIdnExp(idn.Pos(), fresh), ent.Att.Idn)
			})
			fun := calculus.NewFunAbs(n.Pos(),
				calculus.NewPatternIdn(n.Pos(), fresh), right)
			return calculus.NewFunApp(n.Pos(), fun, n.Left)
		}
		return n
	}), nil
}

// collectGens calls f with the generator lists of every comprehension and
// select of the tree, in the original nodes.
func collectGens(e calculus.Exp, f func([]*calculus.Gen)) {
	calculus.Inspect(e, func(n calculus.Exp) bool {
		switch n := n.(type) {
		case *calculus.Comp:
			var gens []*calculus.Gen
			for _, q := range n.Quals {
				if g, ok := q.(*calculus.Gen); ok {
					gens = append(gens, g)
				}
			}
			f(gens)
		case *calculus.Select:
			f(n.From)
		}
		return true
	})
}

func hasInto(e calculus.Exp) bool {
	return calculus.Contains(e, func(n calculus.Exp) bool {
		_, ok := n.(*calculus.Into)
		return ok
	})
}
