package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
	"github.com/oqlc/go-oql-compiler/oql/transform"
)

// hoistComprehensions flattens nested comprehensions by the monoid laws:
//
//	for (x <- for (qs2) yield m2 e2; rest) yield m1 e
//	  =>  for (qs2; x := e2; rest) yield m1 e
//
//	for (qs1) yield m (for (qs2) yield m e2)
//	  =>  for (qs1; qs2) yield m e2
//
// The generator form holds for any collection-monoid inner comprehension
// (the analyzer already checked m2 against m1); the yield form requires the
// monoids to be the same known collection monoid. Inner binders are renamed
// to fresh identifiers before folding so they cannot capture anything in the
// enclosing comprehension.
func hoistComprehensions(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		c, ok := n.(*calculus.Comp)
		if !ok {
			return n
		}

		for i, q := range c.Quals {
			g, ok := q.(*calculus.Gen)
			if !ok {
				continue
			}
			// monoid conversions re-tag the collection without moving rows,
			// so a converted comprehension hoists just the same
			src := g.E
			if conv, ok := src.(*calculus.UnaryExp); ok && conv.Op.IsMonoidConversion() {
				src = conv.E
			}
			inner, ok := src.(*calculus.Comp)
			if !ok || !isCollectionOrVariable(inner.M) {
				continue
			}
			renamed := renameCompBinders(a, inner)
			quals := append([]calculus.Qual{}, c.Quals[:i]...)
			quals = append(quals, renamed.Quals...)
			quals = append(quals, calculus.NewBind(g.Pos(), g.P, renamed.E))
			quals = append(quals, c.Quals[i+1:]...)
			return calculus.NewComp(c.Pos(), c.M, quals, c.E)
		}

		if inner, ok := c.E.(*calculus.Comp); ok && sameKnownCollection(c.M, inner.M) {
			renamed := renameCompBinders(a, inner)
			quals := append(append([]calculus.Qual{}, c.Quals...), renamed.Quals...)
			return calculus.NewComp(c.Pos(), c.M, quals, renamed.E)
		}
		return n
	}), nil
}

func isCollectionOrVariable(m oql.Monoid) bool {
	switch m.(type) {
	case *oql.SetMonoid, *oql.BagMonoid, *oql.ListMonoid, *oql.MonoidVariable:
		return true
	}
	return false
}

func sameKnownCollection(m1, m2 oql.Monoid) bool {
	if _, ok := m1.(*oql.MonoidVariable); ok {
		return false
	}
	if _, ok := m2.(*oql.MonoidVariable); ok {
		return false
	}
	if !isCollectionOrVariable(m1) || !isCollectionOrVariable(m2) {
		return false
	}
	return oql.MonoidsEqual(m1, m2)
}

// renameCompBinders freshens every identifier the comprehension's own
// qualifiers bind, substituting the fresh names through their scope.
func renameCompBinders(a *Analyzer, c *calculus.Comp) *calculus.Comp {
	out := c
	for i := 0; i < len(out.Quals); i++ {
		switch q := out.Quals[i].(type) {
		case *calculus.Gen:
			if p, ok := q.P.(*calculus.PatternIdn); ok {
				out = renameBinderAt(a, out, i, p.Idn)
			}
		case *calculus.Bind:
			if p, ok := q.P.(*calculus.PatternIdn); ok {
				out = renameBinderAt(a, out, i, p.Idn)
			}
		}
	}
	return out
}

func renameBinderAt(a *Analyzer, c *calculus.Comp, i int, idn string) *calculus.Comp {
	fresh := a.FreshIdn()
	rest := calculus.NewComp(c.Pos(), c.M, c.Quals[i+1:], c.E)
	renamed := calculus.Substitute(rest, idn,
		calculus.NewIdnExp(c.Pos(), fresh),
		func(string) string { return a.FreshIdn() }).(*calculus.Comp)

	var renamedQual calculus.Qual
	switch q := c.Quals[i].(type) {
	case *calculus.Gen:
		renamedQual = calculus.NewGen(q.Pos(), calculus.NewPatternIdn(q.Pos(), fresh), q.E)
	case *calculus.Bind:
		renamedQual = calculus.NewBind(q.Pos(), calculus.NewPatternIdn(q.Pos(), fresh), q.E)
	}

	quals := append([]calculus.Qual{}, c.Quals[:i]...)
	quals = append(quals, renamedQual)
	quals = append(quals, renamed.Quals...)
	return calculus.NewComp(c.Pos(), c.M, quals, renamed.E)
}
