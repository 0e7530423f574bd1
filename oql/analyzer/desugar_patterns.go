package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
	"github.com/oqlc/go-oql-compiler/oql/transform"
)

// expandPatternGens rewrites a generator with a product pattern into a
// generator over a fresh identifier followed by a bind that destructures it:
//
//	for ((x, y) <- e) ...  =>  for ($v <- e; (x, y) := $v) ...
func expandPatternGens(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		c, ok := n.(*calculus.Comp)
		if !ok {
			return n
		}
		var quals []calculus.Qual
		changed := false
		for _, q := range c.Quals {
			g, ok := q.(*calculus.Gen)
			if !ok {
				quals = append(quals, q)
				continue
			}
			prod, ok := g.P.(*calculus.PatternProd)
			if !ok {
				quals = append(quals, q)
				continue
			}
			fresh := a.FreshIdn()
			quals = append(quals,
				calculus.NewGen(g.Pos(), calculus.NewPatternIdn(g.Pos(), fresh), g.E),
				calculus.NewBind(g.Pos(), prod, calculus.NewIdnExp(g.Pos(), fresh)))
			changed = true
		}
		if !changed {
			return n
		}
		return calculus.NewComp(c.Pos(), c.M, quals, c.E)
	}), nil
}

// expandPatternBinds rewrites a bind with a product pattern into one bind
// per component, each projecting the corresponding attribute out of a fresh
// identifier bound to the whole value.
func expandPatternBinds(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	expand := func(b *calculus.Bind) ([]*calculus.Bind, bool) {
		prod, ok := b.P.(*calculus.PatternProd)
		if !ok {
			return []*calculus.Bind{b}, false
		}
		names := componentNames(sem, sem.TypeOf(b.E), len(prod.Ps))
		fresh := a.FreshIdn()
		out := []*calculus.Bind{
			calculus.NewBind(b.Pos(), calculus.NewPatternIdn(b.Pos(), fresh), b.E),
		}
		for i, sub := range prod.Ps {
			proj := calculus.NewRecordProj(b.Pos(), calculus.NewIdnExp(b.Pos(), fresh), names[i])
			out = append(out, calculus.NewBind(b.Pos(), sub, proj))
		}
		return out, true
	}

	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		switch n := n.(type) {
		case *calculus.Comp:
			var quals []calculus.Qual
			changed := false
			for _, q := range n.Quals {
				b, ok := q.(*calculus.Bind)
				if !ok {
					quals = append(quals, q)
					continue
				}
				expanded, did := expand(b)
				for _, nb := range expanded {
					quals = append(quals, nb)
				}
				changed = changed || did
			}
			if !changed {
				return n
			}
			return calculus.NewComp(n.Pos(), n.M, quals, n.E)
		case *calculus.ExpBlock:
			var binds []*calculus.Bind
			changed := false
			for _, b := range n.Binds {
				expanded, did := expand(b)
				binds = append(binds, expanded...)
				changed = changed || did
			}
			if !changed {
				return n
			}
			return calculus.NewExpBlock(n.Pos(), binds, n.E)
		}
		return n
	}), nil
}

// componentNames returns the attribute names a product pattern of the given
// arity destructures: the bound record's attribute names when they are
// known, else the tuple names _1.._n.
func componentNames(sem *Sem, t oql.Type, arity int) []string {
	names := make([]string, arity)
	for i := range names {
		names[i] = tupleAtt(i)
	}
	if t == nil {
		return names
	}
	if atts, ok := sem.asRecord(t); ok && len(atts.Atts) == arity {
		for i, att := range atts.Atts {
			names[i] = att.Idn
		}
	}
	return names
}
