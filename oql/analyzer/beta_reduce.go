package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
	"github.com/oqlc/go-oql-compiler/oql/transform"
)

// betaReduce reduces the application of a function literal by introducing a
// bind scoping the body; the block rules then inline it.
func betaReduce(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		app, ok := n.(*calculus.FunApp)
		if !ok {
			return n
		}
		fun, ok := app.F.(*calculus.FunAbs)
		if !ok {
			return n
		}
		bind := calculus.NewBind(app.Pos(), fun.P, app.E)
		return calculus.NewExpBlock(app.Pos(), []*calculus.Bind{bind}, fun.Body)
	}), nil
}

// inlineCompBinds inlines the first identifier bind of each comprehension by
// substituting its value into the following qualifiers and the yield.
func inlineCompBinds(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	rename := func(string) string { return a.FreshIdn() }
	return transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		c, ok := n.(*calculus.Comp)
		if !ok {
			return n
		}
		for i, q := range c.Quals {
			b, ok := q.(*calculus.Bind)
			if !ok {
				continue
			}
			p, ok := b.P.(*calculus.PatternIdn)
			if !ok {
				continue
			}
			before := c.Quals[:i]
			after := calculus.NewComp(c.Pos(), c.M, c.Quals[i+1:], c.E)
			inlined := calculus.Substitute(after, p.Idn, b.E, rename).(*calculus.Comp)
			quals := append(append([]calculus.Qual{}, before...), inlined.Quals...)
			return calculus.NewComp(c.Pos(), c.M, quals, inlined.E)
		}
		return n
	}), nil
}
