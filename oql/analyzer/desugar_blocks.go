package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
	"github.com/oqlc/go-oql-compiler/oql/transform"
)

// inlineBlockBinds removes the first identifier bind of an expression block
// by substituting its value into the rest of the block. Repeated application
// empties the block.
func inlineBlockBinds(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	rename := func(string) string { return a.FreshIdn() }
	return transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		block, ok := n.(*calculus.ExpBlock)
		if !ok || len(block.Binds) == 0 {
			return n
		}
		first := block.Binds[0]
		p, ok := first.P.(*calculus.PatternIdn)
		if !ok {
			// product binds are expanded by expandPatternBinds first
			return n
		}
		rest := calculus.NewExpBlock(block.Pos(), block.Binds[1:], block.E)
		inlined := calculus.Substitute(rest, p.Idn, first.E, rename)
		return inlined
	}), nil
}

// removeEmptyBlocks replaces a block with no binds by its expression.
func removeEmptyBlocks(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		if block, ok := n.(*calculus.ExpBlock); ok && len(block.Binds) == 0 {
			return block.E
		}
		return n
	}), nil
}
