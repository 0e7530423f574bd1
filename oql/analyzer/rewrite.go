package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// rewriteTopDown applies f to every node before its children. f receives the
// node as it appears in the analyzed tree, so side tables keyed by node
// identity (types, entities) remain valid for everything f has not replaced.
// Replacements are themselves descended into.
func rewriteTopDown(e calculus.Exp, f func(calculus.Exp) calculus.Exp) calculus.Exp {
	n := f(e)
	return calculus.RebuildWith(n, func(c calculus.Exp) calculus.Exp {
		return rewriteTopDown(c, f)
	})
}
