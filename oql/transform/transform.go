// Package transform provides traversal helpers over calculus trees, used by
// the analyzer's rewrite rules.
package transform

import (
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// Visitor visits expressions in the tree.
type Visitor interface {
	// Visit method is invoked for each expression encountered by Walk. If the
	// result Visitor is not nil, Walk visits each of the children of the
	// expression with that visitor, followed by a call of Visit(nil) to the
	// returned visitor.
	Visit(e calculus.Exp) Visitor
}

// Walk traverses the tree in depth-first order. It starts by calling
// v.Visit(e); e must not be nil. If the visitor returned by v.Visit(e) is not
// nil, Walk is invoked recursively with the returned visitor for each child
// of e, followed by a call of v.Visit(nil) to the returned visitor.
func Walk(v Visitor, e calculus.Exp) {
	if v = v.Visit(e); v == nil {
		return
	}

	for _, child := range e.Children() {
		Walk(v, child)
	}

	v.Visit(nil)
}

type inspector func(calculus.Exp) bool

func (f inspector) Visit(e calculus.Exp) Visitor {
	if e != nil && f(e) {
		return f
	}
	return nil
}

// Inspect traverses the tree in depth-first order: it starts by calling
// f(e); e must not be nil. If f returns true, Inspect invokes f recursively
// for each of the children of e.
func Inspect(e calculus.Exp, f func(calculus.Exp) bool) {
	Walk(inspector(f), e)
}

// Exp applies f to every expression of the tree, bottom-up, returning the
// rewritten tree.
func Exp(e calculus.Exp, f func(calculus.Exp) calculus.Exp) calculus.Exp {
	return calculus.TransformUp(e, f)
}

// OneExp applies f to the first expression, top-down, for which f returns a
// non-nil replacement, leaving the rest of the tree untouched.
func OneExp(e calculus.Exp, f func(calculus.Exp) calculus.Exp) calculus.Exp {
	done := false
	var rewrite func(calculus.Exp) calculus.Exp
	rewrite = func(n calculus.Exp) calculus.Exp {
		if done {
			return n
		}
		if repl := f(n); repl != nil {
			done = true
			return repl
		}
		return rebuildChildren(n, rewrite)
	}
	return rewrite(e)
}

func rebuildChildren(e calculus.Exp, f func(calculus.Exp) calculus.Exp) calculus.Exp {
	// RebuildWith copies e with f applied to each direct child; f itself
	// decides whether to descend further.
	return calculus.RebuildWith(e, f)
}
