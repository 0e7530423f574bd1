// Package oqlc compiles monoid comprehension calculus queries into a flat
// relational-style algebra. A Compiler wraps a catalog and an analyzer; each
// Compile call owns its typing state, so a single Compiler may be used for
// any number of sequential compilations, and independent Compilers for
// parallel ones.
package oqlc

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/algebra"
	"github.com/oqlc/go-oql-compiler/oql/analyzer"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
	"github.com/oqlc/go-oql-compiler/oql/unnester"
)

// Compiler is an OQL query compiler.
type Compiler struct {
	World    *oql.World
	Analyzer *analyzer.Analyzer
}

// New creates a new Compiler over the given catalog.
func New(w *oql.World) *Compiler {
	return &Compiler{World: w, Analyzer: analyzer.NewDefault(w)}
}

// Result is the outcome of a compilation: either an algebra tree and the
// query's type, or a non-empty list of errors.
type Result struct {
	Algebra algebra.Node
	Type    oql.Type
	Errors  []*oql.Error
}

// Compile analyzes, rewrites and unnests the query. User errors are returned
// inside the Result; the error return is reserved for violated internal
// invariants.
func (c *Compiler) Compile(ctx *oql.Context, root calculus.Exp) (*Result, error) {
	span, ctx := ctx.Span("compile", opentracing.Tags{
		"id": ctx.ID().String(),
	})
	defer span.Finish()

	log := logrus.WithField("compilation", ctx.ID())
	log.Debugf("compiling %s", root)

	tree, sem, err := c.Analyzer.Analyze(ctx, root)
	if err != nil {
		log.Debugf("analysis failed: %s", err)
		return nil, err
	}
	if !sem.Errs.Empty() {
		log.Debugf("compilation failed with %d errors", len(sem.Errs.List()))
		return &Result{Errors: sem.Errs.List()}, nil
	}

	plan, err := unnester.Unnest(tree, sem)
	if err != nil {
		log.Debugf("unnesting failed: %s", err)
		return nil, err
	}

	return &Result{Algebra: plan, Type: sem.Type()}, nil
}
