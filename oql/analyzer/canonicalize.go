package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
	"github.com/oqlc/go-oql-compiler/oql/transform"
)

// canonicalize rewrites every comprehension into canonical form: generators
// over paths, one CNF predicate, and the yield. The earlier batches must
// have eliminated binds, product patterns, anonymous generators and
// non-path generator sources; anything left is a bug, not a user error.
func canonicalize(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	out := transform.Exp(e, func(n calculus.Exp) calculus.Exp {
		c, ok := n.(*calculus.Comp)
		if !ok {
			return n
		}
		var gens []*calculus.Gen
		var preds []calculus.Exp
		for _, q := range c.Quals {
			switch q := q.(type) {
			case *calculus.Gen:
				p, ok := q.P.(*calculus.PatternIdn)
				if !ok {
					fail(oql.ErrInternal.New("generator pattern survived desugaring: " + q.String()))
					continue
				}
				path, err := toPath(q.E)
				if err != nil {
					fail(err)
					continue
				}
				gens = append(gens, calculus.NewGen(q.Pos(), p, path))
			case *calculus.Bind:
				fail(oql.ErrInternal.New("bind survived normalization: " + q.String()))
			case *calculus.Pred:
				preds = append(preds, q.E)
			}
		}
		pred := cnf(Conjoin(preds))
		return calculus.NewCanonComp(c.Pos(), c.M, gens, pred, c.E)
	})
	return out, firstErr
}

// toPath reads a generator source as a path: a variable projected through
// record fields. Monoid conversions are transparent, they re-tag the
// collection without moving rows.
func toPath(e calculus.Exp) (calculus.Path, error) {
	switch e := e.(type) {
	case *calculus.VariablePath:
		return e, nil
	case *calculus.InnerPath:
		return e, nil
	case *calculus.IdnExp:
		return calculus.NewVariablePath(e.Pos(), e.Idn), nil
	case *calculus.RecordProj:
		inner, err := toPath(e.E)
		if err != nil {
			return nil, err
		}
		return calculus.NewInnerPath(e.Pos(), inner, e.Idn), nil
	case *calculus.UnaryExp:
		if e.Op.IsMonoidConversion() {
			return toPath(e.E)
		}
	}
	return nil, oql.ErrInternal.New("generator source is not a path: " + e.String())
}
