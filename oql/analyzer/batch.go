package analyzer

import (
	"reflect"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// RuleFunc is the function to be applied in a rule. The Sem describes the
// tree being rewritten; it is refreshed by the batch whenever a rule changes
// the tree.
type RuleFunc func(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error)

// Rule to transform trees.
type Rule struct {
	// Name of the rule.
	Name string
	// Apply transforms a tree.
	Apply RuleFunc
}

// Batch executes a set of rules a specific number of times.
// When this number of times is reached, the actual tree
// and ErrMaxAnalysisIters is returned.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Eval executes the actual rules the specified number of times on the Batch.
// If max number of iterations is reached, this method will return the actual
// processed tree and ErrMaxAnalysisIters error.
func (b *Batch) Eval(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, *Sem, error) {
	if b.Iterations == 0 {
		return e, sem, nil
	}

	prev := e
	cur, sem, err := b.evalOnce(ctx, a, e, sem)
	if err != nil {
		return nil, sem, err
	}

	if b.Iterations == 1 {
		return cur, sem, nil
	}

	for i := 1; !expsEqual(prev, cur); {
		prev = cur
		cur, sem, err = b.evalOnce(ctx, a, cur, sem)
		if err != nil {
			return nil, sem, err
		}

		i++
		if i >= b.Iterations {
			return cur, sem, ErrMaxAnalysisIters.New(b.Iterations)
		}
	}

	return cur, sem, nil
}

func (b *Batch) evalOnce(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, *Sem, error) {
	result := e
	for _, rule := range b.Rules {
		span, ctx := ctx.Span("rule." + rule.Name)
		prev := result
		var err error
		result, err = rule.Apply(ctx, a, result, sem)
		span.Finish()
		if err != nil {
			return nil, sem, err
		}
		if !expsEqual(prev, result) {
			a.Log("rule %s rewrote the tree", rule.Name)
			a.LogExp(result)
			sem, err = reanalyze(a, result)
			if err != nil {
				return nil, sem, err
			}
		} else {
			// keep the analyzed nodes: sem is keyed by their identity
			result = prev
		}
	}

	return result, sem, nil
}

// reanalyze re-establishes the semantic analysis after a rewrite. Rewrites
// of an error-free tree must stay error free; anything else is a bug in the
// rule that produced the tree.
func reanalyze(a *Analyzer, e calculus.Exp) (*Sem, error) {
	sem := NewSem(a.World)
	sem.Analyze(e)
	if !sem.Errs.Empty() {
		return sem, ErrInAnalysis.New(sem.Errs.List()[0])
	}
	return sem, nil
}

func expsEqual(a, b calculus.Exp) bool {
	return reflect.DeepEqual(a, b)
}
