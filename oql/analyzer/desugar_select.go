package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// desugarSelect lowers a group-by-free select into a comprehension: the from
// generators become comprehension generators, where and having become
// predicates, and the monoid is list when ordered, set when distinct, else a
// fresh monoid variable. Ordering carries no algebra operator; the list
// monoid records that the executor must preserve order.
func desugarSelect(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		sel, ok := n.(*calculus.Select)
		if !ok || sel.GroupBy != nil {
			return n
		}
		if selReferencesStar(sem, sel) || selReferencesPartition(sem, sel) {
			return n
		}

		var quals []calculus.Qual
		for _, g := range sel.From {
			quals = append(quals, g)
		}
		if sel.Where != nil {
			quals = append(quals, calculus.NewPred(sel.Where))
		}
		if sel.Having != nil {
			quals = append(quals, calculus.NewPred(sel.Having))
		}

		var m oql.Monoid
		switch {
		case sel.OrderBy != nil:
			m = &oql.ListMonoid{}
		case sel.Distinct:
			m = &oql.SetMonoid{}
		default:
			m = a.FreshMonoidVar()
		}
		return calculus.NewComp(sel.Pos(), m, quals, sel.Proj)
	}), nil
}
