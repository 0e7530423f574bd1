package unnester

import (
	"github.com/oqlc/go-oql-compiler/oql/analyzer"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// splitPredicate partitions the CNF conjuncts of a comprehension's predicate
// relative to its head generator variable v and the child pattern variables:
//
//	p1 — conjuncts over v alone, evaluated on the generator's source;
//	p2 — conjuncts relating v to the child pattern, evaluated on the join;
//	p3 — everything else: conjuncts naming later generators' variables and
//	     conjuncts containing nested comprehensions, pushed down into the
//	     recursive call.
func (u *Unnester) splitPredicate(pred calculus.Exp, v string, wVars []string, later []*calculus.Gen) (p1, p2, p3 []calculus.Exp) {
	laterVars := make(map[string]struct{}, len(later))
	for _, g := range later {
		if p, ok := g.P.(*calculus.PatternIdn); ok {
			laterVars[p.Idn] = struct{}{}
		}
	}

	for _, conjunct := range analyzer.Conjuncts(pred) {
		if containsComp(conjunct) {
			p3 = append(p3, conjunct)
			continue
		}
		usesLater := false
		usesChild := false
		for _, free := range calculus.FreeVars(conjunct) {
			if _, hit := laterVars[free]; hit {
				usesLater = true
				break
			}
			if indexOf(wVars, free) >= 0 {
				usesChild = true
			}
		}
		switch {
		case usesLater:
			p3 = append(p3, conjunct)
		case usesChild:
			p2 = append(p2, conjunct)
		default:
			p1 = append(p1, conjunct)
		}
	}
	return p1, p2, p3
}

func containsComp(e calculus.Exp) bool {
	return calculus.Contains(e, func(n calculus.Exp) bool {
		switch n.(type) {
		case *calculus.CanonComp, *calculus.Comp, *calculus.Select:
			return true
		}
		return false
	})
}
