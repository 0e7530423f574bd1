package unnester

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/algebra"
	"github.com/oqlc/go-oql-compiler/oql/analyzer"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// Unnester rewrites one canonical tree into the target algebra. It consults
// the tree's semantic analysis for element types and data source bindings
// and tracks the type of every pattern variable it introduces.
type Unnester struct {
	sem      *analyzer.Sem
	syms     *oql.SymbolRegistry
	varTypes map[string]oql.Type
}

// Unnest compiles a canonical comprehension into an algebra tree.
func Unnest(root calculus.Exp, sem *analyzer.Sem) (algebra.Node, error) {
	c, ok := root.(*calculus.CanonComp)
	if !ok {
		return nil, oql.ErrInternal.New("query root is not a canonical comprehension")
	}
	u := &Unnester{
		sem:      sem,
		syms:     oql.NewSymbolRegistry(),
		varTypes: make(map[string]oql.Type),
	}
	empty := &EmptyPattern{}
	return u.unnest(c, empty, empty, &algebra.Empty{})
}

// unnest is the driver T(e, u, w, E): it rewrites the comprehension c with
// outer pattern up, child pattern wp and child algebra E.
func (u *Unnester) unnest(c *calculus.CanonComp, up, wp Pattern, E algebra.Node) (algebra.Node, error) {
	// C11: a nested comprehension in the predicate that does not depend on
	// this comprehension's own generators is computed first and replaced by
	// a fresh variable.
	if ep := u.independentComp(c.Pred, c.Gens); ep != nil {
		return u.hoist(c, ep, true, up, wp, E)
	}

	if len(c.Gens) == 0 {
		// C12: a nested comprehension in the yield.
		if ep := firstComp(c.E); ep != nil {
			return u.hoist(c, ep, false, up, wp, E)
		}
		wVars := patternVariables(wp)
		eExpr, err := u.translate(c.E, wVars)
		if err != nil {
			return nil, err
		}
		pred, err := u.translateConj(analyzer.Conjuncts(c.Pred), wVars)
		if err != nil {
			return nil, err
		}
		if isEmpty(up) {
			// C5
			r := &algebra.Reduce{M: c.M, E: eExpr, Pred: pred, Child: E}
			r.SetPos(c.Pos())
			return r, nil
		}
		// C8
		uVars := patternVariables(up)
		key, err := u.args(uVars, wVars)
		if err != nil {
			return nil, err
		}
		nulls, err := u.args(reduceVars(wVars, uVars), wVars)
		if err != nil {
			return nil, err
		}
		n := &algebra.Nest{M: c.M, E: eExpr, Key: key, Pred: pred, Nulls: nulls, Child: E}
		n.SetPos(c.Pos())
		return n, nil
	}

	g := c.Gens[0]
	v, ok := g.P.(*calculus.PatternIdn)
	if !ok {
		return nil, oql.ErrInternal.New("canonical generator without identifier pattern")
	}
	elem := u.sem.GenElemType(g)
	if elem == nil {
		return nil, oql.ErrInternal.New("untyped generator " + g.String())
	}
	u.varTypes[v.Idn] = elem

	wVars := patternVariables(wp)
	p1, p2, p3 := u.splitPredicate(c.Pred, v.Idn, wVars, c.Gens[1:])
	rest := calculus.NewCanonComp(c.Pos(), c.M, c.Gens[1:], analyzer.Conjoin(p3), c.E)

	switch {
	case isEmpty(wp):
		// C4: first generator, nothing to join against.
		scan, err := u.scanFor(g)
		if err != nil {
			return nil, err
		}
		pred, err := u.translateConj(append(p1, p2...), []string{v.Idn})
		if err != nil {
			return nil, err
		}
		var child algebra.Node = scan
		if !algebra.IsTrue(pred) {
			sel := &algebra.Select{Pred: pred, Child: scan}
			sel.SetPos(g.Pos())
			child = sel
		}
		return u.unnest(rest, up, pair(wp, v.Idn), child)

	case isVariablePath(g.E):
		// C6 / C9: a source generator joins against the rows so far.
		scan, err := u.scanFor(g)
		if err != nil {
			return nil, err
		}
		p1Expr, err := u.translateConj(p1, []string{v.Idn})
		if err != nil {
			return nil, err
		}
		var right algebra.Node = scan
		if !algebra.IsTrue(p1Expr) {
			sel := &algebra.Select{Pred: p1Expr, Child: scan}
			sel.SetPos(g.Pos())
			right = sel
		}
		joined := append(append([]string{}, wVars...), v.Idn)
		p2Expr, err := u.translateConj(p2, joined)
		if err != nil {
			return nil, err
		}
		var node algebra.Node
		if isEmpty(up) {
			j := &algebra.Join{Pred: p2Expr, Left: E, Right: right}
			j.SetPos(g.Pos())
			node = j
		} else {
			j := &algebra.OuterJoin{Pred: p2Expr, Left: E, Right: right}
			j.SetPos(g.Pos())
			node = j
			u.forceNullable(v.Idn)
		}
		return u.unnest(rest, up, pair(wp, v.Idn), node)

	default:
		// C7 / C10: an inner-path generator unnests the rows so far.
		path, err := u.translate(g.E, wVars)
		if err != nil {
			return nil, err
		}
		joined := append(append([]string{}, wVars...), v.Idn)
		pred, err := u.translateConj(append(p1, p2...), joined)
		if err != nil {
			return nil, err
		}
		var node algebra.Node
		if isEmpty(up) {
			un := &algebra.Unnest{Path: path, Pred: pred, Child: E}
			un.SetPos(g.Pos())
			node = un
		} else {
			un := &algebra.OuterUnnest{Path: path, Pred: pred, Child: E}
			un.SetPos(g.Pos())
			node = un
			u.forceNullable(v.Idn)
		}
		return u.unnest(rest, up, pair(wp, v.Idn), node)
	}
}

// hoist implements C11 and C12: the nested comprehension ep is unnested
// against the current rows, its value joins the pattern as a fresh variable,
// and the enclosing comprehension continues with the variable substituted
// for the comprehension.
func (u *Unnester) hoist(c, ep *calculus.CanonComp, inPred bool, up, wp Pattern, E algebra.Node) (algebra.Node, error) {
	t := u.sem.TypeOf(ep)
	if t == nil {
		return nil, oql.ErrInternal.New("untyped nested comprehension " + ep.String())
	}
	fresh := "$" + u.syms.Fresh("c").String()
	u.varTypes[fresh] = t

	child, err := u.unnest(ep, wp, wp, E)
	if err != nil {
		return nil, err
	}

	use := calculus.NewIdnExp(ep.Pos(), fresh)
	var next *calculus.CanonComp
	if inPred {
		next = calculus.NewCanonComp(c.Pos(), c.M, c.Gens,
			replaceExp(c.Pred, ep, use), c.E)
	} else {
		next = calculus.NewCanonComp(c.Pos(), c.M, c.Gens,
			c.Pred, replaceExp(c.E, ep, use))
	}
	return u.unnest(next, up, pair(wp, fresh), child)
}

// forceNullable marks an outer-joined variable's type nullable.
func (u *Unnester) forceNullable(idn string) {
	if t := u.varTypes[idn]; t != nil {
		t.SetNullable(true)
	}
}

// args builds the argument references of want within the pattern vars have.
func (u *Unnester) args(want, vars []string) ([]algebra.Expr, error) {
	out := make([]algebra.Expr, 0, len(want))
	for _, idn := range want {
		idx := indexOf(vars, idn)
		if idx < 0 {
			return nil, oql.ErrInternal.New("variable " + idn + " is not in the current pattern")
		}
		out = append(out, &algebra.Arg{T: u.varTypes[idn], Index: idx})
	}
	return out, nil
}

// scanFor resolves a variable-path generator to a data source scan.
func (u *Unnester) scanFor(g *calculus.Gen) (*algebra.Scan, error) {
	path, ok := g.E.(*calculus.VariablePath)
	if !ok {
		return nil, oql.ErrInternal.New("generator source is not a data source: " + g.E.String())
	}
	if ent, ok := u.sem.EntityOf(path).(*analyzer.DataSourceEntity); ok {
		return algebra.NewScan(ent.Name, g.Pos()), nil
	}
	if _, ok := u.sem.World.Source(path.Idn); ok {
		return algebra.NewScan(path.Idn, g.Pos()), nil
	}
	return nil, oql.ErrInternal.New("variable path " + path.Idn + " does not name a data source")
}

func isVariablePath(e calculus.Exp) bool {
	_, ok := e.(*calculus.VariablePath)
	return ok
}

// independentComp returns the first nested comprehension of the predicate
// whose free variables avoid everything the given generators bind.
func (u *Unnester) independentComp(pred calculus.Exp, gens []*calculus.Gen) *calculus.CanonComp {
	bound := make(map[string]struct{}, len(gens))
	for _, g := range gens {
		if p, ok := g.P.(*calculus.PatternIdn); ok {
			bound[p.Idn] = struct{}{}
		}
	}
	var found *calculus.CanonComp
	calculus.Inspect(pred, func(n calculus.Exp) bool {
		if found != nil {
			return false
		}
		c, ok := n.(*calculus.CanonComp)
		if !ok {
			return true
		}
		for _, v := range calculus.FreeVars(c) {
			if _, hit := bound[v]; hit {
				return false
			}
		}
		found = c
		return false
	})
	return found
}

// firstComp returns the first nested comprehension of an expression.
func firstComp(e calculus.Exp) *calculus.CanonComp {
	var found *calculus.CanonComp
	calculus.Inspect(e, func(n calculus.Exp) bool {
		if found != nil {
			return false
		}
		if c, ok := n.(*calculus.CanonComp); ok {
			found = c
			return false
		}
		return true
	})
	return found
}

// replaceExp substitutes repl for the target node, sharing every untouched
// subtree so the analysis side tables stay valid for them.
func replaceExp(e, target, repl calculus.Exp) calculus.Exp {
	if e == target {
		return repl
	}
	changed := false
	out := calculus.RebuildWith(e, func(c calculus.Exp) calculus.Exp {
		nc := replaceExp(c, target, repl)
		if nc != c {
			changed = true
		}
		return nc
	})
	if !changed {
		return e
	}
	return out
}
