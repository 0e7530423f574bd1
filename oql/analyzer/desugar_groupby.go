package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// desugarGroupBy eliminates group by: every partition occurrence in the
// projection (and having) is replaced by a sub-query selecting the rows of
// the same from/where whose group key equals the current row's key, and the
// select itself becomes a distinct select without group by. The distinct
// collapses the per-row duplicates of each group into one output row.
func desugarGroupBy(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		sel, ok := n.(*calculus.Select)
		if !ok || sel.GroupBy == nil {
			return n
		}
		if selReferencesStar(sem, sel) {
			// stars expand first
			return n
		}
		for _, g := range sel.From {
			if _, named := g.P.(*calculus.PatternIdn); !named {
				return n
			}
		}

		mk := func() calculus.Exp { return partitionQuery(a, sel) }
		proj := replacePartitions(sem, sel, sel.Proj, mk)
		out := &calculus.Select{
			From:     sel.From,
			Distinct: true,
			Proj:     proj,
			Where:    sel.Where,
			OrderBy:  sel.OrderBy,
		}
		if sel.Having != nil {
			out.Having = replacePartitions(sem, sel, sel.Having, mk)
		}
		out.SetPos(sel.Pos())
		return out
	}), nil
}

// partitionQuery builds the sub-query denoting the current group's rows: the
// select's from and where over fresh identifiers, restricted to rows whose
// group key equals the enclosing row's key.
func partitionQuery(a *Analyzer, sel *calculus.Select) calculus.Exp {
	renames := make(map[string]string, len(sel.From))
	from := make([]*calculus.Gen, len(sel.From))
	for i, g := range sel.From {
		fresh := a.FreshIdn()
		src := renameIdns(calculus.Clone(g.E), renames)
		renames[g.P.(*calculus.PatternIdn).Idn] = fresh
		from[i] = calculus.NewGen(g.Pos(), calculus.NewPatternIdn(g.Pos(), fresh), src)
	}

	key := calculus.NewBinaryExp(sel.GroupBy.Pos(), calculus.OpEq,
		renameIdns(calculus.Clone(sel.GroupBy), renames),
		calculus.Clone(sel.GroupBy))
	where := calculus.Exp(key)
	if sel.Where != nil {
		where = calculus.NewBinaryExp(sel.Where.Pos(), calculus.OpAnd,
			renameIdns(calculus.Clone(sel.Where), renames), key)
	}

	var proj calculus.Exp
	if len(from) == 1 {
		proj = calculus.NewIdnExp(sel.Pos(), from[0].P.(*calculus.PatternIdn).Idn)
	} else {
		atts := make([]calculus.AttrCons, len(from))
		for i, g := range sel.From {
			atts[i] = calculus.AttrCons{
				Idn: genName(g, i),
				E:   calculus.NewIdnExp(sel.Pos(), from[i].P.(*calculus.PatternIdn).Idn),
			}
		}
		rec := &calculus.RecordCons{Atts: atts}
		rec.SetPos(sel.Pos())
		proj = rec
	}

	sub := &calculus.Select{From: from, Proj: proj, Where: where}
	sub.SetPos(sel.Pos())
	return sub
}

// replacePartitions substitutes every partition occurrence belonging to sel
// inside e by a fresh sub-query.
func replacePartitions(sem *Sem, sel *calculus.Select, e calculus.Exp, mk func() calculus.Exp) calculus.Exp {
	if e == nil {
		return nil
	}
	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		p, ok := n.(*calculus.Partition)
		if !ok {
			return n
		}
		if ent, ok := sem.EntityOf(p).(*PartitionEntity); ok && ent.Sel == sel {
			sub := mk()
			sub.SetPos(p.Pos())
			return sub
		}
		return n
	})
}

// renameIdns rewrites free identifier uses per the renames map.
func renameIdns(e calculus.Exp, renames map[string]string) calculus.Exp {
	if len(renames) == 0 {
		return e
	}
	return calculus.TransformUp(e, func(n calculus.Exp) calculus.Exp {
		if use, ok := n.(*calculus.IdnExp); ok {
			if fresh, ok := renames[use.Idn]; ok {
				return calculus.NewIdnExp(use.Pos(), fresh)
			}
		}
		return n
	})
}

// selReferencesStar reports whether any star of this select is still
// unexpanded (or not yet re-analyzed).
func selReferencesStar(sem *Sem, sel *calculus.Select) bool {
	blocked := false
	for _, part := range []calculus.Exp{sel.Proj, sel.Having} {
		if part == nil {
			continue
		}
		calculus.Inspect(part, func(n calculus.Exp) bool {
			if star, ok := n.(*calculus.Star); ok {
				ent, ok := sem.EntityOf(star).(*StarEntity)
				if !ok || ent.Sel == sel {
					blocked = true
				}
			}
			return !blocked
		})
	}
	return blocked
}

// selReferencesPartition reports whether any partition of this select is
// still present (or not yet re-analyzed).
func selReferencesPartition(sem *Sem, sel *calculus.Select) bool {
	blocked := false
	for _, part := range []calculus.Exp{sel.Proj, sel.Having} {
		if part == nil {
			continue
		}
		calculus.Inspect(part, func(n calculus.Exp) bool {
			if p, ok := n.(*calculus.Partition); ok {
				ent, ok := sem.EntityOf(p).(*PartitionEntity)
				if !ok || ent.Sel == sel {
					blocked = true
				}
			}
			return !blocked
		})
	}
	return blocked
}
