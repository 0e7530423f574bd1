package analyzer

import (
	"strings"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// expandStar replaces * with an explicit projection. Without group by, a
// single-generator star is the generator's variable and a multi-generator
// star flattens every generator's contribution into one record; name
// collisions get _k suffixes. With group by, a star denotes the rows of the
// current group: a single-generator star reduces to partition, a
// multi-generator star maps partition rows through the same flattening.
func expandStar(ctx *oql.Context, a *Analyzer, e calculus.Exp, sem *Sem) (calculus.Exp, error) {
	return rewriteTopDown(e, func(n calculus.Exp) calculus.Exp {
		star, ok := n.(*calculus.Star)
		if !ok {
			return n
		}
		ent, ok := sem.EntityOf(star).(*StarEntity)
		if !ok {
			// freshly rewritten star: handled after re-analysis
			return n
		}
		sel := ent.Sel
		for _, g := range sel.From {
			if _, named := g.P.(*calculus.PatternIdn); !named {
				// generators are named by resolveAliases first
				return n
			}
		}

		if sel.GroupBy == nil {
			if len(sel.From) == 1 {
				idn := sel.From[0].P.(*calculus.PatternIdn).Idn
				return calculus.NewIdnExp(star.Pos(), idn)
			}
			base := func(g *calculus.Gen, i int) calculus.Exp {
				return calculus.NewIdnExp(star.Pos(), g.P.(*calculus.PatternIdn).Idn)
			}
			return &calculus.RecordCons{Atts: starAtts(sem, sel, star.Pos(), base)}
		}

		part := &calculus.Partition{}
		part.SetPos(star.Pos())
		if len(sel.From) == 1 {
			return part
		}
		row := a.FreshIdn()
		base := func(g *calculus.Gen, i int) calculus.Exp {
			return calculus.NewRecordProj(star.Pos(),
				calculus.NewIdnExp(star.Pos(), row), genName(g, i))
		}
		rec := &calculus.RecordCons{Atts: starAtts(sem, sel, star.Pos(), base)}
		rec.SetPos(star.Pos())
		gen := calculus.NewGen(star.Pos(), calculus.NewPatternIdn(star.Pos(), row), part)
		return calculus.NewComp(star.Pos(), &oql.BagMonoid{}, []calculus.Qual{gen}, rec)
	}), nil
}

// starAtts computes the flattened star attributes of a multi-generator
// select. A user-named generator contributes itself under its name; a
// generator named by resolveAliases (its identifier carries the rewrite
// prefix) was anonymous, so it contributes its record's attributes.
func starAtts(sem *Sem, sel *calculus.Select, pos oql.Position, base func(*calculus.Gen, int) calculus.Exp) []calculus.AttrCons {
	var atts []calculus.AttrCons
	for i, g := range sel.From {
		idn := g.P.(*calculus.PatternIdn).Idn
		if !strings.HasPrefix(idn, "$") {
			atts = append(atts, calculus.AttrCons{Idn: idn, E: base(g, i)})
			continue
		}
		closed, ok := sem.asRecord(sem.GenElemType(g))
		if !ok {
			atts = append(atts, calculus.AttrCons{Idn: genName(g, i), E: base(g, i)})
			continue
		}
		for _, att := range closed.Atts {
			atts = append(atts, calculus.AttrCons{
				Idn: att.Idn,
				E:   calculus.NewRecordProj(pos, base(g, i), att.Idn),
			})
		}
	}
	return dedupeAttCons(atts)
}

// dedupeAttCons suffixes colliding attribute names with _k.
func dedupeAttCons(atts []calculus.AttrCons) []calculus.AttrCons {
	seen := make(map[string]int)
	out := make([]calculus.AttrCons, 0, len(atts))
	for _, att := range atts {
		n := seen[att.Idn]
		seen[att.Idn] = n + 1
		if n > 0 {
			att.Idn = att.Idn + "_" + itoa(n+1)
		}
		out = append(out, att)
	}
	return out
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}
