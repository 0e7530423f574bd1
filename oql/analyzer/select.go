package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// selectType types a select. The from generators open the scope, the
// projection additionally sees * and, when grouped, partition.
func (s *Sem) selectType(sel *calculus.Select, fr *frames) oql.Type {
	inner := fr.push()
	m := s.SelectMonoid(sel)
	for _, g := range sel.From {
		s.genType(g, m, inner)
	}
	if sel.Where != nil {
		s.unify(s.exprType(sel.Where, inner), &oql.BoolType{}, sel.Where.Pos())
	}
	if sel.GroupBy != nil {
		s.exprType(sel.GroupBy, inner)
	}
	if sel.OrderBy != nil {
		s.exprType(sel.OrderBy, inner)
	}

	if sel.GroupBy == nil {
		if _, sole := sel.Proj.(*calculus.Star); !sole && calculus.Contains(sel.Proj, isStar) {
			s.errorf(oql.IllegalStar, sel.Proj.Pos(),
				"* cannot be combined with other projections without group by")
		}
	}

	pfr := inner.proj(sel)
	projT := s.exprType(sel.Proj, pfr)
	if sel.Having != nil {
		s.unify(s.exprType(sel.Having, pfr), &oql.BoolType{}, sel.Having.Pos())
	}
	return &oql.CollectionType{M: m, Inner: projT}
}

func isStar(e calculus.Exp) bool {
	_, ok := e.(*calculus.Star)
	return ok
}

// genName is the attribute name a generator contributes to partition and
// star records: its pattern identifier, or _k for anonymous and product
// patterns.
func genName(g *calculus.Gen, index int) string {
	if p, ok := g.P.(*calculus.PatternIdn); ok {
		return p.Idn
	}
	return tupleAtt(index)
}

// selectPartitionType is the type of partition inside the select's
// projection: the bag of rows of the current group.
func (s *Sem) selectPartitionType(sel *calculus.Select) oql.Type {
	if len(sel.From) == 1 {
		return &oql.CollectionType{M: &oql.BagMonoid{}, Inner: s.genElem[sel.From[0]]}
	}
	atts := make([]oql.AttrType, len(sel.From))
	for i, g := range sel.From {
		atts[i] = oql.AttrType{Idn: genName(g, i), Type: s.genElem[g]}
	}
	return &oql.CollectionType{
		M:     &oql.BagMonoid{},
		Inner: &oql.RecordType{Atts: &oql.Attributes{Atts: atts}},
	}
}

// selectStarType is the type of * inside the select's projection. With
// several generators the row type is a concat record: each generator
// contributes either one attribute (named patterns) or its record's
// attributes (anonymous generators), resolved once the element types are.
func (s *Sem) selectStarType(sel *calculus.Select) oql.Type {
	grouped := sel.GroupBy != nil
	if len(sel.From) == 1 {
		elem := s.genElem[sel.From[0]]
		if grouped {
			return &oql.CollectionType{M: &oql.BagMonoid{}, Inner: elem}
		}
		return elem
	}

	slots := make([]oql.ConcatSlot, len(sel.From))
	for i, g := range sel.From {
		slot := oql.ConcatSlot{T: s.genElem[g]}
		if p, ok := g.P.(*calculus.PatternIdn); ok {
			slot.Prefix = p.Idn
		}
		slots[i] = slot
	}
	row := &oql.RecordType{Atts: s.U.DefineConcat(slots)}
	if grouped {
		return &oql.CollectionType{M: &oql.BagMonoid{}, Inner: row}
	}
	return row
}
