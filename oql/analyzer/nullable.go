package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// propagateNullability runs after base typing succeeded. It walks the tree
// bottom-up and marks a node's walked type nullable when the values it is
// computed from may be null.
func (s *Sem) propagateNullability(root calculus.Exp) {
	s.nullOf(root)
}

func (s *Sem) nullOf(e calculus.Exp) bool {
	null := s.nullOf0(e)
	if t := s.walked[e]; t != nil {
		if null {
			t.SetNullable(true)
		} else {
			null = t.Nullable()
		}
	}
	return null
}

func (s *Sem) nullOf0(e calculus.Exp) bool {
	switch e := e.(type) {
	case *calculus.Null:
		return true
	case *calculus.BoolConst, *calculus.IntConst, *calculus.FloatConst,
		*calculus.StringConst, *calculus.RegexConst:
		return false
	case *calculus.IdnExp:
		t := s.walked[e]
		return t != nil && t.Nullable()
	case *calculus.RecordProj:
		return s.nullOf(e.E)
	case *calculus.FunAbs:
		s.nullOf(e.Body)
		return false
	case *calculus.Comp:
		null := false
		for _, q := range e.Quals {
			switch q := q.(type) {
			case *calculus.Gen:
				null = s.nullOf(q.E) || null
			case *calculus.Bind:
				s.nullOf(q.E)
			case *calculus.Pred:
				s.nullOf(q.E)
			}
		}
		return s.nullOf(e.E) || null
	case *calculus.CanonComp:
		null := false
		for _, g := range e.Gens {
			null = s.nullOf(g.E) || null
		}
		s.nullOf(e.Pred)
		return s.nullOf(e.E) || null
	case *calculus.Select:
		null := false
		for _, g := range e.From {
			null = s.nullOf(g.E) || null
		}
		for _, c := range []calculus.Exp{e.Where, e.GroupBy, e.OrderBy, e.Having} {
			if c != nil {
				s.nullOf(c)
			}
		}
		return s.nullOf(e.Proj) || null
	default:
		null := false
		for _, child := range e.Children() {
			null = s.nullOf(child) || null
		}
		return null
	}
}
