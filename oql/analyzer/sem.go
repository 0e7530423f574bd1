package analyzer

import (
	"fmt"
	"regexp"

	"github.com/oqlc/go-oql-compiler/internal/similartext"
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// Sem holds the semantic analysis of one tree: the entity of every
// identifier, the type of every expression, and the accumulated errors. A
// Sem owns its unifier and symbol registry; analyses of rewritten trees use
// fresh Sem values.
type Sem struct {
	World *oql.World
	Syms  *oql.SymbolRegistry
	U     *oql.Unifier
	Errs  *oql.Errors

	entities map[calculus.Exp]Entity
	defs     map[*calculus.PatternIdn]Entity
	live     map[calculus.Exp]oql.Type
	walked   map[calculus.Exp]oql.Type
	genElem  map[*calculus.Gen]oql.Type
	selMon   map[*calculus.Select]oql.Monoid

	root calculus.Exp
}

// NewSem creates an analysis over the given catalog.
func NewSem(world *oql.World) *Sem {
	syms := oql.NewSymbolRegistry()
	return &Sem{
		World:    world,
		Syms:     syms,
		U:        oql.NewUnifier(world, syms),
		Errs:     oql.NewErrors(),
		entities: make(map[calculus.Exp]Entity),
		defs:     make(map[*calculus.PatternIdn]Entity),
		live:     make(map[calculus.Exp]oql.Type),
		walked:   make(map[calculus.Exp]oql.Type),
		genElem:  make(map[*calculus.Gen]oql.Type),
		selMon:   make(map[*calculus.Select]oql.Monoid),
	}
}

// Analyze resolves and types the tree, then snapshots walked types and
// propagates nullability. Errors accumulate in Errs.
func (s *Sem) Analyze(root calculus.Exp) {
	s.root = root
	s.exprType(root, newFrames())
	for e, t := range s.live {
		s.walked[e] = s.U.Walk(t)
	}
	s.propagateNullability(root)
}

// Type returns the walked, nullability-annotated type of the whole tree.
func (s *Sem) Type() oql.Type {
	return s.walked[s.root]
}

// TypeOf returns the walked type of a node, or nil for nodes the analysis
// never reached.
func (s *Sem) TypeOf(e calculus.Exp) oql.Type {
	return s.walked[e]
}

// EntityOf returns the entity of an identifier use, partition or star node.
func (s *Sem) EntityOf(e calculus.Exp) Entity {
	return s.entities[e]
}

// GenElemType returns the element type of a generator's source collection.
func (s *Sem) GenElemType(g *calculus.Gen) oql.Type {
	if t, ok := s.genElem[g]; ok {
		return s.U.Walk(t)
	}
	return nil
}

// SelectMonoid returns the output monoid of a select: list when ordered, set
// when distinct, else a per-select monoid variable.
func (s *Sem) SelectMonoid(sel *calculus.Select) oql.Monoid {
	if m, ok := s.selMon[sel]; ok {
		return m
	}
	var m oql.Monoid
	switch {
	case sel.OrderBy != nil:
		m = &oql.ListMonoid{}
	case sel.Distinct:
		m = &oql.SetMonoid{}
	default:
		m = &oql.MonoidVariable{Sym: s.Syms.Fresh("m")}
	}
	s.selMon[sel] = m
	return m
}

func (s *Sem) errorf(kind oql.ErrorKind, pos oql.Position, format string, args ...interface{}) {
	s.Errs.Add(oql.NewError(kind, fmt.Sprintf(format, args...), pos))
}

// reportUnify turns a unification failure into a positioned error.
func (s *Sem) reportUnify(err error, pos oql.Position) {
	switch {
	case oql.ErrIncompatibleMonoids.Is(err):
		s.Errs.Add(oql.NewError(oql.IncompatibleMonoids, err.Error(), pos))
	case oql.ErrInternal.Is(err):
		s.Errs.Add(oql.NewError(oql.InternalError, err.Error(), pos))
	default:
		s.Errs.Add(oql.NewError(oql.IncompatibleTypes, err.Error(), pos))
	}
}

// unify wraps Unifier.Unify with error reporting; on failure both sides are
// additionally unified with any so dependent constraints keep going.
func (s *Sem) unify(t1, t2 oql.Type, pos oql.Position) bool {
	if err := s.U.Unify(t1, t2); err != nil {
		s.reportUnify(err, pos)
		_ = s.U.Unify(t1, &oql.AnyType{})
		_ = s.U.Unify(t2, &oql.AnyType{})
		return false
	}
	return true
}

func (s *Sem) freshVar() *oql.TypeVariable {
	return &oql.TypeVariable{Sym: s.Syms.Fresh("t")}
}

func (s *Sem) freshNumber() *oql.NumberType {
	return &oql.NumberType{Sym: s.Syms.Fresh("n")}
}

func (s *Sem) freshPrimitive() *oql.PrimitiveType {
	return &oql.PrimitiveType{Sym: s.Syms.Fresh("p")}
}

func (s *Sem) freshMonoidVar() *oql.MonoidVariable {
	return &oql.MonoidVariable{Sym: s.Syms.Fresh("m")}
}

// define installs a binding, reporting a MultipleDecl when the identifier is
// already visible.
func (s *Sem) define(fr *frames, idn string, ent Entity, pos oql.Position) Entity {
	if _, exists := fr.vars.lookup(idn); exists {
		s.errorf(oql.MultipleDecl, pos, "%s is declared more than once", idn)
		ent = &MultipleEntity{Idn: idn}
	}
	fr.vars.vals[idn] = ent
	return ent
}

// defineAlias installs an attribute injected by an anonymous generator or an
// into. Colliding with another injected attribute makes the name ambiguous
// rather than doubly declared.
func (s *Sem) defineAlias(fr *frames, idn string, ent Entity, pos oql.Position) {
	if old, exists := fr.vars.lookup(idn); exists {
		switch old.(type) {
		case *GenAttributeEntity, *IntoAttributeEntity, *MultipleEntity:
			s.errorf(oql.AmbiguousIdn, pos, "%s is ambiguous", idn)
		default:
			s.errorf(oql.MultipleDecl, pos, "%s is declared more than once", idn)
		}
		fr.vars.vals[idn] = &MultipleEntity{Idn: idn}
		return
	}
	fr.vars.vals[idn] = ent
}

// bindPattern types a pattern against the type of the value it destructures.
func (s *Sem) bindPattern(p calculus.Pattern, t oql.Type, fr *frames) {
	switch p := p.(type) {
	case *calculus.PatternIdn:
		ent := s.define(fr, p.Idn, &VariableEntity{Idn: p.Idn, T: t}, p.Pos())
		s.defs[p] = ent
	case *calculus.PatternProd:
		// A product destructures either a pattern type (function parameters)
		// or a record, positionally. Unconstrained values are pinned to a
		// tuple record with _k attributes.
		switch w := s.U.Walk(t).(type) {
		case *oql.PatternType:
			if len(w.Atts) != len(p.Ps) {
				s.errorf(oql.PatternMismatch, p.Pos(),
					"pattern %s does not match expression of type %s", p, w)
				return
			}
			for i, sub := range p.Ps {
				s.bindPattern(sub, w.Atts[i], fr)
			}
		case *oql.RecordType, *oql.UserType:
			atts, ok := s.asRecord(w)
			if !ok || len(atts.Atts) != len(p.Ps) {
				s.errorf(oql.PatternMismatch, p.Pos(),
					"pattern %s does not match expression of type %s", p, w)
				return
			}
			for i, sub := range p.Ps {
				s.bindPattern(sub, atts.Atts[i].Type, fr)
			}
		default:
			recAtts := make([]oql.AttrType, len(p.Ps))
			for i := range p.Ps {
				recAtts[i] = oql.AttrType{Idn: tupleAtt(i), Type: s.freshVar()}
			}
			rec := &oql.RecordType{Atts: &oql.Attributes{Atts: recAtts}}
			if err := s.U.Unify(t, rec); err != nil {
				s.errorf(oql.PatternMismatch, p.Pos(),
					"pattern %s does not match expression of type %s", p, s.U.Walk(t))
				return
			}
			for i, sub := range p.Ps {
				s.bindPattern(sub, recAtts[i].Type, fr)
			}
		}
	}
}

// tupleAtt names the i-th attribute of a tuple record.
func tupleAtt(i int) string {
	return fmt.Sprintf("_%d", i+1)
}

// asRecord resolves a walked type to a record with closed attributes,
// looking through user type definitions. The visited set stops cyclic
// definitions.
func (s *Sem) asRecord(t oql.Type) (*oql.Attributes, bool) {
	seen := make(map[oql.Symbol]bool)
	for t != nil {
		switch w := t.(type) {
		case *oql.RecordType:
			atts, ok := w.Atts.(*oql.Attributes)
			return atts, ok
		case *oql.UserType:
			if seen[w.Sym] {
				return nil, false
			}
			seen[w.Sym] = true
			def, ok := s.World.UserType(w.Sym)
			if !ok {
				return nil, false
			}
			t = s.U.Walk(def)
		default:
			return nil, false
		}
	}
	return nil, false
}

// exprType resolves and types one expression, solving its constraints
// eagerly. The computed type is recorded before returning.
func (s *Sem) exprType(e calculus.Exp, fr *frames) oql.Type {
	t := s.exprType0(e, fr)
	s.live[e] = t
	return t
}

func (s *Sem) exprType0(e calculus.Exp, fr *frames) oql.Type {
	switch e := e.(type) {
	case *calculus.BoolConst:
		return &oql.BoolType{}
	case *calculus.IntConst:
		return &oql.IntType{}
	case *calculus.FloatConst:
		return &oql.FloatType{}
	case *calculus.StringConst:
		return &oql.StringType{}
	case *calculus.RegexConst:
		if _, err := regexp.Compile(e.Value); err != nil {
			s.errorf(oql.InvalidRegexSyntax, e.Pos(), "invalid regular expression: %s", err)
		}
		return &oql.RegexType{}
	case *calculus.Null:
		t := s.freshVar()
		t.SetNullable(true)
		return t

	case *calculus.IdnExp:
		return s.idnType(e, e.Idn, fr)
	case *calculus.VariablePath:
		return s.idnType(e, e.Idn, fr)

	case *calculus.RecordProj:
		return s.projType(e.E, e.Idn, fr, e.Pos())
	case *calculus.InnerPath:
		return s.projType(e.P, e.Field, fr, e.Pos())

	case *calculus.RecordCons:
		atts := make([]oql.AttrType, 0, len(e.Atts))
		seen := make(map[string]struct{})
		for _, att := range e.Atts {
			if _, dup := seen[att.Idn]; dup {
				s.errorf(oql.MultipleDecl, e.Pos(), "attribute %s is declared more than once", att.Idn)
			}
			seen[att.Idn] = struct{}{}
			atts = append(atts, oql.AttrType{Idn: att.Idn, Type: s.exprType(att.E, fr)})
		}
		return &oql.RecordType{Atts: &oql.Attributes{Atts: atts}}

	case *calculus.IfThenElse:
		s.unify(s.exprType(e.Cond, fr), &oql.BoolType{}, e.Cond.Pos())
		thenT := s.exprType(e.Then, fr)
		elseT := s.exprType(e.Else, fr)
		s.unify(thenT, elseT, e.Pos())
		return thenT

	case *calculus.BinaryExp:
		lt := s.exprType(e.Left, fr)
		rt := s.exprType(e.Right, fr)
		switch {
		case e.Op == calculus.OpEq || e.Op == calculus.OpNeq:
			s.unify(lt, rt, e.Pos())
			return &oql.BoolType{}
		case e.Op.IsComparison():
			s.unify(lt, rt, e.Pos())
			s.unify(lt, s.freshPrimitive(), e.Pos())
			return &oql.BoolType{}
		case e.Op.IsBoolean():
			s.unify(lt, &oql.BoolType{}, e.Left.Pos())
			s.unify(rt, &oql.BoolType{}, e.Right.Pos())
			return &oql.BoolType{}
		default:
			s.unify(lt, rt, e.Pos())
			s.unify(lt, s.freshNumber(), e.Pos())
			return lt
		}

	case *calculus.UnaryExp:
		t := s.exprType(e.E, fr)
		switch e.Op {
		case calculus.OpNot:
			s.unify(t, &oql.BoolType{}, e.E.Pos())
			return &oql.BoolType{}
		case calculus.OpNeg:
			s.unify(t, s.freshNumber(), e.E.Pos())
			return t
		default:
			inner := s.freshVar()
			s.unify(t, &oql.CollectionType{M: s.freshMonoidVar(), Inner: inner}, e.E.Pos())
			var m oql.CollectionMonoid
			switch e.Op {
			case calculus.OpToSet:
				m = &oql.SetMonoid{}
			case calculus.OpToBag:
				m = &oql.BagMonoid{}
			default:
				m = &oql.ListMonoid{}
			}
			return &oql.CollectionType{M: m, Inner: inner}
		}

	case *calculus.MergeMonoid:
		lt := s.exprType(e.Left, fr)
		rt := s.exprType(e.Right, fr)
		s.unify(lt, rt, e.Pos())
		s.constrainMonoidDomain(e.M, lt, e.Pos())
		return lt

	case *calculus.ZeroCollectionMonoid:
		return &oql.CollectionType{M: e.M, Inner: s.freshVar()}

	case *calculus.ConsCollectionMonoid:
		return &oql.CollectionType{M: e.M, Inner: s.exprType(e.E, fr)}

	case *calculus.MultiCons:
		elem := s.freshVar()
		var t oql.Type = elem
		for _, x := range e.Exps {
			s.unify(s.exprType(x, fr), t, x.Pos())
		}
		return &oql.CollectionType{M: e.M, Inner: elem}

	case *calculus.Comp:
		inner := fr.push()
		for _, q := range e.Quals {
			s.qualType(q, e.M, inner)
		}
		return s.compType(e.M, s.exprType(e.E, inner), e.Pos())

	case *calculus.CanonComp:
		// canonical generators draw from paths with the monoid conversions
		// stripped; the bound was checked before canonicalization
		inner := fr.push()
		for _, g := range e.Gens {
			s.genTypeNoBound(g, inner)
		}
		s.unify(s.exprType(e.Pred, inner), &oql.BoolType{}, e.Pred.Pos())
		return s.compType(e.M, s.exprType(e.E, inner), e.Pos())

	case *calculus.Select:
		return s.selectType(e, fr)

	case *calculus.Partition:
		if fr.partition == nil {
			s.errorf(oql.UnknownPartition, e.Pos(),
				"partition is only valid in the projection of a select with group by")
			return &oql.AnyType{}
		}
		t := s.selectPartitionType(fr.partition)
		s.entities[e] = &PartitionEntity{Sel: fr.partition, T: t}
		return t

	case *calculus.Star:
		if fr.star == nil {
			s.errorf(oql.UnknownStar, e.Pos(), "* is only valid in the projection of a select")
			return &oql.AnyType{}
		}
		t := s.selectStarType(fr.star)
		s.entities[e] = &StarEntity{Sel: fr.star, T: t}
		return t

	case *calculus.FunAbs:
		inner := fr.push()
		param := s.patternParamType(e.P, inner)
		body := s.exprType(e.Body, inner)
		return &oql.FunType{Param: param, Result: body}

	case *calculus.FunApp:
		return s.funAppType(e, fr)

	case *calculus.ExpBlock:
		inner := fr.push()
		for _, b := range e.Binds {
			s.bindQual(b, inner)
		}
		return s.exprType(e.E, inner)

	case *calculus.Into:
		lt := s.exprType(e.Left, fr)
		inner := fr.push()
		rec, ok := s.U.Walk(lt).(*oql.RecordType)
		if !ok {
			s.errorf(oql.UnexpectedType, e.Left.Pos(),
				"unexpected type: got %s, expected a record", s.U.Walk(lt))
		} else if atts, ok := s.U.FindAtts(rec.Atts).(*oql.Attributes); ok {
			for i, att := range atts.Atts {
				s.defineAlias(inner, att.Idn, &IntoAttributeEntity{Att: att, Into: e, Index: i}, e.Pos())
			}
		}
		return s.exprType(e.Right, inner)

	case *calculus.Sum:
		return s.numericAggType(e.E, fr, e.Pos())
	case *calculus.Max:
		return s.numericAggType(e.E, fr, e.Pos())
	case *calculus.Min:
		return s.numericAggType(e.E, fr, e.Pos())
	case *calculus.Avg:
		return s.numericAggType(e.E, fr, e.Pos())

	case *calculus.Count:
		inner := s.freshVar()
		s.unify(s.exprType(e.E, fr), &oql.CollectionType{M: s.freshMonoidVar(), Inner: inner}, e.E.Pos())
		return &oql.IntType{}

	case *calculus.Exists:
		inner := s.freshVar()
		s.unify(s.exprType(e.E, fr), &oql.CollectionType{M: s.freshMonoidVar(), Inner: inner}, e.E.Pos())
		return &oql.BoolType{}

	case *calculus.In:
		elem := s.freshVar()
		s.unify(s.exprType(e.Right, fr), &oql.CollectionType{M: s.freshMonoidVar(), Inner: elem}, e.Right.Pos())
		s.unify(s.exprType(e.Left, fr), elem, e.Left.Pos())
		return &oql.BoolType{}
	}

	s.errorf(oql.InternalError, e.Pos(), "internal error: cannot type %T", e)
	return &oql.AnyType{}
}

// idnType resolves an identifier use: declarations first, then the catalog.
func (s *Sem) idnType(e calculus.Exp, idn string, fr *frames) oql.Type {
	if ent, ok := fr.vars.lookup(idn); ok {
		s.entities[e] = ent
		switch ent := ent.(type) {
		case *VariableEntity:
			if ent.Scheme != nil {
				return s.instantiate(ent.Scheme)
			}
			return ent.T
		case *DataSourceEntity:
			return ent.T
		case *GenAttributeEntity:
			return ent.Att.Type
		case *IntoAttributeEntity:
			return ent.Att.Type
		case *MultipleEntity:
			return &oql.AnyType{}
		}
		return &oql.AnyType{}
	}
	if t, ok := s.World.Source(idn); ok {
		s.entities[e] = &DataSourceEntity{Name: idn, T: t}
		return t
	}
	s.entities[e] = &UnknownEntity{Idn: idn}
	candidates := append(fr.vars.names(), s.World.SourceNames()...)
	s.errorf(oql.UnknownDecl, e.Pos(), "%s is not declared%s",
		idn, similartext.Find(candidates, idn))
	return &oql.AnyType{}
}

// projType types a record projection through a row-polymorphic constraint:
// the source must be some record containing the field.
func (s *Sem) projType(src calculus.Exp, field string, fr *frames, pos oql.Position) oql.Type {
	t := s.exprType(src, fr)
	out := s.freshVar()
	constraint := &oql.RecordType{Atts: &oql.AttributesVariable{
		Atts: []oql.AttrType{{Idn: field, Type: out}},
		Sym:  s.Syms.Fresh("atts"),
	}}
	if err := s.U.Unify(t, constraint); err != nil {
		s.errorf(oql.UnexpectedType, pos,
			"unexpected type: got %s, expected a record with attribute %s", s.U.Walk(t), field)
		return &oql.AnyType{}
	}
	return out
}

// qualType types one comprehension qualifier.
func (s *Sem) qualType(q calculus.Qual, m oql.Monoid, fr *frames) {
	switch q := q.(type) {
	case *calculus.Gen:
		s.genType(q, m, fr)
	case *calculus.Bind:
		s.bindQual(q, fr)
	case *calculus.Pred:
		s.unify(s.exprType(q.E, fr), &oql.BoolType{}, q.E.Pos())
	}
}

// genType types a generator: its source must be a collection whose monoid is
// bounded by the comprehension's, and its pattern binds the element type. An
// anonymous generator instead injects the element record's attributes.
func (s *Sem) genType(g *calculus.Gen, m oql.Monoid, fr *frames) {
	s.genType0(g, m, true, fr)
}

// genTypeNoBound types a canonical generator, whose monoid bound was checked
// before the canonicalizer stripped the conversions off its path.
func (s *Sem) genTypeNoBound(g *calculus.Gen, fr *frames) {
	s.genType0(g, nil, false, fr)
}

func (s *Sem) genType0(g *calculus.Gen, m oql.Monoid, bound bool, fr *frames) {
	t := s.exprType(g.E, fr)
	mv := s.freshMonoidVar()
	elem := s.freshVar()
	if !s.unify(t, &oql.CollectionType{M: mv, Inner: elem}, g.E.Pos()) {
		s.genElem[g] = elem
		return
	}
	if bound {
		if err := s.U.BoundMonoid(m, mv); err != nil {
			s.Errs.Add(oql.NewError(oql.IncompatibleMonoids,
				fmt.Sprintf("monoid %s incompatible with %s", monoidName(s.U.FindMonoid(m)), s.U.Walk(t)),
				g.Pos()))
		}
	}
	s.genElem[g] = elem

	if g.P != nil {
		s.bindPattern(g.P, elem, fr)
		return
	}
	atts, ok := s.asRecord(s.U.Walk(elem))
	if !ok {
		s.errorf(oql.UnexpectedType, g.Pos(),
			"unexpected type: got %s, expected a collection of records for an anonymous generator",
			s.U.Walk(t))
		return
	}
	for i, att := range atts.Atts {
		s.defineAlias(fr, att.Idn, &GenAttributeEntity{Att: att, Gen: g, Index: i}, g.Pos())
	}
}

func monoidName(m oql.Monoid) string { return m.String() }

// bindQual types a bind qualifier with let-generalization: variables fresh
// to the bound expression become the free symbols of a type scheme.
func (s *Sem) bindQual(b *calculus.Bind, fr *frames) {
	mark := s.Syms.Mark()
	t := s.exprType(b.E, fr)

	if p, ok := b.P.(*calculus.PatternIdn); ok {
		scheme := s.generalize(t, mark)
		ent := &VariableEntity{Idn: p.Idn, T: t, Scheme: scheme}
		s.defs[p] = s.define(fr, p.Idn, ent, p.Pos())
		return
	}
	s.bindPattern(b.P, t, fr)
}

// compType computes the type of a comprehension from its monoid and the type
// of its yield.
func (s *Sem) compType(m oql.Monoid, body oql.Type, pos oql.Position) oql.Type {
	switch m.(type) {
	case *oql.SumMonoid, *oql.MultiplyMonoid, *oql.MaxMonoid, *oql.MinMonoid:
		s.unify(body, s.freshNumber(), pos)
		return body
	case *oql.AndMonoid, *oql.OrMonoid:
		s.unify(body, &oql.BoolType{}, pos)
		return &oql.BoolType{}
	default:
		return &oql.CollectionType{M: m, Inner: body}
	}
}

// constrainMonoidDomain ties a merge's operand type to its monoid.
func (s *Sem) constrainMonoidDomain(m oql.Monoid, t oql.Type, pos oql.Position) {
	switch m.(type) {
	case *oql.SumMonoid, *oql.MultiplyMonoid, *oql.MaxMonoid, *oql.MinMonoid:
		s.unify(t, s.freshNumber(), pos)
	case *oql.AndMonoid, *oql.OrMonoid:
		s.unify(t, &oql.BoolType{}, pos)
	default:
		s.unify(t, &oql.CollectionType{M: m, Inner: s.freshVar()}, pos)
	}
}

func (s *Sem) numericAggType(e calculus.Exp, fr *frames, pos oql.Position) oql.Type {
	num := s.freshNumber()
	s.unify(s.exprType(e, fr), &oql.CollectionType{M: s.freshMonoidVar(), Inner: num}, pos)
	return num
}

// patternParamType derives a function parameter type from its pattern.
func (s *Sem) patternParamType(p calculus.Pattern, fr *frames) oql.Type {
	switch p := p.(type) {
	case *calculus.PatternIdn:
		t := s.freshVar()
		s.defs[p] = s.define(fr, p.Idn, &VariableEntity{Idn: p.Idn, T: t}, p.Pos())
		return t
	case *calculus.PatternProd:
		atts := make([]oql.Type, len(p.Ps))
		for i, sub := range p.Ps {
			atts[i] = s.patternParamType(sub, fr)
		}
		return &oql.PatternType{Atts: atts}
	}
	return &oql.AnyType{}
}

// funAppType types a function application. When the function expects a
// pattern and the argument is a closed record, the record's attribute types
// are matched positionally against the pattern's.
func (s *Sem) funAppType(e *calculus.FunApp, fr *frames) oql.Type {
	ft := s.exprType(e.F, fr)
	at := s.exprType(e.E, fr)
	out := s.freshVar()
	param := s.freshVar()
	if !s.unify(ft, &oql.FunType{Param: param, Result: out}, e.F.Pos()) {
		return out
	}

	if pt, ok := s.U.Find(param).(*oql.PatternType); ok {
		if rec, ok := s.U.Walk(at).(*oql.RecordType); ok {
			if atts, ok := rec.Atts.(*oql.Attributes); ok {
				if len(atts.Atts) != len(pt.Atts) {
					s.errorf(oql.PatternMismatch, e.E.Pos(),
						"pattern does not match expression of type %s", rec)
					return out
				}
				for i, att := range atts.Atts {
					s.unify(pt.Atts[i], att.Type, e.E.Pos())
				}
				return out
			}
		}
	}
	s.unify(at, param, e.E.Pos())
	return out
}
