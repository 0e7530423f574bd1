package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
)

// generalize builds a type scheme over the variables created while typing a
// bind's expression: any variable symbol at or past the mark is free. A
// monomorphic type yields a nil scheme.
func (s *Sem) generalize(t oql.Type, mark int) *oql.TypeScheme {
	w := s.U.Walk(t)
	c := &schemeCollector{mark: mark, seen: make(map[oql.Symbol]struct{})}
	c.collectType(w)
	if len(c.typeSyms)+len(c.monoidSyms)+len(c.attSyms) == 0 {
		return nil
	}
	return &oql.TypeScheme{
		T:              w,
		FreeTypeSyms:   c.typeSyms,
		FreeMonoidSyms: c.monoidSyms,
		FreeAttSyms:    c.attSyms,
	}
}

type schemeCollector struct {
	mark       int
	seen       map[oql.Symbol]struct{}
	typeSyms   []oql.Symbol
	monoidSyms []oql.Symbol
	attSyms    []oql.Symbol
}

func (c *schemeCollector) fresh(sym oql.Symbol) bool {
	if sym.Num < c.mark {
		return false
	}
	if _, dup := c.seen[sym]; dup {
		return false
	}
	c.seen[sym] = struct{}{}
	return true
}

func (c *schemeCollector) collectType(t oql.Type) {
	switch t := t.(type) {
	case *oql.TypeVariable:
		if c.fresh(t.Sym) {
			c.typeSyms = append(c.typeSyms, t.Sym)
		}
	case *oql.NumberType:
		if c.fresh(t.Sym) {
			c.typeSyms = append(c.typeSyms, t.Sym)
		}
	case *oql.PrimitiveType:
		if c.fresh(t.Sym) {
			c.typeSyms = append(c.typeSyms, t.Sym)
		}
	case *oql.CollectionType:
		if mv, ok := t.M.(*oql.MonoidVariable); ok && c.fresh(mv.Sym) {
			c.monoidSyms = append(c.monoidSyms, mv.Sym)
		}
		c.collectType(t.Inner)
	case *oql.FunType:
		c.collectType(t.Param)
		c.collectType(t.Result)
	case *oql.PatternType:
		for _, a := range t.Atts {
			c.collectType(a)
		}
	case *oql.RecordType:
		switch atts := t.Atts.(type) {
		case *oql.Attributes:
			for _, att := range atts.Atts {
				c.collectType(att.Type)
			}
		case *oql.AttributesVariable:
			if c.fresh(atts.Sym) {
				c.attSyms = append(c.attSyms, atts.Sym)
			}
			for _, att := range atts.Atts {
				c.collectType(att.Type)
			}
		case *oql.ConcatAttributes:
			if c.fresh(atts.Sym) {
				c.attSyms = append(c.attSyms, atts.Sym)
			}
		}
	}
}

// instantiate freshens a scheme's free symbols and returns the resulting
// type. Fresh monoid variables inherit a copy of the originals' bounds.
func (s *Sem) instantiate(scheme *oql.TypeScheme) oql.Type {
	inst := &instantiator{
		sem:     s,
		types:   make(map[oql.Symbol]oql.Type),
		monoids: make(map[oql.Symbol]*oql.MonoidVariable),
		atts:    make(map[oql.Symbol]oql.Symbol),
	}
	for _, sym := range scheme.FreeTypeSyms {
		inst.freeTypes = appendSymSet(inst.freeTypes, sym)
	}
	for _, sym := range scheme.FreeMonoidSyms {
		inst.freeMonoids = appendSymSet(inst.freeMonoids, sym)
	}
	for _, sym := range scheme.FreeAttSyms {
		inst.freeAtts = appendSymSet(inst.freeAtts, sym)
	}
	return inst.cloneType(scheme.T)
}

func appendSymSet(set map[oql.Symbol]struct{}, sym oql.Symbol) map[oql.Symbol]struct{} {
	if set == nil {
		set = make(map[oql.Symbol]struct{})
	}
	set[sym] = struct{}{}
	return set
}

type instantiator struct {
	sem         *Sem
	freeTypes   map[oql.Symbol]struct{}
	freeMonoids map[oql.Symbol]struct{}
	freeAtts    map[oql.Symbol]struct{}
	types       map[oql.Symbol]oql.Type
	monoids     map[oql.Symbol]*oql.MonoidVariable
	atts        map[oql.Symbol]oql.Symbol
}

func (in *instantiator) freeType(sym oql.Symbol) bool {
	_, ok := in.freeTypes[sym]
	return ok
}

func (in *instantiator) cloneType(t oql.Type) oql.Type {
	switch t := t.(type) {
	case *oql.TypeVariable:
		if !in.freeType(t.Sym) {
			return t
		}
		if cached, ok := in.types[t.Sym]; ok {
			return cached
		}
		fresh := in.sem.freshVar()
		in.types[t.Sym] = fresh
		return fresh
	case *oql.NumberType:
		if !in.freeType(t.Sym) {
			return t
		}
		if cached, ok := in.types[t.Sym]; ok {
			return cached
		}
		fresh := in.sem.freshNumber()
		in.types[t.Sym] = fresh
		return fresh
	case *oql.PrimitiveType:
		if !in.freeType(t.Sym) {
			return t
		}
		if cached, ok := in.types[t.Sym]; ok {
			return cached
		}
		fresh := in.sem.freshPrimitive()
		in.types[t.Sym] = fresh
		return fresh
	case *oql.CollectionType:
		return &oql.CollectionType{M: in.cloneMonoid(t.M), Inner: in.cloneType(t.Inner)}
	case *oql.FunType:
		return &oql.FunType{Param: in.cloneType(t.Param), Result: in.cloneType(t.Result)}
	case *oql.PatternType:
		atts := make([]oql.Type, len(t.Atts))
		for i, a := range t.Atts {
			atts[i] = in.cloneType(a)
		}
		return &oql.PatternType{Atts: atts}
	case *oql.RecordType:
		return &oql.RecordType{Atts: in.cloneAtts(t.Atts)}
	default:
		// primitives and user types carry no variables
		return t
	}
}

func (in *instantiator) cloneMonoid(m oql.Monoid) oql.Monoid {
	mv, ok := m.(*oql.MonoidVariable)
	if !ok {
		return m
	}
	if _, free := in.freeMonoids[mv.Sym]; !free {
		return mv
	}
	if cached, ok := in.monoids[mv.Sym]; ok {
		return cached
	}
	fresh := in.sem.freshMonoidVar()
	in.sem.U.Graph.CloneBounds(fresh, mv.Sym)
	in.monoids[mv.Sym] = fresh
	return fresh
}

func (in *instantiator) cloneAtts(a oql.RecordAttributes) oql.RecordAttributes {
	switch a := a.(type) {
	case *oql.Attributes:
		atts := make([]oql.AttrType, len(a.Atts))
		for i, att := range a.Atts {
			atts[i] = oql.AttrType{Idn: att.Idn, Type: in.cloneType(att.Type)}
		}
		return &oql.Attributes{Atts: atts}
	case *oql.AttributesVariable:
		atts := make([]oql.AttrType, len(a.Atts))
		for i, att := range a.Atts {
			atts[i] = oql.AttrType{Idn: att.Idn, Type: in.cloneType(att.Type)}
		}
		sym := a.Sym
		if _, free := in.freeAtts[a.Sym]; free {
			cached, ok := in.atts[a.Sym]
			if !ok {
				cached = in.sem.Syms.Fresh("atts")
				in.atts[a.Sym] = cached
			}
			sym = cached
		}
		return &oql.AttributesVariable{Atts: atts, Sym: sym}
	default:
		return a
	}
}
