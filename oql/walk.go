package oql

// Walk reconstructs the most resolved form of t: every position is replaced
// by its group's preferred representative (user types first, then concrete
// types, then constrained variables) and children are walked recursively.
// Walk is idempotent and never expands user types.
func (u *Unifier) Walk(t Type) Type {
	return u.walk(t, make(map[Type]bool))
}

func (u *Unifier) walk(t Type, seen map[Type]bool) Type {
	r := u.Find(t)
	if seen[r] {
		return r
	}
	seen[r] = true
	defer delete(seen, r)

	switch rt := r.(type) {
	case *BoolType:
		return &BoolType{nullable{rt.null}}
	case *IntType:
		return &IntType{nullable{rt.null}}
	case *FloatType:
		return &FloatType{nullable{rt.null}}
	case *StringType:
		return &StringType{nullable{rt.null}}
	case *DateTimeType:
		return &DateTimeType{nullable{rt.null}}
	case *IntervalType:
		return &IntervalType{nullable{rt.null}}
	case *RegexType:
		return &RegexType{nullable{rt.null}}
	case *AnyType:
		return &AnyType{nullable{rt.null}}
	case *UserType:
		return &UserType{nullable{rt.null}, rt.Sym}
	case *CollectionType:
		return &CollectionType{nullable{rt.null}, u.walkMonoid(rt.M), u.walk(rt.Inner, seen)}
	case *FunType:
		return &FunType{nullable{rt.null}, u.walk(rt.Param, seen), u.walk(rt.Result, seen)}
	case *PatternType:
		atts := make([]Type, len(rt.Atts))
		for i, a := range rt.Atts {
			atts[i] = u.walk(a, seen)
		}
		return &PatternType{nullable{rt.null}, atts}
	case *RecordType:
		return &RecordType{nullable{rt.null}, u.walkAtts(rt.Atts, seen)}
	case *TypeScheme:
		return &TypeScheme{nullable{rt.null}, u.walk(rt.T, seen),
			rt.FreeTypeSyms, rt.FreeMonoidSyms, rt.FreeAttSyms}
	default:
		// a variable: keep the representative itself
		return r
	}
}

func (u *Unifier) walkMonoid(m Monoid) Monoid {
	r := u.FindMonoid(m)
	switch r.(type) {
	case *SetMonoid:
		return &SetMonoid{}
	case *BagMonoid:
		return &BagMonoid{}
	case *ListMonoid:
		return &ListMonoid{}
	case *SumMonoid:
		return &SumMonoid{}
	case *MultiplyMonoid:
		return &MultiplyMonoid{}
	case *MaxMonoid:
		return &MaxMonoid{}
	case *MinMonoid:
		return &MinMonoid{}
	case *AndMonoid:
		return &AndMonoid{}
	case *OrMonoid:
		return &OrMonoid{}
	default:
		return r
	}
}

func (u *Unifier) walkAtts(a RecordAttributes, seen map[Type]bool) RecordAttributes {
	r := u.FindAtts(a)
	switch rt := r.(type) {
	case *Attributes:
		atts := make([]AttrType, len(rt.Atts))
		for i, att := range rt.Atts {
			atts[i] = AttrType{Idn: att.Idn, Type: u.walk(att.Type, seen)}
		}
		return &Attributes{Atts: atts}
	case *AttributesVariable:
		atts := make([]AttrType, len(rt.Atts))
		for i, att := range rt.Atts {
			atts[i] = AttrType{Idn: att.Idn, Type: u.walk(att.Type, seen)}
		}
		return &AttributesVariable{Atts: atts, Sym: rt.Sym}
	case *ConcatAttributes:
		def := u.concats[rt.Sym]
		if def != nil {
			if resolved, complete := u.resolveConcat(def); complete {
				atts := make([]AttrType, len(resolved))
				for i, att := range resolved {
					atts[i] = AttrType{Idn: att.Idn, Type: u.walk(att.Type, seen)}
				}
				return &Attributes{Atts: atts}
			}
		}
		return rt
	default:
		return r
	}
}

// TypesEqual compares two walked types structurally. Variables compare by
// symbol; nullability flags do not participate.
func TypesEqual(t1, t2 Type) bool {
	switch a := t1.(type) {
	case *BoolType:
		_, ok := t2.(*BoolType)
		return ok
	case *IntType:
		_, ok := t2.(*IntType)
		return ok
	case *FloatType:
		_, ok := t2.(*FloatType)
		return ok
	case *StringType:
		_, ok := t2.(*StringType)
		return ok
	case *DateTimeType:
		_, ok := t2.(*DateTimeType)
		return ok
	case *IntervalType:
		_, ok := t2.(*IntervalType)
		return ok
	case *RegexType:
		_, ok := t2.(*RegexType)
		return ok
	case *AnyType:
		_, ok := t2.(*AnyType)
		return ok
	case *UserType:
		b, ok := t2.(*UserType)
		return ok && a.Sym == b.Sym
	case *TypeVariable:
		b, ok := t2.(*TypeVariable)
		return ok && a.Sym == b.Sym
	case *NumberType:
		b, ok := t2.(*NumberType)
		return ok && a.Sym == b.Sym
	case *PrimitiveType:
		b, ok := t2.(*PrimitiveType)
		return ok && a.Sym == b.Sym
	case *CollectionType:
		b, ok := t2.(*CollectionType)
		return ok && MonoidsEqual(a.M, b.M) && TypesEqual(a.Inner, b.Inner)
	case *FunType:
		b, ok := t2.(*FunType)
		return ok && TypesEqual(a.Param, b.Param) && TypesEqual(a.Result, b.Result)
	case *PatternType:
		b, ok := t2.(*PatternType)
		if !ok || len(a.Atts) != len(b.Atts) {
			return false
		}
		for i := range a.Atts {
			if !TypesEqual(a.Atts[i], b.Atts[i]) {
				return false
			}
		}
		return true
	case *RecordType:
		b, ok := t2.(*RecordType)
		return ok && attsEqual(a.Atts, b.Atts)
	case *TypeScheme:
		b, ok := t2.(*TypeScheme)
		return ok && TypesEqual(a.T, b.T)
	}
	return false
}

func attsEqual(a1, a2 RecordAttributes) bool {
	switch a := a1.(type) {
	case *Attributes:
		b, ok := a2.(*Attributes)
		if !ok || len(a.Atts) != len(b.Atts) {
			return false
		}
		for i := range a.Atts {
			if a.Atts[i].Idn != b.Atts[i].Idn || !TypesEqual(a.Atts[i].Type, b.Atts[i].Type) {
				return false
			}
		}
		return true
	case *AttributesVariable:
		b, ok := a2.(*AttributesVariable)
		return ok && a.Sym == b.Sym
	case *ConcatAttributes:
		b, ok := a2.(*ConcatAttributes)
		return ok && a.Sym == b.Sym
	}
	return false
}

// MonoidsEqual compares two walked monoids. Variables compare by symbol.
func MonoidsEqual(m1, m2 Monoid) bool {
	if a, ok := m1.(*MonoidVariable); ok {
		b, ok := m2.(*MonoidVariable)
		return ok && a.Sym == b.Sym
	}
	if _, ok := m2.(*MonoidVariable); ok {
		return false
	}
	return sameMonoid(m1, m2)
}
