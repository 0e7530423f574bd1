package oql

// Unifier owns the mutable typing state of one compilation: the union-find
// maps over types, record attributes and monoids, the monoid bound graph and
// the concat definition table. It must be created fresh per compilation;
// reusing one across compilations corrupts let-polymorphism snapshots.
type Unifier struct {
	Syms  *SymbolRegistry
	World *World
	Graph *MonoidGraph

	types   *UnionFind[Type]
	atts    *UnionFind[RecordAttributes]
	monoids *UnionFind[Monoid]
	concats map[Symbol]*ConcatDefinition
}

// NewUnifier creates a unifier over the given catalog.
func NewUnifier(world *World, syms *SymbolRegistry) *Unifier {
	return &Unifier{
		Syms:    syms,
		World:   world,
		Graph:   NewMonoidGraph(),
		types:   NewUnionFind[Type](),
		atts:    NewUnionFind[RecordAttributes](),
		monoids: NewUnionFind[Monoid](),
		concats: make(map[Symbol]*ConcatDefinition),
	}
}

// DefineConcat installs a concat record definition and returns its node.
func (u *Unifier) DefineConcat(slots []ConcatSlot) *ConcatAttributes {
	sym := u.Syms.Fresh("concat")
	u.concats[sym] = &ConcatDefinition{Slots: slots}
	return &ConcatAttributes{Sym: sym}
}

// Concat returns the definition behind a concat node.
func (u *Unifier) Concat(c *ConcatAttributes) *ConcatDefinition {
	return u.concats[c.Sym]
}

// Find returns the preferred representative of t's union-find group: user
// types first, then non-variable types, then number/primitive variables,
// then plain type variables, else the root.
func (u *Unifier) Find(t Type) Type {
	best := t
	bestRank := typeRank(t)
	for _, m := range u.types.Group(t) {
		if r := typeRank(m); r < bestRank {
			best, bestRank = m, r
		}
	}
	return best
}

func typeRank(t Type) int {
	switch t.(type) {
	case *UserType:
		return 0
	case *NumberType:
		return 2
	case *PrimitiveType:
		return 3
	case *AnyType:
		return 4
	case *TypeVariable:
		return 5
	default:
		return 1
	}
}

// FindAtts returns the preferred representative of an attributes group:
// closed attributes first, then concats, then attribute variables.
func (u *Unifier) FindAtts(a RecordAttributes) RecordAttributes {
	best := a
	bestRank := attsRank(a)
	for _, m := range u.atts.Group(a) {
		if r := attsRank(m); r < bestRank {
			best, bestRank = m, r
		}
	}
	return best
}

func attsRank(a RecordAttributes) int {
	switch a.(type) {
	case *Attributes:
		return 0
	case *ConcatAttributes:
		return 1
	default:
		return 2
	}
}

// FindMonoid returns the preferred representative of a monoid group: a known
// monoid if the group has one, else the variable itself.
func (u *Unifier) FindMonoid(m Monoid) Monoid {
	best := m
	for _, g := range u.monoids.Group(m) {
		if _, isVar := g.(*MonoidVariable); !isVar {
			best = g
			break
		}
	}
	return best
}

type typePair struct {
	a, b Type
}

// Unify makes t1 and t2 the same type, or reports why it cannot.
func (u *Unifier) Unify(t1, t2 Type) error {
	return u.unify(t1, t2, make(map[typePair]bool))
}

func (u *Unifier) unify(t1, t2 Type, seen map[typePair]bool) error {
	a := u.Find(t1)
	b := u.Find(t2)
	if a == b {
		u.types.Union(t1, t2)
		return nil
	}
	pair := typePair{a, b}
	if seen[pair] || seen[typePair{b, a}] {
		return nil
	}
	seen[pair] = true

	au, aIsUser := a.(*UserType)
	bu, bIsUser := b.(*UserType)
	switch {
	case aIsUser && bIsUser:
		if au.Sym != bu.Sym {
			return ErrIncompatibleTypes.New(a, b)
		}
	case aIsUser:
		def, ok := u.World.UserType(au.Sym)
		if !ok {
			return ErrIncompatibleTypes.New(a, b)
		}
		// a record definition is compared directly: once in the user type's
		// group, Find would hand back the user type instead of its structure
		expand := u.unifyConcrete
		if _, alias := def.(*UserType); alias {
			expand = u.unify
		}
		if err := expand(def, b, seen); err != nil {
			return err
		}
	case bIsUser:
		def, ok := u.World.UserType(bu.Sym)
		if !ok {
			return ErrIncompatibleTypes.New(a, b)
		}
		expand := u.unifyConcrete
		if _, alias := def.(*UserType); alias {
			expand = u.unify
		}
		if err := expand(a, def, seen); err != nil {
			return err
		}
	default:
		if err := u.unifyConcrete(a, b, seen); err != nil {
			return err
		}
	}

	u.types.Union(t1, t2)
	u.types.Union(t1, a)
	u.types.Union(t2, b)
	return nil
}

// unifyConcrete handles all non-user-type pairs. Variables absorb anything
// their range admits; concrete types unify structurally.
func (u *Unifier) unifyConcrete(a, b Type, seen map[typePair]bool) error {
	if _, ok := a.(*AnyType); ok {
		return nil
	}
	if _, ok := b.(*AnyType); ok {
		return nil
	}
	if _, ok := a.(*TypeVariable); ok {
		return nil
	}
	if _, ok := b.(*TypeVariable); ok {
		return nil
	}
	if _, ok := a.(*NumberType); ok {
		return u.checkNumeric(b, a)
	}
	if _, ok := b.(*NumberType); ok {
		return u.checkNumeric(a, b)
	}
	if _, ok := a.(*PrimitiveType); ok {
		return u.checkPrimitive(b, a)
	}
	if _, ok := b.(*PrimitiveType); ok {
		return u.checkPrimitive(a, b)
	}

	switch at := a.(type) {
	case *BoolType:
		if _, ok := b.(*BoolType); ok {
			return nil
		}
	case *IntType:
		if _, ok := b.(*IntType); ok {
			return nil
		}
	case *FloatType:
		if _, ok := b.(*FloatType); ok {
			return nil
		}
	case *StringType:
		if _, ok := b.(*StringType); ok {
			return nil
		}
	case *DateTimeType:
		if _, ok := b.(*DateTimeType); ok {
			return nil
		}
	case *IntervalType:
		if _, ok := b.(*IntervalType); ok {
			return nil
		}
	case *RegexType:
		if _, ok := b.(*RegexType); ok {
			return nil
		}
	case *RecordType:
		if bt, ok := b.(*RecordType); ok {
			return u.unifyAttributes(at.Atts, bt.Atts, seen)
		}
	case *CollectionType:
		if bt, ok := b.(*CollectionType); ok {
			if err := u.UnifyMonoids(at.M, bt.M); err != nil {
				return err
			}
			return u.unify(at.Inner, bt.Inner, seen)
		}
	case *FunType:
		if bt, ok := b.(*FunType); ok {
			if err := u.unify(at.Param, bt.Param, seen); err != nil {
				return err
			}
			return u.unify(at.Result, bt.Result, seen)
		}
	case *PatternType:
		if bt, ok := b.(*PatternType); ok {
			if len(at.Atts) != len(bt.Atts) {
				return ErrIncompatibleTypes.New(a, b)
			}
			for i := range at.Atts {
				if err := u.unify(at.Atts[i], bt.Atts[i], seen); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return ErrIncompatibleTypes.New(a, b)
}

// checkNumeric verifies t may inhabit a numeric variable.
func (u *Unifier) checkNumeric(t Type, v Type) error {
	switch t.(type) {
	case *IntType, *FloatType, *NumberType, *PrimitiveType:
		return nil
	}
	return ErrIncompatibleTypes.New(v, t)
}

// checkPrimitive verifies t may inhabit a primitive variable.
func (u *Unifier) checkPrimitive(t Type, v Type) error {
	switch t.(type) {
	case *BoolType, *IntType, *FloatType, *StringType, *PrimitiveType, *NumberType:
		return nil
	}
	return ErrIncompatibleTypes.New(v, t)
}

// UnifyAttributes makes two record attribute values the same.
func (u *Unifier) UnifyAttributes(a1, a2 RecordAttributes) error {
	return u.unifyAttributes(a1, a2, make(map[typePair]bool))
}

func (u *Unifier) unifyAttributes(a1, a2 RecordAttributes, seen map[typePair]bool) error {
	a := u.FindAtts(a1)
	b := u.FindAtts(a2)
	if a == b {
		u.atts.Union(a1, a2)
		return nil
	}

	var err error
	switch at := a.(type) {
	case *Attributes:
		switch bt := b.(type) {
		case *Attributes:
			err = u.unifyClosed(at, bt, seen)
		case *AttributesVariable:
			err = u.unifyOpenWithClosed(bt, at, seen)
		case *ConcatAttributes:
			err = u.unifyConcatWithClosed(bt, at, seen)
		}
	case *AttributesVariable:
		switch bt := b.(type) {
		case *Attributes:
			err = u.unifyOpenWithClosed(at, bt, seen)
		case *AttributesVariable:
			merged := u.mergeOpen(at, bt, seen, &err)
			if err == nil {
				u.atts.Union(a, merged)
			}
		case *ConcatAttributes:
			err = u.unifyOpenWithConcat(at, bt, seen)
		}
	case *ConcatAttributes:
		switch bt := b.(type) {
		case *Attributes:
			err = u.unifyConcatWithClosed(at, bt, seen)
		case *AttributesVariable:
			err = u.unifyOpenWithConcat(bt, at, seen)
		case *ConcatAttributes:
			err = u.unifyConcats(at, bt, seen)
		}
	}
	if err != nil {
		return err
	}

	u.atts.Union(a1, a2)
	u.atts.Union(a1, a)
	u.atts.Union(a2, b)
	return nil
}

func (u *Unifier) unifyClosed(a, b *Attributes, seen map[typePair]bool) error {
	if len(a.Atts) != len(b.Atts) {
		return ErrIncompatibleTypes.New(&RecordType{Atts: a}, &RecordType{Atts: b})
	}
	for i := range a.Atts {
		if a.Atts[i].Idn != b.Atts[i].Idn {
			return ErrIncompatibleTypes.New(&RecordType{Atts: a}, &RecordType{Atts: b})
		}
		if err := u.unify(a.Atts[i].Type, b.Atts[i].Type, seen); err != nil {
			return err
		}
	}
	return nil
}

// unifyOpenWithClosed requires the open set's identifiers to be a subset of
// the closed record's.
func (u *Unifier) unifyOpenWithClosed(open *AttributesVariable, closed *Attributes, seen map[typePair]bool) error {
	for _, att := range open.Atts {
		t, ok := closed.Lookup(att.Idn)
		if !ok {
			return ErrIncompatibleTypes.New(&RecordType{Atts: open}, &RecordType{Atts: closed})
		}
		if err := u.unify(att.Type, t, seen); err != nil {
			return err
		}
	}
	return nil
}

// mergeOpen unifies the common identifiers of two open attribute sets and
// returns a new variable whose attribute set is the union.
func (u *Unifier) mergeOpen(a, b *AttributesVariable, seen map[typePair]bool, errOut *error) *AttributesVariable {
	merged := &AttributesVariable{Sym: u.Syms.Fresh("atts")}
	merged.Atts = append(merged.Atts, a.Atts...)
	for _, att := range b.Atts {
		if t, ok := a.Lookup(att.Idn); ok {
			if err := u.unify(t, att.Type, seen); err != nil {
				*errOut = err
				return merged
			}
			continue
		}
		merged.Atts = append(merged.Atts, att)
	}
	return merged
}

// unifyConcatWithClosed unifies a concat record against a fixed record. If
// the concat is already complete the arities must match; otherwise the
// resolved prefix and the accumulated constraints are checked against the
// fixed record and the concat resolves to it.
func (u *Unifier) unifyConcatWithClosed(c *ConcatAttributes, closed *Attributes, seen map[typePair]bool) error {
	def := u.concats[c.Sym]
	if def == nil {
		return ErrInternal.New("undefined concat record " + c.Sym.String())
	}
	resolved, complete := u.resolveConcat(def)
	if complete && len(resolved) != len(closed.Atts) {
		return ErrIncompatibleTypes.New(&RecordType{Atts: c}, &RecordType{Atts: closed})
	}
	for i, att := range resolved {
		if i >= len(closed.Atts) || closed.Atts[i].Idn != att.Idn {
			return ErrIncompatibleTypes.New(&RecordType{Atts: c}, &RecordType{Atts: closed})
		}
		if err := u.unify(att.Type, closed.Atts[i].Type, seen); err != nil {
			return err
		}
	}
	for _, att := range def.Atts {
		t, ok := closed.Lookup(att.Idn)
		if !ok {
			return ErrIncompatibleTypes.New(&RecordType{Atts: c}, &RecordType{Atts: closed})
		}
		if err := u.unify(att.Type, t, seen); err != nil {
			return err
		}
	}
	return nil
}

// unifyOpenWithConcat checks each open attribute against the concat's known
// attributes, adding unknown ones as constraints on the concat.
func (u *Unifier) unifyOpenWithConcat(open *AttributesVariable, c *ConcatAttributes, seen map[typePair]bool) error {
	def := u.concats[c.Sym]
	if def == nil {
		return ErrInternal.New("undefined concat record " + c.Sym.String())
	}
	resolved, _ := u.resolveConcat(def)
	for _, att := range open.Atts {
		if t, ok := lookupAtt(resolved, att.Idn); ok {
			if err := u.unify(att.Type, t, seen); err != nil {
				return err
			}
			continue
		}
		if t, ok := lookupAtt(def.Atts, att.Idn); ok {
			if err := u.unify(att.Type, t, seen); err != nil {
				return err
			}
			continue
		}
		def.Atts = append(def.Atts, att)
	}
	return nil
}

// unifyConcats unifies the resolved prefixes elementwise, unifies common
// constraint attributes, and merges the definitions.
func (u *Unifier) unifyConcats(a, b *ConcatAttributes, seen map[typePair]bool) error {
	da := u.concats[a.Sym]
	db := u.concats[b.Sym]
	if da == nil || db == nil {
		return ErrInternal.New("undefined concat record")
	}
	ra, _ := u.resolveConcat(da)
	rb, _ := u.resolveConcat(db)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	for i := 0; i < n; i++ {
		if ra[i].Idn != rb[i].Idn {
			return ErrIncompatibleTypes.New(&RecordType{Atts: a}, &RecordType{Atts: b})
		}
		if err := u.unify(ra[i].Type, rb[i].Type, seen); err != nil {
			return err
		}
	}
	for _, att := range db.Atts {
		if t, ok := lookupAtt(da.Atts, att.Idn); ok {
			if err := u.unify(t, att.Type, seen); err != nil {
				return err
			}
			continue
		}
		da.Atts = append(da.Atts, att)
	}
	if len(db.Slots) > len(da.Slots) {
		da.Slots = db.Slots
	}
	u.concats[b.Sym] = da
	return nil
}

func lookupAtt(atts []AttrType, idn string) (Type, bool) {
	for _, att := range atts {
		if att.Idn == idn {
			return att.Type, true
		}
	}
	return nil, false
}

// resolveConcat flattens the definition's slots into attributes as far as
// the slot types are known, reporting whether every slot resolved.
func (u *Unifier) resolveConcat(def *ConcatDefinition) ([]AttrType, bool) {
	var atts []AttrType
	for _, slot := range def.Slots {
		if slot.Prefix != "" {
			atts = append(atts, AttrType{Idn: slot.Prefix, Type: slot.T})
			continue
		}
		rec, ok := u.Find(slot.T).(*RecordType)
		if !ok {
			return atts, false
		}
		closed, ok := u.FindAtts(rec.Atts).(*Attributes)
		if !ok {
			return atts, false
		}
		atts = append(atts, closed.Atts...)
	}
	return dedupeAttNames(atts), true
}

// dedupeAttNames suffixes colliding attribute names with _k, matching the
// star expansion rules.
func dedupeAttNames(atts []AttrType) []AttrType {
	seen := make(map[string]int)
	out := make([]AttrType, 0, len(atts))
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
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// UnifyMonoids makes two monoids the same. A variable unifies with a known
// monoid iff its bounds admit that monoid's properties; two variables merge
// their bound sets.
func (u *Unifier) UnifyMonoids(m1, m2 Monoid) error {
	a := u.FindMonoid(m1)
	b := u.FindMonoid(m2)
	if a == b {
		u.monoids.Union(m1, m2)
		return nil
	}

	av, aIsVar := a.(*MonoidVariable)
	bv, bIsVar := b.(*MonoidVariable)
	switch {
	case aIsVar && bIsVar:
		u.Graph.Merge(av, bv)
		u.Graph.Merge(bv, av)
		if _, _, ok := u.Graph.Range(av, u.FindMonoid); !ok {
			return ErrIncompatibleMonoids.New(a, b)
		}
	case aIsVar:
		if err := u.bindMonoidVariable(av, b); err != nil {
			return err
		}
	case bIsVar:
		if err := u.bindMonoidVariable(bv, a); err != nil {
			return err
		}
	default:
		if !sameMonoid(a, b) {
			return ErrIncompatibleMonoids.New(a, b)
		}
	}

	u.monoids.Union(m1, m2)
	u.monoids.Union(m1, a)
	u.monoids.Union(m2, b)
	return nil
}

func (u *Unifier) bindMonoidVariable(v *MonoidVariable, m Monoid) error {
	props, ok := PropsOf(m)
	if !ok {
		return ErrInternal.New("monoid without known properties: " + m.String())
	}
	if !u.Graph.Admits(v, props, u.FindMonoid) {
		return ErrIncompatibleMonoids.New(m, v)
	}
	return nil
}

func sameMonoid(a, b Monoid) bool {
	switch a.(type) {
	case *SumMonoid:
		_, ok := b.(*SumMonoid)
		return ok
	case *MultiplyMonoid:
		_, ok := b.(*MultiplyMonoid)
		return ok
	case *MaxMonoid:
		_, ok := b.(*MaxMonoid)
		return ok
	case *MinMonoid:
		_, ok := b.(*MinMonoid)
		return ok
	case *AndMonoid:
		_, ok := b.(*AndMonoid)
		return ok
	case *OrMonoid:
		_, ok := b.(*OrMonoid)
		return ok
	case *SetMonoid:
		_, ok := b.(*SetMonoid)
		return ok
	case *BagMonoid:
		_, ok := b.(*BagMonoid)
		return ok
	case *ListMonoid:
		_, ok := b.(*ListMonoid)
		return ok
	}
	return false
}

// BoundMonoid records that the generator monoid gen must be ≤ the
// comprehension monoid m, reporting an error when both are known and the
// order is violated, and installing bounds when either is a variable.
func (u *Unifier) BoundMonoid(m, gen Monoid) error {
	mr := u.FindMonoid(m)
	gr := u.FindMonoid(gen)

	mv, mIsVar := mr.(*MonoidVariable)
	gv, gIsVar := gr.(*MonoidVariable)
	switch {
	case !mIsVar && !gIsVar:
		mp, _ := PropsOf(mr)
		gp, _ := PropsOf(gr)
		if !gp.Leq(mp) {
			return ErrIncompatibleMonoids.New(mr, gr)
		}
	case mIsVar && gIsVar:
		u.Graph.AddLower(mv, gr)
		u.Graph.AddUpper(gv, mr)
		if _, _, ok := u.Graph.Range(mv, u.FindMonoid); !ok {
			return ErrIncompatibleMonoids.New(mr, gr)
		}
	case mIsVar:
		u.Graph.AddLower(mv, gr)
		if _, _, ok := u.Graph.Range(mv, u.FindMonoid); !ok {
			return ErrIncompatibleMonoids.New(mr, gr)
		}
	default:
		u.Graph.AddUpper(gv, mr)
		if _, _, ok := u.Graph.Range(gv, u.FindMonoid); !ok {
			return ErrIncompatibleMonoids.New(mr, gr)
		}
	}
	return nil
}
