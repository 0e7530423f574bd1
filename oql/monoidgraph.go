package oql

// MonoidGraph tracks, per monoid variable, the lower and upper bounds imposed
// on it by comprehension constraints. A lower bound l means l ≤ v in the
// (commutative, idempotent) partial order; an upper bound u means v ≤ u.
// The graph is owned by a single compilation.
type MonoidGraph struct {
	bounds map[Symbol]*monoidBounds
}

type monoidBounds struct {
	leq []Monoid // lower bounds: each ≤ the variable
	geq []Monoid // upper bounds: each ≥ the variable
}

// NewMonoidGraph creates an empty graph.
func NewMonoidGraph() *MonoidGraph {
	return &MonoidGraph{bounds: make(map[Symbol]*monoidBounds)}
}

func (g *MonoidGraph) boundsOf(sym Symbol) *monoidBounds {
	b, ok := g.bounds[sym]
	if !ok {
		b = &monoidBounds{}
		g.bounds[sym] = b
	}
	return b
}

// AddLower records l ≤ v.
func (g *MonoidGraph) AddLower(v *MonoidVariable, l Monoid) {
	b := g.boundsOf(v.Sym)
	b.leq = append(b.leq, l)
}

// AddUpper records v ≤ u.
func (g *MonoidGraph) AddUpper(v *MonoidVariable, u Monoid) {
	b := g.boundsOf(v.Sym)
	b.geq = append(b.geq, u)
}

// LowerBounds returns the lower bounds recorded for the variable.
func (g *MonoidGraph) LowerBounds(v *MonoidVariable) []Monoid {
	if b, ok := g.bounds[v.Sym]; ok {
		return b.leq
	}
	return nil
}

// UpperBounds returns the upper bounds recorded for the variable.
func (g *MonoidGraph) UpperBounds(v *MonoidVariable) []Monoid {
	if b, ok := g.bounds[v.Sym]; ok {
		return b.geq
	}
	return nil
}

// Range returns the property interval [min, max] a variable may inhabit
// given its bounds, and whether the interval is non-empty. min is the join of
// the lower bounds' properties and max the meet of the upper bounds'.
// Bounds that are themselves unresolved variables contribute nothing; the
// caller resolves bounds through the unifier before asking.
func (g *MonoidGraph) Range(v *MonoidVariable, resolve func(Monoid) Monoid) (min, max MonoidProps, ok bool) {
	min = MonoidProps{false, false}
	max = MonoidProps{true, true}
	b, found := g.bounds[v.Sym]
	if !found {
		return min, max, true
	}
	for _, m := range b.leq {
		if p, known := PropsOf(resolve(m)); known {
			min = min.Join(p)
		}
	}
	for _, m := range b.geq {
		if p, known := PropsOf(resolve(m)); known {
			max = max.Meet(p)
		}
	}
	return min, max, min.Leq(max)
}

// Admits reports whether the variable's bounds permit the given properties.
func (g *MonoidGraph) Admits(v *MonoidVariable, p MonoidProps, resolve func(Monoid) Monoid) bool {
	min, max, ok := g.Range(v, resolve)
	return ok && min.Leq(p) && p.Leq(max)
}

// Merge folds the bounds of src into dst, used when two variables unify.
func (g *MonoidGraph) Merge(dst, src *MonoidVariable) {
	if dst.Sym == src.Sym {
		return
	}
	sb, ok := g.bounds[src.Sym]
	if !ok {
		return
	}
	db := g.boundsOf(dst.Sym)
	db.leq = append(db.leq, sb.leq...)
	db.geq = append(db.geq, sb.geq...)
}

// CloneBounds copies the bounds of src onto a freshly instantiated variable,
// used by type scheme instantiation.
func (g *MonoidGraph) CloneBounds(fresh *MonoidVariable, src Symbol) {
	sb, ok := g.bounds[src]
	if !ok {
		return
	}
	fb := g.boundsOf(fresh.Sym)
	fb.leq = append(fb.leq, sb.leq...)
	fb.geq = append(fb.geq, sb.geq...)
}
