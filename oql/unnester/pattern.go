// Package unnester rewrites canonical comprehensions into the flat target
// algebra. It assumes the canonical invariants established by the analyzer;
// any violation it meets is a bug in an earlier pass, surfaced as an
// internal error.
package unnester

// Pattern is the shape of the rows flowing out of an operator during
// unnesting: nothing yet, one variable, or a pair of patterns. Argument
// indices are positions in the deduplicated variable sequence of a pattern.
type Pattern interface {
	patternNode()
}

// EmptyPattern is the pattern of the driver's initial state.
type EmptyPattern struct{}

// VariablePattern carries one comprehension variable.
type VariablePattern struct {
	Idn string
}

// PairPattern pairs the rows of two patterns.
type PairPattern struct {
	Left  Pattern
	Right Pattern
}

func (*EmptyPattern) patternNode()    {}
func (*VariablePattern) patternNode() {}
func (*PairPattern) patternNode()     {}

func isEmpty(p Pattern) bool {
	_, ok := p.(*EmptyPattern)
	return ok
}

// pair extends a pattern with a variable; extending the empty pattern is
// just the variable.
func pair(p Pattern, idn string) Pattern {
	v := &VariablePattern{Idn: idn}
	if isEmpty(p) {
		return v
	}
	return &PairPattern{Left: p, Right: v}
}

// patternVariables flattens a pattern into its deduplicated, ordered
// variable sequence.
func patternVariables(p Pattern) []string {
	var out []string
	seen := make(map[string]struct{})
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p := p.(type) {
		case *VariablePattern:
			if _, dup := seen[p.Idn]; !dup {
				seen[p.Idn] = struct{}{}
				out = append(out, p.Idn)
			}
		case *PairPattern:
			walk(p.Left)
			walk(p.Right)
		}
	}
	walk(p)
	return out
}

// indexOf returns the argument index of a variable, or -1.
func indexOf(vars []string, idn string) int {
	for i, v := range vars {
		if v == idn {
			return i
		}
	}
	return -1
}

// reduceVars strips from l the variables that already appear in r.
func reduceVars(l, r []string) []string {
	var out []string
	for _, v := range l {
		if indexOf(r, v) < 0 {
			out = append(out, v)
		}
	}
	return out
}
