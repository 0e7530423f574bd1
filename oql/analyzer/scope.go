package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// varScope is one level of the identifier environment chain.
type varScope struct {
	parent *varScope
	vals   map[string]Entity
}

func newVarScope(parent *varScope) *varScope {
	return &varScope{parent: parent, vals: make(map[string]Entity)}
}

func (s *varScope) lookup(idn string) (Entity, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if e, ok := scope.vals[idn]; ok {
			return e, true
		}
	}
	return nil, false
}

func (s *varScope) names() []string {
	var out []string
	seen := make(map[string]struct{})
	for scope := s; scope != nil; scope = scope.parent {
		for idn := range scope.vals {
			if _, ok := seen[idn]; !ok {
				seen[idn] = struct{}{}
				out = append(out, idn)
			}
		}
	}
	return out
}

// frames carries the four environment chains through the analysis: the
// identifier scope, and the select nodes that currently define partition and
// *. The alias environment materializes directly as GenAttributeEntity and
// IntoAttributeEntity bindings in the identifier scope.
type frames struct {
	vars *varScope
	// partition is the select whose projection is being analyzed, when that
	// select has a group by.
	partition *calculus.Select
	// star is the select whose projection is being analyzed.
	star *calculus.Select
}

func newFrames() *frames {
	return &frames{vars: newVarScope(nil)}
}

// push opens a new identifier scope, keeping the partition and star frames.
func (f *frames) push() *frames {
	return &frames{vars: newVarScope(f.vars), partition: f.partition, star: f.star}
}

// proj opens the scope of a select projection, defining * and, when grouped,
// partition.
func (f *frames) proj(sel *calculus.Select) *frames {
	inner := &frames{vars: f.vars, star: sel}
	if sel.GroupBy != nil {
		inner.partition = sel
	}
	return inner
}
