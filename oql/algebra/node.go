// Package algebra defines the flat relational-style algebra the unnester
// compiles canonical comprehensions into. Argument expressions refer to the
// operator's input pattern positionally; a downstream executor evaluates the
// tree without any knowledge of the calculus.
package algebra

import (
	"fmt"

	"github.com/oqlc/go-oql-compiler/oql"
)

// Node is an algebra operator.
type Node interface {
	fmt.Stringer
	Pos() oql.Position
	Children() []Node
	algebraNode()
}

type position struct {
	P oql.Position
}

func (p *position) Pos() oql.Position       { return p.P }
func (p *position) SetPos(pos oql.Position) { p.P = pos }

// Empty is the absent child of the unnesting driver's initial state. It
// never appears in a finished plan.
type Empty struct {
	position
}

// Scan produces the rows of a named data source.
type Scan struct {
	position
	Name string
}

// Select filters its child's rows.
type Select struct {
	position
	Pred  Expr
	Child Node
}

// Join joins its children's rows on a predicate.
type Join struct {
	position
	Pred  Expr
	Left  Node
	Right Node
}

// OuterJoin is a left outer join: left rows without a match are kept, with
// the right side null.
type OuterJoin struct {
	position
	Pred  Expr
	Left  Node
	Right Node
}

// Unnest pairs each child row with the elements of an inner collection
// reached by Path.
type Unnest struct {
	position
	Path  Expr
	Pred  Expr
	Child Node
}

// OuterUnnest is Unnest keeping rows whose inner collection has no matching
// element, with the unnested side null.
type OuterUnnest struct {
	position
	Path  Expr
	Pred  Expr
	Child Node
}

// Nest groups the child's rows by Key and aggregates E with the monoid M
// inside each group. Nulls lists the argument positions whose nullness marks
// a row as an outer-join mismatch to be excluded from the aggregation.
type Nest struct {
	position
	M     oql.Monoid
	E     Expr
	Key   []Expr
	Pred  Expr
	Nulls []Expr
	Child Node
}

// Reduce aggregates all of the child's rows with the monoid M.
type Reduce struct {
	position
	M     oql.Monoid
	E     Expr
	Pred  Expr
	Child Node
}

func (*Empty) algebraNode()       {}
func (*Scan) algebraNode()        {}
func (*Select) algebraNode()      {}
func (*Join) algebraNode()        {}
func (*OuterJoin) algebraNode()   {}
func (*Unnest) algebraNode()      {}
func (*OuterUnnest) algebraNode() {}
func (*Nest) algebraNode()        {}
func (*Reduce) algebraNode()      {}

func (*Empty) Children() []Node { return nil }
func (*Scan) Children() []Node  { return nil }

func (n *Select) Children() []Node      { return []Node{n.Child} }
func (n *Join) Children() []Node        { return []Node{n.Left, n.Right} }
func (n *OuterJoin) Children() []Node   { return []Node{n.Left, n.Right} }
func (n *Unnest) Children() []Node      { return []Node{n.Child} }
func (n *OuterUnnest) Children() []Node { return []Node{n.Child} }
func (n *Nest) Children() []Node        { return []Node{n.Child} }
func (n *Reduce) Children() []Node      { return []Node{n.Child} }

// NewScan creates a scan of the named source at the given position.
func NewScan(name string, pos oql.Position) *Scan {
	return &Scan{position{pos}, name}
}
