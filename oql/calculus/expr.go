// Package calculus defines the monoid comprehension calculus: the
// intermediate representation consumed by the semantic analyzer, rewritten by
// the desugaring and normalization rules, and finally unnested into the
// target algebra.
package calculus

import (
	"fmt"

	"github.com/oqlc/go-oql-compiler/oql"
)

// Exp is a calculus expression. All implementations are pointer types; node
// identity keys the analyzer's side tables, so rewrites must build new nodes
// rather than mutate in place.
type Exp interface {
	fmt.Stringer
	Pos() oql.Position
	SetPos(oql.Position)
	Children() []Exp
	expNode()
}

type position struct {
	P oql.Position
}

func (p *position) Pos() oql.Position       { return p.P }
func (p *position) SetPos(pos oql.Position) { p.P = pos }

// BoolConst is a boolean literal.
type BoolConst struct {
	position
	Value bool
}

// IntConst is an integer literal.
type IntConst struct {
	position
	Value int64
}

// FloatConst is a floating point literal.
type FloatConst struct {
	position
	Value float64
}

// StringConst is a string literal.
type StringConst struct {
	position
	Value string
}

// RegexConst is a regular expression literal. Its syntax is validated by the
// analyzer.
type RegexConst struct {
	position
	Value string
}

// Null is the null literal.
type Null struct {
	position
}

// IdnExp is a use of an identifier.
type IdnExp struct {
	position
	Idn string
}

// RecordProj projects the named attribute out of a record.
type RecordProj struct {
	position
	E   Exp
	Idn string
}

// AttrCons is one attribute of a record construction.
type AttrCons struct {
	Idn string
	E   Exp
}

// RecordCons constructs a record value.
type RecordCons struct {
	position
	Atts []AttrCons
}

// IfThenElse is a conditional expression.
type IfThenElse struct {
	position
	Cond Exp
	Then Exp
	Else Exp
}

// BinaryOperator enumerates the binary operators.
type BinaryOperator int

const (
	OpEq BinaryOperator = iota
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpPlus
	OpMinus
	OpTimes
	OpDiv
	OpMod
)

var binaryOpNames = [...]string{"=", "<>", "<", "<=", ">", ">=", "and", "or", "+", "-", "*", "/", "%"}

func (op BinaryOperator) String() string { return binaryOpNames[op] }

// IsComparison reports whether the operator compares its operands.
func (op BinaryOperator) IsComparison() bool { return op <= OpGe }

// IsBoolean reports whether the operator is a boolean connective.
func (op BinaryOperator) IsBoolean() bool { return op == OpAnd || op == OpOr }

// IsArithmetic reports whether the operator computes a number.
func (op BinaryOperator) IsArithmetic() bool { return op >= OpPlus }

// BinaryExp applies a binary operator.
type BinaryExp struct {
	position
	Op    BinaryOperator
	Left  Exp
	Right Exp
}

// UnaryOperator enumerates the unary operators. The monoid conversions
// to_set, to_bag and to_list re-tag a collection's monoid without touching
// its elements.
type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpNeg
	OpToSet
	OpToBag
	OpToList
)

var unaryOpNames = [...]string{"not", "-", "to_set", "to_bag", "to_list"}

func (op UnaryOperator) String() string { return unaryOpNames[op] }

// IsMonoidConversion reports whether the operator re-tags a collection.
func (op UnaryOperator) IsMonoidConversion() bool { return op >= OpToSet }

// UnaryExp applies a unary operator.
type UnaryExp struct {
	position
	Op UnaryOperator
	E  Exp
}

// MergeMonoid merges two values of the same monoid.
type MergeMonoid struct {
	position
	M     oql.Monoid
	Left  Exp
	Right Exp
}

// ZeroCollectionMonoid is the empty collection of a collection monoid.
type ZeroCollectionMonoid struct {
	position
	M oql.CollectionMonoid
}

// ConsCollectionMonoid is the singleton collection of a collection monoid.
type ConsCollectionMonoid struct {
	position
	M oql.CollectionMonoid
	E Exp
}

// MultiCons is a collection literal with any number of elements.
type MultiCons struct {
	position
	M    oql.CollectionMonoid
	Exps []Exp
}

// Comp is a monoid comprehension: for (qualifiers) yield m e.
type Comp struct {
	position
	M     oql.Monoid
	Quals []Qual
	E     Exp
}

// CanonComp is the canonical comprehension produced by the canonicalizer:
// generators over paths, one CNF predicate, and a yield expression.
type CanonComp struct {
	position
	M    oql.Monoid
	Gens []*Gen
	Pred Exp
	E    Exp
}

// Select is the SQL-flavoured surface construct. GroupBy, Where, OrderBy and
// Having may be nil.
type Select struct {
	position
	From     []*Gen
	Distinct bool
	GroupBy  Exp
	Proj     Exp
	Where    Exp
	OrderBy  Exp
	Having   Exp
}

// FunAbs is a function abstraction over a pattern.
type FunAbs struct {
	position
	P    Pattern
	Body Exp
}

// FunApp applies a function to an argument.
type FunApp struct {
	position
	F Exp
	E Exp
}

// ExpBlock is a sequence of binds scoping a final expression.
type ExpBlock struct {
	position
	Binds []*Bind
	E     Exp
}

// Partition refers to the rows of the current group inside the projection of
// a select with group by.
type Partition struct {
	position
}

// Star refers to all attributes in scope inside the projection of a select.
type Star struct {
	position
}

// Into feeds the record value of Left into the scope of Right.
type Into struct {
	position
	Left  Exp
	Right Exp
}

// Sum is the sugar aggregation sum(e).
type Sum struct {
	position
	E Exp
}

// Max is the sugar aggregation max(e).
type Max struct {
	position
	E Exp
}

// Min is the sugar aggregation min(e).
type Min struct {
	position
	E Exp
}

// Avg is the sugar aggregation avg(e).
type Avg struct {
	position
	E Exp
}

// Count is the sugar aggregation count(e).
type Count struct {
	position
	E Exp
}

// Exists is the sugar predicate exists(e).
type Exists struct {
	position
	E Exp
}

// In is the sugar membership test e1 in e2.
type In struct {
	position
	Left  Exp
	Right Exp
}

// Path is a generator source in canonical form: a variable optionally
// projected through record fields. It is the only source shape a flat
// algebra's scans and unnests can traverse.
type Path interface {
	Exp
	pathNode()
}

// VariablePath is a path rooted at a bound variable or data source.
type VariablePath struct {
	position
	Idn string
}

// InnerPath projects a field out of a path.
type InnerPath struct {
	position
	P     Path
	Field string
}

func (*BoolConst) expNode()            {}
func (*IntConst) expNode()             {}
func (*FloatConst) expNode()           {}
func (*StringConst) expNode()          {}
func (*RegexConst) expNode()           {}
func (*Null) expNode()                 {}
func (*IdnExp) expNode()               {}
func (*RecordProj) expNode()           {}
func (*RecordCons) expNode()           {}
func (*IfThenElse) expNode()           {}
func (*BinaryExp) expNode()            {}
func (*UnaryExp) expNode()             {}
func (*MergeMonoid) expNode()          {}
func (*ZeroCollectionMonoid) expNode() {}
func (*ConsCollectionMonoid) expNode() {}
func (*MultiCons) expNode()            {}
func (*Comp) expNode()                 {}
func (*CanonComp) expNode()            {}
func (*Select) expNode()               {}
func (*FunAbs) expNode()               {}
func (*FunApp) expNode()               {}
func (*ExpBlock) expNode()             {}
func (*Partition) expNode()            {}
func (*Star) expNode()                 {}
func (*Into) expNode()                 {}
func (*Sum) expNode()                  {}
func (*Max) expNode()                  {}
func (*Min) expNode()                  {}
func (*Avg) expNode()                  {}
func (*Count) expNode()                {}
func (*Exists) expNode()               {}
func (*In) expNode()                   {}
func (*VariablePath) expNode()         {}
func (*InnerPath) expNode()            {}

func (*VariablePath) pathNode() {}
func (*InnerPath) pathNode()    {}

func (*BoolConst) Children() []Exp   { return nil }
func (*IntConst) Children() []Exp    { return nil }
func (*FloatConst) Children() []Exp  { return nil }
func (*StringConst) Children() []Exp { return nil }
func (*RegexConst) Children() []Exp  { return nil }
func (*Null) Children() []Exp        { return nil }
func (*IdnExp) Children() []Exp      { return nil }

func (e *RecordProj) Children() []Exp { return []Exp{e.E} }

func (e *RecordCons) Children() []Exp {
	children := make([]Exp, len(e.Atts))
	for i, att := range e.Atts {
		children[i] = att.E
	}
	return children
}

func (e *IfThenElse) Children() []Exp { return []Exp{e.Cond, e.Then, e.Else} }
func (e *BinaryExp) Children() []Exp  { return []Exp{e.Left, e.Right} }
func (e *UnaryExp) Children() []Exp   { return []Exp{e.E} }
func (e *MergeMonoid) Children() []Exp {
	return []Exp{e.Left, e.Right}
}
func (*ZeroCollectionMonoid) Children() []Exp    { return nil }
func (e *ConsCollectionMonoid) Children() []Exp  { return []Exp{e.E} }
func (e *MultiCons) Children() []Exp             { return append([]Exp(nil), e.Exps...) }

func (e *Comp) Children() []Exp {
	var children []Exp
	for _, q := range e.Quals {
		switch q := q.(type) {
		case *Gen:
			children = append(children, q.E)
		case *Bind:
			children = append(children, q.E)
		case *Pred:
			children = append(children, q.E)
		}
	}
	return append(children, e.E)
}

func (e *CanonComp) Children() []Exp {
	var children []Exp
	for _, g := range e.Gens {
		children = append(children, g.E)
	}
	return append(children, e.Pred, e.E)
}

func (e *Select) Children() []Exp {
	var children []Exp
	for _, g := range e.From {
		children = append(children, g.E)
	}
	for _, c := range []Exp{e.GroupBy, e.Proj, e.Where, e.OrderBy, e.Having} {
		if c != nil {
			children = append(children, c)
		}
	}
	return children
}

func (e *FunAbs) Children() []Exp   { return []Exp{e.Body} }
func (e *FunApp) Children() []Exp   { return []Exp{e.F, e.E} }

func (e *ExpBlock) Children() []Exp {
	var children []Exp
	for _, b := range e.Binds {
		children = append(children, b.E)
	}
	return append(children, e.E)
}

func (*Partition) Children() []Exp { return nil }
func (*Star) Children() []Exp      { return nil }

func (e *Into) Children() []Exp   { return []Exp{e.Left, e.Right} }
func (e *Sum) Children() []Exp    { return []Exp{e.E} }
func (e *Max) Children() []Exp    { return []Exp{e.E} }
func (e *Min) Children() []Exp    { return []Exp{e.E} }
func (e *Avg) Children() []Exp    { return []Exp{e.E} }
func (e *Count) Children() []Exp  { return []Exp{e.E} }
func (e *Exists) Children() []Exp { return []Exp{e.E} }
func (e *In) Children() []Exp     { return []Exp{e.Left, e.Right} }

func (*VariablePath) Children() []Exp { return nil }
func (e *InnerPath) Children() []Exp  { return []Exp{e.P} }
