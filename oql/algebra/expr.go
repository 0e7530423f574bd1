package algebra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oqlc/go-oql-compiler/oql"
)

// Expr is an expression over an operator's input pattern. Variables from the
// calculus have been replaced by positional Arg references; only primitive
// monoids and types appear in arithmetic positions.
type Expr interface {
	fmt.Stringer
	algebraExpr()
}

// Arg refers to the Index-th variable of the operator's input pattern.
type Arg struct {
	T     oql.Type
	Index int
}

// BoolVal is a boolean constant.
type BoolVal struct {
	Value bool
}

// IntVal is an integer constant.
type IntVal struct {
	Value int64
}

// FloatVal is a floating point constant.
type FloatVal struct {
	Value float64
}

// StringVal is a string constant.
type StringVal struct {
	Value string
}

// NullVal is the null constant.
type NullVal struct{}

// Proj projects a field out of a record expression.
type Proj struct {
	E     Expr
	Field string
}

// AttrExpr is one attribute of a record construction.
type AttrExpr struct {
	Idn string
	E   Expr
}

// RecordCons constructs a record.
type RecordCons struct {
	Atts []AttrExpr
}

// BinaryOp applies a binary operator. The operator set is shared with the
// calculus.
type BinaryOp struct {
	Op    Operator
	Left  Expr
	Right Expr
}

// UnaryOp applies not or negation.
type UnaryOp struct {
	Op Operator
	E  Expr
}

// IfThenElse is a conditional expression.
type IfThenElse struct {
	Cond Expr
	Then Expr
	Else Expr
}

// MergeMonoid merges two values of a primitive monoid.
type MergeMonoid struct {
	M     oql.Monoid
	Left  Expr
	Right Expr
}

// ZeroCollection is an empty collection value.
type ZeroCollection struct {
	M oql.CollectionMonoid
}

// ConsCollection is a singleton collection value.
type ConsCollection struct {
	M oql.CollectionMonoid
	E Expr
}

// Operator names an algebra expression operator.
type Operator string

const (
	OpEq    Operator = "="
	OpNeq   Operator = "<>"
	OpLt    Operator = "<"
	OpLe    Operator = "<="
	OpGt    Operator = ">"
	OpGe    Operator = ">="
	OpAnd   Operator = "and"
	OpOr    Operator = "or"
	OpPlus  Operator = "+"
	OpMinus Operator = "-"
	OpTimes Operator = "*"
	OpDiv   Operator = "/"
	OpMod   Operator = "%"
	OpNot   Operator = "not"
	OpNeg   Operator = "neg"
)

func (*Arg) algebraExpr()            {}
func (*BoolVal) algebraExpr()        {}
func (*IntVal) algebraExpr()         {}
func (*FloatVal) algebraExpr()       {}
func (*StringVal) algebraExpr()      {}
func (*NullVal) algebraExpr()        {}
func (*Proj) algebraExpr()           {}
func (*RecordCons) algebraExpr()     {}
func (*BinaryOp) algebraExpr()       {}
func (*UnaryOp) algebraExpr()        {}
func (*IfThenElse) algebraExpr()     {}
func (*MergeMonoid) algebraExpr()    {}
func (*ZeroCollection) algebraExpr() {}
func (*ConsCollection) algebraExpr() {}

func (e *Arg) String() string       { return "$" + strconv.Itoa(e.Index) }
func (e *BoolVal) String() string   { return strconv.FormatBool(e.Value) }
func (e *IntVal) String() string    { return strconv.FormatInt(e.Value, 10) }
func (e *FloatVal) String() string  { return strconv.FormatFloat(e.Value, 'g', -1, 64) }
func (e *StringVal) String() string { return strconv.Quote(e.Value) }
func (*NullVal) String() string     { return "null" }

func (e *Proj) String() string { return fmt.Sprintf("%s.%s", e.E, e.Field) }

func (e *RecordCons) String() string {
	parts := make([]string, len(e.Atts))
	for i, att := range e.Atts {
		parts[i] = fmt.Sprintf("%s: %s", att.Idn, att.E)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *UnaryOp) String() string {
	return fmt.Sprintf("%s(%s)", e.Op, e.E)
}

func (e *IfThenElse) String() string {
	return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
}

func (e *MergeMonoid) String() string {
	return fmt.Sprintf("(%s merge %s %s)", e.Left, e.M, e.Right)
}

func (e *ZeroCollection) String() string {
	return fmt.Sprintf("%s()", e.M)
}

func (e *ConsCollection) String() string {
	return fmt.Sprintf("%s(%s)", e.M, e.E)
}

// True is the trivially satisfied predicate.
func True() Expr { return &BoolVal{Value: true} }

// IsTrue reports whether e is the literal true predicate.
func IsTrue(e Expr) bool {
	b, ok := e.(*BoolVal)
	return ok && b.Value
}

// Conj folds expressions into a conjunction, treating an empty list as true.
func Conj(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e == nil || IsTrue(e) {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &BinaryOp{Op: OpAnd, Left: out, Right: e}
	}
	if out == nil {
		return True()
	}
	return out
}
