package calculus

import (
	"github.com/oqlc/go-oql-compiler/oql"
)

// Constructors used by the analyzer's rewrite rules. Nodes may also be built
// as literals; these exist to set positions in one step.

// NewIdnExp creates an identifier use.
func NewIdnExp(pos oql.Position, idn string) *IdnExp {
	return &IdnExp{position{pos}, idn}
}

// NewPatternIdn creates an identifier pattern.
func NewPatternIdn(pos oql.Position, idn string) *PatternIdn {
	return &PatternIdn{position{pos}, idn}
}

// NewGen creates a generator qualifier.
func NewGen(pos oql.Position, p Pattern, e Exp) *Gen {
	return &Gen{position{pos}, p, e}
}

// NewBind creates a bind qualifier.
func NewBind(pos oql.Position, p Pattern, e Exp) *Bind {
	return &Bind{position{pos}, p, e}
}

// NewPred creates a predicate qualifier.
func NewPred(e Exp) *Pred {
	return &Pred{E: e}
}

// NewComp creates a comprehension.
func NewComp(pos oql.Position, m oql.Monoid, quals []Qual, e Exp) *Comp {
	return &Comp{position{pos}, m, quals, e}
}

// NewCanonComp creates a canonical comprehension.
func NewCanonComp(pos oql.Position, m oql.Monoid, gens []*Gen, pred, e Exp) *CanonComp {
	return &CanonComp{position{pos}, m, gens, pred, e}
}

// NewRecordProj creates a record projection.
func NewRecordProj(pos oql.Position, e Exp, idn string) *RecordProj {
	return &RecordProj{position{pos}, e, idn}
}

// NewBinaryExp creates a binary expression.
func NewBinaryExp(pos oql.Position, op BinaryOperator, left, right Exp) *BinaryExp {
	return &BinaryExp{position{pos}, op, left, right}
}

// NewUnaryExp creates a unary expression.
func NewUnaryExp(pos oql.Position, op UnaryOperator, e Exp) *UnaryExp {
	return &UnaryExp{position{pos}, op, e}
}

// NewBoolConst creates a boolean literal.
func NewBoolConst(pos oql.Position, v bool) *BoolConst {
	return &BoolConst{position{pos}, v}
}

// NewIntConst creates an integer literal.
func NewIntConst(pos oql.Position, v int64) *IntConst {
	return &IntConst{position{pos}, v}
}

// NewFunAbs creates a function abstraction.
func NewFunAbs(pos oql.Position, p Pattern, body Exp) *FunAbs {
	return &FunAbs{position{pos}, p, body}
}

// NewFunApp creates a function application.
func NewFunApp(pos oql.Position, f, e Exp) *FunApp {
	return &FunApp{position{pos}, f, e}
}

// NewExpBlock creates an expression block.
func NewExpBlock(pos oql.Position, binds []*Bind, e Exp) *ExpBlock {
	return &ExpBlock{position{pos}, binds, e}
}

// NewVariablePath creates a path rooted at a variable.
func NewVariablePath(pos oql.Position, idn string) *VariablePath {
	return &VariablePath{position{pos}, idn}
}

// NewInnerPath creates a field projection path.
func NewInnerPath(pos oql.Position, p Path, field string) *InnerPath {
	return &InnerPath{position{pos}, p, field}
}
