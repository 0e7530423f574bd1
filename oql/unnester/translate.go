package unnester

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/algebra"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

var binaryOps = map[calculus.BinaryOperator]algebra.Operator{
	calculus.OpEq:    algebra.OpEq,
	calculus.OpNeq:   algebra.OpNeq,
	calculus.OpLt:    algebra.OpLt,
	calculus.OpLe:    algebra.OpLe,
	calculus.OpGt:    algebra.OpGt,
	calculus.OpGe:    algebra.OpGe,
	calculus.OpAnd:   algebra.OpAnd,
	calculus.OpOr:    algebra.OpOr,
	calculus.OpPlus:  algebra.OpPlus,
	calculus.OpMinus: algebra.OpMinus,
	calculus.OpTimes: algebra.OpTimes,
	calculus.OpDiv:   algebra.OpDiv,
	calculus.OpMod:   algebra.OpMod,
}

// translate converts a canonical calculus expression into an algebra
// expression over the given pattern variables. Variables become positional
// arguments; constructs the driver should have eliminated are rejected.
func (u *Unnester) translate(e calculus.Exp, vars []string) (algebra.Expr, error) {
	switch e := e.(type) {
	case *calculus.BoolConst:
		return &algebra.BoolVal{Value: e.Value}, nil
	case *calculus.IntConst:
		return &algebra.IntVal{Value: e.Value}, nil
	case *calculus.FloatConst:
		return &algebra.FloatVal{Value: e.Value}, nil
	case *calculus.StringConst:
		return &algebra.StringVal{Value: e.Value}, nil
	case *calculus.Null:
		return &algebra.NullVal{}, nil

	case *calculus.IdnExp:
		return u.argFor(e.Idn, vars, e)
	case *calculus.VariablePath:
		return u.argFor(e.Idn, vars, e)

	case *calculus.RecordProj:
		inner, err := u.translate(e.E, vars)
		if err != nil {
			return nil, err
		}
		return &algebra.Proj{E: inner, Field: e.Idn}, nil
	case *calculus.InnerPath:
		inner, err := u.translate(e.P, vars)
		if err != nil {
			return nil, err
		}
		return &algebra.Proj{E: inner, Field: e.Field}, nil

	case *calculus.RecordCons:
		atts := make([]algebra.AttrExpr, len(e.Atts))
		for i, att := range e.Atts {
			inner, err := u.translate(att.E, vars)
			if err != nil {
				return nil, err
			}
			atts[i] = algebra.AttrExpr{Idn: att.Idn, E: inner}
		}
		return &algebra.RecordCons{Atts: atts}, nil

	case *calculus.BinaryExp:
		left, err := u.translate(e.Left, vars)
		if err != nil {
			return nil, err
		}
		right, err := u.translate(e.Right, vars)
		if err != nil {
			return nil, err
		}
		return &algebra.BinaryOp{Op: binaryOps[e.Op], Left: left, Right: right}, nil

	case *calculus.UnaryExp:
		if e.Op.IsMonoidConversion() {
			return u.translate(e.E, vars)
		}
		inner, err := u.translate(e.E, vars)
		if err != nil {
			return nil, err
		}
		op := algebra.OpNot
		if e.Op == calculus.OpNeg {
			op = algebra.OpNeg
		}
		return &algebra.UnaryOp{Op: op, E: inner}, nil

	case *calculus.IfThenElse:
		cond, err := u.translate(e.Cond, vars)
		if err != nil {
			return nil, err
		}
		then, err := u.translate(e.Then, vars)
		if err != nil {
			return nil, err
		}
		els, err := u.translate(e.Else, vars)
		if err != nil {
			return nil, err
		}
		return &algebra.IfThenElse{Cond: cond, Then: then, Else: els}, nil

	case *calculus.MergeMonoid:
		if _, collection := e.M.(oql.CollectionMonoid); !collection {
			if _, primitive := e.M.(oql.PrimitiveMonoid); !primitive {
				return nil, oql.ErrInternal.New("merge of unresolved monoid " + e.M.String())
			}
		}
		left, err := u.translate(e.Left, vars)
		if err != nil {
			return nil, err
		}
		right, err := u.translate(e.Right, vars)
		if err != nil {
			return nil, err
		}
		return &algebra.MergeMonoid{M: e.M, Left: left, Right: right}, nil

	case *calculus.ZeroCollectionMonoid:
		return &algebra.ZeroCollection{M: e.M}, nil

	case *calculus.ConsCollectionMonoid:
		inner, err := u.translate(e.E, vars)
		if err != nil {
			return nil, err
		}
		return &algebra.ConsCollection{M: e.M, E: inner}, nil

	case *calculus.MultiCons:
		var out algebra.Expr = &algebra.ZeroCollection{M: e.M}
		for i := len(e.Exps) - 1; i >= 0; i-- {
			inner, err := u.translate(e.Exps[i], vars)
			if err != nil {
				return nil, err
			}
			out = &algebra.MergeMonoid{M: e.M,
				Left: &algebra.ConsCollection{M: e.M, E: inner}, Right: out}
		}
		return out, nil

	case *calculus.CanonComp, *calculus.Comp, *calculus.Select:
		return nil, oql.ErrInternal.New("nested comprehension outside the unnesting driver: " + e.String())
	}
	return nil, oql.ErrInternal.New("cannot translate " + e.String())
}

func (u *Unnester) argFor(idn string, vars []string, e calculus.Exp) (algebra.Expr, error) {
	idx := indexOf(vars, idn)
	if idx < 0 {
		return nil, oql.ErrInternal.New("variable " + idn + " is not in the current pattern")
	}
	return &algebra.Arg{T: u.varTypes[idn], Index: idx}, nil
}

// translateConj translates the conjunction of canonical predicates.
func (u *Unnester) translateConj(preds []calculus.Exp, vars []string) (algebra.Expr, error) {
	out := make([]algebra.Expr, 0, len(preds))
	for _, p := range preds {
		t, err := u.translate(p, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return algebra.Conj(out...), nil
}
