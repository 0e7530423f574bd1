package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// cnf converts a boolean expression to conjunctive normal form: negations
// are pushed down to the atoms, then disjunctions are distributed over
// conjunctions. Non-boolean operators and nested comprehensions are atoms.
func cnf(e calculus.Exp) calculus.Exp {
	return distribute(nnf(e, false))
}

// nnf pushes negation inward; neg records whether an odd number of nots
// encloses e.
func nnf(e calculus.Exp, neg bool) calculus.Exp {
	switch e := e.(type) {
	case *calculus.UnaryExp:
		if e.Op == calculus.OpNot {
			return nnf(e.E, !neg)
		}
	case *calculus.BinaryExp:
		switch e.Op {
		case calculus.OpAnd:
			op := calculus.OpAnd
			if neg {
				op = calculus.OpOr
			}
			return calculus.NewBinaryExp(e.Pos(), op, nnf(e.Left, neg), nnf(e.Right, neg))
		case calculus.OpOr:
			op := calculus.OpOr
			if neg {
				op = calculus.OpAnd
			}
			return calculus.NewBinaryExp(e.Pos(), op, nnf(e.Left, neg), nnf(e.Right, neg))
		}
	case *calculus.BoolConst:
		if neg {
			return calculus.NewBoolConst(e.Pos(), !e.Value)
		}
		return e
	}
	if neg {
		return calculus.NewUnaryExp(e.Pos(), calculus.OpNot, e)
	}
	return e
}

func distribute(e calculus.Exp) calculus.Exp {
	b, ok := e.(*calculus.BinaryExp)
	if !ok {
		return e
	}
	switch b.Op {
	case calculus.OpAnd:
		return calculus.NewBinaryExp(b.Pos(), calculus.OpAnd,
			distribute(b.Left), distribute(b.Right))
	case calculus.OpOr:
		l := distribute(b.Left)
		r := distribute(b.Right)
		if la, ok := l.(*calculus.BinaryExp); ok && la.Op == calculus.OpAnd {
			return calculus.NewBinaryExp(b.Pos(), calculus.OpAnd,
				distribute(calculus.NewBinaryExp(b.Pos(), calculus.OpOr, la.Left, r)),
				distribute(calculus.NewBinaryExp(b.Pos(), calculus.OpOr, la.Right, r)))
		}
		if ra, ok := r.(*calculus.BinaryExp); ok && ra.Op == calculus.OpAnd {
			return calculus.NewBinaryExp(b.Pos(), calculus.OpAnd,
				distribute(calculus.NewBinaryExp(b.Pos(), calculus.OpOr, l, ra.Left)),
				distribute(calculus.NewBinaryExp(b.Pos(), calculus.OpOr, l, ra.Right)))
		}
		return calculus.NewBinaryExp(b.Pos(), calculus.OpOr, l, r)
	}
	return e
}

// Conjuncts flattens a CNF expression into its top-level conjuncts. The
// literal true yields none.
func Conjuncts(e calculus.Exp) []calculus.Exp {
	if b, ok := e.(*calculus.BoolConst); ok && b.Value {
		return nil
	}
	if b, ok := e.(*calculus.BinaryExp); ok && b.Op == calculus.OpAnd {
		return append(Conjuncts(b.Left), Conjuncts(b.Right)...)
	}
	return []calculus.Exp{e}
}

// Conjoin folds expressions into one conjunction; an empty list is true.
func Conjoin(exprs []calculus.Exp) calculus.Exp {
	var out calculus.Exp
	for _, e := range exprs {
		if b, ok := e.(*calculus.BoolConst); ok && b.Value {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = calculus.NewBinaryExp(e.Pos(), calculus.OpAnd, out, e)
	}
	if out == nil {
		return calculus.NewBoolConst(oql.Position{}, true)
	}
	return out
}
