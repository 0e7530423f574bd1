package calculus

import (
	"fmt"
	"strconv"
	"strings"
)

func (e *BoolConst) String() string   { return strconv.FormatBool(e.Value) }
func (e *IntConst) String() string    { return strconv.FormatInt(e.Value, 10) }
func (e *FloatConst) String() string  { return strconv.FormatFloat(e.Value, 'g', -1, 64) }
func (e *StringConst) String() string { return strconv.Quote(e.Value) }
func (e *RegexConst) String() string  { return "r" + strconv.Quote(e.Value) }
func (*Null) String() string          { return "null" }
func (e *IdnExp) String() string      { return e.Idn }

func (e *RecordProj) String() string {
	return fmt.Sprintf("%s.%s", e.E, e.Idn)
}

func (e *RecordCons) String() string {
	parts := make([]string, len(e.Atts))
	for i, att := range e.Atts {
		parts[i] = fmt.Sprintf("%s: %s", att.Idn, att.E)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *IfThenElse) String() string {
	return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
}

func (e *BinaryExp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *UnaryExp) String() string {
	if e.Op == OpNeg {
		return fmt.Sprintf("-%s", e.E)
	}
	return fmt.Sprintf("%s(%s)", e.Op, e.E)
}

func (e *MergeMonoid) String() string {
	return fmt.Sprintf("(%s merge %s %s)", e.Left, e.M, e.Right)
}

func (e *ZeroCollectionMonoid) String() string {
	return fmt.Sprintf("%s()", e.M)
}

func (e *ConsCollectionMonoid) String() string {
	return fmt.Sprintf("%s(%s)", e.M, e.E)
}

func (e *MultiCons) String() string {
	parts := make([]string, len(e.Exps))
	for i, x := range e.Exps {
		parts[i] = x.String()
	}
	return fmt.Sprintf("%s(%s)", e.M, strings.Join(parts, ", "))
}

func (e *Comp) String() string {
	parts := make([]string, len(e.Quals))
	for i, q := range e.Quals {
		parts[i] = q.String()
	}
	return fmt.Sprintf("for (%s) yield %s %s", strings.Join(parts, "; "), e.M, e.E)
}

func (e *CanonComp) String() string {
	parts := make([]string, len(e.Gens))
	for i, g := range e.Gens {
		parts[i] = g.String()
	}
	return fmt.Sprintf("for (%s; %s) yield %s %s",
		strings.Join(parts, "; "), e.Pred, e.M, e.E)
}

func (e *Select) String() string {
	var b strings.Builder
	b.WriteString("select ")
	if e.Distinct {
		b.WriteString("distinct ")
	}
	b.WriteString(e.Proj.String())
	b.WriteString(" from ")
	parts := make([]string, len(e.From))
	for i, g := range e.From {
		if g.P == nil {
			parts[i] = g.E.String()
		} else {
			parts[i] = fmt.Sprintf("%s %s", g.E, g.P)
		}
	}
	b.WriteString(strings.Join(parts, ", "))
	if e.Where != nil {
		fmt.Fprintf(&b, " where %s", e.Where)
	}
	if e.GroupBy != nil {
		fmt.Fprintf(&b, " group by %s", e.GroupBy)
	}
	if e.OrderBy != nil {
		fmt.Fprintf(&b, " order by %s", e.OrderBy)
	}
	if e.Having != nil {
		fmt.Fprintf(&b, " having %s", e.Having)
	}
	return b.String()
}

func (e *FunAbs) String() string {
	return fmt.Sprintf("\\%s -> %s", e.P, e.Body)
}

func (e *FunApp) String() string {
	return fmt.Sprintf("%s(%s)", e.F, e.E)
}

func (e *ExpBlock) String() string {
	parts := make([]string, len(e.Binds))
	for i, b := range e.Binds {
		parts[i] = b.String()
	}
	return fmt.Sprintf("{ %s; %s }", strings.Join(parts, "; "), e.E)
}

func (*Partition) String() string { return "partition" }
func (*Star) String() string      { return "*" }

func (e *Into) String() string {
	return fmt.Sprintf("%s into %s", e.Left, e.Right)
}

func (e *Sum) String() string    { return fmt.Sprintf("sum(%s)", e.E) }
func (e *Max) String() string    { return fmt.Sprintf("max(%s)", e.E) }
func (e *Min) String() string    { return fmt.Sprintf("min(%s)", e.E) }
func (e *Avg) String() string    { return fmt.Sprintf("avg(%s)", e.E) }
func (e *Count) String() string  { return fmt.Sprintf("count(%s)", e.E) }
func (e *Exists) String() string { return fmt.Sprintf("exists(%s)", e.E) }

func (e *In) String() string {
	return fmt.Sprintf("(%s in %s)", e.Left, e.Right)
}

func (e *VariablePath) String() string { return e.Idn }

func (e *InnerPath) String() string {
	return fmt.Sprintf("%s.%s", e.P, e.Field)
}
