package oql

import (
	"fmt"
	"strings"
)

// Type is the type of a calculus expression. All implementations are pointer
// types; pointer identity is what ties a type occurrence to its union-find
// group, so a type value must never be shared between unrelated occurrences.
type Type interface {
	fmt.Stringer
	// Nullable reports whether the value may be null. The flag is written by
	// the analyzer's nullability pass after base typing succeeds.
	Nullable() bool
	SetNullable(bool)
	typeNode()
}

type nullable struct {
	null bool
}

func (n *nullable) Nullable() bool     { return n.null }
func (n *nullable) SetNullable(b bool) { n.null = b }

// BoolType is the type of booleans.
type BoolType struct{ nullable }

// IntType is the type of integers.
type IntType struct{ nullable }

// FloatType is the type of floating point numbers.
type FloatType struct{ nullable }

// StringType is the type of strings.
type StringType struct{ nullable }

// DateTimeType is the type of timestamps.
type DateTimeType struct{ nullable }

// IntervalType is the type of time intervals.
type IntervalType struct{ nullable }

// RegexType is the type of regular expression values.
type RegexType struct{ nullable }

// AnyType unifies with every type. It is installed as a best-effort
// substitution after a failed unification so analysis can continue.
type AnyType struct{ nullable }

// RecordType is a record over a set of attributes.
type RecordType struct {
	nullable
	Atts RecordAttributes
}

// CollectionType is a collection of Inner elements aggregated by a collection
// monoid (or a monoid variable while inference is in progress).
type CollectionType struct {
	nullable
	M     Monoid
	Inner Type
}

// FunType is the type of a function from Param to Result.
type FunType struct {
	nullable
	Param  Type
	Result Type
}

// UserType refers to a named type in the catalog's type map.
type UserType struct {
	nullable
	Sym Symbol
}

// PatternType is an unlabeled product used for function parameters that
// destructure tuples.
type PatternType struct {
	nullable
	Atts []Type
}

// TypeVariable is an unconstrained type variable.
type TypeVariable struct {
	nullable
	Sym Symbol
}

// NumberType is a type variable ranging over Int and Float.
type NumberType struct {
	nullable
	Sym Symbol
}

// PrimitiveType is a type variable ranging over Bool, Int, Float and String.
type PrimitiveType struct {
	nullable
	Sym Symbol
}

// TypeScheme is a polymorphic binding produced by let-generalization at Bind
// sites. The free symbol lists name the variables to freshen at each use.
type TypeScheme struct {
	nullable
	T              Type
	FreeTypeSyms   []Symbol
	FreeMonoidSyms []Symbol
	FreeAttSyms    []Symbol
}

func (*BoolType) typeNode()       {}
func (*IntType) typeNode()        {}
func (*FloatType) typeNode()      {}
func (*StringType) typeNode()     {}
func (*DateTimeType) typeNode()   {}
func (*IntervalType) typeNode()   {}
func (*RegexType) typeNode()      {}
func (*AnyType) typeNode()        {}
func (*RecordType) typeNode()     {}
func (*CollectionType) typeNode() {}
func (*FunType) typeNode()        {}
func (*UserType) typeNode()       {}
func (*PatternType) typeNode()    {}
func (*TypeVariable) typeNode()   {}
func (*NumberType) typeNode()     {}
func (*PrimitiveType) typeNode()  {}
func (*TypeScheme) typeNode()     {}

func (*BoolType) String() string     { return "bool" }
func (*IntType) String() string      { return "int" }
func (*FloatType) String() string    { return "float" }
func (*StringType) String() string   { return "string" }
func (*DateTimeType) String() string { return "datetime" }
func (*IntervalType) String() string { return "interval" }
func (*RegexType) String() string    { return "regex" }
func (*AnyType) String() string      { return "any" }

func (t *RecordType) String() string {
	return fmt.Sprintf("record(%s)", t.Atts)
}

func (t *CollectionType) String() string {
	return fmt.Sprintf("%s(%s)", strings.ToLower(t.M.String()), t.Inner)
}

func (t *FunType) String() string {
	return fmt.Sprintf("%s -> %s", t.Param, t.Result)
}

func (t *UserType) String() string {
	return t.Sym.String()
}

func (t *PatternType) String() string {
	parts := make([]string, len(t.Atts))
	for i, a := range t.Atts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("pattern(%s)", strings.Join(parts, ", "))
}

func (t *TypeVariable) String() string  { return t.Sym.String() }
func (t *NumberType) String() string    { return fmt.Sprintf("number(%s)", t.Sym) }
func (t *PrimitiveType) String() string { return fmt.Sprintf("primitive(%s)", t.Sym) }

func (t *TypeScheme) String() string {
	return fmt.Sprintf("forall %d. %s",
		len(t.FreeTypeSyms)+len(t.FreeMonoidSyms)+len(t.FreeAttSyms), t.T)
}

// IsVariableType reports whether t is one of the type variable forms.
func IsVariableType(t Type) bool {
	switch t.(type) {
	case *TypeVariable, *NumberType, *PrimitiveType:
		return true
	}
	return false
}

// TypeVariableSym returns the symbol of a variable type, if t is one.
func TypeVariableSym(t Type) (Symbol, bool) {
	switch t := t.(type) {
	case *TypeVariable:
		return t.Sym, true
	case *NumberType:
		return t.Sym, true
	case *PrimitiveType:
		return t.Sym, true
	}
	return Symbol{}, false
}
