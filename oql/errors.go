package oql

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrIncompatibleTypes is returned when two types fail to unify.
	ErrIncompatibleTypes = errors.NewKind("incompatible types: %s and %s")

	// ErrUnexpectedType is returned when an expression's type is not of the
	// form an operation requires.
	ErrUnexpectedType = errors.NewKind("unexpected type: got %s, expected %s")

	// ErrIncompatibleMonoids is returned when a generator's collection monoid
	// cannot feed the comprehension's monoid.
	ErrIncompatibleMonoids = errors.NewKind("monoid %s incompatible with %s")

	// ErrPatternMismatch is returned when a pattern's shape does not match
	// the type of the expression it destructures.
	ErrPatternMismatch = errors.NewKind("pattern does not match expression of type %s")

	// ErrMultipleDecl is returned when an identifier is declared while an
	// identifier of the same name is already in scope.
	ErrMultipleDecl = errors.NewKind("%s is declared more than once")

	// ErrUnknownDecl is returned when an identifier resolves neither to a
	// declaration nor to a catalog source.
	ErrUnknownDecl = errors.NewKind("%s is not declared%s")

	// ErrAmbiguousIdn is returned when an identifier has more than one
	// plausible binding.
	ErrAmbiguousIdn = errors.NewKind("%s is ambiguous")

	// ErrUnknownPartition is returned when partition is used outside of a
	// select projection with a group by.
	ErrUnknownPartition = errors.NewKind("partition is only valid in the projection of a select with group by")

	// ErrUnknownStar is returned when * is used outside of a select
	// projection.
	ErrUnknownStar = errors.NewKind("* is only valid in the projection of a select")

	// ErrIllegalStar is returned when * is combined with other projections
	// in a select without group by.
	ErrIllegalStar = errors.NewKind("* cannot be combined with other projections without group by")

	// ErrInvalidRegexSyntax is returned for malformed regular expression
	// literals.
	ErrInvalidRegexSyntax = errors.NewKind("invalid regular expression: %s")

	// ErrInvalidDateTimeFormatSyntax is returned for malformed datetime
	// format literals.
	ErrInvalidDateTimeFormatSyntax = errors.NewKind("invalid datetime format: %s")

	// ErrInternal is returned when a later pass detects a violation of an
	// invariant an earlier pass should have established. It is a bug, never
	// a user error.
	ErrInternal = errors.NewKind("internal error: %s")

	// ErrCyclicUserType is returned when resolving a user type would expand
	// forever.
	ErrCyclicUserType = errors.NewKind("cyclic user type: %s")
)

// ErrorKind names a wire-stable error category.
type ErrorKind string

const (
	IncompatibleTypes           ErrorKind = "IncompatibleTypes"
	UnexpectedType              ErrorKind = "UnexpectedType"
	IncompatibleMonoids         ErrorKind = "IncompatibleMonoids"
	PatternMismatch             ErrorKind = "PatternMismatch"
	MultipleDecl                ErrorKind = "MultipleDecl"
	UnknownDecl                 ErrorKind = "UnknownDecl"
	AmbiguousIdn                ErrorKind = "AmbiguousIdn"
	UnknownPartition            ErrorKind = "UnknownPartition"
	UnknownStar                 ErrorKind = "UnknownStar"
	IllegalStar                 ErrorKind = "IllegalStar"
	InvalidRegexSyntax          ErrorKind = "InvalidRegexSyntax"
	InvalidDateTimeFormatSyntax ErrorKind = "InvalidDateTimeFormatSyntax"
	InternalError               ErrorKind = "InternalError"
)

// Error is a structured compilation error with up to two source positions.
type Error struct {
	Kind ErrorKind
	Desc string
	Pos  Position
	Pos2 Position
}

func (e *Error) Error() string {
	if e.Pos.Defined() {
		return fmt.Sprintf("%s at %s", e.Desc, e.Pos)
	}
	return e.Desc
}

// NewError builds a structured error from a kind and a rendered description.
func NewError(kind ErrorKind, desc string, pos Position) *Error {
	return &Error{Kind: kind, Desc: desc, Pos: pos}
}

// Errors accumulates structured errors, dropping duplicates. The analyzer
// keeps typing after a failure, so the same underlying mismatch can surface
// through several constraints; only the first report survives.
type Errors struct {
	list []*Error
	seen map[uint64]struct{}
}

// NewErrors creates an empty accumulator.
func NewErrors() *Errors {
	return &Errors{seen: make(map[uint64]struct{})}
}

// Add records the error unless an identical one was already recorded.
func (e *Errors) Add(err *Error) {
	hash, herr := hashstructure.Hash(err, nil)
	if herr == nil {
		if _, dup := e.seen[hash]; dup {
			return
		}
		e.seen[hash] = struct{}{}
	}
	e.list = append(e.list, err)
}

// List returns the accumulated errors in report order.
func (e *Errors) List() []*Error {
	return e.list
}

// Empty reports whether no error has been recorded.
func (e *Errors) Empty() bool {
	return len(e.list) == 0
}
