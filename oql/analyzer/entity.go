// Package analyzer implements the semantic analysis of calculus trees (scope
// resolution, type inference, monoid checks) and the rule pipeline that
// desugars, normalizes and canonicalizes them for the unnester.
package analyzer

import (
	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

// Entity is what an identifier occurrence resolves to.
type Entity interface {
	entityNode()
}

// VariableEntity is a variable bound by a pattern. Scheme is non-nil when
// the bind site was generalized, in which case every use instantiates it.
type VariableEntity struct {
	Idn    string
	T      oql.Type
	Scheme *oql.TypeScheme
}

// DataSourceEntity is a name resolved against the catalog.
type DataSourceEntity struct {
	Name string
	T    oql.Type
}

// PartitionEntity is a use of partition inside a select projection.
type PartitionEntity struct {
	Sel *calculus.Select
	T   oql.Type
}

// StarEntity is a use of * inside a select projection.
type StarEntity struct {
	Sel *calculus.Select
	T   oql.Type
}

// GenAttributeEntity is an identifier injected into scope by an anonymous
// generator over a record collection.
type GenAttributeEntity struct {
	Att   oql.AttrType
	Gen   *calculus.Gen
	Index int
}

// IntoAttributeEntity is an identifier injected into the right side of an
// into expression by the record type of its left side.
type IntoAttributeEntity struct {
	Att   oql.AttrType
	Into  *calculus.Into
	Index int
}

// MultipleEntity marks a declaration that collides with one already in
// scope.
type MultipleEntity struct {
	Idn string
}

// UnknownEntity marks an identifier that resolved to nothing.
type UnknownEntity struct {
	Idn string
}

func (*VariableEntity) entityNode()      {}
func (*DataSourceEntity) entityNode()    {}
func (*PartitionEntity) entityNode()     {}
func (*StarEntity) entityNode()          {}
func (*GenAttributeEntity) entityNode()  {}
func (*IntoAttributeEntity) entityNode() {}
func (*MultipleEntity) entityNode()      {}
func (*UnknownEntity) entityNode()       {}
