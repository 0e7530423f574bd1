package calculus

import (
	"fmt"
	"strings"

	"github.com/oqlc/go-oql-compiler/oql"
)

// Pattern is the binding form of generators, binds and function parameters.
type Pattern interface {
	fmt.Stringer
	Pos() oql.Position
	patternNode()
}

// PatternIdn binds a single identifier.
type PatternIdn struct {
	position
	Idn string
}

// PatternProd destructures an unlabeled product.
type PatternProd struct {
	position
	Ps []Pattern
}

func (*PatternIdn) patternNode()  {}
func (*PatternProd) patternNode() {}

func (p *PatternIdn) String() string { return p.Idn }

func (p *PatternProd) String() string {
	parts := make([]string, len(p.Ps))
	for i, sub := range p.Ps {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PatternIdns returns the identifiers bound by a pattern, in order.
func PatternIdns(p Pattern) []string {
	switch p := p.(type) {
	case *PatternIdn:
		return []string{p.Idn}
	case *PatternProd:
		var idns []string
		for _, sub := range p.Ps {
			idns = append(idns, PatternIdns(sub)...)
		}
		return idns
	}
	return nil
}

// Qual is a comprehension qualifier: a generator, a bind, or a predicate.
type Qual interface {
	fmt.Stringer
	qualNode()
}

// Gen draws elements from a collection. P may be nil for an anonymous
// generator, whose record attributes are injected into scope instead.
type Gen struct {
	position
	P Pattern
	E Exp
}

// Bind names the value of an expression.
type Bind struct {
	position
	P Pattern
	E Exp
}

// Pred is a boolean qualifier filtering the upstream generators.
type Pred struct {
	E Exp
}

func (*Gen) qualNode()  {}
func (*Bind) qualNode() {}
func (*Pred) qualNode() {}

func (g *Gen) String() string {
	if g.P == nil {
		return fmt.Sprintf("<- %s", g.E)
	}
	return fmt.Sprintf("%s <- %s", g.P, g.E)
}

func (b *Bind) String() string {
	return fmt.Sprintf("%s := %s", b.P, b.E)
}

func (p *Pred) String() string { return p.E.String() }
