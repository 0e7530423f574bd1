package algebra

import (
	"fmt"
	"strings"

	"github.com/oqlc/go-oql-compiler/oql"
)

func (*Empty) String() string { return "Empty" }

func (n *Scan) String() string {
	return fmt.Sprintf("Scan(%s)\n", n.Name)
}

func (n *Select) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("Select(%s)", n.Pred)
	_ = p.WriteChildren(n.Child.String())
	return p.String()
}

func (n *Join) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("Join(%s)", n.Pred)
	_ = p.WriteChildren(n.Left.String(), n.Right.String())
	return p.String()
}

func (n *OuterJoin) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("OuterJoin(%s)", n.Pred)
	_ = p.WriteChildren(n.Left.String(), n.Right.String())
	return p.String()
}

func (n *Unnest) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("Unnest(%s, %s)", n.Path, n.Pred)
	_ = p.WriteChildren(n.Child.String())
	return p.String()
}

func (n *OuterUnnest) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("OuterUnnest(%s, %s)", n.Path, n.Pred)
	_ = p.WriteChildren(n.Child.String())
	return p.String()
}

func (n *Nest) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("Nest(%s, %s, key=%s, %s, nulls=%s)",
		n.M, n.E, exprList(n.Key), n.Pred, exprList(n.Nulls))
	_ = p.WriteChildren(n.Child.String())
	return p.String()
}

func (n *Reduce) String() string {
	p := oql.NewTreePrinter()
	_ = p.WriteNode("Reduce(%s, %s, %s)", n.M, n.E, n.Pred)
	_ = p.WriteChildren(n.Child.String())
	return p.String()
}

func exprList(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
