package calculus

// TransformUp applies f to every node of the tree, bottom-up. Each node is
// rebuilt before f sees it, so f always receives a node whose children have
// already been transformed. Positions are preserved.
func TransformUp(e Exp, f func(Exp) Exp) Exp {
	return f(rebuild(e, func(child Exp) Exp { return TransformUp(child, f) }))
}

// rebuild returns a copy of e with every direct child expression replaced by
// f(child).
func rebuild(e Exp, f func(Exp) Exp) Exp {
	switch e := e.(type) {
	case *BoolConst, *IntConst, *FloatConst, *StringConst, *RegexConst, *Null,
		*IdnExp, *ZeroCollectionMonoid, *Partition, *Star, *VariablePath:
		return e
	case *RecordProj:
		return &RecordProj{e.position, f(e.E), e.Idn}
	case *RecordCons:
		atts := make([]AttrCons, len(e.Atts))
		for i, att := range e.Atts {
			atts[i] = AttrCons{Idn: att.Idn, E: f(att.E)}
		}
		return &RecordCons{e.position, atts}
	case *IfThenElse:
		return &IfThenElse{e.position, f(e.Cond), f(e.Then), f(e.Else)}
	case *BinaryExp:
		return &BinaryExp{e.position, e.Op, f(e.Left), f(e.Right)}
	case *UnaryExp:
		return &UnaryExp{e.position, e.Op, f(e.E)}
	case *MergeMonoid:
		return &MergeMonoid{e.position, e.M, f(e.Left), f(e.Right)}
	case *ConsCollectionMonoid:
		return &ConsCollectionMonoid{e.position, e.M, f(e.E)}
	case *MultiCons:
		exps := make([]Exp, len(e.Exps))
		for i, x := range e.Exps {
			exps[i] = f(x)
		}
		return &MultiCons{e.position, e.M, exps}
	case *Comp:
		quals := make([]Qual, len(e.Quals))
		for i, q := range e.Quals {
			quals[i] = rebuildQual(q, f)
		}
		return &Comp{e.position, e.M, quals, f(e.E)}
	case *CanonComp:
		gens := make([]*Gen, len(e.Gens))
		for i, g := range e.Gens {
			gens[i] = &Gen{g.position, g.P, f(g.E)}
		}
		return &CanonComp{e.position, e.M, gens, f(e.Pred), f(e.E)}
	case *Select:
		from := make([]*Gen, len(e.From))
		for i, g := range e.From {
			from[i] = &Gen{g.position, g.P, f(g.E)}
		}
		s := &Select{position: e.position, From: from, Distinct: e.Distinct, Proj: f(e.Proj)}
		if e.GroupBy != nil {
			s.GroupBy = f(e.GroupBy)
		}
		if e.Where != nil {
			s.Where = f(e.Where)
		}
		if e.OrderBy != nil {
			s.OrderBy = f(e.OrderBy)
		}
		if e.Having != nil {
			s.Having = f(e.Having)
		}
		return s
	case *FunAbs:
		return &FunAbs{e.position, e.P, f(e.Body)}
	case *FunApp:
		return &FunApp{e.position, f(e.F), f(e.E)}
	case *ExpBlock:
		binds := make([]*Bind, len(e.Binds))
		for i, b := range e.Binds {
			binds[i] = &Bind{b.position, b.P, f(b.E)}
		}
		return &ExpBlock{e.position, binds, f(e.E)}
	case *Into:
		return &Into{e.position, f(e.Left), f(e.Right)}
	case *Sum:
		return &Sum{e.position, f(e.E)}
	case *Max:
		return &Max{e.position, f(e.E)}
	case *Min:
		return &Min{e.position, f(e.E)}
	case *Avg:
		return &Avg{e.position, f(e.E)}
	case *Count:
		return &Count{e.position, f(e.E)}
	case *Exists:
		return &Exists{e.position, f(e.E)}
	case *In:
		return &In{e.position, f(e.Left), f(e.Right)}
	case *InnerPath:
		return &InnerPath{e.position, f(e.P).(Path), e.Field}
	}
	return e
}

func rebuildQual(q Qual, f func(Exp) Exp) Qual {
	switch q := q.(type) {
	case *Gen:
		return &Gen{q.position, q.P, f(q.E)}
	case *Bind:
		return &Bind{q.position, q.P, f(q.E)}
	case *Pred:
		return &Pred{E: f(q.E)}
	}
	return q
}

// RebuildWith returns a copy of e with every direct child expression
// replaced by f(child). It does not recurse: f decides how to continue.
func RebuildWith(e Exp, f func(Exp) Exp) Exp {
	return rebuild(e, f)
}

// Inspect performs a pre-order traversal of the tree; it calls f(node) and,
// if f returns true, recurses into the node's children.
func Inspect(e Exp, f func(Exp) bool) {
	if !f(e) {
		return
	}
	for _, child := range e.Children() {
		Inspect(child, f)
	}
}

// Contains reports whether any node of the tree satisfies pred.
func Contains(e Exp, pred func(Exp) bool) bool {
	found := false
	Inspect(e, func(n Exp) bool {
		if found || pred(n) {
			found = true
			return false
		}
		return true
	})
	return found
}
