package calculus

// Clone deep-copies a tree. Every node, qualifier and pattern is fresh, so
// the copy carries none of the original's side-table entries.
func Clone(e Exp) Exp {
	return rebuild(shallowCopy(e), Clone)
}

// shallowCopy duplicates the node itself so that rebuild, which reuses the
// node for leaf cases, never returns the original pointer.
func shallowCopy(e Exp) Exp {
	switch e := e.(type) {
	case *BoolConst:
		c := *e
		return &c
	case *IntConst:
		c := *e
		return &c
	case *FloatConst:
		c := *e
		return &c
	case *StringConst:
		c := *e
		return &c
	case *RegexConst:
		c := *e
		return &c
	case *Null:
		c := *e
		return &c
	case *IdnExp:
		c := *e
		return &c
	case *ZeroCollectionMonoid:
		c := *e
		return &c
	case *Partition:
		c := *e
		return &c
	case *Star:
		c := *e
		return &c
	case *VariablePath:
		c := *e
		return &c
	case *Comp:
		quals := make([]Qual, len(e.Quals))
		for i, q := range e.Quals {
			quals[i] = cloneQualShallow(q)
		}
		return &Comp{e.position, e.M, quals, e.E}
	case *CanonComp:
		gens := make([]*Gen, len(e.Gens))
		for i, g := range e.Gens {
			gens[i] = &Gen{g.position, ClonePattern(g.P), g.E}
		}
		return &CanonComp{e.position, e.M, gens, e.Pred, e.E}
	case *Select:
		from := make([]*Gen, len(e.From))
		for i, g := range e.From {
			from[i] = &Gen{g.position, ClonePattern(g.P), g.E}
		}
		s := *e
		s.From = from
		return &s
	case *FunAbs:
		return &FunAbs{e.position, ClonePattern(e.P), e.Body}
	case *ExpBlock:
		binds := make([]*Bind, len(e.Binds))
		for i, b := range e.Binds {
			binds[i] = &Bind{b.position, ClonePattern(b.P), b.E}
		}
		return &ExpBlock{e.position, binds, e.E}
	}
	return e
}

func cloneQualShallow(q Qual) Qual {
	switch q := q.(type) {
	case *Gen:
		return &Gen{q.position, ClonePattern(q.P), q.E}
	case *Bind:
		return &Bind{q.position, ClonePattern(q.P), q.E}
	case *Pred:
		return &Pred{E: q.E}
	}
	return q
}

// ClonePattern deep-copies a pattern. A nil pattern stays nil.
func ClonePattern(p Pattern) Pattern {
	switch p := p.(type) {
	case *PatternIdn:
		c := *p
		return &c
	case *PatternProd:
		ps := make([]Pattern, len(p.Ps))
		for i, sub := range p.Ps {
			ps[i] = ClonePattern(sub)
		}
		return &PatternProd{p.position, ps}
	}
	return nil
}

// FreeVars returns the identifiers free in e, in first-use order.
func FreeVars(e Exp) []string {
	var order []string
	seen := make(map[string]struct{})
	freeVars(e, map[string]struct{}{}, func(idn string) {
		if _, ok := seen[idn]; !ok {
			seen[idn] = struct{}{}
			order = append(order, idn)
		}
	})
	return order
}

func freeVars(e Exp, bound map[string]struct{}, emit func(string)) {
	switch e := e.(type) {
	case *IdnExp:
		if _, ok := bound[e.Idn]; !ok {
			emit(e.Idn)
		}
	case *VariablePath:
		if _, ok := bound[e.Idn]; !ok {
			emit(e.Idn)
		}
	case *Comp:
		inner := copyBound(bound)
		for _, q := range e.Quals {
			switch q := q.(type) {
			case *Gen:
				freeVars(q.E, inner, emit)
				bindPattern(q.P, inner)
			case *Bind:
				freeVars(q.E, inner, emit)
				bindPattern(q.P, inner)
			case *Pred:
				freeVars(q.E, inner, emit)
			}
		}
		freeVars(e.E, inner, emit)
	case *CanonComp:
		inner := copyBound(bound)
		for _, g := range e.Gens {
			freeVars(g.E, inner, emit)
			bindPattern(g.P, inner)
		}
		freeVars(e.Pred, inner, emit)
		freeVars(e.E, inner, emit)
	case *Select:
		inner := copyBound(bound)
		for _, g := range e.From {
			freeVars(g.E, inner, emit)
			bindPattern(g.P, inner)
		}
		for _, c := range []Exp{e.Where, e.GroupBy, e.Proj, e.OrderBy, e.Having} {
			if c != nil {
				freeVars(c, inner, emit)
			}
		}
	case *FunAbs:
		inner := copyBound(bound)
		bindPattern(e.P, inner)
		freeVars(e.Body, inner, emit)
	case *ExpBlock:
		inner := copyBound(bound)
		for _, b := range e.Binds {
			freeVars(b.E, inner, emit)
			bindPattern(b.P, inner)
		}
		freeVars(e.E, inner, emit)
	default:
		for _, child := range e.Children() {
			freeVars(child, bound, emit)
		}
	}
}

func copyBound(bound map[string]struct{}) map[string]struct{} {
	inner := make(map[string]struct{}, len(bound))
	for idn := range bound {
		inner[idn] = struct{}{}
	}
	return inner
}

func bindPattern(p Pattern, bound map[string]struct{}) {
	if p == nil {
		return
	}
	for _, idn := range PatternIdns(p) {
		bound[idn] = struct{}{}
	}
}

// Substitute replaces free uses of idn in e by a deep clone of with.
// Substitution stops at any construct that rebinds idn. Binders that would
// capture a free variable of with are first alpha-renamed through the rename
// callback, which must return a fresh identifier.
func Substitute(e Exp, idn string, with Exp, rename func(string) string) Exp {
	if rename == nil {
		n := 0
		rename = func(s string) string {
			n++
			return s + "$" + itoa(n)
		}
	}
	withFree := make(map[string]struct{})
	for _, v := range FreeVars(with) {
		withFree[v] = struct{}{}
	}
	e = alphaRename(e, withFree, rename)
	return substitute(e, idn, with)
}

func itoa(n int) string {
	digits := []byte("0123456789")
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}

// substitute replaces free uses of idn, stopping at rebinding scopes. The
// caller has already renamed any binder that could capture a free variable
// of with.
func substitute(e Exp, idn string, with Exp) Exp {
	sub := func(child Exp) Exp {
		return substitute(child, idn, with)
	}

	switch e := e.(type) {
	case *IdnExp:
		if e.Idn == idn {
			c := Clone(with)
			c.SetPos(e.Pos())
			return c
		}
		return e
	case *Comp:
		quals := make([]Qual, len(e.Quals))
		shadowed := false
		for i, q := range e.Quals {
			switch q := q.(type) {
			case *Gen:
				src := q.E
				if !shadowed {
					src = sub(src)
				}
				quals[i] = &Gen{q.position, q.P, src}
				if bindsIdn(q.P, idn) {
					shadowed = true
				}
			case *Bind:
				src := q.E
				if !shadowed {
					src = sub(src)
				}
				quals[i] = &Bind{q.position, q.P, src}
				if bindsIdn(q.P, idn) {
					shadowed = true
				}
			case *Pred:
				cond := q.E
				if !shadowed {
					cond = sub(cond)
				}
				quals[i] = &Pred{E: cond}
			}
		}
		body := e.E
		if !shadowed {
			body = sub(body)
		}
		return &Comp{e.position, e.M, quals, body}
	case *CanonComp:
		gens := make([]*Gen, len(e.Gens))
		shadowed := false
		for i, g := range e.Gens {
			src := g.E
			if !shadowed {
				src = sub(src)
			}
			gens[i] = &Gen{g.position, g.P, src}
			if bindsIdn(g.P, idn) {
				shadowed = true
			}
		}
		pred, body := e.Pred, e.E
		if !shadowed {
			pred = sub(pred)
			body = sub(body)
		}
		return &CanonComp{e.position, e.M, gens, pred, body}
	case *FunAbs:
		if bindsIdn(e.P, idn) {
			return e
		}
		return &FunAbs{e.position, e.P, sub(e.Body)}
	case *ExpBlock:
		binds := make([]*Bind, len(e.Binds))
		shadowed := false
		for i, b := range e.Binds {
			src := b.E
			if !shadowed {
				src = sub(src)
			}
			binds[i] = &Bind{b.position, b.P, src}
			if bindsIdn(b.P, idn) {
				shadowed = true
			}
		}
		body := e.E
		if !shadowed {
			body = sub(body)
		}
		return &ExpBlock{e.position, binds, body}
	case *Select:
		from := make([]*Gen, len(e.From))
		shadowed := false
		for i, g := range e.From {
			src := g.E
			if !shadowed {
				src = sub(src)
			}
			from[i] = &Gen{g.position, g.P, src}
			if bindsIdn(g.P, idn) {
				shadowed = true
			}
		}
		s := *e
		s.From = from
		if !shadowed {
			if s.Where != nil {
				s.Where = sub(s.Where)
			}
			if s.GroupBy != nil {
				s.GroupBy = sub(s.GroupBy)
			}
			s.Proj = sub(s.Proj)
			if s.OrderBy != nil {
				s.OrderBy = sub(s.OrderBy)
			}
			if s.Having != nil {
				s.Having = sub(s.Having)
			}
		}
		return &s
	default:
		return rebuild(e, sub)
	}
}

func bindsIdn(p Pattern, idn string) bool {
	if p == nil {
		return false
	}
	for _, bound := range PatternIdns(p) {
		if bound == idn {
			return true
		}
	}
	return false
}

// alphaRename freshens every binder of e whose name appears in avoid. The
// fresh names come from rename and are substituted through the binder's
// scope, so a later substitution cannot capture.
func alphaRename(e Exp, avoid map[string]struct{}, rename func(string) string) Exp {
	again := func(child Exp) Exp { return alphaRename(child, avoid, rename) }

	switch e := e.(type) {
	case *Comp:
		quals := append([]Qual{}, e.Quals...)
		body := e.E
		for i := 0; i < len(quals); i++ {
			var p Pattern
			switch q := quals[i].(type) {
			case *Gen:
				p = q.P
			case *Bind:
				p = q.P
			}
			p2, renames := freshenPattern(p, avoid, rename)
			if len(renames) == 0 {
				continue
			}
			rest := &Comp{e.position, e.M, quals[i+1:], body}
			for old, fresh := range renames {
				rest = substitute(rest, old, &IdnExp{Idn: fresh}).(*Comp)
			}
			switch q := quals[i].(type) {
			case *Gen:
				quals[i] = &Gen{q.position, p2, q.E}
			case *Bind:
				quals[i] = &Bind{q.position, p2, q.E}
			}
			copy(quals[i+1:], rest.Quals)
			body = rest.E
		}
		return rebuild(&Comp{e.position, e.M, quals, body}, again)
	case *FunAbs:
		p2, renames := freshenPattern(e.P, avoid, rename)
		body := e.Body
		for old, fresh := range renames {
			body = substitute(body, old, &IdnExp{Idn: fresh})
		}
		return rebuild(&FunAbs{e.position, p2, body}, again)
	case *ExpBlock:
		binds := append([]*Bind{}, e.Binds...)
		body := e.E
		for i := 0; i < len(binds); i++ {
			p2, renames := freshenPattern(binds[i].P, avoid, rename)
			if len(renames) == 0 {
				continue
			}
			rest := &ExpBlock{e.position, binds[i+1:], body}
			for old, fresh := range renames {
				rest = substitute(rest, old, &IdnExp{Idn: fresh}).(*ExpBlock)
			}
			binds[i] = &Bind{binds[i].position, p2, binds[i].E}
			copy(binds[i+1:], rest.Binds)
			body = rest.E
		}
		return rebuild(&ExpBlock{e.position, binds, body}, again)
	default:
		return rebuild(e, again)
	}
}

// freshenPattern renames the identifiers of p found in avoid, returning the
// new pattern and the renames performed.
func freshenPattern(p Pattern, avoid map[string]struct{}, rename func(string) string) (Pattern, map[string]string) {
	renames := make(map[string]string)
	var walk func(Pattern) Pattern
	walk = func(p Pattern) Pattern {
		switch p := p.(type) {
		case *PatternIdn:
			if _, hit := avoid[p.Idn]; hit {
				fresh := rename(p.Idn)
				renames[p.Idn] = fresh
				return &PatternIdn{p.position, fresh}
			}
			return p
		case *PatternProd:
			ps := make([]Pattern, len(p.Ps))
			for i, sub := range p.Ps {
				ps[i] = walk(sub)
			}
			return &PatternProd{p.position, ps}
		}
		return p
	}
	if p == nil {
		return nil, renames
	}
	return walk(p), renames
}
