package ir

// FreeVarRefs collects the set of names referenced as Var or Con, or as a
// case alternative's pattern constructor, inside an expression, in
// first-occurrence order. It does not distinguish
// bound from free occurrences; callers filter against a binder set.
func FreeVarRefs(e Expr) []Name {
	var out []Name
	seen := map[string]bool{}
	add := func(n Name) {
		k := n.Key()
		if !seen[k] {
			seen[k] = true
			out = append(out, n)
		}
	}
	var walk func(Expr)
	walk = func(e Expr) {
		if e == nil {
			return
		}
		switch ex := e.(type) {
		case *Var:
			add(ex.Name)
		case *Con:
			add(ex.Name)
		case *App:
			walk(ex.Fun)
			walk(ex.Arg)
		case *If:
			walk(ex.Cond)
			walk(ex.Then)
			walk(ex.Else)
		case *Case:
			walk(ex.Scrutinee)
			for _, alt := range ex.Alts {
				add(alt.Pat.Con)
				walk(alt.Body)
			}
		case *Lambda:
			walk(ex.Body)
		case *IntLiteral, *Undefined:
			// contribute nothing
		case *ErrorExpr:
			walk(ex.Message)
		}
	}
	walk(e)
	return out
}

// BoundVars returns the variable identifiers bound by a Lambda's argument
// patterns (a Case alternative's fields are given by ConPat.FieldNames).
func (l *Lambda) BoundVars() []string {
	var out []string
	for _, p := range l.Args {
		out = append(out, p.Ident.Name.Text)
	}
	return out
}

// FieldNames returns the bound identifiers of a ConPat's fields.
func (p *ConPat) FieldNames() []string {
	var out []string
	for _, f := range p.Fields {
		out = append(out, f.Ident.Name.Text)
	}
	return out
}

// TypeRefs collects the TypeCon names referenced inside a type, in
// first-occurrence order (used by the dependency analyzer's type graph).
func TypeRefs(t Type) []Name {
	var out []Name
	seen := map[string]bool{}
	add := func(n Name) {
		if !seen[n.Key()] {
			seen[n.Key()] = true
			out = append(out, n)
		}
	}
	var walk func(Type)
	walk = func(t Type) {
		switch ty := t.(type) {
		case *TypeVar:
		case *TypeCon:
			add(ty.Con)
		case *TypeApp:
			walk(ty.Fun)
			walk(ty.Arg)
		case *TypeFunc:
			walk(ty.From)
			walk(ty.To)
		}
	}
	walk(t)
	return out
}

// Arity returns the number of arrows at the top level of a type, i.e. the
// number of value arguments a function of this type accepts.
func Arity(t Type) int {
	n := 0
	for {
		f, ok := t.(*TypeFunc)
		if !ok {
			return n
		}
		n++
		t = f.To
	}
}

// ResultType strips n leading TypeFunc arrows, returning the tail type.
func ResultType(t Type, n int) Type {
	for i := 0; i < n; i++ {
		f, ok := t.(*TypeFunc)
		if !ok {
			return t
		}
		t = f.To
	}
	return t
}

// ArgTypes returns the n leading argument types of a (possibly partial)
// function type.
func ArgTypes(t Type, n int) []Type {
	out := make([]Type, 0, n)
	for i := 0; i < n; i++ {
		f, ok := t.(*TypeFunc)
		if !ok {
			break
		}
		out = append(out, f.From)
		t = f.To
	}
	return out
}
