package depgraph

import "github.com/freecoq/fcc/internal/ir"

// BuildTypeGraph builds the type-level dependency graph of a module's type
// declarations: an edge from a DataDecl/TypeSynDecl to every TypeCon it
// mentions, restricted to names that are themselves declared in this
// module (predefined types like Bool never participate).
func BuildTypeGraph(decls []ir.TypeDecl) *Graph {
	g := New()
	for _, d := range decls {
		ident := d.TypeName()
		g.AddNode(Vertex{Name: ident.Name.Text, Span: ident.Span})
	}
	for _, d := range decls {
		caller := d.TypeName().Name.Text
		for _, ref := range typeDeclRefs(d) {
			g.AddEdge(caller, ref.Text)
		}
	}
	return g
}

func typeDeclRefs(d ir.TypeDecl) []ir.Name {
	switch td := d.(type) {
	case *ir.DataDecl:
		var out []ir.Name
		for _, con := range td.Cons {
			for _, f := range con.Fields {
				out = append(out, ir.TypeRefs(f)...)
			}
		}
		return out
	case *ir.TypeSynDecl:
		return ir.TypeRefs(td.Body)
	default:
		return nil
	}
}

// BuildValueGraph builds the value-level dependency graph of a module's
// function declarations: an edge from a FuncDecl to every Var/Con it
// references that is itself a function declared in this module.
func BuildValueGraph(funcs []ir.FuncDecl) *Graph {
	g := New()
	for _, f := range funcs {
		g.AddNode(Vertex{Name: f.Ident.Name.Text, Span: f.Ident.Span})
	}
	for _, f := range funcs {
		bound := map[string]bool{}
		for _, a := range f.ValueArgs {
			bound[a.Ident.Name.Text] = true
		}
		for _, ref := range ir.FreeVarRefs(f.Body) {
			if bound[ref.Text] {
				continue
			}
			g.AddEdge(f.Ident.Name.Text, ref.Text)
		}
	}
	return g
}

// RejectSynonymCycles reports whether any SCC consisting solely of type
// synonyms is recursive, which is a fatal error distinct from recursive
// data declarations (which are allowed, since Coq's Inductive types support
// them natively). Returns the names of the first offending cycle's
// members, or nil if none.
func RejectSynonymCycles(decls []ir.TypeDecl, sccs []SCC) []string {
	synonym := map[string]bool{}
	for _, d := range decls {
		if _, ok := d.(*ir.TypeSynDecl); ok {
			synonym[d.TypeName().Name.Text] = true
		}
	}
	for _, scc := range sccs {
		if !scc.Recursive {
			continue
		}
		allSynonyms := true
		for _, m := range scc.Members {
			if !synonym[m] {
				allSynonyms = false
				break
			}
		}
		if allSynonyms {
			return scc.Members
		}
	}
	return nil
}
