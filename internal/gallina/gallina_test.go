package gallina

import "testing"

func TestDefinitionRender(t *testing.T) {
	def := &Definition{
		Name: "id",
		Binders: []Binder{
			{Names: []string{"Shape"}, Type: NewIdent("Type")},
			{Names: []string{"Pos"}, Type: NewArrow(NewIdent("Shape"), NewIdent("Type"))},
			{Names: []string{"a"}, Type: NewIdent("Type"), Implicit: true},
			{Names: []string{"x"}, Type: NewApp(NewRaw("Free"), NewIdent("Shape"), NewIdent("Pos"), NewIdent("a"))},
		},
		ReturnType: NewApp(NewRaw("Free"), NewIdent("Shape"), NewIdent("Pos"), NewIdent("a")),
		Body:       NewIdent("x"),
	}
	m := &Module{Name: "Main", Sentences: []Sentence{def}}
	out := m.Render()
	if !contains(out, "Definition id (Shape : Type) (Pos : (Shape -> Type)) {a : Type} (x : (Free Shape Pos a)) : (Free Shape Pos a) :=") {
		t.Fatalf("unexpected render:\n%s", out)
	}
	if !contains(out, "Module Main.") || !contains(out, "End Main.") {
		t.Fatalf("missing module wrapper:\n%s", out)
	}
}

func TestInductiveRenderWithFieldsAndSelf(t *testing.T) {
	ind := &Inductive{Bodies: []InductiveBody{
		{
			Name:       "list",
			Binders:    []Binder{{Names: []string{"Shape"}, Type: NewIdent("Type")}, {Names: []string{"a"}, Type: NewIdent("Type")}},
			ResultType: NewIdent("Type"),
			Constructors: []InductiveCon{
				{Name: "Nil", Self: NewApp(NewIdent("list"), NewIdent("Shape"), NewIdent("a"))},
				{Name: "Cons", Fields: []Term{NewIdent("a")}, Self: NewApp(NewIdent("list"), NewIdent("Shape"), NewIdent("a"))},
			},
		},
	}}
	m := &Module{Name: "Main", Sentences: []Sentence{ind}}
	out := m.Render()
	if !contains(out, "| Nil : (list Shape a)") {
		t.Fatalf("expected nullary constructor, got:\n%s", out)
	}
	if !contains(out, "| Cons : a -> (list Shape a)") {
		t.Fatalf("expected one-field constructor, got:\n%s", out)
	}
}

func TestFixpointRenderHasStruct(t *testing.T) {
	fp := &Fixpoint{Bodies: []FixBody{
		{Name: "loop", Binders: []Binder{{Names: []string{"x"}, Type: NewIdent("nat")}}, Struct: "x", Body: NewIdent("x")},
	}}
	m := &Module{Name: "Main", Sentences: []Sentence{fp}}
	out := m.Render()
	if !contains(out, "{struct x}") {
		t.Fatalf("expected struct annotation, got:\n%s", out)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
