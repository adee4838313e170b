package gallina

import "strings"

// buffer is an indenting string builder: sentences write themselves at the
// current indent level and manage their own newlines, rather than a generic
// formatter reflowing text after the fact.
type buffer struct {
	strings.Builder
	indent int
}

func (b *buffer) newline() {
	b.WriteString("\n")
	for i := 0; i < b.indent; i++ {
		b.WriteString("  ")
	}
}

func (b *buffer) in()  { b.indent++ }
func (b *buffer) out() { b.indent-- }
