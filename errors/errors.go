package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is. Every ParseError matches the
// sentinel of its Kind.
var (
	// ErrStream indicates the input ended or contained a byte it must not.
	ErrStream = stderrors.New("stream error")

	// ErrStructure indicates bad indentation, separators or node properties.
	ErrStructure = stderrors.New("structural error")

	// ErrLexical indicates a malformed escape, indicator or tag.
	ErrLexical = stderrors.New("lexical error")

	// ErrSchema indicates a tag that is unknown or does not fit its node.
	ErrSchema = stderrors.New("schema error")
)

// Kind categorises a ParseError.
type Kind int

const (
	StreamError Kind = iota
	StructuralError
	LexicalError
	SchemaError
)

func (k Kind) String() string {
	switch k {
	case StreamError:
		return "stream"
	case StructuralError:
		return "structure"
	case LexicalError:
		return "lexical"
	case SchemaError:
		return "schema"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case StreamError:
		return ErrStream
	case StructuralError:
		return ErrStructure
	case LexicalError:
		return ErrLexical
	case SchemaError:
		return ErrSchema
	}
	return nil
}

// ParseError represents the fatal error that stopped a parse.
// It includes the position of the error and a few lines of the
// source around it.
type ParseError struct {
	Kind     Kind
	Message  string
	Filename string
	// Snippet holds up to three lines before and two lines after the
	// failing line, with a caret line under the failing column.
	Snippet string
	// Line and Column are 1-based.
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("yaml: ")
	b.WriteString(e.Message)
	if e.Snippet != "" {
		b.WriteString(":\n")
		b.WriteString(e.Snippet)
	}
	b.WriteString("\n(")
	if e.Filename != "" {
		b.WriteString(e.Filename)
		b.WriteByte(':')
	}
	fmt.Fprintf(&b, "%d:%d)", e.Line, e.Column)
	return b.String()
}

// Is reports whether target is the sentinel of the error's Kind.
func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

const (
	linesBefore = 3
	linesAfter  = 2
)

// Snippet renders the lines of src around the 0-based line, marking
// column (0-based, in runes) with a caret.
func Snippet(src string, line, column int) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r", ""), "\n")
	first := max(0, line-linesBefore)
	last := min(len(lines)-1, line+linesAfter)

	var out []string
	for l := first; l <= last; l++ {
		out = append(out, lines[l])
		if l == line {
			out = append(out, strings.Repeat(" ", column)+"^")
		}
	}
	return strings.Join(out, "\n")
}
