// Package token holds the constant lookup data the parser consults:
// character classes, node contexts, chomping modes and escapes.
package token

import (
	"regexp"
	"strings"
)

// Context is the grammatical context a node is composed in.
type Context int

const (
	FlowIn Context = iota + 1
	FlowOut
	BlockIn
	BlockOut
)

// IsBlock reports whether block styles may appear in c.
func (c Context) IsBlock() bool {
	return c == BlockIn || c == BlockOut
}

// IsFlow reports whether c is one of the flow contexts.
func (c Context) IsFlow() bool {
	return c == FlowIn || c == FlowOut
}

func (c Context) String() string {
	switch c {
	case FlowIn:
		return "flow-in"
	case FlowOut:
		return "flow-out"
	case BlockIn:
		return "block-in"
	case BlockOut:
		return "block-out"
	}
	return "unknown"
}

// Chomping is the trailing line break policy of a block scalar.
type Chomping int

const (
	Clip Chomping = iota
	Strip
	Keep
)

// EOF is the sentinel byte terminating every input.
const EOF = 0

// IsEOL reports whether c is a line break.
func IsEOL(c byte) bool {
	return c == '\n' || c == '\r'
}

// IsWhiteSpace reports whether c is a space or a tab.
func IsWhiteSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// IsWhiteSpaceOrEOL reports whether c is white space or a line break.
func IsWhiteSpaceOrEOL(c byte) bool {
	return IsWhiteSpace(c) || IsEOL(c)
}

// IsFlowIndicator reports whether c opens, closes or separates flow
// collection entries.
func IsFlowIndicator(c byte) bool {
	switch c {
	case ',', '[', ']', '{', '}':
		return true
	}
	return false
}

// IsNotScalarStart reports whether c is an indicator that can never start
// a plain scalar.
func IsNotScalarStart(c byte) bool {
	switch c {
	case '#', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
		return true
	}
	return false
}

var escapes = map[byte]string{
	'0':  "\x00",
	'a':  "\x07",
	'b':  "\x08",
	't':  "\x09",
	'\t': "\x09",
	'n':  "\x0A",
	'v':  "\x0B",
	'f':  "\x0C",
	'r':  "\x0D",
	'e':  "\x1B",
	' ':  " ",
	'"':  "\"",
	'/':  "/",
	'\\': "\\",
	'N':  "\u0085",
	'_':  "\u00A0",
	'L':  "\u2028",
	'P':  "\u2029",
}

// Escape returns the text a single-character double-quoted escape stands
// for.
func Escape(c byte) (string, bool) {
	s, ok := escapes[c]
	return s, ok
}

// HexEscapeLen returns the number of hex digits following the escape
// character c, or 0 when c does not introduce a hex escape.
func HexEscapeLen(c byte) int {
	switch c {
	case 'x':
		return 2
	case 'u':
		return 4
	case 'U':
		return 8
	}
	return 0
}

var (
	// TagHandlePattern matches the primary, secondary and named tag handles.
	TagHandlePattern = regexp.MustCompile(`(?i)^(?:!|!!|![a-z\-]+!)$`)

	// TagURIPattern matches a tag suffix or a %TAG prefix.
	TagURIPattern = regexp.MustCompile(`(?i)^(?:!|[^,\[\]\{\}])(?:%[0-9a-f]{2}|[0-9a-z\-#;/\?:@&=\+\$,_\.!~\*'\(\)\[\]])*$`)
)

// HasFlowIndicator reports whether s contains a flow indicator.
func HasFlowIndicator(s string) bool {
	return strings.ContainsAny(s, ",[]{}")
}
