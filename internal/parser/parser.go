// Package parser composes a YAML 1.2 stream into native values.
//
// The parser is a recursive descent over the raw input bytes. One Parser
// holds the whole mutable state of a parse; every reader and composer is a
// method on it. A fatal error is raised by panicking with an
// *errors.ParseError, which Parse recovers and returns.
//
// Recursion depth follows the collection nesting of the document and is
// bounded by Config.MaxDepth.
package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/errors"
	"github.com/KimNorgaard/go-yaml/internal/lexer"
	"github.com/KimNorgaard/go-yaml/internal/schema"
	"github.com/KimNorgaard/go-yaml/internal/token"
)

// DefaultMaxDepth is the nesting limit used when Config.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Config carries the caller's options into a parse.
type Config struct {
	Logger   log.Logger
	JSON     bool
	// MaxDepth limits how deeply collections may nest. Block and flow
	// collections count alike; scalars do not count.
	MaxDepth int
	Filename string
}

// Parser holds the state of one parse.
type Parser struct {
	src    *lexer.Source
	input  []byte
	length int

	position       int
	line           int
	lineStart      int
	lineIndent     int
	firstTabInLine int

	// The node being composed.
	tag    string
	anchor string
	kind   ast.Kind
	result any
	text   strings.Builder

	// Document scoped.
	tagMap    map[string]string
	anchorMap map[string]any
	version   string

	schema    *schema.Schema
	json      bool
	documents []any

	logger   log.Logger
	filename string
	depth    int
	maxDepth int
}

// Parse composes every document of data. It returns one value per
// document, or the first fatal error.
func Parse(data []byte, cfg Config) ([]any, error) {
	src, err := lexer.New(data)
	if err != nil {
		return nil, err
	}
	return New(src, cfg).Parse()
}

// New creates a parser over a prepared source.
func New(src *lexer.Source, cfg Config) *Parser {
	p := &Parser{
		src:            src,
		input:          src.Buf,
		length:         src.Len,
		firstTabInLine: -1,
		schema:         schema.Default(),
		json:           cfg.JSON,
		documents:      []any{},
		logger:         cfg.Logger,
		filename:       cfg.Filename,
		maxDepth:       cfg.MaxDepth,
	}
	if p.logger == nil {
		p.logger = log.NewNopLogger()
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	return p
}

// Parse runs the parser to the end of the input.
func (p *Parser) Parse() (docs []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*errors.ParseError)
			if !ok {
				panic(r)
			}
			docs, err = nil, pe
		}
	}()

	if i := p.src.IndexNull(); i >= 0 {
		p.seek(i)
		p.fail(errors.StreamError, "null byte is not allowed in input")
	}

	p.advanceToNonSpace()
	for p.position < p.length-1 {
		p.readDocument()
	}
	return p.documents, nil
}

func (p *Parser) ch() byte { return p.src.At(p.position) }

func (p *Parser) peek(offset int) byte { return p.src.At(p.position + offset) }

// next advances one byte and returns the new current byte.
func (p *Parser) next() byte {
	p.position++
	return p.src.At(p.position)
}

// seek moves the cursor to pos, recomputing the line bookkeeping. It is
// only used to position error reports.
func (p *Parser) seek(pos int) {
	p.position = pos
	p.line = strings.Count(string(p.input[:pos]), "\n")
	p.lineStart = strings.LastIndexByte(string(p.input[:pos]), '\n') + 1
}

func (p *Parser) column() int {
	if p.position < p.lineStart {
		return 0
	}
	end := min(p.position, p.length)
	if end < p.lineStart {
		return 0
	}
	return utf8.RuneCount(p.input[p.lineStart:end])
}

func (p *Parser) fail(kind errors.Kind, format string, args ...any) {
	column := p.column()
	panic(&errors.ParseError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Filename: p.filename,
		Snippet:  errors.Snippet(string(p.input[:p.length]), p.line, column),
		Line:     p.line + 1,
		Column:   column + 1,
	})
}

func (p *Parser) failIf(cond bool, kind errors.Kind, format string, args ...any) {
	if cond {
		p.fail(kind, format, args...)
	}
}

func (p *Parser) warn(msg string) {
	_ = level.Warn(p.logger).Log("msg", msg, "line", p.line+1, "column", p.column()+1)
}

// mark is a saved cursor used to report errors at the start of a key.
type mark struct {
	line      int
	lineStart int
	position  int
}

func (p *Parser) mark() *mark {
	return &mark{line: p.line, lineStart: p.lineStart, position: p.position}
}

func (p *Parser) restore(m *mark) {
	if m == nil {
		return
	}
	p.line, p.lineStart, p.position = m.line, m.lineStart, m.position
}

func (p *Parser) advanceToNonSpace() {
	for p.ch() == ' ' {
		p.lineIndent++
		p.position++
	}
}

func (p *Parser) readLineBreak() {
	switch p.ch() {
	case '\n':
		p.position++
	case '\r':
		p.position++
		if p.ch() == '\n' {
			p.position++
		}
	default:
		p.fail(errors.StructuralError, "a line break is expected")
	}
	p.line++
	p.lineStart = p.position
	p.firstTabInLine = -1
}

// skipSeparationSpace skips white space, line breaks and (optionally)
// comments. It returns the number of line breaks crossed. A non-negative
// checkIndent warns when the new line is indented less than that.
func (p *Parser) skipSeparationSpace(allowComments bool, checkIndent int) int {
	lineBreaks := 0
	ch := p.ch()

	for ch != token.EOF {
		for token.IsWhiteSpace(ch) {
			if ch == '\t' && p.firstTabInLine == -1 {
				p.firstTabInLine = p.position
			}
			ch = p.next()
		}

		if allowComments && ch == '#' {
			for {
				ch = p.next()
				if token.IsEOL(ch) || ch == token.EOF {
					break
				}
			}
		}

		if !token.IsEOL(ch) {
			break
		}
		p.readLineBreak()
		ch = p.ch()
		lineBreaks++
		p.lineIndent = 0

		for ch == ' ' {
			p.lineIndent++
			ch = p.next()
		}
	}

	if checkIndent != -1 && lineBreaks != 0 && p.lineIndent < checkIndent {
		p.warn("deficient indentation")
	}
	return lineBreaks
}

// testDocumentSeparator reports whether the cursor, assumed to be at the
// start of a line, is on a "---" or "..." marker.
func (p *Parser) testDocumentSeparator() bool {
	ch := p.ch()
	if (ch == '-' || ch == '.') && ch == p.peek(1) && ch == p.peek(2) {
		following := p.peek(3)
		return following == token.EOF || token.IsWhiteSpaceOrEOL(following)
	}
	return false
}

func (p *Parser) atDocumentSeparator() bool {
	return p.position == p.lineStart && p.testDocumentSeparator()
}

// captureSegment appends input[start:end] to the scalar being read.
// Quoted scalars accept any JSON character; other styles only printable
// characters.
func (p *Parser) captureSegment(start, end int, quoted bool) {
	if start >= end {
		return
	}
	seg := p.input[start:end]
	for len(seg) > 0 {
		r, size := utf8.DecodeRune(seg)
		if quoted {
			p.failIf(!isJSONChar(r, size), errors.LexicalError, "expected valid JSON character")
		} else {
			p.failIf(!isPrintable(r, size), errors.StreamError, "the stream contains non-printable characters")
		}
		seg = seg[size:]
	}
	p.text.Write(p.input[start:end])
}

func isJSONChar(r rune, size int) bool {
	if r == utf8.RuneError && size == 1 {
		return false
	}
	return r == '\t' || r >= 0x20
}

func isPrintable(r rune, size int) bool {
	switch {
	case r == utf8.RuneError && size == 1:
		return false
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r < 0x20, r >= 0x7F && r <= 0x84, r >= 0x86 && r <= 0x9F:
		return false
	case r == 0xFFFE || r == 0xFFFF:
		return false
	}
	return true
}

func (p *Parser) writeFoldedLines(count int) {
	if count == 1 {
		p.text.WriteByte(' ')
	} else if count > 1 {
		p.text.WriteString(strings.Repeat("\n", count-1))
	}
}
