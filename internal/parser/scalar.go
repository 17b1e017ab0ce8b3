package parser

import (
	"strings"
	"unicode/utf16"

	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/errors"
	"github.com/KimNorgaard/go-yaml/internal/lexer"
	"github.com/KimNorgaard/go-yaml/internal/token"
)

func (p *Parser) readPlainScalar(nodeIndent int, withinFlow bool) bool {
	ch := p.ch()
	if token.IsWhiteSpaceOrEOL(ch) || token.IsFlowIndicator(ch) || token.IsNotScalarStart(ch) {
		return false
	}
	if ch == '?' || ch == '-' {
		following := p.peek(1)
		if token.IsWhiteSpaceOrEOL(following) || withinFlow && token.IsFlowIndicator(following) {
			return false
		}
	}

	p.text.Reset()
	captureStart, captureEnd := p.position, p.position
	pending := false
	var line, lineStart, lineIndent int

	for ch != token.EOF {
		if ch == ':' {
			following := p.peek(1)
			if token.IsWhiteSpaceOrEOL(following) || withinFlow && token.IsFlowIndicator(following) {
				break
			}
		} else if ch == '#' {
			if token.IsWhiteSpaceOrEOL(p.peek(-1)) {
				break
			}
		} else if p.atDocumentSeparator() || withinFlow && token.IsFlowIndicator(ch) {
			break
		} else if token.IsEOL(ch) {
			line, lineStart, lineIndent = p.line, p.lineStart, p.lineIndent
			p.skipSeparationSpace(false, -1)

			if p.lineIndent >= nodeIndent {
				pending = true
				ch = p.ch()
				continue
			}
			// The continuation line is not part of this scalar.
			p.position = captureEnd
			p.line, p.lineStart, p.lineIndent = line, lineStart, lineIndent
			break
		}

		if pending {
			p.captureSegment(captureStart, captureEnd, false)
			p.writeFoldedLines(p.line - line)
			captureStart, captureEnd = p.position, p.position
			pending = false
		}
		if !token.IsWhiteSpace(ch) {
			captureEnd = p.position + 1
		}
		ch = p.next()
	}

	p.captureSegment(captureStart, captureEnd, false)
	if p.text.Len() == 0 {
		return false
	}
	p.kind = ast.ScalarKind
	p.result = p.text.String()
	return true
}

func (p *Parser) readSingleQuotedScalar(nodeIndent int) bool {
	if p.ch() != '\'' {
		return false
	}

	p.kind = ast.ScalarKind
	p.text.Reset()
	p.position++
	captureStart, captureEnd := p.position, p.position

	for ch := p.ch(); ch != token.EOF; ch = p.ch() {
		switch {
		case ch == '\'':
			p.captureSegment(captureStart, p.position, true)
			if p.next() != '\'' {
				p.result = p.text.String()
				return true
			}
			// A doubled quote stands for one quote.
			captureStart = p.position
			p.position++
			captureEnd = p.position
		case token.IsEOL(ch):
			p.captureSegment(captureStart, captureEnd, true)
			p.writeFoldedLines(p.skipSeparationSpace(false, nodeIndent))
			captureStart, captureEnd = p.position, p.position
		case p.atDocumentSeparator():
			p.fail(errors.StreamError, "unexpected end of the document within a single quoted scalar")
		default:
			p.position++
			captureEnd = p.position
		}
	}

	p.fail(errors.StreamError, "unexpected end of the stream within a single quoted scalar")
	return false
}

func (p *Parser) readDoubleQuotedScalar(nodeIndent int) bool {
	if p.ch() != '"' {
		return false
	}

	p.kind = ast.ScalarKind
	p.text.Reset()
	p.position++
	captureStart, captureEnd := p.position, p.position

	for ch := p.ch(); ch != token.EOF; ch = p.ch() {
		switch {
		case ch == '"':
			p.captureSegment(captureStart, p.position, true)
			p.position++
			p.result = p.text.String()
			return true
		case ch == '\\':
			p.captureSegment(captureStart, p.position, true)
			ch = p.next()
			if token.IsEOL(ch) {
				p.skipSeparationSpace(false, nodeIndent)
			} else if s, ok := token.Escape(ch); ok {
				p.text.WriteString(s)
				p.position++
			} else if n := token.HexEscapeLen(ch); n > 0 {
				p.writeCodepoint(p.readHex(n))
				p.position++
			} else {
				p.fail(errors.LexicalError, "unknown escape sequence")
			}
			captureStart, captureEnd = p.position, p.position
		case token.IsEOL(ch):
			p.captureSegment(captureStart, captureEnd, true)
			p.writeFoldedLines(p.skipSeparationSpace(false, nodeIndent))
			captureStart, captureEnd = p.position, p.position
		case p.atDocumentSeparator():
			p.fail(errors.StreamError, "unexpected end of the document within a double quoted scalar")
		default:
			p.position++
			captureEnd = p.position
		}
	}

	p.fail(errors.StreamError, "unexpected end of the stream within a double quoted scalar")
	return false
}

// readHex consumes n hex digits following the cursor, leaving the cursor
// on the last one.
func (p *Parser) readHex(n int) rune {
	var r rune
	for ; n > 0; n-- {
		d := lexer.FromHex(p.next())
		p.failIf(d < 0, errors.LexicalError, "expected hexadecimal character")
		r = r<<4 + rune(d)
	}
	return r
}

// writeCodepoint writes r as UTF-8. A high surrogate immediately followed
// by a \u escape of a low surrogate is combined into one code point.
func (p *Parser) writeCodepoint(r rune) {
	if utf16.IsSurrogate(r) && r < 0xDC00 && p.peek(1) == '\\' && p.peek(2) == 'u' {
		var lo rune
		valid := true
		for i := 3; i < 7; i++ {
			d := lexer.FromHex(p.peek(i))
			if d < 0 {
				valid = false
				break
			}
			lo = lo<<4 + rune(d)
		}
		if valid && lo >= 0xDC00 && lo <= 0xDFFF {
			r = utf16.DecodeRune(r, lo)
			p.position += 6
		}
	}
	p.text.WriteRune(r)
}

func (p *Parser) readBlockScalar(nodeIndent int) bool {
	ch := p.ch()
	var folding bool
	switch ch {
	case '|':
		folding = false
	case '>':
		folding = true
	default:
		return false
	}

	p.kind = ast.ScalarKind
	p.text.Reset()

	chomping := token.Clip
	detectedIndent := false
	textIndent := nodeIndent

	for ch != token.EOF {
		ch = p.next()
		if ch == '+' || ch == '-' {
			p.failIf(chomping != token.Clip, errors.LexicalError, "repeat of a chomping mode identifier")
			if ch == '+' {
				chomping = token.Keep
			} else {
				chomping = token.Strip
			}
		} else if d := lexer.FromDecimal(ch); d >= 0 {
			p.failIf(d == 0, errors.LexicalError, "bad explicit indentation width of a block scalar; it cannot be less than one")
			p.failIf(detectedIndent, errors.LexicalError, "repeat of an indentation width identifier")
			textIndent = nodeIndent + d - 1
			detectedIndent = true
		} else {
			break
		}
	}

	if token.IsWhiteSpace(ch) {
		for token.IsWhiteSpace(ch) {
			ch = p.next()
		}
		if ch == '#' {
			for !token.IsEOL(ch) && ch != token.EOF {
				ch = p.next()
			}
		}
	}

	didReadContent := false
	emptyLines := 0
	atMoreIndented := false

	for ch != token.EOF {
		p.readLineBreak()
		p.lineIndent = 0
		ch = p.ch()

		for (!detectedIndent || p.lineIndent < textIndent) && ch == ' ' {
			p.lineIndent++
			ch = p.next()
		}
		if !detectedIndent && p.lineIndent > textIndent {
			textIndent = p.lineIndent
		}

		if token.IsEOL(ch) {
			emptyLines++
			continue
		}

		if p.lineIndent < textIndent || ch == token.EOF {
			switch chomping {
			case token.Keep:
				p.writeNewlines(emptyLines, didReadContent)
			case token.Clip:
				if didReadContent {
					p.text.WriteByte('\n')
				}
			}
			break
		}

		if folding {
			switch {
			case token.IsWhiteSpace(ch):
				// More-indented lines are not folded.
				atMoreIndented = true
				p.writeNewlines(emptyLines, didReadContent)
			case atMoreIndented:
				atMoreIndented = false
				p.text.WriteString(strings.Repeat("\n", emptyLines+1))
			case emptyLines == 0:
				if didReadContent {
					p.text.WriteByte(' ')
				}
			default:
				p.text.WriteString(strings.Repeat("\n", emptyLines))
			}
		} else {
			p.writeNewlines(emptyLines, didReadContent)
		}

		didReadContent = true
		detectedIndent = true
		emptyLines = 0
		captureStart := p.position

		for !token.IsEOL(ch) && ch != token.EOF {
			ch = p.next()
		}
		p.captureSegment(captureStart, p.position, false)
	}

	p.result = p.text.String()
	return true
}

// writeNewlines writes the line breaks preceding a content line: the
// empty lines, plus the break ending the previous content line if any.
func (p *Parser) writeNewlines(emptyLines int, afterContent bool) {
	if afterContent {
		emptyLines++
	}
	p.text.WriteString(strings.Repeat("\n", emptyLines))
}
