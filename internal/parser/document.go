package parser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-yaml/errors"
	"github.com/KimNorgaard/go-yaml/internal/token"
)

func (p *Parser) readDocument() {
	p.tagMap = map[string]string{}
	p.anchorMap = map[string]any{}
	p.version = ""

	hasDirectives := false
	for p.ch() != token.EOF {
		p.skipSeparationSpace(true, -1)
		if p.lineIndent > 0 || p.ch() != '%' {
			break
		}
		hasDirectives = true
		p.position++
		name, args := p.readDirective()

		switch name {
		case "YAML":
			p.yamlDirective(args)
		case "TAG":
			p.tagDirective(args)
		default:
			p.warn(fmt.Sprintf("unknown document directive %q", name))
		}
	}

	p.skipSeparationSpace(true, -1)

	if p.lineIndent == 0 && p.ch() == '-' && p.peek(1) == '-' && p.peek(2) == '-' {
		p.position += 3
		p.skipSeparationSpace(true, -1)
	} else {
		p.failIf(hasDirectives, errors.StructuralError, "directives end mark is expected")
	}

	p.composeNode(p.lineIndent-1, token.BlockOut, false, true)
	p.skipSeparationSpace(true, -1)

	p.documents = append(p.documents, p.result)

	if p.atDocumentSeparator() {
		if p.ch() == '.' {
			p.position += 3
			p.skipSeparationSpace(true, -1)
		}
		return
	}
	p.failIf(p.position < p.length-1, errors.StructuralError, "end of the stream or a document separator is expected")
}

// readDirective reads the name and arguments of a directive. The cursor
// starts after the "%" and ends at the start of the next line.
func (p *Parser) readDirective() (string, []string) {
	start := p.position
	ch := p.ch()
	for ch != token.EOF && !token.IsWhiteSpaceOrEOL(ch) {
		ch = p.next()
	}
	name := string(p.input[start:p.position])
	p.failIf(name == "", errors.StructuralError, "directive name must not be less than one character in length")

	var args []string
	for ch != token.EOF {
		for token.IsWhiteSpace(ch) {
			ch = p.next()
		}
		if ch == '#' {
			for ch != token.EOF && !token.IsEOL(ch) {
				ch = p.next()
			}
			break
		}
		if token.IsEOL(ch) {
			break
		}

		start = p.position
		for ch != token.EOF && !token.IsWhiteSpaceOrEOL(ch) {
			ch = p.next()
		}
		args = append(args, string(p.input[start:p.position]))
	}

	if ch != token.EOF {
		p.readLineBreak()
	}
	return name, args
}

func (p *Parser) yamlDirective(args []string) {
	p.failIf(p.version != "", errors.StructuralError, "duplication of %%YAML directive")
	p.failIf(len(args) != 1, errors.StructuralError, "YAML directive accepts exactly one argument")

	majorText, minorText, ok := strings.Cut(args[0], ".")
	major, errMajor := strconv.Atoi(majorText)
	minor, errMinor := strconv.Atoi(minorText)
	p.failIf(!ok || errMajor != nil || errMinor != nil || major < 0 || minor < 0,
		errors.StructuralError, "ill-formed argument of the YAML directive")
	p.failIf(major != 1, errors.StructuralError, "unacceptable YAML version of the document")

	p.version = args[0]
	if minor != 1 && minor != 2 {
		p.warn("unsupported YAML version of the document")
	}
}

func (p *Parser) tagDirective(args []string) {
	p.failIf(len(args) != 2, errors.StructuralError, "TAG directive accepts exactly two arguments")

	handle, prefix := args[0], args[1]
	p.failIf(!token.TagHandlePattern.MatchString(handle), errors.LexicalError,
		"ill-formed tag handle (first argument) of the TAG directive")
	_, declared := p.tagMap[handle]
	p.failIf(declared, errors.StructuralError, "there is a previously declared suffix for %q tag handle", handle)
	p.failIf(!token.TagURIPattern.MatchString(prefix), errors.LexicalError,
		"ill-formed tag prefix (second argument) of the TAG directive")

	decoded, err := url.PathUnescape(prefix)
	p.failIf(err != nil, errors.LexicalError, "tag prefix is malformed: %s", prefix)
	p.tagMap[handle] = decoded
}
