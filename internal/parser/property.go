package parser

import (
	"net/url"

	"github.com/KimNorgaard/go-yaml/errors"
	"github.com/KimNorgaard/go-yaml/internal/schema"
	"github.com/KimNorgaard/go-yaml/internal/token"
)

// readTagProperty reads a tag and stores its resolved name in p.tag.
// Builtin tags are stored under their short names.
func (p *Parser) readTagProperty() bool {
	if p.ch() != '!' {
		return false
	}
	p.failIf(p.tag != "", errors.StructuralError, "duplication of a tag property")

	var (
		verbatim bool
		named    bool
		handle   string
		suffix   string
	)

	ch := p.next()
	switch ch {
	case '<':
		verbatim = true
		ch = p.next()
	case '!':
		named = true
		handle = "!!"
		ch = p.next()
	default:
		handle = "!"
	}

	start := p.position
	if verbatim {
		for ch != token.EOF && ch != '>' {
			ch = p.next()
		}
		p.failIf(p.position >= p.length, errors.StreamError, "unexpected end of the stream within a verbatim tag")
		suffix = string(p.input[start:p.position])
		p.position++
	} else {
		for ch != token.EOF && !token.IsWhiteSpaceOrEOL(ch) {
			if ch == '!' {
				p.failIf(named, errors.LexicalError, "tag suffix cannot contain exclamation marks")
				handle = string(p.input[start-1 : p.position+1])
				p.failIf(!token.TagHandlePattern.MatchString(handle), errors.LexicalError, "named tag handle cannot contain such characters")
				named = true
				start = p.position + 1
			}
			ch = p.next()
		}
		suffix = string(p.input[start:p.position])
		p.failIf(token.HasFlowIndicator(suffix), errors.LexicalError, "tag suffix cannot contain flow indicator characters")
	}

	p.failIf(suffix != "" && !token.TagURIPattern.MatchString(suffix), errors.LexicalError,
		"tag name cannot contain such characters: %s", suffix)
	decoded, err := url.PathUnescape(suffix)
	p.failIf(err != nil, errors.LexicalError, "tag name cannot be decoded: %s", suffix)

	var tag string
	if verbatim {
		tag = decoded
	} else if prefix, ok := p.tagMap[handle]; ok {
		tag = prefix + decoded
	} else if handle == "!" {
		tag = "!" + decoded
	} else if handle == "!!" {
		tag = decoded
	} else {
		p.fail(errors.SchemaError, "undeclared tag handle %q", handle)
	}
	p.failIf(tag == "", errors.SchemaError, "unknown tag !<>")

	p.tag = schema.Normalize(tag)
	return true
}

func (p *Parser) readAnchorProperty() bool {
	if p.ch() != '&' {
		return false
	}
	p.failIf(p.anchor != "", errors.StructuralError, "duplication of an anchor property")

	p.position++
	name := p.readName()
	p.failIf(name == "", errors.StructuralError, "name of an anchor node must contain at least one character")
	_, defined := p.anchorMap[name]
	p.failIf(defined, errors.StructuralError, "duplicated anchor %q", name)

	p.anchor = name
	return true
}

func (p *Parser) readAlias() bool {
	if p.ch() != '*' {
		return false
	}

	p.position++
	name := p.readName()
	p.failIf(name == "", errors.StructuralError, "name of an alias node must contain at least one character")
	value, ok := p.anchorMap[name]
	p.failIf(!ok, errors.StructuralError, "unidentified alias %q", name)

	p.result = value
	p.skipSeparationSpace(true, -1)
	return true
}

// readName reads an anchor or alias name, which ends at white space or a
// flow indicator.
func (p *Parser) readName() string {
	start := p.position
	ch := p.ch()
	for ch != token.EOF && !token.IsWhiteSpaceOrEOL(ch) && !token.IsFlowIndicator(ch) {
		ch = p.next()
	}
	return string(p.input[start:p.position])
}
