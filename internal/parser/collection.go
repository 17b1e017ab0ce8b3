package parser

import (
	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/errors"
	"github.com/KimNorgaard/go-yaml/internal/token"
)

func (p *Parser) failTabIndent() {
	p.position = p.firstTabInLine
	p.fail(errors.StructuralError, "tab characters must not be used in indentation")
}

// enterCollection records that a collection was opened and fails once the
// nesting exceeds the configured depth.
func (p *Parser) enterCollection() {
	p.depth++
	p.failIf(p.depth > p.maxDepth, errors.StructuralError, "maximum nesting depth of %d exceeded", p.maxDepth)
}

func (p *Parser) leaveCollection() { p.depth-- }

func (p *Parser) readBlockSequence(nodeIndent int) bool {
	// A tab before the first entry rules out block collections on this
	// line; flow collections and scalars are still possible.
	if p.firstTabInLine != -1 {
		return false
	}

	tag, anchor := p.tag, p.anchor
	seq := &ast.Sequence{}
	if anchor != "" {
		p.anchorMap[anchor] = seq
	}

	detected := false
	ch := p.ch()
	for ch != token.EOF {
		if p.firstTabInLine != -1 {
			p.failTabIndent()
		}
		if ch != '-' || !token.IsWhiteSpaceOrEOL(p.peek(1)) {
			break
		}

		if !detected {
			p.enterCollection()
			detected = true
		}
		p.position++

		if p.skipSeparationSpace(true, -1) > 0 && p.lineIndent <= nodeIndent {
			seq.Append(nil)
			ch = p.ch()
			continue
		}

		line := p.line
		p.composeNode(nodeIndent, token.BlockIn, false, true)
		seq.Append(p.result)
		p.skipSeparationSpace(true, -1)
		ch = p.ch()

		p.failIf((p.line == line || p.lineIndent > nodeIndent) && ch != token.EOF,
			errors.StructuralError, "bad indentation of a sequence entry")
		if p.lineIndent < nodeIndent {
			break
		}
	}

	if !detected {
		return false
	}
	p.leaveCollection()
	p.tag, p.anchor = tag, anchor
	p.kind, p.result = ast.SequenceKind, seq
	return true
}

func (p *Parser) readBlockMapping(nodeIndent, flowIndent int) bool {
	if p.firstTabInLine != -1 {
		return false
	}

	tag, anchor := p.tag, p.anchor
	m := ast.NewMapping()
	if anchor != "" {
		p.anchorMap[anchor] = m
	}

	var (
		overridable   = map[string]bool{}
		keyTag        string
		keyNode       any
		valueNode     any
		keyMark       *mark
		atExplicitKey bool
		allowCompact  bool
		detected      bool
	)
	open := func() {
		if !detected {
			p.enterCollection()
			detected = true
		}
	}
	storeExplicitKey := func() {
		p.storeMappingPair(m, overridable, keyTag, keyNode, nil, keyMark)
		keyTag, keyNode, valueNode = "", nil, nil
	}

	ch := p.ch()
	for ch != token.EOF {
		if !atExplicitKey && p.firstTabInLine != -1 {
			p.failTabIndent()
		}

		following := p.peek(1)
		line := p.line

		if (ch == '?' || ch == ':') && token.IsWhiteSpaceOrEOL(following) {
			// Explicit notation: "?" introduces the key, ":" the value.
			switch {
			case ch == '?':
				if atExplicitKey {
					storeExplicitKey()
				}
				open()
				atExplicitKey = true
				allowCompact = true
			case atExplicitKey:
				atExplicitKey = false
				allowCompact = true
			default:
				p.fail(errors.StructuralError, "incomplete explicit mapping pair; a key node is missed; or followed by a non-tabulated empty line")
			}
			p.position++
			ch = following
		} else {
			keyMark = p.mark()
			if !p.composeNode(flowIndent, token.FlowOut, false, true) {
				break
			}

			if p.line != line {
				p.failIf(detected, errors.StructuralError, "can not read a block mapping entry; a multiline key may not be an implicit key")
				p.tag, p.anchor = tag, anchor
				return true
			}

			ch = p.ch()
			for token.IsWhiteSpace(ch) {
				ch = p.next()
			}
			if ch != ':' {
				p.failIf(detected, errors.StructuralError, "can not read an implicit mapping pair; a colon is missed")
				// Not a mapping after all; keep the composed node.
				p.tag, p.anchor = tag, anchor
				return true
			}

			ch = p.next()
			p.failIf(!token.IsWhiteSpaceOrEOL(ch), errors.StructuralError,
				"a whitespace character is expected after the key-value separator within a block mapping")
			if atExplicitKey {
				storeExplicitKey()
			}
			open()
			atExplicitKey = false
			allowCompact = false
			keyTag, keyNode = p.tag, p.result
		}

		if p.line == line || p.lineIndent > nodeIndent {
			if atExplicitKey {
				keyMark = p.mark()
			}
			if p.composeNode(nodeIndent, token.BlockOut, true, allowCompact) {
				if atExplicitKey {
					keyNode = p.result
				} else {
					valueNode = p.result
				}
			}
			if !atExplicitKey {
				p.storeMappingPair(m, overridable, keyTag, keyNode, valueNode, keyMark)
				keyTag, keyNode, valueNode = "", nil, nil
			}
			p.skipSeparationSpace(true, -1)
			ch = p.ch()
		}

		p.failIf((p.line == line || p.lineIndent > nodeIndent) && ch != token.EOF,
			errors.StructuralError, "bad indentation of a mapping entry")
		if p.lineIndent < nodeIndent {
			break
		}
	}

	// An explicit key without a value.
	if atExplicitKey {
		p.storeMappingPair(m, overridable, keyTag, keyNode, nil, keyMark)
	}

	p.tag, p.anchor = tag, anchor
	if detected {
		p.leaveCollection()
		p.kind, p.result = ast.MappingKind, m
	}
	return detected
}

func (p *Parser) readFlowCollection(nodeIndent int) bool {
	var (
		terminator byte
		seq        *ast.Sequence
		m          *ast.Mapping
		result     any
		kind       ast.Kind
	)
	switch p.ch() {
	case '[':
		terminator = ']'
		seq = &ast.Sequence{}
		result, kind = seq, ast.SequenceKind
	case '{':
		terminator = '}'
		m = ast.NewMapping()
		result, kind = m, ast.MappingKind
	default:
		return false
	}

	tag, anchor := p.tag, p.anchor
	if anchor != "" {
		p.anchorMap[anchor] = result
	}

	p.enterCollection()
	defer p.leaveCollection()

	overridable := map[string]bool{}
	readNext := true
	ch := p.next()

	for ch != token.EOF {
		p.skipSeparationSpace(true, nodeIndent)
		ch = p.ch()

		if ch == terminator {
			p.position++
			p.tag, p.anchor = tag, anchor
			p.kind, p.result = kind, result
			return true
		}
		p.failIf(!readNext, errors.StructuralError, "missed comma between flow collection entries")
		p.failIf(ch == ',', errors.StructuralError, "expected the node content, but found ','")

		isPair, isExplicitPair := false, false
		if ch == '?' && token.IsWhiteSpaceOrEOL(p.peek(1)) {
			isPair, isExplicitPair = true, true
			p.position++
			p.skipSeparationSpace(true, nodeIndent)
		}

		line := p.line
		keyMark := p.mark()
		p.composeNode(nodeIndent, token.FlowIn, false, true)
		keyTag, keyNode := p.tag, p.result
		var valueNode any
		p.skipSeparationSpace(true, nodeIndent)
		ch = p.ch()

		if (isExplicitPair || p.line == line) && ch == ':' {
			isPair = true
			p.position++
			p.skipSeparationSpace(true, nodeIndent)
			p.composeNode(nodeIndent, token.FlowIn, false, true)
			valueNode = p.result
		}

		switch {
		case m != nil:
			p.storeMappingPair(m, overridable, keyTag, keyNode, valueNode, keyMark)
		case isPair:
			seq.Append(p.storeMappingPair(nil, overridable, keyTag, keyNode, valueNode, keyMark))
		default:
			seq.Append(keyNode)
		}

		p.skipSeparationSpace(true, nodeIndent)
		ch = p.ch()
		if ch == ',' {
			readNext = true
			ch = p.next()
		} else {
			readNext = false
		}
	}

	p.fail(errors.StreamError, "unexpected end of the stream within a flow collection")
	return false
}
