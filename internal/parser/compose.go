package parser

import (
	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/errors"
	"github.com/KimNorgaard/go-yaml/internal/token"
)

// Tags with a special meaning during composition.
const (
	implicitTag    = "?"
	nonSpecificTag = "!"
)

// indentStatus compares the current line indentation with the parent's.
func (p *Parser) indentStatus(parentIndent int) int {
	switch {
	case p.lineIndent > parentIndent:
		return 1
	case p.lineIndent == parentIndent:
		return 0
	}
	return -1
}

// composeNode composes one node at the cursor into p.result. It reports
// whether a node, a tag or an anchor was found.
func (p *Parser) composeNode(parentIndent int, ctx token.Context, allowToSeek, allowCompact bool) bool {
	p.tag, p.anchor = "", ""
	p.kind, p.result = ast.NoKind, nil

	allowBlockStyles := ctx.IsBlock()
	allowBlockScalars := allowBlockStyles
	allowBlockCollections := allowBlockStyles
	indent := 1
	atNewLine := false
	hasContent := false

	if allowToSeek && p.skipSeparationSpace(true, -1) > 0 {
		atNewLine = true
		indent = p.indentStatus(parentIndent)
	}

	if indent == 1 {
		for p.readTagProperty() || p.readAnchorProperty() {
			if p.skipSeparationSpace(true, -1) > 0 {
				atNewLine = true
				allowBlockCollections = allowBlockStyles
				indent = p.indentStatus(parentIndent)
			} else {
				allowBlockCollections = false
			}
		}
	}

	if allowBlockCollections {
		allowBlockCollections = atNewLine || allowCompact
	}

	if indent == 1 || ctx == token.BlockOut {
		flowIndent := parentIndent + 1
		if ctx.IsFlow() {
			flowIndent = parentIndent
		}
		blockIndent := p.position - p.lineStart

		switch indent {
		case 1:
			if allowBlockCollections && (p.readBlockSequence(blockIndent) || p.readBlockMapping(blockIndent, flowIndent)) ||
				p.readFlowCollection(flowIndent) {
				hasContent = true
				break
			}

			switch {
			case allowBlockScalars && p.readBlockScalar(flowIndent),
				p.readSingleQuotedScalar(flowIndent),
				p.readDoubleQuotedScalar(flowIndent):
				hasContent = true
			case p.readAlias():
				hasContent = true
				p.failIf(p.tag != "" || p.anchor != "", errors.StructuralError, "alias node should not have any properties")
			case p.readPlainScalar(flowIndent, ctx == token.FlowIn):
				hasContent = true
				if p.tag == "" {
					p.tag = implicitTag
				}
			}
			p.registerAnchor()
		case 0:
			// Block sequences may share the indentation of their parent.
			hasContent = allowBlockCollections && p.readBlockSequence(blockIndent)
		}
	}

	switch p.tag {
	case "":
		p.registerAnchor()
	case implicitTag:
		for _, typ := range p.schema.Implicit {
			if typ.Resolve(p.result) {
				p.result = typ.Construct(p.result)
				p.tag = typ.Tag()
				p.registerAnchor()
				break
			}
		}
	case nonSpecificTag:
	default:
		p.resolveExplicitTag()
	}

	return p.tag != "" || p.anchor != "" || hasContent
}

func (p *Parser) resolveExplicitTag() {
	typ, ok := p.schema.Lookup(p.kind, p.tag)
	p.failIf(!ok, errors.SchemaError, "unknown tag !<%s>", p.tag)
	p.failIf(p.result != nil && typ.Kind() != p.kind, errors.SchemaError,
		"unacceptable node kind for !<%s> tag; it should be %q, not %q", p.tag, typ.Kind(), p.kind)
	p.failIf(!typ.Resolve(p.result), errors.SchemaError, "cannot resolve a node with !<%s> explicit tag", p.tag)

	p.result = typ.Construct(p.result)
	p.registerAnchor()
}

func (p *Parser) registerAnchor() {
	if p.anchor != "" {
		p.anchorMap[p.anchor] = p.result
	}
}
