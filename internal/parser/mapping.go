package parser

import (
	"strings"

	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/errors"
)

// MappingKey is the key a mapping used as a mapping key is stored under.
const MappingKey = "<mapping>"

// storeMappingPair adds key and value to dst, allocating dst when nil.
// A merge key copies the entries of the value instead. Keys copied by a
// merge are recorded in overridable so that a later explicit key may
// replace them.
func (p *Parser) storeMappingPair(dst *ast.Mapping, overridable map[string]bool, keyTag string, keyNode, valueNode any, start *mark) *ast.Mapping {
	key := p.keyString(keyNode)
	if dst == nil {
		dst = ast.NewMapping()
	}

	if keyTag == "merge" {
		if seq, ok := valueNode.(*ast.Sequence); ok {
			for _, src := range seq.Items {
				p.mergeMappings(dst, src, overridable)
			}
		} else {
			p.mergeMappings(dst, valueNode, overridable)
		}
		return dst
	}

	if !p.json && !overridable[key] && dst.Has(key) {
		p.restore(start)
		p.fail(errors.StructuralError, "duplicated mapping key")
	}
	dst.Set(key, valueNode)
	delete(overridable, key)
	return dst
}

func (p *Parser) mergeMappings(dst *ast.Mapping, source any, overridable map[string]bool) {
	src, ok := source.(*ast.Mapping)
	if !ok {
		p.fail(errors.StructuralError, "cannot merge mappings; the provided source object is unacceptable")
	}
	for k, v := range src.All() {
		if !dst.Has(k) {
			dst.Set(k, v)
			overridable[k] = true
		}
	}
}

// keyString coerces a composed key node to the string it is stored
// under. Mappings never contribute their content.
func (p *Parser) keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case *ast.Mapping:
		return MappingKey
	case *ast.Sequence:
		return p.joinKey(k.Items)
	case ast.Pairs:
		items := make([]any, len(k))
		for i, pair := range k {
			items[i] = &ast.Sequence{Items: []any{pair.Key, pair.Value}}
		}
		return p.joinKey(items)
	}
	return ast.FormatScalar(key)
}

func (p *Parser) joinKey(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		switch item := item.(type) {
		case nil:
		case *ast.Sequence, ast.Pairs:
			p.fail(errors.StructuralError, "nested sequences are not supported inside keys")
		case *ast.Mapping:
			parts[i] = MappingKey
		case string:
			parts[i] = item
		default:
			parts[i] = ast.FormatScalar(item)
		}
	}
	return strings.Join(parts, ",")
}
