// Package schema resolves untyped node values into typed values using the
// fixed set of builtin tags.
package schema

import (
	"strings"

	"github.com/KimNorgaard/go-yaml/ast"
)

// CorePrefix is the prefix of the builtin tags in their long form.
const CorePrefix = "tag:yaml.org,2002:"

// Schema is the set of recognised tags. Implicit types are tried in order
// against untagged plain scalars; explicit tags are looked up by node kind,
// then by prefix among the Multi types of that kind.
type Schema struct {
	Implicit []Type
	Multi    map[ast.Kind][]Type

	byKind map[ast.Kind]map[string]Type
}

// Default returns the builtin schema.
func Default() *Schema {
	s := &Schema{
		Implicit: []Type{Null, Bool, Int, Float, Timestamp, Merge},
		Multi:    map[ast.Kind][]Type{},
		byKind:   map[ast.Kind]map[string]Type{ast.NoKind: {}},
	}
	for _, t := range builtin {
		k := t.Kind()
		if s.byKind[k] == nil {
			s.byKind[k] = map[string]Type{}
		}
		s.byKind[k][t.Tag()] = t
		s.byKind[ast.NoKind][t.Tag()] = t
	}
	return s
}

// Lookup finds the type for an explicit tag on a node of the given kind.
// NoKind looks in the fallback table holding every type.
func (s *Schema) Lookup(kind ast.Kind, tag string) (Type, bool) {
	if t, ok := s.byKind[kind][tag]; ok {
		return t, true
	}
	for _, t := range s.Multi[kind] {
		if strings.HasPrefix(tag, t.Tag()) {
			return t, true
		}
	}
	return 0, false
}

// Normalize maps the long form of a builtin tag to its short name.
func Normalize(tag string) string {
	if short, ok := strings.CutPrefix(tag, CorePrefix); ok {
		return short
	}
	return tag
}
