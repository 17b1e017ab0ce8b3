// Package ast holds the values produced by the parser.
//
// Scalars come out as plain Go values (nil, bool, int64, *big.Int, float64,
// time.Time, []byte, string). Collections come out as pointer handles so
// that an alias refers to the very same value as its anchor.
package ast

import (
	"encoding/base64"
	"fmt"
	"iter"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Kind is the structural kind of a node.
type Kind int

const (
	NoKind Kind = iota
	ScalarKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	}
	return "none"
}

// Mapping is an insertion-ordered association of string keys to values.
// The zero value is an empty mapping ready to use.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// Len returns the number of keys.
func (m *Mapping) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores v under key. A new key goes to the end; an existing key
// keeps its position.
func (m *Mapping) Set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// All iterates over the pairs in insertion order.
func (m *Mapping) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

func (m *Mapping) String() string {
	var b strings.Builder
	writeValue(&b, m, map[any]bool{})
	return b.String()
}

// Sequence is an ordered list of values.
type Sequence struct {
	Items []any
}

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.Items) }

// Append adds v to the end of the sequence.
func (s *Sequence) Append(v any) { s.Items = append(s.Items, v) }

// All iterates over the items in order.
func (s *Sequence) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, v := range s.Items {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (s *Sequence) String() string {
	var b strings.Builder
	writeValue(&b, s, map[any]bool{})
	return b.String()
}

// Pair is one entry of a !!pairs collection.
type Pair struct {
	Key   string
	Value any
}

// Pairs is an ordered list of key/value pairs that may repeat keys.
type Pairs []Pair

func (p Pairs) String() string {
	var b strings.Builder
	writeValue(&b, p, map[any]bool{})
	return b.String()
}

// writeValue renders v in flow style. Collections already being written
// are rendered as <cycle>.
func writeValue(b *strings.Builder, v any, visiting map[any]bool) {
	switch v := v.(type) {
	case *Mapping:
		if visiting[v] {
			b.WriteString("<cycle>")
			return
		}
		visiting[v] = true
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			writeValue(b, v.values[k], visiting)
		}
		b.WriteByte('}')
		delete(visiting, v)
	case *Sequence:
		if visiting[v] {
			b.WriteString("<cycle>")
			return
		}
		visiting[v] = true
		b.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item, visiting)
		}
		b.WriteByte(']')
		delete(visiting, v)
	case Pairs:
		b.WriteByte('[')
		for i, p := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(p.Key))
			b.WriteString(": ")
			writeValue(b, p.Value, visiting)
		}
		b.WriteByte(']')
	case string:
		b.WriteString(strconv.Quote(v))
	default:
		b.WriteString(FormatScalar(v))
	}
}

// FormatScalar returns the canonical text of a scalar value. It is also
// the text used when a scalar serves as a mapping key.
func FormatScalar(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case *big.Int:
		return v.String()
	case float64:
		switch {
		case math.IsNaN(v):
			return ".nan"
		case math.IsInf(v, 1):
			return ".inf"
		case math.IsInf(v, -1):
			return "-.inf"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	}
	return fmt.Sprint(v)
}
