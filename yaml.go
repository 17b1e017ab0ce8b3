package yaml

import (
	"github.com/KimNorgaard/go-yaml/internal/parser"
)

// Parse parses every document in data and returns one value per document,
// in stream order. An empty stream yields an empty slice.
//
// Values are nil, bool, int64, *big.Int, float64, time.Time, []byte,
// string, *ast.Sequence, *ast.Mapping or ast.Pairs. Collections reached
// through an alias are the same pointer as the anchored collection.
//
// The first malformed construct aborts the whole parse with a
// *ParseError; no documents are returned in that case.
func Parse(data []byte, opts ...Option) ([]any, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return parser.Parse(data, o.parserConfig())
}

// ParseString is like Parse but takes its input as a string.
func ParseString(s string, opts ...Option) ([]any, error) {
	return Parse([]byte(s), opts...)
}

// Unmarshal parses the YAML-encoded data and stores the first document in
// the value pointed to by v. Further documents are ignored; use a Decoder
// to read them. If data holds no document, v is left unchanged.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	docs, err := parser.Parse(data, o.parserConfig())
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return checkTarget(v)
	}
	return decodeValue(docs[0], v, o)
}
