package parser

import (
	"bytes"
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/errors"
)

func parsePlain(t *testing.T, src string, cfg Config) []any {
	t.Helper()
	docs, err := Parse([]byte(src), cfg)
	require.NoError(t, err)
	out := make([]any, len(docs))
	for i, doc := range docs {
		out[i], err = ast.Plain(doc)
		require.NoError(t, err)
	}
	return out
}

func parseOne(t *testing.T, src string) any {
	t.Helper()
	docs := parsePlain(t, src, Config{})
	require.Len(t, docs, 1)
	return docs[0]
}

func TestScalars(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"~", nil},
		{"null", nil},
		{"true", true},
		{"False", false},
		{"42", int64(42)},
		{"-12", int64(-12)},
		{"0x1A", int64(26)},
		{"0o17", int64(15)},
		{"1.5", 1.5},
		{"2001-01-01", time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2001-12-14t21:59:43.10-05:00", time.Date(2001, 12, 15, 2, 59, 43, 100*int(time.Millisecond), time.UTC)},
		{"hello world", "hello world"},
		{"a:1", "a:1"},
		{"'it''s'", "it's"},
		{"''", ""},
		{`"12"`, "12"},
		{`"a\tb"`, "a\tb"},
		{`"\u263A"`, "\u263A"},
		{`"\U0001F600"`, "\U0001F600"},
		{`"\uD83D\uDE00"`, "\U0001F600"},
		{`"\x41"`, "A"},
		{`"\N\_\L\P"`, "\u0085\u00A0\u2028\u2029"},
		{"!!str 12", "12"},
		{"!!str", ""},
		{"!!float 1", 1.0},
		{`!!int "3"`, int64(3)},
		{"! 12", "12"},
		{"!<tag:yaml.org,2002:int> 7", int64(7)},
		{"!!binary aGVsbG8=", []byte("hello")},
		{"aGk", "aGk"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, parseOne(t, tt.input))
		})
	}
}

func TestSpecialValues(t *testing.T) {
	require.True(t, math.IsInf(parseOne(t, ".inf").(float64), 1))
	require.True(t, math.IsInf(parseOne(t, "-.Inf").(float64), -1))
	require.True(t, math.IsNaN(parseOne(t, ".NaN").(float64)))

	v := parseOne(t, "123456789012345678901234567890")
	expected, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.IsType(t, &big.Int{}, v)
	require.Zero(t, expected.Cmp(v.(*big.Int)))
}

func TestBlockScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clip", "a: |\n  line1\n  line2\n\n", "line1\nline2\n"},
		{"strip", "a: |-\n  line1\n  line2\n\n", "line1\nline2"},
		{"keep", "a: |+\n  line1\n  line2\n\n", "line1\nline2\n\n"},
		{"folded", "a: >\n  one\n  two\n\n  three\n", "one two\nthree\n"},
		{"more indented", "a: >\n  one\n    more\n  two\n", "one\n  more\ntwo\n"},
		{"explicit indentation", "a: |2\n   x\n", " x\n"},
		{"comment after header", "a: | # note\n  x\n", "x\n"},
		{"empty", "a: |\nb: 1\n", ""},
		{"top level", "--- >\n  folded\n  text\n", "folded text\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := parseOne(t, tt.input)
			if m, ok := v.(map[string]any); ok {
				v = m["a"]
			}
			require.Equal(t, tt.expected, v)
		})
	}
}

func TestQuotedFolding(t *testing.T) {
	require.Equal(t, "a b\nc", parseOne(t, "'a\n  b\n\n  c'"))
	require.Equal(t, "a b", parseOne(t, "\"a\n  b\""))
	require.Equal(t, "ab", parseOne(t, "\"a\\\n  b\""))
	require.Equal(t, map[string]any{"key": "a b"}, parseOne(t, "key: a\n  b\n"))
}

func TestCollections(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"flow sequence", "[1, 2, 3]", []any{int64(1), int64(2), int64(3)}},
		{"block sequence", "- 1\n- 2\n- 3\n", []any{int64(1), int64(2), int64(3)}},
		{"trailing comma", "[a, b,]", []any{"a", "b"}},
		{"empty flow", "{a: [], b: {}}", map[string]any{"a": []any{}, "b": map[string]any{}}},
		{"flow pairs", "[a: 1, b]", []any{map[string]any{"a": int64(1)}, "b"}},
		{"flow mapping without values", "{a, b: 2}", map[string]any{"a": nil, "b": int64(2)}},
		{"null entries", "- \n- a\n", []any{nil, "a"}},
		{"empty value", "a:\nb: 1\n", map[string]any{"a": nil, "b": int64(1)}},
		{"sequence at parent indentation", "a:\n- 1\n- 2\n", map[string]any{"a": []any{int64(1), int64(2)}}},
		{"explicit key", "? a\n: 1\n", map[string]any{"a": int64(1)}},
		{"explicit key without value", "? a\n", map[string]any{"a": nil}},
		{"crlf", "a: 1\r\nb: 2\r\n", map[string]any{"a": int64(1), "b": int64(2)}},
		{
			"nested",
			"outer:\n  inner:\n    - x\n    - y: 1\n      z: 2\n",
			map[string]any{"outer": map[string]any{"inner": []any{"x", map[string]any{"y": int64(1), "z": int64(2)}}}},
		},
		{"comments", "# head\na: 1 # trailing\n# tail\n", map[string]any{"a": int64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, parseOne(t, tt.input))
		})
	}
}

func TestMappingOrder(t *testing.T) {
	docs, err := Parse([]byte("z: 1\na: 2\nm: 3\n"), Config{})
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a", "m"}, docs[0].(*ast.Mapping).Keys())
}

func TestKeyCoercion(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sequence", "? [a, b]\n: 1\n", "a,b"},
		{"flow sequence", "{[1, 2]: x}", "1,2"},
		{"sequence with null", "? [a, ~]\n: 1\n", "a,"},
		{"mapping", "? {a: 1}\n: v\n", MappingKey},
		{"mapping in sequence", "? [{a: 1}, b]\n: v\n", MappingKey + ",b"},
		{"int", "1: v\n", "1"},
		{"bool", "true: v\n", "true"},
		{"null", "~: v\n", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := Parse([]byte(tt.input), Config{})
			require.NoError(t, err)
			require.Equal(t, []string{tt.expected}, docs[0].(*ast.Mapping).Keys())
		})
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"explicit key wins", "{<<: {a: 1}, a: 2}", map[string]any{"a": int64(2)}},
		{"copies all keys", "{<<: {a: 1, b: 2}}", map[string]any{"a": int64(1), "b": int64(2)}},
		{"existing key kept", "{a: 0, <<: {a: 1}}", map[string]any{"a": int64(0)}},
		{
			"sequence of sources",
			"base: &b {a: 1}\nother: &o {a: 9, b: 2}\nmerged:\n  <<: [*b, *o]\n  c: 3\n",
			map[string]any{
				"base":   map[string]any{"a": int64(1)},
				"other":  map[string]any{"a": int64(9), "b": int64(2)},
				"merged": map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)},
			},
		},
		{
			"block anchor",
			"base: &base\n  a: 1\nderived:\n  <<: *base\n  b: 2\n",
			map[string]any{
				"base":    map[string]any{"a": int64(1)},
				"derived": map[string]any{"a": int64(1), "b": int64(2)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, parseOne(t, tt.input))
		})
	}
}

func TestAliases(t *testing.T) {
	require.Equal(t, map[string]any{"x": int64(1), "y": int64(1)}, parseOne(t, "{x: &anchor 1, y: *anchor}"))

	docs, err := Parse([]byte("a: &x [1]\nb: *x\n"), Config{})
	require.NoError(t, err)
	m := docs[0].(*ast.Mapping)
	a, _ := m.Get("a")
	b, _ := m.Get("b")
	require.Same(t, a, b)

	docs, err = Parse([]byte("&a [*a]"), Config{})
	require.NoError(t, err)
	seq := docs[0].(*ast.Sequence)
	require.Same(t, seq, seq.Items[0])
	_, err = ast.Plain(seq)
	require.ErrorIs(t, err, ast.ErrCycle)
}

func TestTypedCollections(t *testing.T) {
	docs, err := Parse([]byte("!!omap [b: 1, a: 2]"), Config{})
	require.NoError(t, err)
	om := docs[0].(*ast.Mapping)
	require.Equal(t, []string{"b", "a"}, om.Keys())

	require.Equal(t, []any{[]any{"a", int64(1)}, []any{"a", int64(2)}}, parseOne(t, "!!pairs [a: 1, a: 2]"))
	require.Equal(t, map[string]any{"a": nil, "b": nil}, parseOne(t, "!!set {a, b}"))
	require.Equal(t, []any{}, parseOne(t, "!!seq"))
}

func TestDocuments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []any
	}{
		{"empty", "", []any{}},
		{"comment only", "# nothing\n", []any{nil}},
		{"multiple", "---\na: 1\n---\nb: 2\n", []any{map[string]any{"a": int64(1)}, map[string]any{"b": int64(2)}}},
		{"end marker", "a\n...\n", []any{"a"}},
		{"end marker between", "a\n...\n---\nb\n", []any{"a", "b"}},
		{"empty documents", "---\n---\n", []any{nil, nil}},
		{"yaml directive", "%YAML 1.2\n---\na: 1\n", []any{map[string]any{"a": int64(1)}}},
		{"tag directive", "%TAG !m! tag:yaml.org,2002:\n---\n!m!str 5\n", []any{"5"}},
		{"secondary handle", "%TAG !! tag:yaml.org,2002:\n---\n!!int \"3\"\n", []any{int64(3)}},
		{"bom", "\xEF\xBB\xBFa", []any{"a"}},
		{"anchors are per document", "--- &a 1\n--- &a 2\n", []any{int64(1), int64(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, parsePlain(t, tt.input, Config{}))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    errors.Kind
		message string
	}{
		{"null byte", "a\x00", errors.StreamError, "null byte is not allowed in input"},
		{"duplicate key", "a: 1\na: 1\n", errors.StructuralError, "duplicated mapping key"},
		{"undefined alias", "*missing", errors.StructuralError, `unidentified alias "missing"`},
		{"alias with properties", "x: &a 1\ny: &b *a\n", errors.StructuralError, "alias node should not have any properties"},
		{"duplicate anchor", "a: &x 1\nb: &x 2\n", errors.StructuralError, `duplicated anchor "x"`},
		{"duplicate tag", "!!str !!str a", errors.StructuralError, "duplication of a tag property"},
		{"tab indentation", "a:\n\t- b\n", errors.StructuralError, "tab characters must not be used in indentation"},
		{"missing space after colon", `"a":b`, errors.StructuralError, "a whitespace character is expected after the key-value separator"},
		{"bad mapping indentation", "a: b: c\n", errors.StructuralError, "bad indentation of a mapping entry"},
		{"bad sequence indentation", "- [a] b\n", errors.StructuralError, "bad indentation of a sequence entry"},
		{"missed comma", `["a" "b"]`, errors.StructuralError, "missed comma between flow collection entries"},
		{"double comma", "[a,,b]", errors.StructuralError, "expected the node content, but found ','"},
		{"leading comma", "[,a]", errors.StructuralError, "expected the node content, but found ','"},
		{"unterminated flow", "[a, b", errors.StreamError, "unexpected end of the stream within a flow collection"},
		{"unterminated double quote", `"abc`, errors.StreamError, "unexpected end of the stream within a double quoted scalar"},
		{"unterminated single quote", "'abc", errors.StreamError, "unexpected end of the stream within a single quoted scalar"},
		{"document inside quote", "'a\n---\n'", errors.StreamError, "unexpected end of the document within a single quoted scalar"},
		{"unknown escape", `"\q"`, errors.LexicalError, "unknown escape sequence"},
		{"bad hex escape", `"\xZZ"`, errors.LexicalError, "expected hexadecimal character"},
		{"repeated chomping", "a: |++\n  x\n", errors.LexicalError, "repeat of a chomping mode identifier"},
		{"zero indentation width", "a: |0\n  x\n", errors.LexicalError, "bad explicit indentation width"},
		{"non printable", "a\x01b", errors.StreamError, "the stream contains non-printable characters"},
		{"invalid json character", "\"a\x01b\"", errors.LexicalError, "expected valid JSON character"},
		{"incomplete explicit pair", ": a\n", errors.StructuralError, "incomplete explicit mapping pair"},
		{"trailing content", "a\nb: 1\n", errors.StructuralError, "end of the stream or a document separator is expected"},
		{"missing colon", "a: 1\n'b'\n", errors.StructuralError, "can not read an implicit mapping pair; a colon is missed"},
		{"unknown tag", "!foo bar", errors.SchemaError, "unknown tag !<!foo>"},
		{"kind mismatch", "!!map [1]", errors.SchemaError, "unknown tag !<map>"},
		{"unresolvable", "!!int abc", errors.SchemaError, "cannot resolve a node with !<int> explicit tag"},
		{"odd binary", "!!binary aGk", errors.SchemaError, "cannot resolve a node with !<binary> explicit tag"},
		{"empty tag", "!! a", errors.SchemaError, "unknown tag !<>"},
		{"undeclared handle", "!m!str 5", errors.SchemaError, `undeclared tag handle "!m!"`},
		{"flow indicator in tag", "[!a,b c]", errors.LexicalError, "tag suffix cannot contain flow indicator characters"},
		{"merge non mapping", "{<<: 1}", errors.StructuralError, "cannot merge mappings"},
		{"nested sequence key", "? [[1]]\n: x\n", errors.StructuralError, "nested sequences are not supported inside keys"},
		{"directives without marker", "%YAML 1.2\na: 1\n", errors.StructuralError, "directives end mark is expected"},
		{"duplicate yaml directive", "%YAML 1.2\n%YAML 1.2\n---\n", errors.StructuralError, "duplication of %YAML directive"},
		{"yaml major version", "%YAML 2.0\n---\n", errors.StructuralError, "unacceptable YAML version"},
		{"yaml argument", "%YAML 1.2 1.1\n---\n", errors.StructuralError, "exactly one argument"},
		{"duplicate tag handle", "%TAG !m! a:\n%TAG !m! b:\n---\n", errors.StructuralError, "previously declared"},
		{"bad tag handle", "%TAG m a:\n---\n", errors.LexicalError, "ill-formed tag handle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), Config{})
			require.Error(t, err)

			var pe *errors.ParseError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, tt.kind, pe.Kind, pe.Error())
			require.Contains(t, pe.Message, tt.message)
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Parse([]byte("a: 1\na: 2\n"), Config{Filename: "dup.yaml"})
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	require.ErrorIs(t, err, errors.ErrStructure)
	require.Equal(t, 2, pe.Line)
	require.Equal(t, 1, pe.Column)
	require.Equal(t, "a: 1\na: 2\n^\n", pe.Snippet)
	require.True(t, strings.HasPrefix(pe.Error(), "yaml: duplicated mapping key:\n"), pe.Error())
	require.True(t, strings.HasSuffix(pe.Error(), "(dup.yaml:2:1)"), pe.Error())

	_, err = Parse([]byte("a\x00"), Config{})
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 1, pe.Line)
	require.Equal(t, 2, pe.Column)
}

func TestJSONAllowsDuplicateKeys(t *testing.T) {
	docs := parsePlain(t, "a: 1\na: 2\n", Config{JSON: true})
	require.Equal(t, []any{map[string]any{"a": int64(2)}}, docs)
}

func TestMaxDepth(t *testing.T) {
	// Each input nests two collections, whatever the style.
	for _, input := range []string{
		"[[1]]",
		"- - 1\n",
		"{a: {b: 1}}",
		"a:\n  b: 1\n",
		"a:\n- 1\n",
		"? [1]\n",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse([]byte(input), Config{MaxDepth: 2})
			require.NoError(t, err)

			_, err = Parse([]byte(input), Config{MaxDepth: 1})
			require.ErrorIs(t, err, errors.ErrStructure)
			require.Contains(t, err.Error(), "maximum nesting depth of 1 exceeded")
		})
	}

	_, err := Parse([]byte("a: b\nc: d\n"), Config{MaxDepth: 1})
	require.NoError(t, err)

	_, err = Parse([]byte("[[1]]"), Config{MaxDepth: 3})
	require.NoError(t, err)

	_, err = Parse([]byte("[[[[1]]]]"), Config{MaxDepth: 3})
	require.ErrorIs(t, err, errors.ErrStructure)
	require.Contains(t, err.Error(), "maximum nesting depth of 3 exceeded")

	deep := strings.Repeat("[", DefaultMaxDepth+1) + strings.Repeat("]", DefaultMaxDepth+1)
	_, err = Parse([]byte(deep), Config{})
	require.Error(t, err)
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
		warning  string
	}{
		{"unknown directive", "%FOO bar\n---\nx\n", "x", "unknown document directive"},
		{"yaml minor version", "%YAML 1.3\n---\nx\n", "x", "unsupported YAML version"},
		{"deficient indentation", "a: \"x\ny\"\n", map[string]any{"a": "x y"}, "deficient indentation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			docs := parsePlain(t, tt.input, Config{Logger: log.NewLogfmtLogger(&buf)})
			require.Equal(t, []any{tt.expected}, docs)
			require.Contains(t, buf.String(), "level=warn")
			require.Contains(t, buf.String(), tt.warning)
		})
	}
}

func TestIdempotent(t *testing.T) {
	src := []byte("a: &x [1, {b: 2}]\nc: *x\nd: !!binary aGVsbG8=\n")
	first, err := Parse(src, Config{})
	require.NoError(t, err)
	second, err := Parse(src, Config{})
	require.NoError(t, err)

	p1, err := ast.Plain(first[0])
	require.NoError(t, err)
	p2, err := ast.Plain(second[0])
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestUTF16(t *testing.T) {
	src := []byte{0xFF, 0xFE, 'a', 0, ':', 0, ' ', 0, '1', 0, '\n', 0}
	require.Equal(t, []any{map[string]any{"a": int64(1)}}, parsePlain(t, string(src), Config{}))
}
