package schema

import (
	"encoding/base64"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/internal/lexer"
)

// Type is one of the builtin tags. Resolve never panics; Construct is
// only called with data Resolve accepted.
type Type int

const (
	Null Type = iota + 1
	Bool
	Int
	Float
	Timestamp
	Merge
	Str
	Binary
	Seq
	OMap
	Pairs
	Map
	Set
)

var builtin = []Type{Null, Bool, Int, Float, Timestamp, Merge, Str, Binary, Seq, OMap, Pairs, Map, Set}

// Tag returns the short tag name.
func (t Type) Tag() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Timestamp:
		return "timestamp"
	case Merge:
		return "merge"
	case Str:
		return "str"
	case Binary:
		return "binary"
	case Seq:
		return "seq"
	case OMap:
		return "omap"
	case Pairs:
		return "pairs"
	case Map:
		return "map"
	case Set:
		return "set"
	}
	return ""
}

// Kind returns the node kind the tag applies to.
func (t Type) Kind() ast.Kind {
	switch t {
	case Seq, OMap, Pairs:
		return ast.SequenceKind
	case Map, Set:
		return ast.MappingKind
	}
	return ast.ScalarKind
}

func (t Type) String() string { return "!!" + t.Tag() }

// Resolve reports whether data is acceptable for t.
func (t Type) Resolve(data any) bool {
	switch t {
	case Null:
		return resolveNull(data)
	case Bool:
		s, ok := data.(string)
		return ok && (slices.Contains(trueStrings, s) || slices.Contains(falseStrings, s))
	case Int:
		s, ok := data.(string)
		return ok && resolveInt(s)
	case Float:
		s, ok := data.(string)
		return ok && floatPattern.MatchString(s) && !strings.HasSuffix(s, "_")
	case Timestamp:
		s, ok := data.(string)
		return ok && (datePattern.MatchString(s) || timestampPattern.MatchString(s))
	case Merge:
		return data == nil || data == "<<"
	case Str:
		_, ok := data.(string)
		return ok || data == nil
	case Binary:
		s, ok := data.(string)
		return ok && resolveBinary(s)
	case Seq:
		return data == nil || isSequence(data)
	case OMap:
		return resolvePairs(data, true)
	case Pairs:
		return resolvePairs(data, false)
	case Map:
		return data == nil || isMapping(data)
	case Set:
		return resolveSet(data)
	}
	return false
}

// Construct builds the typed value for data.
func (t Type) Construct(data any) any {
	switch t {
	case Null:
		return nil
	case Bool:
		return slices.Contains(trueStrings, data.(string))
	case Int:
		return constructInt(data.(string))
	case Float:
		return constructFloat(data.(string))
	case Timestamp:
		return constructTimestamp(data.(string))
	case Str:
		s, _ := data.(string)
		return s
	case Binary:
		return constructBinary(data.(string))
	case Seq:
		if data == nil {
			return &ast.Sequence{}
		}
		return data
	case OMap:
		return constructOMap(data)
	case Pairs:
		return constructPairs(data)
	case Merge, Map, Set:
		if data == nil {
			return ast.NewMapping()
		}
		return data
	}
	return data
}

var (
	nullStrings  = []string{"", "null", "Null", "NULL", "~"}
	trueStrings  = []string{"true", "True", "TRUE"}
	falseStrings = []string{"false", "False", "FALSE"}

	floatPattern = regexp.MustCompile(`^(?:[-+]?(?:[0-9][0-9_]*)(?:\.[0-9_]*)?(?:[eE][-+]?[0-9]+)?` +
		`|\.[0-9_]+(?:[eE][-+]?[0-9]+)?` +
		`|[-+]?\.(?:inf|Inf|INF)` +
		`|\.(?:nan|NaN|NAN))$`)

	datePattern = regexp.MustCompile(`^([0-9][0-9][0-9][0-9])-([0-9][0-9])-([0-9][0-9])$`)

	timestampPattern = regexp.MustCompile(`^([0-9][0-9][0-9][0-9])` + // year
		`-([0-9][0-9]?)` + // month
		`-([0-9][0-9]?)` + // day
		`(?:[Tt]|[ \t]+)` +
		`([0-9][0-9]?)` + // hour
		`:([0-9][0-9])` + // minute
		`:([0-9][0-9])` + // second
		`(?:\.([0-9]*))?` + // fraction
		`(?:[ \t]*(Z|([-+])([0-9][0-9]?)(?::([0-9][0-9]))?))?$`) // zone
)

func resolveNull(data any) bool {
	if data == nil {
		return true
	}
	s, ok := data.(string)
	return ok && slices.Contains(nullStrings, s)
}

func isSequence(data any) bool {
	_, ok := data.(*ast.Sequence)
	return ok
}

func isMapping(data any) bool {
	_, ok := data.(*ast.Mapping)
	return ok
}

// radixPrefix returns the base introduced by the character after a
// leading zero, or 0.
func radixPrefix(c byte) int {
	switch c {
	case 'b':
		return 2
	case 'o':
		return 8
	case 'x':
		return 16
	}
	return 0
}

func isRadixDigit(c byte, base int) bool {
	d := lexer.FromHex(c)
	return d >= 0 && d < base
}

func resolveInt(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	base := 10
	if i < len(s) && s[i] == '0' {
		if i+1 == len(s) {
			return true
		}
		if b := radixPrefix(s[i+1]); b != 0 {
			base = b
			i += 2
		}
	}
	if i >= len(s) || s[i] == '_' || s[len(s)-1] == '_' {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] != '_' && !isRadixDigit(s[i], base) {
			return false
		}
	}
	return true
}

func constructInt(s string) any {
	s = strings.ReplaceAll(s, "_", "")
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	base := 10
	if len(s) > 1 && s[0] == '0' {
		if b := radixPrefix(s[1]); b != 0 {
			base = b
			s = s[2:]
		}
	}
	if negative {
		s = "-" + s
	}
	if v, err := strconv.ParseInt(s, base, 64); err == nil {
		return v
	}
	v, _ := new(big.Int).SetString(s, base)
	return v
}

func constructFloat(s string) float64 {
	s = strings.ToLower(strings.ReplaceAll(s, "_", ""))
	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	switch s {
	case ".inf":
		return math.Inf(int(sign))
	case ".nan":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range values saturate to ±Inf with a range error.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return math.NaN()
		}
	}
	return sign * v
}

func constructTimestamp(s string) time.Time {
	if m := datePattern.FindStringSubmatch(s); m != nil {
		return time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), 0, 0, 0, 0, time.UTC)
	}
	m := timestampPattern.FindStringSubmatch(s)

	fraction := (m[7] + "000")[:3]
	t := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]),
		atoi(m[4]), atoi(m[5]), atoi(m[6]), atoi(fraction)*int(time.Millisecond), time.UTC)

	if m[9] != "" {
		offset := time.Duration(atoi(m[10]))*time.Hour + time.Duration(atoi(m[11]))*time.Minute
		if m[9] == "-" {
			offset = -offset
		}
		t = t.Add(-offset)
	}
	return t
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

func resolveBinary(s string) bool {
	bits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' || c == '\r' {
			continue
		}
		if strings.IndexByte(base64Alphabet, c) < 0 {
			return false
		}
		bits += 6
	}
	return bits%8 == 0
}

func constructBinary(s string) []byte {
	s = strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r == '=' {
			return -1
		}
		return r
	}, s)
	if len(s)%4 == 1 {
		// A lone trailing sextet carries no full byte.
		s = s[:len(s)-1]
	}
	out, _ := base64.RawStdEncoding.DecodeString(s)
	if out == nil {
		out = []byte{}
	}
	return out
}

func resolvePairs(data any, unique bool) bool {
	if data == nil {
		return true
	}
	seq, ok := data.(*ast.Sequence)
	if !ok {
		return false
	}
	seen := make(map[string]bool, seq.Len())
	for _, item := range seq.Items {
		m, ok := item.(*ast.Mapping)
		if !ok || m.Len() != 1 {
			return false
		}
		if unique {
			key := m.Keys()[0]
			if seen[key] {
				return false
			}
			seen[key] = true
		}
	}
	return true
}

func constructOMap(data any) *ast.Mapping {
	out := ast.NewMapping()
	if data == nil {
		return out
	}
	for _, item := range data.(*ast.Sequence).Items {
		for k, v := range item.(*ast.Mapping).All() {
			out.Set(k, v)
		}
	}
	return out
}

func constructPairs(data any) ast.Pairs {
	out := ast.Pairs{}
	if data == nil {
		return out
	}
	for _, item := range data.(*ast.Sequence).Items {
		for k, v := range item.(*ast.Mapping).All() {
			out = append(out, ast.Pair{Key: k, Value: v})
		}
	}
	return out
}

func resolveSet(data any) bool {
	if data == nil {
		return true
	}
	m, ok := data.(*ast.Mapping)
	if !ok {
		return false
	}
	for _, v := range m.All() {
		if v != nil {
			return false
		}
	}
	return true
}
