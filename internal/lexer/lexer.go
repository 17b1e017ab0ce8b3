// Package lexer prepares raw input for the parser and provides the small
// digit helpers the scalar readers share.
package lexer

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/KimNorgaard/go-yaml/internal/token"
)

var bom = []byte("\xEF\xBB\xBF")

// Source is a normalised YAML stream. Buf ends with a line break followed
// by the token.EOF sentinel; Len excludes the sentinel.
type Source struct {
	Buf []byte
	Len int
}

// New decodes data and normalises it for parsing: a UTF-16 byte order
// mark selects UTF-16 decoding, a UTF-8 byte order mark is stripped, a
// final line break is guaranteed and the sentinel is appended.
func New(data []byte) (*Source, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	text = bytes.TrimPrefix(text, bom)

	buf := make([]byte, 0, len(text)+2)
	buf = append(buf, text...)
	if n := len(buf); n > 0 && !token.IsEOL(buf[n-1]) {
		buf = append(buf, '\n')
	}
	s := &Source{Len: len(buf)}
	s.Buf = append(buf, token.EOF)
	return s, nil
}

// IndexNull returns the offset of the first NUL byte in the input, or -1.
func (s *Source) IndexNull() int {
	return bytes.IndexByte(s.Buf[:s.Len], token.EOF)
}

// At returns the byte at pos, or token.EOF past the end of the buffer.
func (s *Source) At(pos int) byte {
	if pos < 0 || pos >= len(s.Buf) {
		return token.EOF
	}
	return s.Buf[pos]
}

func decode(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte{0xFE, 0xFF}) && !bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		return data, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fmt.Errorf("yaml: cannot decode UTF-16 input: %w", err)
	}
	return out, nil
}

// FromHex returns the value of a hexadecimal digit, or -1.
func FromHex(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// FromDecimal returns the value of a decimal digit, or -1.
func FromDecimal(c byte) int {
	if '0' <= c && c <= '9' {
		return int(c - '0')
	}
	return -1
}
