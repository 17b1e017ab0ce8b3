package yaml

import (
	"reflect"

	yamlerrors "github.com/KimNorgaard/go-yaml/errors"
)

// ParseError is the error returned for malformed input.
type ParseError = yamlerrors.ParseError

// Error categories, for use with errors.Is.
var (
	ErrStream    = yamlerrors.ErrStream
	ErrStructure = yamlerrors.ErrStructure
	ErrLexical   = yamlerrors.ErrLexical
	ErrSchema    = yamlerrors.ErrSchema
)

// An UnmarshalerError represents an error from calling an UnmarshalYAML or
// UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "yaml: error calling unmarshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }
