package yaml

import (
	"fmt"

	"github.com/go-kit/log"

	"github.com/KimNorgaard/go-yaml/internal/parser"
)

const defaultMaxDepth = parser.DefaultMaxDepth

// Option configures Parse, Unmarshal and Decoder.
type Option func(*options) error

type options struct {
	logger   log.Logger
	json     bool
	maxDepth int
	filename string
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		logger:   log.NewNopLogger(),
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) parserConfig() parser.Config {
	return parser.Config{
		Logger:   o.logger,
		JSON:     o.json,
		MaxDepth: o.maxDepth,
		Filename: o.filename,
	}
}

// WithLogger returns an Option that sends non-fatal warnings, such as an
// unknown directive, to logger. Warnings are logged at warn level.
func WithLogger(logger log.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return fmt.Errorf("yaml: logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// JSON returns an Option that enables JSON compatibility. In this mode a
// duplicated mapping key replaces the earlier value instead of failing.
func JSON(enabled bool) Option {
	return func(o *options) error {
		o.json = enabled
		return nil
	}
}

// MaxDepth returns an Option that sets the maximum nesting depth of a
// document. This prevents stack exhaustion on deeply nested input, both
// while parsing and while decoding into Go values.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("yaml: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// Filename returns an Option that names the input in error messages.
func Filename(name string) Option {
	return func(o *options) error {
		o.filename = name
		return nil
	}
}
