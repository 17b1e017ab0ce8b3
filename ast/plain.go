package ast

import "errors"

// ErrCycle is returned by Plain when a collection contains itself.
var ErrCycle = errors.New("yaml: value contains a reference cycle")

// Plain converts a parsed value into a tree of []any and map[string]any.
// Pairs become []any of two-element []any. A collection reached through
// several aliases is converted once and shared.
func Plain(v any) (any, error) {
	c := &plainConverter{
		done:     make(map[any]any),
		visiting: make(map[any]bool),
	}
	return c.convert(v)
}

type plainConverter struct {
	done     map[any]any
	visiting map[any]bool
}

func (c *plainConverter) convert(v any) (any, error) {
	switch v := v.(type) {
	case *Mapping:
		if out, ok := c.done[v]; ok {
			return out, nil
		}
		if c.visiting[v] {
			return nil, ErrCycle
		}
		c.visiting[v] = true
		out := make(map[string]any, v.Len())
		for k, item := range v.All() {
			conv, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		delete(c.visiting, v)
		c.done[v] = out
		return out, nil
	case *Sequence:
		if out, ok := c.done[v]; ok {
			return out, nil
		}
		if c.visiting[v] {
			return nil, ErrCycle
		}
		c.visiting[v] = true
		out := make([]any, 0, v.Len())
		for _, item := range v.Items {
			conv, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			out = append(out, conv)
		}
		delete(c.visiting, v)
		c.done[v] = out
		return out, nil
	case Pairs:
		out := make([]any, 0, len(v))
		for _, p := range v {
			conv, err := c.convert(p.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, []any{p.Key, conv})
		}
		return out, nil
	}
	return v, nil
}
