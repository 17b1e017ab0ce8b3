/*
Package yaml parses YAML 1.2 document streams into plain Go values.

The package offers two workflows.

1. Generic values

Parse returns one value per document. Scalars are resolved with the core
schema plus the timestamp, binary, merge, omap, pairs and set types:

	docs, err := yaml.Parse([]byte("name: demo\nports: [80, 443]\n"))
	if err != nil {
		// handle error
	}
	m := docs[0].(*ast.Mapping)
	ports, _ := m.Get("ports") // *ast.Sequence of int64

Sequences and mappings are pointer handles, so a value reached through an
alias is the very same value as its anchor. Mapping keys keep their
insertion order. ast.Plain turns a parsed value into []any and
map[string]any.

2. Decoding into Go types

Unmarshal and Decoder map documents onto structs, maps, slices and
scalars, in the manner of encoding/json:

	type Config struct {
		Name  string `yaml:"name"`
		Ports []int  `yaml:"ports"`
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		// handle error
	}

Errors

Malformed input fails with a *ParseError that carries the position, a
snippet of the surrounding lines and a category usable with errors.Is:

	var pe *yaml.ParseError
	if errors.As(err, &pe) && errors.Is(err, yaml.ErrStructure) {
		fmt.Println(pe.Line, pe.Column)
	}

Non-fatal problems, such as an unknown directive, are reported to the
go-kit logger given with WithLogger.
*/
package yaml
