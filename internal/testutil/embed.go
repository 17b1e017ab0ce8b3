// Package testutil gives tests access to the shared YAML fixtures.
package testutil

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

// TestdataFS holds the YAML inputs and their golden renderings.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData returns the content of the named fixture.
func ReadTestData(name string) ([]byte, error) {
	data, err := fs.ReadFile(TestdataFS, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("read fixture %q: %w", name, err)
	}
	return data, nil
}

// Inputs returns the base names of the YAML fixtures in lexical order.
func Inputs() ([]string, error) {
	matches, err := fs.Glob(TestdataFS, "testdata/*.yaml")
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = path.Base(m)
	}
	return matches, nil
}
