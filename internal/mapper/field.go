// Package mapper caches the struct field tables used when decoding
// mappings into Go structs.
package mapper

import (
	"reflect"
	"strings"
	"sync"
)

// Field is a decodable struct field.
type Field struct {
	Name  string
	Index []int
}

// fieldCache holds map[reflect.Type]map[string]Field.
var fieldCache sync.Map

// CachedFields returns the decodable fields of struct type t keyed by
// name. Each field is reachable by its tag name, its Go name and the
// lower-cased forms of both; exact names never give way to a lower-cased
// alias. Fields of embedded structs are flattened, and a shallower field
// hides a deeper one of the same name. Fields tagged `yaml:"-"` and
// unexported fields are skipped.
func CachedFields(t reflect.Type) map[string]Field {
	if f, ok := fieldCache.Load(t); ok {
		return f.(map[string]Field)
	}

	fields := make(map[string]Field)
	depths := make(map[string]int)
	add := func(key string, f Field, exact bool) {
		depth := len(f.Index)
		if !exact {
			depth += 1 << 16
		}
		if d, ok := depths[key]; ok && d <= depth {
			return
		}
		fields[key] = f
		depths[key] = depth
	}

	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := range t.NumField() {
			sf := t.Field(i)
			tag := sf.Tag.Get("yaml")
			if tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			index := append(append([]int(nil), idx...), i)

			if sf.Anonymous && name == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, index)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}

			f := Field{Name: sf.Name, Index: index}
			if name != "" {
				f.Name = name
				add(name, f, true)
				add(strings.ToLower(name), f, false)
			}
			add(sf.Name, f, true)
			add(strings.ToLower(sf.Name), f, false)
		}
	}
	walk(t, nil)

	fieldCache.Store(t, fields)
	return fields
}

// Find looks key up in fields, first exactly and then case-insensitively.
func Find(fields map[string]Field, key string) (Field, bool) {
	if f, ok := fields[key]; ok {
		return f, true
	}
	f, ok := fields[strings.ToLower(key)]
	return f, ok
}

// FieldByIndex returns the field of struct v at index, allocating nil
// embedded pointers on the way.
func FieldByIndex(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
