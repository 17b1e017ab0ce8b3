package yaml

import (
	"encoding"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/KimNorgaard/go-yaml/ast"
	"github.com/KimNorgaard/go-yaml/internal/mapper"
	"github.com/KimNorgaard/go-yaml/internal/parser"
)

// Unmarshaler is implemented by types that decode themselves. The value is
// the parsed node as returned by Parse.
type Unmarshaler interface {
	UnmarshalYAML(value any) error
}

// Decoder reads and decodes YAML documents from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option

	o      *options
	docs   []any
	next   int
	loaded bool
	err    error
}

// NewDecoder returns a new decoder that reads from r.
//
// The whole stream is read and parsed on the first call to Decode or
// Documents. It is the caller's responsibility to call Close on r if
// required.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode stores the next document of the stream in the value pointed to
// by v. It returns io.EOF once every document has been decoded.
//
// See the documentation for Unmarshal for details about the conversion of
// YAML into a Go value.
func (d *Decoder) Decode(v any) error {
	if err := d.load(); err != nil {
		return err
	}
	if d.next >= len(d.docs) {
		return io.EOF
	}
	doc := d.docs[d.next]
	d.next++
	return decodeValue(doc, v, d.o)
}

// Documents returns every document of the stream as returned by Parse.
func (d *Decoder) Documents() ([]any, error) {
	if err := d.load(); err != nil {
		return nil, err
	}
	return d.docs, nil
}

func (d *Decoder) load() error {
	if d.loaded {
		return d.err
	}
	d.loaded = true
	d.err = d.read()
	return d.err
}

func (d *Decoder) read() error {
	if d.r == nil {
		return fmt.Errorf("yaml: Decode(nil reader)")
	}
	o, err := newOptions(d.opts)
	if err != nil {
		return err
	}
	d.o = o
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	d.docs, err = parser.Parse(data, o.parserConfig())
	return err
}

func checkTarget(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("yaml: Unmarshal(non-pointer %T or nil)", v)
	}
	return nil
}

func decodeValue(doc, v any, o *options) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	// Parsing already bounds nesting by maxDepth; the extra level is the
	// document itself.
	ds := &decodeState{depth: o.maxDepth + 1}
	return ds.mapValue(doc, reflect.ValueOf(v).Elem())
}

type decodeState struct {
	depth int
}

var (
	timeType   = reflect.TypeFor[time.Time]()
	bigIntType = reflect.TypeFor[big.Int]()
	bytesType  = reflect.TypeFor[[]byte]()
)

func (ds *decodeState) mapValue(node any, rv reflect.Value) error { //nolint:gocyclo
	ds.depth--
	if ds.depth < 0 {
		return fmt.Errorf("yaml: reached max recursion depth")
	}
	defer func() { ds.depth++ }()

	if node == nil {
		switch rv.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}

	handled, err := ds.tryCustomUnmarshal(node, rv)
	if err != nil || handled {
		return err
	}

	if rv.Kind() == reflect.Interface {
		return ds.mapInterface(node, rv)
	}
	if !rv.CanSet() {
		return fmt.Errorf("yaml: cannot set value of type %s", rv.Type())
	}

	switch n := node.(type) {
	case nil:
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	case string:
		return ds.mapString(n, rv)
	case bool:
		return ds.mapBool(n, rv)
	case int64:
		return ds.mapInt(big.NewInt(n), rv)
	case *big.Int:
		return ds.mapInt(n, rv)
	case float64:
		return ds.mapFloat(n, rv)
	case time.Time:
		return ds.mapTime(n, rv)
	case []byte:
		return ds.mapBinary(n, rv)
	case *ast.Sequence:
		return ds.mapItems("sequence", n.Items, rv)
	case ast.Pairs:
		if rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct {
			return ds.mapPairs(n, rv)
		}
		// Each pair decodes on its own, as a one-entry collection.
		items := make([]any, len(n))
		for i, p := range n {
			items[i] = ast.Pairs{p}
		}
		return ds.mapItems("pairs", items, rv)
	case *ast.Mapping:
		switch rv.Kind() {
		case reflect.Struct:
			return ds.mapStruct(n, rv)
		case reflect.Map:
			return ds.mapMap(n, rv)
		default:
			return fmt.Errorf("yaml: cannot unmarshal mapping into Go value of type %s", rv.Type())
		}
	default:
		return fmt.Errorf("yaml: cannot unmarshal %T into Go value of type %s", node, rv.Type())
	}
}

// tryCustomUnmarshal hands the node to an Unmarshaler or, for strings, an
// encoding.TextUnmarshaler. It reports whether one was used.
func (ds *decodeState) tryCustomUnmarshal(node any, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}

	if u, ok := pv.Interface().(Unmarshaler); ok {
		if err := u.UnmarshalYAML(node); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		s, isString := node.(string)
		if !isString {
			return false, nil
		}
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	return false, nil
}

func (ds *decodeState) mapString(s string, rv reflect.Value) error {
	if rv.Kind() != reflect.String {
		return fmt.Errorf("yaml: cannot unmarshal string into Go value of type %s", rv.Type())
	}
	rv.SetString(s)
	return nil
}

func (ds *decodeState) mapBool(b bool, rv reflect.Value) error {
	if rv.Kind() != reflect.Bool {
		return fmt.Errorf("yaml: cannot unmarshal bool into Go value of type %s", rv.Type())
	}
	rv.SetBool(b)
	return nil
}

func (ds *decodeState) mapInt(i *big.Int, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !i.IsInt64() || rv.OverflowInt(i.Int64()) {
			return fmt.Errorf("yaml: integer value %s overflows Go value of type %s", i, rv.Type())
		}
		rv.SetInt(i.Int64())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if !i.IsUint64() || rv.OverflowUint(i.Uint64()) {
			return fmt.Errorf("yaml: integer value %s overflows Go value of type %s", i, rv.Type())
		}
		rv.SetUint(i.Uint64())
		return nil
	case reflect.Float32, reflect.Float64:
		f, _ := new(big.Float).SetInt(i).Float64()
		rv.SetFloat(f)
		return nil
	case reflect.Struct:
		if rv.Type() == bigIntType {
			rv.Addr().Interface().(*big.Int).Set(i)
			return nil
		}
	}
	return fmt.Errorf("yaml: cannot unmarshal int into Go value of type %s", rv.Type())
}

func (ds *decodeState) mapFloat(f float64, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		if !math.IsInf(f, 0) && !math.IsNaN(f) && rv.OverflowFloat(f) {
			return fmt.Errorf("yaml: float value %g overflows Go value of type %s", f, rv.Type())
		}
		rv.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("yaml: cannot unmarshal float into Go value of type %s", rv.Type())
	}
}

func (ds *decodeState) mapTime(t time.Time, rv reflect.Value) error {
	if rv.Type() != timeType {
		return fmt.Errorf("yaml: cannot unmarshal timestamp into Go value of type %s", rv.Type())
	}
	rv.Set(reflect.ValueOf(t))
	return nil
}

func (ds *decodeState) mapBinary(b []byte, rv reflect.Value) error {
	if rv.Type() != bytesType && (rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8) {
		return fmt.Errorf("yaml: cannot unmarshal binary into Go value of type %s", rv.Type())
	}
	rv.SetBytes(append([]byte(nil), b...))
	return nil
}

func (ds *decodeState) mapItems(what string, items []any, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice:
		s := reflect.MakeSlice(rv.Type(), len(items), len(items))
		for i, item := range items {
			if err := ds.mapValue(item, s.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(s)
		return nil
	case reflect.Array:
		if rv.Len() != len(items) {
			return fmt.Errorf("yaml: cannot unmarshal %s of length %d into Go array of length %d", what, len(items), rv.Len())
		}
		for i, item := range items {
			if err := ds.mapValue(item, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("yaml: cannot unmarshal %s into Go value of type %s", what, rv.Type())
	}
}

func (ds *decodeState) mapMap(m *ast.Mapping, rv reflect.Value) error {
	if err := ds.prepareMap(rv); err != nil {
		return err
	}
	for k, v := range m.All() {
		if err := ds.setMapIndex(rv, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) mapPairs(pairs ast.Pairs, rv reflect.Value) error {
	if rv.Kind() == reflect.Struct {
		m := ast.NewMapping()
		for _, p := range pairs {
			m.Set(p.Key, p.Value)
		}
		return ds.mapStruct(m, rv)
	}
	if err := ds.prepareMap(rv); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := ds.setMapIndex(rv, p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// prepareMap allocates a nil map and empties an existing one.
func (ds *decodeState) prepareMap(rv reflect.Value) error {
	mapType := rv.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("yaml: cannot unmarshal mapping into map with non-string key type %s", mapType.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(mapType))
		return nil
	}
	rv.Clear()
	return nil
}

func (ds *decodeState) setMapIndex(rv reflect.Value, key string, value any) error {
	elem := reflect.New(rv.Type().Elem()).Elem()
	if err := ds.mapValue(value, elem); err != nil {
		return err
	}
	rv.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), elem)
	return nil
}

func (ds *decodeState) mapStruct(m *ast.Mapping, rv reflect.Value) error {
	fields := mapper.CachedFields(rv.Type())
	for k, v := range m.All() {
		f, ok := mapper.Find(fields, k)
		if !ok {
			continue
		}
		fv := mapper.FieldByIndex(rv, f.Index)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		if err := ds.mapValue(v, fv); err != nil {
			return err
		}
	}
	return nil
}

// mapInterface stores the node in an empty interface, converting
// collections to []any and map[string]any.
func (ds *decodeState) mapInterface(node any, rv reflect.Value) error {
	if rv.NumMethod() != 0 {
		return fmt.Errorf("yaml: cannot unmarshal into non-empty interface %s", rv.Type())
	}
	if node == nil {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	plain, err := ast.Plain(node)
	if err != nil {
		return err
	}
	rv.Set(reflect.ValueOf(plain))
	return nil
}
