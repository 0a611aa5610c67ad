package calllog

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Markers substituted for values that cannot be logged as-is.
const (
	CircularMarker       = "[Circular]"
	UnserializableMarker = "[Unserializable]"
	NoResponseMarker     = "no response received"
)

const maxDepth = 64

// ParseBody returns the decoded JSON value of a string or byte slice that looks like a JSON
// object or array. Any other value is returned unchanged.
func ParseBody(v any) any {
	var data []byte
	switch b := v.(type) {
	case string:
		data = []byte(b)
	case []byte:
		data = b
	default:
		return v
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		if s, ok := v.([]byte); ok {
			return string(s)
		}
		return v
	}
	var parsed any
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return string(data)
	}
	return parsed
}

// Normalize converts v into a tree of values that encoding/json can always encode. Any
// reference (pointer, map or slice) seen a second time is replaced with CircularMarker.
// Functions, channels and similar values become UnserializableMarker. Normalize never panics.
func Normalize(v any) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = UnserializableMarker
		}
	}()
	w := &walker{seen: make(map[uintptr]bool)}
	return w.walk(reflect.ValueOf(v), 0)
}

type walker struct {
	seen map[uintptr]bool
}

func (w *walker) mark(p uintptr) bool {
	if p == 0 {
		return true
	}
	if w.seen[p] {
		return false
	}
	w.seen[p] = true
	return true
}

func (w *walker) walk(rv reflect.Value, depth int) any {
	if !rv.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return CircularMarker
	}
	if rv.Kind() != reflect.Ptr && rv.Kind() != reflect.Interface && rv.CanInterface() {
		if out, ok := marshalled(rv.Interface()); ok {
			return out
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(rv.Complex())
	case reflect.String:
		return rv.String()
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return w.walk(rv.Elem(), depth+1)
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		if !w.mark(rv.Pointer()) {
			return CircularMarker
		}
		if rv.CanInterface() {
			if out, ok := marshalled(rv.Interface()); ok {
				return out
			}
		}
		return w.walk(rv.Elem(), depth+1)
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if !w.mark(rv.Pointer()) {
			return CircularMarker
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = w.walk(iter.Value(), depth+1)
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		if rv.Len() > 0 && !w.mark(rv.Pointer()) {
			return CircularMarker
		}
		return w.walkList(rv, depth)
	case reflect.Array:
		return w.walkList(rv, depth)
	case reflect.Struct:
		return w.walkStruct(rv, depth)
	default:
		return UnserializableMarker
	}
}

func (w *walker) walkList(rv reflect.Value, depth int) any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = w.walk(rv.Index(i), depth+1)
	}
	return out
}

func (w *walker) walkStruct(rv reflect.Value, depth int) any {
	t := rv.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		omitEmpty := false
		if tag, ok := f.Tag.Lookup("json"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					omitEmpty = true
				}
			}
		}
		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		out[name] = w.walk(fv, depth+1)
	}
	return out
}

// marshalled handles values that define their own encoding. Errors are logged by message.
func marshalled(v any) (any, bool) {
	switch x := v.(type) {
	case error:
		return x.Error(), true
	case json.Marshaler:
		data, err := x.MarshalJSON()
		if err != nil {
			return nil, false
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, false
		}
		return out, true
	case encoding.TextMarshaler:
		data, err := x.MarshalText()
		if err != nil {
			return nil, false
		}
		return string(data), true
	}
	return nil, false
}

// Serialize renders v as compact JSON, falling back to fmt string coercion and then to
// UnserializableMarker. Strings that are not JSON-shaped are returned as-is. If maxLen is
// positive the result is truncated to that many characters.
func Serialize(v any, maxLen int) string {
	return Truncate(serialize(ParseBody(v), false), maxLen)
}

// SerializeIndent is like Serialize but renders JSON with two-space indentation.
func SerializeIndent(v any, maxLen int) string {
	return Truncate(serialize(ParseBody(v), true), maxLen)
}

func serialize(v any, indent bool) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = UnserializableMarker
		}
	}()
	if str, ok := v.(string); ok {
		return str
	}
	normalized := Normalize(v)
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(normalized, "", "  ")
	} else {
		data, err = json.Marshal(normalized)
	}
	if err == nil {
		return string(data)
	}
	return coerce(v)
}

func coerce(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = UnserializableMarker
		}
	}()
	return fmt.Sprint(v)
}

// Truncate shortens s to maxLen characters, appending a marker that says how many were
// dropped. A maxLen of zero or less means no limit.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + fmt.Sprintf("…[truncated %d chars]", len(runes)-maxLen)
}
