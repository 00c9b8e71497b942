package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ErrNotScalar is returned when a custom field holds an array or object.
var ErrNotScalar = errors.New("custom field values must be scalar")

// Value is a sealed interface for custom field values.
// Only Null, String, Int, Float and Bool implement it.
type Value interface {
	fieldValue()
}

// Null is an explicit JSON null.
type Null struct{}

func (Null) fieldValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text value.
type String string

func (String) fieldValue() {}

// Int is an integer value.
type Int int64

func (Int) fieldValue() {}

// Float is a non-integral number. NaN and infinities are rejected on write.
type Float float64

func (Float) fieldValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) fieldValue() {}

// Fields is the open custom-field bag attached to Entities and Events.
// Any string key, any scalar value.
type Fields map[string]Value

// SortedKeys returns keys in UTF-16 code unit order (RFC 8785).
func (f Fields) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// Validate checks that every value is a usable scalar.
func (f Fields) Validate() error {
	for _, k := range f.SortedKeys() {
		switch v := f[k].(type) {
		case nil:
			return fmt.Errorf("custom field %q: missing value", k)
		case Float:
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return fmt.Errorf("custom field %q: %v is not representable", k, float64(v))
			}
		}
	}
	return nil
}

// compareKeysUTF16 compares strings by UTF-16 code units.
// Go's default string comparison uses UTF-8 bytes, which orders
// supplementary-plane characters differently.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// UnmarshalJSON implements json.Unmarshaler for Fields.
func (f *Fields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = make(Fields, len(raw))
	for k, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("custom field %q: %w", k, err)
		}
		(*f)[k] = val
	}
	return nil
}

// MarshalJSON implements json.Marshaler with sorted keys.
func (f Fields) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return marshalCanonicalFields(f)
}

// UnmarshalValue decodes a single JSON scalar into a Value.
// Integral numbers become Int, everything else numeric becomes Float.
func UnmarshalValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return Null{}, nil

	case '[', '{':
		return nil, ErrNotScalar

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		s := n.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := n.Int64(); err == nil {
				return Int(i), nil
			}
		}
		fl, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", s)
		}
		return Float(fl), nil
	}
}

// MarshalValue encodes a Value as JSON.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case String:
		return marshalCanonicalString(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("float %v is not valid JSON", f)
		}
		return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	default:
		return nil, fmt.Errorf("unknown field value type: %T", v)
	}
}

// ValueOf converts a plain Go scalar (as produced by yaml or json decoding
// into any) into a Value.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(int64(val)), nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(val), nil
	case json.Number:
		return UnmarshalValue([]byte(val))
	case []any, map[string]any:
		return nil, ErrNotScalar
	default:
		return nil, fmt.Errorf("unsupported custom field type %T", v)
	}
}

// FieldsOf converts a plain map into Fields.
func FieldsOf(m map[string]any) (Fields, error) {
	out := make(Fields, len(m))
	for k, v := range m {
		val, err := ValueOf(v)
		if err != nil {
			return nil, fmt.Errorf("custom field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// Display renders a value the way the export template prints it.
func Display(v Value) string {
	switch val := v.(type) {
	case Null, nil:
		return ""
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprint(v)
	}
}
