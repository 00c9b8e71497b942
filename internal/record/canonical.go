package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Canonical JSON is the on-disk encoding of collection columns.
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping (< > & are kept literally)
//  3. Strings are NFC normalized
//  4. NaN and infinities are rejected

// MarshalFields encodes custom fields as canonical JSON text.
// A nil bag encodes as "{}".
func MarshalFields(f Fields) (string, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := marshalCanonicalFields(f)
	if err != nil {
		return "", fmt.Errorf("marshal custom fields: %w", err)
	}
	return string(data), nil
}

// MarshalNames encodes a tag-name list as canonical JSON text.
// A nil list encodes as "[]".
func MarshalNames(names []string) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, n := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalCanonicalString(n)
		if err != nil {
			return "", fmt.Errorf("marshal names[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

// MarshalIDs encodes a related-entity id list as JSON text.
// Order is preserved.
func MarshalIDs(ids []int64) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatInt(id, 10))
	}
	buf.WriteByte(']')
	return buf.String()
}

// UnmarshalFields parses custom fields text. Empty or NULL columns decode to
// an empty bag.
func UnmarshalFields(data string) (Fields, error) {
	if data == "" || data == "{}" || data == "null" {
		return Fields{}, nil
	}
	var f Fields
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("unmarshal custom fields: %w", err)
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

// UnmarshalNames parses a tag-name list column.
func UnmarshalNames(data string) ([]string, error) {
	if data == "" || data == "[]" || data == "null" {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// UnmarshalIDs parses a related-entity id list column.
func UnmarshalIDs(data string) ([]int64, error) {
	if data == "" || data == "[]" || data == "null" {
		return []int64{}, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// marshalCanonicalString produces a JSON string with NFC normalization and
// HTML escaping disabled.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalCanonicalFields(f Fields) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(f[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
