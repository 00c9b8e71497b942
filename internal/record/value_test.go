package record

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
}

func TestFieldsSortedKeys(t *testing.T) {
	f := Fields{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, f.SortedKeys())
}

func TestFieldsSortedKeysUTF16Order(t *testing.T) {
	// U+FF5E (fullwidth tilde) is a single UTF-16 unit; U+1F600 is a surrogate
	// pair starting 0xD83D, so it sorts before U+FF5E in UTF-16 order even
	// though its UTF-8 encoding is larger.
	f := Fields{
		"～":     Int(1),
		"\U0001F600": Int(2),
		"a":          Int(3),
	}
	assert.Equal(t, []string{"a", "\U0001F600", "～"}, f.SortedKeys())
}

func TestUnmarshalValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{"string", `"Aria"`, String("Aria")},
		{"int", `17`, Int(17)},
		{"negative int", `-3`, Int(-3)},
		{"float", `1.82`, Float(1.82)},
		{"exponent", `1e3`, Float(1000)},
		{"true", `true`, Bool(true)},
		{"false", `false`, Bool(false)},
		{"null", `null`, Null{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalValue([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalValue_RejectsCollections(t *testing.T) {
	for _, in := range []string{`[1,2]`, `{"a":1}`} {
		_, err := UnmarshalValue([]byte(in))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotScalar), "input %s", in)
	}
}

func TestFieldsUnmarshalJSON(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`{"age":17,"origin":"Northreach","height":1.7,"alive":true,"note":null}`), &f)
	require.NoError(t, err)

	assert.Equal(t, Fields{
		"age":    Int(17),
		"origin": String("Northreach"),
		"height": Float(1.7),
		"alive":  Bool(true),
		"note":   Null{},
	}, f)
}

func TestFieldsUnmarshalJSON_NestedRejected(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`{"allies":["Bren","Cass"]}`), &f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotScalar))
	assert.Contains(t, err.Error(), "allies")
}

func TestFieldsMarshalJSON_SortedKeys(t *testing.T) {
	f := Fields{"b": Int(2), "a": String("x"), "c": Bool(false)}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":2,"c":false}`, string(data))
}

func TestFieldsMarshalJSON_Nil(t *testing.T) {
	var f Fields
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestFieldsValidate(t *testing.T) {
	require.NoError(t, Fields{"a": Int(1), "b": Null{}}.Validate())

	err := Fields{"a": nil}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)

	err = Fields{"ratio": Float(math.NaN())}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratio")
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(3)
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)

	v, err = ValueOf(2.5)
	require.NoError(t, err)
	assert.Equal(t, Float(2.5), v)

	v, err = ValueOf(nil)
	require.NoError(t, err)
	assert.Equal(t, Null{}, v)

	_, err = ValueOf([]any{1})
	assert.True(t, errors.Is(err, ErrNotScalar))

	_, err = ValueOf(struct{}{})
	assert.Error(t, err)
}

func TestFieldsOf(t *testing.T) {
	f, err := FieldsOf(map[string]any{"age": 30, "title": "Captain"})
	require.NoError(t, err)
	assert.Equal(t, Fields{"age": Int(30), "title": String("Captain")}, f)

	_, err = FieldsOf(map[string]any{"bad": map[string]any{"x": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "", Display(Null{}))
	assert.Equal(t, "Aria", Display(String("Aria")))
	assert.Equal(t, "42", Display(Int(42)))
	assert.Equal(t, "1.5", Display(Float(1.5)))
	assert.Equal(t, "true", Display(Bool(true)))
}
