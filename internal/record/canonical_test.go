package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalFields_Canonical(t *testing.T) {
	got, err := MarshalFields(Fields{
		"zebra": String("z"),
		"apple": String("<a & b>"),
		"mango": Int(7),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"<a & b>","mango":7,"zebra":"z"}`, got)
}

func TestMarshalFields_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed U+00E9.
	got, err := MarshalFields(Fields{"name": String("Re\u0301my")})
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"R\u00e9my\"}", got)
}

func TestMarshalFields_Nil(t *testing.T) {
	got, err := MarshalFields(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestMarshalNames(t *testing.T) {
	got, err := MarshalNames([]string{"hero", "北境"})
	require.NoError(t, err)
	assert.Equal(t, `["hero","北境"]`, got)

	got, err = MarshalNames(nil)
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)
}

func TestMarshalIDs_PreservesOrder(t *testing.T) {
	assert.Equal(t, `[3,1,2]`, MarshalIDs([]int64{3, 1, 2}))
	assert.Equal(t, `[]`, MarshalIDs(nil))
}

func TestUnmarshalCollections_Empty(t *testing.T) {
	for _, in := range []string{"", "null"} {
		f, err := UnmarshalFields(in)
		require.NoError(t, err)
		assert.NotNil(t, f)
		assert.Empty(t, f)

		names, err := UnmarshalNames(in)
		require.NoError(t, err)
		assert.Equal(t, []string{}, names)

		ids, err := UnmarshalIDs(in)
		require.NoError(t, err)
		assert.Equal(t, []int64{}, ids)
	}
}

func TestUnmarshalCollections_RoundTrip(t *testing.T) {
	text, err := MarshalFields(Fields{"age": Int(30), "rank": String("captain")})
	require.NoError(t, err)
	f, err := UnmarshalFields(text)
	require.NoError(t, err)
	assert.Equal(t, Fields{"age": Int(30), "rank": String("captain")}, f)

	ids, err := UnmarshalIDs(MarshalIDs([]int64{9, 4}))
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 4}, ids)
}

func TestUnmarshalFields_Invalid(t *testing.T) {
	_, err := UnmarshalFields(`{"a":`)
	assert.Error(t, err)
}

func TestNormalizeNames(t *testing.T) {
	assert.Nil(t, NormalizeNames(nil))
	assert.Equal(t, []string{"hero", "villain"}, NormalizeNames([]string{" hero", "villain", "hero ", "  "}))
}

func TestEntityTypeValid(t *testing.T) {
	for _, et := range EntityTypes {
		assert.True(t, et.Valid(), string(et))
	}
	assert.False(t, EntityType("location").Valid())
	assert.False(t, EntityType("").Valid())
}

func TestValidColor(t *testing.T) {
	assert.True(t, ValidColor(DefaultTagColor))
	assert.True(t, ValidColor("#FFF"))
	assert.False(t, ValidColor("red"))
	assert.False(t, ValidColor("#12345"))
	for _, c := range PresetColors {
		assert.True(t, ValidColor(c), c)
	}
}
