package jsonpos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/surveymeta/jsonpos"
)

func TestParse_AddsPositionsToObjects(t *testing.T) {
	data := []byte(`{"a": 1, "b": [{"c": "x"}, 2, null, true]}`)
	v, err := jsonpos.Parse(data)
	require.NoError(t, err)

	root, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), root["a"])

	pos, ok := root[jsonpos.Key].(map[string]any)
	require.True(t, ok)
	start, end := pos["start"].(int), pos["end"].(int)
	assert.GreaterOrEqual(t, start, 0)
	assert.Greater(t, end, start)
	assert.LessOrEqual(t, end, len(data))

	arr, ok := root["b"].([]any)
	require.True(t, ok)
	require.Len(t, arr, 4)
	inner, ok := arr[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", inner["c"])
	ipos := inner[jsonpos.Key].(map[string]any)
	assert.Greater(t, ipos["start"].(int), start)
	assert.Less(t, ipos["end"].(int), end)
	assert.Nil(t, arr[2])
	assert.Equal(t, true, arr[3])
}

func TestParse_Scalars(t *testing.T) {
	v, err := jsonpos.Parse([]byte(` "hello" `))
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = jsonpos.Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{``, `{"a":`, `{"a":1} {}`, `[1,2`} {
		_, err := jsonpos.Parse([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseObject_RejectsNonObject(t *testing.T) {
	_, err := jsonpos.ParseObject([]byte(`[1]`))
	assert.Error(t, err)

	m, err := jsonpos.ParseObject([]byte(`{"k":"v"}`))
	require.NoError(t, err)
	assert.Equal(t, "v", m["k"])
}

func TestStrip(t *testing.T) {
	v, err := jsonpos.Parse([]byte(`{"a": {"b": [{"c": 1}]}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": []any{map[string]any{"c": float64(1)}}},
	}, jsonpos.Strip(v))
}
