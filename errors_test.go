package surveymeta_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/surveymeta"
	"github.com/reoring/surveymeta/i18n"
)

func loadErrors(t *testing.T, json map[string]any) surveymeta.JSONErrors {
	t.Helper()
	reg := newSurveyRegistry()
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(json, reg.CreateClass("page", nil))
	return conv.Errors
}

func TestJSONErrors_Error(t *testing.T) {
	errs := loadErrors(t, map[string]any{
		"a": 1, "b": 2, "c": 3, "d": 4,
	})
	require.Len(t, errs, 4)
	assert.Equal(t,
		"unknownproperty 'a' at /a; unknownproperty 'b' at /b; unknownproperty 'c' at /c; ... (total 4)",
		errs.Error())

	assert.Equal(t, "unknownproperty 'a' at /a", errs[:1].Error())
	assert.Equal(t, "", surveymeta.JSONErrors(nil).Error())
}

func TestJSONError_Messages(t *testing.T) {
	errs := loadErrors(t, map[string]any{"foo": 1, "elements": []any{map[string]any{"type": "text"}}})
	require.Len(t, errs, 2)

	required := errs.OfType(surveymeta.ErrorRequiredProperty)
	require.Len(t, required, 1)
	e := required[0]
	assert.Equal(t, "The property 'name' is required in class 'text'.", e.Message)
	assert.Equal(t, e.Message, e.FullDescription())
	assert.Equal(t, "requiredproperty at /elements/0: "+e.Message, e.Error())
	assert.Equal(t, -1, e.At)

	unknown := errs.OfType(surveymeta.ErrorUnknownProperty)[0]
	assert.Equal(t, "The property 'foo' in class 'page' is unknown.", unknown.Message)
	assert.Equal(t, "The list of available properties are: name, elements.", unknown.Description)
	assert.Equal(t, unknown.Message+"\n"+unknown.Description, unknown.FullDescription())

	assert.Empty(t, errs.OfType(surveymeta.ErrorMissingTypeProperty))
}

func TestJSONError_Japanese(t *testing.T) {
	i18n.SetLanguage("ja")
	t.Cleanup(func() { i18n.SetLanguage("en") })

	errs := loadErrors(t, map[string]any{"elements": []any{map[string]any{"type": "text"}}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "必須")
	assert.Contains(t, errs[0].Message, "'name'")
}

func TestAsJSONErrors(t *testing.T) {
	errs := loadErrors(t, map[string]any{"foo": 1})
	require.Len(t, errs, 1)

	wrapped := fmt.Errorf("load survey: %w", error(errs))
	got, ok := surveymeta.AsJSONErrors(wrapped)
	require.True(t, ok)
	assert.Equal(t, errs, got)

	_, ok = surveymeta.AsJSONErrors(errors.New("plain"))
	assert.False(t, ok)
	_, ok = surveymeta.AsJSONErrors(nil)
	assert.False(t, ok)
}

func TestSplitPointer(t *testing.T) {
	tests := []struct {
		ptr  string
		want []string
	}{
		{"/", []string{""}},
		{"", nil},
		{"/pages/0/elements", []string{"pages", "0", "elements"}},
		{"/a~1b/c~0d", []string{"a/b", "c~d"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, surveymeta.SplitPointer(tt.ptr), tt.ptr)
	}
}

func TestPointerEscaping(t *testing.T) {
	errs := loadErrors(t, map[string]any{"a/b": 1})
	require.Len(t, errs, 1)
	assert.Equal(t, "/a~1b", errs[0].Path)
	assert.Equal(t, []string{"a/b"}, surveymeta.SplitPointer(errs[0].Path))
}
