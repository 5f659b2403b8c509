package surveymeta_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/surveymeta"
)

// newSurveyRegistry registers a small survey-like model: pages holding
// questions of several kinds, and item values for choices.
func newSurveyRegistry() *surveymeta.Registry {
	reg := surveymeta.NewRegistry()
	reg.AddClass("itemvalue", []any{
		"value",
		surveymeta.PropertyInfo{Name: "text", IsLocalizable: true},
	}, creatorOf(reg, "itemvalue"), "")
	reg.AddClass("page", []any{
		"name",
		surveymeta.PropertyInfo{Name: "elements", BaseClassName: "question", AlternativeName: "questions"},
	}, creatorOf(reg, "page"), "")
	reg.AddClass("question", []any{
		"!name",
		surveymeta.PropertyInfo{Name: "title", IsLocalizable: true},
		surveymeta.PropertyInfo{Name: "visible", Type: "boolean", Default: true},
		"valueName",
	}, nil, "")
	reg.AddClass("text", []any{
		"placeholder",
		surveymeta.PropertyInfo{Name: "maxLength", Type: "number", Default: -1},
	}, creatorOf(reg, "text"), "question")
	reg.AddClass("checkbox", []any{
		surveymeta.PropertyInfo{Name: "choices", Type: "itemvalue[]"},
	}, creatorOf(reg, "checkbox"), "question")
	return reg
}

func surveyPage() map[string]any {
	return map[string]any{
		"name": "p1",
		"elements": []any{
			map[string]any{"type": "text", "name": "q1", "title": "Q", "placeholder": "x"},
			map[string]any{"type": "checkbox", "name": "q2", "choices": []any{
				map[string]any{"value": 1, "text": "One"},
				map[string]any{"value": 2},
			}},
		},
	}
}

func TestJSONObject_RoundTrip(t *testing.T) {
	reg := newSurveyRegistry()
	page := reg.CreateClass("page", nil)
	require.NotNil(t, page)

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(surveyPage(), page)
	require.Empty(t, conv.Errors)
	require.NoError(t, conv.Err())

	elements, ok := page.GetPropertyValue("elements", nil).(*surveymeta.Array)
	require.True(t, ok)
	require.Equal(t, 2, elements.Len())
	q1 := elements.At(0).(*surveymeta.Base)
	assert.Equal(t, "text", q1.GetType())
	assert.Equal(t, "Q", q1.Get("title"))
	assert.Equal(t, true, q1.Get("visible"))

	assert.Equal(t, surveyPage(), conv.ToJSONObject(page, false))
}

func TestJSONObject_ToJSONObjectNonObject(t *testing.T) {
	conv := surveymeta.NewJSONObject(surveymeta.NewRegistry())
	assert.Equal(t, 5, conv.ToJSONObject(5, false))
	assert.Equal(t, "x", conv.ToJSONObject("x", false))
	assert.Nil(t, conv.ToJSONObject((*surveymeta.Base)(nil), false))
}

func TestJSONObject_DefaultsOmitted(t *testing.T) {
	reg := newSurveyRegistry()
	conv := surveymeta.NewJSONObject(reg)

	q := reg.CreateClass("text", nil)
	assert.Equal(t, map[string]any{}, conv.ToJSONObject(q, false))

	q.SetPropertyValue("visible", true)
	q.SetPropertyValue("maxLength", -1)
	assert.Equal(t, map[string]any{}, conv.ToJSONObject(q, false))
	assert.Equal(t, map[string]any{"visible": true, "maxLength": -1}, conv.ToJSONObject(q, true))

	q.SetPropertyValue("visible", false)
	first := conv.ToJSONObject(q, false)
	assert.Equal(t, map[string]any{"visible": false}, first)

	reloaded := reg.CreateClass("text", nil)
	conv.ToObjectCore(first.(map[string]any), reloaded)
	assert.Equal(t, first, conv.ToJSONObject(reloaded, false))
}

func TestJSONObject_PresetDefaultsNotWritten(t *testing.T) {
	reg := surveymeta.NewRegistry()
	reg.AddClass("widget", []any{
		map[string]any{"name": "label", "default": ""},
		map[string]any{"name": "count:number", "default": 0},
	}, func(map[string]any) surveymeta.Object {
		b := surveymeta.NewBase(reg, "widget")
		b.SetPropertyValue("label", "")
		b.SetPropertyValue("count", 0)
		return b
	}, "")

	obj := reg.CreateClass("widget", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"label": "hi"}, obj)
	require.Empty(t, conv.Errors)
	assert.Equal(t, map[string]any{"label": "hi"}, conv.ToJSONObject(obj, false))
}

func TestJSONObject_ArrayIdentity(t *testing.T) {
	reg := newSurveyRegistry()
	page := reg.CreateClass("page", nil)

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"elements": []any{
		map[string]any{"type": "text", "name": "a"},
	}}, page)
	arr, ok := page.GetPropertyValue("elements", nil).(*surveymeta.Array)
	require.True(t, ok)
	require.Equal(t, 1, arr.Len())

	conv.ToObject(map[string]any{"elements": []any{
		map[string]any{"type": "text", "name": "b"},
		map[string]any{"type": "text", "name": "c"},
	}}, page)
	assert.Same(t, arr, page.GetPropertyValue("elements", nil))
	require.Equal(t, 2, arr.Len())
	assert.Equal(t, "b", arr.At(0).(surveymeta.Object).GetPropertyValue("name", nil))
	assert.Empty(t, conv.Errors)
}

func TestJSONObject_SingleValueForArrayProperty(t *testing.T) {
	reg := newSurveyRegistry()
	page := reg.CreateClass("page", nil)

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{
		"name":     "p",
		"elements": map[string]any{"type": "text", "name": "q"},
	}, page)

	require.Len(t, conv.Errors, 1)
	e := conv.Errors[0]
	assert.Equal(t, surveymeta.ErrorRequiredArrayProperty, e.Type)
	assert.Equal(t, "elements", e.PropertyName)
	assert.Equal(t, "page", e.ClassName)
	assert.Equal(t, "/elements", e.Path)

	arr := page.GetPropertyValue("elements", nil).(*surveymeta.Array)
	require.Equal(t, 1, arr.Len())
	assert.Equal(t, "q", arr.At(0).(surveymeta.Object).GetPropertyValue("name", nil))
}

func TestJSONObject_AlternativeName(t *testing.T) {
	reg := newSurveyRegistry()
	page := reg.CreateClass("page", nil)

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"questions": []any{
		map[string]any{"type": "text", "name": "q"},
	}}, page)
	require.Empty(t, conv.Errors)

	assert.Equal(t, map[string]any{"elements": []any{
		map[string]any{"type": "text", "name": "q"},
	}}, conv.ToJSONObject(page, false))
}

func TestJSONObject_IncorrectAndMissingType(t *testing.T) {
	reg := surveymeta.NewRegistry()
	reg.AddClass("widget", []any{"label"}, nil, "")
	reg.AddClass("gizmo", []any{"size"}, creatorOf(reg, "gizmo"), "widget")
	reg.AddClass("holder", []any{
		surveymeta.PropertyInfo{Name: "widget", BaseClassName: "widget"},
	}, creatorOf(reg, "holder"), "")

	holder := reg.CreateClass("holder", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"widget": map[string]any{"type": "unknownwidget"}}, holder)

	require.Len(t, conv.Errors, 2)
	assert.Equal(t, surveymeta.ErrorRequiredArrayProperty, conv.Errors[0].Type)
	incorrect := conv.Errors[1]
	assert.Equal(t, surveymeta.ErrorIncorrectTypeProperty, incorrect.Type)
	assert.Equal(t, "widget", incorrect.PropertyName)
	assert.Equal(t, "widget", incorrect.BaseClassName)
	assert.Contains(t, incorrect.Description, "'gizmo'")
	assert.Nil(t, holder.GetPropertyValue("widget", nil))
	assert.Empty(t, holder.(*surveymeta.Base).Keys())

	holder = reg.CreateClass("holder", nil)
	conv = surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"widget": []any{map[string]any{}, map[string]any{"type": "gizmo"}}}, holder)
	require.Len(t, conv.Errors, 1)
	assert.Equal(t, surveymeta.ErrorMissingTypeProperty, conv.Errors[0].Type)
	assert.Equal(t, "/widget/0", conv.Errors[0].Path)

	arr := holder.GetPropertyValue("widget", nil).(*surveymeta.Array)
	require.Equal(t, 1, arr.Len())
	assert.Equal(t, "gizmo", arr.At(0).(surveymeta.Object).GetType())
}

func TestJSONObject_UnknownProperty(t *testing.T) {
	reg := newSurveyRegistry()
	q := reg.CreateClass("text", nil)

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"type": "text", "name": "q", "foo": 1}, q)

	require.Len(t, conv.Errors, 1)
	e := conv.Errors[0]
	assert.Equal(t, surveymeta.ErrorUnknownProperty, e.Type)
	assert.Equal(t, "foo", e.PropertyName)
	assert.Equal(t, "text", e.ClassName)
	assert.Equal(t, "/foo", e.Path)
	assert.Contains(t, e.Description, "placeholder")
	assert.Same(t, q, e.Element)

	// item values tolerate unknown keys
	item := reg.CreateClass("itemvalue", nil)
	conv = surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"value": 1, "bar": 2}, item)
	assert.Empty(t, conv.Errors)
}

func TestJSONObject_RequiredProperties(t *testing.T) {
	reg := newSurveyRegistry()
	q := reg.CreateClass("text", nil)

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"title": "x"}, q)
	require.Len(t, conv.Errors, 1)
	assert.Equal(t, surveymeta.ErrorRequiredProperty, conv.Errors[0].Type)
	assert.Equal(t, "name", conv.Errors[0].PropertyName)
	assert.Equal(t, "", conv.Errors[0].Path)
	assert.Equal(t, "requiredproperty: "+conv.Errors[0].Message, conv.Errors[0].Error())

	// a nested object missing required properties is still assigned
	page := reg.CreateClass("page", nil)
	conv = surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"elements": []any{
		map[string]any{"type": "text"},
	}}, page)
	require.Len(t, conv.Errors, 1)
	assert.Equal(t, surveymeta.ErrorRequiredProperty, conv.Errors[0].Type)
	assert.Equal(t, "/elements/0", conv.Errors[0].Path)
	assert.Equal(t, 1, page.GetPropertyValue("elements", nil).(*surveymeta.Array).Len())
}

func TestJSONObject_RequiredWithDefaultOrAlternative(t *testing.T) {
	reg := surveymeta.NewRegistry()
	reg.AddClass("w", []any{
		surveymeta.PropertyInfo{Name: "mode", IsRequired: true, Default: "edit"},
		surveymeta.PropertyInfo{Name: "items", IsRequired: true, AlternativeName: "rows", Type: "string[]"},
		"!label",
		"!kind",
	}, creatorOf(reg, "w"), "")

	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"rows": []any{"a"}}, reg.CreateClass("w", nil))
	require.Len(t, conv.Errors, 2)
	assert.Equal(t, "label", conv.Errors[0].PropertyName)
	assert.Equal(t, "kind", conv.Errors[1].PropertyName)
}

func TestJSONObject_ClassNamePart(t *testing.T) {
	reg := surveymeta.NewRegistry()
	reg.AddClass("validator", []any{"text"}, nil, "")
	reg.AddClass("emailvalidator", nil, creatorOf(reg, "emailvalidator"), "validator")
	reg.AddClass("q", []any{
		surveymeta.PropertyInfo{Name: "validators", BaseClassName: "validator", ClassNamePart: "validator"},
	}, creatorOf(reg, "q"), "")

	in := map[string]any{"validators": []any{map[string]any{"type": "email", "text": "bad"}}}
	q := reg.CreateClass("q", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(in, q)
	require.Empty(t, conv.Errors)

	arr := q.GetPropertyValue("validators", nil).(*surveymeta.Array)
	require.Equal(t, 1, arr.Len())
	assert.Equal(t, "emailvalidator", arr.At(0).(surveymeta.Object).GetType())
	assert.Equal(t, in, conv.ToJSONObject(q, false))
}

type dynamicQuestion struct {
	*surveymeta.Base
}

func (d *dynamicQuestion) GetDynamicPropertyName() string { return "renderAs" }

func (d *dynamicQuestion) GetDynamicType() string {
	s, _ := d.GetPropertyValue("renderAs", "").(string)
	return s
}

func TestJSONObject_DynamicType(t *testing.T) {
	reg := surveymeta.NewRegistry()
	reg.AddClass("dq", []any{"name", "renderAs"}, func(map[string]any) surveymeta.Object {
		return &dynamicQuestion{Base: surveymeta.NewBase(reg, "dq")}
	}, "")
	reg.AddClass("slider", []any{"name", "min:number"}, creatorOf(reg, "slider"), "")

	in := map[string]any{"name": "a", "renderAs": "slider", "min": 3}
	obj := reg.CreateClass("dq", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(in, obj)
	require.Empty(t, conv.Errors)
	assert.Equal(t, 3, obj.GetPropertyValue("min", nil))
	assert.Equal(t, in, conv.ToJSONObject(obj, false))
	assert.Equal(t, []string{"name", "renderAs", "min"}, propNames(reg.GetPropertiesByObj(obj)))

	obj = reg.CreateClass("dq", nil)
	conv = surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"min": 3}, obj)
	require.Len(t, conv.Errors, 1)
	assert.Equal(t, surveymeta.ErrorUnknownProperty, conv.Errors[0].Type)
}

func TestJSONObject_SerializationHooks(t *testing.T) {
	reg := newSurveyRegistry()
	reg.AddClass("secretive", []any{
		"name",
		surveymeta.PropertyInfo{Name: "token", IsLightSerializable: surveymeta.Bool(false)},
		surveymeta.PropertyInfo{Name: "cache", IsSerializable: surveymeta.Bool(false)},
	}, creatorOf(reg, "secretive"), "")

	obj := reg.CreateClass("secretive", nil)
	obj.SetPropertyValue("name", "n")
	obj.SetPropertyValue("token", "t")
	obj.SetPropertyValue("cache", "c")

	conv := surveymeta.NewJSONObject(reg)
	assert.Equal(t, map[string]any{"name": "n", "token": "t"}, conv.ToJSONObject(obj, false))
	conv.LightSerializing = true
	assert.Equal(t, map[string]any{"name": "n"}, conv.ToJSONObject(obj, false))

	reg.OnSerializingProperty = func(obj surveymeta.Object, prop *surveymeta.Property, value any, json map[string]any) bool {
		if prop.Name != "name" {
			return false
		}
		json["id"] = value
		return true
	}
	assert.Equal(t, map[string]any{"id": "n"}, conv.ToJSONObject(obj, false))
}

type rawQuestion struct {
	*surveymeta.Base
}

func (r *rawQuestion) GetData() any { return map[string]any{"raw": true} }

func TestJSONObject_DataProvider(t *testing.T) {
	reg := newSurveyRegistry()
	reg.AddClass("raw", []any{"!name"}, func(map[string]any) surveymeta.Object {
		return &rawQuestion{Base: surveymeta.NewBase(reg, "raw")}
	}, "")

	raw := reg.CreateClass("raw", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{}, raw)
	assert.Empty(t, conv.Errors)

	page := reg.CreateClass("page", nil)
	page.SetPropertyValue("elements", []any{raw})
	assert.Equal(t, map[string]any{"elements": []any{map[string]any{"raw": true}}}, conv.ToJSONObject(page, false))
}

func TestJSONObject_ItemNamesAssignedFirst(t *testing.T) {
	reg := newSurveyRegistry()
	var seenName, seenValueName any
	reg.AddProperty("question", surveymeta.PropertyInfo{
		Name: "accent",
		OnSetValue: func(obj surveymeta.Object, value any, conv *surveymeta.JSONObject) {
			seenName = obj.GetPropertyValue("name", nil)
			seenValueName = obj.GetPropertyValue("valueName", nil)
		},
	})

	page := reg.CreateClass("page", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(map[string]any{"elements": []any{
		map[string]any{"type": "text", "name": "q1", "valueName": 7, "accent": "red"},
	}}, page)
	require.Empty(t, conv.Errors)
	assert.Equal(t, "q1", seenName)
	assert.Equal(t, "7", seenValueName)
}

func TestJSONObject_PositionEntries(t *testing.T) {
	reg := newSurveyRegistry()
	pos := func() map[string]any { return map[string]any{"start": 1, "end": 2} }

	choice := map[string]any{"value": 1, "pos": pos()}
	in := map[string]any{
		"name": "q", "pos": pos(),
		"choices": []any{choice},
	}
	q := reg.CreateClass("checkbox", nil)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(in, q)
	require.Empty(t, conv.Errors)

	// copied onto regular objects, stripped from item values
	assert.Equal(t, pos(), q.GetPropertyValue("pos", nil))
	assert.NotContains(t, choice, "pos")
	item := q.GetPropertyValue("choices", nil).(*surveymeta.Array).At(0).(surveymeta.Object)
	assert.Nil(t, item.GetPropertyValue("pos", nil))

	assert.Equal(t, map[string]any{"name": "q", "choices": []any{map[string]any{"value": 1}}},
		conv.ToJSONObject(q, false))
}

func TestJSONObject_Unmarshal(t *testing.T) {
	reg := newSurveyRegistry()
	src := `{"name": "p1",
 "elements": [{"type": "text"}],
 "foo": 1}`

	page := reg.CreateClass("page", nil)
	conv := surveymeta.NewJSONObject(reg)
	err := conv.Unmarshal([]byte(src), page)
	require.Error(t, err)

	errs, ok := surveymeta.AsJSONErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 2)

	required := errs.OfType(surveymeta.ErrorRequiredProperty)
	require.Len(t, required, 1)
	assert.Equal(t, "/elements/0", required[0].Path)
	assert.Equal(t, strings.Index(src, `{"type"`), required[0].At)
	assert.Equal(t, byte('}'), src[required[0].End-1])

	unknown := errs.OfType(surveymeta.ErrorUnknownProperty)
	require.Len(t, unknown, 1)
	assert.Equal(t, "/foo", unknown[0].Path)
	assert.Equal(t, 0, unknown[0].At)
	assert.Equal(t, byte('}'), src[unknown[0].End-1])

	out, err := conv.Marshal(page, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "p1", "elements": [{"type": "text"}]}`, string(out))

	err = surveymeta.NewJSONObject(reg).Unmarshal([]byte(`{"name": `), reg.CreateClass("page", nil))
	require.Error(t, err)
	_, ok = surveymeta.AsJSONErrors(err)
	assert.False(t, ok)
}

func TestJSONObject_DefaultRegistry(t *testing.T) {
	prev := surveymeta.SetDefault(newSurveyRegistry())
	t.Cleanup(func() { surveymeta.SetDefault(prev) })

	conv := surveymeta.NewJSONObject(nil)
	assert.Same(t, surveymeta.Default(), conv.Registry())

	q := surveymeta.CreateClass("text", nil)
	conv.ToObject(map[string]any{"name": "q"}, q)
	assert.Empty(t, conv.Errors)
}

// loadCounter counts the load brackets opened on the objects it builds.
type loadCounter struct {
	starts, ends int
}

type countedObject struct {
	*surveymeta.Base
	counter *loadCounter
}

func (c *countedObject) StartLoadingFromJSON(json map[string]any) {
	c.counter.starts++
	c.Base.StartLoadingFromJSON(json)
}

func (c *countedObject) EndLoadingFromJSON() {
	c.counter.ends++
	c.Base.EndLoadingFromJSON()
}

func (lc *loadCounter) creator(reg *surveymeta.Registry, name string) surveymeta.CreatorFunc {
	return func(map[string]any) surveymeta.Object {
		return &countedObject{Base: surveymeta.NewBase(reg, name), counter: lc}
	}
}

func TestJSONObject_LoadingBrackets(t *testing.T) {
	lc := &loadCounter{}
	reg := surveymeta.NewRegistry()
	reg.AddClass("part", []any{"label"}, lc.creator(reg, "part"), "")
	reg.AddClass("kid", []any{"name"}, lc.creator(reg, "kid"), "")
	reg.AddClass("leaf", []any{"depth"}, nil, "kid")
	reg.AddClass("root", []any{
		"title",
		surveymeta.PropertyInfo{Name: "child", ClassName: "part"},
		surveymeta.PropertyInfo{Name: "kids", BaseClassName: "kid"},
	}, lc.creator(reg, "root"), "")

	src := map[string]any{
		"title": "t",
		"child": map[string]any{"label": "c"},
		"kids": []any{
			map[string]any{"type": "kid", "name": "k1"},
			map[string]any{"type": "leaf", "name": "k2", "depth": "deep"},
		},
	}
	root := reg.CreateClass("root", nil).(*countedObject)
	conv := surveymeta.NewJSONObject(reg)
	conv.ToObject(src, root)
	require.Empty(t, conv.Errors)

	assert.Equal(t, 4, lc.starts)
	assert.Equal(t, 4, lc.ends)
	assert.False(t, root.IsLoadingFromJSON())

	child := root.GetPropertyValue("child", nil).(*countedObject)
	assert.False(t, child.IsLoadingFromJSON())
	kids := root.GetPropertyValue("kids", nil).(*surveymeta.Array)
	require.Equal(t, 2, kids.Len())
	leaf, ok := kids.At(1).(*surveymeta.Retyped)
	require.True(t, ok)
	assert.Equal(t, "leaf", leaf.GetType())
	assert.False(t, leaf.Unwrap().(*countedObject).IsLoadingFromJSON())

	assert.Equal(t, src, conv.ToJSONObject(root, false))
}
