package surveymeta

import "reflect"

// Object is the capability set every value that flows through the registry
// and the serializer must expose. Storage is generic key/value; the registry
// supplies the meaning of each key.
type Object interface {
	GetType() string
	GetPropertyValue(name string, defaultValue any) any
	SetPropertyValue(name string, value any)
}

// CreatorFunc builds a new instance for a registered class. json is the
// incoming JSON object when the instance is created during deserialization,
// nil otherwise.
type CreatorFunc func(json map[string]any) Object

// Optional capabilities. The registry and the serializer look for them with
// type assertions (see capability), following Unwrap chains of wrappers.

// DataProvider short-circuits serialization with a precomputed JSON value.
type DataProvider interface {
	GetData() any
}

// JSONLoader brackets population of an object from JSON.
type JSONLoader interface {
	StartLoadingFromJSON(json map[string]any)
	EndLoadingFromJSON()
}

// LoadingState reports whether the object is inside a JSONLoader bracket.
type LoadingState interface {
	IsLoadingFromJSON() bool
}

// Accessor is an instance-level property definition. A nil Set makes the
// property read-only.
type Accessor struct {
	Get func() any
	Set func(value any)
}

// FieldAccessor resolves named fields before the generic storage is used.
// Field returns ok=false when the name is not an instance-level field.
type FieldAccessor interface {
	Field(name string) (any, bool)
	SetField(name string, value any) bool
}

// CustomPropertyHost accepts instance-level property definitions.
type CustomPropertyHost interface {
	HasProperty(name string) bool
	DefineProperty(name string, acc Accessor)
}

// ArrayCreator allocates an identity-preserving array stored under name.
type ArrayCreator interface {
	CreateNewArray(name string, onPush, onRemove func(item any, index int)) *Array
}

// LocalizableValue is the localizable-string-like contract used when a
// property redirects through a serialization property.
type LocalizableValue interface {
	GetJSON() any
	SetJSON(value any)
	Text() string
	SetText(text string)
}

// LocalizableHost owns localizable strings keyed by property name.
type LocalizableHost interface {
	CreateCustomLocalizableObj(name string) LocalizableValue
	GetLocalizableString(name string) LocalizableValue
}

// DynamicTyped exposes a second, value-dependent type whose properties are
// serialized in addition to the primary type's.
type DynamicTyped interface {
	GetDynamicPropertyName() string
	GetDynamicType() string
}

// Templated reports the template (rendering) type of an object.
type Templated interface {
	GetTemplate() string
}

// ExpressionHost registers callbacks for condition/expression properties.
type ExpressionHost interface {
	AddExpressionProperty(name string, onExecute func(obj Object, res any))
}

// OwnedItem is notified when it is pushed into an owner's item-value array.
type OwnedItem interface {
	SetOwner(owner Object, propertyName string)
}

// OriginalProvider is implemented by proxies that stand in for another object.
type OriginalProvider interface {
	GetOriginalObj() Object
}

type unwrapper interface {
	Unwrap() Object
}

// capability returns the first object in the Unwrap chain of obj that
// implements T.
func capability[T any](obj Object) (T, bool) {
	var zero T
	var cur Object = obj
	for depth := 0; cur != nil && depth < 16; depth++ {
		if c, ok := cur.(T); ok {
			return c, true
		}
		u, ok := cur.(unwrapper)
		if !ok {
			break
		}
		cur = u.Unwrap()
	}
	return zero, false
}

// readField reads a named field, preferring instance-level fields over the
// generic storage.
func readField(obj Object, name string, defaultValue any) any {
	if fa, ok := capability[FieldAccessor](obj); ok {
		if v, ok := fa.Field(name); ok {
			return v
		}
	}
	return obj.GetPropertyValue(name, defaultValue)
}

func writeField(obj Object, name string, value any) {
	if fa, ok := capability[FieldAccessor](obj); ok {
		if fa.SetField(name, value) {
			return
		}
	}
	obj.SetPropertyValue(name, value)
}

func isLoading(obj Object) bool {
	if ls, ok := capability[LoadingState](obj); ok {
		return ls.IsLoadingFromJSON()
	}
	return false
}

// asObject returns v as an Object, treating typed nil pointers as absent.
func asObject(v any) (Object, bool) {
	o, ok := v.(Object)
	if !ok || o == nil {
		return nil, false
	}
	rv := reflect.ValueOf(o)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		if rv.IsNil() {
			return nil, false
		}
	}
	return o, true
}
