package surveymeta

import (
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
)

const (
	typePropertyName     = "type"
	positionPropertyName = "pos"
)

// JSONObject converts registered objects to plain JSON values and back. A
// JSONObject collects the errors of every load it performs; use a separate
// JSONObject per goroutine.
//
// Loading never stops at the first problem: every key of every nested
// object is visited and each problem is appended to Errors.
type JSONObject struct {
	Errors JSONErrors
	// LightSerializing skips properties declared with
	// IsLightSerializable=false.
	LightSerializing bool

	reg *Registry
}

// NewJSONObject returns a converter bound to reg (Default() when nil).
func NewJSONObject(reg *Registry) *JSONObject {
	if reg == nil {
		reg = Default()
	}
	return &JSONObject{reg: reg}
}

func (j *JSONObject) Registry() *Registry { return j.reg }

// Err returns the collected errors as an error, or nil when there are none.
func (j *JSONObject) Err() error {
	if len(j.Errors) == 0 {
		return nil
	}
	return j.Errors
}

// ToJSONObject serializes obj. Properties holding their default value are
// omitted unless storeDefaults is set. Non-object values are returned as is.
func (j *JSONObject) ToJSONObject(obj any, storeDefaults bool) any {
	return j.toJSONObjectCore(obj, nil, storeDefaults)
}

func (j *JSONObject) toJSONObjectCore(value any, prop *Property, storeDefaults bool) any {
	if _, isObj := value.(Object); !isObj {
		return value
	}
	obj, ok := asObject(value)
	if !ok {
		return nil
	}
	if dp, ok := capability[DataProvider](obj); ok {
		return dp.GetData()
	}
	result := map[string]any{}
	if prop != nil && prop.ClassName == "" {
		result[typePropertyName] = prop.GetObjType(obj.GetType())
	}
	j.propertiesToJSON(obj, j.reg.GetProperties(obj.GetType()), result, storeDefaults)
	j.propertiesToJSON(obj, j.reg.GetDynamicPropertiesByObj(obj, ""), result, storeDefaults)
	return result
}

func (j *JSONObject) propertiesToJSON(obj Object, props []*Property, result map[string]any, storeDefaults bool) {
	for _, p := range props {
		j.ValueToJSON(obj, result, p, storeDefaults)
	}
}

// ValueToJSON writes one property of obj into result. Arrays are converted
// element by element; an array that ends up empty is treated as no value.
func (j *JSONObject) ValueToJSON(obj Object, result map[string]any, prop *Property, storeDefaults bool) {
	if !prop.IsSerializable || (!prop.IsLightSerializable && j.LightSerializing) {
		return
	}
	value := prop.GetValue(obj)
	if !storeDefaults && prop.IsDefaultValueByObj(obj, value) {
		return
	}
	if items, ok := arrayItems(value); ok {
		arr := make([]any, 0, len(items))
		for _, it := range items {
			arr = append(arr, j.toJSONObjectCore(it, prop, storeDefaults))
		}
		if len(arr) > 0 {
			value = arr
		} else {
			value = nil
		}
	} else {
		value = j.toJSONObjectCore(value, prop, storeDefaults)
	}
	hasValue := obj.GetPropertyValue(prop.Name, nil) != nil
	if (storeDefaults && hasValue) || !prop.IsDefaultValueByObj(obj, value) {
		if j.reg.OnSerializingProperty == nil || !j.reg.OnSerializingProperty(obj, prop, value, result) {
			result[prop.Name] = value
		}
	}
}

// ToObject loads json into obj and then reports the required properties
// json does not supply.
func (j *JSONObject) ToObject(json map[string]any, obj Object) {
	j.toObjectCore(json, obj, nil)
	if o, ok := asObject(obj); ok && json != nil {
		for _, e := range j.requiredErrors(o, json) {
			j.addNewError(e, json, o, nil)
		}
	}
}

// ToObjectCore loads json into obj without the final required check. Keys
// are visited in ascending order; "type" is skipped and "pos" is copied to
// obj as is.
func (j *JSONObject) ToObjectCore(json map[string]any, obj Object) {
	j.toObjectCore(json, obj, nil)
}

func (j *JSONObject) toObjectCore(json map[string]any, obj Object, at *pointer) {
	if json == nil {
		return
	}
	o, ok := asObject(obj)
	if !ok {
		return
	}
	objType := o.GetType()
	props := j.reg.GetProperties(objType)
	needAddErrors := objType != "" && !j.reg.IsDescendantOf(objType, "itemvalue")
	if l, ok := capability[JSONLoader](o); ok {
		l.StartLoadingFromJSON(json)
		defer l.EndLoadingFromJSON()
	}
	props = j.addDynamicProperties(o, json, props)
	for _, key := range slices.Sorted(maps.Keys(json)) {
		if key == typePropertyName {
			continue
		}
		if key == positionPropertyName {
			writeField(o, key, json[key])
			continue
		}
		prop := findPropertyIn(props, key)
		if prop == nil {
			if needAddErrors {
				j.addNewError(newUnknownPropertyError(j.reg, key, objType), json, o, at.field(key))
			}
			continue
		}
		j.valueToObj(json[key], o, prop, json, at.field(key))
	}
}

func (j *JSONObject) addDynamicProperties(obj Object, json map[string]any, props []*Property) []*Property {
	dt, ok := capability[DynamicTyped](obj)
	if !ok {
		return props
	}
	name := dt.GetDynamicPropertyName()
	if name == "" {
		return props
	}
	if v := json[name]; truthy(v) {
		writeField(obj, name, v)
	}
	dynamic := j.reg.GetDynamicPropertiesByObj(obj, "")
	if len(dynamic) == 0 {
		return props
	}
	res := make([]*Property, 0, len(props)+len(dynamic))
	res = append(res, props...)
	return append(res, dynamic...)
}

func findPropertyIn(props []*Property, key string) *Property {
	for _, p := range props {
		if p.Name == key || p.AlternativeName == key {
			return p
		}
	}
	return nil
}

// ValueToObj assigns one JSON value to a property of obj, creating nested
// objects from JSON objects. json is the object value was read from and may
// be nil.
func (j *JSONObject) ValueToObj(value any, obj Object, prop *Property, json map[string]any) {
	j.valueToObj(value, obj, prop, json, nil)
}

func (j *JSONObject) valueToObj(value any, obj Object, prop *Property, json map[string]any, at *pointer) {
	if value == nil {
		return
	}
	j.removePos(prop, value)
	if prop.HasToUseSetValue() {
		prop.SetValue(obj, value, j)
		return
	}
	if _, isArr := value.([]any); prop.IsArray && !isArr && truthy(value) {
		value = []any{value}
		propName := prop.Name
		if json != nil && prop.AlternativeName != "" && truthy(json[prop.AlternativeName]) {
			propName = prop.AlternativeName
		}
		var errJSON any = json
		if json == nil {
			errJSON = value
		}
		j.addNewError(newRequiredArrayPropertyError(propName, obj.GetType()), errJSON, obj, at)
	}
	if items, ok := value.([]any); ok {
		j.valueToArray(items, obj, prop, at)
		return
	}
	newObj, failed := j.createNewObj(value, prop, at)
	if newObj != nil {
		j.toObjectCore(value.(map[string]any), newObj, at)
		value = newObj
	}
	if !failed {
		prop.SetValue(obj, value, j)
	}
}

func (j *JSONObject) removePos(prop *Property, value any) {
	if !strings.Contains(prop.Type(), "value") {
		return
	}
	removePosFromValue(value)
}

func removePosFromValue(v any) {
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			removePosFromValue(it)
		}
	case map[string]any:
		delete(t, positionPropertyName)
	}
}

// createNewObj instantiates the class a JSON object value stands for. failed
// reports that the property requires a typed object and none could be
// created; the value must then be dropped.
func (j *JSONObject) createNewObj(value any, prop *Property, at *pointer) (Object, bool) {
	m, isMap := value.(map[string]any)
	var className string
	if isMap {
		className = classNameForNewObj(m, prop)
	}
	var newObj Object
	if className != "" {
		newObj = j.reg.CreateClass(className, m)
	}
	return newObj, j.checkNewObjectOnErrors(newObj, m, value, prop, className, at)
}

func classNameForNewObj(m map[string]any, prop *Property) string {
	res := prop.ClassName
	if res == "" {
		res, _ = m[typePropertyName].(string)
	}
	if res == "" {
		return ""
	}
	res = strings.ToLower(res)
	if prop.ClassNamePart != "" && !strings.Contains(res, prop.ClassNamePart) {
		res += prop.ClassNamePart
	}
	return res
}

// checkNewObjectOnErrors records the errors of a nested object creation. It
// returns true only when creation failed for a property that requires a
// typed object; missing required properties of a created object are
// reported but do not fail the assignment.
func (j *JSONObject) checkNewObjectOnErrors(newObj Object, m map[string]any, value any, prop *Property, className string, at *pointer) bool {
	if newObj != nil {
		for _, e := range j.requiredErrors(newObj, m) {
			j.addNewError(e, value, newObj, at)
		}
		return false
	}
	if prop.BaseClassName == "" {
		return false
	}
	if className == "" {
		j.addNewError(newMissingTypeError(j.reg, prop.Name, prop.BaseClassName), value, nil, at)
	} else {
		j.addNewError(newIncorrectTypeError(j.reg, prop.Name, prop.BaseClassName), value, nil, at)
	}
	return true
}

// requiredErrors reports every required property of obj's class that json
// leaves empty. Properties with a non-empty default are satisfied by it.
func (j *JSONObject) requiredErrors(obj Object, json map[string]any) []*JSONError {
	if _, ok := capability[DataProvider](obj); ok {
		return nil
	}
	className := obj.GetType()
	var errs []*JSONError
	for _, name := range j.reg.GetRequiredProperties(className) {
		prop := j.reg.FindProperty(className, name)
		if prop == nil || !IsValueEmpty(prop.DefaultValue()) {
			continue
		}
		if !IsValueEmpty(json[prop.Name]) {
			continue
		}
		if prop.AlternativeName != "" && !IsValueEmpty(json[prop.AlternativeName]) {
			continue
		}
		errs = append(errs, newRequiredPropertyError(prop.Name, className))
	}
	return errs
}

func (j *JSONObject) addNewError(e *JSONError, json any, element Object, at *pointer) {
	e.JSONObj = json
	e.Element = element
	e.Path = at.String()
	if m, ok := json.(map[string]any); ok {
		if pos, ok := m[positionPropertyName].(map[string]any); ok {
			if start, ok := toInt(pos["start"]); ok {
				e.At = start
			}
			if end, ok := toInt(pos["end"]); ok {
				e.End = end
			}
		}
	}
	j.Errors = append(j.Errors, e)
	j.reg.logger.Debug("json error",
		zap.String("type", e.Type),
		zap.String("path", e.Path),
		zap.String("property", e.PropertyName),
		zap.String("class", e.ClassName),
		zap.Int("at", e.At))
}

// valueToArray fills the array held by obj, splicing into it when obj already
// owns one so that existing references stay valid. A non-array value already
// held under the property is left untouched, and the property stays unset
// when every element of a non-empty input failed to load.
func (j *JSONObject) valueToArray(items []any, obj Object, prop *Property, at *pointer) {
	var target ArrayValue
	switch cur := readField(obj, prop.Name, nil).(type) {
	case nil, []any:
	case ArrayValue:
		if !isNilArray(cur) {
			target = cur
		}
	default:
		return
	}
	isNew := target == nil
	if isNew {
		target = NewArray(nil, nil)
	} else if len(items) > 0 {
		target.Splice(0, target.Len())
	}
	j.addValuesIntoArray(items, target, prop, at)
	if isNew && (len(items) == 0 || target.Len() > 0) {
		writeField(obj, prop.Name, target)
	}
}

func (j *JSONObject) addValuesIntoArray(items []any, target ArrayValue, prop *Property, at *pointer) {
	for i, v := range items {
		p := at.index(i)
		newObj, failed := j.createNewObj(v, prop, p)
		if newObj == nil {
			if !failed {
				target.Push(v)
			}
			continue
		}
		m := v.(map[string]any)
		if name := m["name"]; truthy(name) {
			writeField(newObj, "name", name)
		}
		if valueName := m["valueName"]; truthy(valueName) {
			writeField(newObj, "valueName", toString(valueName))
		}
		target.Push(newObj)
		j.toObjectCore(m, newObj, p)
	}
}
