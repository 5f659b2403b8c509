package surveymeta

import (
	"strings"
	"sync/atomic"
)

var propertyIndex atomic.Int64

// ChoicesFunc computes the choices of a property for a given object. The
// callback lets asynchronous sources deliver choices later.
type ChoicesFunc func(obj Object, callback func(choices []any)) []any

// Property describes one property of one registered class.
type Property struct {
	Name string

	id                 int64
	classInfo          *Class
	typ                string
	choices            []any
	choicesFunc        ChoicesFunc
	baseValue          any
	isRequired         bool
	isUnique           bool
	uniquePropertyName string
	readOnly           *bool
	visible            *bool
	isLocalizable      *bool
	defaultValue       any
	dependedProperties []string
	dataList           []string

	IsSerializable      bool
	IsLightSerializable bool
	IsCustom            bool
	IsDynamicChoices    bool
	IsBindable          bool
	IsArray             bool

	ClassName             string
	AlternativeName       string
	ClassNamePart         string
	BaseClassName         string
	SerializationProperty string
	DisplayName           string
	Category              string
	NextToProperty        string
	OverridingProperty    string
	ShowMode              string
	Layout                string

	// Indexes and MaxLength use -1 for "not set".
	CategoryIndex int
	VisibleIndex  int
	MaxLength     int
	MaxValue      any
	MinValue      any

	DefaultValueFunc       func(obj Object) any
	OnGetValue             func(obj Object) any
	OnSettingValue         func(obj Object, value any) any
	OnSetValue             func(obj Object, value any, conv *JSONObject)
	VisibleIf              func(obj Object) bool
	OnExecuteExpression    func(obj Object, res any)
	OnPropertyEditorUpdate func(obj Object, editor any)
}

// NewProperty creates a property owned by classInfo (which may be nil for a
// detached descriptor).
func NewProperty(classInfo *Class, name string, isRequired bool) *Property {
	return &Property{
		Name:                name,
		id:                  propertyIndex.Add(1),
		classInfo:           classInfo,
		isRequired:          isRequired,
		IsSerializable:      true,
		IsLightSerializable: true,
		CategoryIndex:       -1,
		VisibleIndex:        -1,
		MaxLength:           -1,
	}
}

func (p *Property) ID() int64 { return p.id }

// ClassInfo returns the class that owns this descriptor.
func (p *Property) ClassInfo() *Class { return p.classInfo }

func (p *Property) registry() *Registry {
	if p.classInfo == nil {
		return nil
	}
	return p.classInfo.reg
}

// Type returns the declared type, "string" when none was declared.
func (p *Property) Type() string {
	if p.typ == "" {
		return "string"
	}
	return p.typ
}

// SetType assigns the type. A "[]" suffix marks the property as an array of
// the prefix class.
func (p *Property) SetType(value string) {
	switch value {
	case "itemvalues":
		value = "itemvalue[]"
	case "textitems":
		value = "textitem[]"
	}
	p.typ = value
	if strings.HasSuffix(value, "[]") {
		p.IsArray = true
		p.ClassName = value[:len(value)-2]
	}
}

func (p *Property) IsRequired() bool { return p.isRequired }
func (p *Property) SetRequired(v bool) { p.isRequired = v }
func (p *Property) IsUnique() bool { return p.isUnique }
func (p *Property) SetUnique(v bool) { p.isUnique = v }
func (p *Property) UniquePropertyName() string { return p.uniquePropertyName }
func (p *Property) SetUniquePropertyName(v string) { p.uniquePropertyName = v }

func (p *Property) ReadOnly() bool {
	return p.readOnly != nil && *p.readOnly
}

func (p *Property) SetReadOnly(v bool) { p.readOnly = &v }

func (p *Property) Visible() bool {
	return p.visible == nil || *p.visible
}

func (p *Property) SetVisible(v bool) { p.visible = &v }

func (p *Property) IsLocalizable() bool {
	return p.isLocalizable != nil && *p.isLocalizable
}

func (p *Property) SetLocalizable(v bool) { p.isLocalizable = &v }

func (p *Property) DataList() []string {
	if p.dataList == nil {
		return []string{}
	}
	return p.dataList
}

func (p *Property) SetDataList(v []string) { p.dataList = v }

// HasToUseGetValue reports whether reads bypass the object's own field.
func (p *Property) HasToUseGetValue() bool {
	return p.OnGetValue != nil || p.SerializationProperty != ""
}

// HasToUseSetValue reports whether writes bypass the object's own field.
func (p *Property) HasToUseSetValue() bool {
	return p.OnSetValue != nil || p.SerializationProperty != ""
}

// GetDefaultValue resolves the default for obj. Properties whose class
// descends from "itemvalue" route through the registry's
// ItemValuesDefaultValue hook when one is installed.
func (p *Property) GetDefaultValue(obj Object) any {
	var res any
	if p.DefaultValueFunc != nil {
		res = p.DefaultValueFunc(obj)
	} else {
		res = p.defaultValue
	}
	if reg := p.registry(); reg != nil && reg.ItemValuesDefaultValue != nil && reg.IsDescendantOf(p.ClassName, "itemvalue") {
		dv := p.defaultValue
		if dv == nil {
			dv = []any{}
		}
		res = reg.ItemValuesDefaultValue(dv, p.ClassName)
	}
	return res
}

// DefaultValue is GetDefaultValue without an object.
func (p *Property) DefaultValue() any { return p.GetDefaultValue(nil) }

func (p *Property) SetDefaultValue(v any) { p.defaultValue = v }

func (p *Property) IsDefaultValue(value any) bool {
	return p.IsDefaultValueByObj(nil, value)
}

// IsDefaultValueByObj reports whether value equals the default resolved for
// obj. Empty defaults fall back to per-type emptiness rules.
func (p *Property) IsDefaultValueByObj(obj Object, value any) bool {
	dv := p.GetDefaultValue(obj)
	if !IsValueEmpty(dv) {
		return ValuesEqual(value, dv, true)
	}
	if p.IsLocalizable() {
		return value == nil
	}
	if b, ok := value.(bool); ok && !b && (p.Type() == "boolean" || p.Type() == "switch") {
		return true
	}
	return IsValueEmpty(value)
}

func (p *Property) serializationTarget(obj Object) LocalizableValue {
	if p.SerializationProperty == "" {
		return nil
	}
	lv, _ := readField(obj, p.SerializationProperty, nil).(LocalizableValue)
	return lv
}

// GetValue reads the serializable value of the property from obj.
func (p *Property) GetValue(obj Object) any {
	if p.OnGetValue != nil {
		return p.OnGetValue(obj)
	}
	if lv := p.serializationTarget(obj); lv != nil {
		return lv.GetJSON()
	}
	return readField(obj, p.Name, p.GetDefaultValue(obj))
}

// GetPropertyValue is GetValue, except that localizable properties yield
// their current text.
func (p *Property) GetPropertyValue(obj Object) any {
	if p.IsLocalizable() {
		if lv := p.serializationTarget(obj); lv != nil {
			return lv.Text()
		}
		return nil
	}
	return p.GetValue(obj)
}

// SettingValue lets OnSettingValue adjust a value before it is assigned.
// It is skipped while obj is loading from JSON.
func (p *Property) SettingValue(obj Object, value any) any {
	if p.OnSettingValue == nil || isLoading(obj) {
		return value
	}
	return p.OnSettingValue(obj, value)
}

// SetValue writes value into obj. String input is coerced for number and
// boolean properties.
func (p *Property) SetValue(obj Object, value any, conv *JSONObject) {
	if p.OnSetValue != nil {
		p.OnSetValue(obj, value, conv)
		return
	}
	if lv := p.serializationTarget(obj); lv != nil {
		lv.SetJSON(value)
		return
	}
	if s, ok := value.(string); ok && s != "" {
		switch p.Type() {
		case "number":
			value = parseLeadingInt(s)
		case "boolean", "switch":
			value = strings.ToLower(s) == "true"
		}
	}
	writeField(obj, p.Name, value)
}

// GetObjType strips ClassNamePart from a type name.
func (p *Property) GetObjType(objType string) string {
	if p.ClassNamePart == "" {
		return objType
	}
	return strings.Replace(objType, p.ClassNamePart, "", 1)
}

func (p *Property) HasChoices() bool {
	return p.choices != nil || p.choicesFunc != nil
}

// Choices is GetChoices without an object.
func (p *Property) Choices() []any { return p.GetChoices(nil, nil) }

func (p *Property) GetChoices(obj Object, callback func([]any)) []any {
	if p.choices != nil {
		return p.choices
	}
	if p.choicesFunc != nil {
		return p.choicesFunc(obj, callback)
	}
	return nil
}

func (p *Property) SetChoices(value []any, fn ChoicesFunc) {
	p.choices = value
	p.choicesFunc = fn
}

// GetBaseValue returns the base value, evaluating it when it is a function.
func (p *Property) GetBaseValue() string {
	switch v := p.baseValue.(type) {
	case nil:
		return ""
	case func() string:
		return v()
	case string:
		return v
	}
	return toString(p.baseValue)
}

func (p *Property) SetBaseValue(v any) { p.baseValue = v }

// IsVisible reports visibility for a layout, consulting VisibleIf when an
// object is supplied.
func (p *Property) IsVisible(layout string, obj Object) bool {
	isLayout := p.Layout == "" || p.Layout == layout
	if !p.Visible() || !isLayout {
		return false
	}
	if p.VisibleIf != nil && obj != nil {
		return p.VisibleIf(obj)
	}
	return true
}

// MergeWith copies every mergeable attribute of prop that is still unset on
// p. Locally set values always win.
func (p *Property) MergeWith(prop *Property) {
	if prop == nil {
		return
	}
	mergeString(&p.typ, prop.typ)
	if p.choices == nil && p.choicesFunc == nil {
		p.choices = prop.choices
		p.choicesFunc = prop.choicesFunc
	}
	if p.baseValue == nil {
		p.baseValue = prop.baseValue
	}
	if p.readOnly == nil {
		p.readOnly = prop.readOnly
	}
	if p.visible == nil {
		p.visible = prop.visible
	}
	if p.isLocalizable == nil {
		p.isLocalizable = prop.isLocalizable
	}
	mergeString(&p.uniquePropertyName, prop.uniquePropertyName)
	mergeString(&p.ClassName, prop.ClassName)
	mergeString(&p.AlternativeName, prop.AlternativeName)
	mergeString(&p.Layout, prop.Layout)
	mergeString(&p.ClassNamePart, prop.ClassNamePart)
	mergeString(&p.BaseClassName, prop.BaseClassName)
	if p.defaultValue == nil {
		p.defaultValue = prop.defaultValue
	}
	if p.DefaultValueFunc == nil {
		p.DefaultValueFunc = prop.DefaultValueFunc
	}
	mergeString(&p.SerializationProperty, prop.SerializationProperty)
	if p.OnGetValue == nil {
		p.OnGetValue = prop.OnGetValue
	}
	if p.OnSetValue == nil {
		p.OnSetValue = prop.OnSetValue
	}
	if p.OnSettingValue == nil {
		p.OnSettingValue = prop.OnSettingValue
	}
	mergeString(&p.DisplayName, prop.DisplayName)
	mergeString(&p.Category, prop.Category)
	mergeIndex(&p.CategoryIndex, prop.CategoryIndex)
	mergeIndex(&p.VisibleIndex, prop.VisibleIndex)
	mergeString(&p.NextToProperty, prop.NextToProperty)
	mergeString(&p.OverridingProperty, prop.OverridingProperty)
	mergeString(&p.ShowMode, prop.ShowMode)
	if p.dependedProperties == nil && prop.dependedProperties != nil {
		p.dependedProperties = append([]string(nil), prop.dependedProperties...)
	}
	if p.VisibleIf == nil {
		p.VisibleIf = prop.VisibleIf
	}
	if p.OnExecuteExpression == nil {
		p.OnExecuteExpression = prop.OnExecuteExpression
	}
	if p.OnPropertyEditorUpdate == nil {
		p.OnPropertyEditorUpdate = prop.OnPropertyEditorUpdate
	}
	mergeIndex(&p.MaxLength, prop.MaxLength)
	if p.MaxValue == nil {
		p.MaxValue = prop.MaxValue
	}
	if p.MinValue == nil {
		p.MinValue = prop.MinValue
	}
	if p.dataList == nil {
		p.dataList = prop.dataList
	}
}

func mergeString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func mergeIndex(dst *int, src int) {
	if *dst == -1 {
		*dst = src
	}
}

// AddDependedProperty records that name must be recomputed when this
// property changes.
func (p *Property) AddDependedProperty(name string) {
	for _, n := range p.dependedProperties {
		if n == name {
			return
		}
	}
	p.dependedProperties = append(p.dependedProperties, name)
}

func (p *Property) DependedProperties() []string {
	if p.dependedProperties == nil {
		return []string{}
	}
	return p.dependedProperties
}

// SchemaType maps the property to a JSON-Schema primitive type. An empty
// result means no type constraint.
func (p *Property) SchemaType() string {
	switch {
	case p.ClassName == "choicesByUrl":
		return ""
	case p.ClassName == "string":
		return "string"
	case p.ClassName != "", p.BaseClassName != "":
		return "array"
	case p.Type() == "switch":
		return "boolean"
	case p.Type() == "boolean", p.Type() == "number":
		return p.Type()
	}
	return "string"
}

// SchemaRef names the definition a property refers to, if any.
func (p *Property) SchemaRef() string {
	return p.ClassName
}
