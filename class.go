package surveymeta

import (
	"strings"

	"go.uber.org/zap"
)

const (
	requiredSymbol = "!"
	typeSymbol     = ":"
)

// Class is the descriptor of one registered type: its locally declared
// properties in declaration order, its parent link, and its factory.
type Class struct {
	Name       string
	ParentName string
	Creator    CreatorFunc
	Properties []*Property

	reg            *Registry
	isCustom       bool
	allProperties  []*Property
	hashProperties map[string]*Property
}

func newClass(reg *Registry, name string, declarations []any, creator CreatorFunc, parentName string) *Class {
	c := &Class{
		Name:    strings.ToLower(name),
		Creator: creator,
		reg:     reg,
	}
	c.isCustom = creator == nil && parentName != ""
	if parentName != "" {
		c.ParentName = strings.ToLower(parentName)
		reg.custom.AddClass(c.Name, c.ParentName)
		if creator != nil {
			c.makeParentRegularClass()
		}
	}
	c.Properties = make([]*Property, 0, len(declarations))
	for _, d := range declarations {
		c.CreateProperty(d, c.isCustom)
	}
	return c
}

// IsCustom reports whether the class has no factory of its own and relies
// on an ancestor's.
func (c *Class) IsCustom() bool { return c.isCustom }

// Registry returns the registry the class was created for.
func (c *Class) Registry() *Registry { return c.reg }

// Find scans the locally declared properties only.
func (c *Class) Find(name string) *Property {
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// FindProperty looks name (or an alternative name) up in the flattened,
// cached property table.
func (c *Class) FindProperty(name string) *Property {
	c.fillAllProperties()
	return c.hashProperties[name]
}

// GetAllProperties returns inherited and local properties: parent order
// first, then local-only properties.
func (c *Class) GetAllProperties() []*Property {
	c.fillAllProperties()
	return c.allProperties
}

// ResetAllProperties drops the flattened cache of c and of every registered
// descendant.
func (c *Class) ResetAllProperties() {
	c.allProperties = nil
	c.hashProperties = nil
	for _, child := range c.reg.GetChildrenClasses(c.Name, false) {
		child.ResetAllProperties()
	}
}

func (c *Class) fillAllProperties() {
	if c.allProperties != nil {
		return
	}
	c.allProperties = make([]*Property, 0, len(c.Properties))
	c.hashProperties = make(map[string]*Property, len(c.Properties))
	local := make(map[string]*Property, len(c.Properties))
	for _, p := range c.Properties {
		local[p.Name] = p
	}
	var parent *Class
	if c.ParentName != "" {
		parent = c.reg.FindClass(c.ParentName)
	}
	if parent != nil && parent != c {
		for _, pp := range parent.GetAllProperties() {
			if own := local[pp.Name]; own != nil {
				own.MergeWith(pp)
				c.addPropCore(own)
			} else {
				c.addPropCore(pp)
			}
		}
	}
	for _, p := range c.Properties {
		if c.hashProperties[p.Name] == nil {
			c.addPropCore(p)
		}
	}
}

func (c *Class) addPropCore(p *Property) {
	c.allProperties = append(c.allProperties, p)
	c.hashProperties[p.Name] = p
	if p.AlternativeName != "" {
		c.hashProperties[p.AlternativeName] = p
	}
}

func (c *Class) isOverriddenProp(name string) bool {
	return c.ParentName != "" && c.reg.FindProperty(c.ParentName, name) != nil
}

func (c *Class) hasRegularChildClass() {
	if !c.isCustom {
		return
	}
	c.isCustom = false
	for _, p := range c.Properties {
		p.IsCustom = false
	}
	c.reg.custom.RemoveAllProperties(c.Name)
	c.makeParentRegularClass()
}

func (c *Class) makeParentRegularClass() {
	if c.ParentName == "" {
		return
	}
	if parent := c.reg.FindClass(c.ParentName); parent != nil {
		parent.hasRegularChildClass()
	}
}

// CreateProperty builds a property from a declaration and appends it to the
// local properties. A declaration is a name string ("!name:type", where "!"
// marks it required), a PropertyInfo, a *PropertyInfo, or a map decoded with
// DecodePropertyInfo. Declarations without a name are skipped.
//
// Options are applied in this order: type, default, defaultFunc,
// isSerializable, isLightSerializable, maxLength, displayName, category,
// categoryIndex, nextToProperty, overridingProperty, visibleIndex, showMode,
// maxValue, minValue, dataList, isDynamicChoices, isBindable, isUnique,
// uniqueProperty, isArray, visible, visibleIf, onExecuteExpression,
// onPropertyEditorUpdate, readOnly, choices, baseValue, onGetValue,
// onSetValue, onSettingValue, isLocalizable/serializationProperty,
// className, baseClassName, classNamePart, alternativeName, layout,
// dependsOn.
func (c *Class) CreateProperty(declaration any, isCustom bool) *Property {
	info, isObj, ok := c.toPropertyInfo(declaration)
	if !ok || info.Name == "" {
		return nil
	}
	name := info.Name
	var typ string
	if i := strings.Index(name, typeSymbol); i > -1 {
		typ = name[i+1:]
		name = name[:i]
	}
	isRequired := strings.HasPrefix(name, requiredSymbol) || info.IsRequired
	name = strings.TrimPrefix(name, requiredSymbol)
	if name == "" {
		return nil
	}
	prop := NewProperty(c, name, isRequired)
	if typ != "" {
		prop.SetType(typ)
	}
	if isObj {
		c.applyOptions(prop, info)
	}
	c.Properties = append(c.Properties, prop)
	if isCustom && !c.isOverriddenProp(prop.Name) {
		prop.IsCustom = true
		c.reg.custom.AddProperty(c.Name, prop)
	}
	return prop
}

func (c *Class) toPropertyInfo(declaration any) (PropertyInfo, bool, bool) {
	switch d := declaration.(type) {
	case string:
		return PropertyInfo{Name: d}, false, true
	case PropertyInfo:
		return d, true, true
	case *PropertyInfo:
		if d == nil {
			return PropertyInfo{}, false, false
		}
		return *d, true, true
	case map[string]any:
		info, err := DecodePropertyInfo(d)
		if err != nil {
			c.reg.logger.Debug("skipping property declaration",
				zap.String("class", c.Name), zap.Error(err))
			return PropertyInfo{}, false, false
		}
		return info, true, true
	}
	return PropertyInfo{}, false, false
}

func (c *Class) applyOptions(prop *Property, info PropertyInfo) {
	if info.Type != "" {
		prop.SetType(info.Type)
	}
	if info.Default != nil {
		prop.SetDefaultValue(info.Default)
	}
	if info.DefaultFunc != nil {
		prop.DefaultValueFunc = info.DefaultFunc
	}
	if info.IsSerializable != nil {
		prop.IsSerializable = *info.IsSerializable
	}
	if info.IsLightSerializable != nil {
		prop.IsLightSerializable = *info.IsLightSerializable
	}
	if info.MaxLength != nil {
		prop.MaxLength = *info.MaxLength
	}
	if info.DisplayName != "" {
		prop.DisplayName = info.DisplayName
	}
	if info.Category != "" {
		prop.Category = info.Category
	}
	if info.CategoryIndex != nil {
		prop.CategoryIndex = *info.CategoryIndex
	}
	if info.NextToProperty != "" {
		prop.NextToProperty = info.NextToProperty
	}
	if info.OverridingProperty != "" {
		prop.OverridingProperty = info.OverridingProperty
	}
	if info.VisibleIndex != nil {
		prop.VisibleIndex = *info.VisibleIndex
	}
	if info.ShowMode != "" {
		prop.ShowMode = info.ShowMode
	}
	if info.MaxValue != nil {
		prop.MaxValue = info.MaxValue
	}
	if info.MinValue != nil {
		prop.MinValue = info.MinValue
	}
	if len(info.DataList) > 0 {
		prop.SetDataList(info.DataList)
	}
	if info.IsDynamicChoices {
		prop.IsDynamicChoices = true
	}
	if info.IsBindable {
		prop.IsBindable = true
	}
	if info.IsUnique {
		prop.SetUnique(true)
	}
	if info.UniqueProperty != "" {
		prop.SetUniquePropertyName(info.UniqueProperty)
	}
	if info.IsArray != nil {
		prop.IsArray = *info.IsArray
	}
	if info.Visible != nil {
		prop.SetVisible(*info.Visible)
	}
	if info.VisibleIf != nil {
		prop.VisibleIf = info.VisibleIf
	}
	if info.OnExecuteExpression != nil {
		prop.OnExecuteExpression = info.OnExecuteExpression
	}
	if info.OnPropertyEditorUpdate != nil {
		prop.OnPropertyEditorUpdate = info.OnPropertyEditorUpdate
	}
	if info.ReadOnly {
		prop.SetReadOnly(true)
	}
	if info.Choices != nil || info.ChoicesFunc != nil {
		prop.SetChoices(info.Choices, info.ChoicesFunc)
	}
	if info.BaseValue != nil {
		prop.SetBaseValue(info.BaseValue)
	}
	if info.OnGetValue != nil {
		prop.OnGetValue = info.OnGetValue
	}
	if info.OnSetValue != nil {
		prop.OnSetValue = info.OnSetValue
	}
	if info.OnSettingValue != nil {
		prop.OnSettingValue = info.OnSettingValue
	}
	serializationProperty := info.SerializationProperty
	if info.IsLocalizable {
		serializationProperty = "loc" + prop.Name
	}
	if serializationProperty != "" {
		prop.SerializationProperty = serializationProperty
		if strings.HasPrefix(serializationProperty, "loc") {
			prop.SetLocalizable(true)
		}
	}
	if info.IsLocalizable {
		prop.SetLocalizable(true)
	}
	if info.ClassName != "" {
		prop.ClassName = info.ClassName
	}
	if info.BaseClassName != "" {
		prop.BaseClassName = info.BaseClassName
		prop.IsArray = true
	}
	if info.ClassNamePart != "" {
		prop.ClassNamePart = info.ClassNamePart
	}
	if info.AlternativeName != "" {
		prop.AlternativeName = info.AlternativeName
	}
	if info.Layout != "" {
		prop.Layout = info.Layout
	}
	for _, dep := range info.DependsOn {
		c.addDependsOnProperty(prop, dep)
	}
}

// addDependsOnProperty adds the reverse edge: the referenced property learns
// that prop depends on it.
func (c *Class) addDependsOnProperty(prop *Property, dependsOn string) {
	target := c.Find(dependsOn)
	if target == nil && c.ParentName != "" {
		target = c.reg.FindProperty(c.ParentName, dependsOn)
	}
	if target == nil {
		return
	}
	target.AddDependedProperty(prop.Name)
}
