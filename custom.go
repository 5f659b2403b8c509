package surveymeta

import "strings"

// CustomProperties holds the properties that are defined on instances at
// construction time rather than declared by the instance's own type: all
// properties added with Registry.AddProperty and all properties of custom
// (creator-less) classes. Class names are case-insensitive.
type CustomProperties struct {
	reg           *Registry
	properties    map[string][]*Property
	parentClasses map[string]string
}

func newCustomProperties(reg *Registry) *CustomProperties {
	return &CustomProperties{
		reg:           reg,
		properties:    map[string][]*Property{},
		parentClasses: map[string]string{},
	}
}

func (c *CustomProperties) AddProperty(className string, prop *Property) {
	className = strings.ToLower(className)
	c.properties[className] = append(c.properties[className], prop)
}

// RemoveProperty removes the first property named propertyName.
func (c *CustomProperties) RemoveProperty(className, propertyName string) {
	className = strings.ToLower(className)
	props := c.properties[className]
	for i, p := range props {
		if p.Name == propertyName {
			c.properties[className] = append(props[:i:i], props[i+1:]...)
			return
		}
	}
}

func (c *CustomProperties) RemoveAllProperties(className string) {
	delete(c.properties, strings.ToLower(className))
}

// removeClass forgets the properties and the parent link of className.
// Links of its child classes are kept.
func (c *CustomProperties) removeClass(className string) {
	className = strings.ToLower(className)
	delete(c.properties, className)
	delete(c.parentClasses, className)
}

// AddClass records the parent link used to collect inherited custom
// properties. The registry calls it for every class with a parent.
func (c *CustomProperties) AddClass(className, parentClassName string) {
	c.parentClasses[strings.ToLower(className)] = strings.ToLower(parentClassName)
}

// GetProperties returns the custom properties of className followed by
// those of its ancestors.
func (c *CustomProperties) GetProperties(className string) []*Property {
	var out []*Property
	seen := map[string]bool{}
	for name := strings.ToLower(className); name != "" && !seen[name]; name = c.parentClasses[name] {
		seen[name] = true
		out = append(out, c.properties[name]...)
	}
	return out
}

// CreateProperties defines every custom property of obj's type and its
// ancestors on obj. Properties obj already has are left alone, so calling it
// twice is harmless. Objects without CustomPropertyHost are skipped.
func (c *CustomProperties) CreateProperties(obj Object) {
	o, ok := asObject(obj)
	if !ok {
		return
	}
	host, ok := capability[CustomPropertyHost](o)
	if !ok {
		return
	}
	for _, p := range c.GetProperties(o.GetType()) {
		c.createPropertyInObj(o, host, p)
	}
}

func (c *CustomProperties) createPropertyInObj(obj Object, host CustomPropertyHost, prop *Property) {
	if host.HasProperty(prop.Name) {
		return
	}
	if prop.SerializationProperty != "" && host.HasProperty(prop.SerializationProperty) {
		return
	}
	lh, isLocHost := capability[LocalizableHost](obj)
	if prop.IsLocalizable() && prop.SerializationProperty != "" && isLocHost {
		lh.CreateCustomLocalizableObj(prop.Name)
		host.DefineProperty(prop.SerializationProperty, Accessor{
			Get: func() any { return lh.GetLocalizableString(prop.Name) },
		})
		host.DefineProperty(prop.Name, Accessor{
			Get: func() any {
				if text := lh.GetLocalizableString(prop.Name).Text(); text != "" {
					return text
				}
				return prop.DefaultValue()
			},
			Set: func(v any) {
				lh.GetLocalizableString(prop.Name).SetText(toString(v))
			},
		})
	} else {
		c.defineValueProperty(obj, host, prop)
	}
	if prop.Type() == "condition" || prop.Type() == "expression" {
		if prop.OnExecuteExpression == nil {
			return
		}
		if eh, ok := capability[ExpressionHost](obj); ok {
			eh.AddExpressionProperty(prop.Name, prop.OnExecuteExpression)
		}
	}
}

func (c *CustomProperties) defineValueProperty(obj Object, host CustomPropertyHost, prop *Property) {
	defaultValue := prop.DefaultValue()
	isArrayProp := prop.IsArray || prop.Type() == "multiplevalues"
	if ac, ok := capability[ArrayCreator](obj); ok {
		var arr *Array
		if c.reg.IsDescendantOf(prop.ClassName, "itemvalue") {
			arr = ac.CreateNewArray(prop.Name, func(item any, _ int) {
				if oi, ok := item.(OwnedItem); ok {
					oi.SetOwner(obj, prop.Name)
				}
			}, nil)
			isArrayProp = true
		} else if isArrayProp {
			arr = ac.CreateNewArray(prop.Name, nil, nil)
		}
		if isArrayProp {
			if items, ok := defaultValue.([]any); ok && arr != nil {
				arr.Push(items...)
			}
			defaultValue = nil
		}
	}
	host.DefineProperty(prop.Name, Accessor{
		Get: func() any {
			if prop.OnGetValue != nil {
				return prop.OnGetValue(obj)
			}
			return obj.GetPropertyValue(prop.Name, defaultValue)
		},
		Set: func(v any) {
			if prop.OnSetValue != nil {
				prop.OnSetValue(obj, v, nil)
				return
			}
			obj.SetPropertyValue(prop.Name, v)
		},
	})
}
