package surveymeta

import (
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// Registry is the table of registered classes keyed by lowercase name. It
// also owns the custom-property table for those classes.
//
// A Registry is not safe for concurrent mutation. Registration is expected
// to happen once, before (de)serialization starts; concurrent reads are fine
// as long as nobody registers in the meantime.
type Registry struct {
	classes          map[string]*Class
	order            []string
	alternativeNames map[string]string
	childrenClasses  map[string][]*Class
	custom           *CustomProperties
	logger           *zap.Logger

	// OnSerializingProperty may take over the serialization of a property.
	// When it returns true the property is not written by the serializer.
	OnSerializingProperty func(obj Object, prop *Property, value any, json map[string]any) bool
	// ItemValuesDefaultValue resolves defaults for properties whose class
	// descends from "itemvalue".
	ItemValuesDefaultValue func(value any, className string) any
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration and diagnostic events.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		classes:          map[string]*Class{},
		alternativeNames: map[string]string{},
		childrenClasses:  map[string][]*Class{},
		logger:           zap.NewNop(),
	}
	r.custom = newCustomProperties(r)
	for _, o := range opts {
		o(r)
	}
	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger { return r.logger }

// CustomProperties returns the table of properties injected into instances.
func (r *Registry) CustomProperties() *CustomProperties { return r.custom }

// AddClass registers a class, replacing any previous registration under the
// same name along with its custom properties. declarations follow
// Class.CreateProperty. A nil creator with a non-empty parentName declares a
// custom class that is constructed through the nearest ancestor with a
// creator.
func (r *Registry) AddClass(name string, declarations []any, creator CreatorFunc, parentName string) *Class {
	name = strings.ToLower(name)
	if prev := r.classes[name]; prev != nil {
		r.detachChild(prev)
		r.custom.removeClass(name)
	} else {
		r.order = append(r.order, name)
	}
	c := newClass(r, name, declarations, creator, parentName)
	r.classes[name] = c
	if c.ParentName != "" {
		r.childrenClasses[c.ParentName] = append(r.childrenClasses[c.ParentName], c)
	}
	r.logger.Debug("class registered",
		zap.String("class", name),
		zap.String("parent", c.ParentName),
		zap.Int("properties", len(c.Properties)),
		zap.Bool("custom", c.IsCustom()))
	return c
}

// RemoveClass deregisters a class and detaches it from its parent's children.
// Child classes are left in place with their ParentName unchanged; they lose
// the inherited properties the next time their property table is rebuilt.
func (r *Registry) RemoveClass(name string) {
	c := r.FindClass(name)
	if c == nil {
		return
	}
	delete(r.classes, c.Name)
	for i, n := range r.order {
		if n == c.Name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.detachChild(c)
	r.custom.removeClass(c.Name)
	r.logger.Debug("class removed", zap.String("class", c.Name))
}

func (r *Registry) detachChild(c *Class) {
	if c.ParentName == "" {
		return
	}
	children := r.childrenClasses[c.ParentName]
	for i, ch := range children {
		if ch == c {
			r.childrenClasses[c.ParentName] = append(children[:i:i], children[i+1:]...)
			return
		}
	}
}

// OverrideClassCreator replaces the factory of a registered class.
func (r *Registry) OverrideClassCreator(name string, creator CreatorFunc) {
	if c := r.FindClass(name); c != nil {
		c.Creator = creator
	}
}

// FindClass looks a class up by name, case-insensitively. An unknown name is
// tried once as an alternative name; aliases of aliases are not followed.
func (r *Registry) FindClass(name string) *Class {
	name = strings.ToLower(name)
	if c := r.classes[name]; c != nil {
		return c
	}
	if alt := r.alternativeNames[name]; alt != "" && alt != name {
		return r.classes[alt]
	}
	return nil
}

// AddAlternativeClassName makes alternativeName resolve to name.
func (r *Registry) AddAlternativeClassName(name, alternativeName string) {
	r.alternativeNames[strings.ToLower(alternativeName)] = strings.ToLower(name)
}

// IsDescendantOf reports whether className is ancestorName or inherits from
// it. Unknown names yield false.
func (r *Registry) IsDescendantOf(className, ancestorName string) bool {
	if className == "" || ancestorName == "" {
		return false
	}
	ancestorName = strings.ToLower(ancestorName)
	c := r.FindClass(className)
	seen := map[*Class]bool{}
	for c != nil && !seen[c] {
		if c.Name == ancestorName {
			return true
		}
		seen[c] = true
		c = r.classes[c.ParentName]
	}
	return false
}

// GetAllClasses returns every registered class name in registration order.
func (r *Registry) GetAllClasses() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// GetChildrenClasses returns all descendants of name, depth first. With
// canBeCreated set, only classes with their own creator are returned.
func (r *Registry) GetChildrenClasses(name string, canBeCreated bool) []*Class {
	var out []*Class
	r.fillChildrenClasses(strings.ToLower(name), canBeCreated, &out, map[string]bool{})
	return out
}

func (r *Registry) fillChildrenClasses(name string, canBeCreated bool, out *[]*Class, seen map[string]bool) {
	if seen[name] {
		return
	}
	seen[name] = true
	for _, ch := range r.childrenClasses[name] {
		if !canBeCreated || ch.Creator != nil {
			*out = append(*out, ch)
		}
		r.fillChildrenClasses(ch.Name, canBeCreated, out, seen)
	}
}

// GetProperties returns the flattened properties of a class, or nil when the
// class is unknown.
func (r *Registry) GetProperties(className string) []*Property {
	c := r.FindClass(className)
	if c == nil {
		return nil
	}
	return c.GetAllProperties()
}

// GetPropertiesByObj returns the properties of obj's type followed by the
// properties of its dynamic type that the primary type does not declare.
func (r *Registry) GetPropertiesByObj(obj Object) []*Property {
	o, ok := asObject(obj)
	if !ok {
		return nil
	}
	props := r.GetProperties(o.GetType())
	dt, ok := capability[DynamicTyped](o)
	if !ok {
		return props
	}
	dynamic := r.GetProperties(dt.GetDynamicType())
	if len(dynamic) == 0 {
		return props
	}
	seen := make(map[string]bool, len(props))
	out := make([]*Property, 0, len(props)+len(dynamic))
	for _, p := range props {
		seen[p.Name] = true
		out = append(out, p)
	}
	for _, p := range dynamic {
		if !seen[p.Name] {
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	return out
}

// GetDynamicPropertiesByObj returns the properties of the dynamic type
// (dynamicType, or obj's own dynamic type when empty) that obj's primary type
// does not declare.
func (r *Registry) GetDynamicPropertiesByObj(obj Object, dynamicType string) []*Property {
	o, ok := asObject(obj)
	if !ok {
		return nil
	}
	if dynamicType == "" {
		if dt, ok := capability[DynamicTyped](o); ok {
			dynamicType = dt.GetDynamicType()
		}
	}
	if dynamicType == "" {
		return nil
	}
	dynamic := r.GetProperties(dynamicType)
	if len(dynamic) == 0 {
		return nil
	}
	own := map[string]bool{}
	for _, p := range r.GetProperties(o.GetType()) {
		own[p.Name] = true
	}
	var out []*Property
	for _, p := range dynamic {
		if !own[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// FindProperty looks a property up by name or alternative name.
func (r *Registry) FindProperty(className, propertyName string) *Property {
	c := r.FindClass(className)
	if c == nil {
		return nil
	}
	return c.FindProperty(propertyName)
}

// FindProperties returns the named properties that exist, in the given order.
func (r *Registry) FindProperties(className string, propertyNames []string) []*Property {
	c := r.FindClass(className)
	if c == nil {
		return nil
	}
	var out []*Property
	for _, n := range propertyNames {
		if p := c.FindProperty(n); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// GetAllPropertiesByName returns the locally declared property named
// propertyName of every class that declares one.
func (r *Registry) GetAllPropertiesByName(propertyName string) []*Property {
	var out []*Property
	for _, name := range r.order {
		if p := r.classes[name].Find(propertyName); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// GetProperty returns a property owned by className itself. An inherited
// property is copied into the class first so it can be changed without
// affecting the ancestor.
func (r *Registry) GetProperty(className, propertyName string) *Property {
	prop := r.FindProperty(className, propertyName)
	if prop == nil {
		return nil
	}
	c := r.FindClass(className)
	if prop.classInfo == c {
		return prop
	}
	np := NewProperty(c, prop.Name, prop.IsRequired())
	np.MergeWith(prop)
	np.IsArray = prop.IsArray
	c.Properties = append(c.Properties, np)
	c.ResetAllProperties()
	return np
}

// HasOriginalProperty reports whether GetOriginalProperty finds anything.
func (r *Registry) HasOriginalProperty(obj Object, propertyName string) bool {
	return r.GetOriginalProperty(obj, propertyName) != nil
}

// GetOriginalProperty finds a property on obj's type, or on the type of the
// object obj stands in for.
func (r *Registry) GetOriginalProperty(obj Object, propertyName string) *Property {
	if p := r.FindProperty(obj.GetType(), propertyName); p != nil {
		return p
	}
	if orig := originalObj(obj); orig != nil {
		return r.FindProperty(orig.GetType(), propertyName)
	}
	return nil
}

func originalObj(obj Object) Object {
	op, ok := capability[OriginalProvider](obj)
	if !ok {
		return nil
	}
	o, ok := asObject(op.GetOriginalObj())
	if !ok {
		return nil
	}
	return o
}

// GetRequiredProperties returns the names of the required properties.
func (r *Registry) GetRequiredProperties(className string) []string {
	var out []string
	for _, p := range r.GetProperties(className) {
		if p.IsRequired() {
			out = append(out, p.Name)
		}
	}
	return out
}

// AddProperty adds a custom property to a registered class.
func (r *Registry) AddProperty(className string, declaration any) *Property {
	return r.addCustomPropertyCore(r.FindClass(className), declaration)
}

// AddProperties adds several custom properties to a registered class.
func (r *Registry) AddProperties(className string, declarations []any) {
	c := r.FindClass(className)
	for _, d := range declarations {
		r.addCustomPropertyCore(c, d)
	}
}

func (r *Registry) addCustomPropertyCore(c *Class, declaration any) *Property {
	if c == nil {
		return nil
	}
	p := c.CreateProperty(declaration, true)
	if p != nil {
		c.ResetAllProperties()
		r.logger.Debug("property added", zap.String("class", c.Name), zap.String("property", p.Name))
	}
	return p
}

// RemoveProperty removes a locally declared property. It returns false when
// the class is unknown.
func (r *Registry) RemoveProperty(className, propertyName string) bool {
	c := r.FindClass(className)
	if c == nil {
		return false
	}
	p := c.Find(propertyName)
	if p == nil {
		return true
	}
	for i, x := range c.Properties {
		if x == p {
			c.Properties = append(c.Properties[:i:i], c.Properties[i+1:]...)
			break
		}
	}
	c.ResetAllProperties()
	r.custom.RemoveProperty(c.Name, propertyName)
	return true
}

// CreateClass instantiates a registered class. When the class has no creator
// the nearest ancestor's creator is used and the result is wrapped in a
// Retyped that reports the requested name. Custom properties are defined on
// the new instance in both cases. Unknown or uncreatable classes yield nil.
func (r *Registry) CreateClass(name string, json map[string]any) Object {
	name = strings.ToLower(name)
	c := r.FindClass(name)
	if c == nil {
		return nil
	}
	if c.Creator != nil {
		obj, ok := asObject(c.Creator(json))
		if !ok {
			return nil
		}
		r.custom.CreateProperties(obj)
		return obj
	}
	seen := map[*Class]bool{c: true}
	for parent := c.ParentName; parent != ""; {
		pc := r.FindClass(parent)
		if pc == nil || seen[pc] {
			return nil
		}
		seen[pc] = true
		if pc.Creator != nil {
			return r.createCustomType(name, pc.Creator, json)
		}
		parent = pc.ParentName
	}
	return nil
}

func (r *Registry) createCustomType(name string, creator CreatorFunc, json map[string]any) Object {
	inner, ok := asObject(creator(json))
	if !ok {
		return nil
	}
	res := NewRetyped(inner, name)
	r.custom.CreateProperties(res)
	return res
}

// CreateCustomProperties defines the custom properties of obj's type and its
// ancestors on obj. Objects that build themselves outside CreateClass call
// this once after construction.
func (r *Registry) CreateCustomProperties(obj Object) {
	r.custom.CreateProperties(obj)
}

// GetObjPropertyValue reads a property the way editors see it: localizable
// properties yield their text and non-serializable ones the raw field.
func (r *Registry) GetObjPropertyValue(obj Object, name string) any {
	if orig := originalObj(obj); orig != nil {
		if p := r.FindProperty(orig.GetType(), name); p != nil {
			return r.objPropertyValueCore(orig, p)
		}
	}
	p := r.FindProperty(obj.GetType(), name)
	if p == nil {
		return readField(obj, name, nil)
	}
	return r.objPropertyValueCore(obj, p)
}

func (r *Registry) objPropertyValueCore(obj Object, p *Property) any {
	if !p.IsSerializable {
		return readField(obj, p.Name, nil)
	}
	if p.IsLocalizable() {
		if p.IsArray {
			return readField(obj, p.Name, nil)
		}
		if p.SerializationProperty != "" {
			if lv := p.serializationTarget(obj); lv != nil {
				return lv.Text()
			}
			return nil
		}
	}
	return obj.GetPropertyValue(p.Name, nil)
}

// SetObjPropertyValue assigns a property value. Localizable values take the
// JSON form, existing arrays are refilled in place, and plain slices are
// copied.
func (r *Registry) SetObjPropertyValue(obj Object, name string, value any) {
	cur := readField(obj, name, nil)
	if identical(cur, value) {
		return
	}
	if lv, ok := cur.(LocalizableValue); ok {
		lv.SetJSON(value)
		return
	}
	if items, ok := arrayItems(value); ok {
		if arr, ok := cur.(ArrayValue); ok && !isNilArray(arr) {
			arr.Splice(0, arr.Len(), items...)
			return
		}
		if s, ok := value.([]any); ok {
			value = append([]any(nil), s...)
		}
	}
	writeField(obj, name, value)
}

func isNilArray(a ArrayValue) bool {
	p, ok := a.(*Array)
	return ok && p == nil
}

func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	switch ta.Kind() {
	case reflect.Pointer, reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return a == b
	}
	return false
}
