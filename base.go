package surveymeta

import "slices"

// Base is a ready-made Object: ordered key/value storage plus every optional
// capability the registry and the serializer look for. Embed it, or use it
// directly as the creator result for declaration-only classes.
type Base struct {
	reg  *Registry
	typ  string
	keys []string

	values      map[string]any
	accessors   map[string]Accessor
	locStrings  map[string]*LocalizableString
	expressions map[string]func(obj Object, res any)
	loading     int
	locale      string

	owner             Object
	ownerPropertyName string
}

var (
	_ Object             = (*Base)(nil)
	_ FieldAccessor      = (*Base)(nil)
	_ CustomPropertyHost = (*Base)(nil)
	_ ArrayCreator       = (*Base)(nil)
	_ LocalizableHost    = (*Base)(nil)
	_ JSONLoader         = (*Base)(nil)
	_ LoadingState       = (*Base)(nil)
	_ ExpressionHost     = (*Base)(nil)
	_ OwnedItem          = (*Base)(nil)
)

// NewBase returns an empty object of class typ described by reg (Default()
// when nil).
func NewBase(reg *Registry, typ string) *Base {
	if reg == nil {
		reg = Default()
	}
	return &Base{
		reg:         reg,
		typ:         typ,
		values:      map[string]any{},
		accessors:   map[string]Accessor{},
		locStrings:  map[string]*LocalizableString{},
		expressions: map[string]func(Object, any){},
	}
}

func (b *Base) GetType() string { return b.typ }

// Registry returns the registry describing b.
func (b *Base) Registry() *Registry { return b.reg }

// GetPropertyValue reads the raw storage. Missing and nil values yield
// defaultValue.
func (b *Base) GetPropertyValue(name string, defaultValue any) any {
	if v, ok := b.values[name]; ok && v != nil {
		return v
	}
	return defaultValue
}

// SetPropertyValue writes the raw storage. Assigning an array to a key that
// holds an *Array refills that array in place. nil removes the key.
func (b *Base) SetPropertyValue(name string, value any) {
	if value == nil {
		if _, ok := b.values[name]; ok {
			delete(b.values, name)
			b.keys = slices.DeleteFunc(b.keys, func(k string) bool { return k == name })
		}
		return
	}
	if cur, ok := b.values[name].(*Array); ok && cur != nil {
		if nv, same := value.(*Array); same && nv == cur {
			return
		}
		if items, ok := arrayItems(value); ok {
			cur.Splice(0, cur.Len(), items...)
			return
		}
	}
	b.store(name, value)
}

func (b *Base) store(name string, value any) {
	if _, ok := b.values[name]; !ok {
		b.keys = append(b.keys, name)
	}
	b.values[name] = value
}

// Keys returns the stored keys in the order they were first written.
func (b *Base) Keys() []string {
	return slices.Clone(b.keys)
}

// Field resolves instance-defined properties and the localizable properties
// of b's class. A localizable property yields its text; its serialization
// property yields the *LocalizableString itself.
func (b *Base) Field(name string) (any, bool) {
	if acc, ok := b.accessors[name]; ok {
		if acc.Get == nil {
			return nil, true
		}
		return acc.Get(), true
	}
	if p := b.localizableProp(name); p != nil {
		if p.Name == name {
			text := b.locString(p.Name).Text()
			if text == "" {
				return p.GetDefaultValue(b), true
			}
			return text, true
		}
		return b.locString(p.Name), true
	}
	return nil, false
}

// SetField writes instance-defined and localizable properties. It returns
// false for names that belong to the raw storage.
func (b *Base) SetField(name string, value any) bool {
	if acc, ok := b.accessors[name]; ok {
		if acc.Set != nil {
			acc.Set(value)
		}
		return true
	}
	if p := b.localizableProp(name); p != nil {
		if p.Name == name {
			b.locString(p.Name).SetText(toString(value))
		} else {
			b.locString(p.Name).SetJSON(value)
		}
		return true
	}
	return false
}

// localizableProp finds the declared localizable property that name or its
// serialization property refers to.
func (b *Base) localizableProp(name string) *Property {
	for _, p := range b.reg.GetProperties(b.typ) {
		if !p.IsLocalizable() || p.SerializationProperty == "" || p.IsCustom {
			continue
		}
		if p.Name == name || p.SerializationProperty == name {
			return p
		}
	}
	return nil
}

// HasProperty reports whether name is already served by b: an instance
// accessor or a property b's own class declares.
func (b *Base) HasProperty(name string) bool {
	if _, ok := b.accessors[name]; ok {
		return true
	}
	if b.localizableProp(name) != nil {
		return true
	}
	p := b.reg.FindProperty(b.typ, name)
	return p != nil && !p.IsCustom
}

func (b *Base) DefineProperty(name string, acc Accessor) {
	b.accessors[name] = acc
}

// CreateNewArray stores a new *Array under name, replacing any previous value.
func (b *Base) CreateNewArray(name string, onPush, onRemove func(item any, index int)) *Array {
	arr := NewArray(onPush, onRemove)
	b.store(name, arr)
	return arr
}

func (b *Base) locString(name string) *LocalizableString {
	ls, ok := b.locStrings[name]
	if !ok {
		ls = NewLocalizableString()
		ls.SetLocale(b.locale)
		b.locStrings[name] = ls
	}
	return ls
}

func (b *Base) CreateCustomLocalizableObj(name string) LocalizableValue {
	return b.locString(name)
}

// GetLocalizableString returns the localizable string of a property,
// creating it on first use.
func (b *Base) GetLocalizableString(name string) LocalizableValue {
	return b.locString(name)
}

func (b *Base) GetLocalizableStringText(name string) string {
	return b.locString(name).Text()
}

func (b *Base) SetLocalizableStringText(name, text string) {
	b.locString(name).SetText(text)
}

// SetLocale switches every localizable string of b to locale.
func (b *Base) SetLocale(locale string) {
	b.locale = locale
	for _, ls := range b.locStrings {
		ls.SetLocale(locale)
	}
}

func (b *Base) StartLoadingFromJSON(map[string]any) { b.loading++ }

func (b *Base) EndLoadingFromJSON() {
	if b.loading > 0 {
		b.loading--
	}
}

func (b *Base) IsLoadingFromJSON() bool { return b.loading > 0 }

func (b *Base) AddExpressionProperty(name string, onExecute func(obj Object, res any)) {
	b.expressions[name] = onExecute
}

// RunExpression hands the result of evaluating the expression property name
// to its callback. It reports whether a callback was registered.
func (b *Base) RunExpression(name string, res any) bool {
	fn, ok := b.expressions[name]
	if !ok {
		return false
	}
	fn(b, res)
	return true
}

func (b *Base) SetOwner(owner Object, propertyName string) {
	b.owner = owner
	b.ownerPropertyName = propertyName
}

// Owner returns the object and property b was added to, if any.
func (b *Base) Owner() (Object, string) { return b.owner, b.ownerPropertyName }

// Get reads a property the way accessors on a generated type would: instance
// fields first, then storage with the declared default.
func (b *Base) Get(name string) any {
	if v, ok := b.Field(name); ok {
		return v
	}
	var def any
	if p := b.reg.FindProperty(b.typ, name); p != nil {
		def = p.GetDefaultValue(b)
	}
	return b.GetPropertyValue(name, def)
}

// Set writes a property, letting its OnSettingValue hook adjust the value.
func (b *Base) Set(name string, value any) {
	if p := b.reg.FindProperty(b.typ, name); p != nil {
		value = p.SettingValue(b, value)
	}
	writeField(b, name, value)
}
