package surveymeta

import "github.com/reoring/surveymeta/jsonschema"

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry { return defaultRegistry }

// SetDefault replaces the process-wide registry and returns the previous
// one. Tests use it to isolate registrations.
func SetDefault(r *Registry) *Registry {
	prev := defaultRegistry
	if r == nil {
		r = NewRegistry()
	}
	defaultRegistry = r
	return prev
}

// AddClass registers a class in the default registry.
func AddClass(name string, declarations []any, creator CreatorFunc, parentName string) *Class {
	return Default().AddClass(name, declarations, creator, parentName)
}

func RemoveClass(name string) { Default().RemoveClass(name) }

func FindClass(name string) *Class { return Default().FindClass(name) }

func FindProperty(className, propertyName string) *Property {
	return Default().FindProperty(className, propertyName)
}

func GetProperties(className string) []*Property { return Default().GetProperties(className) }

func AddProperty(className string, declaration any) *Property {
	return Default().AddProperty(className, declaration)
}

func RemoveProperty(className, propertyName string) bool {
	return Default().RemoveProperty(className, propertyName)
}

func AddAlternativeClassName(name, alternativeName string) {
	Default().AddAlternativeClassName(name, alternativeName)
}

func IsDescendantOf(className, ancestorName string) bool {
	return Default().IsDescendantOf(className, ancestorName)
}

// CreateClass instantiates a class of the default registry.
func CreateClass(name string, json map[string]any) Object { return Default().CreateClass(name, json) }

func GenerateSchema(className string) *jsonschema.Schema { return Default().GenerateSchema(className) }
