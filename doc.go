// Package surveymeta provides:
//
// - A registry of classes described by property declarations (Registry, Class, Property)
// - Custom properties injected into instances at construction (CustomProperties)
// - Conversion of registered objects to plain JSON and back (JSONObject)
// - Error collection instead of failure while loading (JSONError, JSONErrors)
// - JSON Schema generation from the registered classes (Registry.GenerateSchema)
//
// Design policy:
// - Objects are opaque key/value stores (Object); the registry gives each key its meaning.
// - Optional behavior is discovered through small capability interfaces, following Unwrap chains.
// - Loading never stops early; every problem becomes a JSONError.
// - Independent registries can be built with NewRegistry; Default backs the package-level functions.
//
// Typical usage:
//
//	reg := surveymeta.NewRegistry()
//	reg.AddClass("widget", []any{
//		surveymeta.PropertyInfo{Name: "label", Default: ""},
//		surveymeta.PropertyInfo{Name: "count:number", Default: 0},
//	}, func(map[string]any) surveymeta.Object { return surveymeta.NewBase(reg, "widget") }, "")
//
//	w := reg.CreateClass("widget", nil)
//	conv := surveymeta.NewJSONObject(reg)
//	err := conv.Unmarshal([]byte(`{"label":"hi"}`), w)
//	out := conv.ToJSONObject(w, false) // map[label:hi]
package surveymeta
