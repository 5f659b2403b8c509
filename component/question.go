package component

import (
	"github.com/reoring/surveymeta"
)

// Question is the default model of a component instance. The wrapped
// question (custom) or elements (composite) are built from the component's
// configuration when the question is created.
type Question struct {
	*surveymeta.Base
	def *Definition

	content  surveymeta.Object
	elements []surveymeta.Object
	// Errors are the problems found while loading the configured JSON.
	Errors surveymeta.JSONErrors
}

// NewQuestion creates a question of component def named name.
func NewQuestion(reg *surveymeta.Registry, name string, def *Definition) *Question {
	q := &Question{Base: surveymeta.NewBase(reg, def.Name), def: def}
	reg.CreateCustomProperties(q)
	if name != "" {
		q.Base.SetPropertyValue("name", name)
	}
	conv := surveymeta.NewJSONObject(reg)
	if def.IsComposite() {
		for _, el := range def.Config.ElementsJSON {
			if obj := createElement(reg, conv, el); obj != nil {
				q.elements = append(q.elements, obj)
			}
		}
	} else if def.Config.QuestionJSON != nil {
		q.content = createElement(reg, conv, def.Config.QuestionJSON)
	}
	q.Errors = conv.Errors
	def.onCreated(q)
	return q
}

func createElement(reg *surveymeta.Registry, conv *surveymeta.JSONObject, v any) surveymeta.Object {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	typ, _ := m["type"].(string)
	obj := reg.CreateClass(typ, m)
	if obj == nil {
		return nil
	}
	conv.ToObject(m, obj)
	return obj
}

// Definition returns the component the question belongs to.
func (q *Question) Definition() *Definition { return q.def }

// Content returns the wrapped question of a custom component.
func (q *Question) Content() surveymeta.Object { return q.content }

// Elements returns the elements of a composite component.
func (q *Question) Elements() []surveymeta.Object { return q.elements }

// EndLoadingFromJSON notifies OnLoaded once the outermost load finishes.
func (q *Question) EndLoadingFromJSON() {
	q.Base.EndLoadingFromJSON()
	if !q.IsLoadingFromJSON() {
		q.def.onLoaded(q)
	}
}

// SetPropertyValue stores a value and notifies OnPropertyChanged outside of
// JSON loading.
func (q *Question) SetPropertyValue(name string, value any) {
	q.Base.SetPropertyValue(name, value)
	if !q.IsLoadingFromJSON() {
		q.def.onPropertyChanged(q, name, value)
	}
}
