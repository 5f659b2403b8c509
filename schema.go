package surveymeta

import (
	"github.com/reoring/surveymeta/jsonschema"
)

// SchemaTitle is the title of generated schema documents.
const SchemaTitle = "Survey JSON schema"

// GenerateSchema produces a draft-07 JSON Schema for className ("survey"
// when empty). Every class reachable through typed properties gets a
// definition; a definition for a class with a parent is an allOf of the
// parent's reference and the class's own properties. It returns nil for an
// unknown class.
func (r *Registry) GenerateSchema(className string) *jsonschema.Schema {
	if className == "" {
		className = "survey"
	}
	c := r.FindClass(className)
	if c == nil {
		return nil
	}
	res := jsonschema.Object()
	res.Schema = jsonschema.Draft07
	res.Title = SchemaTitle
	res.Definitions = map[string]*jsonschema.Schema{
		"locstring": r.generateLocStrClass(),
	}
	r.generateSchemaProperties(c, res, res.Definitions)
	return res
}

// generateLocStrClass lists one string property per locale offered by the
// survey "locale" property, plus "default" and "en".
func (r *Registry) generateLocStrClass() *jsonschema.Schema {
	res := jsonschema.Object()
	res.ID = "locstring"
	locProp := r.FindProperty("survey", "locale")
	if locProp == nil {
		return res
	}
	choices := locProp.GetChoices(nil, nil)
	if choices == nil {
		return res
	}
	locales := []any{"default"}
	hasEn := false
	for _, c := range choices {
		if toString(c) == "en" {
			hasEn = true
		}
	}
	if !hasEn {
		locales = append(locales, "en")
	}
	locales = append(locales, choices...)
	for _, l := range locales {
		if name := toString(l); name != "" {
			res.Properties[name] = &jsonschema.Schema{Type: "string"}
		}
	}
	return res
}

func (r *Registry) generateSchemaProperties(c *Class, target *jsonschema.Schema, defs map[string]*jsonschema.Schema) {
	var required []string
	if c.Name == "question" || c.Name == "panel" {
		target.Properties["type"] = &jsonschema.Schema{Type: "string"}
		required = append(required, "type")
	}
	for _, p := range c.Properties {
		// declared by an ancestor: its definition already carries it
		if c.ParentName != "" && r.FindProperty(c.ParentName, p.Name) != nil {
			continue
		}
		target.Properties[p.Name] = r.generateSchemaProperty(p, defs)
		if p.IsRequired() {
			required = append(required, p.Name)
		}
	}
	if len(required) > 0 {
		target.Required = required
	}
}

func (r *Registry) generateSchemaProperty(p *Property, defs map[string]*jsonschema.Schema) *jsonschema.Schema {
	if p.IsLocalizable() {
		return &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Ref: jsonschema.RefTo("locstring")},
		}}
	}
	res := &jsonschema.Schema{Type: p.SchemaType()}
	if p.HasChoices() {
		if choices := p.GetChoices(nil, nil); len(choices) > 0 {
			res.Enum = choicesValues(choices)
		}
	}
	if ref := p.SchemaRef(); ref != "" {
		if res.Type == "array" {
			if p.ClassName == "string" {
				res.Items = &jsonschema.Schema{Type: p.ClassName}
			} else {
				res.Items = &jsonschema.Schema{Ref: jsonschema.RefTo(p.ClassName)}
			}
		} else {
			res.Ref = jsonschema.RefTo(ref)
		}
		r.generateSchemaClass(p.ClassName, defs)
	}
	if p.BaseClassName != "" {
		used := r.GetChildrenClasses(p.BaseClassName, true)
		if p.BaseClassName == "question" {
			if panel := r.FindClass("panel"); panel != nil {
				used = append(used, panel)
			}
		}
		res.Items = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{}}
		for _, uc := range used {
			res.Items.AnyOf = append(res.Items.AnyOf, &jsonschema.Schema{Ref: jsonschema.RefTo(uc.Name)})
			r.generateSchemaClass(uc.Name, defs)
		}
	}
	return res
}

func (r *Registry) generateSchemaClass(className string, defs map[string]*jsonschema.Schema) {
	if defs[className] != nil {
		return
	}
	c := r.FindClass(className)
	if c == nil {
		return
	}
	res := &jsonschema.Schema{Type: "object", ID: className}
	defs[className] = res
	hasParent := c.ParentName != "" && c.ParentName != "base"
	if hasParent {
		r.generateSchemaClass(c.ParentName, defs)
	}
	own := jsonschema.Object()
	r.generateSchemaProperties(c, own, defs)
	if hasParent {
		res.AllOf = []*jsonschema.Schema{
			{Ref: jsonschema.RefTo(c.ParentName)},
			{Properties: own.Properties},
		}
	} else {
		res.Properties = own.Properties
	}
	res.Required = own.Required
}

// choicesValues takes the "value" of object-shaped choices.
func choicesValues(choices []any) []any {
	out := make([]any, 0, len(choices))
	for _, c := range choices {
		if m, ok := c.(map[string]any); ok {
			if v, ok := m["value"]; ok {
				out = append(out, v)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
