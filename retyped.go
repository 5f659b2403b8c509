package surveymeta

// Retyped wraps an instance built by an ancestor's creator so that it
// reports the requested class name. The template is captured from the inner
// object at construction time. Every other call is delegated.
type Retyped struct {
	Object
	reportedType     string
	reportedTemplate string
}

// NewRetyped wraps inner so that GetType returns typ.
func NewRetyped(inner Object, typ string) *Retyped {
	tmpl := inner.GetType()
	if t, ok := capability[Templated](inner); ok {
		tmpl = t.GetTemplate()
	}
	return &Retyped{Object: inner, reportedType: typ, reportedTemplate: tmpl}
}

func (r *Retyped) GetType() string { return r.reportedType }

// GetTemplate returns the rendering type of the constructing ancestor.
func (r *Retyped) GetTemplate() string { return r.reportedTemplate }

// Unwrap returns the wrapped instance.
func (r *Retyped) Unwrap() Object { return r.Object }
