package surveymeta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/surveymeta/i18n"
)

// JSON error types (exported consts for IDE completion and type safety by convention)
const (
	ErrorUnknownProperty       = i18n.UnknownProperty
	ErrorMissingTypeProperty   = i18n.MissingTypeProperty
	ErrorIncorrectTypeProperty = i18n.IncorrectTypeProperty
	ErrorRequiredProperty      = i18n.RequiredProperty
	ErrorRequiredArrayProperty = i18n.ArrayProperty
)

// JSONError is one diagnostic recorded while loading JSON into objects.
type JSONError struct {
	Type        string // One of the Error* constants.
	Message     string
	Description string // Optional: the available properties or types.

	PropertyName  string
	ClassName     string
	BaseClassName string

	// At and End are the source offsets taken from the "pos" entry of the
	// offending JSON object (-1 when unknown).
	At  int
	End int
	// Path is the JSON Pointer of the offending JSON object.
	Path string

	JSONObj any
	Element Object
}

func newJSONError(typ, message string) *JSONError {
	return &JSONError{Type: typ, Message: message, At: -1, End: -1}
}

// FullDescription returns the message followed by the description.
func (e *JSONError) FullDescription() string {
	if e.Description == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Description
}

func (e *JSONError) Error() string {
	if e.Path == "" {
		return e.Type + ": " + e.Message
	}
	return fmt.Sprintf("%s at %s: %s", e.Type, e.Path, e.Message)
}

func newUnknownPropertyError(reg *Registry, propertyName, className string) *JSONError {
	e := newJSONError(ErrorUnknownProperty, i18n.T(i18n.UnknownProperty, map[string]string{
		"property": propertyName,
		"class":    className,
	}))
	e.PropertyName = propertyName
	e.ClassName = className
	if c := reg.FindClass(className); c != nil {
		props := c.GetAllProperties()
		names := make([]string, len(props))
		for i, p := range props {
			names[i] = p.Name
		}
		e.Description = i18n.T(i18n.AvailableProperties, map[string]string{"list": strings.Join(names, ", ")})
	}
	return e
}

func newMissingTypeErrorBase(reg *Registry, typ, propertyName, baseClassName string) *JSONError {
	e := newJSONError(typ, i18n.T(typ, map[string]string{"property": propertyName}))
	e.PropertyName = propertyName
	e.BaseClassName = baseClassName
	types := reg.GetChildrenClasses(baseClassName, true)
	names := make([]string, len(types))
	for i, c := range types {
		names[i] = "'" + c.Name + "'"
	}
	e.Description = i18n.T(i18n.AvailableTypes, map[string]string{"list": strings.Join(names, ", ")})
	return e
}

func newMissingTypeError(reg *Registry, propertyName, baseClassName string) *JSONError {
	return newMissingTypeErrorBase(reg, ErrorMissingTypeProperty, propertyName, baseClassName)
}

func newIncorrectTypeError(reg *Registry, propertyName, baseClassName string) *JSONError {
	return newMissingTypeErrorBase(reg, ErrorIncorrectTypeProperty, propertyName, baseClassName)
}

func newRequiredPropertyError(propertyName, className string) *JSONError {
	e := newJSONError(ErrorRequiredProperty, i18n.T(i18n.RequiredProperty, map[string]string{
		"property": propertyName,
		"class":    className,
	}))
	e.PropertyName = propertyName
	e.ClassName = className
	return e
}

func newRequiredArrayPropertyError(propertyName, className string) *JSONError {
	e := newJSONError(ErrorRequiredArrayProperty, i18n.T(i18n.ArrayProperty, map[string]string{
		"property": propertyName,
		"class":    className,
	}))
	e.PropertyName = propertyName
	e.ClassName = className
	return e
}

// JSONErrors is a collection of JSON errors that implements error.
type JSONErrors []*JSONError

// Error summarizes the first few errors.
func (es JSONErrors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(es)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		e := es[i]
		// e.g. unknownproperty 'foo' at /pages/0
		fmt.Fprintf(b, "%s '%s'", e.Type, e.PropertyName)
		if e.Path != "" {
			fmt.Fprintf(b, " at %s", e.Path)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// OfType returns the errors of the given type.
func (es JSONErrors) OfType(typ string) JSONErrors {
	var out JSONErrors
	for _, e := range es {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// AsJSONErrors extracts JSONErrors from an error using errors.As internally.
func AsJSONErrors(err error) (JSONErrors, bool) {
	if err == nil {
		return nil, false
	}
	var es JSONErrors
	if errors.As(err, &es) {
		return es, true
	}
	return nil, false
}
