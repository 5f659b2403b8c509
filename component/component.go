// Package component registers custom question types: new classes derived
// from "question" whose instances either wrap one configured question
// (custom) or a list of configured elements (composite).
//
// Registration problems here are programming errors, not bad data, so Add
// reports them as errors instead of collecting them like JSON loading does.
package component

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/surveymeta"
)

var (
	// ErrNameMissing is returned for a configuration without a name.
	ErrNameMissing = errors.New("component: attribute name is missing")
	// ErrAlreadyRegistered is returned when the collection already has a
	// component of that name.
	ErrAlreadyRegistered = errors.New("component: custom question is already registered")
	// ErrClassExists is returned when the registry already has a class of
	// that name.
	ErrClassExists = errors.New("component: class already exists")
)

// ParentClass is the class every component derives from.
const ParentClass = "question"

// Config describes a component.
type Config struct {
	Name          string
	Title         string
	Icon          string
	ShowInToolbox *bool

	// QuestionJSON makes a custom component: the single question it wraps.
	QuestionJSON map[string]any
	// ElementsJSON makes a composite component: the elements it contains.
	ElementsJSON []any

	OnInit            func()
	OnCreated         func(q *Question)
	OnLoaded          func(q *Question)
	OnPropertyChanged func(q *Question, propertyName string, newValue any)
}

// Definition is a registered component.
type Definition struct {
	Name   string
	Config Config
}

// IsComposite reports whether the component is made of several elements.
func (d *Definition) IsComposite() bool { return d.Config.ElementsJSON != nil }

func (d *Definition) onCreated(q *Question) {
	if d.Config.OnCreated != nil {
		d.Config.OnCreated(q)
	}
}

func (d *Definition) onLoaded(q *Question) {
	if d.Config.OnLoaded != nil {
		d.Config.OnLoaded(q)
	}
}

func (d *Definition) onPropertyChanged(q *Question, name string, v any) {
	if d.Config.OnPropertyChanged != nil {
		d.Config.OnPropertyChanged(q, name, v)
	}
}

// Collection holds the components registered into one registry.
type Collection struct {
	reg   *surveymeta.Registry
	items []*Definition

	// OnCreateCustom and OnCreateComposite replace the default question
	// models.
	OnCreateCustom    func(name string, def *Definition) surveymeta.Object
	OnCreateComposite func(name string, def *Definition) surveymeta.Object
	// OnAddingJSON is called before a component is added.
	OnAddingJSON func(name string, isComposite bool)
}

// New returns an empty collection for reg (surveymeta.Default() when nil).
func New(reg *surveymeta.Registry) *Collection {
	if reg == nil {
		reg = surveymeta.Default()
	}
	return &Collection{reg: reg}
}

// Add registers a component and its class.
func (c *Collection) Add(cfg Config) error {
	if cfg.Name == "" {
		return ErrNameMissing
	}
	name := strings.ToLower(cfg.Name)
	if c.Get(name) != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	if c.reg.FindClass(name) != nil {
		return fmt.Errorf("%w: %q", ErrClassExists, name)
	}
	def := &Definition{Name: name, Config: cfg}
	c.reg.AddClass(name, nil, func(json map[string]any) surveymeta.Object {
		qname, _ := json["name"].(string)
		return c.CreateQuestion(qname, def)
	}, ParentClass)
	if cfg.OnInit != nil {
		cfg.OnInit()
	}
	if c.OnAddingJSON != nil {
		c.OnAddingJSON(name, def.IsComposite())
	}
	c.items = append(c.items, def)
	c.reg.Logger().Debug("component added", zap.String("name", name), zap.Bool("composite", def.IsComposite()))
	return nil
}

// Items returns the registered components in registration order.
func (c *Collection) Items() []*Definition {
	out := make([]*Definition, len(c.items))
	copy(out, c.items)
	return out
}

// Get finds a component by (lowercase) name.
func (c *Collection) Get(name string) *Definition {
	name = strings.ToLower(name)
	for _, d := range c.items {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Clear removes every component and its class.
func (c *Collection) Clear() {
	for _, d := range c.items {
		c.reg.RemoveClass(d.Name)
	}
	c.items = nil
}

// CreateQuestion builds the question model of a component.
func (c *Collection) CreateQuestion(name string, def *Definition) surveymeta.Object {
	if def.IsComposite() {
		if c.OnCreateComposite != nil {
			return c.OnCreateComposite(name, def)
		}
	} else if c.OnCreateCustom != nil {
		return c.OnCreateCustom(name, def)
	}
	return NewQuestion(c.reg, name, def)
}
