// Package decl loads class declarations from YAML or JSON documents and
// registers them into a surveymeta.Registry.
//
//	classes:
//	  - name: widget
//	    properties:
//	      - "!label"
//	      - { name: count, type: number, default: 0 }
//	  - name: fancywidget
//	    parent: widget
//	    abstract: true
//	aliases:
//	  - { name: widget, alternative: gadget }
//	components:
//	  - name: fullname
//	    question: { type: text, name: value, title: Full name }
//
// Concrete classes get a creator that returns a *surveymeta.Base. Abstract
// classes have none; with a parent they become custom classes built by the
// nearest concrete ancestor.
package decl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/surveymeta"
	"github.com/reoring/surveymeta/component"
)

// Document is a set of class declarations.
type Document struct {
	Classes []ClassDecl `yaml:"classes" json:"classes" validate:"dive"`
	Aliases []Alias     `yaml:"aliases" json:"aliases" validate:"dive"`

	Components []ComponentDecl `yaml:"components" json:"components" validate:"dive"`
}

// ClassDecl declares one class. Properties hold name strings ("!name:type")
// or option maps in the form accepted by surveymeta.DecodePropertyInfo.
type ClassDecl struct {
	Name       string `yaml:"name" json:"name" validate:"required"`
	Parent     string `yaml:"parent,omitempty" json:"parent,omitempty"`
	Abstract   bool   `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Properties []any  `yaml:"properties" json:"properties" validate:"dive,propdecl"`
}

// Alias makes Alternative resolve to Name.
type Alias struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Alternative string `yaml:"alternative" json:"alternative" validate:"required"`
}

// ComponentDecl declares a custom question component. Question makes a
// single-question component, Elements a composite one.
type ComponentDecl struct {
	Name     string         `yaml:"name" json:"name" validate:"required"`
	Title    string         `yaml:"title,omitempty" json:"title,omitempty"`
	Question map[string]any `yaml:"question,omitempty" json:"question,omitempty"`
	Elements []any          `yaml:"elements,omitempty" json:"elements,omitempty"`
}

// ErrParentCycle is returned when classes of a document inherit from each
// other in a loop.
var ErrParentCycle = errors.New("decl: parent cycle")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("propdecl", func(fl validator.FieldLevel) bool {
		switch d := fl.Field().Interface().(type) {
		case string:
			return strings.TrimPrefix(d, "!") != ""
		case map[string]any:
			name, _ := d["name"].(string)
			return name != ""
		}
		return false
	})
	return v
}

// Validate checks the structure of d.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("decl: invalid document: %w", err)
	}
	return nil
}

// LoadYAML decodes and validates a YAML document.
func LoadYAML(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decl: decode yaml: %w", err)
	}
	return &d, d.Validate()
}

// LoadJSON decodes and validates a JSON document.
func LoadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decl: decode json: %w", err)
	}
	return &d, d.Validate()
}

// LoadFile loads a document, choosing the format by extension (.json, else
// YAML).
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Register adds the classes, aliases and components of d to reg. Classes
// are added after their parents from the same document, so custom classes
// see their ancestors. Components need the "question" class to be
// registered already.
func Register(reg *surveymeta.Registry, d *Document) error {
	ordered, err := parentFirst(d.Classes)
	if err != nil {
		return err
	}
	for _, c := range ordered {
		decls, err := declarations(c)
		if err != nil {
			return err
		}
		var creator surveymeta.CreatorFunc
		if !c.Abstract {
			name := strings.ToLower(c.Name)
			creator = func(map[string]any) surveymeta.Object { return surveymeta.NewBase(reg, name) }
		}
		reg.AddClass(c.Name, decls, creator, c.Parent)
	}
	for _, a := range d.Aliases {
		reg.AddAlternativeClassName(a.Name, a.Alternative)
	}
	if len(d.Components) == 0 {
		return nil
	}
	col := component.New(reg)
	for _, c := range d.Components {
		cfg := component.Config{
			Name:         c.Name,
			Title:        c.Title,
			QuestionJSON: c.Question,
			ElementsJSON: c.Elements,
		}
		if err := col.Add(cfg); err != nil {
			return fmt.Errorf("decl: %w", err)
		}
	}
	return nil
}

func declarations(c ClassDecl) ([]any, error) {
	out := make([]any, 0, len(c.Properties))
	for i, p := range c.Properties {
		switch v := p.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			info, err := surveymeta.DecodePropertyInfo(v)
			if err != nil {
				return nil, fmt.Errorf("decl: class %q property %d: %w", c.Name, i, err)
			}
			out = append(out, info)
		default:
			return nil, fmt.Errorf("decl: class %q property %d: unsupported %T", c.Name, i, p)
		}
	}
	return out, nil
}

func parentFirst(classes []ClassDecl) ([]ClassDecl, error) {
	byName := make(map[string]ClassDecl, len(classes))
	for _, c := range classes {
		byName[strings.ToLower(c.Name)] = c
	}
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	out := make([]ClassDecl, 0, len(classes))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w at %q", ErrParentCycle, name)
		case done:
			return nil
		}
		c, ok := byName[name]
		if !ok {
			return nil
		}
		state[name] = visiting
		if c.Parent != "" {
			if err := visit(strings.ToLower(c.Parent)); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, c)
		return nil
	}
	for _, c := range classes {
		if err := visit(strings.ToLower(c.Name)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
