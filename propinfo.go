package surveymeta

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// PropertyInfo is the options form of a property declaration. Zero values
// mean "not set" unless noted; pointer fields distinguish an explicit false
// or zero from an absent option.
//
// Map-shaped declarations (from JSON or YAML) use the same keys as the
// mapstructure tags below.
type PropertyInfo struct {
	Name                  string   `mapstructure:"name"`
	Type                  string   `mapstructure:"type"`
	Default               any      `mapstructure:"default"`
	IsRequired            bool     `mapstructure:"isRequired"`
	IsSerializable        *bool    `mapstructure:"isSerializable"`
	IsLightSerializable   *bool    `mapstructure:"isLightSerializable"`
	MaxLength             *int     `mapstructure:"maxLength"`
	DisplayName           string   `mapstructure:"displayName"`
	Category              string   `mapstructure:"category"`
	CategoryIndex         *int     `mapstructure:"categoryIndex"`
	NextToProperty        string   `mapstructure:"nextToProperty"`
	OverridingProperty    string   `mapstructure:"overridingProperty"`
	VisibleIndex          *int     `mapstructure:"visibleIndex"`
	ShowMode              string   `mapstructure:"showMode"`
	MaxValue              any      `mapstructure:"maxValue"`
	MinValue              any      `mapstructure:"minValue"`
	DataList              []string `mapstructure:"dataList"`
	IsDynamicChoices      bool     `mapstructure:"isDynamicChoices"`
	IsBindable            bool     `mapstructure:"isBindable"`
	IsUnique              bool     `mapstructure:"isUnique"`
	UniqueProperty        string   `mapstructure:"uniqueProperty"`
	IsArray               *bool    `mapstructure:"isArray"`
	Visible               *bool    `mapstructure:"visible"`
	ReadOnly              bool     `mapstructure:"readOnly"`
	Choices               []any    `mapstructure:"choices"`
	BaseValue             any      `mapstructure:"baseValue"`
	SerializationProperty string   `mapstructure:"serializationProperty"`
	IsLocalizable         bool     `mapstructure:"isLocalizable"`
	ClassName             string   `mapstructure:"className"`
	BaseClassName         string   `mapstructure:"baseClassName"`
	ClassNamePart         string   `mapstructure:"classNamePart"`
	AlternativeName       string   `mapstructure:"alternativeName"`
	Layout                string   `mapstructure:"layout"`
	DependsOn             []string `mapstructure:"dependsOn"`

	DefaultFunc            func(obj Object) any                          `mapstructure:"-"`
	ChoicesFunc            ChoicesFunc                                   `mapstructure:"-"`
	VisibleIf              func(obj Object) bool                         `mapstructure:"-"`
	OnGetValue             func(obj Object) any                          `mapstructure:"-"`
	OnSetValue             func(obj Object, value any, conv *JSONObject) `mapstructure:"-"`
	OnSettingValue         func(obj Object, value any) any               `mapstructure:"-"`
	OnExecuteExpression    func(obj Object, res any)                     `mapstructure:"-"`
	OnPropertyEditorUpdate func(obj Object, editor any)                  `mapstructure:"-"`
}

// Bool returns a pointer to v, for the optional flags of PropertyInfo.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for the optional numbers of PropertyInfo.
func Int(v int) *int { return &v }

// DecodePropertyInfo decodes a map-shaped declaration. Single strings are
// accepted where lists are expected (for example "dependsOn": "name").
func DecodePropertyInfo(m map[string]any) (PropertyInfo, error) {
	var out PropertyInfo
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(m); err != nil {
		return out, fmt.Errorf("decode property declaration: %w", err)
	}
	return out, nil
}
