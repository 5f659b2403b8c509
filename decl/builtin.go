package decl

import (
	"bytes"
	_ "embed"

	"github.com/reoring/surveymeta"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns the bundled survey model: survey, pages, panels, the
// common question types, and itemvalue.
func Builtin() (*Document, error) {
	return LoadYAML(bytes.NewReader(builtinYAML))
}

// RegisterBuiltin registers the bundled survey model into reg.
func RegisterBuiltin(reg *surveymeta.Registry) error {
	d, err := Builtin()
	if err != nil {
		return err
	}
	return Register(reg, d)
}
