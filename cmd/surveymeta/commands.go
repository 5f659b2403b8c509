package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/surveymeta"
	"github.com/reoring/surveymeta/internal/ui"
	"github.com/reoring/surveymeta/jsonschema"
)

// errInvalid is returned when an input has diagnostics; they are already
// printed by then.
var errInvalid = errors.New("input is not valid")

func newClassesCommand(a *app) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List registered classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.reg.GetAllClasses()
			if parent != "" {
				if a.reg.FindClass(parent) == nil {
					return fmt.Errorf("unknown class %q", parent)
				}
				names = names[:0]
				for _, c := range a.reg.GetChildrenClasses(parent, false) {
					names = append(names, c.Name)
				}
			}
			tbl := ui.NewTable(cmd.OutOrStdout(), a.cfg.NoColor, "CLASS", "PARENT", "KIND", "PROPERTIES", "REQUIRED")
			for _, name := range names {
				c := a.reg.FindClass(name)
				if c == nil {
					continue
				}
				tbl.AddRow(c.Name, c.ParentName, classKind(c),
					strconv.Itoa(len(c.GetAllProperties())),
					strings.Join(a.reg.GetRequiredProperties(c.Name), ","))
			}
			tbl.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "only list descendants of this class")
	return cmd
}

func classKind(c *surveymeta.Class) string {
	switch {
	case c.Creator != nil:
		return "concrete"
	case c.IsCustom():
		return "custom"
	}
	return "abstract"
}

func newSchemaCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "schema [class]",
		Short: "Export class metadata as JSON Schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			className := a.cfg.Root
			if len(args) == 1 {
				className = args[0]
			}
			s := a.reg.GenerateSchema(className)
			if s == nil {
				return fmt.Errorf("unknown class %q", className)
			}
			data, err := jsonschema.Marshal(s)
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a JSON document against the registered classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, errs, err := a.load(args[0])
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				ui.WriteDiagnostics(cmd.ErrOrStderr(), errs, ui.DiagnosticOptions{
					Name:    args[0],
					Source:  src,
					NoColor: a.cfg.NoColor,
				})
				return errInvalid
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess(args[0]+" is valid", a.cfg.NoColor))
			return nil
		},
	}
}

func newNormalizeCommand(a *app) *cobra.Command {
	var (
		output string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Load a JSON document and write it back in canonical form",
		Long: `normalize loads a document into objects and serializes them again.
Unknown properties are dropped and default values are omitted unless
store_defaults is set. Diagnostics are printed to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, obj, errs, err := a.load(args[0])
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				ui.WriteDiagnostics(cmd.ErrOrStderr(), errs, ui.DiagnosticOptions{
					Name:    args[0],
					Source:  src,
					NoColor: a.cfg.NoColor,
				})
				if strict {
					return errInvalid
				}
			}
			conv := surveymeta.NewJSONObject(a.reg)
			conv.LightSerializing = a.cfg.Light
			data, err := conv.MarshalIndent(obj, a.cfg.StoreDefaults, "  ")
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	f.BoolVar(&strict, "strict", false, "fail instead of writing output when there are diagnostics")
	f.Bool("store-defaults", false, "keep properties that hold their default value")
	f.Bool("light", false, "skip properties excluded from light serialization")
	_ = a.v.BindPFlag("store_defaults", f.Lookup("store-defaults"))
	_ = a.v.BindPFlag("light", f.Lookup("light"))
	return cmd
}

// load reads file and deserializes it into a new instance of the root class.
// JSON syntax errors are returned as err; data problems as errs.
func (a *app) load(file string) ([]byte, surveymeta.Object, surveymeta.JSONErrors, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, nil, err
	}
	obj := a.reg.CreateClass(a.cfg.Root, nil)
	if obj == nil {
		return nil, nil, nil, fmt.Errorf("root class %q cannot be created", a.cfg.Root)
	}
	conv := surveymeta.NewJSONObject(a.reg)
	if err := conv.Unmarshal(src, obj); err != nil {
		errs, ok := surveymeta.AsJSONErrors(err)
		if !ok {
			return nil, nil, nil, fmt.Errorf("%s: %w", file, err)
		}
		a.logger.Debug("document loaded with errors", zap.String("file", file), zap.Int("errors", len(errs)))
		return src, obj, errs, nil
	}
	return src, obj, nil, nil
}

func writeOutput(stdout io.Writer, file string, data []byte) error {
	data = append(data, '\n')
	if file == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(file, data, 0o644)
}
