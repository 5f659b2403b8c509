package main

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reoring/surveymeta"
	"github.com/reoring/surveymeta/decl"
	"github.com/reoring/surveymeta/i18n"
	"github.com/reoring/surveymeta/internal/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app is the state shared by the subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	configFile string
	v          *viper.Viper

	cfg    *config.Config
	logger *zap.Logger
	reg    *surveymeta.Registry
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "surveymeta",
		Short: "Survey metadata tooling",
		Long: `surveymeta loads, checks and normalizes survey JSON against registered
class metadata, and exports the metadata as JSON Schema.

Classes come from the bundled survey model plus any declaration files
given with --decl or listed in surveymeta.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./surveymeta.yaml)")
	pf.StringSlice("decl", nil, "class declaration files (YAML or JSON)")
	pf.String("root", "survey", "class of the top-level JSON object")
	pf.String("lang", "en", "language of diagnostics (en, ja)")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("verbose", "v", false, "log registration and diagnostic events")

	a.v = config.NewViper("")
	_ = a.v.BindPFlag("declarations", pf.Lookup("decl"))
	_ = a.v.BindPFlag("root", pf.Lookup("root"))
	_ = a.v.BindPFlag("language", pf.Lookup("lang"))
	_ = a.v.BindPFlag("no_color", pf.Lookup("no-color"))
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newClassesCommand(a))
	rootCmd.AddCommand(newSchemaCommand(a))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newNormalizeCommand(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.NoColor {
		color.NoColor = true
	}
	i18n.SetLanguage(cfg.Language)

	a.logger = zap.NewNop()
	if cfg.Verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			a.logger = l
		}
	}

	a.reg = surveymeta.NewRegistry(surveymeta.WithLogger(a.logger))
	if err := decl.RegisterBuiltin(a.reg); err != nil {
		return fmt.Errorf("builtin classes: %w", err)
	}
	for _, file := range cfg.Declarations {
		d, err := decl.LoadFile(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := decl.Register(a.reg, d); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		a.logger.Debug("declarations loaded", zap.String("file", file), zap.Int("classes", len(d.Classes)))
	}
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			title := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()
			title.Fprint(out, "surveymeta version: ")
			fmt.Fprintln(out, Version)
			title.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			title.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			title.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
