package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every surveymeta command.
type Config struct {
	// Declarations lists YAML/JSON class declaration files registered on
	// top of the built-in classes.
	Declarations  []string `mapstructure:"declarations" validate:"dive,required"`
	Root          string   `mapstructure:"root" validate:"required"`
	Language      string   `mapstructure:"language" validate:"oneof=en ja"`
	StoreDefaults bool     `mapstructure:"store_defaults"`
	Light         bool     `mapstructure:"light"`
	NoColor       bool     `mapstructure:"no_color"`
	Verbose       bool     `mapstructure:"verbose"`
}

const envPrefix = "SURVEYMETA"

// NewViper returns a viper instance with defaults and env lookup set up.
// When file is empty, surveymeta.yaml is searched in the working directory.
func NewViper(file string) *viper.Viper {
	v := viper.New()

	v.SetDefault("root", "survey")
	v.SetDefault("language", "en")
	v.SetDefault("declarations", []string{})

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("surveymeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (a missing default file is fine) and decodes it.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
