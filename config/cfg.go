package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"containcss/theme"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// BuildConfig drives build and list commands, command line flags are
	// superimposed on it.
	BuildConfig struct {
		Input     string       `yaml:"input" sanitize:"assure_file_access"`
		Output    string       `yaml:"output"`
		Content   []string     `yaml:"content" validate:"dive,required"`
		Raw       []string     `yaml:"raw"`
		Safelist  []string     `yaml:"safelist" validate:"dive,required"`
		EmitAll   bool         `yaml:"emit_all"`
		Prefix    string       `yaml:"prefix"`
		Important bool         `yaml:"important"`
		Style     string       `yaml:"style" validate:"required,oneof=expanded compact"`
		Theme     theme.Config `yaml:"theme"`
	}

	// Config is complete program configuration.
	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Build     BuildConfig    `yaml:"build"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// decode applies YAML document on top of cfg. Unknown fields are errors so
// typos in configuration do not go unnoticed.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return nil
}

// check sanitizes and validates fully assembled configuration.
func check(cfg *Config) error {
	if err := gencfg.Sanitize(cfg); err != nil {
		return fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(additionalChecks)); err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	return nil
}

// LoadConfiguration expands embedded template into defaults and, when path is
// given, decodes that file on top of them. Result is checked once, after all
// layers are applied.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	defaults, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg := &Config{}
	if err := decode(defaults, cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file '%s': %w", path, err)
		}
	}

	if err := check(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

// Dump serializes actual configuration, theme tokens keep their order.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
