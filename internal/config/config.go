package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up by the CLI.
const DefaultFileName = "inspector.yaml"

// Defaults applied to missing configuration values.
const (
	DefaultTag         = "inspect"
	DefaultOutput      = "zz_generated.inspector.go"
	DefaultServiceName = "inspector"
)

var ErrCfgBytesEmpty = errors.New("config bytes is empty")

// validation errors
var (
	ErrNoPackages = errors.New("no packages to inspect")
	ErrInvalidTag = errors.New("annotation tag is empty or malformed")
	ErrBadOutput  = errors.New("output must be a .go file name without directories")
)

// Config describes what the inspector loads and generates.
type Config struct {
	// Packages are go/packages patterns, for example "./...".
	Packages []string `yaml:"packages"`
	// Dir is the directory the patterns are resolved in.
	Dir string `yaml:"dir"`
	// Tag is the annotation marker (struct tag key).
	Tag string `yaml:"tag"`
	// Interfaces are qualified names of interfaces declared outside the
	// inspected packages, for example "fmt.Stringer".
	Interfaces []string `yaml:"interfaces"`
	// ConstructorPrefixes select constructor functions by name.
	ConstructorPrefixes []string `yaml:"constructor_prefixes"`
	// Types limits inspection to the listed type names.
	Types []string `yaml:"types"`
	// Output is the name of the generated file written to every package.
	Output  string  `yaml:"output"`
	Tracing Tracing `yaml:"tracing"`
}

// Tracing configures the OTLP trace exporter.
type Tracing struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Packages: []string{"./..."}}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	cfgBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := FromBytes(cfgBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}

	return cfg, nil
}

// FromBytes parses YAML-encoded configuration, fills in defaults and
// validates the result.
func FromBytes(cfgBytes []byte) (*Config, error) {
	if len(cfgBytes) == 0 {
		return nil, ErrCfgBytesEmpty
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(cfgBytes, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling failed: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Tag == "" {
		c.Tag = DefaultTag
	}
	if len(c.ConstructorPrefixes) == 0 {
		c.ConstructorPrefixes = []string{"New", "new"}
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
}

// Validate checks the configuration for values the inspector cannot work with.
func (c *Config) Validate() error {
	var err error

	if len(c.Packages) == 0 {
		err = errors.Join(err, ErrNoPackages)
	}

	if strings.TrimSpace(c.Tag) == "" || strings.ContainsAny(c.Tag, " :\"") {
		err = errors.Join(err, fmt.Errorf("%w: '%s'", ErrInvalidTag, c.Tag))
	}

	if c.Output != filepath.Base(c.Output) || filepath.Ext(c.Output) != ".go" ||
		strings.HasSuffix(c.Output, "_test.go") {
		err = errors.Join(err, fmt.Errorf("%w: '%s'", ErrBadOutput, c.Output))
	}

	return err
}
