package config

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/script-runtime/errors"
)

// Config is the bootstrap configuration for a script runtime.
type Config struct {
	// Root is the directory the source provider serves from.
	Root string `yaml:"root"`

	// Entry is the first module required after startup.
	Entry string `yaml:"entry"`

	// BuiltinPrefix is the reserved id prefix for host modules.
	BuiltinPrefix string `yaml:"builtin_prefix"`

	// Extensions are the recognized source extensions, probed in order.
	Extensions []string `yaml:"extensions"`

	// Namespaces maps namespace markers to mount directories.
	Namespaces map[string]string `yaml:"namespaces"`

	// Aliases maps request prefixes to replacement id prefixes.
	Aliases map[string]string `yaml:"aliases"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Root:          ".",
		Entry:         "main",
		BuiltinPrefix: "builtin:",
		Extensions:    []string{".js"},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidConfig("cannot read config file "+path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a validated Config. Missing fields take
// their defaults; unknown fields are an error.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document is a valid all-defaults config.
		if err.Error() != "EOF" {
			return nil, errors.InvalidConfig("cannot parse config", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints the decoder cannot express.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.InvalidConfig("root must not be empty", nil)
	}
	if c.Entry == "" {
		return errors.InvalidConfig("entry must not be empty", nil)
	}
	if c.BuiltinPrefix == "" {
		return errors.InvalidConfig("builtin_prefix must not be empty", nil)
	}
	if len(c.Extensions) == 0 {
		return errors.InvalidConfig("at least one extension is required", nil)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.InvalidConfig("extension "+strconvQuote(ext)+" must start with a dot", nil)
		}
	}
	for name := range c.Namespaces {
		if name == "" || strings.ContainsAny(name, "/:") {
			return errors.InvalidConfig("invalid namespace name "+strconvQuote(name), nil)
		}
	}
	for prefix := range c.Aliases {
		if prefix == "" {
			return errors.InvalidConfig("alias prefix must not be empty", nil)
		}
	}
	return nil
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}
