package config

import (
	"fmt"
	"os"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/generator"
	"github.com/rs/zerolog"
	mcp "github.com/viant/mcp"
	"gopkg.in/yaml.v3"
)

// Group holds items either inline or behind a URL pointing at a YAML list.
type Group[T any] struct {
	URL   string `yaml:"url,omitempty" json:"url,omitempty" short:"u" long:"url" description:"url"`
	Items []T    `yaml:"items,omitempty" json:"items,omitempty" short:"i" long:"items" description:"items"`
}

// IsEmpty reports whether the group neither lists items nor points at a URL.
func (g *Group[T]) IsEmpty() bool {
	return g == nil || (len(g.Items) == 0 && g.URL == "")
}

// Config describes where the schema stub, tool descriptions, policies and
// entities live, and how tool descriptions are encoded.
type Config struct {
	// Stub is the location of the schema stub (.cedarschema or .json).
	Stub string `yaml:"stub,omitempty" json:"stub,omitempty"`
	// Tools is the location of the tool descriptions (tools/list result).
	Tools     string    `yaml:"tools,omitempty" json:"tools,omitempty"`
	Policies  string    `yaml:"policies,omitempty" json:"policies,omitempty"`
	Entities  string    `yaml:"entities,omitempty" json:"entities,omitempty"`
	LogLevel  string    `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	Generator Generator `yaml:"generator,omitempty" json:"generator,omitempty"`
	// Include restricts the compiled tools to names matching any pattern.
	Include []string                   `yaml:"include,omitempty" json:"include,omitempty"`
	MCP     *Group[*mcp.ClientOptions] `yaml:"mcp,omitempty" json:"mcp,omitempty"`
	// Builtins enables Fluxor builtin action services by name pattern.
	Builtins []string `yaml:"builtins,omitempty" json:"builtins,omitempty"`
}

// Generator mirrors generator.Config. Annotations are kept when
// KeepAnnotations is set.
type Generator struct {
	IncludeOutputs    bool `yaml:"includeOutputs,omitempty" json:"includeOutputs,omitempty"`
	ObjectsAsRecords  bool `yaml:"objectsAsRecords,omitempty" json:"objectsAsRecords,omitempty"`
	KeepAnnotations   bool `yaml:"keepAnnotations,omitempty" json:"keepAnnotations,omitempty"`
	FlattenNamespaces bool `yaml:"flattenNamespaces,omitempty" json:"flattenNamespaces,omitempty"`
	NumbersAsDecimal  bool `yaml:"numbersAsDecimal,omitempty" json:"numbersAsDecimal,omitempty"`
}

// Config converts the options into a generator configuration.
func (g Generator) Config() generator.Config {
	return generator.Config{
		IncludeOutputs:    g.IncludeOutputs,
		ObjectsAsRecords:  g.ObjectsAsRecords,
		EraseAnnotations:  !g.KeepAnnotations,
		FlattenNamespaces: g.FlattenNamespaces,
		NumbersAsDecimal:  g.NumbersAsDecimal,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
		}
	}
	for i, pattern := range c.Include {
		if pattern == "" {
			return fmt.Errorf("include[%d]: empty pattern", i)
		}
	}
	if c.MCP != nil {
		if len(c.MCP.Items) > 0 && c.MCP.URL != "" {
			return fmt.Errorf("mcp: items and url are mutually exclusive")
		}
		for i, item := range c.MCP.Items {
			if item == nil {
				return fmt.Errorf("mcp.items[%d]: empty client options", i)
			}
		}
	}
	return nil
}
