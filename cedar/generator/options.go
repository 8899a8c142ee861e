package generator

import "github.com/rs/zerolog"

// Config controls how tool descriptions are encoded.
type Config struct {
	// IncludeOutputs adds tool outputs to the action context.
	IncludeOutputs bool `yaml:"includeOutputs,omitempty" json:"includeOutputs,omitempty"`
	// ObjectsAsRecords encodes closed objects as records instead of entities.
	ObjectsAsRecords bool `yaml:"objectsAsRecords,omitempty" json:"objectsAsRecords,omitempty"`
	// EraseAnnotations strips the mcp_* annotations from the stub.
	EraseAnnotations bool `yaml:"eraseAnnotations,omitempty" json:"eraseAnnotations,omitempty"`
	// FlattenNamespaces places every generated type in the stub namespace.
	FlattenNamespaces bool `yaml:"flattenNamespaces,omitempty" json:"flattenNamespaces,omitempty"`
	// NumbersAsDecimal encodes float and number values as decimals.
	NumbersAsDecimal bool `yaml:"numbersAsDecimal,omitempty" json:"numbersAsDecimal,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{EraseAnnotations: true}
}

// Option modifies a generator before it scans the stub.
type Option func(*Generator)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(g *Generator) {
		g.config = cfg
	}
}

// WithIncludeOutputs sets Config.IncludeOutputs.
func WithIncludeOutputs(v bool) Option {
	return func(g *Generator) {
		g.config.IncludeOutputs = v
	}
}

// WithObjectsAsRecords sets Config.ObjectsAsRecords.
func WithObjectsAsRecords(v bool) Option {
	return func(g *Generator) {
		g.config.ObjectsAsRecords = v
	}
}

// WithEraseAnnotations sets Config.EraseAnnotations.
func WithEraseAnnotations(v bool) Option {
	return func(g *Generator) {
		g.config.EraseAnnotations = v
	}
}

// WithFlattenNamespaces sets Config.FlattenNamespaces.
func WithFlattenNamespaces(v bool) Option {
	return func(g *Generator) {
		g.config.FlattenNamespaces = v
	}
}

// WithNumbersAsDecimal sets Config.NumbersAsDecimal.
func WithNumbersAsDecimal(v bool) Option {
	return func(g *Generator) {
		g.config.NumbersAsDecimal = v
	}
}

// WithLogger sets the logger used for generation diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}
