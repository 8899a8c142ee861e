package mcp

import (
	"sync"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/generator"
	"github.com/cedar-policy/cedar-for-agents-sub000/internal/syncmap"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"
	"github.com/rs/zerolog"
	"github.com/viant/afs"
	protocolclient "github.com/viant/mcp-protocol/client"
)

// Service loads schema stubs, tool descriptions, policies and entities from
// any location afs supports, compiles them into Cedar schemas and authorizes
// tool calls against them. Request generators are cached per stub, tool
// source and encoding options, so a Service can be shared between callers.
type Service struct {
	config        *config.Config
	logger        zerolog.Logger
	fs            afs.Service
	clientHandler protocolclient.Handler

	// guards request generator construction.
	mu         sync.Mutex
	generators *syncmap.Map[*generator.RequestGenerator]
}

// Config returns the effective configuration. Callers must treat it as read-only.
func (s *Service) Config() *config.Config { return s.config }

// Logger returns the service logger.
func (s *Service) Logger() zerolog.Logger { return s.logger }

// Option modifies a service instance before it is initialised.
type Option func(*Service)

// WithConfig sets the configuration. When omitted a zero value config is assumed.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger shared with the generators the service creates.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClient overrides the client handler used for outgoing MCP connections.
func WithClient(handler protocolclient.Handler) Option {
	return func(s *Service) {
		s.clientHandler = handler
	}
}

// WithFS overrides the file system locations are read from and written to.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// New constructs a service and validates its configuration.
func New(opts ...Option) (*Service, error) {
	svc := &Service{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(svc)
	}
	svc.initDefaults()
	if err := svc.config.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) initDefaults() {
	if s.config == nil {
		s.config = &config.Config{}
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.generators == nil {
		s.generators = syncmap.New[*generator.RequestGenerator]()
	}
}
