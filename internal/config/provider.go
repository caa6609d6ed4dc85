package config

import (
	"fmt"
	"log/slog"

	"github.com/project-kessel/attrfilter/internal/attribute"
	"github.com/project-kessel/attrfilter/internal/filter"
)

// Provider constructs all application components from configuration.
// This is the main entry point for building a configured filtering engine.
type Provider struct {
	config *Config

	// Lazily constructed components (cached after first call)
	logger   *slog.Logger
	observer filter.Observer
	engine   *filter.Engine
	mappings []*attribute.Mapping
}

// NewProvider creates a new provider from configuration.
func NewProvider(config *Config) *Provider {
	return &Provider{
		config: config,
	}
}

// Logger returns the configured logger.
func (p *Provider) Logger() *slog.Logger {
	if p.logger == nil {
		p.logger = NewLogger(p.config)
	}
	return p.logger
}

// Observer returns the configured run observer.
func (p *Provider) Observer() (filter.Observer, error) {
	if p.observer != nil {
		return p.observer, nil
	}

	observer, err := NewObserver(p.config, p.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create observer: %w", err)
	}

	p.observer = observer
	return observer, nil
}

// Engine returns the configured filtering engine.
func (p *Provider) Engine() (*filter.Engine, error) {
	if p.engine != nil {
		return p.engine, nil
	}

	observer, err := p.Observer()
	if err != nil {
		return nil, err
	}

	engine, err := NewEngine(p.config.Engine, observer)
	if err != nil {
		return nil, err
	}

	p.engine = engine
	return engine, nil
}

// Mappings returns the configured pre-filter value mappings.
func (p *Provider) Mappings() ([]*attribute.Mapping, error) {
	if p.mappings != nil {
		return p.mappings, nil
	}

	mappings, err := NewMappings(p.config.Engine)
	if err != nil {
		return nil, err
	}

	p.mappings = mappings
	return mappings, nil
}

// ApplyMappings rewrites the attributes the configured mappings target and
// returns the resulting map. Attributes without a mapping pass through
// unchanged.
func (p *Provider) ApplyMappings(attrs attribute.Map) (attribute.Map, error) {
	mappings, err := p.Mappings()
	if err != nil {
		return nil, err
	}

	out := attrs.Clone()
	for _, mapping := range mappings {
		if attr, ok := out[mapping.AttributeID()]; ok {
			out[mapping.AttributeID()] = mapping.Apply(attr)
		}
	}
	return out, nil
}
