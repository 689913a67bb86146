package rdfexport

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the rdf-export processor with the given registry. The
// domain collaborators in deps are shared by every instance the registry
// creates; the NATS client and logger come from the registry.
func Register(registry RegistryInterface, deps Dependencies) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "rdf-export",
		Factory:     NewFactory(deps),
		Schema:      rdfExportSchema,
		Type:        "processor",
		Protocol:    "rdf",
		Domain:      "wikibase",
		Description: "Renders Wikibase entity records as RDF documents (Turtle, N-Triples, JSON-LD)",
		Version:     "1.0.0",
	})
}

// NewFactory returns a component factory bound to the domain collaborators
// in deps.
func NewFactory(deps Dependencies) func(json.RawMessage, component.Dependencies) (component.Discoverable, error) {
	return func(rawConfig json.RawMessage, cd component.Dependencies) (component.Discoverable, error) {
		d := deps
		if cd.NATSClient != nil {
			d.NATSClient = cd.NATSClient
		}
		if d.Logger == nil {
			d.Logger = cd.GetLogger()
		}
		c, err := NewFromJSON(rawConfig, d)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// NewFromJSON creates a component from a JSON configuration. Fields the
// configuration leaves out keep their defaults.
func NewFromJSON(rawConfig json.RawMessage, deps Dependencies) (*Component, error) {
	config := DefaultConfig()
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return NewComponent(config, deps)
}
