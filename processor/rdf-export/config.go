package rdfexport

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semstreams/component"
)

// rdfExportSchema defines the configuration schema.
var rdfExportSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the rdf-export component.
type Config struct {
	Ports        *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	ConsumerName string                `json:"consumer_name" schema:"type:string,description:Durable JetStream consumer name,category:advanced,default:rdf-export"`

	Format string `json:"format" schema:"type:string,description:RDF serialization format (turtle/ntriples/jsonld),category:basic,default:turtle"`
	Flavor string `json:"flavor" schema:"type:string,description:Output flavor (full/truthy/dump),category:basic,default:full"`

	// MaxResolvePasses caps redirect passes per document (0 = no cap).
	MaxResolvePasses int `json:"max_resolve_passes" schema:"type:int,description:Redirect passes per document (0 = no cap),category:advanced,default:64"`

	MaxDeliver int    `json:"max_deliver" schema:"type:int,description:Deliveries before a record is dropped,category:advanced,default:3"`
	AckWait    string `json:"ack_wait" schema:"type:string,description:Ack deadline per delivery,category:advanced,default:10s"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Ports != nil {
		if len(c.Ports.Inputs) == 0 || c.Ports.Inputs[0].Subject == "" {
			return fmt.Errorf("an input port with a subject is required")
		}
		if c.Ports.Inputs[0].StreamName == "" {
			return fmt.Errorf("input port %s needs a stream_name", c.Ports.Inputs[0].Name)
		}
		if len(c.Ports.Outputs) == 0 || c.Ports.Outputs[0].Subject == "" {
			return fmt.Errorf("an output port with a subject is required")
		}
	}
	if c.Format != "" {
		if _, err := export.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	if c.Flavor != "" {
		if _, err := rdfbuilder.ParseFlavor(c.Flavor); err != nil {
			return err
		}
	}
	if c.MaxResolvePasses < 0 {
		return fmt.Errorf("max_resolve_passes must not be negative")
	}
	if c.MaxDeliver < 0 {
		return fmt.Errorf("max_deliver must not be negative")
	}
	if c.AckWait != "" {
		d, err := time.ParseDuration(c.AckWait)
		if err != nil {
			return fmt.Errorf("invalid ack_wait: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("ack_wait must be positive")
		}
	}
	return nil
}

// GetFormat returns the configured format, defaulting to Turtle.
func (c *Config) GetFormat() export.Format {
	if f, err := export.ParseFormat(c.Format); err == nil {
		return f
	}
	return export.FormatTurtle
}

// GetFlavor returns the configured flavor, defaulting to full.
func (c *Config) GetFlavor() rdfbuilder.Flavor {
	if f, err := rdfbuilder.ParseFlavor(c.Flavor); err == nil {
		return f
	}
	return rdfbuilder.FlavorFull
}

// GetConsumerName returns the durable consumer name with a default fallback.
func (c *Config) GetConsumerName() string {
	if c.ConsumerName != "" {
		return c.ConsumerName
	}
	return "rdf-export"
}

// GetMaxDeliver returns the redelivery limit with a default fallback.
func (c *Config) GetMaxDeliver() int {
	if c.MaxDeliver > 0 {
		return c.MaxDeliver
	}
	return 3
}

// GetAckWait returns the ack deadline with a default fallback.
func (c *Config) GetAckWait() time.Duration {
	if d, err := time.ParseDuration(c.AckWait); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

// subjects resolves the stream and subjects from the port definitions.
func (c *Config) subjects() (inputStream, inputSubject, outputSubject string) {
	inputStream = "ENTITIES"
	inputSubject = "entities.json.>"
	outputSubject = "entities.rdf"

	if c.Ports != nil {
		if len(c.Ports.Inputs) > 0 {
			inputSubject = c.Ports.Inputs[0].Subject
			inputStream = c.Ports.Inputs[0].StreamName
		}
		if len(c.Ports.Outputs) > 0 {
			outputSubject = c.Ports.Outputs[0].Subject
		}
	}
	return inputStream, inputSubject, outputSubject
}

// DefaultConfig returns the default configuration for rdf-export.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "entities_in",
					Type:        "jetstream",
					Subject:     "entities.json.>",
					StreamName:  "ENTITIES",
					Required:    true,
					Description: "Wikibase entity JSON records",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "rdf_out",
					Type:        "jetstream",
					Subject:     "entities.rdf",
					Required:    true,
					Description: "One RDF document per entity record",
				},
			},
		},
		ConsumerName:     "rdf-export",
		Format:           "turtle",
		Flavor:           "full",
		MaxResolvePasses: rdfbuilder.DefaultMaxResolvePasses,
		MaxDeliver:       3,
		AckWait:          "10s",
	}
}
