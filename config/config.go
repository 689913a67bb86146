// Package config provides configuration loading and management for semrdf.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/rdfbuilder"
	"github.com/c360studio/semrdf/vocabulary"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
)

// Config represents the complete semrdf configuration
type Config struct {
	Output     OutputConfig      `yaml:"output"`
	Vocabulary vocabulary.Config `yaml:"vocabulary"`
	Store      StoreConfig       `yaml:"store"`
	Resolve    ResolveConfig     `yaml:"resolve"`
	NATS       NATSConfig        `yaml:"nats"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// OutputConfig configures the emitted RDF
type OutputConfig struct {
	// Format is turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Flavor is full, dump or truthy
	Flavor string `yaml:"flavor"`
	// Languages restricts labels, descriptions and aliases (empty = all)
	Languages []string `yaml:"languages"`
	// FlushThreshold is the buffered size in bytes after which output is
	// written out
	FlushThreshold int `yaml:"flush_threshold"`
}

// StoreConfig configures the entity store used to resolve mentions
type StoreConfig struct {
	// Backend is memory, sqlite or nats
	Backend string `yaml:"backend"`
	// Path is the SQLite database file
	Path string `yaml:"path"`
	// Bucket is the JetStream KV bucket
	Bucket string `yaml:"bucket"`
	// CacheTTL is the lifetime of cached revision lookups (0 = no cache)
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ResolveConfig configures mention resolution
type ResolveConfig struct {
	// Disabled turns stub and redirect resolution off
	Disabled bool `yaml:"disabled"`
	// MaxPasses caps redirect passes (0 = no cap)
	MaxPasses int `yaml:"max_passes"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
}

// MetricsConfig configures metrics output
type MetricsConfig struct {
	// Textfile receives a Prometheus text snapshot after each run (empty = off)
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:         string(export.FormatTurtle),
			Flavor:         "full",
			FlushThreshold: 64 * 1024,
		},
		Vocabulary: vocabulary.DefaultConfig(),
		Store: StoreConfig{
			Backend:  BackendMemory,
			Bucket:   "SEMRDF_ENTITIES",
			CacheTTL: 5 * time.Minute,
		},
		Resolve: ResolveConfig{
			MaxPasses: rdfbuilder.DefaultMaxResolvePasses,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := rdfbuilder.ParseFlavor(c.Output.Flavor); err != nil {
		return fmt.Errorf("output.flavor: %w", err)
	}
	if c.Output.FlushThreshold < 0 {
		return fmt.Errorf("output.flush_threshold must not be negative")
	}
	if err := c.Vocabulary.Validate(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case BackendNATS:
		if c.NATS.URL == "" {
			return fmt.Errorf("nats.url is required for the nats backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of memory, sqlite, nats (got %q)", c.Store.Backend)
	}
	if c.Store.CacheTTL < 0 {
		return fmt.Errorf("store.cache_ttl must not be negative")
	}
	if c.Resolve.MaxPasses < 0 {
		return fmt.Errorf("resolve.max_passes must not be negative")
	}
	return nil
}

// Format returns the parsed output format. Call Validate first.
func (c *Config) Format() export.Format {
	f, _ := export.ParseFormat(c.Output.Format)
	return f
}

// Flavor returns the parsed output flavor. Call Validate first.
func (c *Config) Flavor() rdfbuilder.Flavor {
	f, _ := rdfbuilder.ParseFlavor(c.Output.Flavor)
	return f
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// applyLayer decodes a YAML file onto config. Only the keys present in the
// file change, so explicit zero values such as max_passes: 0 override
// earlier layers. Maps are merged key by key, lists are replaced.
func applyLayer(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if node.Kind == 0 {
		return nil
	}
	if err := node.Decode(config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). Zero values cannot be told apart from unset fields
// here; file layers go through the Loader, which keeps explicit zeros.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Flavor != "" {
		c.Output.Flavor = other.Output.Flavor
	}
	if len(other.Output.Languages) > 0 {
		c.Output.Languages = other.Output.Languages
	}
	if other.Output.FlushThreshold != 0 {
		c.Output.FlushThreshold = other.Output.FlushThreshold
	}

	// Vocabulary: repositories replace, site and page property maps add up
	if len(other.Vocabulary.Repositories) > 0 {
		c.Vocabulary.Repositories = other.Vocabulary.Repositories
	}
	if other.Vocabulary.LicenseURL != "" {
		c.Vocabulary.LicenseURL = other.Vocabulary.LicenseURL
	}
	c.Vocabulary.SiteLinkBases = mergeMap(c.Vocabulary.SiteLinkBases, other.Vocabulary.SiteLinkBases)
	c.Vocabulary.PagePropertyDefs = mergeMap(c.Vocabulary.PagePropertyDefs, other.Vocabulary.PagePropertyDefs)

	// Store
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Bucket != "" {
		c.Store.Bucket = other.Store.Bucket
	}
	if other.Store.CacheTTL != 0 {
		c.Store.CacheTTL = other.Store.CacheTTL
	}

	// Resolve
	if other.Resolve.MaxPasses != 0 {
		c.Resolve.MaxPasses = other.Resolve.MaxPasses
	}
	if other.Resolve.Disabled {
		c.Resolve.Disabled = true
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}

func mergeMap[V any](dst, src map[string]V) map[string]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	maps.Copy(dst, src)
	return dst
}
