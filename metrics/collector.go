// Package metrics exposes RDF builder progress as Prometheus counters.
package metrics

import (
	"fmt"

	"github.com/c360studio/semrdf/entity"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "semrdf"

// Collector counts builder events. It implements rdfbuilder.Observer and
// registers its counters on its own registry.
type Collector struct {
	registry *prometheus.Registry

	entities  *prometheus.CounterVec
	stubs     *prometheus.CounterVec
	redirects prometheus.Counter
	skipped   prometheus.Counter
	passes    prometheus.Counter
	documents *prometheus.CounterVec
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "entities_total",
			Help:      "Entities written in full, by entity type.",
		}, []string{"type"}),
		stubs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "stubs_total",
			Help:      "Stubs written for mentioned entities, by entity type.",
		}, []string{"type"}),
		redirects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "redirects_total",
			Help:      "Redirects written for mentioned entities.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "mentions_skipped_total",
			Help:      "Mentioned entities left unresolved because they do not exist or lookup failed.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "resolve_passes_total",
			Help:      "Mention resolution passes.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "documents_total",
			Help:      "RDF documents produced, by result.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(c.entities, c.stubs, c.redirects, c.skipped, c.passes, c.documents)
	return c
}

// Registry returns the registry holding the counters.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// EntityAdded implements rdfbuilder.Observer.
func (c *Collector) EntityAdded(t entity.Type) { c.entities.WithLabelValues(string(t)).Inc() }

// StubAdded implements rdfbuilder.Observer.
func (c *Collector) StubAdded(t entity.Type) { c.stubs.WithLabelValues(string(t)).Inc() }

// RedirectAdded implements rdfbuilder.Observer.
func (c *Collector) RedirectAdded() { c.redirects.Inc() }

// MentionSkipped implements rdfbuilder.Observer.
func (c *Collector) MentionSkipped() { c.skipped.Inc() }

// ResolvePass implements rdfbuilder.Observer.
func (c *Collector) ResolvePass() { c.passes.Inc() }

// DocumentDone counts a finished document; failed documents are counted
// separately.
func (c *Collector) DocumentDone(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.documents.WithLabelValues(result).Inc()
}

// WriteTextfile writes a snapshot in the Prometheus text format, for the
// node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
