// Package metrics exposes Prometheus counters for the security relevant
// operations of the service
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docdrop"

// Collector owns its own registry so that several instances (one per test
// router for example) never collide on registration
type Collector struct {
	registry *prometheus.Registry

	TokensIssued   *prometheus.CounterVec
	TokensRejected *prometheus.CounterVec
	Uploads        *prometheus.CounterVec
	Downloads      *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Number of signed tokens issued",
		}, []string{"purpose"}),
		TokensRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_rejected_total",
			Help:      "Number of tokens that failed verification",
		}, []string{"purpose", "reason"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Number of upload attempts",
		}, []string{"status"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Number of download link redemptions",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.TokensIssued,
		c.TokensRejected,
		c.Uploads,
		c.Downloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
