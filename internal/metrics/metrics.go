// Package metrics defines the Prometheus collectors for the discovery
// service. Collectors are registered on the default registry and exposed by
// the REST handler at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog Metrics
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidal_catalog_requests_total",
		Help: "The total number of catalog API requests by outcome.",
	}, []string{"outcome"})
	TokenRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tidal_token_refreshes_total",
		Help: "The total number of refresh exchanges performed against the authorization server.",
	})

	// Discovery Metrics
	SeedsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_seeds_skipped_total",
		Help: "The total number of aggregator seeds skipped after an upstream failure.",
	}, []string{"stage"})
	DiscoveryRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_runs_total",
		Help: "The total number of completed discovery pipelines.",
	})
)
