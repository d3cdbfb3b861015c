// Package metrics holds the prometheus collectors for ingestion, graph size, and HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered on the default registry, which /metrics serves.
var (
	// PapersIngested counts AddPaper calls; "replaced" is true when the
	// paper id was already in the graph.
	PapersIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_papers_ingested_total",
			Help: "Total number of paper records ingested into the graph",
		},
		[]string{"replaced"},
	)

	// IngestDuration measures one AddPaper call, lock wait included.
	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "papergraph_ingest_duration_seconds",
			Help:    "Duration of a single paper ingestion",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// GraphNodes tracks live node counts per node kind.
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "papergraph_nodes",
			Help: "Number of nodes in the graph by kind",
		},
		[]string{"kind"},
	)

	// GraphEdges tracks live edge counts per edge kind.
	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "papergraph_edges",
			Help: "Number of edges in the graph by kind",
		},
		[]string{"kind"},
	)

	// HTTPRequestsTotal counts API requests by method, route, and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures API response time.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papergraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)
)
