package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics
var (
	// DispatchTotal counts requests handed to an agent endpoint ("sse", "mcp") or rejected ("not_found").
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_router_dispatch_total",
			Help: "Requests dispatched by endpoint",
		},
		[]string{"endpoint"},
	)

	// OriginDecisions counts CORS origin decisions: "echo" for allow-listed origins, "wildcard" otherwise.
	OriginDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_router_origin_decisions_total",
			Help: "Access-Control-Allow-Origin decisions by outcome",
		},
		[]string{"decision"},
	)
)

// Upstream metrics
var (
	// UpstreamErrors counts failed round trips to the browser backend by endpoint.
	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_router_upstream_errors_total",
			Help: "Failed requests to the MCP backend by endpoint",
		},
		[]string{"endpoint"},
	)

	// UpstreamDuration tracks time to first response byte from the backend. SSE streams are
	// long lived, so this measures header latency, not stream length.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_router_upstream_response_seconds",
			Help:    "Time until the MCP backend returned response headers",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	// OpenStreams tracks SSE responses currently being relayed.
	OpenStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcp_router_open_sse_streams",
			Help: "SSE streams currently relayed to clients",
		},
	)
)

// Decision labels for OriginDecisions.
const (
	DecisionEcho     = "echo"
	DecisionWildcard = "wildcard"
)

// Endpoint labels.
const (
	EndpointSSE      = "sse"
	EndpointMCP      = "mcp"
	EndpointNotFound = "not_found"
)
