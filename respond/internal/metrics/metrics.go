// Package metrics holds the prometheus collectors of the respond service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axisir_respond_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "axisir_respond_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axisir_respond_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// Domain metrics
	IncidentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axisir_respond_incidents_created_total",
			Help: "Total number of incidents created",
		},
	)

	IncidentsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axisir_respond_incidents_closed_total",
			Help: "Total number of incident updates that closed the incident",
		},
	)

	IndicatorsLinked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axisir_respond_indicators_linked_total",
			Help: "Total number of indicators created with a link",
		},
	)

	GroupAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axisir_respond_group_assignments_total",
			Help: "Asset group assignment rows written or removed",
		},
		[]string{"op"},
	)

	GroupListParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axisir_respond_group_list_parse_failures_total",
			Help: "Encoded asset group lists that could not be parsed",
		},
	)

	InvitationsAttached = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axisir_respond_invitations_attached_total",
			Help: "Invitations processed at signup by result",
		},
		[]string{"result"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axisir_respond_event_publish_errors_total",
			Help: "Domain events that failed to publish",
		},
		[]string{"subject"},
	)

	TokensPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "axisir_respond_tokens_pruned_total",
			Help: "Expired whitelist tokens deleted by the pruner",
		},
	)
)
