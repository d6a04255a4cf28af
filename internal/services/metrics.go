package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editzen_ai_requests_total",
		Help: "Generative backend operations by outcome",
	}, []string{"operation", "outcome"})

	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "editzen_ai_request_duration_seconds",
		Help:    "Latency of generative backend operations, including image fetch",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"operation"})
)

const (
	outcomeOK         = "ok"
	outcomeEmpty      = "empty"
	outcomeValidation = "validation_error"
	outcomeParse      = "parse_error"
	outcomeUpstream   = "upstream_error"
	outcomeOther      = "error"
)

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	var (
		validationErr *ValidationError
		parseErr      *ParseError
		upstreamErr   *UpstreamError
	)
	switch {
	case errors.As(err, &validationErr):
		return outcomeValidation
	case errors.As(err, &parseErr):
		return outcomeParse
	case errors.As(err, &upstreamErr):
		return outcomeUpstream
	default:
		return outcomeOther
	}
}

// observe records one finished operation. Pass a non-empty override to
// label successful-but-notable outcomes such as an empty suggestion list.
func observe(op string, start time.Time, err error, override string) {
	outcome := outcomeOf(err)
	if err == nil && override != "" {
		outcome = override
	}
	aiRequests.WithLabelValues(op, outcome).Inc()
	aiDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
