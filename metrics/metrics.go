// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quickpoll"

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	votes            *prometheus.CounterVec
	voteRejections   *prometheus.CounterVec
	incrementFailure prometheus.Counter
	pollsCreated     prometheus.Counter
	pollsDeleted     *prometheus.CounterVec
	sweepRuns        *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Votes recorded, by correctness",
		}, []string{"result"}),
		voteRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_rejections_total",
			Help:      "Vote submissions rejected, by reason",
		}, []string{"reason"}),
		incrementFailure: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_increment_failures_total",
			Help:      "Votes stored whose option counter could not be incremented",
		}),
		pollsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_created_total",
			Help:      "Polls created",
		}),
		pollsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_deleted_total",
			Help:      "Polls deleted, by cause",
		}, []string{"cause"}),
		sweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Expiry sweeper runs, by outcome",
		}, []string{"status"}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Expiry sweeper run duration",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// VoteRecorded counts a stored vote.
func (m *Metrics) VoteRecorded(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.votes.WithLabelValues(result).Inc()
}

// VoteRejected counts a refused submission. reason is a short fixed label.
func (m *Metrics) VoteRejected(reason string) {
	if m == nil {
		return
	}
	m.voteRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementFailed() {
	if m == nil {
		return
	}
	m.incrementFailure.Inc()
}

func (m *Metrics) PollCreated() {
	if m == nil {
		return
	}
	m.pollsCreated.Inc()
}

// PollsDeleted counts n polls removed for cause ("owner" or "expired").
func (m *Metrics) PollsDeleted(cause string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pollsDeleted.WithLabelValues(cause).Add(float64(n))
}

func (m *Metrics) SweepFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sweepRuns.WithLabelValues(status).Inc()
	m.sweepDuration.Observe(d.Seconds())
}

// ObserveHTTP records one request. route should be the mux pattern, not the
// raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
