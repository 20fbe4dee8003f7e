// Package metrics exports engine and HTTP counters to Prometheus.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tartampluch/go-sched/internal/engine"
)

const namespace = "sched"

// PromRecorder implements engine.Recorder on Prometheus collectors.
type PromRecorder struct {
	blocks    *prometheus.CounterVec
	degraded  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var _ engine.Recorder = (*PromRecorder)(nil)

// NewPromRecorder registers the collectors on reg. A nil registerer defaults
// to the global one. Collectors registered earlier are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	blocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_generated_total",
		Help:      "Schedule blocks generated, by outcome",
	}, []string{"outcome"})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_degraded_total",
		Help:      "Runtime table read problems, by table and reason",
	}, []string{"table", "reason"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "override_rejected_total",
		Help:      "Override rows that were not applied, by reason",
	}, []string{"reason"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code",
	}, []string{"route", "code"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	var err error
	if blocks, err = register(reg, blocks); err != nil {
		return nil, err
	}
	if degraded, err = register(reg, degraded); err != nil {
		return nil, err
	}
	if rejected, err = register(reg, rejected); err != nil {
		return nil, err
	}
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if durations, err = register(reg, durations); err != nil {
		return nil, err
	}

	return &PromRecorder{
		blocks:    blocks,
		degraded:  degraded,
		rejected:  rejected,
		requests:  requests,
		durations: durations,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// BlockGenerated counts one synthesized block by outcome.
func (p *PromRecorder) BlockGenerated(outcome string) {
	p.blocks.WithLabelValues(outcome).Inc()
}

// TableDegraded counts one degraded runtime table read.
func (p *PromRecorder) TableDegraded(table, reason string) {
	p.degraded.WithLabelValues(table, reason).Inc()
}

// OverrideRejected counts one override row that was not applied.
func (p *PromRecorder) OverrideRejected(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}

// ObserveRequest records one served HTTP request.
func (p *PromRecorder) ObserveRequest(route string, code int, elapsed time.Duration) {
	p.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	p.durations.WithLabelValues(route).Observe(elapsed.Seconds())
}
