package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bittranspose_requests_total",
			Help: "Total transform requests by operation and HTTP status.",
		}, []string{"op", "code"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bittranspose_bytes_total",
			Help: "Bytes read and written by successful transforms.",
		}, []string{"op", "direction"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bittranspose_request_duration_seconds",
			Help:    "Latency of transform requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.requests, m.bytes, m.latency)
	return m
}
