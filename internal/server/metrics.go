package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	mutations *prometheus.CounterVec
	captions  prometheus.Gauge
}

// each server owns its registry so tests can build many
func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "captioner_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "captioner_store_mutations_total",
			Help: "Successful caption store mutations by operation",
		}, []string{"op"}),
		captions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "captioner_captions",
			Help: "Captions in the current session",
		}),
	}
}
