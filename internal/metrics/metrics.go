// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequisicoesHTTP = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lavanderia_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	DuracaoHTTP = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lavanderia_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	DemandasCriadas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lavanderia_demandas_criadas_total",
		Help: "Demands created.",
	})

	TransicoesStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lavanderia_transicoes_status_total",
		Help: "Demand status transitions.",
	}, []string{"de", "para"})

	EmailsEnviados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lavanderia_emails_enviados_total",
		Help: "Outbound emails by kind and result.",
	}, []string{"tipo", "resultado"})

	LimitesExcedidos = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lavanderia_rate_limit_rejeicoes_total",
		Help: "Requests rejected with 429, by limiter.",
	}, []string{"limitador"})
)
