package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GTDGit/gtd_storefront/internal/config"
)

type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	httpInfl      *prometheus.GaugeVec
	voucherChecks *prometheus.CounterVec
	submits       *prometheus.CounterVec
	sseClients    prometheus.GaugeFunc
}

// New builds a registry with the Go/process collectors plus the HTTP and
// checkout metrics. sseClients reports the live SSE connection count and
// may be nil.
func New(cfg config.MetricsConfig, sseClients func() int) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	voucherChecks := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "voucher_checks_total"}, []string{"outcome"})
	submits := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "checkout_submits_total"}, []string{"outcome"})
	r.MustRegister(voucherChecks, submits)

	m := &Metrics{
		registry:      r,
		httpReqCnt:    httpReqCnt,
		httpDur:       httpDur,
		httpInfl:      httpInfl,
		voucherChecks: voucherChecks,
		submits:       submits,
	}
	if sseClients != nil {
		m.sseClients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{Namespace: ns, Name: "sse_clients"}, func() float64 {
			return float64(sseClients())
		})
		r.MustRegister(m.sseClients)
	}
	return m
}

// ObserveVoucherCheck counts a finished voucher check by outcome.
func (m *Metrics) ObserveVoucherCheck(outcome string) {
	m.voucherChecks.WithLabelValues(outcome).Inc()
}

// ObserveSubmit counts a checkout submission by outcome.
func (m *Metrics) ObserveSubmit(outcome string) {
	m.submits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
