package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

type Metrics struct {
	registry      *prometheus.Registry
	httpReqCnt    *prometheus.CounterVec
	httpDur       *prometheus.HistogramVec
	httpInfl      *prometheus.GaugeVec
	answerCnt     *prometheus.CounterVec
	answerDur     *prometheus.HistogramVec
	mediaMatchCnt *prometheus.CounterVec
	eventsCnt     *prometheus.CounterVec
	metadataCnt   prometheus.Counter
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:      r,
		httpReqCnt:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"}),
		httpDur:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"}),
		httpInfl:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"}),
		answerCnt:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "answers_total"}, []string{"answerer", "status"}),
		answerDur:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "answer_duration_seconds", Buckets: cfg.Buckets}, []string{"answerer"}),
		mediaMatchCnt: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "media_match_total"}, []string{"type", "result"}),
		eventsCnt:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "telemetry_events_total"}, []string{"kind"}),
		metadataCnt:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "session_metadata_total"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl)
	r.MustRegister(m.answerCnt, m.answerDur, m.mediaMatchCnt, m.eventsCnt, m.metadataCnt)
	return m
}

// AnswerDone records one answered query; status is "ok" or "error"
func (m *Metrics) AnswerDone(answerer string, since time.Time, status string) {
	m.answerCnt.WithLabelValues(answerer, status).Inc()
	m.answerDur.WithLabelValues(answerer).Observe(time.Since(since).Seconds())
}

// MediaMatched records a media lookup and whether it found anything
func (m *Metrics) MediaMatched(mediaType string, n int) {
	result := "hit"
	if n == 0 {
		result = "miss"
	}
	m.mediaMatchCnt.WithLabelValues(mediaType, result).Inc()
}

// EventsIngested counts stored telemetry events of one kind (click, move)
func (m *Metrics) EventsIngested(kind string, n int) {
	m.eventsCnt.WithLabelValues(kind).Add(float64(n))
}

// MetadataStored counts sessions whose metadata was persisted
func (m *Metrics) MetadataStored() {
	m.metadataCnt.Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
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
