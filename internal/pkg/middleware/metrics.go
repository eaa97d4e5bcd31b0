package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gogarment_http_requests_total",
			Help: "Total de requisições HTTP recebidas pelo gateway",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gogarment_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	submissionStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gogarment_submission_stages_total",
			Help: "Total de estágios de envio executados, por estágio e resultado",
		},
		[]string{"stage", "status"},
	)
)

// statusRecorder captura o status code escrito pelo handler para os rótulos
// das métricas (o ResponseWriter nativo não o expõe).
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Metrics coleta contagem e duração de todas as requisições do gateway.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rec.status)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
	})
}

// RecordSubmissionStage registra o resultado de um estágio do envio.
func RecordSubmissionStage(stage string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	submissionStages.WithLabelValues(stage, status).Inc()
}
