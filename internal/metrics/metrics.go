package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsup_api_requests_total",
		Help: "Total backend API requests",
	}, []string{"method", "endpoint"})
	APIErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsup_api_errors_total",
		Help: "Total failed backend API requests",
	}, []string{"method", "endpoint"})
	APIDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "whatsup_api_request_duration_seconds",
		Help:    "Backend API request duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	PageViews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsup_page_views_total",
		Help: "Total web UI page renders",
	}, []string{"page"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsup_command_runs_total",
		Help: "Total CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsup_command_errors_total",
		Help: "Total CLI command errors",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(APIRequests, APIErrors, APIDuration, PageViews, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveAPIDuration records a request duration.
func ObserveAPIDuration(start time.Time) {
	APIDuration.Observe(time.Since(start).Seconds())
}

// IncAPIRequest counts a backend request by method and endpoint.
func IncAPIRequest(method, endpoint string) { APIRequests.WithLabelValues(method, endpoint).Inc() }

// IncAPIError counts a failed backend request by method and endpoint.
func IncAPIError(method, endpoint string) { APIErrors.WithLabelValues(method, endpoint).Inc() }

// IncPageView counts a rendered UI page.
func IncPageView(page string) { PageViews.WithLabelValues(page).Inc() }

// IncCommandRun counts a CLI command invocation.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError counts a CLI command failure.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
