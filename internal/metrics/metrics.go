package metrics

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StoreMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beertime_store_mutations_total",
		Help: "Total event store mutations",
	}, []string{"op"})
	StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beertime_store_errors_total",
		Help: "Total event store errors",
	}, []string{"op"})
	StatsRecomputes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beertime_stats_recomputes_total",
		Help: "Total stats snapshot recomputations",
	})
	StatsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "beertime_stats_duration_seconds",
		Help:    "Stats recompute duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	Rollovers = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beertime_day_rollovers_total",
		Help: "Logical day changes observed by the rollover job",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beertime_http_requests_total",
		Help: "Total API requests",
	}, []string{"route", "code"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beertime_command_runs_total",
		Help: "Total CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "beertime_command_errors_total",
		Help: "Total CLI command errors",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(StoreMutations, StoreErrors, StatsRecomputes, StatsDuration,
		Rollovers, HTTPRequests, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveStatsDuration records a recompute duration.
func ObserveStatsDuration(start time.Time) {
	StatsDuration.Observe(time.Since(start).Seconds())
}

func IncMutation(op string)      { StoreMutations.WithLabelValues(op).Inc() }
func IncStoreError(op string)    { StoreErrors.WithLabelValues(op).Inc() }
func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

// IncHTTP counts a served request by route pattern and status code.
func IncHTTP(route string, code int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
