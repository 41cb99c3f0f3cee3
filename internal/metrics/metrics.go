package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // SolveDuration tracks optimizer solve wall time in seconds by outcome status
    SolveDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "optimizer_solve_duration_seconds", Help: "Route optimization solve time in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60}},
        []string{"status"},
    )
    // SolveIterations counts local-search iterations across all solves
    SolveIterations = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "optimizer_iterations_total", Help: "Total local-search iterations performed."},
    )
    // InfeasibleRequests counts optimization requests rejected as infeasible
    InfeasibleRequests = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "optimizer_infeasible_total", Help: "Optimization requests with no feasible assignment."},
    )
    // IngestRows counts ingested sales rows by disposition
    IngestRows = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "ingest_rows_total", Help: "Sales rows processed by disposition."},
        []string{"disposition"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(SolveDuration)
        Registry.MustRegister(SolveIterations)
        Registry.MustRegister(InfeasibleRequests)
        Registry.MustRegister(IngestRows)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
