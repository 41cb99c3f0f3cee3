package main

import (
    "log"
    "net/http"
    "time"

    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "supplynav/internal/api"
    "supplynav/internal/config"
    "supplynav/internal/metrics"
)

func main() {
    if err := godotenv.Load(); err != nil {
        log.Println("No .env file found (using environment variables)")
    }
    cfg, err := config.Load()
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }

    srv, err := api.NewServer(cfg)
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }

    metrics.RegisterDefault()

    mux := http.NewServeMux()

    // Routing
    mux.HandleFunc("/v1/routes/optimize", srv.OptimizeHandler)
    mux.HandleFunc("/v1/routes/stats", srv.RouteStatsHandler)
    mux.HandleFunc("/v1/routes", srv.RoutesIndexHandler)
    mux.HandleFunc("/v1/routes/", srv.RouteByIDHandler) // includes /events/stream
    mux.HandleFunc("/v1/ws/routes/", srv.WSRoutesHandler)

    // Sales analytics
    mux.HandleFunc("/v1/ingest/sales", srv.IngestSalesHandler)
    mux.HandleFunc("/v1/forecast", srv.ForecastHandler)
    mux.HandleFunc("/v1/anomalies", srv.AnomaliesHandler)
    mux.HandleFunc("/v1/stock/recommendations", srv.StockHandler)
    mux.HandleFunc("/v1/dashboard/overview", srv.DashboardHandler)

    // Health
    mux.HandleFunc("/healthz", srv.HealthHandler)
    mux.HandleFunc("/readyz", srv.ReadyHandler)

    // Metrics
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    handler := logMiddleware(api.WithMetrics(
        api.WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, mux)))

    httpSrv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           handler,
        ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
    }

    log.Printf("API listening on %s", httpSrv.Addr)
    if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}

func logMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        next.ServeHTTP(w, r)
        dur := time.Since(start)
        log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
    })
}
