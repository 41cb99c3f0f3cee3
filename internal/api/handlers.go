package api

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "strings"
    "time"

    "supplynav/internal/anomaly"
    "supplynav/internal/forecast"
    "supplynav/internal/ingest"
    "supplynav/internal/metrics"
    "supplynav/internal/model"
    "supplynav/internal/routing"
    "supplynav/internal/stock"
    "supplynav/internal/store"
)

// OptimizeHandler handles POST /v1/routes/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req model.OptimizeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if err := validateOptimizeRequest(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
        return
    }

    vc := s.defaultConstraints()
    if req.VehicleConstraints != nil {
        vc = overlayConstraints(vc, *req.VehicleConstraints)
    }
    opts := routing.Options{
        TimeBudget:        s.Cfg.Optimizer.TimeBudget,
        CostPerMile:       s.Cfg.Optimizer.CostPerMile,
        IdealMilesPerStop: s.Cfg.Optimizer.IdealMilesStop,
    }
    if req.TimeBudgetMs > 0 {
        opts.TimeBudget = time.Duration(req.TimeBudgetMs) * time.Millisecond
    }

    started := time.Now()
    res := routing.Optimize(req.Warehouse, req.DeliveryPoints, vc, opts)
    metrics.SolveDuration.WithLabelValues(res.Status).Observe(time.Since(started).Seconds())
    metrics.SolveIterations.Add(float64(res.Diagnostics.Iterations))

    switch res.Status {
    case model.StatusError:
        writeProblem(w, http.StatusUnprocessableEntity, "Optimization failed", res.Error, r.URL.Path)
        return
    case model.StatusInfeasible:
        metrics.InfeasibleRequests.Inc()
    }

    sr, err := s.Store.SaveOptimization(r.Context(), res)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Save optimization failed", err.Error(), r.URL.Path)
        return
    }
    s.Broker.Publish(sr.ID, SSEEvent{Type: "optimization.completed", Data: map[string]any{
        "id":          sr.ID,
        "status":      res.Status,
        "totalRoutes": res.TotalRoutes,
        "fleetScore":  res.FleetEfficiencyScore,
        "ts":          sr.CreatedAt,
    }})
    writeJSON(w, http.StatusOK, sr)
}

func (s *Server) defaultConstraints() model.VehicleConstraints {
    o := s.Cfg.Optimizer
    return model.VehicleConstraints{
        Capacity:        o.Capacity,
        MaxRouteTimeMin: o.MaxRouteTimeMin,
        AverageSpeedMph: o.AverageSpeedMph,
        ServiceTimeMin:  o.ServiceTimeMin,
        FleetSize:       o.FleetSize,
    }
}

// overlayConstraints takes positive fields from the request over the
// configured defaults. Zero and omitted are indistinguishable in the
// JSON body, so a zero field always means "use the default"; zero
// service time cannot be requested per call, only configured.
func overlayConstraints(base, in model.VehicleConstraints) model.VehicleConstraints {
    if in.Capacity > 0 { base.Capacity = in.Capacity }
    if in.MaxRouteTimeMin > 0 { base.MaxRouteTimeMin = in.MaxRouteTimeMin }
    if in.AverageSpeedMph > 0 { base.AverageSpeedMph = in.AverageSpeedMph }
    if in.ServiceTimeMin > 0 { base.ServiceTimeMin = in.ServiceTimeMin }
    if in.FleetSize > 0 { base.FleetSize = in.FleetSize }
    return base
}

// RoutesIndexHandler handles GET /v1/routes
func (s *Server) RoutesIndexHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/routes" { writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path); return }
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    limit := 100
    if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
    items, err := s.Store.ListOptimizations(r.Context(), limit)
    if err != nil { writeProblem(w, 500, "List optimizations failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, map[string]any{"items": items})
}

// RouteByIDHandler handles GET /v1/routes/{id} and the SSE stream at
// /v1/routes/{id}/events/stream.
func (s *Server) RouteByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/routes/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]
    if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
        s.streamEvents(w, r, id)
        return
    }
    if len(parts) > 1 {
        writeProblem(w, http.StatusNotFound, "Not Found", "unknown subpath", r.URL.Path)
        return
    }
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    sr, err := s.Store.GetOptimization(r.Context(), id)
    if errors.Is(err, store.ErrNotFound) {
        writeProblem(w, http.StatusNotFound, "Optimization not found", id, r.URL.Path)
        return
    }
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Get optimization failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, sr)
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, id string) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    if _, err := s.Store.GetOptimization(r.Context(), id); err != nil {
        writeProblem(w, http.StatusNotFound, "Optimization not found", id, r.URL.Path)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(id)
    defer s.Broker.Unsubscribe(id, ch)
    // initial heartbeat
    fmt.Fprintf(w, "event: heartbeat\n")
    fmt.Fprintf(w, "data: {\"id\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
    flusher.Flush()
    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            fmt.Fprintf(w, "event: heartbeat\n")
            fmt.Fprintf(w, "data: {\"id\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
            flusher.Flush()
        }
    }
}

// RouteStatsHandler handles GET /v1/routes/stats
func (s *Server) RouteStatsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    stats, err := s.Store.RouteStats(r.Context())
    if err != nil { writeProblem(w, 500, "Route stats failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, stats)
}

// IngestSalesHandler handles POST /v1/ingest/sales. The body is either
// a multipart upload with a "file" field or the raw file bytes; the
// format comes from the "source" query parameter (csv by default).
func (s *Server) IngestSalesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    src := r.URL.Query().Get("source")
    if src == "" { src = "csv" }
    kind, err := ingest.ParseKind(src)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Unknown source", err.Error(), r.URL.Path)
        return
    }

    var body io.Reader = r.Body
    if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "multipart/form-data") {
        f, _, err := r.FormFile("file")
        if err != nil {
            writeProblem(w, http.StatusBadRequest, "Missing file", err.Error(), r.URL.Path)
            return
        }
        defer f.Close()
        body = f
    }

    rep, err := ingest.ReadSales(kind, body)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Ingest failed", err.Error(), r.URL.Path)
        return
    }
    inserted, err := s.Store.InsertSales(r.Context(), rep.Records)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Insert sales failed", err.Error(), r.URL.Path)
        return
    }
    metrics.IngestRows.WithLabelValues("kept").Add(float64(rep.RowsKept))
    metrics.IngestRows.WithLabelValues("dropped").Add(float64(rep.RowsDropped))

    writeJSON(w, http.StatusOK, model.IngestReport{
        Source:      string(kind),
        RowsRead:    rep.RowsRead,
        RowsKept:    rep.RowsKept,
        RowsDropped: rep.RowsDropped,
        Inserted:    inserted,
        Issues:      rep.Issues,
    })
}

// ForecastHandler handles GET /v1/forecast
func (s *Server) ForecastHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    q := r.URL.Query()
    horizon := s.Cfg.Forecast.DefaultHorizonDays
    if v := q.Get("horizonDays"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            writeProblem(w, http.StatusBadRequest, "Invalid horizonDays", v, r.URL.Path)
            return
        }
        horizon = n
    }
    if horizon > s.Cfg.Forecast.MaxHorizonDays {
        writeProblem(w, http.StatusBadRequest, "Invalid horizonDays",
            fmt.Sprintf("horizonDays must be <= %d", s.Cfg.Forecast.MaxHorizonDays), r.URL.Path)
        return
    }
    recs, err := s.Store.ListSales(r.Context(), q.Get("warehouseId"), q.Get("skuId"))
    if err != nil { writeProblem(w, 500, "List sales failed", err.Error(), r.URL.Path); return }

    fc, err := forecast.Forecast(recs, q.Get("warehouseId"), q.Get("skuId"), horizon, time.Now())
    if errors.Is(err, forecast.ErrInsufficientData) {
        writeProblem(w, http.StatusUnprocessableEntity, "Insufficient history", err.Error(), r.URL.Path)
        return
    }
    if err != nil { writeProblem(w, 500, "Forecast failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, fc)
}

// AnomaliesHandler handles GET /v1/anomalies
func (s *Server) AnomaliesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    q := r.URL.Query()
    recs, err := s.Store.ListSales(r.Context(), q.Get("warehouseId"), q.Get("skuId"))
    if err != nil { writeProblem(w, 500, "List sales failed", err.Error(), r.URL.Path); return }

    rep, err := anomaly.Detect(recs, q.Get("warehouseId"), q.Get("skuId"))
    if errors.Is(err, forecast.ErrInsufficientData) {
        writeProblem(w, http.StatusUnprocessableEntity, "Insufficient history", err.Error(), r.URL.Path)
        return
    }
    if err != nil { writeProblem(w, 500, "Anomaly detection failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, rep)
}

// StockHandler handles GET /v1/stock/recommendations
func (s *Server) StockHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    q := r.URL.Query()
    lead := s.Cfg.Stock.LeadTimeDays
    if v := q.Get("leadTimeDays"); v != "" {
        n, err := strconv.Atoi(v)
        if err != nil || n < 1 {
            writeProblem(w, http.StatusBadRequest, "Invalid leadTimeDays", v, r.URL.Path)
            return
        }
        lead = n
    }
    level := s.Cfg.Stock.ServiceLevel
    if v := q.Get("serviceLevel"); v != "" {
        f, err := strconv.ParseFloat(v, 64)
        if err != nil || f <= 0 || f >= 1 {
            writeProblem(w, http.StatusBadRequest, "Invalid serviceLevel", v, r.URL.Path)
            return
        }
        level = f
    }
    recs, err := s.Store.ListSales(r.Context(), q.Get("warehouseId"), q.Get("skuId"))
    if err != nil { writeProblem(w, 500, "List sales failed", err.Error(), r.URL.Path); return }

    // Forecast feeds the trend tag; a short history just omits it.
    fc, _ := forecast.Forecast(recs, q.Get("warehouseId"), q.Get("skuId"), s.Cfg.Forecast.DefaultHorizonDays, time.Now())

    rec, err := stock.Recommend(recs, fc, q.Get("warehouseId"), q.Get("skuId"), lead, level)
    if errors.Is(err, forecast.ErrInsufficientData) {
        writeProblem(w, http.StatusUnprocessableEntity, "Insufficient history", err.Error(), r.URL.Path)
        return
    }
    if err != nil { writeProblem(w, 500, "Stock recommendation failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, rec)
}

// DashboardHandler handles GET /v1/dashboard/overview
func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
    ov, err := s.Store.DashboardOverview(r.Context())
    if err != nil { writeProblem(w, 500, "Dashboard failed", err.Error(), r.URL.Path); return }
    writeJSON(w, 200, ov)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    if err := s.Store.Ping(r.Context()); err != nil {
        writeProblem(w, http.StatusServiceUnavailable, "Store unavailable", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, 200, map[string]string{"status": "ready"})
}
