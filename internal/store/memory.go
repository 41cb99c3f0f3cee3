package store

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
    "supplynav/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu      sync.Mutex
    results map[string]model.StoredResult // id -> stored optimization
    order   []string                      // ids in insertion order
    sales   []model.SalesRecord
    salesBy map[string]bool // date|warehouse|sku -> present
}

func NewMemory() *Memory {
    return &Memory{
        results: map[string]model.StoredResult{},
        salesBy: map[string]bool{},
    }
}

func (m *Memory) SaveOptimization(ctx context.Context, res model.OptimizationResult) (model.StoredResult, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    sr := model.StoredResult{
        ID:        uuid.New().String(),
        CreatedAt: time.Now().UTC().Format(time.RFC3339),
        Result:    res,
    }
    m.results[sr.ID] = sr
    m.order = append(m.order, sr.ID)
    return sr, nil
}

func (m *Memory) GetOptimization(ctx context.Context, id string) (model.StoredResult, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    sr, ok := m.results[id]
    if !ok { return model.StoredResult{}, ErrNotFound }
    return sr, nil
}

// ListOptimizations returns the newest results first.
func (m *Memory) ListOptimizations(ctx context.Context, limit int) ([]model.StoredResult, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if limit <= 0 { limit = 100 }
    out := []model.StoredResult{}
    for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
        out = append(out, m.results[m.order[i]])
    }
    return out, nil
}

func (m *Memory) RouteStats(ctx context.Context) (model.RouteStatistics, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    return computeRouteStats(m.all()), nil
}

// InsertSales adds records, skipping rows already present for the same
// (date, warehouse, sku).
func (m *Memory) InsertSales(ctx context.Context, recs []model.SalesRecord) (int, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    inserted := 0
    for _, r := range recs {
        key := r.Date + "|" + r.WarehouseID + "|" + r.SKUID
        if m.salesBy[key] { continue }
        m.salesBy[key] = true
        m.sales = append(m.sales, r)
        inserted++
    }
    return inserted, nil
}

func (m *Memory) ListSales(ctx context.Context, warehouseID, skuID string) ([]model.SalesRecord, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    out := []model.SalesRecord{}
    for _, r := range m.sales {
        if warehouseID != "" && r.WarehouseID != warehouseID { continue }
        if skuID != "" && r.SKUID != skuID { continue }
        out = append(out, r)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
    return out, nil
}

func (m *Memory) DashboardOverview(ctx context.Context) (model.DashboardOverview, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    results := m.all()
    whs := map[string]bool{}
    for _, sr := range results {
        if sr.Result.WarehouseID != "" { whs[sr.Result.WarehouseID] = true }
    }
    for _, r := range m.sales {
        whs[r.WarehouseID] = true
    }
    names := make([]string, 0, len(whs))
    for w := range whs { names = append(names, w) }
    sort.Strings(names)

    ov := model.DashboardOverview{
        TotalOptimizations: len(results),
        TotalSalesRecords:  len(m.sales),
        Warehouses:         names,
        RouteStats:         computeRouteStats(results),
        LastUpdated:        time.Now().UTC().Format(time.RFC3339),
    }
    ov.TotalRoutes = ov.RouteStats.TotalRoutes
    return ov, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

// all returns stored results in insertion order. Caller holds the lock.
func (m *Memory) all() []model.StoredResult {
    out := make([]model.StoredResult, 0, len(m.order))
    for _, id := range m.order {
        out = append(out, m.results[id])
    }
    return out
}
