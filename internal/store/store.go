package store

import (
    "context"
    "errors"

    "supplynav/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
    // Optimizations
    SaveOptimization(ctx context.Context, res model.OptimizationResult) (model.StoredResult, error)
    GetOptimization(ctx context.Context, id string) (model.StoredResult, error)
    ListOptimizations(ctx context.Context, limit int) ([]model.StoredResult, error)
    RouteStats(ctx context.Context) (model.RouteStatistics, error)

    // Sales history
    InsertSales(ctx context.Context, recs []model.SalesRecord) (inserted int, err error)
    ListSales(ctx context.Context, warehouseID, skuID string) ([]model.SalesRecord, error)

    // Dashboard
    DashboardOverview(ctx context.Context) (model.DashboardOverview, error)

    Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
