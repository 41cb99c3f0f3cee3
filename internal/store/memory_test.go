package store

import (
	"context"
	"testing"

	"supplynav/internal/model"
)

func routeWith(score float64, stops, dist int) model.Route {
	return model.Route{
		RouteID:          "RT-1",
		EfficiencyScore:  score,
		NumStops:         stops,
		TotalDistance:    dist,
		EstimatedTimeMin: 60,
		EstimatedCost:    float64(dist) * 2.5,
	}
}

func TestMemorySaveGetList(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first, err := m.SaveOptimization(ctx, model.OptimizationResult{Status: model.StatusSuccess, WarehouseID: "WH1"})
	if err != nil {
		t.Fatalf("SaveOptimization: %v", err)
	}
	if first.ID == "" || first.CreatedAt == "" {
		t.Fatalf("missing id or timestamp: %+v", first)
	}
	second, _ := m.SaveOptimization(ctx, model.OptimizationResult{Status: model.StatusSuccess, WarehouseID: "WH2"})

	got, err := m.GetOptimization(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetOptimization: %v", err)
	}
	if got.Result.WarehouseID != "WH1" {
		t.Fatalf("warehouse = %q, want WH1", got.Result.WarehouseID)
	}

	if _, err := m.GetOptimization(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := m.ListOptimizations(ctx, 10)
	if err != nil {
		t.Fatalf("ListOptimizations: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestMemoryInsertSalesDedup(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	recs := []model.SalesRecord{
		{Date: "2026-05-01", WarehouseID: "WH1", SKUID: "SKU1", UnitsSold: 100},
		{Date: "2026-05-02", WarehouseID: "WH1", SKUID: "SKU1", UnitsSold: 110},
	}
	n, err := m.InsertSales(ctx, recs)
	if err != nil || n != 2 {
		t.Fatalf("InsertSales = %d, %v; want 2", n, err)
	}
	// Re-insert is a no-op.
	n, err = m.InsertSales(ctx, recs)
	if err != nil || n != 0 {
		t.Fatalf("re-insert = %d, %v; want 0", n, err)
	}

	got, err := m.ListSales(ctx, "WH1", "SKU1")
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2026-05-01" {
		t.Fatalf("ListSales order wrong: %+v", got)
	}
	other, _ := m.ListSales(ctx, "WH9", "")
	if len(other) != 0 {
		t.Fatalf("expected no rows for WH9, got %d", len(other))
	}
}

func TestRouteStatsAggregation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	res := model.OptimizationResult{
		Status:      model.StatusSuccess,
		WarehouseID: "WH1",
		Routes: []model.Route{
			routeWith(95, 10, 100),
			routeWith(75, 10, 200),
			routeWith(55, 5, 50),
			routeWith(30, 5, 40),
		},
	}
	if _, err := m.SaveOptimization(ctx, res); err != nil {
		t.Fatal(err)
	}

	stats, err := m.RouteStats(ctx)
	if err != nil {
		t.Fatalf("RouteStats: %v", err)
	}
	if stats.TotalRoutes != 4 || stats.TotalStops != 30 {
		t.Fatalf("totals = %d routes, %d stops", stats.TotalRoutes, stats.TotalStops)
	}
	d := stats.EfficiencyDistribution
	if d.Excellent != 1 || d.Good != 1 || d.Fair != 1 || d.Poor != 1 {
		t.Fatalf("distribution = %+v", d)
	}
	// Stop-weighted: (95*10 + 75*10 + 55*5 + 30*5) / 30
	if stats.OverallEfficiency != 70.83 {
		t.Fatalf("overall efficiency = %v, want 70.83", stats.OverallEfficiency)
	}
	if stats.AverageDistance != 97.5 {
		t.Fatalf("average distance = %v, want 97.5", stats.AverageDistance)
	}
}

func TestMemoryDashboardOverview(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.SaveOptimization(ctx, model.OptimizationResult{
		Status: model.StatusSuccess, WarehouseID: "WH2",
		Routes: []model.Route{routeWith(80, 3, 30)},
	})
	_, _ = m.InsertSales(ctx, []model.SalesRecord{
		{Date: "2026-05-01", WarehouseID: "WH1", SKUID: "SKU1", UnitsSold: 10},
	})

	ov, err := m.DashboardOverview(ctx)
	if err != nil {
		t.Fatalf("DashboardOverview: %v", err)
	}
	if ov.TotalOptimizations != 1 || ov.TotalRoutes != 1 || ov.TotalSalesRecords != 1 {
		t.Fatalf("overview = %+v", ov)
	}
	if len(ov.Warehouses) != 2 || ov.Warehouses[0] != "WH1" || ov.Warehouses[1] != "WH2" {
		t.Fatalf("warehouses = %v", ov.Warehouses)
	}
}
