package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplynav/internal/model"
)

var testWarehouse = model.Warehouse{
	WarehouseID: "WH-NYC",
	Name:        "Manhattan DC",
	Lat:         40.7128,
	Lng:         -74.0060,
}

func manhattanPoints() []model.DeliveryPoint {
	return []model.DeliveryPoint{
		{ClientID: "c1", CustomerName: "Harlem Market", Lat: 40.8116, Lng: -73.9465, DemandQty: 120},
		{ClientID: "c2", CustomerName: "Brooklyn Depot", Lat: 40.6782, Lng: -73.9442, DemandQty: 80},
		{ClientID: "c3", CustomerName: "Queens Grocer", Lat: 40.7282, Lng: -73.7949, DemandQty: 150},
		{ClientID: "c4", CustomerName: "Bronx Bodega", Lat: 40.8448, Lng: -73.8648, DemandQty: 60},
		{ClientID: "c5", CustomerName: "Jersey Outlet", Lat: 40.7178, Lng: -74.0431, DemandQty: 90},
	}
}

func collectClientIDs(res model.OptimizationResult) map[string]int {
	seen := map[string]int{}
	for _, r := range res.Routes {
		for _, s := range r.Stops {
			if s.Kind == model.StopKindDelivery {
				seen[s.ClientID]++
			}
		}
	}
	return seen
}

func TestOptimizeSingleCoincidentPoint(t *testing.T) {
	// Scenario: one delivery point at the depot's own coordinates.
	points := []model.DeliveryPoint{
		{ClientID: "c1", CustomerName: "Tenant", Lat: 40.7128, Lng: -74.0060, DemandQty: 10},
	}
	res := Optimize(testWarehouse, points, model.VehicleConstraints{}, Options{TimeBudget: 2 * time.Second})

	require.Equal(t, model.StatusSuccess, res.Status)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, 0, res.TotalDistance)
	assert.Equal(t, 1, res.Routes[0].NumStops)
	assert.Equal(t, 100.0, res.Routes[0].EfficiencyScore)
	assert.Equal(t, 100.0, res.FleetEfficiencyScore)
}

func TestOptimizeInfeasibleDemand(t *testing.T) {
	// Scenario: each point individually exceeds vehicle capacity.
	points := []model.DeliveryPoint{
		{ClientID: "heavy-1", Lat: 40.8, Lng: -73.9, DemandQty: 1500},
		{ClientID: "heavy-2", Lat: 40.6, Lng: -74.1, DemandQty: 2000},
	}
	res := Optimize(testWarehouse, points, model.VehicleConstraints{Capacity: 1000}, Options{TimeBudget: time.Second})

	require.Equal(t, model.StatusInfeasible, res.Status)
	assert.Equal(t, "heavy-1", res.Diagnostics.OffendingClientID)
	assert.Contains(t, res.Error, "heavy-1")
	assert.Empty(t, res.Routes)
}

func TestOptimizeSingleVehicleCoversAllPoints(t *testing.T) {
	// Scenario: five points, combined demand within capacity, one vehicle.
	res := Optimize(testWarehouse, manhattanPoints(), model.VehicleConstraints{FleetSize: 1}, Options{TimeBudget: 2 * time.Second})

	require.Equal(t, model.StatusSuccess, res.Status)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, 5, res.Routes[0].NumStops)

	seen := collectClientIDs(res)
	require.Len(t, seen, 5)
	for id, count := range seen {
		assert.Equal(t, 1, count, "client %s visited more than once", id)
	}
}

func TestOptimizeEmptyPoints(t *testing.T) {
	res := Optimize(testWarehouse, nil, model.VehicleConstraints{}, Options{TimeBudget: time.Second})
	require.Equal(t, model.StatusError, res.Status)
	assert.Equal(t, "no delivery points", res.Error)
}

func TestOptimizeCoverageAndCapacityWithFleet(t *testing.T) {
	points := manhattanPoints()
	vc := model.VehicleConstraints{Capacity: 260, FleetSize: 3}
	res := Optimize(testWarehouse, points, vc, Options{TimeBudget: 2 * time.Second})

	require.Equal(t, model.StatusSuccess, res.Status)

	// Every delivery point appears in exactly one route exactly once.
	seen := collectClientIDs(res)
	require.Len(t, seen, len(points))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}

	// Per-route demand never exceeds capacity.
	for _, r := range res.Routes {
		assert.LessOrEqual(t, r.TotalDemand, vc.Capacity, "route %s over capacity", r.RouteID)
		assert.Positive(t, r.NumStops, "empty vehicles must be dropped")
	}

	assert.GreaterOrEqual(t, res.FleetEfficiencyScore, 0.0)
	assert.LessOrEqual(t, res.FleetEfficiencyScore, 100.0)
}

func TestOptimizeIdempotentUnderGenerousBudget(t *testing.T) {
	vc := model.VehicleConstraints{Capacity: 500, FleetSize: 2}
	a := Optimize(testWarehouse, manhattanPoints(), vc, Options{TimeBudget: 5 * time.Second})
	b := Optimize(testWarehouse, manhattanPoints(), vc, Options{TimeBudget: 5 * time.Second})

	require.Equal(t, model.StatusSuccess, a.Status)
	require.Equal(t, model.StatusSuccess, b.Status)
	assert.Equal(t, a.TotalDistance, b.TotalDistance)
}

func TestOptimizeExpiredBudgetStillSucceeds(t *testing.T) {
	// A budget that expires before any improvement sweep still yields a
	// complete constructed solution, flagged as approximate.
	vc := model.VehicleConstraints{Capacity: 500, FleetSize: 2}
	res := Optimize(testWarehouse, manhattanPoints(), vc, Options{TimeBudget: time.Nanosecond})

	require.Equal(t, model.StatusSuccess, res.Status)
	assert.True(t, res.Diagnostics.Approximate)
	assert.Contains(t, res.Diagnostics.Notes[len(res.Diagnostics.Notes)-1], "approximate")

	seen := collectClientIDs(res)
	require.Len(t, seen, 5)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestSolveDropsEmptyVehicles(t *testing.T) {
	// A fleet far larger than the stop count must not yield empty routes.
	points := manhattanPoints()[:2]
	vc := ApplyConstraintDefaults(model.VehicleConstraints{FleetSize: 5})
	p, err := BuildProblem(testWarehouse, points, vc)
	require.NoError(t, err)

	sol, err := Solve(p, time.Second)
	require.NoError(t, err)
	for _, seq := range sol.Sequences {
		assert.NotEmpty(t, seq)
	}
}

func TestBuildProblemShape(t *testing.T) {
	vc := ApplyConstraintDefaults(model.VehicleConstraints{})
	p, err := BuildProblem(testWarehouse, manhattanPoints(), vc)
	require.NoError(t, err)

	require.Len(t, p.Nodes, 6)
	assert.True(t, p.Nodes[0].Depot)
	assert.Equal(t, 0, p.Demands[0])
	assert.Equal(t, DefaultCapacity, p.Capacity)
	assert.Equal(t, DefaultFleetSize, p.FleetSize)

	_, err = BuildProblem(testWarehouse, nil, vc)
	assert.ErrorIs(t, err, ErrEmptyProblem)
}
