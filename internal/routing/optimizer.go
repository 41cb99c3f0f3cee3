package routing

import (
	"errors"
	"time"

	"supplynav/internal/model"
)

// Default vehicle constraints, matching the operational profile the
// system ships with: 1000-unit vehicles, 8-hour shifts at 50 mph with
// 15-minute stops.
const (
	DefaultCapacity        = 1000
	DefaultMaxRouteTimeMin = 480
	DefaultAverageSpeedMph = 50.0
	DefaultServiceTimeMin  = 15
	DefaultFleetSize       = 1
	DefaultCostPerMile     = 2.5
)

// Options configures a single optimization call.
type Options struct {
	TimeBudget        time.Duration // improvement budget; DefaultTimeBudget when zero
	CostPerMile       float64       // DefaultCostPerMile when zero
	IdealMilesPerStop float64       // DefaultIdealMilesPerStop when zero
	StartTime         time.Time     // route start; time.Now() when zero
}

// ApplyConstraintDefaults fills zero-valued constraint fields. The
// returned value is a copy; the caller's struct is never mutated.
func ApplyConstraintDefaults(vc model.VehicleConstraints) model.VehicleConstraints {
	if vc.Capacity <= 0 {
		vc.Capacity = DefaultCapacity
	}
	if vc.MaxRouteTimeMin <= 0 {
		vc.MaxRouteTimeMin = DefaultMaxRouteTimeMin
	}
	if vc.AverageSpeedMph <= 0 {
		vc.AverageSpeedMph = DefaultAverageSpeedMph
	}
	if vc.ServiceTimeMin < 0 {
		vc.ServiceTimeMin = DefaultServiceTimeMin
	}
	if vc.FleetSize < 1 {
		vc.FleetSize = DefaultFleetSize
	}
	return vc
}

// Optimize runs the whole pipeline: distance matrix, problem assembly,
// solve, composition, scoring. The call is pure - every structure is
// built fresh and discarded; nothing is retained between calls.
func Optimize(wh model.Warehouse, points []model.DeliveryPoint, vc model.VehicleConstraints, opts Options) model.OptimizationResult {
	vc = ApplyConstraintDefaults(vc)
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	if opts.CostPerMile <= 0 {
		opts.CostPerMile = DefaultCostPerMile
	}
	if opts.IdealMilesPerStop <= 0 {
		opts.IdealMilesPerStop = DefaultIdealMilesPerStop
	}
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}

	started := time.Now()

	problem, err := BuildProblem(wh, points, vc)
	if err != nil {
		return errorResult(wh, err)
	}

	sol, err := Solve(problem, opts.TimeBudget)
	if err != nil {
		var inf *InfeasibleError
		if errors.As(err, &inf) {
			return model.OptimizationResult{
				Status:      model.StatusInfeasible,
				Error:       inf.Error(),
				WarehouseID: wh.WarehouseID,
				Routes:      []model.Route{},
				Diagnostics: model.Diagnostics{OffendingClientID: inf.ClientID},
				LastUpdated: time.Now().Format(time.RFC3339),
			}
		}
		return errorResult(wh, err)
	}

	routes := ComposeRoutes(problem, sol, opts.StartTime, opts.CostPerMile)
	for i := range routes {
		routes[i].EfficiencyScore = ScoreRoute(routes[i], opts.IdealMilesPerStop)
	}

	res := model.OptimizationResult{
		Status:               model.StatusSuccess,
		WarehouseID:          wh.WarehouseID,
		TotalRoutes:          len(routes),
		Routes:               routes,
		FleetEfficiencyScore: FleetScore(routes),
		Diagnostics: model.Diagnostics{
			Iterations:   sol.Iterations,
			Improvements: sol.Improvements,
			SolveMillis:  time.Since(started).Milliseconds(),
			Approximate:  sol.TimedOut,
			Notes: []string{
				"one-way edge accounting; return leg to the depot is not costed",
			},
		},
		LastUpdated: time.Now().Format(time.RFC3339),
	}
	if sol.TimedOut {
		res.Diagnostics.Notes = append(res.Diagnostics.Notes,
			"time budget expired before a local optimum; solution is approximate")
	}
	for _, r := range routes {
		res.TotalDistance += r.TotalDistance
		res.TotalTimeMin += r.EstimatedTimeMin
		res.TotalCost += r.EstimatedCost
	}
	res.TotalTimeMin = round1(res.TotalTimeMin)
	res.TotalCost = round2(res.TotalCost)
	return res
}

func errorResult(wh model.Warehouse, err error) model.OptimizationResult {
	return model.OptimizationResult{
		Status:      model.StatusError,
		Error:       err.Error(),
		WarehouseID: wh.WarehouseID,
		Routes:      []model.Route{},
		LastUpdated: time.Now().Format(time.RFC3339),
	}
}
