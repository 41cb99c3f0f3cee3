package routing

import (
	"errors"
	"fmt"

	"supplynav/internal/model"
)

// ErrEmptyProblem is returned when no delivery points are supplied.
var ErrEmptyProblem = errors.New("no delivery points")

// InfeasibleError reports a delivery point that no assignment can
// satisfy under the hard capacity constraint.
type InfeasibleError struct {
	ClientID string
	Demand   int
	Capacity int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible: delivery point %s demand %d exceeds vehicle capacity %d",
		e.ClientID, e.Demand, e.Capacity)
}

// Node is one location in the routing problem. Index 0 is always the
// depot, with zero demand.
type Node struct {
	ID     string
	Name   string
	Lat    float64
	Lng    float64
	Demand int
	Depot  bool
}

// Problem is the assembled constrained-routing formulation: node list,
// demand vector, distance matrix, and the per-vehicle bounds. Built
// fresh for every call; never mutated after construction.
type Problem struct {
	Nodes   []Node
	Matrix  Matrix
	Demands []int

	Capacity        int
	MaxRouteTimeMin int
	SpeedMph        float64
	ServiceTimeMin  int
	FleetSize       int
}

// BuildProblem assembles depot + delivery points into a Problem.
// Constraints are expected to be defaulted and positive by the caller.
func BuildProblem(wh model.Warehouse, points []model.DeliveryPoint, vc model.VehicleConstraints) (*Problem, error) {
	if len(points) == 0 {
		return nil, ErrEmptyProblem
	}

	locs := make([]model.GeoPoint, 0, len(points)+1)
	locs = append(locs, model.GeoPoint{Lat: wh.Lat, Lng: wh.Lng})
	for _, p := range points {
		locs = append(locs, model.GeoPoint{Lat: p.Lat, Lng: p.Lng})
	}
	matrix, err := BuildMatrix(locs)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(points)+1)
	demands := make([]int, 0, len(points)+1)
	nodes = append(nodes, Node{ID: wh.WarehouseID, Name: wh.Name, Lat: wh.Lat, Lng: wh.Lng, Depot: true})
	demands = append(demands, 0)
	for _, p := range points {
		nodes = append(nodes, Node{ID: p.ClientID, Name: p.CustomerName, Lat: p.Lat, Lng: p.Lng, Demand: p.DemandQty})
		demands = append(demands, p.DemandQty)
	}

	fleet := vc.FleetSize
	if fleet < 1 {
		fleet = 1
	}
	return &Problem{
		Nodes:           nodes,
		Matrix:          matrix,
		Demands:         demands,
		Capacity:        vc.Capacity,
		MaxRouteTimeMin: vc.MaxRouteTimeMin,
		SpeedMph:        vc.AverageSpeedMph,
		ServiceTimeMin:  vc.ServiceTimeMin,
		FleetSize:       fleet,
	}, nil
}

// routeDistance sums edge costs depot -> seq[0] -> ... -> seq[n-1].
// There is no closing leg back to the depot; the accounting is one-way.
func (p *Problem) routeDistance(seq []int) int {
	if len(seq) == 0 {
		return 0
	}
	total := p.Matrix[0][seq[0]]
	for i := 0; i < len(seq)-1; i++ {
		total += p.Matrix[seq[i]][seq[i+1]]
	}
	return total
}

// routeTimeMin approximates cumulative travel plus service time for a
// sequence. The time bound is enforced against this figure as a soft
// dimension; capacity stays hard.
func (p *Problem) routeTimeMin(seq []int) float64 {
	if len(seq) == 0 || p.SpeedMph <= 0 {
		return 0
	}
	travel := float64(p.routeDistance(seq)) / p.SpeedMph * 60
	return travel + float64(p.ServiceTimeMin*len(seq))
}

func (p *Problem) routeDemand(seq []int) int {
	total := 0
	for _, n := range seq {
		total += p.Demands[n]
	}
	return total
}
