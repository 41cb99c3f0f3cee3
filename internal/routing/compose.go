package routing

import (
	"fmt"
	"time"

	"supplynav/internal/model"
)

// ComposeRoutes expands solver sequences into timed stop lists. Arrival
// times accumulate travel (distance / speed, in minutes) plus the
// service time charged at the previous delivery stop; no service time
// is charged at the depot origin. Cost and time sum only the edges
// between consecutive visited nodes - the return leg to the depot is
// not accounted.
func ComposeRoutes(p *Problem, sol *Solution, start time.Time, costPerMile float64) []model.Route {
	routes := make([]model.Route, 0, len(sol.Sequences))
	depot := p.Nodes[0]

	for ri, seq := range sol.Sequences {
		if len(seq) < 1 {
			continue
		}

		stops := make([]model.Stop, 0, len(seq)+1)
		stops = append(stops, model.Stop{
			StopID:           fmt.Sprintf("WH-%d", ri),
			ClientID:         depot.ID,
			CustomerName:     depot.Name,
			Lat:              depot.Lat,
			Lng:              depot.Lng,
			EstimatedArrival: start.Format(time.RFC3339),
			Order:            0,
			Kind:             model.StopKindWarehouse,
		})

		current := start
		totalDistance := 0
		totalDemand := 0
		prev := 0
		for i, nodeIdx := range seq {
			node := p.Nodes[nodeIdx]
			edge := p.Matrix[prev][nodeIdx]
			totalDistance += edge
			if p.SpeedMph > 0 {
				current = current.Add(time.Duration(float64(edge) / p.SpeedMph * float64(time.Hour)))
			}
			if prev != 0 {
				current = current.Add(time.Duration(p.ServiceTimeMin) * time.Minute)
			}
			totalDemand += node.Demand
			stops = append(stops, model.Stop{
				StopID:           fmt.Sprintf("STOP-%d-%d", ri, i+1),
				ClientID:         node.ID,
				CustomerName:     node.Name,
				Lat:              node.Lat,
				Lng:              node.Lng,
				DemandQty:        node.Demand,
				EstimatedArrival: current.Format(time.RFC3339),
				Order:            i + 1,
				Kind:             model.StopKindDelivery,
			})
			prev = nodeIdx
		}

		estTime := 0.0
		if p.SpeedMph > 0 {
			estTime = float64(totalDistance) / p.SpeedMph * 60
		}
		utilization := 0.0
		if p.Capacity > 0 {
			utilization = float64(totalDemand) / float64(p.Capacity) * 100
			if utilization > 100 {
				utilization = 100
			}
		}

		routes = append(routes, model.Route{
			RouteID:          fmt.Sprintf("ROUTE-%d", ri+1),
			WarehouseID:      depot.ID,
			Stops:            stops,
			TotalDistance:    totalDistance,
			EstimatedTimeMin: round1(estTime),
			EstimatedCost:    round2(float64(totalDistance) * costPerMile),
			NumStops:         len(seq),
			TotalDemand:      totalDemand,
			Utilization:      round1(utilization),
		})
	}
	return routes
}

func round1(f float64) float64 { return float64(int(f*10+0.5)) / 10 }
func round2(f float64) float64 { return float64(int(f*100+0.5)) / 100 }
