package api

import (
	"fmt"

	"supplynav/internal/model"
)

const maxTimeBudgetMs = 120_000

func validCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if req.Warehouse.WarehouseID == "" {
		return fmt.Errorf("warehouse.warehouseId is required")
	}
	if !validCoords(req.Warehouse.Lat, req.Warehouse.Lng) {
		return fmt.Errorf("warehouse coordinates out of range: (%v, %v)", req.Warehouse.Lat, req.Warehouse.Lng)
	}
	for i, p := range req.DeliveryPoints {
		if p.ClientID == "" {
			return fmt.Errorf("deliveryPoints[%d].clientId is required", i)
		}
		if !validCoords(p.Lat, p.Lng) {
			return fmt.Errorf("deliveryPoints[%d] coordinates out of range: (%v, %v)", i, p.Lat, p.Lng)
		}
		if p.DemandQty < 0 {
			return fmt.Errorf("deliveryPoints[%d].demandQty must be >= 0", i)
		}
	}
	if vc := req.VehicleConstraints; vc != nil {
		if vc.Capacity < 0 || vc.MaxRouteTimeMin < 0 || vc.AverageSpeedMph < 0 || vc.ServiceTimeMin < 0 || vc.FleetSize < 0 {
			return fmt.Errorf("vehicleConstraints fields must be >= 0")
		}
	}
	if req.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must be >= 0")
	}
	if req.TimeBudgetMs > maxTimeBudgetMs {
		return fmt.Errorf("timeBudgetMs must be <= %d", maxTimeBudgetMs)
	}
	return nil
}
