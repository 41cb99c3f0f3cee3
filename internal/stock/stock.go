// Package stock derives safety-stock and reorder levels from daily
// demand statistics, optionally enhanced with a forecast.
package stock

import (
	"fmt"
	"math"
	"time"

	"supplynav/internal/forecast"
	"supplynav/internal/model"
)

const minDataPoints = 10

// zFor maps a service level to its one-sided normal quantile. Unlisted
// levels fall back to 95%.
func zFor(serviceLevel float64) float64 {
	switch {
	case serviceLevel >= 0.99:
		return 2.33
	case serviceLevel >= 0.95:
		return 1.65
	case serviceLevel >= 0.90:
		return 1.28
	default:
		return 1.65
	}
}

// Recommend computes safety stock z*sigma*sqrt(lead), reorder point
// mean*lead + safety, and an order-up-to level one lead time above the
// reorder point. fc may be nil; when present it tags the demand trend.
func Recommend(recs []model.SalesRecord, fc *model.ForecastResult, warehouseID, skuID string, leadTimeDays int, serviceLevel float64) (*model.StockRecommendation, error) {
	byDate := map[string]float64{}
	for _, r := range recs {
		byDate[r.Date] += float64(r.UnitsSold)
	}
	if len(byDate) < minDataPoints {
		return nil, fmt.Errorf("%w: %d daily points, need %d", forecast.ErrInsufficientData, len(byDate), minDataPoints)
	}
	if leadTimeDays < 1 {
		leadTimeDays = 7
	}
	if serviceLevel <= 0 || serviceLevel >= 1 {
		serviceLevel = 0.95
	}

	mean := 0.0
	for _, u := range byDate {
		mean += u
	}
	mean /= float64(len(byDate))

	ss := 0.0
	for _, u := range byDate {
		d := u - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(byDate)-1))

	safety := zFor(serviceLevel) * std * math.Sqrt(float64(leadTimeDays))
	reorder := mean*float64(leadTimeDays) + safety
	orderUpTo := reorder + mean*float64(leadTimeDays)

	rec := &model.StockRecommendation{
		WarehouseID:     warehouseID,
		SKUID:           skuID,
		MeanDailyDemand: math.Round(mean*100) / 100,
		DemandStdDev:    math.Round(std*100) / 100,
		SafetyStock:     int(math.Ceil(safety)),
		ReorderPoint:    int(math.Ceil(reorder)),
		OrderUpToLevel:  int(math.Ceil(orderUpTo)),
		LeadTimeDays:    leadTimeDays,
		ServiceLevel:    serviceLevel,
		LastUpdated:     time.Now().Format(time.RFC3339),
	}

	if fc != nil && len(fc.Points) > 0 {
		sum := 0.0
		for _, p := range fc.Points {
			sum += p.PredictedDemand
		}
		avg := sum / float64(len(fc.Points))
		rec.ForecastDemand = math.Round(avg*100) / 100
		if avg > mean {
			rec.DemandTrend = "increasing"
		} else {
			rec.DemandTrend = "decreasing"
		}
	}
	return rec, nil
}
