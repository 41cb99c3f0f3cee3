// Package anomaly flags days whose sales deviate from the historical
// mean by more than a z-score threshold.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"supplynav/internal/forecast"
	"supplynav/internal/model"
)

const (
	// ZThreshold marks a day anomalous; HighSeverityZ upgrades it.
	ZThreshold    = 2.5
	HighSeverityZ = 3.5

	minDataPoints = 10
)

// Detect scores daily sales totals against the series mean and returns
// every day whose |z| exceeds the threshold.
func Detect(recs []model.SalesRecord, warehouseID, skuID string) (*model.AnomalyReport, error) {
	byDate := map[string]float64{}
	for _, r := range recs {
		byDate[r.Date] += float64(r.UnitsSold)
	}
	if len(byDate) < minDataPoints {
		return nil, fmt.Errorf("%w: %d daily points, need %d", forecast.ErrInsufficientData, len(byDate), minDataPoints)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	mean := 0.0
	for _, d := range dates {
		mean += byDate[d]
	}
	mean /= float64(len(dates))

	ss := 0.0
	for _, d := range dates {
		diff := byDate[d] - mean
		ss += diff * diff
	}
	// Sample standard deviation (n-1).
	std := math.Sqrt(ss / float64(len(dates)-1))

	var anomalies []model.Anomaly
	for _, d := range dates {
		units := byDate[d]
		z := 0.0
		if std > 0 {
			z = math.Abs(units-mean) / std
		}
		if z <= ZThreshold {
			continue
		}
		kind := "spike"
		if units < mean {
			kind = "drop"
		}
		severity := "medium"
		if z > HighSeverityZ {
			severity = "high"
		}
		impact := 0.0
		if mean > 0 {
			impact = math.Round(math.Abs(units-mean)/mean*1000) / 10
		}
		anomalies = append(anomalies, model.Anomaly{
			ID:          fmt.Sprintf("anomaly_%s_%s_%s", strings.ReplaceAll(d, "-", ""), warehouseID, skuID),
			Date:        d,
			WarehouseID: warehouseID,
			SKUID:       skuID,
			Type:        kind,
			Severity:    severity,
			Description: fmt.Sprintf("Sales %s detected: %.0f units (Z-score: %.2f)", kind, units, z),
			ZScore:      math.Round(z*100) / 100,
			ImpactPct:   impact,
		})
	}

	return &model.AnomalyReport{
		WarehouseID: warehouseID,
		SKUID:       skuID,
		Anomalies:   anomalies,
		Mean:        math.Round(mean*100) / 100,
		StdDev:      math.Round(std*100) / 100,
		Threshold:   ZThreshold,
		DataPoints:  len(dates),
		LastUpdated: time.Now().Format(time.RFC3339),
	}, nil
}
