package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplynav/internal/forecast"
	"supplynav/internal/model"
)

func steadySales(days, unitsPerDay int) []model.SalesRecord {
	recs := make([]model.SalesRecord, 0, days)
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		recs = append(recs, model.SalesRecord{
			Date:        start.AddDate(0, 0, i).Format("2006-01-02"),
			WarehouseID: "WH1",
			SKUID:       "SKU1",
			UnitsSold:   unitsPerDay,
		})
	}
	return recs
}

func TestRecommendRequiresHistory(t *testing.T) {
	_, err := Recommend(steadySales(4, 100), nil, "WH1", "SKU1", 7, 0.95)
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)
}

func TestRecommendSteadyDemand(t *testing.T) {
	rec, err := Recommend(steadySales(30, 100), nil, "WH1", "SKU1", 7, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 100.0, rec.MeanDailyDemand)
	assert.Equal(t, 0.0, rec.DemandStdDev)
	// Zero variance: no safety stock, reorder covers lead-time demand.
	assert.Equal(t, 0, rec.SafetyStock)
	assert.Equal(t, 700, rec.ReorderPoint)
	assert.Equal(t, 1400, rec.OrderUpToLevel)
	assert.Equal(t, 7, rec.LeadTimeDays)
}

func TestRecommendVolatileDemandAddsSafetyStock(t *testing.T) {
	units := make([]model.SalesRecord, 0, 30)
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		u := 100
		if i%2 == 0 {
			u = 140
		} else {
			u = 60
		}
		units = append(units, model.SalesRecord{
			Date: start.AddDate(0, 0, i).Format("2006-01-02"), WarehouseID: "WH1", SKUID: "SKU1", UnitsSold: u,
		})
	}
	rec, err := Recommend(units, nil, "WH1", "SKU1", 7, 0.95)
	require.NoError(t, err)
	assert.Positive(t, rec.SafetyStock)
	assert.Greater(t, rec.ReorderPoint, 700)
}

func TestRecommendHigherServiceLevelRaisesSafetyStock(t *testing.T) {
	recs := steadySales(30, 100)
	for i := range recs {
		if i%3 == 0 {
			recs[i].UnitsSold = 160
		}
	}
	low, err := Recommend(recs, nil, "WH1", "SKU1", 7, 0.90)
	require.NoError(t, err)
	high, err := Recommend(recs, nil, "WH1", "SKU1", 7, 0.99)
	require.NoError(t, err)
	assert.Greater(t, high.SafetyStock, low.SafetyStock)
}

func TestRecommendForecastTrendTag(t *testing.T) {
	fc := &model.ForecastResult{Points: []model.ForecastPoint{
		{PredictedDemand: 120}, {PredictedDemand: 130},
	}}
	rec, err := Recommend(steadySales(30, 100), fc, "WH1", "SKU1", 7, 0.95)
	require.NoError(t, err)
	assert.Equal(t, "increasing", rec.DemandTrend)
	assert.Equal(t, 125.0, rec.ForecastDemand)

	fc.Points[0].PredictedDemand = 60
	fc.Points[1].PredictedDemand = 70
	rec, err = Recommend(steadySales(30, 100), fc, "WH1", "SKU1", 7, 0.95)
	require.NoError(t, err)
	assert.Equal(t, "decreasing", rec.DemandTrend)
}
