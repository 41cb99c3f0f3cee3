// Package forecast produces statistical demand forecasts from daily
// sales history: base demand shaped by weekday, monthly and trend
// factors, with a volatility-derived confidence band.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"supplynav/internal/model"
)

// MinHistoryDays is the minimum number of distinct daily observations
// required before any pattern analysis is attempted.
const MinHistoryDays = 10

// ErrInsufficientData is returned when the history is too short to
// analyze.
var ErrInsufficientData = errors.New("insufficient sales history")

// Patterns are the demand regularities extracted from history.
type Patterns struct {
	BaseDemand       float64
	Volatility       float64                  // damped sample std of daily demand
	ConfidenceFactor float64                  // relative band width, capped at 0.4
	Weekday          map[time.Weekday]float64 // factor vs mean, 1.0 = average day
	Monthly          map[time.Month]float64
	Trend            float64 // multiplicative trend factor per 30 days
}

type daily struct {
	date  time.Time
	units float64
}

func dailyTotals(recs []model.SalesRecord) ([]daily, error) {
	byDate := map[string]float64{}
	for _, r := range recs {
		byDate[r.Date] += float64(r.UnitsSold)
	}
	out := make([]daily, 0, len(byDate))
	for ds, units := range byDate {
		d, err := time.Parse("2006-01-02", ds)
		if err != nil {
			return nil, fmt.Errorf("bad sales date %q: %w", ds, err)
		}
		out = append(out, daily{date: d, units: units})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out, nil
}

// AnalyzePatterns extracts demand patterns from sales history.
func AnalyzePatterns(recs []model.SalesRecord) (*Patterns, error) {
	days, err := dailyTotals(recs)
	if err != nil {
		return nil, err
	}
	if len(days) < MinHistoryDays {
		return nil, fmt.Errorf("%w: %d daily points, need %d", ErrInsufficientData, len(days), MinHistoryDays)
	}

	base := 0.0
	for _, d := range days {
		base += d.units
	}
	base /= float64(len(days))
	if base <= 0 {
		return nil, fmt.Errorf("%w: zero mean demand", ErrInsufficientData)
	}

	ss := 0.0
	for _, d := range days {
		diff := d.units - base
		ss += diff * diff
	}
	// Sample standard deviation (n-1).
	std := math.Sqrt(ss / float64(len(days)-1))

	weekday := factorByKey(days, func(d daily) int { return int(d.date.Weekday()) })
	monthly := factorByKey(days, func(d daily) int { return int(d.date.Month()) })

	// Least-squares slope of daily units over the observation index,
	// damped to a tenth when turned into a multiplicative factor.
	slope := linearSlope(days)
	trend := 1 + (slope/base)*0.1

	wd := make(map[time.Weekday]float64, 7)
	for k, v := range weekday {
		wd[time.Weekday(k)] = v
	}
	mo := make(map[time.Month]float64, 12)
	for k, v := range monthly {
		mo[time.Month(k)] = v
	}

	volatility := std * 0.3
	return &Patterns{
		BaseDemand:       base,
		Volatility:       volatility,
		ConfidenceFactor: math.Min(0.4, volatility/base),
		Weekday:          wd,
		Monthly:          mo,
		Trend:            trend,
	}, nil
}

func factorByKey(days []daily, key func(daily) int) map[int]float64 {
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, d := range days {
		k := key(d)
		sums[k] += d.units
		counts[k]++
	}
	means := map[int]float64{}
	total := 0.0
	for k := range sums {
		means[k] = sums[k] / float64(counts[k])
		total += means[k]
	}
	grand := total / float64(len(means))
	out := map[int]float64{}
	for k, m := range means {
		if grand > 0 {
			out[k] = m / grand
		} else {
			out[k] = 1
		}
	}
	return out
}

func linearSlope(days []daily) float64 {
	n := float64(len(days))
	var sumX, sumY, sumXY, sumXX float64
	for i, d := range days {
		x := float64(i)
		sumX += x
		sumY += d.units
		sumXY += x * d.units
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func (p *Patterns) weekdayFactor(d time.Time) float64 {
	if f, ok := p.Weekday[d.Weekday()]; ok {
		return f
	}
	return 1
}

func (p *Patterns) monthlyFactor(d time.Time) float64 {
	if f, ok := p.Monthly[d.Month()]; ok {
		return f
	}
	return 1
}

func (p *Patterns) trendFactor(daysAhead int) float64 {
	return 1 + (p.Trend-1)*(float64(daysAhead)/30)
}

// Forecast projects demand for horizon days starting the day after
// `from`. Model confidence decays with the horizon and floors at 0.6.
func Forecast(recs []model.SalesRecord, warehouseID, skuID string, horizon int, from time.Time) (*model.ForecastResult, error) {
	if horizon < 1 {
		horizon = 7
	}
	patterns, err := AnalyzePatterns(recs)
	if err != nil {
		return nil, err
	}

	points := make([]model.ForecastPoint, 0, horizon)
	for day := 1; day <= horizon; day++ {
		date := from.AddDate(0, 0, day)
		seasonal := patterns.monthlyFactor(date)
		weekly := patterns.weekdayFactor(date)
		trend := patterns.trendFactor(day)

		predicted := patterns.BaseDemand * seasonal * weekly * trend
		if predicted < 0 {
			predicted = 0
		}
		// Band scales with the prediction itself, capped at 40%.
		band := predicted * patterns.ConfidenceFactor
		lower := predicted - band
		if lower < 0 {
			lower = 0
		}
		points = append(points, model.ForecastPoint{
			Date:            date.Format("2006-01-02"),
			PredictedDemand: round2(predicted),
			ConfidenceLower: round2(lower),
			ConfidenceUpper: round2(predicted + band),
			ModelConfidence: math.Max(0.6, 0.9-float64(day)*0.02),
			PatternFactors: map[string]float64{
				"seasonal": round3(seasonal),
				"weekly":   round3(weekly),
				"trend":    round3(trend),
			},
		})
	}

	return &model.ForecastResult{
		WarehouseID: warehouseID,
		SKUID:       skuID,
		Points:      points,
		Method:      "pattern_analysis",
		DataPoints:  len(recs),
		LastUpdated: time.Now().Format(time.RFC3339),
	}, nil
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
