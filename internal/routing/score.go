package routing

import (
	"math"

	"supplynav/internal/model"
)

// DefaultIdealMilesPerStop is the reference distance per stop a route
// is scored against.
const DefaultIdealMilesPerStop = 10.0

// ScoreRoute computes the 0-100 efficiency score for a single route.
// The base score compares average distance per delivery stop to the
// ideal reference and decays linearly past it; a spacing-uniformity
// bonus (+10 below CV 0.3, +5 below CV 0.5) rewards evenly spread
// stops. The result is clamped to [0, 100].
func ScoreRoute(r model.Route, idealMilesPerStop float64) float64 {
	deliveries := len(r.Stops) - 1
	if deliveries < 1 {
		return 0
	}
	if idealMilesPerStop <= 0 {
		idealMilesPerStop = DefaultIdealMilesPerStop
	}

	perStop := float64(r.TotalDistance) / float64(deliveries)
	score := 100.0
	if perStop > idealMilesPerStop {
		score = 100 - (perStop-idealMilesPerStop)/idealMilesPerStop*50
		if score < 0 {
			score = 0
		}
	}

	if len(r.Stops) > 2 {
		var dists []float64
		for i := 1; i < len(r.Stops)-1; i++ {
			a, b := r.Stops[i], r.Stops[i+1]
			dists = append(dists, haversineMiles(a.Lat, a.Lng, b.Lat, b.Lng))
		}
		if mean := meanOf(dists); mean > 0 {
			cv := stddevOf(dists, mean) / mean
			switch {
			case cv < 0.3:
				score += 10
			case cv < 0.5:
				score += 5
			}
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return round1(score)
}

// FleetScore is the stop-count-weighted mean of per-route scores, 0 for
// an empty route set.
func FleetScore(routes []model.Route) float64 {
	totalScore := 0.0
	totalWeight := 0
	for _, r := range routes {
		w := r.NumStops
		if w < 1 {
			w = 1
		}
		totalScore += r.EfficiencyScore * float64(w)
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return round1(totalScore / float64(totalWeight))
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
