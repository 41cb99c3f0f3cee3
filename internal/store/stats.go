package store

import (
    "math"

    "supplynav/internal/model"
)

// computeRouteStats aggregates statistics over every route in every
// stored optimization. Both backends compute stats the same way so the
// numbers do not drift between in-memory and Postgres deployments.
func computeRouteStats(results []model.StoredResult) model.RouteStatistics {
    var stats model.RouteStatistics
    var scoreWeighted float64
    for _, sr := range results {
        for _, r := range sr.Result.Routes {
            stats.TotalRoutes++
            stats.TotalDistance += float64(r.TotalDistance)
            stats.TotalTimeMin += r.EstimatedTimeMin
            stats.TotalCost += r.EstimatedCost
            stats.TotalStops += r.NumStops
            scoreWeighted += r.EfficiencyScore * float64(r.NumStops)
            switch {
            case r.EfficiencyScore >= 90:
                stats.EfficiencyDistribution.Excellent++
            case r.EfficiencyScore >= 70:
                stats.EfficiencyDistribution.Good++
            case r.EfficiencyScore >= 50:
                stats.EfficiencyDistribution.Fair++
            default:
                stats.EfficiencyDistribution.Poor++
            }
        }
    }
    if stats.TotalRoutes > 0 {
        n := float64(stats.TotalRoutes)
        stats.AverageDistance = round2(stats.TotalDistance / n)
        stats.AverageTimeMin = round2(stats.TotalTimeMin / n)
        stats.AverageCost = round2(stats.TotalCost / n)
        stats.AverageStops = round2(float64(stats.TotalStops) / n)
    }
    if stats.TotalStops > 0 {
        stats.OverallEfficiency = round2(scoreWeighted / float64(stats.TotalStops))
    }
    stats.TotalDistance = round2(stats.TotalDistance)
    stats.TotalTimeMin = round2(stats.TotalTimeMin)
    stats.TotalCost = round2(stats.TotalCost)
    return stats
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
