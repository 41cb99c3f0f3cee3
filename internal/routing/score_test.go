package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"supplynav/internal/model"
)

func routeWithStops(totalDistance int, stops ...model.Stop) model.Route {
	all := append([]model.Stop{{Kind: model.StopKindWarehouse}}, stops...)
	return model.Route{
		Stops:         all,
		TotalDistance: totalDistance,
		NumStops:      len(stops),
	}
}

func TestScoreSingleStopAtDepot(t *testing.T) {
	r := routeWithStops(0, model.Stop{Kind: model.StopKindDelivery})
	assert.Equal(t, 100.0, ScoreRoute(r, 10))
}

func TestScoreDecaysPastIdeal(t *testing.T) {
	// One stop, 15 miles: (15-10)/10*50 = 25 below the 100 base.
	r := routeWithStops(15, model.Stop{Kind: model.StopKindDelivery})
	assert.Equal(t, 75.0, ScoreRoute(r, 10))

	// One stop, 30 miles: decay bottoms out at zero.
	r = routeWithStops(30, model.Stop{Kind: model.StopKindDelivery})
	assert.Equal(t, 0.0, ScoreRoute(r, 10))
}

func TestScoreSpacingBonus(t *testing.T) {
	// Three stops on one meridian, evenly spaced: CV of inter-stop
	// distances is ~0, so the +10 bonus applies on top of the decayed
	// base (45 mi / 3 stops = 15 -> 75).
	stops := []model.Stop{
		{Kind: model.StopKindDelivery, Lat: 0.0, Lng: 0},
		{Kind: model.StopKindDelivery, Lat: 0.2, Lng: 0},
		{Kind: model.StopKindDelivery, Lat: 0.4, Lng: 0},
	}
	r := routeWithStops(45, stops...)
	assert.Equal(t, 85.0, ScoreRoute(r, 10))
}

func TestScoreCappedAt100(t *testing.T) {
	// Under-ideal distance plus uniform spacing must not exceed 100.
	stops := []model.Stop{
		{Kind: model.StopKindDelivery, Lat: 0.0, Lng: 0},
		{Kind: model.StopKindDelivery, Lat: 0.05, Lng: 0},
		{Kind: model.StopKindDelivery, Lat: 0.1, Lng: 0},
	}
	r := routeWithStops(9, stops...)
	assert.Equal(t, 100.0, ScoreRoute(r, 10))
}

func TestScoreEmptyRoute(t *testing.T) {
	assert.Equal(t, 0.0, ScoreRoute(model.Route{}, 10))
}

func TestFleetScoreWeightsByStops(t *testing.T) {
	routes := []model.Route{
		{EfficiencyScore: 100, NumStops: 1},
		{EfficiencyScore: 50, NumStops: 3},
	}
	// (100*1 + 50*3) / 4 = 62.5
	assert.Equal(t, 62.5, FleetScore(routes))
}

func TestFleetScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, FleetScore(nil))
}

func TestFleetScoreBounds(t *testing.T) {
	routes := []model.Route{
		{EfficiencyScore: 100, NumStops: 4},
		{EfficiencyScore: 0, NumStops: 2},
		{EfficiencyScore: 85.5, NumStops: 7},
	}
	got := FleetScore(routes)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 100.0)
}
