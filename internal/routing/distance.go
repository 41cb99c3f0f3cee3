package routing

import (
	"errors"
	"fmt"
	"math"

	"supplynav/internal/model"
)

// ErrInvalidLocation is returned when a coordinate is NaN or infinite.
// Range validation (lat in [-90,90], lng in [-180,180]) is a boundary
// concern and is not re-checked here.
var ErrInvalidLocation = errors.New("invalid location")

// earthRadiusMiles matches the accounting used everywhere else in the
// system: distances are miles, costs are dollars per mile.
const earthRadiusMiles = 3959.0

func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Distance computes the great-circle distance between two points in
// whole miles, floored. The solver needs integer edge costs.
func Distance(a, b model.GeoPoint) (int, error) {
	if !finite(a.Lat) || !finite(a.Lng) {
		return 0, fmt.Errorf("%w: (%v,%v)", ErrInvalidLocation, a.Lat, a.Lng)
	}
	if !finite(b.Lat) || !finite(b.Lng) {
		return 0, fmt.Errorf("%w: (%v,%v)", ErrInvalidLocation, b.Lat, b.Lng)
	}
	if a == b {
		return 0, nil
	}
	return int(haversineMiles(a.Lat, a.Lng, b.Lat, b.Lng)), nil
}

// Matrix is a square, symmetric distance matrix with zero diagonal.
// It is built once per optimization call and read-only afterwards.
type Matrix [][]int

// BuildMatrix computes pairwise distances over locs. Index order is
// preserved: locs[0] is expected to be the depot.
func BuildMatrix(locs []model.GeoPoint) (Matrix, error) {
	n := len(locs)
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d, err := Distance(locs[i], locs[j])
			if err != nil {
				return nil, fmt.Errorf("matrix [%d][%d]: %w", i, j, err)
			}
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m, nil
}
