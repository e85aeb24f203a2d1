// Package geo holds the great-circle math shared by the search pipeline.
package geo

import (
	"math"

	"github.com/locipoint/nearby-api/internal/types"
)

// EarthRadiusM is the mean Earth radius used by the haversine formula.
const EarthRadiusM = 6371000.0

// Distance returns the great-circle distance between a and b in meters,
// rounded down to a whole meter. Identical coordinates yield exactly 0.
func Distance(a, b types.Coordinate) int {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(EarthRadiusM * c)
}
