// Package osm talks to the Overpass API and converts its elements into the
// canonical POI form used by the search pipeline.
package osm

import (
	"maps"

	"github.com/locipoint/nearby-api/internal/geo"
	"github.com/locipoint/nearby-api/internal/types"
)

// Normalize converts one raw Overpass element into a NormalizedPOI, computing
// its distance from the search center. Elements without a name tag or without
// any usable coordinate are not normalizable; the second return value is false
// and the element is expected to be dropped without logging an error, since
// partial geodata is routine.
func Normalize(raw types.RawElement, center types.Coordinate) (types.NormalizedPOI, bool) {
	name := raw.Tags["name"]
	if name == "" {
		return types.NormalizedPOI{}, false
	}

	coord, ok := resolveCoordinate(raw)
	if !ok {
		return types.NormalizedPOI{}, false
	}

	tags := make(map[string]string, len(raw.Tags))
	maps.Copy(tags, raw.Tags)

	return types.NormalizedPOI{
		Name:       name,
		Coordinate: coord,
		Tags:       tags,
		DistanceM:  geo.Distance(center, coord),
	}, true
}

// resolveCoordinate prefers the element's own position and falls back to the
// derived center that "out center" attaches to ways and relations.
func resolveCoordinate(raw types.RawElement) (types.Coordinate, bool) {
	if raw.Lat != nil && raw.Lon != nil {
		return types.Coordinate{Lat: *raw.Lat, Lon: *raw.Lon}, true
	}
	if raw.Center != nil {
		return *raw.Center, true
	}
	return types.Coordinate{}, false
}
