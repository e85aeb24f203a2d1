package search

import (
	"fmt"

	"github.com/locipoint/nearby-api/internal/types"
)

// dedupePrecision rounds coordinates to 4 decimal places (roughly 11 m) for
// the duplicate key. The same physical POI often appears both as a node and
// as a way with a derived center a few meters off; at this precision both
// land in the same bucket.
const dedupePrecision = "%s|%.4f|%.4f"

// Select deduplicates scored POIs by (name, rounded coordinate), keeps the
// first occurrence in score order, truncates to maxCount and attaches the
// presentation distance string and map link.
func Select(scored []types.ScoredPOI, maxCount int) []types.ResultItem {
	if maxCount <= 0 {
		return []types.ResultItem{}
	}

	items := make([]types.ResultItem, 0, maxCount)
	seen := make(map[string]struct{}, len(scored))

	for _, poi := range scored {
		key := fmt.Sprintf(dedupePrecision, poi.Name, poi.Coordinate.Lat, poi.Coordinate.Lon)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		items = append(items, types.ResultItem{
			Name:      poi.Name,
			Distance:  fmt.Sprintf("~%dm", poi.DistanceM),
			DistanceM: poi.DistanceM,
			MapsURL:   mapsURL(poi.Coordinate),
			Score:     poi.Score,
			Matched:   poi.Matched,
			Tags:      poi.Tags,
		})
		if len(items) == maxCount {
			break
		}
	}
	return items
}

func mapsURL(c types.Coordinate) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", c.Lat, c.Lon)
}
