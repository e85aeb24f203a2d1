package search

import (
	"fmt"
	"strings"

	"github.com/locipoint/nearby-api/internal/types"
)

// BuildFilter validates and packages one area-bounded tag query. The keyword
// slice is copied, never aliased, so callers can keep mutating their own set.
//
// An empty keyword set is refused unless the caller explicitly opts into
// unfiltered mode: an unscoped Overpass query over a dense area is expensive
// and returns overwhelming volumes, so the gate is deliberate.
func BuildFilter(center types.Coordinate, radiusM int, keywords []string, unfiltered bool) (types.FilterSpec, error) {
	if !center.Valid() {
		return types.FilterSpec{}, fmt.Errorf("%w: center coordinate out of range", types.ErrBadRequest)
	}
	if radiusM <= 0 {
		return types.FilterSpec{}, types.ErrInvalidRadius
	}

	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}

	if len(cleaned) == 0 && !unfiltered {
		return types.FilterSpec{}, types.ErrEmptyKeywordSet
	}

	return types.FilterSpec{
		Center:     center,
		RadiusM:    radiusM,
		Keywords:   cleaned,
		Unfiltered: unfiltered,
	}, nil
}
