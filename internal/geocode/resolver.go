package geocode

import (
	"strings"

	"github.com/locipoint/nearby-api/internal/types"
)

// PlacePolicy picks the authoritative candidate from a non-empty, ranked
// candidate list. Returning a negative index defers to the default choice
// (the first candidate).
type PlacePolicy func(candidates []types.GeocodeCandidate) int

// Resolver turns geocoding candidates into one coordinate. The disambiguation
// policy is a named field so alternative heuristics can be swapped in without
// touching the resolution flow.
type Resolver struct {
	Policy PlacePolicy
}

// NewResolver returns a Resolver using the PreferStations policy.
func NewResolver() *Resolver {
	return &Resolver{Policy: PreferStations}
}

// Resolve applies the policy to a ranked candidate list and returns the chosen
// candidate. An empty list yields types.ErrNotFound; no POI search is
// meaningful without a center.
func (r *Resolver) Resolve(candidates []types.GeocodeCandidate) (types.GeocodeCandidate, error) {
	if len(candidates) == 0 {
		return types.GeocodeCandidate{}, types.ErrNotFound
	}

	if r.Policy != nil {
		if idx := r.Policy(candidates); idx >= 0 && idx < len(candidates) {
			return candidates[idx], nil
		}
	}
	return candidates[0], nil
}

// PreferStations selects the first candidate that looks like a transit
// station, falling back to the top-ranked candidate. Station names are
// frequently ambiguous with homonymous neighborhoods, and when both senses
// exist the station is assumed to be what the user meant. This is a known
// source of mismatch for users who really do mean the neighborhood.
func PreferStations(candidates []types.GeocodeCandidate) int {
	for i, c := range candidates {
		if isStation(c) {
			return i
		}
	}
	return 0
}

// FirstCandidate trusts the geocoder's own ranking unconditionally.
func FirstCandidate([]types.GeocodeCandidate) int { return 0 }

func isStation(c types.GeocodeCandidate) bool {
	if strings.Contains(c.Type, "station") {
		return true
	}
	if c.Class == "railway" {
		return true
	}
	return strings.Contains(c.DisplayName, "駅") ||
		strings.Contains(strings.ToLower(c.DisplayName), " station")
}
