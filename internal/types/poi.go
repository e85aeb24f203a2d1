package types

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite and within range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// GeocodeCandidate is one ranked hit from the geocoding service.
type GeocodeCandidate struct {
	DisplayName string     `json:"display_name"`
	Coordinate  Coordinate `json:"coordinate"`
	Class       string     `json:"class,omitempty"`
	Type        string     `json:"type,omitempty"` // place-type hint, e.g. "station"
}

// RawElement is an Overpass element as returned by the geo-data service.
// Nodes carry Lat/Lon directly; ways and relations queried with "out center"
// carry a derived Center instead. Either may be absent on partial data.
type RawElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Coordinate       `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// NormalizedPOI is the canonical, immutable form of a usable element.
type NormalizedPOI struct {
	Name       string            `json:"name"`
	Coordinate Coordinate        `json:"coordinate"`
	Tags       map[string]string `json:"tags"`
	DistanceM  int               `json:"distance_m"`
}

// KeywordSpec separates hard filters from soft scoring bonuses.
type KeywordSpec struct {
	Must []string `json:"must_keywords"`
	Want []string `json:"want_keywords"`
}

// ScoredPOI pairs a normalized POI with its relevance score and the
// want-keywords that matched it.
type ScoredPOI struct {
	NormalizedPOI
	Score   int      `json:"score"`
	Matched []string `json:"matched,omitempty"`
}

// FilterSpec is the declarative shape of one area-bounded tag query.
type FilterSpec struct {
	Center     Coordinate `json:"center"`
	RadiusM    int        `json:"radius_m"`
	Keywords   []string   `json:"keywords"`
	Unfiltered bool       `json:"unfiltered,omitempty"`
}

// ResultItem is one presentation-ready entry of a ResultSet.
type ResultItem struct {
	Name      string            `json:"name"`
	Distance  string            `json:"distance"`
	DistanceM int               `json:"distance_m"`
	MapsURL   string            `json:"maps_url,omitempty"`
	Score     int               `json:"score"`
	Matched   []string          `json:"matched,omitempty"`
	Tags      map[string]string `json:"details,omitempty"`
}

// ResultSet is the final ordered, truncated answer for one search.
type ResultSet struct {
	Place    string       `json:"place"`
	Center   Coordinate   `json:"center"`
	Items    []ResultItem `json:"items"`
	HitCount int          `json:"hit_count"`
}

// SearchRecord captures one completed interaction for the search log.
type SearchRecord struct {
	ID        uuid.UUID    `json:"id"`
	UserInput string       `json:"user_input"`
	Place     string       `json:"search_center"`
	Center    Coordinate   `json:"center"`
	Spec      KeywordSpec  `json:"keywords"`
	HitCount  int          `json:"hit_count"`
	Results   []ResultItem `json:"results"`
	Timestamp time.Time    `json:"timestamp"`
	LatencyMs int          `json:"latency_ms"`
	ModelUsed string       `json:"model_name,omitempty"`
}
