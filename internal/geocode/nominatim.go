// Package geocode resolves free-text place names into coordinates using the
// Nominatim API and a pluggable disambiguation policy.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/locipoint/nearby-api/internal/types"
)

const (
	// DefaultEndpoint is the public Nominatim search endpoint.
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"

	userAgent = "nearby-api/1.0"
)

// Client queries Nominatim for geocoding candidates. Responses are cached;
// the public instance asks clients to keep traffic to a minimum.
type Client struct {
	endpoint    string
	countryCode string
	limit       int
	http        *http.Client
	logger      *slog.Logger
	cache       *cache.Cache
}

// searchResult follows the jsonv2 response shape, which renames the legacy
// "class" field to "category".
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// NewClient creates a Nominatim client. An empty endpoint selects the public
// instance; countryCode optionally restricts results (e.g. "jp"); limit caps
// the number of candidates per query.
func NewClient(endpoint, countryCode string, limit int, timeout time.Duration, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if limit <= 0 {
		limit = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:    endpoint,
		countryCode: countryCode,
		limit:       limit,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
		cache:       cache.New(30*time.Minute, time.Hour),
	}
}

// Search returns the geocoding candidates for a free-text place query, in the
// order Nominatim ranked them. An empty slice means the place is unknown.
func (c *Client) Search(ctx context.Context, place string) ([]types.GeocodeCandidate, error) {
	l := c.logger.With(slog.String("service", "GeocodeSearch"))

	if cached, found := c.cache.Get(place); found {
		return cached.([]types.GeocodeCandidate), nil
	}

	query := url.Values{}
	query.Set("q", place)
	query.Set("format", "jsonv2")
	query.Set("limit", strconv.Itoa(c.limit))
	if c.countryCode != "" {
		query.Set("countrycodes", c.countryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	candidates := make([]types.GeocodeCandidate, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			l.WarnContext(ctx, "skipping candidate with bad latitude", slog.String("lat", r.Lat))
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			l.WarnContext(ctx, "skipping candidate with bad longitude", slog.String("lon", r.Lon))
			continue
		}
		candidates = append(candidates, types.GeocodeCandidate{
			DisplayName: r.DisplayName,
			Coordinate:  types.Coordinate{Lat: lat, Lon: lon},
			Class:       r.Category,
			Type:        r.Type,
		})
	}

	c.cache.Set(place, candidates, cache.DefaultExpiration)
	l.DebugContext(ctx, "geocode search completed",
		slog.String("place", place), slog.Int("candidates", len(candidates)))
	return candidates, nil
}
