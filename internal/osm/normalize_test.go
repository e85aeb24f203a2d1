package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locipoint/nearby-api/internal/types"
)

func ptr(f float64) *float64 { return &f }

func TestNormalize(t *testing.T) {
	center := types.Coordinate{Lat: 35.0, Lon: 135.0}

	tests := []struct {
		name   string
		raw    types.RawElement
		wantOK bool
	}{
		{
			name: "node with name and direct coordinates",
			raw: types.RawElement{
				Type: "node",
				Lat:  ptr(35.001), Lon: ptr(135.001),
				Tags: map[string]string{"name": "Cafe Alpha", "amenity": "cafe"},
			},
			wantOK: true,
		},
		{
			name: "way with name and derived center only",
			raw: types.RawElement{
				Type:   "way",
				Center: &types.Coordinate{Lat: 35.002, Lon: 135.002},
				Tags:   map[string]string{"name": "Mall Beta", "shop": "mall"},
			},
			wantOK: true,
		},
		{
			name: "no name tag",
			raw: types.RawElement{
				Type: "node",
				Lat:  ptr(35.001), Lon: ptr(135.001),
				Tags: map[string]string{"amenity": "bench"},
			},
			wantOK: false,
		},
		{
			name:   "no name and no coordinates",
			raw:    types.RawElement{Type: "way", Tags: map[string]string{}},
			wantOK: false,
		},
		{
			name: "named but no coordinates anywhere",
			raw: types.RawElement{
				Type: "relation",
				Tags: map[string]string{"name": "Ghost"},
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poi, ok := Normalize(tt.raw, center)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.NotEmpty(t, poi.Name)
				assert.GreaterOrEqual(t, poi.DistanceM, 0)
			}
		})
	}
}

func TestNormalizeUsesCenterFallback(t *testing.T) {
	center := types.Coordinate{Lat: 35.0, Lon: 135.0}
	raw := types.RawElement{
		Type:   "way",
		Center: &types.Coordinate{Lat: 35.01, Lon: 135.0},
		Tags:   map[string]string{"name": "Big Park"},
	}

	poi, ok := Normalize(raw, center)
	require.True(t, ok)
	assert.Equal(t, types.Coordinate{Lat: 35.01, Lon: 135.0}, poi.Coordinate)
	assert.Greater(t, poi.DistanceM, 1000)
}

func TestNormalizeCopiesTags(t *testing.T) {
	raw := types.RawElement{
		Type: "node",
		Lat:  ptr(35.0), Lon: ptr(135.0),
		Tags: map[string]string{"name": "Cafe Gamma"},
	}

	poi, ok := Normalize(raw, types.Coordinate{Lat: 35.0, Lon: 135.0})
	require.True(t, ok)

	raw.Tags["name"] = "mutated"
	assert.Equal(t, "Cafe Gamma", poi.Tags["name"])
	assert.Equal(t, 0, poi.DistanceM)
}
