package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locipoint/nearby-api/internal/types"
)

var testCenter = types.Coordinate{Lat: 35.0, Lon: 135.0}

func TestBuildFilterRejectsNonPositiveRadius(t *testing.T) {
	for _, radius := range []int{0, -1, -500} {
		_, err := BuildFilter(testCenter, radius, []string{"ramen"}, false)
		assert.ErrorIs(t, err, types.ErrInvalidRadius)
	}
}

func TestBuildFilterRejectsEmptyKeywordsWithoutOptIn(t *testing.T) {
	_, err := BuildFilter(testCenter, 500, nil, false)
	assert.ErrorIs(t, err, types.ErrEmptyKeywordSet)

	_, err = BuildFilter(testCenter, 500, []string{"", "  "}, false)
	assert.ErrorIs(t, err, types.ErrEmptyKeywordSet)
}

func TestBuildFilterUnfilteredOptIn(t *testing.T) {
	filter, err := BuildFilter(testCenter, 500, nil, true)
	require.NoError(t, err)
	assert.True(t, filter.Unfiltered)
	assert.Empty(t, filter.Keywords)
}

func TestBuildFilterRejectsInvalidCenter(t *testing.T) {
	_, err := BuildFilter(types.Coordinate{Lat: 91, Lon: 0}, 500, []string{"cafe"}, false)
	assert.ErrorIs(t, err, types.ErrBadRequest)

	_, err = BuildFilter(types.Coordinate{Lat: 0, Lon: -200}, 500, []string{"cafe"}, false)
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestBuildFilterDoesNotAliasKeywords(t *testing.T) {
	keywords := []string{"ramen"}
	filter, err := BuildFilter(testCenter, 500, keywords, false)
	require.NoError(t, err)

	keywords[0] = "mutated"
	assert.Equal(t, []string{"ramen"}, filter.Keywords)
	assert.Equal(t, 500, filter.RadiusM)
}

func TestBuildFilterTrimsKeywords(t *testing.T) {
	filter, err := BuildFilter(testCenter, 1000, []string{" cafe ", "", "coffee"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"cafe", "coffee"}, filter.Keywords)
}
