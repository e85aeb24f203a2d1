package osm

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locipoint/nearby-api/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFilter(keywords ...string) types.FilterSpec {
	return types.FilterSpec{
		Center:   types.Coordinate{Lat: 35.0, Lon: 135.0},
		RadiusM:  1000,
		Keywords: keywords,
	}
}

func TestFetchDecodesElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("data"), "around:1000")

		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":35.001,"lon":135.001,"tags":{"name":"Cafe Alpha","amenity":"cafe"}},
			{"type":"way","id":2,"center":{"lat":35.002,"lon":135.002},"tags":{"name":"Mall Beta"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 10*time.Second, testLogger())
	elements, err := client.Fetch(context.Background(), testFilter("cafe"))
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "Cafe Alpha", elements[0].Tags["name"])
	require.NotNil(t, elements[1].Center)
	assert.Equal(t, 35.002, elements[1].Center.Lat)
}

func TestFetchRetriesWithASCIIKeywords(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query := r.PostForm.Get("data")

		if calls.Add(1) == 1 {
			assert.Contains(t, query, "ラーメン")
			w.Write([]byte(`{"elements":[]}`))
			return
		}
		assert.NotContains(t, query, "ラーメン")
		assert.Contains(t, query, "ramen")
		w.Write([]byte(`{"elements":[{"type":"node","id":3,"lat":35.0,"lon":135.0,"tags":{"name":"Ramen Ichi"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 10*time.Second, testLogger())
	elements, err := client.Fetch(context.Background(), testFilter("ラーメン", "ramen"))
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 10*time.Second, testLogger())
	elements, err := client.Fetch(context.Background(), testFilter("cafe"))
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestFetchCachesResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"elements":[{"type":"node","id":1,"lat":35.0,"lon":135.0,"tags":{"name":"Cafe"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 10*time.Second, testLogger())
	for range 3 {
		_, err := client.Fetch(context.Background(), testFilter("cafe"))
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchSurfacesClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 10*time.Second, testLogger())
	_, err := client.Fetch(context.Background(), testFilter("cafe"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestBuildQueryShape(t *testing.T) {
	client := NewClient("http://localhost", 25*time.Second, testLogger())

	query := client.buildQuery(testFilter("cafe", "coffee"), []string{"cafe", "coffee"})
	assert.Contains(t, query, "[out:json][timeout:25]")
	assert.Contains(t, query, `node["name"~"cafe|coffee",i](around:1000,35.0`)
	assert.Contains(t, query, `way["cuisine"~"cafe|coffee",i]`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(query), "out center;"))

	unfiltered := client.buildQuery(types.FilterSpec{
		Center: types.Coordinate{Lat: 35, Lon: 135}, RadiusM: 500, Unfiltered: true,
	}, nil)
	assert.Contains(t, unfiltered, `node["amenity"](around:500`)
	assert.NotContains(t, unfiltered, "~")
}

func TestKeywordPatternEscapesAndCaps(t *testing.T) {
	pattern := keywordPattern([]string{"fish&chips", ""})
	assert.Equal(t, `fish&chips`, pattern)

	many := make([]string, 15)
	for i := range many {
		many[i] = "k"
	}
	assert.Equal(t, maxQueryKeywords, strings.Count(keywordPattern(many), "k"))
}
