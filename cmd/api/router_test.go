package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locipoint/nearby-api/internal/types"
	"github.com/locipoint/nearby-api/pkg/config"
)

type stubSearchService struct {
	results *types.ResultSet
	err     error
}

func (s *stubSearchService) Search(context.Context, string) (*types.ResultSet, error) {
	return s.results, s.err
}

func (s *stubSearchService) Narrate(context.Context, string, *types.ResultSet) (string, error) {
	return "narration", nil
}

func testDeps(svc *stubSearchService) *Dependencies {
	return &Dependencies{
		Config: &config.Config{
			Server: config.ServerConfig{RateLimitPerSecond: 100, RateLimitBurst: 100},
		},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		SearchService: svc,
	}
}

func TestSearchEndpoint(t *testing.T) {
	svc := &stubSearchService{results: &types.ResultSet{
		Place: "Kitaoji Station, Kyoto",
		Items: []types.ResultItem{{Name: "Cafe Hotei", Distance: "~120m"}},
	}}
	handler := SetupRouter(testDeps(svc))

	req := httptest.NewRequest(http.MethodPost, "/v1/search",
		strings.NewReader(`{"query":"wifi cafe near Kitaoji"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cafe Hotei")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSearchEndpointRejectsBadBody(t *testing.T) {
	handler := SetupRouter(testDeps(&stubSearchService{}))

	for _, body := range []string{"", "{}", "not json"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestSearchEndpointNotFound(t *testing.T) {
	svc := &stubSearchService{err: types.ErrNotFound}
	handler := SetupRouter(testDeps(svc))

	req := httptest.NewRequest(http.MethodPost, "/v1/search",
		strings.NewReader(`{"query":"cafe near Nowhere"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	handler := SetupRouter(testDeps(&stubSearchService{}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
