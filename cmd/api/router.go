package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/locipoint/nearby-api/internal/types"
	"github.com/locipoint/nearby-api/pkg/middleware"
)

type searchRequest struct {
	Query   string `json:"query"`
	Narrate bool   `json:"narrate,omitempty"`
}

type searchResponse struct {
	*types.ResultSet
	Narration string `json:"narration,omitempty"`
}

// SetupRouter configures all routes and returns the HTTP handler chain.
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/search", func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty \"query\"")
			return
		}

		results, err := deps.SearchService.Search(r.Context(), req.Query)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				writeError(w, http.StatusNotFound, "location could not be resolved")
				return
			}
			deps.Logger.Error("search failed", "error", err)
			writeError(w, http.StatusBadGateway, "search failed")
			return
		}

		resp := searchResponse{ResultSet: results}
		if req.Narrate && deps.AIClient != nil {
			narration, err := deps.SearchService.Narrate(r.Context(), req.Query, results)
			if err != nil {
				// The structured results are still useful on their own.
				deps.Logger.Warn("narration failed", "error", err)
			} else {
				resp.Narration = narration
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			deps.Logger.Error("failed to encode response", "error", err)
		}
	})

	registerUtilityRoutes(mux, deps)

	var limiter *rate.Limiter
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter = rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
	}

	var handler http.Handler = mux
	handler = middleware.RateLimit(limiter)(handler)
	handler = middleware.Logging(deps.Logger)(handler)
	handler = middleware.Recovery(deps.Logger)(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept-Encoding", "Content-Type", "X-Request-ID"},
	})
	return corsHandler.Handler(handler)
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	if deps.Config.Server.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
