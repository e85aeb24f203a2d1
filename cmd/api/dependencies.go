package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/locipoint/nearby-api/internal/domain/search"
	"github.com/locipoint/nearby-api/internal/geocode"
	"github.com/locipoint/nearby-api/internal/llm"
	"github.com/locipoint/nearby-api/internal/osm"
	"github.com/locipoint/nearby-api/internal/searchlog"
	"github.com/locipoint/nearby-api/pkg/config"
	"github.com/locipoint/nearby-api/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	Geocoder *geocode.Client
	Resolver *geocode.Resolver
	Overpass *osm.Client
	AIClient llm.ChatClient

	SearchService search.Service
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Server.MetricsEnabled {
		deps.Metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
	}

	deps.Geocoder = geocode.NewClient(
		cfg.Nominatim.Endpoint,
		cfg.Nominatim.CountryCode,
		cfg.Nominatim.Limit,
		cfg.Nominatim.Timeout,
		logger,
	)
	deps.Resolver = geocode.NewResolver()
	deps.Overpass = osm.NewClient(cfg.Overpass.Endpoint, cfg.Overpass.Timeout, logger)

	if cfg.Gemini.APIKey != "" {
		aiClient, err := llm.NewGeminiChatClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to init gemini client: %w", err)
		}
		deps.AIClient = aiClient
	} else {
		logger.Warn("GEMINI_API_KEY not set; keyword expansion and narration disabled")
	}

	var recorder search.RecordWriter
	if cfg.SearchLogPath != "" {
		w, err := searchlog.NewWriter(cfg.SearchLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to init search log: %w", err)
		}
		recorder = w
	}

	deps.SearchService = search.NewServiceImpl(
		deps.Geocoder,
		deps.Resolver,
		deps.Overpass,
		deps.AIClient,
		recorder,
		deps.Metrics,
		logger,
		search.Options{
			RadiusM:    cfg.Search.RadiusM,
			MaxResults: cfg.Search.MaxResults,
		},
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}
