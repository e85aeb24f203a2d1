// Package search implements the POI retrieval, normalization and
// relevance-ranking pipeline: expand a free-text request into keywords,
// resolve the named place, fetch tagged elements around it, then score,
// deduplicate and truncate them into a presentable result set.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/locipoint/nearby-api/internal/geocode"
	"github.com/locipoint/nearby-api/internal/llm"
	"github.com/locipoint/nearby-api/internal/osm"
	"github.com/locipoint/nearby-api/internal/types"
	"github.com/locipoint/nearby-api/pkg/observability"
	"github.com/locipoint/nearby-api/pkg/utils"
)

// Geocoder returns ranked geocoding candidates for a free-text place query.
type Geocoder interface {
	Search(ctx context.Context, place string) ([]types.GeocodeCandidate, error)
}

// POIFetcher executes an area-bounded tag query against the geo-data service.
type POIFetcher interface {
	Fetch(ctx context.Context, filter types.FilterSpec) ([]types.RawElement, error)
}

// RecordWriter persists one completed search interaction.
type RecordWriter interface {
	Write(record types.SearchRecord) error
}

// Options is the read-only per-process pipeline configuration.
type Options struct {
	RadiusM    int
	MaxResults int
}

// Service exposes the search pipeline to transport layers.
type Service interface {
	Search(ctx context.Context, userInput string) (*types.ResultSet, error)
	Narrate(ctx context.Context, userInput string, results *types.ResultSet) (string, error)
}

type ServiceImpl struct {
	geocoder Geocoder
	resolver *geocode.Resolver
	fetcher  POIFetcher
	aiClient llm.ChatClient
	recorder RecordWriter
	metrics  *observability.Metrics
	logger   *slog.Logger
	opts     Options
}

// NewServiceImpl wires the pipeline. recorder and metrics may be nil.
func NewServiceImpl(
	geocoder Geocoder,
	resolver *geocode.Resolver,
	fetcher POIFetcher,
	aiClient llm.ChatClient,
	recorder RecordWriter,
	metrics *observability.Metrics,
	logger *slog.Logger,
	opts Options,
) *ServiceImpl {
	if opts.RadiusM <= 0 {
		opts.RadiusM = 1000
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	return &ServiceImpl{
		geocoder: geocoder,
		resolver: resolver,
		fetcher:  fetcher,
		aiClient: aiClient,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
	}
}

// Search runs the full pipeline for one request. Absence of matching POIs is
// a valid outcome with an empty item list; only an unresolvable location is a
// hard stop.
func (s *ServiceImpl) Search(ctx context.Context, userInput string) (*types.ResultSet, error) {
	l := s.logger.With(slog.String("service", "Search"))
	tracer := otel.GetTracerProvider().Tracer("nearby/search")
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	startTime := time.Now()

	place, spec := s.expandKeywords(ctx, userInput)
	span.SetAttributes(
		attribute.String("search.place", place),
		attribute.Int("search.must_keywords", len(spec.Must)),
		attribute.Int("search.want_keywords", len(spec.Want)),
	)

	candidates, err := s.geocoder.Search(ctx, place)
	if err != nil {
		s.countError("geocode")
		s.finish("error", startTime, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoding failed")
		return nil, fmt.Errorf("failed to geocode place %q: %w", place, err)
	}

	chosen, err := s.resolver.Resolve(candidates)
	if err != nil {
		s.finish("not_found", startTime, 0)
		l.InfoContext(ctx, "no geocoding candidates", slog.String("place", place))
		return nil, fmt.Errorf("failed to resolve location %q: %w", place, err)
	}
	center := chosen.Coordinate
	span.SetAttributes(
		attribute.Float64("search.center_lat", center.Lat),
		attribute.Float64("search.center_lon", center.Lon),
	)

	// The expansion output may legitimately degenerate to zero keywords;
	// the pipeline then deliberately opts into an unfiltered area query
	// rather than failing (empty must means "match everything").
	keywords := append(append([]string{}, spec.Must...), spec.Want...)
	filter, err := BuildFilter(center, s.opts.RadiusM, keywords, len(keywords) == 0)
	if err != nil {
		s.finish("error", startTime, 0)
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build filter: %w", err)
	}

	elements, err := s.fetcher.Fetch(ctx, filter)
	if err != nil {
		s.countError("overpass")
		s.finish("error", startTime, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "geo-data fetch failed")
		return nil, fmt.Errorf("failed to fetch nearby elements: %w", err)
	}

	pois := make([]types.NormalizedPOI, 0, len(elements))
	for _, el := range elements {
		if poi, ok := osm.Normalize(el, center); ok {
			pois = append(pois, poi)
		}
	}

	scored := ScoreAll(pois, spec)
	items := Select(scored, s.opts.MaxResults)

	span.SetAttributes(
		attribute.Int("search.elements", len(elements)),
		attribute.Int("search.candidates", len(scored)),
		attribute.Int("search.results", len(items)),
	)
	l.InfoContext(ctx, "search pipeline completed",
		slog.String("place", chosen.DisplayName),
		slog.Int("elements", len(elements)),
		slog.Int("candidates", len(scored)),
		slog.Int("results", len(items)),
	)

	results := &types.ResultSet{
		Place:    chosen.DisplayName,
		Center:   center,
		Items:    items,
		HitCount: len(scored),
	}

	s.record(ctx, userInput, spec, results, startTime)
	s.finish("ok", startTime, len(items))
	return results, nil
}

// Narrate asks the model to turn a result set into a natural-language answer.
func (s *ServiceImpl) Narrate(ctx context.Context, userInput string, results *types.ResultSet) (string, error) {
	if results == nil || len(results.Items) == 0 {
		return "No matching places were found for your request. The area may be quiet, or the data source may be missing them.", nil
	}

	prompt := getRecommendationPrompt(userInput, results.Place, results.Items)
	answer, err := s.aiClient.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	})
	if err != nil {
		s.countError("llm")
		return "", fmt.Errorf("failed to compose recommendation: %w", err)
	}
	return answer, nil
}

// expandKeywords runs the keyword-expansion model call. Its output is
// untrusted: any failure or malformed shape degrades to searching the raw
// input with empty keyword sets instead of halting the pipeline.
func (s *ServiceImpl) expandKeywords(ctx context.Context, userInput string) (string, types.KeywordSpec) {
	l := s.logger.With(slog.String("service", "expandKeywords"))

	fallback := types.KeywordSpec{}
	if s.aiClient == nil {
		return userInput, fallback
	}

	response, err := s.aiClient.GenerateContent(ctx, getKeywordExpansionPrompt(userInput),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.2),
		})
	if err != nil {
		s.countError("llm")
		l.WarnContext(ctx, "keyword expansion failed, using raw input", slog.Any("error", err))
		return userInput, fallback
	}

	var expanded struct {
		TargetPlace  string   `json:"target_place"`
		MustKeywords []string `json:"must_keywords"`
		WantKeywords []string `json:"want_keywords"`
	}
	if err := json.Unmarshal([]byte(utils.CleanJSONResponse(response)), &expanded); err != nil {
		l.WarnContext(ctx, "keyword expansion returned malformed JSON, using raw input",
			slog.Any("error", err))
		return userInput, fallback
	}

	place := expanded.TargetPlace
	if place == "" {
		place = userInput
	}
	return place, types.KeywordSpec{Must: expanded.MustKeywords, Want: expanded.WantKeywords}
}

func (s *ServiceImpl) record(ctx context.Context, userInput string, spec types.KeywordSpec, results *types.ResultSet, startTime time.Time) {
	if s.recorder == nil {
		return
	}

	model := ""
	if s.aiClient != nil {
		model = s.aiClient.Model()
	}
	rec := types.SearchRecord{
		ID:        uuid.New(),
		UserInput: userInput,
		Place:     results.Place,
		Center:    results.Center,
		Spec:      spec,
		HitCount:  results.HitCount,
		Results:   results.Items,
		Timestamp: startTime,
		LatencyMs: int(time.Since(startTime).Milliseconds()),
		ModelUsed: model,
	}
	if err := s.recorder.Write(rec); err != nil {
		s.logger.WarnContext(ctx, "failed to write search record", slog.Any("error", err))
	}
}

func (s *ServiceImpl) finish(status string, startTime time.Time, results int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchesTotal.WithLabelValues(status).Inc()
	s.metrics.SearchDuration.Observe(time.Since(startTime).Seconds())
	s.metrics.ResultCount.Observe(float64(results))
}

func (s *ServiceImpl) countError(collaborator string) {
	if s.metrics == nil {
		return
	}
	s.metrics.CollaboratorErrors.WithLabelValues(collaborator).Inc()
}
