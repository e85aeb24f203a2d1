// The nearby command runs one interactive search from the terminal:
// ask what the user is looking for, run the pipeline, print the answer.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/locipoint/nearby-api/internal/domain/search"
	"github.com/locipoint/nearby-api/internal/geocode"
	"github.com/locipoint/nearby-api/internal/llm"
	"github.com/locipoint/nearby-api/internal/osm"
	"github.com/locipoint/nearby-api/internal/searchlog"
	"github.com/locipoint/nearby-api/internal/types"
	"github.com/locipoint/nearby-api/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var aiClient llm.ChatClient
	if cfg.Gemini.APIKey != "" {
		aiClient, err = llm.NewGeminiChatClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("failed to init gemini client: %w", err)
		}
	}

	var recorder search.RecordWriter
	if cfg.SearchLogPath != "" {
		w, err := searchlog.NewWriter(cfg.SearchLogPath)
		if err != nil {
			return fmt.Errorf("failed to init search log: %w", err)
		}
		recorder = w
	}

	svc := search.NewServiceImpl(
		geocode.NewClient(cfg.Nominatim.Endpoint, cfg.Nominatim.CountryCode,
			cfg.Nominatim.Limit, cfg.Nominatim.Timeout, logger),
		geocode.NewResolver(),
		osm.NewClient(cfg.Overpass.Endpoint, cfg.Overpass.Timeout, logger),
		aiClient,
		recorder,
		nil,
		logger,
		search.Options{RadiusM: cfg.Search.RadiusM, MaxResults: cfg.Search.MaxResults},
	)

	fmt.Print("What are you looking for?\n> ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.New("empty request")
	}

	fmt.Println("\nSearching...")
	results, err := svc.Search(ctx, input)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			fmt.Println("The place could not be found.")
			return nil
		}
		return err
	}

	fmt.Printf("Center: %s\nCandidates: %d\n\n", results.Place, results.HitCount)

	if aiClient != nil {
		answer, err := svc.Narrate(ctx, input, results)
		if err != nil {
			logger.Warn("narration failed, falling back to plain listing", slog.Any("error", err))
		} else {
			fmt.Println(answer)
			return nil
		}
	}

	if len(results.Items) == 0 {
		fmt.Println("No matching places were found.")
		return nil
	}
	for i, item := range results.Items {
		fmt.Printf("%d. %s (%s)\n   %s\n", i+1, item.Name, item.Distance, item.MapsURL)
	}
	return nil
}
