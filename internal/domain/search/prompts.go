package search

import (
	"encoding/json"
	"fmt"

	"github.com/locipoint/nearby-api/internal/types"
)

func getKeywordExpansionPrompt(userInput string) string {
	return fmt.Sprintf(`
        You are a query extraction engine for a geographic search system.
        Extract the search conditions from the user's request and output JSON.

        Rules:
        1. "target_place": the place name to geocode, completed with region or
           prefecture where the request allows it (e.g. "Katsura" -> "Katsura Station, Kyoto").
        2. "must_keywords": the facility kinds the user cannot do without,
           as OpenStreetMap-style tag values plus common synonyms
           (e.g. a cafe request -> ["cafe", "coffee"]). At most 8 entries.
        3. "want_keywords": extra conditions the user explicitly mentioned,
           with synonyms (e.g. internet -> ["wifi", "internet", "wlan"]).
           Never add conditions the user did not mention; an empty list is fine.
        4. Do not repeat words from "target_place" in either keyword list.

        The result must be in JSON format:
        {
            "target_place": "...",
            "must_keywords": ["..."],
            "want_keywords": ["..."]
        }

        User request: %s
    `, userInput)
}

func getRecommendationPrompt(userInput, place string, items []types.ResultItem) string {
	payload, err := json.Marshal(items)
	if err != nil {
		payload = []byte("[]")
	}
	return fmt.Sprintf(`
        You are an honest local guide. Introduce the candidate places below to
        the user, best match first. Mention the distance of each place and
        include its map link as a markdown link. Only state facts present in
        the data; if something is not in the data, say that it is unknown
        rather than guessing.

        User request: %s
        Search center: %s
        Candidates: %s
    `, userInput, place, payload)
}
