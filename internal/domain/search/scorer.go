package search

import (
	"slices"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/locipoint/nearby-api/internal/types"
)

const (
	// mustMatchBonus dominates any bounded combination of want bonuses so
	// hard-filtered hits always outrank soft-only ones.
	mustMatchBonus = 50
	wantMatchBonus = 10
)

// searchableTags are the tag values folded into the match blob besides the
// name. All other tags are opaque pass-through data, kept for presentation
// but never matched against.
var searchableTags = []string{"amenity", "shop", "cuisine"}

// ScoreAll scores and orders POIs against a keyword spec. POIs matching no
// must-keyword are excluded when the must set is non-empty; each matched
// want-keyword adds a bonus and is retained for presentation. The output is
// totally ordered: score descending, then name ascending.
//
// An empty input yields an empty output; that is not an error.
func ScoreAll(pois []types.NormalizedPOI, spec types.KeywordSpec) []types.ScoredPOI {
	must := foldKeywords(spec.Must)
	want := foldKeywords(spec.Want)

	// A keyword listed in both sets is a must; duplicate automaton patterns
	// would shadow each other's indices.
	want = slices.DeleteFunc(want, func(k string) bool {
		return slices.Contains(must, k)
	})

	patterns := make([]string, 0, len(must)+len(want))
	patterns = append(patterns, must...)
	patterns = append(patterns, want...)

	var matcher ahocorasick.AhoCorasick
	if len(patterns) > 0 {
		builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
			AsciiCaseInsensitive: true,
			MatchKind:            ahocorasick.StandardMatch,
		})
		matcher = builder.Build(patterns)
	}

	scored := make([]types.ScoredPOI, 0, len(pois))
	for _, poi := range pois {
		blob := buildBlob(poi)

		hit := make([]bool, len(patterns))
		if len(patterns) > 0 {
			iter := matcher.IterOverlapping(blob)
			for m := iter.Next(); m != nil; m = iter.Next() {
				hit[m.Pattern()] = true
			}
		}

		score := 0
		if len(must) > 0 {
			matched := false
			for i := range must {
				if hit[i] {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			score += mustMatchBonus
		}

		var matchedWant []string
		for i, kw := range want {
			if hit[len(must)+i] {
				score += wantMatchBonus
				matchedWant = append(matchedWant, kw)
			}
		}

		scored = append(scored, types.ScoredPOI{
			NormalizedPOI: poi,
			Score:         score,
			Matched:       matchedWant,
		})
	}

	slices.SortFunc(scored, func(a, b types.ScoredPOI) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.Name, b.Name)
	})
	return scored
}

// buildBlob renders one POI into the lowercased text its keywords are matched
// against. Binary facility tags are expanded into the words users actually
// type: the raw tag vocabulary ("internet_access", "socket") has no lexical
// overlap with request keywords like "wifi", so without this step attribute
// matching is impossible.
func buildBlob(poi types.NormalizedPOI) string {
	parts := []string{poi.Name}
	for _, key := range searchableTags {
		if v := poi.Tags[key]; v != "" {
			parts = append(parts, v)
		}
	}

	switch poi.Tags["internet_access"] {
	case "yes", "wlan", "wifi":
		parts = append(parts, "wifi internet wlan")
	}
	switch poi.Tags["socket"] {
	case "yes", "plugs":
		parts = append(parts, "power socket outlet 電源 コンセント")
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// foldKeywords lowercases and dedupes a keyword list, dropping empties.
func foldKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
