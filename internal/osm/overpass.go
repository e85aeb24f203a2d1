package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/patrickmn/go-cache"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/locipoint/nearby-api/internal/types"
)

const (
	// DefaultEndpoint is the public Overpass interpreter.
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"

	// maxQueryKeywords caps the regex alternation size; overly long
	// alternations are rejected or time out on the public interpreter.
	maxQueryKeywords = 10

	userAgent = "nearby-api/1.0"
)

// Client fetches tagged elements around a center point from the Overpass API.
// It caches responses, coalesces identical in-flight queries and rate-limits
// outgoing requests, so a single instance is safe to share across requests.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
	cache    *cache.Cache
	limiter  *rate.Limiter
	group    singleflight.Group
	timeout  time.Duration
}

// NewClient creates an Overpass client. An empty endpoint selects the public
// interpreter. The timeout is applied both client-side and as the server-side
// [timeout:] setting of every query.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout + 5*time.Second},
		logger:   logger,
		cache:    cache.New(5*time.Minute, 10*time.Minute),
		limiter:  rate.NewLimiter(rate.Limit(1), 2),
		timeout:  timeout,
	}
}

// Fetch executes the given filter against Overpass and returns the raw
// elements. A keyword query that comes back empty is retried once with the
// ASCII-only subset of the keywords; multibyte regex alternations are slow on
// the public interpreter and occasionally return nothing at all. An empty
// result is a valid answer, not an error.
func (c *Client) Fetch(ctx context.Context, filter types.FilterSpec) ([]types.RawElement, error) {
	l := c.logger.With(slog.String("service", "OverpassFetch"))

	query := c.buildQuery(filter, filter.Keywords)
	elements, err := c.run(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(elements) == 0 && !filter.Unfiltered {
		ascii := asciiOnly(filter.Keywords)
		if len(ascii) > 0 && len(ascii) < len(filter.Keywords) {
			l.InfoContext(ctx, "no hits, retrying with ascii keywords only",
				slog.Int("keywords", len(ascii)))
			return c.run(ctx, c.buildQuery(filter, ascii))
		}
	}

	l.DebugContext(ctx, "overpass fetch completed", slog.Int("elements", len(elements)))
	return elements, nil
}

// run posts one Overpass QL query, going through the cache, the request
// coalescing group and the rate limiter in that order.
func (c *Client) run(ctx context.Context, query string) ([]types.RawElement, error) {
	if cached, found := c.cache.Get(query); found {
		return cached.([]types.RawElement), nil
	}

	result, err, _ := c.group.Do(query, func() (interface{}, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to pass rate limiter: %w", err)
		}

		var elements []types.RawElement
		backoff := retry.WithMaxRetries(2, retry.NewConstant(2*time.Second))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			var err error
			elements, err = c.post(ctx, query)
			return err
		})
		if err != nil {
			return nil, err
		}

		c.cache.Set(query, elements, cache.DefaultExpiration)
		return elements, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.RawElement), nil
}

func (c *Client) post(ctx context.Context, query string) ([]types.RawElement, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to reach overpass: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, retry.RetryableError(fmt.Errorf("overpass returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var payload struct {
		Elements []types.RawElement `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	return payload.Elements, nil
}

// buildQuery renders a FilterSpec into Overpass QL. Keyword filters match the
// name, amenity, shop and cuisine tags case-insensitively on nodes and ways;
// the unfiltered mode pulls every amenity and shop in range instead.
func (c *Client) buildQuery(filter types.FilterSpec, keywords []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(c.timeout.Seconds()))

	around := fmt.Sprintf("(around:%d,%f,%f)", filter.RadiusM, filter.Center.Lat, filter.Center.Lon)

	if filter.Unfiltered || len(keywords) == 0 {
		for _, kind := range []string{"node", "way"} {
			fmt.Fprintf(&b, "  %s[\"amenity\"]%s;\n", kind, around)
			fmt.Fprintf(&b, "  %s[\"shop\"]%s;\n", kind, around)
		}
	} else {
		pattern := keywordPattern(keywords)
		for _, kind := range []string{"node", "way"} {
			for _, tag := range []string{"name", "amenity", "shop", "cuisine"} {
				fmt.Fprintf(&b, "  %s[%q~%q,i]%s;\n", kind, tag, pattern, around)
			}
		}
	}

	b.WriteString(");\nout center;\n")
	return b.String()
}

func keywordPattern(keywords []string) string {
	if len(keywords) > maxQueryKeywords {
		keywords = keywords[:maxQueryKeywords]
	}
	escaped := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(k))
	}
	return strings.Join(escaped, "|")
}

func asciiOnly(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if k == "" {
			continue
		}
		ascii := true
		for _, r := range k {
			if r > unicode.MaxASCII {
				ascii = false
				break
			}
		}
		if ascii {
			out = append(out, k)
		}
	}
	return out
}
