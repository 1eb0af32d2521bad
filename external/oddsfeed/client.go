package oddsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/rawodds"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/platform/resilience"
	"github.com/riskibarqy/propline/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL  = "https://api.sportsgameodds.com/v2"
	defaultLimit    = 50
	maxPages        = 10
	maxResponseSize = 6 << 20
)

var errTransient = crerr.New("odds feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client reads events with player prop odds from the upstream odds feed.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.Breaker
	flight       singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("oddsfeed")

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		httpClient = &clone
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = otelhttp.NewTransport(base)

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breaker := resilience.NewBreaker("oddsfeed", cfg.CircuitBreaker, isCircuitFailure, func(name, from, to string) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		logger:       logger,
		breaker:      breaker,
	}
}

// FetchEvents follows the feed cursor until it is exhausted or maxPages pages
// have been read.
func (c *Client) FetchEvents(ctx context.Context, query rawodds.Query) ([]rawodds.Event, error) {
	values := buildQuery(query)

	var (
		events []rawodds.Event
		cursor string
	)
	for page := 0; page < maxPages; page++ {
		if cursor != "" {
			values.Set("cursor", cursor)
		}
		result, err := c.fetchPage(ctx, values)
		if err != nil {
			return nil, err
		}
		for _, item := range result.Events {
			events = append(events, toEvent(item))
		}
		c.logger.DebugContext(ctx, "odds feed page decoded",
			"league", query.League,
			"page", page,
			"shape", string(result.Kind),
			"events", len(result.Events),
		)
		if result.NextCursor == "" || result.NextCursor == cursor || len(result.Events) == 0 {
			break
		}
		cursor = result.NextCursor
	}
	return events, nil
}

func (c *Client) fetchPage(ctx context.Context, values url.Values) (eventPage, error) {
	fullURL := c.baseURL + "/events"
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		return resilience.Execute(c.breaker, func() ([]byte, error) {
			return c.executeRequest(ctx, fullURL)
		})
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "odds feed circuit breaker rejected request", "state", c.breaker.State())
			return eventPage{}, fmt.Errorf("%w: odds feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return eventPage{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return eventPage{}, fmt.Errorf("unexpected response payload type %T", out)
	}
	result, err := decodeEventPage(raw)
	if err != nil {
		return eventPage{}, fmt.Errorf("decode odds feed payload: %w", err)
	}
	return result, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "odds feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func buildQuery(query rawodds.Query) url.Values {
	values := url.Values{}
	if league := strings.ToUpper(strings.TrimSpace(query.League)); league != "" {
		values.Set("leagueID", league)
	}
	if query.Season > 0 {
		values.Set("season", strconv.Itoa(query.Season))
	}
	if query.StartsAfter != nil {
		values.Set("startsAfter", query.StartsAfter.UTC().Format(time.RFC3339))
	}
	if query.StartsBefore != nil {
		values.Set("startsBefore", query.StartsBefore.UTC().Format(time.RFC3339))
	}
	if len(query.OddIDs) > 0 {
		values.Set("oddIDs", strings.Join(query.OddIDs, ","))
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	values.Set("limit", strconv.Itoa(limit))
	return values
}

// isCircuitFailure counts transport failures and 5xx/429 answers against the
// breaker. Caller cancellation and 4xx answers do not.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	return stderrors.Is(err, errTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
}
