package gamelogs

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/platform/resilience"
	"github.com/riskibarqy/propline/internal/usecase"
	"github.com/valyala/fasthttp"
)

const maxResponseSize = 6 << 20

var errTransient = crerr.New("performance source transient failure")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client reads observed player performances for a league and game date.
type Client struct {
	http         *fasthttp.Client
	baseURL      string
	apiKey       string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.Breaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("gamelogs")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "propline-gamelogs",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseSize,
		},
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		timeout:      timeout,
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		logger:       logger,
		breaker: resilience.NewBreaker("gamelogs", cfg.CircuitBreaker, isCircuitFailure, func(name, from, to string) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
		}),
	}
}

func (c *Client) FetchPerformances(ctx context.Context, league string, date time.Time) ([]gamelog.Performance, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: performance source base url is not configured", usecase.ErrDependencyUnavailable)
	}
	league = strings.ToLower(strings.TrimSpace(league))
	values := url.Values{}
	values.Set("league", league)
	values.Set("date", date.Format("2006-01-02"))
	fullURL := c.baseURL + "/performances?" + values.Encode()

	raw, err := resilience.Execute(c.breaker, func() ([]byte, error) {
		return c.executeRequest(ctx, fullURL)
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "performance source circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: performance source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return nil, err
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("decode performance payload: %w", err)
	}

	out := make([]gamelog.Performance, 0, len(records))
	for _, record := range records {
		out = append(out, record.toPerformance(league, date))
	}
	c.logger.DebugContext(ctx, "performances fetched", "league", league, "date", date.Format("2006-01-02"), "count", len(out))
	return out, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.do(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		case status >= 200 && status < 300:
			return raw, nil
		case status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError:
			lastErr = fmt.Errorf("%w: source status=%d body=%s", errTransient, status, abbreviateBody(raw))
		default:
			return nil, fmt.Errorf("source status=%d body=%s", status, abbreviateBody(raw))
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

	c.logger.WarnContext(ctx, "performance request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

type recordEnvelope struct {
	Data []record `json:"data"`
}

type record struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Team        string    `json:"team"`
	Opponent    string    `json:"opponent"`
	Season      int       `json:"season"`
	Date        string    `json:"date"`
	PropType    string    `json:"prop_type"`
	Value       flexFloat `json:"value"`
	League      string    `json:"league"`
	GameID      string    `json:"game_id"`
	ConflictKey string    `json:"conflict_key"`
}

func (r record) toPerformance(league string, date time.Time) gamelog.Performance {
	p := gamelog.Performance{
		PlayerID:    strings.TrimSpace(r.PlayerID),
		PlayerName:  strings.TrimSpace(r.PlayerName),
		Team:        strings.TrimSpace(r.Team),
		Opponent:    strings.TrimSpace(r.Opponent),
		Season:      r.Season,
		Date:        date,
		PropType:    strings.TrimSpace(r.PropType),
		Value:       r.Value.value,
		League:      strings.ToLower(strings.TrimSpace(r.League)),
		GameID:      strings.TrimSpace(r.GameID),
		ConflictKey: strings.TrimSpace(r.ConflictKey),
	}
	if !r.Value.valid {
		p.ValueIssue = r.Value.issue()
	}
	if p.League == "" {
		p.League = league
	}
	if parsed, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date)); err == nil {
		p.Date = parsed
	}
	return p
}

func decodeRecords(raw []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []record
		if err := sonic.Unmarshal(trimmed, &out); err != nil {
			return nil, crerr.Wrap(err, "decode bare record array")
		}
		return out, nil
	}
	var env recordEnvelope
	if err := sonic.Unmarshal(trimmed, &env); err != nil {
		return nil, crerr.Wrap(err, "decode record envelope")
	}
	return env.Data, nil
}

// flexFloat accepts a JSON number or a numeric string. An absent, null,
// non-numeric or non-finite value leaves it invalid and keeps the raw text.
type flexFloat struct {
	value float64
	valid bool
	raw   string
}

func (f *flexFloat) UnmarshalJSON(raw []byte) error {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	*f = flexFloat{raw: text}
	if text == "" || text == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	f.value, f.valid = v, true
	return nil
}

func (f flexFloat) issue() string {
	if f.raw == "" || f.raw == "null" {
		return "value is missing"
	}
	return fmt.Sprintf("value %q is not a finite number", abbreviateBody([]byte(f.raw)))
}

func isCircuitFailure(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}
	return stderrors.Is(err, errTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
