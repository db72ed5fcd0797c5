// Package riot is an HTTP client for the Riot Games regional routing API.
// It covers the account-v5, match-v5 and match-v5 timeline endpoints used by
// the ingestion pipeline and hides the platform's throttling behaviour behind
// a retrying GET primitive.
package riot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/DeadSpoonbill/API-lol-public/internal/platform/logging"
)

// errTransient marks failures that were retried until the policy gave up.
// Callers can treat it as "try again later".
var errTransient = crerr.New("riot: transient failure")

// IsTransient reports whether err is a retry-exhaustion failure.
func IsTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

// HTTPError is a non-retryable Riot API response. 4xx statuses other than
// 404 and 429 land here; the body is kept verbatim for diagnostics.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("riot: api returned status %d: %s", e.StatusCode, e.Body)
}

// RetryPolicy bounds the retry loop. Zero MaxAttempts and MaxElapsed mean
// retry forever, which matches how the pipeline rides out rate-limit windows
// in production; tests inject small bounds and waits.
type RetryPolicy struct {
	MaxAttempts     int
	MaxElapsed      time.Duration
	ThrottleWait    time.Duration
	ServerErrorWait time.Duration
}

// DefaultRetryPolicy retries indefinitely, waiting two seconds between
// attempts unless the platform asks for more via Retry-After.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		ThrottleWait:    2 * time.Second,
		ServerErrorWait: 2 * time.Second,
	}
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Router is the regional routing value (americas, asia, europe, sea).
	Router string
	// APIKey is sent as the X-Riot-Token header on every request.
	APIKey string
	// BaseURL overrides the router-derived base URL when non-empty.
	BaseURL string
	// RequestsPerSecond caps outbound request rate. Zero disables the cap.
	RequestsPerSecond float64
	Retry             RetryPolicy
	HTTPClient        *http.Client
	Logger            *logging.Logger
}

// Client talks to one regional router of the Riot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retry      RetryPolicy
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// NewClient builds a Client. The HTTP transport is wrapped with otelhttp so
// outbound calls show up as spans when a tracer is installed.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Router + ".api.riotgames.com"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		retry:      cfg.Retry,
		limiter:    limiter,
		logger:     logger,
	}
}

// AccountByRiotID resolves a Riot ID (game name + tag line) to an account
// document. A nil document with a nil error means the account does not exist.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (map[string]any, error) {
	path := "/riot/account/v1/accounts/by-riot-id/" +
		url.PathEscape(gameName) + "/" + url.PathEscape(tagLine)

	body, err := c.get(ctx, path, nil)
	if err != nil || body == nil {
		return nil, err
	}
	return decodeObject(body)
}

// MatchIDs lists match IDs for a player, newest first. queue and matchType
// narrow the listing when set; count is passed through to the platform.
func (c *Client) MatchIDs(ctx context.Context, puuid string, count int, queue *int, matchType string) ([]string, error) {
	query := url.Values{}
	query.Set("start", "0")
	query.Set("count", strconv.Itoa(count))
	if queue != nil {
		query.Set("queue", strconv.Itoa(*queue))
	}
	if matchType != "" {
		query.Set("type", matchType)
	}

	body, err := c.get(ctx, "/lol/match/v5/matches/by-puuid/"+url.PathEscape(puuid)+"/ids", query)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var ids []string
	if err := sonic.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("riot: decode match id list: %w", err)
	}
	return ids, nil
}

// CollectMatchIDs enumerates match IDs across the given queues. The total is
// split evenly across queues, rounding up and never below one per queue, so
// a listing can return slightly more than total before deduplication. With no
// queues a single unfiltered listing is made. IDs keep first-seen order and
// duplicates across queues are dropped.
func (c *Client) CollectMatchIDs(ctx context.Context, puuid string, total int, queues []int, matchType string) ([]string, error) {
	if len(queues) == 0 {
		return c.MatchIDs(ctx, puuid, total, nil, matchType)
	}

	perQueue := (total + len(queues) - 1) / len(queues)
	if perQueue < 1 {
		perQueue = 1
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, queue := range queues {
		q := queue
		batch, err := c.MatchIDs(ctx, puuid, perQueue, &q, matchType)
		if err != nil {
			return nil, err
		}
		for _, id := range batch {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Match fetches a match document. Nil with nil error means the match is gone
// from the platform (expired or never existed).
func (c *Client) Match(ctx context.Context, matchID string) (map[string]any, error) {
	body, err := c.get(ctx, "/lol/match/v5/matches/"+url.PathEscape(matchID), nil)
	if err != nil || body == nil {
		return nil, err
	}
	return decodeObject(body)
}

// Timeline fetches the frame-by-frame timeline for a match. Nil with nil
// error means the platform has no timeline for it.
func (c *Client) Timeline(ctx context.Context, matchID string) (map[string]any, error) {
	body, err := c.get(ctx, "/lol/match/v5/matches/"+url.PathEscape(matchID)+"/timeline", nil)
	if err != nil || body == nil {
		return nil, err
	}
	return decodeObject(body)
}

// get performs one logical GET with unbounded-by-default retries. It returns
// a nil body for 404, retries 429 (honouring Retry-After) and 5xx, and fails
// fast on any other non-2xx status.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	start := time.Now()
	attempt := 0
	for {
		attempt++

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("riot: rate limiter: %w", err)
			}
		}

		body, retryWait, err := c.doOnce(ctx, fullURL)
		if err != nil || retryWait < 0 {
			return body, err
		}

		c.logger.WarnContext(ctx, "riot request will be retried",
			"path", path,
			"attempt", attempt,
			"wait", retryWait.String(),
		)

		if err := c.checkBudget(attempt, start, fullURL); err != nil {
			return nil, err
		}
		if err := sleep(ctx, retryWait); err != nil {
			return nil, err
		}
	}
}

// doOnce runs a single request. A negative wait means the result is final;
// a non-negative wait means the caller should retry after waiting that long.
func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("riot: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, ctx.Err()
		}
		return nil, c.retry.ServerErrorWait, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, c.retry.ServerErrorWait, nil
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, -1, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, parseRetryAfter(resp.Header.Get("Retry-After"), c.retry.ThrottleWait), nil
	case resp.StatusCode >= 500:
		return nil, c.retry.ServerErrorWait, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, -1, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, -1, nil
}

func (c *Client) checkBudget(attempt int, start time.Time, fullURL string) error {
	if c.retry.MaxAttempts > 0 && attempt >= c.retry.MaxAttempts {
		return crerr.Wrapf(errTransient, "gave up after %d attempts on %s", attempt, fullURL)
	}
	if c.retry.MaxElapsed > 0 && time.Since(start) >= c.retry.MaxElapsed {
		return crerr.Wrapf(errTransient, "gave up after %s on %s", time.Since(start).Round(time.Millisecond), fullURL)
	}
	return nil
}

// parseRetryAfter reads an integer-seconds Retry-After header, falling back
// to the policy default when the header is missing or malformed.
func parseRetryAfter(header string, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decodeObject(body []byte) (map[string]any, error) {
	var doc map[string]any
	if err := sonic.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("riot: decode payload: %w", err)
	}
	return doc, nil
}
