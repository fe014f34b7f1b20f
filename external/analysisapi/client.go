// Package analysisapi is the HTTP client of the upstream match analysis service.
package analysisapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/match-digest/internal/domain/match"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/riskibarqy/match-digest/internal/platform/resilience"
	"github.com/riskibarqy/match-digest/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	pathFetchMatches = "/fetch-matches"
	pathAnalyzeMatch = "/analyze-match"
	maxResponseBytes = 8 << 20
)

var (
	errTransient = crerr.New("analysis api transient failure")
	errEnvelope  = crerr.New("analysis api returned no data")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	ListTimeout    time.Duration
	MatchTimeout   time.Duration
	Retry          resilience.RetryPolicy
	RateLimit      float64
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	listTimeout  time.Duration
	matchTimeout time.Duration
	retry        resilience.RetryPolicy
	limiter      *rate.Limiter
	breaker      *resilience.CircuitBreaker
	validate     *validator.Validate
	logger       *logging.Logger
	flight       resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid ANALYSIS_API_BASE_URL")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	listTimeout := cfg.ListTimeout
	if listTimeout <= 0 {
		listTimeout = 30 * time.Second
	}
	matchTimeout := cfg.MatchTimeout
	if matchTimeout <= 0 {
		matchTimeout = 20 * time.Second
	}

	logger = logger.Named("analysis_api")
	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("analysis api circuit state changed", "from", string(from), "to", string(to))
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		listTimeout:  listTimeout,
		matchTimeout: matchTimeout,
		retry:        resilience.NormalizeRetryPolicy(cfg.Retry),
		limiter:      limiter,
		breaker:      resilience.NewCircuitBreaker(breakerCfg),
		validate:     validator.New(),
		logger:       logger,
	}, nil
}

// FetchMatchList returns the stubs listed for date (YYYY-MM-DD).
func (c *Client) FetchMatchList(ctx context.Context, date string) ([]match.Stub, error) {
	data, err := c.post(ctx, pathFetchMatches, matchListRequest{Date: date}, c.listTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetch match list date=%s: %w", date, err)
	}

	var rows []stubRow
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, invalidPayload("decode match list: %v", err)
	}
	return mapStubs(rows)
}

func (c *Client) FetchMatchAnalysis(ctx context.Context, matchID int64) (match.Analysis, error) {
	data, err := c.post(ctx, pathAnalyzeMatch, analyzeMatchRequest{MatchID: matchID}, c.matchTimeout)
	if err != nil {
		return match.Analysis{}, fmt.Errorf("fetch analysis match_id=%d: %w", matchID, err)
	}

	var payload analysisData
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return match.Analysis{}, invalidPayload("decode analysis match_id=%d: %v", matchID, err)
	}
	if err := c.validate.StructCtx(ctx, payload); err != nil {
		return match.Analysis{}, invalidPayload("validate analysis match_id=%d: %v", matchID, err)
	}
	return mapAnalysis(payload)
}

// FetchMatchScore reads only the score section of the match analysis.
func (c *Client) FetchMatchScore(ctx context.Context, matchID int64) (match.Score, error) {
	data, err := c.post(ctx, pathAnalyzeMatch, analyzeMatchRequest{MatchID: matchID}, c.matchTimeout)
	if err != nil {
		return match.Score{}, fmt.Errorf("fetch score match_id=%d: %w", matchID, err)
	}

	var payload scoreOnlyData
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return match.Score{}, invalidPayload("decode score match_id=%d: %v", matchID, err)
	}
	if payload.Score == nil {
		return match.Score{}, invalidPayload("match %d has no score section", matchID)
	}
	score, err := mapScore(*payload.Score)
	if err != nil {
		return match.Score{}, invalidPayload("match %d: %v", matchID, err)
	}
	return score, nil
}

// post sends body to path and returns the envelope's data. Identical
// in-flight requests share one upstream call. The shared call runs detached
// from any one caller's cancellation, bounded by the per-attempt timeout and
// the retry policy; each caller stops waiting when its own ctx ends.
func (c *Client) post(ctx context.Context, path string, body any, timeout time.Duration) ([]byte, error) {
	reqBody, err := sonic.Marshal(body)
	if err != nil {
		return nil, crerr.Wrap(err, "marshal request body")
	}

	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(path+" "+string(reqBody), func() ([]byte, error) {
		return c.postWithRetry(shared, path, reqBody, timeout)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Client) postWithRetry(ctx context.Context, path string, reqBody []byte, timeout time.Duration) ([]byte, error) {
	var data []byte
	err := resilience.Retry(ctx, c.retry, func(attempt int) error {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "analysis api circuit breaker rejected request", "path", path, "state", string(c.breaker.State()))
			return resilience.Permanent(fmt.Errorf("%w: analysis api: %v", usecase.ErrDependencyUnavailable, err))
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return resilience.Permanent(err)
			}
		}

		raw, err := c.execute(ctx, path, reqBody, timeout)
		c.recordCircuitResult(err)
		if err == nil {
			data, err = checkEnvelope(raw)
		}
		if err != nil {
			c.logger.WarnContext(ctx, "analysis api attempt failed",
				"path", path,
				"attempt", attempt,
				"max_attempts", c.retry.MaxAttempts,
				"error", err,
			)
		}
		return err
	})
	if err == nil {
		return data, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case stderrors.Is(err, errTransient):
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	case stderrors.Is(err, errEnvelope):
		return nil, fmt.Errorf("%w: %v", usecase.ErrAnalysisUnavailable, err)
	default:
		return nil, err
	}
}

func (c *Client) execute(ctx context.Context, path string, reqBody []byte, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, resilience.Permanent(crerr.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, resilience.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("%w: send request: %v", errTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, resilience.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("%w: read response body: %v", errTransient, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case isRetryableStatus(resp.StatusCode):
		return nil, fmt.Errorf("%w: status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
	default:
		return nil, resilience.Permanent(fmt.Errorf("%w: status=%d body=%s", usecase.ErrAnalysisUnavailable, resp.StatusCode, abbreviateBody(raw)))
	}
}

// checkEnvelope unwraps {status, data, message}. A malformed body, a status
// other than "success" or missing data fail the attempt.
func checkEnvelope(raw []byte) ([]byte, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", errEnvelope, err)
	}
	if !strings.EqualFold(strings.TrimSpace(env.Status), "success") {
		return nil, fmt.Errorf("%w: status=%q message=%q", errEnvelope, env.Status, env.Message)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: response has no data", errEnvelope)
	}
	return data, nil
}

func (c *Client) recordCircuitResult(err error) {
	if err != nil && stderrors.Is(err, errTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
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

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

// String is used in logs.
func (c *Client) String() string {
	return "analysisapi(" + c.baseURL + ", attempts=" + strconv.Itoa(c.retry.MaxAttempts) + ")"
}
