package stepik

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/utils"
)

// ClientConfig holds the knobs for the platform API client.
type ClientConfig struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	// RequestsPerSecond paces all outgoing calls so page fan-outs stay under
	// the platform's rate limit. Zero disables pacing.
	RequestsPerSecond float64
	Logger            utils.Logger
}

// Client is the authenticated, rate-limited platform API client shared by the
// scanner and the submission resolver. It is not a general-purpose API
// client: it exposes exactly the endpoints the sync pipeline consumes.
type Client struct {
	http    *resty.Client
	baseURL string
	tokens  *TokenManager
	limiter *rate.Limiter
	logger  utils.Logger
}

// NewClient builds the client and its token manager from config.
func NewClient(cfg ClientConfig) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		tokens:  NewTokenManager(httpClient, cfg.BaseURL, cfg.ClientID, cfg.ClientSecret),
		limiter: limiter,
		logger:  cfg.Logger,
	}
}

// Tokens exposes the token manager, mainly for tests and warm-up.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// ===== ENDPOINTS =====

// Units fetches one page of the course's unit listing.
func (c *Client) Units(ctx context.Context, courseID string, page int) (*unitsResponse, error) {
	var out unitsResponse
	q := url.Values{}
	q.Set("course", courseID)
	q.Set("page", strconv.Itoa(page))
	if err := c.get(ctx, "/api/units", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LessonSteps fetches the ordered step ids of a lesson.
func (c *Client) LessonSteps(ctx context.Context, lessonID int64) ([]int64, error) {
	var out stepsResponse
	q := url.Values{}
	q.Set("lesson", strconv.FormatInt(lessonID, 10))
	if err := c.get(ctx, "/api/steps", q, &out); err != nil {
		return nil, err
	}
	steps := make([]int64, 0, len(out.Steps))
	for _, s := range out.Steps {
		steps = append(steps, s.ID)
	}
	return steps, nil
}

// Submissions fetches one page of submissions for a step.
func (c *Client) Submissions(ctx context.Context, stepID int64, page int) (*submissionsResponse, error) {
	var out submissionsResponse
	q := url.Values{}
	q.Set("step", strconv.FormatInt(stepID, 10))
	q.Set("page", strconv.Itoa(page))
	if err := c.get(ctx, "/api/submissions", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Attempts batch-resolves attempt ids to their owning users in one request
// using the repeated ids[] query parameter.
func (c *Client) Attempts(ctx context.Context, ids []int64) ([]models.Attempt, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out attemptsResponse
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids[]", strconv.FormatInt(id, 10))
	}
	if err := c.get(ctx, "/api/attempts", q, &out); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

// ===== TRANSPORT =====

// get performs one authenticated GET. A 401 invalidates the cached token and
// retries the request once with a fresh one.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	resp, err := c.do(ctx, path, query, result)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.logger.Warn("token rejected, re-authenticating", "path", path)
		c.tokens.Invalidate()
		resp, err = c.do(ctx, path, query, result)
		if err != nil {
			return err
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return &HTTPError{
			Status: resp.StatusCode(),
			URL:    resp.Request.URL,
			Body:   resp.String(),
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values, result interface{}) (*resty.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetAuthToken(token).
		SetResult(result).
		Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	return resp, nil
}
