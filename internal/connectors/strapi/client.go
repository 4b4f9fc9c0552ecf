package strapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = 500 * time.Millisecond

	// DefaultConcurrency bounds page fan-out when the source sets none.
	DefaultConcurrency = 4
)

// Ensure Client implements the interface.
var _ driven.Client = (*Client)(nil)

// Client talks to one Strapi instance.
type Client struct {
	http        *resty.Client
	concurrency int
	retries     uint64
	retryDelay  time.Duration
}

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout    time.Duration
	retries    uint64
	retryDelay time.Duration
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetry sets the retry count and initial backoff.
func WithRetry(retries uint64, delay time.Duration) Option {
	return func(o *options) {
		o.retries = retries
		if delay > 0 {
			o.retryDelay = delay
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:    DefaultTimeout,
		retries:    MaxRetries,
		retryDelay: RetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a client for source. An empty token sends
// unauthenticated requests.
func NewClient(source domain.Source, token string, opts ...Option) *Client {
	o := buildOptions(opts)

	var httpClient *resty.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = resty.NewWithClient(oauth2.NewClient(context.Background(), ts))
	} else {
		httpClient = resty.New()
	}
	httpClient.
		SetBaseURL(source.BaseURL()).
		SetTimeout(o.timeout).
		SetHeader("Accept", "application/json")

	if source.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(source.RateLimit), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}

	concurrency := source.MaxConcurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Client{
		http:        httpClient,
		concurrency: concurrency,
		retries:     o.retries,
		retryDelay:  o.retryDelay,
	}
}

// get performs a GET with retries and returns the response body.
func (c *Client) get(ctx context.Context, path string, query map[string]any) ([]byte, error) {
	var body []byte
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParamsFromValues(encodeQuery(query)).
			Get(path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return retry.RetryableError(fmt.Errorf("GET %s: %w", path, err))
		}
		if apiErr := responseError(resp); apiErr != nil {
			if retryableStatus(apiErr.StatusCode) {
				return retry.RetryableError(apiErr)
			}
			return apiErr
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// responseError converts an error response into an *APIError.
func responseError(resp *resty.Response) *APIError {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	msg := gjson.GetBytes(resp.Body(), "error.message").String()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    msg,
		URL:        resp.Request.URL,
	}
}
