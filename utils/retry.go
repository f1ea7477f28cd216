package utils

import (
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Logger     *Logger
}

// ShouldRetryHTTP retries on transport errors, 5xx and 429.
func ShouldRetryHTTP(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func (r *RetryConfig) normalise() RetryConfig {
	cfg := *r
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay * 8
	}
	return cfg
}

// HTTPExecutor builds a failsafe executor with exponential back-off for
// HTTP calls. Retries are logged under operationName.
//
//nolint:bodyclose // *http.Response is a type parameter here, not a live response
func (r *RetryConfig) HTTPExecutor(operationName string) failsafe.Executor[*http.Response] {
	cfg := r.normalise()

	builder := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(ShouldRetryHTTP)

	if cfg.Logger != nil {
		builder = builder.OnRetry(func(e failsafe.ExecutionEvent[*http.Response]) {
			cfg.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying",
				operationName, e.Attempts(), cfg.MaxRetries+1, describeAttempt(e.LastResult(), e.LastError()))
		})
	}

	return failsafe.With[*http.Response](builder.Build())
}

func describeAttempt(resp *http.Response, err error) any {
	if err != nil {
		return err
	}
	if resp != nil {
		return resp.Status
	}
	return "no response"
}
