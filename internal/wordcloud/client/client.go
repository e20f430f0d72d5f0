// Package client fetches word frequencies from a word-cloud endpoint over
// HTTP. It implements frequency.Provider.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/tracing"
)

const (
	breakerName      = "word-cloud"
	maxResponseBytes = 10 << 20
)

type Client struct {
	endpoint   string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	retry      resilience.RetryConfig
	timeout    time.Duration
	logger     *slog.Logger
}

// New builds a client for cfg.Endpoint. m may be nil.
func New(cfg config.ClientConfig, m *metrics.Metrics) *Client {
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		ResetTimeout:     cfg.ResetTimeout,
	}
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(breakerName).Set(float64(resilience.StateClosed))
		cbCfg.OnStateChange = func(name string, _, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{},
		breaker:    resilience.NewCircuitBreaker(breakerName, cbCfg),
		retry: resilience.RetryConfig{
			MaxAttempts: cfg.MaxAttempts,
			Retryable:   retryable,
		},
		timeout: cfg.Timeout,
		logger:  slog.Default().With("component", "wordcloud-client", "endpoint", cfg.Endpoint),
	}
}

// Frequencies posts {"paragraph": paragraph} and decodes the [{text, value}]
// reply. Failures wrap ErrUpstream, ErrUnexpectedStatus or ErrTimeout.
func (c *Client) Frequencies(ctx context.Context, paragraph string) ([]frequency.Entry, error) {
	var entries []frequency.Entry
	err := resilience.Retry(ctx, breakerName, c.retry, func(ctx context.Context) error {
		return c.breaker.Execute(func() error {
			return resilience.WithTimeout(ctx, c.timeout, func(ctx context.Context) error {
				var err error
				entries, err = c.fetch(ctx, paragraph)
				return err
			})
		})
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
		}
		return nil, err
	}
	if entries == nil {
		entries = []frequency.Entry{}
	}
	return entries, nil
}

// Breaker exposes the circuit state for health reporting.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

func (c *Client) fetch(ctx context.Context, paragraph string) ([]frequency.Entry, error) {
	ctx, span := tracing.Start(ctx, "word_cloud_fetch")
	defer span.End()

	body, err := json.Marshal(map[string]string{"paragraph": paragraph})
	if err != nil {
		return nil, fmt.Errorf("encoding word-cloud request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building word-cloud request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: word-cloud request after %v", apperrors.ErrTimeout, time.Since(start).Round(time.Millisecond))
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()
	span.SetAttr("status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperrors.Newf(apperrors.ErrUnexpectedStatus, resp.StatusCode, "word-cloud endpoint returned %d", resp.StatusCode)
	}

	var entries []frequency.Entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: decoding word-cloud response: %v", apperrors.ErrUpstream, err)
	}
	c.logger.Debug("frequencies fetched",
		"entries", len(entries),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return entries, nil
}

// retryable skips client errors and an open circuit.
func retryable(err error) bool {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode < http.StatusInternalServerError {
		return false
	}
	return true
}
