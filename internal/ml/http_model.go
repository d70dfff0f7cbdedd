// Package ml provides an HTTP client for remotely served models.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPModelConfig holds configuration for HTTP model clients
type HTTPModelConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second, 0 means unlimited
}

// DefaultHTTPModelConfig returns recommended defaults
func DefaultHTTPModelConfig(baseURL string) HTTPModelConfig {
	return HTTPModelConfig{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// predictRequest is the payload posted to the model server
type predictRequest struct {
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
	ModelVersion string    `json:"model_version,omitempty"`
}

type predictResponse struct {
	Prediction *float64 `json:"prediction"`
}

type predictProbaResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// HTTPModel posts feature rows to a model server.
// The server exposes POST /predict, POST /predict_proba and GET /health.
type HTTPModel struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	spec    FeatureSpec
	logger  *logrus.Entry
}

// NewHTTPModel creates a new rate-limited, retrying HTTP model client
func NewHTTPModel(cfg HTTPModelConfig, spec FeatureSpec, logger *logrus.Logger) *HTTPModel {
	entry := logrus.NewEntry(logger).WithField("model_kind", "http")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy()
	retryClient.Logger = &leveledLogger{entry: entry}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &HTTPModel{
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		spec:    spec,
		logger:  entry,
	}
}

// Predict posts the row to /predict
func (m *HTTPModel) Predict(ctx context.Context, row []float64) (float64, error) {
	var resp predictResponse
	if err := m.post(ctx, "/predict", row, &resp); err != nil {
		return 0, err
	}
	if resp.Prediction == nil {
		ModelErrorsTotal.WithLabelValues("http", "predict", "invalid_response").Inc()
		return 0, fmt.Errorf("%w: missing prediction", ErrInvalidResponse)
	}
	return *resp.Prediction, nil
}

// PredictProba posts the row to /predict_proba
func (m *HTTPModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	var resp predictProbaResponse
	if err := m.post(ctx, "/predict_proba", row, &resp); err != nil {
		return nil, err
	}
	if len(resp.Probabilities) == 0 {
		ModelErrorsTotal.WithLabelValues("http", "predict_proba", "invalid_response").Inc()
		return nil, fmt.Errorf("%w: missing probabilities", ErrInvalidResponse)
	}
	return resp.Probabilities, nil
}

func (m *HTTPModel) post(ctx context.Context, path string, row []float64, out interface{}) error {
	method := strings.TrimPrefix(path, "/")
	start := time.Now()
	defer func() {
		ModelLatency.WithLabelValues("http").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(predictRequest{
		Features:     row,
		FeatureNames: m.spec.FeatureOrder,
		ModelVersion: m.spec.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		ModelErrorsTotal.WithLabelValues("http", method, "network").Inc()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotImplemented || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s returned status %d", ErrCapabilityMissing, path, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		ModelErrorsTotal.WithLabelValues("http", method, "http_error").Inc()
		return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		ModelErrorsTotal.WithLabelValues("http", method, "decode").Inc()
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	ModelRequestsTotal.WithLabelValues("http", "false").Inc()
	return nil
}

// HealthCheck checks the model server health
func (m *HTTPModel) HealthCheck(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrModelUnavailable, resp.StatusCode)
	}
	return nil
}

// Close closes idle connections held by the client
func (m *HTTPModel) Close() error {
	m.client.HTTPClient.CloseIdleConnections()
	return nil
}

// retryPolicy retries network errors, throttling and gateway failures
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}

// leveledLogger routes retryablehttp logging through logrus at debug level
type leveledLogger struct {
	entry *logrus.Entry
}

func (l *leveledLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
