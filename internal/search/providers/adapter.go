// internal/search/providers/adapter.go

// Package providers holds one adapter per upstream data provider plus the
// comprehensive fan-out adapter and the selector that maps search types to
// adapters.
package providers

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"people-search/internal/common/config"
	apperrors "people-search/internal/common/errors"
	httpclient "people-search/internal/common/http"
	"people-search/internal/common/logger"
	"people-search/internal/common/metrics"
	"people-search/internal/common/observability"
	"people-search/internal/models"
)

// Adapter searches one upstream, or a fixed set of upstreams for the
// comprehensive adapter. Failures are *errors.ProviderError.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q models.Query) (*models.ProviderResult, error)
}

// contract binds an adapter to exactly one upstream request and response
// shape. Each extract owns its JSON paths.
type contract interface {
	buildRequest(q models.Query) (*httpclient.Request, error)
	extract(body []byte) ([]models.ResultItem, error)
}

var errMissingVariant = errors.New("query does not carry the variant this provider searches")

// endpoint is one configured upstream: a rate limited client plus the
// bookkeeping every call shares.
type endpoint struct {
	name   string
	client *httpclient.Client
	log    logger.Logger
}

func newEndpoint(name string, cfg config.ProviderConfig, log logger.Logger) *endpoint {
	return &endpoint{
		name: name,
		client: httpclient.NewRateLimitedClient(httpclient.ClientConfig{
			BaseURL:   cfg.BaseURL,
			Timeout:   config.GetDuration(cfg.Timeout),
			RateLimit: cfg.RateLimit,
			Burst:     cfg.Burst,
		}),
		log: log.WithFields(map[string]interface{}{"provider": name}),
	}
}

// execute performs one attempt. Transport failures and non-2xx responses
// both come back as *ProviderError.
func (e *endpoint) execute(ctx context.Context, req *httpclient.Request) ([]byte, error) {
	ctx, span := observability.Tracer().Start(ctx, "provider.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider.name", e.name),
		attribute.String("http.path", req.Path),
	)

	start := time.Now()
	resp, err := e.client.Execute(ctx, req)
	metrics.ProviderDuration.WithLabelValues(e.name).Observe(time.Since(start).Seconds())

	if err != nil {
		perr := apperrors.NewProviderError(e.name, "request failed", err)
		status := "error"
		if perr.Timeout() {
			status = "timeout"
		}
		metrics.ProviderCalls.WithLabelValues(e.name, status).Inc()
		span.RecordError(perr)
		span.SetStatus(codes.Error, status)
		e.log.Warn("provider request failed", map[string]interface{}{
			"path":    req.Path,
			"timeout": perr.Timeout(),
			"error":   err,
		})
		return nil, perr
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !resp.IsSuccess() {
		perr := apperrors.NewProviderStatusError(e.name, resp.StatusCode, string(resp.Body))
		metrics.ProviderCalls.WithLabelValues(e.name, "error").Inc()
		span.SetStatus(codes.Error, "non-2xx response")
		e.log.Warn("provider returned error status", map[string]interface{}{
			"path":       req.Path,
			"statusCode": resp.StatusCode,
		})
		return nil, perr
	}

	metrics.ProviderCalls.WithLabelValues(e.name, "ok").Inc()
	e.log.Debug("provider request completed", map[string]interface{}{
		"path":       req.Path,
		"statusCode": resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return resp.Body, nil
}

// httpAdapter runs buildRequest, execute and extract against a single
// endpoint.
type httpAdapter struct {
	*endpoint
	contract contract
}

func (a *httpAdapter) Name() string {
	return a.name
}

func (a *httpAdapter) Search(ctx context.Context, q models.Query) (*models.ProviderResult, error) {
	req, err := a.contract.buildRequest(q)
	if err != nil {
		return nil, apperrors.NewProviderError(a.name, "build request", err)
	}

	body, err := a.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := a.contract.extract(body)
	if err != nil {
		return nil, apperrors.NewProviderError(a.name, "decode response", err)
	}

	return newResult(a.name, items), nil
}

func newResult(source string, items []models.ResultItem) *models.ProviderResult {
	if items == nil {
		items = []models.ResultItem{}
	}
	return &models.ProviderResult{
		Source: source,
		Items:  items,
		Metadata: models.ResultMetadata{
			Timestamp:    time.Now().UTC(),
			Source:       source,
			TotalResults: len(items),
		},
	}
}
