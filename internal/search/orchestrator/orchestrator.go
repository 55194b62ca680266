// internal/search/orchestrator/orchestrator.go

// Package orchestrator runs one search end to end: validate, try the
// type-specific adapter, fall back to the comprehensive adapter once, log,
// score.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/common/logger"
	"people-search/internal/common/metrics"
	"people-search/internal/common/observability"
	"people-search/internal/models"
	"people-search/internal/search/cache"
	"people-search/internal/search/history"
	"people-search/internal/search/providers"
	"people-search/internal/search/scoring"
	"people-search/internal/search/validator"
)

const searchIDPrefix = "srch_"

// Selector resolves adapters. *providers.Selector satisfies it.
type Selector interface {
	Select(t models.SearchType) providers.Adapter
	Comprehensive() providers.Adapter
}

type Config struct {
	// ProviderTimeout bounds each adapter invocation. Zero means no bound
	// beyond the HTTP client timeouts.
	ProviderTimeout time.Duration
}

type Orchestrator struct {
	config    Config
	selector  Selector
	searchLog history.SearchLogger
	cache     cache.Cache
	otel      *observability.Observability
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// New wires an orchestrator. searchLog, resultCache and otel may be nil.
func New(config Config, selector Selector, searchLog history.SearchLogger, resultCache cache.Cache,
	otel *observability.Observability, log logger.Logger) *Orchestrator {
	if resultCache == nil {
		resultCache = cache.Noop{}
	}
	return &Orchestrator{
		config:    config,
		selector:  selector,
		searchLog: searchLog,
		cache:     resultCache,
		otel:      otel,
		log:       log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		now:       time.Now,
		newID:     NewSearchID,
	}
}

// NewSearchID returns a fresh search identifier.
func NewSearchID() string {
	return searchIDPrefix + uuid.NewString()
}

// PerformSearch validates q and runs it. An empty searchID gets a fresh
// one. Unknown types are searched as comprehensive. Errors are
// *ValidationError or *SearchExhaustedError.
func (o *Orchestrator) PerformSearch(ctx context.Context, searchID string, q models.Query) (*models.EnhancedResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "search.perform")
	defer span.End()

	start := o.now()
	requested := q.Type
	if !q.Type.Known() {
		q.Type = models.SearchTypeComprehensive
	}
	searchType := string(q.Type)
	if searchID == "" {
		searchID = o.newID()
	}
	span.SetAttributes(
		attribute.String("search.id", searchID),
		attribute.String("search.type", searchType),
	)
	defer func() {
		metrics.SearchDuration.WithLabelValues(searchType).Observe(time.Since(start).Seconds())
	}()

	log := o.log.WithFields(map[string]interface{}{
		"searchId":   searchID,
		"searchType": searchType,
	})

	if requested != q.Type {
		log.Info("unknown search type, searching comprehensively", map[string]interface{}{
			"requestedType": string(requested),
		})
	}

	validation, normalized := validator.Normalize(q)
	if err := validation.Err(q.Type); err != nil {
		metrics.SearchRequests.WithLabelValues(searchType, "invalid").Inc()
		span.SetStatus(codes.Error, "invalid query")
		log.Info("search rejected by validation", map[string]interface{}{
			"code":   validation.Code,
			"errors": validation.Errors,
		})
		return nil, err
	}

	key := cache.Key(normalized)
	if hit := o.lookup(ctx, key, log); hit != nil {
		hit.SearchID = searchID
		hit.Cached = true
		hit.Warnings = validation.Warnings
		o.logSearch(ctx, searchID, normalized, hit.Strategy, &hit.Result, log)
		o.finish(ctx, hit, "cached", start)
		return hit, nil
	}

	primary := o.selector.Select(normalized.Type)
	result, err := o.invoke(ctx, primary, normalized)
	strategy, fallback := primary.Name(), false

	if err != nil {
		log.Warn("primary strategy failed, falling back to comprehensive", map[string]interface{}{
			"strategy": primary.Name(),
			"error":    err,
		})

		comprehensive := o.selector.Comprehensive()
		var fallbackErr error
		result, fallbackErr = o.invoke(ctx, comprehensive, normalized)
		if fallbackErr != nil {
			exhausted := &apperrors.SearchExhaustedError{
				SearchType: searchType,
				Primary:    err,
				Fallback:   fallbackErr,
			}
			metrics.SearchRequests.WithLabelValues(searchType, "exhausted").Inc()
			o.otel.RecordSearch(ctx, comprehensive.Name(), "exhausted", time.Since(start), 0)
			span.RecordError(exhausted)
			span.SetStatus(codes.Error, "search exhausted")
			log.Error("all search strategies failed", map[string]interface{}{"error": exhausted})
			return nil, exhausted
		}
		strategy, fallback = comprehensive.Name(), true
	}

	o.logSearch(ctx, searchID, normalized, strategy, result, log)

	enhanced := &models.EnhancedResult{
		SearchID:   searchID,
		SearchType: normalized.Type,
		Strategy:   strategy,
		Fallback:   fallback,
		Result:     *result,
		Enhanced:   scoring.Enhance(result, o.now()),
		Warnings:   validation.Warnings,
	}

	if cacheable(enhanced) {
		if err := o.cache.Set(ctx, key, enhanced); err != nil {
			log.Warn("failed to cache search result", map[string]interface{}{"error": err})
		}
	}

	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	o.finish(ctx, enhanced, outcome, start)
	log.Info("search completed", map[string]interface{}{
		"strategy":        strategy,
		"fallback":        fallback,
		"totalResults":    result.Metadata.TotalResults,
		"confidenceScore": enhanced.Enhanced.ConfidenceScore,
		"durationMs":      time.Since(start).Milliseconds(),
	})
	return enhanced, nil
}

// invoke makes exactly one attempt under the per-adapter timeout.
func (o *Orchestrator) invoke(ctx context.Context, a providers.Adapter, q models.Query) (*models.ProviderResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "search.invoke")
	defer span.End()
	span.SetAttributes(attribute.String("search.strategy", a.Name()))

	if o.config.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.ProviderTimeout)
		defer cancel()
	}

	result, err := a.Search(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "adapter failed")
		return nil, err
	}
	return result, nil
}

// logSearch never fails the search.
func (o *Orchestrator) logSearch(ctx context.Context, searchID string, q models.Query, strategy string,
	result *models.ProviderResult, log logger.Logger) {
	if o.searchLog == nil {
		return
	}
	err := o.searchLog.LogSearch(ctx, history.Entry{
		SearchID:   searchID,
		SearchType: q.Type,
		Strategy:   strategy,
		Query:      q.Fields(),
		Result:     result,
		CreatedAt:  o.now().UTC(),
	})
	if err != nil {
		log.Warn("failed to log search", map[string]interface{}{"error": err})
	}
}

// cacheable rejects degraded results: a fallback answer, or a fused answer
// missing a member.
func cacheable(r *models.EnhancedResult) bool {
	return !r.Fallback && len(r.Result.Metadata.SourcesFailed) == 0
}

func (o *Orchestrator) lookup(ctx context.Context, key string, log logger.Logger) *models.EnhancedResult {
	hit, ok, err := o.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache lookup failed", map[string]interface{}{"backend": o.cache.Backend(), "error": err})
		return nil
	}
	if !ok {
		return nil
	}
	return hit
}

func (o *Orchestrator) finish(ctx context.Context, r *models.EnhancedResult, outcome string, start time.Time) {
	metrics.SearchRequests.WithLabelValues(string(r.SearchType), outcome).Inc()
	o.otel.RecordSearch(ctx, r.Strategy, outcome, time.Since(start), r.Result.Metadata.TotalResults)
}
