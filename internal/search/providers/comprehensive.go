// internal/search/providers/comprehensive.go
package providers

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/common/logger"
	"people-search/internal/models"
	"people-search/internal/search/fusion"
)

const ComprehensiveProviderName = "Comprehensive People Search"

// Comprehensive fans out to the email, phone and name adapters and fuses
// whatever succeeded. A member only runs when the query carries its
// variant.
type Comprehensive struct {
	email Adapter
	phone Adapter
	name  Adapter
	fuser *fusion.Fuser
	log   logger.Logger
}

func NewComprehensive(email, phone, name Adapter, fuser *fusion.Fuser, log logger.Logger) *Comprehensive {
	return &Comprehensive{
		email: email,
		phone: phone,
		name:  name,
		fuser: fuser,
		log:   log.WithFields(map[string]interface{}{"provider": ComprehensiveProviderName}),
	}
}

func (c *Comprehensive) Name() string {
	return ComprehensiveProviderName
}

type outcome struct {
	source string
	result *models.ProviderResult
	err    error
}

// Search waits for every member to finish. It fails only when no member
// succeeded.
func (c *Comprehensive) Search(ctx context.Context, q models.Query) (*models.ProviderResult, error) {
	members := c.members(q)
	if len(members) == 0 {
		return nil, apperrors.NewProviderError(c.Name(), "no searchable fields", errMissingVariant)
	}

	start := time.Now()
	outcomes := make([]outcome, len(members))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range members {
		g.Go(func() error {
			res, err := m.Search(gctx, q)
			outcomes[i] = outcome{source: m.Name(), result: res, err: err}
			return nil // never cancel siblings
		})
	}
	_ = g.Wait()

	var (
		fulfilled []*models.ProviderResult
		failed    []models.SourceFailure
		errs      []error
	)
	for _, o := range outcomes {
		if o.err != nil {
			failed = append(failed, models.SourceFailure{Source: o.source, Error: o.err.Error()})
			errs = append(errs, o.err)
			continue
		}
		fulfilled = append(fulfilled, o.result)
	}

	c.log.Info("comprehensive fan-out settled", map[string]interface{}{
		"members":    len(members),
		"fulfilled":  len(fulfilled),
		"failed":     len(failed),
		"durationMs": time.Since(start).Milliseconds(),
	})

	if len(fulfilled) == 0 {
		return nil, apperrors.NewProviderError(c.Name(), "all providers failed", errors.Join(errs...))
	}

	fused := c.fuser.Fuse(fulfilled)
	fused.Metadata.SourcesFailed = failed
	return fused, nil
}

// members returns the applicable adapters in fixed email, phone, name
// order, which is also the fusion order.
func (c *Comprehensive) members(q models.Query) []Adapter {
	var out []Adapter
	if q.Email != nil && c.email != nil {
		out = append(out, c.email)
	}
	if q.Phone != nil && c.phone != nil {
		out = append(out, c.phone)
	}
	if q.Name != nil && c.name != nil {
		out = append(out, c.name)
	}
	return out
}
