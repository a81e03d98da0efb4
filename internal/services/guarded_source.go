package services

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/persist"
)

// GuardedSource wraps a CatalogSource with a short-lived company cache,
// coalescing of identical in-flight fetches and an upstream rate limit.
type GuardedSource struct {
	next    CatalogSource
	cache   persist.Backend
	ttl     time.Duration
	limiter *rate.Limiter
	group   singleflight.Group
}

// NewGuardedSource limits upstream calls to rps with the given burst.
// rps <= 0 disables throttling.
func NewGuardedSource(next CatalogSource, cache persist.Backend, ttl time.Duration, rps float64, burst int) *GuardedSource {
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &GuardedSource{next: next, cache: cache, ttl: ttl, limiter: lim}
}

// do runs fn once per key across concurrent callers. The shared call is not
// cancelled when one caller gives up.
func (g *GuardedSource) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	shared := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		if err := g.limiter.Wait(shared); err != nil {
			return nil, err
		}
		return fn(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (g *GuardedSource) FetchCompanyDetails(ctx context.Context, tenantID string) (*domain.CompanyDetails, error) {
	key := persist.Key("company", tenantID)
	if raw, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		var c *domain.CompanyDetails
		if err := json.Unmarshal(raw, &c); err == nil {
			return c, nil
		}
	}

	v, err := g.do(ctx, key, func(ctx context.Context) (any, error) {
		c, err := g.next.FetchCompanyDetails(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		// unknown tenants are cached too, as null
		if raw, err := json.Marshal(c); err == nil {
			if err := g.cache.Set(ctx, key, raw, g.ttl); err != nil {
				applog.WarnCtx(ctx, "company.cache.fail", err, map[string]any{"tenant": tenantID})
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	c, _ := v.(*domain.CompanyDetails)
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (g *GuardedSource) FetchCategories(ctx context.Context, companyID string) ([]domain.Category, error) {
	v, err := g.do(ctx, persist.Key("categories", companyID), func(ctx context.Context) (any, error) {
		return g.next.FetchCategories(ctx, companyID)
	})
	if err != nil {
		return nil, err
	}
	cats, _ := v.([]domain.Category)
	return cats, nil
}

func (g *GuardedSource) FetchCategory(ctx context.Context, companyID, categoryID string) (domain.Category, error) {
	v, err := g.do(ctx, persist.Key("category", companyID, categoryID), func(ctx context.Context) (any, error) {
		return g.next.FetchCategory(ctx, companyID, categoryID)
	})
	if err != nil {
		return domain.Category{}, err
	}
	cat, _ := v.(domain.Category)
	return cat, nil
}
