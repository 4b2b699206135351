package price

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/model"
)

// Resolver walks the source chain in fixed order, returning the first
// usable price and caching it. Source order is fixed rather than
// randomized so the most canonical source is always preferred and results
// stay predictable.
type Resolver struct {
	cache   *Cache
	sources []Source
}

// NewResolver creates a resolver over an ordered source list.
func NewResolver(cache *Cache, sources ...Source) *Resolver {
	return &Resolver{cache: cache, sources: sources}
}

// Resolve returns the current USD price for an asset. A fresh cache entry
// short-circuits all network calls. Individual source failures are logged
// and swallowed; only full exhaustion surfaces, as ErrPriceUnavailable.
func (r *Resolver) Resolve(ctx context.Context, asset chains.Asset) (float64, error) {
	if cached, ok := r.cache.Get(asset.Symbol); ok {
		logrus.Debugf("Price cache hit for %s: %f", asset.Symbol, cached)
		return cached, nil
	}

	for _, source := range r.sources {
		price, err := source.Fetch(ctx, asset)
		if err != nil {
			logrus.Debugf("Price source %s failed for %s: %v", source.Name(), asset.Symbol, err)
			continue
		}
		if price <= 0 {
			logrus.Debugf("Price source %s returned non-positive price for %s", source.Name(), asset.Symbol)
			continue
		}
		r.cache.Set(asset.Symbol, price)
		return price, nil
	}

	return 0, model.ErrPriceUnavailable
}
