package tenants

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-leads/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const resolutionCacheKeyPrefix = "go-leads::tenant_resolution::v1"

// CachedDirectory caches resolutions in front of a base directory. Mappings
// are seeded once at startup and never change at runtime, so cached entries
// only ever expire, they never go stale.
type CachedDirectory struct {
	base  core.TenantDirectory
	cache repositorycache.CacheService
}

func NewCachedDirectory(
	base core.TenantDirectory,
	cacheService repositorycache.CacheService,
) (*CachedDirectory, error) {
	if base == nil {
		return nil, fmt.Errorf("tenants: base directory is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("tenants: cache service is required")
	}
	return &CachedDirectory{base: base, cache: cacheService}, nil
}

// ResolutionCacheKey returns the deterministic cache key for one account id:
// go-leads::tenant_resolution::v1::<account-id> with the account id
// URL-path escaped after trimming. The empty account id caches under the
// sentinel segment "-".
func ResolutionCacheKey(accountID string) string {
	segment := strings.TrimSpace(accountID)
	if segment == "" {
		segment = "-"
	}
	return resolutionCacheKeyPrefix + "::" + url.PathEscape(segment)
}

func (d *CachedDirectory) Resolve(ctx context.Context, accountID string) (core.TenantResolution, error) {
	if d == nil || d.base == nil || d.cache == nil {
		return core.TenantResolution{}, fmt.Errorf("tenants: cached directory is not configured")
	}
	cacheKey := ResolutionCacheKey(accountID)
	return repositorycache.GetOrFetch(ctx, d.cache, cacheKey, func(ctx context.Context) (core.TenantResolution, error) {
		return d.base.Resolve(ctx, accountID)
	})
}

var _ core.TenantDirectory = (*CachedDirectory)(nil)
