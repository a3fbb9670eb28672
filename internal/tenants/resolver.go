package tenants

import (
	"context"
	"fmt"
	"time"

	dbpkg "github.com/storehubhq/storehub-backend/pkg/db"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// directory is the lookup surface the resolver needs from the Repository.
type directory interface {
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	FindByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error)
}

// ResolverParams configure the hostname resolver.
type ResolverParams struct {
	Logger    *logger.Logger
	Parser    *Parser
	Cache     Cache
	Directory directory
	Now       func() time.Time
}

// Resolver maps hostnames to tenant snapshots, cache-aside in front of the
// directory.
type Resolver struct {
	logg      *logger.Logger
	parser    *Parser
	cache     Cache
	directory directory
	now       func() time.Time
}

// NewResolver validates dependencies and builds a Resolver.
func NewResolver(params ResolverParams) (*Resolver, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Parser == nil {
		return nil, fmt.Errorf("hostname parser required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("tenant cache required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("tenant directory required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		logg:      params.Logger,
		parser:    params.Parser,
		cache:     params.Cache,
		directory: params.Directory,
		now:       now,
	}, nil
}

// Resolve maps a raw Host header to a tenant snapshot. NotFound means "no
// such store"; a dependency error means the directory itself is unreachable
// and the request should be retried.
func (r *Resolver) Resolve(ctx context.Context, rawHost string) (*Snapshot, error) {
	key := r.parser.Parse(rawHost)
	if key.Hostname == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store does not exist")
	}

	if snap, ok := r.cache.TryGet(ctx, key.Hostname); ok {
		return snap, nil
	}

	tenant, err := r.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Tenant: *tenant, CachedAt: r.now().UTC()}
	r.cache.Set(ctx, key.Hostname, snap)
	return snap, nil
}

// lookup tries the subdomain candidate first; the full hostname is only
// considered as a custom domain when no subdomain matched.
func (r *Resolver) lookup(ctx context.Context, key RoutingKey) (*models.Tenant, error) {
	if key.Subdomain != "" {
		tenant, err := r.directory.FindBySubdomain(ctx, key.Subdomain)
		if err == nil {
			return tenant, nil
		}
		if !dbpkg.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "tenant lookup by subdomain")
		}
	}

	tenant, err := r.directory.FindByCustomDomain(ctx, key.Hostname)
	if err == nil {
		return tenant, nil
	}
	if !dbpkg.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "tenant lookup by custom domain")
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store does not exist")
}
