package policy

import (
	"context"
	"fmt"

	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/port"
)

// GuardedCatalog decorates a CatalogStore so that table lookups against
// relations outside the policy fail before any DDL can touch them.
type GuardedCatalog struct {
	inner  port.CatalogStore
	policy *Policy
}

func NewGuardedCatalog(inner port.CatalogStore, pol *Policy) *GuardedCatalog {
	return &GuardedCatalog{inner: inner, policy: pol}
}

func (g *GuardedCatalog) WithTx(ctx context.Context, fn func(tx port.CatalogTx) error) error {
	return g.inner.WithTx(ctx, func(tx port.CatalogTx) error {
		return fn(&guardedTx{CatalogTx: tx, policy: g.policy})
	})
}

func (g *GuardedCatalog) ListObjects(ctx context.Context) ([]port.StatisticsObjectInfo, error) {
	return g.inner.ListObjects(ctx)
}

type guardedTx struct {
	port.CatalogTx
	policy *Policy
}

func (t *guardedTx) LookupTable(ctx context.Context, schema, name string) (*domain.TableDescriptor, error) {
	if !t.policy.AllowsTable(schema, name) {
		return nil, fmt.Errorf("%w: relation %s.%s", ErrDenied, schema, name)
	}
	return t.CatalogTx.LookupTable(ctx, schema, name)
}
