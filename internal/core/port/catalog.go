package port

import (
	"context"

	"github.com/pgmeta/statext/internal/core/domain"
)

// CatalogTx is one transactional view of the catalog store. Every mutation a
// service performs inside a single WithTx call either commits as a whole or
// rolls back as a whole; a statistics object must never become visible
// without its dependency edges.
type CatalogTx interface {
	// ResolveNamespace maps a schema name to its stable identifier.
	ResolveNamespace(ctx context.Context, schema string) (domain.NamespaceID, error)

	// LookupTable fetches the target relation's descriptor, including its
	// columns with type and sortability metadata. Returns
	// domain.ErrObjectNotFound if no such relation exists.
	LookupTable(ctx context.Context, schema, name string) (*domain.TableDescriptor, error)

	// AcquireSchemaChangeLock takes a lock on the table that conflicts with
	// other statistics-affecting DDL and ANALYZE, but not with ordinary
	// reads and writes. Held until the transaction ends.
	AcquireSchemaChangeLock(ctx context.Context, table domain.TableID) error

	// ObjectExists reports whether a statistics object with the qualified
	// name already exists.
	ObjectExists(ctx context.Context, ns domain.NamespaceID, name string) (bool, error)

	// InsertObject persists a new record and returns its allocated identity.
	InsertObject(ctx context.Context, obj *domain.StatisticsObject) (domain.ObjectID, error)

	// LookupObject fetches a record by identity. Returns
	// domain.ErrObjectNotFound if absent.
	LookupObject(ctx context.Context, id domain.ObjectID) (*domain.StatisticsObject, error)

	// LookupObjectByName fetches a record by qualified name. Returns
	// domain.ErrObjectNotFound if absent.
	LookupObjectByName(ctx context.Context, ns domain.NamespaceID, name string) (*domain.StatisticsObject, error)

	// DeleteObject removes the record. It does not touch dependency edges.
	DeleteObject(ctx context.Context, id domain.ObjectID) error

	// RecordDependency persists one structural edge.
	RecordDependency(ctx context.Context, edge domain.DependencyEdge) error

	// DeleteDependencies removes every edge whose child is the given object.
	DeleteDependencies(ctx context.Context, child domain.ObjectID) error

	// InvalidateCachedPlans tells other sessions to drop query plans that
	// depend on the table's statistics.
	InvalidateCachedPlans(ctx context.Context, table domain.TableID) error
}

// CatalogStore is the catalog collaborator. WithTx runs fn inside one
// transaction; a non-nil error from fn rolls everything back.
type CatalogStore interface {
	WithTx(ctx context.Context, fn func(tx CatalogTx) error) error
	ListObjects(ctx context.Context) ([]StatisticsObjectInfo, error)
}

// StatisticsObjectInfo is the listing view of a statistics object, with
// identifiers resolved back to display names.
type StatisticsObjectInfo struct {
	ID                int64    `json:"id"`
	Schema            string   `json:"schema"`
	Name              string   `json:"name"`
	Table             string   `json:"table"`
	Owner             string   `json:"owner"`
	Columns           []string `json:"columns"`
	Kinds             []string `json:"kinds"`
	NDistinctBuilt    bool     `json:"ndistinct_built"`
	DependenciesBuilt bool     `json:"dependencies_built"`
}
