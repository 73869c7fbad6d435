package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/port"
)

// invalidationChannel is the NOTIFY channel carrying table oids whose cached
// plans must be discarded.
const invalidationChannel = "statext_invalidation"

// lockClassStatistics namespaces the advisory locks taken per table, so they
// cannot collide with other advisory-lock users on the same database.
const lockClassStatistics int32 = 0x5354

// Catalog is the pgx-backed catalog store. Statistics objects and their
// dependency edges live in the statext_* tables; relation and attribute
// metadata is read from the system catalogs.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// WithTx runs fn inside one database transaction. Any error from fn rolls
// the whole transaction back, so a statistics object can never commit without
// its dependency edges.
func (c *Catalog) WithTx(ctx context.Context, fn func(tx port.CatalogTx) error) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&catalogTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CurrentUser returns the session principal, used as the owner of newly
// created statistics objects.
func (c *Catalog) CurrentUser(ctx context.Context) (string, error) {
	var user string
	if err := c.pool.QueryRow(ctx, "SELECT current_user").Scan(&user); err != nil {
		return "", fmt.Errorf("resolving current user: %w", err)
	}
	return user, nil
}

func (c *Catalog) ListObjects(ctx context.Context) ([]port.StatisticsObjectInfo, error) {
	rows, err := c.pool.Query(ctx, queryListObjects)
	if err != nil {
		return nil, fmt.Errorf("listing statistics objects: %w", err)
	}
	defer rows.Close()

	var infos []port.StatisticsObjectInfo
	for rows.Next() {
		var (
			info  port.StatisticsObjectInfo
			codes string
		)
		if err := rows.Scan(&info.ID, &info.Schema, &info.Name, &info.Table, &info.Owner,
			&info.Columns, &codes, &info.NDistinctBuilt, &info.DependenciesBuilt); err != nil {
			return nil, fmt.Errorf("scanning statistics object: %w", err)
		}
		kinds, err := domain.KindSetFromCodes(codes)
		if err != nil {
			return nil, err
		}
		for _, k := range kinds.Kinds() {
			info.Kinds = append(info.Kinds, k.String())
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statistics objects: %w", err)
	}
	return infos, nil
}

type catalogTx struct {
	tx pgx.Tx
}

func (t *catalogTx) ResolveNamespace(ctx context.Context, schema string) (domain.NamespaceID, error) {
	var oid uint32
	err := t.tx.QueryRow(ctx, queryResolveNamespace, schema).Scan(&oid)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: schema %q", domain.ErrObjectNotFound, schema)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving schema %q: %w", schema, err)
	}
	return domain.NamespaceID(oid), nil
}

func (t *catalogTx) LookupTable(ctx context.Context, schema, name string) (*domain.TableDescriptor, error) {
	if schema == "" {
		schema = "public"
	}

	var (
		relid, nsid uint32
		kind        string
	)
	desc := &domain.TableDescriptor{}
	err := t.tx.QueryRow(ctx, queryLookupRelation, schema, name).
		Scan(&relid, &nsid, &desc.Schema, &desc.Name, &kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: relation %s.%s", domain.ErrObjectNotFound, schema, name)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up relation %s.%s: %w", schema, name, err)
	}
	desc.ID = domain.TableID(relid)
	desc.Namespace = domain.NamespaceID(nsid)
	if len(kind) == 1 {
		desc.Kind = domain.RelationKind(kind[0])
	}

	rows, err := t.tx.Query(ctx, queryRelationAttributes, relid)
	if err != nil {
		return nil, fmt.Errorf("fetching attributes of %s.%s: %w", schema, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			col    domain.ColumnDescriptor
			attnum int16
			typid  uint32
		)
		if err := rows.Scan(&col.Name, &attnum, &typid, &col.HasSortOperator); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		col.Attnum = domain.AttrNumber(attnum)
		col.TypeID = domain.TypeID(typid)
		desc.Columns = append(desc.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attributes: %w", err)
	}
	return desc, nil
}

// AcquireSchemaChangeLock takes a transaction-scoped advisory lock keyed by
// the table's oid. It serializes statistics DDL per table without touching
// the relation's own lock queue, so ordinary reads and writes are never
// blocked. Released automatically at commit or rollback.
func (t *catalogTx) AcquireSchemaChangeLock(ctx context.Context, table domain.TableID) error {
	if _, err := t.tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)",
		lockClassStatistics, int32(uint32(table))); err != nil {
		return fmt.Errorf("acquiring schema-change lock on relation %d: %w", table, err)
	}
	return nil
}

func (t *catalogTx) ObjectExists(ctx context.Context, ns domain.NamespaceID, name string) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, queryObjectExists, uint32(ns), name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking statistics name %q: %w", name, err)
	}
	return exists, nil
}

func (t *catalogTx) InsertObject(ctx context.Context, obj *domain.StatisticsObject) (domain.ObjectID, error) {
	attnums := obj.Keys.Attnums()
	keys := make([]int16, len(attnums))
	for i, a := range attnums {
		keys[i] = int16(a)
	}

	var id int64
	err := t.tx.QueryRow(ctx, queryInsertObject,
		uint32(obj.Namespace), obj.Name, uint32(obj.TableID), obj.Owner, keys, obj.Kinds.Codes()).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting statistics object %q: %w", obj.Name, err)
	}
	return domain.ObjectID(id), nil
}

func (t *catalogTx) LookupObject(ctx context.Context, id domain.ObjectID) (*domain.StatisticsObject, error) {
	obj, err := t.scanObject(t.tx.QueryRow(ctx, queryLookupObject, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: statistics object %d", domain.ErrObjectNotFound, id)
	}
	return obj, err
}

func (t *catalogTx) LookupObjectByName(ctx context.Context, ns domain.NamespaceID, name string) (*domain.StatisticsObject, error) {
	obj, err := t.scanObject(t.tx.QueryRow(ctx, queryLookupObjectByName, uint32(ns), name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", domain.ErrObjectNotFound, name)
	}
	return obj, err
}

func (t *catalogTx) scanObject(row pgx.Row) (*domain.StatisticsObject, error) {
	var (
		obj       domain.StatisticsObject
		id        int64
		nsid, rel uint32
		keys      []int16
		codes     string
	)
	if err := row.Scan(&id, &nsid, &obj.Name, &rel, &obj.Owner, &keys, &codes,
		&obj.NDistinct, &obj.Dependencies); err != nil {
		return nil, err
	}
	obj.ID = domain.ObjectID(id)
	obj.Namespace = domain.NamespaceID(nsid)
	obj.TableID = domain.TableID(rel)

	attnums := make([]domain.AttrNumber, len(keys))
	for i, k := range keys {
		attnums[i] = domain.AttrNumber(k)
	}
	ks, err := domain.KeySetFromAttnums(attnums)
	if err != nil {
		return nil, err
	}
	obj.Keys = ks

	kinds, err := domain.KindSetFromCodes(codes)
	if err != nil {
		return nil, err
	}
	obj.Kinds = kinds
	return &obj, nil
}

func (t *catalogTx) DeleteObject(ctx context.Context, id domain.ObjectID) error {
	tag, err := t.tx.Exec(ctx, queryDeleteObject, int64(id))
	if err != nil {
		return fmt.Errorf("deleting statistics object %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: statistics object %d", domain.ErrObjectNotFound, id)
	}
	return nil
}

func (t *catalogTx) RecordDependency(ctx context.Context, edge domain.DependencyEdge) error {
	if _, err := t.tx.Exec(ctx, queryRecordDependency,
		int64(edge.Child), string(edge.ParentClass), edge.ParentID, string(edge.Kind)); err != nil {
		return fmt.Errorf("recording dependency of object %d on %s %d: %w",
			edge.Child, edge.ParentClass, edge.ParentID, err)
	}
	return nil
}

func (t *catalogTx) DeleteDependencies(ctx context.Context, child domain.ObjectID) error {
	if _, err := t.tx.Exec(ctx, queryDeleteDependencies, int64(child)); err != nil {
		return fmt.Errorf("deleting dependencies of object %d: %w", child, err)
	}
	return nil
}

// InvalidateCachedPlans notifies listeners that the table's statistics
// changed. The notification is delivered at commit, which is exactly when the
// catalog change becomes visible.
func (t *catalogTx) InvalidateCachedPlans(ctx context.Context, table domain.TableID) error {
	if _, err := t.tx.Exec(ctx, "SELECT pg_notify($1, $2)",
		invalidationChannel, strconv.FormatUint(uint64(table), 10)); err != nil {
		return fmt.Errorf("invalidating cached plans for relation %d: %w", table, err)
	}
	return nil
}
