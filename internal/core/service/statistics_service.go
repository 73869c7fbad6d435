package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type toolNameKey struct{}
type statementKey struct{}

// WithToolName returns a context carrying the MCP tool name for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

// WithStatement returns a context carrying the raw DDL text for audit logging.
func WithStatement(ctx context.Context, sql string) context.Context {
	return context.WithValue(ctx, statementKey{}, sql)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

func statementFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(statementKey{}).(string); ok {
		return v
	}
	return ""
}

// StatisticsService orchestrates statistics DDL: column resolution and
// canonicalization (domain) against the catalog store (infrastructure). Each
// request runs inside a single catalog transaction, so record insertion and
// dependency registration are all-or-nothing.
type StatisticsService struct {
	catalog port.CatalogStore
	auditor port.DDLAuditor
	logger  *slog.Logger
	tracer  trace.Tracer
	inst    port.Instrumentation
	timeout time.Duration
}

func NewStatisticsService(catalog port.CatalogStore, auditor port.DDLAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation, timeout time.Duration) *StatisticsService {
	if auditor == nil {
		auditor = port.NoopAuditor{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &StatisticsService{
		catalog: catalog,
		auditor: auditor,
		logger:  logger,
		tracer:  tracer,
		inst:    inst,
		timeout: timeout,
	}
}

// Create declares a new statistics object. It validates and canonicalizes the
// definition, persists the record with empty payload slots, and registers the
// two structural dependency edges, all in one transaction. With IfNotExists
// set, a name collision is a no-op returning (InvalidObjectID, false, nil)
// instead of ErrDuplicateObject.
func (s *StatisticsService) Create(ctx context.Context, sess domain.Session, req domain.CreateRequest) (domain.ObjectID, bool, error) {
	ctx, span := s.tracer.Start(ctx, "StatisticsService.Create",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation.name", "create_statistics"),
			attribute.String("statistics.name", req.Name),
		),
	)
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		id      = domain.InvalidObjectID
		created bool
	)

	start := time.Now()
	err := s.catalog.WithTx(ctx, func(tx port.CatalogTx) error {
		// Resolve the object's namespace. An unqualified name lands in the
		// target table's schema.
		objSchema := req.Schema
		if objSchema == "" {
			objSchema = req.TableSchema
		}
		if objSchema == "" {
			objSchema = "public"
		}
		ns, err := tx.ResolveNamespace(ctx, objSchema)
		if err != nil {
			return err
		}

		exists, err := tx.ObjectExists(ctx, ns, req.Name)
		if err != nil {
			return err
		}
		if exists {
			if req.IfNotExists {
				s.logger.InfoContext(ctx, "statistics already exist, skipping",
					slog.String("statistics.name", req.Name),
				)
				return nil
			}
			return fmt.Errorf("%w: %q", domain.ErrDuplicateObject, req.Name)
		}

		table, err := tx.LookupTable(ctx, req.TableSchema, req.TableName)
		if err != nil {
			return err
		}

		// The new object influences future plans but not running ones, so a
		// non-exclusive schema-change lock is enough: it conflicts with
		// ANALYZE and other statistics DDL on the table, never with normal
		// reads and writes.
		if err := tx.AcquireSchemaChangeLock(ctx, table.ID); err != nil {
			return err
		}

		if !table.Kind.SupportsExtendedStats() {
			return fmt.Errorf("%w: %q", domain.ErrWrongObjectType, table.QualifiedName())
		}

		refs, err := domain.ResolveColumns(table, req.Columns)
		if err != nil {
			return err
		}

		keys, err := domain.Canonicalize(refs)
		if err != nil {
			return err
		}

		kinds, err := domain.SelectKinds(req.Options)
		if err != nil {
			return err
		}

		obj := domain.NewStatisticsObject(req.Name, ns, table.ID, sess.User, keys, kinds)
		id, err = tx.InsertObject(ctx, obj)
		if err != nil {
			return err
		}

		// Other sessions must see the new object on their next plan.
		if err := tx.InvalidateCachedPlans(ctx, table.ID); err != nil {
			return err
		}

		// Dependency on the table, so the object is dropped with it.
		if err := tx.RecordDependency(ctx, domain.DependencyEdge{
			Child:       id,
			ParentClass: domain.ParentTable,
			ParentID:    uint32(table.ID),
			Kind:        domain.DependencyAuto,
		}); err != nil {
			return err
		}

		// Also on the schema: the object may live in a different schema from
		// its table, and DROP SCHEMA has to find it too.
		if err := tx.RecordDependency(ctx, domain.DependencyEdge{
			Child:       id,
			ParentClass: domain.ParentSchema,
			ParentID:    uint32(ns),
			Kind:        domain.DependencyAuto,
		}); err != nil {
			return err
		}

		created = true
		return nil
	})
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordDDLDuration(ctx, float64(durationMS))
	s.auditor.Record(ctx, port.AuditEntry{
		Tool:       toolNameFromCtx(ctx),
		Statement:  statementFromCtx(ctx),
		Object:     req.Name,
		DurationMS: durationMS,
		Err:        err,
	})

	if err != nil {
		s.logger.WarnContext(ctx, "create statistics rejected",
			slog.String("statistics.name", req.Name),
			slog.String("error.message", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementDDLErrors(ctx)
		return domain.InvalidObjectID, false, err
	}

	s.inst.IncrementDDLCount(ctx)
	if created {
		span.SetAttributes(attribute.Int64("statistics.object_id", int64(id)))
		s.logger.InfoContext(ctx, "statistics object created",
			slog.String("statistics.name", req.Name),
			slog.Int64("statistics.object_id", int64(id)),
		)
	}
	return id, created, nil
}

// Remove retracts the statistics object with the given identity: it reads the
// record, invalidates cached plans for the owning table, then deletes the
// record, in that order. Dependency edges are left to the cascading-drop
// machinery that invoked the removal. Callers are expected to have verified
// existence; a missing record is reported as an internal error.
func (s *StatisticsService) Remove(ctx context.Context, id domain.ObjectID) error {
	ctx, span := s.tracer.Start(ctx, "StatisticsService.Remove",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation.name", "remove_statistics"),
			attribute.Int64("statistics.object_id", int64(id)),
		),
	)
	defer span.End()

	err := s.catalog.WithTx(ctx, func(tx port.CatalogTx) error {
		return removeInTx(ctx, tx, id)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementDDLErrors(ctx)
		return err
	}
	return nil
}

// removeInTx is the guts of statistics deletion. The table id is read from
// the record before deletion so the invalidation references a still-valid
// target.
func removeInTx(ctx context.Context, tx port.CatalogTx, id domain.ObjectID) error {
	obj, err := tx.LookupObject(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			// Should not happen: callers verify existence first.
			return fmt.Errorf("%w: cache lookup failed for statistics %d", domain.ErrInternal, id)
		}
		return err
	}

	if err := tx.InvalidateCachedPlans(ctx, obj.TableID); err != nil {
		return err
	}

	return tx.DeleteObject(ctx, id)
}

// Drop removes a statistics object by qualified name: the user-facing DROP
// STATISTICS path. It deletes the object's dependency edges and then hands
// the identity to the core removal protocol. With ifExists set, a missing
// object is a no-op returning (false, nil).
func (s *StatisticsService) Drop(ctx context.Context, sess domain.Session, schema, name string, ifExists bool) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "StatisticsService.Drop",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation.name", "drop_statistics"),
			attribute.String("statistics.name", name),
		),
	)
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if schema == "" {
		schema = "public"
	}

	dropped := false
	start := time.Now()
	err := s.catalog.WithTx(ctx, func(tx port.CatalogTx) error {
		ns, err := tx.ResolveNamespace(ctx, schema)
		if err != nil {
			return err
		}

		obj, err := tx.LookupObjectByName(ctx, ns, name)
		if err != nil {
			if errors.Is(err, domain.ErrObjectNotFound) && ifExists {
				s.logger.InfoContext(ctx, "statistics do not exist, skipping",
					slog.String("statistics.name", name),
				)
				return nil
			}
			return err
		}

		if err := tx.AcquireSchemaChangeLock(ctx, obj.TableID); err != nil {
			return err
		}

		if err := tx.DeleteDependencies(ctx, obj.ID); err != nil {
			return err
		}

		if err := removeInTx(ctx, tx, obj.ID); err != nil {
			return err
		}

		dropped = true
		return nil
	})
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordDDLDuration(ctx, float64(durationMS))
	s.auditor.Record(ctx, port.AuditEntry{
		Tool:       toolNameFromCtx(ctx),
		Statement:  statementFromCtx(ctx),
		Object:     name,
		DurationMS: durationMS,
		Err:        err,
	})

	if err != nil {
		s.logger.WarnContext(ctx, "drop statistics rejected",
			slog.String("statistics.name", name),
			slog.String("error.message", err.Error()),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementDDLErrors(ctx)
		return false, err
	}

	s.inst.IncrementDDLCount(ctx)
	if dropped {
		s.logger.InfoContext(ctx, "statistics object dropped",
			slog.String("statistics.name", name),
		)
	}
	return dropped, nil
}

// List enumerates the existing statistics objects.
func (s *StatisticsService) List(ctx context.Context) ([]port.StatisticsObjectInfo, error) {
	ctx, span := s.tracer.Start(ctx, "StatisticsService.List")
	defer span.End()

	infos, err := s.catalog.ListObjects(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("statistics.count", len(infos)))
	return infos, nil
}
