package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// catalogSchema holds the statistics objects and their dependency edges.
// Payload columns start NULL and are filled in place by the statistics
// computation engine. Edges carry no foreign key: their lifecycle belongs to
// the dependency machinery, not the storage layer.
const catalogSchema = `
CREATE TABLE IF NOT EXISTS statext_objects (
    id           bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    namespace    oid    NOT NULL,
    name         text   NOT NULL,
    relid        oid    NOT NULL,
    owner        text   NOT NULL,
    keys         smallint[] NOT NULL,
    kinds        text   NOT NULL,
    ndistinct    jsonb,
    dependencies jsonb,
    UNIQUE (namespace, name)
);

CREATE TABLE IF NOT EXISTS statext_dependencies (
    child        bigint NOT NULL,
    parent_class text   NOT NULL,
    parent_id    oid    NOT NULL,
    deptype      text   NOT NULL DEFAULT 'a'
);

CREATE INDEX IF NOT EXISTS statext_dependencies_child_idx
    ON statext_dependencies (child);
`

// Migrate creates the statext catalog tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, catalogSchema); err != nil {
		return fmt.Errorf("creating statext catalog tables: %w", err)
	}
	return nil
}
