package postgres

// Catalog queries. Attribute metadata comes straight from the system
// catalogs; the statistics objects themselves live in the statext_* tables
// created by Migrate.

const queryResolveNamespace = `
SELECT oid
FROM pg_namespace
WHERE nspname = $1`

const queryLookupRelation = `
SELECT c.oid, c.relnamespace, n.nspname, c.relname, c.relkind
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1
  AND c.relname = $2`

// Includes system columns (negative attnums); the domain layer rejects their
// use explicitly. The EXISTS probe asks whether the column's type has a
// default btree less-than operator, which the statistics computation needs.
const queryRelationAttributes = `
SELECT a.attname,
       a.attnum,
       a.atttypid,
       EXISTS (
           SELECT 1
           FROM pg_catalog.pg_amop op
           WHERE op.amopmethod = (SELECT oid FROM pg_catalog.pg_am WHERE amname = 'btree')
             AND op.amoplefttype = a.atttypid
             AND op.amoprighttype = a.atttypid
             AND op.amopstrategy = 1
       ) AS has_sort_operator
FROM pg_catalog.pg_attribute a
WHERE a.attrelid = $1::oid
  AND NOT a.attisdropped
ORDER BY a.attnum`

const queryObjectExists = `
SELECT EXISTS (
    SELECT 1
    FROM statext_objects
    WHERE namespace = $1::oid AND name = $2
)`

const queryInsertObject = `
INSERT INTO statext_objects (namespace, name, relid, owner, keys, kinds)
VALUES ($1::oid, $2, $3::oid, $4, $5, $6)
RETURNING id`

const queryLookupObject = `
SELECT id, namespace, name, relid, owner, keys, kinds, ndistinct, dependencies
FROM statext_objects
WHERE id = $1`

const queryLookupObjectByName = `
SELECT id, namespace, name, relid, owner, keys, kinds, ndistinct, dependencies
FROM statext_objects
WHERE namespace = $1::oid AND name = $2`

const queryDeleteObject = `
DELETE FROM statext_objects
WHERE id = $1`

const queryRecordDependency = `
INSERT INTO statext_dependencies (child, parent_class, parent_id, deptype)
VALUES ($1, $2, $3::oid, $4)`

const queryDeleteDependencies = `
DELETE FROM statext_dependencies
WHERE child = $1`

const queryListObjects = `
SELECT o.id,
       ns.nspname,
       o.name,
       n2.nspname || '.' || c.relname,
       o.owner,
       ARRAY(
           SELECT a.attname
           FROM pg_catalog.pg_attribute a
           WHERE a.attrelid = o.relid
             AND a.attnum = ANY (o.keys)
           ORDER BY a.attnum
       ),
       o.kinds,
       o.ndistinct IS NOT NULL,
       o.dependencies IS NOT NULL
FROM statext_objects o
JOIN pg_catalog.pg_class c ON c.oid = o.relid
JOIN pg_catalog.pg_namespace n2 ON n2.oid = c.relnamespace
JOIN pg_catalog.pg_namespace ns ON ns.oid = o.namespace
ORDER BY ns.nspname, o.name`
