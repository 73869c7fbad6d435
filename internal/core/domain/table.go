package domain

// Identifiers mirror the PostgreSQL catalog: attribute numbers are small
// signed integers (negative for system columns), everything else is an oid.
type (
	AttrNumber  int16
	TypeID      uint32
	TableID     uint32
	NamespaceID uint32
	ObjectID    int64
)

// InvalidObjectID is returned when a create request is skipped.
const InvalidObjectID ObjectID = 0

// RelationKind is the pg_class.relkind code of a relation.
type RelationKind byte

const (
	RelKindTable            RelationKind = 'r'
	RelKindView             RelationKind = 'v'
	RelKindMaterializedView RelationKind = 'm'
	RelKindForeignTable     RelationKind = 'f'
	RelKindPartitionedTable RelationKind = 'p'
	RelKindSequence         RelationKind = 'S'
	RelKindIndex            RelationKind = 'i'
)

// SupportsExtendedStats reports whether statistics objects may be declared on
// a relation of this kind.
func (k RelationKind) SupportsExtendedStats() bool {
	switch k {
	case RelKindTable, RelKindMaterializedView, RelKindForeignTable, RelKindPartitionedTable:
		return true
	default:
		return false
	}
}

// ColumnDescriptor is the already-fetched metadata of a single column.
// HasSortOperator reports whether the column's type has a default btree
// less-than operator; types without one cannot participate in extended
// statistics because the computation engine needs to sort the values.
type ColumnDescriptor struct {
	Name            string
	Attnum          AttrNumber
	TypeID          TypeID
	HasSortOperator bool
}

// TableDescriptor holds everything column resolution needs about the target
// relation, fetched once under the schema-change lock. It includes system
// columns (negative attnums) so their use can be rejected explicitly.
type TableDescriptor struct {
	ID        TableID
	Namespace NamespaceID
	Schema    string
	Name      string
	Kind      RelationKind
	Columns   []ColumnDescriptor
}

// Column looks up a column by name. Column names are case-sensitive, matching
// catalog semantics (the parser has already folded unquoted identifiers).
func (d *TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// QualifiedName returns "schema.name".
func (d *TableDescriptor) QualifiedName() string {
	return d.Schema + "." + d.Name
}
