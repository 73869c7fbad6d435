package domain

// Session carries the ambient request context explicitly: who is running the
// DDL. Threading it through calls instead of reading globals keeps the core
// testable with a fake session.
type Session struct {
	User string
}

// CreateRequest is the structured form of a CREATE STATISTICS statement.
// Columns keeps the textual order; duplicates and over-limit lists are
// possible and rejected during resolution.
type CreateRequest struct {
	Schema      string // namespace of the new object; empty means the table's schema
	Name        string
	TableSchema string
	TableName   string
	Columns     []string
	Options     []Option
	IfNotExists bool
}

// StatisticsObject is the persisted definition of a multi-column statistics
// object. Payload slots hold the computed statistic per kind and start out
// nil; they are filled in place later by the statistics computation engine,
// never by this package.
type StatisticsObject struct {
	ID        ObjectID
	Namespace NamespaceID
	Name      string
	TableID   TableID
	Owner     string
	Keys      KeySet
	Kinds     KindSet

	NDistinct    []byte
	Dependencies []byte
}

// NewStatisticsObject assembles a record ready for catalog insertion, with
// every payload slot empty.
func NewStatisticsObject(name string, ns NamespaceID, table TableID, owner string, keys KeySet, kinds KindSet) *StatisticsObject {
	return &StatisticsObject{
		Namespace: ns,
		Name:      name,
		TableID:   table,
		Owner:     owner,
		Keys:      keys,
		Kinds:     kinds,
	}
}

// DependencyKind classifies a dependency edge. Statistics objects only ever
// record AUTO edges: the object silently goes away when its parent is
// dropped.
type DependencyKind byte

const DependencyAuto DependencyKind = 'a'

// ParentClass identifies which catalog the parent of an edge lives in.
type ParentClass string

const (
	ParentTable  ParentClass = "table"
	ParentSchema ParentClass = "schema"
)

// DependencyEdge records that the statistics object identified by Child
// depends structurally on a table or schema. Every object has exactly two:
// one to its owning table and one to its owning schema, created atomically
// with the record.
type DependencyEdge struct {
	Child       ObjectID
	ParentClass ParentClass
	ParentID    uint32
	Kind        DependencyKind
}
