package domain

import "fmt"

// AttributeRef is a resolved column: its stable attribute number plus the
// declared type. The attribute number, not the display name, is what gets
// persisted in the key set.
type AttributeRef struct {
	Attnum AttrNumber
	TypeID TypeID
}

// ResolveColumns maps the requested column names to attribute refs, enforcing
// the per-object constraints: every name must exist on the table, system
// columns are disallowed, the column type must be sortable, and no more than
// MaxDimensions columns may be named. The dimension check fails fast, before
// resolving the remainder of the list.
//
// Resolution is a pure computation over the already-fetched descriptor; the
// caller is responsible for holding the table open for the duration.
func ResolveColumns(table *TableDescriptor, names []string) ([]AttributeRef, error) {
	refs := make([]AttributeRef, 0, len(names))

	for _, name := range names {
		if len(refs) >= MaxDimensions {
			return nil, fmt.Errorf("%w: cannot have more than %d columns", ErrTooManyColumns, MaxDimensions)
		}

		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: column %q of relation %q", ErrUndefinedColumn, name, table.Name)
		}

		if col.Attnum < 0 {
			return nil, fmt.Errorf("%w: %q is a system column", ErrUnsupportedColumn, name)
		}

		if !col.HasSortOperator {
			return nil, fmt.Errorf("%w: type of column %q has no default btree operator class", ErrUnsupportedColumn, name)
		}

		refs = append(refs, AttributeRef{Attnum: col.Attnum, TypeID: col.TypeID})
	}

	return refs, nil
}
