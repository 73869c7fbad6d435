package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTable builds a descriptor with n ordinary sortable columns named
// c1..cn, plus the usual system columns and one unsortable column.
func testTable(n int) *TableDescriptor {
	desc := &TableDescriptor{
		ID:        16384,
		Namespace: 2200,
		Schema:    "public",
		Name:      "orders",
		Kind:      RelKindTable,
		Columns: []ColumnDescriptor{
			{Name: "ctid", Attnum: -1, TypeID: 27, HasSortOperator: true},
			{Name: "xmin", Attnum: -3, TypeID: 28, HasSortOperator: true},
			{Name: "geom", Attnum: AttrNumber(n + 1), TypeID: 600, HasSortOperator: false},
		},
	}
	for i := 1; i <= n; i++ {
		desc.Columns = append(desc.Columns, ColumnDescriptor{
			Name:            fmt.Sprintf("c%d", i),
			Attnum:          AttrNumber(i),
			TypeID:          23,
			HasSortOperator: true,
		})
	}
	return desc
}

func TestResolveColumns_Valid(t *testing.T) {
	refs, err := ResolveColumns(testTable(3), []string{"c2", "c1"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, AttrNumber(2), refs[0].Attnum)
	assert.Equal(t, AttrNumber(1), refs[1].Attnum)
	assert.Equal(t, TypeID(23), refs[0].TypeID)
}

func TestResolveColumns_UndefinedColumn(t *testing.T) {
	_, err := ResolveColumns(testTable(3), []string{"c1", "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedColumn)
	assert.Contains(t, err.Error(), "nope")
}

func TestResolveColumns_SystemColumn(t *testing.T) {
	_, err := ResolveColumns(testTable(3), []string{"c1", "xmin"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedColumn)
}

func TestResolveColumns_UnsortableType(t *testing.T) {
	_, err := ResolveColumns(testTable(3), []string{"c1", "geom"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedColumn)
	assert.Contains(t, err.Error(), "geom")
}

func TestResolveColumns_TooMany(t *testing.T) {
	desc := testTable(MaxDimensions + 1)
	names := make([]string, MaxDimensions+1)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i+1)
	}

	_, err := ResolveColumns(desc, names)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyColumns)
}

func TestResolveColumns_ExactlyMaxSucceeds(t *testing.T) {
	desc := testTable(MaxDimensions)
	names := make([]string, MaxDimensions)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i+1)
	}

	refs, err := ResolveColumns(desc, names)
	require.NoError(t, err)
	assert.Len(t, refs, MaxDimensions)
}

func TestResolveColumns_FailsFastOverLimit(t *testing.T) {
	// The over-limit name list contains an undefined column past the limit;
	// the dimension check must fire first.
	desc := testTable(MaxDimensions)
	names := make([]string, 0, MaxDimensions+1)
	for i := 1; i <= MaxDimensions; i++ {
		names = append(names, fmt.Sprintf("c%d", i))
	}
	names = append(names, "does_not_exist")

	_, err := ResolveColumns(desc, names)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyColumns)
}

func TestRelationKind_SupportsExtendedStats(t *testing.T) {
	assert.True(t, RelKindTable.SupportsExtendedStats())
	assert.True(t, RelKindMaterializedView.SupportsExtendedStats())
	assert.True(t, RelKindForeignTable.SupportsExtendedStats())
	assert.True(t, RelKindPartitionedTable.SupportsExtendedStats())
	assert.False(t, RelKindView.SupportsExtendedStats())
	assert.False(t, RelKindSequence.SupportsExtendedStats())
	assert.False(t, RelKindIndex.SupportsExtendedStats())
}
