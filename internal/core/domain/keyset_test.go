package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(attnums ...AttrNumber) []AttributeRef {
	out := make([]AttributeRef, len(attnums))
	for i, a := range attnums {
		out[i] = AttributeRef{Attnum: a, TypeID: 23}
	}
	return out
}

func TestCanonicalize_SortsByAttnum(t *testing.T) {
	ks, err := Canonicalize(refs(7, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, []AttrNumber{2, 5, 7}, ks.Attnums())
}

func TestCanonicalize_OrderIndependent(t *testing.T) {
	permutations := [][]AttrNumber{
		{1, 4, 9},
		{4, 1, 9},
		{9, 4, 1},
		{9, 1, 4},
	}

	first, err := Canonicalize(refs(permutations[0]...))
	require.NoError(t, err)

	for _, p := range permutations[1:] {
		ks, err := Canonicalize(refs(p...))
		require.NoError(t, err)
		assert.Equal(t, first, ks, "permutation %v must canonicalize identically", p)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	ks, err := Canonicalize(refs(3, 1))
	require.NoError(t, err)

	again, err := Canonicalize(refs(ks.Attnums()[0], ks.Attnums()[1]))
	require.NoError(t, err)
	assert.Equal(t, ks, again)
}

func TestCanonicalize_DuplicateColumn(t *testing.T) {
	_, err := Canonicalize(refs(4, 2, 4))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestCanonicalize_TooFewColumns(t *testing.T) {
	_, err := Canonicalize(refs(1))
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = Canonicalize(nil)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestCanonicalize_TooManyColumns(t *testing.T) {
	attnums := make([]AttrNumber, MaxDimensions+1)
	for i := range attnums {
		attnums[i] = AttrNumber(i + 1)
	}

	_, err := Canonicalize(refs(attnums...))
	assert.ErrorIs(t, err, ErrTooManyColumns)
}

func TestCanonicalize_ExactlyMax(t *testing.T) {
	attnums := make([]AttrNumber, MaxDimensions)
	for i := range attnums {
		attnums[i] = AttrNumber(MaxDimensions - i) // reversed on purpose
	}

	ks, err := Canonicalize(refs(attnums...))
	require.NoError(t, err)
	assert.Equal(t, MaxDimensions, ks.Len())

	got := ks.Attnums()
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i], "key set must be strictly increasing")
	}
}

func TestKeySetFromAttnums_RoundTrip(t *testing.T) {
	ks, err := Canonicalize(refs(6, 3))
	require.NoError(t, err)

	rebuilt, err := KeySetFromAttnums(ks.Attnums())
	require.NoError(t, err)
	assert.Equal(t, ks, rebuilt)
}
