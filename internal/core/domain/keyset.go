package domain

import (
	"fmt"
	"sort"
)

// MaxDimensions is the maximum number of columns a single statistics object
// may span.
const MaxDimensions = 8

// KeySet is the canonical column set of a statistics object: a bounded,
// strictly increasing sequence of attribute numbers. The zero value is empty.
//
// The ascending-attnum order is a storage canonicalization, not a semantic
// one. Unlike index keys, statistics key order carries no behavioral meaning;
// any fixed order would do, but without one, two requests naming the same
// columns in different textual order would persist as distinct objects.
type KeySet struct {
	attnums [MaxDimensions]AttrNumber
	n       int
}

// Canonicalize sorts and deduplicates the resolved attributes into a KeySet.
// Fewer than two attributes is an invalid definition; the same attribute
// appearing twice, under whatever textual spelling, is a duplicate column.
func Canonicalize(refs []AttributeRef) (KeySet, error) {
	var ks KeySet

	if len(refs) < 2 {
		return ks, ErrInvalidDefinition
	}
	if len(refs) > MaxDimensions {
		return ks, fmt.Errorf("%w: cannot have more than %d columns", ErrTooManyColumns, MaxDimensions)
	}

	attnums := make([]AttrNumber, len(refs))
	for i, r := range refs {
		attnums[i] = r.Attnum
	}

	// Compare in int so the subtraction-style comparators seen elsewhere
	// cannot overflow the int16 range.
	sort.SliceStable(attnums, func(i, j int) bool {
		return int(attnums[i]) < int(attnums[j])
	})

	// Sorted, so duplicates are adjacent.
	for i := 1; i < len(attnums); i++ {
		if attnums[i] == attnums[i-1] {
			return KeySet{}, fmt.Errorf("%w: attribute %d listed twice", ErrDuplicateColumn, attnums[i])
		}
	}

	for _, a := range attnums {
		if err := ks.add(a); err != nil {
			return KeySet{}, err
		}
	}
	return ks, nil
}

// KeySetFromAttnums rebuilds a KeySet from its persisted form. The stored
// sequence is trusted to already be sorted and duplicate-free.
func KeySetFromAttnums(attnums []AttrNumber) (KeySet, error) {
	var ks KeySet
	for _, a := range attnums {
		if err := ks.add(a); err != nil {
			return KeySet{}, err
		}
	}
	return ks, nil
}

func (k *KeySet) add(a AttrNumber) error {
	if k.n >= MaxDimensions {
		return fmt.Errorf("%w: cannot have more than %d columns", ErrTooManyColumns, MaxDimensions)
	}
	k.attnums[k.n] = a
	k.n++
	return nil
}

func (k KeySet) Len() int { return k.n }

// Attnums returns the attribute numbers in canonical order.
func (k KeySet) Attnums() []AttrNumber {
	out := make([]AttrNumber, k.n)
	copy(out, k.attnums[:k.n])
	return out
}
