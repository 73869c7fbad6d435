package domain

import "errors"

// Validation and catalog errors surfaced by statistics DDL. All of these are
// caused by bad input except ErrInternal, which signals an invariant violation
// somewhere else in the system.
var (
	ErrUndefinedColumn    = errors.New("column referenced in statistics does not exist")
	ErrUnsupportedColumn  = errors.New("column is not supported in statistics")
	ErrTooManyColumns     = errors.New("too many columns in statistics")
	ErrInvalidDefinition  = errors.New("extended statistics require at least 2 columns")
	ErrDuplicateColumn    = errors.New("duplicate column name in statistics definition")
	ErrUnrecognizedOption = errors.New("unrecognized statistics option")
	ErrDuplicateObject    = errors.New("statistics object already exists")
	ErrWrongObjectType    = errors.New("relation is not a table, foreign table, or materialized view")
	ErrObjectNotFound     = errors.New("statistics object does not exist")
	ErrInternal           = errors.New("internal error")
)
