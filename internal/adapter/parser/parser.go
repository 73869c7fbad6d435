package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pgmeta/statext/internal/core/domain"
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

var (
	ErrEmptyStatement  = errors.New("empty statement")
	ErrMultiStatement  = errors.New("multiple statements are not allowed")
	ErrParseFailed     = errors.New("failed to parse SQL")
	ErrNotCreateStats  = errors.New("statement is not CREATE STATISTICS")
	ErrNotDropStats    = errors.New("statement is not DROP STATISTICS")
	ErrExpressionStats = errors.New("statistics on expressions are not supported")
	ErrMultipleTables  = errors.New("statistics spanning multiple tables are not supported")
)

// singleStatement parses sql with PostgreSQL's actual parser and returns the
// one top-level statement node.
func singleStatement(sql string) (*pg_query.Node, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, ErrEmptyStatement
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	if len(tree.Stmts) == 0 {
		return nil, ErrEmptyStatement
	}
	if len(tree.Stmts) > 1 {
		return nil, ErrMultiStatement
	}

	stmt := tree.Stmts[0].Stmt
	if stmt == nil {
		return nil, ErrEmptyStatement
	}
	return stmt, nil
}

// ParseCreateStatistics turns a CREATE STATISTICS statement into a structured
// request. Only plain column references over a single table are accepted; the
// grammar's expression and multi-relation forms are rejected here rather than
// downstream.
func ParseCreateStatistics(sql string) (*domain.CreateRequest, error) {
	stmt, err := singleStatement(sql)
	if err != nil {
		return nil, err
	}

	cs := stmt.GetCreateStatsStmt()
	if cs == nil {
		return nil, ErrNotCreateStats
	}

	req := &domain.CreateRequest{IfNotExists: cs.IfNotExists}

	// Qualified object name: [schema,] name.
	names := make([]string, 0, len(cs.Defnames))
	for _, n := range cs.Defnames {
		s := n.GetString_()
		if s == nil {
			return nil, fmt.Errorf("%w: unexpected node in statistics name", ErrParseFailed)
		}
		names = append(names, s.Sval)
	}
	switch len(names) {
	case 1:
		req.Name = names[0]
	case 2:
		req.Schema = names[0]
		req.Name = names[1]
	default:
		return nil, fmt.Errorf("%w: improper qualified name %q", ErrParseFailed, strings.Join(names, "."))
	}

	if len(cs.Relations) != 1 {
		return nil, ErrMultipleTables
	}
	rv := cs.Relations[0].GetRangeVar()
	if rv == nil {
		return nil, fmt.Errorf("%w: unexpected relation node", ErrParseFailed)
	}
	req.TableSchema = rv.Schemaname
	req.TableName = rv.Relname

	for _, e := range cs.Exprs {
		elem := e.GetStatsElem()
		if elem == nil {
			return nil, fmt.Errorf("%w: unexpected node in column list", ErrParseFailed)
		}
		if elem.Name == "" {
			return nil, ErrExpressionStats
		}
		req.Columns = append(req.Columns, elem.Name)
	}

	// The grammar only lets kinds be named, which means "enabled".
	for _, st := range cs.StatTypes {
		s := st.GetString_()
		if s == nil {
			return nil, fmt.Errorf("%w: unexpected node in kind list", ErrParseFailed)
		}
		req.Options = append(req.Options, domain.Option{Name: s.Sval, Value: true})
	}

	return req, nil
}

// DropRequest is the structured form of a DROP STATISTICS statement.
type DropRequest struct {
	Schema   string
	Name     string
	IfExists bool
}

// ParseDropStatistics turns a DROP STATISTICS statement into a structured
// request. Exactly one object may be named per statement.
func ParseDropStatistics(sql string) (*DropRequest, error) {
	stmt, err := singleStatement(sql)
	if err != nil {
		return nil, err
	}

	ds := stmt.GetDropStmt()
	if ds == nil || ds.RemoveType != pg_query.ObjectType_OBJECT_STATISTIC_EXT {
		return nil, ErrNotDropStats
	}
	if len(ds.Objects) != 1 {
		return nil, fmt.Errorf("%w: exactly one statistics object must be named", ErrNotDropStats)
	}

	list := ds.Objects[0].GetList()
	if list == nil {
		return nil, fmt.Errorf("%w: unexpected object node", ErrParseFailed)
	}
	parts := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		s := item.GetString_()
		if s == nil {
			return nil, fmt.Errorf("%w: unexpected node in object name", ErrParseFailed)
		}
		parts = append(parts, s.Sval)
	}

	req := &DropRequest{IfExists: ds.MissingOk}
	switch len(parts) {
	case 1:
		req.Name = parts[0]
	case 2:
		req.Schema = parts[0]
		req.Name = parts[1]
	default:
		return nil, fmt.Errorf("%w: improper qualified name %q", ErrParseFailed, strings.Join(parts, "."))
	}

	return req, nil
}
