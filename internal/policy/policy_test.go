package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writePolicy(t, `
allow_schemas:
  - public
  - app
deny_tables:
  - public.audit_log
`)
	pol, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "app"}, pol.AllowSchemas)
	assert.Equal(t, []string{"public.audit_log"}, pol.DenyTables)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/policy.yaml")
	require.Error(t, err)
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writePolicy(t, "allow_schemas: [unterminated")
	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadFromFile_UnqualifiedDenyTable(t *testing.T) {
	path := writePolicy(t, `
deny_tables:
  - audit_log
`)
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema-qualified")
}

func TestAllowsTable(t *testing.T) {
	pol := &Policy{
		AllowSchemas: []string{"public"},
		DenyTables:   []string{"public.audit_log"},
	}

	assert.True(t, pol.AllowsTable("public", "orders"))
	assert.False(t, pol.AllowsTable("internal", "orders"), "schema not in allow list")
	assert.False(t, pol.AllowsTable("public", "audit_log"), "deny wins over allow")
}

func TestAllowsTable_EmptyAllowMeansAll(t *testing.T) {
	pol := &Policy{DenyTables: []string{"public.audit_log"}}

	assert.True(t, pol.AllowsTable("any_schema", "any_table"))
	assert.False(t, pol.AllowsTable("public", "audit_log"))
}

// --- guarded catalog ---

type stubTx struct {
	port.CatalogTx
	lookedUp []string
}

func (s *stubTx) LookupTable(_ context.Context, schema, name string) (*domain.TableDescriptor, error) {
	s.lookedUp = append(s.lookedUp, schema+"."+name)
	return &domain.TableDescriptor{Schema: schema, Name: name, Kind: domain.RelKindTable}, nil
}

type stubStore struct {
	tx *stubTx
}

func (s *stubStore) WithTx(_ context.Context, fn func(tx port.CatalogTx) error) error {
	return fn(s.tx)
}

func (s *stubStore) ListObjects(context.Context) ([]port.StatisticsObjectInfo, error) {
	return nil, nil
}

func TestGuardedCatalog_BlocksDeniedTable(t *testing.T) {
	store := &stubStore{tx: &stubTx{}}
	pol := &Policy{DenyTables: []string{"public.audit_log"}}
	guarded := NewGuardedCatalog(store, pol)

	err := guarded.WithTx(context.Background(), func(tx port.CatalogTx) error {
		_, err := tx.LookupTable(context.Background(), "public", "audit_log")
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDenied)
	assert.Empty(t, store.tx.lookedUp, "denied lookups must not reach the store")
}

func TestGuardedCatalog_PassesAllowedTable(t *testing.T) {
	store := &stubStore{tx: &stubTx{}}
	pol := &Policy{AllowSchemas: []string{"public"}}
	guarded := NewGuardedCatalog(store, pol)

	err := guarded.WithTx(context.Background(), func(tx port.CatalogTx) error {
		_, err := tx.LookupTable(context.Background(), "public", "orders")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"public.orders"}, store.tx.lookedUp)
}
