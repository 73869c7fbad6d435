package policy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDenied is returned when a DDL target is outside the configured policy.
var ErrDenied = errors.New("statistics DDL not allowed by policy")

// Policy restricts which relations statistics DDL may target. An empty
// AllowSchemas list means every schema is allowed; DenyTables entries are
// "schema.table" and always win.
type Policy struct {
	AllowSchemas []string `yaml:"allow_schemas"`
	DenyTables   []string `yaml:"deny_tables"`
}

// LoadFromFile reads a YAML policy file and returns a validated Policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	var pol Policy
	if err := yaml.Unmarshal(data, &pol); err != nil {
		return nil, fmt.Errorf("parsing policy YAML: %w", err)
	}

	if err := validate(&pol); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}

	return &pol, nil
}

func validate(pol *Policy) error {
	for _, s := range pol.AllowSchemas {
		if s == "" {
			return fmt.Errorf("allow_schemas contains an empty entry")
		}
	}
	for _, t := range pol.DenyTables {
		if !strings.Contains(t, ".") {
			return fmt.Errorf("deny_tables entry %q must be schema-qualified", t)
		}
	}
	return nil
}

// AllowsTable reports whether statistics DDL may target schema.table.
func (p *Policy) AllowsTable(schema, table string) bool {
	qualified := schema + "." + table
	for _, t := range p.DenyTables {
		if t == qualified {
			return false
		}
	}
	if len(p.AllowSchemas) == 0 {
		return true
	}
	for _, s := range p.AllowSchemas {
		if s == schema {
			return true
		}
	}
	return false
}
