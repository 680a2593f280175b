package client

import (
	"sort"
	"sync"

	"github.com/mango-db/mango-go/query/sqlgen"
)

// TableSchema declares a table and the columns statements may touch.
type TableSchema struct {
	Name    string
	Columns []string
}

// Registry holds the table schemas known to one client. Statements
// are validated against it before they reach the database.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*tableEntry
}

type tableEntry struct {
	schema  TableSchema
	columns map[string]bool
}

// NewRegistry creates an empty table registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*tableEntry)}
}

// Register adds a table schema. Registering the same table again
// replaces the previous schema.
func (r *Registry) Register(schema TableSchema) error {
	if schema.Name == "" {
		return &sqlgen.ValidationError{Reason: "table name required"}
	}
	if len(schema.Columns) == 0 {
		return &sqlgen.ValidationError{Field: schema.Name, Reason: "table requires at least one column"}
	}
	columns := make(map[string]bool, len(schema.Columns))
	for _, col := range schema.Columns {
		columns[col] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[schema.Name] = &tableEntry{schema: schema, columns: columns}
	return nil
}

// Lookup returns the schema for a registered table.
func (r *Registry) Lookup(table string) (TableSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.tables[table]
	if !ok {
		return TableSchema{}, false
	}
	return entry.schema, true
}

// HasColumn reports whether a registered table declares the column.
func (r *Registry) HasColumn(table, column string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.tables[table]
	return ok && entry.columns[column]
}

// Names returns the registered table names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
