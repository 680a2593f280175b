// Package builder provides a fluent statement builder API.
//
// A Builder is single-owner mutable state scoped to one logical
// statement. The owner resets it after each compile so a reused
// builder can never leak clauses into the next statement.
package builder

import (
	"github.com/mango-db/mango-go/query/sqlgen"
)

// Kind identifies the statement a builder will compile to.
type Kind int

const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
)

// Builder accumulates the parts of a single SQL statement.
type Builder struct {
	kind    Kind
	table   string
	columns []string
	wheres  []sqlgen.Condition
	orders  []sqlgen.OrderBy
	limit   int
	offset  int

	insertColumns []string
	insertRows    [][]interface{}
	updateSet     map[string]interface{}

	// err holds the first chaining error; compile surfaces it before
	// any SQL is generated.
	err error
}

// New creates a builder bound to a table.
func New(table string) *Builder {
	return &Builder{table: table}
}

// Fail records a chaining error. The first recorded error wins and is
// returned from ToSQL instead of a statement.
func (b *Builder) Fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first chaining error, if any.
func (b *Builder) Err() error {
	return b.err
}

// Select sets the columns to select. No columns means SELECT *.
func (b *Builder) Select(columns ...string) *Builder {
	b.kind = KindSelect
	b.columns = columns
	return b
}

// Where adds an AND condition.
func (b *Builder) Where(field, operator string, value interface{}) *Builder {
	b.wheres = append(b.wheres, sqlgen.Condition{
		Field:     field,
		Operator:  operator,
		Value:     value,
		Connector: "AND",
	})
	return b
}

// OrWhere adds an OR condition.
func (b *Builder) OrWhere(field, operator string, value interface{}) *Builder {
	b.wheres = append(b.wheres, sqlgen.Condition{
		Field:     field,
		Operator:  operator,
		Value:     value,
		Connector: "OR",
	})
	return b
}

// WhereIn adds an IN condition over a value list.
func (b *Builder) WhereIn(field string, values []interface{}) *Builder {
	b.wheres = append(b.wheres, sqlgen.Condition{
		Field:     field,
		Operator:  "IN",
		Value:     values,
		Connector: "AND",
	})
	return b
}

// WhereNotIn adds a NOT IN condition over a value list.
func (b *Builder) WhereNotIn(field string, values []interface{}) *Builder {
	b.wheres = append(b.wheres, sqlgen.Condition{
		Field:     field,
		Operator:  "NOT IN",
		Value:     values,
		Connector: "AND",
	})
	return b
}

// OrderBy adds an ascending ORDER BY clause. Sort flips its
// direction.
func (b *Builder) OrderBy(field string) *Builder {
	b.orders = append(b.orders, sqlgen.OrderBy{Field: field, Direction: "ASC"})
	return b
}

// Sort sets the direction of the most recent OrderBy clause.
func (b *Builder) Sort(direction string) *Builder {
	if len(b.orders) > 0 {
		b.orders[len(b.orders)-1].Direction = direction
	}
	return b
}

// Limit caps the number of returned rows.
func (b *Builder) Limit(limit int) *Builder {
	b.limit = limit
	return b
}

// Offset skips rows for pagination.
func (b *Builder) Offset(offset int) *Builder {
	b.offset = offset
	return b
}

// InsertOne stages a single-row insert.
func (b *Builder) InsertOne(row map[string]interface{}) *Builder {
	b.kind = KindInsert
	b.insertColumns = nil
	b.insertRows = nil
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	// One row keeps map form; the generator normalizes column order.
	b.updateSet = row
	b.columns = columns
	return b
}

// InsertMany stages a multi-row insert with an explicit column order.
func (b *Builder) InsertMany(columns []string, rows [][]interface{}) *Builder {
	b.kind = KindInsert
	b.updateSet = nil
	b.insertColumns = columns
	b.insertRows = rows
	b.columns = columns
	return b
}

// Update stages an update of the given columns.
func (b *Builder) Update(set map[string]interface{}) *Builder {
	b.kind = KindUpdate
	b.updateSet = set
	columns := make([]string, 0, len(set))
	for col := range set {
		columns = append(columns, col)
	}
	b.columns = columns
	return b
}

// Delete stages a delete.
func (b *Builder) Delete() *Builder {
	b.kind = KindDelete
	return b
}

// Kind returns the staged statement kind.
func (b *Builder) Kind() Kind {
	return b.kind
}

// Columns returns the column names the staged statement references.
func (b *Builder) Columns() []string {
	return b.columns
}

// WhereFields returns the fields referenced by WHERE conditions.
func (b *Builder) WhereFields() []string {
	fields := make([]string, len(b.wheres))
	for i, cond := range b.wheres {
		fields[i] = cond.Field
	}
	return fields
}

// OrderFields returns the fields referenced by ORDER BY clauses.
func (b *Builder) OrderFields() []string {
	fields := make([]string, len(b.orders))
	for i, ob := range b.orders {
		fields[i] = ob.Field
	}
	return fields
}

// ToSQL compiles the staged statement. A chaining error recorded with
// Fail is returned instead, before any SQL is generated.
func (b *Builder) ToSQL(gen *sqlgen.Generator) (*sqlgen.Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	switch b.kind {
	case KindInsert:
		if b.insertColumns != nil {
			return gen.GenerateInsertMany(b.table, b.insertColumns, b.insertRows)
		}
		return gen.GenerateInsert(b.table, b.updateSet)
	case KindUpdate:
		return gen.GenerateUpdate(b.table, b.updateSet, b.wheres)
	case KindDelete:
		return gen.GenerateDelete(b.table, b.wheres)
	default:
		return gen.GenerateSelect(b.table, b.columns, b.wheres, b.orders, b.limit, b.offset)
	}
}

// Reset clears all staged state so the builder can be reused for the
// next statement.
func (b *Builder) Reset() {
	table := b.table
	*b = Builder{table: table}
}
