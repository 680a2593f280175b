package client

import (
	"context"

	"github.com/mango-db/mango-go/query/builder"
	"github.com/mango-db/mango-go/query/sqlgen"
)

// Table is a statement handle for one registered table. Chained
// calls accumulate a single statement; Execute runs it and resets
// the handle for the next one.
//
// Every column reference is checked against the registered schema as
// it is chained. A bad reference poisons the handle: nothing reaches
// the database and the error surfaces from Execute.
type Table struct {
	client *Client
	name   string
	b      *builder.Builder
}

func newTable(c *Client, name string) *Table {
	t := &Table{
		client: c,
		name:   name,
		b:      builder.New(name),
	}
	t.checkRegistered()
	return t
}

func (t *Table) checkRegistered() {
	if _, ok := t.client.registry.Lookup(t.name); !ok {
		t.b.Fail(&sqlgen.ValidationError{Field: t.name, Reason: "table not registered"})
	}
}

func (t *Table) reset() {
	t.b.Reset()
	t.checkRegistered()
}

func (t *Table) checkColumn(column string) {
	if column == "*" {
		return
	}
	if !t.client.registry.HasColumn(t.name, column) {
		t.b.Fail(&sqlgen.ValidationError{Field: column, Reason: "unknown column on table " + t.name})
	}
}

// SelectAll stages SELECT * on the table.
func (t *Table) SelectAll() *Table {
	t.b.Select()
	return t
}

// Select stages a SELECT over the named columns.
func (t *Table) Select(columns ...string) *Table {
	for _, col := range columns {
		t.checkColumn(col)
	}
	t.b.Select(columns...)
	return t
}

// Where adds an AND condition.
func (t *Table) Where(column, operator string, value interface{}) *Table {
	t.checkColumn(column)
	if _, err := sqlgen.ValidateOperator(operator); err != nil {
		t.b.Fail(err)
	}
	t.b.Where(column, operator, value)
	return t
}

// OrWhere adds an OR condition.
func (t *Table) OrWhere(column, operator string, value interface{}) *Table {
	t.checkColumn(column)
	if _, err := sqlgen.ValidateOperator(operator); err != nil {
		t.b.Fail(err)
	}
	t.b.OrWhere(column, operator, value)
	return t
}

// WhereIn adds an IN condition over a value list.
func (t *Table) WhereIn(column string, values []interface{}) *Table {
	t.checkColumn(column)
	t.b.WhereIn(column, values)
	return t
}

// WhereNotIn adds a NOT IN condition over a value list.
func (t *Table) WhereNotIn(column string, values []interface{}) *Table {
	t.checkColumn(column)
	t.b.WhereNotIn(column, values)
	return t
}

// OrderBy adds an ascending ORDER BY clause.
func (t *Table) OrderBy(column string) *Table {
	t.checkColumn(column)
	t.b.OrderBy(column)
	return t
}

// Sort sets the direction of the most recent OrderBy clause.
func (t *Table) Sort(direction string) *Table {
	t.b.Sort(direction)
	return t
}

// Limit caps the number of returned rows.
func (t *Table) Limit(limit int) *Table {
	t.b.Limit(limit)
	return t
}

// Offset skips rows for pagination.
func (t *Table) Offset(offset int) *Table {
	t.b.Offset(offset)
	return t
}

// InsertOne stages an insert of one row.
func (t *Table) InsertOne(row map[string]interface{}) *Table {
	for col := range row {
		t.checkColumn(col)
	}
	t.b.InsertOne(row)
	return t
}

// InsertMany stages an insert of several rows sharing a column list.
func (t *Table) InsertMany(columns []string, rows [][]interface{}) *Table {
	for _, col := range columns {
		t.checkColumn(col)
	}
	t.b.InsertMany(columns, rows)
	return t
}

// Update stages an update of the given columns.
func (t *Table) Update(set map[string]interface{}) *Table {
	for col := range set {
		t.checkColumn(col)
	}
	t.b.Update(set)
	return t
}

// Delete stages a delete.
func (t *Table) Delete() *Table {
	t.b.Delete()
	return t
}

// ToSQL compiles the staged statement without executing it. The
// handle is not reset.
func (t *Table) ToSQL() (*sqlgen.Query, error) {
	return t.b.ToSQL(t.client.gen)
}

// Execute runs the staged statement and resets the handle. Selects
// return the matched rows; writes return nil rows. Validation errors
// recorded while chaining are returned here, before anything reaches
// the database.
func (t *Table) Execute(ctx context.Context) ([]map[string]interface{}, error) {
	query, err := t.b.ToSQL(t.client.gen)
	kind := t.b.Kind()
	t.reset()
	if err != nil {
		return nil, err
	}

	if kind == builder.KindSelect {
		return t.client.Query(ctx, query.SQL, query.Args...)
	}
	if _, err := t.client.Exec(ctx, query.SQL, query.Args...); err != nil {
		return nil, err
	}
	return nil, nil
}

// ExecuteCount runs a staged write statement, resets the handle, and
// returns the number of affected rows.
func (t *Table) ExecuteCount(ctx context.Context) (int64, error) {
	query, err := t.b.ToSQL(t.client.gen)
	t.reset()
	if err != nil {
		return 0, err
	}
	return t.client.Exec(ctx, query.SQL, query.Args...)
}
