// Package client provides the runtime database client.
package client

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/mango-db/mango-go/internal/debug"
	"github.com/mango-db/mango-go/query/sqlgen"
	"github.com/mango-db/mango-go/schema"
)

// Client is the main database client. It owns the connection pool,
// the table registry, and the SQL generator.
type Client struct {
	db       *sql.DB
	registry *Registry
	gen      *sqlgen.Generator
}

// New creates a client for the given MySQL DSN. The connection is not
// established until Connect.
func New(dsn string) (*Client, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, &ConnectivityError{Op: "open", Err: err}
	}
	return NewFromDB(db), nil
}

// NewFromDB creates a client over an existing connection pool.
func NewFromDB(db *sql.DB) *Client {
	return &Client{
		db:       db,
		registry: NewRegistry(),
		gen:      sqlgen.NewGenerator(),
	}
}

// Connect verifies the database is reachable.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return &ConnectivityError{Op: "ping", Err: err}
	}
	return nil
}

// Disconnect closes the connection pool.
func (c *Client) Disconnect() error {
	if err := c.db.Close(); err != nil {
		return &ConnectivityError{Op: "close", Err: err}
	}
	return nil
}

// DB returns the underlying connection pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Registry returns the client's table registry.
func (c *Client) Registry() *Registry {
	return c.registry
}

// RegisterTable declares a table and its columns to this client.
func (c *Client) RegisterTable(ts TableSchema) error {
	return c.registry.Register(ts)
}

// Table returns a statement handle for a registered table. Using a
// table that was never registered surfaces a validation error when
// the statement is executed.
func (c *Client) Table(name string) *Table {
	return newTable(c, name)
}

// Query runs a raw SELECT and returns the rows as generic maps.
func (c *Client) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	debug.Debug("query", "sql", query)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// Exec runs a raw statement and returns the number of affected rows.
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	debug.Debug("exec", "sql", query)
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// HasTable reports whether a table exists in the connected schema.
func (c *Client) HasTable(ctx context.Context, table string) (bool, error) {
	const query = `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?`
	var count int
	if err := c.db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, &ConnectivityError{Op: "has table", Err: err}
	}
	return count > 0, nil
}

// CreateTable compiles a blueprint and creates the table. The new
// table is registered with the client so handles can validate
// against it.
func (c *Client) CreateTable(ctx context.Context, b *schema.Blueprint) error {
	ddl, err := schema.CreateSQL(b)
	if err != nil {
		return err
	}
	debug.Debug("create table", "table", b.Table())
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	columns := make([]string, 0, len(b.Columns()))
	for _, col := range b.Columns() {
		columns = append(columns, col.Name)
	}
	return c.registry.Register(TableSchema{Name: b.Table(), Columns: columns})
}

// AddColumn adds a column to an existing table and updates the
// registered schema.
func (c *Client) AddColumn(ctx context.Context, table string, col *schema.Column) error {
	ddl, err := schema.AddColumnSQL(table, col)
	if err != nil {
		return err
	}
	debug.Debug("add column", "table", table, "column", col.Name)
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	if ts, ok := c.registry.Lookup(table); ok {
		ts.Columns = append(ts.Columns, col.Name)
		return c.registry.Register(ts)
	}
	return nil
}

// DropColumn removes a column from an existing table and updates the
// registered schema.
func (c *Client) DropColumn(ctx context.Context, table, column string) error {
	ddl, err := schema.DropColumnSQL(table, column)
	if err != nil {
		return err
	}
	debug.Debug("drop column", "table", table, "column", column)
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	if ts, ok := c.registry.Lookup(table); ok {
		kept := ts.Columns[:0:0]
		for _, name := range ts.Columns {
			if name != column {
				kept = append(kept, name)
			}
		}
		ts.Columns = kept
		return c.registry.Register(ts)
	}
	return nil
}

// DropTable drops a table if it exists.
func (c *Client) DropTable(ctx context.Context, table string) error {
	ddl, err := schema.DropSQL(table)
	if err != nil {
		return err
	}
	debug.Debug("drop table", "table", table)
	_, err = c.db.ExecContext(ctx, ddl)
	return err
}

// DiscoverTables loads table and column names from
// information_schema and registers them all with the client.
func (c *Client) DiscoverTables(ctx context.Context) error {
	const query = `SELECT table_name, column_name FROM information_schema.columns
		WHERE table_schema = DATABASE() ORDER BY table_name, ordinal_position`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return &ConnectivityError{Op: "discover tables", Err: err}
	}
	defer rows.Close()

	columns := make(map[string][]string)
	var order []string
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return &ConnectivityError{Op: "discover tables", Err: err}
		}
		if _, seen := columns[table]; !seen {
			order = append(order, table)
		}
		columns[table] = append(columns[table], column)
	}
	if err := rows.Err(); err != nil {
		return &ConnectivityError{Op: "discover tables", Err: err}
	}

	for _, table := range order {
		if err := c.registry.Register(TableSchema{Name: table, Columns: columns[table]}); err != nil {
			return err
		}
	}
	debug.Debug("discovered tables", "count", len(order))
	return nil
}
