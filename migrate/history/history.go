// Package history stores migration state in a ledger table.
package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/mango-db/mango-go/runtime/client"
	"github.com/mango-db/mango-go/schema"
)

// DefaultTable is the ledger table name used when none is configured.
const DefaultTable = "mango_migrations"

// mysqlTableExists is the server error for CREATE TABLE against an
// existing table. Two processes racing to create the ledger both
// succeed.
const mysqlTableExists = 1050

// History is a migration ledger backed by a database table.
type History struct {
	db    *client.Client
	table string
}

// New creates a ledger over the given table. An empty table name
// selects DefaultTable.
func New(db *client.Client, table string) *History {
	if table == "" {
		table = DefaultTable
	}
	return &History{db: db, table: table}
}

// Table returns the ledger table name.
func (h *History) Table() string {
	return h.table
}

// Schema returns the ledger table declaration used for statement
// validation.
func (h *History) Schema() client.TableSchema {
	return client.TableSchema{
		Name:    h.table,
		Columns: []string{"id", "name", "timestamp", "executed_at"},
	}
}

// Blueprint returns the ledger table definition.
func (h *History) Blueprint() *schema.Blueprint {
	b := schema.NewBlueprint(h.table)
	b.ID()
	b.String("name").Unique()
	b.BigInteger("timestamp")
	b.BigInteger("executed_at")
	return b
}

// Init creates the ledger table if it does not exist. A concurrent
// create losing the race is treated as success.
func (h *History) Init(ctx context.Context) error {
	if err := h.db.RegisterTable(h.Schema()); err != nil {
		return err
	}

	exists, err := h.db.HasTable(ctx, h.table)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	ddl, err := schema.CreateSQL(h.Blueprint())
	if err != nil {
		return err
	}
	if _, err := h.db.Exec(ctx, ddl); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlTableExists {
			return nil
		}
		return err
	}
	return nil
}

// Executed returns applied migration names mapped to the unix time
// they were applied.
func (h *History) Executed(ctx context.Context) (map[string]int64, error) {
	rows, err := h.db.Table(h.table).
		Select("name", "executed_at").
		OrderBy("timestamp").
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]int64, len(rows))
	for _, row := range rows {
		name, ok := row["name"].(string)
		if !ok {
			return nil, fmt.Errorf("ledger row has non-string name: %v", row["name"])
		}
		applied[name] = toInt64(row["executed_at"])
	}
	return applied, nil
}

// Entry is one ledger row.
type Entry struct {
	Name       string
	Timestamp  int64
	ExecutedAt int64
}

// Entries returns every ledger row in timestamp order.
func (h *History) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := h.db.Table(h.table).
		Select("name", "timestamp", "executed_at").
		OrderBy("timestamp").
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		name, ok := row["name"].(string)
		if !ok {
			return nil, fmt.Errorf("ledger row has non-string name: %v", row["name"])
		}
		entries = append(entries, Entry{
			Name:       name,
			Timestamp:  toInt64(row["timestamp"]),
			ExecutedAt: toInt64(row["executed_at"]),
		})
	}
	return entries, nil
}

// Record marks a migration as applied at the current time.
func (h *History) Record(ctx context.Context, name string, timestamp int64) error {
	_, err := h.db.Table(h.table).
		InsertOne(map[string]interface{}{
			"name":        name,
			"timestamp":   timestamp,
			"executed_at": time.Now().Unix(),
		}).
		Execute(ctx)
	return err
}

// Remove unmarks a rolled-back migration.
func (h *History) Remove(ctx context.Context, name string) error {
	_, err := h.db.Table(h.table).
		Delete().
		Where("name", "=", name).
		Execute(ctx)
	return err
}

// toInt64 normalizes the driver's integer representations. The MySQL
// text protocol hands integers back as strings.
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
