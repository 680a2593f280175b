// Package schema defines tables as code. A Blueprint collects column
// and index definitions and compiles them to MySQL DDL.
package schema

// Column is a single column definition under construction. Modifier
// methods return the column so definitions chain.
type Column struct {
	Name          string
	Type          string
	Length        int
	Scale         int
	nullable      bool
	unsigned      bool
	unique        bool
	autoIncrement bool
	primary       bool
	hasDefault    bool
	defaultValue  interface{}
}

// Nullable allows NULL values.
func (c *Column) Nullable() *Column {
	c.nullable = true
	return c
}

// Unsigned marks an integer column unsigned.
func (c *Column) Unsigned() *Column {
	c.unsigned = true
	return c
}

// Unique adds a unique constraint on the column.
func (c *Column) Unique() *Column {
	c.unique = true
	return c
}

// Default sets the column default.
func (c *Column) Default(value interface{}) *Column {
	c.hasDefault = true
	c.defaultValue = value
	return c
}

// AutoIncrement marks the column auto-incrementing.
func (c *Column) AutoIncrement() *Column {
	c.autoIncrement = true
	return c
}

// Primary marks the column as the primary key.
func (c *Column) Primary() *Column {
	c.primary = true
	return c
}

// ForeignKey describes a foreign-key constraint.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string
	OnUpdate  string
}

// References names the referenced column.
func (f *ForeignKey) References(column string) *ForeignKey {
	f.RefColumn = column
	return f
}

// On names the referenced table.
func (f *ForeignKey) On(table string) *ForeignKey {
	f.RefTable = table
	return f
}

// CascadeOnDelete deletes child rows with the parent.
func (f *ForeignKey) CascadeOnDelete() *ForeignKey {
	f.OnDelete = "CASCADE"
	return f
}

// NullOnDelete sets the column NULL when the parent is deleted.
func (f *ForeignKey) NullOnDelete() *ForeignKey {
	f.OnDelete = "SET NULL"
	return f
}

// CascadeOnUpdate propagates key updates to child rows.
func (f *ForeignKey) CascadeOnUpdate() *ForeignKey {
	f.OnUpdate = "CASCADE"
	return f
}

// Index describes a plain or unique index over one or more columns.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Blueprint accumulates the definition of one table.
type Blueprint struct {
	table       string
	columns     []*Column
	indexes     []Index
	foreignKeys []*ForeignKey
}

// NewBlueprint starts a blueprint for the named table.
func NewBlueprint(table string) *Blueprint {
	return &Blueprint{table: table}
}

// Table returns the table name the blueprint defines.
func (b *Blueprint) Table() string {
	return b.table
}

// Columns returns the column definitions in declaration order.
func (b *Blueprint) Columns() []*Column {
	return b.columns
}

func (b *Blueprint) addColumn(name, colType string, length int) *Column {
	col := &Column{Name: name, Type: colType, Length: length}
	b.columns = append(b.columns, col)
	return col
}

// ID adds an auto-incrementing unsigned BIGINT primary key named "id".
func (b *Blueprint) ID() *Column {
	return b.addColumn("id", "BIGINT", 0).Unsigned().AutoIncrement().Primary()
}

// String adds a VARCHAR(255) column.
func (b *Blueprint) String(name string) *Column {
	return b.addColumn(name, "VARCHAR", 255)
}

// StringLen adds a VARCHAR column with an explicit length.
func (b *Blueprint) StringLen(name string, length int) *Column {
	return b.addColumn(name, "VARCHAR", length)
}

// Text adds a TEXT column.
func (b *Blueprint) Text(name string) *Column {
	return b.addColumn(name, "TEXT", 0)
}

// Integer adds an INT column.
func (b *Blueprint) Integer(name string) *Column {
	return b.addColumn(name, "INT", 0)
}

// BigInteger adds a BIGINT column.
func (b *Blueprint) BigInteger(name string) *Column {
	return b.addColumn(name, "BIGINT", 0)
}

// Boolean adds a TINYINT(1) column.
func (b *Blueprint) Boolean(name string) *Column {
	return b.addColumn(name, "TINYINT", 1)
}

// Decimal adds a DECIMAL(precision, scale) column.
func (b *Blueprint) Decimal(name string, precision, scale int) *Column {
	col := b.addColumn(name, "DECIMAL", precision)
	col.Scale = scale
	return col
}

// Timestamp adds a TIMESTAMP column.
func (b *Blueprint) Timestamp(name string) *Column {
	return b.addColumn(name, "TIMESTAMP", 0)
}

// Timestamps adds nullable created_at and updated_at columns.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Nullable()
	b.Timestamp("updated_at").Nullable()
}

// IndexOn adds a plain index over the given columns.
func (b *Blueprint) IndexOn(name string, columns ...string) {
	b.indexes = append(b.indexes, Index{Name: name, Columns: columns})
}

// UniqueOn adds a unique index over the given columns.
func (b *Blueprint) UniqueOn(name string, columns ...string) {
	b.indexes = append(b.indexes, Index{Name: name, Columns: columns, Unique: true})
}

// Foreign adds a foreign-key constraint for the named column.
// Complete it with References and On:
//
//	t.Foreign("author_id").References("id").On("users")
func (b *Blueprint) Foreign(column string) *ForeignKey {
	fk := &ForeignKey{Column: column}
	b.foreignKeys = append(b.foreignKeys, fk)
	return fk
}
