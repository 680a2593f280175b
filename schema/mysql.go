package schema

import (
	"fmt"
	"strings"

	"github.com/mango-db/mango-go/query/sqlgen"
)

// CreateSQL compiles a blueprint into a CREATE TABLE statement.
func CreateSQL(b *Blueprint) (string, error) {
	quotedTable, err := sqlgen.QuoteIdentifier(b.table)
	if err != nil {
		return "", err
	}
	if len(b.columns) == 0 {
		return "", &sqlgen.ValidationError{Field: b.table, Reason: "table requires at least one column"}
	}

	var defs []string
	var primaries []string
	for _, col := range b.columns {
		def, err := columnSQL(col)
		if err != nil {
			return "", err
		}
		defs = append(defs, def)
		if col.primary {
			quoted, _ := sqlgen.QuoteIdentifier(col.Name)
			primaries = append(primaries, quoted)
		}
	}
	if len(primaries) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaries, ", ")))
	}

	for _, idx := range b.indexes {
		def, err := indexSQL(idx)
		if err != nil {
			return "", err
		}
		defs = append(defs, def)
	}
	for _, fk := range b.foreignKeys {
		def, err := foreignKeySQL(b.table, fk)
		if err != nil {
			return "", err
		}
		defs = append(defs, def)
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		quotedTable,
		strings.Join(defs, ",\n  "),
	), nil
}

// AddColumnSQL compiles a column definition into an ALTER TABLE ADD
// COLUMN statement.
func AddColumnSQL(table string, col *Column) (string, error) {
	quotedTable, err := sqlgen.QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	def, err := columnSQL(col)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quotedTable, def), nil
}

// DropColumnSQL compiles an ALTER TABLE DROP COLUMN statement.
func DropColumnSQL(table, column string) (string, error) {
	quotedTable, err := sqlgen.QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	quotedCol, err := sqlgen.QuoteIdentifier(column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quotedTable, quotedCol), nil
}

// DropSQL compiles a DROP TABLE IF EXISTS statement.
func DropSQL(table string) (string, error) {
	quotedTable, err := sqlgen.QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	return "DROP TABLE IF EXISTS " + quotedTable, nil
}

func columnSQL(col *Column) (string, error) {
	quoted, err := sqlgen.QuoteIdentifier(col.Name)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(quoted)
	sb.WriteString(" ")
	sb.WriteString(typeSQL(col))

	if col.unsigned {
		sb.WriteString(" UNSIGNED")
	}
	if col.nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if col.hasDefault {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(defaultSQL(col.defaultValue))
	}
	if col.autoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if col.unique {
		sb.WriteString(" UNIQUE")
	}
	return sb.String(), nil
}

func typeSQL(col *Column) string {
	switch col.Type {
	case "VARCHAR":
		return fmt.Sprintf("VARCHAR(%d)", col.Length)
	case "TINYINT":
		return fmt.Sprintf("TINYINT(%d)", col.Length)
	case "DECIMAL":
		return fmt.Sprintf("DECIMAL(%d, %d)", col.Length, col.Scale)
	default:
		return col.Type
	}
}

func defaultSQL(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func indexSQL(idx Index) (string, error) {
	quotedCols := make([]string, len(idx.Columns))
	for i, col := range idx.Columns {
		quoted, err := sqlgen.QuoteIdentifier(col)
		if err != nil {
			return "", err
		}
		quotedCols[i] = quoted
	}
	name, err := sqlgen.QuoteIdentifier(idx.Name)
	if err != nil {
		return "", err
	}
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("%s %s (%s)", kind, name, strings.Join(quotedCols, ", ")), nil
}

func foreignKeySQL(table string, fk *ForeignKey) (string, error) {
	if fk.RefTable == "" || fk.RefColumn == "" {
		return "", &sqlgen.ValidationError{Field: fk.Column, Reason: "incomplete foreign key"}
	}
	quotedCol, err := sqlgen.QuoteIdentifier(fk.Column)
	if err != nil {
		return "", err
	}
	quotedRefTable, err := sqlgen.QuoteIdentifier(fk.RefTable)
	if err != nil {
		return "", err
	}
	quotedRefCol, err := sqlgen.QuoteIdentifier(fk.RefColumn)
	if err != nil {
		return "", err
	}
	name, err := sqlgen.QuoteIdentifier(fmt.Sprintf("fk_%s_%s", table, fk.Column))
	if err != nil {
		return "", err
	}

	sql := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		name, quotedCol, quotedRefTable, quotedRefCol)
	if fk.OnDelete != "" {
		sql += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		sql += " ON UPDATE " + fk.OnUpdate
	}
	return sql, nil
}
