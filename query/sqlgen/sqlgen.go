// Package sqlgen generates parameterized MySQL statements.
package sqlgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Query represents a SQL statement with its bound arguments.
type Query struct {
	SQL  string
	Args []interface{}
}

// Generator generates MySQL SQL.
type Generator struct{}

// NewGenerator creates a new MySQL SQL generator.
func NewGenerator() *Generator {
	return &Generator{}
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// QuoteIdentifier wraps a table or column name in backticks. Names
// outside the safe pattern are rejected so identifiers can never
// carry injected SQL; values always travel through placeholders.
func QuoteIdentifier(name string) (string, error) {
	if name == "*" {
		return name, nil
	}
	if strings.Contains(name, ".") {
		parts := strings.SplitN(name, ".", 2)
		table, err := QuoteIdentifier(parts[0])
		if err != nil {
			return "", err
		}
		column, err := QuoteIdentifier(parts[1])
		if err != nil {
			return "", err
		}
		return table + "." + column, nil
	}
	if !identifierPattern.MatchString(name) {
		return "", &ValidationError{Field: name, Reason: "unsafe identifier"}
	}
	return "`" + name + "`", nil
}

// GenerateSelect builds a SELECT statement.
func (g *Generator) GenerateSelect(table string, columns []string, where []Condition, orderBy []OrderBy, limit, offset int) (*Query, error) {
	quotedTable, err := QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, col := range columns {
			if quoted[i], err = QuoteIdentifier(col); err != nil {
				return nil, err
			}
		}
		cols = strings.Join(quoted, ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", cols, quotedTable)
	var args []interface{}

	whereSQL, whereArgs, err := g.buildWhere(where)
	if err != nil {
		return nil, err
	}
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
		args = append(args, whereArgs...)
	}

	if len(orderBy) > 0 {
		orderParts := make([]string, len(orderBy))
		for i, ob := range orderBy {
			quotedCol, err := QuoteIdentifier(ob.Field)
			if err != nil {
				return nil, err
			}
			direction := "ASC"
			if strings.EqualFold(ob.Direction, "DESC") {
				direction = "DESC"
			}
			orderParts[i] = quotedCol + " " + direction
		}
		sql += " ORDER BY " + strings.Join(orderParts, ", ")
	}

	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		if limit <= 0 {
			// MySQL requires LIMIT when using OFFSET.
			sql += " LIMIT 18446744073709551615"
		}
		sql += fmt.Sprintf(" OFFSET %d", offset)
	}

	return &Query{SQL: sql, Args: args}, nil
}

// GenerateInsert builds a single-row INSERT statement. The column
// order is normalized so the same row data always produces the same
// SQL text.
func (g *Generator) GenerateInsert(table string, row map[string]interface{}) (*Query, error) {
	if len(row) == 0 {
		return nil, &ValidationError{Reason: "insert requires at least one column"}
	}
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	values := make([]interface{}, len(columns))
	for i, col := range columns {
		values[i] = row[col]
	}
	return g.GenerateInsertMany(table, columns, [][]interface{}{values})
}

// GenerateInsertMany builds a multi-row INSERT statement. Every row
// must carry exactly one value per column.
func (g *Generator) GenerateInsertMany(table string, columns []string, rows [][]interface{}) (*Query, error) {
	quotedTable, err := QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, &ValidationError{Reason: "insert requires at least one column"}
	}
	if len(rows) == 0 {
		return nil, &ValidationError{Reason: "insert requires at least one row"}
	}

	quotedCols := make([]string, len(columns))
	for i, col := range columns {
		if quotedCols[i], err = QuoteIdentifier(col); err != nil {
			return nil, err
		}
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	tuples := make([]string, len(rows))
	var args []interface{}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(columns)),
			}
		}
		tuples[i] = placeholders
		args = append(args, row...)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quotedTable,
		strings.Join(quotedCols, ", "),
		strings.Join(tuples, ", "),
	)
	return &Query{SQL: sql, Args: args}, nil
}

// GenerateUpdate builds an UPDATE statement.
func (g *Generator) GenerateUpdate(table string, set map[string]interface{}, where []Condition) (*Query, error) {
	quotedTable, err := QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, &ValidationError{Reason: "update requires at least one column"}
	}

	columns := make([]string, 0, len(set))
	for col := range set {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	setParts := make([]string, len(columns))
	args := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		quotedCol, err := QuoteIdentifier(col)
		if err != nil {
			return nil, err
		}
		setParts[i] = quotedCol + " = ?"
		args = append(args, set[col])
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", quotedTable, strings.Join(setParts, ", "))

	whereSQL, whereArgs, err := g.buildWhere(where)
	if err != nil {
		return nil, err
	}
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
		args = append(args, whereArgs...)
	}
	return &Query{SQL: sql, Args: args}, nil
}

// GenerateDelete builds a DELETE statement.
func (g *Generator) GenerateDelete(table string, where []Condition) (*Query, error) {
	quotedTable, err := QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	sql := "DELETE FROM " + quotedTable

	whereSQL, whereArgs, err := g.buildWhere(where)
	if err != nil {
		return nil, err
	}
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
	}
	return &Query{SQL: sql, Args: whereArgs}, nil
}

func (g *Generator) buildWhere(where []Condition) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	var sb strings.Builder
	var args []interface{}
	for i, cond := range where {
		op, err := ValidateOperator(cond.Operator)
		if err != nil {
			return "", nil, err
		}
		quotedCol, err := QuoteIdentifier(cond.Field)
		if err != nil {
			return "", nil, err
		}

		if i > 0 {
			connector := "AND"
			if strings.EqualFold(cond.Connector, "OR") {
				connector = "OR"
			}
			sb.WriteString(" " + connector + " ")
		}

		switch op {
		case "IN", "NOT IN":
			values, ok := cond.Value.([]interface{})
			if !ok || len(values) == 0 {
				return "", nil, &ValidationError{
					Field:  cond.Field,
					Reason: op + " requires a non-empty value list",
				}
			}
			placeholders := make([]string, len(values))
			for j := range values {
				placeholders[j] = "?"
			}
			fmt.Fprintf(&sb, "%s %s (%s)", quotedCol, op, strings.Join(placeholders, ", "))
			args = append(args, values...)
		case "IS", "IS NOT":
			if cond.Value == nil {
				fmt.Fprintf(&sb, "%s %s NULL", quotedCol, op)
			} else {
				fmt.Fprintf(&sb, "%s %s ?", quotedCol, op)
				args = append(args, cond.Value)
			}
		default:
			fmt.Fprintf(&sb, "%s %s ?", quotedCol, op)
			args = append(args, cond.Value)
		}
	}
	return sb.String(), args, nil
}
