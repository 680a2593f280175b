package sqlgen

import (
	"errors"
	"testing"
)

func TestGenerateSelectAll(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", nil, nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM `users`"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
	if len(query.Args) != 0 {
		t.Errorf("expected no args, got %v", query.Args)
	}
}

func TestGenerateSelectColumns(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", []string{"id", "email"}, nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT `id`, `email` FROM `users`"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

func TestGenerateSelectWhereOrderLimit(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect(
		"users",
		[]string{"id"},
		[]Condition{
			{Field: "active", Operator: "=", Value: true},
			{Field: "age", Operator: ">=", Value: 18, Connector: "AND"},
		},
		[]OrderBy{{Field: "email", Direction: "desc"}},
		10, 20,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT `id` FROM `users` WHERE `active` = ? AND `age` >= ? ORDER BY `email` DESC LIMIT 10 OFFSET 20"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
	if len(query.Args) != 2 {
		t.Fatalf("expected 2 args, got %v", query.Args)
	}
}

func TestGenerateSelectOffsetWithoutLimit(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", nil, nil, nil, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM `users` LIMIT 18446744073709551615 OFFSET 5"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

func TestGenerateSelectOrConnector(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", nil, []Condition{
		{Field: "role", Operator: "=", Value: "admin"},
		{Field: "role", Operator: "=", Value: "editor", Connector: "OR"},
	}, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM `users` WHERE `role` = ? OR `role` = ?"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

// Zero values are real values: they must travel to the database as
// parameters, never be silently dropped.
func TestFalsyValuesBecomeParameters(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", nil, []Condition{
		{Field: "age", Operator: "=", Value: 0},
		{Field: "name", Operator: "=", Value: "", Connector: "AND"},
		{Field: "active", Operator: "=", Value: false, Connector: "AND"},
	}, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(query.Args) != 3 {
		t.Fatalf("expected 3 args, got %v", query.Args)
	}
	if query.Args[0] != 0 || query.Args[1] != "" || query.Args[2] != false {
		t.Errorf("falsy values altered: %v", query.Args)
	}
}

func TestGenerateInsertSortsColumns(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateInsert("users", map[string]interface{}{
		"name":  "Amy",
		"email": "amy@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "INSERT INTO `users` (`email`, `name`) VALUES (?, ?)"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
	if query.Args[0] != "amy@example.com" || query.Args[1] != "Amy" {
		t.Errorf("args out of order: %v", query.Args)
	}
}

func TestGenerateInsertEmptyRow(t *testing.T) {
	gen := NewGenerator()
	if _, err := gen.GenerateInsert("users", nil); err == nil {
		t.Fatal("expected error for empty row")
	}
}

func TestGenerateInsertMany(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateInsertMany("users",
		[]string{"email", "name"},
		[][]interface{}{
			{"amy@example.com", "Amy"},
			{"ben@example.com", "Ben"},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "INSERT INTO `users` (`email`, `name`) VALUES (?, ?), (?, ?)"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
	if len(query.Args) != 4 {
		t.Errorf("expected 4 args, got %v", query.Args)
	}
}

func TestGenerateInsertManyRowLengthMismatch(t *testing.T) {
	gen := NewGenerator()
	_, err := gen.GenerateInsertMany("users",
		[]string{"email", "name"},
		[][]interface{}{
			{"amy@example.com", "Amy"},
			{"ben@example.com"},
		},
	)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGenerateUpdate(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateUpdate("users",
		map[string]interface{}{"name": "Amy", "active": false},
		[]Condition{{Field: "id", Operator: "=", Value: 7}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "UPDATE `users` SET `active` = ?, `name` = ? WHERE `id` = ?"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
	if len(query.Args) != 3 {
		t.Errorf("expected 3 args, got %v", query.Args)
	}
}

func TestGenerateDelete(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateDelete("sessions", []Condition{
		{Field: "expired", Operator: "=", Value: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "DELETE FROM `sessions` WHERE `expired` = ?"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

func TestWhereIn(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", nil, []Condition{
		{Field: "id", Operator: "IN", Value: []interface{}{1, 2, 3}},
	}, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM `users` WHERE `id` IN (?, ?, ?)"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

func TestWhereInEmptyList(t *testing.T) {
	gen := NewGenerator()
	_, err := gen.GenerateSelect("users", nil, []Condition{
		{Field: "id", Operator: "IN", Value: []interface{}{}},
	}, nil, 0, 0)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestWhereIsNull(t *testing.T) {
	gen := NewGenerator()
	query, err := gen.GenerateSelect("users", nil, []Condition{
		{Field: "deleted_at", Operator: "IS", Value: nil},
		{Field: "banned_at", Operator: "IS NOT", Value: nil, Connector: "AND"},
	}, nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM `users` WHERE `deleted_at` IS NULL AND `banned_at` IS NOT NULL"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
	if len(query.Args) != 0 {
		t.Errorf("expected no args, got %v", query.Args)
	}
}

func TestValidateOperator(t *testing.T) {
	for _, op := range []string{"=", "!=", "<>", "<", ">", "<=", ">=", "LIKE", "NOT LIKE", "IN", "NOT IN", "IS", "IS NOT"} {
		if _, err := ValidateOperator(op); err != nil {
			t.Errorf("operator %q rejected: %v", op, err)
		}
	}
	if got, _ := ValidateOperator("  like "); got != "LIKE" {
		t.Errorf("expected normalization to LIKE, got %q", got)
	}
	for _, op := range []string{"BETWEEN", "REGEXP", "; DROP TABLE users", ""} {
		if _, err := ValidateOperator(op); err == nil {
			t.Errorf("operator %q accepted", op)
		}
	}
}

func TestQuoteIdentifier(t *testing.T) {
	got, err := QuoteIdentifier("users")
	if err != nil || got != "`users`" {
		t.Errorf("got %q, %v", got, err)
	}
	got, err = QuoteIdentifier("users.id")
	if err != nil || got != "`users`.`id`" {
		t.Errorf("got %q, %v", got, err)
	}
	if got, _ := QuoteIdentifier("*"); got != "*" {
		t.Errorf("star not passed through: %q", got)
	}
	for _, name := range []string{"users; DROP TABLE x", "a`b", "name-with-dash", " "} {
		if _, err := QuoteIdentifier(name); err == nil {
			t.Errorf("identifier %q accepted", name)
		}
	}
}
