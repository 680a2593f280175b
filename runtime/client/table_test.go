package client

import (
	"context"
	"errors"
	"testing"

	"github.com/mango-db/mango-go/query/sqlgen"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewFromDB(nil)
	err := c.RegisterTable(TableSchema{
		Name:    "users",
		Columns: []string{"id", "email", "name", "active"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return c
}

func TestTableSelectCompiles(t *testing.T) {
	c := newTestClient(t)
	query, err := c.Table("users").
		Select("id", "email").
		Where("active", "=", true).
		OrderBy("email").Sort("DESC").
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT `id`, `email` FROM `users` WHERE `active` = ? ORDER BY `email` DESC"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

func TestUnknownColumnFailsBeforeDatabase(t *testing.T) {
	c := newTestClient(t)
	// The client has no real connection; reaching the database would
	// panic. A poisoned statement must return before that.
	_, err := c.Table("users").
		Select("id", "password").
		Execute(context.Background())
	var verr *sqlgen.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "password" {
		t.Errorf("wrong field: %q", verr.Field)
	}
}

func TestUnknownColumnInWhere(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Table("users").
		SelectAll().
		Where("passwd", "=", "x").
		Execute(context.Background())
	var verr *sqlgen.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUnregisteredTableFails(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Table("ghosts").SelectAll().Execute(context.Background())
	var verr *sqlgen.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "ghosts" {
		t.Errorf("wrong field: %q", verr.Field)
	}
}

func TestBadOperatorFails(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Table("users").
		SelectAll().
		Where("email", "MATCHES", "x").
		Execute(context.Background())
	var verr *sqlgen.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestInsertManyUnknownColumn(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Table("users").
		InsertMany([]string{"email", "hobby"}, [][]interface{}{{"a@b.c", "chess"}}).
		Execute(context.Background())
	var verr *sqlgen.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestHandleResetsAfterFailedExecute(t *testing.T) {
	c := newTestClient(t)
	handle := c.Table("users")

	if _, err := handle.Select("nope").Execute(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}

	// The failure must not poison the next statement.
	query, err := handle.Select("id").ToSQL()
	if err != nil {
		t.Fatalf("handle still poisoned: %v", err)
	}
	if query.SQL != "SELECT `id` FROM `users`" {
		t.Errorf("stale state leaked: %q", query.SQL)
	}
}

func TestUnregisteredHandleStaysPoisonedAfterExecute(t *testing.T) {
	c := newTestClient(t)
	handle := c.Table("ghosts")
	if _, err := handle.SelectAll().Execute(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := handle.SelectAll().Execute(context.Background()); err == nil {
		t.Fatal("second statement must fail too, table is still unknown")
	}
}

func TestWhereInCompiles(t *testing.T) {
	c := newTestClient(t)
	query, err := c.Table("users").
		SelectAll().
		WhereIn("id", []interface{}{1, 2, 3}).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM `users` WHERE `id` IN (?, ?, ?)"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}

func TestDeleteCompiles(t *testing.T) {
	c := newTestClient(t)
	query, err := c.Table("users").
		Delete().
		Where("active", "=", false).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "DELETE FROM `users` WHERE `active` = ?"
	if query.SQL != want {
		t.Errorf("got %q, want %q", query.SQL, want)
	}
}
