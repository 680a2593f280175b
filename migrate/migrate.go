// Package migrate applies and rolls back schema migrations against a
// MySQL database, recording progress in a ledger table.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/mango-db/mango-go/runtime/client"
)

// ErrNotRegistered marks a ledger row whose migration is missing from
// the engine's registry, so it cannot be rolled back.
var ErrNotRegistered = errors.New("migration not registered")

// Func is one direction of a migration.
type Func func(ctx context.Context, db *client.Client) error

// Migration is a registered schema change. Name must be unique within
// an engine; Timestamp orders migrations and decides rollback order.
type Migration struct {
	Name      string
	Timestamp int64
	Up        Func
	Down      Func
}

// StepError reports a migration whose Up or Down function failed. The
// ledger was not touched for the failed step.
type StepError struct {
	Name      string
	Direction string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration %s: %s failed: %v", e.Name, e.Direction, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// LedgerError reports a failure reading or writing the migration
// ledger itself.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("migration ledger: %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
