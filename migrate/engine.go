package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/mango-db/mango-go/internal/debug"
	"github.com/mango-db/mango-go/migrate/history"
	"github.com/mango-db/mango-go/query/sqlgen"
	"github.com/mango-db/mango-go/runtime/client"
)

// LedgerEntry is one applied migration as the ledger records it.
type LedgerEntry struct {
	Name       string
	Timestamp  int64
	ExecutedAt int64
}

// Ledger records which migrations have been applied. It is backed by
// a database table in production; tests may substitute their own.
type Ledger interface {
	// Init creates the ledger table if it does not exist yet. Safe to
	// call repeatedly and from concurrent processes.
	Init(ctx context.Context) error
	// Executed returns the applied migrations in ascending timestamp
	// order.
	Executed(ctx context.Context) ([]LedgerEntry, error)
	// Record marks a migration as applied.
	Record(ctx context.Context, name string, timestamp int64) error
	// Remove unmarks a rolled-back migration.
	Remove(ctx context.Context, name string) error
}

// historyLedger adapts the history table to the Ledger interface.
type historyLedger struct {
	h *history.History
}

func (l historyLedger) Init(ctx context.Context) error {
	return l.h.Init(ctx)
}

func (l historyLedger) Executed(ctx context.Context) ([]LedgerEntry, error) {
	entries, err := l.h.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntry{Name: e.Name, Timestamp: e.Timestamp, ExecutedAt: e.ExecutedAt}
	}
	return out, nil
}

func (l historyLedger) Record(ctx context.Context, name string, timestamp int64) error {
	return l.h.Record(ctx, name, timestamp)
}

func (l historyLedger) Remove(ctx context.Context, name string) error {
	return l.h.Remove(ctx, name)
}

// Engine owns a set of registered migrations and a ledger, and moves
// the database between schema versions one migration at a time.
//
// The ledger, not memory, is the source of truth for what has been
// applied; every operation re-reads it. The engine holds no internal
// locking: concurrent runners sharing one ledger table are backstopped
// only by the ledger's unique name index.
type Engine struct {
	db         *client.Client
	ledger     Ledger
	migrations []*Migration
	names      map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLedger replaces the default ledger.
func WithLedger(l Ledger) Option {
	return func(e *Engine) {
		e.ledger = l
	}
}

// WithLedgerTable stores migration state in a custom table instead of
// the default one.
func WithLedgerTable(table string) Option {
	return func(e *Engine) {
		e.ledger = historyLedger{h: history.New(e.db, table)}
	}
}

// NewEngine creates an engine over a client. Without options it
// records progress in the default ledger table.
func NewEngine(db *client.Client, opts ...Option) *Engine {
	e := &Engine{
		db:    db,
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ledger == nil {
		e.ledger = historyLedger{h: history.New(db, history.DefaultTable)}
	}
	return e
}

// Add registers a migration. Names must be unique; both directions
// are required.
func (e *Engine) Add(m Migration) error {
	if m.Name == "" {
		return &sqlgen.ValidationError{Reason: "migration name required"}
	}
	if m.Up == nil || m.Down == nil {
		return &sqlgen.ValidationError{Field: m.Name, Reason: "migration requires up and down functions"}
	}
	if e.names[m.Name] {
		return &sqlgen.ValidationError{Field: m.Name, Reason: "duplicate migration name"}
	}
	e.names[m.Name] = true
	copied := m
	e.migrations = append(e.migrations, &copied)
	return nil
}

// sorted returns the registered migrations ordered by timestamp.
// Registration order breaks ties.
func (e *Engine) sorted() []*Migration {
	out := make([]*Migration, len(e.migrations))
	copy(out, e.migrations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func (e *Engine) executed(ctx context.Context) ([]LedgerEntry, error) {
	if err := e.ledger.Init(ctx); err != nil {
		return nil, &LedgerError{Op: "init", Err: err}
	}
	entries, err := e.ledger.Executed(ctx)
	if err != nil {
		return nil, &LedgerError{Op: "read", Err: err}
	}
	return entries, nil
}

func executedSet(entries []LedgerEntry) map[string]LedgerEntry {
	set := make(map[string]LedgerEntry, len(entries))
	for _, entry := range entries {
		set[entry.Name] = entry
	}
	return set
}

// ExecutedNames returns the applied migration names in ledger
// timestamp order.
func (e *Engine) ExecutedNames(ctx context.Context) ([]string, error) {
	entries, err := e.executed(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	return names, nil
}

// Up applies the oldest pending migration. It returns the migration
// it applied, or nil when nothing was pending.
func (e *Engine) Up(ctx context.Context) (*Migration, error) {
	entries, err := e.executed(ctx)
	if err != nil {
		return nil, err
	}
	applied := executedSet(entries)
	for _, m := range e.sorted() {
		if _, done := applied[m.Name]; done {
			continue
		}
		if err := e.applyUp(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, nil
}

// UpToLatest applies every pending migration in timestamp order,
// stopping at the first failure. It returns the migrations applied so
// far; on failure the error describes the step that broke and
// everything before it stays applied.
func (e *Engine) UpToLatest(ctx context.Context) ([]*Migration, error) {
	entries, err := e.executed(ctx)
	if err != nil {
		return nil, err
	}
	applied := executedSet(entries)
	var done []*Migration
	for _, m := range e.sorted() {
		if _, ok := applied[m.Name]; ok {
			continue
		}
		if err := e.applyUp(ctx, m); err != nil {
			return done, err
		}
		done = append(done, m)
	}
	return done, nil
}

func (e *Engine) applyUp(ctx context.Context, m *Migration) error {
	debug.Debug("applying migration", "name", m.Name)
	if err := m.Up(ctx, e.db); err != nil {
		return &StepError{Name: m.Name, Direction: "up", Err: err}
	}
	if err := e.ledger.Record(ctx, m.Name, m.Timestamp); err != nil {
		return &LedgerError{Op: "record " + m.Name, Err: err}
	}
	return nil
}

// byName returns the registered migration for a ledger entry. A
// ledger row whose migration is no longer registered is a stale entry
// the engine cannot roll back.
func (e *Engine) byName(name string) (*Migration, error) {
	for _, m := range e.migrations {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("ledger names migration %q but it is not registered: %w", name, ErrNotRegistered)
}

// Down rolls back the most recently applied migration, judged by
// ledger timestamp. It returns the migration it rolled back, or nil
// when nothing was applied.
func (e *Engine) Down(ctx context.Context) (*Migration, error) {
	entries, err := e.executed(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	newest := entries[len(entries)-1]
	m, err := e.byName(newest.Name)
	if err != nil {
		return nil, err
	}
	if err := e.applyDown(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DownToOldest rolls back every applied migration, newest first,
// stopping at the first failure. It returns the migrations rolled
// back so far.
func (e *Engine) DownToOldest(ctx context.Context) ([]*Migration, error) {
	entries, err := e.executed(ctx)
	if err != nil {
		return nil, err
	}
	var done []*Migration
	for i := len(entries) - 1; i >= 0; i-- {
		m, err := e.byName(entries[i].Name)
		if err != nil {
			return done, err
		}
		if err := e.applyDown(ctx, m); err != nil {
			return done, err
		}
		done = append(done, m)
	}
	return done, nil
}

func (e *Engine) applyDown(ctx context.Context, m *Migration) error {
	debug.Debug("rolling back migration", "name", m.Name)
	if err := m.Down(ctx, e.db); err != nil {
		return &StepError{Name: m.Name, Direction: "down", Err: err}
	}
	if err := e.ledger.Remove(ctx, m.Name); err != nil {
		return &LedgerError{Op: "remove " + m.Name, Err: err}
	}
	return nil
}

// StatusEntry describes one registered migration.
type StatusEntry struct {
	Name      string
	Timestamp int64
	Applied   bool
	// ExecutedAt is the unix time the migration was applied; zero
	// when pending.
	ExecutedAt int64
}

// Status summarizes the engine's view of the database.
type Status struct {
	Entries []StatusEntry
	Total   int
	Applied int
	Pending int
	// Orphans are ledger rows whose migrations are no longer
	// registered. They signal a stale ledger and are reported, not
	// repaired.
	Orphans []string
}

// Status reports every registered migration in timestamp order with
// its applied state. It never modifies the database beyond creating
// the ledger table.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	entries, err := e.executed(ctx)
	if err != nil {
		return nil, err
	}
	applied := executedSet(entries)

	s := &Status{}
	for _, m := range e.sorted() {
		entry := StatusEntry{Name: m.Name, Timestamp: m.Timestamp}
		if row, ok := applied[m.Name]; ok {
			entry.Applied = true
			entry.ExecutedAt = row.ExecutedAt
			s.Applied++
		} else {
			s.Pending++
		}
		s.Entries = append(s.Entries, entry)
	}
	s.Total = len(s.Entries)

	for _, row := range entries {
		if !e.names[row.Name] {
			s.Orphans = append(s.Orphans, row.Name)
		}
	}
	return s, nil
}
