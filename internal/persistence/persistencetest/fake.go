// Package persistencetest provides in-memory fakes of the persistence session types for
// unit tests. Unimplemented pgx methods panic through the embedded nil interfaces.
package persistencetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nealrs/baby-tracker/internal/persistence"
)

// Exec is one statement executed inside a fake transaction.
type Exec struct {
	SQL  string
	Args []any
}

// Result is the canned answer to a query whose SQL contains the map key.
type Result struct {
	Rows [][]any
	// Err fails the query itself.
	Err error
	// ScanErrAt fails Scan on the row with this 1-based index; zero disables it.
	ScanErrAt int
}

// Provider is a fake persistence.SessionProvider recording everything sessions do.
type Provider struct {
	AcquireErr error
	BeginErr   error
	CommitErr  error
	// FailExec is consulted before every Exec with its 1-based call number across the provider.
	FailExec func(call int, sql string) error
	Results  map[string]Result
	// RowValues and RowErr answer QueryRow.
	RowValues []any
	RowErr    error

	mu        sync.Mutex
	acquired  int
	released  int
	execCalls int
	execs     []Exec
	committed [][]Exec
	rollbacks int
	queries   []string
}

var _ persistence.SessionProvider = (*Provider)(nil)

// Acquire hands out a new fake session unless AcquireErr is set.
func (p *Provider) Acquire(ctx context.Context) (persistence.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.AcquireErr != nil {
		return nil, p.AcquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return &Session{provider: p}, nil
}

// Acquired returns how many sessions were handed out.
func (p *Provider) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Released returns how many sessions were released.
func (p *Provider) Released() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Execs returns every statement executed, committed or not.
func (p *Provider) Execs() []Exec {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Exec(nil), p.execs...)
}

// Committed returns the statements of each committed transaction, in commit order.
func (p *Provider) Committed() [][]Exec {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]Exec(nil), p.committed...)
}

// CommittedExecs flattens Committed.
func (p *Provider) CommittedExecs() []Exec {
	var out []Exec
	for _, tx := range p.Committed() {
		out = append(out, tx...)
	}
	return out
}

// Rollbacks returns how many open transactions were rolled back.
func (p *Provider) Rollbacks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rollbacks
}

// Queries returns the SQL of every Query call.
func (p *Provider) Queries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queries...)
}

func (p *Provider) exec(sql string, args []any) error {
	p.mu.Lock()
	p.execCalls++
	call := p.execCalls
	p.execs = append(p.execs, Exec{SQL: sql, Args: args})
	p.mu.Unlock()

	if p.FailExec != nil {
		return p.FailExec(call, sql)
	}
	return nil
}

func (p *Provider) query(sql string) (pgx.Rows, error) {
	p.mu.Lock()
	p.queries = append(p.queries, sql)
	p.mu.Unlock()

	for key, res := range p.Results {
		if !strings.Contains(sql, key) {
			continue
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return &Rows{rows: res.Rows, scanErrAt: res.ScanErrAt}, nil
	}
	return &Rows{}, nil
}

// Session is a fake persistence.Session.
type Session struct {
	provider *Provider
	released bool
}

// Begin opens a fake transaction.
func (s *Session) Begin(ctx context.Context) (pgx.Tx, error) {
	if s.provider.BeginErr != nil {
		return nil, s.provider.BeginErr
	}
	return &Tx{provider: s.provider}, nil
}

// Query answers from Provider.Results.
func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.provider.query(sql)
}

// QueryRow answers from Provider.RowValues and Provider.RowErr.
func (s *Session) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &Row{values: s.provider.RowValues, err: s.provider.RowErr}
}

// Release returns the session. Releasing twice panics.
func (s *Session) Release() {
	if s.released {
		panic("persistencetest: session released twice")
	}
	s.released = true
	s.provider.mu.Lock()
	s.provider.released++
	s.provider.mu.Unlock()
}

// Tx is a fake pgx.Tx supporting Exec, Query, Commit and Rollback.
type Tx struct {
	pgx.Tx
	provider *Provider
	execs    []Exec
	closed   bool
}

// Exec records the statement and consults Provider.FailExec.
func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.closed {
		return pgconn.CommandTag{}, pgx.ErrTxClosed
	}
	if err := t.provider.exec(sql, args); err != nil {
		return pgconn.CommandTag{}, err
	}
	t.execs = append(t.execs, Exec{SQL: sql, Args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// Query answers from Provider.Results.
func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.closed {
		return nil, pgx.ErrTxClosed
	}
	return t.provider.query(sql)
}

// Commit keeps the recorded statements unless Provider.CommitErr is set.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	if t.provider.CommitErr != nil {
		t.provider.mu.Lock()
		t.provider.rollbacks++
		t.provider.mu.Unlock()
		return t.provider.CommitErr
	}
	t.provider.mu.Lock()
	t.provider.committed = append(t.provider.committed, t.execs)
	t.provider.mu.Unlock()
	return nil
}

// Rollback discards the transaction. It returns pgx.ErrTxClosed after Commit or Rollback.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.provider.mu.Lock()
	t.provider.rollbacks++
	t.provider.mu.Unlock()
	return nil
}

// Rows is a fake pgx.Rows over canned values.
type Rows struct {
	pgx.Rows
	rows      [][]any
	scanErrAt int
	pos       int
	err       error
	closed    bool
}

// Next advances to the next row.
func (r *Rows) Next() bool {
	if r.closed || r.err != nil || r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

// Scan assigns the current row into dest.
func (r *Rows) Scan(dest ...any) error {
	if r.scanErrAt > 0 && r.pos == r.scanErrAt {
		r.err = fmt.Errorf("scan row %d: %w", r.pos, ErrScan)
		return r.err
	}
	return assign(r.rows[r.pos-1], dest)
}

// Close marks the rows closed.
func (r *Rows) Close() { r.closed = true }

// Err returns the scan error, if any.
func (r *Rows) Err() error { return r.err }

// Row is a fake pgx.Row.
type Row struct {
	values []any
	err    error
}

// Scan assigns values into dest or returns the configured error.
func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.values == nil {
		return pgx.ErrNoRows
	}
	return assign(r.values, dest)
}

// ErrScan is the cause of a configured scan failure.
var ErrScan = errors.New("persistencetest: scan failure")

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("persistencetest: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("persistencetest: destination %d is not a pointer", i)
		}
		if err := set(target.Elem(), values[i]); err != nil {
			return fmt.Errorf("persistencetest: column %d: %w", i, err)
		}
	}
	return nil
}

func set(target reflect.Value, value any) error {
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	if target.Kind() == reflect.Pointer && src.Kind() != reflect.Pointer {
		elem := reflect.New(target.Type().Elem())
		if err := set(elem.Elem(), value); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}
	if !src.Type().ConvertibleTo(target.Type()) {
		return fmt.Errorf("cannot assign %s to %s", src.Type(), target.Type())
	}
	target.Set(src.Convert(target.Type()))
	return nil
}
