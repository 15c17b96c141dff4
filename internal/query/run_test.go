package query

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRows serves fixed values through the pgx.Rows interface.
type fakeRows struct {
	data   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Scan(dest ...any) error                       { return errors.New("not supported") }

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

type fakeQuerier struct {
	sql  string
	args []any
	rows *fakeRows
	err  error
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestRun(t *testing.T) {
	ts := time.Date(2009, 10, 30, 15, 45, 21, 0, time.UTC)
	db := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{0.9641, 1200.0, ts},
		{0.9649, 800.5, ts.Add(time.Second)},
	}}}

	res, err := Run(context.Background(), db, Example("AA", ts.Add(-time.Second), 0.964, 0.965))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Len() != 2 {
		t.Fatalf("rows = %d, want 2", res.Len())
	}
	if strings.Join(res.Columns, ",") != "vwap_pct,dollar_vol,datetime" {
		t.Errorf("Columns = %v", res.Columns)
	}
	if !strings.Contains(db.sql, `JOIN "symbols"`) || len(db.args) != 5 {
		t.Errorf("executed %q with %v", db.sql, db.args)
	}
	if !db.rows.closed {
		t.Error("rows not closed")
	}

	head := res.Head(1)
	if head.Len() != 1 || head.Rows[0][0] != 0.9641 {
		t.Errorf("Head(1) = %v", head.Rows)
	}
	if res.Head(10).Len() != 2 {
		t.Error("Head(10) should return all rows")
	}
}

func TestRun_BuildError(t *testing.T) {
	db := &fakeQuerier{}
	_, err := Run(context.Background(), db, Query{})
	if !errors.Is(err, ErrEmptySelect) {
		t.Errorf("Run() error = %v, want ErrEmptySelect", err)
	}
	if db.sql != "" {
		t.Error("query executed despite build error")
	}
}

func TestRun_QueryError(t *testing.T) {
	db := &fakeQuerier{err: errors.New(`relation "market_hours" does not exist`)}
	_, err := Run(context.Background(), db, Query{Select: []Selector{All(mh)}})
	if err == nil || !strings.Contains(err.Error(), "execute query") {
		t.Errorf("Run() error = %v, want execute query error", err)
	}
}

func TestResult_WriteTo(t *testing.T) {
	res := &Result{
		Columns: []string{"symbol_id", "symbol", "datetime"},
		Rows: [][]any{
			{int32(0), "AA", time.Date(2009, 10, 30, 9, 30, 0, 0, time.UTC)},
			{int32(1), nil, time.Date(2009, 10, 30, 9, 30, 1, 0, time.UTC)},
		},
	}

	var buf bytes.Buffer
	n, err := res.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() = %d, wrote %d", n, buf.Len())
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "symbol_id") || !strings.Contains(lines[1], "2009-10-30 09:30:00") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "NULL") {
		t.Errorf("nil should render as NULL:\n%s", buf.String())
	}
}

func TestResult_Head(t *testing.T) {
	res := &Result{Columns: []string{"id"}, Rows: [][]any{{int64(0)}, {int64(1)}, {int64(2)}}}

	tests := []struct {
		n    int
		want int
	}{
		{n: -1, want: 0},
		{n: 0, want: 0},
		{n: 2, want: 2},
		{n: 10, want: 3},
	}
	for _, tt := range tests {
		if got := res.Head(tt.n).Len(); got != tt.want {
			t.Errorf("Head(%d).Len() = %d, want %d", tt.n, got, tt.want)
		}
	}
}
