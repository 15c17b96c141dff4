package query

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/timcrose/sessionstore/internal/model"
)

// Errors returned by Build.
var (
	// ErrEmptySelect is returned when the select list yields no columns.
	ErrEmptySelect = errors.New("query selects no columns")
	// ErrUnknownColumn is returned for a column its table does not define.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnknownTable is returned when a condition or order references a table outside the FROM/JOIN chain.
	ErrUnknownTable = errors.New("table not in join chain")
	// ErrNoJoinPath is returned when a join has no condition and no foreign key links it to the chain.
	ErrNoJoinPath = errors.New("no foreign key between tables")
	// ErrEmptyIn is returned for an In condition with no values.
	ErrEmptyIn = errors.New("IN condition without values")
)

// Selector is a column or a whole table in the select list.
type Selector interface {
	columns() []Column
}

// Column is a single column of a table.
type Column struct {
	Table model.Table
	Name  string
}

// Col returns the column name of t.
func Col(t model.Table, name string) Column {
	return Column{Table: t, Name: name}
}

func (c Column) columns() []Column { return []Column{c} }

func (c Column) sql() string {
	return pgx.Identifier{c.Table.Name, c.Name}.Sanitize()
}

// String returns table.column.
func (c Column) String() string {
	return c.Table.Name + "." + c.Name
}

// Entity selects every column of a table.
type Entity struct {
	Table model.Table
}

// All selects every column of t.
func All(t model.Table) Entity {
	return Entity{Table: t}
}

func (e Entity) columns() []Column {
	cols := make([]Column, len(e.Table.Columns))
	for i, c := range e.Table.Columns {
		cols[i] = Column{Table: e.Table, Name: c.Name}
	}
	return cols
}

// Condition is a single filter term.
type Condition struct {
	Column Column
	Op     string // =, <>, <, <=, >, >=, BETWEEN, IN
	Values []any
}

// Eq matches c = v.
func Eq(c Column, v any) Condition { return Condition{Column: c, Op: "=", Values: []any{v}} }

// Ne matches c <> v.
func Ne(c Column, v any) Condition { return Condition{Column: c, Op: "<>", Values: []any{v}} }

// Lt matches c < v.
func Lt(c Column, v any) Condition { return Condition{Column: c, Op: "<", Values: []any{v}} }

// Le matches c <= v.
func Le(c Column, v any) Condition { return Condition{Column: c, Op: "<=", Values: []any{v}} }

// Gt matches c > v.
func Gt(c Column, v any) Condition { return Condition{Column: c, Op: ">", Values: []any{v}} }

// Ge matches c >= v.
func Ge(c Column, v any) Condition { return Condition{Column: c, Op: ">=", Values: []any{v}} }

// Between matches lo <= c <= hi.
func Between(c Column, lo, hi any) Condition {
	return Condition{Column: c, Op: "BETWEEN", Values: []any{lo, hi}}
}

// In matches c equal to any of values.
func In(c Column, values ...any) Condition {
	return Condition{Column: c, Op: "IN", Values: values}
}

// Predicate is a conjunction of conditions.
type Predicate []Condition

// And combines conditions; every one must hold.
func And(conds ...Condition) Predicate {
	return Predicate(conds)
}

// JoinOn is an explicit equality join condition.
type JoinOn struct {
	Left  Column
	Right Column
}

// Join adds a table to the chain. A nil On joins along a foreign key.
type Join struct {
	Table model.Table
	On    *JoinOn
}

// Query is a complete retrieval request.
type Query struct {
	Select  []Selector
	Where   Predicate
	Joins   []Join
	OrderBy *Column
}

// Result is a tabular query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Head returns the first n rows. A negative n yields no rows.
func (r *Result) Head(n int) *Result {
	if n < 0 {
		n = 0
	}
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return &Result{Columns: r.Columns, Rows: r.Rows[:n]}
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

func columnNames(cols []Column) []string {
	counts := make(map[string]int, len(cols))
	for _, c := range cols {
		counts[c.Name]++
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		if counts[c.Name] > 1 {
			names[i] = c.String()
		} else {
			names[i] = c.Name
		}
	}
	return names
}
