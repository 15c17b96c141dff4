package query

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/timcrose/sessionstore/internal/model"
)

// Querier runs statements that return rows. *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Run builds q, executes it and collects every row.
func Run(ctx context.Context, db Querier, q Query) (*Result, error) {
	sql, args, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	cols, _ := q.selected()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	data, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]any, error) {
		return row.Values()
	})
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	return &Result{Columns: columnNames(cols), Rows: data}, nil
}

// WriteTo writes r as an aligned text table.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)
	for i, c := range r.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, row := range r.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	err := tw.Flush()
	return cw.n, err
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Example is the reference query over regular-hours data: one symbol's
// seconds after a given time with VWAP between lo and hi and non-zero volume,
// in ID order.
func Example(symbol string, after time.Time, lo, hi float64) Query {
	mh := model.MarketHoursTable
	return Query{
		Select: []Selector{
			Col(mh, model.ColVWAPPct),
			Col(mh, model.ColDollarVol),
			Col(mh, model.ColDatetime),
		},
		Where: And(
			Ge(Col(mh, model.ColVWAPPct), lo),
			Le(Col(mh, model.ColVWAPPct), hi),
			Gt(Col(mh, model.ColDollarVol), 0.0),
			Gt(Col(mh, model.ColDatetime), after),
			Eq(Col(model.SymbolsTable, model.ColSymbol), symbol),
		),
		Joins:   []Join{{Table: model.SymbolsTable}},
		OrderBy: &Column{Table: mh, Name: mh.PrimaryKey},
	}
}
