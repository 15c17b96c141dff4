package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timcrose/sessionstore/internal/archive"
	"github.com/timcrose/sessionstore/internal/ingest"
	"github.com/timcrose/sessionstore/internal/model"
	"github.com/timcrose/sessionstore/internal/query"
)

// testPool connects to SESSIONSTORE_TEST_DATABASE_URL with a clean schema.
// Tests that need it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("SESSIONSTORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SESSIONSTORE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	for _, name := range AllTableNames() {
		pool.Exec(ctx, "DROP TABLE IF EXISTS "+name)
	}
	if err := CreateTables(ctx, pool); err != nil {
		t.Fatalf("CreateTables() error = %v", err)
	}
	return pool
}

func writeArchive(t *testing.T, dir, symbol string, date string) {
	t.Helper()
	rows := make([][2]float64, ingest.SamplesPerDay)
	for i := range rows {
		rows[i] = [2]float64{0.96 + float64(i%100)/10000, float64(i)}
	}
	path := filepath.Join(dir, symbol+archive.Extension)
	if err := archive.WriteSeries(path, archive.Series{Rows: rows, Dates: []string{date}}); err != nil {
		t.Fatalf("WriteSeries(%s) error = %v", symbol, err)
	}
}

func TestStore_IngestAndQuery(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeArchive(t, dir, "BB", "20091030")
	writeArchive(t, dir, "AA", "20091030")

	store := NewStore(pool, nil)
	res, err := ingest.New(store, archive.NewReader()).Run(ctx, dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	symbols, err := query.Run(ctx, pool, query.Query{
		Select:  []query.Selector{query.All(model.SymbolsTable)},
		OrderBy: &query.Column{Table: model.SymbolsTable, Name: model.ColSymbolID},
	})
	if err != nil {
		t.Fatalf("query symbols: %v", err)
	}
	if symbols.Len() != 2 || symbols.Rows[0][1] != "AA" || symbols.Rows[1][1] != "BB" {
		t.Errorf("symbols = %v", symbols.Rows)
	}

	var total int64
	for _, kind := range model.SessionKinds {
		var n int64
		err := pool.QueryRow(ctx, "SELECT count(*) FROM "+kind.Table().Name).Scan(&n)
		if err != nil {
			t.Fatalf("count %s: %v", kind.Table().Name, err)
		}
		total += n
	}
	if total != 2*ingest.SamplesPerDay {
		t.Errorf("total rows = %d, want %d", total, 2*ingest.SamplesPerDay)
	}

	// Row 46700 of AA: 19:58:20, after-market id 14299.
	var symbolID int
	var ts time.Time
	var vwap, vol float64
	err = pool.QueryRow(ctx, `
		SELECT symbol_id, datetime, vwap_pct, dollar_vol
		FROM after_market_hours WHERE after_market_hours_id = 14299
	`).Scan(&symbolID, &ts, &vwap, &vol)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	want := time.Date(2009, 10, 30, 19, 58, 20, 0, time.UTC)
	if symbolID != 0 || !ts.Equal(want) || vwap != 0.96 || vol != 46700 {
		t.Errorf("row = (%d, %v, %v, %v), want (0, %v, 0.96, 46700)", symbolID, ts, vwap, vol, want)
	}

	from := time.Date(2009, 10, 30, 10, 0, 0, 0, time.UTC)
	to := time.Date(2009, 10, 30, 10, 0, 59, 0, time.UTC)
	mh := model.MarketHoursTable
	result, err := query.Run(ctx, pool, query.Query{
		Select: []query.Selector{
			query.Col(mh, mh.PrimaryKey),
			query.Col(mh, model.ColVWAPPct),
			query.Col(mh, model.ColDollarVol),
		},
		Where: query.And(
			query.Eq(query.Col(model.SymbolsTable, model.ColSymbol), "AA"),
			query.Between(query.Col(mh, model.ColDatetime), from, to),
		),
		Joins:   []query.Join{{Table: model.SymbolsTable}},
		OrderBy: &query.Column{Table: mh, Name: mh.PrimaryKey},
	})
	if err != nil {
		t.Fatalf("query market hours: %v", err)
	}
	if result.Len() != 60 {
		t.Fatalf("rows = %d, want 60", result.Len())
	}
	prev := int64(-1)
	for _, row := range result.Rows {
		id := row[0].(int64)
		if id <= prev {
			t.Fatalf("ids not increasing: %d after %d", id, prev)
		}
		prev = id
	}

	cp, err := store.LoadCheckpoint(ctx, res.RunID)
	if err != nil {
		t.Fatalf("LoadCheckpoint() error = %v", err)
	}
	if !cp.Finished || cp.FilesDone != 2 || cp.Next != res.Counts {
		t.Errorf("checkpoint = %+v, result counts = %+v", cp, res.Counts)
	}
	if stats := store.Stats(); stats.Records != 2*ingest.SamplesPerDay || stats.Batches != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestDropTables_Missing(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	if err := DropTables(ctx, pool, "no_such_table"); err == nil {
		t.Error("DropTables() expected error for missing table")
	}

	names, err := ExistingTables(ctx, pool)
	if err != nil {
		t.Fatalf("ExistingTables() error = %v", err)
	}
	if len(names) < 5 {
		t.Errorf("ExistingTables() = %v, want managed tables", names)
	}

	if err := DropTables(ctx, pool, AllTableNames()...); err != nil {
		t.Fatalf("DropTables(all) error = %v", err)
	}
}
