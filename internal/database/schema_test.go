package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/timcrose/sessionstore/internal/model"
)

// recordingExec records statements and fails on a matching one.
type recordingExec struct {
	stmts  []string
	failOn string
}

func (e *recordingExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if e.failOn != "" && strings.Contains(sql, e.failOn) {
		return pgconn.CommandTag{}, errors.New(`table "` + e.failOn + `" does not exist`)
	}
	e.stmts = append(e.stmts, sql)
	return pgconn.NewCommandTag("OK"), nil
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL(model.MarketHoursTable)
	want := `CREATE TABLE IF NOT EXISTS "market_hours" (
    "market_hours_id" BIGINT PRIMARY KEY,
    "vwap_pct" DOUBLE PRECISION,
    "dollar_vol" DOUBLE PRECISION,
    "datetime" TIMESTAMP WITHOUT TIME ZONE,
    "symbol_id" INTEGER,
    FOREIGN KEY ("symbol_id") REFERENCES "symbols" ("symbol_id")
)`
	if got != want {
		t.Errorf("CreateTableSQL() =\n%s\nwant\n%s", got, want)
	}

	got = CreateTableSQL(model.SymbolsTable)
	want = `CREATE TABLE IF NOT EXISTS "symbols" (
    "symbol_id" INTEGER PRIMARY KEY,
    "symbol" VARCHAR(10)
)`
	if got != want {
		t.Errorf("CreateTableSQL(symbols) =\n%s\nwant\n%s", got, want)
	}
}

func TestCreateTables_Order(t *testing.T) {
	exec := &recordingExec{}
	if err := CreateTables(context.Background(), exec); err != nil {
		t.Fatalf("CreateTables() error = %v", err)
	}

	if len(exec.stmts) != 5 {
		t.Fatalf("statements = %d, want 5", len(exec.stmts))
	}
	if !strings.Contains(exec.stmts[0], `"symbols"`) {
		t.Errorf("first statement should create symbols, got %q", exec.stmts[0])
	}
	if !strings.Contains(exec.stmts[4], CheckpointsTable) {
		t.Errorf("last statement should create %s, got %q", CheckpointsTable, exec.stmts[4])
	}
}

func TestDropTables(t *testing.T) {
	exec := &recordingExec{}
	err := DropTables(context.Background(), exec, "market_hours", "symbols")
	if err != nil {
		t.Fatalf("DropTables() error = %v", err)
	}
	want := []string{`DROP TABLE "market_hours"`, `DROP TABLE "symbols"`}
	if fmt.Sprint(exec.stmts) != fmt.Sprint(want) {
		t.Errorf("statements = %v, want %v", exec.stmts, want)
	}
}

func TestDropTables_MissingTableFails(t *testing.T) {
	exec := &recordingExec{failOn: "MarketHours"}
	err := DropTables(context.Background(), exec, "pre_market_hours", "MarketHours", "symbols")
	if err == nil {
		t.Fatal("DropTables() expected error for missing table")
	}
	if !strings.Contains(err.Error(), "drop table MarketHours") {
		t.Errorf("error = %v, want table name in message", err)
	}
	if len(exec.stmts) != 1 {
		t.Errorf("statements after failure = %v, want only the first drop", exec.stmts)
	}
}

func TestDropEntities(t *testing.T) {
	exec := &recordingExec{}
	err := DropEntities(context.Background(), exec, model.AfterMarketHoursTable, model.SymbolsTable)
	if err != nil {
		t.Fatalf("DropEntities() error = %v", err)
	}
	want := []string{`DROP TABLE "after_market_hours"`, `DROP TABLE "symbols"`}
	if fmt.Sprint(exec.stmts) != fmt.Sprint(want) {
		t.Errorf("statements = %v, want %v", exec.stmts, want)
	}
}

func TestDropTableSQL_QuotesIdentifier(t *testing.T) {
	got := DropTableSQL(`x"; DROP DATABASE stocks; --`)
	want := `DROP TABLE "x""; DROP DATABASE stocks; --"`
	if got != want {
		t.Errorf("DropTableSQL() = %q, want %q", got, want)
	}
}

func TestAllTableNames(t *testing.T) {
	want := []string{CheckpointsTable, "after_market_hours", "market_hours", "pre_market_hours", "symbols"}
	if got := AllTableNames(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("AllTableNames() = %v, want %v", got, want)
	}
}
