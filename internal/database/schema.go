package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/timcrose/sessionstore/internal/model"
)

// CheckpointsTable is the name of the ingestion checkpoint table.
const CheckpointsTable = "ingest_checkpoints"

const createCheckpointsSQL = `
CREATE TABLE IF NOT EXISTS ingest_checkpoints (
    run_id            UUID PRIMARY KEY,
    files_done        INTEGER NOT NULL DEFAULT 0,
    last_symbol_id    INTEGER NOT NULL DEFAULT -1,
    pre_market_next   BIGINT NOT NULL DEFAULT 0,
    market_next       BIGINT NOT NULL DEFAULT 0,
    after_market_next BIGINT NOT NULL DEFAULT 0,
    finished          BOOLEAN NOT NULL DEFAULT FALSE,
    started_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Execer runs statements that return no rows. *pgxpool.Pool and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Querier runs statements that return rows.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for t.
func CreateTableSQL(t model.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{t.Name}.Sanitize())
	b.WriteString(" (\n")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    %s %s", pgx.Identifier{c.Name}.Sanitize(), c.Type)
		if c.Name == t.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}
	for _, fk := range t.ForeignKeys {
		fmt.Fprintf(&b, ",\n    FOREIGN KEY (%s) REFERENCES %s (%s)",
			pgx.Identifier{fk.Column}.Sanitize(),
			pgx.Identifier{fk.RefTable}.Sanitize(),
			pgx.Identifier{fk.RefCol}.Sanitize(),
		)
	}
	b.WriteString("\n)")
	return b.String()
}

// CreateTables creates every entity table and the checkpoint table.
// Existing tables are left untouched.
func CreateTables(ctx context.Context, db Execer) error {
	for _, t := range model.Tables {
		if _, err := db.Exec(ctx, CreateTableSQL(t)); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	if _, err := db.Exec(ctx, createCheckpointsSQL); err != nil {
		return fmt.Errorf("create table %s: %w", CheckpointsTable, err)
	}
	return nil
}

// DropTables drops each named table in order. Dropping a table that does not
// exist fails, and stops at the first failure.
func DropTables(ctx context.Context, db Execer, names ...string) error {
	for _, name := range names {
		if _, err := db.Exec(ctx, DropTableSQL(name)); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}
	return nil
}

// DropEntities drops the tables of the given descriptors in order.
func DropEntities(ctx context.Context, db Execer, tables ...model.Table) error {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return DropTables(ctx, db, names...)
}

// DropTableSQL returns the DROP TABLE statement for name.
func DropTableSQL(name string) string {
	return "DROP TABLE " + pgx.Identifier{name}.Sanitize()
}

// AllTableNames lists every managed table so that dependents are dropped first.
func AllTableNames() []string {
	names := []string{CheckpointsTable}
	for i := len(model.Tables) - 1; i >= 0; i-- {
		names = append(names, model.Tables[i].Name)
	}
	return names
}

// ExistingTables returns the names of the tables in the current schema.
func ExistingTables(ctx context.Context, db Querier) ([]string, error) {
	rows, err := db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan table names: %w", err)
	}
	return names, nil
}
