package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timcrose/sessionstore/internal/ingest"
	"github.com/timcrose/sessionstore/internal/model"
)

// Store persists ingestion output to PostgreSQL.
//
// All writes are append-only. A Store is used by a single ingestion run at a
// time and is not safe for concurrent use.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger

	metrics StoreMetrics
}

// StoreMetrics holds write counters for a Store.
type StoreMetrics struct {
	Symbols int64
	Records int64
	Batches int64
	Errors  int64
}

// NewStore creates a Store on db.
func NewStore(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Stats returns current metrics.
func (s *Store) Stats() StoreMetrics {
	return s.metrics
}

// SaveRegistry bulk inserts all symbols and creates the run checkpoint.
func (s *Store) SaveRegistry(ctx context.Context, runID uuid.UUID, symbols []model.Symbol) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := copySymbols(ctx, tx, symbols); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO ingest_checkpoints (run_id) VALUES ($1)`, runID.String())
		if err != nil {
			return fmt.Errorf("create checkpoint: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.Errors++
		return err
	}

	s.metrics.Symbols += int64(len(symbols))
	s.logger.Info("symbols committed", "run_id", runID, "count", len(symbols))
	return nil
}

// CommitBatch bulk inserts one file's records and advances the checkpoint.
func (s *Store) CommitBatch(ctx context.Context, runID uuid.UUID, cp ingest.Checkpoint, records []model.SessionRecord) error {
	start := time.Now()

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for kind, recs := range ingest.Split(records) {
			if _, err := copyRecords(ctx, tx, kind, recs); err != nil {
				return err
			}
		}
		return updateCheckpoint(ctx, tx, runID, cp)
	})
	if err != nil {
		s.metrics.Errors++
		return err
	}

	s.metrics.Records += int64(len(records))
	s.metrics.Batches++
	s.logger.Debug("flushed records",
		"count", len(records),
		"files_done", cp.FilesDone,
		"duration", time.Since(start),
	)
	return nil
}

// LoadSymbols returns the committed symbols ordered by id.
func (s *Store) LoadSymbols(ctx context.Context) ([]model.Symbol, error) {
	rows, err := s.db.Query(ctx, `SELECT symbol_id, symbol FROM symbols ORDER BY symbol_id`)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	symbols, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Symbol])
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	return symbols, nil
}

// LoadCheckpoint returns the checkpoint of runID.
func (s *Store) LoadCheckpoint(ctx context.Context, runID uuid.UUID) (ingest.Checkpoint, error) {
	var cp ingest.Checkpoint
	err := s.db.QueryRow(ctx, `
		SELECT files_done, last_symbol_id, pre_market_next, market_next, after_market_next, finished
		FROM ingest_checkpoints
		WHERE run_id = $1
	`, runID.String()).Scan(
		&cp.FilesDone,
		&cp.LastSymbolID,
		&cp.Next.PreMarket,
		&cp.Next.Regular,
		&cp.Next.AfterMarket,
		&cp.Finished,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ingest.Checkpoint{}, fmt.Errorf("%w: %s", ingest.ErrRunNotFound, runID)
	}
	if err != nil {
		return ingest.Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, nil
}

// FinishRun marks the run complete.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE ingest_checkpoints SET finished = TRUE, updated_at = now()
		WHERE run_id = $1
	`, runID.String())
	if err != nil {
		s.metrics.Errors++
		return fmt.Errorf("finish run: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ingest.ErrRunNotFound, runID)
	}
	return nil
}

func updateCheckpoint(ctx context.Context, tx pgx.Tx, runID uuid.UUID, cp ingest.Checkpoint) error {
	ct, err := tx.Exec(ctx, `
		UPDATE ingest_checkpoints
		SET files_done = $2, last_symbol_id = $3,
		    pre_market_next = $4, market_next = $5, after_market_next = $6,
		    updated_at = now()
		WHERE run_id = $1
	`, runID.String(), cp.FilesDone, cp.LastSymbolID, cp.Next.PreMarket, cp.Next.Regular, cp.Next.AfterMarket)
	if err != nil {
		return fmt.Errorf("update checkpoint: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ingest.ErrRunNotFound, runID)
	}
	return nil
}

// copySymbols loads symbols with COPY.
func copySymbols(ctx context.Context, tx pgx.Tx, symbols []model.Symbol) (int64, error) {
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{model.SymbolsTable.Name},
		model.SymbolsTable.ColumnNames(),
		pgx.CopyFromSlice(len(symbols), func(i int) ([]any, error) {
			return []any{symbols[i].ID, symbols[i].Symbol}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy symbols: %w", err)
	}
	return n, nil
}

// copyRecords loads records of a single kind into that kind's table with COPY.
func copyRecords(ctx context.Context, tx pgx.Tx, kind model.SessionKind, records []model.SessionRecord) (int64, error) {
	table := kind.Table()
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{table.Name},
		table.ColumnNames(),
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.ID, r.VWAPPct, r.DollarVol, r.Timestamp, r.SymbolID}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", table.Name, err)
	}
	return n, nil
}
