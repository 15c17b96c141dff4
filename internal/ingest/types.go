package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/timcrose/sessionstore/internal/archive"
	"github.com/timcrose/sessionstore/internal/model"
)

// ErrRunFinished is returned when resuming a run that already completed.
var ErrRunFinished = errors.New("ingestion run already finished")

// ErrRunNotFound is returned by a Store when no checkpoint exists for a run.
var ErrRunNotFound = errors.New("ingestion run not found")

// ErrRegistryChanged is returned when resuming over a directory whose symbols
// or files no longer match the committed run.
var ErrRegistryChanged = errors.New("data directory changed since run started")

// Store persists symbols, session records and run checkpoints.
type Store interface {
	// SaveRegistry inserts all symbols and creates the run checkpoint in one transaction.
	SaveRegistry(ctx context.Context, runID uuid.UUID, symbols []model.Symbol) error

	// LoadSymbols returns the committed symbol table ordered by id.
	LoadSymbols(ctx context.Context) ([]model.Symbol, error)

	// CommitBatch inserts one file's records and advances the checkpoint in one transaction.
	CommitBatch(ctx context.Context, runID uuid.UUID, cp Checkpoint, records []model.SessionRecord) error

	// LoadCheckpoint returns the last committed checkpoint for runID.
	LoadCheckpoint(ctx context.Context, runID uuid.UUID) (Checkpoint, error)

	// FinishRun marks the run complete.
	FinishRun(ctx context.Context, runID uuid.UUID) error
}

// Reader loads the raw content of one archive file.
type Reader interface {
	ReadSeries(path string) (archive.Series, error)
}

// Checkpoint is the resumable state of an ingestion run after a committed file.
type Checkpoint struct {
	FilesDone    int // Number of registry files fully committed
	LastSymbolID int // Symbol of the last committed file, -1 before the first
	Next         Counters
	Finished     bool
}

// Result summarises an ingestion run.
type Result struct {
	RunID   uuid.UUID
	Symbols int
	Files   int // Files committed by this call
	Skipped int // Files already committed before a resume
	Counts  Counters
}

// PersistError wraps a store failure.
type PersistError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *PersistError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("persist %s (%s): %v", e.Op, e.Symbol, e.Err)
	}
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
