package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/timcrose/sessionstore/internal/archive"
	"github.com/timcrose/sessionstore/internal/model"
	"github.com/timcrose/sessionstore/internal/registry"
)

// Ingestor loads a data directory into the store, one file per transaction.
type Ingestor struct {
	store  Store
	reader Reader
	logger *slog.Logger
	ext    string
	newID  func() uuid.UUID
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Ingestor) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithExtension sets the archive file extension to scan for.
func WithExtension(ext string) Option {
	return func(in *Ingestor) {
		if ext != "" {
			in.ext = ext
		}
	}
}

// New creates an Ingestor writing to store and reading files with reader.
func New(store Store, reader Reader, opts ...Option) *Ingestor {
	in := &Ingestor{
		store:  store,
		reader: reader,
		logger: slog.Default(),
		ext:    archive.Extension,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.logger = in.logger.With("component", "ingest")
	return in
}

// Run starts a new ingestion run over every archive file under dir.
//
// Symbols are committed before any session record. Each file is then
// partitioned and committed on its own; the first failure stops the run and
// is returned unmodified apart from wrapping. The run can be continued with Resume.
func (in *Ingestor) Run(ctx context.Context, dir string) (Result, error) {
	reg, err := registry.Scan(dir, in.ext)
	if err != nil {
		return Result{}, err
	}

	runID := in.newID()
	res := Result{RunID: runID, Symbols: len(reg.Symbols)}

	in.logger.Info("starting ingestion",
		"run_id", runID,
		"dir", dir,
		"symbols", len(reg.Symbols),
		"files", len(reg.Files),
	)

	// No checkpoint exists until the registry commits, so the id is not resumable.
	if err := in.store.SaveRegistry(ctx, runID, reg.Symbols); err != nil {
		return Result{Symbols: len(reg.Symbols)}, &PersistError{Op: "symbols", Err: err}
	}

	cp := Checkpoint{LastSymbolID: -1}
	return in.ingestFiles(ctx, reg, cp, res)
}

// Resume continues a failed run from its last committed file.
//
// The directory must hold the same files as when the run started, since
// files are matched to the checkpoint by registry position. A directory whose
// symbols differ from the committed ones fails with ErrRegistryChanged before
// anything is read.
func (in *Ingestor) Resume(ctx context.Context, dir string, runID uuid.UUID) (Result, error) {
	reg, err := registry.Scan(dir, in.ext)
	if err != nil {
		return Result{}, err
	}

	res := Result{RunID: runID, Symbols: len(reg.Symbols)}

	cp, err := in.store.LoadCheckpoint(ctx, runID)
	if err != nil {
		return res, &PersistError{Op: "load checkpoint", Err: err}
	}
	if cp.Finished {
		return res, fmt.Errorf("%w: %s", ErrRunFinished, runID)
	}
	if cp.FilesDone > len(reg.Files) {
		return res, fmt.Errorf("%w: checkpoint has %d files done, directory has %d",
			ErrRegistryChanged, cp.FilesDone, len(reg.Files))
	}
	if cp.FilesDone > 0 && reg.Files[cp.FilesDone-1].SymbolID != cp.LastSymbolID {
		return res, fmt.Errorf("%w: file %d is symbol %d, checkpoint has %d",
			ErrRegistryChanged, cp.FilesDone, reg.Files[cp.FilesDone-1].SymbolID, cp.LastSymbolID)
	}

	committed, err := in.store.LoadSymbols(ctx)
	if err != nil {
		return res, &PersistError{Op: "load symbols", Err: err}
	}
	if err := sameSymbols(committed, reg.Symbols); err != nil {
		return res, err
	}

	in.logger.Info("resuming ingestion",
		"run_id", runID,
		"dir", dir,
		"files_done", cp.FilesDone,
		"files", len(reg.Files),
	)

	res.Skipped = cp.FilesDone
	return in.ingestFiles(ctx, reg, cp, res)
}

func sameSymbols(committed, scanned []model.Symbol) error {
	if len(committed) != len(scanned) {
		return fmt.Errorf("%w: %d symbols committed, %d in directory",
			ErrRegistryChanged, len(committed), len(scanned))
	}
	for i := range committed {
		if committed[i] != scanned[i] {
			return fmt.Errorf("%w: symbol %d is %q, committed as %q",
				ErrRegistryChanged, scanned[i].ID, scanned[i].Symbol, committed[i].Symbol)
		}
	}
	return nil
}

func (in *Ingestor) ingestFiles(ctx context.Context, reg *registry.Registry, cp Checkpoint, res Result) (Result, error) {
	start := time.Now()

	for i := cp.FilesDone; i < len(reg.Files); i++ {
		if err := ctx.Err(); err != nil {
			res.Counts = cp.Next
			return res, err
		}

		f := reg.Files[i]
		next, err := in.ingestFile(ctx, res.RunID, f, cp)
		if err != nil {
			res.Counts = cp.Next
			return res, err
		}
		cp = next
		res.Files++
	}

	if err := in.store.FinishRun(ctx, res.RunID); err != nil {
		res.Counts = cp.Next
		return res, &PersistError{Op: "finish run", Err: err}
	}

	res.Counts = cp.Next
	in.logger.Info("ingestion complete",
		"run_id", res.RunID,
		"files", res.Files,
		"skipped", res.Skipped,
		"pre_market", cp.Next.PreMarket,
		"market", cp.Next.Regular,
		"after_market", cp.Next.AfterMarket,
		"duration", time.Since(start),
	)
	return res, nil
}

// ingestFile partitions and commits a single file, returning the advanced checkpoint.
func (in *Ingestor) ingestFile(ctx context.Context, runID uuid.UUID, f registry.File, cp Checkpoint) (Checkpoint, error) {
	start := time.Now()

	series, err := in.reader.ReadSeries(f.Path)
	if err != nil {
		return cp, fmt.Errorf("read %s: %w", f.Path, err)
	}

	next := cp
	records, err := Partition(f.SymbolID, series, &next.Next)
	if err != nil {
		return cp, fmt.Errorf("partition %s: %w", f.Path, err)
	}
	next.FilesDone++
	next.LastSymbolID = f.SymbolID

	if err := in.store.CommitBatch(ctx, runID, next, records); err != nil {
		return cp, &PersistError{Op: "records", Symbol: f.Symbol, Err: err}
	}

	in.logger.Debug("committed file",
		"symbol", f.Symbol,
		"symbol_id", f.SymbolID,
		"path", f.Path,
		"records", len(records),
		"duration", time.Since(start),
	)
	return next, nil
}
