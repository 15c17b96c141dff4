package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timcrose/sessionstore/internal/archive"
	"github.com/timcrose/sessionstore/internal/database"
	"github.com/timcrose/sessionstore/internal/ingest"
	"github.com/timcrose/sessionstore/internal/query"
	"github.com/timcrose/sessionstore/internal/version"
)

func newCreateTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create the symbol, session and checkpoint tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			e, closeDB, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := database.CreateTables(ctx, e.pool); err != nil {
				return err
			}
			e.logger.Info("tables created")
			return nil
		},
	}
}

func newIngestCmd() *cobra.Command {
	var resume string

	cmd := &cobra.Command{
		Use:   "ingest [data-dir]",
		Short: "Load every archive file under data-dir into the session tables",
		Long: `Scans data-dir (default: ingest.data_dir) for archive files, commits the symbol
table, then commits each file's records in its own transaction.

A failed run prints its run id; pass it to --resume to continue after the last
committed file with the same record numbering.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			e, closeDB, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			dir := e.cfg.Ingest.DataDir
			if len(args) == 1 {
				dir = args[0]
			}

			reader := archive.NewReader()
			reader.Parallelism = int64(e.cfg.Ingest.Parallelism)

			store := database.NewStore(e.pool, e.logger)
			in := ingest.New(store, reader,
				ingest.WithLogger(e.logger),
				ingest.WithExtension(e.cfg.Ingest.Extension),
			)

			e.logger.Info("starting ingest", version.LogAttrs()...)

			var res ingest.Result
			if resume != "" {
				runID, perr := uuid.Parse(resume)
				if perr != nil {
					return fmt.Errorf("invalid --resume run id: %w", perr)
				}
				res, err = in.Resume(ctx, dir, runID)
			} else {
				res, err = in.Run(ctx, dir)
			}
			if err != nil {
				if res.RunID != uuid.Nil {
					e.logger.Error("ingestion stopped",
						"run_id", res.RunID,
						"files", res.Files,
						"error", err,
					)
					return fmt.Errorf("run %s: %w", res.RunID, err)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ingestSummary(res, store.Stats().Records))
			return nil
		},
	}

	cmd.Flags().StringVar(&resume, "resume", "", "run id of a failed ingestion to continue")
	return cmd
}

// ingestSummary reports what this invocation committed, then the run's totals.
func ingestSummary(res ingest.Result, records int64) string {
	return fmt.Sprintf("run %s: %d symbols; committed %d files, %d records (%d files skipped); "+
		"run totals pre-market %d, market %d, after-market %d",
		res.RunID, res.Symbols, res.Files, records, res.Skipped,
		res.Counts.PreMarket, res.Counts.Regular, res.Counts.AfterMarket)
}

func newQueryCmd() *cobra.Command {
	var (
		symbol  string
		after   string
		minVWAP float64
		maxVWAP float64
		head    int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the example regular-hours query for one symbol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			ts, err := time.ParseInLocation(time.DateTime, after, time.UTC)
			if err != nil {
				return fmt.Errorf("invalid --after: %w", err)
			}

			e, closeDB, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := query.Run(ctx, e.pool, query.Example(symbol, ts, minVWAP, maxVWAP))
			if err != nil {
				return err
			}

			e.logger.Info("query complete", "rows", res.Len())
			if head > 0 {
				res = res.Head(head)
			}
			_, err = res.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "AA", "ticker symbol")
	cmd.Flags().StringVar(&after, "after", "2009-10-30 15:45:20", "only seconds after this time (YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().Float64Var(&minVWAP, "min-vwap", 0.964, "minimum vwap_pct")
	cmd.Flags().Float64Var(&maxVWAP, "max-vwap", 0.965, "maximum vwap_pct")
	cmd.Flags().IntVar(&head, "head", 5, "print only the first n rows (0 = all)")
	return cmd
}

func newDropTablesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "drop-tables [table...]",
		Short: "Drop the named tables, or every managed table with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("pass table names or --all")
			}

			ctx, cancel := signalContext()
			defer cancel()

			e, closeDB, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if all {
				err = database.DropTables(ctx, e.pool, database.AllTableNames()...)
			} else {
				err = dropNamed(ctx, e, args)
			}
			if err != nil {
				return err
			}
			e.logger.Info("tables dropped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "drop every table managed by sessionstore")
	return cmd
}

func newListTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tables",
		Short: "List the tables in the connected database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			e, closeDB, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			names, err := database.ExistingTables(ctx, e.pool)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
