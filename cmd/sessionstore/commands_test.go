package main

import (
	"testing"

	"github.com/google/uuid"

	"github.com/timcrose/sessionstore/internal/ingest"
)

func TestIngestSummary_Resume(t *testing.T) {
	runID := uuid.MustParse("6f1c2a9e-0b7d-4c55-9e1a-2d3f4b5c6d7e")
	res := ingest.Result{
		RunID:   runID,
		Symbols: 3,
		Files:   2,
		Skipped: 1,
		Counts:  ingest.Counters{PreMarket: 27000, Regular: 70203, AfterMarket: 43197},
	}

	// Records and files both describe this invocation; the counters cover the run.
	want := "run 6f1c2a9e-0b7d-4c55-9e1a-2d3f4b5c6d7e: 3 symbols; committed 2 files, 93600 records (1 files skipped); " +
		"run totals pre-market 27000, market 70203, after-market 43197"
	if got := ingestSummary(res, 2*ingest.SamplesPerDay); got != want {
		t.Errorf("ingestSummary() =\n%s\nwant\n%s", got, want)
	}
}
