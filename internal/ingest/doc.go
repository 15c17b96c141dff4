// Package ingest converts per-symbol archive files into session records and
// commits them to the store.
//
// Pipeline:
//   - Registry: scan the data directory, assign symbol IDs, persist symbols once
//   - Partition: timestamp, classify and number every sample of one file
//   - Commit: persist one file's records and advance the run checkpoint atomically
//
// Record IDs are dense per session kind across the whole run. The per-kind
// counters live in Counters, owned by a single Ingestor run, and are stored in
// the run checkpoint after every file so a failed run can be resumed without
// gaps or duplicates.
package ingest
