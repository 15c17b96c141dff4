// Package database manages the PostgreSQL connection and schema, and
// implements the ingestion store on top of pgx.
//
// Tables:
//   - symbols: ticker symbols with application-assigned IDs
//   - pre_market_hours, market_hours, after_market_hours: one row per second
//   - ingest_checkpoints: per-run progress used to resume failed ingestions
//
// Session records are bulk loaded with COPY, one transaction per archive file.
package database
