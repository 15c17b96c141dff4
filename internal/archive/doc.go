// Package archive reads and writes per-symbol archival files.
//
// Each file is a parquet file holding one row per sampled second
// (vwap_pct, dollar_vol) and a "dates" footer entry listing one YYYYMMDD
// stamp per sampled day, in the same order as the day blocks of rows.
package archive
