package archive

// Extension is the file extension of archive files.
const Extension = ".parquet"

// DatesKey is the footer key-value entry holding the comma-separated date stamps.
const DatesKey = "dates"

// Series is the raw content of one archive file.
type Series struct {
	Rows  [][2]float64 // [vwap_pct, dollar_vol] per second
	Dates []string     // YYYYMMDD, one per day block
}

// Sample is a single parquet row.
type Sample struct {
	VWAPPct   float64 `parquet:"name=vwap_pct, type=DOUBLE, encoding=PLAIN"`
	DollarVol float64 `parquet:"name=dollar_vol, type=DOUBLE, encoding=PLAIN"`
}
