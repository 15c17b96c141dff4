package model

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Relational Types
// -----------------------------------------------------------------------------

// Symbol is a ticker symbol (e.g. "AAPL") and its integer surrogate key.
// Session records reference symbols by ID since integers are cheaper to store.
type Symbol struct {
	ID     int    // Primary key, position in the sorted symbol list
	Symbol string // Ticker, case preserved from the source file name
}

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// SessionKind identifies which trading session bucket a sample belongs to.
type SessionKind int

const (
	PreMarket SessionKind = iota
	Regular
	AfterMarket
)

// SessionKinds lists every kind in table creation order.
var SessionKinds = []SessionKind{PreMarket, Regular, AfterMarket}

// String returns a short human-readable name.
func (k SessionKind) String() string {
	switch k {
	case PreMarket:
		return "pre_market"
	case Regular:
		return "market"
	case AfterMarket:
		return "after_market"
	default:
		return fmt.Sprintf("SessionKind(%d)", int(k))
	}
}

// Table returns the descriptor of the table holding records of this kind.
func (k SessionKind) Table() Table {
	switch k {
	case PreMarket:
		return PreMarketHoursTable
	case Regular:
		return MarketHoursTable
	case AfterMarket:
		return AfterMarketHoursTable
	default:
		panic(fmt.Sprintf("model: unknown session kind %d", int(k)))
	}
}

// SessionRecord is one second of trading within a single session bucket.
//
// Each kind has its own identifier space: ID is unique and dense within Kind only.
type SessionRecord struct {
	Kind      SessionKind
	ID        int64     // Primary key within the kind's table
	VWAPPct   float64   // Volume-weighted average price as a ratio to the 09:30 price (1.01 = 1% above)
	DollarVol float64   // Sum of price * size over all trades in the second
	Timestamp time.Time // Wall-clock second, naive (UTC location)
	SymbolID  int       // Foreign key to Symbol
}
