package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/timcrose/sessionstore/internal/archive"
	"github.com/timcrose/sessionstore/internal/model"
	"github.com/timcrose/sessionstore/internal/session"
)

// SamplesPerDay is the number of one-second rows per sampled day:
// 2.5h pre-market + 6.5h regular + 4h after-market = 13h.
const SamplesPerDay = 13 * 3600

// DateLayout is the layout of archive date stamps.
const DateLayout = "20060102"

var (
	// ErrDateIndexOutOfRange means a row maps to a day with no date stamp.
	ErrDateIndexOutOfRange = errors.New("date index out of range")

	// ErrBadDate means a date stamp is not a valid YYYYMMDD date.
	ErrBadDate = errors.New("invalid date stamp")
)

// Counters holds the next record ID for each session kind.
type Counters struct {
	PreMarket   int64
	Regular     int64
	AfterMarket int64
}

// Next returns the next ID for kind and advances its counter.
func (c *Counters) Next(kind model.SessionKind) int64 {
	p := c.ptr(kind)
	id := *p
	*p++
	return id
}

// Get returns the next ID for kind without advancing.
func (c Counters) Get(kind model.SessionKind) int64 {
	return *c.ptr(kind)
}

// Total returns the number of IDs assigned across all kinds.
func (c Counters) Total() int64 {
	return c.PreMarket + c.Regular + c.AfterMarket
}

func (c *Counters) ptr(kind model.SessionKind) *int64 {
	switch kind {
	case model.PreMarket:
		return &c.PreMarket
	case model.Regular:
		return &c.Regular
	case model.AfterMarket:
		return &c.AfterMarket
	default:
		panic(fmt.Sprintf("ingest: unknown session kind %d", int(kind)))
	}
}

// ParseDate parses a YYYYMMDD stamp into midnight of that day.
func ParseDate(stamp string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrBadDate, stamp, err)
	}
	return d, nil
}

// SampleTime returns the wall-clock time of row offset within the day starting at date.
func SampleTime(date time.Time, offset int) time.Time {
	return date.Add(session.DayStart + time.Duration(offset)*time.Second)
}

// Partition turns one file's samples into session records for symbolID.
//
// IDs are drawn from counters in row order. Counters are updated only when
// the whole series partitions successfully.
func Partition(symbolID int, series archive.Series, counters *Counters) ([]model.SessionRecord, error) {
	next := *counters
	records := make([]model.SessionRecord, 0, len(series.Rows))

	day := -1
	var date time.Time
	for i, row := range series.Rows {
		d := i / SamplesPerDay
		if d != day {
			if d >= len(series.Dates) {
				return nil, fmt.Errorf("%w: row %d needs day %d, file has %d dates",
					ErrDateIndexOutOfRange, i, d, len(series.Dates))
			}
			parsed, err := ParseDate(series.Dates[d])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			day, date = d, parsed
		}

		ts := SampleTime(date, i-day*SamplesPerDay)
		kind := session.Classify(ts)
		records = append(records, model.SessionRecord{
			Kind:      kind,
			ID:        next.Next(kind),
			VWAPPct:   row[0],
			DollarVol: row[1],
			Timestamp: ts,
			SymbolID:  symbolID,
		})
	}

	*counters = next
	return records, nil
}

// Split groups records by kind, preserving order within each kind.
func Split(records []model.SessionRecord) map[model.SessionKind][]model.SessionRecord {
	out := make(map[model.SessionKind][]model.SessionRecord, len(model.SessionKinds))
	for _, r := range records {
		out[r.Kind] = append(out[r.Kind], r)
	}
	return out
}
