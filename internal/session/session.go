// Package session classifies wall-clock seconds into trading session buckets.
//
// Boundaries are fixed exchange-local clock times:
//
//	pre-market    [07:00:00, 09:30:00)
//	regular       [09:30:00, 16:00:00]
//	after-market  (16:00:00, end of sampled day]
package session

import (
	"time"

	"github.com/timcrose/sessionstore/internal/model"
)

// Boundaries as offsets from midnight.
const (
	DayStart     = 7 * time.Hour
	RegularOpen  = 9*time.Hour + 30*time.Minute
	RegularClose = 16 * time.Hour
)

// Classify returns the session bucket for t. Only the time of day is used.
// Times before DayStart are reported as PreMarket.
func Classify(t time.Time) model.SessionKind {
	tod := TimeOfDay(t)
	switch {
	case tod < RegularOpen:
		return model.PreMarket
	case tod <= RegularClose:
		return model.Regular
	default:
		return model.AfterMarket
	}
}

// TimeOfDay returns the duration since midnight of t's wall clock.
func TimeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
