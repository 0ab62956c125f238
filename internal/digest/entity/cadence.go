package entity

import (
	"strings"
	"time"
)

type Cadence int16

const (
	CadenceUnknown Cadence = 0
	CadenceNever   Cadence = 1
	CadenceAlways  Cadence = 2
	CadenceDaily   Cadence = 3
	CadenceWeekly  Cadence = 4
	CadenceMonthly Cadence = 5
)

func CadenceFromString(raw string) Cadence {
	switch strings.TrimSpace(raw) {
	case "never":
		return CadenceNever
	case "always":
		return CadenceAlways
	case "daily":
		return CadenceDaily
	case "weekly":
		return CadenceWeekly
	case "monthly":
		return CadenceMonthly
	default:
		return CadenceUnknown
	}
}

func (c Cadence) String() string {
	switch c {
	case CadenceNever:
		return "never"
	case CadenceAlways:
		return "always"
	case CadenceDaily:
		return "daily"
	case CadenceWeekly:
		return "weekly"
	case CadenceMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// IsBatch reports whether the cadence participates in scheduled cycles.
func (c Cadence) IsBatch() bool {
	return c == CadenceDaily || c == CadenceWeekly || c == CadenceMonthly
}

// HasCounters reports whether the cadence owns a counter pair in the
// activity store. Monthly runs on the last-sent window instead.
func (c Cadence) HasCounters() bool {
	return c == CadenceDaily || c == CadenceWeekly
}

// Window returns the minimum interval between two digests of the cadence.
func (c Cadence) Window() time.Duration {
	switch c {
	case CadenceDaily:
		return 24 * time.Hour
	case CadenceWeekly:
		return 7 * 24 * time.Hour
	case CadenceMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}
