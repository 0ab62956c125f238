package entity

import "time"

type DiscussionActivity struct {
	DiscussionID   string
	CourseID       string
	DailyThreads   int64
	DailyComments  int64
	WeeklyThreads  int64
	WeeklyComments int64
	UpdatedAt      time.Time
}

// CountersFor returns the thread and comment counters owned by the
// cadence. Monthly has no counter pair and always reads zero.
func (a DiscussionActivity) CountersFor(c Cadence) (threads, comments int64) {
	switch c {
	case CadenceDaily:
		return a.DailyThreads, a.DailyComments
	case CadenceWeekly:
		return a.WeeklyThreads, a.WeeklyComments
	default:
		return 0, 0
	}
}

type ActivityKind int16

const (
	ActivityKindUnknown ActivityKind = 0
	ActivityKindThread  ActivityKind = 1
	ActivityKindComment ActivityKind = 2
)

func (k ActivityKind) String() string {
	switch k {
	case ActivityKindThread:
		return "thread"
	case ActivityKindComment:
		return "comment"
	default:
		return "unknown"
	}
}

type RecordActivity struct {
	DiscussionID string
	CourseID     string
	Kind         ActivityKind
}
