package entity

import "time"

type Subscription struct {
	ID                int64
	UserID            int64
	Email             string
	DiscussionID      string
	CourseID          string
	Cadence           Cadence
	ThreadCreated     bool
	CommentCreated    bool
	OwnCommentCreated bool
	LastSentAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type UpsertSubscription struct {
	ID                int64
	UserID            int64
	Email             string
	DiscussionID      string
	CourseID          string
	Cadence           Cadence
	ThreadCreated     bool
	CommentCreated    bool
	OwnCommentCreated bool
}

// Due reports whether the subscription's last digest is old enough for a
// new one at the given cadence window.
func (s Subscription) Due(now time.Time) bool {
	if !s.Cadence.IsBatch() {
		return false
	}
	if s.LastSentAt == nil {
		return true
	}

	return !s.LastSentAt.After(now.Add(-s.Cadence.Window()))
}
