package db

import (
	"context"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
)

// RecordActivity bumps the daily and weekly counters for one new thread
// or comment in a single statement, creating the row on first activity.
func (s *DB) RecordActivity(ctx context.Context, in entity.RecordActivity) (err error) {
	ctx, span := s.startSpan(ctx, "RecordActivity")
	defer func() { s.endSpan(span, err) }()

	var threads, comments int64
	switch in.Kind {
	case entity.ActivityKindThread:
		threads = 1
	case entity.ActivityKindComment:
		comments = 1
	default:
		return goerror.NewBusiness("activity kind is not supported", goerror.CodeInvalidFormat)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO discussion_activity
			(discussion_id, course_id, daily_threads, daily_comments, weekly_threads, weekly_comments)
		VALUES ($1, $2, $3, $4, $3, $4)
		ON CONFLICT (discussion_id, course_id) DO UPDATE SET
			daily_threads = discussion_activity.daily_threads + $3,
			daily_comments = discussion_activity.daily_comments + $4,
			weekly_threads = discussion_activity.weekly_threads + $3,
			weekly_comments = discussion_activity.weekly_comments + $4,
			updated_at = now()`,
		in.DiscussionID, in.CourseID, threads, comments,
	)
	return s.mapError(err)
}

// ListActiveDiscussions returns activity rows whose counter pair for the
// cadence is non-zero.
func (s *DB) ListActiveDiscussions(ctx context.Context, cadence entity.Cadence) (_ []entity.DiscussionActivity, err error) {
	ctx, span := s.startSpan(ctx, "ListActiveDiscussions")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT discussion_id, course_id, daily_threads, daily_comments,
		       weekly_threads, weekly_comments, updated_at
		FROM discussion_activity
		WHERE daily_threads > 0 OR daily_comments > 0`
	if cadence == entity.CadenceWeekly {
		query = `
		SELECT discussion_id, course_id, daily_threads, daily_comments,
		       weekly_threads, weekly_comments, updated_at
		FROM discussion_activity
		WHERE weekly_threads > 0 OR weekly_comments > 0`
	}

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.DiscussionActivity
	for rows.Next() {
		var a entity.DiscussionActivity
		if err := rows.Scan(
			&a.DiscussionID, &a.CourseID,
			&a.DailyThreads, &a.DailyComments,
			&a.WeeklyThreads, &a.WeeklyComments,
			&a.UpdatedAt,
		); err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, a)
	}

	return items, s.mapError(rows.Err())
}

// ResetActivity zeroes only the counter pair owned by the cadence.
func (s *DB) ResetActivity(ctx context.Context, discussionID, courseID string, cadence entity.Cadence) (err error) {
	ctx, span := s.startSpan(ctx, "ResetActivity")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE discussion_activity
		SET daily_threads = 0, daily_comments = 0, updated_at = now()
		WHERE discussion_id = $1 AND course_id = $2`
	if cadence == entity.CadenceWeekly {
		query = `
		UPDATE discussion_activity
		SET weekly_threads = 0, weekly_comments = 0, updated_at = now()
		WHERE discussion_id = $1 AND course_id = $2`
	}

	_, err = s.conn.Exec(ctx, query, discussionID, courseID)
	return s.mapError(err)
}

// ListDueDiscussionPairs returns the distinct (discussion, course) pairs
// holding at least one monthly subscription whose last digest is older
// than the cutoff.
func (s *DB) ListDueDiscussionPairs(ctx context.Context, before time.Time) (_ []entity.DiscussionActivity, err error) {
	ctx, span := s.startSpan(ctx, "ListDueDiscussionPairs")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT discussion_id, course_id
		FROM digest_subscriptions
		WHERE cadence = $1
		  AND (last_sent_at IS NULL OR last_sent_at <= $2)`,
		entity.CadenceMonthly, before,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.DiscussionActivity
	for rows.Next() {
		var a entity.DiscussionActivity
		if err := rows.Scan(&a.DiscussionID, &a.CourseID); err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, a)
	}

	return items, s.mapError(rows.Err())
}
