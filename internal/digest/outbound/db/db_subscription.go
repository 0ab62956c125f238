package db

import (
	"context"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `id, user_id, email, discussion_id, course_id, cadence,
	thread_created, comment_created, own_comment_created, last_sent_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (entity.Subscription, error) {
	var sub entity.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Email,
		&sub.DiscussionID,
		&sub.CourseID,
		&sub.Cadence,
		&sub.ThreadCreated,
		&sub.CommentCreated,
		&sub.OwnCommentCreated,
		&sub.LastSentAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	return sub, err
}

func (s *DB) UpsertSubscription(ctx context.Context, in entity.UpsertSubscription) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertSubscription")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO digest_subscriptions
			(id, user_id, email, discussion_id, course_id, cadence,
			 thread_created, comment_created, own_comment_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, discussion_id) DO UPDATE SET
			email = EXCLUDED.email,
			course_id = EXCLUDED.course_id,
			cadence = EXCLUDED.cadence,
			thread_created = EXCLUDED.thread_created,
			comment_created = EXCLUDED.comment_created,
			own_comment_created = EXCLUDED.own_comment_created,
			updated_at = now()`,
		in.ID, in.UserID, in.Email, in.DiscussionID, in.CourseID, in.Cadence,
		in.ThreadCreated, in.CommentCreated, in.OwnCommentCreated,
	)
	return s.mapError(err)
}

func (s *DB) GetSubscription(ctx context.Context, userID int64, discussionID string) (_ *entity.Subscription, err error) {
	ctx, span := s.startSpan(ctx, "GetSubscription")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM digest_subscriptions
		WHERE user_id = $1 AND discussion_id = $2`,
		userID, discussionID,
	)

	sub, err := scanSubscription(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &sub, nil
}

func (s *DB) ListAlwaysSubscribers(ctx context.Context, discussionID string) (_ []entity.Subscription, err error) {
	ctx, span := s.startSpan(ctx, "ListAlwaysSubscribers")
	defer func() { s.endSpan(span, err) }()

	return s.listSubscriptions(ctx, `
		SELECT `+subscriptionColumns+`
		FROM digest_subscriptions
		WHERE discussion_id = $1 AND cadence = $2`,
		discussionID, entity.CadenceAlways,
	)
}

func (s *DB) ListDueSubscribers(ctx context.Context, discussionID string, cadence entity.Cadence, before time.Time) (_ []entity.Subscription, err error) {
	ctx, span := s.startSpan(ctx, "ListDueSubscribers")
	defer func() { s.endSpan(span, err) }()

	return s.listSubscriptions(ctx, `
		SELECT `+subscriptionColumns+`
		FROM digest_subscriptions
		WHERE discussion_id = $1 AND cadence = $2
		  AND (last_sent_at IS NULL OR last_sent_at <= $3)`,
		discussionID, cadence, before,
	)
}

func (s *DB) listSubscriptions(ctx context.Context, query string, args ...any) ([]entity.Subscription, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var subs []entity.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		subs = append(subs, sub)
	}

	return subs, s.mapError(rows.Err())
}

func (s *DB) TouchLastSent(ctx context.Context, subscriptionIDs []int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "TouchLastSent")
	defer func() { s.endSpan(span, err) }()

	if len(subscriptionIDs) == 0 {
		return nil
	}

	_, err = s.conn.Exec(ctx, `
		UPDATE digest_subscriptions
		SET last_sent_at = $1, updated_at = now()
		WHERE id = ANY($2)`,
		at, subscriptionIDs,
	)
	return s.mapError(err)
}
