package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/jackc/pgx/v5"
)

// CreateDigestWithDeliveryLog writes the digest row and its delivery log
// in one transaction and returns the log id.
func (s *DB) CreateDigestWithDeliveryLog(ctx context.Context, d entity.CreateDigest, dl entity.CreateDeliveryLog) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CreateDigestWithDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, `
		INSERT INTO digests (id, user_id, discussion_id, course_id, kind, cadence, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.UserID, d.DiscussionID, d.CourseID, d.Kind, d.Cadence, d.Data,
	); err != nil {
		return 0, s.mapError(err)
	}

	var logID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO digest_delivery_logs (digest_id, status)
		VALUES ($1, $2)
		RETURNING id`,
		dl.DigestID, dl.Status,
	).Scan(&logID); err != nil {
		return 0, s.mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return logID, nil
}

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE digest_delivery_logs
		SET status = $2, provider_response = $3, next_retry_at = $4, updated_at = now()
		WHERE id = $1`,
		u.ID, u.Status, u.ProviderResponse, u.NextRetryAt,
	)
	return s.mapError(err)
}

// EnsureDiscussion registers a discussion the first time a preference
// targets it. Repeat calls are no-ops.
func (s *DB) EnsureDiscussion(ctx context.Context, discussionID, courseID string) (err error) {
	ctx, span := s.startSpan(ctx, "EnsureDiscussion")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO discussions (discussion_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (discussion_id, course_id) DO NOTHING`,
		discussionID, courseID,
	)
	return s.mapError(err)
}
