package usecase

import (
	"context"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/valueobject"
	"github.com/campushq/forumdigest/internal/shared/event"
)

type enqueueDigestInput struct {
	UserID       int64
	Email        string
	DiscussionID string
	CourseID     string
	Kind         entity.DigestKind
	Cadence      entity.Cadence
	Subject      string
	HTMLBody     string
	Data         valueobject.JSONMap
}

// enqueueDigest records the digest with a queued delivery log and hands
// the rendered email to the dispatch queue. Delivery itself happens in
// the ConsumeDigestEmail worker.
func (s *Usecase) enqueueDigest(ctx context.Context, in enqueueDigestInput) error {
	digestID := s.uid.Generate()

	logID, err := s.repoDB.CreateDigestWithDeliveryLog(ctx, entity.CreateDigest{
		ID:           digestID,
		UserID:       in.UserID,
		DiscussionID: in.DiscussionID,
		CourseID:     in.CourseID,
		Kind:         in.Kind,
		Cadence:      in.Cadence,
		Data:         in.Data,
	}, entity.CreateDeliveryLog{
		DigestID: digestID,
		Status:   entity.DeliveryStatusQueued,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create digest+log", "user_id", in.UserID, "discussion_id", in.DiscussionID, "error", err)
		return err
	}

	if s.repoArchive != nil {
		if err := s.repoArchive.Put(ctx, digestID, in.UserID, in.HTMLBody); err != nil {
			slog.WarnContext(ctx, "failed to archive digest body", "digest_id", digestID, "error", err)
		}
	}

	if err := s.repoMQ.PublishDigestEmail(ctx, event.DigestEmailMessage{
		DeliveryLogID: logID,
		UserID:        in.UserID,
		Email:         in.Email,
		Subject:       in.Subject,
		HTMLBody:      in.HTMLBody,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish digest email", "log_id", logID, "user_id", in.UserID, "error", err)

		nextRetry := s.clock.Now().Add(s.cfg.GetSecond("modules.digest.retry_delay"))
		if uErr := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
			ID:               logID,
			Status:           entity.DeliveryStatusFailed,
			ProviderResponse: valueobject.JSONMap{"error": err.Error()},
			NextRetryAt:      &nextRetry,
		}); uErr != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", logID, "error", uErr)
		}

		return err
	}

	return nil
}
