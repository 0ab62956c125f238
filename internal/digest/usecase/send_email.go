package usecase

import (
	"context"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/mail"
	"github.com/campushq/forumdigest/internal/pkg/valueobject"
	"github.com/sethvargo/go-retry"
)

type ConsumeDigestEmailInput struct {
	DeliveryLogID int64
	UserID        int64
	Email         string
	Subject       string
	HTMLBody      string
}

// ConsumeDigestEmail delivers one queued digest over SMTP with a fixed
// retry schedule and records the outcome on the delivery log. Returning
// nil on terminal failure keeps the broker from redelivering a message
// that already exhausted its retries.
func (s *Usecase) ConsumeDigestEmail(ctx context.Context, in ConsumeDigestEmailInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeDigestEmail")
	defer span.End()

	backoff := retry.WithMaxRetries(
		s.cfg.GetUint64("modules.digest.max_retries"),
		retry.NewConstant(s.cfg.GetSecond("modules.digest.retry_delay")),
	)

	sendErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.repoMail.Send(ctx, mail.Message{
			To:       []string{in.Email},
			Subject:  in.Subject,
			HTMLBody: in.HTMLBody,
		}); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if sendErr == nil {
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
			ID:               in.DeliveryLogID,
			Status:           entity.DeliveryStatusSent,
			ProviderResponse: valueobject.JSONMap{},
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", in.DeliveryLogID, "error", err)
		}
		return nil
	}

	slog.ErrorContext(ctx, "failed to send digest email", "log_id", in.DeliveryLogID, "user_id", in.UserID, "error", sendErr)

	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
		ID:               in.DeliveryLogID,
		Status:           entity.DeliveryStatusFailed,
		ProviderResponse: valueobject.JSONMap{"error": sendErr.Error()},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", in.DeliveryLogID, "error", err)
	}

	return nil
}
