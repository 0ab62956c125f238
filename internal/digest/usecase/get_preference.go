package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
)

type GetPreferenceInput struct {
	DiscussionID string `validate:"required"`
	CourseID     string `validate:"required"`
}

// GetPreference returns the caller's preference for one discussion. A
// user who never subscribed gets the default (cadence never, all flags
// off), not a not-found error.
func (s *Usecase) GetPreference(ctx context.Context, in GetPreferenceInput) (*entity.Subscription, error) {
	ctx, span := s.startSpan(ctx, "GetPreference")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sub, err := s.repoDB.GetSubscription(ctx, clm.UserID, in.DiscussionID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &entity.Subscription{
			UserID:       clm.UserID,
			Email:        clm.UserEmail,
			DiscussionID: in.DiscussionID,
			CourseID:     in.CourseID,
			Cadence:      entity.CadenceNever,
		}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get subscription", "user_id", clm.UserID, "discussion_id", in.DiscussionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return sub, nil
}
