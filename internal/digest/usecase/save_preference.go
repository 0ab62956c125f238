package usecase

import (
	"context"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
)

type SavePreferenceInput struct {
	UserID            int64  `validate:"required,gt=0"`
	DiscussionID      string `validate:"required"`
	CourseID          string `validate:"required"`
	Cadence           string `validate:"required,lowercase,oneof=never always daily weekly monthly"`
	ThreadCreated     bool
	CommentCreated    bool
	OwnCommentCreated bool
}

// SavePreference upserts one (user, discussion) digest preference. The
// target user must be the authenticated user. Unknown discussions are
// registered on first write.
func (s *Usecase) SavePreference(ctx context.Context, in SavePreferenceInput) error {
	ctx, span := s.startSpan(ctx, "SavePreference")
	defer span.End()

	clm, err := s.requireAuth(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if in.UserID != clm.UserID {
		return goerror.NewBusiness("preference can only be changed by its owner", goerror.CodeForbidden)
	}

	cadence := entity.CadenceFromString(in.Cadence)
	if cadence == entity.CadenceUnknown {
		return goerror.NewBusiness("cadence is not supported", goerror.CodeInvalidFormat)
	}

	if err := s.repoDB.EnsureDiscussion(ctx, in.DiscussionID, in.CourseID); err != nil {
		slog.ErrorContext(ctx, "failed to repo ensure discussion", "discussion_id", in.DiscussionID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.UpsertSubscription(ctx, entity.UpsertSubscription{
		ID:                s.uid.Generate(),
		UserID:            clm.UserID,
		Email:             clm.UserEmail,
		DiscussionID:      in.DiscussionID,
		CourseID:          in.CourseID,
		Cadence:           cadence,
		ThreadCreated:     in.ThreadCreated,
		CommentCreated:    in.CommentCreated,
		OwnCommentCreated: in.OwnCommentCreated,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert subscription", "user_id", clm.UserID, "discussion_id", in.DiscussionID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
