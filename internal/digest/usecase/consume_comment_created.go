package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/campushq/forumdigest/internal/pkg/idempotency"
	"github.com/campushq/forumdigest/internal/pkg/valueobject"
	"github.com/samber/lo"
)

type ConsumeCommentCreatedInput struct {
	EventID         string
	CommentID       string
	ParentCommentID string
	ThreadID        string
	ThreadAuthorID  int64
	DiscussionID    string
	CourseID        string
	AuthorID        int64
	AuthorUsername  string
	Body            string
}

// ConsumeCommentCreated handles one forum comment.created event: it
// bumps the activity counters and notifies cadence=always subscribers,
// minus the comment author. A subscriber without the comment_created
// flag is still notified when own_comment_created is set and the reply
// landed on their thread or their comment.
func (s *Usecase) ConsumeCommentCreated(ctx context.Context, in ConsumeCommentCreatedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeCommentCreated")
	defer span.End()

	err := s.idem.Exec(ctx, "forum_event:"+in.EventID, func(ctx context.Context) error {
		if err := s.repoDB.RecordActivity(ctx, entity.RecordActivity{
			DiscussionID: in.DiscussionID,
			CourseID:     in.CourseID,
			Kind:         entity.ActivityKindComment,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo record comment activity", "discussion_id", in.DiscussionID, "error", err)
			return err
		}

		return s.notifyCommentCreated(ctx, in)
	})
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.InfoContext(ctx, "skipping duplicate comment created event", "event_id", in.EventID)
		return nil
	}

	return err
}

func (s *Usecase) notifyCommentCreated(ctx context.Context, in ConsumeCommentCreatedInput) error {
	subs, err := s.repoDB.ListAlwaysSubscribers(ctx, in.DiscussionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list always subscribers", "discussion_id", in.DiscussionID, "error", err)
		return err
	}

	subs = lo.Filter(subs, func(sub entity.Subscription, _ int) bool {
		return sub.UserID != in.AuthorID
	})
	if len(subs) == 0 {
		return nil
	}

	var parentAuthorID int64
	if in.ParentCommentID != "" {
		parent, err := s.repoForum.GetComment(ctx, in.ParentCommentID)
		if err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to fetch parent comment", "comment_id", in.ParentCommentID, "error", err)
			return err
		}
		if parent != nil {
			parentAuthorID = parent.AuthorID
		}
	}

	recipients := lo.Filter(subs, func(sub entity.Subscription, _ int) bool {
		if sub.CommentCreated {
			return true
		}

		return sub.OwnCommentCreated && (in.ThreadAuthorID == sub.UserID || (parentAuthorID != 0 && parentAuthorID == sub.UserID))
	})
	if len(recipients) == 0 {
		return nil
	}

	placementPath := in.DiscussionID
	if placement, err := s.repoCatalog.GetPlacement(ctx, in.CourseID, in.DiscussionID); err == nil {
		placementPath = placement.Path()
	}

	var errs []error
	for _, sub := range recipients {
		data := s.baseEmailTemplateData()
		data["author_username"] = in.AuthorUsername
		data["comment_body"] = in.Body
		data["placement_path"] = placementPath
		data["preferences_url"] = s.preferencesURL(sub.UserID, sub.Email, sub.DiscussionID)

		body, err := s.renderTemplate("immediate_comment", immediateCommentTemplate, data)
		if err != nil {
			slog.ErrorContext(ctx, "failed to render immediate comment email", "user_id", sub.UserID, "error", err)
			errs = append(errs, err)
			continue
		}

		if err := s.enqueueDigest(ctx, enqueueDigestInput{
			UserID:       sub.UserID,
			Email:        sub.Email,
			DiscussionID: sub.DiscussionID,
			CourseID:     sub.CourseID,
			Kind:         entity.DigestKindImmediate,
			Cadence:      entity.CadenceAlways,
			Subject:      "New reply in a thread you follow",
			HTMLBody:     body,
			Data:         valueobject.JSONMap{"thread_id": in.ThreadID, "comment_id": in.CommentID},
		}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
