package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/idempotency"
	"github.com/campushq/forumdigest/internal/pkg/valueobject"
	"github.com/samber/lo"
)

type ConsumeThreadCreatedInput struct {
	EventID        string
	ThreadID       string
	DiscussionID   string
	CourseID       string
	AuthorID       int64
	AuthorUsername string
	Title          string
	Body           string
}

// ConsumeThreadCreated handles one forum thread.created event: it bumps
// the activity counters and notifies cadence=always subscribers, minus
// the thread author. Redelivered events are dropped by event id.
func (s *Usecase) ConsumeThreadCreated(ctx context.Context, in ConsumeThreadCreatedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeThreadCreated")
	defer span.End()

	err := s.idem.Exec(ctx, "forum_event:"+in.EventID, func(ctx context.Context) error {
		if err := s.repoDB.RecordActivity(ctx, entity.RecordActivity{
			DiscussionID: in.DiscussionID,
			CourseID:     in.CourseID,
			Kind:         entity.ActivityKindThread,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo record thread activity", "discussion_id", in.DiscussionID, "error", err)
			return err
		}

		return s.notifyThreadCreated(ctx, in)
	})
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.InfoContext(ctx, "skipping duplicate thread created event", "event_id", in.EventID)
		return nil
	}

	return err
}

func (s *Usecase) notifyThreadCreated(ctx context.Context, in ConsumeThreadCreatedInput) error {
	subs, err := s.repoDB.ListAlwaysSubscribers(ctx, in.DiscussionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list always subscribers", "discussion_id", in.DiscussionID, "error", err)
		return err
	}

	recipients := lo.Filter(subs, func(sub entity.Subscription, _ int) bool {
		return sub.UserID != in.AuthorID && sub.ThreadCreated
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
		data["thread_title"] = in.Title
		data["thread_body"] = in.Body
		data["placement_path"] = placementPath
		data["preferences_url"] = s.preferencesURL(sub.UserID, sub.Email, sub.DiscussionID)

		body, err := s.renderTemplate("immediate_thread", immediateThreadTemplate, data)
		if err != nil {
			slog.ErrorContext(ctx, "failed to render immediate thread email", "user_id", sub.UserID, "error", err)
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
			Subject:      "New thread: " + in.Title,
			HTMLBody:     body,
			Data:         valueobject.JSONMap{"thread_id": in.ThreadID},
		}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
