package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/usecase"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/campushq/forumdigest/internal/pkg/messaging"
	"github.com/campushq/forumdigest/internal/pkg/uid"
	"github.com/campushq/forumdigest/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) ThreadCreated(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("digest.inbound.mq").Start(ctx, "ThreadCreated")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: forum thread created", "msg_body", string(body))

	var payload event.ForumThreadCreatedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of forum thread created", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeThreadCreated(ctx, usecase.ConsumeThreadCreatedInput{
		EventID:        payload.EventID,
		ThreadID:       payload.ThreadID,
		DiscussionID:   payload.DiscussionID,
		CourseID:       payload.CourseID,
		AuthorID:       payload.AuthorID,
		AuthorUsername: payload.AuthorUsername,
		Title:          payload.Title,
		Body:           payload.Body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume forum thread created", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) CommentCreated(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("digest.inbound.mq").Start(ctx, "CommentCreated")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: forum comment created", "msg_body", string(body))

	var payload event.ForumCommentCreatedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of forum comment created", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeCommentCreated(ctx, usecase.ConsumeCommentCreatedInput{
		EventID:         payload.EventID,
		CommentID:       payload.CommentID,
		ParentCommentID: payload.ParentCommentID,
		ThreadID:        payload.ThreadID,
		ThreadAuthorID:  payload.ThreadAuthorID,
		DiscussionID:    payload.DiscussionID,
		CourseID:        payload.CourseID,
		AuthorID:        payload.AuthorID,
		AuthorUsername:  payload.AuthorUsername,
		Body:            payload.Body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume forum comment created", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) DigestEmail(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("digest.inbound.mq").Start(ctx, "DigestEmail")
	defer span.End()

	body := msg.Body()

	var payload event.DigestEmailMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of digest email", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeDigestEmail(ctx, usecase.ConsumeDigestEmailInput{
		DeliveryLogID: payload.DeliveryLogID,
		UserID:        payload.UserID,
		Email:         payload.Email,
		Subject:       payload.Subject,
		HTMLBody:      payload.HTMLBody,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume digest email", "log_id", payload.DeliveryLogID, "error", err)
		return err
	}

	return nil
}
