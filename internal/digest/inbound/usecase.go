package inbound

import (
	"context"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/digest/usecase"
)

type ucConsumer interface {
	ConsumeThreadCreated(ctx context.Context, in usecase.ConsumeThreadCreatedInput) error
	ConsumeCommentCreated(ctx context.Context, in usecase.ConsumeCommentCreatedInput) error
	ConsumeDigestEmail(ctx context.Context, in usecase.ConsumeDigestEmailInput) error
}

type uc interface {
	ucConsumer

	SavePreference(ctx context.Context, in usecase.SavePreferenceInput) error
	GetPreference(ctx context.Context, in usecase.GetPreferenceInput) (*entity.Subscription, error)
	RunCycle(ctx context.Context, in usecase.RunCycleInput) (entity.CycleStats, error)
}
