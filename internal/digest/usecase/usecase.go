package usecase

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/clock"
	"github.com/campushq/forumdigest/internal/pkg/config"
	"github.com/campushq/forumdigest/internal/pkg/goroutine"
	"github.com/campushq/forumdigest/internal/pkg/idempotency"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/campushq/forumdigest/internal/pkg/jwt"
	"github.com/campushq/forumdigest/internal/pkg/mail"
	"github.com/campushq/forumdigest/internal/pkg/uid"
	"github.com/campushq/forumdigest/internal/pkg/validator"
	"github.com/campushq/forumdigest/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	UpsertSubscription(ctx context.Context, in entity.UpsertSubscription) error
	GetSubscription(ctx context.Context, userID int64, discussionID string) (*entity.Subscription, error)
	ListAlwaysSubscribers(ctx context.Context, discussionID string) ([]entity.Subscription, error)
	ListDueSubscribers(ctx context.Context, discussionID string, cadence entity.Cadence, before time.Time) ([]entity.Subscription, error)
	TouchLastSent(ctx context.Context, subscriptionIDs []int64, at time.Time) error

	RecordActivity(ctx context.Context, in entity.RecordActivity) error
	ListActiveDiscussions(ctx context.Context, cadence entity.Cadence) ([]entity.DiscussionActivity, error)
	ResetActivity(ctx context.Context, discussionID, courseID string, cadence entity.Cadence) error
	ListDueDiscussionPairs(ctx context.Context, before time.Time) ([]entity.DiscussionActivity, error)

	CreateDigestWithDeliveryLog(ctx context.Context, d entity.CreateDigest, dl entity.CreateDeliveryLog) (int64, error)
	UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) error
	EnsureDiscussion(ctx context.Context, discussionID, courseID string) error
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoMQ interface {
	PublishDigestEmail(ctx context.Context, msg event.DigestEmailMessage) error
}

type repoForum interface {
	ListThreads(ctx context.Context, discussionID, courseID string, userID int64) (entity.ThreadPage, error)
	GetThread(ctx context.Context, threadID string, skip, limit int64) (*entity.Thread, int64, error)
	GetComment(ctx context.Context, commentID string) (*entity.Comment, error)
}

type repoCatalog interface {
	GetCourse(ctx context.Context, courseID string) (*entity.Course, error)
	GetPlacement(ctx context.Context, courseID, discussionID string) (*entity.Placement, error)
}

type repoArchive interface {
	Put(ctx context.Context, digestID, userID int64, htmlBody string) error
}

type Usecase struct {
	repoDB      repoDB
	repoMail    repoMail
	repoMQ      repoMQ
	repoForum   repoForum
	repoCatalog repoCatalog
	repoArchive repoArchive
	idem        idempotency.Idempotency
	cfg         config.Config
	uid         uid.NumberID
	clock       clock.Clocker
	validator   validator.Validator
	jwt         jwt.JWT
	ins         instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	RepoMail    repoMail
	RepoMQ      repoMQ
	RepoForum   repoForum
	RepoCatalog repoCatalog
	RepoArchive repoArchive
	Idempotency idempotency.Idempotency
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Validator   validator.Validator
	JWT         jwt.JWT
	Instrument  instrument.Instrumentation
}

func NewDigest(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:      dep.RepoDB,
		repoMail:    dep.RepoMail,
		repoMQ:      dep.RepoMQ,
		repoForum:   dep.RepoForum,
		repoCatalog: dep.RepoCatalog,
		repoArchive: dep.RepoArchive,
		idem:        dep.Idempotency,
		cfg:         dep.Config,
		uid:         dep.UID,
		clock:       dep.Clock,
		validator:   dep.Validator,
		jwt:         dep.JWT,
		ins:         dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("digest.usecase").Start(ctx, name)
}

// cycleManager caps the per-discussion fan-out of one batch cycle.
func (s *Usecase) cycleManager() *goroutine.Manager {
	return goroutine.NewManager(s.cfg.GetInt("modules.digest.cycle_concurrency"))
}

func (s *Usecase) renderTemplate(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) platformName() string {
	if v := s.cfg.GetString("platform.name"); v != "" {
		return v
	}

	return "CampusHQ"
}

func (s *Usecase) siteURL() string {
	if v := s.cfg.GetString("platform.site_url"); v != "" {
		return v
	}

	return "https://campushq.example.com"
}

// preferencesURL builds the signed deep link to the preference page so
// recipients can change or stop their digests without logging in first.
func (s *Usecase) preferencesURL(userID int64, email, discussionID string) string {
	link := s.siteURL() + "/digest/preferences?discussion_id=" + discussionID

	token, err := s.jwt.Generate(userID, email)
	if err != nil {
		return link
	}

	return link + "&token=" + token
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"platform_name": s.platformName(),
		"site_url":      s.siteURL(),
		"year":          s.clock.Now().Format("2006"),
	}
}
