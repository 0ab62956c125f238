package digest

import (
	"context"

	"github.com/campushq/forumdigest/internal/digest/inbound"
	"github.com/campushq/forumdigest/internal/digest/outbound/archive"
	"github.com/campushq/forumdigest/internal/digest/outbound/catalog"
	"github.com/campushq/forumdigest/internal/digest/outbound/db"
	"github.com/campushq/forumdigest/internal/digest/outbound/email"
	"github.com/campushq/forumdigest/internal/digest/outbound/forum"
	"github.com/campushq/forumdigest/internal/digest/outbound/mq"
	"github.com/campushq/forumdigest/internal/digest/usecase"
	"github.com/campushq/forumdigest/internal/pkg/clock"
	"github.com/campushq/forumdigest/internal/pkg/config"
	"github.com/campushq/forumdigest/internal/pkg/goroutine"
	"github.com/campushq/forumdigest/internal/pkg/idempotency"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/campushq/forumdigest/internal/pkg/jwt"
	"github.com/campushq/forumdigest/internal/pkg/mail"
	"github.com/campushq/forumdigest/internal/pkg/messaging"
	"github.com/campushq/forumdigest/internal/pkg/router"
	"github.com/campushq/forumdigest/internal/pkg/storage"
	"github.com/campushq/forumdigest/internal/pkg/uid"
	"github.com/campushq/forumdigest/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	CacheConn   *redis.Client
	Messaging   messaging.Messaging
	Storage     storage.Storage
	Config      config.Config
	Instrument  instrument.Instrumentation
	UID         uid.NumberID
	UUID        uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	Mail        mail.Mail
	JWT         jwt.JWT
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	dbDigest := db.NewDB(dep.DBConn, dep.Instrument)
	repoMail := email.New(dep.Mail, dep.Instrument)
	repoMQ := mq.NewMessaging(dep.Messaging, dep.Instrument)
	repoForum := forum.NewClient(dep.Config, dep.Instrument)
	repoCatalog := catalog.NewClient(dep.Config, dep.CacheConn, dep.Instrument)

	ucDep := usecase.Dependency{
		RepoDB:      dbDigest,
		RepoMail:    repoMail,
		RepoMQ:      repoMQ,
		RepoForum:   repoForum,
		RepoCatalog: repoCatalog,
		Idempotency: dep.Idempotency,
		Config:      dep.Config,
		UID:         dep.UID,
		Clock:       dep.Clock,
		Validator:   dep.Validator,
		JWT:         dep.JWT,
		Instrument:  dep.Instrument,
	}

	if dep.Storage != nil {
		if bucket := dep.Config.GetString("modules.digest.archive_bucket"); bucket != "" {
			ucDep.RepoArchive = archive.New(dep.Storage, bucket, dep.Instrument)
		}
	}

	uc := usecase.NewDigest(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
