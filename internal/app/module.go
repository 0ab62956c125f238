package app

import (
	"log/slog"
	"os"

	"github.com/campushq/forumdigest/internal/digest"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.digest.enabled") {
		if err := digest.New(digest.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Messaging:   a.messaging,
			Storage:     a.storage,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Router:      a.router,
			Mail:        a.mail,
			JWT:         a.jwt,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module digest", "error", err)
			os.Exit(1)
		}
	}
}
