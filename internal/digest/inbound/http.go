package inbound

import (
	"github.com/campushq/forumdigest/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/digest/preferences", end.SavePreference)
	r.GET("/api/v1/digest/preferences", end.GetPreference)

	r.POST("/api/v1/digest/cycles/:cadence", end.RunCycle)
}
