package inbound

import (
	"time"

	"github.com/campushq/forumdigest/internal/digest/usecase"
	"github.com/campushq/forumdigest/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// SavePreference upserts the caller's digest preference for one
// discussion.
func (h *HTTPEndpoint) SavePreference(r *router.Request) (any, error) {
	var req SavePreferenceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SavePreference(r.Context(), usecase.SavePreferenceInput{
		UserID:            req.UserID,
		DiscussionID:      req.DiscussionID,
		CourseID:          req.CourseID,
		Cadence:           req.Cadence,
		ThreadCreated:     req.ThreadCreated,
		CommentCreated:    req.CommentCreated,
		OwnCommentCreated: req.OwnCommentCreated,
	})
}

// GetPreference returns the caller's digest preference for one
// discussion, defaulting to cadence never when none was saved.
func (h *HTTPEndpoint) GetPreference(r *router.Request) (any, error) {
	sub, err := h.uc.GetPreference(r.Context(), usecase.GetPreferenceInput{
		DiscussionID: r.GetQuery("discussion_id"),
		CourseID:     r.GetQuery("course_id"),
	})
	if err != nil {
		return nil, err
	}

	resp := PreferenceResponse{
		UserID:            sub.UserID,
		DiscussionID:      sub.DiscussionID,
		CourseID:          sub.CourseID,
		Cadence:           sub.Cadence.String(),
		ThreadCreated:     sub.ThreadCreated,
		CommentCreated:    sub.CommentCreated,
		OwnCommentCreated: sub.OwnCommentCreated,
	}
	if sub.LastSentAt != nil {
		resp.LastSentAt = sub.LastSentAt.Format(time.RFC3339)
	}

	return resp, nil
}

// RunCycle triggers one batch digest cycle. Scheduling discipline lives
// outside the service (cron hits this endpoint).
func (h *HTTPEndpoint) RunCycle(r *router.Request) (any, error) {
	cadence := r.GetParam("cadence")

	stats, err := h.uc.RunCycle(r.Context(), usecase.RunCycleInput{Cadence: cadence})
	if err != nil {
		return nil, err
	}

	return CycleStatsResponse{
		Cadence:     cadence,
		Discussions: stats.Discussions,
		Dispatched:  stats.Dispatched,
		Skipped:     stats.Skipped,
		Failed:      stats.Failed,
	}, nil
}
