package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/campushq/forumdigest/internal/pkg/valueobject"
	"github.com/samber/lo"
	"go.uber.org/atomic"
)

type RunCycleInput struct {
	Cadence string `validate:"required,lowercase,oneof=daily weekly monthly"`
}

type cycleCounters struct {
	discussions atomic.Int64
	dispatched  atomic.Int64
	skipped     atomic.Int64
	failed      atomic.Int64
}

func (c *cycleCounters) stats() entity.CycleStats {
	return entity.CycleStats{
		Discussions: c.discussions.Load(),
		Dispatched:  c.dispatched.Load(),
		Skipped:     c.skipped.Load(),
		Failed:      c.failed.Load(),
	}
}

// RunCycle executes one batch digest cycle. Discussions are processed
// in parallel and isolated from each other: one failing discussion
// neither stops the cycle nor blocks the others. Counters for a
// discussion are reset only after all of its notifications were
// enqueued or failed terminally, so a crashed cycle re-sends rather
// than drops.
func (s *Usecase) RunCycle(ctx context.Context, in RunCycleInput) (entity.CycleStats, error) {
	ctx, span := s.startSpan(ctx, "RunCycle")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return entity.CycleStats{}, goerror.NewInvalidInput(err)
	}

	cadence := entity.CadenceFromString(in.Cadence)
	now := s.clock.Now()
	counters := &cycleCounters{}

	var items []entity.DiscussionActivity
	var err error
	if cadence.HasCounters() {
		items, err = s.repoDB.ListActiveDiscussions(ctx, cadence)
	} else {
		items, err = s.repoDB.ListDueDiscussionPairs(ctx, now.Add(-cadence.Window()))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list cycle discussions", "cadence", cadence.String(), "error", err)
		return entity.CycleStats{}, goerror.NewServer(err)
	}

	mgr := s.cycleManager()
	for _, item := range items {
		counters.discussions.Inc()
		mgr.Go(ctx, func(ctx context.Context) error {
			if cadence.HasCounters() {
				return s.runCounterDiscussion(ctx, item, cadence, now, counters)
			}
			return s.runLegacyDiscussion(ctx, item, now, counters)
		})
	}

	if err := mgr.Wait(); err != nil {
		slog.ErrorContext(ctx, "digest cycle finished with errors", "cadence", cadence.String(), "error", err)
	}

	stats := counters.stats()
	slog.InfoContext(ctx, "digest cycle finished",
		"cadence", cadence.String(),
		"discussions", stats.Discussions,
		"dispatched", stats.Dispatched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	return stats, nil
}

// resolveDisplay loads course and placement metadata for one
// discussion. A nil placement with nil error means the discussion must
// be skipped without touching its counters.
func (s *Usecase) resolveDisplay(ctx context.Context, item entity.DiscussionActivity, now time.Time) (*entity.Course, *entity.Placement, error) {
	course, err := s.repoCatalog.GetCourse(ctx, item.CourseID)
	if err != nil {
		slog.WarnContext(ctx, "skipping discussion, course unresolvable", "discussion_id", item.DiscussionID, "course_id", item.CourseID, "error", err)
		return nil, nil, nil
	}
	if course.Archived(now) {
		slog.InfoContext(ctx, "skipping discussion, course archived", "discussion_id", item.DiscussionID, "course_id", item.CourseID)
		return nil, nil, nil
	}

	placement, err := s.repoCatalog.GetPlacement(ctx, item.CourseID, item.DiscussionID)
	if err != nil {
		slog.WarnContext(ctx, "skipping discussion, placement unresolvable", "discussion_id", item.DiscussionID, "course_id", item.CourseID, "error", err)
		return nil, nil, nil
	}

	return course, placement, nil
}

func (s *Usecase) runCounterDiscussion(ctx context.Context, item entity.DiscussionActivity, cadence entity.Cadence, now time.Time, counters *cycleCounters) error {
	threads, comments := item.CountersFor(cadence)
	if threads == 0 && comments == 0 {
		counters.skipped.Inc()
		return nil
	}

	course, placement, err := s.resolveDisplay(ctx, item, now)
	if err != nil || placement == nil {
		counters.skipped.Inc()
		return err
	}

	ref := now.Add(s.cfg.GetMinute("modules.digest.window_grace"))
	subs, err := s.repoDB.ListDueSubscribers(ctx, item.DiscussionID, cadence, ref.Add(-cadence.Window()))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list due subscribers", "discussion_id", item.DiscussionID, "error", err)
		counters.failed.Inc()
		return err
	}

	// Rows that slipped past the store's last_sent_at filter must not
	// double-send.
	subs = lo.Filter(subs, func(sub entity.Subscription, _ int) bool {
		return sub.Due(ref)
	})

	var sentIDs []int64
	for _, sub := range subs {
		payload := entity.DigestPayload{
			UserID:         sub.UserID,
			Email:          sub.Email,
			DiscussionID:   item.DiscussionID,
			CourseID:       item.CourseID,
			Cadence:        cadence,
			NewThreads:     threads,
			NewComments:    comments,
			CourseName:     course.Name,
			CourseImageURL: course.ImageURL,
			PlacementName:  placement.DisplayName,
			PlacementPath:  placement.Path(),
			PlatformName:   s.platformName(),
			SiteURL:        s.siteURL(),
			PreferencesURL: s.preferencesURL(sub.UserID, sub.Email, sub.DiscussionID),
		}

		if err := s.enqueueBatchDigest(ctx, sub, payload); err != nil {
			counters.failed.Inc()
			continue
		}

		sentIDs = append(sentIDs, sub.ID)
		counters.dispatched.Inc()
	}

	if err := s.repoDB.TouchLastSent(ctx, sentIDs, now); err != nil {
		slog.ErrorContext(ctx, "failed to repo touch last sent", "discussion_id", item.DiscussionID, "error", err)
	}

	// Counters reset once every eligible recipient has been handled,
	// even when there were none.
	if err := s.repoDB.ResetActivity(ctx, item.DiscussionID, item.CourseID, cadence); err != nil {
		slog.ErrorContext(ctx, "failed to repo reset activity", "discussion_id", item.DiscussionID, "cadence", cadence.String(), "error", err)
		return err
	}

	return nil
}

func (s *Usecase) enqueueBatchDigest(ctx context.Context, sub entity.Subscription, payload entity.DigestPayload) error {
	data := s.baseEmailTemplateData()
	data["course_name"] = payload.CourseName
	data["course_image_url"] = payload.CourseImageURL
	data["placement_path"] = payload.PlacementPath
	data["cadence"] = payload.Cadence.String()
	data["new_threads"] = payload.NewThreads
	data["new_comments"] = payload.NewComments
	data["preferences_url"] = payload.PreferencesURL

	body, err := s.renderTemplate("batch_digest", batchDigestTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render batch digest email", "user_id", sub.UserID, "error", err)
		return err
	}

	return s.enqueueDigest(ctx, enqueueDigestInput{
		UserID:       sub.UserID,
		Email:        sub.Email,
		DiscussionID: sub.DiscussionID,
		CourseID:     sub.CourseID,
		Kind:         entity.DigestKindBatch,
		Cadence:      payload.Cadence,
		Subject:      payload.Cadence.String() + " digest: " + payload.CourseName,
		HTMLBody:     body,
		Data: valueobject.JSONMap{
			"new_threads":  strconv.FormatInt(payload.NewThreads, 10),
			"new_comments": strconv.FormatInt(payload.NewComments, 10),
		},
	})
}

func (s *Usecase) runLegacyDiscussion(ctx context.Context, item entity.DiscussionActivity, now time.Time, counters *cycleCounters) error {
	course, placement, err := s.resolveDisplay(ctx, item, now)
	if err != nil || placement == nil {
		counters.skipped.Inc()
		return err
	}

	ref := now.Add(s.cfg.GetMinute("modules.digest.window_grace"))
	subs, err := s.repoDB.ListDueSubscribers(ctx, item.DiscussionID, entity.CadenceMonthly, ref.Add(-entity.CadenceMonthly.Window()))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list due subscribers", "discussion_id", item.DiscussionID, "error", err)
		counters.failed.Inc()
		return err
	}

	subs = lo.Filter(subs, func(sub entity.Subscription, _ int) bool {
		return sub.Due(ref)
	})
	if len(subs) == 0 {
		counters.skipped.Inc()
		return nil
	}

	snapshot, err := s.buildSnapshot(ctx, item.DiscussionID, item.CourseID, subs[0].UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build discussion snapshot", "discussion_id", item.DiscussionID, "error", err)
		counters.failed.Inc()
		return err
	}
	if len(snapshot.Threads) == 0 {
		counters.skipped.Inc()
		return nil
	}

	var sentIDs []int64
	for _, sub := range subs {
		if err := s.enqueueLegacyDigest(ctx, sub, course, placement, snapshot); err != nil {
			counters.failed.Inc()
			continue
		}

		sentIDs = append(sentIDs, sub.ID)
		counters.dispatched.Inc()
	}

	if err := s.repoDB.TouchLastSent(ctx, sentIDs, now); err != nil {
		slog.ErrorContext(ctx, "failed to repo touch last sent", "discussion_id", item.DiscussionID, "error", err)
		return err
	}

	return nil
}

func (s *Usecase) enqueueLegacyDigest(ctx context.Context, sub entity.Subscription, course *entity.Course, placement *entity.Placement, snapshot entity.DiscussionSnapshot) error {
	data := s.baseEmailTemplateData()
	data["course_name"] = course.Name
	data["placement_path"] = placement.Path()
	data["items"] = snapshot.ContentIndex
	data["preferences_url"] = s.preferencesURL(sub.UserID, sub.Email, sub.DiscussionID)

	body, err := s.renderTemplate("legacy_digest", legacyDigestTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render monthly digest email", "user_id", sub.UserID, "error", err)
		return err
	}

	contributed := snapshot.Contributions[sub.UserID]

	return s.enqueueDigest(ctx, enqueueDigestInput{
		UserID:       sub.UserID,
		Email:        sub.Email,
		DiscussionID: sub.DiscussionID,
		CourseID:     sub.CourseID,
		Kind:         entity.DigestKindBatch,
		Cadence:      entity.CadenceMonthly,
		Subject:      "monthly digest: " + course.Name,
		HTMLBody:     body,
		Data: valueobject.JSONMap{
			"threads":       strconv.Itoa(len(snapshot.Threads)),
			"contributions": strconv.FormatInt(contributed, 10),
		},
	})
}
