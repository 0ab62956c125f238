package usecase

import (
	"context"
	"log/slog"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/samber/lo"
)

const (
	responsePageSize int64 = 200

	// Upper bound on pages fetched per thread. The server-reported
	// response total is not trusted past this point.
	maxResponsePages = 64
)

// buildSnapshot fetches the full unread content of one discussion for a
// monthly digest: the thread list, then every thread's responses via a
// bounded skip/limit loop. The loop stops early when a page returns
// nothing new and never fetches more than maxResponsePages per thread,
// so a misreported total cannot spin it forever.
func (s *Usecase) buildSnapshot(ctx context.Context, discussionID, courseID string, userID int64) (entity.DiscussionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "buildSnapshot")
	defer span.End()

	page, err := s.repoForum.ListThreads(ctx, discussionID, courseID, userID)
	if err != nil {
		return entity.DiscussionSnapshot{}, err
	}

	unread := lo.Filter(page.Threads, func(t entity.Thread, _ int) bool {
		return t.Unread()
	})

	snapshot := entity.DiscussionSnapshot{
		Contributions: make(map[int64]int64),
	}

	for _, t := range unread {
		full, err := s.fetchThreadResponses(ctx, t)
		if err != nil {
			slog.WarnContext(ctx, "skipping thread, responses unavailable", "thread_id", t.ID, "error", err)
			continue
		}

		snapshot.Threads = append(snapshot.Threads, full)
		s.indexThread(&snapshot, full)
	}

	return snapshot, nil
}

// fetchThreadResponses pages through a thread's responses until the
// server-reported total is reached or the page cap is hit. Discussion
// threads accumulate children, question threads accumulate endorsed and
// non-endorsed responses.
func (s *Usecase) fetchThreadResponses(ctx context.Context, t entity.Thread) (entity.Thread, error) {
	full := t
	full.Children = nil
	full.EndorsedResponses = nil
	full.UnendorsedResponses = nil

	var skip, fetched int64
	for pages := 0; ; pages++ {
		if pages == maxResponsePages {
			slog.WarnContext(ctx, "response paging capped, truncating thread", "thread_id", t.ID, "fetched", fetched)
			break
		}

		page, respTotal, err := s.repoForum.GetThread(ctx, t.ID, skip, responsePageSize)
		if err != nil {
			return entity.Thread{}, err
		}

		var got int64
		if page.Type == entity.ThreadTypeQuestion {
			got = int64(len(page.EndorsedResponses) + len(page.UnendorsedResponses))
			full.EndorsedResponses = append(full.EndorsedResponses, page.EndorsedResponses...)
			full.UnendorsedResponses = append(full.UnendorsedResponses, page.UnendorsedResponses...)
		} else {
			got = int64(len(page.Children))
			full.Children = append(full.Children, page.Children...)
		}

		if got == 0 {
			break
		}

		fetched += got
		skip += responsePageSize
		if fetched >= respTotal {
			break
		}
	}

	return full, nil
}

// indexThread flattens one thread into the snapshot's content index and
// per-author contribution counts.
func (s *Usecase) indexThread(snapshot *entity.DiscussionSnapshot, t entity.Thread) {
	snapshot.ContentIndex = append(snapshot.ContentIndex, entity.ContentItem{
		ThreadID:       t.ID,
		ThreadTitle:    t.Title,
		AuthorID:       t.AuthorID,
		AuthorUsername: t.AuthorUsername,
		Body:           t.Body,
	})
	snapshot.Contributions[t.AuthorID]++

	var walk func(comments []entity.Comment)
	walk = func(comments []entity.Comment) {
		for _, c := range comments {
			snapshot.ContentIndex = append(snapshot.ContentIndex, entity.ContentItem{
				ThreadID:       t.ID,
				ThreadTitle:    t.Title,
				CommentID:      c.ID,
				AuthorID:       c.AuthorID,
				AuthorUsername: c.AuthorUsername,
				Body:           c.Body,
			})
			snapshot.Contributions[c.AuthorID]++
			walk(c.Children)
		}
	}

	walk(t.Children)
	walk(t.EndorsedResponses)
	walk(t.UnendorsedResponses)
}
