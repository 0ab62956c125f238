package usecase

import (
	"context"
	"testing"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/stretchr/testify/require"
)

func TestConsumeThreadCreated(t *testing.T) {

	t.Run("NotifiesSubscribersExceptAuthor", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.alwaysSubs = []entity.Subscription{
			{ID: 1, UserID: 10, Email: "author@campus.test", DiscussionID: "disc-1", CourseID: "course-1", ThreadCreated: true},
			{ID: 2, UserID: 20, Email: "reader@campus.test", DiscussionID: "disc-1", CourseID: "course-1", ThreadCreated: true},
			{ID: 3, UserID: 30, Email: "quiet@campus.test", DiscussionID: "disc-1", CourseID: "course-1", ThreadCreated: false},
		}

		// Act
		err := env.uc.ConsumeThreadCreated(context.Background(), ConsumeThreadCreatedInput{
			EventID:        "evt-1",
			ThreadID:       "t1",
			DiscussionID:   "disc-1",
			CourseID:       "course-1",
			AuthorID:       10,
			AuthorUsername: "prof_x",
			Title:          "Week 3 recap",
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mq.published, 1)
		require.Equal(t, "reader@campus.test", env.mq.published[0].Email)
		require.Equal(t, "New thread: Week 3 recap", env.mq.published[0].Subject)

		require.Len(t, env.db.records, 1)
		require.Equal(t, entity.ActivityKindThread, env.db.records[0].Kind)
	})

	t.Run("DropsDuplicateEvent", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.alwaysSubs = []entity.Subscription{
			{ID: 2, UserID: 20, Email: "reader@campus.test", DiscussionID: "disc-1", CourseID: "course-1", ThreadCreated: true},
		}
		in := ConsumeThreadCreatedInput{
			EventID:      "evt-1",
			ThreadID:     "t1",
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			AuthorID:     10,
			Title:        "Week 3 recap",
		}

		// Act
		require.NoError(t, env.uc.ConsumeThreadCreated(context.Background(), in))
		err := env.uc.ConsumeThreadCreated(context.Background(), in)

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mq.published, 1)
		require.Len(t, env.db.records, 1)
	})

	t.Run("RecordsActivityWithoutRecipients", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.ConsumeThreadCreated(context.Background(), ConsumeThreadCreatedInput{
			EventID:      "evt-2",
			ThreadID:     "t2",
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			AuthorID:     10,
		})

		// Assert
		require.NoError(t, err)
		require.Empty(t, env.mq.published)
		require.Len(t, env.db.records, 1)
	})
}
