package usecase

import (
	"context"
	"testing"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/stretchr/testify/require"
)

func TestConsumeCommentCreated(t *testing.T) {

	t.Run("NotifiesCommentCreatedSubscribers", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.alwaysSubs = []entity.Subscription{
			{ID: 1, UserID: 10, Email: "author@campus.test", DiscussionID: "disc-1", CourseID: "course-1", CommentCreated: true},
			{ID: 2, UserID: 20, Email: "reader@campus.test", DiscussionID: "disc-1", CourseID: "course-1", CommentCreated: true},
		}

		// Act
		err := env.uc.ConsumeCommentCreated(context.Background(), ConsumeCommentCreatedInput{
			EventID:      "evt-1",
			CommentID:    "c1",
			ThreadID:     "t1",
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			AuthorID:     10,
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mq.published, 1)
		require.Equal(t, "reader@campus.test", env.mq.published[0].Email)

		require.Len(t, env.db.records, 1)
		require.Equal(t, entity.ActivityKindComment, env.db.records[0].Kind)
	})

	t.Run("OwnCommentFlagCoversThreadAuthor", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.alwaysSubs = []entity.Subscription{
			{ID: 1, UserID: 20, Email: "op@campus.test", DiscussionID: "disc-1", CourseID: "course-1", OwnCommentCreated: true},
			{ID: 2, UserID: 30, Email: "other@campus.test", DiscussionID: "disc-1", CourseID: "course-1", OwnCommentCreated: true},
		}

		// Act
		err := env.uc.ConsumeCommentCreated(context.Background(), ConsumeCommentCreatedInput{
			EventID:        "evt-2",
			CommentID:      "c2",
			ThreadID:       "t1",
			ThreadAuthorID: 20,
			DiscussionID:   "disc-1",
			CourseID:       "course-1",
			AuthorID:       40,
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mq.published, 1)
		require.Equal(t, "op@campus.test", env.mq.published[0].Email)
	})

	t.Run("OwnCommentFlagCoversParentCommentAuthor", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.alwaysSubs = []entity.Subscription{
			{ID: 1, UserID: 20, Email: "parent@campus.test", DiscussionID: "disc-1", CourseID: "course-1", OwnCommentCreated: true},
		}
		env.forum.comment = &entity.Comment{ID: "c1", AuthorID: 20}

		// Act
		err := env.uc.ConsumeCommentCreated(context.Background(), ConsumeCommentCreatedInput{
			EventID:         "evt-3",
			CommentID:       "c2",
			ParentCommentID: "c1",
			ThreadID:        "t1",
			ThreadAuthorID:  99,
			DiscussionID:    "disc-1",
			CourseID:        "course-1",
			AuthorID:        40,
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mq.published, 1)
		require.Equal(t, "parent@campus.test", env.mq.published[0].Email)
	})

	t.Run("ExcludesCommentAuthor", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.alwaysSubs = []entity.Subscription{
			{ID: 1, UserID: 40, Email: "self@campus.test", DiscussionID: "disc-1", CourseID: "course-1", CommentCreated: true, OwnCommentCreated: true},
		}

		// Act
		err := env.uc.ConsumeCommentCreated(context.Background(), ConsumeCommentCreatedInput{
			EventID:      "evt-4",
			CommentID:    "c3",
			ThreadID:     "t1",
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			AuthorID:     40,
		})

		// Assert
		require.NoError(t, err)
		require.Empty(t, env.mq.published)
	})
}
