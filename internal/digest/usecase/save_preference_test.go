package usecase

import (
	"context"
	"testing"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/stretchr/testify/require"
)

func TestSavePreference(t *testing.T) {

	t.Run("UpsertsAndRegistersDiscussion", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		ctx := authCtx(7, "student@campus.test")

		// Act
		err := env.uc.SavePreference(ctx, SavePreferenceInput{
			UserID:            7,
			DiscussionID:      "disc-1",
			CourseID:          "course-1",
			Cadence:           "weekly",
			ThreadCreated:     true,
			OwnCommentCreated: true,
		})

		// Assert
		require.NoError(t, err)
		require.Equal(t, []string{"disc-1"}, env.db.ensured)
		require.Len(t, env.db.upserts, 1)

		up := env.db.upserts[0]
		require.Equal(t, int64(7), up.UserID)
		require.Equal(t, "student@campus.test", up.Email)
		require.Equal(t, entity.CadenceWeekly, up.Cadence)
		require.True(t, up.ThreadCreated)
		require.False(t, up.CommentCreated)
		require.True(t, up.OwnCommentCreated)
	})

	t.Run("RequiresAuthentication", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.SavePreference(context.Background(), SavePreferenceInput{
			UserID:       7,
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			Cadence:      "daily",
		})

		// Assert
		requireBusinessCode(t, err, goerror.CodeUnauthorized)
		require.Empty(t, env.db.upserts)
	})

	t.Run("RejectsOtherUsersPreference", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		ctx := authCtx(7, "student@campus.test")

		// Act
		err := env.uc.SavePreference(ctx, SavePreferenceInput{
			UserID:       8,
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			Cadence:      "daily",
		})

		// Assert
		requireBusinessCode(t, err, goerror.CodeForbidden)
		require.Empty(t, env.db.upserts)
	})

	t.Run("RejectsUnknownCadence", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		ctx := authCtx(7, "student@campus.test")

		// Act
		err := env.uc.SavePreference(ctx, SavePreferenceInput{
			UserID:       7,
			DiscussionID: "disc-1",
			CourseID:     "course-1",
			Cadence:      "hourly",
		})

		// Assert
		require.Error(t, err)
		require.Empty(t, env.db.upserts)
	})
}
