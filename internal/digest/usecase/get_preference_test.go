package usecase

import (
	"testing"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/stretchr/testify/require"
)

func TestGetPreference(t *testing.T) {

	t.Run("ReturnsStoredPreference", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.subscription = &entity.Subscription{
			ID: 1, UserID: 7, DiscussionID: "disc-1", CourseID: "course-1",
			Cadence: entity.CadenceDaily, ThreadCreated: true,
		}

		// Act
		sub, err := env.uc.GetPreference(authCtx(7, "student@campus.test"), GetPreferenceInput{
			DiscussionID: "disc-1",
			CourseID:     "course-1",
		})

		// Assert
		require.NoError(t, err)
		require.Equal(t, entity.CadenceDaily, sub.Cadence)
		require.True(t, sub.ThreadCreated)
	})

	t.Run("DefaultsToNeverWhenUnsubscribed", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.getErr = goerror.ErrNotFound

		// Act
		sub, err := env.uc.GetPreference(authCtx(7, "student@campus.test"), GetPreferenceInput{
			DiscussionID: "disc-1",
			CourseID:     "course-1",
		})

		// Assert
		require.NoError(t, err)
		require.Equal(t, entity.CadenceNever, sub.Cadence)
		require.Equal(t, int64(7), sub.UserID)
		require.False(t, sub.ThreadCreated)
	})
}
