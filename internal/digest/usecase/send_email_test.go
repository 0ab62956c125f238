package usecase

import (
	"context"
	"testing"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/stretchr/testify/require"
)

func TestConsumeDigestEmail(t *testing.T) {

	t.Run("MarksSentOnFirstAttempt", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.ConsumeDigestEmail(context.Background(), ConsumeDigestEmailInput{
			DeliveryLogID: 42,
			UserID:        7,
			Email:         "student@campus.test",
			Subject:       "daily digest: Distributed Systems",
			HTMLBody:      "<p>3 new threads</p>",
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mail.sent, 1)
		require.Equal(t, []string{"student@campus.test"}, env.mail.sent[0].To)

		require.Len(t, env.db.logs, 1)
		require.Equal(t, int64(42), env.db.logs[0].ID)
		require.Equal(t, entity.DeliveryStatusSent, env.db.logs[0].Status)
	})

	t.Run("RetriesTransientFailureThenSends", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.mail.failures = 1
		env.mail.err = errDeliberate

		// Act
		err := env.uc.ConsumeDigestEmail(context.Background(), ConsumeDigestEmailInput{
			DeliveryLogID: 42,
			Email:         "student@campus.test",
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, env.mail.sent, 1)
		require.Equal(t, entity.DeliveryStatusSent, env.db.logs[0].Status)
	})

	t.Run("MarksFailedAfterRetriesExhausted", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.mail.failures = 10
		env.mail.err = errDeliberate

		// Act
		err := env.uc.ConsumeDigestEmail(context.Background(), ConsumeDigestEmailInput{
			DeliveryLogID: 42,
			Email:         "student@campus.test",
		})

		// Assert: terminal failure is swallowed so the broker does not redeliver
		require.NoError(t, err)
		require.Empty(t, env.mail.sent)

		require.Len(t, env.db.logs, 1)
		require.Equal(t, entity.DeliveryStatusFailed, env.db.logs[0].Status)
		require.Contains(t, env.db.logs[0].ProviderResponse["error"], "deliberate failure")
	})
}
