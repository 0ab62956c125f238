package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/stretchr/testify/require"
)

func TestRunCycleDaily(t *testing.T) {

	t.Run("DispatchesAndResetsOnlyDailyCounters", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 3, DailyComments: 5, WeeklyThreads: 9},
		}
		env.db.dueSubs = []entity.Subscription{
			{ID: 11, UserID: 1, Email: "a@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceDaily},
			{ID: 12, UserID: 2, Email: "b@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceDaily},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Discussions)
		require.Equal(t, int64(2), stats.Dispatched)
		require.Equal(t, int64(0), stats.Failed)

		require.Len(t, env.mq.published, 2)
		require.Equal(t, []string{"disc-1/daily"}, env.db.resets)
		require.Equal(t, [][]int64{{11, 12}}, env.db.touched)

		for _, d := range env.db.digests {
			require.Equal(t, entity.DigestKindBatch, d.Kind)
			require.Equal(t, entity.CadenceDaily, d.Cadence)
		}
	})

	t.Run("ResetsEvenWithoutDueSubscribers", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 1},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(0), stats.Dispatched)
		require.Equal(t, []string{"disc-1/daily"}, env.db.resets)
		require.Empty(t, env.mq.published)
	})

	t.Run("SkipsZeroCountersWithoutReset", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", WeeklyThreads: 4},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Skipped)
		require.Empty(t, env.db.resets)
	})

	t.Run("SkipsUnresolvablePlacementWithoutReset", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 2},
		}
		env.catalog.placementErr = errors.New("block removed from outline")

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Skipped)
		require.Empty(t, env.db.resets)
		require.Empty(t, env.mq.published)
	})

	t.Run("SkipsArchivedCourseWithoutReset", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		ended := testNow.Add(-48 * time.Hour)
		env.catalog.course = &entity.Course{ID: "course-1", Name: "Old Course", EndsAt: &ended}
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 2},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Skipped)
		require.Empty(t, env.db.resets)
	})

	t.Run("PublishFailureStillResetsAndCountsFailed", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyComments: 7},
		}
		env.db.dueSubs = []entity.Subscription{
			{ID: 11, UserID: 1, Email: "a@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceDaily},
		}
		env.mq.err = errors.New("broker unavailable")

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Failed)
		require.Equal(t, int64(0), stats.Dispatched)
		require.Equal(t, []string{"disc-1/daily"}, env.db.resets)
	})

	t.Run("SecondRunWithoutNewActivityDispatchesNothing", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 3, DailyComments: 3, WeeklyThreads: 3, WeeklyComments: 3},
		}
		env.db.dueSubs = []entity.Subscription{
			{ID: 11, UserID: 1, Email: "a@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceDaily},
		}

		// Act
		first, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})
		require.NoError(t, err)
		second, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), first.Dispatched)
		require.Equal(t, int64(0), second.Dispatched)
		require.Equal(t, int64(1), second.Skipped)
		require.Len(t, env.mq.published, 1)
		require.Equal(t, []string{"disc-1/daily"}, env.db.resets)
		require.Equal(t, int64(3), env.db.activeDiscussions[0].WeeklyThreads)
	})

	t.Run("DropsRecentlySentSubscriberRows", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 2},
		}
		sent := testNow.Add(-time.Hour)
		env.db.dueSubs = []entity.Subscription{
			{ID: 11, UserID: 1, Email: "a@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceDaily},
			{ID: 12, UserID: 2, Email: "b@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceDaily, LastSentAt: &sent},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "daily"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Dispatched)
		require.Equal(t, [][]int64{{11}}, env.db.touched)
	})

	t.Run("RejectsUnknownCadence", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "hourly"})

		// Assert
		require.Error(t, err)
		require.Empty(t, env.db.resets)
	})
}

func TestRunCycleWeekly(t *testing.T) {

	t.Run("ReadsAndResetsWeeklyPairOnly", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.activeDiscussions = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1", DailyThreads: 6, WeeklyThreads: 2, WeeklyComments: 1},
		}
		env.db.dueSubs = []entity.Subscription{
			{ID: 21, UserID: 3, Email: "c@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceWeekly},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "weekly"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Dispatched)
		require.Equal(t, []string{"disc-1/weekly"}, env.db.resets)
	})
}

func TestRunCycleMonthly(t *testing.T) {

	t.Run("SendsSnapshotDigestWithoutReset", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.duePairs = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1"},
		}
		env.db.dueSubs = []entity.Subscription{
			{ID: 31, UserID: 5, Email: "e@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceMonthly},
			{ID: 32, UserID: 6, Email: "f@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceMonthly},
		}
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Type: entity.ThreadTypeDiscussion, Title: "Welcome", AuthorID: 5, Read: false},
		}, Total: 1}
		env.forum.pages = map[string][]entity.Thread{
			"t1": {{ID: "t1", Type: entity.ThreadTypeDiscussion, Children: []entity.Comment{
				{ID: "c1", AuthorID: 6, Body: "hi"},
				{ID: "c2", AuthorID: 5, Body: "hello"},
			}}},
		}
		env.forum.totals = map[string]int64{"t1": 2}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "monthly"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(2), stats.Dispatched)
		require.Empty(t, env.db.resets)
		require.Equal(t, [][]int64{{31, 32}}, env.db.touched)
		require.Len(t, env.mq.published, 2)

		for _, d := range env.db.digests {
			require.Equal(t, entity.CadenceMonthly, d.Cadence)
			require.Equal(t, "1", d.Data["threads"])
		}
	})

	t.Run("SkipsWhenNoDueSubscribers", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.duePairs = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1"},
		}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "monthly"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Skipped)
		require.Empty(t, env.mq.published)
	})

	t.Run("SkipsWhenNothingUnread", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.db.duePairs = []entity.DiscussionActivity{
			{DiscussionID: "disc-1", CourseID: "course-1"},
		}
		env.db.dueSubs = []entity.Subscription{
			{ID: 31, UserID: 5, Email: "e@campus.test", DiscussionID: "disc-1", CourseID: "course-1", Cadence: entity.CadenceMonthly},
		}
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Read: true, UnreadCommentCount: 0},
		}, Total: 1}

		// Act
		stats, err := env.uc.RunCycle(context.Background(), RunCycleInput{Cadence: "monthly"})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(1), stats.Skipped)
		require.Empty(t, env.mq.published)
	})
}
