package usecase

import (
	"context"
	"testing"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshot(t *testing.T) {

	t.Run("IncludesOnlyUnreadThreads", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Title: "unseen", AuthorID: 1, Read: false},
			{ID: "t2", Title: "seen", AuthorID: 1, Read: true},
			{ID: "t3", Title: "new replies", AuthorID: 2, Read: true, UnreadCommentCount: 3},
		}, Total: 3}
		env.forum.totals = map[string]int64{"t1": 0, "t3": 0}

		// Act
		snapshot, err := env.uc.buildSnapshot(context.Background(), "disc-1", "course-1", 7)

		// Assert
		require.NoError(t, err)
		require.Len(t, snapshot.Threads, 2)
		require.Equal(t, "t1", snapshot.Threads[0].ID)
		require.Equal(t, "t3", snapshot.Threads[1].ID)
	})

	t.Run("PagesThroughDiscussionResponses", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Title: "big thread", AuthorID: 1, Read: false},
		}, Total: 1}
		env.forum.pages = map[string][]entity.Thread{
			"t1": {
				{ID: "t1", Type: entity.ThreadTypeDiscussion, Children: []entity.Comment{
					{ID: "c1", AuthorID: 2}, {ID: "c2", AuthorID: 3},
				}},
				{ID: "t1", Type: entity.ThreadTypeDiscussion, Children: []entity.Comment{
					{ID: "c3", AuthorID: 2},
				}},
			},
		}
		env.forum.totals = map[string]int64{"t1": 3}

		// Act
		snapshot, err := env.uc.buildSnapshot(context.Background(), "disc-1", "course-1", 7)

		// Assert
		require.NoError(t, err)
		require.Len(t, snapshot.Threads, 1)
		require.Len(t, snapshot.Threads[0].Children, 3)
		require.Equal(t, 2, env.forum.calls["t1"])

		// one thread entry plus three comment entries
		require.Len(t, snapshot.ContentIndex, 4)
		require.Equal(t, int64(2), snapshot.Contributions[2])
		require.Equal(t, int64(1), snapshot.Contributions[1])
	})

	t.Run("AccumulatesQuestionResponses", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "q1", Title: "how does paging work", AuthorID: 1, Read: false},
		}, Total: 1}
		env.forum.pages = map[string][]entity.Thread{
			"q1": {
				{ID: "q1", Type: entity.ThreadTypeQuestion,
					EndorsedResponses:   []entity.Comment{{ID: "e1", AuthorID: 2}},
					UnendorsedResponses: []entity.Comment{{ID: "u1", AuthorID: 3}},
				},
			},
		}
		env.forum.totals = map[string]int64{"q1": 2}

		// Act
		snapshot, err := env.uc.buildSnapshot(context.Background(), "disc-1", "course-1", 7)

		// Assert
		require.NoError(t, err)
		require.Len(t, snapshot.Threads[0].EndorsedResponses, 1)
		require.Len(t, snapshot.Threads[0].UnendorsedResponses, 1)
		require.Len(t, snapshot.ContentIndex, 3)
	})

	t.Run("StopsOnEmptyPageDespiteOverstatedTotal", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Title: "lying server", AuthorID: 1, Read: false},
		}, Total: 1}
		env.forum.pages = map[string][]entity.Thread{
			"t1": {
				{ID: "t1", Type: entity.ThreadTypeDiscussion, Children: []entity.Comment{{ID: "c1", AuthorID: 2}}},
			},
		}
		env.forum.totals = map[string]int64{"t1": 50}

		// Act
		snapshot, err := env.uc.buildSnapshot(context.Background(), "disc-1", "course-1", 7)

		// Assert
		require.NoError(t, err)
		require.Len(t, snapshot.Threads[0].Children, 1)
		require.Equal(t, 2, env.forum.calls["t1"])
	})

	t.Run("CapsPagesWhenServerNeverRunsDry", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Title: "bottomless thread", AuthorID: 1, Read: false},
		}, Total: 1}
		env.forum.repeat = &entity.Thread{ID: "t1", Type: entity.ThreadTypeDiscussion, Children: []entity.Comment{
			{ID: "c1", AuthorID: 2},
		}}
		env.forum.totals = map[string]int64{"t1": 1 << 40}

		// Act
		snapshot, err := env.uc.buildSnapshot(context.Background(), "disc-1", "course-1", 7)

		// Assert
		require.NoError(t, err)
		require.Equal(t, maxResponsePages, env.forum.calls["t1"])
		require.Len(t, snapshot.Threads[0].Children, maxResponsePages)
	})

	t.Run("SkipsThreadWhenResponsesUnavailable", func(t *testing.T) {

		// Arrange
		env := newTestEnv(t)
		env.forum.page = entity.ThreadPage{Threads: []entity.Thread{
			{ID: "t1", Title: "broken", AuthorID: 1, Read: false},
		}, Total: 1}
		env.forum.getErr = errDeliberate

		// Act
		snapshot, err := env.uc.buildSnapshot(context.Background(), "disc-1", "course-1", 7)

		// Assert
		require.NoError(t, err)
		require.Empty(t, snapshot.Threads)
	})
}
