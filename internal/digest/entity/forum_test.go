package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThreadUnread(t *testing.T) {
	require.True(t, Thread{Read: false}.Unread())
	require.True(t, Thread{Read: true, UnreadCommentCount: 2}.Unread())
	require.False(t, Thread{Read: true}.Unread())
}

func TestCourseArchived(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	require.False(t, Course{}.Archived(now))

	future := now.Add(time.Hour)
	require.False(t, Course{EndsAt: &future}.Archived(now))

	past := now.Add(-time.Hour)
	require.True(t, Course{EndsAt: &past}.Archived(now))
}

func TestPlacementPath(t *testing.T) {
	require.Equal(t, "Forums / Week 3", Placement{ParentName: "Forums", DisplayName: "Week 3"}.Path())
	require.Equal(t, "Week 3", Placement{DisplayName: "Week 3"}.Path())
	require.Equal(t, "", Placement{}.Path())
}
