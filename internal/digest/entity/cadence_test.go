package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCadenceFromString(t *testing.T) {
	cases := map[string]Cadence{
		"never":   CadenceNever,
		"always":  CadenceAlways,
		"daily":   CadenceDaily,
		"weekly":  CadenceWeekly,
		"monthly": CadenceMonthly,
		" daily ": CadenceDaily,
		"hourly":  CadenceUnknown,
		"":        CadenceUnknown,
	}

	for raw, want := range cases {
		require.Equal(t, want, CadenceFromString(raw), "raw=%q", raw)
	}
}

func TestCadenceClassification(t *testing.T) {
	require.False(t, CadenceNever.IsBatch())
	require.False(t, CadenceAlways.IsBatch())
	require.True(t, CadenceDaily.IsBatch())
	require.True(t, CadenceWeekly.IsBatch())
	require.True(t, CadenceMonthly.IsBatch())

	require.True(t, CadenceDaily.HasCounters())
	require.True(t, CadenceWeekly.HasCounters())
	require.False(t, CadenceMonthly.HasCounters())
}

func TestCadenceWindow(t *testing.T) {
	require.Equal(t, 24*time.Hour, CadenceDaily.Window())
	require.Equal(t, 7*24*time.Hour, CadenceWeekly.Window())
	require.Equal(t, 30*24*time.Hour, CadenceMonthly.Window())
	require.Equal(t, time.Duration(0), CadenceAlways.Window())
}

func TestSubscriptionDue(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("NeverSentIsDue", func(t *testing.T) {
		sub := Subscription{Cadence: CadenceDaily}
		require.True(t, sub.Due(now))
	})

	t.Run("RecentSendIsNotDue", func(t *testing.T) {
		sent := now.Add(-2 * time.Hour)
		sub := Subscription{Cadence: CadenceDaily, LastSentAt: &sent}
		require.False(t, sub.Due(now))
	})

	t.Run("OldSendIsDue", func(t *testing.T) {
		sent := now.Add(-25 * time.Hour)
		sub := Subscription{Cadence: CadenceDaily, LastSentAt: &sent}
		require.True(t, sub.Due(now))
	})

	t.Run("NonBatchCadenceIsNeverDue", func(t *testing.T) {
		require.False(t, Subscription{Cadence: CadenceAlways}.Due(now))
		require.False(t, Subscription{Cadence: CadenceNever}.Due(now))
	})
}

func TestCountersFor(t *testing.T) {
	a := DiscussionActivity{DailyThreads: 1, DailyComments: 2, WeeklyThreads: 3, WeeklyComments: 4}

	threads, comments := a.CountersFor(CadenceDaily)
	require.Equal(t, int64(1), threads)
	require.Equal(t, int64(2), comments)

	threads, comments = a.CountersFor(CadenceWeekly)
	require.Equal(t, int64(3), threads)
	require.Equal(t, int64(4), comments)

	threads, comments = a.CountersFor(CadenceMonthly)
	require.Zero(t, threads)
	require.Zero(t, comments)
}
