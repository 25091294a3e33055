package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveDeadline_AbsoluteMode(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := ResolveDeadline(DeadlineSpec{
		EndDate:  "2025-07-12",
		EndTime:  "18:44",
		TimeZone: "Asia/Kolkata",
	}, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 7, 12, 13, 14, 0, 0, time.UTC), got)
}

func TestResolveDeadline_DurationModeDefaultsEndOfDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := ResolveDeadline(DeadlineSpec{
		DurationDays: 3,
		TimeZone:     "UTC",
	}, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 4, 23, 59, 59, 0, time.UTC), got)
}

func TestResolveDeadline_DurationModeWithEndTime(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

	got, err := ResolveDeadline(DeadlineSpec{
		DurationDays: 2,
		EndTime:      "09:15",
		TimeZone:     "Asia/Kolkata",
	}, now)
	require.NoError(t, err)

	loc, _ := time.LoadLocation("Asia/Kolkata")
	// now in Kolkata is 2025-01-01 16:00 local; +2 days at 09:15 local
	require.Equal(t, time.Date(2025, 1, 3, 9, 15, 0, 0, loc).UTC(), got)
}

func TestResolveDeadline_Validation(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name string
		spec DeadlineSpec
	}{
		{"neither mode", DeadlineSpec{TimeZone: "UTC"}},
		{"both modes", DeadlineSpec{EndDate: "2025-07-12", EndTime: "18:44", DurationDays: 3, TimeZone: "UTC"}},
		{"missing time zone", DeadlineSpec{EndDate: "2025-07-12", EndTime: "18:44"}},
		{"unknown time zone", DeadlineSpec{EndDate: "2025-07-12", EndTime: "18:44", TimeZone: "Mars/Olympus"}},
		{"end date without end time", DeadlineSpec{EndDate: "2025-07-12", TimeZone: "UTC"}},
		{"bad date format", DeadlineSpec{EndDate: "12/07/2025", EndTime: "18:44", TimeZone: "UTC"}},
		{"bad time format", DeadlineSpec{EndDate: "2025-07-12", EndTime: "6pm", TimeZone: "UTC"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveDeadline(tc.spec, now)
			require.Error(t, err)
			require.True(t, IsValidation(err), "want ValidationError, got %v", err)
		})
	}
}

func TestResolveDeadline_RejectsNonexistentLocalTime(t *testing.T) {
	// US spring-forward 2025-03-09: 02:00-03:00 does not exist in New York.
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ResolveDeadline(DeadlineSpec{
		EndDate:  "2025-03-09",
		EndTime:  "02:30",
		TimeZone: "America/New_York",
	}, now)
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "does not exist")
}

func TestResolveDeadline_RejectsAmbiguousLocalTime(t *testing.T) {
	// US fall-back 2025-11-02: 01:00-02:00 occurs twice in New York.
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ResolveDeadline(DeadlineSpec{
		EndDate:  "2025-11-02",
		EndTime:  "01:30",
		TimeZone: "America/New_York",
	}, now)
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "ambiguous")
}

func TestResolveDeadline_RejectsAmbiguousHalfHourShift(t *testing.T) {
	// Lord Howe Island shifts by 30 minutes: DST ends 2025-04-06 when
	// 02:00 falls back to 01:30, so 01:30-01:59 occurs twice.
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ResolveDeadline(DeadlineSpec{
		EndDate:  "2025-04-06",
		EndTime:  "01:45",
		TimeZone: "Australia/Lord_Howe",
	}, now)
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "ambiguous")
}

func TestComputeWindow(t *testing.T) {
	settings := AuctionSettings{
		StartingPrice:     100,
		ReservePrice:      250,
		BidIncrementPrice: 10,
		Deadline: DeadlineSpec{
			EndDate:  "2025-07-12",
			EndTime:  "18:44",
			TimeZone: "Asia/Kolkata",
		},
	}
	endsAt := time.Date(2025, 7, 12, 13, 14, 0, 0, time.UTC)

	t.Run("open before the deadline", func(t *testing.T) {
		w, err := ComputeWindow(settings, endsAt.Add(-time.Hour))
		require.NoError(t, err)
		require.Equal(t, endsAt, w.BiddingEndsAt)
		require.True(t, w.IsBiddingOpen)
		require.Equal(t, "2025-07-12", w.NormalizedEndDate)
		require.Equal(t, "18:44", w.NormalizedEndTime)
		require.Equal(t, "Asia/Kolkata", w.TimeZone)
	})

	t.Run("closed after the deadline", func(t *testing.T) {
		w, err := ComputeWindow(settings, endsAt.Add(time.Second))
		require.NoError(t, err)
		require.False(t, w.IsBiddingOpen)
	})

	t.Run("closed exactly at the deadline", func(t *testing.T) {
		w, err := ComputeWindow(settings, endsAt)
		require.NoError(t, err)
		require.False(t, w.IsBiddingOpen)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		bad := settings
		bad.Deadline = DeadlineSpec{TimeZone: "UTC"}
		_, err := ComputeWindow(bad, time.Now().UTC())
		require.True(t, IsValidation(err))
	})
}

func TestIsCurrentlyOpen(t *testing.T) {
	endsAt := time.Date(2025, 7, 12, 13, 14, 0, 0, time.UTC)
	require.True(t, IsCurrentlyOpen(endsAt, endsAt.Add(-time.Nanosecond)))
	require.False(t, IsCurrentlyOpen(endsAt, endsAt))
	require.False(t, IsCurrentlyOpen(endsAt, endsAt.Add(time.Nanosecond)))
}
