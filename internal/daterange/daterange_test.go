package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finanzas-backend/internal/apperr"
)

type stamped struct {
	name string
	at   time.Time
	has  bool
}

func stampOf(s stamped) (time.Time, bool) { return s.at, s.has }

func day(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestFilter(t *testing.T) {
	items := []stamped{
		{name: "a", at: day(2024, 3, 1, 0, 0), has: true},
		{name: "b", at: day(2024, 3, 2, 23, 59), has: true},
		{name: "c", at: day(2024, 3, 3, 10, 0), has: true},
		{name: "unsold", has: false},
	}

	t.Run("NoBounds_ReturnsEverythingInOrder", func(t *testing.T) {
		got := Filter(items, Range{}, stampOf)
		require.Equal(t, items, got)
	})

	t.Run("InclusiveDayBounds", func(t *testing.T) {
		r := New(ptr(day(2024, 3, 1, 18, 0)), ptr(day(2024, 3, 2, 1, 0)), time.UTC)
		got := Filter(items, r, stampOf)
		require.Len(t, got, 2)
		require.Equal(t, "a", got[0].name)
		require.Equal(t, "b", got[1].name)
	})

	t.Run("StartAfterEnd_IsEmptyNotError", func(t *testing.T) {
		r := New(ptr(day(2024, 3, 3, 0, 0)), ptr(day(2024, 3, 1, 0, 0)), time.UTC)
		got := Filter(items, r, stampOf)
		require.Empty(t, got)
	})

	t.Run("SingleBound_IsOpenEnded", func(t *testing.T) {
		r := New(ptr(day(2024, 3, 2, 0, 0)), nil, time.UTC)
		got := Filter(items, r, stampOf)
		require.Len(t, got, 2)
		require.Equal(t, "b", got[0].name)
		require.Equal(t, "c", got[1].name)
	})

	t.Run("ItemsWithoutTimestamp_DroppedWhenBounded", func(t *testing.T) {
		r := New(nil, ptr(day(2030, 1, 1, 0, 0)), time.UTC)
		got := Filter(items, r, stampOf)
		require.Len(t, got, 3)
	})
}

func TestDayBoundaries(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	ts := time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC) // 2024-03-01 22:30 in ART

	start := StartOfDay(ts, loc)
	end := EndOfDay(ts, loc)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), start)
	require.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999999999, loc), end)

	r := New(ptr(ts), ptr(ts), loc)
	require.True(t, r.Contains(time.Date(2024, 3, 1, 23, 59, 59, 999000000, loc)))
	require.False(t, r.Contains(time.Date(2024, 3, 2, 0, 0, 0, 0, loc)))
}

func TestParse(t *testing.T) {
	t.Run("BothEmpty_IsUnbounded", func(t *testing.T) {
		r, err := Parse("", " ", time.UTC)
		require.NoError(t, err)
		require.True(t, r.Unbounded())
	})

	t.Run("ParsesInLocation", func(t *testing.T) {
		loc := time.FixedZone("ART", -3*3600)
		r, err := Parse("2024-03-01", "2024-03-31", loc)
		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), *r.Start)
		require.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, loc), *r.End)
	})

	t.Run("OneBound_EqualsNew", func(t *testing.T) {
		r, err := Parse("", "2024-03-31", nil)
		require.NoError(t, err)
		require.Equal(t, New(nil, ptr(day(2024, 3, 31, 0, 0)), nil), r)
	})

	t.Run("BadFormat_IsValidationError", func(t *testing.T) {
		_, err := Parse("01/03/2024", "", time.UTC)
		require.ErrorIs(t, err, apperr.ErrValidation)
	})
}
