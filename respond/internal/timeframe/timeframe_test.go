package timeframe

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hh, mm, ss int, loc *time.Location) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, loc)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Frame
	}{
		{"today", Today},
		{"last week", LastWeek},
		{"last month", LastMonth},
		{"last year", LastYear},
		{"all time", AllTime},
		{"  Last Week ", LastWeek},
		{"", AllTime},
		{"yesterday", AllTime},
		{"lastWeek", AllTime},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestResolveLowerBounds(t *testing.T) {
	now := date(2024, time.June, 15, 14, 30, 5, time.UTC)

	tests := []struct {
		token string
		want  time.Time
	}{
		{"today", date(2024, time.June, 15, 0, 0, 0, time.UTC)},
		{"last week", date(2024, time.June, 8, 0, 0, 0, time.UTC)},
		{"last month", date(2024, time.May, 15, 0, 0, 0, time.UTC)},
		{"last year", date(2023, time.June, 15, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			w := Resolve(tt.token, now)
			require.True(t, w.Bounded())
			assert.True(t, tt.want.Equal(w.Lower), "got %s", w.Lower)
		})
	}
}

func TestResolveCalendarOverflow(t *testing.T) {
	tests := []struct {
		name  string
		token string
		now   time.Time
		want  time.Time
	}{
		{
			name:  "last month from 31 March overflows February",
			token: "last month",
			now:   date(2023, time.March, 31, 9, 0, 0, time.UTC),
			want:  date(2023, time.March, 3, 0, 0, 0, time.UTC),
		},
		{
			name:  "last month across year boundary",
			token: "last month",
			now:   date(2024, time.January, 10, 9, 0, 0, time.UTC),
			want:  date(2023, time.December, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "last year from leap day",
			token: "last year",
			now:   date(2024, time.February, 29, 9, 0, 0, time.UTC),
			want:  date(2023, time.March, 1, 0, 0, 0, time.UTC),
		},
		{
			name:  "last week across month boundary",
			token: "last week",
			now:   date(2024, time.March, 3, 23, 59, 59, time.UTC),
			want:  date(2024, time.February, 25, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Resolve(tt.token, tt.now)
			assert.True(t, tt.want.Equal(w.Lower), "got %s", w.Lower)
		})
	}
}

func TestUnrecognisedTokensImposeNoConstraint(t *testing.T) {
	now := date(2024, time.June, 15, 12, 0, 0, time.UTC)
	samples := []time.Time{
		{},
		date(1970, time.January, 1, 0, 0, 0, time.UTC),
		now.Add(-100 * 365 * 24 * time.Hour),
		now,
		now.Add(24 * time.Hour),
	}

	for _, token := range []string{"all time", "", "forever", "last decade", "TODAYISH"} {
		t.Run(token, func(t *testing.T) {
			w := Resolve(token, now)
			assert.Equal(t, AllTime, w.Frame)
			assert.False(t, w.Bounded())
			for _, ts := range samples {
				assert.True(t, w.Contains(ts))
			}

			sql, args, err := w.Predicate("opened_at").ToSql()
			require.NoError(t, err)
			assert.Equal(t, "1=1", sql)
			assert.Empty(t, args)
		})
	}
}

func TestTodayMidnightBoundary(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	now := date(2024, time.June, 15, 0, 0, 30, berlin)
	w := Resolve("today", now)

	midnight := date(2024, time.June, 15, 0, 0, 0, berlin)
	assert.True(t, w.Contains(midnight), "exactly midnight is included")
	assert.False(t, w.Contains(midnight.Add(-time.Second)), "one second before local midnight is excluded")
	assert.True(t, w.Contains(now.Add(48*time.Hour)), "today has no upper bound")

	// The same instant expressed in UTC is still judged against Berlin midnight.
	assert.False(t, w.Contains(midnight.Add(-time.Second).UTC()))
}

func TestPredicateSQL(t *testing.T) {
	now := date(2024, time.June, 15, 14, 30, 0, time.UTC)
	w := Resolve("last week", now)

	sql, args, err := sq.Select("*").From("incident").
		Where(sq.Eq{"company_id": 1}).
		Where(w.Predicate("opened_at")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM incident WHERE company_id = $1 AND opened_at >= $2", sql)
	require.Len(t, args, 2)
	assert.True(t, date(2024, time.June, 8, 0, 0, 0, time.UTC).Equal(args[1].(time.Time)))
}

func TestResolverUsesConfiguredLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on the 14th is already the 15th in Tokyo.
	clock := func() time.Time { return date(2024, time.June, 14, 20, 0, 0, time.UTC) }

	w := NewResolverWithClock(tokyo, clock).Resolve("today")
	assert.True(t, date(2024, time.June, 15, 0, 0, 0, tokyo).Equal(w.Lower))

	w = NewResolverWithClock(nil, clock).Resolve("today")
	assert.True(t, date(2024, time.June, 14, 0, 0, 0, time.UTC).Equal(w.Lower))
}
