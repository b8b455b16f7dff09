package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/khatm/internal/quran"
	"github.com/example/khatm/internal/recurrence"
	"github.com/example/khatm/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailyKhatm(start, end time.Time) *models.Khatm {
	return &models.Khatm{
		Title:         "Test Khatm",
		StartDate:     start,
		EndDate:       end,
		FrequencyType: models.FrequencyDaily,
		ReadingTime:   "19:00",
	}
}

func TestPlanThirtyDailySessions(t *testing.T) {
	// 6236 = 30*207 + 26: the first 26 sessions get 208 verses, the last
	// four get 207.
	sessions, err := Plan(dailyKhatm(date(2024, 1, 1), date(2024, 1, 30)), quran.Canonical())
	require.NoError(t, err)
	require.Len(t, sessions, 30)

	for i, s := range sessions {
		want := 207
		if i < 26 {
			want = 208
		}
		assert.Equal(t, want, s.VerseCount, "session %d", i+1)
		assert.Equal(t, i+1, s.SessionNumber)
		assert.Equal(t, models.SessionScheduled, s.Status)
		assert.Equal(t, "19:00", s.ScheduledTime)
		assert.Equal(t, s.EndVerse-s.StartVerse+1, s.VerseCount)
	}

	assert.Equal(t, 1, sessions[0].StartVerse)
	assert.Equal(t, 1, sessions[0].StartSurah)
	assert.Equal(t, 6236, sessions[29].EndVerse)
	assert.Equal(t, 114, sessions[29].EndSurah)
	assert.Equal(t, 6, sessions[29].EndVerseInSurah)
}

func TestPlanCoverageNoGapsNoOverlaps(t *testing.T) {
	policies := []*models.Khatm{
		dailyKhatm(date(2024, 1, 1), date(2024, 1, 30)),
		dailyKhatm(date(2024, 1, 1), date(2024, 12, 31)),
		dailyKhatm(date(2024, 6, 15), date(2024, 6, 15)),
		{
			Title:         "Weekly",
			StartDate:     date(2024, 1, 1),
			EndDate:       date(2024, 6, 30),
			FrequencyType: models.FrequencyWeekly,
			ReadingDays:   []string{"mon", "thu"},
			ReadingTime:   "06:30",
		},
	}

	for _, k := range policies {
		sessions, err := Plan(k, quran.Canonical())
		require.NoError(t, err)

		next := 1
		sum := 0
		for _, s := range sessions {
			require.Equal(t, next, s.StartVerse, "gap or overlap before session %d", s.SessionNumber)
			require.LessOrEqual(t, s.StartVerse, s.EndVerse)
			next = s.EndVerse + 1
			sum += s.VerseCount
		}
		assert.Equal(t, quran.TotalVerses+1, next)
		assert.Equal(t, quran.TotalVerses, sum)
	}
}

func TestPlanDeterminism(t *testing.T) {
	k := &models.Khatm{
		Title:         "Deterministic",
		StartDate:     date(2024, 2, 1),
		EndDate:       date(2024, 4, 30),
		FrequencyType: models.FrequencyCustom,
		ReadingDays:   []string{"sat", "sun"},
		ReadingTime:   "21:15",
	}

	first, err := Plan(k, quran.Canonical())
	require.NoError(t, err)
	second, err := Plan(k, quran.Canonical())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlanOrderingAgreement(t *testing.T) {
	sessions, err := Plan(dailyKhatm(date(2024, 1, 1), date(2024, 3, 31)), quran.Canonical())
	require.NoError(t, err)

	for i := 1; i < len(sessions); i++ {
		prev, cur := sessions[i-1], sessions[i]
		assert.Equal(t, prev.SessionNumber+1, cur.SessionNumber)
		assert.True(t, prev.ScheduledDate.Before(cur.ScheduledDate))
		assert.Less(t, prev.StartVerse, cur.StartVerse)
	}
}

func TestPlanErrors(t *testing.T) {
	t.Run("invalid range", func(t *testing.T) {
		_, err := Plan(dailyKhatm(date(2024, 2, 1), date(2024, 1, 1)), quran.Canonical())
		assert.ErrorIs(t, err, recurrence.ErrInvalidRange)
	})

	t.Run("empty day set", func(t *testing.T) {
		k := dailyKhatm(date(2024, 1, 1), date(2024, 1, 31))
		k.FrequencyType = models.FrequencyWeekly
		_, err := Plan(k, quran.Canonical())
		assert.ErrorIs(t, err, recurrence.ErrInvalidPolicy)
	})

	t.Run("no session dates", func(t *testing.T) {
		// Mon-Tue window asking for Fridays.
		k := dailyKhatm(date(2024, 1, 1), date(2024, 1, 2))
		k.FrequencyType = models.FrequencyWeekly
		k.ReadingDays = []string{"fri"}
		_, err := Plan(k, quran.Canonical())
		assert.ErrorIs(t, err, ErrNoSessionDates)
	})

	t.Run("too many sessions", func(t *testing.T) {
		// Daily over 20 years is far more dates than verses.
		_, err := Plan(dailyKhatm(date(2000, 1, 1), date(2020, 1, 1)), quran.Canonical())
		assert.ErrorIs(t, err, ErrTooManySessions)
	})

	t.Run("index mismatch", func(t *testing.T) {
		small, err := quran.NewIndex([]quran.SurahInfo{{Number: 1, Name: "Only", VerseCount: 10}})
		require.NoError(t, err)
		_, err = Plan(dailyKhatm(date(2024, 1, 1), date(2024, 1, 5)), small)
		assert.ErrorIs(t, err, ErrVerseIndexMismatch)
	})
}

func TestPlanExactVerseCountOneSessionEach(t *testing.T) {
	// Exactly 6236 daily dates: every session covers a single verse.
	start := date(2007, 1, 1)
	end := start.AddDate(0, 0, quran.TotalVerses-1)
	sessions, err := Plan(dailyKhatm(start, end), quran.Canonical())
	require.NoError(t, err)
	require.Len(t, sessions, quran.TotalVerses)
	assert.Equal(t, 1, sessions[0].VerseCount)
	assert.Equal(t, 1, sessions[len(sessions)-1].VerseCount)
	assert.Equal(t, quran.TotalVerses, sessions[len(sessions)-1].EndVerse)

	// One more date tips it over.
	_, err = Plan(dailyKhatm(start, end.AddDate(0, 0, 1)), quran.Canonical())
	assert.ErrorIs(t, err, ErrTooManySessions)
}
