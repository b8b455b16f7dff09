package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/khatm/pkg/models"
)

func sess(status string, verseCount, versesRead int) models.KhatmSession {
	return models.KhatmSession{Status: status, VerseCount: verseCount, VersesReadCount: versesRead}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 0, s.TotalSessions)
	assert.Equal(t, 0.0, s.SessionProgressPct)
	assert.Equal(t, 0.0, s.VersesProgressPct)
}

func TestAggregateMixedStatuses(t *testing.T) {
	sessions := []models.KhatmSession{
		sess(models.SessionCompleted, 100, 100),
		sess(models.SessionCompleted, 100, 80), // finished early with fewer verses read
		sess(models.SessionSkipped, 100, 40),   // partial read then skipped: contributes 0
		sess(models.SessionMissed, 100, 0),
		sess(models.SessionScheduled, 100, 0),
	}

	s := Aggregate(sessions)

	assert.Equal(t, 5, s.TotalSessions)
	assert.Equal(t, 2, s.CompletedSessions)
	assert.Equal(t, 3, s.RemainingSessions)
	assert.Equal(t, 500, s.TotalVerses)
	assert.Equal(t, 180, s.CompletedVerses)
	assert.Equal(t, 320, s.RemainingVerses)
	assert.InDelta(t, 40.0, s.SessionProgressPct, 1e-9)
	assert.InDelta(t, 36.0, s.VersesProgressPct, 1e-9)
	assert.Equal(t, 1, s.StatusCounts[models.SessionScheduled])
	assert.Equal(t, 2, s.StatusCounts[models.SessionCompleted])
	assert.Equal(t, 1, s.StatusCounts[models.SessionSkipped])
	assert.Equal(t, 1, s.StatusCounts[models.SessionMissed])
}

func TestAggregateMonotonicUnderCompletion(t *testing.T) {
	sessions := make([]models.KhatmSession, 10)
	for i := range sessions {
		sessions[i] = sess(models.SessionScheduled, 50, 0)
	}

	prevSessions, prevVerses := 0.0, 0.0
	for i := range sessions {
		sessions[i].Status = models.SessionCompleted
		sessions[i].VersesReadCount = sessions[i].VerseCount

		s := Aggregate(sessions)
		assert.GreaterOrEqual(t, s.SessionProgressPct, prevSessions)
		assert.GreaterOrEqual(t, s.VersesProgressPct, prevVerses)
		prevSessions, prevVerses = s.SessionProgressPct, s.VersesProgressPct
	}
	assert.Equal(t, 100.0, prevSessions)
	assert.Equal(t, 100.0, prevVerses)
}

func TestSkippingNeverIncreasesProgress(t *testing.T) {
	sessions := []models.KhatmSession{
		sess(models.SessionCompleted, 100, 100),
		sess(models.SessionScheduled, 100, 60),
	}
	before := Aggregate(sessions)

	sessions[1].Status = models.SessionSkipped
	after := Aggregate(sessions)

	assert.Equal(t, before.VersesProgressPct, after.VersesProgressPct)
	assert.Equal(t, before.SessionProgressPct, after.SessionProgressPct)
}

func TestAllTerminal(t *testing.T) {
	assert.False(t, AllTerminal(nil))
	assert.False(t, AllTerminal([]models.KhatmSession{sess(models.SessionScheduled, 1, 0)}))
	assert.False(t, AllTerminal([]models.KhatmSession{
		sess(models.SessionCompleted, 1, 1),
		sess(models.SessionScheduled, 1, 0),
	}))
	assert.True(t, AllTerminal([]models.KhatmSession{
		sess(models.SessionCompleted, 1, 1),
		sess(models.SessionSkipped, 1, 0),
		sess(models.SessionMissed, 1, 0),
	}))
}
