// Package planner turns a khatm's date range and frequency policy into the
// full list of reading sessions, partitioning the verse catalogue across
// the resolved dates.
package planner

import (
	"errors"
	"fmt"

	"github.com/example/khatm/internal/quran"
	"github.com/example/khatm/internal/recurrence"
	"github.com/example/khatm/pkg/models"
)

// ErrNoSessionDates indicates the date range and policy produced no dates.
var ErrNoSessionDates = errors.New("no session dates in range")

// ErrTooManySessions indicates more session dates than verses; a session
// covering zero verses is never created.
var ErrTooManySessions = errors.New("more session dates than verses")

// ErrVerseIndexMismatch indicates the verse index does not contain the
// expected total verse count.
var ErrVerseIndexMismatch = errors.New("verse index total mismatch")

// VerseIndex is the read-only view of the verse catalogue the planner needs.
type VerseIndex interface {
	TotalVerseCount() int
	VerseAt(globalNumber int) (models.VerseRef, error)
}

// Plan computes the ordered session list for a khatm. Sessions partition
// the full text into contiguous near-equal chunks: with N dates and V
// verses, the first V mod N sessions get one extra verse. The result is
// deterministic, unpersisted and does not mutate the khatm.
func Plan(k *models.Khatm, index VerseIndex) ([]models.KhatmSession, error) {
	total := index.TotalVerseCount()
	if total != quran.TotalVerses {
		return nil, fmt.Errorf("%w: index has %d verses, want %d", ErrVerseIndexMismatch, total, quran.TotalVerses)
	}

	dates, err := recurrence.Resolve(k.StartDate, k.EndDate, recurrence.Policy{
		Frequency: k.FrequencyType,
		Days:      k.ReadingDays,
	})
	if err != nil {
		return nil, err
	}

	n := len(dates)
	if n == 0 {
		return nil, fmt.Errorf("%w: %s to %s with frequency %s", ErrNoSessionDates,
			k.StartDate.Format("2006-01-02"), k.EndDate.Format("2006-01-02"), k.FrequencyType)
	}
	if n > total {
		return nil, fmt.Errorf("%w: %d dates for %d verses", ErrTooManySessions, n, total)
	}

	base := total / n
	remainder := total % n

	sessions := make([]models.KhatmSession, 0, n)
	nextVerse := 1
	for i, day := range dates {
		count := base
		if i < remainder {
			count++
		}

		startRef, err := index.VerseAt(nextVerse)
		if err != nil {
			return nil, fmt.Errorf("resolve start verse: %v", err)
		}
		endRef, err := index.VerseAt(nextVerse + count - 1)
		if err != nil {
			return nil, fmt.Errorf("resolve end verse: %v", err)
		}

		sessions = append(sessions, models.KhatmSession{
			SessionNumber:     i + 1,
			ScheduledDate:     day,
			ScheduledTime:     k.ReadingTime,
			StartVerse:        startRef.GlobalNumber,
			EndVerse:          endRef.GlobalNumber,
			StartSurah:        startRef.SurahNumber,
			StartVerseInSurah: startRef.VerseInSurah,
			EndSurah:          endRef.SurahNumber,
			EndVerseInSurah:   endRef.VerseInSurah,
			VerseCount:        count,
			Status:            models.SessionScheduled,
		})
		nextVerse += count
	}

	return sessions, nil
}
